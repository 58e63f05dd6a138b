package config

import (
	"os"
	"reflect"
	"sort"
	"sync"
)

// EnvBinding ties a FLOWDOC_* environment variable to the configuration key it sets.
type EnvBinding struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Value returns the variable's value and whether it is set to something non-empty.
func (b EnvBinding) Value() (string, bool) {
	v, ok := os.LookupEnv(b.Name)
	return v, ok && v != ""
}

var envBindings = sync.OnceValue(func() []EnvBinding {
	bindings := bindStruct(reflect.TypeOf(Config{}), "")
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].Name < bindings[j].Name })
	return bindings
})

var envKeys = sync.OnceValue(func() map[string]string {
	keys := make(map[string]string)
	for _, b := range envBindings() {
		keys[b.Name] = b.Key
	}
	return keys
})

// EnvBindings lists every environment variable flowdoc reads, sorted by name.
func EnvBindings() []EnvBinding {
	return append([]EnvBinding(nil), envBindings()...)
}

// EnvFor returns the variable bound to key, or "".
func EnvFor(key string) string {
	for _, b := range envBindings() {
		if b.Key == key {
			return b.Name
		}
	}
	return ""
}

// bindStruct walks the koanf-tagged fields of t and collects those carrying an env tag.
func bindStruct(t reflect.Type, prefix string) []EnvBinding {
	var out []EnvBinding
	for _, field := range reflect.VisibleFields(t) {
		key := field.Tag.Get("koanf")
		if key == "" || key == "-" || !field.IsExported() {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		if field.Type.Kind() == reflect.Struct {
			out = append(out, bindStruct(field.Type, key)...)
			continue
		}
		if name := field.Tag.Get("env"); name != "" && name != "-" {
			out = append(out, EnvBinding{Name: name, Key: key})
		}
	}
	return out
}

// envTransform maps a variable to its configuration key for the env provider.
// Unknown and empty variables are skipped.
func envTransform(name, value string) (string, any) {
	key, ok := envKeys()[name]
	if !ok || value == "" {
		return "", nil
	}
	return key, value
}
