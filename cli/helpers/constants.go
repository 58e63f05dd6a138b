package helpers

// ContextKey is a custom type for context keys to avoid string collisions
type ContextKey string

const (
	// FsKey is the context key for storing the filesystem commands read and write
	FsKey ContextKey = "fs"
	// ConfigServiceKey is the context key for storing the config.Service that
	// loaded the active configuration
	ConfigServiceKey ContextKey = "config_service"
)

// StdinPath names standard input in file arguments
const StdinPath = "-"

// Flag names shared by several commands
const (
	FlagWith   = "with"
	FlagBefore = "before"
	FlagJSON   = "json"
)
