package logger

import (
	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
)

func getDefaultStyles() *charmlog.Styles {
	styles := charmlog.DefaultStyles()
	levels := map[charmlog.Level]string{
		charmlog.DebugLevel: "63",
		charmlog.InfoLevel:  "86",
		charmlog.WarnLevel:  "192",
		charmlog.ErrorLevel: "204",
	}
	for level, color := range levels {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(level.String()).
			Bold(true).
			MaxWidth(5).
			Foreground(lipgloss.Color(color))
	}
	styles.Key = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	return styles
}
