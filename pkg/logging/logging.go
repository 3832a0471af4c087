package logging

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// Setup configures the package-level charm logger. format is text, json or
// logfmt.
func Setup(level, format string) error {
	if strings.TrimSpace(level) != "" {
		lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return fmt.Errorf("parse log level: %w", err)
		}
		log.SetLevel(lvl)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		log.SetFormatter(log.TextFormatter)
	case "json":
		log.SetFormatter(log.JSONFormatter)
	case "logfmt":
		log.SetFormatter(log.LogfmtFormatter)
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}
	log.SetReportTimestamp(true)
	return nil
}
