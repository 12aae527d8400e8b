package logging

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PayFox/internal/pkg/env"
)

// Setup configures the process wide fiber logger from LOG_LEVEL.
func Setup() {
	log.SetOutput(os.Stdout)
	log.SetLevel(ParseLevel(env.GetEnv("LOG_LEVEL", defaultLevel())))
}

func defaultLevel() string {
	if env.IsDev() {
		return "debug"
	}
	return "info"
}

// ParseLevel maps a level name to a fiber log level, falling back to info.
func ParseLevel(name string) log.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	case "fatal":
		return log.LevelFatal
	default:
		return log.LevelInfo
	}
}
