package logging

import (
	"testing"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]log.Level{
		"debug":   log.LevelDebug,
		" WARN ":  log.LevelWarn,
		"warning": log.LevelWarn,
		"error":   log.LevelError,
		"trace":   log.LevelTrace,
		"":        log.LevelInfo,
		"loud":    log.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
