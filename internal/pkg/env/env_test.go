package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withEnv(t *testing.T, values map[string]string) {
	t.Helper()
	prev := Env
	Env = values
	t.Cleanup(func() { Env = prev })
}

func TestGetEnvPrefersLoadedFile(t *testing.T) {
	withEnv(t, map[string]string{"PAYFOX_TEST_KEY": "from-file"})
	t.Setenv("PAYFOX_TEST_KEY", "from-os")

	assert.Equal(t, "from-file", GetEnv("PAYFOX_TEST_KEY", "def"))
	assert.Equal(t, "def", GetEnv("PAYFOX_TEST_MISSING", "def"))
}

func TestTypedHelpers(t *testing.T) {
	withEnv(t, map[string]string{
		"INT_OK":   "42",
		"INT_BAD":  "forty",
		"BOOL_YES": "yes",
		"BOOL_OFF": "off",
		"BOOL_BAD": "maybe",
		"DUR_SECS": "15",
		"DUR_GO":   "250ms",
		"DUR_BAD":  "soon",
		"LIST":     " a, ,b ,c",
	})

	assert.Equal(t, 42, GetEnvInt("INT_OK", 1))
	assert.Equal(t, 1, GetEnvInt("INT_BAD", 1))
	assert.Equal(t, 7, GetEnvInt("INT_MISSING", 7))

	assert.True(t, GetEnvBool("BOOL_YES", false))
	assert.False(t, GetEnvBool("BOOL_OFF", true))
	assert.True(t, GetEnvBool("BOOL_BAD", true))

	assert.Equal(t, 15*time.Second, GetEnvDuration("DUR_SECS", time.Second))
	assert.Equal(t, 250*time.Millisecond, GetEnvDuration("DUR_GO", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("DUR_BAD", time.Second))

	assert.Equal(t, []string{"a", "b", "c"}, GetEnvList("LIST", nil))
	assert.Equal(t, []string{"x"}, GetEnvList("LIST_MISSING", []string{"x"}))
}
