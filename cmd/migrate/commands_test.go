package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"up", "down", "goto", "status", "seed"} {
		assert.True(t, names[want], want)
	}

	flag := rootCmd.PersistentFlags().Lookup("dir")
	require.NotNil(t, flag)
	assert.Equal(t, "migrations", flag.DefValue)
}

func TestGotoRejectsBadVersion(t *testing.T) {
	err := gotoCmd.RunE(gotoCmd, []string{"latest"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid version "latest"`)
}
