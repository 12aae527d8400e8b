package apidoc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentPath = "../../../public/docs/v1/openapi.yml"

func TestLoadShippedDocument(t *testing.T) {
	doc, err := Load(context.Background(), documentPath)
	require.NoError(t, err)

	ops := Operations(doc)
	assert.Contains(t, ops, Operation{Method: "GET", Path: "/api/v1/users/:id"})
	assert.Contains(t, ops, Operation{Method: "PATCH", Path: "/api/v1/payment-methods/:id/set-default"})
	assert.Contains(t, ops, Operation{Method: "PATCH", Path: "/api/v1/payment-providers/:id/toggle"})
	assert.Contains(t, ops, Operation{Method: "POST", Path: "/api/v1/users/:id/api-key"})
}

func TestLoadRejectsInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yml")
	require.NoError(t, os.WriteFile(path, []byte("openapi: 3.0.3\ninfo:\n  title: x\npaths: {}\n"), 0o600))

	_, err := Load(context.Background(), path)
	assert.Error(t, err, "info.version is required")

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestFiberPath(t *testing.T) {
	assert.Equal(t, "/users/:id/api-key", fiberPath("/users/{id}/api-key"))
	assert.Equal(t, "/users", fiberPath("/users"))
}
