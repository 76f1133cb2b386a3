package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_SQLite(t *testing.T) {
	var out bytes.Buffer
	url := sqliteURL(t)

	require.NoError(t, migrate(context.Background(), url, &out))
	// running twice is a no-op
	require.NoError(t, migrate(context.Background(), url, &out))

	assert.Equal(t, "Schema is up to date\nSchema is up to date\n", out.String())
}

func TestMigrate_EmptyURL(t *testing.T) {
	var out bytes.Buffer
	err := migrate(context.Background(), "", &out)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}
