package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookListings/internal/testutil"
)

func TestRun_UpStatusDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	log, _ := testutil.NewLogger()

	var out bytes.Buffer
	require.NoError(t, run("status", path, &out, log))
	assert.Equal(t, "0001_create_users\tpending\n0002_create_books\tpending\n", out.String())

	require.NoError(t, run("up", path, &out, log))
	out.Reset()
	require.NoError(t, run("status", path, &out, log))
	assert.Equal(t, "0001_create_users\tapplied\n0002_create_books\tapplied\n", out.String())

	require.NoError(t, run("down", path, &out, log))
	out.Reset()
	require.NoError(t, run("status", path, &out, log))
	assert.Equal(t, "0001_create_users\tapplied\n0002_create_books\tpending\n", out.String())
}

func TestRun_UnknownCommand(t *testing.T) {
	log, _ := testutil.NewLogger()
	err := run("sideways", filepath.Join(t.TempDir(), "app.db"), &bytes.Buffer{}, log)
	assert.Error(t, err)
}
