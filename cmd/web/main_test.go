package main

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontendEmbedding(t *testing.T) {
	sub, err := frontend(frontendFiles)
	require.NoError(t, err)

	index, err := fs.ReadFile(sub, "index.html")
	require.NoError(t, err)
	page := string(index)
	assert.Contains(t, page, "https://cdn.plot.ly")
	assert.Contains(t, page, "/api/charts")
	assert.Contains(t, page, "data_update")
}

func TestFrontend_MissingIndex(t *testing.T) {
	_, err := frontend(fstest.MapFS{
		"frontend/app.js": {Data: []byte("")},
	})
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
