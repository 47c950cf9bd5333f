// File path: cmd/animalert/main_test.go
package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animalert/animalert/internal/store"
)

func TestSeedCommandLoadsExampleSeed(t *testing.T) {
	t.Setenv("DB_CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_PATH", "")
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "animalert.db")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"--env-file", filepath.Join(dir, "missing.env"),
		"--db", dbFile,
		"seed", filepath.Join("..", "..", "configs", "seed.example.yaml"),
	})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "seeded 2 categories, 3 institutions, 2 templates")

	st, err := store.OpenWithConfig(store.Config{Driver: store.DriverSQLite, Path: dbFile})
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	tpl, err := st.TemplateByIncidentType(ctx, 1)
	require.NoError(t, err)
	assert.True(t, strings.Contains(tpl.HTML, "PETITIE"))
	assert.Equal(t, "BRC", tpl.CategoryCodeAlpha.String)

	institutions, err := st.InstitutionsForCategory(ctx, tpl.CategoryID.Int64)
	require.NoError(t, err)
	require.Len(t, institutions, 2)
	assert.Equal(t, "PJ", institutions[0].Code)
}

func TestSeedCommandRequiresFile(t *testing.T) {
	rootCmd.SetArgs([]string{"seed"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
}
