package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/erp/depreciation/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add usage readings", "add_usage_readings"},
		{"Add-Usage-Readings", "add_usage_readings"},
		{"ADD__USAGE__READINGS", "add_usage_readings"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "init depreciation", "depreciation tables")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_init_depreciation.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_init_depreciation.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: init depreciation\n")
	assert.Contains(t, string(up), "-- Description: depreciation tables")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	second, err := CreateMigration(dir, "add usage readings", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init_depreciation", "000002_add_usage_readings"}, names)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		names, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("orders numerically and ignores strays", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"000010_ten.up.sql", "000010_ten.down.sql",
			"000002_two.up.sql", "000002_two.down.sql",
			"README.md", "notes.up.sql",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}

		names, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000002_two", "000010_ten"}, names)
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	up, err := migrations.FS.ReadFile("000001_init_depreciation.up.sql")
	require.NoError(t, err)
	for _, table := range []string{
		"depreciation_schedules",
		"depreciation_executions",
		"asset_depreciation_details",
		"asset_depreciations",
		"asset_usage_readings",
	} {
		assert.Contains(t, string(up), "CREATE TABLE "+table)
	}
	assert.Contains(t, string(up), "ON asset_depreciations (asset_id, period_year, period_month)")

	_, err = migrations.FS.ReadFile("000001_init_depreciation.down.sql")
	assert.NoError(t, err)
}
