package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		BaseURL: "https://localmind.example.com/",
		APIKey:  "key",
		Mappings: []Mapping{
			{LocalDir: "./docs", FolderID: "folder-1"},
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://localmind.example.com", cfg.BaseURL, "trailing slash trimmed")
	assert.True(t, filepath.IsAbs(cfg.Mappings[0].LocalDir))
	assert.True(t, filepath.IsAbs(cfg.TrackingFile))
	assert.Equal(t, 1, cfg.Jobs)
}

func TestConfig_Validate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"missing base url", func(c *Config) { c.BaseURL = "" }, ErrNoBaseURL},
		{"missing api key", func(c *Config) { c.APIKey = "" }, ErrNoAPIKey},
		{"no mappings", func(c *Config) { c.Mappings = nil }, ErrNoMappings},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.want)
		})
	}

	cfg := validConfig()
	cfg.Mappings[0].FolderID = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadMappingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"/data/reports":"folder-1","/data/notes":"folder-2"}`), 0o644))

	mappings, err := LoadMappingFile(path)
	require.NoError(t, err)
	require.Len(t, mappings, 2)

	byDir := map[string]string{}
	for _, m := range mappings {
		byDir[m.LocalDir] = m.FolderID
	}
	assert.Equal(t, "folder-1", byDir["/data/reports"])
	assert.Equal(t, "folder-2", byDir["/data/notes"])
}

func TestLoadMappingFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"dir": ""}`), 0o644))
	_, err := LoadMappingFile(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))
	_, err = LoadMappingFile(path)
	assert.Error(t, err)

	_, err = LoadMappingFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParseMappingFlag(t *testing.T) {
	m, err := ParseMappingFlag("/data/docs=folder-7")
	require.NoError(t, err)
	assert.Equal(t, Mapping{LocalDir: "/data/docs", FolderID: "folder-7"}, m)

	for _, bad := range []string{"", "noequals", "=folder", "dir="} {
		_, err := ParseMappingFlag(bad)
		assert.Error(t, err, bad)
	}
}
