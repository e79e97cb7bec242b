package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/localmind-ai/file-uploader/internal/jsonc"
	"github.com/localmind-ai/file-uploader/internal/utils"
)

var (
	home, _             = os.UserHomeDir()
	DefaultTrackingPath = filepath.Join(home, ".docsync", "tracking.json")
)

var (
	ErrNoBaseURL  = errors.New("config: base url missing")
	ErrNoAPIKey   = errors.New("config: api key missing")
	ErrNoMappings = errors.New("config: no folder mappings provided")
)

// Mapping pairs one local directory root with one remote folder.
type Mapping struct {
	LocalDir string `json:"local_dir"`
	FolderID string `json:"folder_id"`
}

// Config is the fully resolved run configuration handed to the sync core.
type Config struct {
	BaseURL      string    `json:"base_url"`
	APIKey       string    `json:"-"`
	TrackingFile string    `json:"tracking_file"`
	VerifySSL    bool      `json:"verify_ssl"`
	Verbose      bool      `json:"verbose"`
	Jobs         int       `json:"jobs"`
	Mappings     []Mapping `json:"mappings"`
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	if len(c.Mappings) == 0 {
		return ErrNoMappings
	}

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.TrackingFile == "" {
		c.TrackingFile = DefaultTrackingPath
	}
	trackingFile, err := utils.ResolvePath(c.TrackingFile)
	if err != nil {
		return fmt.Errorf("resolve tracking file: %w", err)
	}
	c.TrackingFile = trackingFile

	if c.Jobs < 1 {
		c.Jobs = 1
	}

	for i := range c.Mappings {
		m := &c.Mappings[i]
		if m.FolderID == "" {
			return fmt.Errorf("config: mapping %q has no folder id", m.LocalDir)
		}
		localDir, err := utils.ResolvePath(m.LocalDir)
		if err != nil {
			return fmt.Errorf("resolve mapping dir %q: %w", m.LocalDir, err)
		}
		m.LocalDir = localDir
	}

	return nil
}

// LoadMappingFile reads a JSON object of {"local/dir": "folder-id"} pairs,
// the same shape the original uploader used.
func LoadMappingFile(path string) ([]Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}

	var raw map[string]string
	if err := jsonc.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse mapping file %s: %w", path, err)
	}

	mappings := make([]Mapping, 0, len(raw))
	for localDir, folderID := range raw {
		if localDir == "" || folderID == "" {
			return nil, fmt.Errorf("invalid mapping entry: %q -> %q", localDir, folderID)
		}
		mappings = append(mappings, Mapping{LocalDir: localDir, FolderID: folderID})
	}

	return mappings, nil
}

// ParseMappingFlag parses a repeated `--mapping LOCAL_PATH=FOLDER_ID` value.
func ParseMappingFlag(value string) (Mapping, error) {
	localDir, folderID, ok := strings.Cut(value, "=")
	if !ok || localDir == "" || folderID == "" {
		return Mapping{}, fmt.Errorf("invalid mapping %q, expected LOCAL_PATH=FOLDER_ID", value)
	}
	return Mapping{LocalDir: localDir, FolderID: folderID}, nil
}
