package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// NotionVersion is the API version sent with every request.
const NotionVersion = "2022-06-28"

// Defaults applied when neither the environment nor the config file sets
// a value.
const (
	DefaultMaxFileSize = 5 * 1024 * 1024
	DefaultCacheTTL    = 24 * time.Hour
	DefaultCachePath   = "upload_cache.db"
	DefaultConfigFile  = "narko.toml"
)

// Config holds everything the importer needs: credentials, upload
// limits, cache settings and the directory-to-page mapping.
type Config struct {
	APIKey     string
	ImportRoot string

	MaxFileSize int64

	CachePath string
	CacheTTL  time.Duration

	// PageMap maps directories to parent page IDs. The "." entry is the
	// fallback for files that match no other directory.
	PageMap map[string]string
}

type fileConfig struct {
	Pages  map[string]string `toml:"pages"`
	Upload struct {
		MaxFileSize int64 `toml:"max_file_size"`
	} `toml:"upload"`
	Cache struct {
		Path     string `toml:"path"`
		TTLHours int    `toml:"ttl_hours"`
	} `toml:"cache"`
}

// Load reads configuration from the environment, a .env file when one
// exists, and an optional TOML config file. path may be empty, in which
// case NARKO_CONFIG or the default file name is used.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:      os.Getenv("NOTION_API_KEY"),
		ImportRoot:  os.Getenv("NOTION_IMPORT_ROOT"),
		MaxFileSize: DefaultMaxFileSize,
		CachePath:   DefaultCachePath,
		CacheTTL:    DefaultCacheTTL,
		PageMap:     map[string]string{},
	}

	if path == "" {
		path = os.Getenv("NARKO_CONFIG")
	}
	if path == "" {
		path = DefaultConfigFile
	}
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for dir, pageID := range fc.Pages {
		c.PageMap[filepath.Clean(dir)] = pageID
	}
	if fc.Upload.MaxFileSize > 0 {
		c.MaxFileSize = fc.Upload.MaxFileSize
	}
	if fc.Cache.Path != "" {
		c.CachePath = fc.Cache.Path
	}
	if fc.Cache.TTLHours > 0 {
		c.CacheTTL = time.Duration(fc.Cache.TTLHours) * time.Hour
	}
	return nil
}

// Validate checks the fields needed to talk to the API.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required.Error("NOTION_API_KEY is required")),
		validation.Field(&c.MaxFileSize, validation.Min(int64(1))),
	)
}

// ParentFor resolves the parent page for a file path: the page mapped to
// the file's directory or the nearest mapped ancestor, then the "."
// entry, then the import root.
func (c *Config) ParentFor(path string) string {
	dir := filepath.Clean(filepath.Dir(path))
	for {
		if pageID, ok := c.PageMap[dir]; ok {
			return pageID
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if pageID, ok := c.PageMap["."]; ok {
		return pageID
	}
	return c.ImportRoot
}
