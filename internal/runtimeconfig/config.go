package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Backend identifiers accepted by Config.Backend.
const (
	BackendTable     = "table"
	BackendBlobIndex = "blob-index"
	BackendRevision  = "revision"
)

var ErrBackendUnknown = errors.New("wiki config: backend is invalid")
var ErrStorageDriverRequired = errors.New("wiki config: storage driver is required")
var ErrStorageDSNRequired = errors.New("wiki config: storage dsn is required")
var ErrObjectStoreBucketRequired = errors.New("wiki config: object store bucket is required when the blob-index backend is selected")
var ErrRevisionPathRequired = errors.New("wiki config: revision repository path is required when the revision backend is selected")
var ErrRevisionHistoryInvalid = errors.New("wiki config: revision history limit must be zero or positive")
var ErrLoggingLevelInvalid = errors.New("wiki config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("wiki config: logging format is invalid")

// Config captures every runtime knob of the wiki module. Backend selects
// which of the three store implementations serves the page operations; the
// remaining sections only apply to the backend that uses them.
type Config struct {
	Backend     string            `env:"WIKI_BACKEND" json:"backend"`
	Storage     StorageConfig     `envPrefix:"WIKI_DB_" json:"storage"`
	ObjectStore ObjectStoreConfig `envPrefix:"WIKI_S3_" json:"objectStore"`
	Revision    RevisionConfig    `envPrefix:"WIKI_GIT_" json:"revision"`
	Logging     LoggingConfig     `envPrefix:"WIKI_LOG_" json:"logging"`
	Security    SecurityConfig    `json:"security"`
}

// StorageConfig configures the relational database shared by the table and
// blob-index backends.
type StorageConfig struct {
	Driver string `env:"DRIVER" json:"driver"`
	DSN    string `env:"DSN" json:"dsn"`
}

// ObjectStoreConfig configures the S3-compatible bucket that holds page
// documents for the blob-index backend.
type ObjectStoreConfig struct {
	Endpoint  string `env:"ENDPOINT" json:"endpoint"`
	Region    string `env:"REGION" json:"region"`
	Bucket    string `env:"BUCKET" json:"bucket"`
	AccessKey string `env:"ACCESS_KEY" json:"accessKey"`
	SecretKey string `env:"SECRET_KEY" json:"secretKey"`
}

// RevisionConfig configures the git repository used by the revision backend.
// MaxHistory bounds how many commits version listings walk; zero applies the
// backend default.
type RevisionConfig struct {
	Path        string `env:"PATH" json:"path"`
	AuthorName  string `env:"AUTHOR_NAME" json:"authorName"`
	AuthorEmail string `env:"AUTHOR_EMAIL" json:"authorEmail"`
	MaxHistory  int    `env:"MAX_HISTORY" json:"maxHistory"`
}

// LoggingConfig configures the module logger.
type LoggingConfig struct {
	Level     string `env:"LEVEL" json:"level"`
	Format    string `env:"FORMAT" json:"format"`
	AddSource bool   `env:"ADD_SOURCE" json:"addSource"`
}

// SecurityConfig names the role required for privileged blob-index
// operations.
type SecurityConfig struct {
	EditorRole string `env:"WIKI_EDITOR_ROLE" json:"editorRole"`
}

// DefaultConfig returns a configuration that runs the table backend against
// an in-process SQLite database. Callers override fields before validation.
func DefaultConfig() Config {
	return Config{
		Backend: BackendTable,
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "file:wiki?mode=memory&cache=shared",
		},
		ObjectStore: ObjectStoreConfig{
			Region: "auto",
		},
		Revision: RevisionConfig{
			AuthorName:  "wiki",
			AuthorEmail: "wiki@localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Security: SecurityConfig{
			EditorRole: "wiki:editors",
		},
	}
}

// FromEnv builds a configuration from process environment variables layered
// over DefaultConfig.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("wiki config: parse environment: %w", err)
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case BackendTable, BackendBlobIndex:
		if strings.TrimSpace(cfg.Storage.Driver) == "" {
			return ErrStorageDriverRequired
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
		if backend == BackendBlobIndex && strings.TrimSpace(cfg.ObjectStore.Bucket) == "" {
			return ErrObjectStoreBucketRequired
		}
	case BackendRevision:
		if strings.TrimSpace(cfg.Revision.Path) == "" {
			return ErrRevisionPathRequired
		}
		if cfg.Revision.MaxHistory < 0 {
			return ErrRevisionHistoryInvalid
		}
	default:
		return fmt.Errorf("%w: %s", ErrBackendUnknown, cfg.Backend)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case "console", "json", "pretty":
		return true
	default:
		return false
	}
}
