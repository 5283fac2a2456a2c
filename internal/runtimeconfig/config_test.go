package runtimeconfig

import (
	"errors"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
	if cfg.Backend != BackendTable {
		t.Fatalf("expected table backend default, got %q", cfg.Backend)
	}
}

func TestValidateBackendSelection(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "unknown backend",
			mutate:  func(cfg *Config) { cfg.Backend = "ledger" },
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "table without dsn",
			mutate:  func(cfg *Config) { cfg.Storage.DSN = "" },
			wantErr: ErrStorageDSNRequired,
		},
		{
			name:    "table without driver",
			mutate:  func(cfg *Config) { cfg.Storage.Driver = " " },
			wantErr: ErrStorageDriverRequired,
		},
		{
			name: "blob index without bucket",
			mutate: func(cfg *Config) {
				cfg.Backend = BackendBlobIndex
				cfg.ObjectStore.Bucket = ""
			},
			wantErr: ErrObjectStoreBucketRequired,
		},
		{
			name: "revision without path",
			mutate: func(cfg *Config) {
				cfg.Backend = BackendRevision
				cfg.Revision.Path = ""
			},
			wantErr: ErrRevisionPathRequired,
		},
		{
			name: "revision negative history",
			mutate: func(cfg *Config) {
				cfg.Backend = BackendRevision
				cfg.Revision.Path = "/tmp/wiki"
				cfg.Revision.MaxHistory = -1
			},
			wantErr: ErrRevisionHistoryInvalid,
		},
		{
			name:    "invalid log level",
			mutate:  func(cfg *Config) { cfg.Logging.Level = "loud" },
			wantErr: ErrLoggingLevelInvalid,
		},
		{
			name:    "invalid log format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: ErrLoggingFormatInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateAcceptsMixedCaseBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = " Table "
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected trimmed backend to validate, got %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("WIKI_BACKEND", "revision")
	t.Setenv("WIKI_GIT_PATH", "/var/lib/wiki")
	t.Setenv("WIKI_GIT_MAX_HISTORY", "25")
	t.Setenv("WIKI_LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Backend != BackendRevision {
		t.Fatalf("expected revision backend, got %q", cfg.Backend)
	}
	if cfg.Revision.Path != "/var/lib/wiki" {
		t.Fatalf("unexpected revision path %q", cfg.Revision.Path)
	}
	if cfg.Revision.MaxHistory != 25 {
		t.Fatalf("unexpected max history %d", cfg.Revision.MaxHistory)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Fatalf("expected defaults to survive env parse, got %q", cfg.Storage.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected env config to validate, got %v", err)
	}
}
