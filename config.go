package wiki

import "github.com/goliatone/go-wiki/internal/runtimeconfig"

// Backend identifiers accepted by Config.Backend.
const (
	BackendTable     = runtimeconfig.BackendTable
	BackendBlobIndex = runtimeconfig.BackendBlobIndex
	BackendRevision  = runtimeconfig.BackendRevision
)

var (
	ErrBackendUnknown            = runtimeconfig.ErrBackendUnknown
	ErrStorageDriverRequired     = runtimeconfig.ErrStorageDriverRequired
	ErrStorageDSNRequired        = runtimeconfig.ErrStorageDSNRequired
	ErrObjectStoreBucketRequired = runtimeconfig.ErrObjectStoreBucketRequired
	ErrRevisionPathRequired      = runtimeconfig.ErrRevisionPathRequired
	ErrRevisionHistoryInvalid    = runtimeconfig.ErrRevisionHistoryInvalid
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config            = runtimeconfig.Config
	StorageConfig     = runtimeconfig.StorageConfig
	ObjectStoreConfig = runtimeconfig.ObjectStoreConfig
	RevisionConfig    = runtimeconfig.RevisionConfig
	LoggingConfig     = runtimeconfig.LoggingConfig
	SecurityConfig    = runtimeconfig.SecurityConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// ConfigFromEnv reads configuration from process environment variables
// layered over DefaultConfig.
func ConfigFromEnv() (Config, error) {
	return runtimeconfig.FromEnv()
}
