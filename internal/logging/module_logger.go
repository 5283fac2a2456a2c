package logging

import (
	"context"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

const (
	rootModule     = "wiki"
	tableModule    = "wiki.table"
	blobModule     = "wiki.blob"
	revisionModule = "wiki.revision"
	searchModule   = "wiki.search"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// TableLogger returns the logger namespace reserved for the table backend.
func TableLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, tableModule)
}

// BlobLogger returns the logger namespace reserved for the blob+index backend.
func BlobLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, blobModule)
}

// RevisionLogger returns the logger namespace reserved for the revision backend.
func RevisionLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, revisionModule)
}

// SearchLogger returns the logger namespace reserved for search ranking.
func SearchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, searchModule)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so backends can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
