package storetest

import (
	"testing"

	"github.com/goliatone/go-wiki/internal/store"
)

func TestMemoryStoreContract(t *testing.T) {
	Run(t, func(t *testing.T) store.PageStore {
		return store.NewMemoryStore()
	})
}
