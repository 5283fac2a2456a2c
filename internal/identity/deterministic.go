package identity

import (
	"fmt"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PageUUID derives the page identifier used by backends without their own
// ID allocation (the revision backend addresses pages purely by slug).
func PageUUID(slug string) uuid.UUID {
	return UUID("go-wiki:page:" + strings.ToLower(strings.TrimSpace(slug)))
}

// CategoryUUID derives a stable category identifier from its slug.
func CategoryUUID(slug string) uuid.UUID {
	return UUID("go-wiki:category:" + strings.ToLower(strings.TrimSpace(slug)))
}

// VersionUUID derives a stable identifier for a version record. Retrying
// a failed append writes the same row instead of a duplicate.
func VersionUUID(pageID uuid.UUID, version int) uuid.UUID {
	return UUID(fmt.Sprintf("go-wiki:page_version:%s:%d", pageID, version))
}
