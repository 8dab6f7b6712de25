package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-menus"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by entity type to avoid cross-entity collisions.
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

// MenuUUID returns the seed identifier for the menu with the given slug.
func MenuUUID(menuSlug string) uuid.UUID {
	return UUID(namespace + ":menu:" + strings.ToLower(strings.TrimSpace(menuSlug)))
}

// MenuItemUUID returns the seed identifier for an item addressed by its
// slash separated title path inside a menu, e.g. "about/team".
func MenuItemUUID(menuSlug, path string) uuid.UUID {
	return UUID(namespace + ":menu_item:" + strings.ToLower(strings.TrimSpace(menuSlug)) + ":" + strings.Trim(strings.TrimSpace(path), "/"))
}

// NewID returns a time ordered identifier for newly created records.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
