package menus

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DefaultMaxDepth bounds ancestry walks. Real menus are a handful of levels
// deep; anything past this is treated as corrupt storage.
const DefaultMaxDepth = 256

// ParentLookup resolves the ancestry link for an item id. Implementations
// read through the caller's open transaction and return an error wrapping
// ErrMenuItemNotFound when the id is unknown.
type ParentLookup interface {
	LookupParent(ctx context.Context, id uuid.UUID) (*ParentLink, error)
}

// ParentLookupFunc adapts a function to ParentLookup.
type ParentLookupFunc func(ctx context.Context, id uuid.UUID) (*ParentLink, error)

func (f ParentLookupFunc) LookupParent(ctx context.Context, id uuid.UUID) (*ParentLink, error) {
	return f(ctx, id)
}

// CycleGuard validates a proposed parent assignment against current ancestry.
type CycleGuard struct {
	MaxDepth int
}

// Check walks from candidateParent towards the root. movingID is the item
// being relocated, or uuid.Nil for a new item.
//
// It fails with ErrParentNotFound when the candidate is missing or
// tombstoned, ErrParentCrossMenu when any node on the chain belongs to
// another menu, and ErrCycle when the chain revisits a node, reaches
// movingID, or exceeds MaxDepth.
func (g CycleGuard) Check(ctx context.Context, lookup ParentLookup, menuID, candidateParent, movingID uuid.UUID) error {
	if candidateParent == uuid.Nil {
		return nil
	}
	if movingID != uuid.Nil && candidateParent == movingID {
		return fmt.Errorf("%w: item %s cannot be its own parent", ErrCycle, movingID)
	}

	limit := g.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}

	visited := make(map[uuid.UUID]struct{}, 8)
	current := candidateParent
	for depth := 0; ; depth++ {
		if depth >= limit {
			return fmt.Errorf("%w: ancestry deeper than %d", ErrCycle, limit)
		}

		link, err := lookup.LookupParent(ctx, current)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrParentNotFound, current)
			}
			return err
		}
		if link == nil {
			return fmt.Errorf("%w: %s", ErrParentNotFound, current)
		}
		if depth == 0 && link.Deleted {
			return fmt.Errorf("%w: %s is deleted", ErrParentNotFound, current)
		}
		if link.MenuID != menuID {
			return fmt.Errorf("%w: %s belongs to menu %s", ErrParentCrossMenu, link.ID, link.MenuID)
		}
		if _, seen := visited[link.ID]; seen {
			return fmt.Errorf("%w: %s revisited", ErrCycle, link.ID)
		}
		if movingID != uuid.Nil && link.ID == movingID {
			return fmt.Errorf("%w: %s is a descendant of the moved item", ErrCycle, candidateParent)
		}
		visited[link.ID] = struct{}{}

		if link.ParentID == nil || *link.ParentID == uuid.Nil {
			return nil
		}
		current = *link.ParentID
	}
}
