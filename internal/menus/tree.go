package menus

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// BuildForest assembles a flat item list into ordered root trees.
//
// Tombstoned items are dropped together with their whole subtree, even when
// descendants are themselves live; the same holds for inactive items unless
// opts.IncludeInactive is set. Items whose parent is missing from the list are
// unreachable and dropped as well. Input records are not modified.
func BuildForest(items []*MenuItem, opts TreeOptions) []*MenuItem {
	if len(items) == 0 {
		return nil
	}

	nodes := make(map[uuid.UUID]*MenuItem, len(items))
	for _, item := range items {
		if item == nil || item.IsDeleted() {
			continue
		}
		if !opts.IncludeInactive && !item.Active {
			continue
		}
		clone := *item
		clone.Children = nil
		nodes[clone.ID] = &clone
	}

	children := make(map[uuid.UUID][]*MenuItem, len(nodes))
	var roots []*MenuItem
	for _, node := range nodes {
		if node.ParentID == nil || *node.ParentID == uuid.Nil {
			roots = append(roots, node)
			continue
		}
		children[*node.ParentID] = append(children[*node.ParentID], node)
	}

	visited := make(map[uuid.UUID]struct{}, len(nodes))
	var attach func(node *MenuItem)
	attach = func(node *MenuItem) {
		visited[node.ID] = struct{}{}
		kids := children[node.ID]
		sortSiblings(kids)
		for _, child := range kids {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			node.Children = append(node.Children, child)
			attach(child)
		}
	}

	sortSiblings(roots)
	for _, root := range roots {
		attach(root)
	}
	return roots
}

// sortSiblings orders by Order, then creation time, then id.
func sortSiblings(items []*MenuItem) {
	slices.SortFunc(items, compareSiblings)
}

func compareSiblings(a, b *MenuItem) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

// WalkForest visits every node depth first, parents before children.
func WalkForest(forest []*MenuItem, visit func(item *MenuItem, depth int)) {
	var walk func(nodes []*MenuItem, depth int)
	walk = func(nodes []*MenuItem, depth int) {
		for _, node := range nodes {
			visit(node, depth)
			walk(node.Children, depth+1)
		}
	}
	walk(forest, 0)
}

// CountNodes returns the number of items in a forest.
func CountNodes(forest []*MenuItem) int {
	total := 0
	WalkForest(forest, func(*MenuItem, int) { total++ })
	return total
}
