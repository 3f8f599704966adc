package placement

import (
	"sort"
	"strings"

	models "cardshelf/internal/domain/models/placement"
)

// BuildTree nests a flat list of folders by parent id.
//
// Every input id appears exactly once in the result. A folder whose parent is not
// in the input is promoted to root; a folder on a parent cycle has the cycle cut at
// its lowest id. Both cases are reported in Tree.Orphans. The input is not modified.
func BuildTree(records []models.Folder) *models.Tree {
	nodes := make(map[string]*models.FolderTreeNode, len(records))
	parentOf := make(map[string]string, len(records))
	ids := make([]string, 0, len(records))

	// First pass: index every record
	for _, f := range records {
		if _, dup := nodes[f.ID]; dup {
			continue
		}
		nodes[f.ID] = &models.FolderTreeNode{
			ID:        f.ID,
			Name:      f.Name,
			ParentID:  copyID(f.ParentID),
			Order:     f.Order,
			CardCount: f.CardCount,
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
			Children:  []*models.FolderTreeNode{},
		}
		ids = append(ids, f.ID)
	}

	tree := &models.Tree{Roots: []*models.FolderTreeNode{}}

	// Second pass: attach to parents, falling back to root
	for _, id := range ids {
		node := nodes[id]
		switch {
		case node.ParentID == nil:
			tree.Roots = append(tree.Roots, node)
		case nodes[*node.ParentID] == nil:
			tree.Orphans = append(tree.Orphans, models.Orphan{
				FolderID: id,
				ParentID: *node.ParentID,
				Reason:   models.OrphanMissingParent,
			})
			node.ParentID = nil
			tree.Roots = append(tree.Roots, node)
		default:
			parent := nodes[*node.ParentID]
			parent.Children = append(parent.Children, node)
			parentOf[id] = parent.ID
		}
	}

	// Whatever is not reachable from a root hangs off a cycle
	reached := make(map[string]bool, len(nodes))
	for _, root := range tree.Roots {
		markReached(root, reached)
	}
	if len(reached) < len(nodes) {
		breakCycles(tree, nodes, parentOf, ids, reached)
	}

	sortNodes(tree.Roots)
	for _, node := range nodes {
		sortNodes(node.Children)
	}
	return tree
}

func breakCycles(tree *models.Tree, nodes map[string]*models.FolderTreeNode, parentOf map[string]string, ids []string, reached map[string]bool) {
	pending := make([]string, 0)
	for _, id := range ids {
		if !reached[id] {
			pending = append(pending, id)
		}
	}
	sort.Strings(pending)

	for _, start := range pending {
		if reached[start] {
			continue
		}

		// Walk up until an id repeats; the repeat closes the cycle
		onPath := make(map[string]bool)
		cur := start
		for !onPath[cur] {
			onPath[cur] = true
			cur = parentOf[cur]
		}
		cut := cur
		for id := parentOf[cur]; id != cur; id = parentOf[id] {
			if id < cut {
				cut = id
			}
		}

		parentID := parentOf[cut]
		parent := nodes[parentID]
		parent.Children = removeChild(parent.Children, cut)
		delete(parentOf, cut)

		node := nodes[cut]
		node.ParentID = nil
		tree.Roots = append(tree.Roots, node)
		tree.Orphans = append(tree.Orphans, models.Orphan{
			FolderID: cut,
			ParentID: parentID,
			Reason:   models.OrphanCycle,
		})
		markReached(node, reached)
	}
}

func markReached(node *models.FolderTreeNode, reached map[string]bool) {
	stack := []*models.FolderTreeNode{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[n.ID] {
			continue
		}
		reached[n.ID] = true
		stack = append(stack, n.Children...)
	}
}

func removeChild(children []*models.FolderTreeNode, id string) []*models.FolderTreeNode {
	out := children[:0]
	for _, c := range children {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// sortNodes orders siblings by order, then name (case-insensitive), then id
func sortNodes(nodes []*models.FolderTreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name); la != lb {
			return la < lb
		}
		return a.ID < b.ID
	})
}

func copyID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
