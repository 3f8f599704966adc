package placement

import "time"

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ParentID  *string           `json:"parent_id"`
	Order     int               `json:"order"`
	CardCount int               `json:"card_count"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Children  []*FolderTreeNode `json:"children"`
}

// OrphanReason explains why a folder was promoted to root while building a tree
type OrphanReason string

const (
	// OrphanMissingParent means parent_id did not resolve inside the input set
	OrphanMissingParent OrphanReason = "missing_parent"
	// OrphanCycle means the folder sat on a parent_id cycle
	OrphanCycle OrphanReason = "cycle"
)

// Orphan records a folder the tree builder promoted to root
type Orphan struct {
	FolderID string       `json:"folder_id"`
	ParentID string       `json:"parent_id"`
	Reason   OrphanReason `json:"reason"`
}

// Tree is the result of building a nested tree from flat folder rows
type Tree struct {
	Roots   []*FolderTreeNode `json:"folders"`
	Orphans []Orphan          `json:"-"`
}

// Size counts every node reachable from the roots
func (t *Tree) Size() int {
	n := 0
	var walk func(nodes []*FolderTreeNode)
	walk = func(nodes []*FolderTreeNode) {
		for _, node := range nodes {
			n++
			walk(node.Children)
		}
	}
	walk(t.Roots)
	return n
}
