package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// NodeID identifies a hierarchy node for the lifetime of a wizard session.
// IDs are assigned once and never reused, even after deletion.
type NodeID int

// HierarchyNode is one level of an organizational tree.
// Name and ParentID are fixed at creation; only Quantity changes afterwards.
type HierarchyNode struct {
	ID       NodeID
	Name     string
	ParentID *NodeID
	Quantity int
}

// IsRoot reports whether the node has no parent.
func (n HierarchyNode) IsRoot() bool {
	return n.ParentID == nil
}

// HierarchyTree is an in-memory forest of hierarchy nodes kept in insertion order.
// Node counts are small (bounded by MaxUsers), so lookups are linear scans.
type HierarchyTree struct {
	nodes  []HierarchyNode
	nextID NodeID
}

// NewHierarchyTree returns an empty tree.
func NewHierarchyTree() *HierarchyTree {
	return &HierarchyTree{nextID: 1}
}

var nameFolder = cases.Fold()

func foldName(name string) string {
	return nameFolder.String(strings.TrimSpace(name))
}

// AddNode appends a node and returns its id. The parent, when given, must
// already exist, which keeps the parent graph acyclic.
func (t *HierarchyTree) AddNode(name string, parentID *NodeID, quantity int) (NodeID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &ValidationError{Field: "name", Message: "name is required"}
	}
	if _, exists := t.FindByName(name); exists {
		return 0, &ValidationError{Field: "name", Message: fmt.Sprintf("a level named %q already exists", name)}
	}
	if quantity < 1 {
		return 0, &ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
	}
	if parentID != nil {
		if _, ok := t.Node(*parentID); !ok {
			return 0, &ValidationError{Field: "parentId", Message: fmt.Sprintf("parent %d does not exist", *parentID)}
		}
	}
	if !CanAccommodate(t, quantity) {
		return 0, &ValidationError{
			Field:   "quantity",
			Message: fmt.Sprintf("only %d of %d user slots remain", RemainingCapacity(t), MaxUsers),
		}
	}

	id := t.nextID
	t.nextID++

	node := HierarchyNode{ID: id, Name: name, Quantity: quantity}
	if parentID != nil {
		p := *parentID
		node.ParentID = &p
	}
	t.nodes = append(t.nodes, node)

	return id, nil
}

// RemoveNode deletes the node and its whole subtree. Unknown ids are ignored.
func (t *HierarchyTree) RemoveNode(id NodeID) {
	if _, ok := t.Node(id); !ok {
		return
	}

	doomed := map[NodeID]bool{}
	stack := []NodeID{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if doomed[current] {
			continue
		}
		doomed[current] = true
		for _, child := range t.ChildrenOf(current) {
			stack = append(stack, child.ID)
		}
	}

	kept := make([]HierarchyNode, 0, len(t.nodes)-len(doomed))
	for _, n := range t.nodes {
		if !doomed[n.ID] {
			kept = append(kept, n)
		}
	}
	t.nodes = kept
}

// UpdateQuantity sets the node's quantity, clamped into
// [1, MaxUsers - quantity of every other node]. It returns the stored value.
func (t *HierarchyTree) UpdateQuantity(id NodeID, quantity int) (int, error) {
	idx := t.indexOf(id)
	if idx < 0 {
		return 0, &ValidationError{Field: "id", Message: fmt.Sprintf("level %d does not exist", id)}
	}

	others := t.TotalQuantity() - t.nodes[idx].Quantity
	upper := MaxUsers - others
	quantity = min(quantity, upper)
	quantity = max(quantity, 1)

	t.nodes[idx].Quantity = quantity
	return quantity, nil
}

// RootNodes returns the nodes without a parent, in insertion order.
func (t *HierarchyTree) RootNodes() []HierarchyNode {
	var out []HierarchyNode
	for _, n := range t.nodes {
		if n.ParentID == nil {
			out = append(out, n)
		}
	}
	return out
}

// ChildrenOf returns the direct children of id, in insertion order.
func (t *HierarchyTree) ChildrenOf(id NodeID) []HierarchyNode {
	var out []HierarchyNode
	for _, n := range t.nodes {
		if n.ParentID != nil && *n.ParentID == id {
			out = append(out, n)
		}
	}
	return out
}

// TotalQuantity sums quantity across all nodes.
func (t *HierarchyTree) TotalQuantity() int {
	total := 0
	for _, n := range t.nodes {
		total += n.Quantity
	}
	return total
}

// Node returns the node with the given id.
func (t *HierarchyTree) Node(id NodeID) (HierarchyNode, bool) {
	if idx := t.indexOf(id); idx >= 0 {
		return t.nodes[idx], true
	}
	return HierarchyNode{}, false
}

// FindByName looks a node up by name, ignoring case.
func (t *HierarchyTree) FindByName(name string) (HierarchyNode, bool) {
	folded := foldName(name)
	for _, n := range t.nodes {
		if foldName(n.Name) == folded {
			return n, true
		}
	}
	return HierarchyNode{}, false
}

// Nodes returns a copy of all nodes in insertion order.
func (t *HierarchyTree) Nodes() []HierarchyNode {
	out := make([]HierarchyNode, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Len returns the number of nodes.
func (t *HierarchyTree) Len() int {
	return len(t.nodes)
}

func (t *HierarchyTree) indexOf(id NodeID) int {
	for i, n := range t.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// HierarchyLevel is the wire shape of a node: the remote API keys parents by name.
type HierarchyLevel struct {
	Name     string
	Parent   *string
	Quantity int
}

// Levels translates the tree into submission records, replacing parent ids
// with parent names.
func (t *HierarchyTree) Levels() []HierarchyLevel {
	names := make(map[NodeID]string, len(t.nodes))
	for _, n := range t.nodes {
		names[n.ID] = n.Name
	}

	out := make([]HierarchyLevel, 0, len(t.nodes))
	for _, n := range t.nodes {
		level := HierarchyLevel{Name: n.Name, Quantity: n.Quantity}
		if n.ParentID != nil {
			parent := names[*n.ParentID]
			level.Parent = &parent
		}
		out = append(out, level)
	}
	return out
}
