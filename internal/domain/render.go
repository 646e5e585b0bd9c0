package domain

import (
	"fmt"
	"io"
	"strings"
)

// TreeReader is the read side of a hierarchy used by renderers.
type TreeReader interface {
	RootNodes() []HierarchyNode
	ChildrenOf(id NodeID) []HierarchyNode
}

// WalkTree visits every node depth-first, roots first, in insertion order.
func WalkTree(t TreeReader, visit func(node HierarchyNode, depth int)) {
	var walk func(nodes []HierarchyNode, depth int)
	walk = func(nodes []HierarchyNode, depth int) {
		for _, n := range nodes {
			visit(n, depth)
			walk(t.ChildrenOf(n.ID), depth+1)
		}
	}
	walk(t.RootNodes(), 0)
}

// RenderTree writes an indented outline of the hierarchy, one level per line.
func RenderTree(w io.Writer, t TreeReader) error {
	var err error
	WalkTree(t, func(n HierarchyNode, depth int) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, "%s- %s (%d)\n", strings.Repeat("  ", depth), n.Name, n.Quantity)
	})
	return err
}

// NestedNode is a hierarchy node together with its subtree.
type NestedNode struct {
	HierarchyNode
	Children []NestedNode
}

// NestTree builds the nested representation of the forest.
func NestTree(t TreeReader) []NestedNode {
	var nest func(nodes []HierarchyNode) []NestedNode
	nest = func(nodes []HierarchyNode) []NestedNode {
		out := make([]NestedNode, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, NestedNode{HierarchyNode: n, Children: nest(t.ChildrenOf(n.ID))})
		}
		return out
	}
	return nest(t.RootNodes())
}
