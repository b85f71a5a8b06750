// Package hierarchy shapes self-referencing collection rows into display trees and
// validates parent changes.
package hierarchy

import (
	"sort"
	"time"
)

// Node is the part of a collection row the tree code needs.
type Node struct {
	ID       uint
	ParentID uint
	Sort     int
	OnlineAt *time.Time
}

// TreeNode wraps one input value and its ordered children.
type TreeNode[T any] struct {
	Value    T
	Children []*TreeNode[T]

	key Node
}

// IntegrityWarning reports a row whose parent chain loops back on itself.
// The row is shown at the root instead.
type IntegrityWarning struct {
	ID       uint
	ParentID uint
}

const (
	unvisited = iota
	onPath
	resolved
)

// BuildTree links items into a forest. Rows with no parent, or whose parent is not in
// items, become roots. Rows that are part of a parent cycle also become roots and are
// reported as warnings. Every level is ordered by sort, then onlineAt (unset last), then id.
// items is not modified.
func BuildTree[T any](items []T, key func(T) Node) ([]*TreeNode[T], []IntegrityWarning) {
	nodes := make(map[uint]*TreeNode[T], len(items))
	order := make([]*TreeNode[T], 0, len(items))
	for _, it := range items {
		k := key(it)
		if _, dup := nodes[k.ID]; dup {
			continue
		}
		n := &TreeNode[T]{Value: it, key: k}
		nodes[k.ID] = n
		order = append(order, n)
	}

	broken := findCycleMembers(order, nodes)

	var warnings []IntegrityWarning
	roots := make([]*TreeNode[T], 0)
	for _, n := range order {
		if broken[n.key.ID] {
			warnings = append(warnings, IntegrityWarning{ID: n.key.ID, ParentID: n.key.ParentID})
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[n.key.ParentID]
		if n.key.ParentID == 0 || !ok {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	sortLevel(roots)
	for _, n := range order {
		sortLevel(n.Children)
	}
	return roots, warnings
}

// findCycleMembers walks every parent chain once and returns the ids that sit on a loop.
func findCycleMembers[T any](order []*TreeNode[T], nodes map[uint]*TreeNode[T]) map[uint]bool {
	state := make(map[uint]int, len(order))
	broken := make(map[uint]bool)

	for _, start := range order {
		if state[start.key.ID] == resolved {
			continue
		}
		var path []uint
		pos := make(map[uint]int)
		cur := start.key.ID
		for {
			n, ok := nodes[cur]
			if !ok || state[cur] == resolved {
				break
			}
			if state[cur] == onPath {
				for _, id := range path[pos[cur]:] {
					broken[id] = true
				}
				break
			}
			state[cur] = onPath
			pos[cur] = len(path)
			path = append(path, cur)
			if n.key.ParentID == 0 {
				break
			}
			cur = n.key.ParentID
		}
		for _, id := range path {
			state[id] = resolved
		}
	}
	return broken
}

func sortLevel[T any](level []*TreeNode[T]) {
	sort.SliceStable(level, func(i, j int) bool {
		return Less(level[i].key, level[j].key)
	})
}

// Less orders siblings: sort ascending, then onlineAt ascending with unset values last, then id.
func Less(a, b Node) bool {
	if a.Sort != b.Sort {
		return a.Sort < b.Sort
	}
	switch {
	case a.OnlineAt != nil && b.OnlineAt == nil:
		return true
	case a.OnlineAt == nil && b.OnlineAt != nil:
		return false
	case a.OnlineAt != nil && b.OnlineAt != nil && !a.OnlineAt.Equal(*b.OnlineAt):
		return a.OnlineAt.Before(*b.OnlineAt)
	}
	return a.ID < b.ID
}

// Subtree returns rootID followed by its descendants in display order (pre-order).
// It returns nil when rootID is not among nodes.
func Subtree(nodes []Node, rootID uint) []uint {
	forest, _ := BuildTree(nodes, func(n Node) Node { return n })

	var start *TreeNode[Node]
	stack := append([]*TreeNode[Node](nil), forest...)
	for len(stack) > 0 && start == nil {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.key.ID == rootID {
			start = n
			break
		}
		stack = append(stack, n.Children...)
	}
	if start == nil {
		return nil
	}

	var out []uint
	stack = []*TreeNode[Node]{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n.key.ID)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}
