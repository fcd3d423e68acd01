package sexpr

import (
	"fmt"
	"strconv"
)

// S-expression navigation helpers

// NodeName returns the first atom of a list (the node type/name).
func NodeName(n Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("nil node")
	}
	if n.IsLeaf() {
		if atom, ok := n.(Atom); ok {
			return string(atom), nil
		}
		return "", fmt.Errorf("expected atom leaf")
	}

	items := n.(*List).Items()
	if len(items) == 0 {
		return "", fmt.Errorf("empty list")
	}
	if atom, ok := items[0].(Atom); ok {
		return string(atom), nil
	}
	return "", fmt.Errorf("expected atom at head of list")
}

// FindNode searches for a child list whose first atom is key.
// Example: FindNode(node, "at") finds (at 100 50) among the children.
func FindNode(n Node, key string) (*List, bool) {
	if n == nil || n.IsLeaf() {
		return nil, false
	}

	for _, item := range n.(*List).Items() {
		sub, ok := item.(*List)
		if !ok {
			continue
		}
		if name, err := NodeName(sub); err == nil && name == key {
			return sub, true
		}
	}

	return nil, false
}

// FindAllNodes finds all child lists whose first atom is key.
func FindAllNodes(n Node, key string) []*List {
	var results []*List

	if n == nil || n.IsLeaf() {
		return results
	}

	for _, item := range n.(*List).Items() {
		sub, ok := item.(*List)
		if !ok {
			continue
		}
		if name, err := NodeName(sub); err == nil && name == key {
			results = append(results, sub)
		}
	}

	return results
}

// Typed value extraction helpers

// GetString extracts the atom value at the given index in a list.
// Index 0 is the key, 1 is the first value, etc.
func GetString(n Node, index int) (string, error) {
	if n == nil || n.IsLeaf() {
		return "", fmt.Errorf("expected list, got leaf")
	}

	items := n.(*List).Items()
	if index < 0 || index >= len(items) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(items))
	}

	if atom, ok := items[index].(Atom); ok {
		return string(atom), nil
	}

	return "", fmt.Errorf("expected atom at index %d, got %T", index, items[index])
}

// GetFloat extracts a float64 value at the given index
func GetFloat(n Node, index int) (float64, error) {
	str, err := GetString(n, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}

	return val, nil
}

// GetInt extracts an int value at the given index
func GetInt(n Node, index int) (int, error) {
	str, err := GetString(n, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}

	return val, nil
}

// HasAtom checks if a list contains the given bare atom.
func HasAtom(n Node, atom string) bool {
	if n == nil || n.IsLeaf() {
		return false
	}

	for _, item := range n.(*List).Items() {
		if a, ok := item.(Atom); ok && string(a) == atom {
			return true
		}
	}

	return false
}
