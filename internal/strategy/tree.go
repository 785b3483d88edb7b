package strategy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Node is either an integer leaf or a mapping from path segment to child node.
type Node struct {
	leaf     bool
	value    int
	children map[string]*Node
	order    []string
}

// Tree is the nested variable mapping of a state, rooted at a mapping node.
type Tree struct {
	root *Node
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{root: newMapNode()}
}

func newMapNode() *Node {
	return &Node{children: make(map[string]*Node)}
}

// IndexedKey returns the segment name used for an indexed path element, e.g. obs_state[2].
func IndexedKey(name string, index int) string {
	return name + "[" + strconv.Itoa(index) + "]"
}

// IsLeaf reports whether n holds an integer.
func (n *Node) IsLeaf() bool {
	return n != nil && n.leaf
}

// Value returns the integer held by a leaf node.
func (n *Node) Value() (int, bool) {
	if n == nil || !n.leaf {
		return 0, false
	}
	return n.value, true
}

// Keys returns the child segment names in first-insertion order.
func (n *Node) Keys() []string {
	if n == nil || n.leaf {
		return nil
	}
	return n.order
}

// Child returns the named child of a mapping node.
func (n *Node) Child(key string) (*Node, bool) {
	if n == nil || n.leaf {
		return nil, false
	}
	c, ok := n.children[key]
	return c, ok
}

// Insert assigns value at path, creating intermediate mappings. An existing
// node at the leaf position is overwritten. Descending through an integer
// leaf is an error.
func (t *Tree) Insert(path []string, value int) error {
	if len(path) == 0 {
		return fmt.Errorf("empty path")
	}
	cur := t.root
	for i, seg := range path[:len(path)-1] {
		next, ok := cur.children[seg]
		if !ok {
			next = newMapNode()
			cur.set(seg, next)
		} else if next.leaf {
			return fmt.Errorf("%s is an integer, cannot hold %s", strings.Join(path[:i+1], "."), path[i+1])
		}
		cur = next
	}
	cur.set(path[len(path)-1], &Node{leaf: true, value: value})
	return nil
}

func (n *Node) set(key string, child *Node) {
	if _, exists := n.children[key]; !exists {
		n.order = append(n.order, key)
	}
	n.children[key] = child
}

// Lookup returns the node at path. An empty path returns the root.
func (t *Tree) Lookup(path ...string) (*Node, bool) {
	cur := t.root
	for _, seg := range path {
		next, ok := cur.Child(seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Int returns the integer leaf at path, or def if the path is absent or not a leaf.
func (t *Tree) Int(def int, path ...string) int {
	n, ok := t.Lookup(path...)
	if !ok {
		return def
	}
	if v, ok := n.Value(); ok {
		return v
	}
	return def
}

// Has reports whether any node exists at path.
func (t *Tree) Has(path ...string) bool {
	_, ok := t.Lookup(path...)
	return ok
}

// Equal reports deep equality, ignoring insertion order.
func (t *Tree) Equal(other *Tree) bool {
	if t == nil || other == nil {
		return t == other
	}
	return nodesEqual(t.root, other.root)
}

func nodesEqual(a, b *Node) bool {
	if a.leaf != b.leaf {
		return false
	}
	if a.leaf {
		return a.value == b.value
	}
	if len(a.children) != len(b.children) {
		return false
	}
	for k, ac := range a.children {
		bc, ok := b.children[k]
		if !ok || !nodesEqual(ac, bc) {
			return false
		}
	}
	return true
}

// Canonical renders the tree depth-first with sorted keys, e.g.
// {cps_state:{vel:500},phase:1}. Two trees are Equal iff their Canonical forms match.
func (t *Tree) Canonical() string {
	var b strings.Builder
	writeCanonical(&b, t.root)
	return b.String()
}

func writeCanonical(b *strings.Builder, n *Node) {
	if n.leaf {
		b.WriteString(strconv.Itoa(n.value))
		return
	}
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		writeCanonical(b, n.children[k])
	}
	b.WriteByte('}')
}
