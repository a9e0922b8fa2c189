package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrDuplicateName rejects registering two nodes under one name.
var ErrDuplicateName = errors.New("node name already registered")

// NodeID is a stable handle into a Graph. Drawables hold NodeIDs as bone
// back-references instead of aliasing pointers into the tree, so ownership
// stays strictly hierarchical.
type NodeID int

// Graph is an append-only arena of named nodes. The tree built from these
// nodes defines ownership; the graph only provides stable, name-addressable
// handles to them.
type Graph struct {
	nodes  []*Node
	byName map[string]NodeID
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{byName: make(map[string]NodeID)}
}

// Add registers a node and returns its handle. Names must be unique; bone
// lookups resolve by name.
func (g *Graph) Add(n *Node) (NodeID, error) {
	if _, exists := g.byName[n.name]; exists {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateName, n.name)
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.byName[n.name] = id
	return id, nil
}

// Lookup resolves a node name to its handle.
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Node returns the node behind a handle.
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// World returns the referenced node's world transform as stored by the
// current frame's update pass.
func (g *Graph) World(id NodeID) mgl32.Mat4 {
	return g.nodes[id].world
}

// Valid reports whether the handle refers to a registered node.
func (g *Graph) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}
