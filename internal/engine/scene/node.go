// Package scene provides the hierarchical transform graph for animated 3D
// scenes: nodes composing world matrices top-down, a two-pass
// update/draw traversal, and an arena of named nodes that skinned drawables
// reference as bones.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kverness/armature/pkg/keyframe"
)

// Key identifies a key event fanned out through the graph. Values are
// SDL keycodes; the graph itself never interprets them.
type Key int32

// Drawable is anything that can render itself given projection, view and
// model matrices. Leaf meshes and interior nodes both satisfy it.
type Drawable interface {
	Draw(projection, view, model mgl32.Mat4)
}

// Updater is implemented by drawables that refresh animated state before
// the draw pass. The frame time is injected explicitly; nothing in the
// graph reads a clock.
type Updater interface {
	Update(t float64, parentWorld mgl32.Mat4)
}

// KeyHandler is implemented by drawables that react to key events.
type KeyHandler interface {
	HandleKey(key Key)
}

// Node is one transform in the graph. It owns its children; the tree shape
// stays fixed during rendering while the transforms mutate each frame. A
// node with a transform track recomputes its local transform from the frame
// time; without one it keeps the static local transform it was built with.
type Node struct {
	name     string
	local    mgl32.Mat4
	track    *keyframe.TransformTrack
	world    mgl32.Mat4
	children []Drawable
}

// NewNode creates a node with a static local transform. A nil track means
// no animation.
func NewNode(name string, local mgl32.Mat4, track *keyframe.TransformTrack) *Node {
	return &Node{
		name:  name,
		local: local,
		track: track,
		world: mgl32.Ident4(),
	}
}

// Name returns the node's name.
func (n *Node) Name() string {
	return n.name
}

// Local returns the node's current local transform.
func (n *Node) Local() mgl32.Mat4 {
	return n.local
}

// World returns the world transform stored by the last update pass. Bone
// matrix assembly reads it after the same frame's Update has run.
func (n *Node) World() mgl32.Mat4 {
	return n.world
}

// Animated reports whether the node carries a transform track.
func (n *Node) Animated() bool {
	return n.track != nil
}

// Add appends children in draw order.
func (n *Node) Add(children ...Drawable) {
	n.children = append(n.children, children...)
}

// Update refreshes the node's local transform from the frame time, stores
// the accumulated world transform, and recurses into updatable children.
// It runs as the first of the two per-frame passes, so every node's world
// transform is current before any drawable renders.
func (n *Node) Update(t float64, parentWorld mgl32.Mat4) {
	if n.track != nil {
		n.local = n.track.Value(t)
	}
	n.world = parentWorld.Mul4(n.local)
	for _, child := range n.children {
		if u, ok := child.(Updater); ok {
			u.Update(t, n.world)
		}
	}
}

// Draw composes the model matrix from the parent's and forwards it to every
// child in insertion order. Locals were refreshed by Update, so the result
// matches the stored world transform.
func (n *Node) Draw(projection, view, parentWorld mgl32.Mat4) {
	model := parentWorld.Mul4(n.local)
	for _, child := range n.children {
		child.Draw(projection, view, model)
	}
}

// HandleKey fans the key out to every child that listens. The node itself
// does not filter.
func (n *Node) HandleKey(key Key) {
	for _, child := range n.children {
		if h, ok := child.(KeyHandler); ok {
			h.HandleKey(key)
		}
	}
}
