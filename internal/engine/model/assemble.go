package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kverness/armature/internal/engine/scene"
	"github.com/kverness/armature/internal/engine/skin"
	"github.com/kverness/armature/pkg/keyframe"
)

// Assembly errors.
var (
	ErrMissingBone       = errors.New("bone not present in hierarchy")
	ErrMissingAttachment = errors.New("attachment node not present in hierarchy")
	ErrNoRoots           = errors.New("document has no root nodes")
)

// DrawableFactory builds the drawable for one mesh. The binding is nil for
// static meshes; skinned meshes receive one already validated against the
// graph.
type DrawableFactory func(m *Mesh, binding *skin.Binding) (scene.Drawable, error)

// Assemble builds the scene tree for a document: every hierarchy node
// becomes a graph-registered scene node, animated where channels exist,
// and each mesh is built through the factory and attached under its node.
// Any bone or attachment name that fails to resolve aborts the build.
func Assemble(doc *Document, graph *scene.Graph, factory DrawableFactory) (*scene.Node, error) {
	nodes := make([]*scene.Node, len(doc.Nodes))
	for i := range doc.Nodes {
		dn := &doc.Nodes[i]
		track, err := nodeTrack(doc, dn)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", dn.Name, err)
		}
		n := scene.NewNode(dn.Name, dn.Local, track)
		if _, err := graph.Add(n); err != nil {
			return nil, fmt.Errorf("registering node: %w", err)
		}
		nodes[i] = n
	}

	for i := range doc.Nodes {
		for _, c := range doc.Nodes[i].Children {
			if c < 0 || c >= len(nodes) {
				return nil, fmt.Errorf("node %q: child %d out of range", doc.Nodes[i].Name, c)
			}
			nodes[i].Add(nodes[c])
		}
	}

	root, err := rootNode(doc, nodes)
	if err != nil {
		return nil, err
	}

	for i := range doc.Meshes {
		m := &doc.Meshes[i]

		var binding *skin.Binding
		if m.Skinned() {
			ids := make([]scene.NodeID, len(m.BoneNames))
			for bi, bone := range m.BoneNames {
				id, ok := graph.Lookup(bone)
				if !ok {
					return nil, fmt.Errorf("mesh %q: %w: %q", m.Name, ErrMissingBone, bone)
				}
				ids[bi] = id
			}
			binding, err = skin.NewBinding(graph, ids, m.BoneOffsets)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
			}
		}

		drawable, err := factory(m, binding)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
		}

		parent := root
		if m.AttachTo != "" {
			id, ok := graph.Lookup(m.AttachTo)
			if !ok {
				return nil, fmt.Errorf("mesh %q: %w: %q", m.Name, ErrMissingAttachment, m.AttachTo)
			}
			parent = graph.Node(id)
		}
		parent.Add(drawable)
	}

	return root, nil
}

func rootNode(doc *Document, nodes []*scene.Node) (*scene.Node, error) {
	for _, r := range doc.Roots {
		if r < 0 || r >= len(nodes) {
			return nil, fmt.Errorf("root %d out of range", r)
		}
	}
	switch len(doc.Roots) {
	case 0:
		return nil, ErrNoRoots
	case 1:
		return nodes[doc.Roots[0]], nil
	default:
		// Multiple scene roots hang under a synthetic one. It carries no
		// name worth registering; nothing references it as a bone.
		root := scene.NewNode(doc.Name, mgl32.Ident4(), nil)
		for _, r := range doc.Roots {
			root.Add(nodes[r])
		}
		return root, nil
	}
}

// nodeTrack builds the node's transform track. Missing channel components
// become single-key constants from the bind pose, so a partially animated
// node keeps its static components; a node with no channel at all stays a
// static node.
func nodeTrack(doc *Document, dn *Node) (*keyframe.TransformTrack, error) {
	ch, ok := doc.Channels[dn.Name]
	if !ok || ch.Empty() {
		return nil, nil
	}

	translation := ch.Translation
	if len(translation) == 0 {
		translation = []keyframe.Key[mgl32.Vec3]{{Time: 0, Value: dn.Translation}}
	}
	rotation := ch.Rotation
	if len(rotation) == 0 {
		rotation = []keyframe.Key[mgl32.Quat]{{Time: 0, Value: dn.Rotation}}
	}
	scale := ch.Scale
	if len(scale) == 0 {
		scale = []keyframe.Key[mgl32.Vec3]{{Time: 0, Value: dn.Scale}}
	}
	return keyframe.NewTransformTrack(translation, rotation, scale)
}
