package skin

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kverness/armature/internal/engine/scene"
)

// Backend draws GPU-resident skinned geometry. It receives the camera
// matrices, the drawable's model matrix and the bone matrix palette for
// this frame, and is expected to issue the draw call synchronously.
type Backend interface {
	DrawSkinned(projection, view, model mgl32.Mat4, bones []mgl32.Mat4)
}

// Mesh is the scene drawable for a skinned mesh. Each draw it refreshes the
// bone palette from its binding and forwards everything to the backend. The
// palette slice is reused across frames.
type Mesh struct {
	binding *Binding
	backend Backend
	bones   []mgl32.Mat4
}

// NewMesh wraps a binding and a backend into a drawable.
func NewMesh(binding *Binding, backend Backend) *Mesh {
	return &Mesh{
		binding: binding,
		backend: backend,
		bones:   make([]mgl32.Mat4, 0, binding.Len()),
	}
}

// Draw assembles the bone matrices and issues the backend draw.
func (m *Mesh) Draw(projection, view, model mgl32.Mat4) {
	m.bones = m.binding.Matrices(m.bones)
	m.backend.DrawSkinned(projection, view, model, m.bones)
}

// HandleKey forwards key events to backends that listen, such as texture
// mode toggles.
func (m *Mesh) HandleKey(key scene.Key) {
	if h, ok := m.backend.(scene.KeyHandler); ok {
		h.HandleKey(key)
	}
}
