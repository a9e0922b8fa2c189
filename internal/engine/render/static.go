package render

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kverness/armature/internal/engine/model"
	"github.com/kverness/armature/internal/engine/scene"
)

// StaticMesh renders non-skinned geometry with the world matrix of the
// node it hangs under.
type StaticMesh struct {
	r *Renderer

	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32

	tex      uint32
	material model.Material
	sampling sampling
}

func newStaticMesh(r *Renderer, m *model.Mesh, tex uint32) (*StaticMesh, error) {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return nil, fmt.Errorf("mesh %s: %w", m.Name, ErrEmptyMesh)
	}

	sm := &StaticMesh{
		r:          r,
		indexCount: int32(len(m.Indices)),
		tex:        tex,
		material:   m.Material,
		sampling:   defaultSampling(),
	}

	gl.GenVertexArrays(1, &sm.vao)
	gl.BindVertexArray(sm.vao)

	gl.GenBuffers(1, &sm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, sm.vbo)
	vertexSize := int(unsafe.Sizeof(model.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*vertexSize, unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &sm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, sm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return sm, nil
}

// Draw renders the mesh.
func (sm *StaticMesh) Draw(projection, view, world mgl32.Mat4) {
	r := sm.r
	r.bindCommon(r.staticProgram, r.static, projection, view, sm.material)
	gl.UniformMatrix4fv(r.static.locModel, 1, false, &world[0])

	gl.BindTexture(gl.TEXTURE_2D, sm.tex)
	gl.BindVertexArray(sm.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, sm.indexCount, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

// HandleKey cycles the texture sampling modes.
func (sm *StaticMesh) HandleKey(key scene.Key) {
	sm.sampling.handleKey(key, sm.tex)
}

func (sm *StaticMesh) destroy() {
	if sm.vao != 0 {
		gl.DeleteVertexArrays(1, &sm.vao)
		sm.vao = 0
	}
	if sm.vbo != 0 {
		gl.DeleteBuffers(1, &sm.vbo)
		sm.vbo = 0
	}
	if sm.ebo != 0 {
		gl.DeleteBuffers(1, &sm.ebo)
		sm.ebo = 0
	}
}
