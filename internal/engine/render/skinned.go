package render

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kverness/armature/internal/engine/model"
	"github.com/kverness/armature/internal/engine/scene"
	"github.com/kverness/armature/internal/engine/skin"
)

// skinVertex is the interleaved GPU layout for skinned geometry. Bone
// indices travel as floats so the vertex shader can index the palette
// without integer attributes.
type skinVertex struct {
	position [3]float32
	normal   [3]float32
	texCoord [2]float32
	boneIDs  [4]float32
	weights  [4]float32
}

// buildSkinVertices interleaves mesh vertices with their strongest
// bone influences. Vertices without influences keep zero weights and
// collapse to the origin in the shader.
func buildSkinVertices(m *model.Mesh) []skinVertex {
	verts := make([]skinVertex, len(m.Vertices))
	for i, v := range m.Vertices {
		sv := skinVertex{
			position: v.Position,
			normal:   v.Normal,
			texCoord: v.TexCoord,
		}

		var candidates []skin.Influence
		if i < len(m.Influences) {
			candidates = m.Influences[i]
		}
		w := skin.TopInfluences(candidates)
		for j := 0; j < skin.MaxVertexBones; j++ {
			sv.boneIDs[j] = float32(w.Joints[j])
			sv.weights[j] = w.Weights[j]
		}
		verts[i] = sv
	}
	return verts
}

// SkinnedMesh renders geometry deformed by a bone matrix palette. It
// is the GPU half behind skin.Mesh.
type SkinnedMesh struct {
	r *Renderer

	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32

	tex      uint32
	material model.Material
	sampling sampling
}

func newSkinnedMesh(r *Renderer, m *model.Mesh, tex uint32) (*SkinnedMesh, error) {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return nil, fmt.Errorf("mesh %s: %w", m.Name, ErrEmptyMesh)
	}

	sm := &SkinnedMesh{
		r:          r,
		indexCount: int32(len(m.Indices)),
		tex:        tex,
		material:   m.Material,
		sampling:   defaultSampling(),
	}

	vertices := buildSkinVertices(m)

	gl.GenVertexArrays(1, &sm.vao)
	gl.BindVertexArray(sm.vao)

	gl.GenBuffers(1, &sm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, sm.vbo)
	vertexSize := int(unsafe.Sizeof(skinVertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*vertexSize, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)
	// Bone IDs
	gl.VertexAttribPointerWithOffset(3, 4, gl.FLOAT, false, int32(vertexSize), 8*4)
	gl.EnableVertexAttribArray(3)
	// Bone weights
	gl.VertexAttribPointerWithOffset(4, 4, gl.FLOAT, false, int32(vertexSize), 12*4)
	gl.EnableVertexAttribArray(4)

	gl.GenBuffers(1, &sm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, sm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return sm, nil
}

// DrawSkinned renders the mesh with the given bone palette. The bone
// matrices already carry the node hierarchy, so the world matrix of
// the attachment node is not applied to positions.
func (sm *SkinnedMesh) DrawSkinned(projection, view, world mgl32.Mat4, bones []mgl32.Mat4) {
	if len(bones) == 0 {
		return
	}

	r := sm.r
	r.bindCommon(r.skinnedProgram, r.skinned, projection, view, sm.material)
	gl.UniformMatrix4fv(r.skinned.locBones, int32(len(bones)), false, &bones[0][0])

	gl.BindTexture(gl.TEXTURE_2D, sm.tex)
	gl.BindVertexArray(sm.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, sm.indexCount, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

// HandleKey cycles the texture sampling modes.
func (sm *SkinnedMesh) HandleKey(key scene.Key) {
	sm.sampling.handleKey(key, sm.tex)
}

func (sm *SkinnedMesh) destroy() {
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
