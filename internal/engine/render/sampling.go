package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/kverness/armature/internal/engine/scene"
)

// Sampling modes cycled from the keyboard while inspecting a model.
var (
	wrapModes = []int32{gl.REPEAT, gl.MIRRORED_REPEAT, gl.CLAMP_TO_EDGE}

	// min/mag filter pairs
	filterModes = [][2]int32{
		{gl.NEAREST, gl.NEAREST},
		{gl.LINEAR, gl.LINEAR},
		{gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR},
	}
)

// sampling tracks which wrap and filter mode a mesh texture uses.
type sampling struct {
	wrapIdx   int
	filterIdx int
}

// defaultSampling matches the parameters uploadTexture sets.
func defaultSampling() sampling {
	return sampling{wrapIdx: 0, filterIdx: 2}
}

func (s *sampling) cycleWrap(tex uint32) {
	s.wrapIdx = (s.wrapIdx + 1) % len(wrapModes)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapModes[s.wrapIdx])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapModes[s.wrapIdx])
}

func (s *sampling) cycleFilter(tex uint32) {
	s.filterIdx = (s.filterIdx + 1) % len(filterModes)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filterModes[s.filterIdx][0])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filterModes[s.filterIdx][1])
}

// handleKey applies the texture inspection keys shared by both mesh
// kinds: F6 cycles wrap modes, F7 cycles filters.
func (s *sampling) handleKey(key scene.Key, tex uint32) {
	switch sdl.Scancode(key) {
	case sdl.SCANCODE_F6:
		s.cycleWrap(tex)
	case sdl.SCANCODE_F7:
		s.cycleFilter(tex)
	}
}
