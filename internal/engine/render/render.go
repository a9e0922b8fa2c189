// Package render implements the OpenGL 4.1 mesh backends, one for
// static geometry and one for skinned geometry driven by a bone
// palette.
package render

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/kverness/armature/internal/engine/model"
	"github.com/kverness/armature/internal/engine/render/shaders"
	"github.com/kverness/armature/internal/engine/scene"
	"github.com/kverness/armature/internal/engine/shader"
	"github.com/kverness/armature/internal/engine/skin"
	"github.com/kverness/armature/internal/engine/texture"
	"github.com/kverness/armature/internal/logger"
)

// ErrEmptyMesh is returned when a mesh has no geometry to upload.
var ErrEmptyMesh = errors.New("mesh has no vertices")

// Light is a single directional light.
type Light struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
}

// DefaultLight returns a soft key light from above and behind the camera.
func DefaultLight() Light {
	return Light{
		Direction: mgl32.Vec3{-0.4, -1.0, -0.6},
		Color:     mgl32.Vec3{1, 1, 1},
	}
}

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// programLocs caches the uniform locations of one shader program.
// Locations for uniforms the program does not declare are -1, which
// OpenGL ignores on upload.
type programLocs struct {
	locProjection int32
	locView       int32
	locModel      int32
	locBones      int32
	locTexture    int32
	locViewPos    int32
	locLightDir   int32
	locLightColor int32
	locAmbient    int32
	locDiffuse    int32
	locSpecular   int32
	locShininess  int32
	locFogUse     int32
	locFogNear    int32
	locFogFar     int32
	locFogColor   int32
}

func lookupLocs(program uint32) programLocs {
	return programLocs{
		locProjection: shader.GetUniform(program, "uProjection"),
		locView:       shader.GetUniform(program, "uView"),
		locModel:      shader.GetUniform(program, "uModel"),
		locBones:      shader.GetUniform(program, "uBones"),
		locTexture:    shader.GetUniform(program, "uTexture"),
		locViewPos:    shader.GetUniform(program, "uViewPos"),
		locLightDir:   shader.GetUniform(program, "uLightDir"),
		locLightColor: shader.GetUniform(program, "uLightColor"),
		locAmbient:    shader.GetUniform(program, "uAmbient"),
		locDiffuse:    shader.GetUniform(program, "uDiffuse"),
		locSpecular:   shader.GetUniform(program, "uSpecular"),
		locShininess:  shader.GetUniform(program, "uShininess"),
		locFogUse:     shader.GetUniform(program, "uFogUse"),
		locFogNear:    shader.GetUniform(program, "uFogNear"),
		locFogFar:     shader.GetUniform(program, "uFogFar"),
		locFogColor:   shader.GetUniform(program, "uFogColor"),
	}
}

type destroyer interface {
	destroy()
}

// Renderer owns the shader programs, texture cache and frame state
// shared by all meshes it creates.
type Renderer struct {
	staticProgram  uint32
	skinnedProgram uint32
	static         programLocs
	skinned        programLocs

	light Light
	fog   Fog

	// Per-frame state set by BeginFrame.
	now float64
	eye mgl32.Vec3

	fallbackTex uint32
	textures    map[string]uint32
	baseDir     string

	fillIdx int
	meshes  []destroyer
}

var fillModes = []uint32{gl.FILL, gl.LINE, gl.POINT}

// New initializes OpenGL state and compiles the mesh programs.
// Must be called after the GL context exists.
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	r := &Renderer{
		light:    DefaultLight(),
		fog:      DefaultFog(),
		textures: make(map[string]uint32),
	}

	var err error
	r.staticProgram, err = shader.CompileProgram(shaders.StaticVertexShader, shaders.PhongFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("static mesh shader: %w", err)
	}
	r.static = lookupLocs(r.staticProgram)

	r.skinnedProgram, err = shader.CompileProgram(shaders.SkinnedVertexShader, shaders.PhongFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("skinned mesh shader: %w", err)
	}
	r.skinned = lookupLocs(r.skinnedProgram)

	r.fallbackTex = checkerTexture()

	return r, nil
}

// SetBaseDir sets the directory texture paths resolve against,
// normally the directory of the model file being loaded.
func (r *Renderer) SetBaseDir(dir string) {
	r.baseDir = dir
}

// SetLight replaces the scene light.
func (r *Renderer) SetLight(l Light) {
	r.light = l
}

// SetFog replaces the fog settings.
func (r *Renderer) SetFog(f Fog) {
	r.fog = f
}

// Drawable builds the GPU mesh for m. Meshes with a binding get the
// skinned pipeline, the rest the static one. Satisfies
// model.DrawableFactory.
func (r *Renderer) Drawable(m *model.Mesh, binding *skin.Binding) (scene.Drawable, error) {
	tex := r.textureFor(m.Material.Texture)
	if binding != nil {
		backend, err := newSkinnedMesh(r, m, tex)
		if err != nil {
			return nil, err
		}
		r.meshes = append(r.meshes, backend)
		return skin.NewMesh(binding, backend), nil
	}

	sm, err := newStaticMesh(r, m, tex)
	if err != nil {
		return nil, err
	}
	r.meshes = append(r.meshes, sm)
	return sm, nil
}

// BeginFrame clears the framebuffer and records the frame time and eye
// position used by the lighting and fog uniforms.
func (r *Renderer) BeginFrame(now float64, eye mgl32.Vec3) {
	r.now = now
	r.eye = eye

	// Background follows the fog colour for a clean horizon.
	c := r.fog.Cycle.Color(now)
	gl.ClearColor(c.X(), c.Y(), c.Z(), 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// CyclePolygonMode switches fill, wireframe and point rendering.
func (r *Renderer) CyclePolygonMode() {
	r.fillIdx = (r.fillIdx + 1) % len(fillModes)
	gl.PolygonMode(gl.FRONT_AND_BACK, fillModes[r.fillIdx])
}

// ClearMeshes destroys every mesh the renderer has created, ahead of
// loading a replacement model. The texture cache stays warm.
func (r *Renderer) ClearMeshes() {
	for _, m := range r.meshes {
		m.destroy()
	}
	r.meshes = nil
}

// bindCommon uploads the uniforms shared by both mesh programs.
func (r *Renderer) bindCommon(program uint32, locs programLocs, projection, view mgl32.Mat4, mat model.Material) {
	gl.UseProgram(program)

	gl.UniformMatrix4fv(locs.locProjection, 1, false, &projection[0])
	gl.UniformMatrix4fv(locs.locView, 1, false, &view[0])
	gl.Uniform3f(locs.locViewPos, r.eye.X(), r.eye.Y(), r.eye.Z())

	gl.Uniform3f(locs.locLightDir, r.light.Direction.X(), r.light.Direction.Y(), r.light.Direction.Z())
	gl.Uniform3f(locs.locLightColor, r.light.Color.X(), r.light.Color.Y(), r.light.Color.Z())

	gl.Uniform3f(locs.locAmbient, mat.Ambient.X(), mat.Ambient.Y(), mat.Ambient.Z())
	gl.Uniform3f(locs.locDiffuse, mat.Diffuse.X(), mat.Diffuse.Y(), mat.Diffuse.Z())
	gl.Uniform3f(locs.locSpecular, mat.Specular.X(), mat.Specular.Y(), mat.Specular.Z())
	gl.Uniform1f(locs.locShininess, mat.Shininess)

	if r.fog.Enabled {
		c := r.fog.Cycle.Color(r.now)
		gl.Uniform1i(locs.locFogUse, 1)
		gl.Uniform1f(locs.locFogNear, r.fog.Near)
		gl.Uniform1f(locs.locFogFar, r.fog.Far)
		gl.Uniform3f(locs.locFogColor, c.X(), c.Y(), c.Z())
	} else {
		gl.Uniform1i(locs.locFogUse, 0)
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(locs.locTexture, 0)
}

// textureFor returns the GL texture for a material texture name,
// loading and caching it on first use. Unset or unloadable textures
// fall back to the built-in checker. The cache keys on the resolved
// path, so same-named textures of different models stay distinct.
func (r *Renderer) textureFor(name string) uint32 {
	if name == "" {
		return r.fallbackTex
	}
	path := filepath.Join(r.baseDir, name)
	if id, ok := r.textures[path]; ok {
		return id
	}

	id, err := r.loadTexture(path)
	if err != nil {
		logger.Warn("texture load failed, using fallback",
			zap.String("texture", name),
			zap.Error(err),
		)
		id = r.fallbackTex
	}
	r.textures[path] = id
	return id
}

func (r *Renderer) loadTexture(path string) (uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	img, err := texture.Decode(data, path)
	if err != nil {
		return 0, fmt.Errorf("decoding %s: %w", path, err)
	}
	return uploadTexture(texture.ToRGBA(img)), nil
}

func uploadTexture(img *image.RGBA) uint32 {
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	return texID
}

// checkerTexture builds the 2x2 gray checker used when a mesh has no
// texture of its own.
func checkerTexture() uint32 {
	pixels := []uint8{
		200, 200, 200, 255, 90, 90, 90, 255,
		90, 90, 90, 255, 200, 200, 200, 255,
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 2, 2, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	return texID
}

// Close releases all GPU resources the renderer created.
func (r *Renderer) Close() {
	logger.Info("closing renderer")

	r.ClearMeshes()

	for _, tex := range r.textures {
		if tex != 0 && tex != r.fallbackTex {
			gl.DeleteTextures(1, &tex)
		}
	}
	r.textures = nil

	if r.fallbackTex != 0 {
		gl.DeleteTextures(1, &r.fallbackTex)
		r.fallbackTex = 0
	}
	if r.staticProgram != 0 {
		gl.DeleteProgram(r.staticProgram)
		r.staticProgram = 0
	}
	if r.skinnedProgram != 0 {
		gl.DeleteProgram(r.skinnedProgram)
		r.skinnedProgram = 0
	}
}
