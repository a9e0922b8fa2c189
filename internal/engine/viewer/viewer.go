// Package viewer implements the interactive rig viewer: window and GL
// context setup, the render loop, orbit camera controls and animation
// playback.
package viewer

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/kverness/armature/internal/config"
	"github.com/kverness/armature/internal/engine/camera"
	"github.com/kverness/armature/internal/engine/input"
	"github.com/kverness/armature/internal/engine/model"
	"github.com/kverness/armature/internal/engine/render"
	"github.com/kverness/armature/internal/engine/scene"
	"github.com/kverness/armature/internal/engine/window"
	"github.com/kverness/armature/internal/logger"
)

// ErrNoModel is returned by Run when no model has been loaded.
var ErrNoModel = errors.New("no model loaded")

// Viewer is the interactive application: one window, one loaded rig and
// an orbit camera around it.
type Viewer struct {
	cfg      *config.Config
	window   *window.Window
	renderer *render.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera

	graph *scene.Graph
	root  *scene.Node
	doc   *model.Document

	// Playback clock in seconds, advanced by scaled frame deltas so
	// pausing and restarting never touch wall time.
	clock  float64
	last   time.Time
	speed  float64
	paused bool

	dragging bool
	running  bool

	// Screenshots capture after the draw pass so the frame is complete.
	captureRequested bool

	// Paths picked in the file dialog goroutine; GL and SDL calls must
	// stay on the main thread, so the loop drains this each frame.
	openResult chan string
}

// New creates the window, the GL context and the renderer. The model is
// loaded separately with LoadModel.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Float64("speed", cfg.Viewer.PlaybackSpeed),
	)

	v := &Viewer{
		cfg:        cfg,
		camera:     camera.New(),
		speed:      cfg.Viewer.PlaybackSpeed,
		openResult: make(chan string, 1),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      "Armature",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer needs the GL context the window created.
	v.renderer, err = render.New(render.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()

	return v, nil
}

// LoadModel imports a rig and assembles its scene tree, replacing any
// previously loaded one. The camera and fog are refitted to the model's
// bounds. If assembly fails the previous model is already gone and the
// viewer shows an empty scene until the next load succeeds.
func (v *Viewer) LoadModel(path string) error {
	doc, err := model.ImportGLTF(path)
	if err != nil {
		return err
	}

	// The old meshes are about to be destroyed; drop the tree that
	// references them first.
	v.root = nil
	v.graph = nil
	v.doc = nil
	v.renderer.ClearMeshes()

	// Texture paths in the asset resolve relative to the model file.
	v.renderer.SetBaseDir(filepath.Dir(path))

	graph := scene.NewGraph()
	root, err := model.Assemble(doc, graph, v.renderer.Drawable)
	if err != nil {
		return fmt.Errorf("assembling %s: %w", path, err)
	}

	v.doc = doc
	v.graph = graph
	v.root = root
	v.clock = 0

	v.fitToModel()
	v.window.SetTitle("Armature - " + doc.Name)

	logger.Info("model loaded",
		zap.String("path", path),
		zap.Int("nodes", graph.Len()),
		zap.Int("meshes", len(doc.Meshes)),
		zap.String("clip", doc.ClipName),
		zap.Int("clips", doc.ClipCount),
	)
	return nil
}

// fitToModel centers the camera on the loaded model and scales the fog
// bands to its size, so a hand-sized rig and a building both frame well.
func (v *Viewer) fitToModel() {
	if v.doc == nil {
		return
	}
	b := v.doc.Bounds()
	v.camera.FitToBounds(b.Min, b.Max)

	size := mgl32.Vec3{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
	radius := size.Len() / 2
	if radius < 0.01 {
		radius = 0.01
	}

	fog := render.DefaultFog()
	fog.Enabled = v.cfg.Viewer.Fog
	fog.Near = radius * 5
	fog.Far = radius * 25
	v.renderer.SetFog(fog)
}

// Run starts the main loop and blocks until the window closes.
func (v *Viewer) Run() error {
	if v.root == nil {
		return ErrNoModel
	}

	v.running = true
	v.last = time.Now()

	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(v.last).Seconds()
		v.last = now

		if v.input.Update() {
			break
		}
		for _, event := range v.input.Events() {
			v.handleEvent(event)
		}

		select {
		case path := <-v.openResult:
			if err := v.LoadModel(path); err != nil {
				logger.Error("failed to load model",
					zap.String("path", path),
					zap.Error(err),
				)
			}
		default:
		}

		if !v.paused {
			v.clock += dt * v.speed
		}

		// Pass one: refresh every node's world transform for this frame.
		if v.root != nil {
			v.root.Update(v.clock, mgl32.Ident4())
		}

		// Pass two: draw with the transforms pass one produced.
		v.renderer.BeginFrame(v.clock, v.camera.Position())
		if v.root != nil {
			v.root.Draw(v.projection(), v.camera.ViewMatrix(), mgl32.Ident4())
		}

		if v.captureRequested {
			v.captureRequested = false
			v.captureScreenshot()
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			if v.cfg.Viewer.ShowFPS && v.doc != nil {
				v.window.SetTitle(fmt.Sprintf("Armature - %s - %d fps", v.doc.Name, frameCount))
			}
			logger.Debug("fps", zap.Int("frames", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) projection() mgl32.Mat4 {
	width, height := v.window.GetSize()
	if height == 0 {
		height = 1
	}
	aspect := float32(width) / float32(height)
	g := v.cfg.Graphics
	return mgl32.Perspective(mgl32.DegToRad(g.FOV), aspect, g.Near, g.Far)
}

func (v *Viewer) handleEvent(e input.Event) {
	switch e.Type {
	case input.EventWindowResize:
		v.renderer.Resize(e.Width, e.Height)

	case input.EventKeyDown:
		v.handleKey(e.Key)

	case input.EventMouseDown:
		if e.Button == sdl.BUTTON_LEFT {
			v.dragging = true
		}

	case input.EventMouseUp:
		if e.Button == sdl.BUTTON_LEFT {
			v.dragging = false
		}

	case input.EventMouseMove:
		if v.dragging {
			v.camera.HandleDrag(float32(e.RelX), float32(e.RelY))
		}

	case input.EventMouseWheel:
		v.camera.HandleZoom(float32(e.WheelY))
	}
}

// handleKey processes viewer shortcuts and fans everything else out to
// the scene, where meshes pick up their own keys.
func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
		v.running = false
	case sdl.SCANCODE_SPACE:
		v.clock = 0
	case sdl.SCANCODE_P:
		v.paused = !v.paused
	case sdl.SCANCODE_R:
		v.renderer.CyclePolygonMode()
	case sdl.SCANCODE_F:
		v.fitToModel()
	case sdl.SCANCODE_O:
		v.openFileDialog()
	case sdl.SCANCODE_F12:
		v.captureRequested = true
	default:
		if v.root != nil {
			v.root.HandleKey(scene.Key(key))
		}
	}
}

// openFileDialog shows the native picker off the main thread and queues
// the chosen model path for the loop.
func (v *Viewer) openFileDialog() {
	go func() {
		filename, err := dialog.File().
			Filter("glTF models", "gltf", "glb").
			Filter("All Files", "*").
			Title("Open Model").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Error("file dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case v.openResult <- filename:
		default:
		}
	}()
}

func (v *Viewer) captureScreenshot() {
	prefix := "armature"
	if v.doc != nil {
		prefix = v.doc.Name
	}
	width, height := v.window.GetSize()
	path, err := v.renderer.Screenshot(width, height, prefix)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close releases the renderer, the GL context and the window.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
