package model

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kverness/armature/internal/engine/scene"
	"github.com/kverness/armature/internal/engine/skin"
	"github.com/kverness/armature/pkg/keyframe"
)

type fakeDrawable struct {
	mesh    *Mesh
	binding *skin.Binding
	models  []mgl32.Mat4
}

func (f *fakeDrawable) Draw(projection, view, model mgl32.Mat4) {
	f.models = append(f.models, model)
}

func collectFactory(built *[]*fakeDrawable) DrawableFactory {
	return func(m *Mesh, binding *skin.Binding) (scene.Drawable, error) {
		d := &fakeDrawable{mesh: m, binding: binding}
		*built = append(*built, d)
		return d, nil
	}
}

func vec3Key(t float64, x, y, z float32) keyframe.Key[mgl32.Vec3] {
	return keyframe.Key[mgl32.Vec3]{Time: t, Value: mgl32.Vec3{x, y, z}}
}

func identityNode(name string, children ...int) Node {
	return Node{
		Name:        name,
		Local:       mgl32.Ident4(),
		Translation: mgl32.Vec3{},
		Rotation:    mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
		Children:    children,
	}
}

func TestAssembleBuildsAnimatedSkinnedTree(t *testing.T) {
	hip := identityNode("hip", 1)
	hip.Local = mgl32.Translate3D(0, 1, 0)
	knee := identityNode("knee")

	doc := &Document{
		Name:  "walker",
		Nodes: []Node{hip, knee},
		Roots: []int{0},
		Channels: map[string]Channel{
			"knee": {
				Translation: []keyframe.Key[mgl32.Vec3]{vec3Key(0, 0, 0, 0), vec3Key(2, 0, 0, 4)},
				Rotation:    []keyframe.Key[mgl32.Quat]{{Time: 0, Value: mgl32.QuatIdent()}},
				Scale:       []keyframe.Key[mgl32.Vec3]{vec3Key(0, 1, 1, 1)},
			},
		},
		Meshes: []Mesh{{
			Name:        "leg",
			AttachTo:    "hip",
			BoneNames:   []string{"hip", "knee"},
			BoneOffsets: []mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(0, -1, 0)},
			Influences:  [][]skin.Influence{{{Joint: 0, Weight: 1}}},
		}},
	}

	graph := scene.NewGraph()
	var built []*fakeDrawable
	root, err := Assemble(doc, graph, collectFactory(&built))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if root.Name() != "hip" {
		t.Errorf("single root should be the hierarchy root, got %q", root.Name())
	}
	if graph.Len() != 2 {
		t.Errorf("graph: expected 2 registered nodes, got %d", graph.Len())
	}
	if len(built) != 1 || built[0].binding == nil || built[0].binding.Len() != 2 {
		t.Fatalf("factory: expected one drawable with a 2-bone binding, got %+v", built)
	}

	root.Update(1, mgl32.Ident4())
	root.Draw(mgl32.Ident4(), mgl32.Ident4(), mgl32.Ident4())

	// The mesh hangs under hip, so it draws with hip's world matrix.
	if len(built[0].models) != 1 {
		t.Fatalf("drawable draws: expected 1, got %d", len(built[0].models))
	}
	gotOrigin := built[0].models[0].Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math.Abs(float64(gotOrigin.Y()-1)) > 0.0001 {
		t.Errorf("mesh model: expected hip world y=1, got %v", gotOrigin)
	}

	// Bone palette at t=1: knee is halfway through its travel.
	bones := built[0].binding.Matrices(nil)
	kneeOrigin := bones[1].Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math.Abs(float64(kneeOrigin.Y())) > 0.0001 || math.Abs(float64(kneeOrigin.Z()-2)) > 0.0001 {
		t.Errorf("knee bone matrix: expected offset-cancelled y=0 z=2, got %v", kneeOrigin)
	}
}

func TestAssembleSynthesizesMissingChannelComponents(t *testing.T) {
	arm := identityNode("arm")
	arm.Translation = mgl32.Vec3{3, 0, 0}
	arm.Local = mgl32.Translate3D(3, 0, 0)

	s := float32(math.Sin(math.Pi / 4))
	c := float32(math.Cos(math.Pi / 4))
	doc := &Document{
		Name:  "rig",
		Nodes: []Node{arm},
		Roots: []int{0},
		Channels: map[string]Channel{
			"arm": {
				Rotation: []keyframe.Key[mgl32.Quat]{
					{Time: 0, Value: mgl32.QuatIdent()},
					{Time: 2, Value: mgl32.Quat{W: c, V: mgl32.Vec3{0, s, 0}}},
				},
			},
		},
	}

	graph := scene.NewGraph()
	var built []*fakeDrawable
	root, err := Assemble(doc, graph, collectFactory(&built))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if !root.Animated() {
		t.Fatal("node with a rotation channel should be animated")
	}

	root.Update(2, mgl32.Ident4())

	// Bind translation survives as a constant while rotation animates.
	origin := root.Local().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math.Abs(float64(origin.X()-3)) > 0.0001 {
		t.Errorf("synthesized translation: expected x=3, got %v", origin)
	}
	tip := root.Local().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	if math.Abs(float64(tip.Z()+1)) > 0.001 || math.Abs(float64(tip.X()-3)) > 0.001 {
		t.Errorf("rotation at t=2: expected +X rotated to -Z around (3,0,0), got %v", tip)
	}
}

func TestAssembleStaticNodeStaysStatic(t *testing.T) {
	rock := identityNode("rock")
	rock.Local = mgl32.Translate3D(5, 5, 5)

	doc := &Document{Name: "still", Nodes: []Node{rock}, Roots: []int{0}}
	root, err := Assemble(doc, scene.NewGraph(), collectFactory(new([]*fakeDrawable)))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if root.Animated() {
		t.Error("channel-less node must stay static")
	}
	root.Update(42, mgl32.Ident4())
	if root.Local() != mgl32.Translate3D(5, 5, 5) {
		t.Errorf("static local changed: got %v", root.Local())
	}
}

func TestAssembleFailsOnMissingBone(t *testing.T) {
	doc := &Document{
		Name:  "broken",
		Nodes: []Node{identityNode("hip")},
		Roots: []int{0},
		Meshes: []Mesh{{
			Name:        "leg",
			AttachTo:    "hip",
			BoneNames:   []string{"hip", "ghost"},
			BoneOffsets: []mgl32.Mat4{mgl32.Ident4(), mgl32.Ident4()},
		}},
	}

	_, err := Assemble(doc, scene.NewGraph(), collectFactory(new([]*fakeDrawable)))
	if !errors.Is(err, ErrMissingBone) {
		t.Errorf("expected ErrMissingBone, got %v", err)
	}
}

func TestAssembleFailsOnMissingAttachment(t *testing.T) {
	doc := &Document{
		Name:   "broken",
		Nodes:  []Node{identityNode("hip")},
		Roots:  []int{0},
		Meshes: []Mesh{{Name: "leg", AttachTo: "nowhere"}},
	}

	_, err := Assemble(doc, scene.NewGraph(), collectFactory(new([]*fakeDrawable)))
	if !errors.Is(err, ErrMissingAttachment) {
		t.Errorf("expected ErrMissingAttachment, got %v", err)
	}
}

func TestAssembleMultipleRootsShareSyntheticParent(t *testing.T) {
	doc := &Document{
		Name:  "pair",
		Nodes: []Node{identityNode("left"), identityNode("right")},
		Roots: []int{0, 1},
	}

	graph := scene.NewGraph()
	root, err := Assemble(doc, graph, collectFactory(new([]*fakeDrawable)))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if root.Name() != "pair" {
		t.Errorf("synthetic root name: expected pair, got %q", root.Name())
	}

	// Both hierarchy roots update through the synthetic parent.
	parent := mgl32.Translate3D(1, 0, 0)
	root.Update(0, parent)
	for _, name := range []string{"left", "right"} {
		id, ok := graph.Lookup(name)
		if !ok {
			t.Fatalf("node %q not registered", name)
		}
		if got := graph.World(id).Mul4x1(mgl32.Vec4{0, 0, 0, 1}); math.Abs(float64(got.X()-1)) > 0.0001 {
			t.Errorf("%s world: expected x=1, got %v", name, got)
		}
	}
}

func TestAssembleRejectsEmptyDocument(t *testing.T) {
	_, err := Assemble(&Document{Name: "void"}, scene.NewGraph(), collectFactory(new([]*fakeDrawable)))
	if !errors.Is(err, ErrNoRoots) {
		t.Errorf("expected ErrNoRoots, got %v", err)
	}
}

func TestAssemblePropagatesFactoryErrors(t *testing.T) {
	doc := &Document{
		Name:   "rig",
		Nodes:  []Node{identityNode("hip")},
		Roots:  []int{0},
		Meshes: []Mesh{{Name: "leg", AttachTo: "hip"}},
	}

	boom := errors.New("no GPU")
	_, err := Assemble(doc, scene.NewGraph(), func(m *Mesh, binding *skin.Binding) (scene.Drawable, error) {
		return nil, fmt.Errorf("uploading: %w", boom)
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected factory error to propagate, got %v", err)
	}
}

func TestAssembleAttachesUnanchoredMeshesToRoot(t *testing.T) {
	doc := &Document{
		Name:   "rig",
		Nodes:  []Node{identityNode("a"), identityNode("b")},
		Roots:  []int{0, 1},
		Meshes: []Mesh{{Name: "floor"}},
	}

	var built []*fakeDrawable
	root, err := Assemble(doc, scene.NewGraph(), collectFactory(&built))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	root.Update(0, mgl32.Ident4())
	root.Draw(mgl32.Ident4(), mgl32.Ident4(), mgl32.Translate3D(0, 9, 0))
	if len(built[0].models) != 1 {
		t.Fatal("mesh without attachment should draw under the synthetic root")
	}
	if got := built[0].models[0].Mul4x1(mgl32.Vec4{0, 0, 0, 1}); math.Abs(float64(got.Y()-9)) > 0.0001 {
		t.Errorf("root-attached mesh model: expected y=9, got %v", got)
	}
}
