// Package skin computes the matrix palette for linear blend skinning:
// per-vertex influence selection, bone bindings into the scene graph, and
// the drawable that hands bone matrices to a render backend each frame.
package skin

import "sort"

const (
	// MaxBones is the size of the bone matrix uniform array in the
	// skinning shader.
	MaxBones = 128

	// MaxVertexBones is the number of bone influences kept per vertex.
	MaxVertexBones = 4
)

// Influence is one bone's contribution to a vertex, as produced by the
// asset importer before truncation.
type Influence struct {
	Joint  uint32
	Weight float32
}

// VertexWeights is the fixed-width influence set encoded into vertex
// attributes: the strongest MaxVertexBones joints, weights descending,
// zero-padded. Weights are not renormalized after truncation; any
// compensation is the shader's business.
type VertexWeights struct {
	Joints  [MaxVertexBones]uint32
	Weights [MaxVertexBones]float32
}

// TopInfluences selects the MaxVertexBones highest-weight influences from
// the candidates, dropping the rest. Ties keep their input order.
func TopInfluences(candidates []Influence) VertexWeights {
	sorted := make([]Influence, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})

	var vw VertexWeights
	n := len(sorted)
	if n > MaxVertexBones {
		n = MaxVertexBones
	}
	for i := 0; i < n; i++ {
		vw.Joints[i] = sorted[i].Joint
		vw.Weights[i] = sorted[i].Weight
	}
	return vw
}
