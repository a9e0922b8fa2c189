// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// StaticVertexShader is the vertex shader for static meshes.
//
//go:embed static.vert
var StaticVertexShader string

// SkinnedVertexShader is the vertex shader for skinned meshes.
//
//go:embed skinned.vert
var SkinnedVertexShader string

// PhongFragmentShader shades both mesh kinds with a single directional
// light and distance fog.
//
//go:embed phong.frag
var PhongFragmentShader string
