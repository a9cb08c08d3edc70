// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// SceneVertexShader transforms shared-buffer vertices by the pushed node matrix.
//
//go:embed scene.vert
var SceneVertexShader string

// SceneFragmentShader shades a primitive with its bound material.
//
//go:embed scene.frag
var SceneFragmentShader string

// EnvironmentVertexShader draws environment geometry at the far plane.
//
//go:embed environment.vert
var EnvironmentVertexShader string

// EnvironmentFragmentShader samples the bound equirectangular environment map.
//
//go:embed environment.frag
var EnvironmentFragmentShader string
