package shaders

import (
	"strings"
	"testing"
)

func TestSources(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		contains []string
	}{
		{"scene vertex", SceneVertexShader, []string{"uViewProj", "uModel", "location = 4"}},
		{"scene fragment", SceneFragmentShader, []string{"uBaseColorFactor", "uBaseColor", "uOcclusion"}},
		{"environment vertex", EnvironmentVertexShader, []string{"uViewProj", "uModel", "xyww"}},
		{"environment fragment", EnvironmentFragmentShader, []string{"uEnvironment"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.src, "#version 410 core") {
				t.Errorf("expected GLSL 4.10 core header, got %.20q", tt.src)
			}
			for _, s := range tt.contains {
				if !strings.Contains(tt.src, s) {
					t.Errorf("missing %q", s)
				}
			}
		})
	}
}
