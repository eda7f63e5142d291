package scene

import (
	"github.com/shinzlet/atomcad-go/engine/impostor"
	"github.com/shinzlet/atomcad-go/engine/periodic"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithBondStyle sets the scene's initial bond rendering style.
// Defaults to impostor.BondStyleRoundCap. Both style pipelines are registered
// regardless, so the style can be switched at runtime via SetBondStyle.
//
// Parameters:
//   - style: the bond style to render with
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBondStyle(style impostor.BondStyle) SceneBuilderOption {
	return func(s *scene) {
		s.bondStyle = style
	}
}

// WithElementTable replaces the scene's element visual table. The table is
// marshaled once at construction and uploaded into each part's molecule bind
// group; customize colors or radii before creating the scene.
//
// Parameters:
//   - t: the element table to use (ignored if nil)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithElementTable(t *periodic.Table) SceneBuilderOption {
	return func(s *scene) {
		if t != nil {
			s.table = t
		}
	}
}

// WithComputeWorkers sets the number of worker goroutines used during the
// parallel buffer marshal phase of PrepareCompute. Defaults to
// runtime.NumCPU()-1. Higher values may improve throughput with many parts;
// lower values reduce scheduling overhead for simple scenes.
//
// Parameters:
//   - n: the number of compute workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.computeWorkers = n
	}
}

// WithCullingDisabled disables per-part frustum culling for the scene. When
// set to true, every visible part is drawn regardless of camera placement.
// By default culling is enabled (disabled = false).
//
// Parameters:
//   - disabled: true to disable frustum culling, false to enable it (default)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCullingDisabled(disabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.cullingDisabled = disabled
	}
}
