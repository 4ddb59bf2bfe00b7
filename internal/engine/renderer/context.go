package renderer

import (
	"github.com/Faultbox/enroth-render/internal/engine/camera"
	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/geometry"
)

// SceneState is the frame lifecycle state.
type SceneState uint8

const (
	Uninitialized SceneState = iota
	Ready
	InScene
)

// String returns the state name.
func (s SceneState) String() string {
	switch s {
	case Ready:
		return "ready"
	case InScene:
		return "in-scene"
	default:
		return "uninitialized"
	}
}

// Stage is the last pipeline stage reached in the current scene. It is
// reported for diagnostics; draw order is not enforced because layering is
// carried by the z-bias of each stage.
type Stage uint8

const (
	StageNone Stage = iota
	StageWorld
	StageSky
	StageBillboards
	StageLightmaps
	StageDecals
	StageOverlay
)

var stageNames = [...]string{"none", "world", "sky", "billboards", "lightmaps", "decals", "overlay"}

// String returns the stage name.
func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// RenderContext is the mutable per-renderer draw state. It belongs to the
// render goroutine and is never shared.
type RenderContext struct {
	Clip    *clip.State
	Cameras [2]*camera.Camera // indexed by camera.Mode
	Mode    camera.Mode       // transform used by mode-less calls
	Fog     geometry.Fog
	Dimming geometry.Dimming
	ZBias   geometry.ZBiases
	Stage   Stage
}

// Camera returns the camera of the active mode.
func (c *RenderContext) Camera() *camera.Camera {
	return c.Cameras[c.Mode]
}

// shading returns the projection options for mode.
func (c *RenderContext) shading(mode camera.Mode) geometry.Options {
	if mode == camera.Indoor {
		return geometry.Options{Dimming: c.Dimming}
	}
	return geometry.Options{Fog: c.Fog}
}

// advance records that stage s was reached.
func (c *RenderContext) advance(s Stage) {
	if s > c.Stage {
		c.Stage = s
	}
}
