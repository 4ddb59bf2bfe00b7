// Package input handles SDL2 input events for the viewer.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Action is a viewer command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionScreenshot
	ActionToggleTint
	ActionToggleColoredLights
	ActionToggleMode // switch between indoor and outdoor scenes
	ActionToggleBounds
)

// Bindings maps key presses to actions.
var Bindings = map[sdl.Scancode]Action{
	sdl.SCANCODE_ESCAPE: ActionQuit,
	sdl.SCANCODE_F12:    ActionScreenshot,
	sdl.SCANCODE_T:      ActionToggleTint,
	sdl.SCANCODE_L:      ActionToggleColoredLights,
	sdl.SCANCODE_TAB:    ActionToggleMode,
	sdl.SCANCODE_B:      ActionToggleBounds,
}

// Movement is the held-key camera motion for one frame, each axis in -1..1.
type Movement struct {
	Forward float32
	Right   float32
	Up      float32
	Turn    float32 // positive turns right
}

// Input polls SDL events and tracks held keys.
type Input struct {
	actions []Action
	held    map[sdl.Scancode]bool
	resized bool
	width   int
	height  int
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		actions: make([]Action, 0, 8),
		held:    make(map[sdl.Scancode]bool),
	}
}

// Update drains the SDL event queue. It returns true when the viewer should
// quit.
func (i *Input) Update() bool {
	i.actions = i.actions[:0]
	i.resized = false
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.resized = true
				i.width, i.height = int(e.Data1), int(e.Data2)
			}

		case *sdl.KeyboardEvent:
			code := e.Keysym.Scancode
			switch e.Type {
			case sdl.KEYDOWN:
				i.held[code] = true
				if e.Repeat != 0 {
					continue
				}
				if a, ok := Bindings[code]; ok {
					if a == ActionQuit {
						quit = true
					}
					i.actions = append(i.actions, a)
				}
			case sdl.KEYUP:
				delete(i.held, code)
			}
		}
	}

	return quit
}

// Actions returns the actions triggered during the last Update.
func (i *Input) Actions() []Action {
	return i.actions
}

// Resized reports whether the window changed size during the last Update and
// the new size.
func (i *Input) Resized() (bool, int, int) {
	return i.resized, i.width, i.height
}

// Movement returns the camera motion from the keys currently held.
func (i *Input) Movement() Movement {
	var m Movement
	axis := func(pos, neg sdl.Scancode) float32 {
		var v float32
		if i.held[pos] {
			v++
		}
		if i.held[neg] {
			v--
		}
		return v
	}
	m.Forward = axis(sdl.SCANCODE_W, sdl.SCANCODE_S)
	m.Right = axis(sdl.SCANCODE_D, sdl.SCANCODE_A)
	m.Up = axis(sdl.SCANCODE_E, sdl.SCANCODE_Q)
	m.Turn = axis(sdl.SCANCODE_RIGHT, sdl.SCANCODE_LEFT)
	return m
}
