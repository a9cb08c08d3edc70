package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func feed(in *Input, events ...sdl.Event) bool {
	in.events = in.events[:0]
	for _, e := range events {
		if in.translate(e) {
			return true
		}
	}
	return false
}

func TestKeyEvents(t *testing.T) {
	in := New()
	feed(in,
		&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_SPACE}},
		&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_N}},
		&sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_R}},
	)

	if !in.IsKeyPressed(sdl.SCANCODE_SPACE) {
		t.Error("expected space pressed")
	}
	if in.IsKeyPressed(sdl.SCANCODE_N) {
		t.Error("key repeat should not count as a press")
	}
	if in.IsKeyPressed(sdl.SCANCODE_R) {
		t.Error("key up should not count as a press")
	}
	if len(in.Events()) != 2 {
		t.Errorf("expected 2 events, got %d", len(in.Events()))
	}
}

func TestQuit(t *testing.T) {
	in := New()
	if !feed(in, &sdl.QuitEvent{Type: sdl.QUIT}) {
		t.Error("expected quit")
	}
}

func TestDragAndWheel(t *testing.T) {
	in := New()
	feed(in,
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 5, YRel: 1},
	)
	if dx, dy := in.Drag(sdl.BUTTON_LEFT); dx != 0 || dy != 0 {
		t.Errorf("motion without a held button should not drag, got %f,%f", dx, dy)
	}

	feed(in,
		&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT},
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 3, YRel: -2},
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 4, YRel: 1},
		&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 2},
		&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: -1},
	)
	if !in.IsButtonHeld(sdl.BUTTON_LEFT) {
		t.Error("expected left button held")
	}
	if dx, dy := in.Drag(sdl.BUTTON_LEFT); dx != 7 || dy != -1 {
		t.Errorf("drag = %f,%f, want 7,-1", dx, dy)
	}
	if w := in.Wheel(); w != 1 {
		t.Errorf("wheel = %f, want 1", w)
	}

	feed(in, &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT})
	if in.IsButtonHeld(sdl.BUTTON_LEFT) {
		t.Error("expected left button released")
	}
}

func TestResize(t *testing.T) {
	in := New()
	feed(in, &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 800, Data2: 600})
	ev := in.Events()
	if len(ev) != 1 || ev[0].Type != EventWindowResize || ev[0].Width != 800 || ev[0].Height != 600 {
		t.Errorf("unexpected events %+v", ev)
	}
}
