// Package window is the SDL2 window the triangle is presented into.
package window

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/triangle/frame"
)

type Config struct {
	Title         string
	Width, Height int
}

// Window wraps a resizable Vulkan-capable SDL window. Its methods must be
// called from the thread that created it.
type Window struct {
	window  *sdl.Window
	resized *frame.ResizeFlag

	closed    bool
	minimized bool
}

var _ frame.Window = (*Window)(nil)

// New initializes SDL video and opens the window. Destroy undoes both.
func New(cfg Config) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "initializing sdl video")
	}

	window, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width), int32(cfg.Height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "creating window")
	}

	return &Window{
		window:  window,
		resized: &frame.ResizeFlag{},
	}, nil
}

// SDL is the underlying window, for surface creation.
func (w *Window) SDL() *sdl.Window {
	return w.window
}

// Resized is raised whenever the window's size changes.
func (w *Window) Resized() *frame.ResizeFlag {
	return w.resized
}

// PumpEvents drains pending events without blocking.
func (w *Window) PumpEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		w.handleEvent(event)
	}
}

func (w *Window) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		w.closed = true
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_CLOSE:
			w.closed = true
		case sdl.WINDOWEVENT_MINIMIZED:
			w.minimized = true
		case sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_MAXIMIZED:
			w.minimized = false
			w.resized.Raise()
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			w.resized.Raise()
		}
	}
}

// Closed reports whether the user asked to close the window.
func (w *Window) Closed() bool {
	return w.closed
}

// Minimized reports whether the window is iconified. Nothing should be
// rendered while it is.
func (w *Window) Minimized() bool {
	return w.minimized
}

// DrawableSize is the window size in pixels, which can differ from its size
// in screen coordinates on high-DPI displays.
func (w *Window) DrawableSize() core1_0.Extent2D {
	width, height := w.window.VulkanGetDrawableSize()
	return core1_0.Extent2D{Width: int(width), Height: int(height)}
}

// WaitForDrawableSize blocks on window events until the drawable size is
// non-zero. It reports false if the window is closed first.
func (w *Window) WaitForDrawableSize() (core1_0.Extent2D, bool) {
	return waitForSize(w, w.DrawableSize, sdl.WaitEvent)
}

// WaitWhileMinimized blocks on window events while the window is minimized
// and still open.
func (w *Window) WaitWhileMinimized() {
	for w.minimized && !w.closed {
		if event := sdl.WaitEvent(); event != nil {
			w.handleEvent(event)
		}
	}
}

func waitForSize(w *Window, size func() core1_0.Extent2D, next func() sdl.Event) (core1_0.Extent2D, bool) {
	extent := size()
	for extent.Width == 0 || extent.Height == 0 {
		if w.closed {
			return core1_0.Extent2D{}, false
		}

		frame.Logger().Debug("window has no drawable area, waiting", "minimized", w.minimized)
		if event := next(); event != nil {
			w.handleEvent(event)
		}
		extent = size()
	}
	return extent, true
}

func (w *Window) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}
