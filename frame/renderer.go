package frame

import (
	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// DefaultFramesInFlight is the number of frame slots when Config leaves it
// unset.
const DefaultFramesInFlight = 2

// State is where the renderer is inside RenderFrame.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateRecording
	StateSubmitted
	StatePresenting
	StateRecreating
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAcquiring:
		return "Acquiring"
	case StateRecording:
		return "Recording"
	case StateSubmitted:
		return "Submitted"
	case StatePresenting:
		return "Presenting"
	case StateRecreating:
		return "Recreating"
	}
	return "Unknown"
}

type Config struct {
	FramesInFlight int
	ClearColor     [4]float32
}

// RendererInfo is everything the renderer borrows from its collaborators.
// The render pass and pipeline are used unchanged across recreations.
type RendererInfo struct {
	Driver          Driver
	SwapchainDriver SwapchainDriver
	Window          Window
	RenderPass      RenderPass
	Pipeline        Pipeline
	// Resized is raised by the window on geometry changes. NewRenderer
	// allocates one if nil.
	Resized         *ResizeFlag
	Config          Config
}

// Renderer paces frames against a ring of in-flight slots and keeps the
// swapchain in step with the surface. It is driven from a single goroutine.
type Renderer struct {
	driver     Driver
	swapDriver SwapchainDriver
	window     Window
	renderPass RenderPass
	pipeline   Pipeline
	resized    *ResizeFlag

	ring      *Ring
	swapchain *SwapchainResources
	recorder  *Recorder

	current int
	state   State
	stats   Stats
	closed  bool
}

// NewRenderer creates the frame slots and builds the first swapchain.
func NewRenderer(info RendererInfo) (*Renderer, error) {
	frames := info.Config.FramesInFlight
	if frames == 0 {
		frames = DefaultFramesInFlight
	}

	resized := info.Resized
	if resized == nil {
		resized = &ResizeFlag{}
	}

	ring, err := NewRing(info.Driver, frames)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		driver:     info.Driver,
		swapDriver: info.SwapchainDriver,
		window:     info.Window,
		renderPass: info.RenderPass,
		pipeline:   info.Pipeline,
		resized:    resized,
		ring:       ring,
		swapchain:  NewSwapchainResources(info.Driver, info.SwapchainDriver, info.RenderPass),
		recorder:   NewRecorder(info.Driver, info.Config.ClearColor),
	}

	err = r.swapchain.Build(info.Window.DrawableSize())
	if err != nil {
		r.swapchain.Teardown()
		r.ring.Destroy()
		return nil, err
	}

	return r, nil
}

// RenderFrame renders and presents one frame. Call it once per iteration of
// the event loop. A stale swapchain is rebuilt without returning an error;
// any error returned is fatal and the caller should stop and call Shutdown.
func (r *Renderer) RenderFrame() error {
	if r.closed {
		return ErrClosed
	}
	defer r.setState(StateIdle)
	start := hrtime.Now()

	r.setState(StateAcquiring)
	slot, err := r.ring.WaitAndAcquire(r.current)
	if err != nil {
		return err
	}

	imageIndex, status, err := r.swapDriver.AcquireNextImage(r.swapchain.Swapchain(), slot.ImageAcquired())
	if status == StatusOutOfDate {
		// Nothing was submitted, so the slot's fence is still signaled and
		// the cursor stays put.
		r.stats.Skipped++
		Logger().Debug("swapchain out of date at acquire, skipping frame", "slot", slot.Index())
		return r.recreate()
	}
	if err != nil {
		return fatalf(ErrAcquireFailed, err, "acquiring image for frame slot %d", slot.Index())
	}
	framebuffer, ok := r.swapchain.Framebuffer(imageIndex)
	if !ok {
		return errors.Mark(errors.Newf("acquired image index %d out of range [0,%d)",
			imageIndex, r.swapchain.FramebufferCount()), ErrAcquireFailed)
	}
	suboptimal := status == StatusSuboptimal

	r.setState(StateRecording)
	err = r.driver.ResetCommandBuffer(slot.Commands())
	if err != nil {
		return fatalf(ErrRecordingFailed, err, "resetting command buffer for frame slot %d", slot.Index())
	}

	err = r.recorder.Record(slot.Commands(), framebuffer, r.swapchain.Extent(), r.pipeline, r.renderPass)
	if err != nil {
		return err
	}

	// The fence is only reset once the submission that signals it is next.
	err = slot.Arm()
	if err != nil {
		return fatalf(ErrSubmitFailed, err, "arming frame slot %d", slot.Index())
	}

	r.setState(StateSubmitted)
	err = r.driver.QueueSubmit(slot.InFlight(), SubmitInfo{
		WaitSemaphores:   []Semaphore{slot.ImageAcquired()},
		WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
		CommandBuffers:   []CommandBuffer{slot.Commands()},
		SignalSemaphores: []Semaphore{slot.RenderFinished()},
	})
	if err != nil {
		return fatalf(ErrSubmitFailed, err, "submitting frame slot %d", slot.Index())
	}

	r.setState(StatePresenting)
	status, err = r.swapDriver.QueuePresent(r.swapchain.Swapchain(), imageIndex, slot.RenderFinished())
	if err != nil && status == StatusOK {
		return fatalf(ErrPresentFailed, err, "presenting image %d", imageIndex)
	}

	resized := r.resized.Consume()
	if status != StatusOK || suboptimal || resized {
		Logger().Debug("recreating swapchain after present",
			"status", status, "acquireSuboptimal", suboptimal, "resized", resized)
		err = r.recreate()
		if err != nil {
			return err
		}
	}

	r.current = (r.current + 1) % r.ring.Len()
	r.stats.Frames++
	r.stats.FrameTime += hrtime.Since(start)
	return nil
}

// Recreate rebuilds the swapchain immediately, for callers that learn about
// a surface change outside RenderFrame.
func (r *Renderer) Recreate() error {
	if r.closed {
		return ErrClosed
	}
	defer r.setState(StateIdle)
	return r.recreate()
}

// recreate waits out a zero-sized window, drains the device and rebuilds the
// swapchain resources. The render pass and pipeline are kept.
func (r *Renderer) recreate() error {
	r.setState(StateRecreating)

	extent, ok := r.window.WaitForDrawableSize()
	if !ok {
		Logger().Debug("window closed while waiting for a drawable size, not rebuilding swapchain")
		return nil
	}

	err := r.driver.DeviceWaitIdle()
	if err != nil {
		return fatalf(ErrRecreateFailed, err, "waiting for device idle before swapchain rebuild")
	}

	r.swapchain.Teardown()
	err = r.swapchain.Build(extent)
	if err != nil {
		return errors.Mark(err, ErrRecreateFailed)
	}

	r.stats.Recreations++
	return nil
}

// Shutdown waits for the device to go idle and releases the swapchain
// resources and frame slots. It must be called before the device and surface
// are destroyed. Later calls do nothing.
func (r *Renderer) Shutdown() error {
	if r.closed {
		return nil
	}
	r.closed = true

	err := r.driver.DeviceWaitIdle()
	if err != nil {
		err = errors.Wrap(err, "waiting for device idle at shutdown")
	}

	r.swapchain.Teardown()
	r.ring.Destroy()

	Logger().Info("renderer shut down",
		"frames", r.stats.Frames,
		"skipped", r.stats.Skipped,
		"recreations", r.stats.Recreations,
		"avgFrameTime", r.stats.AverageFrameTime(),
	)
	return err
}

func (r *Renderer) setState(state State) {
	r.state = state
}

func (r *Renderer) State() State {
	return r.state
}

// Cursor is the index of the frame slot the next frame will use.
func (r *Renderer) Cursor() int {
	return r.current
}

func (r *Renderer) FramesInFlight() int {
	return r.ring.Len()
}

func (r *Renderer) Stats() Stats {
	return r.stats
}

func (r *Renderer) Swapchain() *SwapchainResources {
	return r.swapchain
}
