package frame

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

type fakeFence struct {
	id        int
	signaled  bool
	pending   bool
	destroyed bool
}

type fakeSemaphore struct {
	id        int
	signaled  bool
	destroyed bool
}

type fakeCommandBuffer struct {
	id        int
	recording bool
	ended     bool
	lastFence *fakeFence
	freed     bool
	commands  []string
}

type fakeImage struct {
	id int
}

type fakeView struct {
	image     *fakeImage
	destroyed bool
}

type fakeFramebuffer struct {
	view      *fakeView
	extent    core1_0.Extent2D
	destroyed bool
}

type fakeSwapchain struct {
	id        int
	info      SwapchainCreateInfo
	images    []Image
	next      int
	destroyed bool
}

// fakeDevice stands in for the graphics device, the presentation engine and
// the window. Submitted work completes only when the CPU waits on it, which
// makes the number of outstanding submissions observable.
type fakeDevice struct {
	nextID int
	events []string

	fences       []*fakeFence
	semaphores   []*fakeSemaphore
	buffers      []*fakeCommandBuffer
	views        []*fakeView
	framebuffers []*fakeFramebuffer
	swapchains   []*fakeSwapchain

	support SurfaceSupport

	acquireScript []Status
	presentScript []Status

	outstanding    int
	maxOutstanding int
	submits        []SubmitInfo
	submitFences   []Fence
	presents       []int
	presentWaits   []Semaphore
	waitIdleCalls  int

	failCreateFence  error
	failBegin        error
	failEnd          error
	failSubmit       error
	failAcquire      error
	failPresent      error
	failFramebuffer  error
	failSurfaceQuery error
	failWaitIdle     error

	drawable    core1_0.Extent2D
	waitSizes   []core1_0.Extent2D
	windowGone  bool
	windowWaits int

	// observe, when set, is called on every driver call with its name.
	observe func(call string)
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		support: SurfaceSupport{
			Capabilities: &khr_surface.SurfaceCapabilities{
				MinImageCount:  2,
				MaxImageCount:  8,
				CurrentExtent:  core1_0.Extent2D{Width: 800, Height: 600},
				MinImageExtent: core1_0.Extent2D{Width: 1, Height: 1},
				MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
			},
			Formats: []khr_surface.SurfaceFormat{
				{Format: core1_0.FormatB8G8R8A8UnsignedNormalized, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
				{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
			},
			PresentModes: []khr_surface.PresentMode{khr_surface.PresentModeFIFO, khr_surface.PresentModeMailbox},
		},
		drawable: core1_0.Extent2D{Width: 800, Height: 600},
	}
}

func (d *fakeDevice) id() int {
	d.nextID++
	return d.nextID
}

func (d *fakeDevice) event(format string, args ...interface{}) {
	name := fmt.Sprintf(format, args...)
	d.events = append(d.events, name)
	if d.observe != nil {
		d.observe(name)
	}
}

func (d *fakeDevice) CreateFence(signaled bool) (Fence, error) {
	if d.failCreateFence != nil {
		return nil, d.failCreateFence
	}
	f := &fakeFence{id: d.id(), signaled: signaled}
	d.fences = append(d.fences, f)
	return f, nil
}

func (d *fakeDevice) DestroyFence(fence Fence) {
	fence.(*fakeFence).destroyed = true
}

func (d *fakeDevice) CreateSemaphore() (Semaphore, error) {
	s := &fakeSemaphore{id: d.id()}
	d.semaphores = append(d.semaphores, s)
	return s, nil
}

func (d *fakeDevice) DestroySemaphore(semaphore Semaphore) {
	semaphore.(*fakeSemaphore).destroyed = true
}

func (d *fakeDevice) AllocateCommandBuffers(count int) ([]CommandBuffer, error) {
	var out []CommandBuffer
	for i := 0; i < count; i++ {
		b := &fakeCommandBuffer{id: d.id()}
		d.buffers = append(d.buffers, b)
		out = append(out, b)
	}
	return out, nil
}

func (d *fakeDevice) FreeCommandBuffers(buffers ...CommandBuffer) {
	for _, b := range buffers {
		b.(*fakeCommandBuffer).freed = true
	}
}

func (d *fakeDevice) complete(f *fakeFence) {
	if f.pending {
		f.pending = false
		f.signaled = true
		d.outstanding--
	}
}

func (d *fakeDevice) WaitForFences(fences ...Fence) error {
	d.event("wait-fence")
	for _, fence := range fences {
		f := fence.(*fakeFence)
		if f.signaled {
			continue
		}
		if !f.pending {
			return errors.Newf("deadlock: fence %d is unsignaled with no work queued", f.id)
		}
		d.complete(f)
	}
	return nil
}

func (d *fakeDevice) ResetFences(fences ...Fence) error {
	d.event("reset-fence")
	for _, fence := range fences {
		f := fence.(*fakeFence)
		if f.pending {
			return errors.Newf("fence %d reset while in use", f.id)
		}
		f.signaled = false
	}
	return nil
}

func (d *fakeDevice) DeviceWaitIdle() error {
	d.event("idle")
	d.waitIdleCalls++
	if d.failWaitIdle != nil {
		return d.failWaitIdle
	}
	for _, f := range d.fences {
		d.complete(f)
	}
	return nil
}

func (d *fakeDevice) ResetCommandBuffer(buffer CommandBuffer) error {
	b := buffer.(*fakeCommandBuffer)
	if b.lastFence != nil && b.lastFence.pending {
		return errors.Newf("command buffer %d reset while pending", b.id)
	}
	b.recording = false
	b.ended = false
	b.commands = nil
	return nil
}

func (d *fakeDevice) BeginCommandBuffer(buffer CommandBuffer) error {
	if d.failBegin != nil {
		return d.failBegin
	}
	b := buffer.(*fakeCommandBuffer)
	if b.lastFence != nil && b.lastFence.pending {
		return errors.Newf("command buffer %d re-recorded while pending", b.id)
	}
	b.recording = true
	b.ended = false
	b.commands = append(b.commands, "begin")
	return nil
}

func (d *fakeDevice) EndCommandBuffer(buffer CommandBuffer) error {
	if d.failEnd != nil {
		return d.failEnd
	}
	b := buffer.(*fakeCommandBuffer)
	b.recording = false
	b.ended = true
	b.commands = append(b.commands, "end")
	return nil
}

func (d *fakeDevice) CmdBeginRenderPass(buffer CommandBuffer, info RenderPassBeginInfo) error {
	b := buffer.(*fakeCommandBuffer)
	fb := info.Framebuffer.(*fakeFramebuffer)
	b.commands = append(b.commands, fmt.Sprintf("begin-pass %dx%d clears=%d fb=%d",
		info.RenderArea.Extent.Width, info.RenderArea.Extent.Height, len(info.ClearValues), fb.view.image.id))
	return nil
}

func (d *fakeDevice) CmdBindPipeline(buffer CommandBuffer, pipeline Pipeline) {
	b := buffer.(*fakeCommandBuffer)
	b.commands = append(b.commands, fmt.Sprintf("bind %v", pipeline))
}

func (d *fakeDevice) CmdSetViewport(buffer CommandBuffer, viewports ...core1_0.Viewport) {
	b := buffer.(*fakeCommandBuffer)
	for _, v := range viewports {
		b.commands = append(b.commands, fmt.Sprintf("viewport %gx%g depth[%g,%g]", v.Width, v.Height, v.MinDepth, v.MaxDepth))
	}
}

func (d *fakeDevice) CmdSetScissor(buffer CommandBuffer, scissors ...core1_0.Rect2D) {
	b := buffer.(*fakeCommandBuffer)
	for _, s := range scissors {
		b.commands = append(b.commands, fmt.Sprintf("scissor %dx%d", s.Extent.Width, s.Extent.Height))
	}
}

func (d *fakeDevice) CmdDraw(buffer CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance int) {
	b := buffer.(*fakeCommandBuffer)
	b.commands = append(b.commands, fmt.Sprintf("draw %d %d %d %d", vertexCount, instanceCount, firstVertex, firstInstance))
}

func (d *fakeDevice) CmdEndRenderPass(buffer CommandBuffer) {
	b := buffer.(*fakeCommandBuffer)
	b.commands = append(b.commands, "end-pass")
}

func (d *fakeDevice) QueueSubmit(fence Fence, submits ...SubmitInfo) error {
	d.event("submit")
	if d.failSubmit != nil {
		return d.failSubmit
	}
	f := fence.(*fakeFence)
	if f.signaled || f.pending {
		return errors.Newf("submit with fence %d that was not reset", f.id)
	}
	for _, submit := range submits {
		for _, s := range submit.WaitSemaphores {
			sem := s.(*fakeSemaphore)
			if !sem.signaled {
				return errors.Newf("submit waits on semaphore %d that nothing signals", sem.id)
			}
			sem.signaled = false
		}
		for _, c := range submit.CommandBuffers {
			b := c.(*fakeCommandBuffer)
			if !b.ended {
				return errors.Newf("submit of command buffer %d that is not fully recorded", b.id)
			}
			b.lastFence = f
		}
		for _, s := range submit.SignalSemaphores {
			s.(*fakeSemaphore).signaled = true
		}
	}
	d.submits = append(d.submits, submits...)
	d.submitFences = append(d.submitFences, fence)
	f.pending = true
	d.outstanding++
	if d.outstanding > d.maxOutstanding {
		d.maxOutstanding = d.outstanding
	}
	return nil
}

func (d *fakeDevice) CreateImageView(image Image, format core1_0.Format) (ImageView, error) {
	d.event("create-view")
	v := &fakeView{image: image.(*fakeImage)}
	d.views = append(d.views, v)
	return v, nil
}

func (d *fakeDevice) DestroyImageView(view ImageView) {
	d.event("destroy-view")
	view.(*fakeView).destroyed = true
}

func (d *fakeDevice) CreateFramebuffer(renderPass RenderPass, view ImageView, extent core1_0.Extent2D) (Framebuffer, error) {
	d.event("create-framebuffer")
	if d.failFramebuffer != nil {
		return nil, d.failFramebuffer
	}
	fb := &fakeFramebuffer{view: view.(*fakeView), extent: extent}
	d.framebuffers = append(d.framebuffers, fb)
	return fb, nil
}

func (d *fakeDevice) DestroyFramebuffer(framebuffer Framebuffer) {
	d.event("destroy-framebuffer")
	framebuffer.(*fakeFramebuffer).destroyed = true
}

func (d *fakeDevice) SurfaceSupport() (SurfaceSupport, error) {
	if d.failSurfaceQuery != nil {
		return SurfaceSupport{}, d.failSurfaceQuery
	}
	return d.support, nil
}

func (d *fakeDevice) CreateSwapchain(info SwapchainCreateInfo) (Swapchain, error) {
	d.event("create-swapchain")
	sc := &fakeSwapchain{id: d.id(), info: info}
	for i := 0; i < info.MinImageCount; i++ {
		sc.images = append(sc.images, &fakeImage{id: i})
	}
	d.swapchains = append(d.swapchains, sc)
	return sc, nil
}

func (d *fakeDevice) DestroySwapchain(swapchain Swapchain) {
	d.event("destroy-swapchain")
	swapchain.(*fakeSwapchain).destroyed = true
}

func (d *fakeDevice) GetSwapchainImages(swapchain Swapchain) ([]Image, error) {
	return swapchain.(*fakeSwapchain).images, nil
}

func (d *fakeDevice) AcquireNextImage(swapchain Swapchain, signal Semaphore) (int, Status, error) {
	d.event("acquire")
	if d.failAcquire != nil {
		return 0, StatusOK, d.failAcquire
	}
	status := StatusOK
	if len(d.acquireScript) > 0 {
		status = d.acquireScript[0]
		d.acquireScript = d.acquireScript[1:]
	}
	if status == StatusOutOfDate {
		return 0, status, nil
	}

	sc := swapchain.(*fakeSwapchain)
	if sc.destroyed {
		return 0, StatusOK, errors.New("acquire from destroyed swapchain")
	}
	sem := signal.(*fakeSemaphore)
	if sem.signaled {
		return 0, StatusOK, errors.Newf("acquire would signal semaphore %d that is already signaled", sem.id)
	}
	sem.signaled = true

	index := sc.next
	sc.next = (sc.next + 1) % len(sc.images)
	return index, status, nil
}

func (d *fakeDevice) QueuePresent(swapchain Swapchain, imageIndex int, wait Semaphore) (Status, error) {
	d.event("present")
	if d.failPresent != nil {
		return StatusOK, d.failPresent
	}
	sem := wait.(*fakeSemaphore)
	if !sem.signaled {
		return StatusOK, errors.Newf("present waits on semaphore %d that nothing signals", sem.id)
	}
	sem.signaled = false
	d.presents = append(d.presents, imageIndex)
	d.presentWaits = append(d.presentWaits, wait)

	status := StatusOK
	if len(d.presentScript) > 0 {
		status = d.presentScript[0]
		d.presentScript = d.presentScript[1:]
	}
	return status, nil
}

func (d *fakeDevice) DrawableSize() core1_0.Extent2D {
	return d.drawable
}

func (d *fakeDevice) WaitForDrawableSize() (core1_0.Extent2D, bool) {
	d.event("wait-drawable")
	for d.drawable.Width == 0 || d.drawable.Height == 0 {
		if d.windowGone || len(d.waitSizes) == 0 {
			return core1_0.Extent2D{}, false
		}
		d.windowWaits++
		d.drawable = d.waitSizes[0]
		d.waitSizes = d.waitSizes[1:]
	}
	return d.drawable, true
}

func (d *fakeDevice) countEvents(name string) int {
	n := 0
	for _, e := range d.events {
		if e == name {
			n++
		}
	}
	return n
}

func (d *fakeDevice) liveFramebuffers() int {
	n := 0
	for _, fb := range d.framebuffers {
		if !fb.destroyed {
			n++
		}
	}
	return n
}

func (d *fakeDevice) liveViews() int {
	n := 0
	for _, v := range d.views {
		if !v.destroyed {
			n++
		}
	}
	return n
}

func (d *fakeDevice) liveSwapchains() int {
	n := 0
	for _, sc := range d.swapchains {
		if !sc.destroyed {
			n++
		}
	}
	return n
}

func newTestRenderer(d *fakeDevice, frames int) (*Renderer, error) {
	return NewRenderer(RendererInfo{
		Driver:          d,
		SwapchainDriver: d,
		Window:          d,
		RenderPass:      "render-pass",
		Pipeline:        "pipeline",
		Config:          Config{FramesInFlight: frames},
	})
}
