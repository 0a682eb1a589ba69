package frame

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// Device objects are opaque to this package. A handle is only ever handed
// back to the driver that created it.
type (
	Fence         any
	Semaphore     any
	CommandBuffer any
	Image         any
	ImageView     any
	Framebuffer   any
	Swapchain     any
	RenderPass    any
	Pipeline      any
)

// Status is the non-fatal outcome of an acquire or present call.
type Status int

const (
	StatusOK Status = iota
	// StatusSuboptimal means the image was acquired or presented but the
	// swapchain no longer matches the surface exactly.
	StatusSuboptimal
	// StatusOutOfDate means the swapchain can no longer be used with the
	// surface. No image was acquired or presented.
	StatusOutOfDate
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusSuboptimal:
		return "Suboptimal"
	case StatusOutOfDate:
		return "OutOfDate"
	}
	return "Unknown"
}

// SubmitInfo describes one batch of work for Driver.QueueSubmit.
type SubmitInfo struct {
	WaitSemaphores   []Semaphore
	WaitDstStageMask []core1_0.PipelineStageFlags
	CommandBuffers   []CommandBuffer
	SignalSemaphores []Semaphore
}

type RenderPassBeginInfo struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	RenderArea  core1_0.Rect2D
	ClearValues []core1_0.ClearValue
}

// Driver is the logical-device surface the frame loop drives: sync objects,
// command recording, graphics-queue submission and the per-image views and
// framebuffers of a swapchain.
type Driver interface {
	CreateFence(signaled bool) (Fence, error)
	DestroyFence(fence Fence)
	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(semaphore Semaphore)
	AllocateCommandBuffers(count int) ([]CommandBuffer, error)
	FreeCommandBuffers(buffers ...CommandBuffer)

	// WaitForFences blocks without a timeout until every fence is signaled.
	WaitForFences(fences ...Fence) error
	ResetFences(fences ...Fence) error
	DeviceWaitIdle() error

	ResetCommandBuffer(buffer CommandBuffer) error
	BeginCommandBuffer(buffer CommandBuffer) error
	EndCommandBuffer(buffer CommandBuffer) error
	CmdBeginRenderPass(buffer CommandBuffer, info RenderPassBeginInfo) error
	CmdBindPipeline(buffer CommandBuffer, pipeline Pipeline)
	CmdSetViewport(buffer CommandBuffer, viewports ...core1_0.Viewport)
	CmdSetScissor(buffer CommandBuffer, scissors ...core1_0.Rect2D)
	CmdDraw(buffer CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance int)
	CmdEndRenderPass(buffer CommandBuffer)

	// QueueSubmit submits to the graphics queue and signals fence when all
	// batches complete.
	QueueSubmit(fence Fence, submits ...SubmitInfo) error

	CreateImageView(image Image, format core1_0.Format) (ImageView, error)
	DestroyImageView(view ImageView)
	CreateFramebuffer(renderPass RenderPass, view ImageView, extent core1_0.Extent2D) (Framebuffer, error)
	DestroyFramebuffer(framebuffer Framebuffer)
}

// SurfaceSupport is what the presentation surface currently allows.
type SurfaceSupport struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

type SwapchainCreateInfo struct {
	MinImageCount int
	SurfaceFormat khr_surface.SurfaceFormat
	Extent        core1_0.Extent2D
	PresentMode   khr_surface.PresentMode
	// Capabilities is the snapshot the other fields were chosen from. The
	// driver takes the pre-transform from it.
	Capabilities  *khr_surface.SurfaceCapabilities
}

// SwapchainDriver owns the surface side: capability queries, swapchain
// creation and the acquire/present pair. Acquire and present report
// staleness through Status and reserve the error for fatal failures.
type SwapchainDriver interface {
	SurfaceSupport() (SurfaceSupport, error)
	CreateSwapchain(info SwapchainCreateInfo) (Swapchain, error)
	DestroySwapchain(swapchain Swapchain)
	GetSwapchainImages(swapchain Swapchain) ([]Image, error)

	// AcquireNextImage waits without a timeout for the next presentable
	// image and arranges for signal to fire once it is ready.
	AcquireNextImage(swapchain Swapchain, signal Semaphore) (int, Status, error)
	// QueuePresent queues imageIndex for presentation after wait fires.
	QueuePresent(swapchain Swapchain, imageIndex int, wait Semaphore) (Status, error)
}

// Window is the windowing collaborator as seen by swapchain recreation.
type Window interface {
	// DrawableSize is the current framebuffer size in pixels.
	DrawableSize() core1_0.Extent2D
	// WaitForDrawableSize pumps window events until the drawable size is
	// non-zero in both axes. ok is false if the window was closed first.
	WaitForDrawableSize() (extent core1_0.Extent2D, ok bool)
}
