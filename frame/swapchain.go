package frame

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// SwapchainResources is the swapchain together with everything derived from
// its images: one view and one framebuffer per image. It is built and torn
// down as a unit and is never patched in place.
type SwapchainResources struct {
	driver     Driver
	swapDriver SwapchainDriver
	renderPass RenderPass

	swapchain    Swapchain
	images       []Image
	views        []ImageView
	framebuffers []Framebuffer

	surfaceFormat khr_surface.SurfaceFormat
	presentMode   khr_surface.PresentMode
	extent        core1_0.Extent2D
	generation    int
}

// NewSwapchainResources returns an empty set whose framebuffers will target
// renderPass. Nothing is created until Build.
func NewSwapchainResources(driver Driver, swapDriver SwapchainDriver, renderPass RenderPass) *SwapchainResources {
	return &SwapchainResources{
		driver:     driver,
		swapDriver: swapDriver,
		renderPass: renderPass,
	}
}

// Build creates the swapchain against the surface's current capabilities.
// windowExtent is the window's drawable size, used only when the surface
// leaves the extent to the application. An existing set is torn down first.
func (s *SwapchainResources) Build(windowExtent core1_0.Extent2D) error {
	s.Teardown()

	support, err := s.swapDriver.SurfaceSupport()
	if err != nil {
		return errors.Wrap(err, "querying surface support")
	}
	if support.Capabilities == nil || len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return errors.Wrapf(ErrSurfaceUnsupported, "surface reports %d formats and %d present modes",
			len(support.Formats), len(support.PresentModes))
	}

	surfaceFormat := ChooseSurfaceFormat(support.Formats)
	presentMode := ChoosePresentMode(support.PresentModes)
	extent := ChooseExtent(support.Capabilities, windowExtent)
	imageCount := ChooseImageCount(support.Capabilities)

	swapchain, err := s.swapDriver.CreateSwapchain(SwapchainCreateInfo{
		MinImageCount: imageCount,
		SurfaceFormat: surfaceFormat,
		Extent:        extent,
		PresentMode:   presentMode,
		Capabilities:  support.Capabilities,
	})
	if err != nil {
		return errors.Wrap(err, "creating swapchain")
	}
	s.swapchain = swapchain
	s.surfaceFormat = surfaceFormat
	s.presentMode = presentMode
	s.extent = extent

	images, err := s.swapDriver.GetSwapchainImages(swapchain)
	if err != nil {
		return errors.Wrap(err, "getting swapchain images")
	}
	s.images = images

	for i, image := range images {
		view, err := s.driver.CreateImageView(image, surfaceFormat.Format)
		if err != nil {
			return errors.Wrapf(err, "creating view for swapchain image %d", i)
		}
		s.views = append(s.views, view)
	}

	for i, view := range s.views {
		framebuffer, err := s.driver.CreateFramebuffer(s.renderPass, view, extent)
		if err != nil {
			return errors.Wrapf(err, "creating framebuffer for swapchain image %d", i)
		}
		s.framebuffers = append(s.framebuffers, framebuffer)
	}

	s.generation++
	Logger().Info("swapchain built",
		"generation", s.generation,
		"images", len(s.images),
		"width", extent.Width,
		"height", extent.Height,
		"format", surfaceFormat.Format,
		"presentMode", presentMode,
	)

	return nil
}

// Teardown destroys framebuffers, then views, then the swapchain. Images
// belong to the swapchain and are only forgotten. Calling Teardown on an
// empty or already torn down set does nothing.
func (s *SwapchainResources) Teardown() {
	for _, framebuffer := range s.framebuffers {
		s.driver.DestroyFramebuffer(framebuffer)
	}
	s.framebuffers = nil

	for _, view := range s.views {
		s.driver.DestroyImageView(view)
	}
	s.views = nil

	if s.swapchain != nil {
		s.swapDriver.DestroySwapchain(s.swapchain)
		s.swapchain = nil
	}
	s.images = nil
}

// Built reports whether the set currently holds a usable swapchain.
func (s *SwapchainResources) Built() bool {
	return s.swapchain != nil && len(s.framebuffers) == len(s.images) && len(s.images) > 0
}

func (s *SwapchainResources) Swapchain() Swapchain {
	return s.swapchain
}

func (s *SwapchainResources) Extent() core1_0.Extent2D {
	return s.extent
}

func (s *SwapchainResources) SurfaceFormat() khr_surface.SurfaceFormat {
	return s.surfaceFormat
}

func (s *SwapchainResources) PresentMode() khr_surface.PresentMode {
	return s.presentMode
}

func (s *SwapchainResources) ImageCount() int {
	return len(s.images)
}

func (s *SwapchainResources) ViewCount() int {
	return len(s.views)
}

func (s *SwapchainResources) FramebufferCount() int {
	return len(s.framebuffers)
}

// Framebuffer returns the framebuffer wrapping swapchain image index.
func (s *SwapchainResources) Framebuffer(index int) (Framebuffer, bool) {
	if index < 0 || index >= len(s.framebuffers) {
		return nil, false
	}
	return s.framebuffers[index], true
}

// Generation counts successful builds.
func (s *SwapchainResources) Generation() int {
	return s.generation
}

// ChooseSurfaceFormat prefers 8-bit BGRA sRGB in the sRGB nonlinear color
// space and otherwise takes the first format offered. formats must not be
// empty.
func ChooseSurfaceFormat(formats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range formats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}

	return formats[0]
}

// ChoosePresentMode prefers mailbox and falls back to FIFO, which every
// surface supports.
func ChoosePresentMode(presentModes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, presentMode := range presentModes {
		if presentMode == khr_surface.PresentModeMailbox {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

// followsWindow reports whether the surface leaves the swapchain extent to
// the application, which it signals with a current width of 0xFFFFFFFF.
func followsWindow(extent core1_0.Extent2D) bool {
	return uint32(extent.Width) == math.MaxUint32
}

// ChooseExtent returns the surface's current extent, or the window's
// drawable size clamped to the surface limits when the surface follows the
// window.
func ChooseExtent(capabilities *khr_surface.SurfaceCapabilities, windowExtent core1_0.Extent2D) core1_0.Extent2D {
	if !followsWindow(capabilities.CurrentExtent) {
		return capabilities.CurrentExtent
	}

	return core1_0.Extent2D{
		Width:  clamp(windowExtent.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(windowExtent.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum so the driver
// never has to block acquire on the application, bounded by the maximum
// (0 means no maximum).
func ChooseImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
