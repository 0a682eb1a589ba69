package vkng

import (
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/triangle/frame"
)

var _ frame.SwapchainDriver = (*Context)(nil)

// SurfaceSupport queries the window surface against the selected device.
func (c *Context) SurfaceSupport() (frame.SurfaceSupport, error) {
	return c.querySurfaceSupport(c.physicalDevice)
}

func (c *Context) querySurfaceSupport(device core1_0.PhysicalDevice) (frame.SurfaceSupport, error) {
	var details frame.SurfaceSupport
	var err error

	details.Capabilities, _, err = c.surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(c.surface, device)
	if err != nil {
		return details, err
	}

	details.Formats, _, err = c.surfaceExtension.GetPhysicalDeviceSurfaceFormats(c.surface, device)
	if err != nil {
		return details, err
	}

	details.PresentModes, _, err = c.surfaceExtension.GetPhysicalDeviceSurfacePresentModes(c.surface, device)
	return details, err
}

func (c *Context) CreateSwapchain(info frame.SwapchainCreateInfo) (frame.Swapchain, error) {
	sharingMode := core1_0.SharingModeExclusive
	var queueFamilyIndices []int

	indices := c.queueFamilies
	if *indices.GraphicsFamily != *indices.PresentFamily {
		sharingMode = core1_0.SharingModeConcurrent
		queueFamilyIndices = append(queueFamilyIndices, *indices.GraphicsFamily, *indices.PresentFamily)
	}

	swapchain, _, err := c.swapchainExtension.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: c.surface,

		MinImageCount:    info.MinImageCount,
		ImageFormat:      info.SurfaceFormat.Format,
		ImageColorSpace:  info.SurfaceFormat.ColorSpace,
		ImageExtent:      info.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   info.Capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    info.PresentMode,
		Clipped:        true,
	})
	if err != nil {
		return nil, err
	}
	return swapchain, nil
}

func (c *Context) DestroySwapchain(swapchain frame.Swapchain) {
	c.swapchainExtension.DestroySwapchain(swapchain.(khr_swapchain.Swapchain), nil)
}

func (c *Context) GetSwapchainImages(swapchain frame.Swapchain) ([]frame.Image, error) {
	images, _, err := c.swapchainExtension.GetSwapchainImages(swapchain.(khr_swapchain.Swapchain))
	if err != nil {
		return nil, err
	}

	out := make([]frame.Image, 0, len(images))
	for _, image := range images {
		out = append(out, image)
	}
	return out, nil
}

// AcquireNextImage waits without timeout for the next presentable image.
// Out-of-date and suboptimal results come back as a Status, not an error.
func (c *Context) AcquireNextImage(swapchain frame.Swapchain, signal frame.Semaphore) (int, frame.Status, error) {
	semaphore := signal.(core1_0.Semaphore)
	imageIndex, res, err := c.swapchainExtension.AcquireNextImage(swapchain.(khr_swapchain.Swapchain), common.NoTimeout, &semaphore, nil)
	status := Status(res)
	if status != frame.StatusOK {
		return imageIndex, status, nil
	}
	return imageIndex, status, err
}

func (c *Context) QueuePresent(swapchain frame.Swapchain, imageIndex int, wait frame.Semaphore) (frame.Status, error) {
	res, err := c.swapchainExtension.QueuePresent(c.presentQueue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{wait.(core1_0.Semaphore)},
		Swapchains:     []khr_swapchain.Swapchain{swapchain.(khr_swapchain.Swapchain)},
		ImageIndices:   []int{imageIndex},
	})
	status := Status(res)
	if status != frame.StatusOK {
		return status, nil
	}
	return status, err
}

// Status maps the swapchain's stale results onto frame.Status. Every other
// result, success or failure, is StatusOK and left to the accompanying
// error.
func Status(res common.VkResult) frame.Status {
	switch res {
	case khr_swapchain.VKErrorOutOfDate:
		return frame.StatusOutOfDate
	case khr_swapchain.VKSuboptimal:
		return frame.StatusSuboptimal
	}
	return frame.StatusOK
}
