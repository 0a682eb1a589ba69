package vkng

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"
	"github.com/vkngwrapper/triangle/frame"
)

var validationLayers = []string{"VK_LAYER_KHRONOS_validation"}
var deviceExtensions = []string{khr_swapchain.ExtensionName}

type QueueFamilyIndices struct {
	GraphicsFamily *int
	PresentFamily  *int
}

func (i *QueueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil && i.PresentFamily != nil
}

type ContextInfo struct {
	Window           *sdl.Window
	ApplicationName  string
	// EnableValidation turns on the Khronos validation layer and routes its
	// messages to the frame logger.
	EnableValidation bool
}

// Context owns the instance, surface, logical device, queues and the
// command pool frame slots allocate from. It implements frame.Driver and
// frame.SwapchainDriver.
type Context struct {
	window *sdl.Window

	globalDriver   core1_0.GlobalDriver
	instanceDriver core1_0.CoreInstanceDriver
	deviceDriver   core1_0.CoreDeviceDriver

	debugDriver      ext_debug_utils.ExtensionDriver
	debugMessenger   ext_debug_utils.DebugUtilsMessenger
	surfaceExtension khr_surface.ExtensionDriver
	surface          khr_surface.Surface

	physicalDevice core1_0.PhysicalDevice
	properties     *core1_0.PhysicalDeviceProperties
	queueFamilies  QueueFamilyIndices

	graphicsQueue core1_0.Queue
	presentQueue  core1_0.Queue

	swapchainExtension khr_swapchain.ExtensionDriver
	commandPool        core1_0.CommandPool
}

// NewContext brings up Vulkan against the SDL window. Any partially created
// state is destroyed on failure.
func NewContext(info ContextInfo) (*Context, error) {
	c := &Context{window: info.Window}

	var err error
	c.globalDriver, err = core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "loading vulkan")
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"create instance", func() error { return c.createInstance(info) }},
		{"set up debug messenger", func() error { return c.setupDebugMessenger(info.EnableValidation) }},
		{"create surface", c.createSurface},
		{"pick physical device", c.pickPhysicalDevice},
		{"create logical device", c.createLogicalDevice},
		{"create command pool", c.createCommandPool},
	}
	for _, step := range steps {
		err = step.fn()
		if err != nil {
			c.Destroy()
			return nil, errors.Wrap(err, step.name)
		}
	}

	return c, nil
}

func (c *Context) createInstance(info ContextInfo) error {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    info.ApplicationName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	// Add extensions
	sdlExtensions := c.window.VulkanGetInstanceExtensions()
	extensions, _, err := c.globalDriver.AvailableExtensions()
	if err != nil {
		return err
	}

	for name := range extensions {
		frame.Logger().Debug("available instance extension", "name", name)
	}

	for _, ext := range sdlExtensions {
		_, hasExt := extensions[ext]
		if !hasExt {
			return errors.Errorf("cannot initialize sdl: missing extension %s", ext)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext)
	}

	if info.EnableValidation {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext_debug_utils.ExtensionName)
	}

	_, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]
	if enumerationSupported {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	// Add layers
	if info.EnableValidation {
		layers, _, err := c.globalDriver.AvailableLayers()
		if err != nil {
			return err
		}

		for _, layer := range validationLayers {
			_, hasValidation := layers[layer]
			if !hasValidation {
				return errors.Errorf("cannot add validation layer %s: not available, install the LunarG Vulkan SDK", layer)
			}
			instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, layer)
		}

		// Catch messages from instance creation and destruction too.
		instanceOptions.Next = debugMessengerOptions()
	}

	c.instanceDriver, _, err = c.globalDriver.CreateInstance(nil, instanceOptions)
	return err
}

func (c *Context) setupDebugMessenger(enabled bool) error {
	if !enabled {
		return nil
	}

	var err error
	c.debugDriver = ext_debug_utils.CreateExtensionDriverFromCoreDriver(c.instanceDriver)
	c.debugMessenger, _, err = c.debugDriver.CreateDebugUtilsMessenger(nil, debugMessengerOptions())
	return err
}

func (c *Context) createSurface() error {
	c.surfaceExtension = khr_surface.CreateExtensionDriverFromCoreDriver(c.instanceDriver)
	surface, err := vkng_sdl2.CreateSurface(c.instanceDriver.Instance(), c.surfaceExtension, c.window)
	if err != nil {
		return err
	}

	c.surface = surface
	return nil
}

func (c *Context) pickPhysicalDevice() error {
	physicalDevices, _, err := c.instanceDriver.EnumeratePhysicalDevices()
	if err != nil {
		return err
	}

	for _, device := range physicalDevices {
		if !c.isDeviceSuitable(device) {
			continue
		}

		c.physicalDevice = device
		c.properties, err = c.instanceDriver.GetPhysicalDeviceProperties(device)
		if err != nil {
			return err
		}
		c.queueFamilies, err = c.findQueueFamilies(device)
		if err != nil {
			return err
		}
		break
	}

	if !c.physicalDevice.Initialized() {
		return errors.Mark(errors.New("failed to find a suitable GPU"), frame.ErrSurfaceUnsupported)
	}

	frame.Logger().Info("physical device selected",
		"name", c.properties.DriverName,
		"type", c.properties.DriverType,
		"graphicsFamily", *c.queueFamilies.GraphicsFamily,
		"presentFamily", *c.queueFamilies.PresentFamily,
	)
	return nil
}

func (c *Context) isDeviceSuitable(device core1_0.PhysicalDevice) bool {
	indices, err := c.findQueueFamilies(device)
	if err != nil || !indices.IsComplete() {
		return false
	}

	if !c.checkDeviceExtensionSupport(device) {
		return false
	}

	support, err := c.querySurfaceSupport(device)
	if err != nil {
		return false
	}
	return len(support.Formats) > 0 && len(support.PresentModes) > 0
}

func (c *Context) checkDeviceExtensionSupport(device core1_0.PhysicalDevice) bool {
	extensions, _, err := c.instanceDriver.EnumerateDeviceExtensionProperties(device)
	if err != nil {
		return false
	}

	for _, extension := range deviceExtensions {
		_, hasExtension := extensions[extension]
		if !hasExtension {
			return false
		}
	}

	return true
}

func (c *Context) findQueueFamilies(device core1_0.PhysicalDevice) (QueueFamilyIndices, error) {
	indices := QueueFamilyIndices{}
	queueFamilies := c.instanceDriver.GetPhysicalDeviceQueueFamilyProperties(device)

	for queueFamilyIdx, queueFamily := range queueFamilies {
		if (queueFamily.QueueFlags & core1_0.QueueGraphics) != 0 {
			indices.GraphicsFamily = new(int)
			*indices.GraphicsFamily = queueFamilyIdx
		}

		supported, _, err := c.surfaceExtension.GetPhysicalDeviceSurfaceSupport(c.surface, device, queueFamilyIdx)
		if err != nil {
			return indices, err
		}

		if supported {
			indices.PresentFamily = new(int)
			*indices.PresentFamily = queueFamilyIdx
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices, nil
}

func (c *Context) createLogicalDevice() error {
	indices := c.queueFamilies

	uniqueQueueFamilies := []int{*indices.GraphicsFamily}
	if uniqueQueueFamilies[0] != *indices.PresentFamily {
		uniqueQueueFamilies = append(uniqueQueueFamilies, *indices.PresentFamily)
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range uniqueQueueFamilies {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	var extensionNames []string
	extensionNames = append(extensionNames, deviceExtensions...)

	// Portability drivers (MoltenVK) require the subset extension when offered.
	extensions, _, err := c.instanceDriver.EnumerateDeviceExtensionProperties(c.physicalDevice)
	if err != nil {
		return err
	}

	_, supported := extensions[khr_portability_subset.ExtensionName]
	if supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	c.deviceDriver, _, err = c.instanceDriver.CreateDevice(c.physicalDevice, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return err
	}

	c.graphicsQueue = c.deviceDriver.GetQueue(*indices.GraphicsFamily, 0)
	c.presentQueue = c.deviceDriver.GetQueue(*indices.PresentFamily, 0)
	c.swapchainExtension = khr_swapchain.CreateExtensionDriverFromCoreDriver(c.deviceDriver)
	return nil
}

func (c *Context) createCommandPool() error {
	pool, _, err := c.deviceDriver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: *c.queueFamilies.GraphicsFamily,
	})
	if err != nil {
		return err
	}

	c.commandPool = pool
	return nil
}

// Properties describes the selected physical device.
func (c *Context) Properties() *core1_0.PhysicalDeviceProperties {
	return c.properties
}

func (c *Context) QueueFamilies() QueueFamilyIndices {
	return c.queueFamilies
}

// Destroy releases everything NewContext created, in reverse order. The
// renderer must already be shut down.
func (c *Context) Destroy() {
	if c.commandPool.Initialized() {
		c.deviceDriver.DestroyCommandPool(c.commandPool, nil)
		c.commandPool = core1_0.CommandPool{}
	}

	if c.deviceDriver != nil {
		c.deviceDriver.DestroyDevice(nil)
		c.deviceDriver = nil
	}

	if c.debugMessenger.Initialized() {
		c.debugDriver.DestroyDebugUtilsMessenger(c.debugMessenger, nil)
		c.debugMessenger = ext_debug_utils.DebugUtilsMessenger{}
	}

	if c.surface.Initialized() {
		c.surfaceExtension.DestroySurface(c.surface, nil)
		c.surface = khr_surface.Surface{}
	}

	if c.instanceDriver != nil {
		c.instanceDriver.DestroyInstance(nil)
		c.instanceDriver = nil
	}
}
