package vkctx

import vk "github.com/vulkan-go/vulkan"

// VulkanMode is a bitmask of the queue capabilities an Application asks
// its Context to set up.
type VulkanMode uint32

const (
	VulkanNone VulkanMode = (1 << iota) >> 1
	VulkanCompute
	VulkanGraphics
	VulkanPresent
)

func (v VulkanMode) Has(mode VulkanMode) bool {
	return v&mode != 0
}

// Application is the bootstrap contract a host program implements to
// stand up a Context: instance/device extensions, API version, queue
// mode, window-surface creation. It carries no framegraph-specific
// behavior of its own — that belongs to whatever Framegraph tasks the
// host declares once the Context is live.
type Application interface {
	VulkanInit(ctx Context) error
	VulkanAPIVersion() vk.Version
	VulkanAppVersion() vk.Version
	VulkanAppName() string
	VulkanMode() VulkanMode
	VulkanSurface(instance vk.Instance) vk.Surface
	VulkanInstanceExtensions() []string
	VulkanDeviceExtensions() []string
	VulkanDebug() bool

	// Optional decorators an Application can additionally implement:
	// ApplicationSwapchainDimensions, ApplicationVulkanLayers,
	// ApplicationContextPrepare, ApplicationContextCleanup,
	// ApplicationContextInvalidate.
}

type ApplicationSwapchainDimensions interface {
	VulkanSwapchainDimensions() *SwapchainDimensions
}

type ApplicationVulkanLayers interface {
	VulkanLayers() []string
}

// ApplicationCapabilities lets an Application request optional device
// capabilities (e.g. device-group/multi-GPU support) by name rather
// than listing raw extension strings alongside VulkanDeviceExtensions.
// NewPlatform folds VulkanCapabilities().RequestedExtensions() into the
// device extension request before checking what the selected physical
// device actually supports.
type ApplicationCapabilities interface {
	VulkanCapabilities() *Usage
}

type ApplicationContextPrepare interface {
	VulkanContextPrepare() error
}

type ApplicationContextCleanup interface {
	VulkanContextCleanup() error
}

type ApplicationContextInvalidate interface {
	VulkanContextInvalidate(imageIdx int) error
}

var (
	DefaultVulkanAppVersion = vk.MakeVersion(1, 0, 0)
	DefaultVulkanAPIVersion = vk.MakeVersion(1, 0, 0)
	DefaultVulkanMode       = VulkanGraphics | VulkanPresent
)

// SwapchainDimensions describes the size and pixel format of the
// swapchain a Context negotiates with the platform surface.
type SwapchainDimensions struct {
	Width  uint32
	Height uint32
	Format vk.Format
}

// BaseVulkanApp is an embeddable Application with framegraph-neutral
// defaults; a host only overrides the methods it needs (typically
// VulkanAppName, VulkanInstanceExtensions/VulkanDeviceExtensions, and
// VulkanSurface).
type BaseVulkanApp struct {
	context Context
}

func (app *BaseVulkanApp) Context() Context { return app.context }

func (app *BaseVulkanApp) VulkanInit(ctx Context) error {
	app.context = ctx
	return nil
}

func (app *BaseVulkanApp) VulkanAPIVersion() vk.Version { return vk.Version(DefaultVulkanAPIVersion) }
func (app *BaseVulkanApp) VulkanAppVersion() vk.Version { return vk.Version(DefaultVulkanAppVersion) }
func (app *BaseVulkanApp) VulkanAppName() string        { return "vkframegraph" }
func (app *BaseVulkanApp) VulkanMode() VulkanMode        { return DefaultVulkanMode }
func (app *BaseVulkanApp) VulkanSurface(instance vk.Instance) vk.Surface { return vk.NullSurface }
func (app *BaseVulkanApp) VulkanInstanceExtensions() []string           { return nil }
func (app *BaseVulkanApp) VulkanDeviceExtensions() []string             { return nil }
func (app *BaseVulkanApp) VulkanDebug() bool                            { return false }
