package vkctx

import (
	"log"
	"runtime"

	vk "github.com/vulkan-go/vulkan"
)

// PlatformOS is "Darwin" on macOS and empty on every other host OS.
// Nothing in this package reads it.
var PlatformOS = map[string]string{"darwin": "Darwin"}[runtime.GOOS]

// NewError is the exported spelling of newError: it turns a VkResult
// into an error, nil for vk.Success, for the call sites that built
// their own panic/exit path against the capitalized name.
func NewError(ret vk.Result) error { return newError(ret) }

// Fatal logs err and exits the process. Used only at device/instance
// bring-up, where there is no frame in flight yet to fail gracefully
// out of.
func Fatal(err error) {
	if err == nil {
		return
	}
	log.Fatal(err)
}

// safeString returns a NUL-terminated copy of s suitable for passing
// to a Vulkan PNext/PName field expecting a C string.
func safeString(s string) string {
	return s + "\x00"
}

// safeStrings applies safeString to every element of in.
func safeStrings(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = safeString(s)
	}
	return out
}

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	orPanic(newError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	orPanic(newError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// DeviceExtensions gets a list of device extensions available on the provided physical device.
func DeviceExtensions(gpu vk.PhysicalDevice) (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	orPanic(newError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	orPanic(newError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// checkExisting intersects actual (what the platform reports) with
// requested (what the Application asked for), returning the subset that
// is actually available plus a count of names that were requested but
// not found.
func checkExisting(actual, requested []string) (existing []string, missing int) {
	have := make(map[string]bool, len(actual))
	for _, name := range actual {
		have[name] = true
	}
	for _, name := range requested {
		if have[name] {
			existing = append(existing, name)
		} else {
			missing++
		}
	}
	return existing, missing
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	orPanic(newError(ret))
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	orPanic(newError(ret))
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, err
}
