package vkctx

import "fmt"

// MultiGPU names the capability key an Application requests on a
// Usage chain when it wants device-group (multi-GPU) support enabled
// on the selected physical device.
const MultiGPU = "DeviceGroup"

// Usage names one optional Vulkan device capability an Application can
// ask NewPlatform to request: a set of device extensions, gated behind
// a name so a caller can test for it (app.VulkanCapabilities()'s
// Bool_props["DeviceGroup"]) without re-deriving the extension list
// itself. Linked_usage chains capabilities that depend on each other —
// a ray-tracing Usage typically links back to one requesting the
// acceleration-structure extensions it needs.
type Usage struct {
	Name         string
	String_props map[string]string
	Int_props    map[string]int
	Bool_props   map[string]bool
	Float_props  map[string]float32
	Extensions   []string
	Linked_usage *Usage
}

// NewUsage constructs a named, empty Usage with its property maps
// pre-sized for default_size entries.
func NewUsage(name string, default_size uint) *Usage {
	var use Usage
	use.Name = name
	use.String_props = make(map[string]string, default_size)
	use.Int_props = make(map[string]int, default_size)
	use.Bool_props = make(map[string]bool, default_size)
	use.Float_props = make(map[string]float32, default_size)
	return &use
}

func (u *Usage) HasNext() bool {
	return u.Linked_usage != nil
}

func (u *Usage) GetLinkedUsage() (*Usage, error) {
	if !u.HasNext() {
		return nil, fmt.Errorf("usage %q has no linked usage", u.Name)
	}
	return u.Linked_usage, nil
}

// RequestedExtensions walks the Usage chain (this entry plus every
// Linked_usage behind it) collecting the device extensions a capability
// name requires, for folding into NewPlatform's device extension
// request alongside what the Application already lists directly.
func (u *Usage) RequestedExtensions() []string {
	var out []string
	for cur := u; cur != nil; cur = cur.Linked_usage {
		out = append(out, cur.Extensions...)
	}
	return out
}

// Print writes the usage chain's property maps to stdout, walking
// Linked_usage to the end — a debug aid for an Application that wants
// to confirm what it actually requested before NewPlatform runs.
func (u *Usage) Print() {
	fmt.Print(u.String_props)
	fmt.Print(u.Bool_props)
	fmt.Print(u.Int_props)
	fmt.Print(u.Float_props)
	if u.HasNext() {
		u.Linked_usage.Print()
	}
}
