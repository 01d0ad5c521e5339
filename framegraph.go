package vkframegraph

import (
	"fmt"
	"log"

	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkframegraph/internal/vkctx"
	"github.com/andewx/vkframegraph/vksync"
)

// TransitionInfo is one barrier the recorder emitted, returned in
// ExecutionInfo.Transitions for diagnostics.
type TransitionInfo struct {
	Kind         DependencyKind
	Task         Handle
	Resource     TransientHandle
	StateBefore  vksync.AccessType
	StateAfter   vksync.AccessType
}

// FrameContext is the per-frame state a caller hands to Record: the
// command buffer to record into and the swapchain image index it
// targets. A caller driving vkctx's Context acquires both from its
// swapchain-image-acquire step before building one of these.
type FrameContext struct {
	CommandBuffer vk.CommandBuffer
	ImageIndex    uint32
}

// state the facade moves through across one frame's declare/record
// cycle; ResetForNextFrame returns it to Idle.
type frameState int

const (
	stateIdle frameState = iota
	stateDeclaring
	stateRecorded
)

// Framegraph is the facade assembling the slot map, texture manager,
// resolver and recorder into one declare/record/reset cycle. One
// instance is reused frame over frame; call ResetForNextFrame between
// frames to reclaim transient resources and task declarations.
type Framegraph struct {
	device   vk.Device
	physical vk.PhysicalDevice

	resources *TextureManager
	tasks     *SlotMap[TaskInfo]

	externalInputs []TransientHandle
	outputs        []TransientHandle

	state           frameState
	recordingCmd    vk.CommandBuffer
	lastTransitions []TransitionInfo

	logger *log.Logger
}

// New constructs a Framegraph bound to a device/physical device pair,
// the same pair a vkctx.Context exposes (Device plus the physical
// device it was built against) for image/memory allocation.
func New(device vk.Device, physical vk.PhysicalDevice) *Framegraph {
	return &Framegraph{
		device:    device,
		physical:  physical,
		resources: NewTextureManager(device, physical),
		tasks:     NewSlotMap[TaskInfo](),
		state:     stateIdle,
		logger:    log.New(log.Writer(), "framegraph: ", log.LstdFlags),
	}
}

// NewFromContext builds a Framegraph bound to ctx's device and
// physical device, the pair OnPlatformUpdate keeps current across a
// swapchain recreation. Use this instead of New when the host is
// already driving a vkctx.Context for its bootstrap and render loop.
func NewFromContext(ctx vkctx.Context) *Framegraph {
	return New(ctx.Device(), ctx.PhysicalDevice())
}

// DeclareSwapchainInput registers ctx's swapchain image at imageIndex
// (the index the caller's vkAcquireNextImageKHR returned) as a framegraph
// external input, at the Present access layout a swapchain image sits
// in between frames. The returned handle's TextureInfo carries ctx's
// current swapchain extent so a task reading it can size a render
// pass without querying ctx directly.
func (fg *Framegraph) DeclareSwapchainInput(ctx vkctx.Context, imageIndex int) (TransientHandle, error) {
	image, view, err := ctx.SwapchainImage(imageIndex)
	if err != nil {
		return TransientHandle{}, wrapErr(ErrAllocationFailure, "framegraph", "failed to resolve swapchain image", err)
	}
	extent := ctx.SwapchainExtent()
	info := TextureInfo{
		Name: "swapchain",
		Size: Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
	}
	return fg.DeclareInput(info, vksync.Present, image, view), nil
}

// SetLogger overrides the destination for the framegraph's own
// trace logging (one line naming each task as it is recorded).
func (fg *Framegraph) SetLogger(l *log.Logger) { fg.logger = l }

// Resources exposes the texture manager for callers that need direct
// image/view access outside of a task body (e.g. presenting the final
// output image).
func (fg *Framegraph) Resources() *TextureManager { return fg.resources }

// DeclareInput registers an already-live Vulkan image (typically the
// current swapchain image) as a framegraph input at its last known
// access/layout.
func (fg *Framegraph) DeclareInput(info TextureInfo, lastAccess vksync.AccessType, image vk.Image, view vk.ImageView) TransientHandle {
	handle := fg.resources.RegisterExternal(info, lastAccess, image, view)
	fg.externalInputs = append(fg.externalInputs, handle)
	return handle
}

// DeclareTask opens a two-phase task declaration: declare populates a
// TaskBuilder with the task's Read/Write/Create dependencies and
// returns the record callback invoked once the recorder has emitted
// this task's barriers. A task's body here is just two ordinary
// functions rather than one coroutine suspended mid-body, so there is
// no separate awaiter/resume step to model.
func (fg *Framegraph) DeclareTask(name string, declare func(*TaskBuilder) func(RecordContext) error) (Handle, error) {
	if fg.state == stateRecorded {
		return Handle{}, newErr(ErrContractViolation, "framegraph", "cannot declare a task after Record; call ResetForNextFrame first")
	}
	fg.state = stateDeclaring

	builder := newTaskBuilder(name, fg.resources)
	record := declare(builder)
	info := builder.Build(record)
	handle := fg.tasks.Insert(info)
	return handle, nil
}

// DeclareOutput marks handle as an output the framegraph must keep
// alive through resolution; Record only executes the tasks needed to
// produce the declared outputs, dead-code-eliminating the rest.
func (fg *Framegraph) DeclareOutput(handle TransientHandle) (TextureInfo, TextureState, error) {
	fg.outputs = append(fg.outputs, handle)
	info, err := fg.resources.Info(handle)
	if err != nil {
		return TextureInfo{}, TextureState{}, err
	}
	state, err := fg.resources.State(handle)
	if err != nil {
		return TextureInfo{}, TextureState{}, err
	}
	return info, state, nil
}

// Compile resolves the task graph against the declared outputs and
// allocates backing memory for every resource the resolver determined
// is actually required. Record calls this itself; exposed separately
// so Dump can render the resolved graph before recording runs.
func (fg *Framegraph) Compile() (ExecutionInfo, error) {
	execInfo, err := Resolve(fg.tasks, fg.externalInputs, fg.outputs)
	if err != nil {
		return ExecutionInfo{}, err
	}
	if err := fg.resources.Allocate(execInfo.Resources); err != nil {
		return ExecutionInfo{}, err
	}
	return execInfo, nil
}

// Record compiles the task graph and records every reached task's
// barriers and body into frameCtx.CommandBuffer, in resolved execution
// order. Returns the compiled plan with Transitions filled in with
// every barrier actually emitted, for diagnostics.
func (fg *Framegraph) Record(frameCtx FrameContext) (ExecutionInfo, error) {
	if fg.state == stateRecorded {
		return ExecutionInfo{}, newErr(ErrContractViolation, "framegraph", "already recorded this frame; call ResetForNextFrame before recording again")
	}

	execInfo, err := fg.Compile()
	if err != nil {
		return ExecutionInfo{}, err
	}

	fg.recordingCmd = frameCtx.CommandBuffer
	defer func() { fg.recordingCmd = vk.NullCommandBuffer }()

	var transitions []TransitionInfo
	for _, taskHandle := range execInfo.Tasks {
		taskTransitions, err := fg.executeTask(taskHandle, frameCtx)
		if err != nil {
			execInfo.Transitions = transitions
			return execInfo, err
		}
		transitions = append(transitions, taskTransitions...)
	}

	execInfo.Transitions = transitions
	fg.lastTransitions = transitions
	fg.state = stateRecorded
	return execInfo, nil
}

// executeTask emits the barriers for one task's dependencies then
// invokes its record callback exactly once. Mirrors
// Framegraph::executePass: the emitBarrier lambda there becomes the
// loop below, and the "coroutine must be done after resume" assertion
// becomes the single call below, whose error (like a missing callback)
// is returned as a ContractViolation.
func (fg *Framegraph) executeTask(taskHandle Handle, frameCtx FrameContext) ([]TransitionInfo, error) {
	task, ok := fg.tasks.Get(taskHandle)
	if !ok {
		return nil, newErr(ErrStaleHandle, "framegraph", "task handle went stale mid-record")
	}

	fg.logger.Printf("recording task %q", task.Name)

	var transitions []TransitionInfo
	var barriers []vksync.ImageBarrier

	for _, dep := range task.Dependencies {
		before, err := fg.resources.State(dep.Handle)
		if err != nil {
			return transitions, err
		}

		contents := vksync.Discard
		if dep.Kind.has(DependencyRead) {
			contents = vksync.Retain
		}

		barrier, err := fg.resources.Synchronize(dep.Handle, dep.Access, contents)
		if err != nil {
			return transitions, err
		}
		barriers = append(barriers, barrier)

		transitions = append(transitions, TransitionInfo{
			Kind:        dep.Kind,
			Task:        taskHandle,
			Resource:    dep.Handle,
			StateBefore: before.LastAccess,
			StateAfter:  dep.Access,
		})
	}

	vksync.CmdPipelineBarrier(frameCtx.CommandBuffer, nil, barriers)

	if task.Record == nil {
		return transitions, newErr(ErrContractViolation, "framegraph", fmt.Sprintf("task %q has no record callback", task.Name))
	}

	ctx := RecordContext{CommandBuffer: frameCtx.CommandBuffer, Resources: fg.resources, Task: &task}
	if err := task.Record(ctx); err != nil {
		return transitions, wrapErr(ErrContractViolation, "framegraph", fmt.Sprintf("task %q record callback failed", task.Name), err)
	}

	return transitions, nil
}

// Dump renders the current task graph (resolved, if Record/Compile has
// already run this frame; otherwise the raw declared graph) as a DOT
// document for visualization.
func (fg *Framegraph) Dump() string {
	return fg.dumpDot()
}

// ResetForNextFrame releases every transient resource and task
// declaration, preparing the Framegraph for the next frame's declare
// cycle. It is idempotent: calling it twice in a row (without any
// declaration in between) is a no-op the second time, so it is always
// safe to call during teardown after an already-reset graph.
func (fg *Framegraph) ResetForNextFrame() {
	fg.resources.Clear()
	fg.externalInputs = nil
	fg.outputs = nil
	fg.tasks.Clear()
	fg.lastTransitions = nil
	fg.state = stateIdle
}
