package vkframegraph

import "sort"

// ExecutionInfo is what Resolve returns: the tasks to run, in
// execution order, and the full set of texture slots those tasks
// require allocated. Transitions is left empty by Resolve itself; it
// fills in once Record actually emits the barriers Resolve's plan
// implies, so the same struct doubles as the compiled plan and, after
// recording, the record of what that plan produced.
type ExecutionInfo struct {
	Tasks       []Handle
	Resources   []Handle
	Transitions []TransitionInfo
}

// resourceKey identifies one version of one texture for the purposes
// of the resolver's producer/consumer maps; two TransientHandles with
// the same (Handle, Version) are the same resource edge.
type resourceKey struct {
	handle  Handle
	version uint32
}

func keyOf(h TransientHandle) resourceKey { return resourceKey{handle: h.Handle, version: h.Version} }

// Resolve performs the reverse-reachability flood fill from requested
// (the framegraph's declared outputs) back through the task graph,
// assigning each reached task a descending execution priority and
// dead-code-eliminating everything unreached: a resourceToTask/
// taskInputs pair of maps, a deque-based worklist, Create-dependency
// requirement propagation, and a final descending-priority sort.
func Resolve(tasks *SlotMap[TaskInfo], externalInputs []TransientHandle, requested []TransientHandle) (ExecutionInfo, error) {
	resourceToTask := make(map[resourceKey]Handle)
	taskInputs := make(map[Handle][]TransientHandle)

	for _, item := range tasks.Items() {
		taskHandle, info := item.Handle, item.Value
		for _, dep := range info.Dependencies {
			if dep.Kind.has(DependencyRead) && !dep.Kind.has(DependencyWrite) {
				taskInputs[taskHandle] = append(taskInputs[taskHandle], dep.Handle)
			}
			if dep.Kind.has(DependencyWrite) {
				resourceToTask[keyOf(dep.Handle)] = taskHandle
			}
		}
	}

	external := make(map[resourceKey]bool, len(externalInputs))
	for _, h := range externalInputs {
		external[keyOf(h)] = true
	}

	executionPrio := int32(-1)
	var requiredResources []Handle
	seenRequired := make(map[Handle]bool)
	addRequired := func(h Handle) {
		if !seenRequired[h] {
			seenRequired[h] = true
			requiredResources = append(requiredResources, h)
		}
	}

	queue := append([]TransientHandle(nil), requested...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		addRequired(next.Handle)

		writingTask, ok := resourceToTask[keyOf(next)]
		if !ok {
			if external[keyOf(next)] {
				continue
			}
			return ExecutionInfo{}, newErr(ErrUnresolvedDependency, "resolver",
				"resource is not created or written by any task and is not registered as external input")
		}

		info, ok := tasks.Get(writingTask)
		if !ok {
			return ExecutionInfo{}, newErr(ErrContractViolation, "resolver", "producing task handle is stale")
		}

		executionPrio++
		info.executionPriority = executionPrio
		tasks.Set(writingTask, info)

		for _, dep := range info.Dependencies {
			if dep.Kind.has(DependencyCreate) {
				addRequired(dep.Handle.Handle)
			}
		}

		queue = append(queue, taskInputs[writingTask]...)
	}

	type prioritized struct {
		handle Handle
		prio   int32
	}
	var toExecute []prioritized
	for _, item := range tasks.Items() {
		if item.Value.executionPriority >= 0 {
			toExecute = append(toExecute, prioritized{handle: item.Handle, prio: item.Value.executionPriority})
		}
	}
	sort.SliceStable(toExecute, func(i, j int) bool { return toExecute[i].prio > toExecute[j].prio })

	orderedTasks := make([]Handle, len(toExecute))
	for i, p := range toExecute {
		orderedTasks[i] = p.handle
	}

	return ExecutionInfo{Tasks: orderedTasks, Resources: requiredResources}, nil
}
