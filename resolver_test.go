package vkframegraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andewx/vkframegraph/vksync"
)

func insertTask(t *testing.T, tasks *SlotMap[TaskInfo], name string, deps ...Dependency) Handle {
	t.Helper()
	return tasks.Insert(TaskInfo{Name: name, Dependencies: deps, Record: func(RecordContext) error { return nil }, executionPriority: -1})
}

func TestResolvePassthrough(t *testing.T) {
	tasks := NewSlotMap[TaskInfo]()
	out := TransientHandle{Handle: Handle{Index: 0, Generation: 1}}

	insertTask(t, tasks, "produce", Dependency{Kind: DependencyCreate | DependencyWrite, Handle: out, Access: vksync.ColorAttachmentWrite})

	execInfo, err := Resolve(tasks, nil, []TransientHandle{out})
	require.NoError(t, err)
	require.Len(t, execInfo.Tasks, 1)
	require.Len(t, execInfo.Resources, 1)
}

func TestResolveTwoStageCompose(t *testing.T) {
	tasks := NewSlotMap[TaskInfo]()
	x := TransientHandle{Handle: Handle{Index: 0, Generation: 1}, Version: 0}
	y0 := TransientHandle{Handle: Handle{Index: 1, Generation: 1}, Version: 0}
	y1 := TransientHandle{Handle: Handle{Index: 1, Generation: 1}, Version: 1}

	produceX := insertTask(t, tasks, "produceX", Dependency{Kind: DependencyCreate | DependencyWrite, Handle: x, Access: vksync.ColorAttachmentWrite})
	produceY := insertTask(t, tasks, "composeY",
		Dependency{Kind: DependencyRead, Handle: x, Access: vksync.FragmentShaderReadOther},
		Dependency{Kind: DependencyCreate | DependencyWrite, Handle: y0, Access: vksync.ColorAttachmentWrite},
	)
	_ = y1

	execInfo, err := Resolve(tasks, nil, []TransientHandle{y0})
	require.NoError(t, err)
	require.Equal(t, []Handle{produceX, produceY}, execInfo.Tasks)
}

func TestResolveDeadCodeElimination(t *testing.T) {
	tasks := NewSlotMap[TaskInfo]()
	wanted := TransientHandle{Handle: Handle{Index: 0, Generation: 1}}
	unused := TransientHandle{Handle: Handle{Index: 1, Generation: 1}}

	wantedTask := insertTask(t, tasks, "wanted", Dependency{Kind: DependencyCreate | DependencyWrite, Handle: wanted, Access: vksync.ColorAttachmentWrite})
	insertTask(t, tasks, "unused", Dependency{Kind: DependencyCreate | DependencyWrite, Handle: unused, Access: vksync.ColorAttachmentWrite})

	execInfo, err := Resolve(tasks, nil, []TransientHandle{wanted})
	require.NoError(t, err)
	require.Equal(t, []Handle{wantedTask}, execInfo.Tasks)
}

func TestResolveDiamond(t *testing.T) {
	tasks := NewSlotMap[TaskInfo]()
	r0 := TransientHandle{Handle: Handle{Index: 0, Generation: 1}}
	r1 := TransientHandle{Handle: Handle{Index: 1, Generation: 1}}
	r2 := TransientHandle{Handle: Handle{Index: 2, Generation: 1}}
	out := TransientHandle{Handle: Handle{Index: 3, Generation: 1}}

	a := insertTask(t, tasks, "A", Dependency{Kind: DependencyCreate | DependencyWrite, Handle: r0, Access: vksync.ColorAttachmentWrite})
	b := insertTask(t, tasks, "B",
		Dependency{Kind: DependencyRead, Handle: r0, Access: vksync.FragmentShaderReadOther},
		Dependency{Kind: DependencyCreate | DependencyWrite, Handle: r1, Access: vksync.ColorAttachmentWrite},
	)
	c := insertTask(t, tasks, "C",
		Dependency{Kind: DependencyRead, Handle: r0, Access: vksync.FragmentShaderReadOther},
		Dependency{Kind: DependencyCreate | DependencyWrite, Handle: r2, Access: vksync.ColorAttachmentWrite},
	)
	d := insertTask(t, tasks, "D",
		Dependency{Kind: DependencyRead, Handle: r1, Access: vksync.FragmentShaderReadOther},
		Dependency{Kind: DependencyRead, Handle: r2, Access: vksync.FragmentShaderReadOther},
		Dependency{Kind: DependencyCreate | DependencyWrite, Handle: out, Access: vksync.ColorAttachmentWrite},
	)

	execInfo, err := Resolve(tasks, nil, []TransientHandle{out})
	require.NoError(t, err)
	require.Len(t, execInfo.Tasks, 4)
	require.Equal(t, a, execInfo.Tasks[0], "A produces r0 with no dependencies of its own, so it must run first")
	require.Equal(t, d, execInfo.Tasks[3], "D consumes both branches and produces the requested output, so it must run last")
	require.ElementsMatch(t, []Handle{a, b, c, d}, execInfo.Tasks)
	require.Contains(t, execInfo.Tasks[1:3], b)
	require.Contains(t, execInfo.Tasks[1:3], c)
}

func TestResolveUnresolvedDependency(t *testing.T) {
	tasks := NewSlotMap[TaskInfo]()
	orphan := TransientHandle{Handle: Handle{Index: 0, Generation: 1}}

	_, err := Resolve(tasks, nil, []TransientHandle{orphan})
	require.Error(t, err)

	fgErr, ok := err.(*FramegraphError)
	require.True(t, ok)
	require.Equal(t, ErrUnresolvedDependency, fgErr.Kind)
}

func TestResolveExternalRequestedDirectly(t *testing.T) {
	tasks := NewSlotMap[TaskInfo]()
	external := TransientHandle{Handle: Handle{Index: 0, Generation: 1}}

	execInfo, err := Resolve(tasks, []TransientHandle{external}, []TransientHandle{external})
	require.NoError(t, err)
	require.Empty(t, execInfo.Tasks)
	require.Equal(t, []Handle{external.Handle}, execInfo.Resources)
}
