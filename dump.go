package vkframegraph

import (
	"fmt"
	"strings"
)

// dumpDot renders the declared task graph as a Graphviz DOT document:
// one cluster per task, one node per distinct texture version it
// touches, edges colored by dependency kind. The concrete DOT shape
// here is built straight from the fields TaskInfo carries and each
// texture's TextureInfo name.
func (fg *Framegraph) dumpDot() string {
	var b strings.Builder
	b.WriteString("digraph framegraph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=filled];\n\n")

	for _, item := range fg.tasks.Items() {
		taskHandle, task := item.Handle, item.Value
		clusterID := fmt.Sprintf("cluster_task_%d_%d", taskHandle.Index, taskHandle.Generation)
		taskNode := fmt.Sprintf("task_%d_%d", taskHandle.Index, taskHandle.Generation)

		fmt.Fprintf(&b, "  subgraph %s {\n", clusterID)
		fmt.Fprintf(&b, "    label=%q;\n", task.Name)
		fmt.Fprintf(&b, "    style=filled; color=lightgrey;\n")
		if task.executionPriority >= 0 {
			fmt.Fprintf(&b, "    %s [label=\"%s\\npriority=%d\", fillcolor=lightblue];\n", taskNode, task.Name, task.executionPriority)
		} else {
			fmt.Fprintf(&b, "    %s [label=\"%s\\n(dead code eliminated)\", fillcolor=lightgrey];\n", taskNode, task.Name)
		}
		b.WriteString("  }\n")

		for _, dep := range task.Dependencies {
			resourceNode := fmt.Sprintf("res_%d_v%d", dep.Handle.Handle.Index, dep.Handle.Version)
			name := fmt.Sprintf("texture %d", dep.Handle.Handle.Index)
			if info, err := fg.resources.Info(dep.Handle); err == nil {
				name = info.Name
			}
			fmt.Fprintf(&b, "  %s [label=\"%s v%d\", shape=ellipse, fillcolor=white];\n",
				resourceNode, name, dep.Handle.Version)

			color, arrow := dependencyStyle(dep.Kind)
			if dep.Kind.has(DependencyRead) && !dep.Kind.has(DependencyWrite) {
				fmt.Fprintf(&b, "  %s -> %s [color=%s, label=%q];\n", resourceNode, taskNode, color, arrow)
			} else {
				fmt.Fprintf(&b, "  %s -> %s [color=%s, label=%q];\n", taskNode, resourceNode, color, arrow)
			}
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func dependencyStyle(kind DependencyKind) (color, label string) {
	switch {
	case kind.has(DependencyCreate):
		return "darkgreen", "create"
	case kind.has(DependencyRead) && kind.has(DependencyWrite):
		return "orange", "read/write"
	case kind.has(DependencyWrite):
		return "red", "write"
	default:
		return "blue", "read"
	}
}
