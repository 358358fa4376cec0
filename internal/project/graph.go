package project

import (
	"errors"
	"fmt"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// ErrCycleDetected indicates a circular dependency between sub-tasks.
var ErrCycleDetected = errors.New("circular dependency detected")

// Graph is the dependency graph over a project's sub-task arena.
// Nodes are sub-task indexes; edges point from a sub-task to the ones it waits on.
type Graph struct {
	edges [][]int
}

// BuildGraph constructs the graph and rejects unknown indexes, self
// references and cycles.
func BuildGraph(subtasks []models.SubTask) (*Graph, error) {
	g := &Graph{edges: make([][]int, len(subtasks))}
	for i, st := range subtasks {
		for _, dep := range st.DependsOn {
			if dep < 0 || dep >= len(subtasks) {
				return nil, fmt.Errorf("sub-task %d depends on unknown sub-task %d", i, dep)
			}
			if dep == i {
				return nil, fmt.Errorf("sub-task %d depends on itself: %w", i, ErrCycleDetected)
			}
			g.edges[i] = append(g.edges[i], dep)
		}
	}
	if cycle := g.findCycle(); cycle != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycleDetected, cycle)
	}
	return g, nil
}

// findCycle runs a colored DFS and returns the first back-edge path it finds.
func (g *Graph) findCycle() []int {
	const (
		white = iota
		gray
		black
	)
	colors := make([]int, len(g.edges))
	var path []int

	var visit func(i int) []int
	visit = func(i int) []int {
		colors[i] = gray
		path = append(path, i)
		for _, dep := range g.edges[i] {
			switch colors[dep] {
			case gray:
				for start, n := range path {
					if n == dep {
						return append(append([]int(nil), path[start:]...), dep)
					}
				}
			case white:
				if c := visit(dep); c != nil {
					return c
				}
			}
		}
		path = path[:len(path)-1]
		colors[i] = black
		return nil
	}

	for i := range g.edges {
		if colors[i] == white {
			if c := visit(i); c != nil {
				return c
			}
		}
	}
	return nil
}

// TopologicalSort returns indexes with every dependency before its dependents.
// Ties keep arena order.
func (g *Graph) TopologicalSort() []int {
	visited := make([]bool, len(g.edges))
	order := make([]int, 0, len(g.edges))
	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		for _, dep := range g.edges[i] {
			visit(dep)
		}
		order = append(order, i)
	}
	for i := range g.edges {
		visit(i)
	}
	return order
}

// Ready returns pending sub-tasks whose dependencies are all terminal, in index order.
func (g *Graph) Ready(subtasks []models.SubTask) []int {
	var ready []int
	for i, st := range subtasks {
		if st.Status != models.SubTaskPending {
			continue
		}
		ok := true
		for _, dep := range g.edges[i] {
			if !subtasks[dep].Status.Terminal() {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, i)
		}
	}
	return ready
}

// Dependencies returns the sub-tasks i waits on.
func (g *Graph) Dependencies(i int) []int {
	return g.edges[i]
}

// Dependents returns the sub-tasks waiting on i.
func (g *Graph) Dependents(i int) []int {
	var out []int
	for n, deps := range g.edges {
		for _, dep := range deps {
			if dep == i {
				out = append(out, n)
				break
			}
		}
	}
	return out
}
