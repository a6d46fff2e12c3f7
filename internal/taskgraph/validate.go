package taskgraph

// Validate checks the graph is executable: every dependency id names an
// existing task and the dependency relation is acyclic. Execution must not
// start on a graph that fails validation.
func (g *Graph) Validate() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range g.order {
		for _, dep := range allDeps(g.tasks[id]) {
			if _, ok := g.tasks[dep]; !ok {
				return &MissingDependencyError{TaskID: id, DependencyID: dep}
			}
		}
	}

	return g.checkAcyclic()
}

// allDeps returns the task's hard and soft dependency ids. Both edge kinds
// count for validation: a dangling or cyclic soft dependency would stall the
// scheduler just like a hard one.
func allDeps(task *Task) []string {
	if len(task.SoftDependencies) == 0 {
		return task.Dependencies
	}
	deps := make([]string, 0, len(task.Dependencies)+len(task.SoftDependencies))
	deps = append(deps, task.Dependencies...)
	deps = append(deps, task.SoftDependencies...)
	return deps
}

const (
	colorWhite = 0 // unvisited
	colorGray  = 1 // on the current recursion stack
	colorBlack = 2 // fully explored
)

// checkAcyclic runs a depth-first traversal from every node; revisiting a node
// on its own recursion stack proves a cycle. Caller holds the lock.
func (g *Graph) checkAcyclic() error {
	color := make(map[string]int, len(g.tasks))

	var visit func(id string) []string
	visit = func(id string) []string {
		color[id] = colorGray
		for _, dep := range allDeps(g.tasks[id]) {
			switch color[dep] {
			case colorGray:
				return []string{dep, id}
			case colorWhite:
				if path := visit(dep); path != nil {
					if path[0] == path[len(path)-1] {
						return path
					}
					return append(path, id)
				}
			}
		}
		color[id] = colorBlack
		return nil
	}

	for _, id := range g.order {
		if color[id] != colorWhite {
			continue
		}
		if path := visit(id); path != nil {
			// The path was collected leaf-first; close the loop at the node
			// that was revisited.
			start := path[0]
			if path[len(path)-1] != start {
				path = append(path, start)
			}
			return &CycleError{Path: path}
		}
	}
	return nil
}
