package executor

// Batches partitions the graph into an ordered sequence of execution
// batches. Each batch holds every not-yet-assigned step whose dependencies
// all lie in earlier batches, so members of one batch are mutually
// independent and safe to run concurrently.
//
// Steps inside a batch keep plan declaration order, which makes both batch
// contents and intra-batch ordering deterministic for a given plan.
// Termination relies on the acyclicity already enforced by BuildGraph.
func (g *Graph) Batches() [][]string {
	pending := make(map[string]int, len(g.order))
	for _, id := range g.order {
		pending[id] = len(g.preds[id])
	}

	assigned := make(map[string]bool, len(g.order))
	remaining := len(g.order)

	var batches [][]string
	for remaining > 0 {
		var batch []string
		for _, id := range g.order {
			if !assigned[id] && pending[id] == 0 {
				batch = append(batch, id)
			}
		}
		if len(batch) == 0 {
			// Unreachable on a validated graph; bail rather than spin.
			break
		}

		for _, id := range batch {
			assigned[id] = true
			remaining--
			for _, succ := range g.succs[id] {
				pending[succ]--
			}
		}
		batches = append(batches, batch)
	}
	return batches
}
