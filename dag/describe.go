// SPDX-License-Identifier: MIT
package dag

import (
	"fmt"
	"io"
	"strings"
)

// Describe writes one line per stage in topological order:
//
//	#5 integrate node=0 <- [#0]
//	#8 merge node=3 <- [#5 #6]
//
// Inputs are listed in port order. The output depends only on the graph.
func (g *Graph[T]) Describe(w io.Writer) error {
	order, err := g.TopologicalOrder()
	if err != nil {
		return err
	}
	var sb strings.Builder
	for _, id := range order {
		s := &g.stages[id]
		fmt.Fprintf(&sb, "#%d %s node=%d <- [", id, s.kind, s.node)
		for port, from := range s.in {
			if port > 0 {
				sb.WriteByte(' ')
			}
			if from == noStage {
				sb.WriteString("?")
				continue
			}
			fmt.Fprintf(&sb, "#%d", from)
		}
		sb.WriteString("]\n")
	}
	_, err = io.WriteString(w, sb.String())

	return err
}
