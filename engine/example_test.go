// SPDX-License-Identifier: MIT
package engine_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/katalvlaran/ssetree/engine"
	"github.com/katalvlaran/ssetree/matrix"
	"github.com/katalvlaran/ssetree/model"
	"github.com/katalvlaran/ssetree/treegen"
)

// ExampleRun evaluates a small balanced tree under a two-state model.
func ExampleRun() {
	fix, err := treegen.Balanced(8)
	if err != nil {
		panic(err)
	}
	desc, err := fix.Description()
	if err != nil {
		panic(err)
	}
	q, _ := matrix.FromRows([][]float64{{0, 0.01}, {0.01, 0}})
	m, err := model.NewStandard(model.Rates{
		Lambda: []float64{0.1, 0.2},
		Mu:     []float64{0.05, 0.05},
		Q:      q,
	})
	if err != nil {
		panic(err)
	}

	res, err := engine.Run(context.Background(), desc, m,
		engine.WithWorkers(2),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Stages, len(res.MergeBranch), len(res.NodeM), res.LogLik < 0)
	// Output: 30 2 4 true
}
