// SPDX-License-Identifier: MIT
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/ssetree/matrix"
	"github.com/katalvlaran/ssetree/model"
	"github.com/katalvlaran/ssetree/tree"
)

// Problem variants.
const (
	VariantStandard     = "standard"
	VariantCladogenetic = "cladogenetic"
	VariantTimeZone     = "timezone"
)

// ErrProblem indicates a problem file that cannot be turned into a model and
// a tree.
var ErrProblem = errors.New("cli: invalid problem")

// Row is a numeric vector written as a flow sequence: [0, 0, 1, 0].
type Row []float64

// MarshalYAML keeps rows on one line.
func (r Row) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range r {
		n.Content = append(n.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(v, 'g', -1, 64),
		})
	}

	return n, nil
}

// Params is one parameter set. Lambda and LambdaTensor are exclusive.
type Params struct {
	Lambda       Row     `yaml:"lambda,omitempty"`
	LambdaTensor [][]Row `yaml:"lambda_tensor,omitempty"`
	Mu           Row     `yaml:"mu"`
	Q            []Row   `yaml:"q"`
}

// TreeSpec is the raw tree: ances, [parent, child, length] rows and one state
// row per node (empty for internal nodes).
type TreeSpec struct {
	Ances   []int `yaml:"ances,flow"`
	ForTime []Row `yaml:"for_time"`
	States  []Row `yaml:"states"`
}

// SolverSpec selects the integrator; zero values mean engine defaults.
type SolverSpec struct {
	Method string  `yaml:"method,omitempty"`
	AbsTol float64 `yaml:"abs_tol,omitempty"`
	RelTol float64 `yaml:"rel_tol,omitempty"`
}

// Problem is the YAML problem file read by compute and plan and written by
// simulate.
type Problem struct {
	Name            string     `yaml:"name,omitempty"`
	Variant         string     `yaml:"variant"`
	Params          Params     `yaml:"params"`
	After           *Params    `yaml:"after,omitempty"`
	CriticalTime    float64    `yaml:"critical_time,omitempty"`
	CompleteTree    bool       `yaml:"complete_tree,omitempty"`
	ExtinctionCheck *float64   `yaml:"extinction_check,omitempty"`
	Tree            TreeSpec   `yaml:"tree"`
	Solver          SolverSpec `yaml:"solver,omitempty"`
	Workers         int        `yaml:"workers,omitempty"`
}

// LoadProblem reads a problem file; "-" reads standard input.
func LoadProblem(path string, stdin io.Reader) (*Problem, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("LoadProblem: %w", err)
	}

	return ParseProblem(data)
}

// ParseProblem decodes a problem; unknown keys are rejected.
func ParseProblem(data []byte) (*Problem, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var p Problem
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("ParseProblem: %w: %w", ErrProblem, err)
	}
	if p.Variant == "" {
		p.Variant = VariantStandard
	}

	return &p, nil
}

// Marshal renders p as YAML.
func (p *Problem) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Model builds the model named by Variant.
//
// Steps:
//  1. Collect model options (complete tree, extinction check).
//  2. standard / cladogenetic: build from Params; the variant must match the
//     presence of lambda_tensor.
//  3. timezone: build Params and After without options, then compose them at
//     critical_time with the options.
func (p *Problem) Model() (*model.Model, error) {
	// 1) Options.
	var opts []model.Option
	if p.CompleteTree {
		opts = append(opts, model.WithCompleteTree())
	}
	if tol := p.ExtinctionCheck; tol != nil {
		if !(*tol >= 0) || math.IsInf(*tol, 0) {
			return nil, fmt.Errorf("Model: extinction_check=%g: %w", *tol, ErrProblem)
		}
		opts = append(opts, model.WithExtinctionCheck(*tol))
	}

	switch p.Variant {
	// 2) Plain models.
	case VariantStandard, VariantCladogenetic:
		if p.After != nil {
			return nil, fmt.Errorf("Model: %s problem has an after set: %w", p.Variant, ErrProblem)
		}
		m, err := p.Params.build(opts...)
		if err != nil {
			return nil, fmt.Errorf("Model: %w", err)
		}
		if m.Kind().String() != p.Variant {
			return nil, fmt.Errorf("Model: variant %s but params describe %s: %w", p.Variant, m.Kind(), ErrProblem)
		}

		return m, nil

	// 3) Time zones.
	case VariantTimeZone:
		if p.After == nil {
			return nil, fmt.Errorf("Model: timezone problem without an after set: %w", ErrProblem)
		}
		before, err := p.Params.build()
		if err != nil {
			return nil, fmt.Errorf("Model: before: %w", err)
		}
		after, err := p.After.build()
		if err != nil {
			return nil, fmt.Errorf("Model: after: %w", err)
		}
		m, err := model.NewTimeZone(before, after, p.CriticalTime, opts...)
		if err != nil {
			return nil, fmt.Errorf("Model: %w", err)
		}

		return m, nil

	default:
		return nil, fmt.Errorf("Model: unknown variant %q: %w", p.Variant, ErrProblem)
	}
}

// Description validates the tree and returns it with a fresh state table.
func (p *Problem) Description() (*tree.Description, error) {
	desc, err := tree.FromTable(p.Tree.Ances, rows(p.Tree.ForTime), tree.FromRows(rows(p.Tree.States)))
	if err != nil {
		return nil, fmt.Errorf("Description: %w", err)
	}

	return desc, nil
}

func (ps Params) build(opts ...model.Option) (*model.Model, error) {
	q, err := matrix.FromRows(rows(ps.Q))
	if err != nil {
		return nil, fmt.Errorf("q: %w", err)
	}
	switch {
	case ps.Lambda != nil && ps.LambdaTensor != nil:
		return nil, fmt.Errorf("both lambda and lambda_tensor: %w", ErrProblem)
	case ps.LambdaTensor != nil:
		nested := make([][][]float64, len(ps.LambdaTensor))
		for i, slice := range ps.LambdaTensor {
			nested[i] = rows(slice)
		}
		lam, err := matrix.FromNested(nested)
		if err != nil {
			return nil, fmt.Errorf("lambda_tensor: %w", err)
		}

		return model.NewCladogenetic(model.CladoRates{Lambda: lam, Mu: ps.Mu, Q: q}, opts...)
	default:
		return model.NewStandard(model.Rates{Lambda: ps.Lambda, Mu: ps.Mu, Q: q}, opts...)
	}
}

func rows(rs []Row) [][]float64 {
	out := make([][]float64, len(rs))
	for i, r := range rs {
		out[i] = r
	}

	return out
}
