// SPDX-License-Identifier: MIT
package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssetree/internal/cli"
	"github.com/katalvlaran/ssetree/model"
)

// run executes the root command and returns stdout, stderr and the error.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), errOut.String(), err
}

type computeJSON struct {
	Status string            `json:"status"`
	Data   cli.ComputeResult `json:"data"`
}

func computeResult(t *testing.T, args ...string) cli.ComputeResult {
	t.Helper()
	out, _, err := run(t, "", append([]string{"--format", "json", "compute"}, args...)...)
	require.NoError(t, err)
	var resp computeJSON
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)

	return resp.Data
}

func TestRootCommand(t *testing.T) {
	cmd := cli.NewRootCommand()
	assert.Equal(t, "ssetree", cmd.Use)
	for _, name := range []string{"compute", "plan", "simulate", "runs"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := run(t, "", "--format", "xml", "plan", "testdata/three_tips.yaml")
	require.Error(t, err)
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}

func TestPlan_Golden(t *testing.T) {
	out, _, err := run(t, "", "plan", "testdata/three_tips.yaml")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "plan_three_tips", []byte(out))
}

func TestCompute_Text(t *testing.T) {
	out, _, err := run(t, "", "compute", "testdata/three_tips.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name     three-tips\n")
	assert.Contains(t, out, "model    standard(d=2)\n")
	assert.Contains(t, out, "method   odeint::runge_kutta_cash_karp54\n")
	assert.Contains(t, out, "loglik   -")
	assert.Contains(t, out, "stages   10 on 2 workers")
}

// TestCompute_TimeZoneMatches: identical parameter sets around the switch
// reproduce the plain model.
func TestCompute_TimeZoneMatches(t *testing.T) {
	plain := computeResult(t, "testdata/three_tips.yaml")
	tz := computeResult(t, "testdata/timezone.yaml")

	assert.Less(t, plain.LogLik, 0.0)
	assert.Len(t, plain.MergeBranch, 2)
	assert.Len(t, plain.NodeM, 4)
	assert.Equal(t, 3, plain.Tips)
	assert.InDelta(t, plain.LogLik, tz.LogLik, 1e-9)
	assert.Contains(t, tz.Model, "timezone")
}

func TestCompute_FlagsOverride(t *testing.T) {
	res := computeResult(t, "--workers", "1", "--method", "runge_kutta_dopri5", "--atol", "1e-12", "--rtol", "1e-12",
		"testdata/three_tips.yaml")
	assert.Equal(t, 1, res.Workers)
	assert.Equal(t, "odeint::runge_kutta_dopri5", res.Method)

	base := computeResult(t, "testdata/three_tips.yaml")
	assert.InDelta(t, base.LogLik, res.LogLik, 1e-8)

	_, _, err := run(t, "", "compute", "--method", "euler", "testdata/three_tips.yaml")
	require.Error(t, err)
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}

func TestCompute_Failures(t *testing.T) {
	dir := t.TempDir()

	// Unknown key.
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("variant: standard\nlambdas: [1]\n"), 0o644))
	_, _, err := run(t, "", "compute", bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, cli.ErrProblem)
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))

	// Missing file.
	_, _, err = run(t, "", "compute", filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))

	// All-zero observation fails inside the evaluation.
	data, err := os.ReadFile("testdata/three_tips.yaml")
	require.NoError(t, err)
	zero := filepath.Join(dir, "zero.yaml")
	require.NoError(t, os.WriteFile(zero,
		[]byte(strings.Replace(string(data), "- [0, 0, 0, 1]", "- [0, 0, 0, 0]", 1)), 0o644))
	_, _, err = run(t, "", "compute", zero)
	require.Error(t, err)
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))

	// extinction_check: 0 demands equal extinction halves; the root's children
	// sit at different depths.
	exact := filepath.Join(dir, "exact.yaml")
	require.NoError(t, os.WriteFile(exact, append(data, []byte("extinction_check: 0\n")...), 0o644))
	_, _, err = run(t, "", "compute", exact)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrExtinctionMismatch)
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))

	negative := filepath.Join(dir, "negative.yaml")
	require.NoError(t, os.WriteFile(negative, append(data, []byte("extinction_check: -1\n")...), 0o644))
	_, _, err = run(t, "", "compute", negative)
	assert.ErrorIs(t, err, cli.ErrProblem)
}

func TestSimulate_Pipe(t *testing.T) {
	yml, _, err := run(t, "", "simulate", "--shape", "coalescent", "--tips", "12", "--dim", "3", "--seed", "5")
	require.NoError(t, err)

	again, _, err := run(t, "", "simulate", "--shape", "coalescent", "--tips", "12", "--dim", "3", "--seed", "5")
	require.NoError(t, err)
	assert.Equal(t, yml, again, "same seed, same problem")

	p, err := cli.ParseProblem([]byte(yml))
	require.NoError(t, err)
	assert.Equal(t, "coalescent-12-seed5", p.Name)
	assert.Len(t, p.Tree.Ances, 11)
	assert.Len(t, p.Params.Mu, 3)
	assert.Equal(t, cli.Row{0.1, 0.2, 0.30000000000000004}, p.Params.Lambda)

	out, _, err := run(t, yml, "--format", "json", "compute", "-")
	require.NoError(t, err)
	var resp computeJSON
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 12, resp.Data.Tips)
	assert.Len(t, resp.Data.MergeBranch, 3)

	_, _, err = run(t, "", "simulate", "--shape", "star")
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}

func TestSimulate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	_, _, err := run(t, "", "simulate", "--tips", "8", "--ultrametric", "-o", path)
	require.NoError(t, err)
	p, err := cli.LoadProblem(path, nil)
	require.NoError(t, err)
	m, err := p.Model()
	require.NoError(t, err)
	assert.Equal(t, "standard(d=2)", m.String())
	desc, err := p.Description()
	require.NoError(t, err)
	assert.Len(t, desc.Tips(), 8)
}

func TestRuns_History(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	first := computeResult(t, "--db", db, "testdata/three_tips.yaml")
	second := computeResult(t, "--db", db, "testdata/timezone.yaml")

	out, _, err := run(t, "", "runs", "list", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], second.RunID.String()), "newest first")
	assert.True(t, strings.HasPrefix(lines[2], first.RunID.String()))

	out, _, err = run(t, "", "runs", "list", "--db", db, "--name", "three-tips")
	require.NoError(t, err)
	assert.Contains(t, out, first.RunID.String())
	assert.NotContains(t, out, second.RunID.String())

	out, _, err = run(t, "", "runs", "show", "--db", db, first.RunID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "name     three-tips\n")
	assert.Contains(t, out, "model    standard(d=2)\n")

	_, _, err = run(t, "", "runs", "show", "--db", db, "not-a-uuid")
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))

	_, _, err = run(t, "", "runs", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestProblem_Validation(t *testing.T) {
	cases := map[string]string{
		"unknown variant":        "variant: fancy\nparams: {lambda: [0.1], mu: [0.1], q: [[0]]}\n",
		"variant mismatch":       "variant: cladogenetic\nparams: {lambda: [0.1], mu: [0.1], q: [[0]]}\n",
		"timezone without after": "variant: timezone\nparams: {lambda: [0.1], mu: [0.1], q: [[0]]}\n",
		"both lambdas":           "params: {lambda: [0.1], lambda_tensor: [[[0.1]]], mu: [0.1], q: [[0]]}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := cli.ParseProblem([]byte(doc))
			require.NoError(t, err)
			_, err = p.Model()
			assert.ErrorIs(t, err, cli.ErrProblem)
		})
	}

	p, err := cli.ParseProblem([]byte("params: {lambda_tensor: [[[0.1]]], mu: [0.1], q: [[0]]}\nvariant: cladogenetic\n"))
	require.NoError(t, err)
	m, err := p.Model()
	require.NoError(t, err)
	assert.Equal(t, "cladogenetic(d=1, nnz=1)", m.String())
}
