package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/config"
	"github.com/semiexp/cspcore/internal/csp"
	"github.com/semiexp/cspcore/internal/domain"
)

func ci(v int) arithmetic.CheckedInt { return arithmetic.NewCheckedInt(v) }

func TestNormalizeSimpleComparison(t *testing.T) {
	c := csp.New()
	x := c.NewIntVar(domain.FromRange(ci(0), ci(5)))
	y := c.NewIntVar(domain.FromRange(ci(0), ci(5)))
	c.AddConstraint(csp.Cmp(csp.IntVariable(x), csp.CmpLt, csp.IntVariable(y)))

	norm := Normalize(c, config.Default(), nil)
	require.NotEmpty(t, norm.Clauses())

	found := false
	for _, cl := range norm.Clauses() {
		if len(cl.LinearLits) == 1 && len(cl.BoolLits) == 0 {
			found = true
		}
	}
	assert.True(t, found, "expected a unit linear clause for the top-level comparison")
}

func TestNormalizeOrExpandsToDisjunction(t *testing.T) {
	c := csp.New()
	b1 := c.NewBoolVar()
	b2 := c.NewBoolVar()
	c.AddConstraint(csp.Or(csp.Var(b1), csp.Var(b2)))

	norm := Normalize(c, config.Default(), nil)
	found := false
	for _, cl := range norm.Clauses() {
		if len(cl.BoolLits) == 2 {
			found = true
		}
	}
	assert.True(t, found, "expected a 2-literal disjunction clause")
}

func TestNormalizeAbsIntroducesAuxVariable(t *testing.T) {
	c := csp.New()
	x := c.NewIntVar(domain.FromRange(ci(-3), ci(3)))
	y := c.NewIntVar(domain.FromRange(ci(0), ci(3)))
	c.AddConstraint(csp.Cmp(csp.IntVariable(y), csp.CmpEq, csp.Abs(csp.IntVariable(x))))

	cfg := config.Default()
	cfg.UseNormDomainRefinement = false
	cfg.UseConstantFolding = false
	cfg.MergeEquivalentVariables = false
	norm := Normalize(c, cfg, nil)

	assert.Greater(t, norm.NumIntVars(), 2, "Abs must allocate an auxiliary integer variable")
}

func TestNormalizeAllDifferentBijectionVsPairwise(t *testing.T) {
	c := csp.New()
	vars := make([]csp.IntVarID, 3)
	for i := range vars {
		vars[i] = c.NewIntVar(domain.FromRange(ci(0), ci(2)))
	}
	c.AddConstraint(csp.AllDifferentOf(vars...))

	cfg := config.Default()
	cfg.AlldifferentBijectionConstraints = true
	bijection := Normalize(c, cfg, nil)

	cfg.AlldifferentBijectionConstraints = false
	pairwise := Normalize(c, cfg, nil)

	assert.NotEqual(t, len(bijection.Clauses()), len(pairwise.Clauses()))
}

func TestFoldConstantsSubstitutesSingletonVariable(t *testing.T) {
	c := csp.New()
	x := c.NewIntVar(domain.FromRange(ci(5), ci(5)))
	y := c.NewIntVar(domain.FromRange(ci(0), ci(10)))
	c.AddConstraint(csp.Cmp(csp.IntVariable(y), csp.CmpGe, csp.IntVariable(x)))

	cfg := config.Default()
	norm := Normalize(c, cfg, nil)
	for _, cl := range norm.Clauses() {
		for _, ll := range cl.LinearLits {
			_, stillReferencesX := ll.Sum.Terms[0]
			assert.False(t, stillReferencesX, "the folded constant variable should not appear as a term")
		}
	}
}

func TestMergeEquivalentVariablesUnifiesImplicationCycle(t *testing.T) {
	c := csp.New()
	p := c.NewBoolVar()
	q := c.NewBoolVar()
	c.AddConstraint(csp.Or(csp.Not(csp.Var(p)), csp.Var(q)))
	c.AddConstraint(csp.Or(csp.Var(p), csp.Not(csp.Var(q))))
	c.AddAnswerBoolKey(p)
	c.AddAnswerBoolKey(q)

	cfg := config.Default()
	norm := Normalize(c, cfg, nil)

	pm, ok := norm.BoolMappingOf(p)
	require.True(t, ok)
	qm, ok := norm.BoolMappingOf(q)
	require.True(t, ok)
	assert.Equal(t, pm.Lit.Var, qm.Lit.Var, "p and q should have been merged to the same normalized variable")
}
