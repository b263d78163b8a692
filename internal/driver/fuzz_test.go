package driver_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/config"
	"github.com/semiexp/cspcore/internal/csp"
	"github.com/semiexp/cspcore/internal/domain"
	"github.com/semiexp/cspcore/internal/driver"
)

func TestDriverFuzz(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "driver fuzz suite")
}

// lcg is a small linear-congruential generator, ported from the original
// implementation's Fuzzer (integration/tests/fuzz.rs): a 64-bit state
// multiplied by a fixed odd constant every step. One generator, seeded once,
// drives every trial in turn, so a run is reproducible from that seed.
type lcg struct{ state uint64 }

func newLCG(seed uint64) *lcg { return &lcg{state: seed} }

func (g *lcg) next() uint64 {
	g.state *= 0x123456789
	return g.state
}

func (g *lcg) u32(max uint32) uint32 {
	if max == 0 {
		panic("fuzz: u32 called with max=0")
	}
	return uint32((g.next() >> 16) % uint64(max))
}

func (g *lcg) i32(low, high int32) int32 {
	return int32(g.u32(uint32(high-low))) + low
}

func (g *lcg) bool() bool { return g.u32(2) == 0 }

const (
	numBoolVars = 2
	numIntVars  = 2
	domainLow   = int32(-3)
	domainHigh  = 3
)

// runTrial builds one random small CSP, solves it via driver.New plus
// AnswerIter, and cross-checks the set of models found against a brute-force
// enumeration over every assignment (spec §8 scenario 6: the mixed encoder
// must never over- or under-constrain relative to the naive truth table).
func runTrial(g *lcg) {
	c := csp.New()
	boolVars := make([]csp.BoolVarID, numBoolVars)
	for i := range boolVars {
		boolVars[i] = c.NewBoolVar()
		c.AddAnswerBoolKey(boolVars[i])
	}
	intVars := make([]csp.IntVarID, numIntVars)
	for i := range intVars {
		intVars[i] = c.NewIntVar(domain.FromRange(arithmetic.CheckedInt(domainLow), arithmetic.CheckedInt(domainHigh)))
		c.AddAnswerIntKey(intVars[i])
	}

	numExprs := int(g.u32(3)) + 1
	exprs := make([]csp.BoolExpr, numExprs)
	for i := range exprs {
		exprs[i] = randomBoolExpr(g, boolVars, intVars, g.u32(4))
		c.AddConstraint(exprs[i])
	}

	expected := bruteForceSolutions(exprs, numBoolVars, intVars)

	d, err := driver.New(c, driver.WithConfig(config.Default()))
	Expect(err).NotTo(HaveOccurred())

	it := d.AnswerIter()
	found := make(map[string]bool)
	ctx := context.Background()
	for {
		model, ok, err := it.Next(ctx)
		Expect(err).NotTo(HaveOccurred())
		if !ok {
			break
		}
		key := modelKey(model, boolVars, intVars)
		Expect(found).NotTo(HaveKey(key), "answer_iter yielded the same assignment twice")
		Expect(expected).To(HaveKey(key), "answer_iter yielded an assignment the brute force check rejects")
		found[key] = true
	}
	Expect(found).To(HaveLen(len(expected)), "answer_iter found a different number of models than brute force")
}

func modelKey(m driver.Model, boolVars []csp.BoolVarID, intVars []csp.IntVarID) string {
	key := make([]byte, 0, len(boolVars)+len(intVars)*2)
	for _, b := range boolVars {
		if m.BoolValue(b) {
			key = append(key, 1)
		} else {
			key = append(key, 0)
		}
	}
	for _, v := range intVars {
		key = append(key, byte(m.IntValue(v)+128))
	}
	return string(key)
}

// bruteForceSolutions enumerates every assignment of numBool Booleans and
// the given integer variables' domains, returning the set (keyed the same
// way modelKey is) of assignments satisfying every expr.
func bruteForceSolutions(exprs []csp.BoolExpr, numBool int, intVars []csp.IntVarID) map[string]bool {
	domains := make([][]int32, len(intVars))
	for i := range intVars {
		for v := domainLow; v <= domainHigh; v++ {
			domains[i] = append(domains[i], v)
		}
	}

	result := make(map[string]bool)
	boolAssign := make([]bool, numBool)
	intAssign := make([]int32, len(intVars))

	var recurseBool func(i int)
	var recurseInt func(i int)

	recurseInt = func(i int) {
		if i == len(intVars) {
			env := evalEnv{bools: boolAssign, ints: intAssign}
			ok := true
			for _, e := range exprs {
				if !evalBool(e, env) {
					ok = false
					break
				}
			}
			if ok {
				key := make([]byte, 0, numBool+len(intVars))
				for _, b := range boolAssign {
					if b {
						key = append(key, 1)
					} else {
						key = append(key, 0)
					}
				}
				for _, v := range intAssign {
					key = append(key, byte(v+128))
				}
				result[string(key)] = true
			}
			return
		}
		for _, v := range domains[i] {
			intAssign[i] = v
			recurseInt(i + 1)
		}
	}

	recurseBool = func(i int) {
		if i == numBool {
			recurseInt(0)
			return
		}
		boolAssign[i] = false
		recurseBool(i + 1)
		boolAssign[i] = true
		recurseBool(i + 1)
	}

	recurseBool(0)
	return result
}

type evalEnv struct {
	bools []bool
	ints  []int32
}

func evalBool(e csp.BoolExpr, env evalEnv) bool {
	switch x := e.(type) {
	case csp.BoolConst:
		return x.Value
	case csp.BoolVar:
		return env.bools[x.ID]
	case csp.BoolNot:
		return !evalBool(x.X, env)
	case csp.BoolAnd:
		for _, s := range x.Xs {
			if !evalBool(s, env) {
				return false
			}
		}
		return true
	case csp.BoolOr:
		for _, s := range x.Xs {
			if evalBool(s, env) {
				return true
			}
		}
		return false
	case csp.BoolXor:
		return evalBool(x.A, env) != evalBool(x.B, env)
	case csp.BoolIff:
		return evalBool(x.A, env) == evalBool(x.B, env)
	case csp.BoolImp:
		return !evalBool(x.Cond, env) || evalBool(x.Then, env)
	case csp.BoolCmp:
		l, r := evalInt(x.L, env), evalInt(x.R, env)
		switch x.Op {
		case csp.CmpEq:
			return l == r
		case csp.CmpNe:
			return l != r
		case csp.CmpLe:
			return l <= r
		case csp.CmpLt:
			return l < r
		case csp.CmpGe:
			return l >= r
		case csp.CmpGt:
			return l > r
		}
		panic("fuzz: unknown CmpOp")
	case csp.AllDifferent:
		seen := make(map[int32]bool)
		for _, v := range x.Vars {
			val := env.ints[v]
			if seen[val] {
				return false
			}
			seen[val] = true
		}
		return true
	default:
		panic("fuzz: unknown BoolExpr")
	}
}

func evalInt(e csp.IntExpr, env evalEnv) int32 {
	switch x := e.(type) {
	case csp.IntConst:
		return int32(x.Value)
	case csp.IntVar:
		return env.ints[x.ID]
	case csp.IntIf:
		if evalBool(x.Cond, env) {
			return evalInt(x.Then, env)
		}
		return evalInt(x.Else, env)
	case csp.IntAbs:
		v := evalInt(x.X, env)
		if v < 0 {
			return -v
		}
		return v
	case csp.IntLinear:
		sum := int32(x.Const)
		for i, t := range x.Terms {
			sum += int32(x.Coefs[i]) * evalInt(t, env)
		}
		return sum
	default:
		panic("fuzz: unknown IntExpr")
	}
}

// randomBoolExpr mirrors Fuzzer::random_bool_expr: complexity 0 bottoms out
// at a variable reference or constant; otherwise picks a connective and
// splits the remaining complexity budget between its operands.
func randomBoolExpr(g *lcg, boolVars []csp.BoolVarID, intVars []csp.IntVarID, complexity uint32) csp.BoolExpr {
	if complexity == 0 {
		idx := g.i32(-1, int32(len(boolVars)))
		if idx < 0 {
			return csp.Const(g.bool())
		}
		return csp.Var(boolVars[idx])
	}

	switch g.u32(7) {
	case 0:
		return csp.Not(randomBoolExpr(g, boolVars, intVars, complexity-1))
	case 1:
		l := g.u32(complexity)
		return csp.And(randomBoolExpr(g, boolVars, intVars, l), randomBoolExpr(g, boolVars, intVars, complexity-l-1))
	case 2:
		l := g.u32(complexity)
		return csp.Or(randomBoolExpr(g, boolVars, intVars, l), randomBoolExpr(g, boolVars, intVars, complexity-l-1))
	case 3:
		l := g.u32(complexity)
		return csp.Xor(randomBoolExpr(g, boolVars, intVars, l), randomBoolExpr(g, boolVars, intVars, complexity-l-1))
	case 4:
		l := g.u32(complexity)
		return csp.Iff(randomBoolExpr(g, boolVars, intVars, l), randomBoolExpr(g, boolVars, intVars, complexity-l-1))
	case 5:
		l := g.u32(complexity)
		return csp.Imp(randomBoolExpr(g, boolVars, intVars, l), randomBoolExpr(g, boolVars, intVars, complexity-l-1))
	default:
		op := csp.CmpOp(g.u32(6))
		return csp.Cmp(randomIntExpr(g, intVars), op, randomIntExpr(g, intVars))
	}
}

// randomIntExpr is a scaled-down random_int_expr: a variable, a constant, an
// absolute value, a conditional, or a small linear combination — every
// coefficient and constant kept within ±3 so CheckedInt never overflows
// against the ±3 variable domains.
func randomIntExpr(g *lcg, intVars []csp.IntVarID) csp.IntExpr {
	switch g.u32(5) {
	case 0:
		return csp.IntConstant(arithmetic.CheckedInt(g.i32(domainLow, domainHigh+1)))
	case 1:
		return csp.IntVariable(intVars[g.u32(uint32(len(intVars)))])
	case 2:
		return csp.Abs(csp.IntVariable(intVars[g.u32(uint32(len(intVars)))]))
	case 3:
		a := csp.IntVariable(intVars[g.u32(uint32(len(intVars)))])
		b := csp.IntVariable(intVars[g.u32(uint32(len(intVars)))])
		coefA := arithmetic.CheckedInt(g.i32(-2, 3))
		coefB := arithmetic.CheckedInt(g.i32(-2, 3))
		return csp.Linear([]csp.IntExpr{a, b}, []arithmetic.CheckedInt{coefA, coefB}, arithmetic.CheckedInt(g.i32(-2, 3)))
	default:
		cond := csp.Const(g.bool())
		a := csp.IntVariable(intVars[g.u32(uint32(len(intVars)))])
		b := csp.IntVariable(intVars[g.u32(uint32(len(intVars)))])
		return csp.If(cond, a, b)
	}
}

var _ = Describe("mixed encoder fuzz", func() {
	It("agrees with brute force enumeration across random small CSPs", func() {
		g := newLCG(0x123456789abcdef)
		const trials = 200
		for i := 0; i < trials; i++ {
			runTrial(g)
		}
	})
})
