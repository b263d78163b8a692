package normalizer

import (
	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/domain"
	"github.com/semiexp/cspcore/internal/normcsp"
)

// refineDomains tightens integer variable domains using unconditional,
// single-term linear clauses (spec §4.1 point 4). It iterates to a fixed
// point, bounded by the number of variables so a chain of such clauses
// converges without risking a runaway loop on adversarial input.
func refineDomains(norm *normcsp.NormCSP) {
	limit := norm.NumIntVars() + 1
	for iter := 0; iter < limit; iter++ {
		changed := false
		for _, c := range norm.Clauses() {
			if len(c.BoolLits) != 0 || len(c.LinearLits) != 1 {
				continue
			}
			ll := c.LinearLits[0]
			if len(ll.Sum.Terms) != 1 {
				continue
			}
			var v normcsp.IntVarID
			var coef arithmetic.CheckedInt
			for tv, tc := range ll.Sum.Terms {
				v, coef = tv, tc
			}
			cur := norm.DomainOf(v)
			var tightened domain.Domain
			ok := true
			switch ll.Op {
			case normcsp.LinearGe:
				tightened, ok = boundFromGe(cur, coef, ll.Sum.Constant)
			case normcsp.LinearEq:
				tightened, ok = boundFromEq(cur, coef, ll.Sum.Constant)
			default:
				continue
			}
			if !ok {
				continue
			}
			if !tightened.Equal(cur) {
				if !norm.RefineDomain(v, tightened) {
					norm.AddEmptyClause()
				}
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

// boundFromGe derives the tightest domain implied by coef*v+constant >= 0.
func boundFromGe(cur domain.Domain, coef, constant arithmetic.CheckedInt) (domain.Domain, bool) {
	if coef == 0 {
		return cur, false
	}
	if coef > 0 {
		// v >= -constant/coef, rounded up.
		bound := constant.Neg().DivCeil(coef)
		return cur.RestrictToAtLeast(bound), true
	}
	// v <= -constant/coef, rounded down.
	bound := constant.Neg().DivFloor(coef)
	return cur.RestrictToAtMost(bound), true
}

// boundFromEq derives the tightest domain implied by coef*v+constant == 0.
func boundFromEq(cur domain.Domain, coef, constant arithmetic.CheckedInt) (domain.Domain, bool) {
	if coef == 0 {
		return cur, false
	}
	num := constant.Neg()
	if num%coef != 0 {
		return domain.Empty(), true
	}
	val := num / coef
	return cur.Intersect(domain.FromRange(val, val)), true
}

// foldConstants substitutes singleton-domain variables with their constant
// value across every clause, dropping clauses that become trivially
// satisfied and pruning literals that become trivially false (spec §4.1
// point 5).
func foldConstants(norm *normcsp.NormCSP) {
	constants := make(map[normcsp.IntVarID]arithmetic.CheckedInt)
	for v := 0; v < norm.NumIntVars(); v++ {
		d := norm.DomainOf(normcsp.IntVarID(v))
		if d.IsSingleton() {
			constants[normcsp.IntVarID(v)] = d.Lower()
		}
	}
	if len(constants) == 0 {
		return
	}

	out := make([]normcsp.Clause, 0, len(norm.Clauses()))
	for _, c := range norm.Clauses() {
		satisfied := false
		newLinear := make([]normcsp.LinearLit, 0, len(c.LinearLits))
		for _, ll := range c.LinearLits {
			folded, isConst, val := foldSum(ll.Sum, constants)
			if isConst {
				if evalConstLit(val, ll.Op) {
					satisfied = true
					break
				}
				continue // a definitely-false literal contributes nothing
			}
			newLinear = append(newLinear, normcsp.LinearLit{Sum: folded, Op: ll.Op})
		}
		if satisfied {
			continue
		}
		out = append(out, normcsp.Clause{BoolLits: c.BoolLits, LinearLits: newLinear})
	}
	norm.ReplaceClauses(out)
}

func foldSum(sum normcsp.LinearSum, constants map[normcsp.IntVarID]arithmetic.CheckedInt) (normcsp.LinearSum, bool, arithmetic.CheckedInt) {
	folded := normcsp.NewLinearSum()
	folded.Constant = sum.Constant
	for v, c := range sum.Terms {
		if k, ok := constants[v]; ok {
			folded.Constant = folded.Constant.Add(c.Mul(k))
			continue
		}
		folded.Add(v, c)
	}
	if len(folded.Terms) == 0 {
		return folded, true, folded.Constant
	}
	return folded, false, 0
}

func evalConstLit(val arithmetic.CheckedInt, op normcsp.LinearOp) bool {
	switch op {
	case normcsp.LinearGe:
		return val >= 0
	case normcsp.LinearEq:
		return val == 0
	case normcsp.LinearNe:
		return val != 0
	default:
		return false
	}
}

// mergeEquivalentVariables finds Boolean literals proven equivalent by
// binary clauses (the standard "binary equivalence" reduction: if both
// (¬p∨q) and (p∨¬q) appear, p and q denote the same truth value) via
// strongly-connected-component analysis of the literal implication graph,
// then rewrites every clause to use one canonical representative per
// component (spec §4.1 point 6). It returns the variable -> canonical
// literal remap so callers can redirect any pending references (e.g. user
// variable mappings) that were captured before this pass ran.
func mergeEquivalentVariables(norm *normcsp.NormCSP) map[normcsp.BoolVarID]normcsp.BoolLit {
	n := norm.NumBoolVars()
	if n == 0 {
		return nil
	}
	nodeCount := 2 * n
	adj := make([][]int, nodeCount)
	addEdge := func(from, to int) { adj[from] = append(adj[from], to) }

	node := func(l normcsp.BoolLit) int {
		if l.Negated {
			return 2*int(l.Var) + 1
		}
		return 2 * int(l.Var)
	}
	negNode := func(id int) int { return id ^ 1 }

	for _, c := range norm.Clauses() {
		if len(c.LinearLits) != 0 || len(c.BoolLits) != 2 {
			continue
		}
		a, b := node(c.BoolLits[0]), node(c.BoolLits[1])
		addEdge(negNode(a), b)
		addEdge(negNode(b), a)
	}

	comp := tarjanSCC(adj)

	remap := make(map[normcsp.BoolVarID]normcsp.BoolLit)
	// For each component, pick the node with the smallest id as canonical.
	// A contradictory component (v and ¬v in the same component) is merged
	// like any other, and an empty clause is recorded for it as well.
	contradiction := false
	canonicalOf := make([]int, nodeCount)
	seen := make(map[int]int) // component id -> smallest node in it
	for i := 0; i < nodeCount; i++ {
		c := comp[i]
		if best, ok := seen[c]; !ok || i < best {
			seen[c] = i
		}
	}
	for i := 0; i < nodeCount; i++ {
		canonicalOf[i] = seen[comp[i]]
	}
	for v := 0; v < n; v++ {
		if comp[2*v] == comp[2*v+1] {
			contradiction = true
		}
	}
	if contradiction {
		norm.AddEmptyClause()
	}

	litFromNode := func(id int) normcsp.BoolLit {
		return normcsp.BoolLit{Var: normcsp.BoolVarID(id / 2), Negated: id%2 == 1}
	}

	changed := false
	for v := 0; v < n; v++ {
		canon := canonicalOf[2*v]
		if canon != 2*v {
			remap[normcsp.BoolVarID(v)] = litFromNode(canon)
			changed = true
		}
	}
	if !changed {
		return remap
	}

	remapLit := func(l normcsp.BoolLit) normcsp.BoolLit {
		canon := canonicalOf[node(l)]
		return litFromNode(canon)
	}

	out := make([]normcsp.Clause, 0, len(norm.Clauses()))
	for _, c := range norm.Clauses() {
		newBool := make([]normcsp.BoolLit, len(c.BoolLits))
		for i, l := range c.BoolLits {
			newBool[i] = remapLit(l)
		}
		out = append(out, normcsp.Clause{BoolLits: newBool, LinearLits: c.LinearLits})
	}
	norm.ReplaceClauses(out)
	return remap
}

// tarjanSCC returns, for each node, an identifier shared by every node in
// its strongly connected component.
func tarjanSCC(adj [][]int) []int {
	n := len(adj)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	comp := make([]int, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	nextIndex := 0
	nextComp := 0

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = nextIndex
		low[v] = nextIndex
		nextIndex++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if index[w] == -1 {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if index[w] < low[v] {
					low[v] = index[w]
				}
			}
		}

		if low[v] == index[v] {
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp[w] = nextComp
				if w == v {
					break
				}
			}
			nextComp++
		}
	}

	for v := 0; v < n; v++ {
		if index[v] == -1 {
			strongconnect(v)
		}
	}
	return comp
}
