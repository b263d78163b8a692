// Package propagator implements the order-encoding linear propagator: a
// sat.Propagator enforcing constant + Σ term_i >= 0 over order-encoded
// integer terms, watching each term's order-encoding literal becoming
// false (an upper-bound tightening) and forcing further literals once the
// best-case sum can no longer satisfy the inequality. Ported field-for-field
// from order_encoding_linear.rs's OrderEncodingLinear/CustomPropagator
// impl, substituting sort.Search for Rust's partition_point and an explicit
// frame-marker sentinel for its undo_list's Option<(usize,usize)>.
package propagator

import (
	"sort"

	"github.com/semiexp/cspcore/internal/sat"
)

// LinearTerm is one coef*var term, expressed in order-encoding form:
// Lits[j] is the literal asserting the term's value is >= Domain[j+1].
// Domain has one more entry than Lits (Domain[0] is the term's minimum).
type LinearTerm struct {
	Lits   []sat.Lit
	Domain []int32
	Coef   int32
}

// normalize scales t so Coef becomes 1, reversing Lits/Domain and negating
// every literal when the original coefficient was negative (order.rs's
// sign-normalization, applied once up front instead of lazily per access).
func (t LinearTerm) normalize() LinearTerm {
	lits := append([]sat.Lit(nil), t.Lits...)
	dom := append([]int32(nil), t.Domain...)
	if t.Coef < 0 {
		reverseLits(lits)
		for i := range lits {
			lits[i] = lits[i].Not()
		}
		reverseInts(dom)
	}
	for i := range dom {
		dom[i] *= t.Coef
	}
	return LinearTerm{Lits: lits, Domain: dom, Coef: 1}
}

func reverseLits(s []sat.Lit) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseInts(s []int32) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

type litEntry struct {
	lit        sat.Lit
	term, dIdx int
}

// undoEntry records a single ub_index tightening to reverse on backtrack.
// term == -1 is the frame marker Initialize/Propagate pushes at entry,
// matching the Rust undo_list's None sentinel.
type undoEntry struct {
	term      int
	prevIndex int
}

const frameMarker = -1

// OrderEncodingLinear is the propagator instance for one constraint.
type OrderEncodingLinear struct {
	terms   []LinearTerm
	lits    []litEntry // sorted by lit
	ubIndex []int      // per term, current upper-bound domain index
	totalUB int64

	undoList []undoEntry

	useOptimize bool
}

// New returns a propagator enforcing constant + Σ terms >= 0.
func New(terms []LinearTerm, constant int64, useOptimize bool) *OrderEncodingLinear {
	p := &OrderEncodingLinear{useOptimize: useOptimize}
	p.terms = make([]LinearTerm, len(terms))
	for i, t := range terms {
		if t.Coef == 0 {
			panic("propagator: zero-coefficient term")
		}
		if t.Coef != 1 {
			p.terms[i] = t.normalize()
		} else {
			p.terms[i] = t
		}
	}

	p.ubIndex = make([]int, len(p.terms))
	p.totalUB = constant
	for i, t := range p.terms {
		p.ubIndex[i] = len(t.Lits)
		p.totalUB += int64(t.Domain[len(t.Domain)-1])
	}

	for i, t := range p.terms {
		for j, l := range t.Lits {
			p.lits = append(p.lits, litEntry{lit: l, term: i, dIdx: j})
		}
	}
	sort.Slice(p.lits, func(a, b int) bool { return p.lits[a].lit < p.lits[b].lit })
	return p
}

// Initialize watches the negation of every term literal (so Propagate
// fires when a literal becomes FALSE, i.e. establishes a tighter upper
// bound) and replays initial truth assignments.
func (p *OrderEncodingLinear) Initialize(ctx sat.PropagatorContext) bool {
	seen := make(map[sat.Lit]bool)
	var watchers []sat.Lit
	for _, e := range p.lits {
		w := e.lit.Not()
		if !seen[w] {
			seen[w] = true
			watchers = append(watchers, w)
		}
	}
	sort.Slice(watchers, func(i, j int) bool { return watchers[i] < watchers[j] })

	for _, w := range watchers {
		ctx.AddWatch(w)
	}
	for _, w := range watchers {
		if ctx.Value(w) == sat.True {
			if !p.Propagate(ctx, w) {
				return false
			}
		}
	}
	return p.totalUB >= 0
}

// Propagate is called with p the literal that just became TRUE; since we
// watch the negations of term literals, this means the underlying term
// literal p.Not() just became FALSE, tightening that term's upper bound.
func (p *OrderEncodingLinear) Propagate(ctx sat.PropagatorContext, p0 sat.Lit) bool {
	p.undoList = append(p.undoList, undoEntry{term: frameMarker})

	target := p0.Not()
	idx := sort.Search(len(p.lits), func(i int) bool { return p.lits[i].lit >= target })
	for idx < len(p.lits) && p.lits[idx].lit == target {
		e := p.lits[idx]
		idx++
		if p.ubIndex[e.term] <= e.dIdx {
			continue
		}
		p.undoList = append(p.undoList, undoEntry{term: e.term, prevIndex: p.ubIndex[e.term]})
		dom := p.terms[e.term].Domain
		p.totalUB -= int64(dom[p.ubIndex[e.term]]) - int64(dom[e.dIdx])
		p.ubIndex[e.term] = e.dIdx
		if p.totalUB < 0 {
			return false
		}
	}

	for i := range p.terms {
		ubi := p.ubIndex[i]
		if ubi == 0 {
			continue
		}
		dom := p.terms[i].Domain
		if p.totalUB-(int64(dom[ubi])-int64(dom[0])) >= 0 {
			continue
		}
		threshold := int64(dom[ubi]) - p.totalUB
		left := sort.Search(len(dom), func(i int) bool { return int64(dom[i]) >= threshold }) - 1
		if !ctx.Enqueue(p.terms[i].Lits[left]) {
			return false
		}
	}
	return true
}

// CalcReason explains why p was forced (or the current conflict, if p is
// the zero Lit): the negation of every term's currently-established bound
// literal, skipping the uniquely-owning term of p when useOptimize is set.
func (p *OrderEncodingLinear) CalcReason(ctx sat.PropagatorContext, forLit, extra sat.Lit) []sat.Lit {
	pIdx := -1
	if p.useOptimize && forLit != 0 {
		idx := sort.Search(len(p.lits), func(i int) bool { return p.lits[i].lit >= forLit })
		if idx < len(p.lits) && p.lits[idx].lit == forLit {
			if idx+1 == len(p.lits) || p.lits[idx+1].lit != forLit {
				pIdx = p.lits[idx].term
			}
		}
	}

	var reason []sat.Lit
	for i := range p.terms {
		if i == pIdx {
			continue
		}
		if p.ubIndex[i] < len(p.terms[i].Lits) {
			reason = append(reason, p.terms[i].Lits[p.ubIndex[i]].Not())
		}
	}
	if extra != 0 {
		reason = append(reason, extra)
	}
	return reason
}

// Undo reverses every ub_index tightening recorded since the matching
// Initialize/Propagate call's frame marker.
func (p *OrderEncodingLinear) Undo(ctx sat.PropagatorContext, l sat.Lit) {
	for len(p.undoList) > 0 {
		last := p.undoList[len(p.undoList)-1]
		p.undoList = p.undoList[:len(p.undoList)-1]
		if last.term == frameMarker {
			return
		}
		dom := p.terms[last.term].Domain
		p.totalUB += int64(dom[p.ubIndex[last.term]]) - int64(dom[last.prevIndex])
		p.ubIndex[last.term] = last.prevIndex
	}
}
