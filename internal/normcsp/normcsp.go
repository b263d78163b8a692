// Package normcsp is the normalized CSP intermediate form (spec §3, §4.1):
// a flat conjunction of clauses over normalized Boolean/integer variables,
// produced by the normalizer and consumed by the encoder. It never retains
// references to csp expression nodes; the normalizer copies values out.
package normcsp

import (
	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/csp"
	"github.com/semiexp/cspcore/internal/domain"
)

// BoolVarID identifies a normalized Boolean variable (user-introduced or a
// Tseitin auxiliary).
type BoolVarID int

// IntVarID identifies a normalized integer variable.
type IntVarID int

// BoolLit is a (possibly negated) reference to a normalized Boolean
// variable.
type BoolLit struct {
	Var     BoolVarID
	Negated bool
}

func (l BoolLit) Not() BoolLit { return BoolLit{Var: l.Var, Negated: !l.Negated} }

// LinearSum is Σ coef*var + constant over normalized integer variables.
type LinearSum struct {
	Terms    map[IntVarID]arithmetic.CheckedInt
	Constant arithmetic.CheckedInt
}

func NewLinearSum() LinearSum {
	return LinearSum{Terms: make(map[IntVarID]arithmetic.CheckedInt)}
}

func (s *LinearSum) Add(v IntVarID, coef arithmetic.CheckedInt) {
	if coef == 0 {
		return
	}
	next := s.Terms[v].Add(coef)
	if next == 0 {
		delete(s.Terms, v)
	} else {
		s.Terms[v] = next
	}
}

func (s LinearSum) Clone() LinearSum {
	r := LinearSum{Terms: make(map[IntVarID]arithmetic.CheckedInt, len(s.Terms)), Constant: s.Constant}
	for v, c := range s.Terms {
		r.Terms[v] = c
	}
	return r
}

func (s LinearSum) Negate() LinearSum {
	r := NewLinearSum()
	for v, c := range s.Terms {
		r.Terms[v] = c.Neg()
	}
	r.Constant = s.Constant.Neg()
	return r
}

// LinearOp restricts a normalized linear atom to the three canonical shapes
// the normalizer ever produces (spec §3: "the last is an equality whose
// negation is the clause").
type LinearOp int

const (
	LinearGe LinearOp = iota // sum >= 0
	LinearEq                 // sum == 0
	LinearNe                 // sum != 0
)

// LinearLit is a normalized linear atom.
type LinearLit struct {
	Sum LinearSum
	Op  LinearOp
}

// Clause is a disjunction of normalized Boolean literals and linear atoms.
type Clause struct {
	BoolLits   []BoolLit
	LinearLits []LinearLit
}

// NormCSP is the normalized problem: normalized Boolean and integer
// variables (the latter with refined domains), and the clause list.
type NormCSP struct {
	boolAux  []bool // boolAux[v] is true if variable v is a Tseitin auxiliary
	intDoms  []domain.Domain
	clauses  []Clause

	userBoolMap map[csp.BoolVarID]BoolMapping
	userIntMap  map[csp.IntVarID]IntMapping
}

// BoolMapping records what a user Boolean variable became after
// normalization: either a literal over a normalized variable (possibly
// merged with another user variable by equivalent-variable merging, hence
// the polarity), or a folded-away constant.
type BoolMapping struct {
	Const      bool
	ConstValue bool
	Lit        BoolLit
}

// IntMapping records what a user integer variable became after
// normalization: either a live normalized variable, or a folded-away
// constant (its domain collapsed to a singleton).
type IntMapping struct {
	Const      bool
	ConstValue arithmetic.CheckedInt
	Var        IntVarID
}

// New returns an empty NormCSP.
func New() *NormCSP {
	return &NormCSP{
		userBoolMap: make(map[csp.BoolVarID]BoolMapping),
		userIntMap:  make(map[csp.IntVarID]IntMapping),
	}
}

// NewBoolVar allocates a normalized Boolean variable. aux marks it as a
// Tseitin auxiliary (not user-visible, never an answer key).
func (n *NormCSP) NewBoolVar(aux bool) BoolVarID {
	id := BoolVarID(len(n.boolAux))
	n.boolAux = append(n.boolAux, aux)
	return id
}

// NewIntVar allocates a normalized integer variable with the given domain.
// The domain must be non-empty; callers that discover an empty domain
// during refinement should append the empty clause instead of calling this.
func (n *NormCSP) NewIntVar(d domain.Domain) IntVarID {
	id := IntVarID(len(n.intDoms))
	n.intDoms = append(n.intDoms, d)
	return id
}

func (n *NormCSP) NumBoolVars() int { return len(n.boolAux) }
func (n *NormCSP) NumIntVars() int  { return len(n.intDoms) }

func (n *NormCSP) IsAuxiliary(v BoolVarID) bool { return n.boolAux[v] }

func (n *NormCSP) DomainOf(v IntVarID) domain.Domain { return n.intDoms[v] }

// RefineDomain intersects the current domain of v with d, in place. Returns
// false if the result is empty (the caller should treat this as a
// discovered contradiction).
func (n *NormCSP) RefineDomain(v IntVarID, d domain.Domain) bool {
	refined := n.intDoms[v].Intersect(d)
	n.intDoms[v] = refined
	return !refined.IsEmpty()
}

// AddClause appends a clause. Clause emission order is deterministic given
// the order constraints were added (spec §4.8).
func (n *NormCSP) AddClause(c Clause) {
	n.clauses = append(n.clauses, c)
}

// AddEmptyClause records a contradiction discovered during normalization
// (spec §4.1 "Failure"): an empty disjunction, which the encoder turns into
// the unconditionally-false SAT clause.
func (n *NormCSP) AddEmptyClause() {
	n.AddClause(Clause{})
}

// Clauses returns every clause added so far.
func (n *NormCSP) Clauses() []Clause {
	return n.clauses
}

// ReplaceClauses overwrites the clause list wholesale. Post-processing
// passes (constant folding, equivalent-variable merging) rewrite clauses in
// bulk rather than mutating them in place.
func (n *NormCSP) ReplaceClauses(clauses []Clause) {
	n.clauses = clauses
}

// MapUserBoolVar records the normalized counterpart of a user Boolean
// variable as a literal (lit.Negated == true when merging unified this user
// variable with the complement of the normalized variable).
func (n *NormCSP) MapUserBoolVar(user csp.BoolVarID, lit BoolLit) {
	n.userBoolMap[user] = BoolMapping{Lit: lit}
}

// FoldUserBoolVar records that a user Boolean variable was constant-folded
// away.
func (n *NormCSP) FoldUserBoolVar(user csp.BoolVarID, value bool) {
	n.userBoolMap[user] = BoolMapping{Const: true, ConstValue: value}
}

// MapUserIntVar records the normalized counterpart of a user integer
// variable.
func (n *NormCSP) MapUserIntVar(user csp.IntVarID, normalized IntVarID) {
	n.userIntMap[user] = IntMapping{Var: normalized}
}

// FoldUserIntVar records that a user integer variable was constant-folded
// away (its domain collapsed to a singleton).
func (n *NormCSP) FoldUserIntVar(user csp.IntVarID, value arithmetic.CheckedInt) {
	n.userIntMap[user] = IntMapping{Const: true, ConstValue: value}
}

// BoolMappingOf returns how a user Boolean variable was normalized.
func (n *NormCSP) BoolMappingOf(user csp.BoolVarID) (BoolMapping, bool) {
	v, ok := n.userBoolMap[user]
	return v, ok
}

// IntMappingOf returns how a user integer variable was normalized.
func (n *NormCSP) IntMappingOf(user csp.IntVarID) (IntMapping, bool) {
	v, ok := n.userIntMap[user]
	return v, ok
}
