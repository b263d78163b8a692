// Package encoding holds the encoding map: the record of which SAT
// variables represent which normalized variables, and how (spec §4.2-4.4).
// The encoder package populates it; the driver reads it back to lift a SAT
// model into user-variable answers.
package encoding

import (
	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/normcsp"
	"github.com/semiexp/cspcore/internal/sat"
)

// OrderEncoding represents an integer variable as a chain of order-encoding
// literals: Lits[j] <-> variable >= Domain[j+1]. Domain always has exactly
// len(Lits)+1 entries, the snapshot of the variable's domain at the moment
// the encoding was built.
type OrderEncoding struct {
	Domain []arithmetic.CheckedInt
	Lits   []sat.Lit
}

// DirectEncoding represents an integer variable as one literal per domain
// value: Lits[j] <-> variable == Domain[j], with an exactly-one constraint
// over Lits already emitted.
type DirectEncoding struct {
	Domain []arithmetic.CheckedInt
	Lits   []sat.Lit
}

// IntEncoding is everything known about how one normalized integer variable
// was encoded. Per spec §4.2 a variable may carry both encodings at once
// once a later constraint demands the second; linking clauses tie them
// together (see the encoder's linkOrderDirect).
type IntEncoding struct {
	Order  *OrderEncoding
	Direct *DirectEncoding
}

// Map is the complete encoding state for one NormCSP: a SAT literal for
// every normalized Boolean variable, and an IntEncoding for every
// normalized integer variable that has been encoded so far (nil until the
// encoder first needs it, spec §4.2 "lazily... once a constraint demands
// it").
type Map struct {
	boolLits []sat.Lit
	ints     []IntEncoding
}

// New returns an encoding map sized for a NormCSP with numBool Boolean and
// numInt integer normalized variables. Boolean variables are encoded
// eagerly (one SAT variable each) since every Boolean literal appears in
// some clause by construction; integer encodings are filled in on demand.
func New(norm *normcsp.NormCSP, solver sat.Solver) *Map {
	m := &Map{
		boolLits: make([]sat.Lit, norm.NumBoolVars()),
		ints:     make([]IntEncoding, norm.NumIntVars()),
	}
	for v := range m.boolLits {
		m.boolLits[v] = solver.NewVar()
	}
	return m
}

// GrowBool allocates SAT literals for newly-introduced normalized Boolean
// variables (incremental re-normalization appends to NormCSP; the encoding
// map must keep pace).
func (m *Map) GrowBool(numBool int, solver sat.Solver) {
	for len(m.boolLits) < numBool {
		m.boolLits = append(m.boolLits, solver.NewVar())
	}
}

// GrowInt extends the integer-encoding slots for newly-introduced
// normalized integer variables, leaving them unencoded until first needed.
func (m *Map) GrowInt(numInt int) {
	for len(m.ints) < numInt {
		m.ints = append(m.ints, IntEncoding{})
	}
}

func (m *Map) BoolLit(v normcsp.BoolVarID) sat.Lit { return m.boolLits[v] }

// Lit resolves a normalized Boolean literal (accounting for negation) to a
// SAT literal.
func (m *Map) Lit(l normcsp.BoolLit) sat.Lit {
	base := m.boolLits[l.Var]
	if l.Negated {
		return base.Not()
	}
	return base
}

func (m *Map) IntEncodingOf(v normcsp.IntVarID) *IntEncoding { return &m.ints[v] }

func (m *Map) HasOrder(v normcsp.IntVarID) bool  { return m.ints[v].Order != nil }
func (m *Map) HasDirect(v normcsp.IntVarID) bool { return m.ints[v].Direct != nil }

func (m *Map) SetOrder(v normcsp.IntVarID, enc *OrderEncoding)   { m.ints[v].Order = enc }
func (m *Map) SetDirect(v normcsp.IntVarID, enc *DirectEncoding) { m.ints[v].Direct = enc }
