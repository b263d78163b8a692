// Package csp is the user-facing algebra of Boolean and integer expressions,
// variables, and constraints (spec §3, §4.8 "CSP layer"). It never retains
// state beyond what the caller builds explicitly; lowering it into a
// normcsp.NormCSP is the normalizer's job.
package csp

import (
	"fmt"

	"github.com/semiexp/cspcore/internal/domain"
)

// BoolVarID identifies a Boolean CSP variable. Identity only, per spec §3.
type BoolVarID int

// IntVarID identifies an integer CSP variable. Identity plus Domain.
type IntVarID int

func (id BoolVarID) String() string { return fmt.Sprintf("b%d", int(id)) }
func (id IntVarID) String() string  { return fmt.Sprintf("i%d", int(id)) }

// CSP is the user-facing problem: a set of Boolean and integer variables,
// top-level Boolean expressions that must all hold, and a marked subset of
// variables the caller wants reported back (the "answer key").
type CSP struct {
	numBoolVars int
	intDomains  []domain.Domain

	exprs          []BoolExpr
	rawConstraints []Constraint

	answerBoolKeys []BoolVarID
	answerBoolSeen map[BoolVarID]bool
	answerIntKeys  []IntVarID
	answerIntSeen  map[IntVarID]bool
}

// New returns an empty CSP.
func New() *CSP {
	return &CSP{
		answerBoolSeen: make(map[BoolVarID]bool),
		answerIntSeen:  make(map[IntVarID]bool),
	}
}

// NewBoolVar allocates a fresh Boolean variable and returns its identifier.
func (c *CSP) NewBoolVar() BoolVarID {
	id := BoolVarID(c.numBoolVars)
	c.numBoolVars++
	return id
}

// NewIntVar allocates a fresh integer variable with the given domain and
// returns its identifier. d must be non-empty.
func (c *CSP) NewIntVar(d domain.Domain) IntVarID {
	if d.IsEmpty() {
		panic("csp: NewIntVar called with an empty domain")
	}
	id := IntVarID(len(c.intDomains))
	c.intDomains = append(c.intDomains, d)
	return id
}

// NumBoolVars returns the number of Boolean variables allocated so far.
func (c *CSP) NumBoolVars() int { return c.numBoolVars }

// NumIntVars returns the number of integer variables allocated so far.
func (c *CSP) NumIntVars() int { return len(c.intDomains) }

// DomainOf returns the domain of an integer variable.
func (c *CSP) DomainOf(id IntVarID) domain.Domain {
	return c.intDomains[id]
}

// AddConstraint adds a top-level expression that must evaluate to true in
// every model.
func (c *CSP) AddConstraint(e BoolExpr) {
	c.exprs = append(c.exprs, e)
}

// Constraints returns every top-level expression added so far, in the order
// they were added (the driver and normalizer depend on this order for
// deterministic clause emission, per spec §4.8).
func (c *CSP) Constraints() []BoolExpr {
	return c.exprs
}

// AddAnswerBoolKey marks a Boolean variable as one whose fixed-ness the
// caller wants reported by IrrefutableFacts, and whose value is reported in
// every model by AnswerIter. Marking the same variable twice is a no-op.
func (c *CSP) AddAnswerBoolKey(id BoolVarID) {
	if c.answerBoolSeen[id] {
		return
	}
	c.answerBoolSeen[id] = true
	c.answerBoolKeys = append(c.answerBoolKeys, id)
}

// AddAnswerIntKey marks an integer variable as an answer key.
func (c *CSP) AddAnswerIntKey(id IntVarID) {
	if c.answerIntSeen[id] {
		return
	}
	c.answerIntSeen[id] = true
	c.answerIntKeys = append(c.answerIntKeys, id)
}

// AnswerBoolKeys returns the Boolean answer-key variables, in the order they
// were first marked (the driver depends on this order for deterministic
// model and blocking-clause output, per spec §4.8).
func (c *CSP) AnswerBoolKeys() []BoolVarID {
	return c.answerBoolKeys
}

// AnswerIntKeys returns the integer answer-key variables, in the order they
// were first marked.
func (c *CSP) AnswerIntKeys() []IntVarID {
	return c.answerIntKeys
}
