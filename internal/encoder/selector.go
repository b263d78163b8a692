package encoder

import (
	"github.com/semiexp/cspcore/internal/normcsp"
)

// shouldUseNativePropagator decides whether sum is big enough to route
// through propagator.OrderEncodingLinear instead of clause expansion (spec
// §4.6 "Beyond a configured term count... registers a propagator"). A term
// threshold of zero or less disables the propagator path (matching
// native_linear_encoding_terms = 0 meaning "never"); otherwise the sum needs
// at least that many terms and, when the product threshold is positive, a
// domain-size product of at least that threshold. A product threshold of
// zero or less adds no product requirement.
func (e *Env) shouldUseNativePropagator(sum normcsp.LinearSum) bool {
	if e.Cfg.NativeLinearEncodingTerms <= 0 {
		return false
	}
	if len(sum.Terms) < e.Cfg.NativeLinearEncodingTerms {
		return false
	}
	product := 1
	for v := range sum.Terms {
		size := e.norm.DomainOf(v).Size()
		if size > 1 {
			product *= size
		}
		if e.Cfg.NativeLinearEncodingDomainProductThresh > 0 && product >= e.Cfg.NativeLinearEncodingDomainProductThresh {
			return true
		}
	}
	return e.Cfg.NativeLinearEncodingDomainProductThresh <= 0
}

// selectEncodings runs the spec §4.2 monotone policy for every variable in
// sum: singleton domains need no SAT variable at all (callers read the
// constant straight off the domain when building LinearInfo — here we just
// skip them), direct encoding is chosen when enabled and the domain-size
// product of the whole sum is at most the configured threshold, order
// encoding otherwise. A variable that already has either encoding is left
// as it is, so the first constraint over a variable decides its encoding
// here; only registerNativePropagator adds an order encoding alongside an
// existing direct one (ensureOrder links the two).
func (e *Env) selectEncodings(sum normcsp.LinearSum) {
	product := 1
	for v := range sum.Terms {
		size := e.norm.DomainOf(v).Size()
		if size > 1 {
			product *= size
		}
	}

	useDirect := e.Cfg.UseDirectEncoding && product <= e.Cfg.DomainProductThreshold

	for v := range sum.Terms {
		if e.norm.DomainOf(v).IsSingleton() {
			continue
		}
		if e.Map.HasOrder(v) || e.Map.HasDirect(v) {
			continue
		}
		if useDirect {
			e.ensureDirect(v)
		} else {
			e.ensureOrder(v)
		}
	}
}
