// Package config holds the Config value passed by value into each solver
// run (spec §6, §9 "Configuration propagation"). It is never mutated by the
// core after construction.
package config

import "fmt"

// Backend selects the SAT engine behind sat.Solver. Glucose and CaDiCaL are
// external collaborators with a pinned interface (spec §1 Scope); this repo
// does not ship cgo bindings to either. BackendGlucose resolves to the
// in-process github.com/go-air/gini adapter, the closest real dependency
// with the same CDCL contract. BackendCaDiCaL and BackendExternal both
// resolve to the DIMACS subprocess adapter, spawning the configured binary.
type Backend string

const (
	BackendGlucose  Backend = "glucose"
	BackendCaDiCaL  Backend = "cadical"
	BackendExternal Backend = "external"
)

func (b Backend) valid() bool {
	switch b {
	case BackendGlucose, BackendCaDiCaL, BackendExternal:
		return true
	default:
		return false
	}
}

// OrderEncodingLinearMode selects which variant of the order-encoding linear
// propagator's reason computation runs. "cpp" reproduces the older,
// non-optimizing reason (skips no terms); "rust" and "rust-optimized"
// mirror the two modes the Rust implementation shipped, the latter setting
// use_optimize (propagator skips the term containing the propagating
// literal when computing a reason).
type OrderEncodingLinearMode string

const (
	ModeCPP           OrderEncodingLinearMode = "cpp"
	ModeRust          OrderEncodingLinearMode = "rust"
	ModeRustOptimized OrderEncodingLinearMode = "rust-optimized"
)

func (m OrderEncodingLinearMode) valid() bool {
	switch m {
	case ModeCPP, ModeRust, ModeRustOptimized:
		return true
	default:
		return false
	}
}

// UseOptimize reports whether this mode sets the propagator's optimize
// flag (spec §9 Open question).
func (m OrderEncodingLinearMode) UseOptimize() bool {
	return m == ModeRustOptimized
}

// Config enumerates every knob spec §6 lists.
type Config struct {
	UseConstantFolding      bool
	UseConstantPropagation  bool
	UseNormDomainRefinement bool

	DomainProductThreshold int
	UseDirectEncoding      bool

	NativeLinearEncodingTerms              int
	NativeLinearEncodingDomainProductThresh int

	MergeEquivalentVariables          bool
	AlldifferentBijectionConstraints  bool

	Backend                 Backend
	OrderEncodingLinearMode OrderEncodingLinearMode
	OptimizePolarity        bool

	// Backend-specific knobs.
	RandomSeed             int64
	RandomizedInitialActivity bool
	Verbosity               int
	ExternalCommand         string // binary name/path for BackendExternal
}

// Default returns the configuration cspuz_core ships as its default: every
// optional normalization/encoding pass enabled, direct encoding for sums
// whose domain-size product is at most 400 (order encoding above that), the
// native linear propagator for sums of at least 4 terms whose domain-size
// product reaches 1,000,000, and Backend set to glucose (the driver still
// picks nativesolver, because NativeLinearEncodingTerms is positive).
func Default() Config {
	return Config{
		UseConstantFolding:      true,
		UseConstantPropagation:  true,
		UseNormDomainRefinement: true,

		DomainProductThreshold: 400,
		UseDirectEncoding:      true,

		NativeLinearEncodingTerms:              4,
		NativeLinearEncodingDomainProductThresh: 1_000_000,

		MergeEquivalentVariables:          true,
		AlldifferentBijectionConstraints:  true,

		Backend:                 BackendGlucose,
		OrderEncodingLinearMode: ModeRustOptimized,
		OptimizePolarity:        true,

		RandomSeed: 0,
		Verbosity:  0,
	}
}

// ConfigError is returned when a Config's enum fields contain an
// unrecognized value (spec §7 "Configuration error... reject at the
// boundary with a clear message").
type ConfigError struct {
	Field string
	Value string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("config: invalid value %q for %s", e.Value, e.Field)
}

// Validate rejects a Config with an unrecognized enum value.
func (c Config) Validate() error {
	if !c.Backend.valid() {
		return ConfigError{Field: "backend", Value: string(c.Backend)}
	}
	if !c.OrderEncodingLinearMode.valid() {
		return ConfigError{Field: "order_encoding_linear_mode", Value: string(c.OrderEncodingLinearMode)}
	}
	if c.DomainProductThreshold < 0 {
		return ConfigError{Field: "domain_product_threshold", Value: fmt.Sprint(c.DomainProductThreshold)}
	}
	if c.NativeLinearEncodingTerms < 0 {
		return ConfigError{Field: "native_linear_encoding_terms", Value: fmt.Sprint(c.NativeLinearEncodingTerms)}
	}
	if c.NativeLinearEncodingDomainProductThresh < 0 {
		return ConfigError{Field: "native_linear_encoding_domain_product_threshold", Value: fmt.Sprint(c.NativeLinearEncodingDomainProductThresh)}
	}
	return nil
}
