// Package stage defines the two closed stage enumerations the driver
// sequences an obfuscation call through.
package stage

// CodeStage is one of the two string-to-string stages bracketing parse and
// generate.
type CodeStage int

const (
	PreparingTransformers CodeStage = iota
	FinalizingTransformers
)

func (s CodeStage) String() string {
	switch s {
	case PreparingTransformers:
		return "PreparingTransformers"
	case FinalizingTransformers:
		return "FinalizingTransformers"
	default:
		return "UnknownCodeStage"
	}
}

// AllCodeStages is the canonical, ordered set of code-level stages.
var AllCodeStages = []CodeStage{PreparingTransformers, FinalizingTransformers}

// NodeStage is one of the AST-level stages run in order between parse and
// generate.
type NodeStage int

const (
	Initializing NodeStage = iota
	Preparing
	DeadCodeInjection
	ControlFlowFlattening
	RenameProperties
	Converting
	RenameIdentifiers
	StringArray
	Simplifying
	Finalizing
)

func (s NodeStage) String() string {
	switch s {
	case Initializing:
		return "Initializing"
	case Preparing:
		return "Preparing"
	case DeadCodeInjection:
		return "DeadCodeInjection"
	case ControlFlowFlattening:
		return "ControlFlowFlattening"
	case RenameProperties:
		return "RenameProperties"
	case Converting:
		return "Converting"
	case RenameIdentifiers:
		return "RenameIdentifiers"
	case StringArray:
		return "StringArray"
	case Simplifying:
		return "Simplifying"
	case Finalizing:
		return "Finalizing"
	default:
		return "UnknownNodeStage"
	}
}

// CanonicalOrder is the fixed sequence node stages run in. The driver may
// skip optional stages (DeadCodeInjection, RenameProperties, Simplifying)
// per configuration, but never reorders what remains.
var CanonicalOrder = []NodeStage{
	Initializing,
	Preparing,
	DeadCodeInjection,
	ControlFlowFlattening,
	RenameProperties,
	Converting,
	RenameIdentifiers,
	StringArray,
	Simplifying,
	Finalizing,
}

// Optional reports whether a stage is only run when configuration enables
// it, per the stage driver in the specification.
func Optional(s NodeStage) bool {
	switch s {
	case DeadCodeInjection, RenameProperties, Simplifying:
		return true
	default:
		return false
	}
}
