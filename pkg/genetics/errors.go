package genetics

import "fmt"

// ConfigurationError reports an invalid or conflicting trait definition, or a
// genotype that does not conform to the registered definitions.
type ConfigurationError struct {
	Trait  string
	Reason string
}

func (e ConfigurationError) Error() string {
	if e.Trait == "" {
		return fmt.Sprintf("genetics: invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("genetics: trait %q: %s", e.Trait, e.Reason)
}

// UnknownTraitError reports a genotype referencing a trait with no definition.
type UnknownTraitError struct {
	Trait string
}

func (e UnknownTraitError) Error() string {
	return fmt.Sprintf("genetics: unknown trait %q", e.Trait)
}

// IncompatibleOrganismError reports an attempted cross between organisms whose
// trait sets differ.
type IncompatibleOrganismError struct {
	ParentA string
	ParentB string
	Detail  string
}

func (e IncompatibleOrganismError) Error() string {
	return fmt.Sprintf("genetics: organisms %s and %s cannot be crossed: %s", e.ParentA, e.ParentB, e.Detail)
}
