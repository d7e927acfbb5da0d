package genetics

import "fmt"

// DerivePhenotype resolves the expressed value for every trait in the
// genotype. It is a pure function of the genotype and the registry: single
// traits resolve through their dominance ranking, composite characters
// through their registered resolver. Traits consumed by a composite do not
// produce a standalone entry.
func (r *Registry) DerivePhenotype(g Genotype) (Phenotype, error) {
	ph := make(Phenotype, len(g))
	for trait, pair := range g {
		def, ok := r.traits[trait]
		if !ok {
			return nil, UnknownTraitError{Trait: trait}
		}
		for _, sym := range pair {
			if !def.has(sym) {
				return nil, ConfigurationError{Trait: trait, Reason: fmt.Sprintf("allele %q not declared", sym)}
			}
		}
		if _, claimed := r.consumedBy[trait]; claimed {
			continue
		}
		ph[def.characterKey()] = def.express(pair)
	}
	for _, comp := range r.composites {
		complete := true
		for _, t := range comp.Traits {
			if _, ok := g[t]; !ok {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		ph[comp.Character] = comp.Resolve(g)
	}
	return ph, nil
}
