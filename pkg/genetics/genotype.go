package genetics

// Pair is an unordered pair of allele symbols carried for one trait. The
// engine stores pairs dominant-first for stable display, but equality is
// defined over the multiset: {A,a} and {a,A} are the same pair.
type Pair [2]string

// NewPair builds a pair in lexical order. Registries re-normalize pairs
// dominant-first when constructing organisms.
func NewPair(a, b string) Pair {
	if b < a {
		return Pair{b, a}
	}
	return Pair{a, b}
}

// Equal reports whether two pairs carry the same alleles, ignoring order.
func (p Pair) Equal(q Pair) bool {
	return (p[0] == q[0] && p[1] == q[1]) || (p[0] == q[1] && p[1] == q[0])
}

// Homozygous reports whether both alleles are identical.
func (p Pair) Homozygous() bool { return p[0] == p[1] }

// Has reports whether the pair carries the given allele symbol.
func (p Pair) Has(symbol string) bool { return p[0] == symbol || p[1] == symbol }

// String renders the pair in the conventional slash form, e.g. "A/a".
func (p Pair) String() string { return p[0] + "/" + p[1] }

// Genotype maps trait names to the allele pair an organism carries.
type Genotype map[string]Pair

// Clone returns an independent copy of the genotype.
func (g Genotype) Clone() Genotype {
	if g == nil {
		return nil
	}
	out := make(Genotype, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// Equal reports whether two genotypes carry the same pairs for the same
// traits.
func (g Genotype) Equal(other Genotype) bool {
	if len(g) != len(other) {
		return false
	}
	for k, v := range g {
		w, ok := other[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

// Phenotype maps character names to the observed expressed value.
type Phenotype map[string]string

// Clone returns an independent copy of the phenotype.
func (p Phenotype) Clone() Phenotype {
	if p == nil {
		return nil
	}
	out := make(Phenotype, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
