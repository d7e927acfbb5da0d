// Package genetics implements a Mendelian inheritance engine: trait
// definitions with dominance ordering, genotypes as unordered allele pairs,
// gamete formation with optional genetic linkage, and pure phenotype
// derivation. All randomness flows through an injected RandomSource so that
// every operation is deterministic under a fixed seed.
package genetics

import (
	"fmt"
	"sort"
)

// RandomSource supplies the randomness used for allele segregation. It is
// satisfied by *math/rand.Rand and by scripted sources in tests.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// AlleleSpec declares one allele symbol and the trait value it expresses.
type AlleleSpec struct {
	Symbol    string `json:"symbol" yaml:"symbol"`
	Expressed string `json:"expressed" yaml:"expressed"`
}

// TraitDefinition describes one trait: its allele symbols, the dominance
// ranking among them (most dominant first), and the phenotype character the
// trait contributes to. Character defaults to Name; traits consumed by a
// composite character contribute no direct phenotype entry.
type TraitDefinition struct {
	Name        string       `json:"name" yaml:"name"`
	Character   string       `json:"character,omitempty" yaml:"character,omitempty"`
	Alleles     []AlleleSpec `json:"alleles" yaml:"alleles"`
	Dominance   []string     `json:"dominance" yaml:"dominance"`
	RevealStage int          `json:"reveal_stage,omitempty" yaml:"reveal_stage,omitempty"`
}

func (d TraitDefinition) has(symbol string) bool {
	for _, a := range d.Alleles {
		if a.Symbol == symbol {
			return true
		}
	}
	return false
}

func (d TraitDefinition) expressed(symbol string) string {
	for _, a := range d.Alleles {
		if a.Symbol == symbol {
			return a.Expressed
		}
	}
	return ""
}

// rank returns the dominance rank of a symbol, lower is more dominant.
func (d TraitDefinition) rank(symbol string) int {
	for i, s := range d.Dominance {
		if s == symbol {
			return i
		}
	}
	return len(d.Dominance)
}

// characterKey returns the phenotype key this trait writes to.
func (d TraitDefinition) characterKey() string {
	if d.Character != "" {
		return d.Character
	}
	return d.Name
}

// express resolves the expressed value for an allele pair via the dominance
// ranking: equal alleles express themselves, otherwise the dominant wins.
func (d TraitDefinition) express(p Pair) string {
	if p[0] == p[1] {
		return d.expressed(p[0])
	}
	if d.rank(p[0]) <= d.rank(p[1]) {
		return d.expressed(p[0])
	}
	return d.expressed(p[1])
}

// Composite is a phenotype character resolved from more than one trait
// (epistasis). Traits consumed by a composite contribute no standalone
// phenotype entry.
type Composite struct {
	Character string
	Traits    []string
	Resolve   func(Genotype) string
}

// Linkage declares two traits as genetically linked with the given
// recombination fraction (0 = fully linked, 0.5 = independent assortment).
type Linkage struct {
	TraitA         string
	TraitB         string
	RecombFraction float64
}

func (l Linkage) key() string { return l.TraitA + "|" + l.TraitB }

// Registry holds the process-wide trait configuration. It is populated once
// at startup and read-only afterwards; no engine operation mutates it.
type Registry struct {
	traits     map[string]TraitDefinition
	order      []string
	composites []Composite
	consumedBy map[string]string
	linkages   []Linkage
}

// NewRegistry constructs an empty trait registry.
func NewRegistry() *Registry {
	return &Registry{
		traits:     make(map[string]TraitDefinition),
		consumedBy: make(map[string]string),
	}
}

// Define registers a fully specified trait definition.
func (r *Registry) Define(def TraitDefinition) error {
	if def.Name == "" {
		return ConfigurationError{Reason: "trait name is empty"}
	}
	if _, exists := r.traits[def.Name]; exists {
		return ConfigurationError{Trait: def.Name, Reason: "already registered"}
	}
	if len(def.Alleles) == 0 {
		return ConfigurationError{Trait: def.Name, Reason: "no alleles declared"}
	}
	seen := make(map[string]struct{}, len(def.Alleles))
	for _, a := range def.Alleles {
		if a.Symbol == "" {
			return ConfigurationError{Trait: def.Name, Reason: "empty allele symbol"}
		}
		if _, dup := seen[a.Symbol]; dup {
			return ConfigurationError{Trait: def.Name, Reason: fmt.Sprintf("duplicate allele %q", a.Symbol)}
		}
		seen[a.Symbol] = struct{}{}
	}
	if len(def.Dominance) != len(def.Alleles) {
		return ConfigurationError{Trait: def.Name, Reason: "dominance order must rank every allele exactly once"}
	}
	ranked := make(map[string]struct{}, len(def.Dominance))
	for _, s := range def.Dominance {
		if !def.has(s) {
			return ConfigurationError{Trait: def.Name, Reason: fmt.Sprintf("dominance order references unknown allele %q", s)}
		}
		if _, dup := ranked[s]; dup {
			return ConfigurationError{Trait: def.Name, Reason: fmt.Sprintf("dominance order ranks allele %q twice", s)}
		}
		ranked[s] = struct{}{}
	}
	def.Alleles = append([]AlleleSpec(nil), def.Alleles...)
	def.Dominance = append([]string(nil), def.Dominance...)
	r.traits[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// DefineTrait registers a trait whose phenotype character carries its name.
func (r *Registry) DefineTrait(name string, alleles []AlleleSpec, dominance []string) error {
	return r.Define(TraitDefinition{Name: name, Alleles: alleles, Dominance: dominance})
}

// DefineComposite registers an epistatic character resolved from the listed
// traits. The listed traits stop contributing standalone phenotype entries.
func (r *Registry) DefineComposite(character string, traits []string, resolve func(Genotype) string) error {
	if character == "" {
		return ConfigurationError{Reason: "composite character name is empty"}
	}
	if resolve == nil {
		return ConfigurationError{Reason: fmt.Sprintf("composite %q has no resolver", character)}
	}
	for _, c := range r.composites {
		if c.Character == character {
			return ConfigurationError{Reason: fmt.Sprintf("composite %q already registered", character)}
		}
	}
	for _, t := range traits {
		if _, ok := r.traits[t]; !ok {
			return UnknownTraitError{Trait: t}
		}
		if prev, claimed := r.consumedBy[t]; claimed {
			return ConfigurationError{Trait: t, Reason: fmt.Sprintf("already consumed by composite %q", prev)}
		}
	}
	for _, t := range traits {
		r.consumedBy[t] = character
	}
	r.composites = append(r.composites, Composite{
		Character: character,
		Traits:    append([]string(nil), traits...),
		Resolve:   resolve,
	})
	return nil
}

// DefineLinkage declares two registered traits as linked with the given
// recombination fraction.
func (r *Registry) DefineLinkage(traitA, traitB string, recombFraction float64) error {
	if traitA == traitB {
		return ConfigurationError{Trait: traitA, Reason: "cannot link a trait to itself"}
	}
	for _, t := range []string{traitA, traitB} {
		if _, ok := r.traits[t]; !ok {
			return UnknownTraitError{Trait: t}
		}
	}
	if recombFraction < 0 || recombFraction >= 0.5 {
		return ConfigurationError{Trait: traitA, Reason: fmt.Sprintf("recombination fraction %.3f out of range [0, 0.5)", recombFraction)}
	}
	for _, l := range r.linkages {
		if (l.TraitA == traitA || l.TraitB == traitA) && (l.TraitA == traitB || l.TraitB == traitB) {
			return ConfigurationError{Trait: traitA, Reason: fmt.Sprintf("linkage with %q already registered", traitB)}
		}
	}
	r.linkages = append(r.linkages, Linkage{TraitA: traitA, TraitB: traitB, RecombFraction: recombFraction})
	return nil
}

// Trait returns the definition registered under name.
func (r *Registry) Trait(name string) (TraitDefinition, bool) {
	def, ok := r.traits[name]
	return def, ok
}

// Traits returns registered trait names in registration order.
func (r *Registry) Traits() []string {
	return append([]string(nil), r.order...)
}

// Characters returns all phenotype character keys the registry can express,
// sorted for stable display.
func (r *Registry) Characters() []string {
	var out []string
	for _, name := range r.order {
		if _, claimed := r.consumedBy[name]; claimed {
			continue
		}
		out = append(out, r.traits[name].characterKey())
	}
	for _, c := range r.composites {
		out = append(out, c.Character)
	}
	sort.Strings(out)
	return out
}

// Linkages returns the registered linkage groups.
func (r *Registry) Linkages() []Linkage {
	return append([]Linkage(nil), r.linkages...)
}

// normalizePair orders an allele pair dominant-first (ties lexical) so that
// equivalent unordered pairs compare and display identically.
func (r *Registry) normalizePair(def TraitDefinition, a, b string) Pair {
	ra, rb := def.rank(a), def.rank(b)
	if ra > rb || (ra == rb && a > b) {
		return Pair{b, a}
	}
	return Pair{a, b}
}

// ValidateGenotype checks that a genotype references only registered traits
// and declared alleles, and covers every registered trait.
func (r *Registry) ValidateGenotype(g Genotype) error {
	for trait, pair := range g {
		def, ok := r.traits[trait]
		if !ok {
			return UnknownTraitError{Trait: trait}
		}
		for _, sym := range pair {
			if !def.has(sym) {
				return ConfigurationError{Trait: trait, Reason: fmt.Sprintf("allele %q not declared", sym)}
			}
		}
	}
	for _, name := range r.order {
		if _, ok := g[name]; !ok {
			return ConfigurationError{Trait: name, Reason: "genotype missing trait"}
		}
	}
	return nil
}
