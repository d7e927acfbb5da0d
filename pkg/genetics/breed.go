package genetics

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Haplotype carries the alleles a gamete contributed at the two loci of a
// linkage group, in (TraitA, TraitB) order.
type Haplotype [2]string

// PhasePair holds the two parental haplotypes of a linkage group. Phase is
// fixed when an organism is created and reused for every meiosis, so repeated
// gametes from the same parent stay consistent.
type PhasePair [2]Haplotype

// Organism is an immutable record produced by SeedFounder or Breed. Breeding
// never mutates parents; every cross constructs a fresh value.
type Organism struct {
	ID         string               `json:"id"`
	Generation int                  `json:"generation"`
	ParentIDs  []string             `json:"parent_ids,omitempty"`
	Genotype   Genotype             `json:"genotype"`
	Phenotype  Phenotype            `json:"phenotype"`
	Phases     map[string]PhasePair `json:"phases,omitempty"`
}

// Clone returns a deep copy of the organism.
func (o Organism) Clone() Organism {
	cp := o
	cp.ParentIDs = append([]string(nil), o.ParentIDs...)
	cp.Genotype = o.Genotype.Clone()
	cp.Phenotype = o.Phenotype.Clone()
	if o.Phases != nil {
		cp.Phases = make(map[string]PhasePair, len(o.Phases))
		for k, v := range o.Phases {
			cp.Phases[k] = v
		}
	}
	return cp
}

// Founder reports whether the organism has no recorded parents.
func (o Organism) Founder() bool { return len(o.ParentIDs) == 0 }

func newOrganismID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// SeedFounder constructs a generation-0 organism from an explicit genotype,
// validated against every registered trait. Heterozygous linkage groups
// default to coupling phase (dominant alleles on the same chromosome), the
// arrangement produced by crossing true-breeding lines.
func (r *Registry) SeedFounder(g Genotype) (Organism, error) {
	if err := r.ValidateGenotype(g); err != nil {
		return Organism{}, err
	}
	geno := make(Genotype, len(g))
	for trait, pair := range g {
		geno[trait] = r.normalizePair(r.traits[trait], pair[0], pair[1])
	}
	ph, err := r.DerivePhenotype(geno)
	if err != nil {
		return Organism{}, err
	}
	return Organism{
		ID:        newOrganismID(),
		Genotype:  geno,
		Phenotype: ph,
		Phases:    r.couplingPhases(geno),
	}, nil
}

// couplingPhases assigns dominant-with-dominant haplotypes for every linkage
// group at which the genotype is doubly heterozygous.
func (r *Registry) couplingPhases(g Genotype) map[string]PhasePair {
	var phases map[string]PhasePair
	for _, l := range r.linkages {
		pa, oka := g[l.TraitA]
		pb, okb := g[l.TraitB]
		if !oka || !okb || pa.Homozygous() || pb.Homozygous() {
			continue
		}
		if phases == nil {
			phases = make(map[string]PhasePair)
		}
		// pairs are normalized dominant-first
		phases[l.key()] = PhasePair{{pa[0], pb[0]}, {pa[1], pb[1]}}
	}
	return phases
}

// Gamete is one haploid allele draw per trait.
type Gamete map[string]string

// MakeGamete samples a gamete from the organism: one allele per trait chosen
// uniformly, then linked loci re-drawn from the parental haplotypes with the
// configured recombination fraction. Traits are visited in registration order
// so the draw is deterministic under a seeded source.
func (r *Registry) MakeGamete(o Organism, rng RandomSource) Gamete {
	gam := make(Gamete, len(o.Genotype))
	for _, trait := range r.order {
		pair, ok := o.Genotype[trait]
		if !ok {
			continue
		}
		gam[trait] = pair[rng.Intn(2)]
	}
	for _, l := range r.linkages {
		pa, oka := o.Genotype[l.TraitA]
		pb, okb := o.Genotype[l.TraitB]
		if !oka || !okb {
			continue
		}
		// linkage only matters for double heterozygotes
		if pa.Homozygous() || pb.Homozygous() {
			continue
		}
		phase, ok := o.Phases[l.key()]
		if !ok {
			phase = PhasePair{{pa[0], pb[0]}, {pa[1], pb[1]}}
		}
		var chosen Haplotype
		if rng.Float64() < 1.0-l.RecombFraction {
			chosen = phase[rng.Intn(2)]
		} else {
			h1, h2 := phase[0], phase[1]
			recombinants := [2]Haplotype{{h1[0], h2[1]}, {h2[0], h1[1]}}
			chosen = recombinants[rng.Intn(2)]
		}
		gam[l.TraitA], gam[l.TraitB] = chosen[0], chosen[1]
	}
	return gam
}

// Breed crosses two parents into exactly one offspring. For every registered
// trait one allele is drawn from each parent's pair (via gamete formation, so
// linkage applies); the offspring phenotype is derived through the dominance
// rules. Parents are never mutated.
func (r *Registry) Breed(parentA, parentB Organism, rng RandomSource) (Organism, error) {
	if err := r.checkCompatible(parentA, parentB); err != nil {
		return Organism{}, err
	}
	maternal := r.MakeGamete(parentA, rng)
	paternal := r.MakeGamete(parentB, rng)

	geno := make(Genotype, len(maternal))
	var phases map[string]PhasePair
	for _, trait := range r.order {
		am, ok := maternal[trait]
		if !ok {
			continue
		}
		ap := paternal[trait]
		geno[trait] = r.normalizePair(r.traits[trait], am, ap)
	}
	// The child's linkage phase is exactly the two gametes it received.
	for _, l := range r.linkages {
		pa, oka := geno[l.TraitA]
		pb, okb := geno[l.TraitB]
		if !oka || !okb || pa.Homozygous() || pb.Homozygous() {
			continue
		}
		if phases == nil {
			phases = make(map[string]PhasePair)
		}
		phases[l.key()] = PhasePair{
			{maternal[l.TraitA], maternal[l.TraitB]},
			{paternal[l.TraitA], paternal[l.TraitB]},
		}
	}

	ph, err := r.DerivePhenotype(geno)
	if err != nil {
		return Organism{}, err
	}
	gen := parentA.Generation
	if parentB.Generation > gen {
		gen = parentB.Generation
	}
	return Organism{
		ID:         newOrganismID(),
		Generation: gen + 1,
		ParentIDs:  []string{parentA.ID, parentB.ID},
		Genotype:   geno,
		Phenotype:  ph,
		Phases:     phases,
	}, nil
}

func (r *Registry) checkCompatible(a, b Organism) error {
	same := len(a.Genotype) == len(b.Genotype)
	if same {
		for trait := range a.Genotype {
			if _, ok := b.Genotype[trait]; !ok {
				same = false
				break
			}
		}
	}
	if !same {
		return IncompatibleOrganismError{
			ParentA: a.ID,
			ParentB: b.ID,
			Detail:  fmt.Sprintf("trait sets differ (%s vs %s)", traitSet(a.Genotype), traitSet(b.Genotype)),
		}
	}
	if err := r.ValidateGenotype(a.Genotype); err != nil {
		return err
	}
	return r.ValidateGenotype(b.Genotype)
}

func traitSet(g Genotype) string {
	names := make([]string, 0, len(g))
	for k := range g {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
