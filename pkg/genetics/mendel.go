package genetics

// Classical pea loci. Names follow the historical nomenclature used in pea
// genetics; each locus carries the character it controls.
const (
	LocusSeedShape      = "R"   // round vs wrinkled seeds
	LocusSeedColor      = "I"   // yellow vs green cotyledons
	LocusFlowerColor    = "A"   // purple vs white flowers (anthocyanin)
	LocusPlantHeight    = "Le"  // tall vs dwarf stems
	LocusPodColor       = "Gp"  // green vs yellow pods
	LocusPodParchment   = "P"   // pod wall parchment layer
	LocusPodValve       = "V"   // pod valve sclerenchyma
	LocusFasciation     = "Fa"  // axial vs terminal flowers
	LocusFasciationMod  = "Mfa" // modifier suppressing fa fasciation
)

// Pea phenotype character keys.
const (
	CharSeedShape      = "seed_shape"
	CharSeedColor      = "seed_color"
	CharFlowerColor    = "flower_color"
	CharPlantHeight    = "plant_height"
	CharPodColor       = "pod_color"
	CharPodShape       = "pod_shape"
	CharFlowerPosition = "flower_position"
)

// Stage thresholds at which each pea character becomes observable, matching
// the growth stages used by the garden layer (3 young plant, 5 flowering,
// 6 pod development, 7 mature seeds).
var peaRevealStages = map[string]int{
	CharPlantHeight:    3,
	CharFlowerPosition: 5,
	CharFlowerColor:    5,
	CharPodColor:       6,
	CharPodShape:       7,
	CharSeedShape:      7,
	CharSeedColor:      7,
}

// PeaRevealStage returns the growth stage from which a pea character is
// observable, or 0 when the character is always visible.
func PeaRevealStage(character string) int {
	return peaRevealStages[character]
}

// NewPeaRegistry builds the full Mendel pea configuration: seven characters
// over nine loci, including the two-locus epistatic characters (pod shape via
// P and V, flower position via Fa and its Mfa modifier) and the known linkage
// groups (Le–V at ~12.6 cM, R–Gp weakly linked at ~30 cM).
func NewPeaRegistry() *Registry {
	r := NewRegistry()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(r.Define(TraitDefinition{
		Name: LocusSeedShape, Character: CharSeedShape,
		Alleles:     []AlleleSpec{{Symbol: "R", Expressed: "round"}, {Symbol: "r", Expressed: "wrinkled"}},
		Dominance:   []string{"R", "r"},
		RevealStage: peaRevealStages[CharSeedShape],
	}))
	must(r.Define(TraitDefinition{
		Name: LocusSeedColor, Character: CharSeedColor,
		Alleles:     []AlleleSpec{{Symbol: "I", Expressed: "yellow"}, {Symbol: "i", Expressed: "green"}},
		Dominance:   []string{"I", "i"},
		RevealStage: peaRevealStages[CharSeedColor],
	}))
	must(r.Define(TraitDefinition{
		Name: LocusFlowerColor, Character: CharFlowerColor,
		Alleles:     []AlleleSpec{{Symbol: "A", Expressed: "purple"}, {Symbol: "a", Expressed: "white"}},
		Dominance:   []string{"A", "a"},
		RevealStage: peaRevealStages[CharFlowerColor],
	}))
	must(r.Define(TraitDefinition{
		Name: LocusPlantHeight, Character: CharPlantHeight,
		Alleles:     []AlleleSpec{{Symbol: "Le", Expressed: "tall"}, {Symbol: "le", Expressed: "dwarf"}},
		Dominance:   []string{"Le", "le"},
		RevealStage: peaRevealStages[CharPlantHeight],
	}))
	must(r.Define(TraitDefinition{
		Name: LocusPodColor, Character: CharPodColor,
		Alleles:     []AlleleSpec{{Symbol: "Gp", Expressed: "green"}, {Symbol: "gp", Expressed: "yellow"}},
		Dominance:   []string{"Gp", "gp"},
		RevealStage: peaRevealStages[CharPodColor],
	}))
	must(r.Define(TraitDefinition{
		Name:      LocusPodParchment,
		Alleles:   []AlleleSpec{{Symbol: "P", Expressed: "inflated"}, {Symbol: "p", Expressed: "constricted"}},
		Dominance: []string{"P", "p"},
	}))
	must(r.Define(TraitDefinition{
		Name:      LocusPodValve,
		Alleles:   []AlleleSpec{{Symbol: "V", Expressed: "inflated"}, {Symbol: "v", Expressed: "constricted"}},
		Dominance: []string{"V", "v"},
	}))
	must(r.Define(TraitDefinition{
		Name:      LocusFasciation,
		Alleles:   []AlleleSpec{{Symbol: "Fa", Expressed: "axial"}, {Symbol: "fa", Expressed: "terminal"}},
		Dominance: []string{"Fa", "fa"},
	}))
	must(r.Define(TraitDefinition{
		Name:      LocusFasciationMod,
		Alleles:   []AlleleSpec{{Symbol: "Mfa", Expressed: "axial"}, {Symbol: "mfa", Expressed: "axial"}},
		Dominance: []string{"Mfa", "mfa"},
	}))

	// Pods are inflated only with a dominant allele at both P and V: either
	// locus homozygous recessive collapses the wall.
	must(r.DefineComposite(CharPodShape, []string{LocusPodParchment, LocusPodValve}, func(g Genotype) string {
		if g[LocusPodParchment].Homozygous() && g[LocusPodParchment].Has("p") {
			return "constricted"
		}
		if g[LocusPodValve].Homozygous() && g[LocusPodValve].Has("v") {
			return "constricted"
		}
		return "inflated"
	}))
	// Terminal flowers need fa/fa unsuppressed by a homozygous mfa modifier.
	must(r.DefineComposite(CharFlowerPosition, []string{LocusFasciation, LocusFasciationMod}, func(g Genotype) string {
		faHomo := g[LocusFasciation].Homozygous() && g[LocusFasciation].Has("fa")
		mfaHomo := g[LocusFasciationMod].Homozygous() && g[LocusFasciationMod].Has("mfa")
		if !faHomo || mfaHomo {
			return "axial"
		}
		return "terminal"
	}))

	must(r.DefineLinkage(LocusPlantHeight, LocusPodValve, 0.126))
	must(r.DefineLinkage(LocusSeedShape, LocusPodColor, 0.30))
	return r
}

// inferPair reconstructs an allele pair from an observed expressed value,
// biasing toward the heterozygote when the phenotype is dominant.
func inferPair(dom, rec string, dominantPheno bool, rng RandomSource) Pair {
	if dominantPheno {
		if rng.Float64() < 0.5 {
			return Pair{dom, rec}
		}
		return Pair{dom, dom}
	}
	return Pair{rec, rec}
}

// PeaGenotypeFromTraits reconstructs a plausible genotype from observed pea
// characters, e.g. for founder seed acquired with phenotype only. Missing or
// empty characters default to the dominant expression.
func PeaGenotypeFromTraits(observed map[string]string, rng RandomSource) Genotype {
	get := func(key string) string {
		return observed[key]
	}
	g := Genotype{
		LocusSeedShape:   inferPair("R", "r", get(CharSeedShape) != "wrinkled", rng),
		LocusSeedColor:   inferPair("I", "i", get(CharSeedColor) != "green", rng),
		LocusFlowerColor: inferPair("A", "a", get(CharFlowerColor) != "white", rng),
		LocusPlantHeight: inferPair("Le", "le", get(CharPlantHeight) != "dwarf", rng),
		LocusPodColor:    inferPair("Gp", "gp", get(CharPodColor) != "yellow", rng),
	}
	if get(CharPodShape) == "constricted" {
		// one of the two loci must be homozygous recessive; pick which
		if rng.Float64() < 0.5 {
			g[LocusPodParchment] = Pair{"p", "p"}
			g[LocusPodValve] = inferPair("V", "v", true, rng)
		} else {
			g[LocusPodValve] = Pair{"v", "v"}
			g[LocusPodParchment] = inferPair("P", "p", true, rng)
		}
	} else {
		g[LocusPodParchment] = inferPair("P", "p", true, rng)
		g[LocusPodValve] = inferPair("V", "v", true, rng)
	}
	if get(CharFlowerPosition) == "terminal" {
		g[LocusFasciation] = Pair{"fa", "fa"}
		g[LocusFasciationMod] = Pair{"Mfa", "Mfa"}
	} else {
		g[LocusFasciation] = inferPair("Fa", "fa", true, rng)
		g[LocusFasciationMod] = inferPair("Mfa", "mfa", true, rng)
	}
	return g
}
