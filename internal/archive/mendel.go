package archive

import (
	"fmt"
	"sort"

	"gardencore/pkg/domain"
	"gardencore/pkg/genetics"
)

// SegregationChecks runs a 3:1 goodness-of-fit test per single-locus
// character over the offspring of archived selfings whose mother was
// heterozygous at that locus. Offspring phenotypes are derived from the
// harvested seed genotypes; characters with no qualifying offspring are
// skipped.
func SegregationChecks(snap Snapshot, reg *genetics.Registry) ([]genetics.RatioTest, error) {
	plants := plantIndex(snap)
	lots := lotIndex(snap)

	type ratioClass struct {
		dominant  string
		recessive string
	}
	classes := make(map[string]ratioClass)
	counts := make(map[string]map[string]int)

	for _, name := range reg.Traits() {
		def, ok := reg.Trait(name)
		if !ok || def.Character == "" {
			continue
		}
		dom := def.Dominance[0]
		rec := def.Dominance[len(def.Dominance)-1]
		domExpr, recExpr := expressedValue(def, dom), expressedValue(def, rec)
		if domExpr == "" || recExpr == "" || domExpr == recExpr {
			continue
		}

		for _, cross := range snap.Crosses {
			if cross.Kind != domain.CrossSelfing || cross.SeedLotID == nil {
				continue
			}
			mother, ok := plants[cross.MotherID]
			if !ok {
				continue
			}
			pair, ok := mother.Genotype[name]
			if !ok || pair[0] == pair[1] {
				continue
			}
			lot, ok := lots[*cross.SeedLotID]
			if !ok {
				continue
			}
			for _, seed := range lot.Seeds {
				pheno, err := reg.DerivePhenotype(seed.Genotype)
				if err != nil {
					return nil, fmt.Errorf("deriving offspring phenotype for cross %s: %w", cross.ID, err)
				}
				value, ok := pheno[def.Character]
				if !ok {
					continue
				}
				if counts[def.Character] == nil {
					counts[def.Character] = make(map[string]int)
					classes[def.Character] = ratioClass{dominant: domExpr, recessive: recExpr}
				}
				counts[def.Character][value]++
			}
		}
	}

	characters := make([]string, 0, len(counts))
	for character := range counts {
		characters = append(characters, character)
	}
	sort.Strings(characters)

	results := make([]genetics.RatioTest, 0, len(characters))
	for _, character := range characters {
		cls := classes[character]
		res, err := genetics.TestRatio(character, counts[character], map[string]float64{
			cls.dominant:  3,
			cls.recessive: 1,
		})
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// AssortmentCheck runs a 9:3:3:1 dihybrid test for two characters over
// the offspring of archived selfings whose mother was heterozygous at
// both underlying loci. Joint phenotypes are keyed "a/b" in the order
// the characters are given.
func AssortmentCheck(snap Snapshot, reg *genetics.Registry, charA, charB string) (genetics.RatioTest, error) {
	defA, err := singleLocusTrait(reg, charA)
	if err != nil {
		return genetics.RatioTest{}, err
	}
	defB, err := singleLocusTrait(reg, charB)
	if err != nil {
		return genetics.RatioTest{}, err
	}

	plants := plantIndex(snap)
	lots := lotIndex(snap)
	counts := make(map[string]int)

	for _, cross := range snap.Crosses {
		if cross.Kind != domain.CrossSelfing || cross.SeedLotID == nil {
			continue
		}
		mother, ok := plants[cross.MotherID]
		if !ok {
			continue
		}
		pa, okA := mother.Genotype[defA.Name]
		pb, okB := mother.Genotype[defB.Name]
		if !okA || !okB || pa[0] == pa[1] || pb[0] == pb[1] {
			continue
		}
		lot, ok := lots[*cross.SeedLotID]
		if !ok {
			continue
		}
		for _, seed := range lot.Seeds {
			pheno, err := reg.DerivePhenotype(seed.Genotype)
			if err != nil {
				return genetics.RatioTest{}, fmt.Errorf("deriving offspring phenotype for cross %s: %w", cross.ID, err)
			}
			counts[pheno[charA]+"/"+pheno[charB]]++
		}
	}

	domA := expressedValue(defA, defA.Dominance[0])
	recA := expressedValue(defA, defA.Dominance[len(defA.Dominance)-1])
	domB := expressedValue(defB, defB.Dominance[0])
	recB := expressedValue(defB, defB.Dominance[len(defB.Dominance)-1])
	ratio := map[string]float64{
		domA + "/" + domB: 9,
		domA + "/" + recB: 3,
		recA + "/" + domB: 3,
		recA + "/" + recB: 1,
	}
	return genetics.TestRatio(charA+"+"+charB, counts, ratio)
}

func singleLocusTrait(reg *genetics.Registry, character string) (genetics.TraitDefinition, error) {
	for _, name := range reg.Traits() {
		def, ok := reg.Trait(name)
		if ok && def.Character == character {
			return def, nil
		}
	}
	return genetics.TraitDefinition{}, fmt.Errorf("character %q is not backed by a single locus", character)
}

func expressedValue(def genetics.TraitDefinition, symbol string) string {
	for _, a := range def.Alleles {
		if a.Symbol == symbol {
			return a.Expressed
		}
	}
	return ""
}

func plantIndex(snap Snapshot) map[string]domain.Plant {
	out := make(map[string]domain.Plant, len(snap.Plants))
	for _, p := range snap.Plants {
		out[p.ID] = p
	}
	return out
}

func lotIndex(snap Snapshot) map[string]domain.SeedLot {
	out := make(map[string]domain.SeedLot, len(snap.SeedLots))
	for _, l := range snap.SeedLots {
		out[l.ID] = l
	}
	return out
}
