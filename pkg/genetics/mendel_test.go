package genetics

import (
	"math/rand"
	"testing"
)

func TestPeaRegistryCharacters(t *testing.T) {
	r := NewPeaRegistry()
	want := map[string]bool{
		CharSeedShape: true, CharSeedColor: true, CharFlowerColor: true,
		CharPlantHeight: true, CharPodColor: true, CharPodShape: true,
		CharFlowerPosition: true,
	}
	got := r.Characters()
	if len(got) != len(want) {
		t.Fatalf("characters = %v, want %d entries", got, len(want))
	}
	for _, c := range got {
		if !want[c] {
			t.Fatalf("unexpected character %q", c)
		}
	}
}

func TestPeaPodShapeEpistasis(t *testing.T) {
	r := NewPeaRegistry()
	base := PeaGenotypeFromTraits(nil, rand.New(rand.NewSource(3)))
	cases := []struct {
		p, v Pair
		want string
	}{
		{Pair{"P", "P"}, Pair{"V", "V"}, "inflated"},
		{Pair{"P", "p"}, Pair{"V", "v"}, "inflated"},
		{Pair{"p", "p"}, Pair{"V", "V"}, "constricted"},
		{Pair{"P", "P"}, Pair{"v", "v"}, "constricted"},
		{Pair{"p", "p"}, Pair{"v", "v"}, "constricted"},
	}
	for _, tc := range cases {
		g := base.Clone()
		g[LocusPodParchment] = tc.p
		g[LocusPodValve] = tc.v
		ph, err := r.DerivePhenotype(g)
		if err != nil {
			t.Fatalf("derive %v %v: %v", tc.p, tc.v, err)
		}
		if ph[CharPodShape] != tc.want {
			t.Fatalf("pod shape for P=%v V=%v: got %q, want %q", tc.p, tc.v, ph[CharPodShape], tc.want)
		}
		if _, leaked := ph[LocusPodParchment]; leaked {
			t.Fatal("composite locus P leaked a standalone phenotype entry")
		}
	}
}

func TestPeaFlowerPositionModifier(t *testing.T) {
	r := NewPeaRegistry()
	base := PeaGenotypeFromTraits(nil, rand.New(rand.NewSource(4)))
	cases := []struct {
		fa, mfa Pair
		want    string
	}{
		{Pair{"Fa", "Fa"}, Pair{"Mfa", "Mfa"}, "axial"},
		{Pair{"Fa", "fa"}, Pair{"Mfa", "mfa"}, "axial"},
		{Pair{"fa", "fa"}, Pair{"Mfa", "Mfa"}, "terminal"},
		{Pair{"fa", "fa"}, Pair{"mfa", "mfa"}, "axial"}, // modifier suppresses fasciation
	}
	for _, tc := range cases {
		g := base.Clone()
		g[LocusFasciation] = tc.fa
		g[LocusFasciationMod] = tc.mfa
		ph, err := r.DerivePhenotype(g)
		if err != nil {
			t.Fatalf("derive: %v", err)
		}
		if ph[CharFlowerPosition] != tc.want {
			t.Fatalf("flower position for Fa=%v Mfa=%v: got %q, want %q", tc.fa, tc.mfa, ph[CharFlowerPosition], tc.want)
		}
	}
}

func TestPeaGenotypeInference(t *testing.T) {
	r := NewPeaRegistry()
	rng := rand.New(rand.NewSource(5))
	observed := map[string]string{
		CharSeedShape:      "wrinkled",
		CharSeedColor:      "green",
		CharFlowerColor:    "white",
		CharPlantHeight:    "dwarf",
		CharPodColor:       "yellow",
		CharPodShape:       "constricted",
		CharFlowerPosition: "terminal",
	}
	for i := 0; i < 50; i++ {
		g := PeaGenotypeFromTraits(observed, rng)
		if err := r.ValidateGenotype(g); err != nil {
			t.Fatalf("inferred genotype invalid: %v", err)
		}
		ph, err := r.DerivePhenotype(g)
		if err != nil {
			t.Fatalf("derive inferred: %v", err)
		}
		// Recessive observations pin the genotype exactly.
		for char, want := range observed {
			if ph[char] != want {
				t.Fatalf("inference round %d: character %q derived %q, want %q", i, char, ph[char], want)
			}
		}
	}
}

func TestPeaMonohybridSegregation(t *testing.T) {
	r := NewPeaRegistry()
	rng := rand.New(rand.NewSource(1866))

	// True-breeding round x wrinkled, all other characters fixed dominant.
	fixed := func(seedShape Pair) Genotype {
		g := Genotype{
			LocusSeedShape: seedShape, LocusSeedColor: Pair{"I", "I"},
			LocusFlowerColor: Pair{"A", "A"}, LocusPlantHeight: Pair{"Le", "Le"},
			LocusPodColor: Pair{"Gp", "Gp"}, LocusPodParchment: Pair{"P", "P"},
			LocusPodValve: Pair{"V", "V"}, LocusFasciation: Pair{"Fa", "Fa"},
			LocusFasciationMod: Pair{"Mfa", "Mfa"},
		}
		return g
	}
	round, err := r.SeedFounder(fixed(Pair{"R", "R"}))
	if err != nil {
		t.Fatalf("seed round founder: %v", err)
	}
	wrinkled, err := r.SeedFounder(fixed(Pair{"r", "r"}))
	if err != nil {
		t.Fatalf("seed wrinkled founder: %v", err)
	}

	f1, err := r.Breed(round, wrinkled, rng)
	if err != nil {
		t.Fatalf("F1 cross: %v", err)
	}
	if f1.Phenotype[CharSeedShape] != "round" {
		t.Fatalf("F1 must be uniformly round, got %q", f1.Phenotype[CharSeedShape])
	}

	f2 := make([]Organism, 0, 800)
	for i := 0; i < 800; i++ {
		child, err := r.Breed(f1, f1, rng)
		if err != nil {
			t.Fatalf("F2 cross %d: %v", i, err)
		}
		f2 = append(f2, child)
	}
	counts := CountCharacter(f2, CharSeedShape)
	res, err := TestRatio(CharSeedShape, counts, map[string]float64{"round": 3, "wrinkled": 1})
	if err != nil {
		t.Fatalf("ratio test: %v", err)
	}
	// A real 3:1 segregation should not be rejected at the 0.1% level.
	if res.PValue < 0.001 {
		t.Fatalf("F2 segregation far from 3:1: counts=%v chi2=%.2f p=%.5f", counts, res.ChiSquare, res.PValue)
	}
}
