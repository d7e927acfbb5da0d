package genetics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// CountCharacter tallies the expressed values of one character across a set
// of organisms. Organisms lacking the character are skipped.
func CountCharacter(organisms []Organism, character string) map[string]int {
	counts := make(map[string]int)
	for _, o := range organisms {
		if v, ok := o.Phenotype[character]; ok {
			counts[v]++
		}
	}
	return counts
}

// RatioTest holds the outcome of a chi-square goodness-of-fit test of
// observed phenotype counts against an expected Mendelian ratio.
type RatioTest struct {
	Character string
	Observed  map[string]int
	Expected  map[string]float64
	ChiSquare float64
	PValue    float64
	DF        int
}

// TestRatio compares observed counts for a character against an expected
// ratio, e.g. {"round": 3, "wrinkled": 1} for an F2 monohybrid cross. The
// ratio is scaled to the observed total before the test.
func TestRatio(character string, observed map[string]int, ratio map[string]float64) (RatioTest, error) {
	if len(ratio) < 2 {
		return RatioTest{}, fmt.Errorf("ratio needs at least two classes, got %d", len(ratio))
	}
	total := 0
	for _, n := range observed {
		total += n
	}
	if total == 0 {
		return RatioTest{}, fmt.Errorf("no observations for character %q", character)
	}
	var ratioSum float64
	for _, w := range ratio {
		if w <= 0 {
			return RatioTest{}, fmt.Errorf("ratio weights must be positive")
		}
		ratioSum += w
	}

	classes := make([]string, 0, len(ratio))
	for class := range ratio {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	expected := make(map[string]float64, len(ratio))
	var chi float64
	for _, class := range classes {
		exp := float64(total) * ratio[class] / ratioSum
		expected[class] = exp
		diff := float64(observed[class]) - exp
		chi += diff * diff / exp
	}

	df := len(ratio) - 1
	dist := distuv.ChiSquared{K: float64(df)}
	return RatioTest{
		Character: character,
		Observed:  observed,
		Expected:  expected,
		ChiSquare: chi,
		PValue:    1 - dist.CDF(chi),
		DF:        df,
	}, nil
}
