package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gardencore/pkg/genetics"
)

var traitsCmd = &cobra.Command{
	Use:   "traits",
	Short: "List the pea trait registry",
	RunE:  runTraits,
}

func runTraits(cmd *cobra.Command, _ []string) error {
	reg := genetics.NewPeaRegistry()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Loci:")
	for _, name := range reg.Traits() {
		def, ok := reg.Trait(name)
		if !ok {
			continue
		}
		alleles := make([]string, len(def.Alleles))
		for i, a := range def.Alleles {
			alleles[i] = fmt.Sprintf("%s=%s", a.Symbol, a.Expressed)
		}
		character := def.Character
		if character == "" {
			character = "(composite input)"
		}
		fmt.Fprintf(out, "  %-4s %-18s %s  dominance %s\n",
			def.Name, character, strings.Join(alleles, " "), strings.Join(def.Dominance, ">"))
	}

	fmt.Fprintln(out, "Characters:")
	for _, character := range reg.Characters() {
		if stage := genetics.PeaRevealStage(character); stage > 0 {
			fmt.Fprintf(out, "  %-18s visible from stage %d\n", character, stage)
		} else {
			fmt.Fprintf(out, "  %s\n", character)
		}
	}

	if linkages := reg.Linkages(); len(linkages) > 0 {
		fmt.Fprintln(out, "Linkage groups:")
		for _, l := range linkages {
			fmt.Fprintf(out, "  %s-%s at %.1f cM\n", l.TraitA, l.TraitB, l.RecombFraction*100)
		}
	}
	return nil
}
