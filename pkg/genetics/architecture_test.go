package genetics_test

import (
	"testing"

	"gardencore/testutil"
)

// The genetics engine is a standalone library: no internal wiring and no
// knowledge of the garden's plants, plots, or seasons.
func TestGeneticsImportsNothingAboveIt(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"genetics must not import internal packages")
	testutil.AssertNoDirectImports(t, ".", testutil.DomainImportForbidden,
		"genetics must not import the garden domain")
}
