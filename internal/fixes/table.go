package fixes

import "strings"

// rule maps a known diagnostic signature to a canned remedy. A rule fires
// only when its signature appears in the joined error text and its guard is
// not already present in the source, so a remedy is never proposed twice.
type rule struct {
	signature string
	guard     string
	insert    string
	note      string
}

// ruleTable is the fixed, hand-authored signature table. Declaration order
// is the order edits are returned in; callers impose their own search policy.
var ruleTable = []rule{
	{
		signature: "unknown identifier 'Real.log'",
		guard:     "Mathlib.Analysis.SpecialFunctions.Log.Basic",
		insert:    "import Mathlib.Analysis.SpecialFunctions.Log.Basic\n",
		note:      "import log",
	},
	{
		signature: "unknown identifier 'Classical'",
		guard:     "open Classical",
		insert:    "open Classical\n",
		note:      "open Classical",
	},
	{
		signature: "unknown identifier 'Real.exp'",
		guard:     "Mathlib.Analysis.SpecialFunctions.Exp",
		insert:    "import Mathlib.Analysis.SpecialFunctions.Exp\n",
		note:      "import exp",
	},
	{
		signature: "unknown identifier 'Finset'",
		guard:     "Mathlib.Data.Finset.Basic",
		insert:    "import Mathlib.Data.Finset.Basic\n",
		note:      "import Finset",
	},
}

// Propose maps known diagnostic signatures to insert-only edits anchored at
// the start of the file. Pure function of its inputs: no I/O, no ranking.
func Propose(source string, errors []string) []Edit {
	errBlob := strings.Join(errors, " ")

	var edits []Edit
	for _, r := range ruleTable {
		if !strings.Contains(errBlob, r.signature) {
			continue
		}
		if strings.Contains(source, r.guard) {
			continue
		}
		edits = append(edits, Edit{Start: 0, End: 0, Replacement: r.insert, Note: r.note})
	}
	return edits
}
