package fixes

// Edit is a textual replacement over a half-open byte range [Start, End)
// with a human-readable rationale note. Edits are ephemeral: applied and
// discarded (or discarded unapplied) within one iteration.
type Edit struct {
	Start       int
	End         int
	Replacement string
	Note        string
}

// Apply returns the text with the edit applied
func Apply(text string, edit Edit) string {
	return text[:edit.Start] + edit.Replacement + text[edit.End:]
}
