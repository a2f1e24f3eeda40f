package fixes

import (
	"strings"
	"testing"
)

// TestProposeImportFix tests that a missing-import signature yields exactly
// one insert-at-start edit
func TestProposeImportFix(t *testing.T) {
	source := "theorem foo : Real.log 1 = 0 := by simp\n"
	errs := []string{"unknown identifier 'Real.log'"}

	edits := Propose(source, errs)
	if len(edits) != 1 {
		t.Fatalf("Expected 1 edit, got %d", len(edits))
	}

	ed := edits[0]
	if ed.Start != 0 || ed.End != 0 {
		t.Errorf("Expected insert at offset 0, got [%d,%d)", ed.Start, ed.End)
	}
	if ed.Replacement != "import Mathlib.Analysis.SpecialFunctions.Log.Basic\n" {
		t.Errorf("Unexpected replacement: %q", ed.Replacement)
	}

	fixed := Apply(source, ed)
	if !strings.HasPrefix(fixed, "import Mathlib.Analysis.SpecialFunctions.Log.Basic\n") {
		t.Errorf("Import line not inserted at file start: %q", fixed)
	}
	if !strings.HasSuffix(fixed, source) {
		t.Errorf("Original source not preserved after insert: %q", fixed)
	}
}

// TestProposeIdempotence tests that a remedy already present in the source
// is never proposed again
func TestProposeIdempotence(t *testing.T) {
	source := "open Classical\ntheorem foo : True := trivial\n"
	errs := []string{"unknown identifier 'Classical'"}

	edits := Propose(source, errs)
	if len(edits) != 0 {
		t.Errorf("Expected 0 edits for already-applied remedy, got %d", len(edits))
	}
}

// TestProposeTwiceYieldsNothingSecondTime tests idempotence across a full
// apply cycle
func TestProposeTwiceYieldsNothingSecondTime(t *testing.T) {
	source := "theorem foo : Real.log 1 = 0 := by simp\n"
	errs := []string{"unknown identifier 'Real.log'"}

	edits := Propose(source, errs)
	if len(edits) != 1 {
		t.Fatalf("Expected 1 edit on first pass, got %d", len(edits))
	}

	fixed := Apply(source, edits[0])
	edits = Propose(fixed, errs)
	if len(edits) != 0 {
		t.Errorf("Expected 0 edits on second pass, got %d", len(edits))
	}
}

// TestProposeUnknownSignature tests that unrecognized errors yield no edits
func TestProposeUnknownSignature(t *testing.T) {
	edits := Propose("theorem foo : True := trivial\n", []string{"type mismatch at application"})
	if len(edits) != 0 {
		t.Errorf("Expected 0 edits for unknown signature, got %d", len(edits))
	}
}

// TestProposeDeclarationOrder tests that edits come back in table order
func TestProposeDeclarationOrder(t *testing.T) {
	source := "theorem foo : True := trivial\n"
	errs := []string{
		"unknown identifier 'Classical'",
		"unknown identifier 'Real.log'",
	}

	edits := Propose(source, errs)
	if len(edits) != 2 {
		t.Fatalf("Expected 2 edits, got %d", len(edits))
	}
	if edits[0].Note != "import log" || edits[1].Note != "open Classical" {
		t.Errorf("Edits out of declaration order: %q, %q", edits[0].Note, edits[1].Note)
	}
}

// TestApplyRange tests replacement over a non-empty range
func TestApplyRange(t *testing.T) {
	got := Apply("hello world", Edit{Start: 6, End: 11, Replacement: "lean"})
	if got != "hello lean" {
		t.Errorf("Expected %q, got %q", "hello lean", got)
	}
}
