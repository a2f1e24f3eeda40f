package oracle

import (
	"fmt"
	"strings"
)

const maxErrorsInPrompt = 20

const (
	repairSystemPrompt   = "You are a precise Lean 4 refactoring and repair agent."
	extendSystemPrompt   = "You extend Lean 4 files with thematically consistent new results."
	documentSystemPrompt = "You add documentation and comments to Lean 4 files without changing their semantics."
)

func buildRepairPrompt(fileText string, errs []string) string {
	if len(errs) > maxErrorsInPrompt {
		errs = errs[:maxErrorsInPrompt]
	}
	errBlob := strings.TrimSpace(strings.Join(errs, "\n\n"))
	if errBlob == "" {
		errBlob = "(no diagnostics available)"
	}

	return fmt.Sprintf(`You are a Lean 4 coding assistant. The file fails to compile with the following errors:

%s

Return a complete corrected version of the file that compiles with `+"`lake build`"+`.
Respond with LEAN CODE ONLY (no explanations). If imports are needed, add them.

`+"```lean\n%s\n```", errBlob, fileText)
}

func buildExtendPrompt(fileText, theme string) string {
	return fmt.Sprintf(`You are a Lean 4 coding assistant. The current file compiles and comprises results in the following theme: %q.
Add a main new result or definition that is not currently in the file. You can add any number of lemmas or definitions,
as long as they are not already in the file and are necessary to complete the proof of the new result.
Take the comments in the file into consideration and choose the new result in line with them, continuing the logical
order the file follows. Ensure the result still compiles. Return LEAN CODE ONLY.

`+"```lean\n%s\n```", theme, fileText)
}

func buildDocumentPrompt(fileText string) string {
	return fmt.Sprintf(`You are a Lean 4 documentation assistant.
Enrich the following Lean file by adding documentation and comments WITHOUT changing its behavior.
Requirements:
- Add a top-level module docstring using `+"`/-! ... -/`"+` summarizing the theme and listing main definitions/lemmas/theorems.
- Immediately before each `+"`def`, `lemma`, or `theorem`"+`, add a brief `+"`--`"+` comment describing what it states and its role.
- For nontrivial proofs, add a few inline `+"`--`"+` comments inside `+"`by`"+` blocks explaining key steps.
- Do NOT rename identifiers. Do NOT reorder imports unless necessary. Do NOT introduce non-compiling code.
- Return LEAN CODE ONLY. No explanations outside comments.

Here is the file:

`+"```lean\n%s\n```", fileText)
}
