package toolchain

import "strings"

// HasPlaceholder reports whether the source contains a known-bad proof
// placeholder. A clean build with a placeholder present is not treated as
// done by the repair loop.
func HasPlaceholder(source string) bool {
	return strings.Contains(source, "sorry") || strings.Contains(source, "admit")
}

// LintPlaceholders flags obvious proof placeholders in the source
func LintPlaceholders(source string) []string {
	var issues []string
	if strings.Contains(source, "sorry") {
		issues = append(issues, "contains `sorry`")
	}
	if strings.Contains(source, "admit") {
		issues = append(issues, "contains `admit`")
	}
	return issues
}
