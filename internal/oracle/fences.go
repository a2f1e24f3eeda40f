package oracle

import "strings"

// StripFences removes markdown code fences from a model response. The
// prompts request Lean code only, but some models still wrap their answer in
// triple backticks.
func StripFences(content string) string {
	if !strings.Contains(content, "```") {
		return strings.TrimSpace(content)
	}

	lines := strings.Split(content, "\n")
	var cleaned []string
	inBlock := false

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inBlock = !inBlock
			continue
		}
		if inBlock {
			cleaned = append(cleaned, line)
		}
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
