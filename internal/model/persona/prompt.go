package persona

import "strings"

// composePrompt assembles a system prompt from an opening line, a trait list
// and a closing instruction.
func composePrompt(opening string, traits []string, closing string) string {
	var builder strings.Builder
	builder.WriteString(strings.TrimSpace(opening))
	if len(traits) > 0 {
		builder.WriteString(" Your personality traits:")
		for _, trait := range traits {
			trait = strings.TrimSpace(trait)
			if trait == "" {
				continue
			}
			builder.WriteString("\n- ")
			builder.WriteString(trait)
		}
		builder.WriteString("\n")
	}
	if closing = strings.TrimSpace(closing); closing != "" {
		builder.WriteString("\n")
		builder.WriteString(closing)
	}
	return builder.String()
}

// NormalizePrompt turns an indented multi-line prompt into one clean block:
// every line is trimmed, runs of blank lines collapse to one, and leading or
// trailing blank lines are dropped.
func NormalizePrompt(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(out) > 0 && !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// Prompt returns the persona's system prompt as a single well-formed block.
func (p Persona) Prompt() string {
	return NormalizePrompt(p.SystemPrompt)
}
