package spice

import "strings"

// Line is one logical line: physical lines joined across `+` continuations,
// with inline comments stripped. Comments carries the contiguous run of
// full-line `*` comments immediately preceding this line; a blank line or
// any code line breaks the run.
type Line struct {
	Text     string
	Number   int // physical line number where the logical line starts
	Comments []string
}

// Tokenize splits raw circuit text into logical lines. Continuation lines
// (`+` prefix) are space-joined onto the previous logical line before any
// classification, so multi-line .MODEL and .SUBCKT headers arrive whole.
func Tokenize(input string) []Line {
	var (
		out     []Line
		cur     *Line
		pending []string
	)

	flush := func() {
		if cur != nil {
			out = append(out, *cur)
			cur = nil
		}
	}

	for i, raw := range strings.Split(input, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		num := i + 1

		if line == "" {
			flush()
			pending = nil
			continue
		}

		// A full-line comment joins the pending run but leaves any open
		// logical line alone: real decks interleave comments between a
		// statement and its `+` continuations.
		if strings.HasPrefix(line, "*") {
			pending = append(pending, strings.TrimSpace(line[1:]))
			continue
		}

		// Inline comment on a code line applies to that line only.
		if idx := strings.Index(line, "*"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
			if line == "" {
				continue
			}
		}

		if strings.HasPrefix(line, "+") {
			if cur != nil {
				cur.Text += " " + strings.TrimSpace(line[1:])
			}
			continue
		}

		flush()
		cur = &Line{Text: line, Number: num, Comments: pending}
		pending = nil
	}
	flush()

	return out
}
