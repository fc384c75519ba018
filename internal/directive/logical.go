// Package directive implements recognition and rewriting of OpenACC
// directive lines into portable GPU_* macro calls.
package directive

import "strings"

// Sentinel marks the start of an OpenACC directive line.
const Sentinel = "!$ACC"

// continuationMarker ends a physical line whose directive continues on the
// next physical line.
const continuationMarker = "&"

// LogicalLine is one fully joined directive, or one ordinary line, after
// continuation merging. For directives, Body starts with the canonical
// sentinel and contains no continuation markers; Indent holds the leading
// whitespace of the first physical line of the run. For ordinary lines,
// Body is the raw line and Indent is empty.
type LogicalLine struct {
	Indent      string
	Body        string
	IsDirective bool
}

// Text reassembles the line as it appears in the file, without terminator.
func (l LogicalLine) Text() string {
	return l.Indent + l.Body
}

// JoinLines merges continuation-marked directive runs in the given physical
// lines into logical lines, passing ordinary lines through unchanged.
// Grouping is per maximal run of the continuation marker: a directive line
// without a trailing marker flushes immediately, even when the next line is
// another directive.
func JoinLines(physical []string) []LogicalLine {
	out := make([]LogicalLine, 0, len(physical))

	var buffer strings.Builder
	indent := ""

	flush := func() {
		if buffer.Len() == 0 {
			return
		}
		out = append(out, LogicalLine{
			Indent:      indent,
			Body:        Sentinel + " " + strings.TrimSpace(buffer.String()),
			IsDirective: true,
		})
		buffer.Reset()
		indent = ""
	}

	for _, line := range physical {
		trimmed := strings.TrimSpace(line)
		if hasSentinel(trimmed) {
			if buffer.Len() == 0 {
				indent = leadingWhitespace(line)
			}
			content := strings.TrimSpace(trimmed[len(Sentinel):])
			content = strings.TrimRight(content, continuationMarker+" \t")
			if buffer.Len() > 0 {
				buffer.WriteByte(' ')
			}
			buffer.WriteString(content)

			if strings.HasSuffix(trimmed, continuationMarker) {
				continue
			}
			flush()
			continue
		}

		// Ordinary line: a pending buffer means the previous directive ended
		// with a dangling continuation marker; emit it rather than drop it.
		flush()
		out = append(out, LogicalLine{Body: line})
	}
	flush()
	return out
}

func hasSentinel(trimmed string) bool {
	return len(trimmed) >= len(Sentinel) && strings.EqualFold(trimmed[:len(Sentinel)], Sentinel)
}

func leadingWhitespace(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}
