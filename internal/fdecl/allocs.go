package fdecl

import (
	"regexp"
	"strings"
)

// tempArgsRe captures the variable name and full argument string of
// temp(REAL(KIND=K), NAME, (dims)) and temp(LOGICAL, NAME, (dims)) calls.
var tempArgsRe = regexp.MustCompile(`(?i)` +
	`temp\s*\(\s*(REAL|INTEGER)\s*\(KIND\s*=\s*(\w+)\)\s*,\s*(\w+)\s*,\s*\((.*?)\)\s*\)` +
	`|temp\s*\(\s*(LOGICAL)\s*,\s*(\w+)\s*,\s*\((.*?)\)\s*\)`)

var (
	kindIfRe     = regexp.MustCompile(`(?i)^IF\s*\(\s*KIND\s*\(\s*(\w+)\s*\)\s*==\s*(\d+)\s*\)\s*THEN`)
	kindElseifRe = regexp.MustCompile(`(?i)^ELSEIF\s*\(\s*KIND\s*\(\s*(\w+)\s*\)\s*==\s*(\d+)\s*\)\s*THEN`)
	allocCallRe  = regexp.MustCompile(`(?i)^\s*(alloc(8|4))\s*\(\s*.*?\)`)
)

// collectTempArgs extracts {variable name -> full temp argument string} from
// all temp(...) declarations in the file.
func collectTempArgs(lines []string) map[string]string {
	args := make(map[string]string)
	for _, line := range lines {
		m := tempArgsRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if m[1] != "" {
			typeBase := strings.ToUpper(m[1])
			kind := strings.ToUpper(m[2])
			args[m[3]] = "(" + typeBase + " (KIND=" + kind + "), " + m[3] + ", (" + m[4] + "))"
		} else {
			args[m[6]] = "(LOGICAL, " + m[6] + ", (" + m[7] + "))"
		}
	}
	return args
}

// RewriteAllocCalls replaces the argument list of alloc8(...)/alloc4(...)
// calls inside IF (KIND(var) == n) THEN blocks with the full argument string
// of the file's matching temp(...) declaration. Returns the updated lines
// and the number of rewritten calls.
func RewriteAllocCalls(lines []string) ([]string, int) {
	tempArgs := collectTempArgs(lines)
	if len(tempArgs) == 0 {
		return lines, 0
	}

	out := make([]string, 0, len(lines))
	changed := 0
	insideBlock := false
	currentVar := ""

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if m := kindIfRe.FindStringSubmatch(stripped); m != nil {
			currentVar = m[1]
			insideBlock = true
			out = append(out, line)
			continue
		}
		if m := kindElseifRe.FindStringSubmatch(stripped); m != nil {
			currentVar = m[1]
			insideBlock = true
			out = append(out, line)
			continue
		}

		if insideBlock && currentVar != "" {
			if args, ok := tempArgs[currentVar]; ok && allocCallRe.MatchString(line) {
				out = append(out, replaceParenSpan(line, args))
				changed++
				continue
			}
		}

		if strings.EqualFold(stripped, "ENDIF") {
			insideBlock = false
			currentVar = ""
		}
		out = append(out, line)
	}
	return out, changed
}

// replaceParenSpan substitutes everything from the first '(' through the
// last ')' of the line with replacement (which carries its own parentheses).
func replaceParenSpan(line, replacement string) string {
	open := strings.Index(line, "(")
	last := strings.LastIndex(line, ")")
	if open < 0 || last < open {
		return line
	}
	return line[:open] + replacement + line[last+1:]
}
