// Package fdecl rewrites temp(...) helper declarations and the alloc8/alloc4
// calls that repeat their argument lists.
package fdecl

import (
	"regexp"
	"strings"
)

// tempDeclRe matches temp(TYPE(KIND=K), NAME, (dims)), temp(TYPE, NAME,
// (dims)) and temp(LOGICAL, NAME, (dims)) declarations.
var tempDeclRe = regexp.MustCompile(`(?i)` +
	`temp\s*\(\s*(REAL|INTEGER)\s*\(\s*KIND\s*=\s*(\w+)\s*\)\s*,\s*(\w+)\s*,\s*\((.*?)\)\s*\)` +
	`|temp\s*\(\s*(REAL|INTEGER)\s*,\s*(\w+)\s*,\s*\((.*?)\)\s*\)` +
	`|temp\s*\(\s*(LOGICAL)\s*,\s*(\w+)\s*,\s*\((.*?)\)\s*\)`)

// RewriteTempDecls replaces every temp(...) declaration line with the
// equivalent pointer declaration, e.g.
// temp(REAL(KIND=JPRB), ZX, (KLON,KLEV)) -> REAL (KIND=JPRB), pointer :: ZX(:,:).
// The leading whitespace of the line is preserved. Returns the updated lines
// and the number of rewritten declarations.
func RewriteTempDecls(lines []string) ([]string, int) {
	out := make([]string, len(lines))
	changed := 0
	for i, line := range lines {
		m := tempDeclRe.FindStringSubmatch(line)
		if m == nil {
			out[i] = line
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]

		var decl string
		switch {
		case m[1] != "": // REAL/INTEGER with KIND
			decl = strings.ToUpper(m[1]) + " (KIND=" + strings.ToUpper(m[2]) + "), pointer :: " + m[3] + dimsPattern(m[4])
		case m[5] != "": // REAL/INTEGER without KIND
			decl = strings.ToUpper(m[5]) + ", pointer :: " + m[6] + dimsPattern(m[7])
		default: // LOGICAL
			decl = strings.ToUpper(m[8]) + ", pointer :: " + m[9] + dimsPattern(m[10])
		}
		out[i] = indent + decl
		changed++
	}
	return out, changed
}

// dimsPattern maps a dimension list to a deferred-shape spec with one ':'
// per dimension: "KLON, 0:KLEV" -> "(:,:)".
func dimsPattern(dims string) string {
	count := len(strings.Split(dims, ","))
	return "(" + strings.TrimSuffix(strings.Repeat(":,", count), ",") + ")"
}
