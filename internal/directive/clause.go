package directive

import "strings"

// Clause is one named, parenthesized directive argument. A clause that does
// not occur in the directive has Present == false; Present with an empty
// Text means the clause was written with an empty argument list.
type Clause struct {
	Text    string
	Present bool
}

// extractClause locates keyword(...) in text and returns the balanced
// argument, the text following the matched closing parenthesis, and whether
// the clause was found. Matching is case-insensitive, requires a left word
// boundary, and tolerates whitespace between the keyword and the opening
// parenthesis. The argument may itself contain nested parentheses; the scan
// keeps a nesting depth so an inner ')' never terminates it early. An
// occurrence without a balanced closing parenthesis yields (absent, text).
func extractClause(text, keyword string) (Clause, string) {
	lower := strings.ToLower(text)
	kw := strings.ToLower(keyword)

	start := findKeyword(lower, kw)
	if start < 0 {
		return Clause{}, text
	}

	i := start + len(kw)
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i >= len(text) || text[i] != '(' {
		return Clause{}, text
	}

	depth := 1
	begin := i + 1
	for j := begin; j < len(text); j++ {
		switch text[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				arg := strings.TrimSpace(text[begin:j])
				rest := strings.TrimSpace(text[j+1:])
				return Clause{Text: arg, Present: true}, rest
			}
		}
	}
	// Unbalanced: treat the clause as absent and leave the text alone.
	return Clause{}, text
}

// findKeyword returns the first occurrence of kw in lower that starts on an
// identifier boundary, or -1.
func findKeyword(lower, kw string) int {
	from := 0
	for {
		idx := strings.Index(lower[from:], kw)
		if idx < 0 {
			return -1
		}
		idx += from
		if idx == 0 || !isIdentChar(lower[idx-1]) {
			return idx
		}
		from = idx + 1
	}
}

func isIdentChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// splitList splits a clause argument on top-level commas, trimming each
// item. Commas nested in parentheses (array sections, function calls) do
// not split.
func splitList(arg string) []string {
	if strings.TrimSpace(arg) == "" {
		return nil
	}
	items := make([]string, 0, 4)
	depth := 0
	start := 0
	for i := 0; i < len(arg); i++ {
		switch arg[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, strings.TrimSpace(arg[start:i]))
				start = i + 1
			}
		}
	}
	items = append(items, strings.TrimSpace(arg[start:]))
	return items
}

// joinArgs comma-joins the non-empty arguments with a single space.
func joinArgs(args ...string) string {
	kept := make([]string, 0, len(args))
	for _, a := range args {
		if a != "" {
			kept = append(kept, a)
		}
	}
	return strings.Join(kept, ", ")
}
