// Package rewrite turns the physical lines of one file into their rewritten
// form: directive lines become GPU_* macro calls and changed files gain the
// supporting include line.
package rewrite

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"gpuport/internal/directive"
	"gpuport/internal/mapping"
)

// DefaultIncludeLine is the supporting include inserted into files where at
// least one directive was rewritten.
const DefaultIncludeLine = "include 'macros.h'"

// Result is the outcome of rewriting one file's lines.
type Result struct {
	// Lines is the full output line sequence, without terminators.
	Lines []string
	// Changed reports whether the output differs from the input.
	Changed bool
	// Rewritten counts directive lines replaced by macro calls.
	Rewritten int
	// Replaced counts token replacements applied from the mapping table.
	Replaced int
}

// Options configures an Engine.
type Options struct {
	// Rules is the ordered rule list; nil means directive.Rules().
	Rules []directive.Rule
	// IncludeLine overrides DefaultIncludeLine when non-empty.
	IncludeLine string
	// Mapping is an optional token replacement table applied to
	// non-directive lines.
	Mapping *mapping.Table
}

// Engine applies the directive rules to one file at a time. It owns no
// state beyond its configuration and is safe for concurrent use.
type Engine struct {
	rules       []directive.Rule
	includeLine string
	mapping     *mapping.Table
}

// Name identifies the operation for reports and the result cache.
func (e *Engine) Name() string { return "directives" }

// Fingerprint digests the engine configuration. Two engines with the same
// fingerprint produce the same output for the same input, so cached verdicts
// recorded under a different mapping table, include line or rule set are
// never reused.
func (e *Engine) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(e.includeLine))
	h.Write([]byte{0})
	for _, r := range e.rules {
		h.Write([]byte(r.Name()))
		h.Write([]byte{0})
	}
	h.Write([]byte(e.mapping.Fingerprint()))
	return hex.EncodeToString(h.Sum(nil))
}

// NewEngine builds an Engine from opts.
func NewEngine(opts Options) *Engine {
	rules := opts.Rules
	if rules == nil {
		rules = directive.Rules()
	}
	includeLine := opts.IncludeLine
	if includeLine == "" {
		includeLine = DefaultIncludeLine
	}
	return &Engine{
		rules:       rules,
		includeLine: includeLine,
		mapping:     opts.Mapping,
	}
}

// RewriteLines joins continuation runs, rewrites every recognized directive,
// applies the optional mapping table to ordinary lines, and injects the
// include line when a directive was rewritten and the include is not already
// present anywhere in the file.
func (e *Engine) RewriteLines(physical []string) Result {
	hasInclude := containsInclude(physical, e.includeLine)

	logical := directive.JoinLines(physical)
	out := make([]string, 0, len(logical))

	var result Result
	for _, line := range logical {
		if line.IsDirective {
			if text, ok := directive.RewriteBody(line.Body, e.rules); ok {
				out = append(out, line.Indent+text)
				result.Rewritten++
				continue
			}
			out = append(out, line.Text())
			continue
		}
		text := line.Text()
		if e.mapping != nil {
			replaced, n := e.mapping.Apply(text)
			result.Replaced += n
			text = replaced
		}
		out = append(out, text)
	}

	if result.Rewritten > 0 && !hasInclude {
		out = insertInclude(out, e.includeLine)
	}

	result.Lines = out
	result.Changed = result.Rewritten > 0 || result.Replaced > 0
	return result
}

func containsInclude(lines []string, includeLine string) bool {
	needle := strings.ToLower(includeLine)
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), needle) {
			return true
		}
	}
	return false
}

// insertInclude places the include line after the leading run of blank or
// comment-only lines, before the first substantive line.
func insertInclude(lines []string, includeLine string) []string {
	at := 0
	for at < len(lines) {
		trimmed := strings.TrimSpace(lines[at])
		if trimmed == "" || strings.HasPrefix(trimmed, "!") {
			at++
			continue
		}
		break
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, includeLine)
	out = append(out, lines[at:]...)
	return out
}
