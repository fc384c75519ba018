// Package mapping loads YAML token replacement tables and applies them to
// source lines. Tables handle the simple token-to-token renames that do not
// need directive parsing.
package mapping

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// Table is a compiled token replacement table.
type Table struct {
	rules []rule
}

type rule struct {
	re *regexp.Regexp
	to string
}

type tableFile struct {
	Replacements map[string]string `yaml:"replacements"`
}

var tokenRe = regexp.MustCompile(`^\w+$`)

// Load reads and compiles a mapping table from a YAML file.
func Load(path string) (*Table, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Parse compiles a mapping table from YAML bytes. Keys must be plain tokens
// (word characters only); replacement values may be any string.
func Parse(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML mapping: %w", err)
	}

	// Longest token first so that overlapping names resolve predictably.
	keys := make([]string, 0, len(file.Replacements))
	for from := range file.Replacements {
		if !tokenRe.MatchString(from) {
			return nil, fmt.Errorf("mapping key %q is not a plain token", from)
		}
		keys = append(keys, from)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	table := &Table{rules: make([]rule, 0, len(keys))}
	for _, from := range keys {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(from) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("mapping key %q: %w", from, err)
		}
		table.rules = append(table.rules, rule{re: re, to: file.Replacements[from]})
	}
	return table, nil
}

// Len returns the number of replacement rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Fingerprint returns a stable digest of the compiled rules. A nil or empty
// table digests to the empty string.
func (t *Table) Fingerprint() string {
	if t == nil || len(t.rules) == 0 {
		return ""
	}
	h := sha256.New()
	for _, r := range t.rules {
		h.Write([]byte(r.re.String()))
		h.Write([]byte{0})
		h.Write([]byte(r.to))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Apply replaces every mapped token in line and returns the result together
// with the number of replacements made.
func (t *Table) Apply(line string) (string, int) {
	if t == nil {
		return line, 0
	}
	total := 0
	for _, r := range t.rules {
		n := len(r.re.FindAllStringIndex(line, -1))
		if n == 0 {
			continue
		}
		line = r.re.ReplaceAllString(line, r.to)
		total += n
	}
	return line, total
}
