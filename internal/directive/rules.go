package directive

import (
	"regexp"
	"strings"
)

// Rule recognizes one directive family and rewrites a matching logical line
// body into its macro-call replacement.
type Rule interface {
	// Name identifies the family in scan output and reports.
	Name() string
	// Match reports whether the body is anchored by this family.
	Match(body string) bool
	// Rewrite returns the macro call for the body. It returns ok == false
	// when the anchor matched but clause decomposition failed (for example
	// unbalanced parentheses); the caller must leave the line unchanged.
	Rewrite(body string) (string, bool)
}

// Rules returns the directive families in their fixed registration order.
// When several anchors match one line, the first rule in this list wins.
func Rules() []Rule {
	return []Rule{
		dataPresentRule{},
		enterDataCreateRule{},
		updateHostRule{},
	}
}

// RewriteBody runs the body through the rules in registration order and
// returns the first successful rewrite.
func RewriteBody(body string, rules []Rule) (string, bool) {
	for _, rule := range rules {
		if !rule.Match(body) {
			continue
		}
		if text, ok := rule.Rewrite(body); ok {
			return text, true
		}
		// Anchor matched but decomposition failed: only one rule may claim
		// a line, so it passes through unchanged.
		return "", false
	}
	return "", false
}

// dataPresentRule rewrites `!$ACC DATA PRESENT(v,…)` with optional COPYIN,
// COPY and IF clauses.
type dataPresentRule struct{}

var dataPresentAnchor = regexp.MustCompile(`(?i)^!\$acc\s+data\s+present\s*\(`)
var dataPresentPrefix = regexp.MustCompile(`(?i)^!\$acc\s+data\s+`)

func (dataPresentRule) Name() string { return "data-present" }

func (dataPresentRule) Match(body string) bool {
	return dataPresentAnchor.MatchString(body)
}

func (dataPresentRule) Rewrite(body string) (string, bool) {
	loc := dataPresentPrefix.FindStringIndex(body)
	if loc == nil {
		return "", false
	}
	rest := body[loc[1]:]

	present, rest := extractClause(rest, "present")
	if !present.Present {
		return "", false
	}
	copyin, rest := extractClause(rest, "copyin")
	copyArg, rest := extractClause(rest, "copy")
	cond, _ := extractClause(rest, "if")

	vars := strings.Join(splitList(present.Text), ", ")

	switch {
	case copyin.Text != "" || copyArg.Text != "":
		return "GPU_DATA_PRESENT_COPY(" + joinArgs(cond.Text, copyin.Text, copyArg.Text, vars) + ")", true
	case cond.Text != "":
		return "GPU_DATA_PRESENT_IF(" + joinArgs(cond.Text, vars) + ")", true
	default:
		return "GPU_DATA_PRESENT_SIMPLE(" + vars + ")", true
	}
}

// enterDataCreateRule rewrites `!$ACC ENTER DATA CREATE(v,…)` with optional
// IF and ASYNC clauses.
type enterDataCreateRule struct{}

var enterDataCreateAnchor = regexp.MustCompile(`(?i)^!\$acc\s+enter\s+data\s+create\s*\(`)
var enterDataCreatePrefix = regexp.MustCompile(`(?i)^!\$acc\s+enter\s+data\s+`)

func (enterDataCreateRule) Name() string { return "enter-data-create" }

func (enterDataCreateRule) Match(body string) bool {
	return enterDataCreateAnchor.MatchString(body)
}

func (enterDataCreateRule) Rewrite(body string) (string, bool) {
	loc := enterDataCreatePrefix.FindStringIndex(body)
	if loc == nil {
		return "", false
	}
	rest := body[loc[1]:]

	create, rest := extractClause(rest, "create")
	if !create.Present {
		return "", false
	}
	cond, rest := extractClause(rest, "if")
	async, _ := extractClause(rest, "async")

	vars := strings.Join(splitList(create.Text), ", ")

	switch {
	case cond.Text != "" && async.Text != "":
		return "GPU_DATA_ALLOC_IF_ASYNC(" + joinArgs(cond.Text, async.Text, vars) + ")", true
	case cond.Text != "":
		return "GPU_DATA_ALLOC_IF(" + joinArgs(cond.Text, vars) + ")", true
	case async.Text != "":
		return "GPU_DATA_ALLOC_ASYNC(" + joinArgs(async.Text, vars) + ")", true
	default:
		return "GPU_DATA_ALLOC(" + vars + ")", true
	}
}

// updateHostRule rewrites `!$ACC UPDATE HOST(v,…)` and `!$ACC DATA HOST(v,…)`
// with optional WAIT, ASYNC and IF clauses. When IF combines with both WAIT
// and ASYNC, ASYNC takes precedence.
type updateHostRule struct{}

var updateHostAnchor = regexp.MustCompile(`(?i)^!\$acc\s+(update|data)\s+host\s*\(`)
var updateHostPrefix = regexp.MustCompile(`(?i)^!\$acc\s+(update|data)\s+`)

func (updateHostRule) Name() string { return "update-host" }

func (updateHostRule) Match(body string) bool {
	return updateHostAnchor.MatchString(body)
}

func (updateHostRule) Rewrite(body string) (string, bool) {
	m := updateHostPrefix.FindStringSubmatchIndex(body)
	if m == nil {
		return "", false
	}
	kind := strings.ToUpper(body[m[2]:m[3]])
	rest := body[m[1]:]

	host, rest := extractClause(rest, "host")
	if !host.Present {
		return "", false
	}
	wait, rest := extractClause(rest, "wait")
	async, rest := extractClause(rest, "async")
	cond, _ := extractClause(rest, "if")

	vars := strings.Join(splitList(host.Text), ", ")

	if kind == "DATA" {
		if cond.Text != "" {
			return "GPU_DATA_HOST_IF(" + joinArgs(cond.Text, vars) + ")", true
		}
		return "GPU_DATA_HOST_SIMPLE(" + vars + ")", true
	}

	switch {
	case cond.Text != "" && async.Text != "":
		return "GPU_DATA_UPDATE_HOST_ASYNC_IF(" + joinArgs(cond.Text, async.Text, vars) + ")", true
	case cond.Text != "" && wait.Text != "":
		return "GPU_DATA_UPDATE_HOST_WAIT_IF(" + joinArgs(cond.Text, wait.Text, vars) + ")", true
	case cond.Text != "":
		return "GPU_DATA_UPDATE_HOST_IF(" + joinArgs(cond.Text, vars) + ")", true
	default:
		return "GPU_DATA_UPDATE_HOST(" + vars + ")", true
	}
}
