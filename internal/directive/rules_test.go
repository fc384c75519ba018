package directive

import "testing"

func rewrite(t *testing.T, body string) string {
	t.Helper()
	text, ok := RewriteBody(body, Rules())
	if !ok {
		t.Fatalf("expected a rewrite for %q", body)
	}
	return text
}

func TestDataPresentVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "simple",
			body: "!$ACC DATA PRESENT(X,Y)",
			want: "GPU_DATA_PRESENT_SIMPLE(X, Y)",
		},
		{
			name: "if only",
			body: "!$ACC DATA PRESENT(X) IF(LFLAG)",
			want: "GPU_DATA_PRESENT_IF(LFLAG, X)",
		},
		{
			name: "copyin",
			body: "!$ACC DATA PRESENT(X) COPYIN(Z)",
			want: "GPU_DATA_PRESENT_COPY(Z, X)",
		},
		{
			name: "copyin copy and if",
			body: "!$ACC DATA PRESENT(X, Y) COPYIN(Z) COPY(W) IF(LFLAG)",
			want: "GPU_DATA_PRESENT_COPY(LFLAG, Z, W, X, Y)",
		},
		{
			name: "nested parens in condition",
			body: "!$ACC DATA PRESENT(X) IF((A.AND.(B.OR.C)))",
			want: "GPU_DATA_PRESENT_IF((A.AND.(B.OR.C)), X)",
		},
		{
			name: "lowercase with interior whitespace",
			body: "!$acc  data   present ( ZA , ZB )",
			want: "GPU_DATA_PRESENT_SIMPLE(ZA, ZB)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite(t, tt.body); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEnterDataCreateVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "plain",
			body: "!$acc enter data create(ZRHS, ZLHS)",
			want: "GPU_DATA_ALLOC(ZRHS, ZLHS)",
		},
		{
			name: "if",
			body: "!$acc enter data create(ZRHS) if(LGPU)",
			want: "GPU_DATA_ALLOC_IF(LGPU, ZRHS)",
		},
		{
			name: "async",
			body: "!$acc enter data create(ZRHS) async(1)",
			want: "GPU_DATA_ALLOC_ASYNC(1, ZRHS)",
		},
		{
			name: "if and async",
			body: "!$acc enter data create(ZRHS) if(LGPU) async(IQ)",
			want: "GPU_DATA_ALLOC_IF_ASYNC(LGPU, IQ, ZRHS)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite(t, tt.body); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUpdateHostVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "data host simple",
			body: "!$ACC DATA HOST(ZA, ZB)",
			want: "GPU_DATA_HOST_SIMPLE(ZA, ZB)",
		},
		{
			name: "data host if",
			body: "!$ACC DATA HOST(ZA) IF(LFLAG)",
			want: "GPU_DATA_HOST_IF(LFLAG, ZA)",
		},
		{
			name: "update host plain",
			body: "!$ACC UPDATE HOST(ZA)",
			want: "GPU_DATA_UPDATE_HOST(ZA)",
		},
		{
			name: "update host if",
			body: "!$ACC UPDATE HOST(ZA) IF(LFLAG)",
			want: "GPU_DATA_UPDATE_HOST_IF(LFLAG, ZA)",
		},
		{
			name: "update host wait if",
			body: "!$ACC UPDATE HOST(ZA) WAIT(1) IF(LFLAG)",
			want: "GPU_DATA_UPDATE_HOST_WAIT_IF(LFLAG, 1, ZA)",
		},
		{
			name: "update host async if",
			body: "!$ACC UPDATE HOST(ZA) ASYNC(2) IF(LFLAG)",
			want: "GPU_DATA_UPDATE_HOST_ASYNC_IF(LFLAG, 2, ZA)",
		},
		{
			// ASYNC wins over WAIT when all three clauses combine.
			name: "update host wait async if",
			body: "!$ACC UPDATE HOST(ZA) WAIT(1) ASYNC(2) IF(LFLAG)",
			want: "GPU_DATA_UPDATE_HOST_ASYNC_IF(LFLAG, 2, ZA)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite(t, tt.body); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRewriteBodyMissesNonDirectives(t *testing.T) {
	for _, body := range []string{
		"CALL FOO(ZA)",
		"! plain comment",
		"!$ACC PARALLEL LOOP", // unhandled family
		"GPU_DATA_PRESENT_SIMPLE(ZA)",
	} {
		if text, ok := RewriteBody(body, Rules()); ok {
			t.Fatalf("expected no rewrite for %q, got %q", body, text)
		}
	}
}

func TestMalformedClauseIsNoMatch(t *testing.T) {
	// Anchor matches but the mandatory clause never closes.
	body := "!$ACC DATA PRESENT(ZA, ZB"
	if text, ok := RewriteBody(body, Rules()); ok {
		t.Fatalf("expected pass-through for unbalanced input, got %q", text)
	}
}

func TestRewrittenLinesNeverRematch(t *testing.T) {
	inputs := []string{
		"!$ACC DATA PRESENT(X, Y) COPYIN(Z) IF(LF)",
		"!$acc enter data create(ZR) if(LG) async(1)",
		"!$ACC UPDATE HOST(ZA) WAIT(1) IF(LF)",
	}
	rules := Rules()
	for _, body := range inputs {
		first, ok := RewriteBody(body, rules)
		if !ok {
			t.Fatalf("expected rewrite for %q", body)
		}
		if again, ok := RewriteBody(first, rules); ok {
			t.Fatalf("rewrite is not idempotent: %q became %q", first, again)
		}
	}
}

type stubRule struct {
	name string
	out  string
}

func (r stubRule) Name() string                  { return r.name }
func (r stubRule) Match(string) bool             { return true }
func (r stubRule) Rewrite(string) (string, bool) { return r.out, true }

func TestRegistrationOrderBreaksTies(t *testing.T) {
	// Two rules claiming the same line: the first registered one wins.
	rules := []Rule{stubRule{"first", "FIRST()"}, stubRule{"second", "SECOND()"}}
	got, ok := RewriteBody("!$ACC ANYTHING", rules)
	if !ok || got != "FIRST()" {
		t.Fatalf("first-registered rule must win, got %q (ok=%v)", got, ok)
	}
}

func TestDefaultRuleOrderIsStable(t *testing.T) {
	want := []string{"data-present", "enter-data-create", "update-host"}
	rules := Rules()
	if len(rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(rules))
	}
	for i, rule := range rules {
		if rule.Name() != want[i] {
			t.Fatalf("rule %d: expected %q, got %q", i, want[i], rule.Name())
		}
	}
}
