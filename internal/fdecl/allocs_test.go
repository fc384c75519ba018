package fdecl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRewriteAllocCallsInsideKindBlock(t *testing.T) {
	in := []string{
		"temp(REAL(KIND=JPRB), ZTMP, (KLON, KLEV))",
		"IF (KIND(ZTMP) == 8) THEN",
		"  alloc8(ZTMP)",
		"ELSEIF (KIND(ZTMP) == 4) THEN",
		"  alloc4(ZTMP)",
		"ENDIF",
	}
	got, n := RewriteAllocCalls(in)
	if n != 2 {
		t.Fatalf("expected 2 rewrites, got %d", n)
	}
	want := []string{
		"temp(REAL(KIND=JPRB), ZTMP, (KLON, KLEV))",
		"IF (KIND(ZTMP) == 8) THEN",
		"  alloc8(REAL (KIND=JPRB), ZTMP, (KLON, KLEV))",
		"ELSEIF (KIND(ZTMP) == 4) THEN",
		"  alloc4(REAL (KIND=JPRB), ZTMP, (KLON, KLEV))",
		"ENDIF",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestRewriteAllocCallsIgnoresCallsOutsideBlocks(t *testing.T) {
	in := []string{
		"temp(REAL(KIND=JPRB), ZTMP, (KLON))",
		"alloc8(ZTMP)",
	}
	got, n := RewriteAllocCalls(in)
	if n != 0 {
		t.Fatalf("expected no rewrites outside KIND blocks, got %d", n)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestRewriteAllocCallsIgnoresUnknownVariables(t *testing.T) {
	in := []string{
		"temp(REAL(KIND=JPRB), ZTMP, (KLON))",
		"IF (KIND(ZOTHER) == 8) THEN",
		"  alloc8(ZOTHER)",
		"ENDIF",
	}
	got, n := RewriteAllocCalls(in)
	if n != 0 {
		t.Fatalf("expected no rewrites for unknown variables, got %d", n)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestRewriteAllocCallsNoTempDeclsIsNoop(t *testing.T) {
	in := []string{"IF (KIND(ZX) == 8) THEN", "  alloc8(ZX)", "ENDIF"}
	got, n := RewriteAllocCalls(in)
	if n != 0 {
		t.Fatalf("expected no rewrites, got %d", n)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestCollectTempArgsLogical(t *testing.T) {
	args := collectTempArgs([]string{"temp(LOGICAL, LLX, (KLON, KLEV))"})
	if args["LLX"] != "(LOGICAL, LLX, (KLON, KLEV))" {
		t.Fatalf("unexpected args: %q", args["LLX"])
	}
}
