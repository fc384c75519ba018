package fdecl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRewriteTempDeclsWithKind(t *testing.T) {
	in := []string{"  temp(REAL(KIND=JPRB), ZTMP, (KLON, KLEV))"}
	got, n := RewriteTempDecls(in)
	if n != 1 {
		t.Fatalf("expected 1 rewrite, got %d", n)
	}
	want := []string{"  REAL (KIND=JPRB), pointer :: ZTMP(:,:)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestRewriteTempDeclsWithoutKind(t *testing.T) {
	in := []string{"temp(INTEGER, IDX, (KLON))"}
	got, n := RewriteTempDecls(in)
	if n != 1 {
		t.Fatalf("expected 1 rewrite, got %d", n)
	}
	if got[0] != "INTEGER, pointer :: IDX(:)" {
		t.Fatalf("unexpected line: %q", got[0])
	}
}

func TestRewriteTempDeclsLogical(t *testing.T) {
	in := []string{"temp(LOGICAL, LLCUM, (KLON, 0:KLEV, 3))"}
	got, n := RewriteTempDecls(in)
	if n != 1 {
		t.Fatalf("expected 1 rewrite, got %d", n)
	}
	if got[0] != "LOGICAL, pointer :: LLCUM(:,:,:)" {
		t.Fatalf("unexpected line: %q", got[0])
	}
}

func TestRewriteTempDeclsLeavesOtherLines(t *testing.T) {
	in := []string{
		"SUBROUTINE SOLVE",
		"REAL :: ZA",
		"END SUBROUTINE",
	}
	got, n := RewriteTempDecls(in)
	if n != 0 {
		t.Fatalf("expected no rewrites, got %d", n)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}
