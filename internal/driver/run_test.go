package driver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gpuport/internal/mapping"
	"gpuport/internal/pipeline"
	"gpuport/internal/rewrite"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestRunRewritesDirectoryTree(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.f90"), "!$ACC DATA PRESENT(ZA)\n")
	writeFile(t, filepath.Join(tmp, "sub", "b.F90"), "REAL :: ZB\n")
	writeFile(t, filepath.Join(tmp, "sub", "c.txt"), "!$ACC DATA PRESENT(ZC)\n")

	res, err := Run(context.Background(), tmp, &Options{
		Transform:  rewrite.NewEngine(rewrite.Options{}),
		Extensions: []string{".f90"},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(res.Reports) != 2 {
		t.Fatalf("expected 2 reports (c.txt filtered out), got %d", len(res.Reports))
	}
	if res.Changed() != 1 {
		t.Fatalf("expected 1 changed file, got %d", res.Changed())
	}

	got := readFile(t, filepath.Join(tmp, "a.f90"))
	want := "include 'macros.h'\nGPU_DATA_PRESENT_SIMPLE(ZA)\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	// The untouched file must stay byte-identical.
	if got := readFile(t, filepath.Join(tmp, "sub", "b.F90")); got != "REAL :: ZB\n" {
		t.Fatalf("unchanged file was modified: %q", got)
	}
	// The filtered extension must not be rewritten.
	if got := readFile(t, filepath.Join(tmp, "sub", "c.txt")); got != "!$ACC DATA PRESENT(ZC)\n" {
		t.Fatalf("filtered file was modified: %q", got)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "a.f90")
	original := "!$ACC UPDATE HOST(ZA)\n"
	writeFile(t, path, original)

	res, err := Run(context.Background(), tmp, &Options{
		Transform:  rewrite.NewEngine(rewrite.Options{}),
		Extensions: []string{".f90"},
		DryRun:     true,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Changed() != 1 {
		t.Fatalf("dry-run must still report the change, got %d", res.Changed())
	}
	if got := readFile(t, path); got != original {
		t.Fatalf("dry-run modified the file: %q", got)
	}
}

func TestRunUnchangedFileSkipsWrite(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "a.f90")
	writeFile(t, path, "REAL :: ZA\n")

	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}

	res, err := Run(context.Background(), path, &Options{
		Transform: rewrite.NewEngine(rewrite.Options{}),
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Changed() != 0 {
		t.Fatalf("expected no changes, got %d", res.Changed())
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatalf("unchanged file was rewritten on disk")
	}
}

func TestRunContinuesAfterFileError(t *testing.T) {
	tmp := t.TempDir()
	good := filepath.Join(tmp, "b.f90")
	writeFile(t, good, "!$acc enter data create(ZB)\n")

	missing := filepath.Join(tmp, "a.f90")
	res, err := RunFiles(context.Background(), []string{missing, good}, &Options{
		Transform: rewrite.NewEngine(rewrite.Options{}),
	})
	if err != nil {
		t.Fatalf("a single-file failure must not abort the batch: %v", err)
	}
	if res.Failed() != 1 {
		t.Fatalf("expected 1 failed report, got %d", res.Failed())
	}
	if res.Reports[0].Err == nil {
		t.Fatalf("missing file must carry its error")
	}
	if !res.Reports[1].Changed {
		t.Fatalf("the good file must still be processed")
	}
}

func TestRunCacheSkipsUnchangedContent(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "a.f90")
	writeFile(t, path, "REAL :: ZA\n")

	cache, err := OpenDiskCacheAt(filepath.Join(tmp, "cache"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	opts := &Options{
		Transform: rewrite.NewEngine(rewrite.Options{}),
		Cache:     cache,
	}

	first, err := Run(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Skipped() != 0 {
		t.Fatalf("first run must not be a cache hit")
	}

	second, err := Run(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Skipped() != 1 {
		t.Fatalf("second run must skip via the cache, got %d skips", second.Skipped())
	}
}

func TestRunCacheDoesNotSkipChangedVerdicts(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "a.f90")
	writeFile(t, path, "!$ACC DATA PRESENT(ZA)\n")

	cache, err := OpenDiskCacheAt(filepath.Join(tmp, "cache"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	opts := &Options{
		Transform: rewrite.NewEngine(rewrite.Options{}),
		Cache:     cache,
		DryRun:    true,
	}

	if _, err := Run(context.Background(), path, opts); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := Run(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Skipped() != 0 {
		t.Fatalf("a changed verdict must never be skipped")
	}
	if second.Changed() != 1 {
		t.Fatalf("expected the change to be recomputed")
	}
}

func TestRunCacheDistinguishesEngineConfigs(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "a.f90")
	writeFile(t, path, "REAL(KIND=JPRB) :: ZA\n")

	cache, err := OpenDiskCacheAt(filepath.Join(tmp, "cache"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	// Plain run: no directives, no mapping, cached as unchanged.
	first, err := Run(context.Background(), path, &Options{
		Transform: rewrite.NewEngine(rewrite.Options{}),
		Cache:     cache,
	})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Changed() != 0 {
		t.Fatalf("expected no changes on the plain run, got %d", first.Changed())
	}

	table, err := mapping.Parse([]byte("replacements:\n  JPRB: REAL64\n"))
	if err != nil {
		t.Fatalf("mapping.Parse failed: %v", err)
	}
	second, err := Run(context.Background(), path, &Options{
		Transform: rewrite.NewEngine(rewrite.Options{Mapping: table}),
		Cache:     cache,
	})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Skipped() != 0 {
		t.Fatalf("a verdict from another engine configuration was reused")
	}
	if second.Changed() != 1 {
		t.Fatalf("expected the mapping run to change the file, got %d", second.Changed())
	}
	if got := readFile(t, path); got != "REAL(KIND=REAL64) :: ZA\n" {
		t.Fatalf("mapping not applied: %q", got)
	}
}

type recordSink struct {
	mu     sync.Mutex
	events []pipeline.Event
}

func (s *recordSink) OnEvent(ev pipeline.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordSink) last(t *testing.T) pipeline.Event {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		t.Fatalf("no events recorded")
	}
	return s.events[len(s.events)-1]
}

func TestRunFinalEventReportsCompletedStage(t *testing.T) {
	tmp := t.TempDir()
	unchanged := filepath.Join(tmp, "plain.f90")
	writeFile(t, unchanged, "REAL :: ZA\n")
	changed := filepath.Join(tmp, "acc.f90")
	writeFile(t, changed, "!$ACC DATA PRESENT(ZA)\n")

	sink := &recordSink{}
	if _, err := Run(context.Background(), unchanged, &Options{
		Transform: rewrite.NewEngine(rewrite.Options{}),
		Progress:  sink,
	}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if ev := sink.last(t); ev.Stage != pipeline.StageRewrite || ev.Status != pipeline.StatusDone {
		t.Fatalf("unchanged file must finish at the rewrite stage, got %+v", ev)
	}

	sink = &recordSink{}
	if _, err := Run(context.Background(), changed, &Options{
		Transform: rewrite.NewEngine(rewrite.Options{}),
		Progress:  sink,
		DryRun:    true,
	}); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if ev := sink.last(t); ev.Stage != pipeline.StageRewrite || ev.Status != pipeline.StatusDone {
		t.Fatalf("dry-run file must finish at the rewrite stage, got %+v", ev)
	}

	sink = &recordSink{}
	if _, err := Run(context.Background(), changed, &Options{
		Transform: rewrite.NewEngine(rewrite.Options{}),
		Progress:  sink,
	}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if ev := sink.last(t); ev.Stage != pipeline.StageWrite || ev.Status != pipeline.StatusDone {
		t.Fatalf("written file must finish at the write stage, got %+v", ev)
	}
}

func TestListFilesSortedAndFiltered(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "z.f90"), "")
	writeFile(t, filepath.Join(tmp, "a", "y.F90"), "")
	writeFile(t, filepath.Join(tmp, "a", "x.txt"), "")

	files, err := ListFiles(tmp, []string{".f90"})
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	if files[0] != filepath.Join(tmp, "a", "y.F90") || files[1] != filepath.Join(tmp, "z.f90") {
		t.Fatalf("unexpected order: %v", files)
	}
}
