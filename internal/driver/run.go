package driver

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gpuport/internal/pipeline"
	"gpuport/internal/rewrite"
	"gpuport/internal/source"
)

// Transform rewrites the lines of one file. Implementations must be safe
// for concurrent use; the driver calls them from its worker pool.
type Transform interface {
	// Name identifies the operation, also used as the cache namespace.
	Name() string
	// Fingerprint digests the transform configuration. It is folded into
	// the cache key so a verdict recorded under one configuration is never
	// trusted under another. Stateless transforms may return "".
	Fingerprint() string
	// RewriteLines produces the output lines for one file.
	RewriteLines(lines []string) rewrite.Result
}

// Options configures one driver run.
type Options struct {
	// Transform is the per-file rewrite operation. Required.
	Transform Transform
	// Extensions filters directory walks; ignored for single-file targets.
	Extensions []string
	// Jobs caps worker-pool parallelism; <= 0 means GOMAXPROCS.
	Jobs int
	// DryRun computes verdicts without writing anything back.
	DryRun bool
	// Cache, when non-nil, skips files whose content hash already has an
	// "unchanged" verdict.
	Cache *DiskCache
	// Progress receives per-file events; nil means no reporting.
	Progress pipeline.ProgressSink
}

// FileReport is the per-file outcome of a run.
type FileReport struct {
	Path      string
	Changed   bool
	Skipped   bool
	Rewritten int
	Replaced  int
	Err       error
}

// Result aggregates the per-file reports of one run, in enumeration order.
type Result struct {
	Reports []FileReport
}

// Changed counts files whose content was (or, in dry-run, would be) updated.
func (r Result) Changed() int { return r.count(func(fr FileReport) bool { return fr.Changed }) }

// Skipped counts cache hits.
func (r Result) Skipped() int { return r.count(func(fr FileReport) bool { return fr.Skipped }) }

// Failed counts files left unmodified because of an I/O error.
func (r Result) Failed() int { return r.count(func(fr FileReport) bool { return fr.Err != nil }) }

func (r Result) count(pred func(FileReport) bool) int {
	n := 0
	for _, fr := range r.Reports {
		if pred(fr) {
			n++
		}
	}
	return n
}

// Targets expands target into the list of files a run would process.
func Targets(target string, exts []string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	return ListFiles(target, exts)
}

// Run processes every matching file under target through opts.Transform,
// in parallel across files. A failure on one file is recorded in its report
// and does not abort the batch; Run itself only fails on enumeration errors
// or context cancellation.
func Run(ctx context.Context, target string, opts *Options) (Result, error) {
	files, err := Targets(target, opts.Extensions)
	if err != nil {
		return Result{}, err
	}
	return RunFiles(ctx, files, opts)
}

// RunFiles is Run for a pre-computed file list.
func RunFiles(ctx context.Context, files []string, opts *Options) (Result, error) {
	reports := make([]FileReport, len(files))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(files), 1)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// Index i is unique per goroutine, no mutex needed.
			reports[i] = processFile(path, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{Reports: reports}, err
	}
	return Result{Reports: reports}, nil
}

func processFile(path string, opts *Options) FileReport {
	report := FileReport{Path: path}
	sink := opts.Progress
	if sink == nil {
		sink = pipeline.NopSink{}
	}
	start := time.Now()
	op := opts.Transform.Name()

	sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageLoad, Status: pipeline.StatusWorking})
	// #nosec G304 -- paths come from the user-provided target
	raw, err := os.ReadFile(path)
	if err != nil {
		report.Err = err
		sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: err})
		return report
	}
	content, _ := source.DecodeText(raw)
	key := cacheKey(sha256.Sum256(content), opts.Transform.Fingerprint())

	if cached, ok := opts.Cache.Get(op, key); ok && !cached.Changed {
		report.Skipped = true
		sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageRewrite, Status: pipeline.StatusSkipped, Elapsed: time.Since(start)})
		return report
	}

	sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageRewrite, Status: pipeline.StatusWorking})
	res := opts.Transform.RewriteLines(source.SplitLines(content))
	report.Changed = res.Changed
	report.Rewritten = res.Rewritten
	report.Replaced = res.Replaced

	doneStage := pipeline.StageRewrite
	if res.Changed && !opts.DryRun {
		sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageWrite, Status: pipeline.StatusWorking})
		if err := writeFileAtomic(path, res.Lines); err != nil {
			report.Err = err
			sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageWrite, Status: pipeline.StatusError, Err: err})
			return report
		}
		doneStage = pipeline.StageWrite
	}

	// The cache is advisory: a failed write above already returned, and a
	// failed cache update must not fail the file.
	_ = opts.Cache.Put(op, key, &CachePayload{
		Changed:   res.Changed,
		Rewritten: res.Rewritten,
		Replaced:  res.Replaced,
	})

	sink.OnEvent(pipeline.Event{File: path, Stage: doneStage, Status: pipeline.StatusDone, Elapsed: time.Since(start)})
	return report
}

// writeFileAtomic replaces path with the joined lines via a temp file and
// rename, so a failed write never leaves a truncated file behind.
func writeFileAtomic(path string, lines []string) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".gpuport-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()

	content := strings.Join(lines, "\n") + "\n"
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
