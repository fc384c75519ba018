// Package pipeline defines the progress events exchanged between the
// rewrite driver and its consumers (plain printer, progress UI).
package pipeline

import "time"

// Stage describes a per-file processing phase.
type Stage string

const (
	// StageLoad is reading and decoding the file.
	StageLoad Stage = "load"
	// StageRewrite is the directive rewrite pass.
	StageRewrite Stage = "rewrite"
	// StageWrite is persisting the rewritten file.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file finished, changed or not.
	StatusDone Status = "done"
	// StatusSkipped indicates the file was skipped via the result cache.
	StatusSkipped Status = "skipped"
	// StatusError indicates the file failed and was left unmodified.
	StatusError Status = "error"
)

// Event reports progress for one file.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}
