package device

import (
	"sync"
	"time"
)

// OpKind identifies a recorded port call.
type OpKind int

const (
	OpKindSetAxes OpKind = iota
	OpKindPress
	OpKindRelease
	OpKindCommit
)

func (k OpKind) String() string {
	switch k {
	case OpKindSetAxes:
		return OpSetAxes
	case OpKindPress:
		return OpPressButtons
	case OpKindRelease:
		return OpReleaseButtons
	case OpKindCommit:
		return OpCommit
	}
	return "Unknown"
}

// Op is one recorded port call. Report is the committed state after a commit
// and the staged state otherwise.
type Op struct {
	Kind    OpKind
	X, Y    int16
	Buttons Buttons
	Report  Report
	At      time.Duration
}

// Recorder is an in-memory Port. It keeps every call in order and is safe to
// inspect from another goroutine while a run is writing to it.
type Recorder struct {
	mu        sync.Mutex
	start     time.Time
	staged    Report
	committed Report
	ops       []Op
	writers   int
	overlap   bool
}

// NewRecorder returns an empty, neutral recorder.
func NewRecorder() *Recorder {
	return &Recorder{start: time.Now()}
}

func (r *Recorder) enter() {
	r.mu.Lock()
	r.writers++
	if r.writers > 1 {
		r.overlap = true
	}
	r.mu.Unlock()
}

func (r *Recorder) leave() {
	r.mu.Lock()
	r.writers--
	r.mu.Unlock()
}

func (r *Recorder) record(op Op) {
	op.At = time.Since(r.start)
	r.ops = append(r.ops, op)
}

// SetAxes implements Port.
func (r *Recorder) SetAxes(x, y int16) error {
	r.enter()
	defer r.leave()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged.X, r.staged.Y = x, y
	r.record(Op{Kind: OpKindSetAxes, X: x, Y: y, Report: r.staged})
	return nil
}

// PressButtons implements Port. Pressing a held button is a no-op.
func (r *Recorder) PressButtons(b Buttons) error {
	r.enter()
	defer r.leave()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged.Pressed |= b
	r.record(Op{Kind: OpKindPress, Buttons: b, Report: r.staged})
	return nil
}

// ReleaseButtons implements Port.
func (r *Recorder) ReleaseButtons(b Buttons) error {
	r.enter()
	defer r.leave()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged.Pressed &^= b
	r.record(Op{Kind: OpKindRelease, Buttons: b, Report: r.staged})
	return nil
}

// Commit implements Port.
func (r *Recorder) Commit() error {
	r.enter()
	defer r.leave()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = r.staged
	r.record(Op{Kind: OpKindCommit, Report: r.committed})
	return nil
}

// State returns the last committed report.
func (r *Recorder) State() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.committed
}

// Staged returns the report that the next commit would publish.
func (r *Recorder) Staged() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.staged
}

// Ops returns a copy of every recorded call.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Commits returns the committed reports in order.
func (r *Recorder) Commits() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Report
	for _, op := range r.ops {
		if op.Kind == OpKindCommit {
			out = append(out, op.Report)
		}
	}
	return out
}

// Overlapped reports whether two calls were ever in flight at the same time.
func (r *Recorder) Overlapped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlap
}

// Reset forgets recorded calls and returns to neutral.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
	r.staged = Report{}
	r.committed = Report{}
	r.overlap = false
	r.start = time.Now()
}
