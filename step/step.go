// Package step runs the properties formatter as build tasks.
//
// A Task is either an apply task, which rewrites files in place, or a check
// task, which only reports files that are not formatted. Running a task
// yields an Outcome using the same vocabulary as build runners: SUCCESS,
// UP-TO-DATE, FAILED or NO-SOURCE.
package step

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/propfmt/format"
)

var log = commonlog.GetLogger("propfmt.step")

const (
	ApplyTaskName = "formatPropertiesApply"
	CheckTaskName = "formatPropertiesCheck"
)

// ErrNotFormatted is returned by a check task when a file would change.
var ErrNotFormatted = errors.New("files are not formatted")

type Kind int

const (
	KindApply Kind = iota
	KindCheck
)

func (k Kind) String() string {
	if k == KindCheck {
		return "check"
	}
	return "apply"
}

type Outcome string

const (
	OutcomeSuccess  Outcome = "SUCCESS"
	OutcomeUpToDate Outcome = "UP-TO-DATE"
	OutcomeFailed   Outcome = "FAILED"
	OutcomeNoSource Outcome = "NO-SOURCE"
)

type Task struct {
	Name    string
	Kind    Kind
	Files   []string
	Options format.Options
}

func NewApplyTask(files []string, opts format.Options) *Task {
	return &Task{Name: ApplyTaskName, Kind: KindApply, Files: files, Options: opts}
}

func NewCheckTask(files []string, opts format.Options) *Task {
	return &Task{Name: CheckTaskName, Kind: KindCheck, Files: files, Options: opts}
}

// FileResult is what happened to a single file.
type FileResult struct {
	Path     string
	Changed  bool
	UpToDate bool
	Diff     string // check tasks only
	Err      error
}

type Result struct {
	Task     string
	Outcome  Outcome
	Files    []FileResult
	Duration time.Duration
}

// Changed returns the files that were (or, for a check task, would be)
// rewritten.
func (r *Result) Changed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Changed && f.Err == nil {
			out = append(out, f)
		}
	}
	return out
}

func (r *Result) Failed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

type Runner struct {
	jobs  int
	cache *Cache
}

type RunnerOption func(*Runner)

// WithJobs bounds how many files are formatted at once.
func WithJobs(n int) RunnerOption {
	return func(r *Runner) {
		r.jobs = n
	}
}

// WithCache enables UP-TO-DATE detection.
func WithCache(c *Cache) RunnerOption {
	return func(r *Runner) {
		r.cache = c
	}
}

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.jobs <= 0 {
		r.jobs = runtime.GOMAXPROCS(0)
	}
	return r
}

// Run executes the task. The returned error is non-nil exactly when the
// outcome is FAILED.
func (r *Runner) Run(ctx context.Context, task *Task) (*Result, error) {
	start := time.Now()
	result := &Result{Task: task.Name}
	defer func() {
		result.Duration = time.Since(start)
	}()

	if len(task.Files) == 0 {
		log.Infof("%s: no source files", task.Name)
		result.Outcome = OutcomeNoSource
		return result, nil
	}
	if err := task.Options.Validate(); err != nil {
		result.Outcome = OutcomeFailed
		return result, fmt.Errorf("task %s: %w", task.Name, err)
	}

	files, err := r.formatFiles(ctx, task)
	result.Files = files
	if err != nil {
		result.Outcome = OutcomeFailed
		return result, fmt.Errorf("task %s: %w", task.Name, err)
	}
	if err := r.cache.Save(); err != nil {
		log.Warningf("%s: %v", task.Name, err)
	}

	var errs []error
	changed, upToDate := 0, 0
	for _, f := range files {
		switch {
		case f.Err != nil:
			errs = append(errs, f.Err)
		case f.Changed:
			changed++
		case f.UpToDate:
			upToDate++
		}
	}

	switch {
	case len(errs) > 0:
		result.Outcome = OutcomeFailed
		return result, fmt.Errorf("task %s failed: %w", task.Name, errors.Join(errs...))
	case task.Kind == KindCheck && changed > 0:
		result.Outcome = OutcomeFailed
		return result, fmt.Errorf("task %s failed: %d of %d %w", task.Name, changed, len(files), ErrNotFormatted)
	case upToDate == len(files):
		result.Outcome = OutcomeUpToDate
	default:
		result.Outcome = OutcomeSuccess
	}
	log.Infof("%s: %s (%d files, %d changed)", task.Name, result.Outcome, len(files), changed)
	return result, nil
}
