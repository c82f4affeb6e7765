package step

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/propfmt/format"
)

// formatFiles formats every file of the task in parallel. Per-file failures
// are recorded in the results; only cancellation aborts the run.
func (r *Runner) formatFiles(ctx context.Context, task *Task) ([]FileResult, error) {
	fingerprint := task.Options.Fingerprint()

	// Each goroutine owns one index, so results needs no lock.
	results := make([]FileResult, len(task.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(r.jobs, len(task.Files)))

	for i, path := range task.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = r.formatFile(task, path, fingerprint)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) formatFile(task *Task, path, fingerprint string) FileResult {
	res := FileResult{Path: path}

	source, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}
	if r.cache.UpToDate(path, fingerprint, source) {
		log.Debugf("%s: up to date", path)
		res.UpToDate = true
		return res
	}

	formatted, err := format.FormatPropertiesFile(source, path, task.Options)
	if err != nil {
		r.cache.Forget(path)
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}

	res.Changed = !bytes.Equal(source, formatted)
	switch {
	case !res.Changed:
		r.cache.Record(path, fingerprint, formatted)
	case task.Kind == KindApply:
		if err := WriteFileAtomic(path, formatted); err != nil {
			res.Err = fmt.Errorf("%s: %w", path, err)
			return res
		}
		log.Noticef("formatted %s", path)
		r.cache.Record(path, fingerprint, formatted)
	case task.Kind == KindCheck:
		res.Diff = unifiedDiff(path, source, formatted, task.Options)
	}
	return res
}

func unifiedDiff(path string, before, after []byte, opts format.Options) string {
	a, err := opts.Charset.Decode(before)
	if err != nil {
		a = before
	}
	b, err := opts.Charset.Decode(after)
	if err != nil {
		b = after
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: path,
		ToFile:   path + " (formatted)",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}
