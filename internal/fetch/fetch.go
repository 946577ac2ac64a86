// Package fetch coordinates concurrent reads against named source
// collections. Failure isolation lives here and only here: every task settles
// into an Outcome, a single failed source never aborts the batch, and all
// higher-level code consumes Outcomes rather than raw goroutine results.
package fetch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

// DefaultConcurrency bounds a batch when the caller does not configure one.
const DefaultConcurrency = 8

// Task is one named fetch operation.
type Task struct {
	Source string
	Run    func(ctx context.Context) ([]models.Record, error)
}

// Outcome is the settled result of one task, tagged with its source name.
// Exactly one of Records/Err is meaningful.
type Outcome struct {
	Source  string
	Records []models.Record
	Err     error
}

// OK reports whether the fetch succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Outcomes indexes settled results by source name.
type Outcomes map[string]Outcome

// Get returns the outcome for a source.
func (o Outcomes) Get(source string) (Outcome, bool) {
	out, ok := o[source]
	return out, ok
}

// Records returns the fetched snapshot for a source, nil when it failed or
// was never requested.
func (o Outcomes) Records(source string) []models.Record {
	if out, ok := o[source]; ok && out.OK() {
		return out.Records
	}
	return nil
}

// Failed lists the sources whose fetch failed, in request order when the
// caller iterates its own source list, otherwise unordered.
func (o Outcomes) Failed() []string {
	var failed []string
	for source, out := range o {
		if !out.OK() {
			failed = append(failed, source)
		}
	}
	return failed
}

// Collections converts successful outcomes into the collection set the view
// assembler consumes. Failed sources are omitted; the assembler substitutes
// Unknown placeholders for their dangling references.
func (o Outcomes) Collections() map[string][]models.Record {
	collections := make(map[string][]models.Record, len(o))
	for source, out := range o {
		if out.OK() {
			collections[source] = out.Records
		}
	}
	return collections
}

// Coordinator runs batches of independent fetch tasks.
type Coordinator struct {
	concurrency int
}

// NewCoordinator builds a coordinator with the given concurrency bound.
func NewCoordinator(concurrency int) *Coordinator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Coordinator{concurrency: concurrency}
}

// Gather executes all tasks concurrently and settles every one of them. It
// returns an error only for programmer error in the request list itself; an
// individual task failure lands in its Outcome instead.
func (c *Coordinator) Gather(ctx context.Context, tasks []Task) (Outcomes, error) {
	if len(tasks) == 0 {
		return nil, appErrors.Clone(appErrors.ErrAggregationInput, "empty task list")
	}
	seen := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		if task.Source == "" {
			return nil, appErrors.Clone(appErrors.ErrAggregationInput, "task with empty source name")
		}
		if task.Run == nil {
			return nil, appErrors.Clone(appErrors.ErrAggregationInput, fmt.Sprintf("task %q has no run function", task.Source))
		}
		if _, dup := seen[task.Source]; dup {
			return nil, appErrors.Clone(appErrors.ErrAggregationInput, fmt.Sprintf("duplicate task source %q", task.Source))
		}
		seen[task.Source] = struct{}{}
	}

	outcomes := make(Outcomes, len(tasks))
	results := make([]Outcome, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			records, err := task.Run(gctx)
			if err != nil {
				results[i] = Outcome{Source: task.Source, Err: appErrors.ForSource(appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, err.Error()), task.Source)}
				return nil
			}
			results[i] = Outcome{Source: task.Source, Records: records}
			return nil
		})
	}
	// Workers never return errors; Wait only observes context teardown.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		// The consumer went away; in-flight results are discarded. Reads
		// have no side effects so no compensation is needed.
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "aggregation cancelled")
	}

	for _, out := range results {
		outcomes[out.Source] = out
	}
	return outcomes, nil
}

// ChildBatch is the settled result of one parent's child fan-out.
type ChildBatch struct {
	ParentID string
	Records  []models.Record
	Err      error
}

// GatherChildren performs the second level of a parent-then-children fan-out:
// one child fetch per resolved parent, each in its own failure domain, so a
// failed batch for one parent never blocks siblings. Parent identifiers are
// unknown until the parent fetch settles, which is why this level is
// sequenced after it rather than merged into one batch.
func (c *Coordinator) GatherChildren(ctx context.Context, parentIDs []string, run func(ctx context.Context, parentID string) ([]models.Record, error)) ([]ChildBatch, error) {
	if run == nil {
		return nil, appErrors.Clone(appErrors.ErrAggregationInput, "child fetch requires a run function")
	}
	batches := make([]ChildBatch, len(parentIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, parentID := range parentIDs {
		i, parentID := i, parentID
		g.Go(func() error {
			records, err := run(gctx, parentID)
			batches[i] = ChildBatch{ParentID: parentID, Records: records, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "aggregation cancelled")
	}
	return batches, nil
}
