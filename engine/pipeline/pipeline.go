// Package pipeline composes the full normalization run: schema
// validation and repair, graph build, integrity checking, spatial
// synthesis, and topology analysis, staged with the fn primitives.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/WessleyAI/harness-engine/engine/analysis"
	"github.com/WessleyAI/harness-engine/engine/graph"
	"github.com/WessleyAI/harness-engine/engine/schema"
	"github.com/WessleyAI/harness-engine/engine/spatial"
	"github.com/WessleyAI/harness-engine/pkg/fn"
)

// Options configures one pipeline run.
type Options struct {
	// Mode selects the failure policy. Lenient records and continues,
	// strict aborts on the first schema or integrity error.
	Mode schema.Mode
	// MaxTraceDepth bounds power-path tracing; <= 0 uses the default.
	MaxTraceDepth int
	Logger        *slog.Logger
	// StageObserver, if set, receives each stage's name and duration.
	StageObserver func(stage string, d time.Duration)
}

// Session is the per-run audit record: everything the pipeline dropped,
// repaired, flagged, or synthesized, separated by severity class.
type Session struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	SchemaErrors    []schema.SchemaError     `json:"schema_errors,omitempty"`
	IntegrityErrors []schema.IntegrityError  `json:"integrity_errors,omitempty"`
	Warnings        []schema.GeometryWarning `json:"geometry_warnings,omitempty"`
	Repairs         []schema.RepairRecord    `json:"repairs,omitempty"`

	Records int           `json:"records"`
	Dropped int           `json:"dropped"`
	Stats   spatial.Stats `json:"synthesis"`
}

// Result is the pipeline's output: the normalized store, the derived
// model, the analysis report, and the session audit record.
type Result struct {
	Session *Session
	Store   *graph.Store
	Model   *graph.Model
	Report  *analysis.Report
}

// runState is the value threaded through the stages.
type runState struct {
	raw  []map[string]any
	mode schema.Mode
	opts Options

	session *Session
	store   *graph.Store
	model   *graph.Model
	report  *analysis.Report
}

// staged wraps a stage with an OTel span, entry/exit logs, and the
// optional duration observer.
func staged(name string, opts Options, log *slog.Logger, stage fn.Stage[*runState, *runState]) fn.Stage[*runState, *runState] {
	traced := fn.TracedStage("pipeline."+name, stage)
	return func(ctx context.Context, st *runState) fn.Result[*runState] {
		log.Info("stage.enter", "stage", name, "session", st.session.ID)
		start := time.Now()
		out := traced(ctx, st)
		d := time.Since(start)
		log.Info("stage.exit", "stage", name, "duration", d)
		if opts.StageObserver != nil {
			opts.StageObserver(name, d)
		}
		return out
	}
}

// decodeStage validates and repairs every raw record and loads the
// survivors into a fresh store. In lenient mode a bad record is recorded
// and dropped; in strict mode it aborts the run.
func decodeStage(ctx context.Context, st *runState) fn.Result[*runState] {
	st.session.Records = len(st.raw)
	for i, raw := range st.raw {
		rec, serr := schema.Decode(i, raw)
		if serr != nil {
			if st.mode == schema.ModeStrict {
				return fn.Err[*runState](serr)
			}
			st.session.SchemaErrors = append(st.session.SchemaErrors, *serr)
			st.session.Dropped++
			continue
		}
		switch r := rec.(type) {
		case *schema.Metadata:
			// Last metadata record wins.
			st.store.SetMetadata(r)
		case *schema.Node:
			st.session.Repairs = append(st.session.Repairs, schema.Repair(r)...)
			if err := st.store.AddNode(r); err != nil {
				serr := schema.NewSchemaError(i, r.ID, "id", schema.ErrDuplicateID)
				if st.mode == schema.ModeStrict {
					return fn.Err[*runState](serr)
				}
				st.session.SchemaErrors = append(st.session.SchemaErrors, *serr)
				st.session.Dropped++
			}
		case *schema.Edge:
			st.store.AddEdge(r)
		}
	}
	return fn.Ok(st)
}

// integrityStage flags dangling edges and records type violations, then
// rebuilds the model so flagged edges vanish from the adjacency view.
func integrityStage(ctx context.Context, st *runState) fn.Result[*runState] {
	errs, warns, err := graph.CheckIntegrity(st.store, st.mode)
	st.session.IntegrityErrors = append(st.session.IntegrityErrors, errs...)
	st.session.Warnings = append(st.session.Warnings, warns...)
	if err != nil {
		return fn.Err[*runState](err)
	}
	return fn.Ok(st)
}

// synthesizeStage fills in missing geometry. It mutates the store, so the
// model is rebuilt afterwards by indexStage. The synthesizer is the
// authority on placement: when it warns about a node, its warning replaces
// any advisory the integrity checker already recorded for that node, so a
// wire that stays unbridgeable ends the run with exactly one warning.
func synthesizeStage(ctx context.Context, st *runState) fn.Result[*runState] {
	stats, warns := spatial.Synthesize(st.store)
	st.session.Stats = stats

	rewarned := make(map[string]bool, len(warns))
	for _, w := range warns {
		rewarned[w.NodeID] = true
	}
	kept := st.session.Warnings[:0]
	for _, w := range st.session.Warnings {
		if !rewarned[w.NodeID] {
			kept = append(kept, w)
		}
	}
	st.session.Warnings = append(kept, warns...)
	return fn.Ok(st)
}

// indexStage derives the lookup model from the final store state, after
// integrity flagging and synthesis have both settled.
func indexStage(ctx context.Context, st *runState) fn.Result[*runState] {
	st.model = graph.BuildModel(st.store.Nodes(), st.store.Edges())
	return fn.Ok(st)
}

func analyzeStage(ctx context.Context, st *runState) fn.Result[*runState] {
	st.report = analysis.Analyze(st.model, st.opts.MaxTraceDepth)
	return fn.Ok(st)
}

// Run executes the full pipeline over raw JSONL-decoded records.
func Run(ctx context.Context, raw []map[string]any, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	st := &runState{
		raw:   raw,
		mode:  opts.Mode,
		opts:  opts,
		store: graph.NewStore(),
		session: &Session{
			ID:        uuid.NewString(),
			Mode:      opts.Mode.String(),
			StartedAt: time.Now().UTC(),
		},
	}

	run := fn.Pipeline(
		staged("decode", opts, log, decodeStage),
		staged("integrity", opts, log, integrityStage),
		staged("synthesize", opts, log, synthesizeStage),
		staged("index", opts, log, indexStage),
		staged("analyze", opts, log, analyzeStage),
	)

	out := run(ctx, st)
	st.session.FinishedAt = time.Now().UTC()
	if out.IsErr() {
		_, err := out.Unwrap()
		log.Error("pipeline aborted", "session", st.session.ID, "mode", st.session.Mode, "error", err)
		return nil, fmt.Errorf("pipeline run %s: %w", st.session.ID, err)
	}

	log.Info("pipeline complete",
		"session", st.session.ID,
		"records", st.session.Records,
		"dropped", st.session.Dropped,
		"repairs", len(st.session.Repairs),
		"integrity_errors", len(st.session.IntegrityErrors),
		"warnings", len(st.session.Warnings),
	)
	return &Result{Session: st.session, Store: st.store, Model: st.model, Report: st.report}, nil
}
