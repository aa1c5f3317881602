// Command normalize reads a wiring graph as JSONL, runs it through the
// normalization pipeline (validate, repair, integrity check, spatial
// synthesis, analysis), and writes the normalized graph back as JSONL.
// Optional flags mirror the result into Neo4j, publish the session
// report over NATS, and index node labels into Qdrant.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/harness-engine/engine/export"
	"github.com/WessleyAI/harness-engine/engine/pipeline"
	"github.com/WessleyAI/harness-engine/engine/report"
	"github.com/WessleyAI/harness-engine/engine/schema"
	"github.com/WessleyAI/harness-engine/engine/semantic"
	"github.com/WessleyAI/harness-engine/engine/serialize"
	"github.com/WessleyAI/harness-engine/pkg/metrics"
	"github.com/WessleyAI/harness-engine/pkg/mid"
	"github.com/WessleyAI/harness-engine/pkg/ollama"
)

var met = metrics.New()

var (
	mRunsTotal   = func(mode string) *metrics.Counter { return met.Counter(metrics.WithLabels("harness_runs_total", "mode", mode), "Normalization runs") }
	mRecords     = met.Counter("harness_records_total", "Raw records read")
	mDropped     = met.Counter("harness_records_dropped_total", "Records dropped by validation")
	mRepairs     = met.Counter("harness_repairs_total", "Field repairs applied")
	mIntegrity   = met.Counter("harness_integrity_errors_total", "Integrity violations found")
	mWarnings    = met.Counter("harness_geometry_warnings_total", "Geometry warnings emitted")
	mSynthesized = met.Counter("harness_anchors_synthesized_total", "Anchors synthesized from zones")
	mBridged     = met.Counter("harness_wires_bridged_total", "Wire paths bridged")
	mRunDur      = met.Histogram("harness_run_duration_seconds", "Full pipeline run time", nil)
	mStageDur    = func(stage string) *metrics.Histogram {
		return met.Histogram(metrics.WithLabels("harness_stage_duration_seconds", "stage", stage), "Pipeline stage time", nil)
	}
)

const vectorDims = 768 // nomic-embed-text

func main() {
	var (
		inPath      = flag.String("in", "-", "input JSONL file, - for stdin")
		outPath     = flag.String("out", "-", "output JSONL file, - for stdout")
		mode        = flag.String("mode", "lenient", "failure policy: lenient or strict")
		traceDepth  = flag.Int("trace-depth", 0, "max power-trace depth, 0 for default")
		neo4jURL    = flag.String("neo4j", "", "Neo4j bolt URL, empty to skip export")
		neo4jUser   = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass   = flag.String("neo4j-pass", "", "Neo4j password")
		natsURL     = flag.String("nats", "", "NATS URL, empty to skip report publishing")
		qdrantAddr  = flag.String("qdrant", "", "Qdrant gRPC address, empty to skip label indexing")
		collection  = flag.String("collection", "harness-labels", "Qdrant collection name")
		ollamaURL   = flag.String("ollama", "http://localhost:11434", "Ollama base URL")
		ollamaModel = flag.String("model", "nomic-embed-text", "Ollama embedding model")
		metricsPort = flag.Int("metrics-port", 9092, "metrics HTTP port, 0 to disable")
	)
	flag.Parse()

	log := slog.Default()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *metricsPort > 0 {
		met.CollectRuntime("harness", 15*time.Second)
		serveMetrics(*metricsPort, log)
	}

	runMode := schema.ModeLenient
	switch *mode {
	case "lenient":
	case "strict":
		runMode = schema.ModeStrict
	default:
		log.Error("unknown mode", "mode", *mode)
		os.Exit(2)
	}

	raw, err := readRecords(*inPath)
	if err != nil {
		log.Error("read input failed", "path", *inPath, "error", err)
		os.Exit(1)
	}
	mRecords.Add(int64(len(raw)))

	start := time.Now()
	result, err := pipeline.Run(ctx, raw, pipeline.Options{
		Mode:          runMode,
		MaxTraceDepth: *traceDepth,
		Logger:        log,
		StageObserver: func(stage string, d time.Duration) {
			mStageDur(stage).Observe(d.Seconds())
		},
	})
	mRunDur.Since(start)
	if err != nil {
		log.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
	mRunsTotal(result.Session.Mode).Inc()
	mDropped.Add(int64(result.Session.Dropped))
	mRepairs.Add(int64(len(result.Session.Repairs)))
	mIntegrity.Add(int64(len(result.Session.IntegrityErrors)))
	mWarnings.Add(int64(len(result.Session.Warnings)))
	mSynthesized.Add(int64(result.Session.Stats.Anchors))
	mBridged.Add(int64(result.Session.Stats.Bridges))

	if err := writeStore(*outPath, result); err != nil {
		log.Error("write output failed", "path", *outPath, "error", err)
		os.Exit(1)
	}

	failed := false

	if *neo4jURL != "" {
		if err := exportToNeo4j(ctx, *neo4jURL, *neo4jUser, *neo4jPass, result, log); err != nil {
			log.Error("neo4j export failed", "error", err)
			failed = true
		}
	}

	if *natsURL != "" {
		if err := publishReport(ctx, *natsURL, result, log); err != nil {
			log.Error("report publish failed", "error", err)
			failed = true
		}
	}

	if *qdrantAddr != "" {
		if err := indexLabels(ctx, *qdrantAddr, *collection, *ollamaURL, *ollamaModel, result, log); err != nil {
			log.Error("label indexing failed", "error", err)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

// serveMetrics exposes /metrics and a liveness root in the background.
func serveMetrics(port int, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", met.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})
	h := mid.Chain(mux, mid.Recover(log), mid.Logger(log), mid.OTel("harness-normalize"))
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), h); err != nil {
			log.Error("metrics server failed", "port", port, "error", err)
		}
	}()
}

// readRecords decodes line-delimited JSON objects from a file or stdin.
func readRecords(path string) ([]map[string]any, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var out []map[string]any
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Bytes()
		if len(text) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}

func writeStore(path string, result *pipeline.Result) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	bw := bufio.NewWriter(w)
	if err := serialize.Write(bw, result.Store); err != nil {
		return err
	}
	return bw.Flush()
}

func exportToNeo4j(ctx context.Context, url, user, pass string, result *pipeline.Result, log *slog.Logger) error {
	driver, err := neo4j.NewDriverWithContext(url, neo4j.BasicAuth(user, pass, ""))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer driver.Close(ctx)
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	exp := export.New(driver, log)
	if err := exp.ExportGraph(ctx, result.Store); err != nil {
		return err
	}
	if counts, err := exp.NodeCounts(ctx); err == nil {
		log.Info("neo4j node counts", "counts", counts)
	}
	return nil
}

func publishReport(ctx context.Context, url string, result *pipeline.Result, log *slog.Logger) error {
	nc, err := nats.Connect(url)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer nc.Drain()

	pub := report.NewPublisher(nc, log)
	return pub.PublishSession(ctx, result.Session)
}

func indexLabels(ctx context.Context, addr, collection, ollamaURL, model string, result *pipeline.Result, log *slog.Logger) error {
	embedder := ollama.NewEmbedClient(ollamaURL, model)
	idx, err := semantic.New(addr, collection, embedder)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.EnsureCollection(ctx, vectorDims); err != nil {
		return err
	}
	nodes := result.Store.Nodes()
	if err := idx.IndexNodes(ctx, nodes); err != nil {
		return err
	}

	suggestions, err := idx.SuggestCanonical(ctx, nodes, 0.80)
	if err != nil {
		return err
	}
	for _, s := range suggestions {
		log.Info("canonical suggestion",
			"node", s.NodeID,
			"canonical_id", s.CanonicalID,
			"match", s.MatchLabel,
			"score", s.Score,
		)
	}
	return nil
}
