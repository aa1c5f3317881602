// Package export mirrors a normalized store into Neo4j so the graph can
// be queried with Cypher. The store stays the source of truth: export is
// one-way and idempotent, built on MERGE.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/time/rate"

	"github.com/WessleyAI/harness-engine/engine/graph"
	"github.com/WessleyAI/harness-engine/engine/schema"
	"github.com/WessleyAI/harness-engine/pkg/fn"
	"github.com/WessleyAI/harness-engine/pkg/resilience"
)

// batchSize is the number of records merged per write transaction.
const batchSize = 100

// CypherResult is the subset of a Neo4j result the exporter consumes.
type CypherResult interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// CypherRunner runs one Cypher statement.
type CypherRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error)
}

// CypherSession is a Neo4j session narrowed to what the exporter needs,
// so tests can substitute a mock without a live database.
type CypherSession interface {
	CypherRunner
	ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error)
	Close(ctx context.Context) error
}

// SessionOpener opens sessions. The production implementation wraps the
// real driver; tests provide their own.
type SessionOpener interface {
	OpenSession(ctx context.Context) CypherSession
}

// --- driver adapters ---

type driverOpener struct {
	driver neo4j.DriverWithContext
}

func (o *driverOpener) OpenSession(ctx context.Context) CypherSession {
	return &driverSession{sess: o.driver.NewSession(ctx, neo4j.SessionConfig{})}
}

type driverSession struct {
	sess neo4j.SessionWithContext
}

func (s *driverSession) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	res, err := s.sess.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return &driverResult{res: res}, nil
}

func (s *driverSession) ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error) {
	return s.sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(&txRunner{tx: tx})
	})
}

func (s *driverSession) Close(ctx context.Context) error { return s.sess.Close(ctx) }

type txRunner struct {
	tx neo4j.ManagedTransaction
}

func (r *txRunner) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	res, err := r.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return &driverResult{res: res}, nil
}

type driverResult struct {
	res interface {
		Next(ctx context.Context) bool
		Record() *neo4j.Record
		Err() error
	}
}

func (r *driverResult) Next(ctx context.Context) bool { return r.res.Next(ctx) }
func (r *driverResult) Record() *neo4j.Record         { return r.res.Record() }
func (r *driverResult) Err() error                    { return r.res.Err() }

// Exporter writes normalized graphs to Neo4j.
type Exporter struct {
	opener  SessionOpener
	limiter *rate.Limiter
	breaker *resilience.Breaker
	retry   fn.RetryOpts
	log     *slog.Logger
}

// New creates an Exporter over a live driver.
func New(driver neo4j.DriverWithContext, log *slog.Logger) *Exporter {
	return NewWithOpener(&driverOpener{driver: driver}, log)
}

// NewWithOpener creates an Exporter over any session opener.
func NewWithOpener(opener SessionOpener, log *slog.Logger) *Exporter {
	if log == nil {
		log = slog.Default()
	}
	return &Exporter{
		opener:  opener,
		limiter: rate.NewLimiter(rate.Limit(10), 1), // 10 write batches/sec
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		retry: fn.RetryOpts{
			MaxAttempts: 3,
			InitialWait: 100 * time.Millisecond,
			MaxWait:     time.Second,
			Jitter:      true,
		},
		log: log,
	}
}

// ExportGraph merges every node and non-flagged edge of the store into
// Neo4j, batched into write transactions. Each batch passes through the
// rate limiter and the circuit breaker.
func (e *Exporter) ExportGraph(ctx context.Context, s *graph.Store) error {
	sess := e.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	nodes := s.Nodes()
	for start := 0; start < len(nodes); start += batchSize {
		end := start + batchSize
		if end > len(nodes) {
			end = len(nodes)
		}
		if err := e.writeBatch(ctx, sess, func(tx CypherRunner) error {
			return mergeNodes(ctx, tx, nodes[start:end])
		}); err != nil {
			return fmt.Errorf("export nodes [%d:%d]: %w", start, end, err)
		}
	}

	var edges []*schema.Edge
	for _, ed := range s.Edges() {
		if !ed.Flagged {
			edges = append(edges, ed)
		}
	}
	for start := 0; start < len(edges); start += batchSize {
		end := start + batchSize
		if end > len(edges) {
			end = len(edges)
		}
		if err := e.writeBatch(ctx, sess, func(tx CypherRunner) error {
			return mergeEdges(ctx, tx, edges[start:end])
		}); err != nil {
			return fmt.Errorf("export edges [%d:%d]: %w", start, end, err)
		}
	}

	e.log.Info("graph exported", "nodes", len(nodes), "edges", len(edges))
	return nil
}

// writeBatch pushes one transaction through the rate limiter, the retry
// loop, and the circuit breaker. The breaker sits inside the retry so it
// still sees every individual failure.
func (e *Exporter) writeBatch(ctx context.Context, sess CypherSession, work func(tx CypherRunner) error) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}
	res := fn.Retry(ctx, e.retry, func(ctx context.Context) fn.Result[struct{}] {
		err := e.breaker.Call(ctx, func(ctx context.Context) error {
			_, werr := sess.ExecuteWrite(ctx, func(tx CypherRunner) (any, error) {
				return nil, work(tx)
			})
			return werr
		})
		if err != nil {
			return fn.Err[struct{}](err)
		}
		return fn.Ok(struct{}{})
	})
	_, err := res.Unwrap()
	return err
}

func mergeNodes(ctx context.Context, tx CypherRunner, nodes []*schema.Node) error {
	for _, n := range nodes {
		cypher := fmt.Sprintf(`MERGE (n:%s {id: $id}) SET n += $props`, nodeLabel(n.Type))
		if _, err := tx.Run(ctx, cypher, map[string]any{
			"id":    n.ID,
			"props": nodeToProps(n),
		}); err != nil {
			return err
		}
	}
	return nil
}

func mergeEdges(ctx context.Context, tx CypherRunner, edges []*schema.Edge) error {
	for _, ed := range edges {
		cypher := fmt.Sprintf(
			`MATCH (a {id: $source}), (b {id: $target})
			 MERGE (a)-[r:%s]->(b)
			 SET r.notes = $notes`,
			sanitizeRelType(string(ed.Rel)),
		)
		if _, err := tx.Run(ctx, cypher, map[string]any{
			"source": ed.Source,
			"target": ed.Target,
			"notes":  ed.Notes,
		}); err != nil {
			return err
		}
	}
	return nil
}

// nodeToProps flattens a node for Neo4j. Triples become float slices;
// the polyline cannot be stored as a nested list, so it is encoded as a
// JSON string.
func nodeToProps(n *schema.Node) map[string]any {
	props := map[string]any{
		"id":        n.ID,
		"node_type": string(n.Type),
	}
	for key, val := range map[string]string{
		"canonical_id": n.CanonicalID,
		"label":        n.Label,
		"anchor_zone":  n.Zone,
		"rail":         n.Rail,
		"color":        n.Color,
		"gauge":        n.Gauge,
		"signal":       n.Signal,
		"voltage":      n.Voltage,
		"notes":        n.Notes,
	} {
		if val != "" {
			props[key] = val
		}
	}
	if n.AnchorXYZ != nil {
		props["anchor_xyz"] = n.AnchorXYZ[:]
	}
	if n.AnchorYPR != nil {
		props["anchor_ypr_deg"] = n.AnchorYPR[:]
	}
	if n.BBox != nil {
		props["bbox_m"] = n.BBox[:]
	}
	if len(n.Path) > 0 {
		raw, _ := json.Marshal(n.Path)
		props["path_xyz"] = string(raw)
	}
	return props
}

// nodeLabel maps a node type to a Cypher label, e.g. ground_point
// becomes GroundPoint.
func nodeLabel(t schema.NodeType) string {
	out := make([]byte, 0, len(t))
	upper := true
	for i := 0; i < len(t); i++ {
		c := t[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 32
		}
		upper = false
		out = append(out, c)
	}
	if len(out) == 0 {
		return "Entity"
	}
	return string(out)
}

// sanitizeRelType ensures the relationship type is a valid Cypher
// identifier, uppercased per Neo4j convention.
func sanitizeRelType(t string) string {
	safe := make([]byte, 0, len(t))
	for i := 0; i < len(t); i++ {
		c := t[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			safe = append(safe, c)
		}
	}
	if len(safe) == 0 {
		return "RELATED_TO"
	}
	for i := range safe {
		if safe[i] >= 'a' && safe[i] <= 'z' {
			safe[i] -= 32
		}
	}
	return string(safe)
}
