// Package report publishes pipeline session results over NATS so
// downstream consumers (dashboards, audit sinks) can react to
// normalization runs without polling.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/harness-engine/engine/pipeline"
	"github.com/WessleyAI/harness-engine/pkg/fn"
	"github.com/WessleyAI/harness-engine/pkg/natsutil"
)

const (
	// SessionSubject carries the full session audit record per run.
	SessionSubject = "harness.report"
	// WarningsSubject carries only runs that produced geometry warnings,
	// so alerting consumers don't have to filter the full stream.
	WarningsSubject = "harness.warnings"
)

// WarningEvent is the payload published to WarningsSubject.
type WarningEvent struct {
	SessionID string   `json:"session_id"`
	Mode      string   `json:"mode"`
	Warnings  []string `json:"warnings"`
}

// Publisher publishes session reports to NATS.
type Publisher struct {
	nc    *nats.Conn
	retry fn.RetryOpts
	log   *slog.Logger
}

// NewPublisher creates a Publisher over an established connection.
func NewPublisher(nc *nats.Conn, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		nc: nc,
		retry: fn.RetryOpts{
			MaxAttempts: 3,
			InitialWait: 200 * time.Millisecond,
			MaxWait:     2 * time.Second,
			Jitter:      true,
		},
		log: log,
	}
}

// PublishSession publishes the session record, and a warning event if the
// run produced geometry warnings. Each publish retries on failure.
func (p *Publisher) PublishSession(ctx context.Context, sess *pipeline.Session) error {
	if err := p.publish(ctx, SessionSubject, sess); err != nil {
		return fmt.Errorf("publish session %s: %w", sess.ID, err)
	}

	if len(sess.Warnings) > 0 {
		ev := WarningEvent{SessionID: sess.ID, Mode: sess.Mode}
		for _, w := range sess.Warnings {
			ev.Warnings = append(ev.Warnings, w.NodeID+": "+w.Reason)
		}
		if err := p.publish(ctx, WarningsSubject, ev); err != nil {
			return fmt.Errorf("publish warnings for %s: %w", sess.ID, err)
		}
	}

	p.log.Info("session published", "session", sess.ID, "warnings", len(sess.Warnings))
	return nil
}

func (p *Publisher) publish(ctx context.Context, subject string, payload any) error {
	res := fn.Retry(ctx, p.retry, func(ctx context.Context) fn.Result[struct{}] {
		if err := natsutil.Publish(ctx, p.nc, subject, payload); err != nil {
			return fn.Err[struct{}](err)
		}
		return fn.Ok(struct{}{})
	})
	_, err := res.Unwrap()
	return err
}
