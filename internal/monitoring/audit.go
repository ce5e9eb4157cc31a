// Package monitoring provides audit logging and staleness detection.
package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brightline-ai/context-engine/internal/observability"
)

// Action identifies what happened to a resource.
type Action string

const (
	ActionCreated    Action = "created"
	ActionUpdated    Action = "updated"
	ActionDeleted    Action = "deleted"
	ActionAnalyzed   Action = "analyzed"
	ActionReanalyzed Action = "reanalyzed"
	ActionQueried    Action = "queried"
)

// AuditEvent represents an auditable action on a site's resources.
type AuditEvent struct {
	ID           uuid.UUID              `json:"id"`
	SiteID       uuid.UUID              `json:"site_id"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   uuid.UUID              `json:"resource_id"`
	Action       Action                 `json:"action"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

// AuditLogger records audit events to the structured logger and keeps a
// bounded in-memory trail for inspection.
type AuditLogger struct {
	logger *observability.Logger

	mu     sync.Mutex
	recent []AuditEvent
	max    int
}

// NewAuditLogger creates an audit logger retaining up to maxRecent events.
func NewAuditLogger(logger *observability.Logger, maxRecent int) *AuditLogger {
	if maxRecent <= 0 {
		maxRecent = 256
	}
	return &AuditLogger{
		logger: logger,
		max:    maxRecent,
	}
}

// LogEvent records an audit event.
func (a *AuditLogger) LogEvent(ctx context.Context, event AuditEvent) {
	if a == nil {
		return
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	a.logger.Info().
		Str("event_id", event.ID.String()).
		Str("site_id", event.SiteID.String()).
		Str("resource_type", event.ResourceType).
		Str("resource_id", event.ResourceID.String()).
		Str("action", string(event.Action)).
		Msg("Audit event")

	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = append(a.recent, event)
	if len(a.recent) > a.max {
		a.recent = a.recent[len(a.recent)-a.max:]
	}
}

// LogDocument records a document lifecycle event.
func (a *AuditLogger) LogDocument(ctx context.Context, siteID, docID uuid.UUID, action Action) {
	a.LogEvent(ctx, AuditEvent{
		SiteID:       siteID,
		ResourceType: "document",
		ResourceID:   docID,
		Action:       action,
	})
}

// LogQuery records a context query event.
func (a *AuditLogger) LogQuery(ctx context.Context, siteID uuid.UUID, intent string, latency time.Duration, resultCount int) {
	a.LogEvent(ctx, AuditEvent{
		SiteID:       siteID,
		ResourceType: "context_query",
		ResourceID:   uuid.New(),
		Action:       ActionQueried,
		Payload: map[string]interface{}{
			"intent":       intent,
			"latency_ms":   latency.Milliseconds(),
			"result_count": resultCount,
		},
	})
}

// LogReindex records a site-wide reanalysis.
func (a *AuditLogger) LogReindex(ctx context.Context, siteID uuid.UUID, count int) {
	a.LogEvent(ctx, AuditEvent{
		SiteID:       siteID,
		ResourceType: "site",
		ResourceID:   siteID,
		Action:       ActionReanalyzed,
		Payload: map[string]interface{}{
			"documents": count,
		},
	})
}

// RecentEvents returns the retained trail for a site, newest last. A zero
// siteID returns all retained events.
func (a *AuditLogger) RecentEvents(siteID uuid.UUID) []AuditEvent {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]AuditEvent, 0, len(a.recent))
	for _, ev := range a.recent {
		if siteID != uuid.Nil && ev.SiteID != siteID {
			continue
		}
		out = append(out, ev)
	}
	return out
}
