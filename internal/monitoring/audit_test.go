package monitoring

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/internal/storage"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:  "error",
		Output: io.Discard,
	})
}

func TestAuditLoggerRecentEvents(t *testing.T) {
	audit := NewAuditLogger(testLogger(), 3)
	ctx := context.Background()

	siteA := uuid.New()
	siteB := uuid.New()

	audit.LogDocument(ctx, siteA, uuid.New(), ActionCreated)
	audit.LogDocument(ctx, siteB, uuid.New(), ActionCreated)
	audit.LogDocument(ctx, siteA, uuid.New(), ActionAnalyzed)

	events := audit.RecentEvents(siteA)
	assert.Len(t, events, 2)
	assert.Equal(t, ActionCreated, events[0].Action)
	assert.Equal(t, ActionAnalyzed, events[1].Action)

	all := audit.RecentEvents(uuid.Nil)
	assert.Len(t, all, 3)
	for _, ev := range all {
		assert.NotEqual(t, uuid.Nil, ev.ID)
		assert.False(t, ev.OccurredAt.IsZero())
	}
}

func TestAuditLoggerTrimsTrail(t *testing.T) {
	audit := NewAuditLogger(testLogger(), 2)
	ctx := context.Background()

	site := uuid.New()
	first := uuid.New()
	audit.LogDocument(ctx, site, first, ActionCreated)
	audit.LogDocument(ctx, site, uuid.New(), ActionUpdated)
	audit.LogDocument(ctx, site, uuid.New(), ActionDeleted)

	events := audit.RecentEvents(site)
	assert.Len(t, events, 2)
	for _, ev := range events {
		assert.NotEqual(t, first, ev.ResourceID)
	}
}

func TestAuditLoggerNilReceiver(t *testing.T) {
	var audit *AuditLogger
	audit.LogDocument(context.Background(), uuid.New(), uuid.New(), ActionCreated)
	assert.Nil(t, audit.RecentEvents(uuid.Nil))
}

func TestStaleDocuments(t *testing.T) {
	now := time.Now()
	old := now.Add(-48 * time.Hour)
	fresh := now.Add(-time.Minute)

	unanalyzed := &storage.Document{Title: "unanalyzed", UpdatedAt: now}
	editedAfter := &storage.Document{Title: "edited", UpdatedAt: now, AnalyzedAt: &old}
	current := &storage.Document{Title: "current", UpdatedAt: fresh, AnalyzedAt: &fresh}

	stale := StaleDocuments([]*storage.Document{unanalyzed, editedAfter, current}, StalenessConfig{})
	assert.Len(t, stale, 2)
	assert.Equal(t, "unanalyzed", stale[0].Title)
	assert.Equal(t, "edited", stale[1].Title)

	aged := &storage.Document{Title: "aged", UpdatedAt: old, AnalyzedAt: &old}
	stale = StaleDocuments([]*storage.Document{aged}, StalenessConfig{MaxAge: 24 * time.Hour})
	assert.Len(t, stale, 1)

	stale = StaleDocuments([]*storage.Document{aged}, StalenessConfig{})
	assert.Empty(t, stale)
}
