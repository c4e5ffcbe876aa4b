package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mrpworks-backend/pkg/config"
	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
	"github.com/angelmondragon/mrpworks-backend/pkg/logger"
	"github.com/angelmondragon/mrpworks-backend/pkg/outbox"
)

type fakeDB struct{}

func (fakeDB) Ping(context.Context) error { return nil }
func (fakeDB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakePubSub struct{}

func (fakePubSub) Ping(context.Context) error { return nil }

func (fakePubSub) Publisher(string) *gcppubsub.Publisher { return nil }

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (f *fakeRepo) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	events := f.events
	f.events = nil
	return events, nil
}

func (f *fakeRepo) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error {
	f.terminal = append(f.terminal, id)
	return nil
}

type fakeDLQ struct {
	entries []models.OutboxDLQ
}

func (f *fakeDLQ) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakePublisher struct {
	messages []*gcppubsub.Message
	err      error
}

type fakeResult struct{ err error }

func (r fakeResult) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "msg-1", nil
}

func (p *fakePublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	return fakeResult{err: p.err}
}

func outboxEvent(t *testing.T, attempts int) models.OutboxEvent {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{"runId":"r"}`),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventRunSucceeded,
		AggregateType: enums.AggregatePlanningRun,
		AggregateID:   uuid.New(),
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
		AttemptCount:  attempts,
	}
}

func newTestService(t *testing.T, repo *fakeRepo, dlq *fakeDLQ, pub *fakePublisher) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.PubSub.PlanningTopic = "mrp-planning-events"
	cfg.Outbox.MaxAttempts = 3

	service, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logger.New(logger.Options{ServiceName: "publisher-test"}),
		DB:            fakeDB{},
		PubSub:        fakePubSub{},
		Repository:    repo,
		DLQRepository: dlq,
		PublisherFactory: func(topic string) publisher {
			return pub
		},
	})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return service
}

func TestProcessBatch_PublishesAndMarks(t *testing.T) {
	repo := &fakeRepo{events: []models.OutboxEvent{outboxEvent(t, 0)}}
	dlq := &fakeDLQ{}
	pub := &fakePublisher{}
	service := newTestService(t, repo, dlq, pub)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch error: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to be processed")
	}
	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	if len(repo.published) != 1 || len(repo.failed) != 0 {
		t.Fatalf("marks = published:%d failed:%d", len(repo.published), len(repo.failed))
	}
	attrs := pub.messages[0].Attributes
	if attrs["event_type"] != string(enums.EventRunSucceeded) {
		t.Fatalf("event_type attribute = %q", attrs["event_type"])
	}
}

func TestProcessBatch_RetryableFailureIncrementsAttempts(t *testing.T) {
	repo := &fakeRepo{events: []models.OutboxEvent{outboxEvent(t, 0)}}
	dlq := &fakeDLQ{}
	pub := &fakePublisher{err: errors.New("unavailable")}
	service := newTestService(t, repo, dlq, pub)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch error: %v", err)
	}
	if len(repo.failed) != 1 || len(repo.terminal) != 0 || len(dlq.entries) != 0 {
		t.Fatalf("expected a retryable failure mark, got failed:%d terminal:%d dlq:%d",
			len(repo.failed), len(repo.terminal), len(dlq.entries))
	}
}

func TestProcessBatch_MaxAttemptsGoesToDLQ(t *testing.T) {
	repo := &fakeRepo{events: []models.OutboxEvent{outboxEvent(t, 2)}}
	dlq := &fakeDLQ{}
	pub := &fakePublisher{err: errors.New("unavailable")}
	service := newTestService(t, repo, dlq, pub)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch error: %v", err)
	}
	if len(repo.terminal) != 1 || len(dlq.entries) != 1 {
		t.Fatalf("expected terminal + dlq, got terminal:%d dlq:%d", len(repo.terminal), len(dlq.entries))
	}
	if dlq.entries[0].ErrorReason != enums.DLQReasonMaxAttempts {
		t.Fatalf("dlq reason = %s", dlq.entries[0].ErrorReason)
	}
}

func TestProcessBatch_UnresolvablePayloadGoesToDLQ(t *testing.T) {
	event := outboxEvent(t, 0)
	event.Payload = json.RawMessage(`not json`)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	dlq := &fakeDLQ{}
	pub := &fakePublisher{}
	service := newTestService(t, repo, dlq, pub)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch error: %v", err)
	}
	if len(pub.messages) != 0 {
		t.Fatal("undecodable payloads must not publish")
	}
	if len(dlq.entries) != 1 || dlq.entries[0].ErrorReason != enums.DLQReasonUnresolvable {
		t.Fatalf("expected unresolvable dlq entry, got %+v", dlq.entries)
	}
}
