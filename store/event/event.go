package event

import (
	"context"

	"lendcore/core"

	"github.com/fox-one/pkg/store/db"
)

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Event{})

		if err := tx.AutoMigrate(core.Event{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// New new event store
func New(db *db.DB) core.IEventStore {
	return &eventStore{db: db}
}

type eventStore struct {
	db *db.DB
}

func (s *eventStore) Create(ctx context.Context, event *core.Event) error {
	return s.db.Update().Where("trace_id = ?", event.TraceID).FirstOrCreate(event).Error
}

func (s *eventStore) List(ctx context.Context, fromID int64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().Where("id > ?", fromID).Order("id").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *eventStore) ListByObligation(ctx context.Context, obligationID string, fromID int64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().
		Where("obligation_id = ? AND id > ?", obligationID, fromID).
		Order("id").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
