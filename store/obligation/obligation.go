package obligation

import (
	"context"
	"fmt"

	"lendcore/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type obligationStore struct {
	db *db.DB
}

// New new obligation store
func New(db *db.DB) core.IObligationStore {
	return &obligationStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Obligation{})
		if err := tx.AutoMigrate(core.Obligation{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *obligationStore) Create(ctx context.Context, obligation *core.Obligation) error {
	return s.db.Update().Where("obligation_id = ?", obligation.ObligationID).FirstOrCreate(obligation).Error
}

func (s *obligationStore) Find(ctx context.Context, obligationID string) (*core.Obligation, error) {
	var obligation core.Obligation
	if err := s.db.View().Where("obligation_id = ?", obligationID).First(&obligation).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrObligationNotFound, obligationID)
		}

		return nil, err
	}

	return &obligation, nil
}

func (s *obligationStore) ListByOwner(ctx context.Context, owner string) ([]*core.Obligation, error) {
	var obligations []*core.Obligation
	if err := s.db.View().Where("owner = ?", owner).Order("id").Find(&obligations).Error; err != nil {
		return nil, err
	}

	return obligations, nil
}

func (s *obligationStore) Update(ctx context.Context, tx *db.DB, obligation *core.Obligation) error {
	updates := map[string]interface{}{
		"balances": obligation.Balances,
		"version":  obligation.Version + 1,
	}

	r := tx.Update().Model(core.Obligation{}).
		Where("obligation_id = ? AND version = ?", obligation.ObligationID, obligation.Version).
		Updates(updates)
	if r.Error != nil {
		return fmt.Errorf("update obligation %s: %w", obligation.ObligationID, r.Error)
	}

	if r.RowsAffected == 0 {
		return fmt.Errorf("%w: obligation %s version %d", core.ErrConcurrentModification, obligation.ObligationID, obligation.Version)
	}

	obligation.Version++
	return nil
}
