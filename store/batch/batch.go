package batch

import (
	"context"
	"fmt"

	"lendcore/core"

	"github.com/fox-one/pkg/store/db"
)

type batchStore struct {
	db          *db.DB
	banks       core.IBankStore
	obligations core.IObligationStore
}

// New batch store committing through the given stores in one transaction
func New(db *db.DB, banks core.IBankStore, obligations core.IObligationStore) core.IBatchStore {
	return &batchStore{
		db:          db,
		banks:       banks,
		obligations: obligations,
	}
}

func (s *batchStore) Commit(ctx context.Context, batch *core.Batch) error {
	return s.db.Tx(func(tx *db.DB) error {
		for _, bank := range batch.Banks {
			if bank.ID == 0 {
				if err := tx.Update().Create(bank).Error; err != nil {
					return fmt.Errorf("create bank %s: %w", bank.BankID, err)
				}

				continue
			}

			if err := s.banks.Update(ctx, tx, bank); err != nil {
				return err
			}
		}

		for _, obligation := range batch.Obligations {
			if obligation.ID == 0 {
				if err := tx.Update().Create(obligation).Error; err != nil {
					return fmt.Errorf("create obligation %s: %w", obligation.ObligationID, err)
				}

				continue
			}

			if err := s.obligations.Update(ctx, tx, obligation); err != nil {
				return err
			}
		}

		for _, event := range batch.Events {
			if err := tx.Update().Create(event).Error; err != nil {
				return fmt.Errorf("create event %s: %w", event.TraceID, err)
			}
		}

		for _, hook := range batch.Hooks {
			if err := hook(ctx); err != nil {
				return err
			}
		}

		return nil
	})
}
