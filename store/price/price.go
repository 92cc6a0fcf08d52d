package price

import (
	"context"
	"fmt"

	"lendcore/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type priceStore struct {
	db *db.DB
}

// New new price store
func New(db *db.DB) core.IPriceStore {
	return &priceStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Price{})

		if err := tx.AutoMigrate(core.Price{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// Save upsert the latest reading of the oracle, older observations are ignored
func (s *priceStore) Save(ctx context.Context, price *core.Price) error {
	return s.db.Tx(func(tx *db.DB) error {
		var current core.Price
		if err := tx.Update().Where("oracle_id = ?", price.OracleID).First(&current).Error; err != nil {
			if !store.IsErrNotFound(err) {
				return err
			}

			return tx.Update().Create(price).Error
		}

		if price.ObservedAt.Before(current.ObservedAt) {
			*price = current
			return nil
		}

		r := tx.Update().Model(core.Price{}).Where("oracle_id = ? AND version = ?", current.OracleID, current.Version).Updates(map[string]interface{}{
			"price":       price.Price,
			"confidence":  price.Confidence,
			"observed_at": price.ObservedAt,
			"version":     current.Version + 1,
		})
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return db.ErrOptimisticLock
		}

		price.ID = current.ID
		price.Version = current.Version + 1
		price.CreatedAt = current.CreatedAt
		return nil
	})
}

func (s *priceStore) Find(ctx context.Context, oracleID string) (*core.Price, error) {
	var price core.Price
	if err := s.db.View().Where("oracle_id = ?", oracleID).First(&price).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: no price for %s", core.ErrOracleUnusable, oracleID)
		}

		return nil, err
	}

	return &price, nil
}

func (s *priceStore) List(ctx context.Context) ([]*core.Price, error) {
	var prices []*core.Price
	if err := s.db.View().Order("oracle_id").Find(&prices).Error; err != nil {
		return nil, err
	}

	return prices, nil
}
