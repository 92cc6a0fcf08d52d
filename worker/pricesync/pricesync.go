package pricesync

import (
	"context"
	"sort"

	"lendcore/core"
	"lendcore/worker"

	"github.com/fox-one/pkg/logger"
)

// Syncer pulls the readings of every oracle a bank references into the price store
type Syncer struct {
	worker.BaseJob
	banks  core.IBankStore
	prices core.IPriceStore
	feed   core.IPriceFeed
}

// New new price sync worker
func New(
	cfg *core.Config,
	banks core.IBankStore,
	prices core.IPriceStore,
	feed core.IPriceFeed,
) (*Syncer, error) {
	s := &Syncer{
		banks:  banks,
		prices: prices,
		feed:   feed,
	}

	s.Name = "pricesync"
	s.OnWork = s.onWork

	if err := s.Schedule(cfg.App.Location, cfg.Oracle.Schedule); err != nil {
		return nil, err
	}

	return s, nil
}

func oracleIDs(banks []*core.Bank) []string {
	set := make(map[string]bool)
	for _, bank := range banks {
		if bank.IsWrapped() || bank.OracleID == "" {
			continue
		}

		set[bank.OracleID] = true
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}

	sort.Strings(ids)
	return ids
}

func (s *Syncer) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	banks, err := s.banks.List(ctx)
	if err != nil {
		log.WithError(err).Errorln("banks.List")
		return err
	}

	ids := oracleIDs(banks)
	if len(ids) == 0 {
		return nil
	}

	readings, err := s.feed.Pull(ctx, ids)
	if err != nil {
		log.WithError(err).Errorln("feed.Pull")
		return err
	}

	for _, r := range readings {
		if !r.Price.IsPositive() || r.ObservedAt.IsZero() {
			log.Infof("pricesync: drop reading %s at %s", r.OracleID, r.Price)
			continue
		}

		price := &core.Price{
			OracleID:   r.OracleID,
			Price:      r.Price,
			Confidence: r.Confidence,
			ObservedAt: r.ObservedAt,
		}

		if err := s.prices.Save(ctx, price); err != nil {
			log.WithError(err).Errorln("prices.Save", r.OracleID)
			return err
		}
	}

	return nil
}
