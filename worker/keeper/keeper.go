package keeper

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"lendcore/core"
	"lendcore/pkg/concurrency"
	"lendcore/worker"

	"github.com/fox-one/pkg/logger"
)

const checkpointKey = "keeper_checkpoint"

// Checkpoints records the time of the last finished round
type Checkpoints interface {
	Save(ctx context.Context, key string, value interface{}) error
}

// Keeper runs the permissionless bank maintenance: interest accrual and
// staked settings propagation
type Keeper struct {
	worker.BaseJob
	banks       core.IBankStore
	settings    core.IStakedSettingsStore
	bankz       core.IBankService
	checkpoints Checkpoints
	concurrency int
}

// New new keeper worker
func New(
	cfg *core.Config,
	banks core.IBankStore,
	settings core.IStakedSettingsStore,
	bankz core.IBankService,
	checkpoints Checkpoints,
) (*Keeper, error) {
	k := &Keeper{
		banks:       banks,
		settings:    settings,
		bankz:       bankz,
		checkpoints: checkpoints,
		concurrency: cfg.Keeper.Concurrency,
	}

	k.Name = "keeper"
	k.OnWork = func(ctx context.Context) error {
		return k.onWork(ctx, time.Now())
	}

	if err := k.Schedule(cfg.App.Location, cfg.Keeper.Schedule); err != nil {
		return nil, err
	}

	return k, nil
}

func (k *Keeper) onWork(ctx context.Context, now time.Time) error {
	log := logger.FromContext(ctx)

	banks, err := k.banks.List(ctx)
	if err != nil {
		log.WithError(err).Errorln("banks.List")
		return err
	}

	settings, err := k.settings.Get(ctx)
	if err != nil {
		log.WithError(err).Errorln("settings.Get")
		return err
	}

	var failed int32
	limit := concurrency.NewGoLimit(k.concurrency)
	for _, bank := range banks {
		bank := bank
		limit.Go(func() {
			if err := k.maintain(ctx, bank, settings, now); err != nil {
				atomic.AddInt32(&failed, 1)
			}
		})
	}
	limit.Wait()

	if failed > 0 {
		log.Infof("keeper: %d of %d banks failed, retried next round", failed, len(banks))
		return nil
	}

	if err := k.checkpoints.Save(ctx, checkpointKey, now); err != nil {
		log.WithError(err).Errorln("property.Save", checkpointKey)
		return err
	}

	return nil
}

func (k *Keeper) maintain(ctx context.Context, bank *core.Bank, settings *core.StakedSettings, now time.Time) error {
	log := logger.FromContext(ctx).WithField("bank", bank.BankID)

	if _, err := k.bankz.AccrueInterest(ctx, bank.BankID, now); err != nil {
		if errors.Is(err, core.ErrConcurrentModification) {
			log.Debugln("accrue: bank moved, skipped")
		} else {
			log.WithError(err).Errorln("bankz.AccrueInterest")
		}

		return err
	}

	if settings == nil || !bank.IsStaked() || stakedSettingsApplied(bank, settings) {
		return nil
	}

	if _, err := k.bankz.PropagateStakedSettings(ctx, bank.BankID); err != nil {
		log.WithError(err).Errorln("bankz.PropagateStakedSettings")
		return err
	}

	log.Infoln("staked settings propagated")
	return nil
}

func stakedSettingsApplied(bank *core.Bank, settings *core.StakedSettings) bool {
	return bank.AssetWeightInit.Equal(settings.AssetWeightInit) &&
		bank.AssetWeightMaint.Equal(settings.AssetWeightMaint) &&
		bank.DepositLimit.Equal(settings.DepositLimit) &&
		bank.OracleID == settings.OracleID &&
		bank.OracleMaxAge == settings.OracleMaxAge &&
		bank.RiskTier == settings.RiskTier
}
