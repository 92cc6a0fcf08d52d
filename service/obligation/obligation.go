package obligation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"lendcore/core"
	"lendcore/pkg/lending"
	"lendcore/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	banks       core.IBankStore
	obligations core.IObligationStore
	batches     core.IBatchStore
	risk        core.IRiskEngine
	maxBalances int
}

// New new obligation service
func New(
	banks core.IBankStore,
	obligations core.IObligationStore,
	batches core.IBatchStore,
	risk core.IRiskEngine,
	cfg *core.Config,
) core.IObligationService {
	return &service{
		banks:       banks,
		obligations: obligations,
		batches:     batches,
		risk:        risk,
		maxBalances: cfg.App.MaxBalances,
	}
}

func (s *service) Create(ctx context.Context, req *core.CreateObligationRequest) (*core.Obligation, error) {
	log := logger.FromContext(ctx).WithField("owner", req.Owner)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.ObligationID == "" {
		req.ObligationID = uuid.New()
	}

	if _, err := s.obligations.Find(ctx, req.ObligationID); err == nil {
		return nil, fmt.Errorf("%w: obligation %s exists", core.ErrInvalidArgument, req.ObligationID)
	}

	obligation := core.NewObligation(req.ObligationID, req.Owner, s.maxBalances)
	event := core.NewEvent(uuid.New(), core.EventObligationCreate, obligation.ObligationID, decimal.Zero, req)
	if err := s.batches.Commit(ctx, new(core.Batch).AddObligation(obligation).AddEvent(event)); err != nil {
		log.WithError(err).Errorln("batches.Commit")
		return nil, err
	}

	return obligation, nil
}

func (s *service) Deposit(ctx context.Context, m *core.Mutation) (*core.Obligation, error) {
	return s.mutate(ctx, core.MutationDeposit, m)
}

func (s *service) Withdraw(ctx context.Context, m *core.Mutation) (*core.Obligation, error) {
	return s.mutate(ctx, core.MutationWithdraw, m)
}

func (s *service) Borrow(ctx context.Context, m *core.Mutation) (*core.Obligation, error) {
	return s.mutate(ctx, core.MutationBorrow, m)
}

func (s *service) Repay(ctx context.Context, m *core.Mutation) (*core.Obligation, error) {
	return s.mutate(ctx, core.MutationRepay, m)
}

func (s *service) CloseBalance(ctx context.Context, m *core.Mutation) (*core.Obligation, error) {
	return s.mutate(ctx, core.MutationCloseBalance, m)
}

// LoadBanks every bank referenced by the obligation plus extra, keyed by bank id
func LoadBanks(ctx context.Context, banks core.IBankStore, obligation *core.Obligation, extra ...string) (map[string]*core.Bank, error) {
	loaded := make(map[string]*core.Bank)
	for _, id := range append(obligation.BankIDs(), extra...) {
		if _, ok := loaded[id]; ok {
			continue
		}

		bank, err := banks.Find(ctx, id)
		if err != nil {
			return nil, err
		}

		loaded[id] = bank
	}

	return loaded, nil
}

// mutate runs one unit of work: load, accrue, apply, evaluate, commit.
// Every loaded bank is written back so a concurrent change to any of them fails the commit.
func (s *service) mutate(ctx context.Context, kind core.MutationKind, m *core.Mutation) (ob *core.Obligation, err error) {
	log := logger.FromContext(ctx).WithFields(map[string]interface{}{
		"trace":      m.TraceID,
		"obligation": m.ObligationID,
		"bank":       m.BankID,
		"mutation":   kind,
	})
	ctx = logger.WithContext(ctx, log)

	defer func() {
		result := "ok"
		if err != nil {
			result = errorName(err)
		}

		metrics.Lending().ObserveMutation(string(kind), result)
	}()

	if m.Kind != kind {
		return nil, fmt.Errorf("%w: %s request passed as %s", core.ErrInvalidArgument, m.Kind, kind)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	// one clock for the whole unit of work
	now := m.Now()

	current, err := s.obligations.Find(ctx, m.ObligationID)
	if err != nil {
		return nil, err
	}

	banks, err := LoadBanks(ctx, s.banks, current, m.BankID)
	if err != nil {
		return nil, err
	}

	for _, bank := range banks {
		lending.AccrueInterest(bank, now)
	}

	ob = current.Clone()
	amount, err := lending.ApplyMutation(ob, banks, m)
	if err != nil {
		log.WithError(err).Infoln("mutation rejected")
		return nil, err
	}

	if !kind.ReducesRisk() {
		if _, err := s.risk.Evaluate(ctx, ob, m, banks, now); err != nil {
			return nil, err
		}
	}

	batch := new(core.Batch).AddObligation(ob)
	ids := make([]string, 0, len(banks))
	for id, bank := range banks {
		batch.AddBank(bank)
		ids = append(ids, id)
	}
	sort.Strings(ids)

	batch.AddEvent(core.NewEvent(m.TraceID, core.EventType(kind), ob.ObligationID, amount, m, ids...))
	if err := s.batches.Commit(ctx, batch); err != nil {
		log.WithError(err).Errorln("batches.Commit")
		return nil, err
	}

	log.Debugf("%s %s committed", kind, amount)
	return ob, nil
}

func errorName(err error) string {
	var code core.ErrorCode
	if errors.As(err, &code) {
		return code.Name()
	}

	return "error"
}
