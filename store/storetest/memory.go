// Package storetest in-memory stores sharing one state, for service tests
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"lendcore/core"

	"github.com/fox-one/pkg/store/db"
)

// Memory state behind every in-memory store
type Memory struct {
	// BeforeCommit runs at the start of every batch commit, tests use it to race a writer
	BeforeCommit func()

	mu          sync.Mutex
	seq         int64
	banks       map[string]*core.Bank
	obligations map[string]*core.Obligation
	prices      map[string]*core.Price
	events      []*core.Event
	settings    *core.StakedSettings
}

// New empty state
func New() *Memory {
	return &Memory{
		banks:       map[string]*core.Bank{},
		obligations: map[string]*core.Obligation{},
		prices:      map[string]*core.Price{},
	}
}

func (m *Memory) nextID() int64 {
	m.seq++
	return m.seq
}

// Banks bank store
func (m *Memory) Banks() core.IBankStore { return (*bankStore)(m) }

// Obligations obligation store
func (m *Memory) Obligations() core.IObligationStore { return (*obligationStore)(m) }

// Prices price store
func (m *Memory) Prices() core.IPriceStore { return (*priceStore)(m) }

// Events event store
func (m *Memory) Events() core.IEventStore { return (*eventStore)(m) }

// Settings staked settings store
func (m *Memory) Settings() core.IStakedSettingsStore { return (*settingsStore)(m) }

// Batch batch store
func (m *Memory) Batch() core.IBatchStore { return (*batchStore)(m) }

// Touch bumps the stored version of an obligation as a concurrent writer would
func (m *Memory) Touch(obligationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ob, ok := m.obligations[obligationID]; ok {
		ob.Version++
	}
}

type bankStore Memory

func (s *bankStore) Create(ctx context.Context, bank *core.Bank) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.banks[bank.BankID]; ok {
		*bank = *current
		return nil
	}

	bank.ID = (*Memory)(s).nextID()
	bank.CreatedAt = time.Now()
	bank.UpdatedAt = bank.CreatedAt
	s.banks[bank.BankID] = bank.Clone()
	return nil
}

func (s *bankStore) Find(ctx context.Context, bankID string) (*core.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, ok := s.banks[bankID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrBankNotFound, bankID)
	}

	return bank.Clone(), nil
}

func (s *bankStore) List(ctx context.Context) ([]*core.Bank, error) {
	return s.ListByKind(ctx, "")
}

func (s *bankStore) ListByKind(ctx context.Context, kind core.BankKind) ([]*core.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var banks []*core.Bank
	for _, bank := range s.banks {
		if kind == "" || bank.Kind == kind {
			banks = append(banks, bank.Clone())
		}
	}

	sort.Slice(banks, func(i, j int) bool { return banks[i].ID < banks[j].ID })
	return banks, nil
}

func (s *bankStore) Update(ctx context.Context, tx *db.DB, bank *core.Bank) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return (*Memory)(s).updateBank(bank)
}

func (m *Memory) checkBank(bank *core.Bank) error {
	current, ok := m.banks[bank.BankID]
	if !ok || current.Version != bank.Version {
		return fmt.Errorf("%w: bank %s version %d", core.ErrConcurrentModification, bank.BankID, bank.Version)
	}

	return nil
}

func (m *Memory) updateBank(bank *core.Bank) error {
	if err := m.checkBank(bank); err != nil {
		return err
	}

	bank.Version++
	bank.UpdatedAt = time.Now()
	m.banks[bank.BankID] = bank.Clone()
	return nil
}

type obligationStore Memory

func (s *obligationStore) Create(ctx context.Context, obligation *core.Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.obligations[obligation.ObligationID]; ok {
		*obligation = *current.Clone()
		return nil
	}

	obligation.ID = (*Memory)(s).nextID()
	obligation.CreatedAt = time.Now()
	obligation.UpdatedAt = obligation.CreatedAt
	s.obligations[obligation.ObligationID] = obligation.Clone()
	return nil
}

func (s *obligationStore) Find(ctx context.Context, obligationID string) (*core.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obligation, ok := s.obligations[obligationID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrObligationNotFound, obligationID)
	}

	return obligation.Clone(), nil
}

func (s *obligationStore) ListByOwner(ctx context.Context, owner string) ([]*core.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var obligations []*core.Obligation
	for _, ob := range s.obligations {
		if ob.Owner == owner {
			obligations = append(obligations, ob.Clone())
		}
	}

	sort.Slice(obligations, func(i, j int) bool { return obligations[i].ID < obligations[j].ID })
	return obligations, nil
}

func (s *obligationStore) Update(ctx context.Context, tx *db.DB, obligation *core.Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return (*Memory)(s).updateObligation(obligation)
}

func (m *Memory) checkObligation(obligation *core.Obligation) error {
	current, ok := m.obligations[obligation.ObligationID]
	if !ok || current.Version != obligation.Version {
		return fmt.Errorf("%w: obligation %s version %d", core.ErrConcurrentModification, obligation.ObligationID, obligation.Version)
	}

	return nil
}

func (m *Memory) updateObligation(obligation *core.Obligation) error {
	if err := m.checkObligation(obligation); err != nil {
		return err
	}

	obligation.Version++
	obligation.UpdatedAt = time.Now()
	m.obligations[obligation.ObligationID] = obligation.Clone()
	return nil
}

type priceStore Memory

func (s *priceStore) Save(ctx context.Context, price *core.Price) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.prices[price.OracleID]
	switch {
	case !ok:
		price.ID = (*Memory)(s).nextID()
	case price.ObservedAt.Before(current.ObservedAt):
		*price = *current
		return nil
	default:
		price.ID = current.ID
		price.Version = current.Version + 1
	}

	cp := *price
	s.prices[price.OracleID] = &cp
	return nil
}

func (s *priceStore) Find(ctx context.Context, oracleID string) (*core.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[oracleID]
	if !ok {
		return nil, fmt.Errorf("%w: no price for %s", core.ErrOracleUnusable, oracleID)
	}

	cp := *price
	return &cp, nil
}

func (s *priceStore) List(ctx context.Context) ([]*core.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prices []*core.Price
	for _, p := range s.prices {
		cp := *p
		prices = append(prices, &cp)
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i].OracleID < prices[j].OracleID })
	return prices, nil
}

type eventStore Memory

func (s *eventStore) Create(ctx context.Context, event *core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return (*Memory)(s).createEvent(event)
}

func (m *Memory) hasEvent(traceID string) bool {
	for _, e := range m.events {
		if e.TraceID == traceID {
			return true
		}
	}

	return false
}

func (m *Memory) createEvent(event *core.Event) error {
	if m.hasEvent(event.TraceID) {
		return fmt.Errorf("event %s exists", event.TraceID)
	}

	event.ID = m.nextID()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	cp := *event
	m.events = append(m.events, &cp)
	return nil
}

func (s *eventStore) List(ctx context.Context, fromID int64, limit int) ([]*core.Event, error) {
	return s.ListByObligation(ctx, "", fromID, limit)
}

func (s *eventStore) ListByObligation(ctx context.Context, obligationID string, fromID int64, limit int) ([]*core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []*core.Event
	for _, e := range s.events {
		if e.ID <= fromID || (obligationID != "" && e.ObligationID != obligationID) {
			continue
		}

		cp := *e
		events = append(events, &cp)
		if limit > 0 && len(events) >= limit {
			break
		}
	}

	return events, nil
}

type settingsStore Memory

func (s *settingsStore) Get(ctx context.Context) (*core.StakedSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings == nil {
		return nil, nil
	}

	cp := *s.settings
	return &cp, nil
}

func (s *settingsStore) Save(ctx context.Context, settings *core.StakedSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *settings
	s.settings = &cp
	return nil
}

type batchStore Memory

// Commit checks every version first, then runs the hooks, then applies the writes
func (s *batchStore) Commit(ctx context.Context, batch *core.Batch) error {
	if s.BeforeCommit != nil {
		s.BeforeCommit()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := (*Memory)(s)
	for _, bank := range batch.Banks {
		if bank.ID == 0 {
			if _, ok := m.banks[bank.BankID]; ok {
				return fmt.Errorf("bank %s exists", bank.BankID)
			}

			continue
		}

		if err := m.checkBank(bank); err != nil {
			return err
		}
	}

	for _, ob := range batch.Obligations {
		if ob.ID == 0 {
			if _, ok := m.obligations[ob.ObligationID]; ok {
				return fmt.Errorf("obligation %s exists", ob.ObligationID)
			}

			continue
		}

		if err := m.checkObligation(ob); err != nil {
			return err
		}
	}

	for _, e := range batch.Events {
		if m.hasEvent(e.TraceID) {
			return fmt.Errorf("event %s exists", e.TraceID)
		}
	}

	for _, hook := range batch.Hooks {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	now := time.Now()
	for _, bank := range batch.Banks {
		if bank.ID == 0 {
			bank.ID = m.nextID()
			bank.CreatedAt = now
		} else {
			bank.Version++
		}

		bank.UpdatedAt = now
		m.banks[bank.BankID] = bank.Clone()
	}

	for _, ob := range batch.Obligations {
		if ob.ID == 0 {
			ob.ID = m.nextID()
			ob.CreatedAt = now
		} else {
			ob.Version++
		}

		ob.UpdatedAt = now
		m.obligations[ob.ObligationID] = ob.Clone()
	}

	for _, e := range batch.Events {
		_ = m.createEvent(e)
	}

	return nil
}
