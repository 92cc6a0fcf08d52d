package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// EventType committed mutation type
type EventType string

const (
	EventBankCreate          EventType = "bank_create"
	EventBankConfigure       EventType = "bank_configure"
	EventAccrueInterest      EventType = "accrue_interest"
	EventAppreciationRefresh EventType = "appreciation_refresh"
	EventStakedSettings      EventType = "staked_settings_propagate"
	EventObligationCreate    EventType = "obligation_create"
	EventDeposit             EventType = "deposit"
	EventWithdraw            EventType = "withdraw"
	EventBorrow              EventType = "borrow"
	EventRepay               EventType = "repay"
	EventCloseBalance        EventType = "close_balance"
	EventWrappedDeposit      EventType = "wrapped_deposit"
	EventWrappedWithdraw     EventType = "wrapped_withdraw"
	EventWrappedRefresh      EventType = "wrapped_refresh"
)

// Event record of a committed mutation
type Event struct {
	ID           int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID      string          `sql:"size:36;unique_index:idx_events_trace_id" json:"trace_id"`
	Type         EventType       `sql:"size:32" json:"type"`
	ObligationID string          `sql:"size:36;index:idx_events_obligation_id" json:"obligation_id,omitempty"`
	Banks        pq.StringArray  `sql:"type:varchar(1024)" json:"banks"`
	Amount       decimal.Decimal `sql:"type:decimal(64,16)" json:"amount"`
	Data         types.JSONText  `sql:"type:text" json:"data,omitempty"`
	CreatedAt    time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// NewEvent event with data encoded as json
func NewEvent(traceID string, typ EventType, obligationID string, amount decimal.Decimal, data interface{}, banks ...string) *Event {
	event := &Event{
		TraceID:      traceID,
		Type:         typ,
		ObligationID: obligationID,
		Banks:        banks,
		Amount:       amount,
	}

	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			event.Data = b
		}
	}

	return event
}

// IEventStore event store interface
type IEventStore interface {
	Create(ctx context.Context, event *Event) error
	List(ctx context.Context, fromID int64, limit int) ([]*Event, error)
	ListByObligation(ctx context.Context, obligationID string, fromID int64, limit int) ([]*Event, error)
}
