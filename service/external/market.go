package external

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"lendcore/core"
	"lendcore/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type market struct {
	endpoint string
}

// New external lending market reached through its http gateway.
// The gateway answers 409 Conflict when the refresh proof is missing or stale.
func New(endpoint string) core.IExternalMarket {
	return &market{endpoint: strings.TrimSuffix(endpoint, "/")}
}

func (m *market) url(format string, args ...interface{}) string {
	return m.endpoint + fmt.Sprintf(format, args...)
}

func (m *market) do(ctx context.Context, method, url string, body, out interface{}) error {
	logger.FromContext(ctx).Debugln("external:", method, url)

	req := resthttp.Request(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return err
	}

	return parse(resp, out)
}

func parse(resp *resty.Response, out interface{}) error {
	if resp.StatusCode() == http.StatusConflict {
		return fmt.Errorf("%w: %s", core.ErrExternalOrderingViolation, string(resp.Body()))
	}

	return resthttp.ParseResponse(resp, out)
}

func (m *market) RefreshReserve(ctx context.Context, marketID, reserveID, oracleID string) (*core.RefreshReceipt, error) {
	var receipt core.RefreshReceipt
	body := map[string]interface{}{"oracle_id": oracleID}
	if err := m.do(ctx, http.MethodPost, m.url("/markets/%s/reserves/%s/refresh", marketID, reserveID), body, &receipt); err != nil {
		return nil, err
	}

	return &receipt, nil
}

func (m *market) RefreshObligation(ctx context.Context, marketID, obligationID string, reserveIDs []string) (*core.RefreshReceipt, error) {
	var receipt core.RefreshReceipt
	body := map[string]interface{}{"reserve_ids": reserveIDs}
	if err := m.do(ctx, http.MethodPost, m.url("/markets/%s/obligations/%s/refresh", marketID, obligationID), body, &receipt); err != nil {
		return nil, err
	}

	return &receipt, nil
}

type transfer struct {
	Proof  []*core.RefreshReceipt `json:"proof"`
	Amount decimal.Decimal        `json:"amount"`
}

func (m *market) Deposit(ctx context.Context, proof []*core.RefreshReceipt, obligationID string, amount decimal.Decimal) error {
	return m.do(ctx, http.MethodPost, m.url("/obligations/%s/deposit", obligationID), transfer{Proof: proof, Amount: amount}, nil)
}

func (m *market) Withdraw(ctx context.Context, proof []*core.RefreshReceipt, obligationID string, amount decimal.Decimal) error {
	return m.do(ctx, http.MethodPost, m.url("/obligations/%s/withdraw", obligationID), transfer{Proof: proof, Amount: amount}, nil)
}

func (m *market) Position(ctx context.Context, marketID, obligationID, reserveID string) (*core.ExternalPosition, error) {
	var position core.ExternalPosition
	if err := m.do(ctx, http.MethodGet, m.url("/markets/%s/obligations/%s/reserves/%s", marketID, obligationID, reserveID), nil, &position); err != nil {
		return nil, err
	}

	return &position, nil
}
