package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lendcore/core"
	"lendcore/pkg/number"
	"lendcore/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingOracle struct {
	reads int32
}

func (o *countingOracle) Read(ctx context.Context, oracleID string) (*core.OracleReading, error) {
	atomic.AddInt32(&o.reads, 1)
	if oracleID == "missing" {
		return nil, core.ErrOracleUnusable
	}

	return &core.OracleReading{OracleID: oracleID, Price: number.One, ObservedAt: time.Now()}, nil
}

func TestStoreOracle(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	o := New(mem.Prices())

	_, err := o.Read(ctx, "sol")
	assert.True(t, errors.Is(err, core.ErrOracleUnusable))

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, mem.Prices().Save(ctx, &core.Price{
		OracleID:   "sol",
		Price:      number.Decimal("100"),
		Confidence: number.Decimal("0.5"),
		ObservedAt: at,
	}))

	r, err := o.Read(ctx, "sol")
	require.NoError(t, err)
	assert.Equal(t, "100", r.Price.String())
	assert.Equal(t, "0.5", r.Confidence.String())
	assert.True(t, at.Equal(r.ObservedAt))
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	upstream := &countingOracle{}
	o := Cache(upstream, time.Minute)

	for i := 0; i < 3; i++ {
		r, err := o.Read(ctx, "sol")
		require.NoError(t, err)
		assert.Equal(t, "sol", r.OracleID)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&upstream.reads))

	// failures are not cached
	for i := 0; i < 2; i++ {
		_, err := o.Read(ctx, "missing")
		assert.True(t, errors.Is(err, core.ErrOracleUnusable))
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&upstream.reads))

	assert.Equal(t, upstream, Cache(upstream, 0))
}

func TestFeed(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/prices" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		assert.Equal(t, "sol,usdc", r.URL.Query().Get("oracles"))
		_ = json.NewEncoder(w).Encode([]*core.OracleReading{
			{OracleID: "sol", Price: number.Decimal("100"), Confidence: number.Decimal("0.1"), ObservedAt: at},
			{OracleID: "usdc", Price: number.One, Confidence: number.Decimal("0"), ObservedAt: at},
		})
	}))
	defer srv.Close()

	readings, err := NewFeed(srv.URL+"/").Pull(context.Background(), []string{"sol", "usdc"})
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, "100", readings[0].Price.String())
	assert.Equal(t, "0.1", readings[0].Confidence.String())
	assert.True(t, at.Equal(readings[1].ObservedAt))

	_, err = NewFeed(srv.URL+"/missing").Pull(context.Background(), []string{"sol"})
	assert.Error(t, err)
}
