// Package marketdata supplies OHLCV price series to the engine, either
// from flat files or from the bar store.
package marketdata

import (
	"context"
	"errors"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/storage"
)

// Provider errors.
var (
	ErrNoData = errors.New("no bars available for the requested range")
)

// Provider fetches a validated price series for one instrument.
type Provider interface {
	// Fetch returns bars for [start, end] in Unix ms, ordered by
	// timestamp. A zero start/end pair means the full series.
	Fetch(ctx context.Context, symbol, interval string, start, end int64) (*domain.PriceSeries, error)
}

// StoreProvider serves series out of a BarSeriesStore.
type StoreProvider struct {
	store storage.BarSeriesStore
}

var _ Provider = (*StoreProvider)(nil)

// NewStoreProvider creates a Provider backed by the given store.
func NewStoreProvider(store storage.BarSeriesStore) *StoreProvider {
	return &StoreProvider{store: store}
}

// Fetch implements Provider.
func (p *StoreProvider) Fetch(ctx context.Context, symbol, interval string, start, end int64) (*domain.PriceSeries, error) {
	var (
		series *domain.PriceSeries
		err    error
	)
	if start == 0 && end == 0 {
		series, err = p.store.GetBySymbol(ctx, symbol, interval)
	} else {
		series, err = p.store.GetByTimeRange(ctx, symbol, interval, start, end)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoData
		}
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}
