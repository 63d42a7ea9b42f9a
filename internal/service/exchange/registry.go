package exchange

import (
	"context"
	"fmt"
	"time"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/domain/repository"
	pkghttp "OrderFlow/pkg/http"
)

// Known venue IDs.
const (
	IDBinanceUS   = "binanceus"
	IDOKX         = "okx"
	IDGateIO      = "gateio"
	IDKraken      = "kraken"
	IDKuCoin      = "kucoin"
	IDCoinbase    = "coinbase"
	IDBybit       = "bybit"
	IDHyperliquid = "hyperliquid"
)

// SourceConfig is what the registry needs to build one venue client.
type SourceConfig struct {
	ID      string
	BaseURL string
	Timeout time.Duration
	Limiter pkghttp.Waiter
}

// NewCandleSource builds the candle client for a venue ID.
func NewCandleSource(cfg SourceConfig) (repository.CandleSource, error) {
	switch cfg.ID {
	case IDBinanceUS:
		return throttledCandles{NewBinanceUS(cfg.BaseURL), cfg.Limiter}, nil
	case IDOKX:
		return NewOKX(restClient(cfg), cfg.BaseURL), nil
	case IDGateIO:
		return NewGateIO(restClient(cfg), cfg.BaseURL), nil
	case IDKraken:
		return NewKraken(restClient(cfg), cfg.BaseURL), nil
	case IDKuCoin:
		return NewKuCoin(restClient(cfg), cfg.BaseURL), nil
	case IDCoinbase:
		return NewCoinbase(restClient(cfg), cfg.BaseURL), nil
	case IDBybit:
		return throttledCandles{NewBybit(cfg.BaseURL), cfg.Limiter}, nil
	case IDHyperliquid:
		return throttledCandles{NewHyperliquid(cfg.BaseURL), cfg.Limiter}, nil
	default:
		return nil, fmt.Errorf("unknown venue %q", cfg.ID)
	}
}

// NewTradeSource builds the trade client for a venue ID. Only Binance US serves trades.
func NewTradeSource(cfg SourceConfig) (repository.TradeSource, error) {
	if cfg.ID != IDBinanceUS {
		return nil, fmt.Errorf("venue %q has no trade-level source", cfg.ID)
	}
	return throttledTrades{NewBinanceUS(cfg.BaseURL), cfg.Limiter}, nil
}

func restClient(cfg SourceConfig) *pkghttp.Client {
	opts := []pkghttp.ClientOption{}
	if cfg.Timeout > 0 {
		opts = append(opts, pkghttp.WithTimeout(cfg.Timeout))
	}
	if cfg.Limiter != nil {
		opts = append(opts, pkghttp.WithLimiter(cfg.Limiter))
	}
	return pkghttp.NewClient(opts...)
}

// throttledCandles applies the venue limiter to SDK-backed clients.
type throttledCandles struct {
	repository.CandleSource
	limiter pkghttp.Waiter
}

func (t throttledCandles) FetchCandles(ctx context.Context, symbol string, tf repository.Timeframe, sinceMs, untilMs int64, limit int) ([]models.RawCandle, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return t.CandleSource.FetchCandles(ctx, symbol, tf, sinceMs, untilMs, limit)
}

type throttledTrades struct {
	repository.TradeSource
	limiter pkghttp.Waiter
}

func (t throttledTrades) FetchTrades(ctx context.Context, symbol string, sinceMs, untilMs int64, limit int) ([]models.RawTrade, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return t.TradeSource.FetchTrades(ctx, symbol, sinceMs, untilMs, limit)
}
