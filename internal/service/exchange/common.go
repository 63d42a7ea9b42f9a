// Package exchange holds the per-venue API clients. Each one implements
// repository.CandleSource and/or repository.TradeSource.
package exchange

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/domain/repository"
	pkghttp "OrderFlow/pkg/http"
)

// rest is the shared part of the plain REST adapters.
type rest struct {
	id      string
	baseURL string
	client  *pkghttp.Client
}

func newRest(id, baseURL, fallbackURL string, client *pkghttp.Client) rest {
	if baseURL == "" {
		baseURL = fallbackURL
	}
	if client == nil {
		client = pkghttp.NewClient()
	}
	return rest{id: id, baseURL: baseURL, client: client}
}

func unsupported(venue string, tf repository.Timeframe) error {
	return errors.Wrapf(models.ErrUnsupportedInterval, "%s %s", venue, tf)
}

// num parses an exchange number that may arrive as a string, json.Number or float64.
func num(v interface{}) (float64, error) {
	switch x := v.(type) {
	case string:
		return decimalFloat(x)
	case json.Number:
		return decimalFloat(x.String())
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case nil:
		return 0, errors.New("missing value")
	default:
		return 0, fmt.Errorf("unexpected number type %T", v)
	}
}

func integer(v interface{}) (int64, error) {
	switch x := v.(type) {
	case string:
		return strconv.ParseInt(x, 10, 64)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		return int64(f), err
	case float64:
		return int64(x), nil
	case int64:
		return x, nil
	default:
		return 0, fmt.Errorf("unexpected integer type %T", v)
	}
}

func decimalFloat(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// ohlcvIdx gives the column of each field in a venue's array row.
type ohlcvIdx struct {
	ts, open, high, low, close, volume int
	tsSeconds                          bool
}

func (ix ohlcvIdx) maxCol() int {
	m := ix.ts
	for _, c := range []int{ix.open, ix.high, ix.low, ix.close, ix.volume} {
		if c > m {
			m = c
		}
	}
	return m
}

// parseRows converts array rows into ascending candles.
func parseRows(venue string, rows [][]interface{}, ix ohlcvIdx) ([]models.RawCandle, error) {
	out := make([]models.RawCandle, 0, len(rows))
	for i, row := range rows {
		if len(row) <= ix.maxCol() {
			return nil, errors.Errorf("%s: row %d has %d columns", venue, i, len(row))
		}
		ts, err := integer(row[ix.ts])
		if err != nil {
			return nil, errors.Wrapf(err, "%s: parse timestamp at row %d", venue, i)
		}
		if ix.tsSeconds {
			ts *= 1000
		}
		var vals [5]float64
		for j, col := range []int{ix.open, ix.high, ix.low, ix.close, ix.volume} {
			if vals[j], err = num(row[col]); err != nil {
				return nil, errors.Wrapf(err, "%s: parse column %d at row %d", venue, col, i)
			}
		}
		out = append(out, models.RawCandle{
			Timestamp: ts,
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}
	sortAscending(out)
	return out, nil
}

// sortAscending orders candles oldest first. Several venues answer newest first.
func sortAscending(c []models.RawCandle) {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Timestamp < c[j].Timestamp })
}

func clampLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}
