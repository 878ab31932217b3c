package marketdata

import (
	"context"
	"strings"

	"github.com/rxtech-lab/argo-rules/internal/types"
)

// SeriesProvider supplies the daily history of symbols to the simulator.
type SeriesProvider interface {
	// GetSeries returns the full daily history of a symbol.
	GetSeries(ctx context.Context, symbol string) (types.Series, error)
	// JoinSeries aligns one field of several symbols by calendar day.
	JoinSeries(ctx context.Context, symbols []string, field types.Field) (*types.Table, error)
}

// NormalizeSymbol returns the canonical form of a ticker used for cache
// files and table columns.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
