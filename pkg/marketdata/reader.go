package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/pkg/errors"
)

// ReadBars loads every bar stored in a Parquet file produced by writer.DuckDBWriter,
// ordered by time.
func ReadBars(ctx context.Context, path string) ([]types.Bar, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheReadFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	source := fmt.Sprintf("read_parquet('%s')", strings.ReplaceAll(path, "'", "''"))

	query, args, err := squirrel.
		Select("time", "symbol", "open", "high", "low", "close", "adj_close", "volume", "dividend").
		From(source).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeCacheReadFailed, err, "failed to read %s", path)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var (
			t        time.Time
			symbol   string
			bar      types.Bar
			adjClose sql.NullFloat64
			dividend sql.NullFloat64
		)

		if err := rows.Scan(&t, &symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &adjClose, &bar.Volume, &dividend); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCacheReadFailed, "failed to scan bar", err)
		}

		bar.Time = types.Day(t)
		bar.Symbol = symbol
		bar.AdjClose = bar.Close

		if adjClose.Valid {
			bar.AdjClose = adjClose.Float64
		}

		if dividend.Valid {
			bar.Dividend = dividend.Float64
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheReadFailed, "failed to iterate bars", err)
	}

	return bars, nil
}
