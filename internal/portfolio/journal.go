package portfolio

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-rules/internal/logger"
	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/pkg/errors"
	"go.uber.org/zap"
)

// Journal records every transaction booked by a Ledger.
type Journal interface {
	Record(tx types.Transaction) error
	// Transactions returns the recorded transactions in booking order.
	Transactions() ([]types.Transaction, error)
	Close() error
}

// Exporter is implemented by journals that can persist themselves to a file.
type Exporter interface {
	Write(path string) error
}

// MemoryJournal keeps transactions in a slice.
type MemoryJournal struct {
	transactions []types.Transaction
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Record(tx types.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}

	j.transactions = append(j.transactions, tx)

	return nil
}

func (j *MemoryJournal) Transactions() ([]types.Transaction, error) {
	transactions := make([]types.Transaction, len(j.transactions))
	copy(transactions, j.transactions)

	return transactions, nil
}

func (j *MemoryJournal) Close() error {
	return nil
}

// DuckDBJournal stores transactions in an in-memory DuckDB table and exports
// them to Parquet.
type DuckDBJournal struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
	seq    int
}

func NewDuckDBJournal(log *logger.Logger) (*DuckDBJournal, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalFailed, "failed to open database", err)
	}

	journal := &DuckDBJournal{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := journal.Initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return journal, nil
}

// Initialize creates the transactions table.
func (j *DuckDBJournal) Initialize() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			seq INTEGER,
			id TEXT PRIMARY KEY,
			time TIMESTAMP,
			kind TEXT,
			symbol TEXT,
			quantity BIGINT,
			price DOUBLE,
			amount DOUBLE,
			fee DOUBLE,
			cash_after DOUBLE,
			memo TEXT,
			rule TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalFailed, "failed to create transactions table", err)
	}

	return nil
}

func (j *DuckDBJournal) Record(tx types.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}

	j.seq++

	_, err := j.sq.
		Insert("transactions").
		Columns("seq", "id", "time", "kind", "symbol", "quantity", "price", "amount", "fee", "cash_after", "memo", "rule").
		Values(j.seq, tx.ID, tx.Time, string(tx.Kind), tx.Symbol, tx.Quantity, tx.Price, tx.Amount, tx.Fee, tx.CashAfter, tx.Memo, tx.Rule).
		RunWith(j.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalFailed, "failed to insert transaction", err)
	}

	return nil
}

func (j *DuckDBJournal) Transactions() ([]types.Transaction, error) {
	rows, err := j.sq.
		Select("id", "time", "kind", "symbol", "quantity", "price", "amount", "fee", "cash_after", "memo", "rule").
		From("transactions").
		OrderBy("seq ASC").
		RunWith(j.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query transactions", err)
	}
	defer rows.Close()

	var transactions []types.Transaction

	for rows.Next() {
		var (
			tx   types.Transaction
			kind string
		)

		err := rows.Scan(&tx.ID, &tx.Time, &kind, &tx.Symbol, &tx.Quantity, &tx.Price, &tx.Amount, &tx.Fee, &tx.CashAfter, &tx.Memo, &tx.Rule)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan transaction", err)
		}

		tx.Kind = types.TransactionKind(kind)
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating transactions", err)
	}

	return transactions, nil
}

// Write exports the transactions table to a Parquet file at path.
func (j *DuckDBJournal) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeJournalFailed, "failed to create directory", err)
	}

	// COPY is not supported by squirrel
	_, err := j.db.Exec(fmt.Sprintf(`COPY (SELECT * EXCLUDE (seq) FROM transactions ORDER BY seq) TO '%s' (FORMAT PARQUET)`,
		strings.ReplaceAll(path, "'", "''")))
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalFailed, "failed to export transactions to Parquet", err)
	}

	j.logger.Info("Exported transactions", zap.String("path", path))

	return nil
}

func (j *DuckDBJournal) Close() error {
	return j.db.Close()
}
