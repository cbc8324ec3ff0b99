package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jeovahfialho/t212-exporter/internal/domain"
	"github.com/jeovahfialho/t212-exporter/pkg/metrics"
)

var transactionColumns = []string{
	"name",
	"symbol",
	"trade_date",
	"price",
	"quantity",
	"currency",
	"order_type",
}

type BulkLoader struct {
	pool      *pgxpool.Pool
	batchSize int
}

func NewBulkLoader(pool *pgxpool.Pool, batchSize int) *BulkLoader {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &BulkLoader{
		pool:      pool,
		batchSize: batchSize,
	}
}

// LoadTransactions substitui as transações do período coberto pelo lote,
// então carregar o mesmo arquivo duas vezes não duplica linhas.
func (l *BulkLoader) LoadTransactions(ctx context.Context, transactions []domain.Transaction) (loaded int64, err error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	timer := metrics.NewTimer()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.RecordDatabaseQuery("copy_transactions", status, timer.Elapsed().Seconds())
	}()

	first, last := tradeDateSpan(transactions)

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"DELETE FROM transactions WHERE trade_date >= $1 AND trade_date <= $2",
		first, last); err != nil {
		return 0, fmt.Errorf("erro ao limpar período: %w", err)
	}

	var total int64
	for _, chunk := range l.splitIntoChunks(transactions) {
		count, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"transactions"},
			transactionColumns,
			&transactionSource{transactions: chunk},
		)
		if err != nil {
			return total, fmt.Errorf("erro no COPY: %w", err)
		}
		total += count
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("erro no commit: %w", err)
	}

	return total, nil
}

type transactionSource struct {
	transactions []domain.Transaction
	index        int
}

func (ts *transactionSource) Next() bool {
	ts.index++
	return ts.index <= len(ts.transactions)
}

func (ts *transactionSource) Values() ([]interface{}, error) {
	if ts.index > len(ts.transactions) {
		return nil, nil
	}

	t := ts.transactions[ts.index-1]
	return []interface{}{
		t.Name,
		t.Symbol,
		t.TradeDate,
		t.Price,
		t.Quantity,
		t.Currency,
		string(t.OrderType),
	}, nil
}

func (ts *transactionSource) Err() error {
	return nil
}

func (l *BulkLoader) splitIntoChunks(transactions []domain.Transaction) [][]domain.Transaction {
	var chunks [][]domain.Transaction

	for i := 0; i < len(transactions); i += l.batchSize {
		end := i + l.batchSize
		if end > len(transactions) {
			end = len(transactions)
		}
		chunks = append(chunks, transactions[i:end])
	}

	return chunks
}

func tradeDateSpan(transactions []domain.Transaction) (time.Time, time.Time) {
	lo, hi := transactions[0].TradeDate, transactions[0].TradeDate
	for _, t := range transactions[1:] {
		if t.TradeDate.Before(lo) {
			lo = t.TradeDate
		}
		if t.TradeDate.After(hi) {
			hi = t.TradeDate
		}
	}
	return lo, hi
}
