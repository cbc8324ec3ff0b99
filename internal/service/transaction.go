package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jeovahfialho/t212-exporter/internal/domain"
	"github.com/jeovahfialho/t212-exporter/pkg/logger"
	"github.com/jeovahfialho/t212-exporter/pkg/metrics"
	"go.uber.org/zap"
)

const holdingsCacheKey = "t212:holdings"

// HoldingsCache é o subconjunto do RedisCache usado pelo serviço.
type HoldingsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl ...time.Duration) error
	Delete(ctx context.Context, key string) error
}

type TransactionService struct {
	pool     *pgxpool.Pool
	cache    HoldingsCache
	cacheTTL time.Duration
}

func NewTransactionService(pool *pgxpool.Pool, cache HoldingsCache, cacheTTL time.Duration) *TransactionService {
	return &TransactionService{
		pool:     pool,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// buildListQuery monta a consulta de transações com os filtros informados.
func buildListQuery(filter domain.TransactionFilter) (string, []interface{}) {
	query := `
        SELECT
            name,
            symbol,
            trade_date,
            price,
            quantity,
            currency,
            order_type
        FROM transactions
        WHERE 1 = 1
    `

	var args []interface{}
	argCount := 0

	if filter.Symbol != "" {
		argCount++
		query += fmt.Sprintf(" AND symbol = $%d", argCount)
		args = append(args, filter.Symbol)
	}

	if filter.OrderType != "" {
		argCount++
		query += fmt.Sprintf(" AND order_type = $%d", argCount)
		args = append(args, string(filter.OrderType))
	}

	if filter.StartDate != nil {
		argCount++
		query += fmt.Sprintf(" AND trade_date >= $%d", argCount)
		args = append(args, *filter.StartDate)
	}

	if filter.EndDate != nil {
		argCount++
		query += fmt.Sprintf(" AND trade_date < $%d", argCount)
		args = append(args, filter.EndDate.AddDate(0, 0, 1))
	}

	query += " ORDER BY trade_date ASC, id ASC"

	if filter.Limit > 0 {
		argCount++
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filter.Limit)
	}

	return query, args
}

func (s *TransactionService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.DatabaseQueryDuration.WithLabelValues("list_transactions"))

	query, args := buildListQuery(filter)

	logger.Debug("executando query de transações",
		zap.String("symbol", filter.Symbol),
		zap.Any("start_date", filter.StartDate),
		zap.Any("end_date", filter.EndDate))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		metrics.DatabaseQueries.WithLabelValues("list_transactions", "error").Inc()
		return nil, fmt.Errorf("erro ao buscar transações: %w", err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		var tx domain.Transaction
		var orderType string

		err := rows.Scan(
			&tx.Name,
			&tx.Symbol,
			&tx.TradeDate,
			&tx.Price,
			&tx.Quantity,
			&tx.Currency,
			&orderType,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear transação: %w", err)
		}

		tx.OrderType = domain.OrderType(orderType)
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	metrics.DatabaseQueries.WithLabelValues("list_transactions", "success").Inc()
	return transactions, nil
}

// GetHoldings soma as posições por símbolo; vendas entram negativas.
func (s *TransactionService) GetHoldings(ctx context.Context) ([]domain.Holding, bool, error) {
	var cached []domain.Holding
	if s.cache != nil {
		if err := s.cache.Get(ctx, holdingsCacheKey, &cached); err == nil {
			metrics.RecordCacheHit()
			return cached, true, nil
		}
		metrics.RecordCacheMiss()
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.DatabaseQueryDuration.WithLabelValues("holdings"))

	query := `
        SELECT
            symbol,
            MAX(name) AS name,
            MAX(currency) AS currency,
            SUM(CASE WHEN order_type = 'sell' THEN -quantity ELSE quantity END) AS net_quantity,
            COALESCE(SUM(price * quantity) FILTER (WHERE order_type = 'buy'), 0) AS bought_value,
            COALESCE(SUM(price * quantity) FILTER (WHERE order_type = 'sell'), 0) AS sold_value,
            COUNT(*) AS trade_count,
            MIN(trade_date) AS first_trade_at,
            MAX(trade_date) AS last_trade_at
        FROM transactions
        GROUP BY symbol
        ORDER BY symbol
    `

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		metrics.DatabaseQueries.WithLabelValues("holdings", "error").Inc()
		return nil, false, fmt.Errorf("erro ao buscar posições: %w", err)
	}
	defer rows.Close()

	holdings := make([]domain.Holding, 0)
	for rows.Next() {
		var h domain.Holding
		err := rows.Scan(
			&h.Symbol,
			&h.Name,
			&h.Currency,
			&h.NetQuantity,
			&h.BoughtValue,
			&h.SoldValue,
			&h.TradeCount,
			&h.FirstTradeAt,
			&h.LastTradeAt,
		)
		if err != nil {
			return nil, false, fmt.Errorf("erro ao escanear posição: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	metrics.DatabaseQueries.WithLabelValues("holdings", "success").Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, holdingsCacheKey, holdings, s.cacheTTL); err != nil {
			logger.Warn("erro ao salvar posições no cache", zap.Error(err))
		}
	}

	return holdings, false, nil
}

// InvalidateHoldings descarta o cache de posições após uma carga.
func (s *TransactionService) InvalidateHoldings(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, holdingsCacheKey)
}
