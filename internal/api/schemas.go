package api

import (
	"time"

	"github.com/jeovahfialho/t212-exporter/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionDTO struct {
	Name           string          `json:"name"`
	Symbol         string          `json:"symbol"`
	TradeDate      time.Time       `json:"trade_date"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	SignedQuantity decimal.Decimal `json:"signed_quantity"`
	Currency       string          `json:"currency"`
	OrderType      string          `json:"order_type"`
}

func toTransactionDTO(tx domain.Transaction) TransactionDTO {
	return TransactionDTO{
		Name:           tx.Name,
		Symbol:         tx.Symbol,
		TradeDate:      tx.TradeDate,
		Price:          tx.Price,
		Quantity:       tx.Quantity,
		SignedQuantity: tx.SignedQuantity(),
		Currency:       tx.Currency,
		OrderType:      string(tx.OrderType),
	}
}

type TransactionListResponse struct {
	Data           []TransactionDTO `json:"data"`
	Count          int              `json:"count"`
	ProcessingTime string           `json:"processing_time,omitempty"`
}

type HoldingsResponse struct {
	Data           []domain.Holding `json:"data"`
	CacheHit       bool             `json:"cache_hit"`
	ProcessingTime string           `json:"processing_time,omitempty"`
}

type HealthResponse struct {
	Status    string                   `json:"status"`
	Version   string                   `json:"version"`
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

type ServiceHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SystemStatsResponse struct {
	Database         DatabaseStats `json:"database"`
	MemoryUsed       string        `json:"memory_used"`
	ActiveGoroutines int           `json:"active_goroutines"`
}

type DatabaseStats struct {
	ActiveConnections int32  `json:"active_connections"`
	IdleConnections   int32  `json:"idle_connections"`
	TotalConnections  int32  `json:"total_connections"`
	WaitCount         int64  `json:"wait_count"`
	WaitDuration      string `json:"wait_duration"`
}

type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
