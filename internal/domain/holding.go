package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Holding struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Currency     string          `json:"currency"`
	NetQuantity  decimal.Decimal `json:"net_quantity"`
	BoughtValue  decimal.Decimal `json:"bought_value"`
	SoldValue    decimal.Decimal `json:"sold_value"`
	TradeCount   int             `json:"trade_count"`
	FirstTradeAt time.Time       `json:"first_trade_at"`
	LastTradeAt  time.Time       `json:"last_trade_at"`
}
