package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// O arquivo intermediário e a API usam números JSON, não strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type OrderType string

const (
	OrderBuy  OrderType = "buy"
	OrderSell OrderType = "sell"
)

func (o OrderType) Valid() bool {
	return o == OrderBuy || o == OrderSell
}

// Transaction é uma ordem executada (filled) normalizada. Quantity é sempre
// positiva; o sinal de venda só é aplicado na exportação.
type Transaction struct {
	Name      string          `json:"name" db:"name"`
	Symbol    string          `json:"symbol" db:"symbol"`
	TradeDate time.Time       `json:"tradeDate" db:"trade_date"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  decimal.Decimal `json:"quantity" db:"quantity"`
	Currency  string          `json:"currency" db:"currency"`
	OrderType OrderType       `json:"orderType" db:"order_type"`
}

// SignedQuantity devolve a quantidade negativa para vendas.
func (t Transaction) SignedQuantity() decimal.Decimal {
	if t.OrderType == OrderSell {
		return t.Quantity.Neg()
	}
	return t.Quantity
}

// FixedOffset descarta o nome do fuso e mantém só o offset. time.Parse
// associa time.Local quando o offset coincide com o da máquina, o que faria
// o resultado depender de onde o programa roda.
func FixedOffset(t time.Time) time.Time {
	_, offset := t.Zone()
	if offset == 0 {
		return t.UTC()
	}
	return t.In(time.FixedZone("", offset))
}

type TransactionFilter struct {
	Symbol    string
	OrderType OrderType
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}
