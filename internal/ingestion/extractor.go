package ingestion

import (
	"fmt"

	"github.com/jeovahfialho/t212-exporter/internal/domain"
)

const (
	keyDateExecuted = "history.details.order.fill.date-executed.key"
	keyQuantity     = "history.details.order.fill.quantity.key"
	keyPrice        = "history.details.order.fill.price.key"
)

// Extract monta uma Transaction a partir do documento de detalhe. Erros de
// Find são devolvidos sem tratamento; quem chama decide o que fazer.
func Extract(doc *DetailDocument, orderType domain.OrderType) (domain.Transaction, error) {
	if !orderType.Valid() {
		return domain.Transaction{}, fmt.Errorf("tipo de ordem inválido: %q", orderType)
	}

	name, err := doc.Heading.Context.String("prettyName")
	if err != nil {
		return domain.Transaction{}, err
	}

	symbol, err := doc.Heading.Context.String("instrument")
	if err != nil {
		return domain.Transaction{}, err
	}

	dateCtx, err := Find(doc, keyDateExecuted)
	if err != nil {
		return domain.Transaction{}, err
	}
	tradeDate, err := dateCtx.Time("date")
	if err != nil {
		return domain.Transaction{}, err
	}

	quantityCtx, err := Find(doc, keyQuantity)
	if err != nil {
		return domain.Transaction{}, err
	}
	quantity, err := quantityCtx.Decimal("quantity")
	if err != nil {
		return domain.Transaction{}, err
	}

	priceCtx, err := Find(doc, keyPrice)
	if err != nil {
		return domain.Transaction{}, err
	}
	price, err := priceCtx.Decimal("amount")
	if err != nil {
		return domain.Transaction{}, err
	}
	currency, err := priceCtx.String("currency")
	if err != nil {
		return domain.Transaction{}, err
	}

	return domain.Transaction{
		Name:      name,
		Symbol:    symbol,
		TradeDate: tradeDate,
		Price:     price,
		Quantity:  quantity,
		Currency:  currency,
		OrderType: orderType,
	}, nil
}
