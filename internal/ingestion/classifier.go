package ingestion

import "github.com/jeovahfialho/t212-exporter/internal/domain"

const (
	headingInstrument = "history.instrument"

	subHeadingFilledBuy  = "history.order.filled.buy"
	subHeadingFilledSell = "history.order.filled.sell"
	subHeadingBuy        = "history.order.buy"
	subHeadingSell       = "history.order.sell"
)

type Action int

const (
	ActionIgnore Action = iota
	ActionSkip
	ActionResolve
)

func (a Action) String() string {
	switch a {
	case ActionSkip:
		return "skip"
	case ActionResolve:
		return "resolve"
	default:
		return "ignore"
	}
}

type Decision struct {
	Action    Action
	OrderType domain.OrderType
	// Unknown marca um sub-heading fora da taxonomia conhecida.
	Unknown bool
}

// Classify decide o que fazer com um registro da listagem. Nunca falha.
func Classify(record SummaryRecord) Decision {
	if record.HeadingKey() != headingInstrument {
		return Decision{Action: ActionIgnore}
	}

	switch record.SubHeadingKey() {
	case subHeadingFilledBuy:
		return Decision{Action: ActionResolve, OrderType: domain.OrderBuy}
	case subHeadingFilledSell:
		return Decision{Action: ActionResolve, OrderType: domain.OrderSell}
	case subHeadingBuy, subHeadingSell:
		// ordem colocada mas ainda não executada
		return Decision{Action: ActionSkip}
	default:
		return Decision{Action: ActionIgnore, Unknown: true}
	}
}
