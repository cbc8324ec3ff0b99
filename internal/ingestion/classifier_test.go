package ingestion

import (
	"testing"

	"github.com/jeovahfialho/t212-exporter/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		record      SummaryRecord
		wantAction  Action
		wantType    domain.OrderType
		wantUnknown bool
	}{
		{
			name:       "compra executada",
			record:     SummaryRecord{Heading: &Label{Key: "history.instrument"}, SubHeading: &Label{Key: "history.order.filled.buy"}},
			wantAction: ActionResolve,
			wantType:   domain.OrderBuy,
		},
		{
			name:       "venda executada",
			record:     SummaryRecord{Heading: &Label{Key: "history.instrument"}, SubHeading: &Label{Key: "history.order.filled.sell"}},
			wantAction: ActionResolve,
			wantType:   domain.OrderSell,
		},
		{
			name:       "compra não executada",
			record:     SummaryRecord{Heading: &Label{Key: "history.instrument"}, SubHeading: &Label{Key: "history.order.buy"}},
			wantAction: ActionSkip,
		},
		{
			name:       "venda não executada",
			record:     SummaryRecord{Heading: &Label{Key: "history.instrument"}, SubHeading: &Label{Key: "history.order.sell"}},
			wantAction: ActionSkip,
		},
		{
			name:       "depósito",
			record:     SummaryRecord{Heading: &Label{Key: "history.deposit"}, SubHeading: &Label{Key: "history.order.filled.buy"}},
			wantAction: ActionIgnore,
		},
		{
			name:        "sub-heading desconhecido",
			record:      SummaryRecord{Heading: &Label{Key: "history.instrument"}, SubHeading: &Label{Key: "history.dividend"}},
			wantAction:  ActionIgnore,
			wantUnknown: true,
		},
		{
			name:        "sem sub-heading",
			record:      SummaryRecord{Heading: &Label{Key: "history.instrument"}},
			wantAction:  ActionIgnore,
			wantUnknown: true,
		},
		{
			name:       "registro vazio",
			record:     SummaryRecord{},
			wantAction: ActionIgnore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.record)
			if got.Action != tt.wantAction {
				t.Errorf("Action = %v, esperava %v", got.Action, tt.wantAction)
			}
			if got.OrderType != tt.wantType {
				t.Errorf("OrderType = %q, esperava %q", got.OrderType, tt.wantType)
			}
			if got.Unknown != tt.wantUnknown {
				t.Errorf("Unknown = %v, esperava %v", got.Unknown, tt.wantUnknown)
			}
		})
	}
}
