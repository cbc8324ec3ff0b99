package service

import (
	"strings"
	"testing"
	"time"

	"github.com/jeovahfialho/t212-exporter/internal/domain"
)

func TestBuildListQuery(t *testing.T) {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filter   domain.TransactionFilter
		contains []string
		args     int
	}{
		{
			name:   "sem filtros",
			filter: domain.TransactionFilter{},
			args:   0,
		},
		{
			name:     "símbolo e tipo",
			filter:   domain.TransactionFilter{Symbol: "AAPL", OrderType: domain.OrderSell},
			contains: []string{"symbol = $1", "order_type = $2"},
			args:     2,
		},
		{
			name:     "intervalo e limite",
			filter:   domain.TransactionFilter{StartDate: &start, EndDate: &end, Limit: 10},
			contains: []string{"trade_date >= $1", "trade_date < $2", "LIMIT $3"},
			args:     3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.filter)
			for _, c := range tt.contains {
				if !strings.Contains(query, c) {
					t.Errorf("query sem %q:\n%s", c, query)
				}
			}
			if len(args) != tt.args {
				t.Errorf("args = %d, esperava %d", len(args), tt.args)
			}
			if !strings.Contains(query, "ORDER BY trade_date ASC") {
				t.Error("query sem ordenação")
			}
		})
	}
}

func TestBuildListQueryEndDateIsInclusive(t *testing.T) {
	end := time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC)
	_, args := buildListQuery(domain.TransactionFilter{EndDate: &end})

	got, ok := args[0].(time.Time)
	if !ok || !got.Equal(time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("limite superior = %v", args[0])
	}
}
