package jsonfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeovahfialho/t212-exporter/internal/domain"
	"github.com/shopspring/decimal"
)

func TestWriteReadPreservesTransactions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "transactions.json")

	tradeDate := time.Date(2021, 1, 4, 14, 30, 5, 0, time.FixedZone("", 2*3600))
	in := []domain.Transaction{
		{
			Name:      "Société Générale",
			Symbol:    "GLE",
			TradeDate: tradeDate,
			Price:     decimal.RequireFromString("12.345"),
			Quantity:  decimal.RequireFromString("0.5"),
			Currency:  "EUR",
			OrderType: domain.OrderBuy,
		},
		{
			Name:      "Vodafone",
			Symbol:    "VOD",
			TradeDate: tradeDate.Add(time.Hour),
			Price:     decimal.RequireFromString("120.1"),
			Quantity:  decimal.NewFromInt(5),
			Currency:  "GBX",
			OrderType: domain.OrderSell,
		},
	}

	if err := WriteTransactions(path, in); err != nil {
		t.Fatalf("WriteTransactions: %v", err)
	}

	out, err := ReadTransactions(path)
	if err != nil {
		t.Fatalf("ReadTransactions: %v", err)
	}

	if len(out) != len(in) {
		t.Fatalf("esperava %d transações, obteve %d", len(in), len(out))
	}
	for i := range in {
		a, b := in[i], out[i]
		if a.Name != b.Name || a.Symbol != b.Symbol || a.Currency != b.Currency || a.OrderType != b.OrderType {
			t.Errorf("transação %d difere: %+v != %+v", i, a, b)
		}
		if !a.TradeDate.Equal(b.TradeDate) {
			t.Errorf("tradeDate %d: %v != %v", i, a.TradeDate, b.TradeDate)
		}
		if _, off := b.TradeDate.Zone(); off != 2*3600 {
			t.Errorf("fuso perdido: offset %d", off)
		}
		if !a.Price.Equal(b.Price) || !a.Quantity.Equal(b.Quantity) {
			t.Errorf("valores %d: %v/%v != %v/%v", i, a.Price, a.Quantity, b.Price, b.Quantity)
		}
	}
}

func TestEncodeFormat(t *testing.T) {
	data, err := Encode([]domain.Transaction{{
		Name:      "Apple",
		Symbol:    "AAPL",
		TradeDate: time.Date(2021, 1, 4, 9, 0, 0, 0, time.UTC),
		Price:     decimal.RequireFromString("130.5"),
		Quantity:  decimal.NewFromInt(2),
		Currency:  "USD",
		OrderType: domain.OrderBuy,
	}})
	if err != nil {
		t.Fatal(err)
	}

	s := string(data)
	for _, want := range []string{
		`    {`,
		`"name": "Apple"`,
		`"tradeDate": "2021-01-04T09:00:00Z"`,
		`"price": 130.5`,
		`"quantity": 2`,
		`"orderType": "buy"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("saída não contém %s:\n%s", want, s)
		}
	}
}

func TestEncodeEmptyIsArray(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("esperava [], obteve %s", data)
	}
}

func TestReadRejectsUnknownOrderType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	body := `[{"name":"X","symbol":"X","tradeDate":"2021-01-04T09:00:00Z","price":1,"quantity":1,"currency":"USD","orderType":"short"}]`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadTransactions(path); err == nil {
		t.Fatal("esperava erro para orderType desconhecido")
	}
}

func TestReadDropsHostZoneName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.json")
	body := `[{"name": "Vodafone", "symbol": "VOD", "tradeDate": "2021-06-04T14:30:00+01:00",
		"price": 120, "quantity": 5, "currency": "GBX", "orderType": "buy"}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	prev := time.Local
	time.Local = time.FixedZone("BST", 3600)
	defer func() { time.Local = prev }()

	out, err := ReadTransactions(path)
	if err != nil {
		t.Fatalf("ReadTransactions: %v", err)
	}

	if name, offset := out[0].TradeDate.Zone(); name != "" || offset != 3600 {
		t.Errorf("Zone() = %q, %d; esperava \"\", 3600", name, offset)
	}
}
