package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jeovahfialho/t212-exporter/internal/domain"
	"github.com/jeovahfialho/t212-exporter/pkg/metrics"
)

// Header é o cabeçalho do CSV de importação de portfólio do Yahoo Finance.
var Header = []string{
	"Symbol",
	"Current Price",
	"Date",
	"Time",
	"Change",
	"Open",
	"High",
	"Low",
	"Volume",
	"Trade Date",
	"Purchase Price",
	"Quantity",
	"Commission",
	"High Limit",
	"Low Limit",
	"Comment",
}

// Row é uma linha do CSV. Colunas sem origem ficam em branco.
type Row struct {
	Symbol        string
	CurrentPrice  string
	Date          string
	Time          string
	Change        string
	Open          string
	High          string
	Low           string
	Volume        string
	TradeDate     string
	PurchasePrice string
	Quantity      string
	Commission    string
	HighLimit     string
	LowLimit      string
	Comment       string
}

func (r Row) Record() []string {
	return []string{
		r.Symbol,
		r.CurrentPrice,
		r.Date,
		r.Time,
		r.Change,
		r.Open,
		r.High,
		r.Low,
		r.Volume,
		r.TradeDate,
		r.PurchasePrice,
		r.Quantity,
		r.Commission,
		r.HighLimit,
		r.LowLimit,
		r.Comment,
	}
}

type Projector struct {
	mapper *SymbolMapper
}

func NewProjector(mapper *SymbolMapper) *Projector {
	if mapper == nil {
		mapper = DefaultSymbolMapper()
	}
	return &Projector{mapper: mapper}
}

// Project converte as transações em linhas, na mesma ordem.
func (p *Projector) Project(transactions []domain.Transaction) []Row {
	rows := make([]Row, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, p.ProjectOne(tx))
	}
	return rows
}

func (p *Projector) ProjectOne(tx domain.Transaction) Row {
	return Row{
		Symbol:        p.mapper.MapSymbol(tx),
		Date:          tx.TradeDate.Format("2006/01/02"),
		Time:          tx.TradeDate.Format("15:04") + " " + zoneLabel(tx.TradeDate),
		TradeDate:     tx.TradeDate.Format("20060102"),
		PurchasePrice: tx.Price.String(),
		Quantity:      tx.SignedQuantity().String(),
	}
}

// zoneLabel devolve UTC ou UTC±hh:mm a partir do offset. O nome do fuso é
// ignorado para que a saída não dependa do fuso da máquina.
func zoneLabel(t time.Time) string {
	_, offset := t.Zone()
	if offset == 0 {
		return "UTC"
	}

	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offset/3600, (offset%3600)/60)
}

// Write grava o cabeçalho fixo e as linhas, sem reordenar nem omitir colunas.
func Write(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("erro ao escrever cabeçalho: %w", err)
	}

	for i, row := range rows {
		if err := writer.Write(row.Record()); err != nil {
			return fmt.Errorf("erro ao escrever linha %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("erro ao finalizar CSV: %w", err)
	}

	metrics.RowsExported.Add(float64(len(rows)))
	return nil
}
