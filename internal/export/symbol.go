package export

import (
	"github.com/jeovahfialho/t212-exporter/internal/domain"
	"github.com/jeovahfialho/t212-exporter/pkg/logger"
	"go.uber.org/zap"
)

const (
	londonSuffix  = ".L"
	unknownSymbol = "UNKNOWN"
)

// DefaultOverrides mapeia tickers da corretora para o ticker do Yahoo Finance
// quando a regra por moeda não basta.
var DefaultOverrides = map[string]string{
	"BTCE": "DE000A27Z304.SG",
	"WDI":  "WDI.DE",
	"ECAR": "ECAR.L",
}

// Rule devolve o símbolo mapeado e true quando se aplica à transação.
type Rule func(tx domain.Transaction) (string, bool)

// SymbolMapper avalia as regras em ordem; a primeira que se aplica vence.
// Sem regra aplicável, o símbolo original passa adiante.
type SymbolMapper struct {
	rules []Rule
}

func NewSymbolMapper(rules ...Rule) *SymbolMapper {
	return &SymbolMapper{rules: rules}
}

func DefaultSymbolMapper() *SymbolMapper {
	return NewSymbolMapper(
		OverrideRule(DefaultOverrides),
		CurrencySuffixRule("GBX", londonSuffix),
		CurrencySuffixRule("USD", ""),
	)
}

func OverrideRule(table map[string]string) Rule {
	return func(tx domain.Transaction) (string, bool) {
		mapped, ok := table[tx.Symbol]
		return mapped, ok && mapped != ""
	}
}

func CurrencySuffixRule(currency, suffix string) Rule {
	return func(tx domain.Transaction) (string, bool) {
		if tx.Currency != currency {
			return "", false
		}
		return tx.Symbol + suffix, true
	}
}

// MapSymbol aplica as regras em ordem e devolve o primeiro resultado. Sem
// regra aplicável, registra um aviso e devolve o símbolo inalterado. Se o
// símbolo estiver vazio, devolve o nome do instrumento, que pode conter
// espaços ou vírgulas, e por último "UNKNOWN", para que a coluna nunca fique
// vazia.
func (m *SymbolMapper) MapSymbol(tx domain.Transaction) string {
	for _, rule := range m.rules {
		if symbol, ok := rule(tx); ok && symbol != "" {
			return symbol
		}
	}

	logger.Warn("símbolo desconhecido",
		zap.String("symbol", tx.Symbol),
		zap.String("currency", tx.Currency))

	switch {
	case tx.Symbol != "":
		return tx.Symbol
	case tx.Name != "":
		return tx.Name
	default:
		return unknownSymbol
	}
}
