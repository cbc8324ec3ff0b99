package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeovahfialho/t212-exporter/internal/domain"
	"github.com/shopspring/decimal"
)

// Listing é o envelope devolvido por {base}/all. Os registros ficam crus
// para que um registro com formato inesperado não derrube a janela inteira.
type Listing struct {
	Data []json.RawMessage `json:"data"`
}

// DecodeRecord decodifica um registro da listagem.
func DecodeRecord(raw json.RawMessage) (SummaryRecord, error) {
	var record SummaryRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return SummaryRecord{}, fmt.Errorf("registro da listagem malformado: %w", err)
	}
	return record, nil
}

// SummaryRecord é uma entrada da listagem de uma janela.
type SummaryRecord struct {
	Heading     *Label `json:"heading"`
	SubHeading  *Label `json:"subHeading"`
	DetailsPath string `json:"detailsPath"`
}

func (r SummaryRecord) HeadingKey() string {
	if r.Heading == nil {
		return ""
	}
	return r.Heading.Key
}

func (r SummaryRecord) SubHeadingKey() string {
	if r.SubHeading == nil {
		return ""
	}
	return r.SubHeading.Key
}

type Label struct {
	Key     string  `json:"key"`
	Context Context `json:"context,omitempty"`
}

// Pair é um par description/value de uma seção ou linha.
type Pair struct {
	Description Label `json:"description"`
	Value       Label `json:"value"`
}

// DetailDocument é o documento de detalhe de uma ordem.
type DetailDocument struct {
	Heading  Label     `json:"heading"`
	Sections []Section `json:"sections"`
}

type SectionKind int

const (
	SectionEmpty SectionKind = iota
	SectionLeaf
	SectionGroup
)

// Section é Leaf (um par direto) ou Group (uma lista de linhas). Uma folha
// também pode trazer linhas, pesquisadas depois da sua description.
type Section struct {
	Kind SectionKind
	Leaf Pair
	Rows []Pair
}

func LeafSection(p Pair, rows ...Pair) Section {
	return Section{Kind: SectionLeaf, Leaf: p, Rows: rows}
}

func GroupSection(rows ...Pair) Section {
	return Section{Kind: SectionGroup, Rows: rows}
}

func (s *Section) UnmarshalJSON(data []byte) error {
	var raw struct {
		Description *Label    `json:"description"`
		Value       Label     `json:"value"`
		Rows        []*rawRow `json:"rows"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var rows []Pair
	for _, r := range raw.Rows {
		// linhas sem description não são pesquisáveis
		if r == nil || r.Description == nil {
			continue
		}
		rows = append(rows, Pair{Description: *r.Description, Value: r.Value})
	}

	switch {
	case raw.Description != nil:
		*s = LeafSection(Pair{Description: *raw.Description, Value: raw.Value}, rows...)
	case raw.Rows != nil:
		*s = GroupSection(rows...)
	default:
		*s = Section{Kind: SectionEmpty}
	}
	return nil
}

func (s Section) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case SectionLeaf:
		return json.Marshal(struct {
			Pair
			Rows []Pair `json:"rows,omitempty"`
		}{Pair: s.Leaf, Rows: s.Rows})
	case SectionGroup:
		return json.Marshal(struct {
			Rows []Pair `json:"rows"`
		}{Rows: s.Rows})
	default:
		return []byte("{}"), nil
	}
}

type rawRow struct {
	Description *Label `json:"description"`
	Value       Label  `json:"value"`
}

// Context guarda o objeto "context" de um valor, cujo formato depende da chave.
type Context map[string]json.RawMessage

// FieldError indica um campo ausente ou com tipo inesperado.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("campo %q ausente", e.Field)
	}
	return fmt.Sprintf("campo %q malformado: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func (c Context) raw(field string) (json.RawMessage, error) {
	v, ok := c[field]
	if !ok || len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil, &FieldError{Field: field}
	}
	return v, nil
}

func (c Context) String(field string) (string, error) {
	v, err := c.raw(field)
	if err != nil {
		return "", err
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", &FieldError{Field: field, Err: err}
	}
	return s, nil
}

func (c Context) Decimal(field string) (decimal.Decimal, error) {
	v, err := c.raw(field)
	if err != nil {
		return decimal.Zero, err
	}

	var d decimal.Decimal
	if err := d.UnmarshalJSON(v); err != nil {
		return decimal.Zero, &FieldError{Field: field, Err: err}
	}
	return d, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05",
}

// Time lê um timestamp ISO 8601. Sem fuso explícito, assume UTC.
func (c Context) Time(field string) (time.Time, error) {
	s, err := c.String(field)
	if err != nil {
		return time.Time{}, err
	}

	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return domain.FixedOffset(t), nil
		}
		lastErr = err
	}
	return time.Time{}, &FieldError{Field: field, Err: lastErr}
}
