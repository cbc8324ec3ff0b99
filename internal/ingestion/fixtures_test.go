package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
)

// fakeSource responde com corpos JSON fixos por URL.
type fakeSource struct {
	bodies map[string]string
	errs   map[string]error
	calls  []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		bodies: make(map[string]string),
		errs:   make(map[string]error),
	}
}

func (f *fakeSource) FetchJSON(_ context.Context, url string, dest any) error {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return err
	}
	body, ok := f.bodies[url]
	if !ok {
		return fmt.Errorf("status code: 404 para URL: %s", url)
	}
	return json.Unmarshal([]byte(body), dest)
}

func detailJSON(name, symbol, date, quantity, amount, currency string) string {
	return fmt.Sprintf(`{
	"heading": {"key": "history.instrument.heading", "context": {"prettyName": %q, "instrument": %q}},
	"sections": [
		{"description": {"key": "history.details.order.id.key"}, "value": {"key": "history.details.order.id.value", "context": {"id": 1001}}},
		{"rows": [
			{"description": {"key": "history.details.order.fill.price.key"}, "value": {"key": "history.currency", "context": {"amount": %s, "currency": %q}}},
			{"description": {"key": "history.details.order.fill.quantity.key"}, "value": {"key": "history.quantity", "context": {"quantity": %s}}},
			{"description": {"key": "history.details.order.fill.date-executed.key"}, "value": {"key": "history.date", "context": {"date": %q}}}
		]}
	]
}`, name, symbol, amount, currency, quantity, date)
}

func listingJSON(records ...string) string {
	return fmt.Sprintf(`{"data": [%s]}`, joinRecords(records))
}

func joinRecords(records []string) string {
	out := ""
	for i, r := range records {
		if i > 0 {
			out += ","
		}
		out += r
	}
	return out
}

func recordJSON(heading, subHeading, detailsPath string) string {
	return fmt.Sprintf(`{"heading": {"key": %q}, "subHeading": {"key": %q}, "detailsPath": %q}`,
		heading, subHeading, detailsPath)
}

func mustDecodeDetail(t *testing.T, body string) *DetailDocument {
	t.Helper()
	var doc DetailDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("documento inválido: %v", err)
	}
	return &doc
}
