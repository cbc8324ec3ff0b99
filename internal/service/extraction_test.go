package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeovahfialho/t212-exporter/internal/config"
	"github.com/jeovahfialho/t212-exporter/internal/ingestion"
	"github.com/jeovahfialho/t212-exporter/internal/storage/jsonfile"
)

const testBase = "https://broker.test/rest/history"

type fakeSession struct {
	bodies   map[string]string
	errs     map[string]error
	loginErr error
	closed   int
}

func (f *fakeSession) Login(context.Context) error { return f.loginErr }

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

func (f *fakeSession) FetchJSON(_ context.Context, url string, dest any) error {
	if err, ok := f.errs[url]; ok {
		return err
	}
	body, ok := f.bodies[url]
	if !ok {
		return fmt.Errorf("status code: 404 para URL: %s", url)
	}
	return json.Unmarshal([]byte(body), dest)
}

func factoryFor(s *fakeSession) SessionFactory {
	return func(context.Context) (ingestion.Session, error) { return s, nil }
}

func testRange() config.DateRange {
	return config.DateRange{
		Start: time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC),
	}
}

func listingURL() string {
	return testBase + "/all?newerThan=2021-01-04T00:00:00Z&olderThan=2021-01-05T00:00:00Z"
}

const appleDetail = `{
	"heading": {"context": {"prettyName": "Apple", "instrument": "AAPL"}},
	"sections": [{"rows": [
		{"description": {"key": "history.details.order.fill.date-executed.key"}, "value": {"context": {"date": "2021-01-04T14:30:00Z"}}},
		{"description": {"key": "history.details.order.fill.quantity.key"}, "value": {"context": {"quantity": 2}}},
		{"description": {"key": "history.details.order.fill.price.key"}, "value": {"context": {"amount": 130.5, "currency": "USD"}}}
	]}]
}`

func TestExtractionServiceWritesArtifact(t *testing.T) {
	session := &fakeSession{
		bodies: map[string]string{
			listingURL(): `{"data": [
				{"heading": {"key": "history.instrument"}, "subHeading": {"key": "history.order.filled.buy"}, "detailsPath": "/orders/1"},
				{"heading": {"key": "history.instrument"}, "subHeading": {"key": "history.order.buy"}, "detailsPath": "/orders/2"}
			]}`,
			testBase + "/orders/1": appleDetail,
		},
	}
	out := filepath.Join(t.TempDir(), "transactions.json")

	svc := NewExtractionService(factoryFor(session), ingestion.WithBaseURL(testBase))
	report, err := svc.Run(context.Background(), testRange(), out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Transactions != 1 || report.Skipped != 1 || report.Windows != 1 {
		t.Errorf("relatório = %+v", report)
	}
	if session.closed != 1 {
		t.Errorf("sessão fechada %d vezes", session.closed)
	}

	txs, err := jsonfile.ReadTransactions(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].Symbol != "AAPL" {
		t.Errorf("arquivo = %+v", txs)
	}
}

func TestExtractionServiceReleasesSessionOnListingFailure(t *testing.T) {
	session := &fakeSession{
		errs: map[string]error{listingURL(): errors.New("401")},
	}
	out := filepath.Join(t.TempDir(), "transactions.json")

	svc := NewExtractionService(factoryFor(session), ingestion.WithBaseURL(testBase))
	if _, err := svc.Run(context.Background(), testRange(), out); err == nil {
		t.Fatal("esperava erro")
	}

	if session.closed != 1 {
		t.Errorf("sessão fechada %d vezes", session.closed)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("nenhum arquivo deveria ser gravado após falha")
	}
}

func TestExtractionServiceReleasesSessionOnLoginFailure(t *testing.T) {
	session := &fakeSession{loginErr: errors.New("login recusado")}

	svc := NewExtractionService(factoryFor(session))
	if _, err := svc.Run(context.Background(), testRange(), filepath.Join(t.TempDir(), "x.json")); err == nil {
		t.Fatal("esperava erro")
	}
	if session.closed != 1 {
		t.Errorf("sessão fechada %d vezes", session.closed)
	}
}

func TestExtractionServiceSessionOpenFailure(t *testing.T) {
	svc := NewExtractionService(func(context.Context) (ingestion.Session, error) {
		return nil, errors.New("sem credenciais")
	})
	if _, err := svc.Run(context.Background(), testRange(), filepath.Join(t.TempDir(), "x.json")); err == nil {
		t.Fatal("esperava erro")
	}
}

func TestHTTPSessionFactoryRequiresCredentials(t *testing.T) {
	factory := NewHTTPSessionFactory(&config.Config{})
	if _, err := factory(context.Background()); err == nil {
		t.Fatal("esperava erro sem credenciais")
	}
}
