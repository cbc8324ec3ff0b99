package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/jeovahfialho/t212-exporter/internal/domain"
	"github.com/jeovahfialho/t212-exporter/pkg/logger"
	"github.com/jeovahfialho/t212-exporter/pkg/metrics"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://live.trading212.com/rest/history"
	DefaultWindow  = 24 * time.Hour

	windowLayout = "2006-01-02T15:04:05"
)

// Fetcher percorre um intervalo de datas em janelas fixas e resolve cada
// ordem executada em uma Transaction.
type Fetcher struct {
	listings Source
	details  Source
	baseURL  string
	window   time.Duration

	cache    Cache
	cacheTTL time.Duration
}

type FetcherOption func(*Fetcher)

func WithBaseURL(baseURL string) FetcherOption {
	return func(f *Fetcher) {
		if baseURL != "" {
			f.baseURL = baseURL
		}
	}
}

func WithWindow(window time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if window > 0 {
			f.window = window
		}
	}
}

// WithDetailCache faz as buscas de detalhe passarem pelo cache. A listagem
// nunca é cacheada.
func WithDetailCache(cache Cache, ttl time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.cache = cache
		f.cacheTTL = ttl
	}
}

func NewFetcher(source Source, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		listings: source,
		details:  source,
		baseURL:  DefaultBaseURL,
		window:   DefaultWindow,
	}
	for _, opt := range opts {
		opt(f)
	}
	// aplicado depois das opções para usar a URL base final
	if f.cache != nil {
		f.details = NewCachedSource(source, f.cache, f.cacheTTL, f.baseURL)
	}
	return f
}

type FetchResult struct {
	Transactions []domain.Transaction
	Windows      int
	Skipped      int
	Ignored      int
	Failed       int
}

// Fetch busca [start, end] com end inclusivo. A última janela pode passar
// de end. Uma falha na listagem aborta a execução; falhas de um registro
// são registradas e o laço continua.
func (f *Fetcher) Fetch(ctx context.Context, start, end time.Time) (*FetchResult, error) {
	result := &FetchResult{
		Transactions: make([]domain.Transaction, 0),
	}

	for cursor := start; !cursor.After(end); cursor = cursor.Add(f.window) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := f.fetchWindow(ctx, cursor, cursor.Add(f.window), result); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (f *Fetcher) ListingURL(start, end time.Time) string {
	return fmt.Sprintf("%s/all?newerThan=%sZ&olderThan=%sZ",
		f.baseURL,
		start.UTC().Format(windowLayout),
		end.UTC().Format(windowLayout))
}

func (f *Fetcher) DetailURL(detailsPath string) string {
	return f.baseURL + detailsPath
}

func (f *Fetcher) fetchWindow(ctx context.Context, start, end time.Time, result *FetchResult) error {
	timer := metrics.NewTimer()

	var listing Listing
	err := f.listings.FetchJSON(ctx, f.ListingURL(start, end), &listing)
	timer.ObserveDuration(metrics.FetchDuration.WithLabelValues("listing"))
	metrics.RecordWindow(err)
	if err != nil {
		return fmt.Errorf("erro ao buscar janela %s a %s: %w",
			start.Format(windowLayout), end.Format(windowLayout), err)
	}

	result.Windows++

	logger.Info("janela buscada",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("records", len(listing.Data)))

	for _, raw := range listing.Data {
		record, err := DecodeRecord(raw)
		if err != nil {
			logger.Error("falha ao processar transação",
				zap.ByteString("record", raw),
				zap.Error(err))
			result.Failed++
			metrics.RecordRecord("failed")
			continue
		}

		decision := Classify(record)

		switch decision.Action {
		case ActionSkip:
			result.Skipped++
			metrics.RecordRecord("skipped")
			continue
		case ActionIgnore:
			if decision.Unknown {
				logger.Warn("tipo de transação desconhecido, ignorando",
					zap.String("sub_heading", record.SubHeadingKey()),
					zap.String("details_path", record.DetailsPath))
			}
			result.Ignored++
			metrics.RecordRecord("ignored")
			continue
		}

		tx, err := f.resolve(ctx, record, decision.OrderType)
		if err != nil {
			logger.Error("falha ao processar transação",
				zap.String("heading", record.HeadingKey()),
				zap.String("sub_heading", record.SubHeadingKey()),
				zap.String("details_path", record.DetailsPath),
				zap.Error(err))
			result.Failed++
			metrics.RecordRecord("failed")
			continue
		}

		result.Transactions = append(result.Transactions, tx)
		metrics.RecordRecord("resolved")
	}

	return nil
}

func (f *Fetcher) resolve(ctx context.Context, record SummaryRecord, orderType domain.OrderType) (domain.Transaction, error) {
	if record.DetailsPath == "" {
		return domain.Transaction{}, fmt.Errorf("registro sem detailsPath")
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.FetchDuration.WithLabelValues("detail"))

	var doc DetailDocument
	if err := f.details.FetchJSON(ctx, f.DetailURL(record.DetailsPath), &doc); err != nil {
		return domain.Transaction{}, fmt.Errorf("erro ao buscar detalhes: %w", err)
	}

	return Extract(&doc, orderType)
}
