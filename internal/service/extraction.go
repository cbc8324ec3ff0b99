package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jeovahfialho/t212-exporter/internal/config"
	"github.com/jeovahfialho/t212-exporter/internal/ingestion"
	"github.com/jeovahfialho/t212-exporter/internal/storage/jsonfile"
	"github.com/jeovahfialho/t212-exporter/pkg/logger"
	"go.uber.org/zap"
)

// SessionFactory abre uma sessão nova com a corretora.
type SessionFactory func(ctx context.Context) (ingestion.Session, error)

type ExtractionService struct {
	openSession SessionFactory
	options     []ingestion.FetcherOption
}

func NewExtractionService(openSession SessionFactory, opts ...ingestion.FetcherOption) *ExtractionService {
	return &ExtractionService{
		openSession: openSession,
		options:     opts,
	}
}

type ExtractionReport struct {
	OutputFile   string
	Transactions int
	Windows      int
	Skipped      int
	Ignored      int
	Failed       int
	Duration     time.Duration
}

// Run abre a sessão, faz login, percorre o intervalo e grava o arquivo JSON.
// A sessão é fechada em qualquer caminho de saída. Nada é gravado se a
// busca falhar.
func (s *ExtractionService) Run(ctx context.Context, dates config.DateRange, outputFile string) (report *ExtractionReport, err error) {
	start := time.Now()

	session, err := s.openSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir sessão: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Warn("erro ao fechar sessão", zap.Error(closeErr))
		}
	}()

	if err := session.Login(ctx); err != nil {
		return nil, fmt.Errorf("erro no login: %w", err)
	}

	logger.Info("buscando transações",
		zap.String("start_date", dates.Start.Format("2006-01-02")),
		zap.String("end_date", dates.End.Format("2006-01-02")))

	fetcher := ingestion.NewFetcher(session, s.options...)
	result, err := fetcher.Fetch(ctx, dates.Start, dates.End)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar transações: %w", err)
	}

	if err := jsonfile.WriteTransactions(outputFile, result.Transactions); err != nil {
		return nil, fmt.Errorf("erro ao gravar %s: %w", outputFile, err)
	}

	report = &ExtractionReport{
		OutputFile:   outputFile,
		Transactions: len(result.Transactions),
		Windows:      result.Windows,
		Skipped:      result.Skipped,
		Ignored:      result.Ignored,
		Failed:       result.Failed,
		Duration:     time.Since(start),
	}

	logger.Info("extração concluída",
		zap.Int("transactions", report.Transactions),
		zap.Int("windows", report.Windows),
		zap.Int("skipped", report.Skipped),
		zap.Int("ignored", report.Ignored),
		zap.Int("failed", report.Failed),
		zap.String("output", outputFile))

	return report, nil
}

// NewHTTPSessionFactory monta sessões HTTP a partir da configuração.
func NewHTTPSessionFactory(cfg *config.Config) SessionFactory {
	return func(ctx context.Context) (ingestion.Session, error) {
		if err := cfg.ValidateCredentials(); err != nil {
			return nil, err
		}
		return ingestion.NewHTTPSession(ingestion.SessionConfig{
			Email:      cfg.Email,
			Password:   cfg.Password,
			LoginURL:   cfg.LoginURL,
			ConfirmURL: cfg.ConfirmURL,
			LoginWait:  cfg.LoginWait,
		})
	}
}
