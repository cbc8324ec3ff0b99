package ingestion

import (
	"context"
	"fmt"
	"sync"

	"github.com/jeovahfialho/t212-exporter/internal/domain"
	"github.com/jeovahfialho/t212-exporter/internal/storage/jsonfile"
	"github.com/jeovahfialho/t212-exporter/pkg/logger"
	"github.com/jeovahfialho/t212-exporter/pkg/metrics"
	"go.uber.org/zap"
)

// TransactionLoader grava um lote de transações. Implementado por BulkLoader.
type TransactionLoader interface {
	LoadTransactions(ctx context.Context, transactions []domain.Transaction) (int64, error)
}

// WorkerPool carrega vários arquivos de transações em paralelo. Só toca o
// banco; a sessão com a corretora nunca passa por aqui.
//
// Todo Job submetido recebe exatamente um JobResult, inclusive depois do
// cancelamento do contexto.
type WorkerPool struct {
	workers int
	loader  TransactionLoader
	jobs    chan Job
	wg      sync.WaitGroup
}

type Job struct {
	FilePath string
	Result   chan<- JobResult
}

type JobResult struct {
	FilePath     string
	RecordsCount int64
	Error        error
}

func NewWorkerPool(workers int, loader TransactionLoader) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		loader:  loader,
		jobs:    make(chan Job, workers*2),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.run(ctx, i)
	}
}

// Stop fecha a fila e espera os jobs pendentes.
func (wp *WorkerPool) Stop() {
	close(wp.jobs)
	wp.wg.Wait()
}

func (wp *WorkerPool) Submit(job Job) {
	wp.jobs <- job
}

func (wp *WorkerPool) run(ctx context.Context, id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		if err := ctx.Err(); err != nil {
			job.Result <- JobResult{FilePath: job.FilePath, Error: err}
			continue
		}

		logger.Debug("carregando arquivo",
			zap.Int("worker", id),
			zap.String("file", job.FilePath))

		job.Result <- wp.load(ctx, job.FilePath)
	}
}

func (wp *WorkerPool) load(ctx context.Context, filePath string) JobResult {
	result := JobResult{FilePath: filePath}

	transactions, err := jsonfile.ReadTransactions(filePath)
	if err != nil {
		metrics.TransactionsLoaded.WithLabelValues("error").Inc()
		result.Error = fmt.Errorf("erro na leitura: %w", err)
		return result
	}

	result.RecordsCount, err = wp.loader.LoadTransactions(ctx, transactions)
	if err != nil {
		metrics.TransactionsLoaded.WithLabelValues("error").Inc()
		result.Error = fmt.Errorf("erro ao carregar: %w", err)
		return result
	}

	metrics.TransactionsLoaded.WithLabelValues("success").Add(float64(result.RecordsCount))
	return result
}
