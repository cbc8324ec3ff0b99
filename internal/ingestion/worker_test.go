package ingestion

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jeovahfialho/t212-exporter/internal/domain"
	"github.com/jeovahfialho/t212-exporter/internal/storage/jsonfile"
)

type recordingLoader struct {
	mu     sync.Mutex
	loaded int
	err    error
}

func (r *recordingLoader) LoadTransactions(_ context.Context, txs []domain.Transaction) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded += len(txs)
	return int64(len(txs)), nil
}

func TestWorkerPoolLoadsFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.json"),
	}
	if err := jsonfile.WriteTransactions(files[0], generateTestTransactions(3)); err != nil {
		t.Fatal(err)
	}
	if err := jsonfile.WriteTransactions(files[1], generateTestTransactions(4)); err != nil {
		t.Fatal(err)
	}
	files = append(files, filepath.Join(dir, "nao-existe.json"))

	loader := &recordingLoader{}
	pool := NewWorkerPool(2, loader)
	pool.Start(context.Background())

	results := make(chan JobResult, len(files))
	for _, f := range files {
		pool.Submit(Job{FilePath: f, Result: results})
	}

	var total int64
	var failed int
	for range files {
		r := <-results
		if r.Error != nil {
			failed++
			continue
		}
		total += r.RecordsCount
	}
	pool.Stop()

	if total != 7 || loader.loaded != 7 {
		t.Errorf("total=%d loaded=%d, esperava 7", total, loader.loaded)
	}
	if failed != 1 {
		t.Errorf("falhas = %d, esperava 1", failed)
	}
}

func TestWorkerPoolReportsLoaderError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	if err := jsonfile.WriteTransactions(path, generateTestTransactions(1)); err != nil {
		t.Fatal(err)
	}

	pool := NewWorkerPool(1, &recordingLoader{err: errors.New("banco fora")})
	pool.Start(context.Background())
	defer pool.Stop()

	results := make(chan JobResult, 1)
	pool.Submit(Job{FilePath: path, Result: results})

	if r := <-results; r.Error == nil {
		t.Error("esperava erro do loader")
	}
}

func TestWorkerPoolAnswersJobsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := &recordingLoader{}
	pool := NewWorkerPool(2, loader)
	pool.Start(ctx)

	files := []string{"a.json", "b.json", "c.json"}
	results := make(chan JobResult, len(files))
	for _, f := range files {
		pool.Submit(Job{FilePath: f, Result: results})
	}
	pool.Stop()

	for range files {
		r := <-results
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("%s: erro = %v, esperava context.Canceled", r.FilePath, r.Error)
		}
	}
	if loader.loaded != 0 {
		t.Errorf("loaded = %d, esperava 0", loader.loaded)
	}
}
