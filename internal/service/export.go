package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeovahfialho/t212-exporter/internal/export"
	"github.com/jeovahfialho/t212-exporter/internal/storage/jsonfile"
	"github.com/jeovahfialho/t212-exporter/pkg/logger"
	"go.uber.org/zap"
)

type ExportService struct {
	projector *export.Projector
}

func NewExportService(projector *export.Projector) *ExportService {
	if projector == nil {
		projector = export.NewProjector(nil)
	}
	return &ExportService{projector: projector}
}

// Run lê o arquivo JSON da extração e grava o CSV de importação.
func (s *ExportService) Run(ctx context.Context, inputFile, outputFile string) (int, error) {
	transactions, err := jsonfile.ReadTransactions(inputFile)
	if err != nil {
		return 0, err
	}

	logger.Info("escrevendo transações no CSV",
		zap.String("input", inputFile),
		zap.String("output", outputFile),
		zap.Int("transactions", len(transactions)))

	rows := s.projector.Project(transactions)

	if dir := filepath.Dir(outputFile); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("erro ao criar diretório: %w", err)
		}
	}

	file, err := os.Create(outputFile)
	if err != nil {
		return 0, fmt.Errorf("erro ao criar arquivo: %w", err)
	}

	if err := export.Write(file, rows); err != nil {
		file.Close()
		return 0, err
	}

	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("erro ao fechar arquivo: %w", err)
	}

	return len(rows), nil
}
