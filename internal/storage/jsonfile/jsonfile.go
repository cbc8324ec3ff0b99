// Package jsonfile lê e grava o arquivo intermediário de transações, o
// contrato entre a etapa de extração e a de exportação.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeovahfialho/t212-exporter/internal/domain"
)

func Encode(transactions []domain.Transaction) ([]byte, error) {
	if transactions == nil {
		transactions = []domain.Transaction{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(transactions); err != nil {
		return nil, fmt.Errorf("erro ao serializar transações: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTransactions grava o arquivo inteiro de uma vez, via arquivo
// temporário e rename.
func WriteTransactions(path string, transactions []domain.Transaction) error {
	data, err := Encode(transactions)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("erro ao criar diretório: %w", err)
		}
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("erro ao salvar arquivo: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("erro ao renomear arquivo: %w", err)
	}

	return nil
}

func ReadTransactions(path string) ([]domain.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir arquivo: %w", err)
	}

	var transactions []domain.Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, fmt.Errorf("erro ao ler transações de %s: %w", path, err)
	}

	for i, tx := range transactions {
		if !tx.OrderType.Valid() {
			return nil, fmt.Errorf("transação %d em %s: tipo de ordem inválido %q", i, path, tx.OrderType)
		}
		transactions[i].TradeDate = domain.FixedOffset(tx.TradeDate)
	}

	return transactions, nil
}
