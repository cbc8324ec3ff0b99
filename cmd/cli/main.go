package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeovahfialho/t212-exporter/internal/config"
	"github.com/jeovahfialho/t212-exporter/internal/export"
	"github.com/jeovahfialho/t212-exporter/internal/ingestion"
	"github.com/jeovahfialho/t212-exporter/internal/service"
	"github.com/jeovahfialho/t212-exporter/internal/storage/cache"
	"github.com/jeovahfialho/t212-exporter/internal/storage/postgres"
	"github.com/jeovahfialho/t212-exporter/pkg/logger"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "t212-exporter",
		Short: "Exporta transações da Trading 212",
		Long: `CLI para extrair o histórico de ordens executadas da Trading 212,
gravar o resultado em JSON e convertê-lo para o CSV de importação de
carteira do Yahoo Finance.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return logger.Init(cfg.LogLevel, cfg.Environment == "development")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
		SilenceUsage: true,
	}

	// Comando fetch
	var fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Extrai as transações para um arquivo JSON",
		Long: `Faz login na Trading 212, percorre o intervalo de datas em janelas
de um dia e grava as ordens executadas em JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dates, err := fetchConfig(cmd)
			if err != nil {
				return err
			}
			useCache, _ := cmd.Flags().GetBool("cache")

			_, err = runFetch(cmd.Context(), cfg, dates, useCache || cfg.DetailCacheEnabled)
			return err
		},
	}
	addFetchFlags(fetchCmd)

	// Comando export
	var exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Converte o JSON de transações em CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if v, _ := cmd.Flags().GetString("input"); v != "" {
				cfg.JSONOutputFile = v
			}
			if v, _ := cmd.Flags().GetString("output"); v != "" {
				cfg.CSVOutputFile = v
			}
			_, err := runExport(cmd.Context(), cfg)
			return err
		},
	}
	exportCmd.Flags().StringP("input", "i", "", "Arquivo JSON de entrada (padrão: JSON_OUTPUT_FILE)")
	exportCmd.Flags().StringP("output", "o", "", "Arquivo CSV de saída (padrão: CSV_OUTPUT_FILE)")

	// Comando run
	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Extrai e exporta em sequência",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dates, err := fetchConfig(cmd)
			if err != nil {
				return err
			}
			if v, _ := cmd.Flags().GetString("csv"); v != "" {
				cfg.CSVOutputFile = v
			}
			useCache, _ := cmd.Flags().GetBool("cache")

			report, err := runFetch(cmd.Context(), cfg, dates, useCache || cfg.DetailCacheEnabled)
			if err != nil {
				return err
			}
			if _, err := runExport(cmd.Context(), cfg); err != nil {
				return err
			}

			fmt.Printf("\n🎉 %d transações extraídas\n", report.Transactions)
			return nil
		},
	}
	addFetchFlags(runCmd)
	runCmd.Flags().String("csv", "", "Arquivo CSV de saída (padrão: CSV_OUTPUT_FILE)")

	// Comando load
	var loadCmd = &cobra.Command{
		Use:   "load [files...]",
		Short: "Carrega arquivos JSON de transações no PostgreSQL",
		Long: `Carrega um ou mais arquivos JSON gerados pelo fetch no banco.
Aceita wildcards (ex: data/*.json). Recarregar o mesmo arquivo substitui
as transações do mesmo período.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandPatterns(args)
			if err != nil {
				return err
			}
			return loadFiles(cmd.Context(), files)
		},
	}

	// Comando holdings
	var holdingsCmd = &cobra.Command{
		Use:   "holdings",
		Short: "Mostra a posição líquida por símbolo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHoldings(cmd.Context())
		},
	}

	// Comando health
	var healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Verifica saúde do sistema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkHealth(cmd.Context())
		},
	}

	rootCmd.AddCommand(fetchCmd, exportCmd, runCmd, loadCmd, holdingsCmd, healthCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("start-date", "s", "", "Data inicial (YYYY-MM-DD), padrão: START_DATE")
	cmd.Flags().StringP("end-date", "e", "", "Data final inclusiva (YYYY-MM-DD), padrão: END_DATE")
	cmd.Flags().StringP("output", "o", "", "Arquivo JSON de saída (padrão: JSON_OUTPUT_FILE)")
	cmd.Flags().Bool("cache", false, "Guarda os detalhes das ordens no Redis")
}

// fetchConfig aplica as flags sobre a configuração do ambiente.
func fetchConfig(cmd *cobra.Command) (*config.Config, config.DateRange, error) {
	cfg := config.Load()

	if v, _ := cmd.Flags().GetString("start-date"); v != "" {
		cfg.StartDate = v
	}
	if v, _ := cmd.Flags().GetString("end-date"); v != "" {
		cfg.EndDate = v
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		cfg.JSONOutputFile = v
	}

	dates, err := cfg.DateRange()
	if err != nil {
		return nil, config.DateRange{}, err
	}
	return cfg, dates, nil
}

func runFetch(ctx context.Context, cfg *config.Config, dates config.DateRange, useCache bool) (*service.ExtractionReport, error) {
	fmt.Printf("🚀 Extraindo transações de %s a %s...\n",
		dates.Start.Format("02/01/2006"), dates.End.Format("02/01/2006"))

	opts := []ingestion.FetcherOption{ingestion.WithBaseURL(cfg.BaseURL)}

	if useCache {
		redisCache := connectRedis(cfg)
		if redisCache != nil {
			defer redisCache.Close()
			opts = append(opts, ingestion.WithDetailCache(redisCache, cfg.CacheTTL))
			fmt.Println("💾 Cache de detalhes ativo")
		}
	}

	extraction := service.NewExtractionService(service.NewHTTPSessionFactory(cfg), opts...)
	report, err := extraction.Run(ctx, dates, cfg.JSONOutputFile)
	if err != nil {
		return nil, err
	}

	fmt.Printf("\n✅ %d transações gravadas em %s\n", report.Transactions, report.OutputFile)
	fmt.Printf("   Janelas: %d | Não executadas: %d | Ignoradas: %d | Falhas: %d\n",
		report.Windows, report.Skipped, report.Ignored, report.Failed)
	fmt.Printf("   Duração: %s\n", report.Duration.Round(time.Millisecond))

	return report, nil
}

func runExport(ctx context.Context, cfg *config.Config) (int, error) {
	exporter := service.NewExportService(export.NewProjector(nil))

	rows, err := exporter.Run(ctx, cfg.JSONOutputFile, cfg.CSVOutputFile)
	if err != nil {
		return 0, err
	}

	fmt.Printf("📄 %d linhas escritas em %s\n", rows, cfg.CSVOutputFile)
	return rows, nil
}

// expandPatterns resolve wildcards que o shell não expandiu.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("padrão inválido %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("nenhum arquivo encontrado para %s", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func loadFiles(ctx context.Context, files []string) error {
	cfg := config.Load()

	db, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	loader := ingestion.NewBulkLoader(db.Pool(), cfg.BatchSize)

	workerPool := ingestion.NewWorkerPool(cfg.Workers, loader)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	results := make(chan ingestion.JobResult, len(files))

	fmt.Printf("📥 Carregando %d arquivo(s)...\n\n", len(files))

	for _, file := range files {
		workerPool.Submit(ingestion.Job{
			FilePath: file,
			Result:   results,
		})
	}

	var totalRecords int64
	var failed int
	for i := 0; i < len(files); i++ {
		result := <-results
		if result.Error != nil {
			failed++
			fmt.Printf("❌ Erro em %s: %v\n", result.FilePath, result.Error)
		} else {
			fmt.Printf("✅ Carregadas %d transações de %s\n", result.RecordsCount, result.FilePath)
			totalRecords += result.RecordsCount
		}
	}

	fmt.Printf("\n📊 Total: %d transações carregadas\n", totalRecords)

	if redisCache := connectRedis(cfg); redisCache != nil {
		defer redisCache.Close()
		svc := service.NewTransactionService(db.Pool(), redisCache, cfg.CacheTTL)
		if err := svc.InvalidateHoldings(ctx); err != nil {
			fmt.Printf("⚠️  Não foi possível invalidar o cache: %v\n", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d arquivo(s) com erro", failed)
	}
	return nil
}

func showHoldings(ctx context.Context) error {
	cfg := config.Load()

	db, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var holdingsCache service.HoldingsCache
	if redisCache := connectRedis(cfg); redisCache != nil {
		defer redisCache.Close()
		holdingsCache = redisCache
	}

	svc := service.NewTransactionService(db.Pool(), holdingsCache, cfg.CacheTTL)
	holdings, cacheHit, err := svc.GetHoldings(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("📊 %d posições", len(holdings))
	if cacheHit {
		fmt.Print(" (cache)")
	}
	fmt.Println()
	fmt.Println()

	fmt.Printf("%-16s %-5s %14s %14s %14s %7s\n", "Símbolo", "Moeda", "Quantidade", "Comprado", "Vendido", "Ordens")
	for _, h := range holdings {
		fmt.Printf("%-16s %-5s %14s %14s %14s %7d\n",
			h.Symbol,
			h.Currency,
			h.NetQuantity.String(),
			h.BoughtValue.StringFixed(2),
			h.SoldValue.StringFixed(2),
			h.TradeCount)
	}

	return nil
}

func checkHealth(ctx context.Context) error {
	cfg := config.Load()

	fmt.Println("🏥 Verificando saúde do sistema...")
	fmt.Println()

	fmt.Print("Credenciais: ")
	if err := cfg.ValidateCredentials(); err != nil {
		fmt.Printf("⚠️  %v\n", err)
	} else {
		fmt.Println("✅ OK")
	}

	fmt.Print("PostgreSQL: ")
	db, err := connectDB(ctx, cfg)
	if err != nil {
		fmt.Printf("❌ Erro: %v\n", err)
	} else {
		defer db.Close()
		fmt.Println("✅ OK")
	}

	fmt.Print("Redis: ")
	redisCache := connectRedis(cfg)
	if redisCache == nil {
		fmt.Println("❌ Não disponível")
	} else {
		defer redisCache.Close()
		if err := redisCache.HealthCheck(ctx); err != nil {
			fmt.Printf("❌ Erro: %v\n", err)
		} else {
			fmt.Println("✅ OK")
		}
	}

	fmt.Println("\n✅ Verificação concluída!")
	return nil
}

func connectDB(ctx context.Context, cfg *config.Config) (*postgres.DB, error) {
	db, err := postgres.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar PostgreSQL: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao testar conexão: %w", err)
	}

	return db, nil
}

func connectRedis(cfg *config.Config) *cache.RedisCache {
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		return nil
	}
	return redisCache
}
