package api

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jeovahfialho/t212-exporter/internal/domain"
	"github.com/jeovahfialho/t212-exporter/internal/export"
	"github.com/jeovahfialho/t212-exporter/internal/ingestion"
	"github.com/jeovahfialho/t212-exporter/internal/service"
	"github.com/jeovahfialho/t212-exporter/internal/storage/cache"
	"github.com/jeovahfialho/t212-exporter/internal/storage/postgres"
	"github.com/jeovahfialho/t212-exporter/pkg/logger"
	"go.uber.org/zap"
)

const version = "1.0.0"

type Handler struct {
	db                 *postgres.DB
	cacheService       *cache.RedisCache
	transactionService *service.TransactionService
	projector          *export.Projector
}

func NewHandler(
	db *postgres.DB,
	cacheService *cache.RedisCache,
	transactionService *service.TransactionService,
	projector *export.Projector,
) *Handler {
	if projector == nil {
		projector = export.NewProjector(nil)
	}
	return &Handler{
		db:                 db,
		cacheService:       cacheService,
		transactionService: transactionService,
		projector:          projector,
	}
}

func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Version:   version,
		Timestamp: time.Now(),
	})
}

func (h *Handler) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]ServiceHealth)

	dbStart := time.Now()
	if err := h.db.HealthCheck(ctx); err != nil {
		services["database"] = ServiceHealth{
			Status: "unhealthy",
			Error:  err.Error(),
		}
	} else {
		services["database"] = ServiceHealth{
			Status:  "healthy",
			Latency: time.Since(dbStart).String(),
		}
	}

	// Redis é opcional: sem ele o serviço responde direto do banco.
	if h.cacheService == nil {
		services["redis"] = ServiceHealth{Status: "disabled"}
	} else {
		redisStart := time.Now()
		if err := h.cacheService.HealthCheck(ctx); err != nil {
			services["redis"] = ServiceHealth{
				Status: "unhealthy",
				Error:  err.Error(),
			}
		} else {
			services["redis"] = ServiceHealth{
				Status:  "healthy",
				Latency: time.Since(redisStart).String(),
			}
		}
	}

	status := "ready"
	for _, svc := range services {
		if svc.Status == "unhealthy" {
			status = "not_ready"
			break
		}
	}

	response := HealthResponse{
		Status:    status,
		Version:   version,
		Timestamp: time.Now(),
		Services:  services,
	}

	if status != "ready" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response)
	}

	return c.JSON(response)
}

func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	start := time.Now()

	filter, err := parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	transactions, err := h.transactionService.ListTransactions(c.Context(), filter)
	if err != nil {
		logger.WithContext(c.UserContext()).Error("erro ao buscar transações",
			zap.String("symbol", filter.Symbol),
			zap.Error(err))
		return internalError(c, "erro ao buscar transações")
	}

	data := make([]TransactionDTO, 0, len(transactions))
	for _, tx := range transactions {
		data = append(data, toTransactionDTO(tx))
	}

	return c.JSON(TransactionListResponse{
		Data:           data,
		Count:          len(data),
		ProcessingTime: time.Since(start).String(),
	})
}

func (h *Handler) GetHoldings(c *fiber.Ctx) error {
	start := time.Now()

	holdings, cacheHit, err := h.transactionService.GetHoldings(c.Context())
	if err != nil {
		logger.WithContext(c.UserContext()).Error("erro ao buscar posições", zap.Error(err))
		return internalError(c, "erro ao buscar posições")
	}

	return c.JSON(HoldingsResponse{
		Data:           holdings,
		CacheHit:       cacheHit,
		ProcessingTime: time.Since(start).String(),
	})
}

// ExportCSV devolve as transações filtradas no formato de importação do
// Yahoo Finance.
func (h *Handler) ExportCSV(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	transactions, err := h.transactionService.ListTransactions(c.Context(), filter)
	if err != nil {
		logger.WithContext(c.UserContext()).Error("erro ao exportar transações", zap.Error(err))
		return internalError(c, "erro ao exportar transações")
	}

	rows := h.projector.Project(transactions)

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions.csv"`)

	if err := export.Write(c, rows); err != nil {
		return internalError(c, "erro ao escrever CSV")
	}
	return nil
}

// InvalidateCache descarta o cache de posições. Com scope=all também apaga
// os documentos de detalhe guardados pela extração.
func (h *Handler) InvalidateCache(c *fiber.Ctx) error {
	if err := h.transactionService.InvalidateHoldings(c.Context()); err != nil {
		return internalError(c, "erro ao invalidar cache")
	}

	var details int64
	if c.Query("scope") == "all" && h.cacheService != nil {
		n, err := h.cacheService.DeletePrefix(c.Context(), ingestion.DetailCachePrefix)
		if err != nil {
			logger.WithContext(c.UserContext()).Error("erro ao apagar detalhes do cache", zap.Error(err))
			return internalError(c, "erro ao invalidar cache")
		}
		details = n
	}

	logger.WithContext(c.UserContext()).Info("cache invalidado",
		zap.String("scope", c.Query("scope", "holdings")),
		zap.Int64("details_removed", details))

	return c.JSON(fiber.Map{
		"status":          "success",
		"message":         "cache invalidado",
		"details_removed": details,
	})
}

func (h *Handler) GetSystemStats(c *fiber.Ctx) error {
	dbStats := h.db.Stats()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return c.JSON(SystemStatsResponse{
		Database: DatabaseStats{
			ActiveConnections: dbStats.AcquiredConns(),
			IdleConnections:   dbStats.IdleConns(),
			TotalConnections:  dbStats.TotalConns(),
			WaitCount:         dbStats.EmptyAcquireCount(),
			WaitDuration:      dbStats.AcquireDuration().String(),
		},
		MemoryUsed:       fmt.Sprintf("%d MB", m.Alloc/1024/1024),
		ActiveGoroutines: runtime.NumGoroutine(),
	})
}

func parseFilter(c *fiber.Ctx) (domain.TransactionFilter, error) {
	filter := domain.TransactionFilter{
		Symbol:    c.Query("symbol"),
		OrderType: domain.OrderType(c.Query("order_type")),
	}

	if filter.OrderType != "" && !filter.OrderType.Valid() {
		return filter, fmt.Errorf("order_type deve ser buy ou sell")
	}

	if dateStr := c.Query("start_date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return filter, fmt.Errorf("formato de data inicial inválido (use YYYY-MM-DD)")
		}
		filter.StartDate = &parsed
	}

	if dateStr := c.Query("end_date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return filter, fmt.Errorf("formato de data final inválido (use YYYY-MM-DD)")
		}
		filter.EndDate = &parsed
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 || limit > 10000 {
			return filter, fmt.Errorf("limit deve estar entre 0 e 10000")
		}
		filter.Limit = limit
	}

	return filter, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return writeError(c, fiber.StatusBadRequest, msg)
}

func internalError(c *fiber.Ctx, msg string) error {
	return writeError(c, fiber.StatusInternalServerError, msg)
}

func writeError(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(ErrorResponse{
		Error:     msg,
		Code:      code,
		RequestID: getRequestID(c),
		Timestamp: time.Now(),
	})
}

func getRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestID").(string); ok {
		return id
	}
	return ""
}
