package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"
	"github.com/jeovahfialho/t212-exporter/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

var (
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_duration_seconds",
		Help: "Duration of HTTP requests.",
	}, []string{"method", "route", "status_code"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status_code"})
)

// PrometheusMiddleware mede as rotas pelo padrão registrado, não pelo path
// concreto, para não explodir a cardinalidade.
func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		labels := []string{
			c.Method(),
			c.Route().Path,
			strconv.Itoa(c.Response().StatusCode()),
		}
		httpDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		httpRequests.WithLabelValues(labels...).Inc()

		return err
	}
}

// RateLimiter limita as requisições por IP em uma janela deslizante de um
// minuto.
func RateLimiter(limit int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               limit,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return writeError(c, fiber.StatusTooManyRequests, "muitas requisições")
		},
	})
}

// ErrorHandler converte erros não tratados em ErrorResponse.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := "erro interno"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			logger.WithContext(c.UserContext()).Error("erro não tratado",
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		return writeError(c, code, message)
	}
}

// RequestID reaproveita o X-Request-ID recebido ou gera um novo, e o deixa
// disponível para os logs via contexto.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDHeader, requestID)
		c.Locals("requestID", requestID)
		c.SetUserContext(logger.ContextWithRequestID(c.UserContext(), requestID))

		return c.Next()
	}
}
