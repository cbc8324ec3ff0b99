package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/jeovahfialho/t212-exporter/pkg/logger"
	"go.uber.org/zap"
)

// Source devolve o corpo JSON de uma URL já decodificado em dest.
type Source interface {
	FetchJSON(ctx context.Context, url string, dest any) error
}

// Session é uma Source autenticada. Uma única sessão atende todas as
// requisições de uma execução e não suporta uso concorrente.
type Session interface {
	Source
	Login(ctx context.Context) error
	Close() error
}

var ErrSessionClosed = errors.New("sessão encerrada")

type SessionConfig struct {
	Email      string
	Password   string
	LoginURL   string
	ConfirmURL string
	LoginWait  time.Duration
	PollEvery  time.Duration
}

type HTTPSession struct {
	cfg        SessionConfig
	httpClient *http.Client
	closed     bool
}

func NewHTTPSession(cfg SessionConfig) (*HTTPSession, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar cookie jar: %w", err)
	}

	if cfg.LoginWait <= 0 {
		cfg.LoginWait = 60 * time.Second
	}
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}

	return &HTTPSession{
		cfg: cfg,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Login envia as credenciais e espera até LoginWait pela confirmação.
// Se a confirmação não chegar, segue assim mesmo: a sessão pode já estar
// utilizável.
func (s *HTTPSession) Login(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}

	logger.Info("fazendo login", zap.String("url", s.cfg.LoginURL))

	form := url.Values{}
	form.Set("email", s.cfg.Email)
	form.Set("password", s.cfg.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.LoginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("erro ao criar request de login: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao enviar login: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("login recusado: status %d", resp.StatusCode)
	}

	if err := s.waitConfirmation(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("login não confirmado a tempo, tentando buscar transações mesmo assim",
			zap.Duration("wait", s.cfg.LoginWait),
			zap.Error(err))
	}

	return nil
}

func (s *HTTPSession) waitConfirmation(ctx context.Context) error {
	if s.cfg.ConfirmURL == "" {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.LoginWait)
	defer cancel()

	ticker := time.NewTicker(s.cfg.PollEvery)
	defer ticker.Stop()

	for {
		if s.confirmed(waitCtx) {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return waitCtx.Err()
		case <-ticker.C:
		}
	}
}

func (s *HTTPSession) confirmed(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.ConfirmURL, nil)
	if err != nil {
		return false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

func (s *HTTPSession) FetchJSON(ctx context.Context, url string, dest any) error {
	if s.closed {
		return ErrSessionClosed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("erro ao criar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao buscar %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status code: %d para URL: %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("erro ao decodificar resposta de %s: %w", url, err)
	}

	return nil
}

func (s *HTTPSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.httpClient.CloseIdleConnections()
	return nil
}
