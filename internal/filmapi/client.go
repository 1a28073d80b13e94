package filmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"film-ticket-desk/internal/model"
	apperrors "film-ticket-desk/pkg/app_errors"
	"film-ticket-desk/pkg/logger"

	"go.uber.org/zap"
)

type FilmClient interface {
	// GET /films
	ListFilms(ctx context.Context) ([]*model.Film, error)
	// GET /films/:id
	GetFilm(ctx context.Context, id int) (*model.Film, error)
	// PATCH /films/:id {"tickets_sold": n}
	UpdateTicketsSold(ctx context.Context, id int, ticketsSold int) (*model.Film, error)
}

// StatusError 非 2xx 回應
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// Unwrap 404 視為電影不存在，其他狀態碼視為上游錯誤
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return apperrors.ErrFilmNotFound
	}
	return apperrors.ErrUpstream
}

type FilmClientImpl struct {
	baseURL    string
	httpClient *http.Client
}

func NewFilmClient(baseURL string, timeout time.Duration) FilmClient {
	return &FilmClientImpl{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewFilmClientWithHTTP 注入自訂 http.Client (測試用 httptest 或共用 transport)
func NewFilmClientWithHTTP(baseURL string, httpClient *http.Client) FilmClient {
	return &FilmClientImpl{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *FilmClientImpl) ListFilms(ctx context.Context) ([]*model.Film, error) {
	films := make([]*model.Film, 0)
	if err := c.do(ctx, http.MethodGet, "/films", nil, &films); err != nil {
		return nil, err
	}
	return films, nil
}

func (c *FilmClientImpl) GetFilm(ctx context.Context, id int) (*model.Film, error) {
	var film model.Film
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/films/%d", id), nil, &film); err != nil {
		return nil, err
	}
	return &film, nil
}

func (c *FilmClientImpl) UpdateTicketsSold(ctx context.Context, id int, ticketsSold int) (*model.Film, error) {
	body := model.UpdateTicketsSoldRequest{TicketsSold: ticketsSold}
	var film model.Film
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/films/%d", id), body, &film); err != nil {
		return nil, err
	}
	return &film, nil
}

func (c *FilmClientImpl) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 丟棄 body 讓連線可以重用
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.WithComponent("filmapi").Warn("decode response failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w: %v", method, path, apperrors.ErrMalformedResponse, err)
	}
	return nil
}
