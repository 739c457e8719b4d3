package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	gosync "sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/exp/slog"

	"sampark/internal/app/client/config"
	"sampark/internal/domain/survey"
	"sampark/internal/domain/sync"
)

const userAgent = "Sampark-Client/1.0"

// APIError ответ удаленного API со статусом 4xx/5xx.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ошибка сервера: статус %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ошибка сервера: статус %d", e.StatusCode)
}

// StatusCode возвращает HTTP статус из цепочки ошибок или 0 для транспортных ошибок.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// ConflictSurveyID достает detail.survey_id из тела ответа 409.
func (e *APIError) ConflictSurveyID() string {
	return gjson.GetBytes(e.Body, "detail.survey_id").String()
}

type httpClient struct {
	client  *http.Client
	log     *slog.Logger
	baseURL string

	mu    gosync.RWMutex
	token string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &httpClient{
		client:  client,
		log:     log.With("component", "http_client"),
		baseURL: cfg.BaseURL(),
		token:   cfg.ResolveToken(),
	}
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
}

func (h *httpClient) bearer() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Ping проверяет доступность сервера
func (h *httpClient) Ping(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/ping", nil)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

func (h *httpClient) ListSurveys(ctx context.Context, panchayatID string) ([]survey.Survey, error) {
	path := "/api/surveys"
	if panchayatID != "" {
		path += "?panchayat_id=" + url.QueryEscape(panchayatID)
	}

	resp, err := h.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var wires []survey.Wire
	if err := h.parseResponse(resp, &wires); err != nil {
		return nil, err
	}

	out := make([]survey.Survey, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.ToSurvey())
	}
	return out, nil
}

func (h *httpClient) GetSurvey(ctx context.Context, id string) (*survey.Survey, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/surveys/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var w survey.Wire
	if err := h.parseResponse(resp, &w); err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", survey.ErrNotFound, err)
		}
		return nil, err
	}

	s := w.ToSurvey()
	return &s, nil
}

// CreateSurvey отправляет новую запись и возвращает ответ сервера вместе с сырым телом
func (h *httpClient) CreateSurvey(ctx context.Context, w survey.Wire) (*survey.Wire, []byte, error) {
	return h.sendSurvey(ctx, http.MethodPost, "/api/surveys", w)
}

func (h *httpClient) UpdateSurvey(ctx context.Context, id string, w survey.Wire) (*survey.Wire, []byte, error) {
	return h.sendSurvey(ctx, http.MethodPut, "/api/surveys/"+url.PathEscape(id), w)
}

func (h *httpClient) sendSurvey(ctx context.Context, method, path string, w survey.Wire) (*survey.Wire, []byte, error) {
	resp, err := h.doRequest(ctx, method, path, w)
	if err != nil {
		return nil, nil, err
	}

	body, err := h.readBody(resp)
	if err != nil {
		return nil, nil, err
	}

	var out survey.Wire
	if len(body) > 0 {
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, body, fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}
	return &out, body, nil
}

// DeleteSurvey удаляет запись на сервере
func (h *httpClient) DeleteSurvey(ctx context.Context, id string) error {
	resp, err := h.doRequest(ctx, http.MethodDelete, "/api/surveys/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	err = h.parseResponse(resp, nil)
	switch StatusCode(err) {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", survey.ErrUnauthenticated, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", survey.ErrPermissionDenied, err)
	}
	return err
}

func (h *httpClient) BatchSync(ctx context.Context, req sync.BatchRequest) (*sync.BatchResponse, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/sync/batch", req)
	if err != nil {
		return nil, err
	}

	var result sync.BatchResponse
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSchemas получает схемы форм и переводы
func (h *httpClient) GetSchemas(ctx context.Context) (*sync.SchemasResponse, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/schemas", nil)
	if err != nil {
		return nil, err
	}

	var result sync.SchemasResponse
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if token := h.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	h.log.Debug("Отправка запроса", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return resp, nil
}

// readBody читает тело и превращает статус >= 400 в *APIError.
func (h *httpClient) readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ", "status", resp.StatusCode, "size", len(body))

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
			Body:       body,
		}
	}
	return body, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result any) error {
	body, err := h.readBody(resp)
	if err != nil {
		return err
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}
	return nil
}

// errorMessage понимает {"detail": "..."}, {"detail": {"message": "..."}} и {"error": "..."}.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"detail.message", "error", "message"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String {
			return v.String()
		}
	}
	if v := gjson.GetBytes(body, "detail"); v.Type == gjson.String {
		return v.String()
	}
	return ""
}
