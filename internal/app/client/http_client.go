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
	"time"

	"golang.org/x/exp/slog"

	"storysync/internal/domain/sync"
)

// ErrUnauthorized сервер не принял токен устройства
var ErrUnauthorized = errors.New("unauthorized")

// StatusError ответ сервера с кодом >= 400
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ошибка сервера (%d): %s", e.Code, e.Message)
}

type httpClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func NewHTTPClient(baseURL string, timeout time.Duration, log *slog.Logger) *httpClient {
	return &httpClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		},
		log:       log,
		baseURL:   baseURL,
		userAgent: "syncctl/1.0",
	}
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.token = token
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) (*HealthInfo, error) {
	var out HealthInfo
	if err := h.call(ctx, http.MethodGet, "/api/v1/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QRData выпускает токен сопряжения. Работает только там, где сервер доступен напрямую.
func (h *httpClient) QRData(ctx context.Context) (*QRData, error) {
	var out QRData
	if err := h.call(ctx, http.MethodGet, "/api/pair/qr-data", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := h.call(ctx, http.MethodPost, "/api/pair/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) Pull(ctx context.Context, req sync.PullRequest) (*sync.PullResponse, error) {
	var out sync.PullResponse
	if err := h.call(ctx, http.MethodPost, "/api/sync/pull", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) Push(ctx context.Context, req sync.PushRequest) (*PushResponse, error) {
	var out PushResponse
	if err := h.call(ctx, http.MethodPost, "/api/sync/push", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) Status(ctx context.Context) (*sync.StatusResponse, error) {
	var out sync.StatusResponse
	if err := h.call(ctx, http.MethodGet, "/api/sync/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) Devices(ctx context.Context) ([]DeviceInfo, error) {
	var out struct {
		Devices []DeviceInfo `json:"devices"`
	}
	if err := h.call(ctx, http.MethodGet, "/api/devices", nil, &out); err != nil {
		return nil, err
	}
	return out.Devices, nil
}

func (h *httpClient) RemoveDevice(ctx context.Context, deviceID string) error {
	return h.call(ctx, http.MethodDelete, "/api/devices/"+url.PathEscape(deviceID), nil, nil)
}

func (h *httpClient) call(ctx context.Context, method, path string, body, result any) error {
	resp, err := h.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, result)
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

	req.Header.Set("User-Agent", h.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	h.log.Debug("Отправка запроса",
		slog.String("method", method),
		slog.String("url", req.URL.String()),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ",
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
	)

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, errorMessage(body, resp.Status))
		}
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}

	return nil
}

// errorMessage понимает оба формата ошибок сервера: {"error": ...} и problem+json
func errorMessage(body []byte, fallback string) string {
	var errResp struct {
		Error  string `json:"error"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fallback
	}
	switch {
	case errResp.Error != "":
		return errResp.Error
	case errResp.Detail != "":
		return errResp.Detail
	case errResp.Title != "":
		return errResp.Title
	}
	return fallback
}
