package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"storysync/internal/app/client/config"
	"storysync/internal/domain/sync"
)

// ErrNotPaired у клиента еще нет токена устройства
var ErrNotPaired = errors.New("устройство не сопряжено, выполните: syncctl pair")

type App struct {
	config     *config.Config
	log        *slog.Logger
	httpClient *httpClient
	state      *State
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	state, err := LoadState(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки состояния: %w", err)
	}

	httpCl := NewHTTPClient(cfg.BaseURL(), cfg.Timeout, log)
	if state.Paired() {
		httpCl.SetToken(state.AuthToken)
		log.Debug("Токен устройства загружен", slog.String("device_id", state.DeviceID))
	}

	return &App{
		config:     cfg,
		log:        log,
		httpClient: httpCl,
		state:      state,
	}, nil
}

func (a *App) State() State {
	return *a.state
}

// CheckConnection проверяет соединение с сервером
func (a *App) CheckConnection(ctx context.Context) (*HealthInfo, error) {
	return a.httpClient.HealthCheck(ctx)
}

// IssuePairingToken запрашивает токен сопряжения у сервера (для запуска на той же машине)
func (a *App) IssuePairingToken(ctx context.Context) (*QRData, error) {
	return a.httpClient.QRData(ctx)
}

// Pair обменивает токен сопряжения на постоянный токен и сохраняет его
func (a *App) Pair(ctx context.Context, pairingToken, deviceName string) (*RegisterResponse, error) {
	pairingToken = strings.TrimSpace(pairingToken)
	if pairingToken == "" {
		return nil, errors.New("токен сопряжения пуст")
	}
	if deviceName == "" {
		deviceName = a.state.DeviceName
	}
	if deviceName == "" {
		return nil, errors.New("укажите имя устройства")
	}

	resp, err := a.httpClient.Register(ctx, RegisterRequest{
		DeviceID:     a.state.DeviceID,
		DeviceName:   deviceName,
		PairingToken: pairingToken,
	})
	if err != nil {
		return nil, err
	}

	a.state.DeviceName = resp.DeviceName
	a.state.AuthToken = resp.AuthToken
	a.state.LastSyncAt = ""
	if err := a.state.Save(a.config.StatePath); err != nil {
		return nil, err
	}
	a.httpClient.SetToken(resp.AuthToken)

	a.log.Info("Устройство сопряжено", slog.String("device_id", resp.DeviceID))
	return resp, nil
}

// Pull забирает изменения после последней синхронизации. full игнорирует сохраненную метку.
func (a *App) Pull(ctx context.Context, full bool, entityTypes []string) (*sync.PullResponse, error) {
	if !a.state.Paired() {
		return nil, ErrNotPaired
	}

	req := sync.PullRequest{EntityTypes: entityTypes}
	if !full && a.state.LastSyncAt != "" {
		since, err := sync.ParseTimestamp(a.state.LastSyncAt)
		if err != nil {
			a.log.Warn("Сохраненная метка синхронизации повреждена, выполняется полная синхронизация",
				slog.String("last_sync_at", a.state.LastSyncAt))
		} else {
			ts := sync.NewTimestamp(since)
			req.SinceTimestamp = &ts
		}
	}

	resp, err := a.httpClient.Pull(ctx, req)
	if err != nil {
		return nil, err
	}

	// частичный pull по типам не сдвигает общую метку: остальные типы еще не получены
	if len(entityTypes) == 0 {
		a.state.LastSyncAt = resp.SyncTimestamp.UTC().Format(time.RFC3339Nano)
		if err := a.state.Save(a.config.StatePath); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (a *App) Push(ctx context.Context, changes []sync.EntityChange) (*PushResponse, error) {
	if !a.state.Paired() {
		return nil, ErrNotPaired
	}
	return a.httpClient.Push(ctx, sync.PushRequest{Changes: changes})
}

func (a *App) Status(ctx context.Context) (*sync.StatusResponse, error) {
	if !a.state.Paired() {
		return nil, ErrNotPaired
	}
	return a.httpClient.Status(ctx)
}

func (a *App) Devices(ctx context.Context) ([]DeviceInfo, error) {
	return a.httpClient.Devices(ctx)
}

func (a *App) RemoveDevice(ctx context.Context, deviceID string) error {
	return a.httpClient.RemoveDevice(ctx, deviceID)
}

// Forget удаляет токен устройства локально; device_id сохраняется
func (a *App) Forget() error {
	a.state.AuthToken = ""
	a.state.LastSyncAt = ""
	a.httpClient.SetToken("")
	return a.state.Save(a.config.StatePath)
}
