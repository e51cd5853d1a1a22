package device

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slog"
)

const tokenBytes = 32

// Servicer реестр устройств и проверка их токенов
type Servicer interface {
	Register(ctx context.Context, deviceID, name string) (*Registration, error)
	Authenticate(ctx context.Context, token string) (*Device, error)
	Deactivate(ctx context.Context, deviceID string) error
	TouchLastSync(ctx context.Context, d *Device) error
	List(ctx context.Context) ([]Device, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With(slog.String("component", "device")),
		now:  time.Now,
	}
}

// Register регистрирует устройство. Повторная регистрация активного устройства
// возвращает прежний токен и не меняет имя.
func (s *Service) Register(ctx context.Context, deviceID, name string) (*Registration, error) {
	deviceID = strings.TrimSpace(deviceID)
	name = strings.TrimSpace(name)
	if deviceID == "" || name == "" {
		return nil, fmt.Errorf("%w: device_id and device_name are required", ErrInvalidDevice)
	}

	existing, err := s.repo.GetByDeviceID(ctx, deviceID)
	switch {
	case err == nil && existing.IsActive:
		s.log.Info("device already registered", slog.String("device_id", deviceID))
		return &Registration{Device: existing, Existed: true}, nil
	case err == nil:
		return s.reactivate(ctx, existing, name)
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("get device: %w", err)
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	d := &Device{
		DeviceID:  deviceID,
		Name:      name,
		AuthToken: token,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			// параллельная регистрация того же устройства успела раньше
			if existing, gerr := s.repo.GetByDeviceID(ctx, deviceID); gerr == nil {
				return &Registration{Device: existing, Existed: true}, nil
			}
		}
		return nil, fmt.Errorf("create device: %w", err)
	}

	s.log.Info("device registered", slog.String("device_id", deviceID), slog.String("device_name", name))
	return &Registration{Device: d}, nil
}

func (s *Service) reactivate(ctx context.Context, d *Device, name string) (*Registration, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.repo.Reactivate(ctx, d.DeviceID, name, token, now); err != nil {
		return nil, fmt.Errorf("reactivate device: %w", err)
	}

	d.Name = name
	d.AuthToken = token
	d.IsActive = true
	d.UpdatedAt = now

	s.log.Info("device reactivated", slog.String("device_id", d.DeviceID))
	return &Registration{Device: d}, nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*Device, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	d, err := s.repo.GetActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return d, nil
}

// Deactivate мягко отключает устройство, история синхронизации сохраняется
func (s *Service) Deactivate(ctx context.Context, deviceID string) error {
	if err := s.repo.Deactivate(ctx, deviceID, s.now().UTC()); err != nil {
		return err
	}
	s.log.Info("device deactivated", slog.String("device_id", deviceID))
	return nil
}

func (s *Service) TouchLastSync(ctx context.Context, d *Device) error {
	now := s.now().UTC()
	if err := s.repo.TouchLastSync(ctx, d.DeviceID, now); err != nil {
		return fmt.Errorf("touch last sync: %w", err)
	}
	d.LastSync = &now
	return nil
}

func (s *Service) List(ctx context.Context) ([]Device, error) {
	return s.repo.ListActive(ctx)
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
