package pairing

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"storysync/internal/domain/device"
	"storysync/internal/netutil"
)

const (
	DefaultTokenTTL = 5 * time.Minute
	tokenBytes      = 32
)

type Config struct {
	// AdvertiseHost адрес для QR; пустой означает адрес исходящего интерфейса
	AdvertiseHost string
	AdvertisePort int
	TokenTTL      time.Duration
}

type Servicer interface {
	Issue(ctx context.Context, ttl time.Duration) (*Payload, error)
	Consume(ctx context.Context, token string) error
	Register(ctx context.Context, deviceID, name, pairingToken string) (*device.Registration, error)
}

type Service struct {
	repo    Repository
	devices device.Servicer
	cfg     Config
	log     *slog.Logger
	now     func() time.Time
	host    func() string
}

func NewService(repo Repository, devices device.Servicer, cfg Config, log *slog.Logger) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	return &Service{
		repo:    repo,
		devices: devices,
		cfg:     cfg,
		log:     log.With(slog.String("component", "pairing")),
		now:     time.Now,
		host:    netutil.OutboundIP,
	}
}

// Issue выпускает новый токен сопряжения. ttl <= 0 означает значение из конфигурации.
func (s *Service) Issue(ctx context.Context, ttl time.Duration) (*Payload, error) {
	if ttl <= 0 {
		ttl = s.cfg.TokenTTL
	}
	now := s.now().UTC()

	if n, err := s.repo.PurgeExpired(ctx, now); err != nil {
		s.log.Warn("purge expired pairing tokens", slog.String("error", err.Error()))
	} else if n > 0 {
		s.log.Debug("expired pairing tokens purged", slog.Int64("count", n))
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(ttl)
	if err := s.repo.Save(ctx, HashToken(token), expiresAt, now); err != nil {
		return nil, fmt.Errorf("save pairing token: %w", err)
	}

	host := s.cfg.AdvertiseHost
	if host == "" {
		host = s.host()
	}

	s.log.Info("pairing token issued", slog.Time("expires_at", expiresAt))
	return &Payload{
		IP:        host,
		Port:      s.cfg.AdvertisePort,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Consume принимает токен ровно один раз
func (s *Service) Consume(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	ok, err := s.repo.Consume(ctx, HashToken(token), s.now().UTC())
	if err != nil {
		return fmt.Errorf("consume pairing token: %w", err)
	}
	if !ok {
		return ErrInvalidToken
	}
	return nil
}

// Register обменивает токен сопряжения на постоянный токен устройства
func (s *Service) Register(ctx context.Context, deviceID, name, pairingToken string) (*device.Registration, error) {
	if strings.TrimSpace(deviceID) == "" || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: device_id and device_name are required", device.ErrInvalidDevice)
	}
	if err := s.Consume(ctx, pairingToken); err != nil {
		s.log.Warn("pairing rejected", slog.String("device_id", deviceID))
		return nil, err
	}
	return s.devices.Register(ctx, deviceID, name)
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate pairing token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
