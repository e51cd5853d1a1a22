package client

import (
	"time"

	"storysync/internal/domain/sync"
)

type HealthInfo struct {
	Status            string `json:"status"`
	DatabaseConnected bool   `json:"database_connected"`
	Version           string `json:"version"`
}

type QRData struct {
	IP        string    `json:"ip"`
	Port      int       `json:"port"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RegisterRequest struct {
	DeviceID     string `json:"device_id"`
	DeviceName   string `json:"device_name"`
	PairingToken string `json:"pairing_token"`
}

type RegisterResponse struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	AuthToken  string `json:"auth_token"`
	Message    string `json:"message"`
}

type PushResponse struct {
	sync.PushResult
	Message string `json:"message"`
}

type DeviceInfo struct {
	DeviceID   string     `json:"device_id"`
	DeviceName string     `json:"device_name"`
	IsActive   bool       `json:"is_active"`
	LastSyncAt *time.Time `json:"last_sync_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
