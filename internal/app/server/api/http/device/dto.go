package device

import "time"

type listInput struct{}

type DeviceInfo struct {
	DeviceID   string     `json:"device_id"`
	DeviceName string     `json:"device_name"`
	IsActive   bool       `json:"is_active"`
	LastSyncAt *time.Time `json:"last_sync_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ListResponse struct {
	Devices []DeviceInfo `json:"devices"`
}

type listOutput struct {
	Body ListResponse
}

type removeInput struct {
	DeviceID string `path:"device_id" minLength:"1"`
}

type RemoveResponse struct {
	Message string `json:"message" example:"Device removed"`
}

type removeOutput struct {
	Body RemoveResponse
}
