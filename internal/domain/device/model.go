package device

import "time"

// Device мобильное устройство, получившее постоянный токен при сопряжении
type Device struct {
	ID        int64
	DeviceID  string
	Name      string
	AuthToken string
	IsActive  bool
	LastSync  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Registration результат регистрации устройства
type Registration struct {
	Device  *Device
	Existed bool
}
