package pairing

import "time"

// Payload данные для QR-кода сопряжения
type Payload struct {
	IP        string
	Port      int
	Token     string
	ExpiresAt time.Time
}
