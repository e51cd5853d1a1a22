package pairing

import "time"

type qrDataInput struct{}

// QRData содержимое QR-кода; мобильный клиент читает ip, port и token
type QRData struct {
	IP        string    `json:"ip" example:"192.168.1.10"`
	Port      int       `json:"port" example:"8765"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type qrDataOutput struct {
	Body QRData
}

type qrImageInput struct {
	Size int `query:"size" minimum:"64" maximum:"1024" default:"256" doc:"Сторона изображения в пикселях"`
}

type qrImageOutput struct {
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

type RegisterRequest struct {
	DeviceID     string `json:"device_id" minLength:"1" maxLength:"255" doc:"UUID устройства"`
	DeviceName   string `json:"device_name" minLength:"1" maxLength:"255"`
	PairingToken string `json:"pairing_token" minLength:"1"`
}

type RegisterResponse struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	AuthToken  string `json:"auth_token"`
	Message    string `json:"message" example:"Device paired successfully"`
}

type registerInput struct {
	Body RegisterRequest
}

type registerOutput struct {
	Body RegisterResponse
}
