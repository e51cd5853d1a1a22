package pairing

import (
	"encoding/json"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const DefaultQRSize = 256

type qrContent struct {
	IP    string `json:"ip"`
	Port  int    `json:"port"`
	Token string `json:"token"`
}

// QRContent JSON, который мобильный клиент ожидает увидеть в QR-коде
func QRContent(p *Payload) ([]byte, error) {
	return json.Marshal(qrContent{IP: p.IP, Port: p.Port, Token: p.Token})
}

// EncodeQR рендерит payload в PNG
func EncodeQR(p *Payload, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	content, err := QRContent(p)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(string(content), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
