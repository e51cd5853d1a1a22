package netutil

import (
	"net"
	"net/netip"
	"strings"
)

// ParseRemoteIP разбирает r.RemoteAddr ("192.0.2.4:1234", "[::1]:443" или голый IP).
// IPv4, отображенный в IPv6, приводится к IPv4, зона отбрасывается.
func ParseRemoteIP(raw string) (netip.Addr, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return netip.Addr{}, false
	}
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap.Addr().WithZone("").Unmap(), true
	}
	if addr, err := netip.ParseAddr(strings.Trim(raw, "[]")); err == nil {
		return addr.WithZone("").Unmap(), true
	}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		if addr, err := netip.ParseAddr(host); err == nil {
			return addr.WithZone("").Unmap(), true
		}
	}
	return netip.Addr{}, false
}

// IsLoopback сообщает, пришел ли запрос с локальной машины.
// Нераспознанный адрес считается внешним.
func IsLoopback(remoteAddr string) bool {
	addr, ok := ParseRemoteIP(remoteAddr)
	return ok && addr.IsLoopback()
}

// OutboundIP возвращает адрес интерфейса, через который уходит трафик в сеть.
// UDP "соединение" не отправляет пакетов, оно лишь выбирает маршрут.
func OutboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	if udp, ok := conn.LocalAddr().(*net.UDPAddr); ok && udp.IP != nil {
		return udp.IP.String()
	}
	return "127.0.0.1"
}
