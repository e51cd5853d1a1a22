package netutil

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRemoteIP(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"192.0.2.4:1234", "192.0.2.4", true},
		{"[2001:db8::1]:443", "2001:db8::1", true},
		{"[fe80::1%eth0]:80", "fe80::1", true},
		{"10.0.0.1", "10.0.0.1", true},
		{"[::ffff:127.0.0.1]:9000", "127.0.0.1", true},
		{"", "", false},
		{"not-an-ip:80", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseRemoteIP(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, netip.MustParseAddr(tt.want), got)
			}
		})
	}
}

func TestIsLoopback(t *testing.T) {
	assert.True(t, IsLoopback("127.0.0.1:5555"))
	assert.True(t, IsLoopback("[::1]:5555"))
	assert.True(t, IsLoopback("[::ffff:127.0.0.1]:5555"))
	assert.False(t, IsLoopback("192.168.1.10:5555"))
	assert.False(t, IsLoopback("garbage"))
}

func TestOutboundIP(t *testing.T) {
	_, err := netip.ParseAddr(OutboundIP())
	assert.NoError(t, err)
}
