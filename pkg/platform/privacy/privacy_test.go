package privacy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ipv4 checkpoint host", input: "192.168.1.47", expected: "192.168.1.0"},
		{name: "ipv4 localhost", input: "127.0.0.1", expected: "127.0.0.0"},
		{name: "ipv6 compressed", input: "2001:db8:85a3::8a2e:370:7334", expected: "2001:0db8:85a3::"},
		{name: "ipv6 loopback", input: "::1", expected: "0000:0000:0000::"},
		{name: "empty", input: "", expected: "unknown"},
		{name: "unknown marker", input: "unknown", expected: "unknown"},
		{name: "garbage", input: "not-an-ip", expected: "invalid"},
		{name: "with port", input: "192.168.1.1:8080", expected: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AnonymizeIP(tt.input))
		})
	}
}

func TestAnonymizeIP_SameNetworkCollapses(t *testing.T) {
	for _, ip := range []string{"10.1.2.1", "10.1.2.200", "10.1.2.255"} {
		assert.Equal(t, "10.1.2.0", AnonymizeIP(ip))
	}
	assert.NotEqual(t, AnonymizeIP("10.1.2.1"), AnonymizeIP("10.1.3.1"))
}

func TestDeviceClass(t *testing.T) {
	t.Run("empty header", func(t *testing.T) {
		assert.Equal(t, DeviceUnknown, DeviceClass("  "))
	})

	t.Run("bot", func(t *testing.T) {
		got := DeviceClass("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		assert.True(t, strings.HasPrefix(got, DeviceBot), got)
	})

	t.Run("mobile", func(t *testing.T) {
		got := DeviceClass("Mozilla/5.0 (Linux; Android 10; SM-G973F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/83.0.4103.106 Mobile Safari/537.36")
		assert.True(t, strings.HasPrefix(got, DeviceMobile), got)
	})

	t.Run("desktop drops versions", func(t *testing.T) {
		got := DeviceClass("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		assert.True(t, strings.HasPrefix(got, DeviceDesktop), got)
		assert.NotContains(t, got, "120")
	})
}
