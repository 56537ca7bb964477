package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1024*1024 - 1, "1024 KB"},
		{1024 * 1024, "1 MB"},
		{5 * 1024 * 1024 * 1024, "5 GB"},
		{123456789, "117.74 MB"},
		{1 << 40, "1 TB"},
		{1 << 50, "1 PB"},
		{1 << 60, "1 EB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in), "FormatBytes(%d)", tt.in)
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "00h00m00s"},
		{59, "00h00m59s"},
		{90, "00h01m30s"},
		{3599, "00h59m59s"},
		{3661, "01h01m01s"},
		{86400, "24h00m00s"},
		{100 * 3600, "100h00m00s"},
		{-5, "00h00m00s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.in), "FormatUptime(%d)", tt.in)
	}
}
