package sysinfo

import (
	"context"
	"runtime"
	"strings"
	"testing"
)

func TestParseMeminfo(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint64
		wantErr bool
	}{
		{
			name:  "typical",
			input: "MemTotal:       16303428 kB\nMemFree:         1021588 kB\n",
			want:  16303428 * 1024,
		},
		{
			name:  "total not first",
			input: "Junk: 1 kB\nMemTotal: 2048 kB\n",
			want:  2048 * 1024,
		},
		{name: "missing", input: "MemFree: 10 kB\n", wantErr: true},
		{name: "malformed", input: "MemTotal: lots\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMeminfo(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMeminfo() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseMeminfo() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTotalMemory(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("reads /proc/meminfo")
	}
	n, err := TotalMemory(context.Background())
	if err != nil {
		t.Fatalf("TotalMemory() error = %v", err)
	}
	if n == 0 {
		t.Error("TotalMemory() = 0")
	}
}
