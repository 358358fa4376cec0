// Package sysinfo reads host facts used to size the model tiers.
package sysinfo

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

const lookupTimeout = 3 * time.Second

// TotalMemory returns the installed RAM in bytes.
func TotalMemory(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	switch runtime.GOOS {
	case "darwin":
		cmd := exec.CommandContext(ctx, "sysctl", "-n", "hw.memsize")
		var stdout bytes.Buffer
		cmd.Stdout = &stdout
		if err := cmd.Run(); err != nil {
			return 0, fmt.Errorf("sysctl hw.memsize: %w", err)
		}
		var n uint64
		if _, err := fmt.Sscanf(strings.TrimSpace(stdout.String()), "%d", &n); err != nil {
			return 0, fmt.Errorf("parse memsize: %w", err)
		}
		return n, nil

	case "linux":
		f, err := os.Open("/proc/meminfo")
		if err != nil {
			return 0, fmt.Errorf("read meminfo: %w", err)
		}
		defer f.Close()
		return parseMeminfo(f)

	default:
		return 0, fmt.Errorf("memory lookup unsupported on %s", runtime.GOOS)
	}
}

// parseMeminfo extracts MemTotal from /proc/meminfo content.
func parseMeminfo(r io.Reader) (uint64, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		var kb uint64
		if _, err := fmt.Sscanf(line, "MemTotal: %d kB", &kb); err != nil {
			return 0, fmt.Errorf("parse meminfo: %w", err)
		}
		return kb * 1024, nil
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read meminfo: %w", err)
	}
	return 0, fmt.Errorf("MemTotal not found in meminfo")
}
