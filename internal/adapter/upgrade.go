package adapter

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	upgradeCheckInterval = 24 * time.Hour
	upgradeCheckTimeout  = 5 * time.Second
	upgradeBodyLimit     = 1 << 10
)

// UpgradeChecker looks for a newer release in the background. It is spawned
// detached from the run pipeline: every failure is swallowed and logged at
// debug level, and nothing it does can reach the run's error channel or
// exit code.
type UpgradeChecker struct {
	url       string
	stampPath string
	client    *http.Client
}

// NewUpgradeChecker constructs a checker. The stamp file throttles checks to
// one per interval across processes.
func NewUpgradeChecker(url, stampPath string) *UpgradeChecker {
	return &UpgradeChecker{
		url:       url,
		stampPath: stampPath,
		client:    &http.Client{Timeout: upgradeCheckTimeout},
	}
}

// CheckDetached spawns the check and returns immediately.
func (u *UpgradeChecker) CheckDetached() {
	go u.check()
}

func (u *UpgradeChecker) check() {
	if u.url == "" {
		return
	}

	info, err := os.Stat(u.stampPath)
	if err == nil && time.Since(info.ModTime()) < upgradeCheckInterval {
		return
	}

	resp, err := u.client.Get(u.url)
	if err != nil {
		slog.Debug("upgrade check failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("upgrade check failed", "status", resp.StatusCode)
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, upgradeBodyLimit))
	if err != nil {
		slog.Debug("upgrade check failed", "error", err)
		return
	}

	latest := strings.TrimSpace(string(body))
	if err := os.WriteFile(u.stampPath, []byte(latest), 0o600); err != nil {
		slog.Debug("cannot write upgrade stamp", "path", u.stampPath, "error", err)
		return
	}

	slog.Debug("upgrade check completed", "latest", latest)
}
