package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for health check. If nil, database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

// CollectResult is the /health/json payload.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Sessions     int                  `json:"sessions"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64  `json:"uptimeSeconds"`
	HeapMB        int    `json:"heapMb"`
	Goroutines    int    `json:"goroutines"`
	Platform      string `json:"platform"`
	GoVersion     string `json:"goVersion"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// Checker collects dependency status. Every field is optional.
type Checker struct {
	Redis      *redis.Client
	DB         DBPinger
	CatalogURL string
	Client     *http.Client
	StartedAt  time.Time
	Sessions   func() int
}

// Collect pings Redis, the database and the catalog upstream. The service is
// "ok" when the catalog is reachable and every configured store answers;
// browsing degrades rather than fails otherwise, so this is informational.
func (h *Checker) Collect(ctx context.Context) CollectResult {
	result := CollectResult{Dependencies: map[string]DepStatus{}}

	redisStatus := DepStatus{Status: "disconnected"}
	if h.Redis != nil {
		redisStatus = timed(func() error { return h.Redis.Ping(ctx).Err() })
	}
	result.Dependencies["redis"] = redisStatus

	dbStatus := DepStatus{Status: "disconnected"}
	if h.DB != nil {
		dbStatus = timed(h.DB.Ping)
	}
	result.Dependencies["database"] = dbStatus

	catalogStatus := DepStatus{Status: "unconfigured"}
	if h.CatalogURL != "" {
		catalogStatus = timed(func() error { return h.pingCatalog(ctx) })
	}
	result.Dependencies["catalog"] = catalogStatus

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := int64(0)
	if !h.StartedAt.IsZero() {
		uptime = int64(time.Since(h.StartedAt).Seconds())
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		HeapMB:        int(m.HeapInuse / 1024 / 1024),
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}
	if h.Sessions != nil {
		result.Sessions = h.Sessions()
	}

	result.Status = "ok"
	if catalogStatus.Status != "connected" || redisStatus.Status == "error" || dbStatus.Status == "error" {
		result.Status = "issue"
	}
	return result
}

func (h *Checker) pingCatalog(ctx context.Context) error {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.CatalogURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func timed(ping func() error) DepStatus {
	start := time.Now()
	if err := ping(); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}
