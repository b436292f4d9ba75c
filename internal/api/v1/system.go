package v1

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/leasedesk/internal/domain"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	StartedAt time.Time
}

type Health struct {
	Status        string             `json:"status" enum:"ok"`
	Store         *domain.StoreStats `json:"store"`
	UptimeSeconds int64              `json:"uptime_seconds"`
	Version       string             `json:"version"`
}

type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
}

func RegisterSystemRoutes(api huma.API, checker HealthChecker, info BuildInfo) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Report store connectivity, migrations and row counts",
		Tags:        []string{"System"},
	}, func(ctx context.Context, _ *struct{}) (*DataOutput[*Health], error) {
		if err := checker.Ping(ctx); err != nil {
			return nil, huma.Error503ServiceUnavailable("store unavailable", err)
		}
		stats, err := checker.Stats(ctx)
		if err != nil {
			return nil, huma.Error503ServiceUnavailable("store stats unavailable", err)
		}
		return dataOutput(&Health{
			Status:        "ok",
			Store:         stats,
			UptimeSeconds: int64(time.Since(info.StartedAt).Seconds()),
			Version:       info.Version,
		}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Summary:     "Liveness check",
		Tags:        []string{"System"},
	}, func(_ context.Context, _ *struct{}) (*DataOutput[string], error) {
		return dataOutput("pong"), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "version",
		Method:      http.MethodGet,
		Path:        "/version",
		Summary:     "Build version",
		Tags:        []string{"System"},
	}, func(_ context.Context, _ *struct{}) (*DataOutput[*VersionInfo], error) {
		return dataOutput(&VersionInfo{Version: info.Version, GoVersion: runtime.Version()}), nil
	})
}
