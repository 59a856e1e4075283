package daemon

import (
	"github.com/adcondev/print-sync/internal/printer"
	"github.com/adcondev/print-sync/internal/worker"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status   string            `json:"status"`
	Loop     worker.Statistics `json:"loop"`
	Printers printer.Summary   `json:"printers"`
	Clients  int               `json:"clients"`
	Build    BuildInfo         `json:"build"`
	Uptime   int               `json:"uptime_seconds"`
}

// BuildInfo describes the running build.
type BuildInfo struct {
	Env  string `json:"env"`
	Date string `json:"date"`
	Time string `json:"time"`
	Arch string `json:"arch"`
}
