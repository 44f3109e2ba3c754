package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/chain-sentry/internal/database"
	"github.com/aristath/chain-sentry/internal/scheduler"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	db        *database.DB
	scheduler *scheduler.Scheduler
	startTime time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, db *database.DB, sched *scheduler.Scheduler) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("component", "system_handlers").Logger(),
		db:        db,
		scheduler: sched,
		startTime: time.Now(),
	}
}

// SystemStatusResponse is the system status payload.
type SystemStatusResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	CPUPercent    float64        `json:"cpu_percent"`
	MemoryPercent float64        `json:"memory_percent"`
	Goroutines    int            `json:"goroutines"`
	Database      DatabaseStatus `json:"database"`
}

// DatabaseStatus reports row counts for the main tables.
type DatabaseStatus struct {
	Path      string `json:"path"`
	Units     int    `json:"units"`
	Scenarios int    `json:"scenarios"`
	Runs      int    `json:"runs"`
}

// HandleSystemStatus reports host and database health.
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.hostUsage()

	resp := SystemStatusResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		CPUPercent:    cpuPct,
		MemoryPercent: memPct,
		Goroutines:    runtime.NumGoroutine(),
		Database: DatabaseStatus{
			Path:      h.db.Path(),
			Units:     h.tableCount("units"),
			Scenarios: h.tableCount("scenarios"),
			Runs:      h.tableCount("optimization_runs"),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode system status")
	}
}

// hostUsage samples CPU and memory utilization. Failures degrade to zero
// values rather than failing the status endpoint.
func (h *SystemHandlers) hostUsage() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return avg(cpuPercent), 0
	}

	return avg(cpuPercent), memStat.UsedPercent
}

func (h *SystemHandlers) tableCount(table string) int {
	var count int
	if err := h.db.Conn().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		h.log.Warn().Err(err).Str("table", table).Msg("Failed to count rows")
		return 0
	}
	return count
}

func avg(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
