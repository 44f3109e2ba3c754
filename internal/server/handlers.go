package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/chain-sentry/internal/modules/costs"
	"github.com/aristath/chain-sentry/internal/modules/coverage"
	"github.com/aristath/chain-sentry/internal/modules/effectiveness"
	"github.com/aristath/chain-sentry/internal/modules/managedrisk"
	"github.com/aristath/chain-sentry/internal/modules/optimizer"
	"github.com/aristath/chain-sentry/internal/modules/portfolio"
	"github.com/aristath/chain-sentry/internal/modules/scenarios"
	"github.com/aristath/chain-sentry/internal/modules/scoring"
	"github.com/aristath/chain-sentry/internal/modules/settings"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "chain-sentry",
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response. Validation failures map to
// 400, everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var verrs scoring.ValidationErrors
	var verr scoring.ValidationError
	if errors.As(err, &verrs) || errors.As(err, &verr) {
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// Units
// ---------------------------------------------------------------------------

func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := s.unitsRepo.GetAll()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if units == nil {
		units = []scoring.Unit{}
	}
	s.writeJSON(w, http.StatusOK, units)
}

func (s *Server) handleGetUnit(w http.ResponseWriter, r *http.Request) {
	unit, err := s.unitsRepo.Get(chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if unit == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "unit not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, unit)
}

func (s *Server) handleUpsertUnit(w http.ResponseWriter, r *http.Request) {
	var unit scoring.Unit
	if !s.decode(w, r, &unit) {
		return
	}
	if err := s.unitsRepo.Upsert(unit); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, unit)
}

func (s *Server) handleDeleteUnit(w http.ResponseWriter, r *http.Request) {
	if err := s.unitsRepo.Delete(chi.URLParam(r, "code")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---------------------------------------------------------------------------
// Stateless engine operations
// ---------------------------------------------------------------------------

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Unit    scoring.Unit         `json:"unit"`
		Weights scoring.WeightVector `json:"weights"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Weights.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Unit.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	score := scoring.NewScorer().Score(req.Unit, req.Weights)
	s.writeJSON(w, http.StatusOK, map[string]float64{"score": score})
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Selection []portfolio.SelectedUnit `json:"selection"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeJSON(w, http.StatusOK, portfolio.NewAggregator().Aggregate(req.Selection))
}

func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Units        []coverage.UnitExposure `json:"units"`
		BaselineRisk float64                 `json:"baseline_risk"`
		Focus        float64                 `json:"focus"`
		Mix          coverage.ToolVector     `json:"mix"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	dist := coverage.NewDistributor(s.log).Distribute(req.Units, req.BaselineRisk, req.Focus, req.Mix)
	if dist == nil {
		dist = []coverage.UnitCoverage{}
	}
	s.writeJSON(w, http.StatusOK, dist)
}

func (s *Server) handleDetection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Coverage          coverage.ToolVector `json:"coverage"`
		ToolEffectiveness coverage.ToolVector `json:"tool_effectiveness"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	det := effectiveness.NewAggregator().Detection(req.Coverage, req.ToolEffectiveness)
	s.writeJSON(w, http.StatusOK, map[string]float64{"detection": det})
}

func (s *Server) handleResponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Allocation            effectiveness.ResponseVector `json:"allocation"`
		ResponseEffectiveness effectiveness.ResponseVector `json:"response_effectiveness"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	resp := effectiveness.NewAggregator().Response(req.Allocation, req.ResponseEffectiveness)
	s.writeJSON(w, http.StatusOK, map[string]float64{"response": resp})
}

func (s *Server) handleManagedRisk(w http.ResponseWriter, r *http.Request) {
	var req managedrisk.Input
	if !s.decode(w, r, &req) {
		return
	}
	calc := managedrisk.NewCalculator(effectiveness.NewAggregator(), s.log)
	s.writeJSON(w, http.StatusOK, calc.Calculate(req))
}

func (s *Server) handleCost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tools       coverage.ToolVector          `json:"tools"`
		Responses   effectiveness.ResponseVector `json:"responses"`
		Assumptions *costs.Assumptions           `json:"assumptions,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	assumptions := costs.DefaultAssumptions()
	if req.Assumptions != nil {
		assumptions = *req.Assumptions
	}
	total := costs.NewModel().Total(req.Tools, req.Responses, assumptions)
	s.writeJSON(w, http.StatusOK, map[string]float64{"total": total})
}

// ---------------------------------------------------------------------------
// Working state and optimization
// ---------------------------------------------------------------------------

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.CurrentSnapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	var snap scenarios.Snapshot
	if !s.decode(w, r, &snap) {
		return
	}
	if err := s.engine.SaveCurrent(snap); err != nil {
		s.writeError(w, err)
		return
	}
	saved, err := s.engine.CurrentSnapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Optimize()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleApplyResult(w http.ResponseWriter, r *http.Request) {
	var res optimizer.Result
	if !s.decode(w, r, &res) {
		return
	}
	if err := s.engine.ApplyResult(res); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	runs, err := s.scenariosRepo.ListRuns(limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []scenarios.RunRecord{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	list, err := s.scenariosRepo.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []scenarios.Scenario{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	var sc scenarios.Scenario
	if !s.decode(w, r, &sc) {
		return
	}
	if sc.Name == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scenario name is required"})
		return
	}
	saved, err := s.scenariosRepo.Save(sc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scenariosRepo.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sc == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "scenario not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := s.scenariosRepo.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---------------------------------------------------------------------------
// Settings and jobs
// ---------------------------------------------------------------------------

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	engineSettings, err := s.settingsRepo.Engine()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, engineSettings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.EngineSettings
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.settingsRepo.SaveEngine(req); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleTriggerReoptimize(w http.ResponseWriter, r *http.Request) {
	if s.reoptimizeJob == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "reoptimize job not registered"})
		return
	}
	s.log.Info().Msg("Manual re-optimization triggered")
	if err := s.scheduler.RunNow(s.reoptimizeJob); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
