// Package api serves the game over HTTP. GET endpoints are read-only
// observation; mutating POST endpoints are rate-limited; tick control
// requires a bearer token.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/starhold/internal/detection"
	"github.com/talgya/starhold/internal/engine"
	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/movement"
	"github.com/talgya/starhold/internal/persistence"
	"github.com/talgya/starhold/internal/units"
)

// Server serves the game state and command endpoints over HTTP.
type Server struct {
	DB       *persistence.DB
	Move     *movement.Service
	Det      *detection.Engine
	Eng      *engine.Engine
	Port     int
	AdminKey string // Bearer token for tick control. Empty = control disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	moveLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public read surface.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/systems", s.handleSystems)
	mux.HandleFunc("/api/v1/system/", s.handleSystemDetail)
	mux.HandleFunc("/api/v1/units", s.handleUnits)
	mux.HandleFunc("/api/v1/unit/", s.handleUnitDetail)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Command surface.
	mux.HandleFunc("/api/v1/move/preview", s.handlePreview)
	mux.HandleFunc("/api/v1/move", RateLimitMiddleware(moveLimiter, s.handleMove))
	mux.HandleFunc("/api/v1/detect", s.handleDetect)
	mux.HandleFunc("/api/v1/interdict", RateLimitMiddleware(moveLimiter, s.handleInterdict))

	// Tick control (POST, requires bearer token).
	mux.HandleFunc("/api/v1/tick", s.adminOnly(s.handleTick))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "tick control disabled (no STARHOLD_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	players, err := s.DB.Players()
	if err != nil {
		failJSON(w, http.StatusInternalServerError, "status unavailable")
		return
	}
	totalEnergy := 0
	for _, p := range players {
		totalEnergy += p.Energy
	}
	unitList, err := s.DB.ActiveUnits()
	if err != nil {
		failJSON(w, http.StatusInternalServerError, "status unavailable")
		return
	}
	inTransit := 0
	for _, u := range unitList {
		if u.Status == units.StatusTransit {
			inTransit++
		}
	}
	systems, _ := s.DB.Systems()

	writeJSON(w, map[string]any{
		"name":          "Starhold",
		"tick":          s.Eng.Tick(),
		"speed":         s.Eng.Speed(),
		"running":       s.Eng.Running(),
		"players":       len(players),
		"units":         len(unitList),
		"in_transit":    inTransit,
		"systems":       len(systems),
		"total_energy":  humanize.Comma(int64(totalEnergy)),
	})
}

func (s *Server) handleSystems(w http.ResponseWriter, r *http.Request) {
	systems, err := s.DB.Systems()
	if err != nil {
		failJSON(w, http.StatusInternalServerError, "systems unavailable")
		return
	}
	writeJSON(w, systems)
}

func (s *Server) handleSystemDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/api/v1/system/")
	if !ok {
		return
	}
	sys, err := s.DB.System(galaxy.SystemID(id))
	if err != nil {
		s.failFromError(w, err)
		return
	}
	planets, err := s.DB.PlanetsInSystem(sys.ID)
	if err != nil {
		failJSON(w, http.StatusInternalServerError, "system unavailable")
		return
	}
	lanes, err := s.DB.LanesFromSystem(sys.ID)
	if err != nil {
		failJSON(w, http.StatusInternalServerError, "system unavailable")
		return
	}
	writeJSON(w, map[string]any{
		"system":  sys,
		"planets": planets,
		"lanes":   lanes,
	})
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	var (
		list []*units.MobileUnit
		err  error
	)
	if p := r.URL.Query().Get("player"); p != "" {
		id, perr := strconv.ParseInt(p, 10, 64)
		if perr != nil {
			failJSON(w, http.StatusBadRequest, "invalid player id")
			return
		}
		list, err = s.DB.UnitsOfPlayer(units.PlayerID(id))
	} else {
		list, err = s.DB.ActiveUnits()
	}
	if err != nil {
		failJSON(w, http.StatusInternalServerError, "units unavailable")
		return
	}
	writeJSON(w, list)
}

func (s *Server) handleUnitDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/api/v1/unit/")
	if !ok {
		return
	}
	u, err := s.DB.LoadUnit(units.UnitID(id))
	if err != nil {
		s.failFromError(w, err)
		return
	}
	writeJSON(w, u)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	var (
		events []persistence.Event
		err    error
	)
	if p := r.URL.Query().Get("player"); p != "" {
		id, perr := strconv.ParseInt(p, 10, 64)
		if perr != nil {
			failJSON(w, http.StatusBadRequest, "invalid player id")
			return
		}
		events, err = s.DB.PlayerEvents(units.PlayerID(id), limit)
	} else {
		events, err = s.DB.RecentEvents(limit)
	}
	if err != nil {
		failJSON(w, http.StatusInternalServerError, "events unavailable")
		return
	}
	writeJSON(w, events)
}

type previewRequest struct {
	Origin      galaxy.Location `json:"origin"`
	Destination galaxy.Location `json:"destination"`
	FleetSize   int             `json:"fleet_size"`
	UseBoost    bool            `json:"use_boost"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		failJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	est, err := s.Move.ClassifyAndEstimate(req.Origin, req.Destination, req.FleetSize, req.UseBoost)
	if err != nil {
		s.failFromError(w, err)
		return
	}
	writeJSON(w, est)
}

type moveRequest struct {
	UnitID      int64           `json:"unit_id"`
	PlayerID    int64           `json:"player_id"`
	Destination galaxy.Location `json:"destination"`
	UseBoost    bool            `json:"use_boost"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		failJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	outcome, err := s.Move.MoveUnit(
		units.UnitID(req.UnitID), req.Destination,
		units.PlayerID(req.PlayerID), s.Eng.Tick(), req.UseBoost,
	)
	if err != nil {
		s.failFromError(w, err)
		return
	}
	writeJSON(w, outcome)
}

type detectRequest struct {
	UnitA int64 `json:"unit_a"`
	UnitB int64 `json:"unit_b"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		failJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	outcome, resA, resB, err := s.Det.ResolveMutualDetection(units.UnitID(req.UnitA), units.UnitID(req.UnitB))
	if err != nil {
		s.failFromError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"success": true,
		"outcome": outcome.String(),
		"a":       resA,
		"b":       resB,
	})
}

type interdictRequest struct {
	InterdictorID int64 `json:"interdictor_id"`
	TargetID      int64 `json:"target_id"`
	PlayerID      int64 `json:"player_id"`
}

func (s *Server) handleInterdict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req interdictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		failJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.Det.AttemptInterdiction(
		units.UnitID(req.InterdictorID), units.UnitID(req.TargetID),
		units.PlayerID(req.PlayerID), s.Eng.Tick(),
	)
	if err != nil {
		s.failFromError(w, err)
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.Eng.Step()
	writeJSON(w, map[string]any{"success": true, "tick": s.Eng.Tick()})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			failJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Speed < 0 || req.Speed > 60 {
			failJSON(w, http.StatusBadRequest, "speed must be between 0 and 60")
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("tick speed changed", "speed", req.Speed)
	}
	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

// failFromError maps core errors to the shaped failure contract: rejected
// validations and shortfalls come back verbatim, missing references as 404,
// anything unexpected as a generic 500.
func (s *Server) failFromError(w http.ResponseWriter, err error) {
	var vErr *movement.ValidationError
	var eErr *movement.InsufficientEnergyError
	switch {
	case errors.As(err, &vErr):
		failJSON(w, http.StatusOK, vErr.Reason)
	case errors.As(err, &eErr):
		failJSON(w, http.StatusOK, eErr.Error())
	case errors.Is(err, movement.ErrNotFound):
		failJSON(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("request failed", "error", err)
		failJSON(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		failJSON(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func failJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
