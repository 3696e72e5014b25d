// Package api serves the colony over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token and mutate the simulation.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/nanoverse/internal/building"
	"github.com/talgya/nanoverse/internal/persistence"
	"github.com/talgya/nanoverse/internal/sim"
)

// Server serves the colony state over HTTP.
type Server struct {
	Sim      *sim.Simulation
	Runner   *sim.Runner
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Commands contend with the tick loop for the sim mutex, so cap the
	// rate a single client can hammer them.
	cmdLimiter := NewLimiter(600, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/cells", s.handleCells)
	mux.HandleFunc("/api/v1/buildings", s.handleBuildings)
	mux.HandleFunc("/api/v1/nanos", s.handleNanos)
	mux.HandleFunc("/api/v1/nano/", s.handleNanoDetail)
	mux.HandleFunc("/api/v1/candidates", s.handleCandidates)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)

	// Command endpoints (POST, bearer token).
	command := func(path string, h http.HandlerFunc) {
		mux.HandleFunc(path, s.adminOnly(cmdLimiter.Throttle(h)))
	}
	command("/api/v1/work", s.handleWork)
	command("/api/v1/work/upgrade", s.handleWorkUpgrade)
	command("/api/v1/sell", s.handleSell)
	command("/api/v1/cell/buy", s.handleCellBuy)
	command("/api/v1/cell/upgrade", s.handleCellUpgrade)
	command("/api/v1/cell/inject", s.handleCellInject)
	command("/api/v1/building/place", s.handleBuildingPlace)
	command("/api/v1/hire", s.handleHire)
	command("/api/v1/nano/move", s.handleNanoMove)
	command("/api/v1/speed", s.handleSpeed)
	command("/api/v1/snapshot", s.handleSnapshot)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require the POST method with a bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "command endpoints disabled (no NANOVERSE_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"name":     "Nanoverse Battery",
		"status":   s.Sim.Status(),
		"speed":    s.Runner.Speed(),
		"interval": s.Runner.Interval.String(),
	})
}

func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.CellViews())
}

func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	type buildingView struct {
		ID        int    `json:"id"`
		Type      string `json:"type"`
		X         int    `json:"x"`
		Y         int    `json:"y"`
		Level     int    `json:"level"`
		Capacity  int    `json:"capacity"`
		Occupants []int  `json:"occupants"`
	}

	all := s.Sim.BuildingViews()
	result := make([]buildingView, 0, len(all))
	for _, b := range all {
		result = append(result, buildingView{
			ID:        b.ID,
			Type:      b.Type.String(),
			X:         b.X,
			Y:         b.Y,
			Level:     b.Level,
			Capacity:  b.Capacity,
			Occupants: b.Occupants,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleNanos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.NanoViews())
}

func (s *Server) handleNanoDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 {
		http.Error(w, "missing nano id", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(parts[4])
	if err != nil {
		http.Error(w, "invalid nano id", http.StatusBadRequest)
		return
	}
	n, ok := s.Sim.Nano(id)
	if !ok {
		http.Error(w, "nano not found", http.StatusNotFound)
		return
	}
	writeJSON(w, n)
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.CandidateViews())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	since := uint64(0)
	if v := r.URL.Query().Get("since"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			since = n
		}
	}

	events := s.Sim.EventsSince(since)

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	if events == nil {
		events = []sim.Event{}
	}
	writeJSON(w, events)
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	g := s.Sim.Grid
	rows := make([][]bool, g.Rows)
	for y := 0; y < g.Rows; y++ {
		rows[y] = make([]bool, g.Cols)
		for x := 0; x < g.Cols; x++ {
			rows[y][x] = g.Walkable(x, y)
		}
	}
	hx, hy := g.HubCell()
	writeJSON(w, map[string]any{
		"cols":      g.Cols,
		"rows":      g.Rows,
		"cell_size": g.CellSize,
		"hub":       [2]int{hx, hy},
		"walkable":  rows,
	})
}

func (s *Server) handleWork(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.Sim.ManualWork())
}

func (s *Server) handleWorkUpgrade(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.Sim.UpgradeWorkPower())
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		http.Error(w, "positive amount required", http.StatusBadRequest)
		return
	}
	writeResult(w, s.Sim.SellEnergy(req.Amount))
}

func (s *Server) handleCellBuy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	writeResult(w, s.Sim.PurchaseCell(req.X, req.Y))
}

func (s *Server) handleCellUpgrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number int `json:"number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	writeResult(w, s.Sim.UpgradeCell(req.Number))
}

func (s *Server) handleCellInject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number int     `json:"number"`
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		http.Error(w, "positive amount required", http.StatusBadRequest)
		return
	}
	writeResult(w, s.Sim.InjectCellEnergy(req.Number, req.Amount))
}

func (s *Server) handleBuildingPlace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
		X    int    `json:"x"`
		Y    int    `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	t, ok := building.TypeFromString(req.Type)
	if !ok {
		http.Error(w, "unknown building type", http.StatusBadRequest)
		return
	}
	writeResult(w, s.Sim.PlaceBuilding(t, req.X, req.Y))
}

func (s *Server) handleHire(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CandidateID int `json:"candidate_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	writeResult(w, s.Sim.Hire(req.CandidateID))
}

func (s *Server) handleNanoMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int     `json:"id"`
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	writeResult(w, s.Sim.MoveNano(req.ID, req.X, req.Y))
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 1000 {
		http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
		return
	}
	s.Runner.SetSpeed(req.Speed)
	slog.Info("speed changed", "speed", req.Speed)
	writeJSON(w, map[string]float64{"speed": s.Runner.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	st := s.Sim.Export()
	if err := s.DB.SaveState(st); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"tick":    st.Tick,
		"message": "snapshot saved",
	})
}

// writeResult renders a command result; failures come back as 409 so
// clients can distinguish "rejected" from transport errors.
func writeResult(w http.ResponseWriter, res sim.Result) {
	w.Header().Set("Content-Type", "application/json")
	if !res.OK {
		w.WriteHeader(http.StatusConflict)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(res)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
