// Command nanoversed runs the Nanoverse Battery colony simulation.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"log/slog"

	"github.com/talgya/nanoverse/internal/api"
	"github.com/talgya/nanoverse/internal/persistence"
	"github.com/talgya/nanoverse/internal/sim"
	"github.com/talgya/nanoverse/internal/tuning"
	"github.com/talgya/nanoverse/internal/weather"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Nanoverse Battery — colony simulation")

	// ── Tuning ────────────────────────────────────────────────────────
	cfg := tuning.Default()
	if path := os.Getenv("NANOVERSE_CONFIG"); path != "" {
		var err error
		cfg, err = tuning.Load(path)
		if err != nil {
			slog.Error("failed to load config", "path", path, "error", err)
			os.Exit(1)
		}
		slog.Info("config loaded", "path", path)
	}

	dbPath := "data/nanoverse.db"
	if p := os.Getenv("NANOVERSE_DB"); p != "" {
		dbPath = p
	}
	apiPort := 8080
	if p := os.Getenv("NANOVERSE_PORT"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			apiPort = n
		}
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Simulation ────────────────────────────────────────────────────
	colony := sim.New(cfg)

	if db.HasState() {
		slog.Info("found saved colony state, loading...")
		st, err := db.LoadState()
		if err != nil {
			slog.Error("failed to load state", "error", err)
			os.Exit(1)
		}
		colony.Restore(st)
		slog.Info("colony restored",
			"tick", st.Tick,
			"nanos", len(st.Nanos),
			"cells", len(st.Cells),
			"buildings", len(st.Buildings),
		)
	} else {
		slog.Info("no saved state found, starting a fresh colony",
			"seed", cfg.Seed,
			"credits", cfg.Energy.StartingCredits,
		)
		if err := db.SaveState(colony.Export()); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── Weather ───────────────────────────────────────────────────────
	if key := os.Getenv("OPENWEATHER_API_KEY"); key != "" {
		location := os.Getenv("OPENWEATHER_LOCATION")
		if location == "" {
			location = "Reykjavik,IS"
		}
		prov := &weather.Provider{Client: weather.NewClient(key, location)}
		colony.Weather = prov
		go prov.Poll(time.Minute)
		slog.Info("live weather enabled", "location", location)
	} else {
		colony.Weather = &weather.Provider{}
		slog.Info("OPENWEATHER_API_KEY not set — using seasonal default weather")
	}

	// ── Runner with daily autosave ────────────────────────────────────
	runner := sim.NewRunner(colony)

	lastSavedDay := colony.Status().Day
	var lastEventTick uint64
	runner.AfterTick = func(s *sim.Simulation) {
		st := s.Status()
		if st.Day == lastSavedDay {
			return
		}
		lastSavedDay = st.Day
		if err := db.SaveState(s.Export()); err != nil {
			slog.Error("daily save failed", "error", err)
		}
		fresh := s.EventsSince(lastEventTick)
		if err := db.SaveEvents(fresh); err != nil {
			slog.Error("event save failed", "error", err)
		}
		if len(fresh) > 0 {
			lastEventTick = fresh[len(fresh)-1].Tick
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("NANOVERSE_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("NANOVERSE_ADMIN_KEY not set — command endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:      colony,
		Runner:   runner,
		DB:       db,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		runner.Stop()
	}()

	st := colony.Status()
	fmt.Printf("\nNanoverse online: %d nanos, %d cells, %d buildings.\n",
		st.Population, st.Cells, st.Buildings)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	if st.Tick > 0 {
		fmt.Printf("Resuming from tick %d (%s)\n", st.Tick, st.Calendar)
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	runner.Run()

	slog.Info("final save...")
	if err := db.SaveState(colony.Export()); err != nil {
		slog.Error("final save failed", "error", err)
	}
	if err := db.SaveEvents(colony.EventsSince(lastEventTick)); err != nil {
		slog.Error("final event save failed", "error", err)
	}

	fmt.Println("Simulation stopped. Colony state saved.")
}
