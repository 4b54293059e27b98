// Command gameserver runs the Starhold turn-based strategy server: the
// tick engine, the movement and detection cores, and the HTTP API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/starhold/internal/api"
	"github.com/talgya/starhold/internal/detection"
	"github.com/talgya/starhold/internal/engine"
	"github.com/talgya/starhold/internal/entropy"
	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/movement"
	"github.com/talgya/starhold/internal/persistence"
	"github.com/talgya/starhold/internal/tuning"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starhold — tick-based 4X strategy server")

	dbPath := envOr("STARHOLD_DB", "data/starhold.db")
	apiPort := envInt("STARHOLD_PORT", 8080)
	seed := int64(envInt("STARHOLD_SEED", 42))
	tuningPath := os.Getenv("STARHOLD_TUNING")

	// ── Tuning ───────────────────────────────────────────────────────
	cfg, err := tuning.Load(tuningPath)
	if err != nil {
		slog.Error("failed to load tuning", "path", tuningPath, "error", err)
		os.Exit(1)
	}
	if tuningPath != "" {
		slog.Info("tuning loaded", "path", tuningPath)
	}

	// ── Database ─────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Galaxy (generated once, deterministic from seed) ─────────────
	if !db.HasGalaxy() {
		slog.Info("no galaxy found, generating...", "seed", seed)
		genCfg := galaxy.DefaultGenConfig()
		genCfg.Seed = seed
		g := galaxy.Generate(genCfg)
		if err := db.SaveGalaxy(g); err != nil {
			slog.Error("failed to save galaxy", "error", err)
			os.Exit(1)
		}
	}
	systems, err := db.Systems()
	if err != nil {
		slog.Error("failed to load systems", "error", err)
		os.Exit(1)
	}

	// ── Tick position ────────────────────────────────────────────────
	var startTick int64
	if tickStr, err := db.GetMeta("last_tick"); err == nil {
		if t, err := strconv.ParseInt(tickStr, 10, 64); err == nil {
			startTick = t
		}
	}
	db.SetTick(startTick)

	// ── Core services ────────────────────────────────────────────────
	moveSvc := &movement.Service{
		Units:  db,
		Ledger: db,
		Ref:    db,
		Events: db,
		Cfg:    cfg,
	}

	rng := entropy.NewSource(os.Getenv("STARHOLD_RANDOM_ORG_KEY"))
	if rng != nil {
		slog.Info("entropy source enabled (random.org)")
	}
	detEngine := &detection.Engine{
		Units:  db,
		Events: db,
		Roller: &detection.ContestRoller{Rng: rng},
		Cfg:    cfg.Detection,
	}

	eng := engine.NewEngine(startTick)
	cycle := &engine.Cycle{
		Store:     db,
		Movement:  moveSvc,
		Detection: detEngine,
	}
	eng.OnTick = cycle.Advance

	// ── HTTP API ─────────────────────────────────────────────────────
	adminKey := os.Getenv("STARHOLD_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("STARHOLD_ADMIN_KEY not set — tick control endpoints will be disabled")
	}

	apiServer := &api.Server{
		DB:       db,
		Move:     moveSvc,
		Det:      detEngine,
		Eng:      eng,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	unitList, _ := db.ActiveUnits()
	fmt.Printf("\nStarhold is live: %s systems, %s units in play.\n",
		humanize.Comma(int64(len(systems))), humanize.Comma(int64(len(unitList))))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	if startTick > 0 {
		fmt.Printf("Resuming from tick %d\n", startTick)
	}
	fmt.Println("Starting tick engine... (Ctrl+C to stop)")

	eng.Run()

	fmt.Println("Server stopped.")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
