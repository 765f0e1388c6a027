package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/edictbridge/internal/config"
	"github.com/l1jgo/edictbridge/internal/console"
	"github.com/l1jgo/edictbridge/internal/core/event"
	coresys "github.com/l1jgo/edictbridge/internal/core/system"
	"github.com/l1jgo/edictbridge/internal/data"
	"github.com/l1jgo/edictbridge/internal/persist"
	"github.com/l1jgo/edictbridge/internal/scripting"
	"github.com/l1jgo/edictbridge/internal/system"
	"github.com/l1jgo/edictbridge/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            edictbridge  v0.1.0            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       entity host · lua game scripts      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Optional session journal
	bus := event.NewBus()
	runner := coresys.NewRunner()
	var persistSys *system.PersistenceSystem

	printSection("journal")
	if cfg.Database.DSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		repo := persist.NewJournalRepo(db)
		if last, err := repo.LastSession(ctx); err != nil {
			log.Warn("read journal", zap.Error(err))
		} else if last != nil && last.EndedAt == nil {
			log.Warn("previous session did not end cleanly",
				zap.String("level", last.Level),
				zap.Uint32("epoch", last.Epoch),
				zap.Int("hook_failures", last.Failures))
		}
		journal := persist.NewJournal(repo, cfg.Server.StartTime, log)
		journal.Subscribe(bus)
		intervalTicks := int(cfg.Database.FlushInterval / cfg.Session.TickRate)
		persistSys = system.NewPersistenceSystem(journal, log, intervalTicks)
		runner.Register(persistSys)
	} else {
		printOK("disabled (no database.dsn)")
	}
	fmt.Println()

	// 4. Host state
	printSection("host")
	charset, err := world.NewCharset(cfg.Host.Charset)
	if err != nil {
		return fmt.Errorf("host charset: %w", err)
	}
	natives := world.DefaultNatives()
	state := world.NewState(world.Options{
		MaxEdicts:  cfg.Session.MaxEdicts,
		MaxClients: cfg.Session.MaxClients,
		Charset:    charset,
		Natives:    natives,
	}, log)
	printStat("edict slots", state.PoolCapacity())
	printStat("client slots", state.MaxClients())
	printStat("native classes", natives.Len())
	fmt.Println()

	// 5. Scripts
	printSection("scripts")
	engine, err := scripting.NewEngine(state, bus, scripting.Options{
		Dir:            cfg.Scripting.Dir,
		Sandbox:        cfg.Scripting.Sandbox,
		Strict:         cfg.Session.Strict,
		OverrideNative: cfg.Session.OverrideNative,
	}, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	printStat("hook handlers", engine.Bridge().HandlerCount())
	fmt.Println()

	// 6. Console and rcon
	levels := func(name string) (*data.Level, error) {
		return data.LoadNamedLevel(cfg.Server.LevelsDir, name)
	}
	con := console.New(state, engine, levels, log)
	queue := console.NewQueue(cfg.Console.QueueSize)

	var rcon *console.Listener
	if cfg.Console.BindAddress != "" {
		rcon, err = console.Listen(cfg.Console.BindAddress, cfg.Console.RconPasswordHash, queue, log)
		if err != nil {
			return fmt.Errorf("rcon: %w", err)
		}
		go rcon.AcceptLoop()
	}

	done := make(chan struct{})
	if cfg.Console.Stdin {
		go func() {
			_ = console.ReadLines(os.Stdin, os.Stdout, queue, done, log)
		}()
	}

	// 7. Systems
	runner.Register(system.NewInputSystem(queue, con, cfg.Console.MaxPerTick))
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewFrameSystem(state, log))
	runner.Register(system.NewCleanupSystem(state))
	printStat("tick systems", runner.Len())

	// 8. First level
	lvl, err := levels(cfg.Server.Level)
	if err != nil {
		return fmt.Errorf("boot level: %w", err)
	}
	if err := state.SpawnServer(lvl); err != nil {
		return fmt.Errorf("spawn %s: %w", lvl.Name, err)
	}

	// 9. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Session.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("level %s (%d edicts)", state.Level(), len(state.Live())))
	if rcon != nil {
		printReady(fmt.Sprintf("rcon on %s", rcon.Addr().String()))
	}
	printReady(fmt.Sprintf("game loop running (tick: %s)", cfg.Session.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Session.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			close(done)
			if rcon != nil {
				rcon.Shutdown()
			}
			state.Shutdown("server quit")
			if persistSys != nil {
				// deliver the final SessionEnded before the last flush
				bus.SwapBuffers()
				bus.DispatchAll()
				persistSys.Flush()
			}
			log.Info("server stopped")
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
