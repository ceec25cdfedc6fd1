// Command breakroom runs the settlement simulation headless or in real time
// and keeps an archive of finished runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/talgya/breakroom/internal/autopilot"
	"github.com/talgya/breakroom/internal/config"
	"github.com/talgya/breakroom/internal/engine"
	"github.com/talgya/breakroom/internal/metrics"
	"github.com/talgya/breakroom/internal/persistence"
	"github.com/talgya/breakroom/internal/world"
)

type runFlags struct {
	configFile string
	seed       int64
	ticks      int
	realtime   bool
	speed      float64
	autopilot  bool
	noArchive  bool
	metrics    string
}

type runsFlags struct {
	configFile string
	limit      int
	best       bool
	events     string
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "breakroom",
		Short: "Hex settlement growth simulation",
		Long: `Offices send workers across a growing hex map to the nearest break shop.
Served workers earn money, workers left waiting too long cost money, and
running out of money ends the run.`,
	}

	var rf runFlags
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, rf)
		},
	}
	runCmd.Flags().StringVarP(&rf.configFile, "config", "c", "", "Path to YAML config file")
	runCmd.Flags().Int64VarP(&rf.seed, "seed", "s", 0, "Random seed (0 = config or random)")
	runCmd.Flags().IntVarP(&rf.ticks, "ticks", "t", 20000, "Ticks to run headless")
	runCmd.Flags().BoolVarP(&rf.realtime, "realtime", "r", false, "Run against the wall clock until interrupted")
	runCmd.Flags().Float64Var(&rf.speed, "speed", 1.0, "Real-time speed multiplier")
	runCmd.Flags().BoolVarP(&rf.autopilot, "autopilot", "a", false, "Let the autopilot open break shops")
	runCmd.Flags().BoolVar(&rf.noArchive, "no-archive", false, "Do not archive the finished run")
	runCmd.Flags().StringVarP(&rf.metrics, "metrics", "m", "", "Write Prometheus metrics to this file")

	var lf runsFlags
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(lf)
		},
	}
	runsCmd.Flags().StringVarP(&lf.configFile, "config", "c", "", "Path to YAML config file")
	runsCmd.Flags().IntVarP(&lf.limit, "limit", "n", 10, "Number of runs to show")
	runsCmd.Flags().BoolVarP(&lf.best, "best", "b", false, "Order by rings reached instead of recency")
	runsCmd.Flags().StringVarP(&lf.events, "events", "e", "", "Show the events of one run")

	rootCmd.AddCommand(runCmd, runsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
}

func runSimulation(cmd *cobra.Command, rf runFlags) error {
	cfg, err := config.Load(rf.configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = rf.seed
	}
	if cmd.Flags().Changed("autopilot") {
		cfg.Autopilot = rf.autopilot
	}
	if rf.metrics != "" {
		cfg.MetricsFile = rf.metrics
	}
	setupLogging(cfg)

	sim, err := engine.NewSimulation(cfg.Engine())
	if err != nil {
		return fmt.Errorf("create simulation: %w", err)
	}
	eng := engine.NewEngine(sim)
	eng.TickRate = cfg.TickRate
	eng.Speed = rf.speed

	collector := metrics.NewCollector()
	var archived []engine.Event
	eng.OnEvents = func(events []engine.Event) {
		collector.ObserveEvents(events)
		for _, e := range events {
			// Movement is only interesting live.
			if e.Kind != engine.EventWorkerMoved {
				archived = append(archived, e)
			}
		}
	}

	var pilot *autopilot.Pilot
	if cfg.Autopilot {
		pc := autopilot.DefaultConfig()
		pc.Seed = sim.Seed()
		pilot = autopilot.New(pc)
	}

	runID := persistence.NewRunID()
	started := time.Now()
	slog.Info("run started", "id", runID, "seed", sim.Seed(), "autopilot", cfg.Autopilot)

	if rf.realtime {
		err = runRealtime(eng, pilot)
	} else {
		err = runHeadless(eng, pilot, rf.ticks)
	}
	if err != nil && !errors.Is(err, engine.ErrGameOver) {
		return err
	}
	collector.ObserveState(sim)

	summary := persistence.Summarize(runID, sim, started, time.Now(), cfg.Autopilot)
	printSummary(summary, sim)

	if cfg.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		slog.Info("metrics written", "path", cfg.MetricsFile)
	}

	if rf.noArchive || cfg.ArchivePath == "" {
		return nil
	}
	db, err := persistence.Open(cfg.ArchivePath)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.ArchiveRun(summary, archived)
}

func runHeadless(eng *engine.Engine, pilot *autopilot.Pilot, ticks int) error {
	interval := eng.TickInterval()
	for i := 0; i < ticks; i++ {
		eng.Advance(interval)
		if pilot != nil {
			pilot.Step(eng.Sim)
		}
		if over, _ := eng.Sim.Over(); over {
			return engine.ErrGameOver
		}
	}
	return nil
}

func runRealtime(eng *engine.Engine, pilot *autopilot.Pilot) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if pilot != nil {
		observe := eng.OnEvents
		eng.OnEvents = func(events []engine.Event) {
			observe(events)
			pilot.Step(eng.Sim)
		}
	}
	eng.OnRing = func(radius int) {
		used, limit := eng.Sim.Capacity()
		fmt.Printf("%s ring %d, %d/%d shops, %s\n",
			color.CyanString("▲"), radius, used, limit, eng.Sim.TimeString())
	}
	return eng.Run(ctx)
}

func printSummary(s persistence.RunSummary, sim *engine.Simulation) {
	titleColor := color.New(color.FgCyan, color.Bold)
	titleColor.Println("\nRun summary")

	if s.GameOver {
		color.Red("Game over: %s", s.Reason)
	} else {
		color.Green("Still solvent after %s ticks", humanize.Comma(int64(s.Ticks)))
	}

	used, limit := sim.Capacity()
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Seed", "Time", "Rings", "Shops", "Balance", "Earned", "Penalties", "Served", "Expired"}),
	)
	_ = table.Append([]string{
		fmt.Sprintf("%d", s.Seed),
		s.SimTime,
		fmt.Sprintf("%d", s.Rings),
		fmt.Sprintf("%d/%d", used, limit),
		humanize.Comma(int64(s.Balance)),
		humanize.Comma(int64(s.Earned)),
		humanize.Comma(int64(s.Penalties)),
		humanize.Comma(int64(s.Served)),
		humanize.Comma(int64(s.Expired)),
	})
	_ = table.Render()

	counts := world.KindCounts(sim.Map)
	fmt.Printf("   Tiles: %d offices, %d shops, %d lots, %d obstacles\n",
		counts[world.TileActive], counts[world.TileBreakShop], counts[world.TileInactive], counts[world.TileObstacle])
}

func listRuns(lf runsFlags) error {
	cfg, err := config.Load(lf.configFile)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	db, err := persistence.Open(cfg.ArchivePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if lf.events != "" {
		return listEvents(db, lf.events, lf.limit)
	}

	var runs []persistence.RunSummary
	if lf.best {
		runs, err = db.BestRuns(lf.limit)
	} else {
		runs, err = db.RecentRuns(lf.limit)
	}
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		color.Yellow("No archived runs in %s", cfg.ArchivePath)
		return nil
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"ID", "Ended", "Seed", "Ticks", "Time", "Rings", "Balance", "Served", "Expired", "Result"}),
	)
	for _, r := range runs {
		result := "running"
		if r.GameOver {
			result = "bankrupt"
		}
		if r.Autopilot {
			result += " (auto)"
		}
		_ = table.Append([]string{
			r.ID[:8],
			humanize.Time(time.Unix(r.EndedAt, 0)),
			fmt.Sprintf("%d", r.Seed),
			humanize.Comma(int64(r.Ticks)),
			r.SimTime,
			fmt.Sprintf("%d", r.Rings),
			humanize.Comma(int64(r.Balance)),
			humanize.Comma(int64(r.Served)),
			humanize.Comma(int64(r.Expired)),
			result,
		})
	}
	_ = table.Render()
	return nil
}

func listEvents(db *persistence.DB, runID string, limit int) error {
	events, err := db.RunEvents(runID, limit)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Tick", "Kind", "Where", "Description"}),
	)
	for _, e := range events {
		_ = table.Append([]string{
			fmt.Sprintf("%d", e.Tick),
			e.Kind,
			fmt.Sprintf("(%d,%d)", e.Q, e.R),
			e.Description,
		})
	}
	_ = table.Render()
	return nil
}
