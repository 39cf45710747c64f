package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andresuchdata/autopo-sim/internal/config"
	"github.com/andresuchdata/autopo-sim/internal/domain"
	"github.com/andresuchdata/autopo-sim/internal/pipeline"
	"github.com/andresuchdata/autopo-sim/internal/report"
	"github.com/andresuchdata/autopo-sim/internal/repository"
	"github.com/andresuchdata/autopo-sim/internal/repository/postgres"
	"github.com/andresuchdata/autopo-sim/internal/service"
	"github.com/andresuchdata/autopo-sim/internal/storage"
	"github.com/andresuchdata/autopo-sim/pkg/logger"
	"github.com/urfave/cli/v2"
)

const (
	policyNone = "none"
	policyAuto = "auto"

	reportPrefix = "reports/"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	app := &cli.App{
		Name:  "simulate",
		Usage: "Run the inventory simulation headless",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Advance a fresh session for a number of days and print the totals",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "days",
						Usage: "Number of daily cycles to run",
						Value: 30,
					},
					&cli.Uint64Flag{
						Name:  "seed",
						Usage: "Demand seed (0 uses SIM_SEED, then the clock)",
					},
					&cli.StringFlag{
						Name:  "order-policy",
						Usage: "none: never order; auto: follow each day's recommendation",
						Value: policyNone,
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Write the CSV report to this path",
					},
					&cli.BoolFlag{
						Name:  "upload",
						Usage: "Upload the CSV report to the configured bucket",
					},
					&cli.BoolFlag{
						Name:  "export-db",
						Usage: "Export every day to the configured PostgreSQL database",
					},
				},
				Action: func(c *cli.Context) error {
					return runCommand(c, cfg)
				},
			},
			{
				Name:  "reports",
				Usage: "List uploaded reports",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Only list keys under this prefix",
						Value: reportPrefix,
					},
				},
				Action: func(c *cli.Context) error {
					return listReports(c, cfg)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("simulate failed")
	}
}

func runCommand(c *cli.Context, cfg *config.Config) error {
	policy := c.String("order-policy")
	if policy != policyNone && policy != policyAuto {
		return fmt.Errorf("unknown order policy %q", policy)
	}
	days := c.Int("days")
	if days < 0 {
		return fmt.Errorf("days must not be negative")
	}

	simCfg := cfg.Simulation
	if seed := c.Uint64("seed"); seed != 0 {
		simCfg.Seed = seed
	}
	opts := pipeline.OptionsFromConfig(simCfg)

	history := repository.NewNoopHistoryRepository()
	if c.Bool("export-db") {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		history = postgres.NewHistoryRepository(db)
		if err := history.EnsureSchema(c.Context); err != nil {
			return err
		}
	}

	svc := service.NewSimulationService(
		domain.NewSystemState(domain.DefaultProduct()),
		pipeline.New(opts),
		history,
		nil,
	)

	start := time.Now()
	placed := runSimulation(c.Context, svc, days, policy)

	payload, summary, err := renderReport(svc)
	if err != nil {
		return err
	}

	logger.Log.Info().
		Str("session_id", svc.SessionID()).
		Uint64("seed", opts.Seed).
		Int("days", summary.Days).
		Int("orders_placed", placed).
		Int("total_demand", summary.TotalDemand).
		Int("total_sold", summary.TotalSold).
		Float64("fill_rate", summary.FillRate).
		Int("stockout_days", summary.StockoutDays).
		Str("holding_cost", summary.HoldingCost.StringFixed(2)).
		Str("stockout_cost", summary.StockoutCost.StringFixed(2)).
		Str("total_cost", summary.TotalCost.StringFixed(2)).
		Dur("elapsed", time.Since(start)).
		Msg("simulation finished")

	if path := c.String("report"); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed creating directory for %s: %w", path, err)
		}
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return fmt.Errorf("failed writing %s: %w", path, err)
		}
		logger.Log.Info().Str("path", path).Msg("report written")
	}

	if c.Bool("upload") {
		client, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			return err
		}
		if err := client.EnsureBucket(c.Context); err != nil {
			return err
		}
		key := reportKey(svc.SessionID())
		if err := client.UploadObject(c.Context, key, payload, "text/csv"); err != nil {
			return err
		}
		logger.Log.Info().Str("key", key).Msg("report uploaded")
	}

	return nil
}

// runSimulation advances svc for days cycles and returns how many orders the
// policy placed.
func runSimulation(ctx context.Context, svc *service.SimulationService, days int, policy string) int {
	placed := 0
	for i := 0; i < days; i++ {
		svc.AdvanceDay(ctx)
		if policy == policyAuto {
			placed += len(svc.PlaceRecommendedOrders(ctx))
		}
	}
	return placed
}

func renderReport(svc *service.SimulationService) ([]byte, report.Summary, error) {
	var (
		rows    []report.Row
		summary report.Summary
	)
	svc.WithState(func(state *domain.SystemState) {
		rows, summary = report.Build(state)
	})

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rows, summary); err != nil {
		return nil, summary, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), summary, nil
}

func reportKey(sessionID string) string {
	return reportPrefix + sessionID + ".csv"
}

func listReports(c *cli.Context, cfg *config.Config) error {
	client, err := storage.NewS3Client(cfg.Storage)
	if err != nil {
		return err
	}

	objects, err := client.ListObjects(c.Context, c.String("prefix"))
	if err != nil {
		return err
	}
	for _, obj := range objects {
		fmt.Fprintf(c.App.Writer, "%s\t%d\n", obj.Key, obj.Size)
	}
	return nil
}
