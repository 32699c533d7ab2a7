// Command darp-dispatch runs the per-tick multi-objective dial-a-ride
// optimizer end to end against a pair of CSV feeds, advancing simulated
// time until both feeds are exhausted.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"darp-dispatch/internal/audit"
	"darp-dispatch/internal/config"
	"darp-dispatch/internal/feed"
	"darp-dispatch/internal/logging"
	"darp-dispatch/internal/oracle"
	"darp-dispatch/internal/planner"
	"darp-dispatch/internal/registry"
	"darp-dispatch/internal/solver"
	"darp-dispatch/internal/tick"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "build logger")
	}
	defer log.Sync()

	requests, err := feed.LoadRequests(cfg.RequestsCSV)
	if err != nil {
		return errors.Wrap(err, "load requests feed")
	}
	vehicles, err := feed.LoadVehicles(cfg.VehiclesCSV)
	if err != nil {
		return errors.Wrap(err, "load vehicles feed")
	}

	gp := planner.New()
	if cfg.GraphCSV != "" {
		if err := planner.LoadEdgesCSV(gp, cfg.GraphCSV); err != nil {
			return errors.Wrap(err, "load road graph")
		}
	}

	o := oracle.New(gp)
	reg := registry.New(o)

	var auditLog *audit.Log
	if cfg.AuditDB != "" {
		auditLog, err = audit.Open(cfg.AuditDB)
		if err != nil {
			return errors.Wrap(err, "open audit log")
		}
		defer auditLog.Close()
	} else {
		auditLog = audit.NewDisabled()
	}

	orch := &tick.Orchestrator{
		Registry: reg,
		Oracle:   o,
		Requests: requests,
		Vehicles: vehicles,
		Weights: solver.Weights{
			Alpha: cfg.Alpha, Beta: cfg.Beta, Gamma: cfg.Gamma,
			Penalty: cfg.Penalty,
		},
		Detour:          cfg.Detour,
		TickSeconds:     float64(cfg.TickSeconds),
		SolveDeadlineMS: cfg.SolveDeadlineMS,
		Log:             log,
		Audit:           auditLog,
		Report:          os.Stdout,
	}

	now := time.Now()
	if cfg.StartTime != "" {
		parsed, err := time.Parse(time.RFC3339, cfg.StartTime)
		if err != nil {
			return errors.Wrap(err, "parse start time")
		}
		now = parsed
	}

	ctx := context.Background()
	tickLen := time.Duration(cfg.TickSeconds) * time.Second

	for !requests.Exhausted() || !vehicles.Exhausted() {
		if err := orch.RunTick(ctx, now); err != nil {
			return err
		}
		now = now.Add(tickLen)
	}

	return nil
}

// exitCodeFor maps the error taxonomy in SPEC_FULL.md §6/§7 to process
// exit codes: 0 on normal termination, non-zero otherwise with a
// diagnostic already printed.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrDuplicateID):
		return 2
	case errors.Is(err, tick.ErrInfeasible):
		return 3
	case errors.Is(err, tick.ErrSolverFault):
		return 4
	default:
		return 1
	}
}
