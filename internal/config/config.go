// Package config loads run configuration from CLI flags and their
// defaults, parsed with pflag (including the solver's multi-valued
// --weight flag). A viper instance with AutomaticEnv is set up in the
// style of the ride-matching teacher pack's config.Load() pattern, but
// its values are not read back, so environment variables have no
// effect on the result.
package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully-resolved run configuration for one process
// invocation (SPEC_FULL.md §4.8/§6).
type Config struct {
	Alpha, Beta, Gamma float64
	Penalty            float64
	Detour             float64

	RequestsCSV string
	VehiclesCSV string
	GraphCSV    string // planner road-graph edges: from,to,seconds

	StartTime    string // RFC3339; empty means "now"
	TickSeconds  int
	SolveDeadlineMS int

	AuditDB  string // empty disables the audit log
	LogLevel string
}

// Load parses args (typically os.Args[1:]) and returns the resolved
// Config. Every field comes from its flag, or the flag's default when
// the flag is absent; DARP_* environment variables are not consulted.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("darp-dispatch", pflag.ContinueOnError)

	weight := flags.Float64Slice("weight", []float64{1, 1, 1}, "objective weights: alpha beta gamma")
	penalty := flags.Float64("penalty", 1000, "penalty per unvisited stop")
	detour := flags.Float64("detour", 2.0, "maximum tolerated detour ratio")
	requestsCSV := flags.String("requests-csv", "requests.csv", "path to the request feed")
	vehiclesCSV := flags.String("vehicles-csv", "vehicles.csv", "path to the vehicle feed")
	graphCSV := flags.String("graph-csv", "graph.csv", "path to the planner's road-graph edge list (from,to,seconds)")
	startTime := flags.String("start-time", "", "simulated start time (RFC3339); defaults to now")
	tickSeconds := flags.Int("tick-seconds", 60, "tick length in seconds")
	solveDeadlineMS := flags.Int("solve-deadline-ms", 5000, "per-solve wall-clock deadline in milliseconds")
	auditDB := flags.String("audit-db", "", "path to the audit sqlite database; empty disables it")
	logLevel := flags.String("log-level", "info", "log level: debug, info, warn, error")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("darp")
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	w := *weight
	for len(w) < 3 {
		w = append(w, 1)
	}

	return &Config{
		Alpha:           w[0],
		Beta:            w[1],
		Gamma:           w[2],
		Penalty:         *penalty,
		Detour:          *detour,
		RequestsCSV:     *requestsCSV,
		VehiclesCSV:     *vehiclesCSV,
		GraphCSV:        *graphCSV,
		StartTime:       *startTime,
		TickSeconds:     *tickSeconds,
		SolveDeadlineMS: *solveDeadlineMS,
		AuditDB:         *auditDB,
		LogLevel:        *logLevel,
	}, nil
}
