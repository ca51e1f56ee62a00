// Package config centralizes the tunables spec.md names inline (ring
// capacity, MAX_FALLBEHIND, SNAPSHOT_INTERVAL, ...), loaded the way the
// teacher loads server config: a plain struct processed by envconfig.
package config

import "github.com/kelseyhightower/envconfig"

// Canvas holds the per-session fixed dimensions (§3 "Canvas dimensions").
type Canvas struct {
	MinDim int `envconfig:"CANVAS_MIN_DIM" default:"16"`
	MaxDim int `envconfig:"CANVAS_MAX_DIM" default:"1600"`
}

// History holds the undo ring's tunables (§4.3).
type History struct {
	RingCapacity int `envconfig:"HISTORY_RING_CAPACITY" default:"30"`
}

// Reconciler holds the fork/rollback/replay tunables (§4.6).
type Reconciler struct {
	MaxFallbehind     int `envconfig:"RECONCILER_MAX_FALLBEHIND" default:"100"`
	SnapshotInterval  int `envconfig:"RECONCILER_SNAPSHOT_INTERVAL_OPS" default:"50"`
	SnapshotEverySec  int `envconfig:"RECONCILER_SNAPSHOT_INTERVAL_SEC" default:"5"`
	SnapshotRetention int `envconfig:"RECONCILER_SNAPSHOT_RETENTION" default:"5"`
	CoalesceWindowMs  int `envconfig:"RECONCILER_COALESCE_WINDOW_MS" default:"50"`
	CoalesceRadiusPx  int `envconfig:"RECONCILER_COALESCE_RADIUS_PX" default:"5"`
	RectCacheSize     int `envconfig:"RECONCILER_RECT_CACHE_SIZE" default:"1000"`
	ConflictWindow    int `envconfig:"RECONCILER_CONFLICT_WINDOW" default:"20"`
}

// Session holds the session controller's timing tunables (§4.5).
type Session struct {
	CatchupQuietMs  int `envconfig:"SESSION_CATCHUP_QUIET_MS" default:"1000"`
	CatchupStuckSec int `envconfig:"SESSION_CATCHUP_STUCK_SEC" default:"10"`
}

// Input holds the pointer-throttling tunables (§4.8).
type Input struct {
	MinSampleIntervalMs int     `envconfig:"INPUT_MIN_SAMPLE_INTERVAL_MS" default:"12"`
	MinSampleDistancePx float64 `envconfig:"INPUT_MIN_SAMPLE_DISTANCE_PX" default:"1.5"`
}

// Config is the full tunable tree for one embedding of the drawing core.
type Config struct {
	Canvas     Canvas
	History    History
	Reconciler Reconciler
	Session    Session
	Input      Input
}

// Load reads tunables from the environment, falling back to spec.md's
// defaults wherever a variable is unset.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the struct literal equivalent of Load() with no
// environment present — useful for tests and embedders that don't want
// environment-variable configuration at all.
func Default() Config {
	cfg, _ := Load()
	return cfg
}
