// Package config handles sculpting session configuration loading and management.
package config

import "github.com/Faultbox/terrasketch/pkg/math"

// Config holds all session settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Stroke  StrokeConfig  `yaml:"stroke"`
	Brush   BrushConfig   `yaml:"brush"`
	Commit  CommitConfig  `yaml:"commit"`
	Refine  RefineConfig  `yaml:"refine"`
	Record  RecordConfig  `yaml:"record"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig describes the height field and its placement in the world.
type TerrainConfig struct {
	Resolution int       `yaml:"resolution"` // Cells per side
	Origin     math.Vec3 `yaml:"origin"`     // World position of cell (0,0)
	Size       math.Vec3 `yaml:"size"`       // World extent; Size.Y is the height scale
	Offset     float32   `yaml:"offset"`     // Reference offset separating ground and base, world units
}

// StrokeConfig holds stroke capture and edit tuning.
type StrokeConfig struct {
	MinSpacing        float32 `yaml:"min_spacing"`
	EndpointTolerance float32 `yaml:"endpoint_tolerance"`
	InteriorTolerance float32 `yaml:"interior_tolerance"`
	RidgeThreshold    float32 `yaml:"ridge_threshold"`
	DiscardVolume     float32 `yaml:"discard_volume"`
	SizeMin           float32 `yaml:"size_min"`
	SizeMax           float32 `yaml:"size_max"`
	CurveMin          float32 `yaml:"curve_min"`
	CurveMax          float32 `yaml:"curve_max"`
}

// BrushConfig holds brush shape constants.
type BrushConfig struct {
	FillPatch         int     `yaml:"fill_patch"`
	FillPaint         float32 `yaml:"fill_paint"`
	PaintRidge        float32 `yaml:"paint_ridge"`
	PaintWall         float32 `yaml:"paint_wall"`
	PaintFill         float32 `yaml:"paint_fill"`
	PaintWidth        int     `yaml:"paint_width"`
	PaintFillWidth    int     `yaml:"paint_fill_width"`
	HorizontalTangent float32 `yaml:"horizontal_tangent"`
	VerticalTangent   float32 `yaml:"vertical_tangent"`
	LowerMargin       float32 `yaml:"lower_margin"`
}

// CommitConfig controls cooperative commit slicing.
type CommitConfig struct {
	RowsPerTick int `yaml:"rows_per_tick"`
}

// RefineConfig selects and tunes the refinement pass.
type RefineConfig struct {
	Mode        string  `yaml:"mode"` // "terrace" or "passthrough"
	Resolution  int     `yaml:"resolution"`
	NoiseScale  float32 `yaml:"noise_scale"`
	NoiseWeight float32 `yaml:"noise_weight"`
	TerraceStep float32 `yaml:"terrace_step"`
	Seed        int64   `yaml:"seed"`
}

// RecordConfig controls the interaction journal.
type RecordConfig struct {
	Dir string `yaml:"dir"` // Empty disables recording
	PNG bool   `yaml:"png"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Resolution: 129,
			Origin:     math.Vec3{},
			Size:       math.Vec3{X: 256, Y: 100, Z: 256},
			Offset:     0,
		},
		Stroke: StrokeConfig{
			MinSpacing:        1,
			EndpointTolerance: 20,
			InteriorTolerance: 10,
			RidgeThreshold:    0.2,
			DiscardVolume:     20,
			SizeMin:           0.2,
			SizeMax:           2,
			CurveMin:          0.2,
			CurveMax:          2,
		},
		Brush: BrushConfig{
			FillPatch:         20,
			FillPaint:         0.95,
			PaintRidge:        1.0,
			PaintWall:         0.6,
			PaintFill:         0.6,
			PaintWidth:        2,
			PaintFillWidth:    6,
			HorizontalTangent: 0.15,
			VerticalTangent:   0.8,
			LowerMargin:       0.5,
		},
		Commit: CommitConfig{
			RowsPerTick: 32,
		},
		Refine: RefineConfig{
			Mode:        "terrace",
			Resolution:  256,
			NoiseScale:  15,
			NoiseWeight: 1,
			TerraceStep: 0.012,
			Seed:        1,
		},
		Record: RecordConfig{
			Dir: "",
			PNG: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
