package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/face-attendance/internal/lbp"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// MatchIndexHNSW selects the approximate HNSW match index instead of the
// default exact linear scan.
const MatchIndexHNSW = "hnsw"

type Config struct {
	Detector DetectorConfig `yaml:"detector"`
	Encoder  lbp.Params     `yaml:"encoder"`
	Matcher  MatcherConfig  `yaml:"matcher"`
	Storage  StorageConfig  `yaml:"-"`
}

// DetectorConfig tunes the multi-scale sliding-window face detector.
// ScaleFactor and MinSize trade recall against precision; QualityThreshold
// drops weak detections before clustering.
type DetectorConfig struct {
	CascadePath      string  `yaml:"-"`                 // path to the binary cascade model
	ScaleFactor      float64 `yaml:"scale_factor"`      // window growth per pyramid step
	ShiftFactor      float64 `yaml:"shift_factor"`      // window stride as fraction of size
	MinSize          int     `yaml:"min_size"`          // smallest face in pixels
	MaxSize          int     `yaml:"max_size"`          // largest face in pixels
	QualityThreshold float64 `yaml:"quality_threshold"` // minimum cascade score
	OverlapIoU       float64 `yaml:"overlap_iou"`       // cluster overlap for duplicate windows
}

type MatcherConfig struct {
	// Threshold is the strict acceptance bound on chi-square distance.
	Threshold float64 `yaml:"threshold"`
	// Index selects the match search strategy: empty/linear for the exact
	// scan, "hnsw" for the approximate index.
	Index string `yaml:"-"`
	// IndexPath persists the HNSW index between runs when set.
	IndexPath string `yaml:"-"`
}

type StorageConfig struct {
	FacesDir      string // per-person enrollment images
	AttendanceDir string // per-date attendance partitions
	UnknownDir    string // snapshots of unrecognized faces; empty disables
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a fallback.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// Load builds the effective configuration: embedded tuning defaults
// overlaid with environment variables.
func Load() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// Embedded file; failing to parse it is a build defect.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	cfg.Detector.CascadePath = envString("CASCADE_PATH", "models/facefinder")
	cfg.Detector.MinSize = envInt("DETECT_MIN_SIZE", cfg.Detector.MinSize)
	cfg.Detector.MaxSize = envInt("DETECT_MAX_SIZE", cfg.Detector.MaxSize)
	cfg.Detector.ScaleFactor = envFloat("DETECT_SCALE_FACTOR", cfg.Detector.ScaleFactor)
	cfg.Detector.QualityThreshold = envFloat("DETECT_QUALITY_THRESHOLD", cfg.Detector.QualityThreshold)

	cfg.Matcher.Threshold = envFloat("MATCH_THRESHOLD", cfg.Matcher.Threshold)
	cfg.Matcher.Index = os.Getenv("MATCH_INDEX")
	cfg.Matcher.IndexPath = os.Getenv("MATCH_INDEX_PATH")

	cfg.Storage = StorageConfig{
		FacesDir:      envString("FACES_DIR", "known_faces"),
		AttendanceDir: envString("ATTENDANCE_DIR", "attendance"),
		UnknownDir:    os.Getenv("UNKNOWN_FACES_DIR"),
	}

	return &cfg
}
