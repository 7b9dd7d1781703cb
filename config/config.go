package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BIRDNETFS_THRESHOLD=0.8.
const EnvPrefix = "BIRDNETFS"

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "config_connection.yaml"

type Signal struct {
	Length     float64 `mapstructure:"sig_length"`
	Overlap    float64 `mapstructure:"sig_overlap"`
	MinLength  float64 `mapstructure:"sig_minlen"`
	FMin       float64 `mapstructure:"sig_fmin"`
	FMax       float64 `mapstructure:"sig_fmax"`
	BandpassLo float64 `mapstructure:"bandpass_fmin"`
	BandpassHi float64 `mapstructure:"bandpass_fmax"`
}

type Model struct {
	URL     string        `mapstructure:"model_url"`
	Name    string        `mapstructure:"model_name"`
	Codec   string        `mapstructure:"model_codec"`
	Timeout time.Duration `mapstructure:"model_timeout"`
}

type Labels struct {
	LabelsFile      string `mapstructure:"labels_file"`
	TranslatedFile  string `mapstructure:"translated_labels_file"`
	CodesFile       string `mapstructure:"codes_file"`
	SpeciesListFile string `mapstructure:"species_list_file"`
}

type Location struct {
	Latitude           float64 `mapstructure:"latitude"`
	Longitude          float64 `mapstructure:"longitude"`
	Week               int     `mapstructure:"week"`
	SigmoidSensitivity float64 `mapstructure:"sigmoid_sensitivity"`
}

type Connect struct {
	Attempts int           `mapstructure:"connect_attempts"`
	Delay    time.Duration `mapstructure:"connect_delay"`
	MaxDelay time.Duration `mapstructure:"connect_max_delay"`
}

type Log struct {
	Level  string `mapstructure:"log_level"`
	Format string `mapstructure:"log_format"`
	File   string `mapstructure:"log_file"`
}

// Root is the process-wide configuration. It is built once by Load and
// passed by pointer to every component; nothing mutates it afterwards.
type Root struct {
	ConnectionString string   `mapstructure:"connection_string"`
	InputPath        string   `mapstructure:"input_path"`
	OutputPath       string   `mapstructure:"output_path"`
	AudioExtensions  []string `mapstructure:"audio_extensions"`

	SampleRate    int      `mapstructure:"sample_rate"`
	BatchSize     int      `mapstructure:"batch_size"`
	MinConfidence float64  `mapstructure:"min_confidence"`
	ResultTypes   []string `mapstructure:"result_types"`

	NumSegments      int     `mapstructure:"num_segments"`
	Threshold        float64 `mapstructure:"threshold"`
	IndexDB          string  `mapstructure:"index_db"`
	ToExtractFile    string  `mapstructure:"to_extract_file"`
	SampleMaxStart   float64 `mapstructure:"sample_max_start"`
	OutPathSegments  string  `mapstructure:"out_path_segments"`
	SegmentLength    float64 `mapstructure:"segment_length"`
	ClipSampleRate   int     `mapstructure:"clip_sample_rate"`
	Workers          int     `mapstructure:"workers"`
	TolerateFailures bool    `mapstructure:"tolerate_failures"`
	MetricsFile      string  `mapstructure:"metrics_file"`

	Signal   Signal   `mapstructure:",squash"`
	Model    Model    `mapstructure:",squash"`
	Labels   Labels   `mapstructure:",squash"`
	Location Location `mapstructure:",squash"`
	Connect  Connect  `mapstructure:",squash"`
	Log      Log      `mapstructure:",squash"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("connection_string", "")
	v.SetDefault("input_path", "")
	v.SetDefault("output_path", "")
	v.SetDefault("audio_extensions", []string{".wav", ".flac", ".mp3", ".ogg"})

	v.SetDefault("sample_rate", 48000)
	v.SetDefault("batch_size", 1)
	v.SetDefault("min_confidence", 0.1)
	v.SetDefault("result_types", []string{"table"})

	v.SetDefault("num_segments", 10)
	v.SetDefault("threshold", 0.6)
	v.SetDefault("index_db", "segments.db")
	v.SetDefault("to_extract_file", "to_extract.db")
	v.SetDefault("sample_max_start", 3600.0)
	v.SetDefault("out_path_segments", "segments")
	v.SetDefault("segment_length", 3.0)
	v.SetDefault("clip_sample_rate", 48000)
	v.SetDefault("workers", min(runtime.GOMAXPROCS(0), 4))
	v.SetDefault("tolerate_failures", false)
	v.SetDefault("metrics_file", "")

	v.SetDefault("sig_length", 3.0)
	v.SetDefault("sig_overlap", 0.0)
	v.SetDefault("sig_minlen", 1.0)
	v.SetDefault("sig_fmin", 0.0)
	v.SetDefault("sig_fmax", 15000.0)
	v.SetDefault("bandpass_fmin", 0.0)
	v.SetDefault("bandpass_fmax", 15000.0)

	v.SetDefault("model_url", "http://localhost:8080")
	v.SetDefault("model_name", "BirdNET_GLOBAL_6K_V2.4_Model_FP32")
	v.SetDefault("model_codec", "json")
	v.SetDefault("model_timeout", 60*time.Second)

	v.SetDefault("labels_file", "labels.txt")
	v.SetDefault("translated_labels_file", "")
	v.SetDefault("codes_file", "")
	v.SetDefault("species_list_file", "")

	v.SetDefault("latitude", -1.0)
	v.SetDefault("longitude", -1.0)
	v.SetDefault("week", -1)
	v.SetDefault("sigmoid_sensitivity", 1.0)

	v.SetDefault("connect_attempts", 3)
	v.SetDefault("connect_delay", 5*time.Second)
	v.SetDefault("connect_max_delay", 120*time.Second)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "audio_processing.log")
}

// Load reads the YAML config at path, applies BIRDNETFS_* environment
// overrides and validates the result. An empty path falls back to
// DefaultFile and then config/<CONFIG_ENV>/config.yaml.
func Load(path string) (*Root, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = guess()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	for _, p := range []string{DefaultFile, filepath.Join("config", env, "config.yaml")} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate checks value ranges that the pipeline relies on.
func (c *Root) Validate() error {
	var errs []error
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("SAMPLE_RATE must be positive, got %d", c.SampleRate))
	}
	if c.ClipSampleRate <= 0 {
		errs = append(errs, fmt.Errorf("CLIP_SAMPLE_RATE must be positive, got %d", c.ClipSampleRate))
	}
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("BATCH_SIZE must be positive, got %d", c.BatchSize))
	}
	if c.Signal.Length <= 0 {
		errs = append(errs, fmt.Errorf("SIG_LENGTH must be positive, got %g", c.Signal.Length))
	}
	if c.Signal.Overlap < 0 || c.Signal.Overlap >= c.Signal.Length {
		errs = append(errs, fmt.Errorf("SIG_OVERLAP must be in [0, SIG_LENGTH), got %g", c.Signal.Overlap))
	}
	if c.NumSegments < 0 {
		errs = append(errs, fmt.Errorf("NUM_SEGMENTS must not be negative, got %d", c.NumSegments))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("WORKERS must be positive, got %d", c.Workers))
	}
	if c.Connect.Attempts <= 0 {
		errs = append(errs, fmt.Errorf("CONNECT_ATTEMPTS must be positive, got %d", c.Connect.Attempts))
	}
	switch c.Model.Codec {
	case "json", "msgpack":
	default:
		errs = append(errs, fmt.Errorf("MODEL_CODEC must be json or msgpack, got %q", c.Model.Codec))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Sensitivity is the value the r and kaleidoscope formats report.
func (c *Root) Sensitivity() float64 {
	return (1.0 - c.Location.SigmoidSensitivity) + 1.0
}
