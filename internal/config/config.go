package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths    PathsConfig    `mapstructure:"paths"`
	Synth    SynthConfig    `mapstructure:"synth"`
	Recorder RecorderConfig `mapstructure:"recorder"`
	Silence  SilenceConfig  `mapstructure:"silence"`
	Clean    CleanConfig    `mapstructure:"clean"`
	LogLevel string         `mapstructure:"log_level"`
}

type PathsConfig struct {
	DataFile     string `mapstructure:"data_file"`
	PublicDir    string `mapstructure:"public_dir"`
	ManifestPath string `mapstructure:"manifest_path"`
}

// SynthConfig selects the speech backend and the audio settings shared by
// every voice.
type SynthConfig struct {
	Backend        string        `mapstructure:"backend"`
	LanguageCode   string        `mapstructure:"language_code"`
	Voices         []string      `mapstructure:"voices"`
	VolumeGainDB   float64       `mapstructure:"volume_gain_db"`
	EffectsProfile string        `mapstructure:"effects_profile"`
	SpeakingRate   float64       `mapstructure:"speaking_rate"`
	Pitch          float64       `mapstructure:"pitch"`
	Terminator     string        `mapstructure:"terminator"`
	PocketTTSPath  string        `mapstructure:"pocket_tts_path"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type RecorderConfig struct {
	MinFileSize int64         `mapstructure:"min_file_size"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Delay       time.Duration `mapstructure:"delay"`
	Overwrite   bool          `mapstructure:"overwrite"`
}

// SilenceConfig holds the trim and split heuristics. Levels are dBFS.
type SilenceConfig struct {
	ThresholdDB   float64 `mapstructure:"threshold_db"`
	KeepSilenceMS int     `mapstructure:"keep_silence_ms"`
	ChunkMS       int     `mapstructure:"chunk_ms"`
	TopDB         float64 `mapstructure:"top_db"`
	FloorDB       float64 `mapstructure:"floor_db"`
	FrameLength   int     `mapstructure:"frame_length"`
	HopLength     int     `mapstructure:"hop_length"`
	MinSilenceMS  int     `mapstructure:"min_silence_ms"`
}

type CleanConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	EnvFile    string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// DefaultEnvFile is loaded when present and no other env file is named.
const DefaultEnvFile = ".env"

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			DataFile:     "public/minimal_pairs_db.json",
			PublicDir:    "public",
			ManifestPath: "public/audio/audio_manifest.json",
		},
		Synth: SynthConfig{
			Backend:        BackendGoogle,
			LanguageCode:   "bn-IN",
			Voices:         nil,
			VolumeGainDB:   0,
			EffectsProfile: "headphone-class-device",
			SpeakingRate:   1.0,
			Pitch:          0,
			Terminator:     "।",
			PocketTTSPath:  "",
			Timeout:        30 * time.Second,
		},
		Recorder: RecorderConfig{
			MinFileSize: 1000,
			MaxRetries:  3,
			Delay:       100 * time.Millisecond,
			Overwrite:   false,
		},
		Silence: SilenceConfig{
			ThresholdDB:   -50,
			KeepSilenceMS: 100,
			ChunkMS:       10,
			TopDB:         40,
			FloorDB:       -60,
			FrameLength:   2048,
			HopLength:     512,
			MinSilenceMS:  0,
		},
		Clean: CleanConfig{
			Threshold: 0.3,
		},
		LogLevel: "info",
	}
}

// RegisterFlags adds the settings shared by every command. Commands register
// their own flags for the keys listed in flagKeys.
func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("data-file", defaults.Paths.DataFile, "Path to the minimal pairs dataset JSON")
	fs.String("public-dir", defaults.Paths.PublicDir, "Directory the dataset audioBasePath is relative to")
	fs.String("manifest-path", defaults.Paths.ManifestPath, "Path of the generated audio manifest")
	fs.String("synth-backend", defaults.Synth.Backend, "Speech backend (google|pocket-tts)")
	fs.String("pocket-tts-path", defaults.Synth.PocketTTSPath, "Path to the pocket-tts executable")
	fs.Duration("synth-timeout", defaults.Synth.Timeout, "Timeout for a single synthesis request")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

// flagKeys maps flag names to config keys. Flags absent from the bound flag
// set are ignored.
var flagKeys = map[string]string{
	"data-file":       "paths.data_file",
	"public-dir":      "paths.public_dir",
	"manifest-path":   "paths.manifest_path",
	"synth-backend":   "synth.backend",
	"pocket-tts-path": "synth.pocket_tts_path",
	"synth-timeout":   "synth.timeout",
	"language":        "synth.language_code",
	"voices":          "synth.voices",
	"min-file-size":   "recorder.min_file_size",
	"max-retries":     "recorder.max_retries",
	"delay":           "recorder.delay",
	"overwrite":       "recorder.overwrite",
	"threshold-db":    "silence.threshold_db",
	"keep-silence-ms": "silence.keep_silence_ms",
	"top-db":          "silence.top_db",
	"min-silence-ms":  "silence.min_silence_ms",
	"threshold":       "clean.threshold",
	"log-level":       "log_level",
}

func Load(opts LoadOptions) (Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return Config{}, err
	}

	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("MINPAIRS")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("minpairs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Synth.Backend, _ = NormalizeBackend(cfg.Synth.Backend)

	return cfg, nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	if _, err := NormalizeBackend(c.Synth.Backend); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Recorder.MaxRetries < 1 {
		return fmt.Errorf("recorder.max_retries must be at least 1, got %d", c.Recorder.MaxRetries)
	}
	if c.Recorder.MinFileSize < 0 {
		return fmt.Errorf("recorder.min_file_size must not be negative, got %d", c.Recorder.MinFileSize)
	}
	if c.Recorder.Delay < 0 {
		return fmt.Errorf("recorder.delay must not be negative, got %s", c.Recorder.Delay)
	}
	if c.Clean.Threshold <= 0 || c.Clean.Threshold >= 1 {
		return fmt.Errorf("clean.threshold must be between 0 and 1, got %g", c.Clean.Threshold)
	}

	return nil
}

// loadEnvFile populates the process environment from a dotenv file. Variables
// already set win. A missing default file is not an error; a missing named
// file is.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load env file %s: %w", path, err)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}

	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.data_file", c.Paths.DataFile)
	v.SetDefault("paths.public_dir", c.Paths.PublicDir)
	v.SetDefault("paths.manifest_path", c.Paths.ManifestPath)
	v.SetDefault("synth.backend", c.Synth.Backend)
	v.SetDefault("synth.language_code", c.Synth.LanguageCode)
	v.SetDefault("synth.voices", c.Synth.Voices)
	v.SetDefault("synth.volume_gain_db", c.Synth.VolumeGainDB)
	v.SetDefault("synth.effects_profile", c.Synth.EffectsProfile)
	v.SetDefault("synth.speaking_rate", c.Synth.SpeakingRate)
	v.SetDefault("synth.pitch", c.Synth.Pitch)
	v.SetDefault("synth.terminator", c.Synth.Terminator)
	v.SetDefault("synth.pocket_tts_path", c.Synth.PocketTTSPath)
	v.SetDefault("synth.timeout", c.Synth.Timeout)
	v.SetDefault("recorder.min_file_size", c.Recorder.MinFileSize)
	v.SetDefault("recorder.max_retries", c.Recorder.MaxRetries)
	v.SetDefault("recorder.delay", c.Recorder.Delay)
	v.SetDefault("recorder.overwrite", c.Recorder.Overwrite)
	v.SetDefault("silence.threshold_db", c.Silence.ThresholdDB)
	v.SetDefault("silence.keep_silence_ms", c.Silence.KeepSilenceMS)
	v.SetDefault("silence.chunk_ms", c.Silence.ChunkMS)
	v.SetDefault("silence.top_db", c.Silence.TopDB)
	v.SetDefault("silence.floor_db", c.Silence.FloorDB)
	v.SetDefault("silence.frame_length", c.Silence.FrameLength)
	v.SetDefault("silence.hop_length", c.Silence.HopLength)
	v.SetDefault("silence.min_silence_ms", c.Silence.MinSilenceMS)
	v.SetDefault("clean.threshold", c.Clean.Threshold)
	v.SetDefault("log_level", c.LogLevel)
}

// ParseLogLevel converts a case-insensitive level string to slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}
