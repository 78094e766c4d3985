// Package config loads go-sensesafe settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/teslashibe/go-sensesafe/pkg/detection"
)

// Detector names in dispatch order.
const (
	DetectorWindows  = "windows"
	DetectorDoors    = "doors"
	DetectorHallways = "hallways"
	DetectorStairs   = "stairs"
)

// Config is the full service configuration.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Detect DetectConfig
	Speech SpeechConfig
	Audio  AudioConfig

	WakeWord          string `env:"WAKE_WORD" envDefault:"sensa"`
	VocabularyFile    string `env:"VOCABULARY_FILE"`
	ConnectivityCheck bool   `env:"CONNECTIVITY_CHECK" envDefault:"true"`
}

// DetectConfig holds detector credentials and request limits.
type DetectConfig struct {
	WindowsKey string `env:"RF_WINDOWS_KEY"`
	WindowsURL string `env:"RF_WINDOWS_URL" envDefault:"YOUR WINDOWS ROBOFLOW URL"`
	DoorsKey   string `env:"RF_DOOR_KEY"`
	DoorsURL   string `env:"RF_DOORS_URL" envDefault:"YOUR DOORS ROBOFLOW URL"`
	HallKey    string `env:"RF_HALL_KEY"`
	HallURL    string `env:"RF_HALL_URL" envDefault:"YOUR HALLWAYS ROBOFLOW URL"`
	StairsKey  string `env:"RF_STAIRS_KEY"`
	StairsURL  string `env:"RF_STAIRS_URL" envDefault:"YOUR STAIRS ROBOFLOW URL"`

	Timeout      time.Duration `env:"DETECT_TIMEOUT" envDefault:"15s"`
	JPEGQuality  int           `env:"JPEG_QUALITY" envDefault:"90"`
	MaxDimension int           `env:"MAX_IMAGE_DIMENSION" envDefault:"1280"`
}

// SpeechConfig holds transcription and translation provider settings.
type SpeechConfig struct {
	AzureKey      string `env:"AZURE_KEY"`
	AzureEndpoint string `env:"AZURE_ENDPOINT"`

	SpeechTextKey string `env:"SPEECHTEXT_API_KEY"`
	SpeechTextURL string `env:"SPEECHTEXT_URL" envDefault:"https://api.speechtext.ai/recognize"`

	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	WhisperModel  string `env:"WHISPER_MODEL" envDefault:"whisper-1"`

	GoogleAPIKey          string `env:"GOOGLE_API_KEY"`
	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`

	Chain          []string      `env:"TRANSCRIBE_CHAIN" envDefault:"azure,speechtext" envSeparator:","`
	Timeout        time.Duration `env:"TRANSCRIBE_TIMEOUT" envDefault:"30s"`
	TargetLanguage string        `env:"TARGET_LANGUAGE" envDefault:"en-US"`

	LibreTranslateURL string `env:"LIBRE_TRANSLATE_BASE_URL"`
}

// AudioConfig holds microphone and voice activity settings.
type AudioConfig struct {
	Device           string        `env:"AUDIO_DEVICE" envDefault:"default"`
	SampleRate       int           `env:"AUDIO_SAMPLE_RATE" envDefault:"16000"`
	SilenceThreshold float64       `env:"VAD_SILENCE_THRESHOLD" envDefault:"200"`
	SilenceDuration  time.Duration `env:"VAD_SILENCE_DURATION" envDefault:"1500ms"`
	MaxDuration      time.Duration `env:"VAD_MAX_DURATION" envDefault:"10s"`
	WarmUp           time.Duration `env:"VAD_WARMUP" envDefault:"2s"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile  string
	HTTPAddr string
	LogLevel string
	Device   string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.Device != "" {
		cfg.Audio.Device = overrides.Device
	}

	cfg.Speech.Chain = normalizeChain(cfg.Speech.Chain)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Missing credentials are not errors: those
// providers are simply disabled.
func (c *Config) Validate() error {
	var errs []error
	if c.Detect.Timeout <= 0 {
		errs = append(errs, errors.New("DETECT_TIMEOUT must be positive"))
	}
	if c.Detect.JPEGQuality < 1 || c.Detect.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("JPEG_QUALITY must be 1-100, got %d", c.Detect.JPEGQuality))
	}
	if c.Detect.MaxDimension < 0 {
		errs = append(errs, errors.New("MAX_IMAGE_DIMENSION must not be negative"))
	}
	if c.Speech.Timeout <= 0 {
		errs = append(errs, errors.New("TRANSCRIBE_TIMEOUT must be positive"))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("AUDIO_SAMPLE_RATE must be positive, got %d", c.Audio.SampleRate))
	}
	if c.Audio.MaxDuration <= 0 {
		errs = append(errs, errors.New("VAD_MAX_DURATION must be positive"))
	}
	return errors.Join(errs...)
}

// DetectorSpecs returns the detector providers in dispatch order.
func (c *Config) DetectorSpecs() []detection.ProviderSpec {
	d := c.Detect
	return []detection.ProviderSpec{
		{Name: DetectorWindows, Endpoint: d.WindowsURL, Credential: d.WindowsKey},
		{Name: DetectorDoors, Endpoint: d.DoorsURL, Credential: d.DoorsKey},
		{Name: DetectorHallways, Endpoint: d.HallURL, Credential: d.HallKey},
		{Name: DetectorStairs, Endpoint: d.StairsURL, Credential: d.StairsKey},
	}
}

func normalizeChain(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
