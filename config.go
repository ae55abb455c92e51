package kws

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Build-time defaults for a keyword-spotting node.
const (
	SampleRate   = 16000
	BlockSamples = 16000 // one second at SampleRate
	NumCommands  = 4

	IdleTimeout   = 5 * time.Second
	WakeAfter     = 5 * time.Second
	CycleInterval = 100 * time.Millisecond

	// ArenaBytes bounds the classifier's working memory: input and output
	// tensors must fit in it.
	ArenaBytes = 96 * 1024
)

// DefaultOutputPins is the output-line assignment in class order
// (forward, back, right, left).
var DefaultOutputPins = [NumCommands]int{32, 27, 33, 25}

// Config holds node configuration. DefaultConfig returns the build-time
// values; a development host may override them from YAML.
type Config struct {
	SampleRate   int `yaml:"sample_rate"`   // must be 16000
	BlockSamples int `yaml:"block_samples"` // samples per capture block and per frame

	IdleTimeout     time.Duration `yaml:"idle_timeout"`     // no activity for longer than this halts the node
	WakeAfter       time.Duration `yaml:"wake_after"`       // timer wake armed once at startup
	CaptureInterval time.Duration `yaml:"capture_interval"` // pause after each capture cycle
	PollInterval    time.Duration `yaml:"poll_interval"`    // pause after each inference cycle

	OutputPins [NumCommands]int `yaml:"output_pins"`

	Classifier ClassifierConfig `yaml:"classifier"`
}

// ClassifierConfig configures the ONNX classifier engine.
type ClassifierConfig struct {
	ModelPath  string `yaml:"model_path"`
	InputName  string `yaml:"input_name"`
	OutputName string `yaml:"output_name"`
	// OutputClasses is the width of the model's score tensor; at least
	// NumCommands. Trailing classes beyond NumCommands are never decided.
	OutputClasses int `yaml:"output_classes"`
	ArenaBytes    int `yaml:"arena_bytes"`
	// FrameSamples is the model's input width. Zero means the node's
	// BlockSamples.
	FrameSamples int `yaml:"-"`
}

// DefaultConfig returns the build-time configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:      SampleRate,
		BlockSamples:    BlockSamples,
		IdleTimeout:     IdleTimeout,
		WakeAfter:       WakeAfter,
		CaptureInterval: CycleInterval,
		PollInterval:    CycleInterval,
		OutputPins:      DefaultOutputPins,
		Classifier: ClassifierConfig{
			InputName:     "input",
			OutputName:    "output",
			OutputClasses: NumCommands,
			ArenaBytes:    ArenaBytes,
		},
	}
}

// validateConfig checks Config and returns every problem found.
func validateConfig(cfg Config) error {
	var errs []error
	if cfg.SampleRate != SampleRate {
		errs = append(errs, errors.New("config: sample_rate must be 16000"))
	}
	if cfg.BlockSamples <= 0 {
		errs = append(errs, errors.New("config: block_samples must be > 0"))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, errors.New("config: idle_timeout must be > 0"))
	}
	if cfg.WakeAfter <= 0 {
		errs = append(errs, errors.New("config: wake_after must be > 0"))
	}
	if cfg.CaptureInterval < 0 {
		errs = append(errs, errors.New("config: capture_interval must be >= 0"))
	}
	if cfg.PollInterval <= 0 {
		errs = append(errs, errors.New("config: poll_interval must be > 0"))
	}
	seen := make(map[int]bool, NumCommands)
	for i, pin := range cfg.OutputPins {
		if pin < 0 {
			errs = append(errs, fmt.Errorf("config: output_pins[%d] must be >= 0", i))
		}
		if seen[pin] {
			errs = append(errs, fmt.Errorf("config: output pin %d assigned twice", pin))
		}
		seen[pin] = true
	}
	return errors.Join(errs...)
}

// validateClassifierConfig is separate from validateConfig because callers
// may supply their own Classifier and never load a model.
func validateClassifierConfig(cfg ClassifierConfig) error {
	var errs []error
	if cfg.ModelPath == "" {
		errs = append(errs, errors.New("config: classifier.model_path is required"))
	} else if _, err := os.Stat(cfg.ModelPath); err != nil {
		if os.IsNotExist(err) {
			errs = append(errs, errors.New("config: classifier model file not found: "+cfg.ModelPath))
		} else {
			errs = append(errs, err)
		}
	}
	if cfg.InputName == "" || cfg.OutputName == "" {
		errs = append(errs, errors.New("config: classifier input_name and output_name are required"))
	}
	if cfg.OutputClasses < NumCommands {
		errs = append(errs, fmt.Errorf("config: classifier.output_classes must be >= %d", NumCommands))
	}
	if cfg.ArenaBytes <= 0 {
		errs = append(errs, errors.New("config: classifier.arena_bytes must be > 0"))
	}
	return errors.Join(errs...)
}

// LoadConfigFile reads YAML overrides from path on top of DefaultConfig.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadConfig decodes YAML overrides from r on top of DefaultConfig and
// validates the result. Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
