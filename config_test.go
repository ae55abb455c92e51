package kws

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := validateConfig(DefaultConfig()); err != nil {
		t.Fatalf("DefaultConfig invalid: %v", err)
	}
	cfg := DefaultConfig()
	if cfg.IdleTimeout != 5*time.Second || cfg.PollInterval != 100*time.Millisecond {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.OutputPins != [NumCommands]int{32, 27, 33, 25} {
		t.Errorf("OutputPins = %v", cfg.OutputPins)
	}
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"sample rate", func(c *Config) { c.SampleRate = 8000 }, "sample_rate"},
		{"block", func(c *Config) { c.BlockSamples = 0 }, "block_samples"},
		{"idle", func(c *Config) { c.IdleTimeout = 0 }, "idle_timeout"},
		{"wake", func(c *Config) { c.WakeAfter = -time.Second }, "wake_after"},
		{"poll", func(c *Config) { c.PollInterval = 0 }, "poll_interval"},
		{"capture", func(c *Config) { c.CaptureInterval = -1 }, "capture_interval"},
		{"duplicate pin", func(c *Config) { c.OutputPins[1] = c.OutputPins[0] }, "assigned twice"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := validateConfig(cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	const doc = `
idle_timeout: 2s
poll_interval: 50ms
output_pins: [1, 2, 3, 4]
classifier:
  model_path: models/commands.onnx
  output_classes: 5
`
	cfg, err := LoadConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.IdleTimeout != 2*time.Second {
		t.Errorf("IdleTimeout = %v", cfg.IdleTimeout)
	}
	if cfg.PollInterval != 50*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.OutputPins != [NumCommands]int{1, 2, 3, 4} {
		t.Errorf("OutputPins = %v", cfg.OutputPins)
	}
	if cfg.Classifier.OutputClasses != 5 || cfg.Classifier.InputName != "input" {
		t.Errorf("Classifier = %+v", cfg.Classifier)
	}
	if cfg.BlockSamples != BlockSamples {
		t.Errorf("BlockSamples default lost: %d", cfg.BlockSamples)
	}
}

func TestLoadConfig_Empty(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("empty document changed defaults: %+v", cfg)
	}
}

func TestLoadConfig_UnknownField(t *testing.T) {
	if _, err := LoadConfig(strings.NewReader("sleep_forever: true\n")); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	if _, err := LoadConfig(strings.NewReader("sample_rate: 44100\n")); err == nil {
		t.Error("invalid sample rate accepted")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.yaml")
	if err := os.WriteFile(path, []byte("wake_after: 10s\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.WakeAfter != 10*time.Second {
		t.Errorf("WakeAfter = %v", cfg.WakeAfter)
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
