package kws

import (
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	// ErrArenaTooSmall is fatal at startup: the model's tensors do not fit
	// the configured working memory.
	ErrArenaTooSmall = errors.New("classifier working memory too small")

	errFrameSize = errors.New("frame size does not match model input")
)

// Classifier maps a normalized frame to a score vector. The returned slice
// belongs to the classifier and is valid until the next Infer call.
type Classifier interface {
	Infer(frame []float32) ([]float32, error)
	Close() error
}

// ONNXClassifier runs a keyword model through onnxruntime. Input and output
// tensors are allocated once and reused by every Infer. Not safe for
// concurrent use; the inference loop is its only caller.
type ONNXClassifier struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32] // (1, frameSamples)
	output  *ort.Tensor[float32] // (1, outputClasses)
}

var ortInit struct {
	once sync.Once
	err  error
}

// initRuntime points onnxruntime at a bundled shared library when one is
// found and initializes the environment once per process.
func initRuntime() error {
	ortInit.once.Do(func() {
		if ort.IsInitialized() {
			return
		}
		if p := resolveBundledLib(candidateBaseDirs()); p != "" {
			ort.SetSharedLibraryPath(p)
		}
		ortInit.err = ort.InitializeEnvironment()
	})
	return ortInit.err
}

// workingMemory returns the bytes needed for the input and output tensors.
func workingMemory(frameSamples, outputClasses int) int {
	return (frameSamples + outputClasses) * 4
}

func checkArena(cfg ClassifierConfig) error {
	need := workingMemory(cfg.FrameSamples, cfg.OutputClasses)
	if need > cfg.ArenaBytes {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrArenaTooSmall, need, cfg.ArenaBytes)
	}
	return nil
}

// NewONNXClassifier loads the model at cfg.ModelPath and allocates its
// tensors inside the configured arena budget.
func NewONNXClassifier(cfg ClassifierConfig) (*ONNXClassifier, error) {
	if cfg.FrameSamples == 0 {
		cfg.FrameSamples = BlockSamples
	}
	if err := validateClassifierConfig(cfg); err != nil {
		return nil, err
	}
	if err := checkArena(cfg); err != nil {
		return nil, err
	}
	model, err := os.ReadFile(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if err := initRuntime(); err != nil {
		return nil, fmt.Errorf("onnxruntime init: %w", err)
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, int64(cfg.FrameSamples)), make([]float32, cfg.FrameSamples))
	if err != nil {
		return nil, err
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.OutputClasses)))
	if err != nil {
		_ = inputTensor.Destroy()
		return nil, err
	}
	sess, err := ort.NewAdvancedSessionWithONNXData(model,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		nil)
	if err != nil {
		_ = inputTensor.Destroy()
		_ = outputTensor.Destroy()
		return nil, fmt.Errorf("allocate session: %w", err)
	}
	return &ONNXClassifier{session: sess, input: inputTensor, output: outputTensor}, nil
}

// Infer copies frame into the input tensor and runs the model.
func (c *ONNXClassifier) Infer(frame []float32) ([]float32, error) {
	in := c.input.GetData()
	if len(frame) != len(in) {
		return nil, fmt.Errorf("%w: got %d, want %d", errFrameSize, len(frame), len(in))
	}
	copy(in, frame)
	if err := c.session.Run(); err != nil {
		return nil, err
	}
	return c.output.GetData(), nil
}

// Close releases the session and its tensors.
func (c *ONNXClassifier) Close() error {
	return errors.Join(
		c.session.Destroy(),
		c.input.Destroy(),
		c.output.Destroy(),
	)
}
