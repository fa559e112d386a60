package whisperx

import "reelsmith/internal/config"

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the WhisperX model to use (e.g., "large-v3-turbo").
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token for pyannote VAD.
	HFToken string
	// CacheDir holds downloaded model weights between runs.
	CacheDir string
}

// FromConfig maps the [whisperx] section onto a Config.
func FromConfig(cfg config.WhisperX) Config {
	return Config{
		Model:       cfg.Model,
		CUDAEnabled: cfg.CUDAEnabled,
		VADMethod:   cfg.VADMethod,
		HFToken:     cfg.HuggingFaceToken,
		CacheDir:    cfg.CacheDir,
	}
}

// WhisperX configuration constants.
const (
	DefaultModel      = "large-v3"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	ChunkSize         = "15"
	VADOnset          = "0.08"
	VADOffset         = "0.07"
	BeamSize          = "5"
	Temperature       = "0.0"
	SegmentResolution = "sentence"
	OutputFormat      = "json"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "float32"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
)

// UVXCommand launches WhisperX in an isolated environment.
const UVXCommand = "uvx"
