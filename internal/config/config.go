package config

import "fmt"

type Config struct {
	Whisper  WhisperConfig  `yaml:"whisper"`
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
	Paths    PathsConfig    `yaml:"paths"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Summary  SummaryConfig  `yaml:"summary"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Threads    int    `yaml:"threads"`
}

type FFmpegConfig struct {
	ExtractTimeoutSec int `yaml:"extract_timeout_sec"`
	SegmentTimeoutSec int `yaml:"segment_timeout_sec"`
}

type PathsConfig struct {
	Input   string `yaml:"input"`
	Output  string `yaml:"output"`
	Scratch string `yaml:"scratch"`
}

type PipelineConfig struct {
	ChunkSeconds  int     `yaml:"chunk_seconds"`
	Workers       int     `yaml:"workers"`
	CPUThreshold  float64 `yaml:"cpu_threshold"`
	MaxConcurrent int     `yaml:"max_concurrent"`
}

type SummaryConfig struct {
	WordLimit int `yaml:"word_limit"`
}

type GeminiConfig struct {
	APIKeys []string `yaml:"api_keys"`
	Model   string   `yaml:"model"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func (c *Config) Validate() error {
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if c.Pipeline.CPUThreshold < 0 || c.Pipeline.CPUThreshold > 100 {
		return fmt.Errorf("pipeline.cpu_threshold must be between 0 and 100")
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("pipeline.workers must be >= 1")
	}

	if c.Paths.Scratch == "" {
		c.Paths.Scratch = "data/scratch"
	}
	if c.Pipeline.ChunkSeconds == 0 {
		c.Pipeline.ChunkSeconds = 30
	}
	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = 4
	}
	if c.Pipeline.CPUThreshold == 0 {
		c.Pipeline.CPUThreshold = 70
	}
	if c.Pipeline.MaxConcurrent == 0 {
		c.Pipeline.MaxConcurrent = 1
	}
	if c.Summary.WordLimit == 0 {
		c.Summary.WordLimit = 800
	}
	if c.FFmpeg.ExtractTimeoutSec == 0 {
		c.FFmpeg.ExtractTimeoutSec = 600
	}
	if c.FFmpeg.SegmentTimeoutSec == 0 {
		c.FFmpeg.SegmentTimeoutSec = 300
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}

	return nil
}
