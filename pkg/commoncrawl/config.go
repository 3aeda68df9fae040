package commoncrawl

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"gopkg.in/yaml.v3"
)

const (
	SourceKindWAT  = "wat"
	SourceKindWARC = "warc"

	DefaultBaseURL = "s3://commoncrawl/"
)

// Config는 추출 실행 설정입니다. YAML 파일에서 읽고 CLI 플래그로 덮어씁니다.
type Config struct {
	Workers        int    `yaml:"workers"`
	UseRangeReads  *bool  `yaml:"use_range_reads"`
	LocalOut       string `yaml:"local_out"`
	RemoteOut      string `yaml:"remote_out"`
	ChunkSize      int    `yaml:"chunk_size"`
	CompressOutput *bool  `yaml:"compress_output"`
	BaseURL        string `yaml:"base_url"`
	SourceKind     string `yaml:"source_kind"`
	MatchTargetURI bool   `yaml:"match_target_uri"`
	Checkpoint     bool   `yaml:"checkpoint"`

	Storage StorageConfig `yaml:"storage"`
	Extract ExtractConfig `yaml:"extract"`
}

type StorageConfig struct {
	Region            string        `yaml:"region"`
	Endpoint          string        `yaml:"endpoint"`
	Anonymous         bool          `yaml:"anonymous"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	MaxAttempts       int           `yaml:"max_attempts"`
	HTTPRetries       int           `yaml:"http_retries"`
	HTTPRetryWait     time.Duration `yaml:"http_retry_wait"`
}

type ExtractConfig struct {
	KeepHTML        bool            `yaml:"keep_html"`
	MaxText         int             `yaml:"max_text"`
	RemoveSelectors RemoveSelectors `yaml:"remove_selectors"`
}

// RemoveSelectors는 CleanHTML에서 제거할 태그, 클래스, 속성 목록입니다.
type RemoveSelectors struct {
	Tags          []string `yaml:"tags"`
	Classes       []string `yaml:"classes"`
	ClassKeywords []string `yaml:"class_keywords"`
	Attributes    []string `yaml:"attributes"`
}

// LoadConfig는 path의 YAML 설정을 읽고 기본값을 채웁니다.
// path가 비어 있으면 기본값만으로 구성합니다.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults는 비어 있는 값에 기본값을 넣습니다.
func (c *Config) ApplyDefaults() error {
	if c.Workers == 0 {
		workerNums, err := cpu.Counts(false) // 물리적 코어 수 (logical=false)
		if err != nil {
			return errors.Wrap(err, "count cpu cores")
		}
		if workerNums < 1 {
			workerNums = 1
		}
		c.Workers = workerNums
	}
	if c.UseRangeReads == nil {
		c.UseRangeReads = boolPtr(true)
	}
	if c.CompressOutput == nil {
		c.CompressOutput = boolPtr(true)
	}
	if c.LocalOut == "" {
		c.LocalOut = "./outputs"
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 2000
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.SourceKind == "" {
		c.SourceKind = SourceKindWAT
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
	if c.Storage.MaxAttempts == 0 {
		c.Storage.MaxAttempts = 3
	}
	if c.Storage.HTTPRetries == 0 {
		c.Storage.HTTPRetries = 2
	}
	if c.Storage.HTTPRetryWait == 0 {
		c.Storage.HTTPRetryWait = 2 * time.Second
	}
	if c.Extract.MaxText == 0 {
		c.Extract.MaxText = 2000
	}
	return nil
}

// Validate는 서로 맞지 않거나 범위를 벗어난 값을 거부합니다.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.Newf("workers must be >= 1, got %d", c.Workers)
	}
	if c.ChunkSize < 1 {
		return errors.Newf("chunk_size must be >= 1, got %d", c.ChunkSize)
	}
	switch c.SourceKind {
	case SourceKindWAT, SourceKindWARC:
	default:
		return errors.Newf("unknown source_kind %q (want wat or warc)", c.SourceKind)
	}
	if c.RemoteOut != "" && strings.Contains(c.RemoteOut, "://") && !strings.HasPrefix(c.RemoteOut, "s3://") {
		return errors.WithHint(
			errors.Newf("unsupported remote_out %q", c.RemoteOut),
			"remote output must be an s3:// prefix or a local directory")
	}
	if c.Storage.RequestsPerSecond < 0 {
		return errors.Newf("storage.requests_per_second must be >= 0, got %v", c.Storage.RequestsPerSecond)
	}
	if c.Extract.MaxText < 0 {
		return errors.Newf("extract.max_text must be >= 0, got %d", c.Extract.MaxText)
	}
	return nil
}

// RangeReads는 range-read 경로 사용 여부입니다.
func (c *Config) RangeReads() bool {
	return c.UseRangeReads == nil || *c.UseRangeReads
}

func (c *Config) Compress() bool {
	return c.CompressOutput == nil || *c.CompressOutput
}

func (c *Config) SetRangeReads(on bool) { c.UseRangeReads = boolPtr(on) }

func (c *Config) SetCompress(on bool) { c.CompressOutput = boolPtr(on) }

func boolPtr(b bool) *bool { return &b }
