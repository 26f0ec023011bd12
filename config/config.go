// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads the application configuration from YAML.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/faqdex/ai"
	"gopkg.in/yaml.v3"
)

// EmbeddingConfig configures the OpenAI-compatible embedding service.
type EmbeddingConfig struct {
	Host        string `yaml:"host"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
	BatchSize   int    `yaml:"batch_size"`
}

// IndexConfig configures where the persisted index lives.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// TelemetryConfig configures the file-backed interaction logs.
// Empty paths disable the corresponding log.
type TelemetryConfig struct {
	StepLog        string `yaml:"step_log"`
	EmbeddingLog   string `yaml:"embedding_log"`
	InteractionLog string `yaml:"interaction_log"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// AIConfig converts the embedding section into an ai.Config.
func (c *AppConfig) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.Embedding.Host),
		ai.WithModel(c.Embedding.Model),
		ai.WithTimeout(time.Duration(c.Embedding.TimeoutSecs)*time.Second),
		ai.WithMaxRetries(c.Embedding.MaxRetries),
	)
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	base := ai.DefaultConfig()
	if cfg.Embedding.Host == "" {
		cfg.Embedding.Host = base.Host
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = base.Model
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = int(base.Timeout / time.Second)
	}
	if cfg.Embedding.MaxRetries == 0 {
		cfg.Embedding.MaxRetries = base.MaxRetries
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = "faqdex.db"
	}
}
