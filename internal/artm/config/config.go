// Package config loads MasterModelConfig from a YAML file, applies
// ARTM_*-prefixed environment variable overrides (with .env support via
// godotenv for local development), and validates the result.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/artm-core/artm/internal/artm/artmerr"
)

// MasterModelConfig mirrors the master's tunable state: the topic axis,
// per-modality/transaction weighting, storage names, and processing
// knobs. YAML tags match the on-disk config file; ARTM_* env vars (see
// applyEnvOverrides) override individual scalar fields for the CLI.
type MasterModelConfig struct {
	TopicNames []string `yaml:"topic_names"`

	ModalityWeight    map[string]float64 `yaml:"modality_weight"`
	TransactionWeight map[string]float64 `yaml:"transaction_weight"`

	PwtName string `yaml:"pwt_name"`
	NwtName string `yaml:"nwt_name"`
	PtdName string `yaml:"ptd_name"`

	NumProcessors int `yaml:"num_processors"`

	NumDocumentPasses int `yaml:"num_document_passes"`
	ReuseTheta        bool `yaml:"reuse_theta"`
	CacheTheta        bool `yaml:"cache_theta"`
	OptForAVX         bool `yaml:"opt_for_avx"`

	DiskCachePath string `yaml:"disk_cache_path,omitempty"`

	Seed int64 `yaml:"seed"`
}

// Default returns a MasterModelConfig with the same boundary defaults
// Transform/FitOffline documents: auto processor count, no θ reuse, no
// AVX kernel, and a single topic named "topic0" when the caller hasn't
// configured one yet.
func Default() MasterModelConfig {
	return MasterModelConfig{
		TopicNames:        []string{"topic0"},
		PwtName:           "pwt",
		NwtName:           "nwt",
		NumProcessors:     0,
		NumDocumentPasses: 1,
	}
}

// Load reads a YAML MasterModelConfig from path, then applies ARTM_*
// environment variable overrides — loading a .env file from the working
// directory first via godotenv if present, matching the teacher's config-loading layering
// (file, then environment, then explicit flags upstream in the CLI).
func Load(path string) (MasterModelConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, artmerr.DiskRead)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, artmerr.CorruptedMessage)
	}

	_ = godotenv.Load() // optional; a missing .env is not an error

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnvOverrides overlays a fixed set of ARTM_* scalar environment
// variables onto cfg, for local experimentation without editing the YAML
// file.
func applyEnvOverrides(cfg *MasterModelConfig) {
	if v, ok := os.LookupEnv("ARTM_NUM_PROCESSORS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NumProcessors = n
		}
	}
	if v, ok := os.LookupEnv("ARTM_NUM_DOCUMENT_PASSES"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NumDocumentPasses = n
		}
	}
	if v, ok := os.LookupEnv("ARTM_REUSE_THETA"); ok {
		cfg.ReuseTheta = parseBool(v)
	}
	if v, ok := os.LookupEnv("ARTM_CACHE_THETA"); ok {
		cfg.CacheTheta = parseBool(v)
	}
	if v, ok := os.LookupEnv("ARTM_OPT_FOR_AVX"); ok {
		cfg.OptForAVX = parseBool(v)
	}
	if v, ok := os.LookupEnv("ARTM_DISK_CACHE_PATH"); ok {
		cfg.DiskCachePath = v
	}
	if v, ok := os.LookupEnv("ARTM_SEED"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Validate checks the invariants the master requires before it will
// accept a config: a non-empty topic axis, non-negative pass/processor
// counts, and named Φ storages.
func (c MasterModelConfig) Validate() error {
	if len(c.TopicNames) == 0 {
		return fmt.Errorf("config: topic_names must be non-empty: %w", artmerr.InvalidArgument)
	}
	seen := make(map[string]bool, len(c.TopicNames))
	for _, name := range c.TopicNames {
		if name == "" {
			return fmt.Errorf("config: topic_names entries must be non-empty: %w", artmerr.InvalidArgument)
		}
		if seen[name] {
			return fmt.Errorf("config: duplicate topic name %q: %w", name, artmerr.InvalidArgument)
		}
		seen[name] = true
	}
	if c.NumProcessors < 0 {
		return fmt.Errorf("config: num_processors must be >= 0: %w", artmerr.InvalidArgument)
	}
	if c.NumDocumentPasses < 0 {
		return fmt.Errorf("config: num_document_passes must be >= 0: %w", artmerr.InvalidArgument)
	}
	if c.PwtName == "" || c.NwtName == "" {
		return fmt.Errorf("config: pwt_name/nwt_name must be set: %w", artmerr.InvalidArgument)
	}
	if c.PwtName == c.NwtName {
		return fmt.Errorf("config: pwt_name and nwt_name must differ: %w", artmerr.InvalidArgument)
	}
	return nil
}
