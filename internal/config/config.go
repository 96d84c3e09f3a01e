package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete filesearch configuration. It mirrors the
// configuration surface named in specification section 6.
type Config struct {
	Version     int               `yaml:"version" json:"version"`
	Paths       PathsConfig       `yaml:"paths" json:"paths"`
	Chunking    ChunkingConfig    `yaml:"chunking" json:"chunking"`
	Search      SearchConfig      `yaml:"search" json:"search"`
	Embeddings  EmbeddingsConfig  `yaml:"embeddings" json:"embeddings"`
	Enumeration EnumerationConfig `yaml:"enumeration" json:"enumeration"`
	Performance PerformanceConfig `yaml:"performance" json:"performance"`
	Server      ServerConfig      `yaml:"server" json:"server"`
}

// PathsConfig configures which roots are indexed by default and which
// patterns are always excluded regardless of the per-call enumeration
// options.
type PathsConfig struct {
	Roots   []string `yaml:"roots" json:"roots"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// ChunkingConfig configures the generic splitter and the spreadsheet
// section cap named in specification section 4.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size" json:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" json:"chunk_overlap"`
	ExcelMaxRows int `yaml:"excel_max_rows" json:"excel_max_rows"`
	ExcelMaxCols int `yaml:"excel_max_cols" json:"excel_max_cols"`
}

// SearchConfig configures the Hybrid Retriever's fusion and result shaping,
// per specification section 6.
type SearchConfig struct {
	TopKDense           int     `yaml:"top_k_dense" json:"top_k_dense"`
	TopKBM25            int     `yaml:"top_k_bm25" json:"top_k_bm25"`
	RRFK                int     `yaml:"rrf_k" json:"rrf_k"`
	MaxResults          int     `yaml:"max_results" json:"max_results"`
	MaxEvidencesPerFile int     `yaml:"max_evidences_per_file" json:"max_evidences_per_file"`
	MetadataOnlyDecay   float64 `yaml:"metadata_only_decay" json:"metadata_only_decay"`
}

// EmbeddingsConfig configures the embedding provider (see internal/embed).
type EmbeddingsConfig struct {
	// Provider pins "ollama" or "static". Empty auto-detects: Ollama first,
	// falling back to the deterministic static embedder.
	Provider      string `yaml:"provider" json:"provider"`
	Model         string `yaml:"model" json:"model"`
	OllamaHost    string `yaml:"ollama_host" json:"ollama_host"`
	BatchSize     int    `yaml:"batch_size" json:"batch_size"`
	StaticDimensions int `yaml:"static_dimensions" json:"static_dimensions"`
}

// EnumerationConfig configures the filesystem walk, per specification
// section 6's `enumeration{...}` option group.
type EnumerationConfig struct {
	IncludeHidden    bool     `yaml:"include_hidden" json:"include_hidden"`
	MaxDepth         int      `yaml:"max_depth" json:"max_depth"`
	MaxFileSizeBytes int64    `yaml:"max_file_size_bytes" json:"max_file_size_bytes"`
	ExtensionsFilter []string `yaml:"extensions_filter" json:"extensions_filter"`
	ExcludePatterns  []string `yaml:"exclude_patterns" json:"exclude_patterns"`
}

// PerformanceConfig configures indexing concurrency.
type PerformanceConfig struct {
	WorkerCount int `yaml:"worker_count" json:"worker_count"`
}

// ServerConfig configures ambient logging, independent of any particular
// CLI command or transport.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogFilePath overrides the rotating log file's location. Empty means
	// the caller (internal/logging) falls back to its own default path.
	LogFilePath string `yaml:"log_file_path" json:"log_file_path"`
	// LogMaxSizeMB caps the rotating log file's size before rotation.
	LogMaxSizeMB int `yaml:"log_max_size_mb" json:"log_max_size_mb"`
	// LogMaxFiles caps how many rotated log files are retained.
	LogMaxFiles int `yaml:"log_max_files" json:"log_max_files"`
	// LogToStderr also mirrors log output to stderr.
	LogToStderr bool `yaml:"log_to_stderr" json:"log_to_stderr"`
}

// defaultExcludePatterns are always excluded from enumeration regardless of
// per-call overrides. They are matched with filepath.Match, where "**"
// matches a single path component like "*", not any number of directories.
var defaultExcludePatterns = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/.filesearch/**",
}

// NewConfig creates a new Config with the defaults named in specification
// section 6.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			Roots:   []string{},
			Exclude: defaultExcludePatterns,
		},
		Chunking: ChunkingConfig{
			ChunkSize:    1000,
			ChunkOverlap: 100,
			ExcelMaxRows: 1000,
			ExcelMaxCols: 50,
		},
		Search: SearchConfig{
			TopKDense:           50,
			TopKBM25:            50,
			RRFK:                60,
			MaxResults:          20,
			MaxEvidencesPerFile: 5,
			MetadataOnlyDecay:   0.4,
		},
		Embeddings: EmbeddingsConfig{
			Provider:         "", // empty triggers auto-detection: Ollama -> static
			Model:            "",
			OllamaHost:       "",
			BatchSize:        32,
			StaticDimensions: 256,
		},
		Enumeration: EnumerationConfig{
			IncludeHidden:    false,
			MaxDepth:         0,
			MaxFileSizeBytes: 0,
			ExtensionsFilter: nil,
			ExcludePatterns:  nil,
		},
		Performance: PerformanceConfig{
			WorkerCount: defaultWorkerCount(),
		},
		Server: ServerConfig{
			LogLevel:     "info",
			LogMaxSizeMB: 10,
			LogMaxFiles:  5,
			LogToStderr:  false,
		},
	}
}

// defaultWorkerCount implements "min(4, CPU)" from specification section 6.
func defaultWorkerCount() int {
	n := runtime.NumCPU()
	if n > 4 {
		return 4
	}
	if n < 1 {
		return 1
	}
	return n
}

// GetUserConfigPath returns the path to the user/global configuration file,
// following the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/filesearch/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/filesearch/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "filesearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "filesearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "filesearch", "config.yaml")
}

// loadUserConfig loads the user/global configuration file if present.
// Returns a nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}
	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration for dataDir, applying layers of increasing
// precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/filesearch/config.yaml)
//  3. Project config (.filesearch.yaml under dataDir)
//  4. Environment variables (FILESEARCH_*)
func Load(dataDir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dataDir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load .filesearch.yaml or .filesearch.yml from dir.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".filesearch.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}
	ymlPath := filepath.Join(dir, ".filesearch.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if len(other.Paths.Roots) > 0 {
		c.Paths.Roots = other.Paths.Roots
	}
	if len(other.Paths.Exclude) > 0 {
		c.Paths.Exclude = append(c.Paths.Exclude, other.Paths.Exclude...)
	}

	if other.Chunking.ChunkSize != 0 {
		c.Chunking.ChunkSize = other.Chunking.ChunkSize
	}
	if other.Chunking.ChunkOverlap != 0 {
		c.Chunking.ChunkOverlap = other.Chunking.ChunkOverlap
	}
	if other.Chunking.ExcelMaxRows != 0 {
		c.Chunking.ExcelMaxRows = other.Chunking.ExcelMaxRows
	}
	if other.Chunking.ExcelMaxCols != 0 {
		c.Chunking.ExcelMaxCols = other.Chunking.ExcelMaxCols
	}

	if other.Search.TopKDense != 0 {
		c.Search.TopKDense = other.Search.TopKDense
	}
	if other.Search.TopKBM25 != 0 {
		c.Search.TopKBM25 = other.Search.TopKBM25
	}
	if other.Search.RRFK != 0 {
		c.Search.RRFK = other.Search.RRFK
	}
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.MaxEvidencesPerFile != 0 {
		c.Search.MaxEvidencesPerFile = other.Search.MaxEvidencesPerFile
	}
	if other.Search.MetadataOnlyDecay != 0 {
		c.Search.MetadataOnlyDecay = other.Search.MetadataOnlyDecay
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}
	if other.Embeddings.BatchSize != 0 {
		c.Embeddings.BatchSize = other.Embeddings.BatchSize
	}
	if other.Embeddings.StaticDimensions != 0 {
		c.Embeddings.StaticDimensions = other.Embeddings.StaticDimensions
	}

	if other.Enumeration.IncludeHidden {
		c.Enumeration.IncludeHidden = other.Enumeration.IncludeHidden
	}
	if other.Enumeration.MaxDepth != 0 {
		c.Enumeration.MaxDepth = other.Enumeration.MaxDepth
	}
	if other.Enumeration.MaxFileSizeBytes != 0 {
		c.Enumeration.MaxFileSizeBytes = other.Enumeration.MaxFileSizeBytes
	}
	if len(other.Enumeration.ExtensionsFilter) > 0 {
		c.Enumeration.ExtensionsFilter = other.Enumeration.ExtensionsFilter
	}
	if len(other.Enumeration.ExcludePatterns) > 0 {
		c.Enumeration.ExcludePatterns = other.Enumeration.ExcludePatterns
	}

	if other.Performance.WorkerCount != 0 {
		c.Performance.WorkerCount = other.Performance.WorkerCount
	}

	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
	if other.Server.LogFilePath != "" {
		c.Server.LogFilePath = other.Server.LogFilePath
	}
	if other.Server.LogMaxSizeMB != 0 {
		c.Server.LogMaxSizeMB = other.Server.LogMaxSizeMB
	}
	if other.Server.LogMaxFiles != 0 {
		c.Server.LogMaxFiles = other.Server.LogMaxFiles
	}
	if other.Server.LogToStderr {
		c.Server.LogToStderr = other.Server.LogToStderr
	}
}

// applyEnvOverrides applies FILESEARCH_* environment variable overrides,
// the highest-precedence configuration layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FILESEARCH_RRF_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Search.RRFK = k
		}
	}
	if v := os.Getenv("FILESEARCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("FILESEARCH_METADATA_ONLY_DECAY"); v != "" {
		if d, err := parseFloat64(v); err == nil && d >= 0 && d <= 1 {
			c.Search.MetadataOnlyDecay = d
		}
	}
	if v := os.Getenv("FILESEARCH_EMBED_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("FILESEARCH_EMBED_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("FILESEARCH_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("FILESEARCH_WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Performance.WorkerCount = n
		}
	}
	if v := os.Getenv("FILESEARCH_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("FILESEARCH_LOG_FILE_PATH"); v != "" {
		c.Server.LogFilePath = v
	}
}

// parseFloat64 parses a string to float64.
func parseFloat64(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &f)
	return f, err
}

// fileExists reports whether path exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Validate validates the configuration, matching the teacher's
// fail-fast-at-load-time pattern.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunking.chunk_size must be positive, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking.chunk_overlap must be non-negative and less than chunk_size, got %d", c.Chunking.ChunkOverlap)
	}
	if c.Chunking.ExcelMaxRows <= 0 {
		return fmt.Errorf("chunking.excel_max_rows must be positive, got %d", c.Chunking.ExcelMaxRows)
	}
	if c.Chunking.ExcelMaxCols <= 0 {
		return fmt.Errorf("chunking.excel_max_cols must be positive, got %d", c.Chunking.ExcelMaxCols)
	}

	if c.Search.RRFK <= 0 {
		return fmt.Errorf("search.rrf_k must be positive, got %d", c.Search.RRFK)
	}
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be non-negative, got %d", c.Search.MaxResults)
	}
	if c.Search.MaxEvidencesPerFile < 0 {
		return fmt.Errorf("search.max_evidences_per_file must be non-negative, got %d", c.Search.MaxEvidencesPerFile)
	}
	if c.Search.MetadataOnlyDecay < 0 || c.Search.MetadataOnlyDecay > 1 {
		return fmt.Errorf("search.metadata_only_decay must be between 0 and 1, got %f", c.Search.MetadataOnlyDecay)
	}

	if c.Embeddings.Provider != "" {
		validProviders := map[string]bool{"ollama": true, "static": true}
		if !validProviders[strings.ToLower(c.Embeddings.Provider)] {
			return fmt.Errorf("embeddings.provider must be 'ollama', 'static', or empty (auto-detect), got %s", c.Embeddings.Provider)
		}
	}

	if c.Performance.WorkerCount <= 0 {
		return fmt.Errorf("performance.worker_count must be positive, got %d", c.Performance.WorkerCount)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadUserConfig loads the user configuration file. Returns a nil config
// and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}
