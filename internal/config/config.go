package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/classify"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/parser"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/report"
)

// HeaderFooterConfig holds the header/footer classifier settings.
type HeaderFooterConfig struct {
	HeaderMaxLines    int  `yaml:"header_max_lines"`
	FooterMaxLines    int  `yaml:"footer_max_lines"`
	HeaderMaxDistance int  `yaml:"header_max_distance"`
	FooterMaxDistance int  `yaml:"footer_max_distance"`
	Verbose           bool `yaml:"verbose"`
}

// HeadingConfig holds the heading classifier settings.
type HeadingConfig struct {
	MaxLevel     int     `yaml:"max_level"`
	MinPages     int     `yaml:"min_pages"`
	ToleranceLLX float64 `yaml:"tolerance_llx"`
	RuleFile     string  `yaml:"rule_file"`
	TOCCreate    bool    `yaml:"toc_create"`
	TOCFile      bool    `yaml:"toc_file"`
	Verbose      bool    `yaml:"verbose"`
}

// ListConfig holds the settings shared by the bulleted and numbered list classifiers.
type ListConfig struct {
	MinEntries   int     `yaml:"min_entries"`
	ToleranceLLX float64 `yaml:"tolerance_llx"`
	RuleFile     string  `yaml:"rule_file"`
	File         bool    `yaml:"file"`
	Verbose      bool    `yaml:"verbose"`
}

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// Parsers
	PDFFallbackPdftotext bool   `yaml:"pdf_fallback_pdftotext"`
	OCRLanguage          string `yaml:"ocr_language"`

	// Side-car reports
	OutputDir    string `yaml:"output_dir"`
	JSONIndent   int    `yaml:"json_indent"`
	JSONSortKeys bool   `yaml:"json_sort_keys"`

	// Classifiers
	HeaderFooter HeaderFooterConfig `yaml:"header_footer"`
	Heading      HeadingConfig      `yaml:"heading"`
	ListBullet   ListConfig         `yaml:"list_bullet"`
	ListNumber   ListConfig         `yaml:"list_number"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                 "8090",
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxUploadBytes:       52428800, // 50MB
		JobTTL:               1 * time.Hour,
		PDFFallbackPdftotext: true,
		OCRLanguage:          "eng",
		JSONIndent:           4,
		JSONSortKeys:         true,
		HeaderFooter: HeaderFooterConfig{
			HeaderMaxLines:    3,
			FooterMaxLines:    3,
			HeaderMaxDistance: 2,
			FooterMaxDistance: 2,
		},
		Heading: HeadingConfig{
			MaxLevel:     3,
			MinPages:     1,
			ToleranceLLX: 5,
			TOCCreate:    true,
		},
		ListBullet: ListConfig{MinEntries: 2, ToleranceLLX: 5},
		ListNumber: ListConfig{MinEntries: 2, ToleranceLLX: 5},
	}
}

// Load builds the configuration from the defaults, the YAML file named by
// DCR_CONFIG_FILE (if any) and finally the environment.
func Load() (Config, error) {
	return LoadWithFile(os.Getenv("DCR_CONFIG_FILE"))
}

// LoadWithFile is Load with an explicit YAML file path. An empty path skips the file.
func LoadWithFile(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.overlayEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// LoadFile reads a YAML configuration file on top of the defaults, ignoring the environment.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	if err := cfg.overlayFile(path); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) overlayEnv() {
	c.Port = envOr("PORT", c.Port)
	c.APIKey = envOr("DCR_API_KEY", c.APIKey)

	c.WorkerCount = envInt("WORKER_COUNT", c.WorkerCount)
	c.MaxQueueSize = envInt("MAX_QUEUE_SIZE", c.MaxQueueSize)
	c.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.JobTTL = envDuration("JOB_TTL", c.JobTTL)
	c.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", c.PDFFallbackPdftotext)
	c.OCRLanguage = envOr("DCR_OCR_LANGUAGE", c.OCRLanguage)

	c.OutputDir = envOr("DCR_OUTPUT_DIR", c.OutputDir)
	c.JSONIndent = envInt("DCR_JSON_INDENT", c.JSONIndent)
	c.JSONSortKeys = envBool("DCR_JSON_SORT_KEYS", c.JSONSortKeys)

	hf := &c.HeaderFooter
	hf.HeaderMaxLines = envInt("LT_HEADER_MAX_LINES", hf.HeaderMaxLines)
	hf.FooterMaxLines = envInt("LT_FOOTER_MAX_LINES", hf.FooterMaxLines)
	hf.HeaderMaxDistance = envInt("LT_HEADER_MAX_DISTANCE", hf.HeaderMaxDistance)
	hf.FooterMaxDistance = envInt("LT_FOOTER_MAX_DISTANCE", hf.FooterMaxDistance)
	hf.Verbose = envBool("VERBOSE_LT_HEADER_FOOTER", hf.Verbose)

	h := &c.Heading
	h.MaxLevel = envInt("LT_HEADING_MAX_LEVEL", h.MaxLevel)
	h.MinPages = envInt("LT_HEADING_MIN_PAGES", h.MinPages)
	h.ToleranceLLX = envFloat("LT_HEADING_TOLERANCE_LLX", h.ToleranceLLX)
	h.RuleFile = envOr("LT_HEADING_RULE_FILE", h.RuleFile)
	h.TOCCreate = envBool("LT_HEADING_TOC_CREATE", h.TOCCreate)
	h.TOCFile = envBool("LT_HEADING_TOC_FILE", h.TOCFile)
	h.Verbose = envBool("VERBOSE_LT_HEADING", h.Verbose)

	c.ListBullet.overlayEnv("LT_LIST_BULLET", "VERBOSE_LT_LIST_BULLET")
	c.ListNumber.overlayEnv("LT_LIST_NUMBER", "VERBOSE_LT_LIST_NUMBER")
}

func (l *ListConfig) overlayEnv(prefix, verboseKey string) {
	l.MinEntries = envInt(prefix+"_MIN_ENTRIES", l.MinEntries)
	l.ToleranceLLX = envFloat(prefix+"_TOLERANCE_LLX", l.ToleranceLLX)
	l.RuleFile = envOr(prefix+"_RULE_FILE", l.RuleFile)
	l.File = envBool(prefix+"_FILE", l.File)
	l.Verbose = envBool(verboseKey, l.Verbose)
}

// applyDefaults restores the service limits that must stay positive.
func (c *Config) applyDefaults() {
	d := Defaults()
	if c.Port == "" {
		c.Port = d.Port
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
	if c.OCRLanguage == "" {
		c.OCRLanguage = d.OCRLanguage
	}
}

// Validate checks the classifier and report settings.
func (c Config) Validate() error {
	var errs []error
	nonNegative := func(name string, v int) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", name, v))
		}
	}
	percent := func(name string, v float64) {
		if v < 0 || v > 100 {
			errs = append(errs, fmt.Errorf("%s must be a percentage between 0 and 100, got %g", name, v))
		}
	}

	nonNegative("LT_HEADER_MAX_LINES", c.HeaderFooter.HeaderMaxLines)
	nonNegative("LT_FOOTER_MAX_LINES", c.HeaderFooter.FooterMaxLines)
	nonNegative("LT_HEADER_MAX_DISTANCE", c.HeaderFooter.HeaderMaxDistance)
	nonNegative("LT_FOOTER_MAX_DISTANCE", c.HeaderFooter.FooterMaxDistance)
	nonNegative("LT_HEADING_MAX_LEVEL", c.Heading.MaxLevel)
	nonNegative("LT_HEADING_MIN_PAGES", c.Heading.MinPages)
	percent("LT_HEADING_TOLERANCE_LLX", c.Heading.ToleranceLLX)
	nonNegative("LT_LIST_BULLET_MIN_ENTRIES", c.ListBullet.MinEntries)
	percent("LT_LIST_BULLET_TOLERANCE_LLX", c.ListBullet.ToleranceLLX)
	nonNegative("LT_LIST_NUMBER_MIN_ENTRIES", c.ListNumber.MinEntries)
	percent("LT_LIST_NUMBER_TOLERANCE_LLX", c.ListNumber.ToleranceLLX)
	nonNegative("DCR_JSON_INDENT", c.JSONIndent)

	if c.Heading.TOCFile && !c.Heading.TOCCreate {
		errs = append(errs, fmt.Errorf("LT_HEADING_TOC_FILE requires LT_HEADING_TOC_CREATE"))
	}
	return errors.Join(errs...)
}

// ValidateServer is Validate plus the settings the HTTP service requires.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("DCR_API_KEY is required")
	}
	return nil
}

// ClassifyOptions maps the configuration onto the classifier pipeline options.
func (c Config) ClassifyOptions() classify.Options {
	hf := c.HeaderFooter
	return classify.Options{
		HeaderFooter: classify.HeaderFooterConfig{
			HeaderMaxLines:    hf.HeaderMaxLines,
			FooterMaxLines:    hf.FooterMaxLines,
			HeaderMaxDistance: hf.HeaderMaxDistance,
			FooterMaxDistance: hf.FooterMaxDistance,
			Verbose:           hf.Verbose,
		},
		Heading: classify.HeadingConfig{
			MaxLevel:         c.Heading.MaxLevel,
			MinPages:         c.Heading.MinPages,
			TolerancePercent: c.Heading.ToleranceLLX,
			CreateTOC:        c.Heading.TOCCreate,
			RuleFile:         c.Heading.RuleFile,
			Verbose:          c.Heading.Verbose,
		},
		Bullet: c.ListBullet.classify(),
		Number: c.ListNumber.classify(),
	}
}

func (l ListConfig) classify() classify.ListConfig {
	return classify.ListConfig{
		MinEntries:       l.MinEntries,
		TolerancePercent: l.ToleranceLLX,
		RuleFile:         l.RuleFile,
		Verbose:          l.Verbose,
	}
}

// ParserOptions returns the parser settings with rec used for image input.
// A nil rec leaves image parsing disabled.
func (c Config) ParserOptions(rec parser.LineRecognizer) parser.Options {
	return parser.Options{FallbackPdftotext: c.PDFFallbackPdftotext, OCR: rec}
}

// ReportWriter returns the side-car writer rooted at dir, or at OutputDir when dir is empty.
func (c Config) ReportWriter(dir string) report.Writer {
	if dir == "" {
		dir = c.OutputDir
	}
	return report.Writer{Dir: dir, Indent: c.JSONIndent, SortKeys: c.JSONSortKeys}
}

// ReportToggles returns which side-car files are enabled.
func (c Config) ReportToggles() report.Toggles {
	return report.Toggles{
		TOC:         c.Heading.TOCCreate && c.Heading.TOCFile,
		BulletLists: c.ListBullet.File,
		NumberLists: c.ListNumber.File,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
