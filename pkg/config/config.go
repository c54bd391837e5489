// Package config loads the application configuration from a YAML file
// with environment variable expansion. Keyword tables and thresholds
// default to the built-in rule sets, so a minimal config only names
// feeds and storage paths.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/intelscope/intelscope/pkg/dedup"
	"github.com/intelscope/intelscope/pkg/domain"
	"github.com/intelscope/intelscope/pkg/triage"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Rating server configuration"`

	Schedule struct {
		Interval time.Duration `yaml:"interval" json:"interval" jsonschema:"default=6h,description=Interval between collection runs"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Periodic mode configuration"`

	Sources struct {
		Feeds      []string      `yaml:"feeds" json:"feeds" jsonschema:"description=RSS/Atom feed URLs"`
		MaxPerFeed int           `yaml:"max_per_feed" json:"max_per_feed" jsonschema:"default=50,description=RSS items considered per feed"`
		Timeout    time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP timeout for source requests"`
		UserAgent  string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=IntelScope/1.0,description=User agent for feed requests"`

		GNews struct {
			APIKey  string            `yaml:"api_key" json:"api_key" jsonschema:"description=GNews API key; empty disables the source (can use environment variable)"`
			Queries map[string]string `yaml:"queries" json:"queries" jsonschema:"description=Search query per category name"`
		} `yaml:"gnews" json:"gnews" jsonschema:"description=GNews API source"`
	} `yaml:"sources" json:"sources" jsonschema:"description=Article sources"`

	Triage TriageConfig `yaml:"triage" json:"triage" jsonschema:"description=Keyword tables for relevance filtering and scoring"`

	Dedup struct {
		TitleThreshold float64  `yaml:"title_threshold" json:"title_threshold" jsonschema:"default=0.7,minimum=0,maximum=1,description=Title similarity ratio treated as duplicate"`
		TermOverlap    int      `yaml:"term_overlap" json:"term_overlap" jsonschema:"default=3,description=Shared key terms treated as same topic"`
		PremiumSources []string `yaml:"premium_sources" json:"premium_sources" jsonschema:"description=Source names given the top quality bonus"`
		QualitySources []string `yaml:"quality_sources" json:"quality_sources" jsonschema:"description=Source names given the secondary quality bonus"`
	} `yaml:"dedup" json:"dedup" jsonschema:"description=Deduplication thresholds and source tiers"`

	Storage struct {
		FeedbackFile   string `yaml:"feedback_file" json:"feedback_file" jsonschema:"default=data/feedback.jsonl,description=Feedback history file"`
		SeenFile       string `yaml:"seen_file" json:"seen_file" jsonschema:"default=data/seen_articles.jsonl,description=Seen URL log file"`
		SeenWindowDays int    `yaml:"seen_window_days" json:"seen_window_days" jsonschema:"default=30,description=Days a reported URL stays suppressed"`
	} `yaml:"storage" json:"storage" jsonschema:"description=File storage paths"`

	Report struct {
		OutputDir      string `yaml:"output_dir" json:"output_dir" jsonschema:"default=reports,description=Report output directory"`
		MaxPerCategory int    `yaml:"max_per_category" json:"max_per_category" jsonschema:"default=10,description=Articles kept per category"`
		SinceDays      int    `yaml:"since_days" json:"since_days" jsonschema:"default=7,description=Reporting window in days"`
	} `yaml:"report" json:"report" jsonschema:"description=Report settings"`
}

// TriageConfig mirrors triage.Rules in YAML form; empty tables fall
// back to the built-in defaults
type TriageConfig struct {
	Exclude        []string           `yaml:"exclude" json:"exclude" jsonschema:"description=Keywords that reject an article outright"`
	Include        []string           `yaml:"include" json:"include" jsonschema:"description=Keywords that make an article relevant"`
	PROutlets      []string           `yaml:"pr_outlets" json:"pr_outlets" jsonschema:"description=Domains treated as corporate PR outlets"`
	PRPatterns     []string           `yaml:"pr_patterns" json:"pr_patterns" jsonschema:"description=Announcement verbs marking corporate PR"`
	RegionKeywords []string           `yaml:"region_keywords" json:"region_keywords" jsonschema:"description=Region keywords that override the PR gate"`
	Categories     []CategoryKeywords `yaml:"categories" json:"categories" jsonschema:"description=Ordered category keyword groups"`
	ScoreTiers     []ScoreTierConfig  `yaml:"score_tiers" json:"score_tiers" jsonschema:"description=Additive importance score boosts"`
}

// CategoryKeywords binds a category name to its keyword group
type CategoryKeywords struct {
	Category string   `yaml:"category" json:"category" jsonschema:"description=Category name"`
	Keywords []string `yaml:"keywords" json:"keywords" jsonschema:"description=Keywords for this category"`
}

// ScoreTierConfig is one additive importance boost
type ScoreTierConfig struct {
	Boost    int      `yaml:"boost" json:"boost" jsonschema:"description=Score boost when any keyword matches"`
	Keywords []string `yaml:"keywords" json:"keywords" jsonschema:"description=Keywords triggering the boost"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	if c.Schedule.Interval == 0 {
		c.Schedule.Interval = 6 * time.Hour
	}

	if c.Sources.MaxPerFeed == 0 {
		c.Sources.MaxPerFeed = 50
	}
	if c.Sources.Timeout == 0 {
		c.Sources.Timeout = 30 * time.Second
	}
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = "IntelScope/1.0"
	}
	if len(c.Sources.GNews.Queries) == 0 {
		c.Sources.GNews.Queries = defaultQueries()
	}

	if c.Dedup.TitleThreshold == 0 {
		c.Dedup.TitleThreshold = dedup.DefaultConfig().TitleThreshold
	}
	if c.Dedup.TermOverlap == 0 {
		c.Dedup.TermOverlap = dedup.DefaultConfig().TermOverlap
	}
	if len(c.Dedup.PremiumSources) == 0 {
		c.Dedup.PremiumSources = dedup.DefaultConfig().PremiumSources
	}
	if len(c.Dedup.QualitySources) == 0 {
		c.Dedup.QualitySources = dedup.DefaultConfig().QualitySources
	}

	if c.Storage.FeedbackFile == "" {
		c.Storage.FeedbackFile = "data/feedback.jsonl"
	}
	if c.Storage.SeenFile == "" {
		c.Storage.SeenFile = "data/seen_articles.jsonl"
	}
	if c.Storage.SeenWindowDays == 0 {
		c.Storage.SeenWindowDays = 30
	}

	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "reports"
	}
	if c.Report.MaxPerCategory == 0 {
		c.Report.MaxPerCategory = 10
	}
	if c.Report.SinceDays == 0 {
		c.Report.SinceDays = 7
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Schedule.Interval < time.Minute {
		return fmt.Errorf("schedule interval must be at least 1 minute")
	}
	if cfg.Dedup.TitleThreshold < 0 || cfg.Dedup.TitleThreshold > 1 {
		return fmt.Errorf("dedup title_threshold must be between 0 and 1")
	}
	if cfg.Dedup.TermOverlap < 1 {
		return fmt.Errorf("dedup term_overlap must be at least 1")
	}
	if cfg.Report.MaxPerCategory < 1 {
		return fmt.Errorf("report max_per_category must be at least 1")
	}
	if cfg.Report.SinceDays < 1 {
		return fmt.Errorf("report since_days must be at least 1")
	}
	if cfg.Storage.SeenWindowDays < 1 {
		return fmt.Errorf("storage seen_window_days must be at least 1")
	}
	for _, cat := range cfg.Triage.Categories {
		if !domain.Category(cat.Category).Valid() {
			return fmt.Errorf("triage category %q is not a known category", cat.Category)
		}
	}
	for name := range cfg.Sources.GNews.Queries {
		if !domain.Category(name).Valid() {
			return fmt.Errorf("gnews query category %q is not a known category", name)
		}
	}
	return nil
}

// TriageRules builds the effective rule set: configured tables where
// present, built-in defaults otherwise
func (c *Config) TriageRules() triage.Rules {
	rules := triage.DefaultRules()
	if len(c.Triage.Exclude) > 0 {
		rules.Exclude = c.Triage.Exclude
	}
	if len(c.Triage.Include) > 0 {
		rules.Include = c.Triage.Include
	}
	if len(c.Triage.PROutlets) > 0 {
		rules.PROutlets = c.Triage.PROutlets
	}
	if len(c.Triage.PRPatterns) > 0 {
		rules.PRPatterns = c.Triage.PRPatterns
	}
	if len(c.Triage.RegionKeywords) > 0 {
		rules.RegionKeywords = c.Triage.RegionKeywords
	}
	if len(c.Triage.Categories) > 0 {
		rules.Categories = make([]triage.CategoryRule, 0, len(c.Triage.Categories))
		for _, cat := range c.Triage.Categories {
			rules.Categories = append(rules.Categories, triage.CategoryRule{
				Category: domain.Category(cat.Category),
				Keywords: cat.Keywords,
			})
		}
	}
	if len(c.Triage.ScoreTiers) > 0 {
		rules.ScoreTiers = make([]triage.ScoreTier, 0, len(c.Triage.ScoreTiers))
		for _, tier := range c.Triage.ScoreTiers {
			rules.ScoreTiers = append(rules.ScoreTiers, triage.ScoreTier{Boost: tier.Boost, Keywords: tier.Keywords})
		}
	}
	return rules
}

// DedupConfig returns the deduplication settings
func (c *Config) DedupConfig() dedup.Config {
	return dedup.Config{
		TitleThreshold: c.Dedup.TitleThreshold,
		TermOverlap:    c.Dedup.TermOverlap,
		PremiumSources: c.Dedup.PremiumSources,
		QualitySources: c.Dedup.QualitySources,
	}
}

// Queries returns the per-category news API queries
func (c *Config) Queries() map[domain.Category]string {
	queries := make(map[domain.Category]string, len(c.Sources.GNews.Queries))
	for name, query := range c.Sources.GNews.Queries {
		queries[domain.Category(name)] = query
	}
	return queries
}

// SeenWindow returns the seen-URL suppression window as a duration
func (c *Config) SeenWindow() time.Duration {
	return time.Duration(c.Storage.SeenWindowDays) * 24 * time.Hour
}

func defaultQueries() map[string]string {
	return map[string]string{
		string(domain.CategoryCompetition): "Experian Australia",
		string(domain.CategoryRegulation):  "ASIC financial services",
		string(domain.CategoryDisruptive):  "fintech Australia",
		string(domain.CategoryConsumer):    "consumer credit Australia",
		string(domain.CategoryMarket):      "financial services trends Australia",
	}
}
