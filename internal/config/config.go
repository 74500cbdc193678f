package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Output         string   `yaml:"output"`
	ImageWorkers   int      `yaml:"image_workers"`
	ChapterWorkers int      `yaml:"chapter_workers"`
	KeepFolders    bool     `yaml:"keep_folders"`
	Debug          bool     `yaml:"debug"`
	AllowExt       []string `yaml:"allow_ext"`
	CBZ            bool     `yaml:"cbz"`
	Archive        string   `yaml:"archive"`

	DirectoryFmt []string `yaml:"directory_fmt"`
	FilenameFmt  string   `yaml:"filename_fmt"`

	BaseURL  string `yaml:"base_url"`
	Lang     string `yaml:"lang"`
	Language string `yaml:"language"`

	DefaultURL   string `yaml:"default_url"`
	DefaultRange string `yaml:"default_range"`
	DefaultList  string `yaml:"default_list"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
	UserAgent  string `yaml:"user_agent"`
	Cloudflare bool   `yaml:"cloudflare"`
	Retries    int    `yaml:"retries"`

	SkipBroken bool `yaml:"skip_broken"`
}

type Options struct {
	IgnoreConfig   bool
	Debug          bool
	Output         string
	ImageWorkers   int
	ChapterWorkers int
	KeepFolders    bool
	CBZ            bool
	Archive        string
	DefaultURL     string
	DefaultRange   string
	DefaultList    string
	Cookie         string
	CookieFile     string
	UserAgent      string
	Cloudflare     bool
	SkipBroken     bool
}

func DefaultConfig() *Config {
	return &Config{
		Output:         ".",
		ImageWorkers:   5,
		ChapterWorkers: 2,
		AllowExt:       []string{"jpg", "jpeg", "png", "webp", "gif"},
		DirectoryFmt:   []string{"{category}", "{manga}", "c{chapter:>03}{chapter-minor}"},
		FilenameFmt:    "{manga}_c{chapter:>03}{chapter-minor}_{page:>03}.{extension}",
		BaseURL:        "http://mangapark.me",
		Lang:           "en",
		Language:       "English",
		Retries:        3,
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged resolves the active profile of s, then lays opts over it.
// The returned string describes where the values came from.
func LoadMerged(s Store, opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := s.ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `parkdl config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.ImageWorkers != 0 {
		c.ImageWorkers = o.ImageWorkers
	}
	if o.ChapterWorkers != 0 {
		c.ChapterWorkers = o.ChapterWorkers
	}
	if o.KeepFolders {
		c.KeepFolders = true
	}
	if o.Debug {
		c.Debug = true
	}
	if o.CBZ {
		c.CBZ = true
	}
	if o.Archive != "" {
		c.Archive = o.Archive
	}
	if o.DefaultURL != "" {
		c.DefaultURL = o.DefaultURL
	}
	if o.DefaultRange != "" {
		c.DefaultRange = o.DefaultRange
	}
	if o.DefaultList != "" {
		c.DefaultList = o.DefaultList
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Cloudflare {
		c.Cloudflare = true
	}
	if o.SkipBroken {
		c.SkipBroken = true
	}
}

func normalizeDefaults(c *Config) {
	def := DefaultConfig()

	if c.Output == "" {
		c.Output = def.Output
	}
	if c.ImageWorkers <= 0 {
		c.ImageWorkers = def.ImageWorkers
	}
	if c.ChapterWorkers <= 0 {
		c.ChapterWorkers = def.ChapterWorkers
	}
	if len(c.DirectoryFmt) == 0 {
		c.DirectoryFmt = def.DirectoryFmt
	}
	if c.FilenameFmt == "" {
		c.FilenameFmt = def.FilenameFmt
	}
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Lang == "" {
		c.Lang = def.Lang
	}
	if c.Language == "" {
		c.Language = def.Language
	}
	if c.Retries <= 0 {
		c.Retries = 1
	}
}

func (c *Config) Print() {
	if c.Output != "" {
		fmt.Printf(" -output: %s\n", c.Output)
	}
	fmt.Printf(" -image_workers: %d\n", c.ImageWorkers)
	fmt.Printf(" -chapter_workers: %d\n", c.ChapterWorkers)
	fmt.Printf(" -base_url: %s\n", c.BaseURL)
	fmt.Printf(" -directory_fmt: %s\n", strings.Join(c.DirectoryFmt, "/"))
	fmt.Printf(" -filename_fmt: %s\n", c.FilenameFmt)
	if c.KeepFolders {
		fmt.Printf(" -keep_folders: %t\n", c.KeepFolders)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.CBZ {
		fmt.Printf(" -cbz: %t\n", c.CBZ)
	}
	if c.Archive != "" {
		fmt.Printf(" -archive: %s\n", c.Archive)
	}
	if c.DefaultURL != "" {
		fmt.Printf(" -url: %s\n", c.DefaultURL)
	}
	if c.DefaultRange != "" {
		fmt.Printf(" -range: %s\n", c.DefaultRange)
	}
	if c.DefaultList != "" {
		fmt.Printf(" -list: %s\n", c.DefaultList)
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.Cloudflare {
		fmt.Printf(" -cloudflare: %t\n", c.Cloudflare)
	}
	if c.SkipBroken {
		fmt.Printf(" -skip_broken: %t\n", c.SkipBroken)
	}
	if len(c.AllowExt) > 0 {
		fmt.Printf(" -allow_ext: %s\n", strings.Join(c.AllowExt, ", "))
	}
}
