package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/brogergvhs/parkdl/internal/config"
	"github.com/brogergvhs/parkdl/internal/providers"
	"github.com/brogergvhs/parkdl/internal/providers/mangapark"
	"github.com/brogergvhs/parkdl/internal/ui"
	"github.com/brogergvhs/parkdl/internal/util"

	"github.com/spf13/cobra"
)

// flags shared by every command that talks to the site
var (
	flagURL        string
	flagChapter    string
	flagRange      string
	flagList       string
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
	flagCloudflare bool
)

func addSiteFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagURL, "url", "", "manga or chapter page URL")
	c.Flags().StringVar(&flagChapter, "chapter", "", "select a single chapter by index, oldest first (e.g. 5)")
	c.Flags().StringVar(&flagRange, "range", "", "select a range of chapters by index (e.g. 5-12)")
	c.Flags().StringVar(&flagList, "list", "", "select specific chapter indices (e.g. 1,3,5)")

	c.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	c.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	c.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	c.Flags().BoolVar(&flagCloudflare, "cloudflare", false, "send browser-like TLS fingerprint and headers")
}

func siteOptions() config.Options {
	return config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		DefaultURL:   flagURL,
		DefaultRange: flagRange,
		DefaultList:  flagList,
		Cookie:       flagCookie,
		CookieFile:   flagCookieFile,
		UserAgent:    flagUserAgent,
		Cloudflare:   flagCloudflare,
	}
}

type session struct {
	cfg     *config.Config
	log     *ui.Logger
	fetcher *util.Fetcher
	site    mangapark.Config
	resolve providers.Resolver
}

// newSession builds the HTTP stack and the extractor resolver for cfg.
// Listing output goes through log, so commands that print machine readable
// output pass a logger that writes elsewhere.
func newSession(cfg *config.Config, log *ui.Logger) (*session, error) {
	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     30 * time.Second,
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		Cloudflare:  cfg.Cloudflare,
		DebugLogger: log,
	})
	if err != nil {
		return nil, err
	}

	site := mangapark.DefaultConfig()
	site.BaseURL = cfg.BaseURL
	site.Lang = cfg.Lang
	site.Language = cfg.Language

	fetcher := util.NewFetcher(client, cfg.Retries)

	return &session{
		cfg:     cfg,
		log:     log,
		fetcher: fetcher,
		site:    site,
		resolve: mangapark.Resolver(site, fetcher, log),
	}, nil
}

func targetURL(cfg *config.Config) (string, error) {
	if cfg.DefaultURL == "" {
		return "", fmt.Errorf("missing --url and no default_url in config")
	}
	if !mangapark.Match(cfg.DefaultURL) {
		return "", fmt.Errorf("%w: %s", providers.ErrUnsupportedURL, cfg.DefaultURL)
	}
	return cfg.DefaultURL, nil
}

func splitExt(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})

	out := []string{}
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			out = append(out, f)
		}
	}

	return out
}
