package config

import (
	"errors"
	"strings"
	"time"

	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/romangod6/dmv-sitemap/internal/pages"
	"github.com/romangod6/dmv-sitemap/internal/sitemap"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		URL string
	}
	Server struct {
		Port int
	}
	Logs struct {
		Dir string
	}
	Site struct {
		BaseURL     string
		Name        string
		Phone       string
		Email       string
		ServiceName string
	}
	Sitemap struct {
		Path               string
		CorePages          []models.PageDescriptor
		LegalPages         []models.PageDescriptor
		Strict             bool
		RegenerateInterval string
		Ping               bool
		PingEndpoints      []string
		Disallow           []string
	}
	Registry struct {
		Path string
	}
	Audit struct {
		UserAgent      string
		AllowedDomains []string
		Parallelism    int
		Delay          string
		Render         bool
		Timeout        string
		MaxPages       int
		MinWords       int
	}
}

// LoadConfig reads config.yaml from . or ./config, or the explicit file given,
// and applies SITEMAP_* environment overrides (SITEMAP_SERVER_PORT, ...).
// A missing config file is not an error; defaults apply.
func LoadConfig(configFile ...string) (*Config, error) {
	v := viper.New()

	if len(configFile) > 0 && configFile[0] != "" {
		v.SetConfigFile(configFile[0])
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SITEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Default values
	v.SetDefault("database.url", "sitemap.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logs.dir", "logs")
	v.SetDefault("site.baseurl", "https://www.dmvstarlinkinstallers.com")
	v.SetDefault("site.name", "DMV Starlink Installers")
	v.SetDefault("site.phone", "")
	v.SetDefault("site.email", "")
	v.SetDefault("site.servicename", "Starlink Installation")
	v.SetDefault("sitemap.path", "/sitemap.xml")
	v.SetDefault("sitemap.strict", false)
	v.SetDefault("sitemap.regenerateinterval", "24h")
	v.SetDefault("sitemap.ping", false)
	v.SetDefault("sitemap.pingendpoints", sitemap.DefaultPingEndpoints)
	v.SetDefault("sitemap.disallow", []string{"/api/"})
	v.SetDefault("registry.path", "")
	v.SetDefault("audit.useragent", "DMV Sitemap Auditor v1.0")
	v.SetDefault("audit.alloweddomains", []string{})
	v.SetDefault("audit.parallelism", 2)
	v.SetDefault("audit.delay", "1s")
	v.SetDefault("audit.render", false)
	v.SetDefault("audit.timeout", "10m")
	v.SetDefault("audit.maxpages", 0)
	v.SetDefault("audit.minwords", 150)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) GetRegenerateDuration() time.Duration {
	return parseDuration(c.Sitemap.RegenerateInterval, 24*time.Hour)
}

func (c *Config) GetAuditDelay() time.Duration {
	return parseDuration(c.Audit.Delay, time.Second)
}

func (c *Config) GetAuditTimeout() time.Duration {
	return parseDuration(c.Audit.Timeout, 10*time.Minute)
}

// CorePages returns the configured core pages, or the defaults.
func (c *Config) CorePages() []models.PageDescriptor {
	if len(c.Sitemap.CorePages) == 0 {
		return sitemap.DefaultCorePages()
	}
	return c.Sitemap.CorePages
}

// LegalPages returns the configured legal pages, or the defaults.
func (c *Config) LegalPages() []models.PageDescriptor {
	if len(c.Sitemap.LegalPages) == 0 {
		return sitemap.DefaultLegalPages()
	}
	return c.Sitemap.LegalPages
}

// SitemapURL is the public absolute URL of the sitemap.
func (c *Config) SitemapURL() string {
	return sitemap.AbsoluteURL(c.Site.BaseURL, c.Sitemap.Path)
}

func (c *Config) SiteInfo() pages.SiteInfo {
	return pages.SiteInfo{
		Name:        c.Site.Name,
		BaseURL:     c.Site.BaseURL,
		Phone:       c.Site.Phone,
		Email:       c.Site.Email,
		ServiceName: c.Site.ServiceName,
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}
