package utils

import (
	"io/ioutil"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// ServiceConfig holds the settings of the long running footprint service.
type ServiceConfig struct {
	Listen          string   `yaml:"listen"`
	MemcacheServers []string `yaml:"memcache_servers"`
	CacheExpiry     int32    `yaml:"cache_expiry"`
	PostgresDSN     string   `yaml:"postgres_dsn"`
	MetricsLogDir   string   `yaml:"metrics_log_dir"`
	MaxLogFileSize  int64    `yaml:"max_log_file_size"`
	MaxLogFiles     int      `yaml:"max_log_files"`
}

// CrawlConfig holds the settings of the directory crawler.
type CrawlConfig struct {
	Concurrency    int    `yaml:"concurrency"`
	Pattern        string `yaml:"pattern"`
	FollowSymlinks bool   `yaml:"follow_symlinks"`
	OutputFormat   string `yaml:"output_format"`
}

const (
	DefaultListen      = ":8080"
	DefaultCacheExpiry = 3600
	DefaultConcurrency = 8
)

// LoadYAML decodes the YAML document at path into out.
func LoadYAML(path string, out interface{}) error {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading config file %s", path)
	}
	if err := yaml.UnmarshalStrict(raw, out); err != nil {
		return errors.Wrapf(err, "parsing config file %s", path)
	}
	return nil
}

// ApplyDefaults fills unset service fields, honouring the
// RASTERFOOT_MAX_LOG_FILE_SIZE and RASTERFOOT_MAX_LOG_FILES environment
// variables.
func (c *ServiceConfig) ApplyDefaults() error {
	if len(c.Listen) == 0 {
		c.Listen = DefaultListen
	}
	if c.CacheExpiry <= 0 {
		c.CacheExpiry = DefaultCacheExpiry
	}
	if v, ok := os.LookupEnv("RASTERFOOT_MAX_LOG_FILE_SIZE"); ok && c.MaxLogFileSize <= 0 {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid RASTERFOOT_MAX_LOG_FILE_SIZE")
		}
		c.MaxLogFileSize = size
	}
	if v, ok := os.LookupEnv("RASTERFOOT_MAX_LOG_FILES"); ok && c.MaxLogFiles <= 0 {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid RASTERFOOT_MAX_LOG_FILES")
		}
		c.MaxLogFiles = n
	}
	return nil
}

func (c *CrawlConfig) ApplyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if len(c.OutputFormat) == 0 {
		c.OutputFormat = "json"
	}
}
