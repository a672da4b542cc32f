package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/erebus-go/erebus/internal/errors"
	"github.com/erebus-go/erebus/pkg/router"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "erebus.json"

	// YAMLFileName is the name of the YAML configuration file.
	YAMLFileName = "erebus.yaml"

	// DefaultPort is the default live server port.
	DefaultPort = 3000

	// DefaultHost is the default live server host.
	DefaultHost = "localhost"

	// DefaultFragmentsDir is the default fragment directory.
	DefaultFragmentsDir = "fragments"

	// DefaultStaticDir is the default static file directory.
	DefaultStaticDir = "public"

	// DefaultMetricsPath is the default Prometheus endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultFetchTimeout bounds fragment fetches.
	DefaultFetchTimeout = "10s"
)

// Config represents the complete erebus.json configuration.
type Config struct {
	// Name is the site name, used as the page title.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Target is the default target selector of the controllers.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// Shell is the path to the HTML page served at "/". Empty uses the
	// built-in shell.
	Shell string `json:"shell,omitempty" yaml:"shell,omitempty"`

	// Routes are registered in order; the first match wins.
	Routes []RouteConfig `json:"routes,omitempty" yaml:"routes,omitempty"`

	// Default serves paths no route matches.
	Default *RouteConfig `json:"default,omitempty" yaml:"default,omitempty"`

	// Fragments configures where fragment URLs are fetched from.
	Fragments FragmentsConfig `json:"fragments,omitempty" yaml:"fragments,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty" yaml:"static,omitempty"`

	// Dev contains live server configuration.
	Dev DevConfig `json:"dev,omitempty" yaml:"dev,omitempty"`

	// Router contains dispatch configuration.
	Router RouterConfig `json:"router,omitempty" yaml:"router,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RouteConfig declares one route served by a controller.
type RouteConfig struct {
	// Pattern is the route pattern ("/users/:id") or, with Regexp, a
	// regular expression.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Regexp marks Pattern as a regular expression.
	Regexp bool `json:"regexp,omitempty" yaml:"regexp,omitempty"`

	// Fragment is the fragment URL. "{name}" is replaced by the route
	// parameter of that name.
	Fragment string `json:"fragment,omitempty" yaml:"fragment,omitempty"`

	// Inline is served as the content instead of a fetched fragment.
	Inline string `json:"inline,omitempty" yaml:"inline,omitempty"`

	// Target overrides the default target.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// FragmentsConfig configures the fragment fetcher.
type FragmentsConfig struct {
	// BaseURL resolves relative fragment URLs. Empty serves them from Dir.
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`

	// Dir is the directory file:// fragments are read from.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Timeout bounds every fetch (e.g., "10s").
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Headers are sent with every fetch.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// S3 enables s3://bucket/key fragment URLs.
	S3 *S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config configures the S3 client used for s3:// fragments.
type S3Config struct {
	// Region is the AWS region.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3 compatible stores.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// PathStyle forces path style addressing.
	PathStyle bool `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/static/").
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// DevConfig contains live server settings.
type DevConfig struct {
	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// HotReload re-serves open pages when fragments change.
	HotReload bool `json:"hotReload,omitempty" yaml:"hotReload,omitempty"`

	// Watch contains extra paths to watch for changes.
	Watch []string `json:"watch,omitempty" yaml:"watch,omitempty"`

	// Ignore contains patterns to ignore during watch.
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`

	// AllowedOrigins are accepted by the WebSocket upgrade. Empty accepts
	// same-origin requests only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// RouterConfig contains dispatch settings.
type RouterConfig struct {
	// Serialize cancels an in-flight navigation when a new one starts.
	Serialize bool `json:"serialize,omitempty" yaml:"serialize,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes dispatch metrics.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Path is the metrics endpoint (default: "/metrics").
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Namespace prefixes every metric (default: "erebus").
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled opens a span per dispatch on the global tracer provider.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// TracerName is the tracer name (default: "erebus").
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Fragments: FragmentsConfig{
			Dir:     DefaultFragmentsDir,
			Timeout: DefaultFetchTimeout,
		},
		Static: StaticConfig{
			Dir:    DefaultStaticDir,
			Prefix: "/static/",
		},
		Dev: DevConfig{
			Port:      DefaultPort,
			Host:      DefaultHost,
			HotReload: true,
		},
		Metrics: MetricsConfig{
			Path:      DefaultMetricsPath,
			Namespace: "erebus",
		},
		Tracing: TracingConfig{
			TracerName: "erebus",
		},
	}
}

// Load reads configuration from the specified directory. erebus.json is
// preferred over erebus.yaml.
func Load(dir string) (*Config, error) {
	jsonPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(jsonPath); err == nil {
		return LoadFile(jsonPath)
	}
	yamlPath := filepath.Join(dir, YAMLFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return LoadFile(yamlPath)
	}
	return nil, errors.New(errors.CodeConfigNotFound).
		WithDetail("No " + ConfigFileName + " or " + YAMLFileName + " found in " + dir).
		WithSuggestion("Run 'erebus init' or create " + ConfigFileName + " manually")
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No config found at " + path)
		}
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New(errors.CodeConfigInvalid).
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New(errors.CodeConfigInvalid).
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveTo writes the configuration to the specified path, as YAML when the
// path ends in .yaml or .yml.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}

	if c.Fragments.Dir == "" {
		c.Fragments.Dir = DefaultFragmentsDir
	}
	if c.Fragments.Timeout == "" {
		c.Fragments.Timeout = DefaultFetchTimeout
	}

	if c.Static.Dir == "" {
		c.Static.Dir = DefaultStaticDir
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/static/"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "erebus"
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "erebus"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New(errors.CodeConfigPort).
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Dev.Port))
	}
	if _, err := time.ParseDuration(c.Fragments.Timeout); err != nil {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("fragments.timeout: " + err.Error())
	}
	for i, r := range c.Routes {
		if err := r.validate(true); err != nil {
			return err.WithDetail("routes[" + strconv.Itoa(i) + "]: " + err.Detail)
		}
	}
	if c.Default != nil {
		if err := c.Default.validate(false); err != nil {
			return err.WithDetail("default: " + err.Detail)
		}
	}
	return nil
}

func (r RouteConfig) validate(needPattern bool) *errors.Error {
	if needPattern && strings.TrimSpace(r.Pattern) == "" {
		return errors.New(errors.CodeConfigRoute).WithDetail("pattern is required")
	}
	if r.Regexp {
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return errors.New(errors.CodeConfigRoute).WithDetail("invalid regexp: " + err.Error())
		}
	}
	if r.Fragment != "" && r.Inline != "" {
		return errors.New(errors.CodeConfigRoute).WithDetail("fragment and inline are exclusive")
	}
	return nil
}

// Compile returns the pattern of the route.
func (r RouteConfig) Compile() (router.Pattern, error) {
	if r.Regexp {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return router.Pattern{}, errors.New(errors.CodeInvalidPattern).WithDetail(r.Pattern).Wrap(err)
		}
		return router.CompileRegexp(re), nil
	}
	return router.Compile(r.Pattern), nil
}

// FetchTimeout returns the parsed fragment timeout.
func (c *Config) FetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Fragments.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// DevAddress returns the address string for the live server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the live server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// resolve makes path absolute relative to the config directory.
func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// FragmentsPath returns the absolute path to the fragment directory.
func (c *Config) FragmentsPath() string {
	return c.resolve(c.Fragments.Dir)
}

// StaticPath returns the absolute path to the static directory.
func (c *Config) StaticPath() string {
	return c.resolve(c.Static.Dir)
}

// ShellPath returns the absolute path to the page shell, or "".
func (c *Config) ShellPath() string {
	return c.resolve(c.Shell)
}

// WatchPaths returns the paths watched for hot reload.
func (c *Config) WatchPaths() []string {
	paths := []string{c.FragmentsPath(), c.StaticPath()}
	if c.Shell != "" {
		paths = append(paths, c.ShellPath())
	}
	for _, p := range c.Dev.Watch {
		paths = append(paths, c.resolve(p))
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}
	return unique
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindSiteRoot walks up directories to find the site root.
func FindSiteRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigNotFound).
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
