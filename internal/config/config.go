package config

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/HaPhanBaoMinh/clusterrings/help"
	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
)

type Thresholds struct {
	Warning  float64 `mapstructure:"warning" yaml:"warning"`
	Critical float64 `mapstructure:"critical" yaml:"critical"`
}

type ResourceStyle struct {
	Color      string     `mapstructure:"color" yaml:"color"`
	Thresholds Thresholds `mapstructure:"thresholds" yaml:"thresholds"`
}

type Resources struct {
	CPU    ResourceStyle `mapstructure:"cpu" yaml:"cpu"`
	Memory ResourceStyle `mapstructure:"memory" yaml:"memory"`
	Disk   ResourceStyle `mapstructure:"disk" yaml:"disk"`
}

// For returns the style of rt.
func (r Resources) For(rt domain.ResourceType) ResourceStyle {
	switch rt {
	case domain.Memory:
		return r.Memory
	case domain.Disk:
		return r.Disk
	default:
		return r.CPU
	}
}

// Chart sizes. Ring ratios are fractions of the chart radius,
// min(width, height) / 2.
type Chart struct {
	Width             float64 `mapstructure:"width" yaml:"width"`
	Height            float64 `mapstructure:"height" yaml:"height"`
	InnerRadiusRatio  float64 `mapstructure:"inner_radius_ratio" yaml:"inner_radius_ratio"`
	ResourceRingRatio float64 `mapstructure:"resource_ring_ratio" yaml:"resource_ring_ratio"`
	NodeRingRatio     float64 `mapstructure:"node_ring_ratio" yaml:"node_ring_ratio"`
	VMRingRatio       float64 `mapstructure:"vm_ring_ratio" yaml:"vm_ring_ratio"`
}

func (c Chart) Radius() float64 { return min(c.Width, c.Height) / 2 }

type Animations struct {
	TooltipFadeIn  time.Duration `mapstructure:"tooltip_fade_in" yaml:"tooltip_fade_in"`
	TooltipFadeOut time.Duration `mapstructure:"tooltip_fade_out" yaml:"tooltip_fade_out"`
}

type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
	File  string `mapstructure:"file" yaml:"file"`
}

type S3 struct {
	URI       string `mapstructure:"uri" yaml:"uri"`
	Region    string `mapstructure:"region" yaml:"region"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	PathStyle bool   `mapstructure:"path_style" yaml:"path_style"`
	// static credentials, the default AWS chain is used when empty
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"-"`
}

type Kubernetes struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Kubeconfig string `mapstructure:"kubeconfig" yaml:"kubeconfig"`
	Context    string `mapstructure:"context" yaml:"context"`
	Usage      string `mapstructure:"usage" yaml:"usage"` // requests|metrics
}

// Source selects where snapshots come from. The first non-empty of mock,
// kubernetes, s3, url and file wins.
type Source struct {
	File       string        `mapstructure:"file" yaml:"file"`
	URL        string        `mapstructure:"url" yaml:"url"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	S3         S3            `mapstructure:"s3" yaml:"s3"`
	Kubernetes Kubernetes    `mapstructure:"kubernetes" yaml:"kubernetes"`
	Mock       bool          `mapstructure:"mock" yaml:"mock"`
}

type Config struct {
	Chart       Chart      `mapstructure:"chart" yaml:"chart"`
	Resources   Resources  `mapstructure:"resources" yaml:"resources"`
	Animations  Animations `mapstructure:"animations" yaml:"animations"`
	DateFormat  string     `mapstructure:"date_format" yaml:"date_format"`
	CenterTitle []string   `mapstructure:"center_title" yaml:"center_title"`
	Log         Log        `mapstructure:"log" yaml:"log"`
	Source      Source     `mapstructure:"source" yaml:"source"`
}

// DefaultFile is the stats file looked up when no source is configured.
const DefaultFile = "proxmox_stats.json"

var defaults = map[string]any{
	"chart.width":               900,
	"chart.height":              600,
	"chart.inner_radius_ratio":  0.3,
	"chart.resource_ring_ratio": 0.5,
	"chart.node_ring_ratio":     0.7,
	"chart.vm_ring_ratio":       0.9,

	"resources.cpu.color":                  "#f4a4a4",
	"resources.cpu.thresholds.warning":     80,
	"resources.cpu.thresholds.critical":    100,
	"resources.memory.color":               "#a5c8e1",
	"resources.memory.thresholds.warning":  80,
	"resources.memory.thresholds.critical": 90,
	"resources.disk.color":                 "#a5d6c8",
	"resources.disk.thresholds.warning":    80,
	"resources.disk.thresholds.critical":   90,

	"animations.tooltip_fade_in":  "200ms",
	"animations.tooltip_fade_out": "500ms",

	"date_format":  "2 January 2006",
	"center_title": []string{"Cluster", "Proxmox"},

	"log.level": "info",
	"log.json":  false,
	"log.file":  "",

	"source.file":                 "",
	"source.url":                  "",
	"source.timeout":              "10s",
	"source.s3.uri":               "",
	"source.s3.region":            "us-east-1",
	"source.s3.endpoint":          "",
	"source.s3.path_style":        false,
	"source.s3.access_key_id":     "",
	"source.s3.secret_access_key": "",
	"source.kubernetes.enabled":   false,
	"source.kubernetes.context":   "",
	"source.kubernetes.usage":     "requests",
	"source.mock":                 false,
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetDefault("source.kubernetes.kubeconfig", filepath.Join(help.HomeDir(), ".kube", "config"))
}

// NewViper returns a viper instance with defaults, the CLUSTERRINGS_ env
// prefix and the config file search path. An explicit path wins over the
// search path.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("clusterrings")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("clusterrings")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(help.HomeDir(), ".config", "clusterrings"))
	}
	return v
}

// Load reads the config file (when there is one), unmarshals and validates.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		log.WithField("file", v.ConfigFileUsed()).Debug("config file loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Default is the configuration with no file, env or flags applied.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return cfg
}

func (c *Chart) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %vx%v", c.Width, c.Height)
	}
	ratios := []struct {
		key string
		v   float64
	}{
		{"chart.inner_radius_ratio", c.InnerRadiusRatio},
		{"chart.resource_ring_ratio", c.ResourceRingRatio},
		{"chart.node_ring_ratio", c.NodeRingRatio},
		{"chart.vm_ring_ratio", c.VMRingRatio},
	}
	prev := 0.0
	for _, r := range ratios {
		if r.v <= prev || r.v > 1 {
			return fmt.Errorf("key '%s' must be in (%v, 1], got %v", r.key, prev, r.v)
		}
		prev = r.v
	}
	return nil
}

func (s *ResourceStyle) validate(name string) error {
	if _, err := colorful.Hex(s.Color); err != nil {
		return fmt.Errorf("key 'resources.%s.color': %w", name, err)
	}
	if s.Thresholds.Warning < 0 || s.Thresholds.Warning > s.Thresholds.Critical {
		return fmt.Errorf("resources.%s thresholds: need 0 <= warning <= critical, got %v/%v",
			name, s.Thresholds.Warning, s.Thresholds.Critical)
	}
	return nil
}

func (s *Source) validate() error {
	switch s.Kubernetes.Usage {
	case "requests", "metrics":
	default:
		return fmt.Errorf("key 'source.kubernetes.usage' must be requests or metrics, got %q", s.Kubernetes.Usage)
	}
	if s.S3.URI != "" && !strings.HasPrefix(s.S3.URI, "s3://") {
		return fmt.Errorf("key 'source.s3.uri' must start with s3://, got %q", s.S3.URI)
	}
	if (s.S3.AccessKeyID == "") != (s.S3.SecretAccessKey == "") {
		return errors.New("keys 'source.s3.access_key_id' and 'source.s3.secret_access_key' must be set together")
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Chart.validate(); err != nil {
		return err
	}
	for _, rt := range domain.ResourceTypes {
		style := c.Resources.For(rt)
		if err := style.validate(strings.ToLower(rt.String())); err != nil {
			return err
		}
	}
	if c.Animations.TooltipFadeIn < 0 || c.Animations.TooltipFadeOut < 0 {
		return errors.New("animation durations must not be negative")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("key 'log.level': %w", err)
	}
	return c.Source.validate()
}

// Dump writes cfg as YAML.
func Dump(w io.Writer, cfg Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = w.Write(out)
	return err
}
