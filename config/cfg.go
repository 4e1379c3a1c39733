package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"wfc/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// UserAgentsConfig holds identification header values, provider decides
	// which font format to serve based on them.
	UserAgentsConfig struct {
		Eot   string `yaml:"eot" validate:"required"`
		Woff  string `yaml:"woff" validate:"required"`
		Woff2 string `yaml:"woff2" validate:"required"`
		Svg   string `yaml:"svg" validate:"required"`
		Ttf   string `yaml:"ttf" validate:"required"`
	}

	ProviderConfig struct {
		URL        string           `yaml:"url" validate:"required,url"`
		Timeout    time.Duration    `yaml:"timeout"`
		Proxy      SecretString     `yaml:"proxy,omitempty"`
		UserAgents UserAgentsConfig `yaml:"user_agents"`
	}

	OutputConfig struct {
		FontsDir              string `yaml:"fonts_dir"`
		CSSDir                string `yaml:"css_dir" validate:"required"`
		URLPrefix             string `yaml:"url_prefix,omitempty" validate:"omitempty,uri"`
		FontNameTemplate      string `yaml:"font_name_template"`
		FileNameTransliterate bool   `yaml:"file_name_transliterate"`
		Overwrite             bool   `yaml:"overwrite"`
		VerifyAssets          bool   `yaml:"verify_assets"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Provider  ProviderConfig `yaml:"provider"`
		Output    OutputConfig   `yaml:"output"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// For returns identification header value to be used when requesting
// stylesheet in the specified format.
func (ua *UserAgentsConfig) For(f common.FontFormat) string {
	switch f {
	case common.FontFormatEot:
		return ua.Eot
	case common.FontFormatWoff:
		return ua.Woff
	case common.FontFormatWoff2:
		return ua.Woff2
	case common.FontFormatSvg:
		return ua.Svg
	case common.FontFormatTtf:
		return ua.Ttf
	default:
		// this should never happen
		panic("unsupported font format requested")
	}
}

const (
	// NOTE: must match yaml field name above
	FontNameTemplateFieldName TemplateFieldName = "font_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(FontNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("configuration sanitization failed: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
