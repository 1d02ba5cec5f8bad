package haml

import (
	"fmt"
	"strconv"

	"github.com/hesusruiz/vcutils/yaml"
)

// Keys of the configuration document.
const (
	ConfigDjangoInlineStyle = "django_inline_style"
	ConfigAttrWrapper       = "attr_wrapper"
)

// OptionsFromYAML returns the options set in a configuration document.
// Keys which are not present keep their default values.
func OptionsFromYAML(cfg *yaml.YAML) ([]Option, error) {
	var opts []Option

	if cfg == nil {
		return opts, nil
	}

	if s := cfg.String(ConfigDjangoInlineStyle, ""); len(s) > 0 {
		enabled, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q is not a boolean", ConfigDjangoInlineStyle, s)
		}
		opts = append(opts, WithDjangoInlineStyle(enabled))
	}

	if s := cfg.String(ConfigAttrWrapper, ""); len(s) > 0 {
		if len(s) != 1 {
			return nil, fmt.Errorf("invalid value for %s: %q is not a single character", ConfigAttrWrapper, s)
		}
		opts = append(opts, WithAttrWrapper(s[0]))
	}

	return opts, nil
}

// ParseConfig returns the options set in a YAML configuration string.
func ParseConfig(src string) ([]Option, error) {
	cfg, err := yaml.ParseYaml(src)
	if err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	return OptionsFromYAML(cfg)
}

// LoadConfigFile returns the options set in a YAML configuration file.
func LoadConfigFile(fileName string) ([]Option, error) {
	cfg, err := yaml.ParseYamlFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("loading configuration %s: %w", fileName, err)
	}
	return OptionsFromYAML(cfg)
}
