package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SITEGEN_IMAGES_DIR.
const EnvPrefix = "SITEGEN"

// Config holds all configuration for sitegen
type Config struct {
	Images ImagesConfig `mapstructure:"images"`
	Demos  DemosConfig  `mapstructure:"demos"`
}

// ImagesConfig holds image manifest generation settings
type ImagesConfig struct {
	Dir           string   `mapstructure:"dir"`
	Out           string   `mapstructure:"out"`
	Previous      string   `mapstructure:"previous"` // defaults to Out
	Formatter     string   `mapstructure:"formatter"`
	NoFormat      bool     `mapstructure:"no_format"`
	RespectIgnore bool     `mapstructure:"respect_ignore"`
	Exclude       []string `mapstructure:"exclude"`
	ImportPath    string   `mapstructure:"import_path"`
	TypeName      string   `mapstructure:"type_name"`
	ConstName     string   `mapstructure:"const_name"`
}

// DemosConfig holds demo list generation settings
type DemosConfig struct {
	Pages     string   `mapstructure:"pages"`
	Out       string   `mapstructure:"out"`
	Patterns  []string `mapstructure:"patterns"`
	ConstName string   `mapstructure:"const_name"`
}

var defaultConfig = Config{
	Images: ImagesConfig{
		Dir:        "public/images",
		Out:        "src/image_list/imageList.ts",
		Formatter:  "bun run biome check --write",
		Exclude:    []string{},
		ImportPath: "~/image_list/ImageType",
		TypeName:   "ImageType",
		ConstName:  "imageList",
	},
	Demos: DemosConfig{
		Pages:     "src/pages",
		Out:       "src/demos/demoList.ts",
		Patterns:  []string{"**/*.{tsx,jsx,mdx}"},
		ConstName: "demoList",
	},
}

// Default returns a copy of the built-in configuration.
func Default() Config {
	c := defaultConfig
	c.Images.Exclude = append([]string{}, defaultConfig.Images.Exclude...)
	c.Demos.Patterns = append([]string{}, defaultConfig.Demos.Patterns...)
	return c
}

// New returns a viper instance with defaults, the config search path and
// environment overrides set up. Callers bind flags before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("images.dir", defaultConfig.Images.Dir)
	v.SetDefault("images.out", defaultConfig.Images.Out)
	v.SetDefault("images.previous", "")
	v.SetDefault("images.formatter", defaultConfig.Images.Formatter)
	v.SetDefault("images.no_format", false)
	v.SetDefault("images.respect_ignore", false)
	v.SetDefault("images.exclude", defaultConfig.Images.Exclude)
	v.SetDefault("images.import_path", defaultConfig.Images.ImportPath)
	v.SetDefault("images.type_name", defaultConfig.Images.TypeName)
	v.SetDefault("images.const_name", defaultConfig.Images.ConstName)

	v.SetDefault("demos.pages", defaultConfig.Demos.Pages)
	v.SetDefault("demos.out", defaultConfig.Demos.Out)
	v.SetDefault("demos.patterns", defaultConfig.Demos.Patterns)
	v.SetDefault("demos.const_name", defaultConfig.Demos.ConstName)

	v.SetConfigName("sitegen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")     // Current directory
	v.AddConfigPath("$HOME") // Home directory

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file (explicit path, or sitegen.yaml on the search
// path), validates it and unmarshals the merged result. A missing search-path
// file is not an error; a missing explicit file is.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if ext := strings.TrimPrefix(filepath.Ext(configFile), "."); ext != "" {
			v.SetConfigType(ext)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	if used := v.ConfigFileUsed(); used != "" {
		data, err := os.ReadFile(filepath.Clean(used)) // #nosec G304 -- user-selected config path
		if err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", used, err)
		}
		if err := ValidateFile(used, data); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if config.Images.Previous == "" {
		config.Images.Previous = config.Images.Out
	}
	return &config, nil
}

// LoadConfig is New followed by Load with the default search path.
func LoadConfig() (*Config, error) {
	return Load(New(), "")
}

// FormatterCommand returns the formatter command line, or "" when formatting is off.
func (c ImagesConfig) FormatterCommand() string {
	if c.NoFormat {
		return ""
	}
	return strings.TrimSpace(c.Formatter)
}
