package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Source logs
	InputDelimiter   string `mapstructure:"input_delimiter" yaml:"input_delimiter"`
	InputEncoding    string `mapstructure:"input_encoding" yaml:"input_encoding"`
	HeaderEndPattern string `mapstructure:"header_end_pattern" yaml:"header_end_pattern"`

	// Output layout
	OutputDelimiter string `mapstructure:"output_delimiter" yaml:"output_delimiter"`
	HeaderStart     string `mapstructure:"header_start" yaml:"header_start"`
	DataStart       string `mapstructure:"data_start" yaml:"data_start"`
	CommentPrefix   string `mapstructure:"comment_prefix" yaml:"comment_prefix"`
	Sentinel        string `mapstructure:"sentinel" yaml:"sentinel"`
	OutputPrefix    string `mapstructure:"output_prefix" yaml:"output_prefix"`

	BlockLength int    `mapstructure:"block_length" yaml:"block_length"`
	JobsDir     string `mapstructure:"jobs_dir" yaml:"jobs_dir"`
	LogJSON     bool   `mapstructure:"log_json" yaml:"log_json"`
}

// Keys lists the settable configuration keys.
var Keys = []string{
	"input_delimiter", "input_encoding", "header_end_pattern", "output_delimiter", "header_start", "data_start",
	"comment_prefix", "sentinel", "output_prefix", "block_length", "jobs_dir", "log_json",
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		InputDelimiter:   "|",
		InputEncoding:    "utf-8",
		HeaderEndPattern: `--Nr\.--.*`,
		OutputDelimiter:  "\t",
		HeaderStart:      "# [header]",
		DataStart:        "# [data]",
		CommentPrefix:    "# ",
		Sentinel:         "NaN",
		OutputPrefix:     "data_",
		BlockLength:      1,
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".compose"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.compose/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("COMPOSE")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("input_delimiter", d.InputDelimiter)
	v.SetDefault("input_encoding", d.InputEncoding)
	v.SetDefault("header_end_pattern", d.HeaderEndPattern)
	v.SetDefault("output_delimiter", d.OutputDelimiter)
	v.SetDefault("header_start", d.HeaderStart)
	v.SetDefault("data_start", d.DataStart)
	v.SetDefault("comment_prefix", d.CommentPrefix)
	v.SetDefault("sentinel", d.Sentinel)
	v.SetDefault("output_prefix", d.OutputPrefix)
	v.SetDefault("block_length", d.BlockLength)
	v.SetDefault("jobs_dir", "")
	v.SetDefault("log_json", false)

	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve jobs_dir default: ~/.compose/jobs
	if c.JobsDir == "" {
		c.JobsDir = filepath.Join(dir, "jobs")
	}
	return &c, nil
}
