package local

import "github.com/kbukum/speechkit/validation"

const defaultThreads = 4

// ModelConfig locates the model file.
type ModelConfig struct {
	// Source is a file path, resource://name, classpath://name or an
	// http(s) URL.
	Source string `yaml:"source" mapstructure:"source" validate:"required"`
	// InstallDir receives downloaded models. Defaults to "./models".
	InstallDir string `yaml:"install_dir" mapstructure:"install_dir"`
}

// Config configures the local backend.
type Config struct {
	Threads       int         `yaml:"threads" mapstructure:"threads" validate:"gte=1"`
	Translate     bool        `yaml:"translate" mapstructure:"translate"`
	PrintProgress bool        `yaml:"print_progress" mapstructure:"print_progress"`
	Executable    string      `yaml:"executable" mapstructure:"executable"`
	Model         ModelConfig `yaml:"model" mapstructure:"model"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Threads <= 0 {
		c.Threads = defaultThreads
	}
	if c.Model.InstallDir == "" {
		c.Model.InstallDir = "./models"
	}
}

// Validate checks the struct rules.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
