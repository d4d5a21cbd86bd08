package process

import (
	"context"
	"time"

	"github.com/kbukum/speechkit/logger"
)

// Config configures a Runner bound to one executable.
type Config struct {
	// Binary is the executable path or name.
	Binary string `yaml:"binary" mapstructure:"binary"`
	// GracePeriod is the default grace period for SIGTERM→SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout is the default execution timeout. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Runner executes one external tool repeatedly with shared defaults and
// logs every invocation.
type Runner struct {
	config Config
	log    *logger.Logger
}

// NewRunner creates a Runner. A nil logger disables logging.
func NewRunner(cfg Config, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{config: cfg, log: log}
}

// Binary returns the configured executable.
func (r *Runner) Binary() string {
	return r.config.Binary
}

// Run executes the configured binary with args, applying runner-level defaults.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		cmd.Binary = r.config.Binary
	}
	if cmd.GracePeriod == 0 && r.config.GracePeriod > 0 {
		cmd.GracePeriod = r.config.GracePeriod
	}
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	r.log.Debug("running subprocess", logger.Fields(logger.FieldPath, cmd.Binary, "args", len(cmd.Args)))
	result, err := Run(ctx, cmd)
	if err != nil {
		fields := logger.Fields(logger.FieldPath, cmd.Binary, logger.FieldError, err.Error())
		if result != nil {
			fields["exit_code"] = result.ExitCode
			fields["stderr"] = result.StderrTail(512)
		}
		r.log.Warn("subprocess failed", fields)
		return result, err
	}

	r.log.Debug("subprocess finished", logger.DurationFields(cmd.Binary, result.Duration))
	return result, nil
}
