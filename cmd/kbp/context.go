package main

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"kbpkit/internal/config"
	"kbpkit/internal/kbp"
	"kbpkit/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger(w io.Writer) (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
	}
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		opts.Level = *c.logLevelFlag
	}
	if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
		opts.Format = *c.logFormatFlag
	}
	logger, err := logging.New(opts)
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return logger, nil
}

func (c *commandContext) loggerFor(component string) *slog.Logger {
	if c.logger == nil {
		return logging.NewNop()
	}
	return logging.NewComponentLogger(c.logger, component)
}

// parseFlags are the engine options every file-reading command accepts.
type parseFlags struct {
	tolerant           bool
	template           bool
	resolveColors      bool
	resolveDefaultWipe bool
	encoding           string
}

func (f *parseFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.tolerant, "tolerant", false, "Repair split syllables and skip unknown sections")
	cmd.Flags().BoolVar(&f.template, "template", false, "Accept files without track information")
	cmd.Flags().BoolVar(&f.resolveColors, "resolve-colors", false, "Replace palette references with colour values")
	cmd.Flags().BoolVar(&f.resolveDefaultWipe, "resolve-default-wipe", false, "Replace wipe code 0 with the file's wipe detail")
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "Text encoding of the input (utf-8, windows-1252)")
}

// options starts from the [parse] config section and applies any flags the
// user set explicitly.
func (f *parseFlags) options(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) kbp.Options {
	opts := cfg.ParseOptions(logger)
	flags := cmd.Flags()
	if flags.Changed("tolerant") {
		opts.Tolerant = f.tolerant
	}
	if flags.Changed("template") {
		opts.Template = f.template
	}
	if flags.Changed("resolve-colors") {
		opts.ResolveColors = f.resolveColors
	}
	if flags.Changed("resolve-default-wipe") {
		opts.ResolveDefaultWipe = f.resolveDefaultWipe
	}
	if flags.Changed("encoding") {
		opts.Encoding = f.encoding
	}
	return opts
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// errIssuesFound signals that check completed but reported problems.
var errIssuesFound = errors.New("issues found")

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errIssuesFound):
		return 2
	default:
		return 1
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
