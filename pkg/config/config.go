package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/macropower/chores/pkg/chores"
	"github.com/macropower/chores/pkg/jsonschema"
	"github.com/macropower/chores/pkg/log"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CHORES_"

var (
	ErrConfig        = errors.New("config")
	ErrInvalidConfig = errors.New("invalid config")
)

// Config configures a chores run.
type Config struct {
	// Number of worker goroutines.
	Workers int `json:"workers" yaml:"workers" jsonschema:"minimum=1,default=2"`
	// How long a single chore takes, e.g. "2s" or "500ms".
	WorkDuration time.Duration `json:"workDuration" yaml:"workDuration"`
	// What happens to outstanding chores on shutdown.
	Shutdown string `json:"shutdown" yaml:"shutdown"`
	// Log level: debug, info, warn or error.
	LogLevel string `json:"logLevel" yaml:"logLevel"`
	// Log format: text, logfmt or json.
	LogFormat string `json:"logFormat" yaml:"logFormat"`
	// Use the interactive terminal UI when stdout is a terminal.
	TUI bool `json:"tui" yaml:"tui"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Workers:      chores.DefaultWorkers,
		WorkDuration: chores.DefaultWorkDuration,
		Shutdown:     chores.ShutdownDrain.String(),
		LogLevel:     "warn",
		LogFormat:    log.TextFormat,
	}
}

// Load returns [Default] overlaid with the YAML file at path. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	defer f.Close() //nolint:errcheck

	if err := c.Decode(f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
	}

	return c, nil
}

// Decode overlays c with YAML read from r. Unknown fields are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	err := dec.Decode(c)
	if errors.Is(err, io.EOF) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}

	return nil
}

// Encode writes c as YAML.
func (c *Config) Encode(w io.Writer) error {
	buf := &bytes.Buffer{}

	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	_, err := w.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// EnvName returns the environment variable name for a YAML field name, for
// example "workDuration" becomes "CHORES_WORK_DURATION".
func EnvName(field string) string {
	return EnvPrefix + strcase.ToScreamingSnake(field)
}

// ApplyEnv overlays c with values returned by lookup, typically
// [os.LookupEnv]. Every malformed value is reported.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var merr error

	for _, f := range c.fields() {
		name := EnvName(f.name)

		v, ok := lookup(name)
		if !ok {
			continue
		}

		if err := f.set(v); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s=%q: %w", name, v, err))
		}
	}

	if merr != nil {
		return fmt.Errorf("%w: %w", ErrConfig, merr)
	}

	return nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var merr error

	if c.Workers < 1 {
		merr = multierror.Append(merr, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}

	if c.WorkDuration < 0 {
		merr = multierror.Append(merr, fmt.Errorf("workDuration must not be negative, got %s", c.WorkDuration))
	}

	if _, err := chores.ParseShutdownPolicy(c.Shutdown); err != nil {
		merr = multierror.Append(merr, err)
	}

	if _, err := log.GetLevel(c.LogLevel); err != nil {
		merr = multierror.Append(merr, err)
	}

	if _, err := log.GetFormatter(c.LogFormat); err != nil {
		merr = multierror.Append(merr, err)
	}

	if merr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, merr)
	}

	return nil
}

// CrewOpts returns the [chores.CrewOpt] values for c. Call [Config.Validate]
// first.
func (c *Config) CrewOpts() []chores.CrewOpt {
	policy, _ := chores.ParseShutdownPolicy(c.Shutdown) //nolint:errcheck // Validated.

	return []chores.CrewOpt{
		chores.WithWorkers(c.Workers),
		chores.WithWorkDuration(c.WorkDuration),
		chores.WithShutdownPolicy(policy),
	}
}

// Schema returns the JSON schema of the configuration file.
func Schema() *jsonschema.Schema {
	s := jsonschema.NewReflector().Reflect(reflect.TypeOf(Config{}))
	s.Title = "chores config"

	d := Default()

	s.SetProperty("workDuration",
		jsonschema.WithType("string"),
		jsonschema.WithPattern(`^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`),
		jsonschema.WithDefault(d.WorkDuration.String()),
	)
	s.SetProperty("shutdown",
		jsonschema.WithEnum([]any{chores.ShutdownDrain.String(), chores.ShutdownImmediate.String()}),
		jsonschema.WithDefault(d.Shutdown),
	)
	s.SetProperty("logLevel",
		jsonschema.WithEnum([]any{"debug", "info", "warn", "error"}),
		jsonschema.WithDefault(d.LogLevel),
	)
	s.SetProperty("logFormat",
		jsonschema.WithEnum([]any{log.TextFormat, log.LogfmtFormat, log.JSONFormat}),
		jsonschema.WithDefault(d.LogFormat),
	)
	s.SetProperty("tui", jsonschema.WithDefault(false))

	// Every field has a default.
	s.Required = nil

	return s
}

type field struct {
	set  func(string) error
	name string
}

func (c *Config) fields() []field {
	return []field{
		{name: "workers", set: func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err //nolint:wrapcheck
			}

			c.Workers = n

			return nil
		}},
		{name: "workDuration", set: func(v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err //nolint:wrapcheck
			}

			c.WorkDuration = d

			return nil
		}},
		{name: "shutdown", set: func(v string) error {
			c.Shutdown = v

			return nil
		}},
		{name: "logLevel", set: func(v string) error {
			c.LogLevel = v

			return nil
		}},
		{name: "logFormat", set: func(v string) error {
			c.LogFormat = v

			return nil
		}},
		{name: "tui", set: func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err //nolint:wrapcheck
			}

			c.TUI = b

			return nil
		}},
	}
}
