package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/macropower/chores/pkg/config"
	"github.com/macropower/chores/pkg/log"
)

var (
	ErrLogHandlerFailed = errors.New("log handler failed")
	ErrConfigFailed     = errors.New("config failed")
	ErrInvalidArgument  = errors.New("invalid argument")

	//nolint:staticcheck // Printed as-is to the user.
	ErrMissingMode = errors.New("Missing argument operation (mut or cond)")

	blockProfile *pprof.Profile
	mutexProfile *pprof.Profile
)

func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	args := NewRootArgs()

	cmd := &cobra.Command{
		Use:           name + " <mut|cond>",
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       GetVersionString(),
		RunE: func(_ *cobra.Command, _ []string) error {
			return ErrMissingMode
		},
	}

	defaults := config.Default()

	cmd.PersistentFlags().StringVarP(args.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(args.logLevel, "log_level", defaults.LogLevel, "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(args.logFormat, "log_format", defaults.LogFormat, "Set the log format (text, logfmt, json)")

	cmd.PersistentFlags().StringVar(args.cpuProfile, "cpuprofile", "", "Write a CPU profile to this file")
	cmd.PersistentFlags().StringVar(args.blockProfile, "blockprofile", "", "Write a block profile to this file")
	cmd.PersistentFlags().IntVar(args.blockProfileRate, "blockprofile_rate", 1, "Block profiling rate as a fraction")
	cmd.PersistentFlags().StringVar(args.mutexProfile, "mutexprofile", "", "Write a mutex profile to this file")
	cmd.PersistentFlags().IntVar(args.mutexProfileRate, "mutexprofile_rate", 1, "Mutex profiling rate as a fraction")

	for _, f := range []string{"config", "cpuprofile", "blockprofile", "mutexprofile"} {
		if err := cmd.MarkPersistentFlagFilename(f); err != nil {
			panic(err)
		}
	}

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		// Start CPU profiling if file is specified.
		if args.GetCPUProfile() != "" {
			f, err := os.Create(args.GetCPUProfile())
			if err != nil {
				return fmt.Errorf("failed to create CPU profile: %w", err)
			}

			err = pprof.StartCPUProfile(f)
			if err != nil {
				must(f.Close())

				return fmt.Errorf("failed to start CPU profile: %w", err)
			}
		}

		if args.GetBlockProfile() != "" {
			runtime.SetBlockProfileRate(args.GetBlockProfileRate())

			blockProfile = pprof.Lookup("block")
		}

		if args.GetMutexProfile() != "" {
			runtime.SetMutexProfileFraction(args.GetMutexProfileRate())

			mutexProfile = pprof.Lookup("mutex")
		}

		cfg, err := config.Load(args.GetConfigPath())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConfigFailed, err)
		}

		err = cfg.ApplyEnv(os.LookupEnv)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConfigFailed, err)
		}

		flags := cc.Flags()
		if flags.Changed("log_level") {
			cfg.LogLevel = args.GetLogLevel()
		}

		if flags.Changed("log_format") {
			cfg.LogFormat = args.GetLogFormat()
		}

		args.config = cfg

		h, err := log.CreateHandlerWithStrings(
			cc.ErrOrStderr(),
			cfg.LogLevel,
			cfg.LogFormat,
		)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLogHandlerFailed, err)
		}

		slog.SetDefault(slog.New(h))

		if termenv.EnvNoColor() {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		slog.Debug("ready to go", slog.String("config", args.GetConfigPath()))

		return nil
	}

	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		slog.Debug("shutting down")

		// Stop CPU profiling if it was started.
		if args.GetCPUProfile() != "" {
			pprof.StopCPUProfile()
		}

		// Write block profile if file is specified.
		if blockProfile != nil {
			err := writeProfile(blockProfile, args.GetBlockProfile())
			if err != nil {
				return fmt.Errorf("failed to write block profile: %w", err)
			}
		}

		// Write mutex profile if file is specified.
		if mutexProfile != nil {
			err := writeProfile(mutexProfile, args.GetMutexProfile())
			if err != nil {
				return fmt.Errorf("failed to write mutex profile: %w", err)
			}
		}

		return nil
	}

	cmd.AddCommand(NewMutCmd(args))
	cmd.AddCommand(NewCondCmd(args))
	cmd.AddCommand(NewConfigCmd(args))
	cmd.AddCommand(NewSchemaCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func writeProfile(p *pprof.Profile, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err //nolint:wrapcheck
	}

	err = p.WriteTo(f, 0)
	if err != nil {
		must(f.Close())

		return err //nolint:wrapcheck
	}

	return f.Close() //nolint:wrapcheck
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
