package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// argError and analysisError distinguish the two non-zero exit codes
// spec.md §6 fixes: 2 for I/O/argument errors, 1 for analysis failure.
type argError struct{ err error }

func (e *argError) Error() string { return e.err.Error() }
func (e *argError) Unwrap() error { return e.err }

type analysisError struct{ err error }

func (e *analysisError) Error() string { return e.err.Error() }
func (e *analysisError) Unwrap() error { return e.err }

// exitCodeFor returns 1 only for analysis failures; every other error,
// including cobra's own argument and flag parsing errors, is an argument or
// I/O error and returns 2.
func exitCodeFor(err error) int {
	var ae *analysisError
	if errors.As(err, &ae) {
		return 1
	}
	return 2
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "wasminspect",
		Short:         "Static analyzer for WebAssembly binary modules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// bindEnv wires viper to read a .wasminspect.yaml config file plus
// WASMINSPECT_-prefixed environment variables as flag defaults, applied
// only to flags the user did not explicitly set on the command line.
func bindEnv(cmd *cobra.Command, v *viper.Viper) error {
	v.SetEnvPrefix("wasminspect")
	v.AutomaticEnv()
	v.SetConfigName(".wasminspect")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return &argError{fmt.Errorf("read config: %w", err)}
		}
	}

	var firstErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || firstErr != nil {
			return
		}
		if !v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
			firstErr = err
		}
	})
	if firstErr != nil {
		return &argError{firstErr}
	}
	return nil
}
