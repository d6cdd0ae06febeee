package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"procedure-backend/internal/shared/telemetry"
)

// Version is overridden at build time with -ldflags "-X procedure-backend/internal/cli.Version=...".
var Version = "dev"

const envPrefix = "PROCHECK"

// NewRootCommand builds the procheck command tree. Each call gets its own viper
// instance so commands can be built repeatedly in tests.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	var cfgFile string
	var verbose bool

	root := &cobra.Command{
		Use:   "procheck",
		Short: "Score procedure documents against the quality checklist",
		Long: `procheck runs the procedure quality engine locally.

It extracts text from PDF and Word documents, scores them against the
section checklist, and prints the full analysis as JSON.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Engine logs go to stderr so stdout stays machine-readable.
			if verbose {
				telemetry.SetOutput(cmd.ErrOrStderr())
			} else {
				telemetry.SetOutput(io.Discard)
			}
			return initConfig(v, cfgFile, verbose, cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.procheck/config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine events to stderr")

	root.AddCommand(
		newAnalyzeCommand(v),
		newChecklistCommand(v),
		newVersionCommand(),
	)
	return root
}

// Execute runs procheck with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func initConfig(v *viper.Viper, cfgFile string, verbose bool, stderr io.Writer) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".procheck"))
		}
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}
	if verbose {
		fmt.Fprintf(stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "procheck %s\n", Version)
		},
	}
}
