package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/goplus/lobs/internal/env"
	"github.com/goplus/lobs/internal/logger"
	"github.com/goplus/lobs/pkgs/errs"
)

var (
	configFile string
	cfg        = &env.Config{}
)

var rootCmd = &cobra.Command{
	Use:   "lobs",
	Short: "lobs generates build scripts from project descriptions",
	Long: `lobs reads a package description (lobs.hcl) and its dependencies and
writes the build scripts of a build system: a CMake project or an ESP-IDF
component tree.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is .lobs.yaml in the working directory)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Bool("log-json", false, "log in JSON")
}

// setup reads the configuration and initializes logging.
func setup(cmd *cobra.Command, _ []string) error {
	v, err := env.New(configFile, ".")
	if err != nil {
		return err
	}
	flags := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("log.level", flags.Lookup("log-level")); err != nil {
		return err
	}
	if err := v.BindPFlag("log.json", flags.Lookup("log-json")); err != nil {
		return err
	}
	if cfg, err = env.Load(v); err != nil {
		return err
	}
	return logger.Initialize(cfg.Log.Level, cfg.Log.JSON)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError reports err, prefixed with its category when it has one,
// followed by its hints.
func printError(w io.Writer, err error) {
	if c := errs.Category(err); c != nil {
		fmt.Fprintf(w, "Error (%s): %v\n", c, err)
	} else {
		fmt.Fprintln(w, "Error:", err)
	}
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintln(w, "Hint:", hint)
	}
}
