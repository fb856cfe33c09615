package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/byteowlz/pdfrip/internal/backend"
	"github.com/byteowlz/pdfrip/internal/config"
	"github.com/byteowlz/pdfrip/internal/runner"
)

// Exit codes for granular error handling
const (
	ExitSuccess      = 0
	ExitNoBackends   = 1 // no extraction backend usable in this environment
	ExitAllFailed    = 2 // every attempted backend failed
	ExitInvalidInput = 3
	ExitConfigError  = 4
	ExitFileIOError  = 5
)

var (
	cfgFile      string
	outputDir    string
	backendNames []string
	timeout      int
	listBackends bool
	verbose      bool
	quiet        bool
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "pdfrip <file.pdf>",
	Short: "Extract text from a PDF with every available backend",
	Long: `pdfrip extracts the text of a PDF with each available extraction
backend, writing one text file per backend that succeeds. Backends are
independent alternatives: every available one is attempted exactly once,
regardless of how the others fare.`,
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	RunE:          run,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitErr); ok {
			os.Exit(exitErr.code)
		}
		os.Exit(ExitInvalidInput)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/pdfrip/config.toml)")

	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for extracted text files")
	rootCmd.Flags().StringSliceVarP(&backendNames, "backend", "B", nil, "restrict to specific backends (ledongthuc, poppler, mupdf)")
	rootCmd.Flags().IntVar(&timeout, "timeout", 0, "per-run timeout in seconds (0 = no timeout)")
	rootCmd.Flags().BoolVar(&listBackends, "list-backends", false, "list backends and their availability, then exit")

	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all non-content output")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			if !quiet {
				fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			}
			return
		}
		configHome = filepath.Join(home, ".config")
	}

	configDir := filepath.Join(configHome, "pdfrip")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("toml")
	viper.SetConfigName("config")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PDFRIP")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Auto-create config on first run
			configPath := filepath.Join(configDir, "config.toml")
			cfg := config.Default()
			if createErr := cfg.CreateExampleConfig(configPath); createErr == nil {
				if verbose && !quiet {
					fmt.Fprintf(os.Stderr, "Created config file: %s\n", configPath)
				}
				viper.ReadInConfig()
			}
		} else if verbose && !quiet {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	} else if verbose && !quiet {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return exitError(ExitConfigError, "failed to load config: %v", err)
	}

	// Apply config defaults if CLI flags not explicitly set
	if !cmd.Flags().Changed("output-dir") && cfg.Output.Dir != "" {
		outputDir = cfg.Output.Dir
	}
	if !cmd.Flags().Changed("backend") && len(cfg.Extraction.Backends) > 0 {
		backendNames = cfg.Extraction.Backends
	}
	if !cmd.Flags().Changed("timeout") && cfg.Extraction.Timeout > 0 {
		timeout = cfg.Extraction.Timeout
	}

	selected, err := backend.Select(backend.All(cfg), backendNames)
	if err != nil {
		return exitError(ExitInvalidInput, "%v", err)
	}
	available, missing := backend.Detect(selected)

	if listBackends {
		for _, b := range available {
			fmt.Printf("%-12s available\n", b.Name())
		}
		for _, b := range missing {
			fmt.Printf("%-12s not available - %s\n", b.Name(), b.InstallHint())
		}
		return nil
	}

	if len(args) == 0 {
		return exitError(ExitInvalidInput, "no input file provided")
	}
	pdfPath := args[0]
	if _, err := os.Stat(pdfPath); err != nil {
		return exitError(ExitInvalidInput, "cannot read %s: %v", pdfPath, err)
	}

	for _, b := range missing {
		if !quiet {
			fmt.Fprintf(os.Stderr, "%s not available - %s\n", b.Name(), b.InstallHint())
		}
	}

	if len(available) == 0 {
		return exitError(ExitNoBackends, "no extraction backends available")
	}

	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, "Attempting %d backends on %s\n", len(available), pdfPath)
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	summary, err := runner.Run(ctx, pdfPath, available, runner.Options{
		OutputDir: outputDir,
		Verbose:   verbose,
		Quiet:     quiet,
		Stderr:    os.Stderr,
	})
	if err != nil {
		return exitError(ExitFileIOError, "%v", err)
	}

	if summary.Succeeded() == 0 {
		return &exitErr{code: ExitAllFailed}
	}
	return nil
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string {
	return e.msg
}

func exitError(code int, format string, args ...interface{}) *exitErr {
	msg := fmt.Sprintf(format, args...)
	if msg != "" && !quiet {
		fmt.Fprintf(os.Stderr, "%s\n", msg)
	}
	return &exitErr{code: code, msg: msg}
}
