package main

import (
	"fmt"
	"io"
	"os"

	"pdf_compressor/config"
	"pdf_compressor/logging"
	"pdf_compressor/pdf"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pdf_compressor",
	Short: "Shrink PDF files",
	Long: `pdf_compressor shrinks PDF files with one of two strategies: an external
optimizer run with a quality preset (Ghostscript screen/printer), or a
rebuild of every page with its images re-encoded as JPEG.

Tiers:
  extreme   optimizer with the screen preset
  less      JPEG recompression at quality 85 when the file has images,
            otherwise the optimizer with the printer preset`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, compressCmd, inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads .env, the config file and the environment, and builds
// the logger
func loadConfig(logOutput io.Writer) (*config.Config, zerolog.Logger, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logOutput,
	})
	return cfg, logger, nil
}

// newOptimizer builds the configured optimizer backend
func newOptimizer(cfg *config.Config, logger zerolog.Logger) pdf.Optimizer {
	if cfg.Optimizer.Backend == config.BackendPdfcpu {
		return pdf.Pdfcpu{Logger: logger}
	}
	gs := pdf.NewGhostscript(cfg.Optimizer.GhostscriptPath, cfg.Optimizer.Timeout, logger)
	if cfg.Optimizer.CompatibilityLevel != "" {
		gs.CompatibilityLevel = cfg.Optimizer.CompatibilityLevel
	}
	return gs
}

// formatBytes renders a size for humans
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit && n > -unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit || m <= -unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
