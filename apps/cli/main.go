package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"

	"github.com/acm19/yasuo/apps/cli/completion"
	"github.com/acm19/yasuo/internal/compress"
	"github.com/acm19/yasuo/internal/config"
	"github.com/acm19/yasuo/internal/logger"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// displayNameLength is the column width used for file names in reports.
const displayNameLength = 28

var rootCmd = &cobra.Command{
	Use:     "yasuo",
	Short:   "Batch image compressor",
	Long:    `Yasuo resizes and re-encodes images in bulk, writing "_compressed" copies locally and optionally to S3.`,
	Version: version,
}

var compressCmd = &cobra.Command{
	Use:   "compress PATH...",
	Short: "Compress images",
	Long: `Compresses every image found in the given files and directories, one at a time.
Non-image files are ignored and images with the same name and size are only processed once.
Outputs are named NAME_compressed.EXT.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runCompress,
}

var (
	configPath string
	rate       int
)

func init() {
	defaults := config.Default()

	flags := compressCmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML config file")
	flags.IntVarP(&rate, "rate", "r", int(math.Round(defaults.Quality*100)), "Compression quality (0-100), ignored for png")
	flags.IntP("max-width", "w", defaults.MaxWidth, "Maximum output width in pixels")
	flags.StringP("format", "f", defaults.Format, "Output format (jpeg, png, webp)")
	flags.StringP("output-dir", "o", defaults.OutputDir, "Directory for compressed files")
	flags.String("bucket", "", "Also upload compressed files to this S3 bucket")
	flags.String("prefix", "", "S3 key prefix")
	flags.String("log-file", "", "Also write logs to this file (rotated)")
	flags.Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(compressCmd)

	rootCmd.AddCommand(completion.NewInstallCmd(rootCmd))
	rootCmd.AddCommand(completion.NewUninstallCmd(rootCmd))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCompress(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	closeLog := logger.Setup(logger.Options{Debug: cfg.Debug, File: cfg.LogFile})
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := compressPaths(ctx, cfg, args, cmd.OutOrStdout())
	if err != nil {
		logger.Error("Compression failed", "error", err)
		closeLog()
		os.Exit(1)
	}

	if result.Failed() > 0 {
		logger.Error("Some files could not be compressed", "failed", result.Failed(), "succeeded", result.Succeeded())
		closeLog()
		os.Exit(1)
	}
	logger.Info("Compression completed successfully", "files", result.Succeeded())
}

// loadConfig merges the config file, environment and flags, then applies --rate.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("rate") {
		quality, err := qualityFromRate(rate)
		if err != nil {
			return nil, err
		}
		cfg.Quality = quality
	}
	return cfg, nil
}

// qualityFromRate converts a 0-100 rate into a [0,1] quality fraction.
func qualityFromRate(rate int) (float64, error) {
	if rate < 0 || rate > 100 {
		return 0, fmt.Errorf("invalid rate (must be 0-100): %d", rate)
	}
	return float64(rate) / 100, nil
}

// compressPaths loads every image under paths, runs one batch and exports the results.
func compressPaths(ctx context.Context, cfg *config.Config, paths []string, out io.Writer) (*compress.Result, error) {
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}

	inputs, err := compress.NewLoader().Load(paths)
	if err != nil {
		return nil, err
	}

	queue := compress.NewQueue()
	for _, in := range inputs {
		if !queue.Add(in) {
			logger.Debug("Skipping duplicate image", "file", in.Name, "bytes", in.Size)
		}
	}
	if !queue.HasPending() {
		return nil, fmt.Errorf("no images found in %v", paths)
	}

	exporters := []compress.Exporter{compress.NewDirExporter(cfg.OutputDir)}
	if cfg.Bucket != "" {
		s3Exporter, err := compress.NewS3Exporter(ctx, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, s3Exporter)
	}

	result, err := compress.NewBatchCompressor(compress.NewImageCodec(), nil).RunAll(ctx, queue, settings)
	if err != nil {
		return nil, err
	}
	printReport(out, result)

	if !queue.HasCompressed() {
		return result, nil
	}
	return result, exportResults(ctx, exporters, queue)
}

// exportResults saves whatever the batch completed. An interrupted run still
// exports the items that finished before the interrupt.
func exportResults(ctx context.Context, exporters []compress.Exporter, queue *compress.Queue) error {
	if ctx.Err() != nil {
		logger.Warn("Interrupted, exporting completed results", "files", len(queue.Compressed()))
		ctx = context.WithoutCancel(ctx)
	}
	for _, exporter := range exporters {
		written, err := compress.ExportAll(ctx, exporter, queue)
		if err != nil {
			return err
		}
		for _, location := range written {
			logger.Info("Saved compressed image", "location", location)
		}
	}
	return nil
}

func printReport(w io.Writer, result *compress.Result) {
	for _, o := range result.Outcomes {
		name := compress.TruncateFileName(o.Name, displayNameLength)
		if !o.OK() {
			fmt.Fprintf(w, "%-*s  failed: %v\n", displayNameLength, name, o.Err)
			continue
		}
		fmt.Fprintf(w, "%-*s  %s -> %s (saved %d%%)\n", displayNameLength, name,
			compress.FormatFileSize(o.OriginalSize), compress.FormatFileSize(o.Compressed.Size), o.Ratio())
	}

	original, compressed := result.Bytes()
	fmt.Fprintf(w, "%d compressed, %d failed, %s -> %s\n", result.Succeeded(), result.Failed(),
		compress.FormatFileSize(original), compress.FormatFileSize(compressed))
}
