package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/inverted-tree/chunkIQ/internal/metrics"
	"github.com/inverted-tree/chunkIQ/pkg/chunker"
	"github.com/inverted-tree/chunkIQ/pkg/config"
	"github.com/inverted-tree/chunkIQ/pkg/fileio"
	"github.com/inverted-tree/chunkIQ/pkg/hasher"
	"github.com/inverted-tree/chunkIQ/pkg/trace"
)

var version = "dev"

var debugEnabled bool

func logDebug(format string, args ...interface{}) {
	if !debugEnabled {
		return
	}
	log.Printf("[DEBUG] "+format, args...)
}

func newTraceCommand() *cobra.Command {
	var (
		chunkers       string
		hashAlgo       string
		hashSalt       string
		jobs           int
		followSymlinks bool
		fileListing    bool
		metricsAddr    string
		showProgress   bool
	)

	cmd := &cobra.Command{
		Use:   "trace [flags] <path>...",
		Short: "Measure deduplication potential of a set of files",
		Long: `Trace partitions every input file under each requested chunking
scheme, hashes the chunks, and deduplicates the digests across the
whole run.

Chunker tags combine a scheme and a target size: "file" (whole file),
"sc1k".."sc64k" (fixed stride), "cdc1k".."cdc64k" (content-defined,
Rabin). Directories are walked recursively.

Example:
  chunkiq trace --chunkers=cdc4k,sc4k --hash=sha1 --jobs=4 ./corpus
  chunkiq trace --file-listing --chunkers=cdc8k inputs.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if debugEnabled {
				log.Println("[Debug] Verbose logging enabled")
			}
			trace.SetDebug(debugEnabled)

			cfg := config.LoadFromEnv()

			if cmd.Flags().Changed("chunkers") {
				cfg.Chunkers = chunkers
			}
			if cmd.Flags().Changed("hash") {
				cfg.HashAlgo = hashAlgo
			}
			if cmd.Flags().Changed("salt") {
				cfg.HashSalt = hashSalt
			}
			if cmd.Flags().Changed("jobs") {
				cfg.Jobs = jobs
			}
			if cmd.Flags().Changed("follow-symlinks") {
				cfg.FollowSymlinks = followSymlinks
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if cmd.Flags().Changed("progress") {
				cfg.Progress = showProgress
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			chunkerTypes, err := chunker.ParseTypes(cfg.Chunkers)
			if err != nil {
				return err
			}

			hashType, err := hasher.ParseType(cfg.HashAlgo)
			if err != nil {
				return err
			}

			var files []string
			if fileListing {
				files, err = fileio.CollectFromListings(args, cfg.FollowSymlinks)
			} else {
				files, err = fileio.CollectFiles(args, cfg.FollowSymlinks)
			}
			if err != nil {
				return err
			}
			logDebug("Collected %d input files", len(files))

			if cfg.MetricsAddr != "" {
				metrics.SetAgentInfo(version)
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				go func() {
					if err := metrics.Serve(ctx, cfg.MetricsAddr, log.Default()); err != nil {
						log.Printf("[Metrics] endpoint failed: %v", err)
					}
				}()
			}

			var salt []byte
			if cfg.HashSalt != "" {
				salt = []byte(cfg.HashSalt)
			}

			_, err = trace.Run(files, trace.Options{
				Chunkers: chunkerTypes,
				Hash:     hashType,
				Salt:     salt,
				Jobs:     cfg.Jobs,
				Progress: cfg.Progress,
			})
			return err
		},
	}

	cmd.Flags().StringVar(&chunkers, "chunkers", "cdc4k", "Comma-separated chunker types (file, sc1k..sc64k, cdc1k..cdc64k)")
	cmd.Flags().StringVar(&hashAlgo, "hash", "sha1", "Chunk digest algorithm (sha1, sha256 or md5)")
	cmd.Flags().StringVar(&hashSalt, "salt", "", "Optional salt prefixed to every chunk before hashing")
	cmd.Flags().IntVar(&jobs, "jobs", 1, "Number of parallel chunking workers")
	cmd.Flags().BoolVar(&followSymlinks, "follow-symlinks", false, "Resolve symlinked inputs instead of skipping them")
	cmd.Flags().BoolVar(&fileListing, "file-listing", false, "Treat the positional arguments as listing files naming one input path per line")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "Render an inline progress gauge while tasks drain")

	return cmd
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "chunkiq",
		Short:         "chunkIQ - Deduplication potential analysis for chunking policies",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "Enable verbose debug logging")
	rootCmd.AddCommand(newTraceCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("[Error] %v", err)
		os.Exit(1)
	}
}
