// Package main provides the research agent CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ResearchAgent/internal/app"
	"ResearchAgent/internal/config"
	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/logging"
)

const consoleTopN = 10

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	envFile    string
}

type runOptions struct {
	days      int
	top       int
	topVideos int
	apiKey    string
	model     string
	noVideos  bool
}

// newRootCmd creates the root command for the research agent CLI.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "researchagent",
		Short:         "Find, rank and summarize recent autonomous driving research",
		Long:          "Research agent searches arXiv and YouTube, ranks the results and writes a summarized report.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(opts.envFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "configuration file (YAML); defaults to $RESEARCH_AGENT_CONFIG")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before configuration")

	rootCmd.AddCommand(newRunCmd(opts, &runOptions{}))
	rootCmd.AddCommand(newScheduleCmd(opts))

	return rootCmd
}

// newRunCmd creates the run subcommand; flag values land in opts.
func newRunCmd(root *rootOptions, opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one research pass and print the top results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if err := applyRunFlags(&cfg, cmd, opts); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := logging.New(cfg.Logging.Level)
			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			res, err := application.Run(ctx)
			if err != nil {
				logger.Error("research run failed", "error", err)
				return err
			}

			printTop(cmd.OutOrStdout(), res.Snapshot, consoleTopN)
			fmt.Fprintf(cmd.OutOrStdout(), "\nResults saved to %s\n", res.Dir)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.days, "days", 0, "number of days to look back")
	cmd.Flags().IntVar(&opts.top, "top", 0, "number of top papers to summarize")
	cmd.Flags().IntVar(&opts.topVideos, "top-videos", 0, "number of top videos to summarize")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "API key for the summarization model")
	cmd.Flags().StringVar(&opts.model, "model", "", "summarization model (gemini, kimi, gpt, service, template)")
	cmd.Flags().BoolVar(&opts.noVideos, "no-videos", false, "skip the YouTube search")

	return cmd
}

// newScheduleCmd creates the schedule subcommand.
func newScheduleCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on the configured cron expression",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := logging.New(cfg.Logging.Level)
			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Scheduling research runs at %q (%s)\n",
				cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
			return application.Schedule(ctx)
		},
	}
}

// loadEnvFile loads a dotenv file; a missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cfg *config.Config, cmd *cobra.Command, opts *runOptions) error {
	flags := cmd.Flags()
	if flags.Changed("days") {
		cfg.Research.DaysBack = opts.days
	}
	if flags.Changed("top") {
		cfg.Research.TopPapers = opts.top
	}
	if flags.Changed("top-videos") {
		cfg.Research.TopVideos = opts.topVideos
	}
	if flags.Changed("model") {
		cfg.Summarizer.Model = strings.ToLower(opts.model)
	}
	if flags.Changed("api-key") {
		cfg.Summarizer.OverrideAPIKey(opts.apiKey)
	}
	if opts.noVideos {
		cfg.Research.IncludeVideos = false
	}
	return cfg.Validate()
}

// printTop writes the first n candidates of each section.
func printTop(w io.Writer, snapshot domain.Snapshot, n int) {
	rule := strings.Repeat("=", 70)
	for _, section := range snapshot.Sections {
		if len(section.Candidates) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\nTOP RESEARCH %s\n%s\n", rule, strings.ToUpper(section.Kind.Plural()), rule)

		for i, c := range section.Candidates {
			if i >= n {
				break
			}
			fmt.Fprintf(w, "\n%d. %s\n", i+1, c.Title)
			fmt.Fprintf(w, "   Score: %.2f\n", c.Score)
			if c.Kind == domain.KindVideo {
				fmt.Fprintf(w, "   Channel: %s\n", c.Byline(0))
			} else {
				fmt.Fprintf(w, "   Authors: %s\n", c.Byline(3))
			}
			published := "Unknown"
			if c.HasPublishedAt() {
				published = c.PublishedAt.Format("2006-01-02")
			}
			fmt.Fprintf(w, "   Published: %s\n", published)
		}
	}
}
