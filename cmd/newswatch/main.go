package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"newswatch/internal/collect"
	"newswatch/internal/config"
	"newswatch/internal/database"
	"newswatch/internal/fetch"
	"newswatch/internal/server"
	"newswatch/internal/sink"
	"newswatch/internal/trigger"
	"newswatch/internal/watch"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "newswatch",
	Short:   "Trigger-filtered news feed watcher",
	Long:    "newswatch polls RSS/Atom feeds and surfaces only the stories matching your trigger rules.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("newswatch", version)
	},
}

const starterTriggers = `// newswatch trigger rules
// Define named triggers, then ADD the ones that should surface stories.
//
// t1,TITLE,election
// t2,DESCRIPTION,stock market
// t3,AFTER,01 Jan 2026 00:00:00
// both,AND,t1,t3
// ADD,both,t2
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/newswatch/",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
		} else {
			if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			fmt.Printf("Created config: %s\n", target)
		}

		triggers := filepath.Join(config.ConfigDir(), "triggers.txt")
		if _, err := os.Stat(triggers); err == nil {
			fmt.Printf("Trigger rules already exist: %s\n", triggers)
		} else {
			if err := os.WriteFile(triggers, []byte(starterTriggers), 0o644); err != nil {
				return fmt.Errorf("writing trigger rules: %w", err)
			}
			fmt.Printf("Created trigger rules: %s\n", triggers)
		}

		fmt.Println("Edit them to configure feeds and rules, then run 'newswatch check'.")
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compile the trigger rule file and report the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		roots, err := loadTriggers()
		if err != nil {
			return err
		}
		fmt.Printf("Trigger rules OK: %d root trigger(s) from %s\n", len(roots), cfg.Triggers.Path)
		if len(roots) == 0 {
			fmt.Println("Warning: empty root list surfaces no stories. Add rules with an ADD line.")
		}
		return nil
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single poll cycle and print matches to the console",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, cleanup, err := buildWatcher(sink.NewConsole(os.Stdout))
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w.Cycle(ctx)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll feeds on the configured interval until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, cleanup, err := buildWatcher(nil)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Polling %d feed(s) every %s. Press Ctrl+C to stop.\n",
			len(cfg.Sources.Feeds), cfg.Interval())
		err = w.Run(ctx)
		if err != nil && ctx.Err() != nil {
			fmt.Println("\nStopped.")
			return nil
		}
		return err
	},
}

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web UI over the story archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("Starting server at http://localhost:%d\n", servePort)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, digestDir(), servePort)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

// buildWatcher assembles the poll loop from the loaded config. When
// override is non-nil it replaces the configured sinks (used by `once`).
// A bad trigger file fails here, before any polling starts.
func buildWatcher(override sink.Sink) (*watch.Watcher, func(), error) {
	roots, err := loadTriggers()
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	sources := make([]collect.Source, len(cfg.Sources.Feeds))
	for i, f := range cfg.Sources.Feeds {
		sources[i] = collect.Source{URL: f.URL, Name: f.Name}
	}
	collector := collect.New(sources, loc)

	cleanup := func() {}
	var out sink.Sink
	if override != nil {
		out = override
	} else {
		var sinks sink.Multi
		if cfg.Output.Console {
			sinks = append(sinks, sink.NewConsole(os.Stdout))
		}
		if cfg.Output.Digest {
			sinks = append(sinks, sink.NewDigest(digestDir()))
		}
		if cfg.Output.Archive {
			db, err := openDB()
			if err != nil {
				return nil, nil, err
			}
			cleanup = func() { db.Close() }
			sinks = append(sinks, sink.NewArchive(db))
		}
		out = sinks
	}

	var enricher watch.Enricher
	if cfg.Output.FetchContent {
		enricher = fetch.NewEnricher(15 * time.Second)
	}

	return watch.New(collector, roots, out, enricher, cfg.Interval()), cleanup, nil
}

func loadTriggers() ([]trigger.Trigger, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return trigger.Load(cfg.Triggers.Path, loc)
}

func digestDir() string {
	return filepath.Join(cfg.GetDataDir(), "digests")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "newswatch.db")
	return database.Open(dbPath)
}
