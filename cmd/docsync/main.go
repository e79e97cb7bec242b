package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/localmind-ai/file-uploader/internal/config"
	"github.com/localmind-ai/file-uploader/internal/localmind"
	"github.com/localmind-ai/file-uploader/internal/sync"
	"github.com/localmind-ai/file-uploader/internal/utils"
	"github.com/localmind-ai/file-uploader/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	defaultLogFile = filepath.Join(home, ".docsync", "docsync.log")
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var logLevel = new(slog.LevelVar)

var rootCmd = &cobra.Command{
	Use:     "docsync",
	Short:   "Mirror local document directories into LocalMind folders",
	Version: version.Detailed(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindConfig(cmd)
	},
	RunE: runSync,
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("base-url", "u", "", "Base URL of the LocalMind API")
	rootCmd.Flags().StringP("api-key", "k", "", "API key for authentication (or DOCSYNC_API_KEY)")
	rootCmd.Flags().StringP("mapping-file", "f", "", "JSON file with local directory to folder ID mappings")
	rootCmd.Flags().StringArrayP("mapping", "m", nil, "Map a local directory to a remote folder ID as LOCAL_PATH=FOLDER_ID (repeatable)")
	rootCmd.Flags().StringP("directory", "d", "", "Sync a single local directory")
	rootCmd.Flags().String("folder-id", "", "Remote folder ID for --directory")
	rootCmd.PersistentFlags().StringP("tracking-file", "t", config.DefaultTrackingPath, "Tracking state file")
	rootCmd.Flags().IntP("jobs", "j", 1, "Number of mappings to sync in parallel")
	rootCmd.Flags().Bool("verify-ssl", false, "Verify TLS certificates")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
}

func main() {
	// .env is the easiest place for an API key
	godotenv.Load()

	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	logLevel.Set(slog.LevelInfo)

	stdoutHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})

	handlers := []slog.Handler{stdoutHandler}

	if err := utils.EnsureParent(defaultLogFile); err == nil {
		if file, err := os.OpenFile(defaultLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{
				Level: logLevel,
			}))
		}
	}

	slog.SetDefault(slog.New(utils.NewMultiLogHandler(handlers...)))
}

func bindConfig(cmd *cobra.Command) error {
	for _, name := range []string{"base-url", "api-key", "mapping-file", "mapping", "directory", "folder-id", "jobs", "verify-ssl", "tracking-file", "verbose"} {
		if err := viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}

	viper.SetEnvPrefix("DOCSYNC")
	viper.AutomaticEnv()

	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	if viper.GetBool("verbose") {
		logLevel.Set(slog.LevelDebug)
	}

	mappings, err := resolveMappings()
	if err != nil {
		return err
	}

	cfg := &config.Config{
		BaseURL:      viper.GetString("base_url"),
		APIKey:       viper.GetString("api_key"),
		TrackingFile: viper.GetString("tracking_file"),
		VerifySSL:    viper.GetBool("verify_ssl"),
		Verbose:      viper.GetBool("verbose"),
		Jobs:         viper.GetInt("jobs"),
		Mappings:     mappings,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// config is valid, errors past this point are operational
	cmd.SilenceUsage = true
	showHeader()

	client, err := localmind.New(localmind.Options{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		VerifySSL: cfg.VerifySSL,
	})
	if err != nil {
		return err
	}

	store := sync.NewTrackingStore(cfg.TrackingFile)
	if err := store.Lock(); err != nil {
		return err
	}
	defer store.Unlock()

	if err := store.Load(); err != nil {
		return err
	}

	orchestrator := sync.NewOrchestrator(newRemoteStorage(client), store)
	results := orchestrator.RunAll(cmd.Context(), cfg.Mappings, cfg.Jobs)

	printSummary(results)

	if _, _, _, _, errCount := sync.Totals(results); errCount > 0 {
		return fmt.Errorf("completed with %d errors", errCount)
	}
	return nil
}

func resolveMappings() ([]config.Mapping, error) {
	mappingFile := viper.GetString("mapping_file")
	mappingFlags := viper.GetStringSlice("mapping")

	if mappingFile != "" && len(mappingFlags) > 0 {
		return nil, fmt.Errorf("--mapping-file and --mapping are mutually exclusive")
	}

	var mappings []config.Mapping
	if mappingFile != "" {
		loaded, err := config.LoadMappingFile(mappingFile)
		if err != nil {
			return nil, err
		}
		mappings = loaded
	}
	for _, value := range mappingFlags {
		m, err := config.ParseMappingFlag(value)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}

	dir := viper.GetString("directory")
	folderID := viper.GetString("folder_id")
	switch {
	case dir != "" && folderID != "":
		mappings = append(mappings, config.Mapping{LocalDir: dir, FolderID: folderID})
	case dir != "" || folderID != "":
		return nil, fmt.Errorf("--directory and --folder-id must be used together")
	}

	return mappings, nil
}

func printSummary(results []*sync.SyncResult) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%s %s: %v\n", red("✗"), r.LocalDir, r.Err)
			continue
		}
		line := fmt.Sprintf("%s: %d uploaded, %d replaced, %d deleted, %d skipped", r.LocalDir, r.Uploaded, r.Replaced, r.Deleted, r.Skipped)
		if len(r.Errors) > 0 {
			fmt.Printf("%s %s, %s\n", red("✗"), line, red(fmt.Sprintf("%d errors", len(r.Errors))))
		} else {
			fmt.Printf("%s %s\n", green("✔"), line)
		}
	}

	uploaded, replaced, deleted, skipped, errCount := sync.Totals(results)
	fmt.Printf("total: %d uploaded, %d replaced, %d deleted, %d skipped, %d errors\n",
		uploaded, replaced, deleted, skipped, errCount)
}

func showHeader() {
	color.New(color.FgHiCyan, color.Bold).Printf("%s %s\n", version.AppName, version.Short())
}
