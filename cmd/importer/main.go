package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palemoky/poetry-importer/internal/config"
	apperrors "github.com/palemoky/poetry-importer/internal/errors"
	"github.com/palemoky/poetry-importer/internal/importer"
	"github.com/palemoky/poetry-importer/internal/logger"
	"github.com/palemoky/poetry-importer/internal/supabase"
)

const configGuide = `导入古诗词 CSV 数据到 Supabase.

配置步骤:
  1. 登录 Supabase 控制台, 进入 Settings → API
  2. 复制 Project URL 作为 SUPABASE_URL
  3. 复制 anon public key (或 service_role key) 作为 SUPABASE_KEY
  4. 将 .env.example 复制为 .env 并填写上述变量

也可使用 VITE_SUPABASE_URL 和 VITE_SUPABASE_ANON_KEY.`

type options struct {
	csvPath    string
	envPath    string
	configPath string
	workers    int
	convert    string
	progress   bool
	debug      bool
}

func main() {
	logger.Init(false)
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, apperrors.ErrMissingConfig) {
			fmt.Fprintln(os.Stderr, err.Error())
			logger.Sync()
			os.Exit(1)
		}
		logger.Fatal("Command execution failed", zap.Error(err))
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "importer",
		Short:         "Chinese poetry CSV importer for Supabase",
		Long:          configGuide,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.envPath, "env", "e", ".env", "Path to the .env file")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Optional YAML config file")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCmd.Flags().StringVarP(&opts.csvPath, "csv", "i", "", "CSV file to import (default 古诗词.csv)")
	rootCmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of concurrent workers (1 keeps file order)")
	rootCmd.Flags().StringVar(&opts.convert, "convert", "", "Chinese conversion applied to every field: t2s or s2t")
	rootCmd.Flags().BoolVar(&opts.progress, "progress", false, "Show a progress bar on stderr")

	rootCmd.AddCommand(newCheckCmd(opts))
	return rootCmd
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Test the Supabase connection and table access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			results := supabase.Check(ctx, newClient(cfg))
			if err := renderCheck(cmd.OutOrStdout(), results); err != nil {
				return err
			}

			for _, r := range results {
				if !r.OK() {
					return fmt.Errorf("connection check failed for %s", r.Target)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ 连接正常")
			return nil
		},
	}
}

// loadConfig reads the .env file, then the config file and environment,
// and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	loaded, err := config.LoadEnvFile(opts.envPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	if !loaded {
		logger.Warn("Env file not found, using process environment", zap.String("path", opts.envPath))
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("csv") {
		cfg.Import.CSVPath = opts.csvPath
	}
	if flags.Changed("workers") {
		cfg.Import.Workers = opts.workers
	}
	if flags.Changed("convert") {
		cfg.Import.Convert = opts.convert
	}
	if flags.Changed("progress") {
		cfg.Import.Progress = opts.progress
	}
	if flags.Changed("debug") {
		cfg.Log.Debug = opts.debug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Log.Debug {
		logger.Init(true)
	}

	logger.Info("Supabase endpoint",
		zap.String("url", cfg.Backend.URL),
		zap.String("key", logger.MaskKey(cfg.Backend.Key)),
	)
	return cfg, nil
}

func newClient(cfg *config.Config) *supabase.Client {
	return supabase.NewClient(cfg.Backend,
		supabase.WithRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	)
}

func runImport(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	importOpts := importer.Options{
		Workers: cfg.Import.Workers,
		Convert: cfg.Import.Convert,
	}
	if cfg.Import.Progress {
		importOpts.Progress = cmd.ErrOrStderr()
	}

	im := importer.New(newClient(cfg), importOpts)
	summary, err := im.ImportFile(ctx, cfg.Import.CSVPath)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", cfg.Import.CSVPath, err)
	}

	return summary.Print(cmd.OutOrStdout())
}

func renderCheck(w io.Writer, results []supabase.TargetStatus) error {
	table := tablewriter.NewWriter(w)
	table.Header("Target", "Status", "Rows", "Error")

	for _, r := range results {
		status := "✓"
		if !r.OK() {
			status = "✗"
		}
		if r.StatusCode != 0 {
			status += " " + strconv.Itoa(r.StatusCode)
		}

		rows := "-"
		if r.Rows >= 0 {
			rows = strconv.Itoa(r.Rows)
		}

		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}

		if err := table.Append(r.Target, status, rows, errText); err != nil {
			return err
		}
	}

	if err := table.Render(); err != nil {
		return err
	}

	for _, r := range results {
		if r.StatusCode == http.StatusUnauthorized || r.StatusCode == http.StatusForbidden {
			fmt.Fprintln(w, "提示: 请检查 SUPABASE_KEY 是否正确, 以及表的 RLS 策略是否允许访问")
			break
		}
	}
	return nil
}
