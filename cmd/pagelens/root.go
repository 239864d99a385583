package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/pagelens/internal/config"
	"github.com/csheth/pagelens/internal/explainclient"
	"github.com/csheth/pagelens/internal/llm"
	"github.com/csheth/pagelens/internal/logging"
	"github.com/csheth/pagelens/internal/tui"
)

type globalFlags struct {
	configPath string
	envFile    string
	logFile    string
	debug      bool
}

type readerFlags struct {
	server      string
	model       string
	columns     int
	noAltScreen bool
}

func newRootCmd() *cobra.Command {
	global := &globalFlags{}
	flags := &readerFlags{}
	cmd := &cobra.Command{
		Use:   "pagelens [pdf-or-url]",
		Short: "Read a PDF and get selected passages explained",
		Long: `pagelens opens a local PDF or an http(s) URL in the terminal. Select text
with the mouse (or press v for line selection) and an explanation appears
next to it.

Explanations come from the upstream configured in config.yaml, or from a
running "pagelens serve" backend when --server is set.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			if err := applyReaderFlags(cmd, cfg, flags); err != nil {
				return err
			}
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			return runReader(cfg, input)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&global.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.StringVar(&global.envFile, "env-file", "", "dotenv file to load (default .env)")
	pf.StringVar(&global.logFile, "log-file", "", "log file (default "+config.DefaultLogFile()+")")
	pf.BoolVar(&global.debug, "debug", false, "enable debug logging")

	f := cmd.Flags()
	f.StringVar(&flags.server, "server", "", "explanation backend URL, e.g. http://localhost:8787")
	f.StringVar(&flags.model, "model", "", "starting model tier: fast, quality or reasoning")
	f.IntVar(&flags.columns, "columns", 0, "reading column width at 100% zoom")
	f.BoolVar(&flags.noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")

	cmd.AddCommand(newServeCmd(global))
	cmd.AddCommand(newConfigCmd(global))
	return cmd
}

func loadConfig(cmd *cobra.Command, global *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(config.Options{Path: global.configPath, EnvFile: global.envFile})
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = global.logFile
	}
	if cmd.Flags().Changed("debug") {
		cfg.Log.Debug = global.debug
	}
	return cfg, nil
}

// applyReaderFlags overrides cfg with explicitly set flags and validates the
// result the same way a config file is validated.
func applyReaderFlags(cmd *cobra.Command, cfg *config.Config, flags *readerFlags) error {
	if cmd.Flags().Changed("server") {
		cfg.Client.Server = flags.server
	}
	if cmd.Flags().Changed("model") {
		cfg.Client.Model = strings.ToLower(strings.TrimSpace(flags.model))
	}
	if cmd.Flags().Changed("columns") && flags.columns > 0 {
		cfg.Client.ReadingColumns = flags.columns
	}
	if flags.noAltScreen {
		cfg.Client.AltScreen = false
	}
	return cfg.Validate()
}

func runReader(cfg *config.Config, input string) error {
	logger := logging.New(logging.Options{File: cfg.Log.File, Debug: cfg.Log.Debug})
	defer func() { _ = logger.Sync() }()

	explainer, backend, err := buildExplainer(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("reader starting", zap.String("backend", backend), zap.String("config", cfg.Source))

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if cfg.Client.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(tui.Config{
		Explainer:      explainer,
		Model:          cfg.ModelChoice(),
		ReadingColumns: cfg.Client.ReadingColumns,
		InitialInput:   input,
		Backend:        backend,
		Logger:         logger,
	}), opts...)

	final, runErr := program.Run()
	if closer, ok := final.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("releasing document", zap.Error(err))
		}
	}
	if runErr != nil {
		return fmt.Errorf("program error: %w", runErr)
	}
	return nil
}

// buildExplainer prefers a remote backend and falls back to calling the
// upstream directly.
func buildExplainer(cfg *config.Config, logger *zap.Logger) (tui.Explainer, string, error) {
	httpClient := &http.Client{Timeout: cfg.Upstream.Timeout}
	if cfg.Client.Server != "" {
		label := cfg.Client.Server
		if u, err := url.Parse(cfg.Client.Server); err == nil && u.Host != "" {
			label = u.Host
		}
		return explainclient.New(cfg.Client.Server, httpClient, logger), label, nil
	}
	llmCfg := cfg.LLM()
	llmCfg.HTTPClient = httpClient
	provider, err := llm.New(llmCfg)
	if err != nil {
		return nil, "", err
	}
	return llm.NewExplainer(provider, logger), provider.Name(), nil
}
