// Package main provides the CLI entrypoint for typist.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/verte-zerg/typist/internal/api"
	"github.com/verte-zerg/typist/internal/auth"
	"github.com/verte-zerg/typist/internal/config"
	"github.com/verte-zerg/typist/internal/generator"
	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/session"
	"github.com/verte-zerg/typist/internal/stats"
	"github.com/verte-zerg/typist/internal/store"
	"github.com/verte-zerg/typist/internal/wordlist"
)

const (
	defaultAddr       = "127.0.0.1:8000"
	defaultLang       = "en"
	defaultWords      = 25
	defaultCaps       = 0.0
	defaultPunct      = 0.0
	defaultWeakTop    = 8
	defaultWeakFactor = 2.0
	defaultWeakWindow = 20
	defaultStatsTop   = 8
	shutdownTimeout   = 10 * time.Second
)

const defaultPunctSet = ".,!?;:"

var (
	debug bool

	serveAddr        string
	serveDB          string
	serveJWTSecret   string
	serveTokenTTL    time.Duration
	serveWPMBasis    string
	practiceLang     string
	practiceWords    int
	practiceCaps     float64
	practicePunct    float64
	practicePunctSet string
	practiceFocus    bool
	practiceWeakTop  int
	practiceFactor   float64
	practiceWindow   int

	statsEmail  string
	statsWindow int
	statsTop    int
	statsDB     string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typist",
		Short:         "Typing practice service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging(debug)
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	return rootCmd
}

func setupLogging(debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveDB, "db", "", "SQLite database path (default: XDG data dir)")
	cmd.Flags().StringVar(&serveJWTSecret, "jwt-secret", "", "token signing secret (env "+config.EnvJWTSecret+")")
	cmd.Flags().DurationVar(&serveTokenTTL, "token-ttl", auth.DefaultTokenTTL, "access token lifetime")
	cmd.Flags().StringVar(&serveWPMBasis, "wpm-basis", string(model.WPMBasisInput), "speed basis: input or keystrokes")
	cmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "word list language for generated prompts")
	cmd.Flags().IntVar(&practiceWords, "words", defaultWords, "words per generated prompt")
	cmd.Flags().Float64Var(&practiceCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	cmd.Flags().Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	cmd.Flags().StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	cmd.Flags().BoolVar(&practiceFocus, "focus-weak", false, "bias generated prompts toward weak characters")
	cmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	cmd.Flags().Float64Var(&practiceFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	cmd.Flags().IntVar(&practiceWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak chars")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
	applyStringConfig(cmd, "db", &serveDB, fileCfg.Server.DB)
	applyStringConfig(cmd, "jwt-secret", &serveJWTSecret, fileCfg.Server.JWTSecret)
	if fileCfg.Server.TokenTTL != nil && !cmd.Flags().Changed("token-ttl") {
		serveTokenTTL = fileCfg.Server.TokenTTL.Duration
	}
	applyStringConfig(cmd, "wpm-basis", &serveWPMBasis, fileCfg.Metrics.WPMBasis)
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyFloatConfig(cmd, "caps", &practiceCaps, fileCfg.Practice.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, fileCfg.Practice.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, fileCfg.Practice.PunctSet)
	applyBoolConfig(cmd, "focus-weak", &practiceFocus, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWindow, fileCfg.Practice.WeakWindow)

	practice := model.Config{
		Lang:       practiceLang,
		Words:      practiceWords,
		CapsPct:    practiceCaps,
		PunctPct:   practicePunct,
		PunctSet:   practicePunctSet,
		FocusWeak:  practiceFocus,
		WeakTop:    practiceWeakTop,
		WeakFactor: practiceFactor,
		WeakWindow: practiceWindow,
	}
	if err := validateConfig(practice); err != nil {
		return err
	}
	basis := model.WPMBasis(serveWPMBasis)
	if !basis.Valid() {
		return fmt.Errorf("--wpm-basis must be %q or %q", model.WPMBasisInput, model.WPMBasisKeystrokes)
	}
	tokens, err := auth.NewTokens(serveJWTSecret, serveTokenTTL)
	if err != nil {
		return fmt.Errorf("--jwt-secret or %s is required: %w", config.EnvJWTSecret, err)
	}

	st, err := openStore(serveDB)
	if err != nil {
		return err
	}
	defer closeStore(st)

	wordDir := config.DefaultWordListDir()
	sessions := session.NewService(st, generator.New(), session.Options{
		Basis:    basis,
		Practice: practice,
		Words: func(lang string) ([]string, error) {
			return wordlist.Load(wordDir, lang)
		},
	})
	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           api.NewServer(auth.NewAccounts(st), tokens, sessions, st, log.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", serveAddr).Str("wpm_basis", string(basis)).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a user's typing profile",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsEmail, "email", "", "account email")
	cmd.Flags().IntVar(&statsWindow, "window", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsTop, "top", defaultStatsTop, "rows per table")
	cmd.Flags().StringVar(&statsDB, "db", "", "SQLite database path (default: XDG data dir)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore(statsDB)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	user, err := st.GetUserByEmail(ctx, auth.NormalizeEmail(statsEmail))
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("no account for %s", statsEmail)
	}
	report, err := stats.BuildReport(ctx, st, user.ID, statsWindow)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	out := cmd.OutOrStdout()
	opts := stats.RenderOptions{Top: statsTop}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		opts.Color = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			opts.Width = w
		}
	}
	return stats.Render(out, report, opts)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o600); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	c := exec.Command(parts[0], append(parts[1:], path)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List available word list languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	langs, err := wordlist.Available(config.DefaultWordListDir())
	if err != nil {
		return err
	}
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func openStore(path string) (*store.Store, error) {
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close db")
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typist configuration
# Uncomment a value to enable it. CLI flags override config values.

[server]
# addr = %q
# db = "/path/to/typist.db"
# jwt-secret = "change-me"   # %s overrides this
# token-ttl = "%s"

[metrics]
# wpm-basis = %q             # "input" or "keystrokes"

[practice]
# lang = %q
# words = %d
# caps = %.2f
# punct = %.2f
# punct-set = %q
# focus-weak = false
# weak-top = %d
# weak-factor = %.1f
# weak-window = %d
`,
		defaultAddr,
		config.EnvJWTSecret,
		auth.DefaultTokenTTL,
		model.WPMBasisInput,
		defaultLang,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}
