package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/rapm/internal/config"
	"github.com/pavelanni/rapm/internal/handler"
	appI18n "github.com/pavelanni/rapm/internal/i18n"
	"github.com/pavelanni/rapm/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rapm",
		Short: "Timed two-phase progressive matrices assessment",
	}

	run := runCmd()
	root.AddCommand(run, simulateCmd(), exportCmd(), serveCmd(), initCmd())

	// Make "run" the default when no subcommand is given.
	root.RunE = run.RunE

	// Register run flags on root so bare `rapm --sequence ...` still works.
	root.Flags().AddFlagSet(run.Flags())

	return root
}

func addLogFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session archive over a read-only HTTP API",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "data/rapm.db", "SQLite archive path")
	f.StringP("lang", "l", "en", "Default message language (en, zh)")
	f.Bool("secure-cookies", true, "Set Secure flag on the login cookie")
	f.String("admin-user", "admin", "Operator account to seed")
	f.String("admin-password", "", "Operator password (or set RAPM_ADMIN_PASSWORD)")
	addLogFlags(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export archived sessions as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "data/rapm.db", "SQLite archive path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	return cmd
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample sequence file",
		RunE:  runInit,
	}
	f := cmd.Flags()
	f.StringP("output", "o", "sequence.yaml", "Path of the sequence file to create")
	f.Bool("force", false, "Overwrite an existing file")
	addLogFlags(cmd)
	return cmd
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogging installs the default slog logger writing to w.
func setupLogging(v *viper.Viper, w io.Writer) {
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(v.GetString("log-level"))}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(w, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("RAPM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("rapm")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/rapm")
	v.AddConfigPath("/etc/rapm")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v, os.Stderr)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := handler.SeedOperator(db, v.GetString("admin-user"), v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed operator: %w", err)
	}
	if n, err := db.CleanupExpiredTokens(); err != nil {
		slog.Warn("failed to clean up expired tokens", "error", err)
	} else if n > 0 {
		slog.Info("removed expired tokens", "count", n)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware())
	handler.New(db, v.GetBool("secure-cookies")).Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"lang", lang,
		"languages", appI18n.Languages(),
	)
	return http.ListenAndServe(addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v, os.Stderr)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := db.ExportAllSessions()
	if err != nil {
		return fmt.Errorf("export sessions: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	slog.Info("exported sessions", "count", len(export.Sessions), "output", outPath)
	return nil
}

func runInit(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v, os.Stderr)

	path := v.GetString("output")
	if _, err := os.Stat(path); err == nil && !v.GetBool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteSequence(path, config.DefaultSequence()); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// recordSequence stores the sequence path and content hash in the archive
// and warns when the file changed since the last run.
func recordSequence(db *store.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	hash := sha256sum(data)

	stored, err := db.GetMetadata(store.MetaSequenceHash)
	if err != nil {
		return fmt.Errorf("get sequence hash: %w", err)
	}
	if stored != "" && stored != hash {
		slog.Warn("sequence file changed since the last archived session", "path", path)
	}
	if err := db.SetMetadata(store.MetaSequence, path); err != nil {
		return fmt.Errorf("record sequence: %w", err)
	}
	if err := db.SetMetadata(store.MetaSequenceHash, hash); err != nil {
		return fmt.Errorf("record sequence hash: %w", err)
	}
	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
