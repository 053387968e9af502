package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/rapm/internal/assessment"
	"github.com/pavelanni/rapm/internal/config"
	appI18n "github.com/pavelanni/rapm/internal/i18n"
	"github.com/pavelanni/rapm/internal/model"
	"github.com/pavelanni/rapm/internal/nav"
	"github.com/pavelanni/rapm/internal/results"
	"github.com/pavelanni/rapm/internal/simulate"
	"github.com/pavelanni/rapm/internal/store"
	"github.com/pavelanni/rapm/internal/timing"
	"github.com/pavelanni/rapm/internal/tui"
)

// addSessionFlags registers the flags shared by run and simulate.
func addSessionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("sequence", "s", "sequence.yaml", "Sequence file (YAML or JSON)")
	f.StringP("output-dir", "o", "data", "Directory for results files")
	f.String("db", "data/rapm.db", "SQLite archive path")
	f.Bool("no-archive", false, "Do not record sessions in the archive")
	f.Bool("debug", false, "Use the short debug durations and timer thresholds")
	f.Int("max-visible-nav", nav.DefaultMaxVisible, "Item buttons shown in the navigation strip")
	addLogFlags(cmd)
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an interactive assessment session in the terminal",
		RunE:  runRun,
	}
	addSessionFlags(cmd)
	f := cmd.Flags()
	f.StringP("lang", "l", "en", "UI language (en, zh)")
	f.Int("option-columns", 4, "Answer options per row")
	f.Duration("instruction-delay", tui.DefaultInstructionDelay, "Delay before the continue button appears")
	f.Duration("frame-interval", tui.DefaultFrameInterval, "Frame loop interval")
	f.String("participant", "", "Pre-fill the participant ID")
	return cmd
}

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a scripted participant against a simulated clock",
		Long: `Replay a scripted participant against a simulated clock and write real
results. Without --script every item is answered with its keyed option.`,
		RunE: runSimulate,
	}
	addSessionFlags(cmd)
	f := cmd.Flags()
	f.String("script", "", "Script file (YAML)")
	f.String("participant", "sim", "Participant ID when no script is given")
	f.Duration("step", simulate.DefaultStep, "Simulated time per frame")
	f.Float64("think", 2, "Seconds per item for the generated script")
	f.String("write-script", "", "Write the effective script to this path")
	return cmd
}

func loadPhases(v *viper.Viper) (string, []model.Phase, error) {
	path := v.GetString("sequence")
	seq, err := config.ReadSequence(path)
	if err != nil {
		return "", nil, err
	}
	phases, err := seq.Phases(v.GetBool("debug"))
	if err != nil {
		return "", nil, fmt.Errorf("load phases: %w", err)
	}
	for _, ph := range phases {
		slog.Info("phase loaded", "phase", ph.Name, "set", ph.Set, "items", len(ph.Items),
			"duration", ph.Duration, "debug", v.GetBool("debug"))
	}
	return path, phases, nil
}

// openArchive opens the session archive unless disabled. A nil store means
// sessions are only written to the output directory.
func openArchive(v *viper.Viper, sequencePath string) (*store.Store, error) {
	if v.GetBool("no-archive") {
		return nil, nil
	}
	dbPath := v.GetString("db")
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}
	db, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := recordSequence(db, sequencePath); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.SetMetadata(store.MetaOutputDir, v.GetString("output-dir")); err != nil {
		db.Close()
		return nil, fmt.Errorf("record output dir: %w", err)
	}
	return db, nil
}

// archiveOrNil keeps a nil *store.Store from becoming a non-nil interface.
func archiveOrNil(db *store.Store) assessment.Archive {
	if db == nil {
		return nil
	}
	return db
}

func runRun(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v, os.Stderr)

	if !tui.IsTTY() {
		return tui.ErrNotTTY
	}

	outDir := v.GetString("output-dir")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	// The terminal belongs to the UI from here on.
	logFile, err := os.OpenFile(filepath.Join(outDir, "rapm.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	setupLogging(v, logFile)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	seqPath, phases, err := loadPhases(v)
	if err != nil {
		return err
	}

	db, err := openArchive(v, seqPath)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	delay := v.GetDuration("instruction-delay")
	if v.GetBool("debug") {
		delay = 0
	}

	m := tui.New(tui.Options{
		Phases:           phases,
		Navigator:        nav.New(v.GetInt("max-visible-nav")),
		Writer:           results.NewWriter(outDir),
		Archive:          archiveOrNil(db),
		FrameInterval:    v.GetDuration("frame-interval"),
		InstructionDelay: delay,
		OptionColumns:    v.GetInt("option-columns"),
		Participant:      model.Participant{ID: v.GetString("participant")},
		Context:          appI18n.WithLanguage(context.Background(), lang),
	})
	if err := tui.Run(m); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}

	if p := m.Paths(); p.Results != "" {
		fmt.Printf("Results: %s\n", p.Results)
		if p.Summary != "" {
			fmt.Printf("Summary: %s\n", p.Summary)
		}
		return nil
	}
	if err := m.Err(); err != nil {
		return fmt.Errorf("results not saved: %w", err)
	}
	if m.Aborted() {
		slog.Info("exited before the session started")
	}
	return nil
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v, os.Stderr)

	step := v.GetDuration("step")
	if step <= 0 {
		return fmt.Errorf("--step must be positive, got %s", step)
	}

	if err := appI18n.Init("en"); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	seqPath, phases, err := loadPhases(v)
	if err != nil {
		return err
	}

	var script *simulate.Script
	if path := v.GetString("script"); path != "" {
		script, err = simulate.ReadScript(path)
		if err != nil {
			return err
		}
	} else {
		p := model.Participant{ID: v.GetString("participant")}
		if err := config.ValidateParticipant(p); err != nil {
			return fmt.Errorf("invalid participant: %w", err)
		}
		script = simulate.DefaultScript(p, phases, v.GetFloat64("think"))
	}
	if path := v.GetString("write-script"); path != "" {
		if err := simulate.WriteScript(path, script); err != nil {
			return err
		}
		slog.Info("script written", "path", path)
	}

	db, err := openArchive(v, seqPath)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := simulate.NewRunner(timing.NewSteppingClock(time.Now(), step))
	sess := assessment.New(script.Participant, phases, nav.New(v.GetInt("max-visible-nav")), runner.Clock().Now())
	if err := runner.Run(ctx, sess, script); err != nil {
		return err
	}

	paths, err := sess.Save(results.NewWriter(v.GetString("output-dir")), archiveOrNil(db), runner.Clock().Now())
	if err != nil {
		return err
	}
	for _, line := range simulate.Summary(sess.Outcomes()) {
		fmt.Println(line)
	}
	fmt.Printf("Results: %s\n", paths.Results)
	if paths.Summary != "" {
		fmt.Printf("Summary: %s\n", paths.Summary)
	}
	return nil
}
