package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pavelanni/rapm/internal/model"
)

// TimestampLayout keys result filenames by session start.
const TimestampLayout = "20060102_150405"

// Header is the first line of the per-item CSV record.
var Header = []string{
	"participant_id", "phase", "item_id", "answer", "correct", "is_correct", "response_time_seconds",
}

// Paths are the files written by one Save.
type Paths struct {
	Results string
	Summary string
}

// Writer persists session results into a fixed directory.
type Writer struct {
	outputDir string
}

// NewWriter returns a writer for outputDir. The directory is created on
// first save.
func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// OutputDir returns the target directory.
func (w *Writer) OutputDir() string { return w.outputDir }

// Save writes the CSV record and the JSON summary for res. A failure to
// write the CSV is returned; a failure to write the summary is logged and
// Paths.Summary is left empty.
func (w *Writer) Save(res model.SessionResult) (Paths, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return Paths{}, fmt.Errorf("creating output directory: %w", err)
	}

	ts := res.StartedAt.Format(TimestampLayout)
	paths := Paths{
		Results: filepath.Join(w.outputDir, "raven_results_"+ts+".csv"),
		Summary: filepath.Join(w.outputDir, "raven_session_"+ts+".json"),
	}

	if err := writeCSV(paths.Results, res.Rows); err != nil {
		return Paths{}, fmt.Errorf("writing results: %w", err)
	}

	if err := writeSummary(paths.Summary, res.Summary); err != nil {
		slog.Warn("summary not written", "path", paths.Summary, "error", err)
		paths.Summary = ""
	}
	slog.Info("results saved", "results", paths.Results, "summary", paths.Summary,
		"rows", len(res.Rows))
	return paths, nil
}

func writeCSV(path string, rows []model.ResponseRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteRows(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteRows writes the header and rows as CSV to out.
func WriteRows(out io.Writer, rows []model.ResponseRow) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(Record(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Record renders one row as CSV fields. Absent values are empty cells.
func Record(r model.ResponseRow) []string {
	rec := []string{r.ParticipantID, r.Phase, r.ItemID, "", "", "", ""}
	if r.Answer != nil {
		rec[3] = strconv.Itoa(*r.Answer)
	}
	if r.Correct != nil {
		rec[4] = strconv.Itoa(*r.Correct)
	}
	if r.IsCorrect != nil {
		rec[5] = strconv.FormatBool(*r.IsCorrect)
	}
	if r.ResponseTime != nil {
		rec[6] = strconv.FormatFloat(*r.ResponseTime, 'f', 3, 64)
	}
	return rec
}

func writeSummary(path string, s model.Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
