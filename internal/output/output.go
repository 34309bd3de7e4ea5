// Package output renders ranked results for terminals and pipes.
// The human format is for interactive use; json and jsonl are for
// tooling. Format auto-detection checks whether stdout is a TTY.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"

	"github.com/codemap-dev/codemap/pkg/engine"
)

// Format selects a renderer.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatAuto  Format = "auto"
)

// Detect resolves FormatAuto: a TTY gets the human format, a pipe gets
// jsonl. Other formats pass through.
func Detect(f Format, out *os.File) Format {
	if f != FormatAuto {
		return f
	}
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		return FormatHuman
	}
	return FormatJSONL
}

// resultRecord is the stable JSON shape for one ranked file.
type resultRecord struct {
	Path     string             `json:"path"`
	Score    float64            `json:"score"`
	Size     int64              `json:"size"`
	Tokens   int64              `json:"tokens"`
	Language string             `json:"language,omitempty"`
	Role     string             `json:"role,omitempty"`
	Signals  map[string]float64 `json:"signals,omitempty"`
	Ranks    map[string]int     `json:"ranks,omitempty"`
}

// Render writes the ranked files in the given format.
func Render(w io.Writer, format Format, files []engine.ScoredFile, explain bool) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, files, explain)
	case FormatJSONL:
		return renderJSONL(w, files, explain)
	default:
		return renderHuman(w, files, explain)
	}
}

func toRecord(f engine.ScoredFile, explain bool) resultRecord {
	rec := resultRecord{
		Path:     f.Path,
		Score:    f.Score,
		Size:     f.Size,
		Tokens:   f.Tokens,
		Language: f.Language,
		Role:     f.Role,
	}
	if explain {
		rec.Signals = f.Signals
		rec.Ranks = f.Ranks
	}
	return rec
}

func renderJSON(w io.Writer, files []engine.ScoredFile, explain bool) error {
	records := make([]resultRecord, 0, len(files))
	for _, f := range files {
		records = append(records, toRecord(f, explain))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func renderJSONL(w io.Writer, files []engine.ScoredFile, explain bool) error {
	enc := json.NewEncoder(w)
	for _, f := range files {
		if err := enc.Encode(toRecord(f, explain)); err != nil {
			return err
		}
	}
	return nil
}

func renderHuman(w io.Writer, files []engine.ScoredFile, explain bool) error {
	if len(files) == 0 {
		_, err := fmt.Fprintln(w, "no results")
		return err
	}
	for i, f := range files {
		if _, err := fmt.Fprintf(w, "%3d. %-50s %8.4f  %8s  %s/%s\n", i+1, f.Path, f.Score, humanSize(f.Size), f.Language, f.Role); err != nil {
			return err
		}
		if explain && len(f.Ranks) > 0 {
			if _, err := fmt.Fprintf(w, "     %s\n", formatSignals(f.Signals, f.Ranks)); err != nil {
				return err
			}
		}
	}
	return nil
}

// formatSignals renders each signal's raw score and rank in a stable
// order.
func formatSignals(signals map[string]float64, ranks map[string]int) string {
	names := make([]string, 0, len(ranks))
	for name := range ranks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for i, name := range names {
		if i > 0 {
			out += "  "
		}
		out += fmt.Sprintf("%s=%.4f(#%d)", name, signals[name], ranks[name])
	}
	return out
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%dB", n)
}
