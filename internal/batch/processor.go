package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"codeberg.org/snonux/gemtrans/internal/controller"
	"codeberg.org/snonux/gemtrans/internal/languages"
	"codeberg.org/snonux/gemtrans/internal/translation"
)

// ErrNoCredential is returned by Run when the controller has no API key
var ErrNoCredential = errors.New("no API key configured")

// Entry is one text to translate, with an optional language override
type Entry struct {
	Text string
	// SourceLang and TargetLang are empty unless the line carried a
	// "src>tgt:" prefix
	SourceLang string
	TargetLang string
}

// ReadBatchFile reads texts from a file, one per line.
// Supports formats:
// - Plain text: "Good morning" (uses the session's language pair)
// - With override: "en>de: Good morning" (codes must be in the catalog)
// Lines with an unknown code in the prefix are kept verbatim as text.
func ReadBatchFile(filename string) ([]Entry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return ParseBatch(string(content)), nil
}

// ParseBatch parses batch content, see ReadBatchFile
func ParseBatch(content string) []Entry {
	var entries []Entry

	for _, line := range strings.Split(strings.ReplaceAll(content, "\r", ""), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entries = append(entries, parseLine(line))
	}

	return entries
}

func parseLine(line string) Entry {
	prefix, text, ok := strings.Cut(line, ":")
	if !ok {
		return Entry{Text: line}
	}
	src, tgt, ok := strings.Cut(prefix, ">")
	if !ok {
		return Entry{Text: line}
	}

	src, tgt = strings.TrimSpace(src), strings.TrimSpace(tgt)
	text = strings.TrimSpace(text)
	if languages.Validate(src) != nil || languages.Validate(tgt) != nil || text == "" {
		return Entry{Text: line}
	}

	return Entry{Text: text, SourceLang: src, TargetLang: tgt}
}

// Result is the outcome of one entry
type Result struct {
	Entry       Entry
	Translation string
	Err         error
}

// Summary describes a finished batch run
type Summary struct {
	Results   []Result
	Succeeded int
	Failed    int
}

// Run translates entries one after another through ctrl, writing a line
// per entry to out. A failed entry is recorded and the run continues.
// Entries without an override use the language pair ctrl had when Run
// started.
func Run(ctx context.Context, ctrl *controller.Controller, entries []Entry, out io.Writer) (Summary, error) {
	var summary Summary

	initial := ctrl.State()
	if !initial.HasCredential() {
		return summary, ErrNoCredential
	}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		src, tgt := initial.SourceLang, initial.TargetLang
		if entry.SourceLang != "" {
			src, tgt = entry.SourceLang, entry.TargetLang
		}
		if err := ctrl.SetSourceLanguage(src); err != nil {
			return summary, err
		}
		if err := ctrl.SetTargetLanguage(tgt); err != nil {
			return summary, err
		}
		ctrl.SetSourceText(entry.Text)

		fmt.Fprintf(out, "[%d/%d] %s -> %s\n", i+1, len(entries), languages.Name(src), languages.Name(tgt))

		task := ctrl.Translate(ctx)
		if task == nil {
			return summary, fmt.Errorf("controller refused to translate entry %d", i+1)
		}
		if err := task.Wait(ctx); err != nil {
			return summary, err
		}

		result := Result{Entry: entry}
		if err := task.Err(); err != nil {
			result.Err = err
			summary.Failed++
			fmt.Fprintf(out, "%s = ERROR: %s\n", entry.Text, translation.UserMessage(err))
		} else {
			result.Translation = ctrl.State().TranslatedText
			summary.Succeeded++
			fmt.Fprintf(out, "%s = %s\n", entry.Text, result.Translation)
		}
		summary.Results = append(summary.Results, result)
	}

	return summary, nil
}

// SaveResults writes the successful translations to path as
// "source = translation" lines
func SaveResults(path string, results []Result) error {
	var b strings.Builder
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		fmt.Fprintf(&b, "%s = %s\n", r.Entry.Text, r.Translation)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}
