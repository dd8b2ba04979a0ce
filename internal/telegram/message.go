package telegram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CrushDope/Telegram-Assistant/internal/classify"
	"github.com/CrushDope/Telegram-Assistant/internal/ingest"
)

// formatResult renders the summary reply for one placed attachment.
func formatResult(res ingest.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Saved %s\n", res.Title)
	fmt.Fprintf(&sb, "category: %s\n", res.Category)
	fmt.Fprintf(&sb, "file: %s\n", res.FileName)
	fmt.Fprintf(&sb, "directory: %s", res.Directory)
	if res.Intro != "" {
		fmt.Fprintf(&sb, "\n\n%s", res.Intro)
	}
	return sb.String()
}

// formatBatch renders the consolidated summary for one album flush.
func formatBatch(summary ingest.BatchResult) string {
	if summary.AllFailed() {
		return fmt.Sprintf("Failed to save album %s: all %d items failed", summary.Title, len(summary.Failed))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Saved album %s (%d items", summary.Title, len(summary.Items))
	if len(summary.Failed) > 0 {
		fmt.Fprintf(&sb, ", %d failed", len(summary.Failed))
	}
	sb.WriteString(")\n")

	categories := make([]string, 0, len(summary.Counts))
	for category := range summary.Counts {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Fprintf(&sb, "%s: %d\n", category, summary.Counts[classify.Category(category)])
	}
	fmt.Fprintf(&sb, "directory: %s", summary.Directory)
	return sb.String()
}
