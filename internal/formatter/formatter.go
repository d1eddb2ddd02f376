// package formatter renders top lists for export (PNG, CSV, Markdown, plain text) and builds share links
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/shared"
)

// List is a ranked list with the context it was fetched in.
type List struct {
	Tab       models.Tab       `json:"tab"`
	TimeRange models.TimeRange `json:"time_range"`
	Owner     string           `json:"owner,omitempty"`
	Items     []models.Item    `json:"items"`
	Generated time.Time        `json:"generated"`
}

// Title reads like "Top Tracks - Last 6 Months".
func (l List) Title() string {
	return fmt.Sprintf("%s - %s", l.Tab.Label(), l.TimeRange.Label())
}

// Filename returns soundslate-<tab>-<YYYY-MM-DD>.<ext>.
func (l List) Filename(ext string) string {
	return fmt.Sprintf("%s-%s-%s.%s", strings.ToLower(shared.AppName), l.Tab, l.Generated.Format(time.DateOnly), ext)
}

// Format is an export file type.
type Format string

const (
	FormatPNG      Format = "png"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

var Formats = []Format{FormatPNG, FormatCSV, FormatMarkdown, FormatText, FormatJSON}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatCSV, FormatMarkdown, FormatText, FormatJSON:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	case "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: format %q must be one of png, csv, md, txt, json", shared.ErrInvalidFlag, s)
	}
}

// ExportToCSV converts a List to CSV format with columns: Rank, ID, Title, Subtitle, Detail, Image
func ExportToCSV(list List) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "ID", "Title", "Subtitle", "Detail", "Image"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range list.Items {
		record := []string{
			strconv.Itoa(item.Rank),
			item.ID,
			item.Title,
			item.Subtitle,
			item.Detail,
			item.ImageURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a List to Markdown with a numbered entry per item
func ExportToMarkdown(list List) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", list.Title())
	if list.Owner != "" {
		fmt.Fprintf(&buf, "**Listener**: %s\n", list.Owner)
	}
	fmt.Fprintf(&buf, "**Items**: %d\n", len(list.Items))
	fmt.Fprintf(&buf, "**Generated**: %s\n\n", list.Generated.Format(time.DateOnly))

	buf.WriteString("## Ranking\n\n")
	for _, item := range list.Items {
		detailPart := ""
		if item.Detail != "" {
			detailPart = fmt.Sprintf(" (%s)", item.Detail)
		}
		fmt.Fprintf(&buf, "%d. **%s** - %s%s\n", item.Rank, item.Title, item.Subtitle, detailPart)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a List to plain text format
func ExportToText(list List) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", list.Title())
	if list.Owner != "" {
		fmt.Fprintf(&buf, "Listener: %s\n", list.Owner)
	}
	fmt.Fprintf(&buf, "Items: %d\n\n", len(list.Items))

	for _, item := range list.Items {
		fmt.Fprintf(&buf, "%d. %s - %s\n", item.Rank, item.Title, item.Subtitle)
	}

	return buf.Bytes(), nil
}

// Export renders list in format. layout only affects PNG output.
func Export(list List, format Format, layout Layout) ([]byte, error) {
	switch format {
	case FormatPNG:
		var buf bytes.Buffer
		if err := RenderPNG(&buf, list, layout); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatCSV:
		return ExportToCSV(list)
	case FormatMarkdown:
		return ExportToMarkdown(list)
	case FormatText:
		return ExportToText(list)
	case FormatJSON:
		return shared.MarshalJSON(list, true)
	default:
		return nil, fmt.Errorf("%w: format %q", shared.ErrInvalidFlag, format)
	}
}

// WriteExport renders list and writes it into dir under [List.Filename].
//
// An empty dir means the working directory. Returns the written path.
func WriteExport(list List, format Format, layout Layout, dir string) (string, error) {
	data, err := Export(list, format, layout)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	path := filepath.Join(dir, list.Filename(string(format)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return path, nil
}
