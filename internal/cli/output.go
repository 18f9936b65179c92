package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pratik-mahalle/tasknest/pkg/client"
	"gopkg.in/yaml.v3"
)

// Table renders data as a formatted table.
type Table struct {
	headers []string
	rows    [][]string
	writer  io.Writer
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		writer:  os.Stdout,
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cols ...string) {
	t.rows = append(t.rows, cols)
}

// Render writes the table.
func (t *Table) Render() {
	w := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(t.headers, "\t"))

	sep := make([]string, len(t.headers))
	for i, h := range t.headers {
		sep[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(w, strings.Join(sep, "\t"))

	for _, row := range t.rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	w.Flush()
}

// structured reports whether output should be machine readable
func structured() bool {
	f := getOutputFormat()
	return f == "json" || f == "yaml"
}

// printOutput prints data as JSON or YAML.
func printOutput(w io.Writer, data interface{}) error {
	if getOutputFormat() == "yaml" {
		return printYAML(w, data)
	}
	return printJSON(w, data)
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printYAML(w io.Writer, data interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(data)
}

// formatLimit renders a limit, showing unlimited pools as such
func formatLimit(n int) string {
	if n < 0 {
		return "unlimited"
	}
	return strconv.Itoa(n)
}

// formatUsage renders used/limit
func formatUsage(used, limit int) string {
	return fmt.Sprintf("%d/%s", used, formatLimit(limit))
}

// formatTime renders t in local time, or "-" when unset
func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// formatTier marks the active paid plans.
func formatTier(tier string, active bool) string {
	switch {
	case tier == "free":
		return tier
	case active:
		return "[+] " + tier
	default:
		return "[-] " + tier + " (expired)"
	}
}

// explainError adds upgrade hints to quota errors and lists rejected fields
func explainError(err error) error {
	apiErr, ok := client.AsAPIError(err)
	if !ok {
		return err
	}
	if summary := apiErr.FieldSummary(); summary != "" {
		return fmt.Errorf("%s (%s)", apiErr.Message, summary)
	}
	if !apiErr.IsQuotaExceeded() {
		return err
	}
	if tier := apiErr.RequiredTier(); tier != "" {
		return fmt.Errorf("%s Run 'tasknest checkout %s' to upgrade", apiErr.Message, tier)
	}
	return fmt.Errorf("%s", apiErr.Message)
}
