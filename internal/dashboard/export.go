package dashboard

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ExportFileName is the name of the file written by WriteExportFile.
const ExportFileName = "analytics-export.csv"

// ExportCSV writes the signups table and the full sessions series as one
// two-section CSV document. Signup fields are always quoted.
func (d *Dashboard) ExportCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	lines := []string{"Recent signups", "Name,Email,Plan,Date"}
	for _, s := range d.Signups() {
		lines = append(lines, quoteRow(s.Name, s.Email, s.Plan, s.Date))
	}

	lines = append(lines, "", "Sessions")
	sessions := d.AllSessions()
	lines = append(lines, strings.Join(append([]string{"Label"}, sessions.Labels...), ","))
	for _, ds := range sessions.Datasets {
		row := make([]string, 0, len(ds.Data)+1)
		row = append(row, ds.Label)
		for _, v := range ds.Data {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		lines = append(lines, strings.Join(row, ","))
	}

	if _, err := bw.WriteString(strings.Join(lines, "\n")); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteExportFile writes ExportCSV to ExportFileName under dir and returns
// the file path.
func (d *Dashboard) WriteExportFile(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, ExportFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := d.ExportCSV(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}

func quoteRow(fields ...string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
