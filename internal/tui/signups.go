package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/fleetlens/internal/dashboard"
	"github.com/tinytelemetry/fleetlens/internal/model"
)

var signupColumnWidths = map[dashboard.SignupColumn]int{
	dashboard.ColName:  18,
	dashboard.ColEmail: 28,
	dashboard.ColPlan:  12,
	dashboard.ColDate:  12,
}

// signupsHeaderOffset is the row of the column headers inside the signups
// section: border, then title.
const signupsHeaderOffset = 2

// newSignupsTable builds the table with the shared styles.
func newSignupsTable() table.Model {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(ColorWhite).
		Background(ColorBlue)

	return table.New(
		table.WithColumns(signupColumns(dashboard.SignupSort{}, dashboard.ColName, false)),
		table.WithHeight(5),
		table.WithStyles(styles),
	)
}

// signupColumns returns the table header. The sorted column carries an
// arrow and the focused column is bracketed.
func signupColumns(sort dashboard.SignupSort, focused dashboard.SignupColumn, active bool) []table.Column {
	cols := make([]table.Column, 0, len(signupColumnWidths))
	for _, c := range dashboard.SignupColumns() {
		title := c.String()
		if sort.Active && sort.Column == c {
			if sort.Desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		if active && c == focused {
			title = "[" + title + "]"
		}
		cols = append(cols, table.Column{Title: title, Width: signupColumnWidths[c]})
	}
	return cols
}

func signupRows(signups []model.Signup) []table.Row {
	rows := make([]table.Row, len(signups))
	for i, s := range signups {
		rows[i] = table.Row{s.Name, s.Email, s.Plan, s.Date}
	}
	return rows
}

// signupColumnAt maps an x offset within the table to a column. Cells are
// padded by one space on each side.
func signupColumnAt(x int) (dashboard.SignupColumn, bool) {
	left := 0
	for _, c := range dashboard.SignupColumns() {
		right := left + signupColumnWidths[c] + 2
		if x >= left && x < right {
			return c, true
		}
		left = right
	}
	return 0, false
}
