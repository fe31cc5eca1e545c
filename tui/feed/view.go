package feed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rinser/feedtail/domain"
	"github.com/rinser/feedtail/tui/common"
)

const (
	authorWidth  = 18
	atWidth      = 26
	minTextWidth = 10

	// Title (2), blank (1), table frame and header (4), loading/error (2), status bar (2), help (1).
	reservedLines = 12
)

var headers = []string{"Author", "Text", "At"}

// View renders the feed as a string.
func (m Model) View() string {
	if m.state == StateRejected {
		return m.renderNotice()
	}

	var b strings.Builder

	title := common.AppTitleStyle.Render("feedtail")
	origin := common.PageStyle.Render(fmt.Sprintf("user %s @ %s", m.page.UserID, m.page.Hostname))
	b.WriteString(title + origin + "\n\n")

	b.WriteString(m.renderTable())
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(fmt.Sprintf("  %s Loading feed...\n", m.spinner.View()))
	case len(m.rows) == 0 && m.err == nil:
		b.WriteString("  No publications yet.\n")
	}
	if m.err != nil {
		b.WriteString(common.ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		b.WriteString("\n")
	}

	return b.String()
}

// StatusLine summarises the stream state for the status bar.
func (m Model) StatusLine() string {
	if m.state == StateRejected {
		return ""
	}
	indicator := common.OfflineStyle.Render("○ offline")
	if m.live {
		indicator = common.LiveStyle.Render("● live")
	}
	parts := []string{indicator, fmt.Sprintf("%d publications", len(m.rows))}
	if m.skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", m.skipped))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderNotice() string {
	body := common.ErrorStyle.Render(RejectNotice)
	if m.pageErr != nil && !errors.Is(m.pageErr, domain.ErrMissingUserID) {
		body += "\n\n" + m.pageErr.Error()
	}
	body += "\n\nPress any key to exit."
	return common.NoticeStyle.Render(body)
}

func (m Model) renderTable() string {
	start, end := m.visibleRange()
	textWidth := m.textWidth()

	data := make([][]string, 0, end-start)
	for _, r := range m.rows[start:end] {
		data = append(data, []string{
			common.Truncate(r.Author, m.fixedWidth(authorWidth)),
			common.Truncate(r.Text, textWidth),
			common.Truncate(r.At, m.fixedWidth(atWidth)),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(common.TableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return common.HeaderStyle
			}
			switch col {
			case 0:
				return common.AuthorStyle
			case 1:
				return common.ContentStyle
			default:
				return common.TimestampStyle
			}
		}).
		Headers(headers...).
		Rows(data...)

	return t.Render()
}

// visibleRange returns the slice bounds of rows that fit on screen.
func (m Model) visibleRange() (int, int) {
	start := m.offset
	if start > len(m.rows) {
		start = len(m.rows)
	}
	if start < 0 {
		start = 0
	}
	end := start + m.visibleRows()
	if end > len(m.rows) {
		end = len(m.rows)
	}
	return start, end
}

// visibleRows is the number of data rows that fit; unlimited before the first resize.
func (m Model) visibleRows() int {
	if m.height <= 0 {
		return len(m.rows)
	}
	n := m.height - reservedLines
	if n < 1 {
		n = 1
	}
	return n
}

// textWidth is the text column width; zero means unlimited.
func (m Model) textWidth() int {
	if m.width <= 0 {
		return 0
	}
	// Four border columns and one cell of padding on each side of three cells.
	w := m.width - authorWidth - atWidth - 4 - 6
	if w < minTextWidth {
		w = minTextWidth
	}
	return w
}

// fixedWidth returns w once the terminal size is known, zero (unlimited) before.
func (m Model) fixedWidth(w int) int {
	if m.width <= 0 {
		return 0
	}
	return w
}
