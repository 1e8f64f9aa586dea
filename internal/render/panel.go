package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"sqlagent/cli/internal/backend"
	"sqlagent/cli/internal/conversation"
)

// Panel placeholder texts.
const (
	NoSQLText       = "(no SQL generated)"
	GeneratingText  = "Generating SQL…"
	QueryingText    = "Querying database…"
	DefaultRowLimit = 100
)

// SQLText returns the text of the generated-SQL panel.
func SQLText(s conversation.Snapshot) string {
	if strings.TrimSpace(s.SQL) == "" {
		return NoSQLText
	}
	return s.SQL
}

// RowsJSON returns the first limit rows as indented JSON, or "" when there are none.
func RowsJSON(rows []backend.Row, limit int) string {
	if len(rows) == 0 {
		return ""
	}
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Sprintf("(rows not displayable: %v)", err)
	}
	return string(b)
}

// RowCountLine returns the "Rows: N" caption of the response panel.
func RowCountLine(s conversation.Snapshot) string {
	return fmt.Sprintf("Rows: %d", s.RowCount)
}

// Lines splits panel text into display lines with tabs expanded.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\t", "    ")
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
