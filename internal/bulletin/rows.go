package bulletin

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Row is a single bulletin line as seen by the block scanners.
type Row struct {
	Text string
}

// Rows wraps plain strings into rows.
func Rows(lines ...string) []Row {
	rows := make([]Row, len(lines))
	for i, l := range lines {
		rows[i] = Row{Text: l}
	}
	return rows
}

// ReadRows reads a fixed-width bulletin one line per row.
// Surrounding whitespace is trimmed and blank lines are skipped.
func ReadRows(r io.Reader) ([]Row, error) {
	var rows []Row

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rows = append(rows, Row{Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read bulletin rows: %w", err)
	}

	return rows, nil
}

// LoadRows reads the bulletin stored at path.
func LoadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	// read-only, close error carries nothing useful
	defer func() { _ = f.Close() }()

	return ReadRows(f)
}
