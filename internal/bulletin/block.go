package bulletin

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// labelWindow is the row prefix width searched for a block label.
const labelWindow = 5

// ErrEmptyRow is matched by every *EmptyRowError.
var ErrEmptyRow = errors.New("empty bulletin row")

// EmptyRowError reports an empty row met while scanning block continuations.
type EmptyRowError struct {
	Index int
}

func (e *EmptyRowError) Error() string {
	return fmt.Sprintf("empty bulletin row at index %d", e.Index)
}

// Is reports ErrEmptyRow as the sentinel for this error.
func (e *EmptyRowError) Is(target error) bool {
	return target == ErrEmptyRow
}

// ExtractBlock merges every block labeled with label and its continuation rows.
//
// A row starts a block when label occurs within its first five characters.
// Following rows are merged while they start with a digit and their first
// token is longer than three characters; the first row starting with a letter
// ends the block. The final row of input is never examined as a continuation.
//
// The merged rows are returned as one flat run of tokens with commas and
// "label " prefixes removed. An unmatched label yields "" and no error.
func ExtractBlock(rows []Row, label string) (string, error) {
	var merged []string

	for i, row := range rows {
		if !strings.Contains(prefix(row.Text, labelWindow), label) {
			continue
		}

		merged = append(merged, row.Text)

		cont, err := continuation(rows, i)
		if err != nil {
			return "", err
		}
		merged = append(merged, cont...)
	}

	joined := strings.Join(merged, ", ")
	joined = strings.ReplaceAll(joined, ",", "")
	return strings.ReplaceAll(joined, label+" ", ""), nil
}

// CollectHiLoCoordinates decodes high/low center codes into signed degrees,
// latitude north-positive and longitude west-negative.
func CollectHiLoCoordinates(points []string) (lats, lons []float64, err error) {
	return DecodeBatch(points)
}

// continuation returns the continuation rows following rows[start].
func continuation(rows []Row, start int) ([]string, error) {
	var out []string

	for j := start + 1; j < len(rows)-1; j++ {
		text := rows[j].Text
		if text == "" {
			return nil, &EmptyRowError{Index: j}
		}
		first, _ := utf8.DecodeRuneInString(text)

		if unicode.IsDigit(first) {
			if fields := strings.Fields(text); utf8.RuneCountInString(fields[0]) > 3 {
				out = append(out, text)
			}
		}
		if unicode.IsLetter(first) {
			break
		}
	}

	return out, nil
}

// prefix returns up to n leading characters of s.
func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
