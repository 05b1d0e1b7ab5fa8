package bulletin

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Block labels used by coded surface bulletins.
const (
	LabelHighs = "HIGHS"
	LabelLows  = "LOWS"
	LabelValid = "VALID"
)

// CenterKind distinguishes high and low pressure centers.
type CenterKind string

// Pressure center kinds.
const (
	High CenterKind = "high"
	Low  CenterKind = "low"
)

// Symbol returns the map letter of the center kind.
func (k CenterKind) Symbol() string {
	if k == High {
		return "H"
	}
	return "L"
}

// FrontKind is the leading token of a front row.
type FrontKind string

// Front kinds.
const (
	Cold       FrontKind = "COLD"
	Warm       FrontKind = "WARM"
	Stationary FrontKind = "STNRY"
	Occluded   FrontKind = "OCFNT"
	Trough     FrontKind = "TROF"
)

// FrontKinds lists every front kind in bulletin order.
var FrontKinds = []FrontKind{Cold, Warm, Stationary, Occluded, Trough}

func frontKind(token string) (FrontKind, bool) {
	for _, k := range FrontKinds {
		if token == string(k) {
			return k, true
		}
	}
	return "", false
}

var frontStrengths = map[string]bool{"WK": true, "MDT": true, "STG": true}

// Center is a decoded high or low pressure center.
type Center struct {
	Kind     CenterKind
	Code     string
	Pressure int // hPa, 0 when the bulletin gives none
	Lat      float64
	Lon      float64
}

// Front is a decoded front polyline.
type Front struct {
	Kind     FrontKind
	Strength string
	Codes    []string
	Lats     []float64
	Lons     []float64
}

// ValidTime is the MMDDHHZ stamp of a bulletin.
type ValidTime struct {
	Month int
	Day   int
	Hour  int
}

// Time places the stamp in the given year, UTC.
func (v ValidTime) Time(year int) time.Time {
	return time.Date(year, time.Month(v.Month), v.Day, v.Hour, 0, 0, 0, time.UTC)
}

func (v ValidTime) String() string {
	return fmt.Sprintf("%02d%02d%02dZ", v.Month, v.Day, v.Hour)
}

// Bulletin is the structured content of a coded surface bulletin.
type Bulletin struct {
	Issued   time.Time // issue date from the header, zero if absent
	Valid    ValidTime
	HasValid bool
	Highs    []Center
	Lows     []Center
	Fronts   []Front
}

// ValidAt returns the valid stamp as an instant in the issue year.
// A stamp more than six months before the issue date belongs to the next year.
func (b *Bulletin) ValidAt() (time.Time, bool) {
	if !b.HasValid || b.Issued.IsZero() {
		return time.Time{}, false
	}

	t := b.Valid.Time(b.Issued.Year())
	if t.Before(b.Issued.AddDate(0, -6, 0)) {
		t = t.AddDate(1, 0, 0)
	}
	return t, true
}

// Parse decodes the dates, pressure centers and fronts of a bulletin.
func Parse(rows []Row) (*Bulletin, error) {
	b := &Bulletin{}
	b.Issued, _ = ParseIssued(rows)
	b.Valid, b.HasValid = ParseValid(rows)

	highs, err := ExtractBlock(rows, LabelHighs)
	if err != nil {
		return nil, fmt.Errorf("parse highs: %w", err)
	}
	if b.Highs, err = ParseCenters(High, highs); err != nil {
		return nil, fmt.Errorf("parse highs: %w", err)
	}

	lows, err := ExtractBlock(rows, LabelLows)
	if err != nil {
		return nil, fmt.Errorf("parse lows: %w", err)
	}
	if b.Lows, err = ParseCenters(Low, lows); err != nil {
		return nil, fmt.Errorf("parse lows: %w", err)
	}

	if b.Fronts, err = ParseFronts(rows); err != nil {
		return nil, fmt.Errorf("parse fronts: %w", err)
	}

	return b, nil
}

// SplitCodes returns the 7-digit coded coordinates of a merged block, in order.
func SplitCodes(merged string) []string {
	var codes []string
	for _, tok := range strings.Fields(merged) {
		if len(tok) == CodeLength && isDigits(tok) {
			codes = append(codes, tok)
		}
	}
	return codes
}

// ParseCenters decodes a merged HIGHS or LOWS block.
// A short numeric token is the pressure of the center coded right after it.
func ParseCenters(kind CenterKind, merged string) ([]Center, error) {
	var (
		codes     []string
		pressures []int
		pending   int
	)

	for _, tok := range strings.Fields(merged) {
		if !isDigits(tok) {
			continue
		}
		switch {
		case len(tok) == CodeLength:
			codes = append(codes, tok)
			pressures = append(pressures, pending)
			pending = 0
		case len(tok) <= 4:
			pending, _ = strconv.Atoi(tok)
		}
	}

	lats, lons, err := CollectHiLoCoordinates(codes)
	if err != nil {
		return nil, err
	}

	centers := make([]Center, len(codes))
	for i, code := range codes {
		centers[i] = Center{
			Kind:     kind,
			Code:     code,
			Pressure: pressures[i],
			Lat:      lats[i],
			Lon:      lons[i],
		}
	}

	return centers, nil
}

// ParseFronts decodes every front row with its continuation rows.
// Unlike ExtractBlock each front is kept on its own.
func ParseFronts(rows []Row) ([]Front, error) {
	var fronts []Front

	for i, row := range rows {
		fields := strings.Fields(row.Text)
		if len(fields) == 0 {
			continue
		}
		kind, ok := frontKind(fields[0])
		if !ok {
			continue
		}

		front := Front{Kind: kind}
		rest := fields[1:]
		if len(rest) > 0 && frontStrengths[rest[0]] {
			front.Strength = rest[0]
			rest = rest[1:]
		}

		cont, err := continuation(rows, i)
		if err != nil {
			return nil, err
		}

		text := strings.Join(append(rest, cont...), " ")
		front.Codes = SplitCodes(text)
		if front.Lats, front.Lons, err = DecodeBatch(front.Codes); err != nil {
			return nil, fmt.Errorf("%s front at row %d: %w", kind, i, err)
		}

		fronts = append(fronts, front)
	}

	return fronts, nil
}

// ParseIssued finds the header line ending in the issue date,
// e.g. "1009 AM EDT TUE OCT 27 2020".
func ParseIssued(rows []Row) (time.Time, bool) {
	for _, row := range rows {
		fields := strings.Fields(row.Text)
		if len(fields) < 3 {
			continue
		}
		t, err := time.Parse("Jan 2 2006", strings.Join(fields[len(fields)-3:], " "))
		if err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseValid finds the VALID MMDDHHZ stamp.
func ParseValid(rows []Row) (ValidTime, bool) {
	for _, row := range rows {
		fields := strings.Fields(row.Text)
		if len(fields) < 2 || fields[0] != LabelValid {
			continue
		}

		stamp := fields[1]
		if len(stamp) != 7 || stamp[6] != 'Z' || !isDigits(stamp[:6]) {
			return ValidTime{}, false
		}

		month, _ := strconv.Atoi(stamp[0:2])
		day, _ := strconv.Atoi(stamp[2:4])
		hour, _ := strconv.Atoi(stamp[4:6])
		if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 {
			return ValidTime{}, false
		}

		return ValidTime{Month: month, Day: day, Hour: hour}, true
	}

	return ValidTime{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
