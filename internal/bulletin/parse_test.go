package bulletin

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureBulletin = "testdata/codsus.txt"

func TestReadRows(t *testing.T) {
	rows, err := ReadRows(strings.NewReader("  HIGHS 1021234  \r\n\n\t\n 9876543\nEND"))
	require.NoError(t, err)
	assert.Equal(t, Rows("HIGHS 1021234", "9876543", "END"), rows)
}

func TestLoadRows(t *testing.T) {
	rows, err := LoadRows(fixtureBulletin)
	require.NoError(t, err)
	require.Len(t, rows, 13)
	assert.Equal(t, "VALID 102712Z", rows[3].Text)
	assert.Equal(t, "2951003", rows[5].Text)
	assert.Equal(t, "$$", rows[12].Text)

	_, err = LoadRows("testdata/missing.txt")
	require.Error(t, err)
}

func TestSplitCodes(t *testing.T) {
	got := SplitCodes("1030 4211234 1028 3890987 12345678 ABCDEFG 2951003")
	assert.Equal(t, []string{"4211234", "3890987", "2951003"}, got)
	assert.Empty(t, SplitCodes(""))
}

func TestParseCenters(t *testing.T) {
	centers, err := ParseCenters(High, "1030 4211234 3890987 1022 2951003")
	require.NoError(t, err)
	require.Len(t, centers, 3)

	assert.Equal(t, Center{Kind: High, Code: "4211234", Pressure: 1030, Lat: 42.1, Lon: -123.4}, centers[0])
	assert.Equal(t, 0, centers[1].Pressure)
	assert.Equal(t, 1022, centers[2].Pressure)
	assert.InDelta(t, -100.3, centers[2].Lon, 1e-9)

	_, err = ParseCenters(Low, "1004 0000000")
	require.Error(t, err)
}

func TestParseFronts(t *testing.T) {
	rows := Rows(
		"COLD WK 4560987 4400990",
		"4230998 4101010",
		"WARM 4560987 4520960",
		"TROF 2951003",
		"$$",
	)

	fronts, err := ParseFronts(rows)
	require.NoError(t, err)
	require.Len(t, fronts, 3)

	assert.Equal(t, Cold, fronts[0].Kind)
	assert.Equal(t, "WK", fronts[0].Strength)
	assert.Equal(t, []string{"4560987", "4400990", "4230998", "4101010"}, fronts[0].Codes)
	assert.InDeltaSlice(t, []float64{45.6, 44, 42.3, 41}, fronts[0].Lats, 1e-9)
	assert.InDeltaSlice(t, []float64{-98.7, -99, -99.8, -101}, fronts[0].Lons, 1e-9)

	assert.Equal(t, Warm, fronts[1].Kind)
	assert.Empty(t, fronts[1].Strength)
	assert.Len(t, fronts[1].Codes, 2)

	assert.Equal(t, Trough, fronts[2].Kind)
	assert.Equal(t, []string{"2951003"}, fronts[2].Codes)
}

func TestParseFronts_EmptyRow(t *testing.T) {
	_, err := ParseFronts(Rows("COLD 4560987", "", "END"))
	require.ErrorIs(t, err, ErrEmptyRow)
}

func TestParseValid(t *testing.T) {
	v, ok := ParseValid(Rows("HEADER", "VALID 102712Z", "HIGHS 1030 4211234"))
	require.True(t, ok)
	assert.Equal(t, ValidTime{Month: 10, Day: 27, Hour: 12}, v)
	assert.Equal(t, "102712Z", v.String())
	assert.Equal(t, time.Date(2020, 10, 27, 12, 0, 0, 0, time.UTC), v.Time(2020))

	for _, line := range []string{"VALID 1027Z", "VALID 132712Z", "VALID 10271200", "VALID"} {
		_, ok := ParseValid(Rows(line))
		assert.False(t, ok, line)
	}
}

func TestParseIssued(t *testing.T) {
	issued, ok := ParseIssued(Rows(
		"NWS WEATHER PREDICTION CENTER COLLEGE PARK MD",
		"1009 AM EDT TUE OCT 27 2020",
		"VALID 102712Z",
	))
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, 10, 27, 0, 0, 0, 0, time.UTC), issued)

	_, ok = ParseIssued(Rows("HIGHS 1030 4211234", "VALID 102712Z"))
	assert.False(t, ok)
}

func TestBulletinValidAt(t *testing.T) {
	tests := []struct {
		name   string
		b      Bulletin
		want   time.Time
		wantOK bool
	}{
		{
			name:   "same year",
			b:      Bulletin{Issued: time.Date(2020, 10, 27, 0, 0, 0, 0, time.UTC), Valid: ValidTime{Month: 10, Day: 27, Hour: 12}, HasValid: true},
			want:   time.Date(2020, 10, 27, 12, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "january stamp issued in december",
			b:      Bulletin{Issued: time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), Valid: ValidTime{Month: 1, Day: 1, Hour: 0}, HasValid: true},
			want:   time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name: "no issue date",
			b:    Bulletin{Valid: ValidTime{Month: 10, Day: 27, Hour: 12}, HasValid: true},
		},
		{
			name: "no valid stamp",
			b:    Bulletin{Issued: time.Date(2020, 10, 27, 0, 0, 0, 0, time.UTC)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.b.ValidAt()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	rows, err := LoadRows(fixtureBulletin)
	require.NoError(t, err)

	b, err := Parse(rows)
	require.NoError(t, err)

	require.True(t, b.HasValid)
	assert.Equal(t, ValidTime{Month: 10, Day: 27, Hour: 12}, b.Valid)
	valid, ok := b.ValidAt()
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, 10, 27, 12, 0, 0, 0, time.UTC), valid)

	require.Len(t, b.Highs, 3)
	assert.Equal(t, []int{1030, 1028, 1022}, []int{b.Highs[0].Pressure, b.Highs[1].Pressure, b.Highs[2].Pressure})
	assert.InDelta(t, 29.5, b.Highs[2].Lat, 1e-9)
	assert.InDelta(t, -100.3, b.Highs[2].Lon, 1e-9)

	require.Len(t, b.Lows, 2)
	assert.Equal(t, Low, b.Lows[0].Kind)
	assert.Equal(t, "4560987", b.Lows[0].Code)
	assert.InDelta(t, 45.6, b.Lows[0].Lat, 1e-9)
	assert.InDelta(t, -98.7, b.Lows[0].Lon, 1e-9)

	require.Len(t, b.Fronts, 4)
	assert.Equal(t, []FrontKind{Cold, Warm, Stationary, Trough},
		[]FrontKind{b.Fronts[0].Kind, b.Fronts[1].Kind, b.Fronts[2].Kind, b.Fronts[3].Kind})
	assert.Len(t, b.Fronts[0].Codes, 6)
}

func TestParse_InvalidCode(t *testing.T) {
	_, err := Parse(Rows("HIGHS 1030 0000000", "END"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse highs")
}

func TestCenterKindSymbol(t *testing.T) {
	assert.Equal(t, "H", High.Symbol())
	assert.Equal(t, "L", Low.Symbol())
}
