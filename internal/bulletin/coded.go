// Package bulletin decodes WPC coded surface bulletins.
//
// A bulletin is a fixed-width text product. Pressure centers and fronts are
// listed as runs of 7-digit coded coordinates in the form XXXYYYY:
//
//	XXX  latitude, decimal point before the last digit  (384  -> 38.4 N)
//	YYYY longitude, decimal point before the last digit (0979 -> 97.9 W)
//
// Labeled blocks (HIGHS, LOWS, COLD, ...) may continue on following rows.
package bulletin

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CodeLength is the number of digits in a coded lat/lon pair.
const CodeLength = 7

// ErrInvalidCodeLength is matched by every *InvalidCodeLengthError.
var ErrInvalidCodeLength = errors.New("invalid coded lat/lon length")

// InvalidCodeLengthError reports a coded coordinate that is not CodeLength characters long.
type InvalidCodeLengthError struct {
	Code   string
	Length int
}

func (e *InvalidCodeLengthError) Error() string {
	return fmt.Sprintf("wrong number of digits in coded lat/lon %q: got %d, want %d", e.Code, e.Length, CodeLength)
}

// Is reports ErrInvalidCodeLength as the sentinel for this error.
func (e *InvalidCodeLengthError) Is(target error) bool {
	return target == ErrInvalidCodeLength
}

// ParseLatLon splits a coded coordinate into latitude and longitude texts.
//
// The decimal point is placed before the last digit of each part and then
// every leading and trailing '0' character is trimmed, so "0560149" gives
// ("5.6", "14.9"). Latitude is degrees north, longitude degrees west.
//
// When diag is not nil the raw and converted values are written to it.
// Diagnostics never change the result.
func ParseLatLon(code string, diag io.Writer) (lat, lon string, err error) {
	if len(code) != CodeLength {
		return "", "", &InvalidCodeLengthError{Code: code, Length: len(code)}
	}

	latRaw, lonRaw := code[0:3], code[3:]
	if diag != nil {
		_, _ = fmt.Fprintln(diag, "-----------------------------------------------------")
		_, _ = fmt.Fprintf(diag, "raw latitude: %s\nraw longitude: %s\n\n", latRaw, lonRaw)
	}

	lat = strings.Trim(code[0:2]+"."+code[2:3], "0")
	lon = strings.Trim(code[3:6]+"."+code[6:7], "0")

	if diag != nil {
		_, _ = fmt.Fprintf(diag, "converted latitude (N): %s\nconverted longitude (W): %s\n\n",
			diagFloat(lat), diagFloat(lon))
	}

	return lat, lon, nil
}

// diagFloat renders a decoded text the way a float would print, falling back to the text itself.
func diagFloat(s string) string {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// DecodeBatch decodes every code into signed degrees.
// Latitudes are north-positive and longitudes are negated (west-negative).
// The first failing code aborts the batch and no partial result is returned.
func DecodeBatch(codes []string) (lats, lons []float64, err error) {
	lats = make([]float64, 0, len(codes))
	lons = make([]float64, 0, len(codes))

	for _, code := range codes {
		latText, lonText, err := ParseLatLon(code, nil)
		if err != nil {
			return nil, nil, err
		}

		lat, err := strconv.ParseFloat(latText, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("decode latitude of %q: %w", code, err)
		}
		lon, err := strconv.ParseFloat(lonText, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("decode longitude of %q: %w", code, err)
		}

		lats = append(lats, lat)
		lons = append(lons, -lon)
	}

	return lats, lons, nil
}
