package grading

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// the marker the grading prompt asks the model to finish with, plus the
// variants models drift into
var scoreMarker = regexp.MustCompile(`(?i)สรุปคะแนนรวมทั้งหมด|คะแนนรวม|total\s+score|overall\s+score`)

// "out of 100", "เต็ม 100", "จาก 100" and "(/100)" name the scale, not the score
var scaleClause = regexp.MustCompile(`(?i)(?:out\s+of|เต็ม|จาก)\s*\d+(?:\.\d+)?|\(\s*/\s*\d+(?:\.\d+)?\s*\)`)

var scoreValue = regexp.MustCompile(`^[^\d]{0,20}?(-?\d+(?:\.\d+)?)`)

// ParseScore reads the total score from a grading response. The last marker
// followed by a number wins since models restate the total at the end. Nil
// means the text needs manual review; it never defaults to 0.
func ParseScore(text string) *int {
	text = thaiDigitsToASCII(text)
	markers := scoreMarker.FindAllStringIndex(text, -1)
	for i := len(markers) - 1; i >= 0; i-- {
		raw, ok := valueAfter(text[markers[i][1]:])
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		score := int(math.Round(value))
		if score < 0 || score > 100 {
			return nil
		}
		return &score
	}
	return nil
}

// valueAfter returns the first number on the rest of the marker's line once
// any scale clause is removed.
func valueAfter(rest string) (string, bool) {
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}
	rest = scaleClause.ReplaceAllString(rest, "")
	m := scoreValue.FindStringSubmatch(rest)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func thaiDigitsToASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '๐' && r <= '๙' {
			return '0' + (r - '๐')
		}
		return r
	}, s)
}
