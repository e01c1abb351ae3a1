// Package numbering implements the textual contract for invoice and receipt
// identifiers: a format template with {YYYY}, {MM} and {SEQ} placeholders, and
// the extraction of the trailing sequence back out of an issued number.
package numbering

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// seqPadding is the minimum width of the formatted {SEQ} placeholder.
const seqPadding = 4

// trailingSeqPattern matches a trailing run of at least three digits, which is
// how the sequencer recovers the last sequence from an issued number.
var trailingSeqPattern = regexp.MustCompile(`(\d{3,})$`)

// HasSeqPlaceholder reports whether the template contains {SEQ}. Templates
// without it cannot be parsed back, so sequencing falls back to the persisted
// counter alone.
func HasSeqPlaceholder(template string) bool {
	return strings.Contains(template, "{SEQ}")
}

// Format substitutes {YYYY}, {MM} and {SEQ} in template using the given
// reference time and sequence value. {SEQ} is left-padded to 4 digits; larger
// sequences keep their full width.
func Format(template string, seq int64, now time.Time) string {
	out := strings.ReplaceAll(template, "{YYYY}", now.Format("2006"))
	out = strings.ReplaceAll(out, "{MM}", now.Format("01"))
	padded := strconv.FormatInt(seq, 10)
	for len(padded) < seqPadding {
		padded = "0" + padded
	}
	return strings.ReplaceAll(out, "{SEQ}", padded)
}

// ExtractTrailingSeq parses the trailing digit run of an issued number back
// into the sequence it was formatted from. The second return is false when the
// number carries no parseable trailing sequence (custom formats).
func ExtractTrailingSeq(number string) (int64, bool) {
	match := trailingSeqPattern.FindStringSubmatch(number)
	if match == nil {
		return 0, false
	}
	seq, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		// A 19+ digit run overflows int64; treat as unparseable.
		return 0, false
	}
	return seq, true
}
