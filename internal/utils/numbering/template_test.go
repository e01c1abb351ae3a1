package numbering_test

import (
	"testing"
	"time"

	"github.com/quillbooks/invoicing_app/internal/utils/numbering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refTime = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		seq      int64
		want     string
	}{
		{"default template", "INV-{YYYY}-{MM}-{SEQ}", 42, "INV-2026-03-0042"},
		{"padding below 4 digits", "{SEQ}", 7, "0007"},
		{"padding not truncated above 4 digits", "{SEQ}", 123456, "123456"},
		{"no placeholders", "INVOICE", 9, "INVOICE"},
		{"year and month only", "{YYYY}{MM}", 1, "202603"},
		{"repeated placeholder", "{SEQ}-{SEQ}", 5, "0005-0005"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, numbering.Format(tt.template, tt.seq, refTime))
		})
	}
}

func TestExtractTrailingSeq(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   int64
		ok     bool
	}{
		{"formatted default", "INV-2026-03-0042", 42, true},
		{"long sequence", "INV-123456", 123456, true},
		{"no trailing digits", "INVOICE-FINAL", 0, false},
		{"too few trailing digits", "INV-42", 0, false},
		{"digits not at end", "0042-INV", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := numbering.ExtractTrailingSeq(tt.number)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatExtractRoundTrip(t *testing.T) {
	formatted := numbering.Format("INV-{YYYY}-{MM}-{SEQ}", 42, refTime)
	seq, ok := numbering.ExtractTrailingSeq(formatted)
	require.True(t, ok)
	assert.Equal(t, int64(42), seq)
}

func TestHasSeqPlaceholder(t *testing.T) {
	assert.True(t, numbering.HasSeqPlaceholder("INV-{SEQ}"))
	assert.False(t, numbering.HasSeqPlaceholder("INV-{YYYY}"))
}
