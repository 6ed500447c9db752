package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "$1,234,568", FormatMoney(1234567.8))
	require.Equal(t, "$999.50", FormatMoney(999.5))
	require.Equal(t, "-$12.50", FormatMoney(-12.5))
	require.Equal(t, "+$1,000", FormatDelta(1000))
	require.Equal(t, "-$5.00", FormatDelta(-5))
}

func TestFormatCompact(t *testing.T) {
	require.Equal(t, "$1.2K", FormatCompact(1234))
	require.Equal(t, "$2.5M", FormatCompact(2_500_000))
	require.Equal(t, "-$3.0B", FormatCompact(-3e9))
	require.Equal(t, "$12", FormatCompact(12))
}

func TestFormatYearsAndDays(t *testing.T) {
	require.Equal(t, "1y 3m", FormatYears(1.25))
	require.Equal(t, "-2y", FormatYears(-2))
	require.Equal(t, "6m", FormatYears(0.5))
	require.Equal(t, "1,096d earlier", FormatDays(1095.75))
	require.Equal(t, "30d later", FormatDays(-30))
	require.Equal(t, "same day", FormatDays(0.2))
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Date", "Net worth"},
		Rows:    [][]string{{"2025-01-01", "$1"}, {"---"}, {"2026-01-01", "$1,000"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7)
	for _, line := range lines[1:] {
		require.Equal(t, len([]rune(lines[0])), len([]rune(line)))
	}
	require.Empty(t, RenderTable(Table{}))
}

func TestRenderSparkline(t *testing.T) {
	require.Equal(t, "▁▄█", RenderSparkline([]float64{0, 50, 100}))
	require.Equal(t, "▁▁", RenderSparkline([]float64{5, 5}))
	require.Empty(t, RenderSparkline(nil))
}
