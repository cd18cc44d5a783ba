package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseLiteralFormatsAgree(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{"2024-05-01", "2024年05月01日", "2024/05/01"} {
		got, err := Parse(input)
		require.NoError(t, err, "input %q", input)
		require.True(t, got.Equal(want), "input %q parsed to %v", input, got)
	}
}

func TestParseFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "dotted",
			input: "2019.7.6",
			want:  time.Date(2019, time.July, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "embedded text",
			input: "開催日: 2023年1月9日(月・祝)",
			want:  time.Date(2023, time.January, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "single digit month and day",
			input: "2020-3-5",
			want:  time.Date(2020, time.March, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "surrounding whitespace",
			input: "  2021/12/31  ",
			want:  time.Date(2021, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tc.input)
			require.NoError(t, err)
			require.True(t, got.Equal(tc.want), "got %v", got)
		})
	}
}

func TestParseFailures(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"TBD", "", "未定", "13月のツアー", "2024-13-40"} {
		_, err := Parse(input)
		require.ErrorIs(t, err, ErrNoDate, "input %q", input)
	}
}
