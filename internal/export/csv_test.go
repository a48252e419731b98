package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Run("empty ledger has only the header", func(t *testing.T) {
		assert.Equal(t, "date,time,category,amount,note\n", CSV(nil))
	})

	t.Run("rows are oldest first", func(t *testing.T) {
		expenses := []model.Expense{
			testutil.Expense("b", testutil.Date(2024, time.March, 15, 12, 5), 120, "午餐"),
			testutil.Expense("a", testutil.Date(2024, time.March, 14, 8, 0), 60, "早餐"),
		}

		got := CSV(expenses)

		assert.Equal(t, "date,time,category,amount,note\n"+
			"2024-03-14,08:00,早餐,60,\n"+
			"2024-03-15,12:05,午餐,120,\n", got)
		assert.Equal(t, "b", expenses[0].ID, "input order must be preserved")
	})

	t.Run("notes are kept on one line without separators", func(t *testing.T) {
		e := testutil.Expense("a", testutil.Date(2024, time.March, 14, 21, 30), 80, "宵夜")
		e.Note = "noodles, extra egg\nand tea\r\nto go"

		lines := strings.Split(strings.TrimSuffix(CSV([]model.Expense{e}), "\n"), "\n")

		require.Len(t, lines, 2)
		assert.Equal(t, "2024-03-14,21:30,宵夜,80,noodles， extra egg and tea to go", lines[1])
		assert.Len(t, strings.Split(lines[1], ","), len(Header))
	})
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a,b", "a，b"},
		{"a\nb", "a b"},
		{"a\r\nb", "a b"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestFilter(t *testing.T) {
	expenses := []model.Expense{
		testutil.Expense("feb", testutil.Date(2024, time.February, 29, 23, 59), 10, "宵夜"),
		testutil.Expense("mar", testutil.Date(2024, time.March, 1, 0, 0), 20, "宵夜"),
	}

	got := Filter(expenses, testutil.Date(2024, time.March, 10, 0, 0))
	require.Len(t, got, 1)
	assert.Equal(t, "mar", got[0].ID)

	assert.Len(t, Filter(expenses, time.Time{}), 2)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "date,time,category,amount,note\n", buf.String())

	err := WriteCSV(failingWriter{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
