package market

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCandlesCSV(t *testing.T) {
	t.Parallel()

	data := `timestamp,open,high,low,close,volume
2024-01-02,101,110,99,105,1000
2024-01-01,100,104,95,101,900
1704240000000,105,112,103,111,1100
`
	cs, err := ReadCandlesCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, cs, 3)

	assert.True(t, cs[0].Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 104.0, cs[0].High)
	assert.Equal(t, 95.0, cs[0].Low)
	assert.True(t, cs[2].Time.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1100.0, cs[2].Volume)
}

func TestReadCandlesCSVBadRow(t *testing.T) {
	t.Parallel()

	data := "2024-01-01,100,104,95,101,900\n2024-01-02,abc,1,1,1,1\n"
	_, err := ReadCandlesCSV(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
