package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRendersHeaderAndRows(t *testing.T) {
	data := Dataset{Headers: []string{"id", "score"}}
	data.AddRow(map[string]string{"id": "s1", "score": "90"})
	data.AddRow(map[string]string{"id": "s2"})

	out, err := CSV(data)
	require.NoError(t, err)
	assert.Equal(t, "id,score\ns1,90\ns2,\n", string(out))
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := CSV(Dataset{})
	require.Error(t, err)
}

func TestPDFRendersDocument(t *testing.T) {
	data := Dataset{Headers: []string{"id", "score"}}
	data.AddRow(map[string]string{"id": "s1", "score": "90"})

	out, err := PDF(data, "Course Report")
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}
