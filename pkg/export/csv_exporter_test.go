package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderHeaderOnly(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{Headers: []string{"Name", "Code"}})
	require.NoError(t, err)
	assert.Equal(t, "Name,Code\n", string(out))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVRenderEscapesSpecialCharacters(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"Name", "Note"},
		Rows: []map[string]string{
			{"Name": `Khan, Aisha`, "Note": `said "present"`},
			{"Name": "Multi\nLine", "Note": "plain"},
		},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Khan, Aisha", records[1][0])
	assert.Equal(t, `said "present"`, records[1][1])
	assert.Equal(t, "Multi\nLine", records[2][0])
}

func TestCSVRenderFillsMissingCellsEmpty(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"A", "B", "C"},
		Rows:    []map[string]string{{"A": "1", "C": "3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "A,B,C\n1,,3\n", string(out))
}
