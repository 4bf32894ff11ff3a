package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"call-insights-go/internal/types"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), "calls.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadDetectsColumnsByHeader(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Call ID", "Transcript", "Company", "Call Type", "Deal Value"},
		{"call-001", "Rep: hello\nProspect: hi", "Acme Corp", "Discovery", 50000},
	})

	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "call-001", rec.CallID)
	assert.Equal(t, "Acme Corp", rec.Company)
	assert.Equal(t, "discovery", rec.CallType)
	assert.Equal(t, 50000.0, rec.DealValue)
	assert.Contains(t, rec.Transcript, "Rep: hello")
}

func TestLoadSkipsBlankTranscripts(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Call ID", "Transcript"},
		{"call-001", "Rep: hello"},
		{"call-002", "   "},
		{"call-003", "Rep: hi again"},
	})

	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "call-001", records[0].CallID)
	assert.Equal(t, "call-003", records[1].CallID)
}

func TestLoadFallsBackToRowIDs(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Transcript"},
		{"Rep: first call"},
		{"Rep: second call"},
	})

	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "row-1", records[0].CallID)
	assert.Equal(t, "row-2", records[1].CallID)
}

func TestLoadNoDataRows(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Call ID", "Transcript"},
	})

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}

func TestMetadata(t *testing.T) {
	meta := Metadata(types.CallRecord{Company: "Acme", DealValue: 12500, CallType: "negotiation"})
	require.NotNil(t, meta)
	assert.Equal(t, "Acme", meta.Company)
	assert.Equal(t, 12500.0, meta.DealValue)
	assert.Equal(t, "negotiation", meta.CallType)
}
