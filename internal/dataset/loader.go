package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"call-insights-go/internal/types"
)

// Load reads call records from the first sheet of an xlsx workbook,
// auto-detecting columns by header heuristics. Rows without transcript text
// are skipped quietly.
func Load(path string) ([]types.CallRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	transcriptIdx := -1
	callIDIdx := -1
	companyIdx := -1
	callTypeIdx := -1
	dealValueIdx := -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "transcript") || strings.Contains(l, "text"):
			if transcriptIdx == -1 {
				transcriptIdx = i
			}
		case strings.Contains(l, "call id") || strings.Contains(l, "callid") || l == "id":
			if callIDIdx == -1 {
				callIDIdx = i
			}
		case strings.Contains(l, "company") || strings.Contains(l, "account"):
			if companyIdx == -1 {
				companyIdx = i
			}
		case strings.Contains(l, "type"):
			if callTypeIdx == -1 {
				callTypeIdx = i
			}
		case strings.Contains(l, "deal") || strings.Contains(l, "value") || strings.Contains(l, "amount"):
			if dealValueIdx == -1 {
				dealValueIdx = i
			}
		}
	}
	if transcriptIdx == -1 {
		// common position fallback
		if len(header) > 1 {
			transcriptIdx = 1
		}
	}

	var out []types.CallRecord
	for i, r := range rows {
		if i == 0 {
			continue
		}
		record := types.CallRecord{}
		if callIDIdx >= 0 && callIDIdx < len(r) {
			record.CallID = strings.TrimSpace(r[callIDIdx])
		}
		if companyIdx >= 0 && companyIdx < len(r) {
			record.Company = strings.TrimSpace(r[companyIdx])
		}
		if callTypeIdx >= 0 && callTypeIdx < len(r) {
			record.CallType = strings.ToLower(strings.TrimSpace(r[callTypeIdx]))
		}
		if dealValueIdx >= 0 && dealValueIdx < len(r) {
			record.DealValue, _ = strconv.ParseFloat(strings.TrimSpace(r[dealValueIdx]), 64)
		}
		if transcriptIdx >= 0 && transcriptIdx < len(r) {
			record.Transcript = r[transcriptIdx]
		}
		if strings.TrimSpace(record.Transcript) == "" {
			continue
		}
		if record.CallID == "" {
			record.CallID = fmt.Sprintf("row-%d", i)
		}
		out = append(out, record)
	}
	return out, nil
}

// Metadata converts a dataset record to the per-call metadata passed into
// the pipeline.
func Metadata(rec types.CallRecord) *types.CallMetadata {
	return &types.CallMetadata{
		Company:   rec.Company,
		DealValue: rec.DealValue,
		CallType:  rec.CallType,
	}
}
