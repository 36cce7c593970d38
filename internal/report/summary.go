package report

import (
	"encoding/csv"
	"errors"
	"io"
	"sort"
	"strconv"

	"github.com/codalotl/benchrelay/internal/harness"
)

// Row is the per-model aggregate for one batch of trial records.
type Row struct {
	Model  string
	Passed int
	Total  int
}

func (r Row) PassRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Total)
}

// Summarize partitions records by origin model and counts passes. A record
// with an unknown verdict counts toward the total but never toward passed.
// Rows are sorted by model name.
func Summarize(records []harness.TrialRecord) []Row {
	byModel := map[string]*Row{}
	for _, rec := range records {
		row, ok := byModel[rec.OriginModel]
		if !ok {
			row = &Row{Model: rec.OriginModel}
			byModel[rec.OriginModel] = row
		}
		row.Total++
		if rec.Verdict == harness.VerdictPassed {
			row.Passed++
		}
	}

	rows := make([]Row, 0, len(byModel))
	for _, row := range byModel {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Model < rows[j].Model
	})
	return rows
}

// GroupByModel partitions records by origin model, preserving the input
// ordering within each group.
func GroupByModel(records []harness.TrialRecord) map[string][]harness.TrialRecord {
	out := map[string][]harness.TrialRecord{}
	for _, rec := range records {
		out[rec.OriginModel] = append(out[rec.OriginModel], rec)
	}
	return out
}

func WriteCSV(w io.Writer, rows []Row) error {
	if w == nil {
		return errors.New("writer is nil")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"model", "passed", "total", "pass_rate"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Model,
			strconv.Itoa(row.Passed),
			strconv.Itoa(row.Total),
			strconv.FormatFloat(row.PassRate(), 'f', 4, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
