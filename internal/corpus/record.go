// Package corpus ingests tabular exam-question corpora and aggregates them
// into knowledge documents.
package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// optionSlots are the per-record option/distractor slot suffixes.
var optionSlots = [4]string{"a", "b", "c", "d"}

// RawRecord is one exam-question row. It exists only during aggregation.
type RawRecord struct {
	ItemID               string
	Exam                 string
	Skill                string
	Topic                string
	Difficulty           string
	RequiredSteps        string
	CommonMisconception  string
	Stimulus             string
	QuestionStem         string
	Options              [4]string
	DistractorPatterns   [4]string
	DistractorRationales [4]string
}

// ReadCSV parses a CSV corpus. The first row is the header; unknown columns
// are ignored and missing columns yield empty fields.
func ReadCSV(r io.Reader) ([]RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows)
}

// fromRows converts header-plus-data rows into records.
func fromRows(rows [][]string) ([]RawRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("corpus has no header row")
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := RawRecord{
			ItemID:              field(row, "item_id"),
			Exam:                field(row, "exam"),
			Skill:               field(row, "skill"),
			Topic:               field(row, "topic"),
			Difficulty:          field(row, "difficulty"),
			RequiredSteps:       field(row, "required_steps"),
			CommonMisconception: field(row, "common_misconception"),
			Stimulus:            field(row, "stimulus"),
			QuestionStem:        field(row, "question_stem"),
		}
		for i, slot := range optionSlots {
			rec.Options[i] = field(row, "option_"+slot)
			rec.DistractorPatterns[i] = field(row, "distractor_pattern_"+slot)
			rec.DistractorRationales[i] = field(row, "distractor_rationale_"+slot)
		}
		records = append(records, rec)
	}
	return records, nil
}
