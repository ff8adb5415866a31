package corpus

import (
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const sampleCSV = `item_id,skill,topic,difficulty,required_steps,common_misconception,stimulus,question_stem,option_a,option_b,option_c,option_d,distractor_pattern_a,distractor_rationale_a,distractor_pattern_b,distractor_rationale_b,distractor_pattern_c,distractor_rationale_c,distractor_pattern_d,distractor_rationale_d
Q1,Algebra,Equations,easy,Isolate the variable,Confuses sign,Stim 1,Solve for x,1,2,3,4,Sign Error,Forgot negative,,,,,,
Q2,Algebra,Inequalities,hard,,Misreads inequality,Stim 2,Which holds?,a,b,c,d,,,,,,,,
Q3,,Reading,medium,,,Orphan stim,Orphan stem,w,x,y,z,,,,,,,,
`

func TestReadCSV(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}

	first := records[0]
	if first.ItemID != "Q1" || first.Skill != "Algebra" || first.Topic != "Equations" {
		t.Errorf("first record = %+v", first)
	}
	if first.Options != [4]string{"1", "2", "3", "4"} {
		t.Errorf("options = %v", first.Options)
	}
	if first.DistractorPatterns[0] != "Sign Error" || first.DistractorRationales[0] != "Forgot negative" {
		t.Errorf("distractor slot a = %q / %q", first.DistractorPatterns[0], first.DistractorRationales[0])
	}

	if records[2].Skill != "" {
		t.Errorf("third record skill = %q, want empty", records[2].Skill)
	}
}

func TestReadCSV_MissingColumns(t *testing.T) {
	records, err := ReadCSV(strings.NewReader("skill,stimulus\nAlgebra,Some stimulus\n"))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].QuestionStem != "" || records[0].Options[0] != "" {
		t.Errorf("missing columns should be empty, got %+v", records[0])
	}
}

func TestReadCSV_NoHeader(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Fatal("ReadCSV() should fail on empty input")
	}
}

func TestReadXLSX_MatchesCSV(t *testing.T) {
	csvRecords, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	// Build an equivalent workbook in memory.
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetList()[0]
	for i, line := range strings.Split(strings.TrimSpace(sampleCSV), "\n") {
		cells := strings.Split(line, ",")
		row := make([]any, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	xlsxRecords, err := ReadXLSX(buf)
	if err != nil {
		t.Fatalf("ReadXLSX() error = %v", err)
	}

	if len(xlsxRecords) != len(csvRecords) {
		t.Fatalf("xlsx records = %d, csv records = %d", len(xlsxRecords), len(csvRecords))
	}
	for i := range csvRecords {
		if xlsxRecords[i] != csvRecords[i] {
			t.Errorf("record %d differs:\n xlsx: %+v\n csv:  %+v", i, xlsxRecords[i], csvRecords[i])
		}
	}
}
