// Package report exports a finished interview as a spreadsheet.
package report

import (
	"fmt"
	"io"
	"strings"

	"interview-gateway/internal/domain/entity"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet   = "Summary"
	questionsSheet = "Questions"
)

var questionHeaders = []string{"#", "Question", "Type", "Difficulty", "Skills", "Answer", "Score", "Feedback"}

// ExcelRenderer writes an .xlsx workbook with a summary sheet and one row per question.
type ExcelRenderer struct{}

func NewExcelRenderer() *ExcelRenderer {
	return &ExcelRenderer{}
}

func (r *ExcelRenderer) Render(w io.Writer, session *entity.InterviewSession, analysis *entity.JobAnalysis, questions []entity.Question) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(questionsSheet); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	if err := writeSummary(f, header, session, analysis, questions); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeQuestions(f, header, wrap, questions); err != nil {
		return fmt.Errorf("failed to create questions sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, header int, session *entity.InterviewSession, analysis *entity.JobAnalysis, questions []entity.Question) error {
	answered, total := 0, 0
	for _, q := range questions {
		if q.Answered() {
			answered++
			total += *q.Score
		}
	}
	average := "-"
	if answered > 0 {
		average = fmt.Sprintf("%.1f / 10", float64(total)/float64(answered))
	}

	rows := [][2]any{
		{"Interview Report", ""},
		{"Role", analysis.RoleTitle},
		{"Company", analysis.Company},
		{"Seniority", string(analysis.SeniorityLevel)},
		{"Interview type", string(session.InterviewType)},
		{"Started", session.StartedAt.Format("2006-01-02 15:04")},
		{"Questions answered", fmt.Sprintf("%d of %d", answered, len(questions))},
		{"Average score", average},
		{"Key skills", strings.Join(analysis.Skills, ", ")},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &[]any{row[0], row[1]}); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", header); err != nil {
		return err
	}
	if err := f.MergeCell(summarySheet, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "B", "B", 60)
}

func writeQuestions(f *excelize.File, header, wrap int, questions []entity.Question) error {
	cols := make([]any, len(questionHeaders))
	for i, h := range questionHeaders {
		cols[i] = h
	}
	if err := f.SetSheetRow(questionsSheet, "A1", &cols); err != nil {
		return err
	}
	if err := f.SetCellStyle(questionsSheet, "A1", "H1", header); err != nil {
		return err
	}

	for i, q := range questions {
		var score any = ""
		if q.Score != nil {
			score = *q.Score
		}
		row := []any{
			q.OrderIndex + 1,
			q.Text,
			string(q.Type),
			string(q.Difficulty),
			strings.Join(q.SkillTags, ", "),
			q.UserAnswer,
			score,
			q.Feedback,
		}
		if err := f.SetSheetRow(questionsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	if len(questions) > 0 {
		if err := f.SetCellStyle(questionsSheet, "B2", fmt.Sprintf("H%d", len(questions)+1), wrap); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 5, "B": 60, "C": 12, "D": 12, "E": 30, "F": 60, "G": 8, "H": 60}
	for col, width := range widths {
		if err := f.SetColWidth(questionsSheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}
