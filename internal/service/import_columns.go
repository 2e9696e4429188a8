package service

import (
	"strconv"
	"strings"
	"unicode"
)

type importField string

const (
	fieldQuestionText importField = "question_text"
	fieldAnswer1      importField = "answer1"
	fieldAnswer2      importField = "answer2"
	fieldAnswer3      importField = "answer3"
	fieldAnswer4      importField = "answer4"
	fieldCorrect      importField = "correct_answer"

	fieldNationalID    importField = "national_id"
	fieldFullName      importField = "full_name"
	fieldStudentNumber importField = "student_number"
)

// columnAlias lists the accepted header spellings of one canonical field, in priority order.
type columnAlias struct {
	Field   importField
	Aliases []string
}

var questionColumns = []columnAlias{
	{fieldQuestionText, []string{"question_text", "question", "السؤال", "نص السؤال"}},
	{fieldAnswer1, []string{"answer1", "it1", "a", "option1", "الإجابة 1"}},
	{fieldAnswer2, []string{"answer2", "it2", "b", "option2", "الإجابة 2"}},
	{fieldAnswer3, []string{"answer3", "it3", "c", "option3", "الإجابة 3"}},
	{fieldAnswer4, []string{"answer4", "it4", "d", "option4", "الإجابة 4"}},
	{fieldCorrect, []string{"correct_answer", "correct", "answer", "الإجابة الصحيحه", "الإجابة الصحيحة"}},
}

var answerFields = []importField{fieldAnswer1, fieldAnswer2, fieldAnswer3, fieldAnswer4}

var studentColumns = []columnAlias{
	{fieldNationalID, []string{"national_id", "national id", "nid", "الرقم القومي", "الرقم الوطني"}},
	{fieldFullName, []string{"full_name", "name", "student_name", "الاسم", "اسم الطالب"}},
	{fieldStudentNumber, []string{"student_number", "number", "student_no", "رقم الطالب", "رقم الجلوس"}},
}

// correctMarkers maps a correct-answer cell to the zero-based answer column it names.
var correctMarkers = map[string]int{
	"a": 0, "1": 0, "أ": 0,
	"b": 1, "2": 1, "ب": 1,
	"c": 2, "3": 2, "ج": 2,
	"d": 3, "4": 3, "د": 3,
}

// normalizeHeader lowercases and drops whitespace and underscores so "Question Text",
// "question_text" and " QUESTION_TEXT " compare equal.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsSpace(r) || r == '_' || r == '\u200f' || r == '\u200e' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// resolveColumns maps each canonical field to a header column index. For every field the
// aliases are tried in order and the first one present in the header wins.
func resolveColumns(header []string, table []columnAlias) map[importField]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	columns := make(map[importField]int, len(table))
	claimed := make(map[int]bool, len(table))
	for _, entry := range table {
		for _, alias := range entry.Aliases {
			col, ok := index[normalizeHeader(alias)]
			if ok && !claimed[col] {
				columns[entry.Field] = col
				claimed[col] = true
				break
			}
		}
	}
	return columns
}

func cell(row []string, columns map[importField]int, field importField) string {
	col, ok := columns[field]
	if !ok || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// parseCorrectMarker resolves letters, Arabic letters and 1-based numbers to an answer index.
func parseCorrectMarker(raw string) (int, bool) {
	marker := strings.ToLower(strings.TrimSpace(raw))
	if idx, ok := correctMarkers[marker]; ok {
		return idx, true
	}
	if f, err := strconv.ParseFloat(marker, 64); err == nil && f == float64(int(f)) {
		n := int(f)
		if n >= 1 && n <= len(answerFields) {
			return n - 1, true
		}
	}
	return 0, false
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
