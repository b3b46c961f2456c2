// Package attendance turns scoped attendance rows into report views.
package attendance

import (
	"sort"
	"strings"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// DateKeyLayout formats the calendar day a record belongs to.
const DateKeyLayout = "2006-01-02"

// SortOrder selects the date ordering inside each class.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts asc or desc and defaults to desc.
func ParseSortOrder(raw string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(raw), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// SummaryOptions tunes BuildClassSummary.
type SummaryOptions struct {
	Order       SortOrder
	ClassFilter string
}

// SubjectTally is the tally of one subject on one date.
type SubjectTally struct {
	Subject string `json:"subject"`
	models.Tally
}

// DateSummary groups subject tallies recorded on one date.
type DateSummary struct {
	Date     string         `json:"date"`
	Subjects []SubjectTally `json:"subjects"`
}

// ClassSummaryEntry holds every date recorded for one class.
type ClassSummaryEntry struct {
	ClassName string        `json:"class_name"`
	Dates     []DateSummary `json:"dates"`
}

// ClassSummary is the class → date → subject tally matrix.
type ClassSummary struct {
	Classes []ClassSummaryEntry `json:"classes"`
}

// Total returns the number of explicit marks counted in the summary.
func (s *ClassSummary) Total() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, class := range s.Classes {
		for _, date := range class.Dates {
			for _, subject := range date.Subjects {
				total += subject.PresentCount + subject.AbsentCount
			}
		}
	}
	return total
}

// Empty reports whether the summary has no classes.
func (s *ClassSummary) Empty() bool {
	return s == nil || len(s.Classes) == 0
}

// BuildClassSummary tallies rows by class, date and subject. Rows with a nil Present
// contribute to neither count. Classes and subjects keep first-appearance order; dates are
// ordered by opts.Order.
func BuildClassSummary(rows []models.AttendanceRow, opts SummaryOptions) *ClassSummary {
	filter := strings.ToLower(strings.TrimSpace(opts.ClassFilter))

	summary := &ClassSummary{Classes: []ClassSummaryEntry{}}
	classIdx := map[string]int{}
	dateIdx := map[string]map[string]int{}
	subjectIdx := map[string]map[string]map[string]int{}

	for _, row := range rows {
		if filter != "" && !strings.Contains(strings.ToLower(row.ClassName), filter) {
			continue
		}

		ci, ok := classIdx[row.ClassName]
		if !ok {
			ci = len(summary.Classes)
			classIdx[row.ClassName] = ci
			dateIdx[row.ClassName] = map[string]int{}
			subjectIdx[row.ClassName] = map[string]map[string]int{}
			summary.Classes = append(summary.Classes, ClassSummaryEntry{ClassName: row.ClassName})
		}
		class := &summary.Classes[ci]

		key := row.Date.Format(DateKeyLayout)
		di, ok := dateIdx[row.ClassName][key]
		if !ok {
			di = len(class.Dates)
			dateIdx[row.ClassName][key] = di
			subjectIdx[row.ClassName][key] = map[string]int{}
			class.Dates = append(class.Dates, DateSummary{Date: key})
		}
		date := &class.Dates[di]

		si, ok := subjectIdx[row.ClassName][key][row.SubjectName]
		if !ok {
			si = len(date.Subjects)
			subjectIdx[row.ClassName][key][row.SubjectName] = si
			date.Subjects = append(date.Subjects, SubjectTally{Subject: row.SubjectName})
		}

		if row.Present == nil {
			continue
		}
		if *row.Present {
			date.Subjects[si].PresentCount++
		} else {
			date.Subjects[si].AbsentCount++
		}
	}

	for i := range summary.Classes {
		dates := summary.Classes[i].Dates
		sort.SliceStable(dates, func(a, b int) bool {
			if opts.Order == SortAsc {
				return dates[a].Date < dates[b].Date
			}
			return dates[a].Date > dates[b].Date
		})
	}

	return summary
}
