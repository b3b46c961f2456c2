package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

func boolPtr(v bool) *bool { return &v }

func attendanceRow(class, subject string, date time.Time, present *bool) models.AttendanceRow {
	return models.AttendanceRow{
		AttendanceRecord: models.AttendanceRecord{Date: date, Present: present},
		ClassName:        class,
		SubjectName:      subject,
	}
}

func TestBuildClassSummaryTalliesBySubject(t *testing.T) {
	day := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	rows := []models.AttendanceRow{
		attendanceRow("5A", "Math", day, boolPtr(true)),
		attendanceRow("5A", "Math", day, boolPtr(true)),
		attendanceRow("5A", "Math", day, boolPtr(false)),
	}

	summary := BuildClassSummary(rows, SummaryOptions{})
	require.Len(t, summary.Classes, 1)
	assert.Equal(t, "5A", summary.Classes[0].ClassName)
	require.Len(t, summary.Classes[0].Dates, 1)
	assert.Equal(t, "2024-03-04", summary.Classes[0].Dates[0].Date)
	assert.Equal(t, []SubjectTally{{Subject: "Math", Tally: models.Tally{PresentCount: 2, AbsentCount: 1}}}, summary.Classes[0].Dates[0].Subjects)
}

func TestBuildClassSummaryIgnoresNilPresent(t *testing.T) {
	day := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	rows := []models.AttendanceRow{
		attendanceRow("5A", "Math", day, boolPtr(true)),
		attendanceRow("5A", "Math", day, nil),
		attendanceRow("5A", "Art", day, nil),
	}

	summary := BuildClassSummary(rows, SummaryOptions{})
	subjects := summary.Classes[0].Dates[0].Subjects
	require.Len(t, subjects, 2)
	assert.Equal(t, models.Tally{PresentCount: 1}, subjects[0].Tally)
	assert.Equal(t, models.Tally{}, subjects[1].Tally)
	assert.Equal(t, 1, summary.Total())
}

func TestBuildClassSummaryConservesMarks(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	classes := []string{"5A", "5B", "6A"}
	subjects := []string{"Math", "Science"}
	var rows []models.AttendanceRow
	explicit := 0
	for i := 0; i < 60; i++ {
		var present *bool
		switch i % 3 {
		case 0:
			present = boolPtr(true)
			explicit++
		case 1:
			present = boolPtr(false)
			explicit++
		}
		rows = append(rows, attendanceRow(classes[i%len(classes)], subjects[i%len(subjects)], base.AddDate(0, 0, i%5), present))
	}

	summary := BuildClassSummary(rows, SummaryOptions{Order: SortAsc})
	assert.Equal(t, explicit, summary.Total())
}

func TestBuildClassSummaryOrdering(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	d3 := time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC)
	rows := []models.AttendanceRow{
		attendanceRow("6B", "Math", d2, boolPtr(true)),
		attendanceRow("5A", "Science", d1, boolPtr(true)),
		attendanceRow("6B", "Math", d3, boolPtr(false)),
		attendanceRow("6B", "History", d2, boolPtr(true)),
		attendanceRow("6B", "Math", d1, boolPtr(true)),
	}

	asc := BuildClassSummary(rows, SummaryOptions{Order: SortAsc})
	require.Len(t, asc.Classes, 2)
	assert.Equal(t, "6B", asc.Classes[0].ClassName)
	assert.Equal(t, "5A", asc.Classes[1].ClassName)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, dateKeys(asc.Classes[0]))
	assert.Equal(t, "Math", asc.Classes[0].Dates[1].Subjects[0].Subject)
	assert.Equal(t, "History", asc.Classes[0].Dates[1].Subjects[1].Subject)

	desc := BuildClassSummary(rows, SummaryOptions{Order: SortDesc})
	assert.Equal(t, []string{"2024-03-03", "2024-03-02", "2024-03-01"}, dateKeys(desc.Classes[0]))

	again := BuildClassSummary(rows, SummaryOptions{Order: SortDesc})
	assert.Equal(t, desc, again)
}

func TestBuildClassSummaryClassFilter(t *testing.T) {
	day := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	rows := []models.AttendanceRow{
		attendanceRow("Grade 5A", "Math", day, boolPtr(true)),
		attendanceRow("Grade 6B", "Math", day, boolPtr(true)),
	}

	summary := BuildClassSummary(rows, SummaryOptions{ClassFilter: "5a"})
	require.Len(t, summary.Classes, 1)
	assert.Equal(t, "Grade 5A", summary.Classes[0].ClassName)

	none := BuildClassSummary(rows, SummaryOptions{ClassFilter: "7"})
	assert.True(t, none.Empty())
	assert.NotNil(t, none.Classes)
}

func TestBuildClassSummaryDateKeyUsesRowLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	late := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC).In(jakarta)
	summary := BuildClassSummary([]models.AttendanceRow{attendanceRow("5A", "Math", late, boolPtr(true))}, SummaryOptions{})
	assert.Equal(t, "2024-03-05", summary.Classes[0].Dates[0].Date)
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortAsc, ParseSortOrder("ASC"))
	assert.Equal(t, SortDesc, ParseSortOrder("desc"))
	assert.Equal(t, SortDesc, ParseSortOrder(""))
	assert.Equal(t, SortDesc, ParseSortOrder("sideways"))
}

func dateKeys(entry ClassSummaryEntry) []string {
	keys := make([]string, len(entry.Dates))
	for i, d := range entry.Dates {
		keys[i] = d.Date
	}
	return keys
}
