package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type attendanceReaderStub struct {
	rows      []models.AttendanceRow
	records   []models.AttendanceRecord
	counts    models.AttendanceCounts
	err       error
	queries   []models.AttendanceQuery
	since     *time.Time
	listFrom  time.Time
	listTo    time.Time
	listClass *int64
}

func (s *attendanceReaderStub) ListRows(ctx context.Context, q models.AttendanceQuery) ([]models.AttendanceRow, error) {
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}
	var out []models.AttendanceRow
	for _, row := range s.rows {
		if q.TeacherID != "" && row.TeacherID != q.TeacherID {
			continue
		}
		if q.RestrictStudents && !containsString(q.StudentIDs, row.StudentID) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *attendanceReaderStub) ListRecords(ctx context.Context, from, to time.Time, classID *int64) ([]models.AttendanceRecord, error) {
	s.listFrom, s.listTo, s.listClass = from, to, classID
	return s.records, s.err
}

func (s *attendanceReaderStub) CountForStudent(ctx context.Context, studentID string, since *time.Time) (models.AttendanceCounts, error) {
	s.since = since
	return s.counts, s.err
}

type childResolverStub struct {
	children map[string][]string
	err      error
	calls    int
}

func (s *childResolverStub) ChildIDs(ctx context.Context, parentID string) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.children[parentID], nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func boolRef(v bool) *bool { return &v }

func reportRow(studentID, teacherID, class, subject, name string, date time.Time, present *bool) models.AttendanceRow {
	return models.AttendanceRow{
		AttendanceRecord: models.AttendanceRecord{StudentID: studentID, LessonID: 1, Date: date, Present: present},
		TeacherID:        teacherID,
		ClassName:        class,
		SubjectName:      subject,
		StudentName:      name,
	}
}

func newReportService(reader *attendanceReaderStub, children *childResolverStub) *AttendanceReportService {
	svc := NewAttendanceReportService(reader, children, nil, nil, nil, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestClassSummaryAdminDefaultsToCurrentMonth(t *testing.T) {
	day := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	reader := &attendanceReaderStub{rows: []models.AttendanceRow{
		reportRow("s1", "t1", "5A", "Math", "Ada", day, boolRef(true)),
		reportRow("s2", "t1", "5A", "Math", "Alan", day, boolRef(false)),
		reportRow("s3", "t1", "5A", "Math", "Grace", day, boolRef(true)),
	}}
	svc := newReportService(reader, &childResolverStub{})

	resp, err := svc.ClassSummary(context.Background(), models.Identity{UserID: "a1", Role: models.RoleAdmin}, ClassSummaryRequest{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), resp.From)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC), resp.To)
	require.Len(t, resp.Classes, 1)
	assert.Equal(t, 2, resp.Classes[0].Dates[0].Subjects[0].PresentCount)
	assert.Equal(t, 1, resp.Classes[0].Dates[0].Subjects[0].AbsentCount)
	assert.Equal(t, 3, resp.Total)

	require.Len(t, reader.queries, 1)
	assert.True(t, reader.queries[0].Descending)
	assert.Empty(t, reader.queries[0].TeacherID)
	assert.False(t, reader.queries[0].RestrictStudents)
}

func TestClassSummaryTeacherScopedToOwnLessons(t *testing.T) {
	day := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	reader := &attendanceReaderStub{rows: []models.AttendanceRow{
		reportRow("s1", "t1", "5A", "Math", "Ada", day, boolRef(true)),
		reportRow("s2", "t2", "6B", "Art", "Alan", day, boolRef(true)),
	}}
	svc := newReportService(reader, &childResolverStub{})

	resp, err := svc.ClassSummary(context.Background(), models.Identity{UserID: "t1", Role: models.RoleTeacher}, ClassSummaryRequest{Sort: "asc"})
	require.NoError(t, err)
	require.Len(t, resp.Classes, 1)
	assert.Equal(t, "5A", resp.Classes[0].ClassName)
	assert.Equal(t, "t1", reader.queries[0].TeacherID)
	assert.False(t, reader.queries[0].Descending)
}

func TestClassSummaryOtherRolesGetEmpty(t *testing.T) {
	reader := &attendanceReaderStub{}
	svc := newReportService(reader, &childResolverStub{})

	for _, identity := range []models.Identity{
		{UserID: "s1", Role: models.RoleStudent},
		{UserID: "p1", Role: models.RoleParent},
		{UserID: "acc", Role: models.RoleAccountant},
		{},
	} {
		resp, err := svc.ClassSummary(context.Background(), identity, ClassSummaryRequest{})
		require.NoError(t, err)
		assert.NotNil(t, resp.Classes)
		assert.Empty(t, resp.Classes)
	}
	assert.Empty(t, reader.queries)
}

func TestClassSummaryValidation(t *testing.T) {
	svc := newReportService(&attendanceReaderStub{}, &childResolverStub{})
	admin := models.Identity{UserID: "a1", Role: models.RoleAdmin}

	_, err := svc.ClassSummary(context.Background(), admin, ClassSummaryRequest{Sort: "sideways"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.ClassSummary(context.Background(), admin, ClassSummaryRequest{From: &from, To: &to})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestClassSummaryPropagatesPersistenceErrors(t *testing.T) {
	svc := newReportService(&attendanceReaderStub{err: errors.New("db down")}, &childResolverStub{})

	_, err := svc.ClassSummary(context.Background(), models.Identity{UserID: "a1", Role: models.RoleAdmin}, ClassSummaryRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestStudentRecordsStudentSeesOwn(t *testing.T) {
	day := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	reader := &attendanceReaderStub{rows: []models.AttendanceRow{
		reportRow("s1", "t1", "5A", "Math", "Ada", day, boolRef(true)),
		reportRow("s2", "t1", "5A", "Math", "Alan", day, boolRef(false)),
	}}
	svc := newReportService(reader, &childResolverStub{})

	resp, err := svc.StudentRecords(context.Background(), models.Identity{UserID: "s1", Role: models.RoleStudent}, StudentRecordsRequest{StudentName: "alan"})
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "s1", resp.Records[0].StudentID)
	assert.Equal(t, "Mon, Mar 4, 2024", resp.Records[0].DateLabel)
	assert.Equal(t, []string{"s1"}, reader.queries[0].StudentIDs)
}

func TestStudentRecordsParentIsolation(t *testing.T) {
	day := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	reader := &attendanceReaderStub{rows: []models.AttendanceRow{
		reportRow("s1", "t1", "5A", "Math", "Ada", day, boolRef(true)),
		reportRow("s2", "t1", "5A", "Math", "Alan", day, boolRef(false)),
		reportRow("s3", "t1", "5A", "Math", "Grace", day, boolRef(true)),
	}}
	children := &childResolverStub{children: map[string][]string{"p1": {"s1", "s2"}, "p2": {"s3"}}}
	svc := newReportService(reader, children)

	resp, err := svc.StudentRecords(context.Background(), models.Identity{UserID: "p1", Role: models.RoleParent}, StudentRecordsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Records, 2)
	for _, rec := range resp.Records {
		assert.NotEqual(t, "s3", rec.StudentID)
	}
	require.Len(t, reader.queries, 1)
	assert.True(t, reader.queries[0].RestrictStudents)
	assert.ElementsMatch(t, []string{"s1", "s2"}, reader.queries[0].StudentIDs)

	filtered, err := svc.StudentRecords(context.Background(), models.Identity{UserID: "p1", Role: models.RoleParent}, StudentRecordsRequest{StudentName: "ALAN"})
	require.NoError(t, err)
	require.Len(t, filtered.Records, 1)
	assert.Equal(t, "s2", filtered.Records[0].StudentID)
}

func TestStudentRecordsParentWithoutChildrenSkipsQuery(t *testing.T) {
	reader := &attendanceReaderStub{rows: []models.AttendanceRow{reportRow("s3", "t1", "5A", "Math", "Grace", time.Now(), boolRef(true))}}
	svc := newReportService(reader, &childResolverStub{children: map[string][]string{}})

	resp, err := svc.StudentRecords(context.Background(), models.Identity{UserID: "p9", Role: models.RoleParent}, StudentRecordsRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Records)
	assert.Empty(t, reader.queries)
}

func TestStudentRecordsStaffGetEmpty(t *testing.T) {
	reader := &attendanceReaderStub{}
	svc := newReportService(reader, &childResolverStub{})

	resp, err := svc.StudentRecords(context.Background(), models.Identity{UserID: "t1", Role: models.RoleTeacher}, StudentRecordsRequest{})
	require.NoError(t, err)
	assert.NotNil(t, resp.Records)
	assert.Empty(t, resp.Records)
	assert.Empty(t, reader.queries)
}

func TestStudentRecordsChildLookupFailure(t *testing.T) {
	svc := newReportService(&attendanceReaderStub{}, &childResolverStub{err: errors.New("timeout")})

	_, err := svc.StudentRecords(context.Background(), models.Identity{UserID: "p1", Role: models.RoleParent}, StudentRecordsRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestRatio(t *testing.T) {
	reader := &attendanceReaderStub{counts: models.AttendanceCounts{Total: 20, Present: 17}}
	svc := newReportService(reader, &childResolverStub{})

	resp, err := svc.Ratio(context.Background(), models.Identity{UserID: "t1", Role: models.RoleTeacher}, "s1", true)
	require.NoError(t, err)
	assert.Equal(t, "ytd", resp.Period)
	assert.Equal(t, 85, resp.Percentage)
	assert.InDelta(t, 8.5, resp.Score, 1e-9)
	require.NotNil(t, reader.since)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *reader.since)
}

func TestRatioZeroRecords(t *testing.T) {
	svc := newReportService(&attendanceReaderStub{}, &childResolverStub{})

	resp, err := svc.Ratio(context.Background(), models.Identity{UserID: "s1", Role: models.RoleStudent}, "s1", false)
	require.NoError(t, err)
	assert.Equal(t, "all", resp.Period)
	assert.Equal(t, 0, resp.Percentage)
	assert.Equal(t, 0.0, resp.Score)
}

func TestRatioAccessControl(t *testing.T) {
	children := &childResolverStub{children: map[string][]string{"p1": {"s1"}}}
	svc := newReportService(&attendanceReaderStub{}, children)

	_, err := svc.Ratio(context.Background(), models.Identity{UserID: "s2", Role: models.RoleStudent}, "s1", false)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Ratio(context.Background(), models.Identity{UserID: "p1", Role: models.RoleParent}, "s1", false)
	assert.NoError(t, err)

	_, err = svc.Ratio(context.Background(), models.Identity{UserID: "p1", Role: models.RoleParent}, "s3", false)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Ratio(context.Background(), models.Identity{UserID: "acc", Role: models.RoleAccountant}, "s1", false)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestWeeklyOverview(t *testing.T) {
	monday := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	reader := &attendanceReaderStub{records: []models.AttendanceRecord{
		{Date: monday, Present: boolRef(true)},
		{Date: monday.Add(24 * time.Hour), Present: nil},
	}}
	svc := newReportService(reader, &childResolverStub{})
	classID := int64(5)

	resp, err := svc.WeeklyOverview(context.Background(), &classID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), resp.WeekStart)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), reader.listFrom)
	assert.Equal(t, time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC), reader.listTo)
	assert.Equal(t, &classID, reader.listClass)
	require.Len(t, resp.Days, 7)
	assert.Equal(t, 1, resp.Days[1].Present)
	assert.Equal(t, 1, resp.Days[2].Absent)
}

func TestExportClassSummary(t *testing.T) {
	day := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	reader := &attendanceReaderStub{rows: []models.AttendanceRow{
		reportRow("s1", "t1", "5A", "Math", "Ada", day, boolRef(true)),
		reportRow("s2", "t1", "5A", "Math", "Alan", day, boolRef(false)),
	}}
	svc := newReportService(reader, &childResolverStub{})
	admin := models.Identity{UserID: "a1", Role: models.RoleAdmin}

	file, err := svc.ExportClassSummary(context.Background(), admin, ClassSummaryRequest{}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "attendance-summary-20240301-20240331.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "Class,Date,Subject,Present,Absent\n5A,2024-03-04,Math,1,1\n", string(file.Data))

	pdf, err := svc.ExportClassSummary(context.Background(), admin, ClassSummaryRequest{}, "PDF")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf.Data, []byte("%PDF")))

	_, err = svc.ExportClassSummary(context.Background(), admin, ClassSummaryRequest{}, "docx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
