package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

func row(studentID, teacherID string) models.AttendanceRow {
	return models.AttendanceRow{
		AttendanceRecord: models.AttendanceRecord{StudentID: studentID},
		TeacherID:        teacherID,
	}
}

func TestFromIdentity(t *testing.T) {
	cases := []struct {
		name   string
		userID string
		role   models.UserRole
		want   Scope
		ok     bool
	}{
		{"admin", "u1", models.RoleAdmin, Admin{}, true},
		{"teacher", "t1", models.RoleTeacher, Teacher{TeacherID: "t1"}, true},
		{"student", "s1", models.RoleStudent, Student{StudentID: "s1"}, true},
		{"parent", "p1", models.RoleParent, Parent{ParentID: "p1"}, true},
		{"accountant", "a1", models.RoleAccountant, nil, false},
		{"missing user", "", models.RoleAdmin, nil, false},
		{"unknown role", "x", models.UserRole("janitor"), nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FromIdentity(tc.userID, tc.role)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPredicateForAdmin(t *testing.T) {
	p := PredicateFor(Admin{})
	assert.True(t, p.Unrestricted())
	assert.True(t, p.Allows(row("s1", "t1")))
}

func TestPredicateForTeacher(t *testing.T) {
	p := PredicateFor(Teacher{TeacherID: "t1"})
	assert.True(t, p.Allows(row("s1", "t1")))
	assert.False(t, p.Allows(row("s1", "t2")))
}

func TestPredicateForStudent(t *testing.T) {
	p := PredicateFor(Student{StudentID: "s1"})
	assert.True(t, p.StudentRestricted)
	assert.True(t, p.Allows(row("s1", "t9")))
	assert.False(t, p.Allows(row("s2", "t9")))
}

func TestPredicateForParentIsolation(t *testing.T) {
	parent := Parent{ParentID: "p1"}.WithChildren([]string{"c1", "c2"})
	p := PredicateFor(parent)

	assert.True(t, p.StudentRestricted)
	assert.True(t, p.Allows(row("c1", "t1")))
	assert.True(t, p.Allows(row("c2", "t2")))
	assert.False(t, p.Allows(row("someone-else", "t1")))
}

func TestPredicateForParentWithoutChildrenMatchesNone(t *testing.T) {
	p := PredicateFor(Parent{ParentID: "p1"})
	assert.True(t, p.MatchesNone())
	assert.False(t, p.Allows(row("p1", "t1")))
}

func TestWithChildrenCopies(t *testing.T) {
	ids := []string{"c1"}
	parent := Parent{ParentID: "p1"}.WithChildren(ids)
	ids[0] = "mutated"
	assert.Equal(t, []string{"c1"}, parent.ChildIDs)
}

func TestApply(t *testing.T) {
	q := PredicateFor(Student{StudentID: "s1"}).Apply(models.AttendanceQuery{Descending: true})
	assert.True(t, q.RestrictStudents)
	assert.Equal(t, []string{"s1"}, q.StudentIDs)
	assert.True(t, q.Descending)
	assert.Empty(t, q.TeacherID)
}
