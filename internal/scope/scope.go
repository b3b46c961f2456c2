// Package scope decides which attendance rows a caller may see.
package scope

import "github.com/noah-isme/school-dashboard-api/internal/models"

// Scope is one of Admin, Teacher, Student or Parent.
type Scope interface {
	scope()
}

// Admin sees every row.
type Admin struct{}

// Teacher sees rows of lessons they teach.
type Teacher struct {
	TeacherID string
}

// Student sees their own rows.
type Student struct {
	StudentID string
}

// Parent sees rows of their children. ChildIDs is resolved by the caller before querying.
type Parent struct {
	ParentID string
	ChildIDs []string
}

func (Admin) scope()   {}
func (Teacher) scope() {}
func (Student) scope() {}
func (Parent) scope()  {}

// WithChildren returns a copy of the parent scope bound to the given child ids.
func (p Parent) WithChildren(ids []string) Parent {
	children := make([]string, len(ids))
	copy(children, ids)
	return Parent{ParentID: p.ParentID, ChildIDs: children}
}

// FromIdentity maps an identity onto a scope. It reports false for a missing user or a role
// without attendance visibility.
func FromIdentity(userID string, role models.UserRole) (Scope, bool) {
	if userID == "" {
		return nil, false
	}
	switch role {
	case models.RoleAdmin:
		return Admin{}, true
	case models.RoleTeacher:
		return Teacher{TeacherID: userID}, true
	case models.RoleStudent:
		return Student{StudentID: userID}, true
	case models.RoleParent:
		return Parent{ParentID: userID}, true
	default:
		return nil, false
	}
}

// Predicate is a storage agnostic row restriction.
type Predicate struct {
	TeacherID string
	// StudentRestricted limits rows to StudentIDs; an empty set then matches nothing.
	StudentRestricted bool
	StudentIDs        []string
}

// PredicateFor derives the restriction for a scope.
func PredicateFor(s Scope) Predicate {
	switch v := s.(type) {
	case Admin:
		return Predicate{}
	case Teacher:
		return Predicate{TeacherID: v.TeacherID}
	case Student:
		return Predicate{StudentRestricted: true, StudentIDs: []string{v.StudentID}}
	case Parent:
		ids := make([]string, len(v.ChildIDs))
		copy(ids, v.ChildIDs)
		return Predicate{StudentRestricted: true, StudentIDs: ids}
	default:
		return Predicate{StudentRestricted: true}
	}
}

// Unrestricted reports whether the predicate admits every row.
func (p Predicate) Unrestricted() bool {
	return p.TeacherID == "" && !p.StudentRestricted
}

// MatchesNone reports whether no row can satisfy the predicate.
func (p Predicate) MatchesNone() bool {
	return p.StudentRestricted && len(p.StudentIDs) == 0
}

// Allows evaluates the predicate against a single row.
func (p Predicate) Allows(row models.AttendanceRow) bool {
	if p.TeacherID != "" && row.TeacherID != p.TeacherID {
		return false
	}
	if !p.StudentRestricted {
		return true
	}
	for _, id := range p.StudentIDs {
		if id == row.StudentID {
			return true
		}
	}
	return false
}

// Apply copies the predicate onto a repository query.
func (p Predicate) Apply(q models.AttendanceQuery) models.AttendanceQuery {
	q.TeacherID = p.TeacherID
	q.RestrictStudents = p.StudentRestricted
	q.StudentIDs = p.StudentIDs
	return q
}
