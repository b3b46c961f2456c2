package models

// Student is a pupil row as used by attendance forms.
type Student struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Surname  string  `db:"surname" json:"surname"`
	ParentID *string `db:"parent_id" json:"parent_id,omitempty"`
	ClassID  *int64  `db:"class_id" json:"class_id,omitempty"`
}
