package models

// SchoolHours holds the opening and closing times as "HH:MM" strings.
type SchoolHours struct {
	OpeningTime string `db:"opening_time" json:"opening_time"`
	ClosingTime string `db:"closing_time" json:"closing_time"`
}
