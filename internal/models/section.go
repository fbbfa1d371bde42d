package models

import "time"

// Section is a student cohort attending classes together.
type Section struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Year       int       `db:"year" json:"year"`
	CourseID   int64     `db:"course_id" json:"course_id"`
	CourseCode string    `db:"course_code" json:"course_code"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SectionFilter captures filters for listing sections. Course matches the course code.
type SectionFilter struct {
	Year     int
	CourseID int64
	Course   string
	Search   string
	Page     int
	PageSize int
}
