package models

import "time"

// Course is a degree programme that sections belong to. Codes are stored upper case.
type Course struct {
	ID        int64     `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures filters for listing courses.
type CourseFilter struct {
	Search   string
	Page     int
	PageSize int
}
