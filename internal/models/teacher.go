package models

import "time"

// Teacher represents a faculty member.
type Teacher struct {
	ID           int64     `db:"id" json:"id"`
	EmployeeID   string    `db:"employee_id" json:"employee_id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	MajorSubject string    `db:"major_subject" json:"major_subject"`
	ImageURL     *string   `db:"image_url" json:"image_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
