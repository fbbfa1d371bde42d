package models

import "time"

// Room is a bookable classroom.
type Room struct {
	ID        int64     `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures filters for listing rooms.
type RoomFilter struct {
	Search   string
	Page     int
	PageSize int
}
