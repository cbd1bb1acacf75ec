package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Password  string    `json:"-"`
	Role      string    `gorm:"default:'user'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session backs a signed session cookie. Deleting the row logs the user out
// even while the token itself is still within its expiry.
type Session struct {
	ID        string    `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"index" json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Video struct {
	ID         uint        `gorm:"primary_key" json:"id"`
	Filename   string      `json:"filename"`
	Path       string      `gorm:"index" json:"filepath"`
	Size       int64       `json:"size"`
	URL        string      `json:"url,omitempty"`
	UserID     uint        `gorm:"index" json:"user_id"`
	Detections []Detection `json:"detections,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Detection is one completed analysis run over a Video.
type Detection struct {
	ID                uint      `gorm:"primary_key" json:"id"`
	VideoID           uint      `gorm:"index" json:"video_id"`
	Threshold         float64   `json:"threshold"`
	TotalFrames       int       `json:"total_frames"`
	ViolenceCount     int       `json:"violence_count"`
	AverageConfidence float64   `json:"average_confidence"`
	BestConfidence    float64   `json:"best_confidence"`
	BestTimestamp     string    `json:"best_timestamp"`
	BestFrame         string    `json:"best_frame,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
