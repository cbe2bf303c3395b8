package entities

import "time"

// VideoSession models the persisted representation of a video session.
// room_name is unique among rows where is_active is true only, so removed
// sessions keep their history without blocking the name.
type VideoSession struct {
	ID        string     `gorm:"type:uuid;primaryKey"`
	TeacherID string     `gorm:"type:varchar(128);not null;index:idx_video_sessions_teacher_status,priority:1"`
	StudentID string     `gorm:"type:varchar(128);not null;index"`
	RoomName  string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_video_sessions_active_room,where:is_active = true"`
	Status    string     `gorm:"type:varchar(16);not null;default:'waiting';index:idx_video_sessions_teacher_status,priority:2"`
	RoomToken string     `gorm:"type:text"`
	StartTime *time.Time `gorm:"type:timestamptz"`
	EndTime   *time.Time `gorm:"type:timestamptz"`
	IsActive  bool       `gorm:"not null;default:true;index"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (VideoSession) TableName() string {
	return "video_sessions"
}
