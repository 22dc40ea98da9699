package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userModel struct {
	ID        string    `gorm:"primaryKey;type:text"`
	Email     string    `gorm:"type:text;not null;uniqueIndex:users_email_key"`
	Name      string    `gorm:"type:text;not null"`
	Role      string    `gorm:"type:text;not null;default:'USER';index"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (userModel) TableName() string {
	return "users"
}

func (m *userModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type departmentModel struct {
	ID        string    `gorm:"primaryKey;type:text"`
	Name      string    `gorm:"type:text;not null"`
	Info      string    `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (departmentModel) TableName() string {
	return "departments"
}

func (m *departmentModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Rate は小数点以下 2 桁の文字列です。
type membershipModel struct {
	ID           string    `gorm:"primaryKey;type:text"`
	UserID       string    `gorm:"type:text;not null;uniqueIndex:department_memberships_user_department_key,priority:1"`
	DepartmentID string    `gorm:"type:text;not null;uniqueIndex:department_memberships_user_department_key,priority:2;index"`
	Role         string    `gorm:"type:text;not null;default:'MEMBER'"`
	Rate         string    `gorm:"type:text;not null;default:'0.00'"`
	Position     string    `gorm:"type:text;not null;default:''"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (membershipModel) TableName() string {
	return "department_memberships"
}

func (m *membershipModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type timeEntryModel struct {
	ID           string     `gorm:"primaryKey;type:text"`
	UserID       string     `gorm:"type:text;not null;index:time_entries_user_clock_in_idx,priority:1"`
	DepartmentID string     `gorm:"type:text;not null;index"`
	ClockIn      time.Time  `gorm:"not null;index:time_entries_user_clock_in_idx,priority:2"`
	ClockOut     *time.Time
	Hours        *string    `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime:false"`
}

func (timeEntryModel) TableName() string {
	return "time_entries"
}

func (m *timeEntryModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type scheduleModel struct {
	ID           string    `gorm:"primaryKey;type:text"`
	DepartmentID string    `gorm:"type:text;not null;uniqueIndex:department_schedules_department_week_key,priority:1"`
	WeekStart    time.Time `gorm:"not null;uniqueIndex:department_schedules_department_week_key,priority:2"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (scheduleModel) TableName() string {
	return "department_schedules"
}

func (m *scheduleModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type shiftModel struct {
	ID         string    `gorm:"primaryKey;type:text"`
	ScheduleID string    `gorm:"type:text;not null;index:work_shifts_schedule_user_idx,priority:1"`
	UserID     string    `gorm:"type:text;not null;index:work_shifts_schedule_user_idx,priority:2"`
	DayOfWeek  int       `gorm:"not null;check:day_of_week BETWEEN 0 AND 6"`
	StartTime  time.Time `gorm:"not null"`
	EndTime    time.Time `gorm:"not null"`
	CreatedAt  time.Time
}

func (shiftModel) TableName() string {
	return "work_shifts"
}

func (m *shiftModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
