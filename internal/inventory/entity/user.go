package entity

import (
	"time"
)

// User 用户实体：后台员工或绑定到单个位置的位置账号
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Username     string     `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:64;not null"`
	PasswordHash string     `json:"-" gorm:"size:128"`
	IsStaff      bool       `json:"is_staff" gorm:"not null;default:false"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// 关联：位置账号至多绑定一个位置
	Location *Location `json:"location,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// OperationLog 操作审计日志（令牌签发/校验、登录等）
type OperationLog struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	UserID    string    `json:"user_id" gorm:"size:32;index"`
	Username  string    `json:"username" gorm:"size:64"`
	Module    string    `json:"module" gorm:"size:32;not null"`
	Action    string    `json:"action" gorm:"size:32;not null"`
	TargetID  string    `json:"target_id" gorm:"size:32"`
	Outcome   string    `json:"outcome" gorm:"size:16;not null"`
	Detail    string    `json:"detail" gorm:"size:256"`
	IP        string    `json:"ip" gorm:"size:64"`
	CreatedAt time.Time `json:"created_at"`
}

func (OperationLog) TableName() string {
	return "operation_logs"
}
