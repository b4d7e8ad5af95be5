package user

import (
	"time"

	"gorm.io/gorm"
)

// User 定义了主体在数据库中的持久化模型。
// 认证机制本身由外部负责，这里只保留投票系统需要的主体句柄。
type User struct {
	// UUID 是用户的主键，来自客户端Cookie。
	UUID string `gorm:"primarykey;type:varchar(36)"`

	// IsAdmin 标记该用户是否拥有管理员权限（可写入问题与选项）。
	IsAdmin bool

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// SetupDatabase 迁移本模块的表结构。
func SetupDatabase(db *gorm.DB) error {
	return db.AutoMigrate(&User{})
}
