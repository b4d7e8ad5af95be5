package user

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service 提供主体相关的持久化操作。
type Service struct {
	db *gorm.DB
}

// NewService 创建一个用户服务。
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// IsValidUUID 检查字符串是否是合法的UUID。
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// CreateProvisionalUser 生成一个临时的、尚未持久化的新用户UUID。
// 这个UUID将被设置到cookie中，首次执行写操作时才会被持久化。
func CreateProvisionalUser() (string, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return newUUID.String(), nil
}

// EnsureActivated 将一个临时的UUID持久化到数据库中。
// 用户已存在时为无操作，可以安全地重复调用。
func (s *Service) EnsureActivated(uuidStr string) error {
	newUser := User{UUID: uuidStr}
	if err := s.db.Create(&newUser).Error; err != nil {
		// 记录已存在不是真正的错误
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("无法创建新用户: %w", err)
	}
	return nil
}

// IsAdmin 检查给定的UUID是否拥有管理员权限。
func (s *Service) IsAdmin(uuidStr string) (bool, error) {
	var u User
	err := s.db.Select("uuid", "is_admin").Where("uuid = ?", uuidStr).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("查询用户权限失败: %w", err)
	}
	return u.IsAdmin, nil
}
