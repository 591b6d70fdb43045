package session

import (
	"context"
	"errors"
	"time"

	"sandwich-bot/internal/core/order"
	"sandwich-bot/internal/pkg/common"
)

// 暫存錯誤
var (
	ErrNotFound  = errors.New("session not found")
	ErrStoreFull = errors.New("session store is full")
)

// Session 等待使用者確認的訂單
type Session struct {
	ReceiptID   string       `json:"receipt_id"`
	UserID      string       `json:"user_id"`
	DisplayName string       `json:"display_name,omitempty"`
	Summary     []string     `json:"summary"`
	Total       int          `json:"total"`
	Order       *order.Order `json:"order"`
	CreatedAt   time.Time    `json:"created_at"`
}

// New 由訂單建立新的待確認訂單
func New(userID, displayName string, o *order.Order, now time.Time) *Session {
	return &Session{
		ReceiptID:   common.GenerateUUID(),
		UserID:      userID,
		DisplayName: displayName,
		Summary:     o.Summary(),
		Total:       o.Total,
		Order:       o,
		CreatedAt:   now,
	}
}

// Store 以使用者 ID 為鍵的暫存介面
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, userID string) (*Session, error)
	Delete(ctx context.Context, userID string) error
	Close() error
}

// StatsProvider 可回報統計資料的暫存
type StatsProvider interface {
	Stats() map[string]interface{}
}
