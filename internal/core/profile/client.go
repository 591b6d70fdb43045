package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"sandwich-bot/internal/infrastructure/config"
	"sandwich-bot/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNotFound 使用者不存在或未加好友
var ErrNotFound = errors.New("profile not found")

// Profile LINE 使用者資料
type Profile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
	Language      string `json:"language,omitempty"`
}

// Client LINE 使用者資料查詢
type Client struct {
	client *resty.Client
}

// NewClient 創建查詢用戶端
func NewClient(cfg config.LineConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")).
		SetAuthToken(cfg.ChannelAccessToken).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{client: client}
}

// Get 取得使用者資料
func (c *Client) Get(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrNotFound
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("userId", userID).
		Get("/v2/bot/profile/{userId}")
	if err != nil {
		return nil, fmt.Errorf("failed to send profile request: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("profile API returned %d: %s", resp.StatusCode(), resp.String())
	}

	var p Profile
	if err := json.Unmarshal(resp.Body(), &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile response: %w", err)
	}
	return &p, nil
}

// DisplayName 取得使用者顯示名稱
func (c *Client) DisplayName(ctx context.Context, userID string) (string, error) {
	p, err := c.Get(ctx, userID)
	if err != nil {
		common.LogWarn("取得使用者資料失敗", zap.Error(err))
		return "", err
	}
	return p.DisplayName, nil
}
