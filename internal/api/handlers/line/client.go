package line

import (
	"context"
	"fmt"
	"net/http"

	"sandwich-bot/internal/infrastructure/config"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Replier 送出回覆訊息
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages []messaging_api.MessageInterface) error
}

// ProfileLookup 查詢使用者顯示名稱
type ProfileLookup interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// SDKReplier 以 Messaging API SDK 回覆
type SDKReplier struct {
	api *messaging_api.MessagingApiAPI
}

// NewSDKReplier 創建 Messaging API 回覆用戶端
func NewSDKReplier(cfg config.LineConfig) (*SDKReplier, error) {
	opts := []messaging_api.MessagingApiAPIOption{
		messaging_api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.APIBaseURL != "" {
		opts = append(opts, messaging_api.WithEndpoint(cfg.APIBaseURL))
	}

	api, err := messaging_api.NewMessagingApiAPI(cfg.ChannelAccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging api client: %w", err)
	}
	return &SDKReplier{api: api}, nil
}

// Reply 以 reply token 回覆訊息
func (r *SDKReplier) Reply(ctx context.Context, replyToken string, messages []messaging_api.MessageInterface) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	if err != nil {
		return fmt.Errorf("failed to reply message: %w", err)
	}
	return nil
}
