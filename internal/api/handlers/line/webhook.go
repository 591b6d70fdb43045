package line

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"sandwich-bot/internal/core/order"
	"sandwich-bot/internal/core/reply"
	"sandwich-bot/internal/core/session"
	"sandwich-bot/internal/infrastructure/config"
	"sandwich-bot/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"go.uber.org/zap"
)

// maxWorkers 同一批事件最多同時處理的使用者數
const maxWorkers = 8

// EventFilter 記錄 webhookEventId，已處理過時回傳 true
type EventFilter interface {
	Seen(eventID string) bool
}

// Handler LINE webhook 處理器
type Handler struct {
	secret   string
	bot      config.BotConfig
	engine   *order.Engine
	store    session.Store
	profiles ProfileLookup
	replier  Replier
	events   EventFilter
	renderer *reply.Renderer
	now      func() time.Time
}

// NewHandler 創建 webhook 處理器；events 為 nil 時不過濾重送事件
func NewHandler(secret string, bot config.BotConfig, engine *order.Engine, store session.Store, profiles ProfileLookup, replier Replier, events EventFilter) (*Handler, error) {
	if secret == "" {
		return nil, errors.New("channel secret is required")
	}
	loc, err := time.LoadLocation(bot.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", bot.Timezone, err)
	}

	return &Handler{
		secret:   secret,
		bot:      bot,
		engine:   engine,
		store:    store,
		profiles: profiles,
		replier:  replier,
		events:   events,
		renderer: reply.NewRenderer(bot.ConfirmKeyword, bot.CancelKeyword, loc),
		now:      time.Now,
	}, nil
}

// HandleWebhook 驗證簽章並逐一處理事件
func (h *Handler) HandleWebhook(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.secret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			common.LogWarn("Webhook 簽章驗證失敗", zap.String("ip", c.ClientIP()))
			common.WriteError(c, common.ErrInvalidSignature, nil)
			return
		}
		common.LogWarn("Webhook 解析失敗", zap.Error(err))
		common.WriteError(c, common.ErrInvalidRequest.Wrap(err), nil)
		return
	}

	h.dispatch(c.Request.Context(), cb.Events)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// dispatch 依使用者分組：同一使用者的事件依序處理，不同使用者並行
func (h *Handler) dispatch(ctx context.Context, events []webhook.EventInterface) {
	groups := make(map[string][]webhook.EventInterface)
	var users []string
	for _, event := range events {
		if h.redelivered(event) {
			continue
		}
		uid := eventUserID(event)
		if _, exists := groups[uid]; !exists {
			users = append(users, uid)
		}
		groups[uid] = append(groups[uid], event)
	}

	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup
	for _, uid := range users {
		wg.Add(1)
		sem <- struct{}{}
		go func(events []webhook.EventInterface) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					common.LogError("事件處理 panic", zap.Any("error", r))
				}
			}()

			// 單一事件失敗不影響其他事件
			for _, event := range events {
				if err := h.handleEvent(ctx, event); err != nil {
					common.LogError("事件處理失敗",
						zap.String("event_type", event.GetType()),
						zap.Error(err),
					)
				}
			}
		}(groups[uid])
	}
	wg.Wait()
}

func (h *Handler) handleEvent(ctx context.Context, event webhook.EventInterface) error {
	switch e := event.(type) {
	case webhook.MessageEvent:
		text, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			return nil
		}
		return h.handleText(ctx, e.ReplyToken, userIDOf(e.Source), text.Text)
	case webhook.PostbackEvent:
		if e.Postback == nil {
			return nil
		}
		return h.handlePostback(ctx, e.ReplyToken, userIDOf(e.Source), e.Postback.Data)
	default:
		common.LogDebug("略過事件", zap.String("event_type", event.GetType()))
		return nil
	}
}

func (h *Handler) handleText(ctx context.Context, replyToken, userID, text string) error {
	switch strings.TrimSpace(text) {
	case h.bot.ConfirmKeyword:
		return h.handleConfirm(ctx, replyToken, userID)
	case h.bot.CancelKeyword:
		return h.handleCancel(ctx, replyToken, userID)
	}

	o := h.engine.BuildOrder(text)
	if o.Err() != nil {
		return h.reply(ctx, replyToken, reply.Text(reply.TextNoItems))
	}

	now := h.now()
	name := h.displayName(ctx, userID)

	if userID != "" {
		sess := session.New(userID, name, o, now)
		if err := h.store.Save(ctx, sess); err != nil {
			common.LogError("訂單暫存失敗", zap.Error(err))
		} else {
			common.LogInfo("收到訂單",
				zap.String("receipt_id", sess.ReceiptID),
				zap.Int("items", len(o.Items)),
				zap.Int("total", o.Total),
			)
		}
	}

	return h.reply(ctx, replyToken, h.renderer.OrderMessages(o, name, now)...)
}

func (h *Handler) handleConfirm(ctx context.Context, replyToken, userID string) error {
	sess, err := h.store.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return h.reply(ctx, replyToken, reply.Text(reply.TextNoPending))
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	common.LogInfo("訂單已確認", zap.String("receipt_id", sess.ReceiptID), zap.Int("total", sess.Total))
	return h.reply(ctx, replyToken, h.renderer.PaymentBubble(sess))
}

func (h *Handler) handleCancel(ctx context.Context, replyToken, userID string) error {
	if err := h.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return h.reply(ctx, replyToken, reply.Text(reply.TextCancelled))
}

func (h *Handler) handlePostback(ctx context.Context, replyToken, userID, data string) error {
	method, ok := reply.ParsePaymentPostback(data)
	if !ok {
		common.LogDebug("未知的 postback", zap.String("data", data))
		return nil
	}

	// 選定付款方式後結束這筆訂單
	if sess, err := h.store.Load(ctx, userID); err == nil {
		common.LogInfo("付款方式已選擇",
			zap.String("receipt_id", sess.ReceiptID),
			zap.String("method", string(method)),
		)
		if err := h.store.Delete(ctx, userID); err != nil {
			common.LogWarn("刪除訂單暫存失敗", zap.Error(err))
		}
	}

	return h.reply(ctx, replyToken, reply.PaymentChoice(method))
}

// displayName 查詢顯示名稱，失敗時使用預設名稱
func (h *Handler) displayName(ctx context.Context, userID string) string {
	if h.profiles == nil || userID == "" {
		return h.bot.DefaultName
	}
	name, err := h.profiles.DisplayName(ctx, userID)
	if err != nil || name == "" {
		return h.bot.DefaultName
	}
	return name
}

func (h *Handler) reply(ctx context.Context, replyToken string, messages ...messaging_api.MessageInterface) error {
	if replyToken == "" {
		return nil
	}
	return h.replier.Reply(ctx, replyToken, messages)
}

// redelivered 同一 webhookEventId 已處理過時略過
func (h *Handler) redelivered(event webhook.EventInterface) bool {
	if h.events == nil {
		return false
	}
	id, isRedelivery := eventDelivery(event)
	if id == "" || !h.events.Seen(id) {
		return false
	}
	common.LogInfo("略過重送事件",
		zap.String("webhook_event_id", id),
		zap.Bool("is_redelivery", isRedelivery),
	)
	return true
}

// eventDelivery 事件的 webhookEventId 與是否為重送
func eventDelivery(event webhook.EventInterface) (string, bool) {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return e.WebhookEventId, e.DeliveryContext != nil && e.DeliveryContext.IsRedelivery
	case webhook.PostbackEvent:
		return e.WebhookEventId, e.DeliveryContext != nil && e.DeliveryContext.IsRedelivery
	}
	return "", false
}

// eventUserID 事件所屬的使用者，無法判斷時為空字串
func eventUserID(event webhook.EventInterface) string {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return userIDOf(e.Source)
	case webhook.PostbackEvent:
		return userIDOf(e.Source)
	}
	return ""
}

// userIDOf 取出事件來源的使用者 ID
func userIDOf(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	}
	return ""
}
