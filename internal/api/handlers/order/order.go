package order

import (
	"errors"
	"net/http"
	"strings"
	"time"

	orderService "sandwich-bot/internal/core/order"
	"sandwich-bot/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 訂單解析 API
type Handler struct {
	engine *orderService.Engine
}

// NewHandler 創建訂單解析處理器
func NewHandler(engine *orderService.Engine) *Handler {
	return &Handler{engine: engine}
}

// HandleParse 解析訂單訊息
func (h *Handler) HandleParse(c *gin.Context) {
	requestID := common.RequestID(c)
	start := time.Now()

	var req common.ParseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("無效的請求格式",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		common.WriteError(c, common.ErrInvalidRequest.Wrap(err), gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		common.WriteError(c, common.NewValidationError("message is required"), nil)
		return
	}

	o := h.engine.BuildOrder(req.Message)
	common.LogOrderParsed(requestID, len(o.Items), o.Total, time.Since(start))

	resp := common.NewParseOrderResponse(o)
	if err := o.Err(); err != nil {
		if errors.Is(err, orderService.ErrNoItemsFound) {
			common.WriteError(c, common.ErrNoItemsFound.Wrap(err), resp)
			return
		}
		common.WriteError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleMenu 目前使用的菜單與價格表
func (h *Handler) HandleMenu(c *gin.Context) {
	c.JSON(http.StatusOK, common.MenuResponse{Menu: h.engine.Menu()})
}
