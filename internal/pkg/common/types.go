package common

import "sandwich-bot/internal/core/order"

// ParseOrderRequest 訂單解析請求
type ParseOrderRequest struct {
	Message string `json:"message" binding:"required"`
}

// ParseOrderResponse 訂單解析結果
type ParseOrderResponse struct {
	Order   *order.Order `json:"order"`
	Summary []string     `json:"summary"`
	Address string       `json:"address,omitempty"`
}

// NewParseOrderResponse 由訂單組出響應
func NewParseOrderResponse(o *order.Order) ParseOrderResponse {
	return ParseOrderResponse{
		Order:   o,
		Summary: o.Summary(),
		Address: o.AddressText(),
	}
}

// MenuResponse 菜單查詢結果
type MenuResponse struct {
	Menu order.Menu `json:"menu"`
}
