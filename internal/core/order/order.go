package order

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoItemsFound 訊息中沒有任何三明治品項
var ErrNoItemsFound = errors.New("no order items found")

// LineItem 一行訂單（一種三明治與份數）
type LineItem struct {
	Index       int       `json:"index"`
	Ingredients []string  `json:"ingredients"`
	Quantity    int       `json:"quantity"`
	Modifier    *Modifier `json:"modifier,omitempty"`
	UnitPrice   int       `json:"unit_price"`
	Total       int       `json:"total"`
}

// Order 單一訊息解析出的訂單
type Order struct {
	Items           []LineItem `json:"items"`
	DeliveryTime    string     `json:"delivery_time,omitempty"`
	DeliveryAddress *Address   `json:"delivery_address,omitempty"`
	Total           int        `json:"total"`
}

// BuildOrder 解析訊息並計價
//
// 流程：錯字修正 → 擷取送達資訊 → 分行 → 逐行解析 → 計價 → 加總。
// 沒有品項時仍回傳 Order（Total 為 0），由呼叫端決定如何處理。
func (e *Engine) BuildOrder(message string) *Order {
	text := e.Normalize(message)
	fields := e.ExtractFields(text)

	o := &Order{
		Items:           []LineItem{},
		DeliveryTime:    fields.DeliveryTime,
		DeliveryAddress: fields.DeliveryAddress,
	}

	for _, line := range Segment(text) {
		raw, ok := e.ParseLine(line)
		if !ok {
			continue
		}
		unit := e.menu.Prices.UnitPrice(len(raw.Ingredients))
		item := LineItem{
			Index:       len(o.Items) + 1,
			Ingredients: raw.Ingredients,
			Quantity:    raw.Quantity,
			Modifier:    raw.Modifier,
			UnitPrice:   unit,
			Total:       unit * raw.Quantity,
		}
		o.Items = append(o.Items, item)
		o.Total += item.Total
	}

	return o
}

// Err 沒有品項時回傳 ErrNoItemsFound
func (o *Order) Err() error {
	if o == nil || len(o.Items) == 0 {
		return ErrNoItemsFound
	}
	return nil
}

// AddressText 地址字串，沒有地址時為空字串
func (o *Order) AddressText() string {
	return o.DeliveryAddress.String()
}

// Detail 單行的顯示文字，例如「แฮม ไส้กรอก 2 (ไม่ใส่ผัก)」
func (it LineItem) Detail() string {
	s := fmt.Sprintf("%s %d", strings.Join(it.Ingredients, " "), it.Quantity)
	if it.Modifier != nil {
		s += " (" + it.Modifier.Phrase + ")"
	}
	return s
}

// Summary 每個品項一行的文字摘要
func (o *Order) Summary() []string {
	lines := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, fmt.Sprintf("ออเดอร์ %d : %s", it.Index, it.Detail()))
	}
	return lines
}
