package reply

import (
	"fmt"
	"strings"
	"time"

	"sandwich-bot/internal/core/order"
	"sandwich-bot/internal/core/session"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// 回覆文字
const (
	TextNoItems       = "ไม่พบรายการสั่งแซนด์วิช"
	TextNoPending     = "ไม่พบรายการที่รอยืนยัน"
	TextCancelled     = "ยกเลิกรายการเรียบร้อย"
	TextSummaryHeader = "รายละเอียดคำสั่งซื้อ:"
	TextTotalLabel    = "ยอดชำระทั้งหมด"
	TextPaymentPrefix = "คุณเลือกวิธีการชำระเงิน: "

	emptyField = "-"
	currency   = "บาท"
	mutedColor = "#999999"
	priceColor = "#888888"
	cancelGray = "#AAAAAA"
)

// PaymentMethod 付款方式
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

// paymentLabels 付款方式的顯示名稱
var paymentLabels = map[PaymentMethod]string{
	PaymentCash:     "เงินสด",
	PaymentTransfer: "โอนจ่าย",
}

// Label 付款方式顯示名稱
func (p PaymentMethod) Label() string {
	return paymentLabels[p]
}

// PostbackData 付款按鈕的 postback 資料
func (p PaymentMethod) PostbackData() string {
	return "payment=" + string(p)
}

// ParsePaymentPostback 解析「payment=cash|transfer」
func ParsePaymentPostback(data string) (PaymentMethod, bool) {
	key, value, ok := strings.Cut(data, "=")
	if !ok || key != "payment" {
		return "", false
	}
	method := PaymentMethod(value)
	if _, known := paymentLabels[method]; !known {
		return "", false
	}
	return method, true
}

// Renderer 組裝 LINE 回覆訊息
type Renderer struct {
	confirmKeyword string
	cancelKeyword  string
	location       *time.Location
}

// NewRenderer 創建回覆組裝器，location 為 nil 時使用 UTC
func NewRenderer(confirmKeyword, cancelKeyword string, location *time.Location) *Renderer {
	if location == nil {
		location = time.UTC
	}
	return &Renderer{
		confirmKeyword: confirmKeyword,
		cancelKeyword:  cancelKeyword,
		location:       location,
	}
}

// Text 純文字訊息
func Text(text string) *messaging_api.TextMessage {
	return &messaging_api.TextMessage{Text: text}
}

// SummaryText 訂單摘要文字
func SummaryText(o *order.Order) *messaging_api.TextMessage {
	return Text(TextSummaryHeader + "\n" + strings.Join(o.Summary(), "\n"))
}

// PaymentChoice 選擇付款方式後的回覆
func PaymentChoice(method PaymentMethod) *messaging_api.TextMessage {
	return Text(TextPaymentPrefix + method.Label())
}

// OrderMessages 新訂單的回覆：摘要文字與訂單卡片
func (r *Renderer) OrderMessages(o *order.Order, customer string, at time.Time) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		SummaryText(o),
		r.OrderBubble(o, customer, at),
	}
}

// OrderBubble 訂單卡片，附確認與取消按鈕
func (r *Renderer) OrderBubble(o *order.Order, customer string, at time.Time) *messaging_api.FlexMessage {
	contents := []messaging_api.FlexComponentInterface{
		&messaging_api.FlexText{
			Text:   "คุณ " + customer,
			Weight: messaging_api.FlexTextWEIGHT_BOLD,
			Size:   "lg",
		},
		&messaging_api.FlexText{
			Text:   "เวลา: " + at.In(r.location).Format("15:04"),
			Size:   "sm",
			Color:  mutedColor,
			Margin: "md",
		},
		&messaging_api.FlexSeparator{Margin: "md"},
		&messaging_api.FlexText{
			Text:   "รายละเอียดการสั่งซื้อ",
			Weight: messaging_api.FlexTextWEIGHT_BOLD,
			Size:   "md",
			Margin: "md",
		},
	}

	for i, line := range o.Summary() {
		contents = append(contents, lineRow(line, o.Items[i].Total))
	}

	contents = append(contents,
		&messaging_api.FlexSeparator{Margin: "md"},
	)
	contents = append(contents, totalRows(o.Total)...)
	contents = append(contents,
		&messaging_api.FlexText{
			Text:   "เวลาในการส่ง: " + orEmpty(o.DeliveryTime),
			Size:   "md",
			Margin: "md",
		},
		&messaging_api.FlexText{
			Text:   "ที่อยู่: " + orEmpty(o.AddressText()),
			Size:   "md",
			Margin: "md",
			Wrap:   true,
		},
	)

	return &messaging_api.FlexMessage{
		AltText: TextTotalLabel,
		Contents: &messaging_api.FlexBubble{
			Body: &messaging_api.FlexBox{
				Layout:   messaging_api.FlexBoxLAYOUT_VERTICAL,
				Contents: contents,
			},
			Footer: buttonRow(
				&messaging_api.FlexButton{
					Style:  messaging_api.FlexButtonSTYLE_PRIMARY,
					Action: &messaging_api.MessageAction{Label: r.confirmKeyword, Text: r.confirmKeyword},
				},
				&messaging_api.FlexButton{
					Style:  messaging_api.FlexButtonSTYLE_SECONDARY,
					Color:  cancelGray,
					Action: &messaging_api.MessageAction{Label: r.cancelKeyword, Text: r.cancelKeyword},
				},
			),
		},
	}
}

// PaymentBubble 確認後的付款卡片，附現金與轉帳按鈕
func (r *Renderer) PaymentBubble(s *session.Session) *messaging_api.FlexMessage {
	contents := []messaging_api.FlexComponentInterface{
		&messaging_api.FlexText{
			Text:   "คุณ " + s.DisplayName,
			Weight: messaging_api.FlexTextWEIGHT_BOLD,
			Size:   "lg",
		},
		&messaging_api.FlexText{
			Text:   "เลขที่: " + shortReceipt(s.ReceiptID),
			Size:   "sm",
			Color:  mutedColor,
			Margin: "md",
		},
		&messaging_api.FlexSeparator{Margin: "md"},
	}
	contents = append(contents, totalRows(s.Total)...)

	buttons := make([]messaging_api.FlexComponentInterface, 0, 2)
	for _, method := range []PaymentMethod{PaymentCash, PaymentTransfer} {
		buttons = append(buttons, &messaging_api.FlexButton{
			Style: messaging_api.FlexButtonSTYLE_PRIMARY,
			Action: &messaging_api.PostbackAction{
				Label:       method.Label(),
				Data:        method.PostbackData(),
				DisplayText: method.Label(),
			},
		})
	}

	return &messaging_api.FlexMessage{
		AltText: TextTotalLabel,
		Contents: &messaging_api.FlexBubble{
			Body: &messaging_api.FlexBox{
				Layout:   messaging_api.FlexBoxLAYOUT_VERTICAL,
				Contents: contents,
			},
			Footer: buttonRow(buttons...),
		},
	}
}

// lineRow 單行品項：說明與小計
func lineRow(detail string, total int) *messaging_api.FlexBox {
	return &messaging_api.FlexBox{
		Layout: messaging_api.FlexBoxLAYOUT_HORIZONTAL,
		Margin: "sm",
		Contents: []messaging_api.FlexComponentInterface{
			&messaging_api.FlexText{
				Text: detail,
				Size: "sm",
				Flex: 4,
				Wrap: true,
			},
			&messaging_api.FlexText{
				Text:  price(total),
				Size:  "sm",
				Align: messaging_api.FlexTextALIGN_END,
				Color: priceColor,
				Flex:  2,
			},
		},
	}
}

func totalRows(total int) []messaging_api.FlexComponentInterface {
	return []messaging_api.FlexComponentInterface{
		&messaging_api.FlexText{
			Text:   TextTotalLabel,
			Weight: messaging_api.FlexTextWEIGHT_BOLD,
			Size:   "lg",
			Margin: "md",
		},
		&messaging_api.FlexText{
			Text:   price(total),
			Weight: messaging_api.FlexTextWEIGHT_BOLD,
			Size:   "xxl",
			Margin: "md",
		},
	}
}

func buttonRow(buttons ...messaging_api.FlexComponentInterface) *messaging_api.FlexBox {
	return &messaging_api.FlexBox{
		Layout:   messaging_api.FlexBoxLAYOUT_HORIZONTAL,
		Spacing:  "sm",
		Contents: buttons,
	}
}

func price(amount int) string {
	return fmt.Sprintf("%d %s", amount, currency)
}

func orEmpty(s string) string {
	if s == "" {
		return emptyField
	}
	return s
}

// shortReceipt 收據編號取前 8 碼
func shortReceipt(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
