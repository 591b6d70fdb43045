package reply

import (
	"testing"
	"time"

	"sandwich-bot/internal/core/order"
	"sandwich-bot/internal/core/session"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

func buildOrder(t *testing.T, message string) *order.Order {
	t.Helper()
	return order.MustNewEngine(order.DefaultMenu()).BuildOrder(message)
}

// texts 收集卡片 body 中所有文字（含巢狀 box）
func texts(box *messaging_api.FlexBox) []string {
	var out []string
	for _, c := range box.Contents {
		switch v := c.(type) {
		case *messaging_api.FlexText:
			out = append(out, v.Text)
		case *messaging_api.FlexBox:
			out = append(out, texts(v)...)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestParsePaymentPostback(t *testing.T) {
	tests := []struct {
		data string
		want PaymentMethod
		ok   bool
	}{
		{"payment=cash", PaymentCash, true},
		{"payment=transfer", PaymentTransfer, true},
		{"payment=card", "", false},
		{"action=confirm", "", false},
		{"payment", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParsePaymentPostback(tt.data)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePaymentPostback(%q) = %q, %v; want %q, %v", tt.data, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPaymentChoice(t *testing.T) {
	if got := PaymentChoice(PaymentCash).Text; got != "คุณเลือกวิธีการชำระเงิน: เงินสด" {
		t.Errorf("unexpected cash reply %q", got)
	}
	if got := PaymentChoice(PaymentTransfer).Text; got != "คุณเลือกวิธีการชำระเงิน: โอนจ่าย" {
		t.Errorf("unexpected transfer reply %q", got)
	}
}

func TestSummaryText(t *testing.T) {
	o := buildOrder(t, "แฮมไส้กรอก 2\nชีสไข่ดาว ไม่ผัก")

	want := "รายละเอียดคำสั่งซื้อ:\nออเดอร์ 1 : แฮม ไส้กรอก 2\nออเดอร์ 2 : ชีส ไข่ดาว 1 (ไม่ผัก)"
	if got := SummaryText(o).Text; got != want {
		t.Errorf("SummaryText:\n got %q\nwant %q", got, want)
	}
}

func TestOrderBubble(t *testing.T) {
	bangkok, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	r := NewRenderer("ยืนยัน", "ยกเลิก", bangkok)
	o := buildOrder(t, "แฮมไส้กรอก 2\nส่ง 7.30 บ้าน 171 ซอย 19")
	at := time.Date(2024, 5, 1, 1, 5, 0, 0, time.UTC)

	msg := r.OrderBubble(o, "สมชาย", at)
	if msg.AltText != TextTotalLabel {
		t.Errorf("unexpected alt text %q", msg.AltText)
	}
	bubble, ok := msg.Contents.(*messaging_api.FlexBubble)
	if !ok {
		t.Fatalf("expected bubble, got %T", msg.Contents)
	}

	body := texts(bubble.Body)
	for _, want := range []string{
		"คุณ สมชาย",
		"เวลา: 08:05",
		"ออเดอร์ 1 : แฮม ไส้กรอก 2",
		"78 บาท",
		"เวลาในการส่ง: 7.30",
		"ที่อยู่: 171 ซ.19",
	} {
		if !contains(body, want) {
			t.Errorf("expected body text %q, got %v", want, body)
		}
	}

	if len(bubble.Footer.Contents) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(bubble.Footer.Contents))
	}
	confirm := bubble.Footer.Contents[0].(*messaging_api.FlexButton).Action.(*messaging_api.MessageAction)
	cancel := bubble.Footer.Contents[1].(*messaging_api.FlexButton).Action.(*messaging_api.MessageAction)
	if confirm.Text != "ยืนยัน" || cancel.Text != "ยกเลิก" {
		t.Errorf("unexpected button texts %q / %q", confirm.Text, cancel.Text)
	}
}

func TestOrderBubble_MissingFields(t *testing.T) {
	r := NewRenderer("ยืนยัน", "ยกเลิก", nil)
	o := buildOrder(t, "ทูน่า ชีส")

	bubble := r.OrderBubble(o, "ลูกค้า", time.Now()).Contents.(*messaging_api.FlexBubble)
	body := texts(bubble.Body)
	if !contains(body, "เวลาในการส่ง: -") || !contains(body, "ที่อยู่: -") {
		t.Errorf("expected placeholders for missing fields, got %v", body)
	}
}

func TestOrderMessages(t *testing.T) {
	r := NewRenderer("ยืนยัน", "ยกเลิก", time.UTC)
	msgs := r.OrderMessages(buildOrder(t, "แฮม ชีส"), "ลูกค้า", time.Now())

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if _, ok := msgs[0].(*messaging_api.TextMessage); !ok {
		t.Errorf("expected text first, got %T", msgs[0])
	}
	if _, ok := msgs[1].(*messaging_api.FlexMessage); !ok {
		t.Errorf("expected flex second, got %T", msgs[1])
	}
}

func TestPaymentBubble(t *testing.T) {
	r := NewRenderer("ยืนยัน", "ยกเลิก", time.UTC)
	s := &session.Session{
		ReceiptID:   "abcdef12-3456-7890",
		UserID:      "U1",
		DisplayName: "สมชาย",
		Total:       123,
	}

	bubble := r.PaymentBubble(s).Contents.(*messaging_api.FlexBubble)
	body := texts(bubble.Body)
	for _, want := range []string{"คุณ สมชาย", "เลขที่: ABCDEF12", "123 บาท"} {
		if !contains(body, want) {
			t.Errorf("expected body text %q, got %v", want, body)
		}
	}

	var data []string
	for _, c := range bubble.Footer.Contents {
		action := c.(*messaging_api.FlexButton).Action.(*messaging_api.PostbackAction)
		data = append(data, action.Data)
	}
	if len(data) != 2 || data[0] != "payment=cash" || data[1] != "payment=transfer" {
		t.Errorf("unexpected postback data %v", data)
	}
}
