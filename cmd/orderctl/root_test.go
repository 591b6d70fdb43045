package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"sandwich-bot/internal/core/order"
	"sandwich-bot/internal/pkg/common"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParse_Args(t *testing.T) {
	out, err := run(t, "", "parse", "แฮมไส้กรอก 2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, want := range []string{"ออเดอร์ 1 : แฮม ไส้กรอก 2\t78 บาท", "ยอดชำระทั้งหมด\t78 บาท"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestParse_StdinJSON(t *testing.T) {
	out, err := run(t, "ทูน่า ชีส\nส่ง 12:30\nซ.5", "parse", "--json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var resp common.ParseOrderResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if resp.Order.Total != 39 || resp.Order.DeliveryTime != "12:30" || resp.Address != "ซ.5" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestParse_NoItems(t *testing.T) {
	_, err := run(t, "", "parse", "สวัสดี")
	if !errors.Is(err, order.ErrNoItemsFound) {
		t.Errorf("expected ErrNoItemsFound, got %v", err)
	}

	if _, err := run(t, "   ", "parse"); err == nil {
		t.Error("expected error for empty stdin")
	}
}

func TestParse_MenuFile(t *testing.T) {
	out, err := run(t, "", "--menu", "../../internal/infrastructure/config/testdata/menu.yaml", "parse", "ham chese 3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(out, "ออเดอร์ 1 : ham cheese 3\t120 บาท") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestMenu(t *testing.T) {
	out, err := run(t, "", "menu")
	if err != nil {
		t.Fatalf("menu: %v", err)
	}

	var resp common.MenuResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Menu.Ingredients) != 8 || resp.Menu.MaxQuantity != 99 {
		t.Errorf("unexpected menu %+v", resp.Menu)
	}
}
