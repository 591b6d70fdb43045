package order

import (
	"fmt"
	"strings"
)

// maxNormalizePasses 錯字修正最多重複的輪數
const maxNormalizePasses = 4

// Engine 訂單解析引擎
//
// Engine 建立後只讀，可在多個 goroutine 間共用。
type Engine struct {
	menu Menu
}

// NewEngine 建立解析引擎，菜單不合法時回傳錯誤
func NewEngine(menu Menu) (*Engine, error) {
	if err := menu.Validate(); err != nil {
		return nil, err
	}
	return &Engine{menu: cloneMenu(menu)}, nil
}

// MustNewEngine 同 NewEngine，菜單不合法時 panic
func MustNewEngine(menu Menu) *Engine {
	e, err := NewEngine(menu)
	if err != nil {
		panic(fmt.Sprintf("order: %v", err))
	}
	return e
}

// Menu 回傳目前菜單的副本
func (e *Engine) Menu() Menu {
	return cloneMenu(e.menu)
}

// Normalize 依表格順序套用所有錯字修正，重複整輪替換直到結果不再變化（最多 maxNormalizePasses 輪）
func (e *Engine) Normalize(text string) string {
	for pass := 0; pass < maxNormalizePasses; pass++ {
		next := text
		for _, c := range e.menu.Corrections {
			next = strings.ReplaceAll(next, c.From, c.To)
		}
		if next == text {
			break
		}
		text = next
	}
	return text
}

func cloneMenu(m Menu) Menu {
	return Menu{
		Ingredients: append([]string(nil), m.Ingredients...),
		Exclusions:  append([]string(nil), m.Exclusions...),
		Inclusions:  append([]string(nil), m.Inclusions...),
		Corrections: append([]Correction(nil), m.Corrections...),
		Prices:      append(PriceTable(nil), m.Prices...),
		MaxQuantity: m.MaxQuantity,
	}
}
