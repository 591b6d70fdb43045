package order

import (
	"errors"
	"fmt"
	"strings"

	"sandwich-bot/internal/infrastructure/config"
)

// ErrInvalidMenu 菜單設定不合法
var ErrInvalidMenu = errors.New("invalid menu")

// Correction 錯字修正（From 改寫為 To）
type Correction struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Menu 店家的固定詞彙與價目表，啟動後不可變
type Menu struct {
	Ingredients []string     `json:"ingredients"`
	Exclusions  []string     `json:"exclusions"`
	Inclusions  []string     `json:"inclusions"`
	Corrections []Correction `json:"corrections"`
	Prices      PriceTable   `json:"prices"`
	MaxQuantity int          `json:"max_quantity"`
}

// DefaultMenu 預設菜單
func DefaultMenu() Menu {
	return Menu{
		Ingredients: []string{"ไข่ข้น", "แฮม", "ไส้กรอก", "ปูอัด", "ทูน่า", "โบโลน่า", "ชีส", "ไข่ดาว"},
		Exclusions: []string{
			"ไม่ใส่ผัก", "ไม่เอาผักกาด", "ไม่เอาแครอท", "ไม่ผัก",
			"ไม่ซอส", "ไม่ผักกาด", "ไม่แครอท", "ไม่ซอสมะเขือเทศ",
			"ไม่ซอสมะยองเนส", "ไม่มะยองเนส", "ไม่มะเขือเทศ",
		},
		Inclusions: []string{"เอาแค่ผักกาด", "เอาแค่แครอท"},
		Corrections: []Correction{
			{From: "แชนวิช", To: "แซนวิช"},
			{From: "ซฮย", To: "ซอย"},
			{From: "แครอช", To: "แครอท"},
			// ผักกาด 併入 ผัก，讓「ไม่ผักกาด」落在「ไม่ผัก」條件
			{From: "ผักกาด", To: "ผัก"},
		},
		Prices: PriceTable{
			{MinIngredients: 2, UnitPrice: 39},
			{MinIngredients: 3, UnitPrice: 45},
			{MinIngredients: 4, UnitPrice: 55},
		},
		MaxQuantity: 99,
	}
}

// MenuFromConfig 由設定檔轉換菜單，未設定的欄位沿用預設值
func MenuFromConfig(cfg config.MenuConfig) Menu {
	m := DefaultMenu()
	if len(cfg.Ingredients) > 0 {
		m.Ingredients = cfg.Ingredients
	}
	if len(cfg.Exclusions) > 0 {
		m.Exclusions = cfg.Exclusions
	}
	if len(cfg.Inclusions) > 0 {
		m.Inclusions = cfg.Inclusions
	}
	if len(cfg.Corrections) > 0 {
		m.Corrections = make([]Correction, len(cfg.Corrections))
		for i, c := range cfg.Corrections {
			m.Corrections[i] = Correction{From: c.From, To: c.To}
		}
	}
	if len(cfg.Pricing) > 0 {
		m.Prices = make(PriceTable, len(cfg.Pricing))
		for i, p := range cfg.Pricing {
			m.Prices[i] = PriceTier{MinIngredients: p.MinIngredients, UnitPrice: p.UnitPrice}
		}
	}
	if cfg.MaxQuantity > 0 {
		m.MaxQuantity = cfg.MaxQuantity
	}
	return m
}

// Validate 驗證菜單
func (m Menu) Validate() error {
	if len(m.Ingredients) == 0 {
		return fmt.Errorf("%w: ingredient catalog is empty", ErrInvalidMenu)
	}
	if err := checkPhrases("ingredient", m.Ingredients); err != nil {
		return err
	}
	if err := checkPhrases("exclusion", m.Exclusions); err != nil {
		return err
	}
	if err := checkPhrases("inclusion", m.Inclusions); err != nil {
		return err
	}

	for i, c := range m.Corrections {
		if c.From == "" {
			return fmt.Errorf("%w: correction %d has an empty key", ErrInvalidMenu, i)
		}
		// 修正結果不可再包含任何修正鍵，避免連鎖改寫
		for _, other := range m.Corrections {
			if other.From != "" && strings.Contains(c.To, other.From) {
				return fmt.Errorf("%w: correction %q -> %q chains into %q", ErrInvalidMenu, c.From, c.To, other.From)
			}
		}
	}

	if err := m.Prices.validate(); err != nil {
		return err
	}
	if m.MaxQuantity <= 0 {
		return fmt.Errorf("%w: max quantity must be positive", ErrInvalidMenu)
	}
	return nil
}

func checkPhrases(kind string, phrases []string) error {
	for i, p := range phrases {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: %s %d is blank", ErrInvalidMenu, kind, i)
		}
	}
	return nil
}
