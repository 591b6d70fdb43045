package order

import "fmt"

// PriceTier 價格級距：餡料數量達 MinIngredients 時的單價
type PriceTier struct {
	MinIngredients int `json:"min_ingredients"`
	UnitPrice      int `json:"unit_price"`
}

// PriceTable 價目表，級距依 MinIngredients 遞增排列
type PriceTable []PriceTier

// UnitPrice 依餡料數量查詢單價，未達任何級距時為 0
func (t PriceTable) UnitPrice(ingredientCount int) int {
	price := 0
	for _, tier := range t {
		if ingredientCount < tier.MinIngredients {
			break
		}
		price = tier.UnitPrice
	}
	return price
}

// LineTotal 單價乘以數量
func (t PriceTable) LineTotal(ingredientCount, quantity int) int {
	return t.UnitPrice(ingredientCount) * quantity
}

func (t PriceTable) validate() error {
	for i, tier := range t {
		if tier.MinIngredients < 0 || tier.UnitPrice < 0 {
			return fmt.Errorf("%w: price tier %d is negative", ErrInvalidMenu, i)
		}
		if i > 0 && tier.MinIngredients <= t[i-1].MinIngredients {
			return fmt.Errorf("%w: price tiers must be strictly ascending", ErrInvalidMenu)
		}
	}
	return nil
}
