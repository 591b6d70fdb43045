package order

import (
	"regexp"
	"strconv"
	"strings"
)

// quantityRule 行尾的數字為份數
var quantityRule = regexp.MustCompile(`(\d+)$`)

// ModifierKind 附加條件種類
type ModifierKind string

const (
	ModifierExclusion ModifierKind = "exclusion"
	ModifierInclusion ModifierKind = "inclusion"
)

// Modifier 單行的附加條件（不要…／只要…）
type Modifier struct {
	Kind   ModifierKind `json:"kind"`
	Phrase string       `json:"phrase"`
}

// RawLineItem 尚未計價的單行訂單
type RawLineItem struct {
	Ingredients []string  `json:"ingredients"`
	Quantity    int       `json:"quantity"`
	Modifier    *Modifier `json:"modifier,omitempty"`
}

// Segment 依換行切分訊息，去除空白行並保留順序
func Segment(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ParseLine 解析單行；沒有任何餡料時回傳 false
func (e *Engine) ParseLine(line string) (RawLineItem, bool) {
	var item RawLineItem

	// 餡料依菜單順序，以包含判斷，同一餡料只算一次
	for _, ingredient := range e.menu.Ingredients {
		if strings.Contains(line, ingredient) {
			item.Ingredients = append(item.Ingredients, ingredient)
		}
	}
	if len(item.Ingredients) == 0 {
		return RawLineItem{}, false
	}

	// 先掃排除詞再掃限定詞，最後一個命中的為準
	for _, phrase := range e.menu.Exclusions {
		if strings.Contains(line, phrase) {
			item.Modifier = &Modifier{Kind: ModifierExclusion, Phrase: phrase}
		}
	}
	for _, phrase := range e.menu.Inclusions {
		if strings.Contains(line, phrase) {
			item.Modifier = &Modifier{Kind: ModifierInclusion, Phrase: phrase}
		}
	}

	item.Quantity = e.parseQuantity(line)
	return item, true
}

func (e *Engine) parseQuantity(line string) int {
	m := quantityRule.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	switch {
	case err != nil, n > e.menu.MaxQuantity:
		return e.menu.MaxQuantity
	case n < 1:
		return 1
	}
	return n
}
