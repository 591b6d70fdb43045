package order

import (
	"regexp"
)

// LanePrefix 巷（ซอย）號碼的顯示前綴
const LanePrefix = "ซ."

const (
	hspace     = `[\t\p{Zs}]*`
	laneMarker = `(?:ซอย|ซ\.?)`
	houseNum   = `\d+(?:/\d+)?`
)

// timeRule 送達時間：1–2 位數、冒號或句點、2 位數
var timeRule = regexp.MustCompile(`\d{1,2}[:.]\d{2}`)

// addressRule 具名的地址規則
type addressRule struct {
	name    string
	pattern *regexp.Regexp
}

// addressRules 依優先順序排列，第一個有匹配的規則決定地址片段
var addressRules = []addressRule{
	{"house-lane", regexp.MustCompile(`บ้าน` + hspace + houseNum + hspace + laneMarker + hspace + `\d+`)},
	{"lane-house", regexp.MustCompile(laneMarker + hspace + `\d+` + hspace + `บ้าน` + hspace + houseNum)},
	{"number-lane", regexp.MustCompile(houseNum + hspace + laneMarker + hspace + `\d+`)},
	{"house", regexp.MustCompile(`บ้าน` + hspace + houseNum)},
	{"lane", regexp.MustCompile(laneMarker + hspace + `\d+`)},
}

var (
	laneToken  = regexp.MustCompile(laneMarker + hspace + `(\d+)`)
	houseToken = regexp.MustCompile(houseNum)
)

// Address 送達地址（門牌、巷號），至少其一存在
type Address struct {
	House string `json:"house,omitempty"`
	Lane  string `json:"lane,omitempty"`
	Rule  string `json:"rule,omitempty"`
}

// String 格式化為「門牌 ซ.巷號」
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	switch {
	case a.House != "" && a.Lane != "":
		return a.House + " " + LanePrefix + a.Lane
	case a.House != "":
		return a.House
	case a.Lane != "":
		return LanePrefix + a.Lane
	}
	return ""
}

// Fields 從訊息擷取出的送達資訊
type Fields struct {
	DeliveryTime    string   `json:"delivery_time,omitempty"`
	DeliveryAddress *Address `json:"delivery_address,omitempty"`
}

// ExtractFields 擷取送達時間與地址，找不到時欄位為空
func (e *Engine) ExtractFields(text string) Fields {
	return Fields{
		DeliveryTime:    timeRule.FindString(text),
		DeliveryAddress: extractAddress(text),
	}
}

func extractAddress(text string) *Address {
	for _, rule := range addressRules {
		span := rule.pattern.FindString(text)
		if span == "" {
			continue
		}
		return decomposeAddress(rule.name, span)
	}
	return nil
}

// decomposeAddress 只在已錨定的片段內拆出巷號與門牌
func decomposeAddress(rule, span string) *Address {
	addr := &Address{Rule: rule}

	rest := span
	if loc := laneToken.FindStringSubmatchIndex(span); loc != nil {
		addr.Lane = span[loc[2]:loc[3]]
		rest = span[:loc[0]] + " " + span[loc[1]:]
	}
	addr.House = houseToken.FindString(rest)

	if addr.House == "" && addr.Lane == "" {
		return nil
	}
	return addr
}
