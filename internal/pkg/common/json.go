package common

import (
	"bytes"
	"encoding/json"
)

// ToJSONIndent 將結構體轉換為縮排 JSON，不轉義 HTML 與泰文字元
func ToJSONIndent(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
