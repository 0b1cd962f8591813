package command

import (
	"encoding/json"
	"fmt"
)

// indentJSON renders v the way the commands print state: two-space indented JSON.
func indentJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render: %w", err)
	}
	return string(data), nil
}
