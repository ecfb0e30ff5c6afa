package views

import (
	"encoding/json"

	"github.com/geordievannese/garuda-calculator/server/internal/models"
)

// csrfHeaders is the hx-headers value that sends the CSRF token with every HTMX request.
func csrfHeaders(token string) string {
	b, err := json.Marshal(map[string]string{"X-CSRF-Token": token})
	if err != nil {
		return "{}"
	}
	return string(b)
}

func fieldLabel(f models.FormField) string {
	if f.Unit == "" {
		return f.Label
	}
	return f.Label + " (" + f.Unit + ")"
}
