package normalize

import (
	"strings"

	"github.com/gyeh/ripsconv/internal/model"
)

// Text renders any value as trimmed free text.
func Text(v model.Value) string {
	return strings.TrimSpace(v.Text())
}
