package anomaly

import (
	"fmt"
	"strings"

	"CoinSentry/internal/domain/models"
)

// RenderAlert formats one anomaly as a plain-text alert line for
// notification sinks.
func RenderAlert(a *models.Anomaly) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s %s (score %.2f)", strings.ToUpper(a.Severity), a.Symbol, a.Type, a.Score)
	if a.Direction != "" {
		fmt.Fprintf(&b, " direction=%s", a.Direction)
	}
	if a.Pattern != "" {
		fmt.Fprintf(&b, " pattern=%s", a.Pattern)
	}
	if len(a.Reasons) > 0 {
		fmt.Fprintf(&b, " - %s", strings.Join(a.Reasons, "; "))
	}
	return b.String()
}
