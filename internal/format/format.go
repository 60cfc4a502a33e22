package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/Youhorng/notify-service/internal/domain"
)

// Alert renders a fraud alert into the message delivered to operators.
// Output is deterministic for a given alert and timestamp; optional fields
// are omitted when absent.
func Alert(alert domain.FraudAlert, now time.Time) string {
	risk := alert.RiskLevel()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s FRAUD ALERT\n\n", risk.Glyph(), risk)
	fmt.Fprintf(&b, "Transaction: %s\n", strings.TrimSpace(alert.TransactionID))
	fmt.Fprintf(&b, "Amount: $%.2f\n", alert.Amount)
	fmt.Fprintf(&b, "Fraud probability: %.1f%%\n", alert.FraudProbability*100)

	if alert.Category != nil && strings.TrimSpace(*alert.Category) != "" {
		fmt.Fprintf(&b, "Category: %s\n", strings.TrimSpace(*alert.Category))
	}
	if alert.Merchant != nil && strings.TrimSpace(*alert.Merchant) != "" {
		fmt.Fprintf(&b, "Merchant: %s\n", strings.TrimSpace(*alert.Merchant))
	}
	if alert.IsNighttime != nil {
		fmt.Fprintf(&b, "Time of day: %s\n", dayNightLabel(*alert.IsNighttime))
	}

	fmt.Fprintf(&b, "\nDetected at: %s", now.UTC().Format(time.RFC3339))

	return b.String()
}

func dayNightLabel(isNighttime bool) string {
	if isNighttime {
		return "night"
	}
	return "day"
}
