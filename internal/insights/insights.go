// Package insights is the bridge to an external text-generation
// service. Customer data is sanitized before leaving the process, and
// service failures surface as messages rather than faults: they never
// touch ledger or store state.
package insights

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/loyaltypro/loyaltypro/internal/store"
)

// SanitizedCustomer is the view of a customer shared with the external
// service: the name and PIN are stripped and an anonymous identifier
// derived from the mobile's last four digits takes their place.
type SanitizedCustomer struct {
	CustomerID string                    `json:"customerId"`
	Mobile     string                    `json:"mobile"`
	Points     int64                     `json:"points"`
	TotalSpent decimal.Decimal           `json:"totalSpent"`
	History    []store.TransactionRecord `json:"history"`
}

// Sanitize strips credentials and identity from customer records.
func Sanitize(customers []store.Customer) []SanitizedCustomer {
	out := make([]SanitizedCustomer, 0, len(customers))
	for _, c := range customers {
		out = append(out, SanitizedCustomer{
			CustomerID: "CUST-" + lastFour(c.Mobile),
			Mobile:     c.Mobile,
			Points:     c.Points,
			TotalSpent: c.TotalSpent,
			History:    c.History,
		})
	}
	return out
}

func lastFour(mobile string) string {
	if len(mobile) <= 4 {
		return mobile
	}
	return mobile[len(mobile)-4:]
}

const systemInstruction = `You are a world-class data analyst for a high-end customer loyalty program called "Loyalty Pro".
Your task is to analyze the provided customer data and answer the user's question with actionable insights.

The data is provided as an array of JSON objects. Each object represents a customer.
- 'mobile': Customer's mobile number.
- 'points': Current loyalty points balance.
- 'totalSpent': Lifetime spending in Rupees.
- 'history': An array of their past transactions, including 'date', 'bill' amount, and 'points' earned.
- 'customerId': A unique anonymous identifier for the customer.

Based on the data provided, please answer the user's question. Provide a concise, well-formatted, and insightful response. Use markdown for formatting if it helps clarity (e.g., lists, bold text).`

// buildUserContent renders the sanitized data plus the admin's question
// into the single user turn sent to the model.
func buildUserContent(customers []SanitizedCustomer, prompt string) (string, error) {
	data, err := json.MarshalIndent(customers, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding customer data: %w", err)
	}
	return fmt.Sprintf("Here is the customer data:\n```json\n%s\n```\n\nUser's Question: %q\n", data, prompt), nil
}
