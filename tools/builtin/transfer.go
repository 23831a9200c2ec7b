package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Flames4fun/csl-core/schema"
	"github.com/Flames4fun/csl-core/tools"
)

// Transfer simulates a money transfer. It performs no real payment; it
// exists as the canonical side-effecting tool to put behind a gate, since
// a blocked transfer must never produce a receipt.
type Transfer struct {
	*tools.BaseTool
}

// TransferReceipt is the result of a completed transfer.
type TransferReceipt struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Recipient     string  `json:"recipient"`
	Currency      string  `json:"currency"`
	Memo          string  `json:"memo,omitempty"`
	Status        string  `json:"status"`
	CompletedAt   string  `json:"completed_at"`
}

// NewTransfer creates a transfer tool.
func NewTransfer() *Transfer {
	toolSchema := tools.CreateToolSchema(
		"Send a payment to a recipient",
		map[string]interface{}{
			"amount":    tools.NumberProperty("Amount to transfer"),
			"recipient": tools.StringProperty("Account name of the recipient"),
			"currency":  tools.StringProperty("ISO currency code (default USD)"),
			"memo":      tools.StringProperty("Optional transfer note"),
		},
		[]string{"amount", "recipient"},
	)

	return &Transfer{
		BaseTool: tools.NewBaseTool("transfer", "Send a payment to a recipient", toolSchema),
	}
}

// Execute performs the simulated transfer.
func (t *Transfer) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var params struct {
		Amount    float64 `json:"amount"`
		Recipient string  `json:"recipient"`
		Currency  string  `json:"currency"`
		Memo      string  `json:"memo"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, schema.NewValidationError("input", string(input), "invalid JSON format")
	}

	if params.Amount <= 0 {
		return nil, schema.NewValidationError("amount", params.Amount, "amount must be positive")
	}
	if params.Recipient == "" {
		return nil, schema.NewValidationError("recipient", params.Recipient, "recipient cannot be empty")
	}
	if params.Currency == "" {
		params.Currency = "USD"
	}

	receipt := TransferReceipt{
		TransactionID: uuid.NewString(),
		Amount:        params.Amount,
		Recipient:     params.Recipient,
		Currency:      params.Currency,
		Memo:          params.Memo,
		Status:        "completed",
		CompletedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	out, err := json.Marshal(receipt)
	if err != nil {
		return nil, schema.NewToolError(t.Name(), "marshal", fmt.Errorf("encode receipt: %w", err))
	}
	return out, nil
}
