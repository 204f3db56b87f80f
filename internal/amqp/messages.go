package amqp

import (
	"encoding/json"
	"time"
)

// Alert levels published when a user's spending approaches or passes their budget.
const (
	AlertWarning  = "warning"
	AlertExceeded = "exceeded"
)

// BudgetAlert is published after an expense pushes total spend over a threshold
// of the user's budget. Amounts travel as decimal strings.
type BudgetAlert struct {
	UserID    int64     `json:"user_id"`
	Level     string    `json:"level"`
	Total     string    `json:"total"`
	Budget    string    `json:"budget"`
	Month     string    `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlert) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertFromJSON creates a message from JSON bytes
func BudgetAlertFromJSON(data []byte) (*BudgetAlert, error) {
	var msg BudgetAlert
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
