package amqp

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), expected: true},
		{name: "closed connection", err: errors.New("connection closed"), expected: true},
		{name: "EOF", err: errors.New("unexpected EOF"), expected: true},
		{name: "broken pipe", err: errors.New("write: broken pipe"), expected: true},
		{name: "amqp closed", err: amqp091.ErrClosed, expected: true},
		{name: "other error", err: errors.New("invalid input"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	if client.isCircuitOpen() {
		t.Fatal("Circuit breaker should be closed initially")
	}

	for i := 0; i < maxFailures; i++ {
		client.recordFailure()
	}
	if !client.isCircuitOpen() {
		t.Fatal("Circuit breaker should be open after max failures")
	}

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if client.isCircuitOpen() {
		t.Fatal("Circuit should transition to half-open after timeout")
	}
	if atomic.LoadInt32(&client.state) != StateHalfOpen {
		t.Fatal("State should be StateHalfOpen after timeout")
	}

	client.recordFailure()
	if atomic.LoadInt32(&client.state) != StateOpen {
		t.Fatal("A failure while half-open should reopen the circuit")
	}

	client.recordSuccess()
	if client.isCircuitOpen() || atomic.LoadInt64(&client.failureCount) != 0 {
		t.Fatal("Success should close the circuit and reset failures")
	}
}

func TestClient_PublishBudgetAlertGuards(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	atomic.StoreInt32(&client.state, StateOpen)
	client.lastFailure = time.Now()
	err := client.PublishBudgetAlert(context.Background(), BudgetAlert{UserID: 1, Level: AlertExceeded})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	atomic.StoreInt32(&client.state, StateClosed)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.PublishBudgetAlert(ctx, BudgetAlert{UserID: 1}); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	err = client.PublishBudgetAlert(context.Background(), BudgetAlert{UserID: 1})
	if err == nil || !strings.Contains(err.Error(), "publish message") {
		t.Fatalf("expected publish error without a connection, got %v", err)
	}
	if atomic.LoadInt64(&client.failureCount) != 1 {
		t.Fatalf("expected one recorded failure, got %d", client.failureCount)
	}
}

func TestBudgetAlertFromJSON(t *testing.T) {
	msg, err := BudgetAlertFromJSON([]byte(`{"user_id": 3, "level": "warning", "total": "80.00", "budget": "100"}`))
	if err != nil {
		t.Fatalf("BudgetAlertFromJSON() error = %v", err)
	}
	if msg.UserID != 3 || msg.Level != AlertWarning || msg.Total != "80.00" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	if _, err := BudgetAlertFromJSON([]byte(`{"user_id": "x"}`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
