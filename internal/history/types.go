package history

import (
	"context"
	"time"
)

// ExchangeRecord stores one completed audio exchange.
type ExchangeRecord struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Transport  string    `json:"transport"`
	Transcript string    `json:"transcript"`
	ReplyText  string    `json:"reply_text"`
	Status     string    `json:"status"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists and retrieves completed exchanges.
type Store interface {
	SaveExchange(ctx context.Context, record ExchangeRecord) error
	RecentExchanges(ctx context.Context, sessionID string, limit int) ([]ExchangeRecord, error)
	Close() error
}
