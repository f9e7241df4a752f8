package order

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is one confirmed order kept for the operator's /orders overview.
type Record struct {
	ID         string    `json:"id"`
	ServiceKey string    `json:"service_key"`
	Service    string    `json:"service"`
	Region     string    `json:"region"`
	Amount     string    `json:"amount"`
	Total      string    `json:"total"`
	Note       string    `json:"note,omitempty"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Log keeps confirmed orders in memory for the process lifetime. Nothing is
// persisted; the admin notification is the operational record.
type Log struct {
	mu      sync.Mutex
	records []Record
}

func NewLog() *Log {
	return &Log{records: make([]Record, 0)}
}

// Enqueue implements Notifier so the log can sit next to the admin notifier
// in a Fanout.
func (l *Log) Enqueue(c Confirmation) {
	l.Append(c)
}

// Append records a confirmation and assigns it an order id.
func (l *Log) Append(c Confirmation) Record {
	rec := Record{
		ID:         uuid.NewString(),
		ServiceKey: c.ServiceKey,
		Service:    c.Service,
		Region:     c.Region,
		Amount:     c.Amount,
		Total:      c.Total,
		Note:       c.Note,
		UserID:     c.User.ChatID,
		Username:   c.User.Handle,
		CreatedAt:  c.At,
	}

	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
	return rec
}

// Records returns a copy of everything confirmed so far, oldest first.
func (l *Log) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}
