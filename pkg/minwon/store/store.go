package store

import (
	"context"
	"time"
)

// Store persists complaints together with their generated titles
type Store interface {
	Close() error

	SaveComplaint(ctx context.Context, c Complaint) error
	GetComplaint(ctx context.Context, id string) (Complaint, error)
	// RecentComplaints returns up to limit complaints, newest first.
	RecentComplaints(ctx context.Context, limit int) ([]Complaint, error)
	// CountByTier returns how many stored titles each summary tier produced.
	CountByTier(ctx context.Context) (map[string]int64, error)
}

// Complaint represents a stored complaint
type Complaint struct {
	ID           string
	Text         string
	Address      string
	Category     string
	Title        string
	Summary      string
	Tier         string
	ShortAddress string
	Verdict      *Verdict // nil when the category was supplied by the caller
	CreatedAt    time.Time
}

// Verdict is the classification attached to a complaint
type Verdict struct {
	AgencyName string
	AgencyCode string
	Confidence float64
	Reasoning  string
	Sources    []string
}
