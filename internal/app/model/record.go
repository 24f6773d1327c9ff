package model

import "context"

// Record is one row of a read-only listing source (a character card or a preset).
type Record struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Avatar      string `json:"avatar,omitempty"`
}

type Filter struct {
	// Search matches record names case-insensitively; empty matches everything.
	Search string
	// ID selects a single record when set.
	ID    string
	Limit int
}

type Lister interface {
	List(ctx context.Context, filter Filter) ([]Record, error)
}

type ListerFunc func(ctx context.Context, filter Filter) ([]Record, error)

func (f ListerFunc) List(ctx context.Context, filter Filter) ([]Record, error) {
	return f(ctx, filter)
}
