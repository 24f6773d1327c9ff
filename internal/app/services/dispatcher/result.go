package dispatcher

import (
	"strings"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/BlackRRR/persona-bot/internal/log"
)

type Builder struct {
	MaxResults int
	Logger     log.Logger
}

// Normalize drops items without id or title, keeps the first item for every
// id and truncates to MaxResults. Input order is preserved.
func (b Builder) Normalize(raw []model.ResultItem) []model.ResultItem {
	limit := b.MaxResults
	if limit <= 0 {
		limit = model.DefaultMaxResults
	}

	out := make([]model.ResultItem, 0, minInt(len(raw), limit))
	seen := make(map[string]struct{}, len(raw))

	for i, item := range raw {
		if len(out) == limit {
			b.warn("results truncated", "limit", limit, "dropped", len(raw)-i)
			break
		}

		if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.Title) == "" {
			b.warn("result item dropped", "position", i, "id", item.ID, "reason", "missing id or title")
			continue
		}

		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}

		out = append(out, item)
	}

	return out
}

func (b Builder) warn(msg string, keyValues ...interface{}) {
	if b.Logger == nil {
		return
	}
	b.Logger.With(keyValues...).Warn(msg)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
