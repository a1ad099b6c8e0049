package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const quotaJournalPrefix = "transfer:quota:"

// QuotaJournal records the original item limit of a tenant whose quota has
// been temporarily raised, so a crash between raise and restore can be
// repaired on startup. One entry per tenant; cleared after a successful
// restore.
type QuotaJournal struct {
	rdb *redis.Client
}

func NewQuotaJournal(rdb *redis.Client) *QuotaJournal {
	return &QuotaJournal{rdb: rdb}
}

func (j *QuotaJournal) Record(ctx context.Context, tenantID uuid.UUID, originalLimit int) error {
	return j.rdb.Set(ctx, quotaJournalPrefix+tenantID.String(), originalLimit, 0).Err()
}

func (j *QuotaJournal) Clear(ctx context.Context, tenantID uuid.UUID) error {
	return j.rdb.Del(ctx, quotaJournalPrefix+tenantID.String()).Err()
}

// Pending returns all tenants with an unrestored quota entry.
func (j *QuotaJournal) Pending(ctx context.Context) (map[uuid.UUID]int, error) {
	pending := make(map[uuid.UUID]int)
	var cursor uint64
	for {
		keys, next, err := j.rdb.Scan(ctx, cursor, quotaJournalPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan quota journal: %w", err)
		}
		for _, key := range keys {
			val, err := j.rdb.Get(ctx, key).Result()
			if err != nil {
				continue
			}
			limit, err := strconv.Atoi(val)
			if err != nil {
				continue
			}
			id, err := uuid.Parse(strings.TrimPrefix(key, quotaJournalPrefix))
			if err != nil {
				continue
			}
			pending[id] = limit
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return pending, nil
}
