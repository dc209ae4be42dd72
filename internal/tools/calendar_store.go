package tools

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event is one calendar entry or reminder.
type Event struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
	Reminder bool      `json:"reminder"`
}

// EventStore persists calendar events.
type EventStore interface {
	Add(ctx context.Context, event Event) error
	List(ctx context.Context, from, to time.Time) ([]Event, error)
}

const calendarKey = "addy:calendar:events"

// RedisEventStore keeps events in a sorted set scored by start time.
type RedisEventStore struct {
	client *redis.Client
}

func NewRedisEventStore(client *redis.Client) *RedisEventStore {
	return &RedisEventStore{client: client}
}

func (s *RedisEventStore) Add(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.client.ZAdd(ctx, calendarKey, redis.Z{
		Score:  float64(event.StartsAt.Unix()),
		Member: string(payload),
	}).Err()
}

func (s *RedisEventStore) List(ctx context.Context, from, to time.Time) ([]Event, error) {
	members, err := s.client.ZRangeByScore(ctx, calendarKey, &redis.ZRangeBy{
		Min: formatScore(from.Unix()),
		Max: formatScore(to.Unix()),
	}).Result()
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(members))
	for _, m := range members {
		var ev Event
		if err := json.Unmarshal([]byte(m), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func formatScore(unix int64) string {
	return strconv.FormatInt(unix, 10)
}

// MemEventStore is the in-memory store used in tests and when Redis is not
// configured.
type MemEventStore struct {
	mu     sync.Mutex
	events []Event
}

func NewMemEventStore() *MemEventStore { return &MemEventStore{} }

func (s *MemEventStore) Add(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	s.events = append(s.events, event)
	return nil
}

func (s *MemEventStore) List(ctx context.Context, from, to time.Time) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if !ev.StartsAt.Before(from) && !ev.StartsAt.After(to) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}
