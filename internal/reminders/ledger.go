package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/2beens/lifedash/internal/store"
	"github.com/2beens/lifedash/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	LedgerKey              = "reminders:ledger"
	DefaultLedgerRetention = 48 * time.Hour
	DefaultRedisLedgerKey  = "lifedash:reminders:ledger"
)

// Entry records one emitted reminder under its logical dedup key.
type Entry struct {
	ID      string    `json:"id"`
	Key     string    `json:"key"`
	RuleID  string    `json:"ruleId"`
	FiredAt time.Time `json:"firedAt"`
}

func NewEntry(key, ruleID string, firedAt time.Time) Entry {
	return Entry{
		ID:      uuid.NewString(),
		Key:     key,
		RuleID:  ruleID,
		FiredAt: firedAt,
	}
}

// Ledger is the append-only firing log used for dedup. Only the engine pass writes to it.
type Ledger interface {
	Entries(ctx context.Context) ([]Entry, error)
	Append(ctx context.Context, entry Entry) error
	// Prune drops the entries fired before the cutoff and returns how many were dropped.
	Prune(ctx context.Context, before time.Time) (int, error)
}

// LedgerView answers dedup questions over a ledger snapshot.
type LedgerView struct {
	lastFired map[string]time.Time
}

func NewLedgerView(entries []Entry) *LedgerView {
	v := &LedgerView{lastFired: make(map[string]time.Time, len(entries))}
	for _, e := range entries {
		v.Record(e)
	}
	return v
}

func (v *LedgerView) Record(e Entry) {
	if last, ok := v.lastFired[e.Key]; !ok || e.FiredAt.After(last) {
		v.lastFired[e.Key] = e.FiredAt
	}
}

func (v *LedgerView) LastFired(key string) (time.Time, bool) {
	t, ok := v.lastFired[key]
	return t, ok
}

// Covered reports whether key already fired inside the horizon.
func (v *LedgerView) Covered(key string, h Horizon) bool {
	last, ok := v.lastFired[key]
	return ok && h.Covers(last)
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FiredAt.Before(entries[j].FiredAt)
	})
}

type MemoryLedger struct {
	mutex   sync.Mutex
	entries []Entry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (l *MemoryLedger) Entries(context.Context) ([]Entry, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]Entry(nil), l.entries...), nil
}

func (l *MemoryLedger) Append(_ context.Context, entry Entry) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.entries = append(l.entries, entry)
	sortEntries(l.entries)
	return nil
}

func (l *MemoryLedger) Prune(_ context.Context, before time.Time) (int, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.FiredAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	pruned := len(l.entries) - len(kept)
	l.entries = kept
	return pruned, nil
}

// StoreLedger keeps the ledger as one JSON array in the record store.
type StoreLedger struct {
	mutex sync.Mutex
	store store.RecordStore
}

func NewStoreLedger(s store.RecordStore) *StoreLedger {
	return &StoreLedger{store: s}
}

func (l *StoreLedger) Entries(ctx context.Context) ([]Entry, error) {
	entries := []Entry{}
	if _, err := store.GetJSON(ctx, l.store, LedgerKey, &entries); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return entries, nil
}

func (l *StoreLedger) Append(ctx context.Context, entry Entry) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	entries, err := l.Entries(ctx)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	sortEntries(entries)
	return store.SetJSON(ctx, l.store, LedgerKey, entries)
}

func (l *StoreLedger) Prune(ctx context.Context, before time.Time) (int, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	entries, err := l.Entries(ctx)
	if err != nil {
		return 0, err
	}
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.FiredAt.Before(before) {
			kept = append(kept, e)
		}
	}
	pruned := len(entries) - len(kept)
	if pruned == 0 {
		return 0, nil
	}
	if err := store.SetJSON(ctx, l.store, LedgerKey, kept); err != nil {
		return 0, err
	}
	return pruned, nil
}

// RedisLedger keeps entries in a sorted set scored by firing time (unix millis).
type RedisLedger struct {
	rdb *redis.Client
	key string
}

func NewRedisLedger(rdb *redis.Client, key string) *RedisLedger {
	if key == "" {
		key = DefaultRedisLedgerKey
	}
	return &RedisLedger{
		rdb: rdb,
		key: key,
	}
}

func (l *RedisLedger) Entries(ctx context.Context) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.redis.entries")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	members, err := l.rdb.ZRange(ctx, l.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		var e Entry
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			return nil, fmt.Errorf("decode ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (l *RedisLedger) Append(ctx context.Context, entry Entry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.redis.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	member, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return l.rdb.ZAdd(ctx, l.key, &redis.Z{
		Score:  float64(entry.FiredAt.UnixMilli()),
		Member: string(member),
	}).Err()
}

func (l *RedisLedger) Prune(ctx context.Context, before time.Time) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.redis.prune")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	removed, err := l.rdb.ZRemRangeByScore(ctx, l.key, "-inf", "("+strconv.FormatInt(before.UnixMilli(), 10)).Result()
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}
