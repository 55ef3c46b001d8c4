package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tariffnom/tariffnom/internal/core/errx"
	logx "github.com/tariffnom/tariffnom/pkg/logger"
)

// Message roles of the transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one transcript entry. Append-only; never mutated after
// creation.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptRepository mirrors the in-memory transcript into per-tab
// storage so reopening the widget within the same tab session restores
// the conversation.
type TranscriptRepository interface {
	AddMessage(ctx context.Context, tabID string, msg Message) error
	LoadTranscript(ctx context.Context, tabID string) ([]Message, error)
	ClearTranscript(ctx context.Context, tabID string) error
}

// RedisTranscriptRepository stores transcripts as Redis lists with a TTL
// refreshed on every append.
type RedisTranscriptRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisTranscriptRepository(rdb redis.Cmdable, ttl time.Duration) *RedisTranscriptRepository {
	return &RedisTranscriptRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisTranscriptRepository) transcriptKey(tabID string) string {
	return fmt.Sprintf("tariffnom:chat:%s:messages", tabID)
}

func (r *RedisTranscriptRepository) AddMessage(ctx context.Context, tabID string, msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		logx.Error().Err(err).Str("tabID", tabID).Msg("failed to marshal transcript message")
		return fmt.Errorf("marshal message: %w", err)
	}
	key := r.transcriptKey(tabID)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push transcript message")
		return errx.WrapStore(err)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set transcript expiry")
			return errx.WrapStore(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to refresh transcript TTL")
		}
	}
	return nil
}

func (r *RedisTranscriptRepository) LoadTranscript(ctx context.Context, tabID string) ([]Message, error) {
	key := r.transcriptKey(tabID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load transcript")
		return nil, errx.WrapStore(err)
	}

	msgs := make([]Message, 0, len(rows))
	for i, s := range rows {
		var m Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("tabID", tabID).Int("index", i).Msg("failed to unmarshal transcript message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (r *RedisTranscriptRepository) ClearTranscript(ctx context.Context, tabID string) error {
	key := r.transcriptKey(tabID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to clear transcript")
		return errx.WrapStore(err)
	}
	return nil
}

var _ TranscriptRepository = (*RedisTranscriptRepository)(nil)
