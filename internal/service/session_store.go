package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"blupr/internal/engine"
)

// SessionStore guarda el estado de la encuesta (respuestas, cursor y flag de guardado)
// por identidad. El motor no guarda estado; lo hace este store.
type SessionStore interface {
	Load(ctx context.Context, identity string) (engine.State, bool, error)
	Save(ctx context.Context, identity string, state engine.State) error
	Delete(ctx context.Context, identity string) error
}

type memorySessionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]memorySession
}

type memorySession struct {
	state     engine.State
	expiresAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) SessionStore {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &memorySessionStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]memorySession),
	}
}

func (s *memorySessionStore) Load(_ context.Context, identity string) (engine.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[identity]
	if !ok {
		return engine.State{}, false, nil
	}
	if s.now().After(item.expiresAt) {
		delete(s.items, identity)
		return engine.State{}, false, nil
	}
	st := item.state
	st.Responses = item.state.Responses.Clone()
	return st, true, nil
}

func (s *memorySessionStore) Save(_ context.Context, identity string, state engine.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(identity) == "" {
		return ErrInvalidIdentity
	}
	state.Responses = state.Responses.Clone()
	s.items[identity] = memorySession{state: state, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, identity)
	return nil
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisSessionStore struct {
	client  redisKV
	ttl     time.Duration
	prefix  string
	timeout time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &redisSessionStore{
		client:  client,
		ttl:     ttl,
		prefix:  "survey:session:",
		timeout: 500 * time.Millisecond,
	}
}

func (s *redisSessionStore) Load(ctx context.Context, identity string) (engine.State, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.client.Get(ctx, s.prefix+identity).Bytes()
	if errors.Is(err, redis.Nil) {
		return engine.State{}, false, nil
	}
	if err != nil {
		return engine.State{}, false, err
	}
	var st engine.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return engine.State{}, false, err
	}
	if st.Responses == nil {
		st.Responses = engine.NewState().Responses
	}
	return st, true, nil
}

func (s *redisSessionStore) Save(ctx context.Context, identity string, state engine.State) error {
	if strings.TrimSpace(identity) == "" {
		return ErrInvalidIdentity
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+identity, payload, s.ttl).Err()
}

func (s *redisSessionStore) Delete(ctx context.Context, identity string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+identity).Err()
}
