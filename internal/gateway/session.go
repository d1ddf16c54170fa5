package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session 登录态。token 不落全局变量：handler 开头取一次，之后显式传给每个出站调用。
type Session struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (s *Session) IsAdmin() bool { return s != nil && s.Role == "admin" }

// Store 会话与一次性 flash 消息
type Store interface {
	Save(ctx context.Context, sid string, s Session, ttl time.Duration) error
	Get(ctx context.Context, sid string) (*Session, error)
	Delete(ctx context.Context, sid string) error
	PushFlash(ctx context.Context, sid, msg string) error
	PopFlashes(ctx context.Context, sid string) ([]string, error)
}

// ---- redis 实现（生产） ----

type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(addr, pass string, db int) *RedisStore {
	return &RedisStore{rdb: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func sessKey(sid string) string  { return "sess:" + sid }
func flashKey(sid string) string { return "flash:" + sid }

func (r *RedisStore) Save(ctx context.Context, sid string, s Session, ttl time.Duration) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessKey(sid), b, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, sid string) (*Session, error) {
	b, err := r.rdb.Get(ctx, sessKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, sid string) error {
	return r.rdb.Del(ctx, sessKey(sid), flashKey(sid)).Err()
}

func (r *RedisStore) PushFlash(ctx context.Context, sid, msg string) error {
	if err := r.rdb.RPush(ctx, flashKey(sid), msg).Err(); err != nil {
		return err
	}
	return r.rdb.Expire(ctx, flashKey(sid), 10*time.Minute).Err()
}

func (r *RedisStore) PopFlashes(ctx context.Context, sid string) ([]string, error) {
	pipe := r.rdb.TxPipeline()
	lr := pipe.LRange(ctx, flashKey(sid), 0, -1)
	pipe.Del(ctx, flashKey(sid))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return lr.Val(), nil
}

// ---- 内存实现（测试/单机） ----

type MemoryStore struct {
	mu      sync.Mutex
	sess    map[string]Session
	flashes map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sess: map[string]Session{}, flashes: map[string][]string{}}
}

func (m *MemoryStore) Save(_ context.Context, sid string, s Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess[sid] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sid string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sess[sid]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, sid)
	delete(m.flashes, sid)
	return nil
}

func (m *MemoryStore) PushFlash(_ context.Context, sid, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flashes[sid] = append(m.flashes[sid], msg)
	return nil
}

func (m *MemoryStore) PopFlashes(_ context.Context, sid string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.flashes[sid]
	delete(m.flashes, sid)
	return out, nil
}
