package session

import (
	"context"
	"sync"
	"time"

	"sandwich-bot/internal/infrastructure/config"
	"sandwich-bot/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 記憶體暫存，含 TTL、容量上限與 LRU 淘汰
type MemoryStore struct {
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	mu    sync.Mutex
	store map[string]entry
	stats storeStats

	stop     chan struct{}
	stopOnce sync.Once
}

// entry 暫存條目
type entry struct {
	session     Session
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// storeStats 暫存統計
type storeStats struct {
	hits      int64
	misses    int64
	evictions int64
	errors    int64
}

// NewMemoryStore 創建記憶體暫存並啟動定期清理
func NewMemoryStore(cfg config.SessionConfig) *MemoryStore {
	m := &MemoryStore{
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		now:     time.Now,
		store:   make(map[string]entry),
		stop:    make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go m.startCleanup(cfg.CleanupInterval)
	}

	common.LogInfo("訂單暫存已初始化",
		zap.String("類型", "memory"),
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return m
}

// Save 儲存（覆蓋）使用者的待確認訂單
func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.store[s.UserID]
	if !exists && m.maxSize > 0 && len(m.store) >= m.maxSize {
		// 先清理過期項目
		m.cleanup()

		// 仍然超過上限時執行 LRU 淘汰
		if len(m.store) >= m.maxSize {
			m.evictLRU()
		}

		if len(m.store) >= m.maxSize {
			m.stats.errors++
			common.LogWarn("訂單暫存已滿", zap.Int("目前容量", len(m.store)))
			return ErrStoreFull
		}
	}

	now := m.now()
	m.store[s.UserID] = entry{
		session:    *s,
		expiresAt:  now.Add(m.ttl),
		lastAccess: now,
	}

	common.LogDebug("訂單已暫存",
		zap.String("receipt_id", s.ReceiptID),
		zap.Int("total", s.Total),
	)
	return nil
}

// Load 讀取使用者的待確認訂單，不存在或過期時回傳 ErrNotFound
func (m *MemoryStore) Load(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.store[userID]
	if !exists {
		m.stats.misses++
		return nil, ErrNotFound
	}

	now := m.now()
	if now.After(e.expiresAt) {
		delete(m.store, userID)
		m.stats.evictions++
		m.stats.misses++
		return nil, ErrNotFound
	}

	e.lastAccess = now
	e.accessCount++
	m.store[userID] = e
	m.stats.hits++

	s := e.session
	return &s, nil
}

// Delete 刪除使用者的待確認訂單，不存在時不視為錯誤
func (m *MemoryStore) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.store, userID)
	return nil
}

// startCleanup 定期清理過期項目，直到 Close
func (m *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// cleanup 清理過期項目，呼叫端需持有鎖
func (m *MemoryStore) cleanup() int {
	now := m.now()
	count := 0

	for key, e := range m.store {
		if now.After(e.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogInfo("已清理過期訂單",
			zap.Int("數量", count),
			zap.Int("剩餘", len(m.store)),
		)
	}
	return count
}

// evictLRU 淘汰最少使用的項目，呼叫端需持有鎖
func (m *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, e := range m.store {
		if oldestKey == "" ||
			e.accessCount < lowestAccessCount ||
			(e.accessCount == lowestAccessCount && e.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = e.lastAccess
			lowestAccessCount = e.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogInfo("訂單暫存已淘汰(LRU)")
	}
}

// Stats 暫存統計
func (m *MemoryStore) Stats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}

	return map[string]interface{}{
		"backend":   "memory",
		"size":      len(m.store),
		"max_size":  m.maxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"errors":    m.stats.errors,
		"hit_ratio": ratio,
	}
}

// Close 停止清理並清空暫存
func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]entry)
	common.LogInfo("訂單暫存已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
