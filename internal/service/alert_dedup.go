package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"doctor-duty-notifier/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// RedisAlertKeyPrefix namespaces sent-alert markers.
	RedisAlertKeyPrefix = "notify:alert:"

	// Interval for purging expired in-memory markers
	memoryDedupCleanupInterval = 5 * time.Minute
)

// AlertDeduplicator remembers which alerts were already dispatched so that a
// duty is announced once, not on every matching pass.
type AlertDeduplicator interface {
	// MarkSent records the alert and reports whether this call was the first.
	MarkSent(ctx context.Context, alert entity.UpcomingAlert, ttl time.Duration) (bool, error)
}

// AlertKey identifies one duty occurrence.
func AlertKey(alert entity.UpcomingAlert) string {
	return RedisAlertKeyPrefix + strings.Join([]string{
		strings.TrimSpace(alert.DateLabel),
		string(alert.Category),
		strings.ToLower(strings.TrimSpace(alert.DoctorName)),
		strings.TrimSpace(alert.TimeRangeText),
	}, "|")
}

// =============================================================================
// Redis
// =============================================================================

type RedisAlertDeduplicator struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewRedisAlertDeduplicator(redisClient *redis.Client, log *logrus.Logger) *RedisAlertDeduplicator {
	return &RedisAlertDeduplicator{
		redisClient: redisClient,
		log:         log,
	}
}

// MarkSent uses SET NX so concurrent passes agree on a single sender.
func (d *RedisAlertDeduplicator) MarkSent(ctx context.Context, alert entity.UpcomingAlert, ttl time.Duration) (bool, error) {
	key := AlertKey(alert)
	first, err := d.redisClient.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		d.log.Warnf("Failed to mark alert %q as sent: %+v", key, err)
		return false, fmt.Errorf("mark alert sent: %w", err)
	}
	if !first {
		d.log.Debugf("Alert %q already sent", key)
	}
	return first, nil
}

// =============================================================================
// In-memory
// =============================================================================

// MemoryAlertDeduplicator is used when Redis is not configured. Markers are
// lost on restart. Call Stop() during graceful shutdown.
type MemoryAlertDeduplicator struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
	log     *logrus.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

func NewMemoryAlertDeduplicator(log *logrus.Logger) *MemoryAlertDeduplicator {
	d := &MemoryAlertDeduplicator{
		expires:  make(map[string]time.Time),
		now:      time.Now,
		log:      log,
		stopChan: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.cleanupLoop()

	return d
}

func (d *MemoryAlertDeduplicator) MarkSent(_ context.Context, alert entity.UpcomingAlert, ttl time.Duration) (bool, error) {
	key := AlertKey(alert)
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if until, ok := d.expires[key]; ok && now.Before(until) {
		return false, nil
	}
	d.expires[key] = now.Add(ttl)
	return true, nil
}

// Stop ends the cleanup goroutine. Safe to call multiple times.
func (d *MemoryAlertDeduplicator) Stop() {
	if d.stopped.CompareAndSwap(false, true) {
		close(d.stopChan)
		d.wg.Wait()
		d.log.Info("MemoryAlertDeduplicator stopped")
	}
}

func (d *MemoryAlertDeduplicator) cleanupLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(memoryDedupCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopChan:
			return
		case <-ticker.C:
			d.purgeExpired()
		}
	}
}

func (d *MemoryAlertDeduplicator) purgeExpired() {
	now := d.now()
	var cleaned int

	d.mu.Lock()
	for key, until := range d.expires {
		if !now.Before(until) {
			delete(d.expires, key)
			cleaned++
		}
	}
	d.mu.Unlock()

	if cleaned > 0 {
		d.log.Debugf("Purged %d expired alert markers", cleaned)
	}
}
