package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"doctor-duty-notifier/internal/domain/entity"
	"doctor-duty-notifier/internal/notifier"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var errMockDB = errors.New("mock db failure")

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// ── Mock Transactor ──

type mockTransactor struct {
	calls int
}

func (m *mockTransactor) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	m.calls++
	return fn(nil)
}

// ── Mock DutyRecordRepository ──

type mockDutyRecordRepo struct {
	records    []entity.DutyRecord
	replaceErr error
	findErr    error
}

func (m *mockDutyRecordRepo) ReplaceAll(_ *gorm.DB, records []entity.DutyRecord) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.records = make([]entity.DutyRecord, len(records))
	for i, r := range records {
		r.ID = i + 1
		m.records[i] = r
	}
	return nil
}

func (m *mockDutyRecordRepo) FindAll(_ *gorm.DB, filter *entity.ScheduleFilter) ([]entity.DutyRecord, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []entity.DutyRecord
	for _, r := range m.records {
		if filter != nil {
			if filter.Date != "" && !strings.Contains(r.DateLabel, filter.Date) {
				continue
			}
			if filter.DoctorName != "" && !strings.Contains(strings.ToLower(r.DoctorName), strings.ToLower(filter.DoctorName)) {
				continue
			}
			if filter.Category != "" && r.Category != filter.Category {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// ── Mock ScrapeRunRepository ──

type mockScrapeRunRepo struct {
	runs []entity.ScrapeRun
	now  time.Time
}

func (m *mockScrapeRunRepo) Create(_ *gorm.DB, run *entity.ScrapeRun) error {
	m.now = m.now.Add(time.Second)
	run.CreatedAt = m.now
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockScrapeRunRepo) FindRecent(_ *gorm.DB, limit int) ([]entity.ScrapeRun, error) {
	out := make([]entity.ScrapeRun, len(m.runs))
	copy(out, m.runs)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockScrapeRunRepo) FindLatest(db *gorm.DB) (*entity.ScrapeRun, error) {
	runs, _ := m.FindRecent(db, 1)
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// ── Mock SubscriptionRepository ──

type mockSubscriptionRepo struct {
	subs   map[int]*entity.Subscription
	nextID int
	// findActiveFailures makes the next N FindActive calls fail.
	findActiveFailures int
}

func newMockSubscriptionRepo() *mockSubscriptionRepo {
	return &mockSubscriptionRepo{subs: make(map[int]*entity.Subscription)}
}

func (m *mockSubscriptionRepo) Create(_ *gorm.DB, sub *entity.Subscription) error {
	m.nextID++
	sub.ID = m.nextID
	sub.CreatedAt = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	stored := *sub
	m.subs[sub.ID] = &stored
	return nil
}

func (m *mockSubscriptionRepo) Update(_ *gorm.DB, sub *entity.Subscription) error {
	stored := *sub
	m.subs[sub.ID] = &stored
	return nil
}

func (m *mockSubscriptionRepo) FindByID(_ *gorm.DB, id int) (*entity.Subscription, error) {
	if s, ok := m.subs[id]; ok {
		found := *s
		return &found, nil
	}
	return nil, nil
}

func (m *mockSubscriptionRepo) FindByEmail(_ *gorm.DB, email string) (*entity.Subscription, error) {
	var latest *entity.Subscription
	for _, s := range m.subs {
		if s.Email != nil && *s.Email == email && (latest == nil || s.ID > latest.ID) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	found := *latest
	return &found, nil
}

func (m *mockSubscriptionRepo) FindActive(_ *gorm.DB) ([]entity.Subscription, error) {
	if m.findActiveFailures > 0 {
		m.findActiveFailures--
		return nil, errMockDB
	}
	var out []entity.Subscription
	for _, s := range m.subs {
		if s.IsActive {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockSubscriptionRepo) FindActiveByEmail(db *gorm.DB, email string) (*entity.Subscription, error) {
	s, _ := m.FindByEmail(db, email)
	if s == nil || !s.IsActive {
		return nil, nil
	}
	return s, nil
}

func (m *mockSubscriptionRepo) FindActiveByEndpoint(_ *gorm.DB, endpoint string) (*entity.Subscription, error) {
	for _, s := range m.subs {
		if s.IsActive && s.PushSubscription["endpoint"] == endpoint {
			found := *s
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockSubscriptionRepo) Deactivate(_ *gorm.DB, id int) error {
	if s, ok := m.subs[id]; ok {
		s.IsActive = false
	}
	return nil
}

// ── Mock FCMTokenRepository ──

type mockFCMTokenRepo struct {
	tokens map[string]string
}

func newMockFCMTokenRepo() *mockFCMTokenRepo {
	return &mockFCMTokenRepo{tokens: make(map[string]string)}
}

func (m *mockFCMTokenRepo) Upsert(_ *gorm.DB, token *entity.FCMToken) error {
	m.tokens[token.DeviceID] = token.Token
	return nil
}

func (m *mockFCMTokenRepo) FindByDeviceID(_ *gorm.DB, deviceID string) (*entity.FCMToken, error) {
	if t, ok := m.tokens[deviceID]; ok {
		return &entity.FCMToken{DeviceID: deviceID, Token: t}, nil
	}
	return nil, nil
}

func (m *mockFCMTokenRepo) FindByDeviceIDs(_ *gorm.DB, deviceIDs []string) ([]entity.FCMToken, error) {
	var out []entity.FCMToken
	for _, id := range deviceIDs {
		if t, ok := m.tokens[id]; ok {
			out = append(out, entity.FCMToken{DeviceID: id, Token: t})
		}
	}
	return out, nil
}

// ── Mock DoctorSubscriptionRepository ──

type mockDoctorSubscriptionRepo struct {
	subs []entity.DoctorSubscription
	// findDevicesFailures makes the next N FindDeviceIDsByDoctor calls fail.
	findDevicesFailures int
}

func (m *mockDoctorSubscriptionRepo) Create(_ *gorm.DB, sub *entity.DoctorSubscription) error {
	sub.ID = len(m.subs) + 1
	m.subs = append(m.subs, *sub)
	return nil
}

func (m *mockDoctorSubscriptionRepo) FindByDeviceAndDoctor(_ *gorm.DB, deviceID, doctorName string) (*entity.DoctorSubscription, error) {
	for _, s := range m.subs {
		if s.DeviceID == deviceID && s.DoctorName == doctorName {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockDoctorSubscriptionRepo) FindByDevice(_ *gorm.DB, deviceID string) ([]entity.DoctorSubscription, error) {
	var out []entity.DoctorSubscription
	for _, s := range m.subs {
		if s.DeviceID == deviceID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockDoctorSubscriptionRepo) FindDeviceIDsByDoctor(_ *gorm.DB, doctorName string) ([]string, error) {
	if m.findDevicesFailures > 0 {
		m.findDevicesFailures--
		return nil, errMockDB
	}
	seen := make(map[string]bool)
	var out []string
	for _, s := range m.subs {
		if strings.EqualFold(s.DoctorName, doctorName) && !seen[s.DeviceID] {
			seen[s.DeviceID] = true
			out = append(out, s.DeviceID)
		}
	}
	return out, nil
}

func (m *mockDoctorSubscriptionRepo) Delete(_ *gorm.DB, deviceID, doctorName string) (int64, error) {
	kept := m.subs[:0]
	var removed int64
	for _, s := range m.subs {
		if s.DeviceID == deviceID && s.DoctorName == doctorName {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	m.subs = kept
	return removed, nil
}

// ── Fake extractor ──

type fakeExtractor struct {
	records []entity.DutyRecord
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeExtractor) Extract(ctx context.Context) ([]entity.DutyRecord, error) {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.records, f.err
}

// ── Mock dispatcher and deduplicator ──

type mockDispatcher struct {
	mu          sync.Mutex
	broadcasts  [][]entity.UpcomingAlert
	deviceSends map[string][]string
}

func newMockDispatcher() *mockDispatcher {
	return &mockDispatcher{deviceSends: make(map[string][]string)}
}

func (m *mockDispatcher) NotifySubscribers(_ context.Context, subs []entity.Subscription, alerts []entity.UpcomingAlert) notifier.DeliveryReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, alerts)
	return notifier.DeliveryReport{Sent: len(subs)}
}

func (m *mockDispatcher) NotifyDevices(_ context.Context, tokens []string, alert entity.UpcomingAlert) notifier.DeliveryReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(tokens) == 0 {
		return notifier.DeliveryReport{}
	}
	m.deviceSends[alert.DoctorName] = append(m.deviceSends[alert.DoctorName], tokens...)
	return notifier.DeliveryReport{Sent: len(tokens)}
}

type mockDedup struct {
	sent map[string]bool
	err  error
}

func newMockDedup() *mockDedup {
	return &mockDedup{sent: make(map[string]bool)}
}

func (m *mockDedup) MarkSent(_ context.Context, alert entity.UpcomingAlert, _ time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	key := alert.DateLabel + "|" + alert.DoctorName + "|" + alert.TimeRangeText
	if m.sent[key] {
		return false, nil
	}
	m.sent[key] = true
	return true, nil
}
