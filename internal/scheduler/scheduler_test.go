package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"doctor-duty-notifier/internal/delivery/dto"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngester struct {
	mu       sync.Mutex
	triggers []string
	err      error
	called   chan struct{}
}

func (f *fakeIngester) Ingest(ctx context.Context, trigger string) (*dto.IngestResponse, error) {
	f.mu.Lock()
	f.triggers = append(f.triggers, trigger)
	f.mu.Unlock()
	if f.called != nil {
		f.called <- struct{}{}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &dto.IngestResponse{Status: "success", Count: 3}, nil
}

type fakeNotifier struct {
	now time.Time
	err error
}

func (f *fakeNotifier) CheckAndNotify(ctx context.Context, now time.Time) (*dto.NotifyReport, error) {
	f.now = now
	if f.err != nil {
		return nil, f.err
	}
	return &dto.NotifyReport{Matched: 1, New: 1, Sent: 2}, nil
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var ist = time.FixedZone("IST", 5*3600+1800)

func TestRunNotifyUsesConfiguredLocation(t *testing.T) {
	notifier := &fakeNotifier{}
	s := New(Config{ScrapeInterval: time.Hour, NotifyInterval: time.Minute, Location: ist}, &fakeIngester{}, notifier, newTestLogger())
	fixed := time.Date(2026, time.January, 31, 8, 45, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.RunNotify()

	assert.Equal(t, ist, notifier.now.Location())
	assert.True(t, fixed.Equal(notifier.now))
	assert.Equal(t, 14, notifier.now.Hour())
}

func TestRunIngestUsesScheduleTrigger(t *testing.T) {
	ingester := &fakeIngester{}
	s := New(Config{ScrapeInterval: time.Hour, NotifyInterval: time.Minute}, ingester, &fakeNotifier{}, newTestLogger())

	s.RunIngest()

	assert.Equal(t, []string{"schedule"}, ingester.triggers)
}

func TestJobErrorsAreSwallowed(t *testing.T) {
	s := New(Config{ScrapeInterval: time.Hour, NotifyInterval: time.Minute},
		&fakeIngester{err: errors.New("site down")}, &fakeNotifier{err: errors.New("db down")}, newTestLogger())

	assert.NotPanics(t, func() {
		s.RunIngest()
		s.RunNotify()
	})
}

func TestStartRunsScrapeOnStart(t *testing.T) {
	ingester := &fakeIngester{called: make(chan struct{}, 1)}
	s := New(Config{
		ScrapeInterval:   time.Hour,
		NotifyInterval:   time.Hour,
		RunScrapeOnStart: true,
		Location:         ist,
	}, ingester, &fakeNotifier{}, newTestLogger())

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())

	select {
	case <-ingester.called:
	case <-time.After(2 * time.Second):
		t.Fatal("scrape on start did not run")
	}

	s.Stop()
	s.Stop()
	assert.Equal(t, []string{"schedule"}, ingester.triggers)
}

func TestStartRejectsZeroInterval(t *testing.T) {
	s := New(Config{ScrapeInterval: 0, NotifyInterval: time.Minute}, &fakeIngester{}, &fakeNotifier{}, newTestLogger())

	assert.Error(t, s.Start())
}
