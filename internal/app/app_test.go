package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/thamdi/focusd/internal/bus"
	"github.com/thamdi/focusd/internal/countdown"
	"github.com/thamdi/focusd/internal/dispatch"
	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
	"github.com/thamdi/focusd/internal/storage"
)

// mockSink collects deliveries.
type mockSink struct {
	mu sync.Mutex
	ui []*domain.Notification
}

func (m *mockSink) DeliverToUI(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ui = append(m.ui, n)
	return nil
}

func (m *mockSink) DeliverToOS(context.Context, *domain.Notification, domain.Urgency, bool) error {
	return nil
}

func (m *mockSink) uiCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ui)
}

func (m *mockSink) last() *domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ui) == 0 {
		return nil
	}
	return m.ui[len(m.ui)-1]
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

type fixture struct {
	app   *App
	store *storage.MemoryStore
	files *storage.FileStore
	sink  *mockSink
	bus   *bus.Bus
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	files, err := storage.NewFileStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	f := &fixture{
		store: storage.NewMemoryStore(log),
		files: files,
		sink:  &mockSink{},
		bus:   bus.New(log),
	}
	opts = append([]Option{
		WithDispatcherOptions(dispatch.WithMinSpacing(time.Millisecond), dispatch.WithPacing(time.Millisecond)),
		WithEngineOptions(countdown.WithTickInterval(20 * time.Millisecond)),
	}, opts...)
	f.app = New(f.store, f.store, f.files, f.files, f.sink, nil, f.bus, log, opts...)
	t.Cleanup(f.app.Close)
	return f
}

func TestAppTimerEndToEnd(t *testing.T) {
	f := newFixture(t)

	f.app.SetCurrentUser("u1")
	if got := f.app.CurrentUser(); got != "u1" {
		t.Fatalf("current user %q", got)
	}

	f.store.PutTask(&domain.Task{ID: "t1", UserID: "u1", Title: "Ship it", Status: domain.TaskTodo, EstimatedSessions: 1})
	f.app.StartTimer(domain.ModeFocus, 100, "t1")

	waitFor(t, 2*time.Second, func() bool { return f.sink.uiCount() == 1 })

	n := f.sink.last()
	if n.Type != domain.TypePomodoroComplete {
		t.Fatalf("expected a completion notification, got %s", n.Type)
	}

	sessions := f.store.Sessions()
	if len(sessions) != 1 || sessions[0].UserID != "u1" || sessions[0].TaskID != "t1" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}

	task, _ := f.store.GetTask(context.Background(), "t1")
	if task.Status != domain.TaskDone {
		t.Fatalf("expected task done, got %s", task.Status)
	}
}

func TestAppPauseResumeCommands(t *testing.T) {
	f := newFixture(t)
	f.app.SetCurrentUser("u1")

	f.app.StartTimer(domain.ModeFocus, 400, "")
	time.Sleep(60 * time.Millisecond)

	f.app.PauseTimer()
	time.Sleep(100 * time.Millisecond)
	if got := len(f.store.Sessions()); got != 0 {
		t.Fatalf("paused timer must not complete, got %d sessions", got)
	}

	f.app.ResumeTimer()
	waitFor(t, 2*time.Second, func() bool { return len(f.store.Sessions()) == 1 })
}

func TestAppConfigUpdatePersists(t *testing.T) {
	f := newFixture(t)

	off := false
	updated := f.app.UpdateNotificationConfig(&domain.NotificationConfigPatch{Enabled: &off})
	if updated.Enabled {
		t.Fatal("expected disabled config")
	}
	if f.app.GetNotificationConfig().Enabled {
		t.Fatal("expected the live snapshot to flip")
	}

	// The new config is on disk for the next process.
	persisted, err := f.files.LoadNotificationConfig()
	if err != nil {
		t.Fatalf("load persisted: %v", err)
	}
	if persisted == nil || persisted.Enabled {
		t.Fatalf("expected persisted disabled config, got %+v", persisted)
	}

	// And the dispatcher honors it immediately.
	f.app.SubmitNotification(&domain.Notification{ID: "n1", Type: domain.TypeSystem})
	time.Sleep(50 * time.Millisecond)
	if f.sink.uiCount() != 0 {
		t.Fatal("expected no delivery while disabled")
	}
}

func TestAppAcknowledgeSuppressesResubmission(t *testing.T) {
	f := newFixture(t)

	f.app.AcknowledgeNotification("warn-1")
	f.app.SubmitNotification(&domain.Notification{ID: "warn-1", Type: domain.TypeSystem, RequiresConfirmation: true})
	time.Sleep(50 * time.Millisecond)

	if f.sink.uiCount() != 0 {
		t.Fatal("acknowledged id must not be delivered")
	}

	f.app.SubmitNotification(&domain.Notification{ID: "warn-2", Type: domain.TypeSystem})
	waitFor(t, time.Second, func() bool { return f.sink.uiCount() == 1 })
}

func TestAppLoadsPersistedConfigOnStartup(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	dir := t.TempDir()
	files, err := storage.NewFileStore(dir, log)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	saved := domain.DefaultNotificationConfig()
	saved.CheckIntervalMinutes = 5
	if err := files.SaveNotificationConfig(saved); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	store := storage.NewMemoryStore(log)
	a := New(store, store, files, files, &mockSink{}, nil, bus.New(log), log)
	defer a.Close()

	if got := a.GetNotificationConfig().CheckIntervalMinutes; got != 5 {
		t.Fatalf("expected persisted interval 5, got %d", got)
	}
}
