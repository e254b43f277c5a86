package notifier

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/google/uuid"
)

type stubTelegramClient struct {
	mu            sync.Mutex
	sent          []string
	keyboardSends int
	sendErr       error
}

func (c *stubTelegramClient) SendMessage(_ context.Context, _ int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, text)
	return nil
}

func (c *stubTelegramClient) SendMessageWithKeyboard(_ context.Context, _ int64, text string, _ map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, text)
	c.keyboardSends++
	return nil
}

func (c *stubTelegramClient) AnswerCallbackQuery(_ context.Context, _ string, _ string, _ bool) error {
	return nil
}

func (c *stubTelegramClient) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func (c *stubTelegramClient) setSendErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

// flakyDedupStore подменяет ответы хранилища для проверки fail-open
type flakyDedupStore struct {
	setErr   error
	released []string
	inner    *inmemory.DedupStore
}

func newFlakyDedupStore() *flakyDedupStore {
	return &flakyDedupStore{inner: inmemory.NewDedupStore()}
}

func (s *flakyDedupStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s.setErr != nil {
		return false, s.setErr
	}
	return s.inner.SetIfAbsent(ctx, key, ttl)
}

func (s *flakyDedupStore) Release(ctx context.Context, key string) error {
	s.released = append(s.released, key)
	return s.inner.Release(ctx, key)
}

func testDispatcher(client *stubTelegramClient, dedup interface {
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}) *Dispatcher {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Config{}, dedup, client, nil, log)
}

func testNotification(kind domain.NotificationKind) domain.Notification {
	return domain.Notification{
		ChatID:    -1001,
		PaymentID: uuid.New(),
		Kind:      kind,
		Text:      "Новая заявка",
	}
}

func TestDispatch_ConcurrentSameKeySendsOnce(t *testing.T) {
	client := &stubTelegramClient{}
	d := testDispatcher(client, inmemory.NewDedupStore())

	n := testNotification(domain.NotifyPaymentCreated)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.dispatch(context.Background(), n)
		}()
	}
	wg.Wait()

	if got := client.sentCount(); got != 1 {
		t.Fatalf("expected exactly 1 send, got %d", got)
	}
}

func TestDispatch_FailureReleasesKey(t *testing.T) {
	client := &stubTelegramClient{}
	dedup := newFlakyDedupStore()
	d := testDispatcher(client, dedup)

	n := testNotification(domain.NotifyPaymentCompleted)
	sendErr := errors.New("telegram api: 502")

	client.setSendErr(sendErr)
	d.dispatch(context.Background(), n)

	if got := client.sentCount(); got != 0 {
		t.Fatalf("expected 0 successful sends, got %d", got)
	}
	if len(dedup.released) != 1 {
		t.Fatalf("expected dedup key to be released, released %d keys", len(dedup.released))
	}

	// После снятия ключа повтор проходит
	client.setSendErr(nil)
	d.dispatch(context.Background(), n)
	if got := client.sentCount(); got != 1 {
		t.Fatalf("expected the retry to send, got %d sends", got)
	}
}

func TestDispatch_SuccessKeepsKey(t *testing.T) {
	client := &stubTelegramClient{}
	d := testDispatcher(client, inmemory.NewDedupStore())

	n := testNotification(domain.Notify3DSSubmitted)

	d.dispatch(context.Background(), n)
	d.dispatch(context.Background(), n)

	if got := client.sentCount(); got != 1 {
		t.Fatalf("redelivery after success must be suppressed, got %d sends", got)
	}
}

func TestDispatch_DifferentKindsAreIndependent(t *testing.T) {
	client := &stubTelegramClient{}
	d := testDispatcher(client, inmemory.NewDedupStore())

	paymentID := uuid.New()
	for _, kind := range []domain.NotificationKind{
		domain.NotifyPaymentCreated,
		domain.NotifyPaymentCompleted,
	} {
		n := testNotification(kind)
		n.PaymentID = paymentID
		d.dispatch(context.Background(), n)
	}

	if got := client.sentCount(); got != 2 {
		t.Fatalf("expected 2 sends for different kinds, got %d", got)
	}
}

func TestDispatch_DedupStoreErrorFailsOpen(t *testing.T) {
	client := &stubTelegramClient{}
	dedup := newFlakyDedupStore()
	dedup.setErr = errors.New("redis: connection refused")
	d := testDispatcher(client, dedup)

	d.dispatch(context.Background(), testNotification(domain.NotifyPaymentFailed))

	if got := client.sentCount(); got != 1 {
		t.Fatalf("expected the notification to be sent despite store error, got %d", got)
	}
	// Ключ не захватывался, снимать нечего
	if len(dedup.released) != 0 {
		t.Errorf("release must not be called when the key was not acquired")
	}
}

func TestDispatch_KeyboardGoesThroughKeyboardSend(t *testing.T) {
	client := &stubTelegramClient{}
	d := testDispatcher(client, inmemory.NewDedupStore())

	n := testNotification(domain.NotifyPaymentCreated)
	n.Keyboard = BuildAdminActionKeyboard(n.PaymentID)

	d.dispatch(context.Background(), n)

	if client.keyboardSends != 1 {
		t.Fatalf("expected 1 keyboard send, got %d", client.keyboardSends)
	}
}

func TestNotifyThroughWorkers(t *testing.T) {
	client := &stubTelegramClient{}
	d := testDispatcher(client, inmemory.NewDedupStore())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = d.Start(ctx)
		close(done)
	}()

	d.Notify(testNotification(domain.NotifyPaymentCreated))

	deadline := time.After(2 * time.Second)
	for client.sentCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("notification was not dispatched by workers")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop after context cancellation")
	}
}
