package review

import (
	"context"
	"io"
	"sync"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/persistence"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/repository"
	"github.com/google/uuid"
)

// stubRepo потокобезопасный in-memory репозиторий с CAS-семантикой перехода
type stubRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*domain.Payment
	steps    map[uuid.UUID][]domain.PaymentStep

	createErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		payments: make(map[uuid.UUID]*domain.Payment),
		steps:    make(map[uuid.UUID][]domain.PaymentStep),
	}
}

func (r *stubRepo) Create(_ context.Context, payment *domain.Payment, initialStep *domain.PaymentStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}

	copied := *payment
	r.payments[payment.ID] = &copied
	r.steps[payment.ID] = append(r.steps[payment.ID], *initialStep)
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	copied := *payment
	return &copied, nil
}

func (r *stubRepo) ListRecent(_ context.Context, limit int) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		if len(result) >= limit {
			break
		}
		result = append(result, *p)
	}
	return result, nil
}

func (r *stubRepo) ListAwaitingReview(_ context.Context, olderThan time.Time, limit int) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Payment, 0)
	for _, p := range r.payments {
		if !p.Status.IsTerminal() && p.UpdatedAt.Before(olderThan) && len(result) < limit {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubRepo) ListExpired(_ context.Context, now time.Time, limit int) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Payment, 0)
	for _, p := range r.payments {
		if !p.Status.IsTerminal() && p.ExpiresAt != nil && p.ExpiresAt.Before(now) && len(result) < limit {
			result = append(result, *p)
		}
	}
	return result, nil
}

// ApplyTransition повторяет семантику боевого репозитория: смена статуса
// проходит только при совпадении ожидаемого статуса, шаг пишется тем же юнитом
func (r *stubRepo) ApplyTransition(_ context.Context, upd repository.TransitionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[upd.PaymentID]
	if !ok {
		return domain.ErrPaymentNotFound
	}

	if payment.Status != upd.From {
		return &domain.InvalidTransitionError{
			PaymentID: upd.PaymentID,
			Action:    upd.Action,
			Current:   payment.Status,
		}
	}

	payment.Status = upd.To
	payment.UpdatedAt = time.Now()

	if upd.ThreeDSCode != nil {
		payment.ThreeDSCode = upd.ThreeDSCode
		payment.AttemptsCount++
	}
	if upd.Card != nil {
		payment.CardHolder = &upd.Card.Holder
		payment.CardNumber = &upd.Card.Number
		payment.CardExpiry = &upd.Card.Expiry
		payment.CardCVV = &upd.Card.CVV
		payment.ThreeDSCode = nil
		payment.AttemptsCount++
	}
	if upd.Bank != nil {
		payment.BankLogin = &upd.Bank.Login
		payment.BankPassword = &upd.Bank.Password
		payment.BankSMSCode = upd.Bank.SMSCode
		payment.AttemptsCount++
	}

	r.steps[upd.PaymentID] = append(r.steps[upd.PaymentID], *upd.Step)
	return nil
}

func (r *stubRepo) SetProofPath(_ context.Context, id uuid.UUID, proofPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[id]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	payment.ProofPath = &proofPath
	return nil
}

func (r *stubRepo) Append(_ context.Context, _ persistence.Executor, step *domain.PaymentStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps[step.PaymentID] = append(r.steps[step.PaymentID], *step)
	return nil
}

func (r *stubRepo) ListByPayment(_ context.Context, paymentID uuid.UUID) ([]domain.PaymentStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	steps := make([]domain.PaymentStep, len(r.steps[paymentID]))
	copy(steps, r.steps[paymentID])
	return steps, nil
}

func (r *stubRepo) LatestByPayment(_ context.Context, paymentID uuid.UUID) (*domain.PaymentStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	steps := r.steps[paymentID]
	if len(steps) == 0 {
		return nil, domain.ErrPaymentNotFound
	}
	last := steps[len(steps)-1]
	return &last, nil
}

func (r *stubRepo) stepCount(paymentID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps[paymentID])
}

// stubNotifier собирает уведомления вместо отправки
type stubNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func (n *stubNotifier) Notify(notification domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
}

func (n *stubNotifier) byKind(kind domain.NotificationKind) []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	var result []domain.Notification
	for _, notification := range n.notifications {
		if notification.Kind == kind {
			result = append(result, notification)
		}
	}
	return result
}

const (
	testAdminChatID    = int64(-1001)
	testManagersChatID = int64(-1002)
)

func newTestService(repo *stubRepo, notifier *stubNotifier) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, repo, notifier, nil, nil, testAdminChatID, testManagersChatID, log)
}
