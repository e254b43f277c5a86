package review

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/google/uuid"
)

func mustCreateCardPayment(t *testing.T, svc *Service, userID uuid.UUID) *domain.Payment {
	t.Helper()

	payment, err := svc.CreateCardPayment(context.Background(), testCardInput(userID))
	if err != nil {
		t.Fatalf("CreateCardPayment failed: %v", err)
	}
	return payment
}

func TestTransition_Success(t *testing.T) {
	repo := newStubRepo()
	notifier := &stubNotifier{}
	svc := newTestService(repo, notifier)

	payment := mustCreateCardPayment(t, svc, uuid.New())

	updated, err := svc.Transition(context.Background(), payment.ID, domain.ActionRequest3DS, domain.ActorAdmin(42))
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if updated.Status != domain.PaymentStatusWaiting3DS {
		t.Errorf("status = %s, want %s", updated.Status, domain.PaymentStatusWaiting3DS)
	}

	steps, err := repo.ListByPayment(context.Background(), payment.ID)
	if err != nil {
		t.Fatalf("ListByPayment failed: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}

	// Статус последнего шага всегда совпадает со статусом платежа
	last := steps[len(steps)-1]
	if last.Status != updated.Status {
		t.Errorf("last step status = %s, payment status = %s", last.Status, updated.Status)
	}
	if last.Actor != domain.ActorAdmin(42) {
		t.Errorf("actor = %s, want %s", last.Actor, domain.ActorAdmin(42))
	}
}

func TestTransition_IllegalActionAppendsNoStep(t *testing.T) {
	repo := newStubRepo()
	notifier := &stubNotifier{}
	svc := newTestService(repo, notifier)

	payment := mustCreateCardPayment(t, svc, uuid.New())
	stepsBefore := repo.stepCount(payment.ID)

	// submit_3ds недоступен, пока код не запрошен
	_, err := svc.Transition(context.Background(), payment.ID, domain.ActionSubmit3DS, domain.ActorSystem)

	var transitionErr *domain.InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transitionErr.Current != domain.PaymentStatusCardChecking {
		t.Errorf("Current = %s, want %s", transitionErr.Current, domain.PaymentStatusCardChecking)
	}

	if got := repo.stepCount(payment.ID); got != stepsBefore {
		t.Errorf("illegal action appended a step: %d -> %d", stepsBefore, got)
	}

	current, err := repo.GetByID(context.Background(), payment.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if current.Status != domain.PaymentStatusCardChecking {
		t.Errorf("status changed on illegal action: %s", current.Status)
	}
}

func TestTransition_NotFound(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubNotifier{})

	_, err := svc.Transition(context.Background(), uuid.New(), domain.ActionApprove, domain.ActorSystem)
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

// При гонке двух операторов побеждает ровно один, остальные получают
// InvalidTransitionError с фактическим статусом
func TestTransition_ConcurrentExactlyOneWinner(t *testing.T) {
	repo := newStubRepo()
	notifier := &stubNotifier{}
	svc := newTestService(repo, notifier)

	payment := mustCreateCardPayment(t, svc, uuid.New())

	const workers = 8
	actions := []domain.PaymentAction{domain.ActionApprove, domain.ActionReject}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			action := actions[i%len(actions)]
			_, errs[i] = svc.Transition(context.Background(), payment.ID, action, domain.ActorAdmin(int64(i)))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case domain.IsInvalidTransition(err):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", winners)
	}

	final, err := repo.GetByID(context.Background(), payment.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !final.Status.IsTerminal() {
		t.Errorf("final status %s is not terminal", final.Status)
	}

	// Ровно один шаг добавился к начальному
	if got := repo.stepCount(payment.ID); got != 2 {
		t.Errorf("expected 2 steps after the race, got %d", got)
	}
}

func TestTransition_CompletedNotifiesAdminsAndManagers(t *testing.T) {
	repo := newStubRepo()
	notifier := &stubNotifier{}
	svc := newTestService(repo, notifier)

	payment := mustCreateCardPayment(t, svc, uuid.New())

	if _, err := svc.Transition(context.Background(), payment.ID, domain.ActionApprove, domain.ActorAdmin(1)); err != nil {
		t.Fatalf("Transition failed: %v", err)
	}

	completed := notifier.byKind(domain.NotifyPaymentCompleted)
	if len(completed) != 1 {
		t.Fatalf("expected 1 completed notification, got %d", len(completed))
	}
	if completed[0].ChatID != testAdminChatID {
		t.Errorf("completed notification chat = %d, want %d", completed[0].ChatID, testAdminChatID)
	}

	managers := notifier.byKind(domain.NotifyManagerCompleted)
	if len(managers) != 1 {
		t.Fatalf("expected 1 manager notification, got %d", len(managers))
	}
	if managers[0].ChatID != testManagersChatID {
		t.Errorf("manager notification chat = %d, want %d", managers[0].ChatID, testManagersChatID)
	}
}

// Полный путь карточного платежа: проверка карты, 3DS, подтверждение
func TestCardPaymentFullFlow(t *testing.T) {
	repo := newStubRepo()
	notifier := &stubNotifier{}
	svc := newTestService(repo, notifier)

	ctx := context.Background()
	userID := uuid.New()
	payment := mustCreateCardPayment(t, svc, userID)

	if payment.Status != domain.PaymentStatusCardChecking {
		t.Fatalf("initial status = %s, want %s", payment.Status, domain.PaymentStatusCardChecking)
	}

	if _, err := svc.Transition(ctx, payment.ID, domain.ActionRequest3DS, domain.ActorAdmin(1)); err != nil {
		t.Fatalf("request_3ds failed: %v", err)
	}

	updated, err := svc.Submit3DSCode(ctx, userID, payment.ID, "123456")
	if err != nil {
		t.Fatalf("Submit3DSCode failed: %v", err)
	}
	if updated.Status != domain.PaymentStatus3DSSubmitted {
		t.Fatalf("status after submit = %s, want %s", updated.Status, domain.PaymentStatus3DSSubmitted)
	}

	if _, err := svc.Transition(ctx, payment.ID, domain.ActionApprove3DS, domain.ActorAdmin(1)); err != nil {
		t.Fatalf("approve_3ds failed: %v", err)
	}

	final, err := svc.Transition(ctx, payment.ID, domain.ActionApprove, domain.ActorAdmin(1))
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if final.Status != domain.PaymentStatusCompleted {
		t.Fatalf("final status = %s, want %s", final.Status, domain.PaymentStatusCompleted)
	}

	steps, err := repo.ListByPayment(ctx, payment.ID)
	if err != nil {
		t.Fatalf("ListByPayment failed: %v", err)
	}
	// created, waiting_3ds, 3ds_submitted, 3ds_approved, completed
	if len(steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(steps))
	}
	for i, step := range steps {
		if step.PaymentID != payment.ID {
			t.Errorf("step %d belongs to wrong payment", i)
		}
	}
	if steps[len(steps)-1].Status != domain.PaymentStatusCompleted {
		t.Errorf("last step status = %s, want %s", steps[len(steps)-1].Status, domain.PaymentStatusCompleted)
	}
}

func TestSubmit3DSCode_WrongOwner(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubNotifier{})

	ctx := context.Background()
	payment := mustCreateCardPayment(t, svc, uuid.New())

	if _, err := svc.Transition(ctx, payment.ID, domain.ActionRequest3DS, domain.ActorAdmin(1)); err != nil {
		t.Fatalf("request_3ds failed: %v", err)
	}

	// Чужой платёж неотличим от несуществующего
	_, err := svc.Submit3DSCode(ctx, uuid.New(), payment.ID, "123456")
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestSubmit3DSCode_WrongStatus(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubNotifier{})

	userID := uuid.New()
	payment := mustCreateCardPayment(t, svc, userID)

	// Код не запрашивали
	_, err := svc.Submit3DSCode(context.Background(), userID, payment.ID, "123456")
	if !domain.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestSubmitNewCard_AfterRejection(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubNotifier{})

	ctx := context.Background()
	userID := uuid.New()
	payment := mustCreateCardPayment(t, svc, userID)

	if _, err := svc.Transition(ctx, payment.ID, domain.ActionReject, domain.ActorAdmin(1)); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if _, err := svc.Transition(ctx, payment.ID, domain.ActionRequestNewCard, domain.ActorAdmin(1)); err != nil {
		t.Fatalf("request_new_card failed: %v", err)
	}

	updated, err := svc.SubmitNewCard(ctx, userID, payment.ID, domain.CardDetails{
		Holder: "IVAN PETROV",
		Number: "5536 9137 1234 5678",
		Expiry: "12/27",
		CVV:    "123",
	})
	if err != nil {
		t.Fatalf("SubmitNewCard failed: %v", err)
	}
	if updated.Status != domain.PaymentStatusCardChecking {
		t.Errorf("status = %s, want %s", updated.Status, domain.PaymentStatusCardChecking)
	}
	if updated.CardNumber == nil || *updated.CardNumber != "5536913712345678" {
		t.Errorf("card number not normalized: %v", updated.CardNumber)
	}
	if updated.AttemptsCount != 1 {
		t.Errorf("attempts = %d, want 1", updated.AttemptsCount)
	}
}

func TestSubmitBankCredentials_MovesToProcessing(t *testing.T) {
	repo := newStubRepo()
	notifier := &stubNotifier{}
	svc := newTestService(repo, notifier)

	ctx := context.Background()
	userID := uuid.New()

	payment, err := svc.CreateBankPayment(ctx, testBankInput(userID))
	if err != nil {
		t.Fatalf("CreateBankPayment failed: %v", err)
	}
	if payment.Status != domain.PaymentStatusPending {
		t.Fatalf("initial status = %s, want %s", payment.Status, domain.PaymentStatusPending)
	}

	updated, err := svc.SubmitBankCredentials(ctx, userID, payment.ID, domain.BankCredentials{
		Login:    "client1",
		Password: "secret-pass",
	})
	if err != nil {
		t.Fatalf("SubmitBankCredentials failed: %v", err)
	}
	if updated.Status != domain.PaymentStatusProcessing {
		t.Errorf("status = %s, want %s", updated.Status, domain.PaymentStatusProcessing)
	}

	submitted := notifier.byKind(domain.NotifyBankCredentialsSubmitted)
	if len(submitted) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(submitted))
	}
	// Реквизиты не утекают в текст уведомления
	if containsAny(submitted[0].Text, "client1", "secret-pass") {
		t.Error("notification text leaks bank credentials")
	}
}

func TestSubmit_AttemptsLimit(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubNotifier{})

	ctx := context.Background()
	userID := uuid.New()
	payment := mustCreateCardPayment(t, svc, userID)

	repo.mu.Lock()
	repo.payments[payment.ID].AttemptsCount = repo.payments[payment.ID].MaxAttempts
	repo.mu.Unlock()

	if _, err := svc.Transition(ctx, payment.ID, domain.ActionRequest3DS, domain.ActorAdmin(1)); err != nil {
		t.Fatalf("request_3ds failed: %v", err)
	}

	_, err := svc.Submit3DSCode(ctx, userID, payment.ID, "123456")
	if !domain.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
