package telegram

import (
	"context"
	"io"
	"sync"

	"log/slog"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/service"
	"github.com/google/uuid"
)

type sentMessage struct {
	ChatID int64
	Text   string
}

type callbackAnswer struct {
	CallbackID string
	Text       string
	ShowAlert  bool
}

type stubClient struct {
	mu       sync.Mutex
	messages []sentMessage
	answers  []callbackAnswer
}

func (c *stubClient) SendMessage(_ context.Context, chatID int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (c *stubClient) SendMessageWithKeyboard(_ context.Context, chatID int64, text string, _ map[string]interface{}) error {
	return c.SendMessage(nil, chatID, text)
}

func (c *stubClient) AnswerCallbackQuery(_ context.Context, callbackID string, text string, showAlert bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers = append(c.answers, callbackAnswer{CallbackID: callbackID, Text: text, ShowAlert: showAlert})
	return nil
}

type transitionCall struct {
	PaymentID uuid.UUID
	Action    domain.PaymentAction
	Actor     string
}

// stubReview фиксирует вызовы Transition и отдаёт заранее заданный результат
type stubReview struct {
	transitions   []transitionCall
	transitionErr error
	payment       *domain.Payment
	steps         []domain.PaymentStep
	recent        []domain.Payment
}

var _ service.IReviewService = (*stubReview)(nil)

func (r *stubReview) CreateCardPayment(_ context.Context, _ service.CardPaymentInput) (*domain.Payment, error) {
	return nil, domain.ErrPaymentNotFound
}

func (r *stubReview) CreateCryptoPayment(_ context.Context, _ service.CryptoPaymentInput) (*domain.Payment, error) {
	return nil, domain.ErrPaymentNotFound
}

func (r *stubReview) CreateBankPayment(_ context.Context, _ service.BankPaymentInput) (*domain.Payment, error) {
	return nil, domain.ErrPaymentNotFound
}

func (r *stubReview) Transition(_ context.Context, paymentID uuid.UUID, action domain.PaymentAction, actor string) (*domain.Payment, error) {
	r.transitions = append(r.transitions, transitionCall{PaymentID: paymentID, Action: action, Actor: actor})
	if r.transitionErr != nil {
		return nil, r.transitionErr
	}
	return r.payment, nil
}

func (r *stubReview) Submit3DSCode(_ context.Context, _, _ uuid.UUID, _ string) (*domain.Payment, error) {
	return nil, domain.ErrPaymentNotFound
}

func (r *stubReview) SubmitNewCard(_ context.Context, _, _ uuid.UUID, _ domain.CardDetails) (*domain.Payment, error) {
	return nil, domain.ErrPaymentNotFound
}

func (r *stubReview) SubmitBankCredentials(_ context.Context, _, _ uuid.UUID, _ domain.BankCredentials) (*domain.Payment, error) {
	return nil, domain.ErrPaymentNotFound
}

func (r *stubReview) AttachProof(_ context.Context, _, _ uuid.UUID, _ string, _ string, _ []byte) (string, error) {
	return "", domain.ErrPaymentNotFound
}

func (r *stubReview) GetPayment(_ context.Context, _, _ uuid.UUID) (*domain.Payment, error) {
	return nil, domain.ErrPaymentNotFound
}

func (r *stubReview) ListSteps(_ context.Context, _, _ uuid.UUID) ([]domain.PaymentStep, error) {
	return nil, domain.ErrPaymentNotFound
}

func (r *stubReview) GetPaymentForReview(_ context.Context, _ uuid.UUID) (*domain.Payment, []domain.PaymentStep, error) {
	if r.payment == nil {
		return nil, nil, domain.ErrPaymentNotFound
	}
	return r.payment, r.steps, nil
}

func (r *stubReview) ListRecent(_ context.Context, _ int) ([]domain.Payment, error) {
	return r.recent, nil
}

const operatorID = int64(100500)

func newTestTelegramService(client *stubClient, review *stubReview) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(client, review, []int64{operatorID}, log)
}

func operatorUser() *domain.TelegramUser {
	return &domain.TelegramUser{ID: operatorID}
}

func strangerUser() *domain.TelegramUser {
	return &domain.TelegramUser{ID: 999}
}

func commandMessage(from *domain.TelegramUser, text string) *domain.Message {
	return &domain.Message{
		From: from,
		Chat: &domain.Chat{ID: from.ID, Type: "private"},
		Text: &text,
	}
}
