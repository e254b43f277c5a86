package telegram

import (
	"context"
	"strings"
	"testing"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/google/uuid"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/approve", "approve"},
		{"/approve 123", "approve"},
		{"/approve@cashier_bot 123", "approve"},
		{"/3ds abc", "3ds"},
	}

	for _, tt := range tests {
		if got := ParseCommand(tt.in); got != tt.want {
			t.Errorf("ParseCommand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseArgs(t *testing.T) {
	if got := ParseArgs("/approve"); got != nil {
		t.Errorf("ParseArgs without args = %v, want nil", got)
	}
	got := ParseArgs("/reject 42 не прошла проверка")
	if len(got) != 3 || got[0] != "42" {
		t.Errorf("ParseArgs = %v", got)
	}
}

func TestParsePaymentIDArg(t *testing.T) {
	id := uuid.New()

	parsed, err := parsePaymentIDArg("approve", []string{id.String()})
	if err != nil {
		t.Fatalf("parsePaymentIDArg failed: %v", err)
	}
	if parsed != id {
		t.Errorf("parsed = %s, want %s", parsed, id)
	}

	if _, err := parsePaymentIDArg("approve", nil); !domain.IsMalformedCommand(err) {
		t.Errorf("missing arg: expected MalformedCommandError, got %v", err)
	}
	if _, err := parsePaymentIDArg("approve", []string{"not-a-uuid"}); !domain.IsMalformedCommand(err) {
		t.Errorf("bad uuid: expected MalformedCommandError, got %v", err)
	}
}

func TestHandleMessage_UnauthorizedBeforeParsing(t *testing.T) {
	client := &stubClient{}
	review := &stubReview{}
	svc := newTestTelegramService(client, review)

	id := uuid.New()
	err := svc.HandleMessage(context.Background(), commandMessage(strangerUser(), "/approve "+id.String()), 1)
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}

	if len(review.transitions) != 0 {
		t.Fatal("unauthorized user must not trigger a transition")
	}
	if len(client.messages) != 1 || !strings.Contains(client.messages[0].Text, "Недостаточно прав") {
		t.Fatalf("expected access denied reply, got %v", client.messages)
	}
}

func TestHandleMessage_ApproveCommand(t *testing.T) {
	client := &stubClient{}
	id := uuid.New()
	review := &stubReview{
		payment: &domain.Payment{ID: id, Status: domain.PaymentStatusCompleted},
	}
	svc := newTestTelegramService(client, review)

	err := svc.HandleMessage(context.Background(), commandMessage(operatorUser(), "/approve "+id.String()), 1)
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}

	if len(review.transitions) != 1 {
		t.Fatalf("expected 1 transition call, got %d", len(review.transitions))
	}
	call := review.transitions[0]
	if call.PaymentID != id || call.Action != domain.ActionApprove {
		t.Errorf("transition call = %+v", call)
	}
	if call.Actor != domain.ActorAdmin(operatorID) {
		t.Errorf("actor = %s, want %s", call.Actor, domain.ActorAdmin(operatorID))
	}

	if len(client.messages) != 1 || !strings.Contains(client.messages[0].Text, "completed") {
		t.Fatalf("expected confirmation with new status, got %v", client.messages)
	}
}

func TestHandleMessage_ThreeDSCommandConfirmsCode(t *testing.T) {
	client := &stubClient{}
	id := uuid.New()
	review := &stubReview{
		payment: &domain.Payment{ID: id, Status: domain.PaymentStatus3DSApproved},
	}
	svc := newTestTelegramService(client, review)

	err := svc.HandleMessage(context.Background(), commandMessage(operatorUser(), "/3ds "+id.String()), 1)
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}

	if len(review.transitions) != 1 || review.transitions[0].Action != domain.ActionApprove3DS {
		t.Fatalf("expected approve_3ds action, got %+v", review.transitions)
	}
}

func TestHandleMessage_MissingArgument(t *testing.T) {
	client := &stubClient{}
	review := &stubReview{}
	svc := newTestTelegramService(client, review)

	err := svc.HandleMessage(context.Background(), commandMessage(operatorUser(), "/approve"), 1)
	if !domain.IsMalformedCommand(err) {
		t.Fatalf("expected MalformedCommandError, got %v", err)
	}

	if len(review.transitions) != 0 {
		t.Fatal("malformed command must not trigger a transition")
	}
	if len(client.messages) != 1 || !strings.Contains(client.messages[0].Text, "Использование") {
		t.Fatalf("expected usage hint, got %v", client.messages)
	}
}

func TestHandleMessage_RedeliveredCommandReportsCurrentStatus(t *testing.T) {
	client := &stubClient{}
	id := uuid.New()
	review := &stubReview{
		transitionErr: &domain.InvalidTransitionError{
			PaymentID: id,
			Action:    domain.ActionApprove,
			Current:   domain.PaymentStatusCompleted,
		},
	}
	svc := newTestTelegramService(client, review)

	err := svc.HandleMessage(context.Background(), commandMessage(operatorUser(), "/approve "+id.String()), 1)
	if err != nil {
		t.Fatalf("redelivery must be handled cleanly, got %v", err)
	}

	if len(client.messages) != 1 || !strings.Contains(client.messages[0].Text, "completed") {
		t.Fatalf("expected reply with the actual status, got %v", client.messages)
	}
}

func TestHandleMessage_IgnoresNonCommands(t *testing.T) {
	client := &stubClient{}
	review := &stubReview{}
	svc := newTestTelegramService(client, review)

	if err := svc.HandleMessage(context.Background(), commandMessage(operatorUser(), "привет"), 1); err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if len(client.messages) != 0 {
		t.Errorf("plain text must be ignored, got %v", client.messages)
	}

	bot := operatorUser()
	bot.IsBot = true
	if err := svc.HandleMessage(context.Background(), commandMessage(bot, "/approve"), 2); err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if len(client.messages) != 0 {
		t.Errorf("bot messages must be ignored, got %v", client.messages)
	}
}

func TestHandleMessage_HelpAndUnknown(t *testing.T) {
	client := &stubClient{}
	svc := newTestTelegramService(client, &stubReview{})

	if err := svc.HandleMessage(context.Background(), commandMessage(operatorUser(), "/help"), 1); err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if len(client.messages) != 1 || !strings.Contains(client.messages[0].Text, "/approve") {
		t.Fatalf("expected help text, got %v", client.messages)
	}

	if err := svc.HandleMessage(context.Background(), commandMessage(operatorUser(), "/selfdestruct"), 2); err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if len(client.messages) != 2 || !strings.Contains(client.messages[1].Text, "Неизвестная команда") {
		t.Fatalf("expected unknown command reply, got %v", client.messages)
	}
}
