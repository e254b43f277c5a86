package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"log/slog"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/gin-gonic/gin"
)

type stubTelegramService struct {
	updates   []domain.Update
	handleErr error
}

func (s *stubTelegramService) HandleUpdate(_ context.Context, update *domain.Update) error {
	s.updates = append(s.updates, *update)
	return s.handleErr
}

func newTestRouter(secret string, svc *stubTelegramService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	New(svc, secret, log).RegisterRoutes(router)
	return router
}

func postWebhook(router *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const validUpdate = `{"update_id": 7, "message": {"message_id": 1, "chat": {"id": 10, "type": "private"}, "text": "/help"}}`

func TestWebhook_ValidUpdate(t *testing.T) {
	svc := &stubTelegramService{}
	router := newTestRouter("", svc)

	w := postWebhook(router, "/webhook/", validUpdate)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(svc.updates) != 1 || svc.updates[0].UpdateID != 7 {
		t.Fatalf("update was not passed to the service: %+v", svc.updates)
	}
}

func TestWebhook_TokenCheck(t *testing.T) {
	svc := &stubTelegramService{}
	router := newTestRouter("s3cret", svc)

	w := postWebhook(router, "/webhook/", validUpdate)
	if w.Code != http.StatusForbidden {
		t.Fatalf("missing token: status = %d, want 403", w.Code)
	}

	w = postWebhook(router, "/webhook/?token=wrong", validUpdate)
	if w.Code != http.StatusForbidden {
		t.Fatalf("wrong token: status = %d, want 403", w.Code)
	}
	if len(svc.updates) != 0 {
		t.Fatal("update must not reach the service without a valid token")
	}

	w = postWebhook(router, "/webhook/?token=s3cret", validUpdate)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", w.Code)
	}
	if len(svc.updates) != 1 {
		t.Fatal("update with a valid token must reach the service")
	}
}

func TestWebhook_BadJSON(t *testing.T) {
	svc := &stubTelegramService{}
	router := newTestRouter("", svc)

	w := postWebhook(router, "/webhook/", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(svc.updates) != 0 {
		t.Fatal("broken body must not reach the service")
	}
}

// Ошибка обработчика не отдаёт не-200, иначе Telegram будет повторять
// доставку одного и того же битого обновления бесконечно
func TestWebhook_HandlerErrorStillReturns200(t *testing.T) {
	svc := &stubTelegramService{handleErr: context.DeadlineExceeded}
	router := newTestRouter("", svc)

	w := postWebhook(router, "/webhook/", validUpdate)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
