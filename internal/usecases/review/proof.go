package review

import (
	"context"
	"fmt"
	"path"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/google/uuid"
)

const maxProofSize = 10 << 20 // 10 МБ

// AttachProof сохраняет чек об оплате в S3 и привязывает его к платежу
func (s *Service) AttachProof(ctx context.Context, userID, paymentID uuid.UUID, filename string, contentType string, data []byte) (string, error) {
	payment, err := s.getOwned(ctx, userID, paymentID)
	if err != nil {
		return "", err
	}

	if s.Proofs == nil {
		return "", fmt.Errorf("proof storage is not configured")
	}

	if len(data) == 0 {
		return "", &domain.ValidationError{Field: "file", Reason: "is empty"}
	}
	if len(data) > maxProofSize {
		return "", &domain.ValidationError{Field: "file", Reason: "exceeds 10MB limit"}
	}

	// Имя файла клиента не используется как есть, берём только базовое имя
	proofPath := fmt.Sprintf("payments/proofs/%s/%s", payment.ID, path.Base(filename))

	if err := s.Proofs.Upload(ctx, proofPath, contentType, data); err != nil {
		s.Log.Error("failed to upload proof",
			"error", err,
			"payment_id", payment.ID,
		)
		return "", domain.WrapBusinessError(err)
	}

	if err := s.PaymentRepo.SetProofPath(ctx, payment.ID, proofPath); err != nil {
		return "", err
	}

	s.Log.Info("proof attached",
		"payment_id", payment.ID,
		"proof_path", proofPath,
	)

	return proofPath, nil
}
