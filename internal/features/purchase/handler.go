package purchase

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/config"
	"github.com/edumart/edumart-server-go/pkg/metrics"
	"github.com/edumart/edumart-server-go/pkg/middleware"
	"github.com/edumart/edumart-server-go/pkg/pagination"
	"github.com/edumart/edumart-server-go/pkg/payproc"
	"github.com/edumart/edumart-server-go/pkg/response"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Handler processes purchase HTTP requests and payment webhooks.
type Handler struct {
	db         *gorm.DB
	logger     *slog.Logger
	payClient  *payproc.Client
	paymentCfg config.PaymentConfig
}

func NewHandler(db *gorm.DB, logger *slog.Logger, payClient *payproc.Client, paymentCfg config.PaymentConfig) *Handler {
	return &Handler{
		db:         db,
		logger:     logger,
		payClient:  payClient,
		paymentCfg: paymentCfg,
	}
}

// Initiate starts a purchase and returns the hosted checkout URL.
func (h *Handler) Initiate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	var req struct {
		CourseID string `json:"courseId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid purchase payload", err)
		return
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	result, err := Initiate(c.Request.Context(), h.db, h.payClient, h.paymentCfg, userID, courseID)
	if err != nil {
		h.respondError(c, err, "failed to initiate purchase")
		return
	}

	metrics.RecordPurchase(string(types.PurchaseStatusPending))
	response.Created(c, result, "")
}

// List returns the authenticated user's purchase history.
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	params := pagination.Extract(c)

	purchases, total, err := List(h.db, userID, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list purchases", err)
		return
	}

	response.Success(c, http.StatusOK, purchases, "", pagination.MetadataFrom(total, params))
}

// PaymentWebhook reconciles purchases against processor events. Signature
// verification fails closed with a bare 400 so the processor retries.
// Event types the reconciler does not act on are acknowledged with 200.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "unreadable payload")
		return
	}

	event, err := h.payClient.VerifyAndParseEvent(payload, c.GetHeader(payproc.SignatureHeader))
	if err != nil {
		metrics.RecordWebhookEvent("payment", "rejected")
		h.logger.Warn("rejected payment webhook", slog.String("error", err.Error()))
		c.String(http.StatusBadRequest, "invalid signature")
		return
	}

	switch event.Type {
	case payproc.EventPaymentSucceeded:
		h.settle(c, event, true)
	case payproc.EventPaymentFailed:
		h.settle(c, event, false)
	default:
		metrics.RecordWebhookEvent("payment", "ignored")
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *Handler) settle(c *gin.Context, event payproc.Event, succeeded bool) {
	purchaseID, err := uuid.Parse(event.Data.Object.Metadata["purchaseId"])
	if err != nil {
		metrics.RecordWebhookEvent("payment", "rejected")
		h.logger.Warn("payment webhook without purchase id",
			slog.String("event_id", event.ID),
			slog.String("event_type", event.Type))
		c.String(http.StatusBadRequest, "missing purchase id")
		return
	}

	var applied bool
	if succeeded {
		applied, err = Complete(h.db, purchaseID)
	} else {
		applied, err = Fail(h.db, purchaseID)
	}

	if err != nil {
		if errors.Is(err, ErrPurchaseNotFound) {
			metrics.RecordWebhookEvent("payment", "rejected")
			c.String(http.StatusNotFound, "unknown purchase")
			return
		}
		metrics.RecordWebhookEvent("payment", "error")
		h.logger.Error("failed to settle purchase",
			slog.String("purchase_id", purchaseID.String()),
			slog.String("error", err.Error()))
		c.String(http.StatusInternalServerError, "settlement failed")
		return
	}

	if applied {
		if succeeded {
			metrics.RecordPurchase(string(types.PurchaseStatusCompleted))
		} else {
			metrics.RecordPurchase(string(types.PurchaseStatusFailed))
		}
	}

	metrics.RecordWebhookEvent("payment", "processed")
	h.logger.Info("payment webhook processed",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type),
		slog.String("purchase_id", purchaseID.String()),
		slog.Bool("applied", applied))

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrCourseNotForSale):
		status = http.StatusBadRequest
		message = "Course is not available for purchase."
	case errors.Is(err, ErrAlreadyEnrolled):
		status = http.StatusConflict
		message = "You are already enrolled in this course."
	case errors.Is(err, payproc.ErrGateway):
		status = http.StatusBadGateway
		message = "Payment service is unavailable. Please try again."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
