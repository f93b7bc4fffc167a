package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/identity"
	"github.com/edumart/edumart-server-go/pkg/metrics"
	"github.com/edumart/edumart-server-go/pkg/middleware"
	"github.com/edumart/edumart-server-go/pkg/response"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Handler processes user HTTP requests and identity webhooks.
type Handler struct {
	db             *gorm.DB
	logger         *slog.Logger
	identityClient *identity.Client
}

func NewHandler(db *gorm.DB, logger *slog.Logger, identityClient *identity.Client) *Handler {
	return &Handler{db: db, logger: logger, identityClient: identityClient}
}

// GetProfile returns the authenticated user's replicated identity record.
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	record, err := Get(h.db, userID)
	if err != nil {
		h.respondError(c, err, "failed to load profile")
		return
	}

	response.Success(c, http.StatusOK, record, "", nil)
}

// UpdateRole changes the authenticated user's role by updating their
// metadata at the identity provider. With no body the role defaults to
// educator, the only self-service upgrade.
func (h *Handler) UpdateRole(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	role := types.RoleEducator
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err == nil && req.Role != "" {
		role = req.Role
	}

	if !ValidRole(role) {
		h.respondError(c, ErrInvalidRole, "failed to update role")
		return
	}

	if err := h.identityClient.SetUserRole(c.Request.Context(), userID, role); err != nil {
		if errors.Is(err, identity.ErrProviderUnavailable) {
			response.ErrorWithLog(h.logger, c, http.StatusBadGateway, "Identity service is unavailable. Please try again.", err)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to update role", err)
		return
	}

	h.logger.Info("role updated", slog.String("user_id", userID), slog.String("role", role))

	message := ""
	if role == types.RoleEducator {
		message = "You can now publish courses."
	}
	response.Success(c, http.StatusOK, gin.H{"role": role}, message, nil)
}

// IdentityWebhook replicates user lifecycle events from the identity
// provider. Signature verification fails closed with a bare 400 so the
// provider retries delivery.
func (h *Handler) IdentityWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "unreadable payload")
		return
	}

	event, err := h.identityClient.VerifyWebhook(
		payload,
		c.GetHeader(identity.WebhookIDHeader),
		c.GetHeader(identity.WebhookTimestampHeader),
		c.GetHeader(identity.WebhookSignatureHeader),
	)
	if err != nil {
		metrics.RecordWebhookEvent("identity", "rejected")
		h.logger.Warn("rejected identity webhook", slog.String("error", err.Error()))
		c.String(http.StatusBadRequest, "invalid signature")
		return
	}

	switch event.Type {
	case identity.EventUserCreated, identity.EventUserUpdated:
		err = Upsert(h.db, SyncInput{
			ID:        event.Data.ID,
			FullName:  event.Data.FullName(),
			Email:     event.Data.Email(),
			AvatarURL: event.Data.ImageURL,
		})
	case identity.EventUserDeleted:
		err = Delete(h.db, event.Data.ID)
	default:
		metrics.RecordWebhookEvent("identity", "ignored")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err != nil {
		metrics.RecordWebhookEvent("identity", "error")
		h.logger.Error("failed to sync user",
			slog.String("event_type", event.Type),
			slog.String("user_id", event.Data.ID),
			slog.String("error", err.Error()))
		c.String(http.StatusInternalServerError, "sync failed")
		return
	}

	metrics.RecordWebhookEvent("identity", "processed")
	h.logger.Info("identity webhook processed",
		slog.String("event_type", event.Type),
		slog.String("user_id", event.Data.ID))

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	case errors.Is(err, ErrInvalidRole):
		status = http.StatusBadRequest
		message = "Unknown role."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
