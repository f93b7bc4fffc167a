package purchase

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/edumart/edumart-server-go/pkg/config"
	"github.com/edumart/edumart-server-go/pkg/logger"
	"github.com/edumart/edumart-server-go/pkg/payproc"
)

func webhookRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	appLogger, err := logger.New("error")
	require.NoError(t, err)

	handler := NewHandler(nil, appLogger, payproc.NewClient("https://pay.example.com", "key", "whsec"), config.PaymentConfig{Currency: "USD"})

	router := gin.New()
	router.POST("/webhooks/payments", handler.PaymentWebhook)
	return router
}

func TestPaymentWebhookRejectsUnsignedPayload(t *testing.T) {
	router := webhookRouter(t)

	req := httptest.NewRequest("POST", "/webhooks/payments", strings.NewReader(`{"id":"evt_1","type":"payment.succeeded"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentWebhookRejectsBadSignature(t *testing.T) {
	router := webhookRouter(t)

	req := httptest.NewRequest("POST", "/webhooks/payments", strings.NewReader(`{"id":"evt_1","type":"payment.succeeded"}`))
	req.Header.Set(payproc.SignatureHeader, "t=12345,v1=deadbeef")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
