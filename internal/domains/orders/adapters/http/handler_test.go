package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/societyos/laundry-api/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/societyos/laundry-api/internal/domains/catalog/application"
	catalogdomain "github.com/societyos/laundry-api/internal/domains/catalog/domain"
	ordersmemory "github.com/societyos/laundry-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/societyos/laundry-api/internal/domains/orders/application"
)

type fixture struct {
	router   *gin.Engine
	vendorID uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalogRepo := catalogmemory.NewRepository()
	vendor, err := catalogdomain.NewVendor(uuid.New(), "Sparkle Laundry", "Meera Nair", "+919800000001", 1, 12)
	require.NoError(t, err)
	require.NoError(t, vendor.SetApproval(catalogdomain.ApprovalApproved))
	vendor.SetAvailability(true)
	require.NoError(t, catalogRepo.SaveVendor(t.Context(), vendor))
	require.NoError(t, catalogRepo.SaveOffering(t.Context(), catalogdomain.VendorService{
		VendorID: vendor.VendorID, ServiceID: 1, IsOffered: true,
	}))
	require.NoError(t, catalogRepo.SaveRateCard(t.Context(), catalogdomain.VendorRateCard{
		VendorID: vendor.VendorID, ServiceID: 1,
		ItemName: "Shirt", Price: decimal.RequireFromString("15.00"), Unit: "piece", IsActive: true,
	}))

	service := ordersapp.NewService(ordersmemory.NewRepository(), catalogapp.NewService(catalogRepo))
	router := gin.New()
	NewHandler(service).Register(router.Group("/api/v1"))
	return fixture{router: router, vendorID: vendor.VendorID}
}

func (f fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func createPayload(vendorID uuid.UUID) map[string]any {
	return map[string]any{
		"residentId":           uuid.NewString(),
		"vendorId":             vendorID.String(),
		"societyId":            1,
		"categoryId":           1,
		"pickupDatetime":       time.Now().Add(2 * time.Hour).Format(time.RFC3339),
		"expectedDeliveryDate": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"pickupAddress":        "A-101, Lakeview Towers",
		"items": []map[string]any{
			{"serviceId": 1, "itemName": "Shirt", "quantity": 4},
		},
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestCreateOrder_ReturnsEnvelopeWithPricedOrder(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/orders", createPayload(f.vendorID))

	require.Equal(t, http.StatusCreated, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, true, envelope["success"])
	data := envelope["data"].(map[string]any)
	require.Equal(t, "BOOKING_CREATED", data["status"])
	require.Equal(t, "60.00", data["estimatedPrice"])
	require.NotEmpty(t, data["orderNumber"])
}

func TestCreateOrder_ValidationErrorOnMissingItems(t *testing.T) {
	f := newFixture(t)
	payload := createPayload(f.vendorID)
	payload["items"] = []map[string]any{}

	rec := f.do(t, http.MethodPost, "/api/v1/orders", payload)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, false, envelope["success"])
	require.Equal(t, "VALIDATION_ERROR", envelope["error"].(map[string]any)["code"])
}

func TestAdvanceOrder_HappyPathAndErrorCodes(t *testing.T) {
	f := newFixture(t)
	created := decodeEnvelope(t, f.do(t, http.MethodPost, "/api/v1/orders", createPayload(f.vendorID)))
	orderID := created["data"].(map[string]any)["orderId"].(string)
	transitionsURL := fmt.Sprintf("/api/v1/orders/%s/transitions", orderID)

	rec := f.do(t, http.MethodPost, transitionsURL, map[string]any{
		"targetStatus": "PICKUP_SCHEDULED", "expectedStatus": "BOOKING_CREATED", "actorRole": "VENDOR",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "PICKUP_SCHEDULED", decodeEnvelope(t, rec)["data"].(map[string]any)["status"])

	// Skipping a step surfaces INVALID_TRANSITION with a 422.
	rec = f.do(t, http.MethodPost, transitionsURL, map[string]any{
		"targetStatus": "DELIVERED", "actorRole": "VENDOR",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "INVALID_TRANSITION", decodeEnvelope(t, rec)["error"].(map[string]any)["code"])

	// A stale expectedStatus surfaces CONFLICT with a 409.
	rec = f.do(t, http.MethodPost, transitionsURL, map[string]any{
		"targetStatus": "PICKUP_IN_PROGRESS", "expectedStatus": "BOOKING_CREATED", "actorRole": "VENDOR",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "CONFLICT", decodeEnvelope(t, rec)["error"].(map[string]any)["code"])

	// A role outside the transition policy surfaces UNAUTHORIZED with a 403.
	rec = f.do(t, http.MethodPost, transitionsURL, map[string]any{
		"targetStatus": "PICKUP_IN_PROGRESS", "actorRole": "RESIDENT",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "UNAUTHORIZED", decodeEnvelope(t, rec)["error"].(map[string]any)["code"])

	// A cancelled order is immutable; further transitions surface 422.
	rec = f.do(t, http.MethodPost, transitionsURL, map[string]any{
		"targetStatus": "CANCELLED", "actorRole": "RESIDENT",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, transitionsURL, map[string]any{
		"targetStatus": "PICKUP_IN_PROGRESS", "actorRole": "VENDOR",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "INVALID_TRANSITION", decodeEnvelope(t, rec)["error"].(map[string]any)["code"])
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture(t)
	missingID := uuid.NewString()

	rec := f.do(t, http.MethodGet, "/api/v1/orders/"+missingID, nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	errBody := envelope["error"].(map[string]any)
	require.Equal(t, "NOT_FOUND", errBody["code"])
	// The envelope echoes back the identifier the caller asked for.
	details := errBody["details"].(map[string]any)
	require.Equal(t, "order", details["resource_type"])
	require.Equal(t, missingID, details["identifier"])
}

func TestCreateOrder_VendorNotEligible(t *testing.T) {
	f := newFixture(t)
	payload := createPayload(f.vendorID)
	payload["items"] = []map[string]any{
		{"serviceId": 9, "itemName": "Curtain", "quantity": 1},
	}

	rec := f.do(t, http.MethodPost, "/api/v1/orders", payload)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, "VENDOR_NOT_ELIGIBLE", envelope["error"].(map[string]any)["code"])
}

func TestListOrders_PaginatedEnvelope(t *testing.T) {
	f := newFixture(t)
	for range 3 {
		rec := f.do(t, http.MethodPost, "/api/v1/orders", createPayload(f.vendorID))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/api/v1/orders?page=1&limit=2", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success    bool             `json:"success"`
		Data       []map[string]any `json:"data"`
		Pagination struct {
			Page       int   `json:"page"`
			Limit      int   `json:"limit"`
			Total      int64 `json:"total"`
			TotalPages int   `json:"total_pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Len(t, body.Data, 2)
	require.Equal(t, int64(3), body.Pagination.Total)
	require.Equal(t, 2, body.Pagination.TotalPages)
}
