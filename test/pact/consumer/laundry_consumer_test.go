//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/societyos/laundry-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type orderPayload struct {
	OrderID        string `json:"orderId"`
	OrderNumber    string `json:"orderNumber"`
	Status         string `json:"status"`
	EstimatedPrice string `json:"estimatedPrice"`
}

type orderEnvelope struct {
	Success bool          `json:"success"`
	Data    *orderPayload `json:"data"`
	Error   *envelopeErr  `json:"error"`
}

type envelopeErr struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	status  int
	code    string
	message string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.code, e.message, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestResidentAppContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	orderBodyMatcher := matchers.Map{
		"success": matchers.Like(true),
		"data": matchers.Map{
			"orderId":        matchers.Regex(pacttest.ExistingOrderID, `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`),
			"orderNumber":    matchers.Regex("LDY-20260902-4F8A2C", `LDY-\d{8}-[0-9A-F]{6}`),
			"status":         matchers.Term("BOOKING_CREATED", "BOOKING_CREATED|PICKUP_SCHEDULED|PICKUP_IN_PROGRESS|COUNT_APPROVAL_PENDING|PICKED_UP|PROCESSING_IN_PROGRESS|READY_FOR_DELIVERY|OUT_FOR_DELIVERY|DELIVERED|COMPLETED|CANCELLED"),
			"estimatedPrice": matchers.Regex("60.00", `\d+\.\d{2}`),
		},
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateCatalogSeeded).
		UponReceiving("a request to book a laundry order").
		WithRequest("POST", "/api/v1/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"residentId": matchers.Like(pacttest.ExampleResidentID),
				"vendorId":   matchers.Like(pacttest.ExampleVendorID),
				"societyId":  matchers.Like(12),
				"items":      matchers.ArrayMinLike(map[string]any{"serviceId": 1, "itemName": "Shirt", "quantity": 4}, 1),
			})
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(orderBodyMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderExists).
		UponReceiving("a request to fetch an existing order").
		WithRequest("GET", "/api/v1/orders/"+pacttest.ExistingOrderID).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(orderBodyMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderMissing).
		UponReceiving("a request for a missing order").
		WithRequest("GET", "/api/v1/orders/"+pacttest.MissingOrderID).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success": matchers.Like(false),
				"error": matchers.Map{
					"code":    matchers.S("NOT_FOUND"),
					"message": matchers.Like("order not found"),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderExists).
		UponReceiving("a request to schedule the pickup").
		WithRequest("POST", "/api/v1/orders/"+pacttest.ExistingOrderID+"/transitions", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"targetStatus":   matchers.S("PICKUP_SCHEDULED"),
				"expectedStatus": matchers.S("BOOKING_CREATED"),
				"actorRole":      matchers.S("VENDOR"),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success": matchers.Like(true),
				"data": matchers.Map{
					"orderId": matchers.Like(pacttest.ExistingOrderID),
					"status":  matchers.S("PICKUP_SCHEDULED"),
				},
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newOrderClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := client.CreateOrder(ctx, pacttest.ExampleOrderRequest())
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if created == nil || created.OrderID == "" {
			return fmt.Errorf("expected created order ID to be set")
		}

		fetched, err := client.GetOrder(ctx, pacttest.ExistingOrderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if fetched == nil || fetched.OrderID != pacttest.ExistingOrderID {
			return fmt.Errorf("expected order id %s, got %+v", pacttest.ExistingOrderID, fetched)
		}

		if _, err := client.GetOrder(ctx, pacttest.MissingOrderID); err == nil {
			return fmt.Errorf("expected 404 for order %s", pacttest.MissingOrderID)
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.Status())
		}

		advanced, err := client.AdvanceOrder(ctx, pacttest.ExistingOrderID, map[string]any{
			"targetStatus":   "PICKUP_SCHEDULED",
			"expectedStatus": "BOOKING_CREATED",
			"actorRole":      "VENDOR",
		})
		if err != nil {
			return fmt.Errorf("advance order: %w", err)
		}
		if advanced == nil || advanced.Status != "PICKUP_SCHEDULED" {
			return fmt.Errorf("expected PICKUP_SCHEDULED, got %+v", advanced)
		}

		return nil
	})
	require.NoError(t, err)
}

type orderClient struct {
	baseURL    string
	httpClient *http.Client
}

func newOrderClient(config pactconsumer.MockServerConfig) *orderClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &orderClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *orderClient) CreateOrder(ctx context.Context, body map[string]any) (*orderPayload, error) {
	return c.post(ctx, c.baseURL+"/api/v1/orders", body)
}

func (c *orderClient) AdvanceOrder(ctx context.Context, orderID string, body map[string]any) (*orderPayload, error) {
	return c.post(ctx, c.baseURL+"/api/v1/orders/"+orderID+"/transitions", body)
}

func (c *orderClient) GetOrder(ctx context.Context, orderID string) (*orderPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/orders/"+orderID, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return decodeOrder(res)
}

func (c *orderClient) post(ctx context.Context, url string, body map[string]any) (*orderPayload, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return decodeOrder(res)
}

func decodeOrder(res *http.Response) (*orderPayload, error) {
	var envelope orderEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil && res.StatusCode < http.StatusBadRequest {
		return nil, err
	}
	if res.StatusCode >= http.StatusBadRequest {
		apiErr := apiError{status: res.StatusCode}
		if envelope.Error != nil {
			apiErr.code = envelope.Error.Code
			apiErr.message = envelope.Error.Message
		}
		return nil, apiErr
	}
	return envelope.Data, nil
}
