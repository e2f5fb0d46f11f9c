package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"rotahub/billing"
	"rotahub/internal/config"
	"rotahub/models"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (l *testLogger) FeatureEvent(feature, id, text string) {}
func (l *testLogger) Debug(text string)                     {}
func (l *testLogger) Warn(text string)                      {}
func (l *testLogger) Error(text string, err error)          {}
func (l *testLogger) RawDataEvent(direction, data string)   {}

func testConfig() *config.Config {
	conf := &config.Config{}
	conf.Billing.TaxRate = 0.08
	conf.Billing.ALaCarteHourRate = 10
	conf.Billing.ALaCarteMinHours = 30
	return conf
}

func newTestApi(conf *config.Config) (*Api, *httptest.Server) {
	api := NewServerApi(conf, &testLogger{})
	api.SetCatalog(billing.NewCatalog(nil))
	router := httprouter.New()
	api.Register(router)
	return api, httptest.NewServer(router)
}

func TestHandlePlans(t *testing.T) {
	_, server := newTestApi(testConfig())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/plans")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var plans []models.BillingPlan
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&plans))
	assert.Len(t, plans, 4)
}

func TestHandleCreditsWithoutSnapshot(t *testing.T) {
	_, server := newTestApi(testConfig())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/credits/user-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response creditsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	assert.Equal(t, 0.0, response.Credits.TotalRemaining)
	assert.Equal(t, 0.0, response.Kpis.HoursInBank)
}

func postJson(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	return resp
}

func TestHandleCartTotals(t *testing.T) {
	_, server := newTestApi(testConfig())
	defer server.Close()

	resp := postJson(t, server.URL+"/api/v1/cart/totals", cartTotalsRequest{
		Items: []cartItemRequest{
			{PlanId: "block-60"},
			{PlanId: "block-120"},
		},
		Installments: 3,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response cartTotalsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	assert.Equal(t, 1290.0, response.Totals.Subtotal)
	assert.InDelta(t, 103.2, response.Totals.Tax, 1e-9)
	assert.InDelta(t, 1393.2, response.Totals.Total, 1e-9)
	assert.Equal(t, 3, response.Installments)
	assert.InDelta(t, 464.4, response.PerInstallment, 1e-9)
}

func TestHandleCartTotalsUnknownPlan(t *testing.T) {
	_, server := newTestApi(testConfig())
	defer server.Close()

	resp := postJson(t, server.URL+"/api/v1/cart/totals", cartTotalsRequest{
		Items: []cartItemRequest{{PlanId: "retired-plan"}},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCartTotalsDiscountNote(t *testing.T) {
	_, server := newTestApi(testConfig())
	defer server.Close()

	resp := postJson(t, server.URL+"/api/v1/cart/totals", cartTotalsRequest{
		Items:        []cartItemRequest{{PlanId: "block-60"}},
		DiscountCode: "SAVEBIG",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response cartTotalsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	assert.Equal(t, 0.0, response.Totals.Discount)
	assert.NotEmpty(t, response.Totals.Note)
}

func TestHandleCheckoutWithoutGateway(t *testing.T) {
	_, server := newTestApi(testConfig())
	defer server.Close()

	resp := postJson(t, server.URL+"/api/v1/checkout", models.CheckoutRequest{
		PlanId: "block-60",
		Kind:   models.PlanKindBlock,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleCheckoutRedirects(t *testing.T) {
	gatewayStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://gateway.example/session/ok"})
	}))
	defer gatewayStub.Close()

	conf := testConfig()
	conf.Gateway.ApiUrl = gatewayStub.URL
	conf.Gateway.ApiKey = "test-key"

	api, server := newTestApi(conf)
	defer server.Close()

	gateway := billing.NewGateway(conf)
	gateway.SetLogger(&testLogger{})
	api.SetGateway(gateway)

	body, err := json.Marshal(models.CheckoutRequest{
		PlanId:           "block-60",
		ExternalPriceRef: "price_block_60",
		Kind:             models.PlanKindBlock,
		CustomerEmail:    "student@example.edu",
		CustomerName:     "Jamie Park",
		UserId:           "user-1",
	})
	require.NoError(t, err)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Post(server.URL+"/api/v1/checkout", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "https://gateway.example/session/ok", resp.Header.Get("Location"))
}

func TestHandleCheckoutGatewayFailure(t *testing.T) {
	gatewayStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	defer gatewayStub.Close()

	conf := testConfig()
	conf.Gateway.ApiUrl = gatewayStub.URL

	api, server := newTestApi(conf)
	defer server.Close()

	gateway := billing.NewGateway(conf)
	gateway.SetLogger(&testLogger{})
	api.SetGateway(gateway)

	resp := postJson(t, server.URL+"/api/v1/checkout", models.CheckoutRequest{
		PlanId: "block-60",
		Kind:   models.PlanKindBlock,
		UserId: "user-1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
