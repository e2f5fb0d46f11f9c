package billing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"rotahub/internal"
	"rotahub/internal/config"
	"rotahub/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (l *nopLogger) FeatureEvent(feature, id, text string) {}
func (l *nopLogger) Debug(text string)                     {}
func (l *nopLogger) Warn(text string)                      {}
func (l *nopLogger) Error(text string, err error)          {}
func (l *nopLogger) RawDataEvent(direction, data string)   {}

// mockDatabase is an in-memory stand-in for the mongo repository
type mockDatabase struct {
	orders []*models.CheckoutOrder
}

func (m *mockDatabase) Write(table string, data internal.Data) error { return nil }
func (m *mockDatabase) WriteLogMessage(data internal.Data) error     { return nil }
func (m *mockDatabase) ReadLog() (interface{}, error)                { return nil, nil }

func (m *mockDatabase) GetBillingPlans() ([]models.BillingPlan, error) { return nil, nil }

func (m *mockDatabase) GetUser(userId string) (*models.User, error) { return nil, nil }

func (m *mockDatabase) GetHourBalance(userId string) (*models.HourBalance, error) {
	return nil, nil
}

func (m *mockDatabase) GetPaymentRecords(userId string) ([]models.PaymentRecord, error) {
	return nil, nil
}

func (m *mockDatabase) GetLastOrder() (*models.CheckoutOrder, error) {
	if len(m.orders) == 0 {
		return nil, nil
	}
	last := m.orders[0]
	for _, order := range m.orders {
		if order.Order > last.Order {
			last = order
		}
	}
	return last, nil
}

func (m *mockDatabase) GetOpenOrder(userId string) (*models.CheckoutOrder, error) {
	for _, order := range m.orders {
		if order.UserId == userId && !order.IsCompleted {
			return order, nil
		}
	}
	return nil, nil
}

func (m *mockDatabase) SaveOrder(order *models.CheckoutOrder) error {
	for i, existing := range m.orders {
		if existing.Order == order.Order {
			m.orders[i] = order
			return nil
		}
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockDatabase) GetSubscriptions() ([]models.UserSubscription, error) { return nil, nil }
func (m *mockDatabase) AddSubscription(s *models.UserSubscription) error     { return nil }
func (m *mockDatabase) DeleteSubscription(s *models.UserSubscription) error  { return nil }

type eventRecorder struct {
	created  []*internal.EventMessage
	failed   []*internal.EventMessage
	payments []*internal.EventMessage
}

func (r *eventRecorder) OnCheckoutCreated(event *internal.EventMessage) {
	r.created = append(r.created, event)
}

func (r *eventRecorder) OnCheckoutFailed(event *internal.EventMessage) {
	r.failed = append(r.failed, event)
}

func (r *eventRecorder) OnPaymentRecorded(event *internal.EventMessage) {
	r.payments = append(r.payments, event)
}

func newTestGateway(apiUrl string) *Gateway {
	conf := &config.Config{}
	conf.Gateway.ApiUrl = apiUrl
	conf.Gateway.ApiKey = "test-key"
	conf.Billing.ALaCarteHourRate = 10
	conf.Billing.ALaCarteMinHours = 30

	gateway := NewGateway(conf)
	gateway.SetLogger(&nopLogger{})
	return gateway
}

func TestLaunchForwardsSessionFields(t *testing.T) {
	var received sessionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://gateway.example/session/abc"})
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)
	url, err := gateway.Launch(&models.CheckoutRequest{
		PlanId:           "a-la-carte",
		ExternalPriceRef: "price_a_la_carte",
		Hours:            45,
		Kind:             models.PlanKindALaCarte,
		CustomerEmail:    "student@example.edu",
		CustomerName:     "Jamie Park",
		UserId:           "user-1",
		DiscountCode:     "NP12345",
		InstallmentPlan:  3,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example/session/abc", url)
	assert.Equal(t, "price_a_la_carte", received.PriceId)
	assert.Equal(t, "student@example.edu", received.CustomerEmail)
	assert.Equal(t, "a_la_carte", received.MembershipPlan)
	assert.Equal(t, "installments", received.PaymentOption)
	assert.Equal(t, 3, received.InstallmentPlan)
	assert.Equal(t, 45, received.ALaCarteHours)
	assert.Equal(t, "NP12345", received.DiscountCode)
}

func TestLaunchBlockPlanOmitsHours(t *testing.T) {
	var raw map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://gateway.example/session/xyz"})
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)
	_, err := gateway.Launch(&models.CheckoutRequest{
		PlanId:           "block-60",
		ExternalPriceRef: "price_block_60",
		Hours:            60,
		Kind:             models.PlanKindBlock,
		CustomerEmail:    "student@example.edu",
		CustomerName:     "Jamie Park",
		UserId:           "user-1",
	})

	require.NoError(t, err)
	// the price reference alone determines a block amount on the gateway side
	_, hasHours := raw["aLaCarteHours"]
	assert.False(t, hasHours)
	// block purchases are identified by their plan id
	assert.Equal(t, "block-60", raw["membershipPlan"])
	// no installment plan means a single full payment
	assert.Equal(t, "full", raw["paymentOption"])
	_, hasInstallments := raw["installmentPlan"]
	assert.False(t, hasInstallments)
}

func TestLaunchMissingUrlFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	recorder := &eventRecorder{}
	gateway := newTestGateway(server.URL)
	gateway.AddEventListener(recorder)

	url, err := gateway.Launch(&models.CheckoutRequest{
		PlanId:           "block-60",
		ExternalPriceRef: "price_block_60",
		Kind:             models.PlanKindBlock,
		UserId:           "user-1",
	})

	require.Error(t, err)
	assert.Empty(t, url)
	assert.Len(t, recorder.failed, 1)
	assert.Empty(t, recorder.created)
}

func TestLaunchGatewayErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)
	_, err := gateway.Launch(&models.CheckoutRequest{
		PlanId: "block-60",
		Kind:   models.PlanKindBlock,
		UserId: "user-1",
	})
	require.Error(t, err)
}

func TestLaunchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	gateway := newTestGateway(server.URL)
	_, err := gateway.Launch(&models.CheckoutRequest{
		PlanId: "block-60",
		Kind:   models.PlanKindBlock,
		UserId: "user-1",
	})
	require.Error(t, err)
}

func TestLaunchOrderBookkeeping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://gateway.example/session/ok"})
	}))
	defer server.Close()

	database := &mockDatabase{}
	recorder := &eventRecorder{}
	gateway := newTestGateway(server.URL)
	gateway.SetDatabase(database)
	gateway.SetCatalog(NewCatalog(nil))
	gateway.AddEventListener(recorder)

	request := &models.CheckoutRequest{
		PlanId:           "block-60",
		ExternalPriceRef: "price_block_60",
		Hours:            60,
		Kind:             models.PlanKindBlock,
		CustomerName:     "Jamie Park",
		UserId:           "user-1",
	}

	_, err := gateway.Launch(request)
	require.NoError(t, err)
	require.Len(t, database.orders, 1)

	first := database.orders[0]
	assert.Equal(t, 1200, first.Order)
	assert.Equal(t, 495.0, first.Amount)
	assert.Equal(t, "https://gateway.example/session/ok", first.SessionUrl)
	assert.NotEmpty(t, first.SessionRef)
	assert.False(t, first.IsCompleted)

	// a second launch closes the first order and numbers the next one
	_, err = gateway.Launch(request)
	require.NoError(t, err)
	require.Len(t, database.orders, 2)
	assert.True(t, database.orders[0].IsCompleted)
	assert.Equal(t, "closed without response", database.orders[0].Result)
	assert.Equal(t, 1201, database.orders[1].Order)

	assert.Len(t, recorder.created, 2)
}

func TestRecordPaymentNotifiesListeners(t *testing.T) {
	recorder := &eventRecorder{}
	gateway := newTestGateway("http://gateway.invalid")
	gateway.SetDatabase(&mockDatabase{})
	gateway.AddEventListener(recorder)

	err := gateway.RecordPayment(&models.PaymentRecord{
		Id:     "pay_1",
		UserId: "user-1",
		Amount: 495,
		Status: "succeeded",
	})

	require.NoError(t, err)
	require.Len(t, recorder.payments, 1)
	assert.Equal(t, 495.0, recorder.payments[0].Amount)
}
