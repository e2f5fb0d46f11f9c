package billing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"rotahub/internal"
	"rotahub/internal/config"
	"rotahub/models"
	"rotahub/utility"
	"time"
)

const (
	paymentOptionFull         = "full"
	paymentOptionInstallments = "installments"

	// order numbering starts here when the collection is empty
	firstOrderNumber = 1200
)

// Gateway creates checkout sessions against the external payment
// processor. It is the only fallible I/O in the billing core: a transport
// error or a response without a session url is returned to the caller,
// never swallowed.
type Gateway struct {
	database  internal.Database
	logger    internal.LogHandler
	listeners []internal.EventHandler
	catalog   *Catalog
	cartConf  Config
	apiUrl    string
	apiKey    string
}

func NewGateway(conf *config.Config) *Gateway {
	return &Gateway{
		apiUrl: conf.Gateway.ApiUrl,
		apiKey: conf.Gateway.ApiKey,
		cartConf: Config{
			HourRate:     conf.Billing.ALaCarteHourRate,
			MinimumHours: conf.Billing.ALaCarteMinHours,
		},
	}
}

func (g *Gateway) SetDatabase(database internal.Database) {
	g.database = database
}

func (g *Gateway) SetLogger(logger internal.LogHandler) {
	g.logger = logger
}

func (g *Gateway) SetCatalog(catalog *Catalog) {
	g.catalog = catalog
}

func (g *Gateway) AddEventListener(handler internal.EventHandler) {
	g.listeners = append(g.listeners, handler)
}

// membershipPlan derives the gateway plan identifier. Block purchases
// are identified by their plan id, hour top-ups by the plan kind.
func (g *Gateway) membershipPlan(request *models.CheckoutRequest) string {
	if request.Kind == models.PlanKindALaCarte {
		return models.PlanKindALaCarte
	}
	return request.PlanId
}

type sessionRequest struct {
	PriceId         string `json:"priceId"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerName    string `json:"customerName"`
	MembershipPlan  string `json:"membershipPlan"`
	PaymentOption   string `json:"paymentOption"`
	InstallmentPlan int    `json:"installmentPlan,omitempty"`
	ALaCarteHours   int    `json:"aLaCarteHours,omitempty"`
	DiscountCode    string `json:"discountCode,omitempty"`
}

type sessionResponse struct {
	Url string `json:"url"`
}

// Launch creates one checkout session and returns its redirect url.
// Calling it twice with the same request opens two independent sessions;
// deduplication, if ever wanted, belongs to the caller. The discount code
// is forwarded verbatim: the gateway decides whether it is honored at
// charge time, the cart engine only previews it.
func (g *Gateway) Launch(request *models.CheckoutRequest) (string, error) {
	session := sessionRequest{
		PriceId:        request.ExternalPriceRef,
		CustomerEmail:  request.CustomerEmail,
		CustomerName:   request.CustomerName,
		MembershipPlan: g.membershipPlan(request),
		PaymentOption:  paymentOptionFull,
		DiscountCode:   request.DiscountCode,
	}
	if request.InstallmentPlan > 1 {
		session.PaymentOption = paymentOptionInstallments
		session.InstallmentPlan = request.InstallmentPlan
	}
	if request.Kind == models.PlanKindALaCarte {
		session.ALaCarteHours = request.Hours
	}

	order := g.openOrder(request)

	url, err := g.createSession(&session)
	if err != nil {
		g.closeOrder(order, fmt.Sprintf("session failed: %s", err))
		g.emit("checkout_failed", request, order, err.Error())
		return "", err
	}

	if order != nil {
		order.SessionUrl = url
		if dbErr := g.database.SaveOrder(order); dbErr != nil {
			g.logger.Error("checkout: save order", dbErr)
		}
	}
	g.emit("checkout_created", request, order, "")
	return url, nil
}

func (g *Gateway) createSession(session *sessionRequest) (string, error) {
	requestData, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("encode session request: %w", err)
	}

	if g.logger != nil {
		g.logger.RawDataEvent("out", string(requestData))
	}

	requestUrl := fmt.Sprintf("%s/v1/checkout/sessions", g.apiUrl)
	req, err := http.NewRequest("POST", requestUrl, bytes.NewBuffer(requestData))
	if err != nil {
		return "", fmt.Errorf("create session request: %w", err)
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", g.apiKey))

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send session request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil && g.logger != nil {
			g.logger.Error("checkout: close response body", err)
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read session response: %w", err)
	}
	if g.logger != nil {
		g.logger.RawDataEvent("in", string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return "", utility.Errf("session response status %v", resp.StatusCode)
	}

	var response sessionResponse
	if err = json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("parse session response: %w", err)
	}
	if response.Url == "" {
		return "", utility.Err("session response has no url")
	}
	return response.Url, nil
}

// openOrder closes the user's previous unfinished order, then persists a
// numbered record for the new session. Bookkeeping failures are logged
// but never block the checkout itself.
func (g *Gateway) openOrder(request *models.CheckoutRequest) *models.CheckoutOrder {
	if g.database == nil {
		return nil
	}

	orderToClose, _ := g.database.GetOpenOrder(request.UserId)
	if orderToClose != nil {
		orderToClose.IsCompleted = true
		orderToClose.Result = "closed without response"
		orderToClose.TimeClosed = time.Now()
		_ = g.database.SaveOrder(orderToClose)
	}

	order := &models.CheckoutOrder{
		UserId:        request.UserId,
		UserName:      request.CustomerName,
		PlanId:        request.PlanId,
		Kind:          request.Kind,
		Hours:         request.Hours,
		Currency:      "USD",
		SessionRef:    utility.NewUUID(),
		DiscountCode:  request.DiscountCode,
		PaymentOption: paymentOptionFull,
		Installments:  1,
		TimeOpened:    time.Now(),
	}
	if request.InstallmentPlan > 1 {
		order.PaymentOption = paymentOptionInstallments
		order.Installments = request.InstallmentPlan
	}
	if g.catalog != nil {
		var override *int
		if request.Hours > 0 {
			hours := request.Hours
			override = &hours
		}
		if item := CreateCartItem(g.catalog, g.cartConf, request.PlanId, override); item != nil {
			order.Hours = item.Hours
			order.Amount = item.Amount
			order.Description = fmt.Sprintf("%s: %d hours", item.PlanId, item.Hours)
		}
	}

	lastOrder, _ := g.database.GetLastOrder()
	if lastOrder != nil {
		order.Order = lastOrder.Order + 1
	} else {
		order.Order = firstOrderNumber
	}

	if err := g.database.SaveOrder(order); err != nil {
		g.logger.Error("checkout: save order", err)
		return nil
	}
	return order
}

func (g *Gateway) closeOrder(order *models.CheckoutOrder, result string) {
	if order == nil || g.database == nil {
		return
	}
	order.IsCompleted = true
	order.Result = result
	order.TimeClosed = time.Now()
	if err := g.database.SaveOrder(order); err != nil {
		g.logger.Error("checkout: close order", err)
	}
}

// RecordPayment stores a settled payment reported by the gateway and
// notifies event listeners.
func (g *Gateway) RecordPayment(record *models.PaymentRecord) error {
	if g.database != nil {
		if err := g.database.Write("payment_records", record); err != nil {
			return err
		}
	}
	event := &internal.EventMessage{
		Type:   "payment_recorded",
		UserId: record.UserId,
		Amount: record.Amount,
		Time:   time.Now(),
		Status: record.Status,
		Info:   record.Description,
	}
	for _, listener := range g.listeners {
		listener.OnPaymentRecorded(event)
	}
	return nil
}

func (g *Gateway) emit(eventType string, request *models.CheckoutRequest, order *models.CheckoutOrder, info string) {
	event := &internal.EventMessage{
		Type:     eventType,
		UserId:   request.UserId,
		Username: request.CustomerName,
		PlanId:   request.PlanId,
		Time:     time.Now(),
		Info:     info,
	}
	if order != nil {
		event.Order = order.Order
		event.Amount = order.Amount
	}
	for _, listener := range g.listeners {
		switch eventType {
		case "checkout_created":
			listener.OnCheckoutCreated(event)
		case "checkout_failed":
			listener.OnCheckoutFailed(event)
		}
	}
}
