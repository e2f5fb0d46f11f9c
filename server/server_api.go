package server

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"rotahub/billing"
	"rotahub/internal"
	"rotahub/internal/config"
	"rotahub/models"

	"github.com/julienschmidt/httprouter"
)

const (
	plansEndpoint         = "/api/v1/plans"
	creditsEndpoint       = "/api/v1/credits/:user"
	cartTotalsEndpoint    = "/api/v1/cart/totals"
	checkoutEndpoint      = "/api/v1/checkout"
	paymentsEndpoint      = "/api/v1/payments/:user"
	paymentRecordEndpoint = "/api/v1/payments"
	logEndpoint           = "/api/v1/log"
)

type Api struct {
	conf       *config.Config
	httpServer *http.Server
	logger     internal.LogHandler
	database   internal.Database
	catalog    *billing.Catalog
	gateway    *billing.Gateway
	cartConf   billing.Config
}

func NewServerApi(conf *config.Config, logger internal.LogHandler) *Api {
	server := Api{
		conf:   conf,
		logger: logger,
		cartConf: billing.Config{
			HourRate:     conf.Billing.ALaCarteHourRate,
			MinimumHours: conf.Billing.ALaCarteMinHours,
		},
	}
	router := httprouter.New()
	server.Register(router)
	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", conf.Api.BindIP, conf.Api.Port),
		Handler: router,
	}
	return &server
}

func (s *Api) SetDatabase(database internal.Database) {
	s.database = database
}

func (s *Api) SetCatalog(catalog *billing.Catalog) {
	s.catalog = catalog
}

func (s *Api) SetGateway(gateway *billing.Gateway) {
	s.gateway = gateway
}

func (s *Api) Register(router *httprouter.Router) {
	router.GET(plansEndpoint, s.handlePlans)
	router.GET(creditsEndpoint, s.handleCredits)
	router.POST(cartTotalsEndpoint, s.handleCartTotals)
	router.POST(checkoutEndpoint, s.handleCheckout)
	router.GET(paymentsEndpoint, s.handlePayments)
	router.POST(paymentRecordEndpoint, s.handlePaymentRecord)
	router.GET(logEndpoint, s.handleLog)
}

func (s *Api) Start() error {
	if s.conf.Api.TLS {
		cert, err := tls.LoadX509KeyPair(s.conf.Api.CertFile, s.conf.Api.KeyFile)
		if err != nil {
			return fmt.Errorf("api: failed to load certificate: %v", err)
		}
		s.httpServer.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.httpServer.ListenAndServeTLS("", "")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Api) handlePlans(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.sendJson(w, s.catalog.Plans())
}

type creditsResponse struct {
	Credits billing.HourCreditSummary `json:"credits"`
	Kpis    billing.BillingKpis       `json:"kpis"`
}

func (s *Api) handleCredits(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	user := params.ByName("user")

	// a user with no stored snapshot has a zero balance, not an error
	var raw *models.HourBalance
	if s.database != nil {
		raw, _ = s.database.GetHourBalance(user)
	}

	credits := billing.DeriveHourCredits(raw)
	s.sendJson(w, creditsResponse{
		Credits: credits,
		Kpis:    billing.DeriveKpis(credits),
	})
}

type cartItemRequest struct {
	PlanId string `json:"plan_id"`
	Hours  *int   `json:"hours,omitempty"`
}

type cartTotalsRequest struct {
	Items        []cartItemRequest `json:"items"`
	DiscountCode string            `json:"discount_code,omitempty"`
	Installments int               `json:"installments,omitempty"`
}

type cartTotalsResponse struct {
	Items          []billing.CartItem `json:"items"`
	Totals         billing.Totals     `json:"totals"`
	Installments   int                `json:"installments"`
	PerInstallment float64            `json:"per_installment"`
}

func (s *Api) handleCartTotals(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request cartTotalsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.logger.Warn(fmt.Sprintf("api: error parsing cart from %s: %s", r.RemoteAddr, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	cart := make([]billing.CartItem, 0, len(request.Items))
	for _, line := range request.Items {
		item := billing.CreateCartItem(s.catalog, s.cartConf, line.PlanId, line.Hours)
		if item == nil {
			s.logger.Warn(fmt.Sprintf("api: unknown plan %s from %s", line.PlanId, r.RemoteAddr))
			http.Error(w, fmt.Sprintf("unknown plan: %s", line.PlanId), http.StatusBadRequest)
			return
		}
		cart = append(cart, *item)
	}

	totals := billing.ComputeTotals(cart, s.conf.Billing.TaxRate, request.DiscountCode)
	installments := request.Installments
	if installments < 1 {
		installments = 1
	}
	observeCartTotals(request.DiscountCode != "")

	s.sendJson(w, cartTotalsResponse{
		Items:          cart,
		Totals:         totals,
		Installments:   installments,
		PerInstallment: billing.InstallmentAmount(totals.Total, installments),
	})
}

func (s *Api) handleCheckout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.gateway == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	var request models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.logger.Warn(fmt.Sprintf("api: error parsing checkout from %s: %s", r.RemoteAddr, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// fill missing customer details from the stored profile
	if s.database != nil && (request.CustomerEmail == "" || request.CustomerName == "") {
		if user, err := s.database.GetUser(request.UserId); err == nil && user != nil {
			if request.CustomerEmail == "" {
				request.CustomerEmail = user.Email
			}
			if request.CustomerName == "" {
				request.CustomerName = user.Name
			}
		}
	}

	url, err := s.gateway.Launch(&request)
	if err != nil {
		s.logger.Error(fmt.Sprintf("api: checkout for %s", request.UserId), err)
		observeCheckout(request.PlanId, "failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	observeCheckout(request.PlanId, "created")

	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (s *Api) handlePayments(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	user := params.ByName("user")

	var records []models.PaymentRecord
	if s.database != nil {
		var err error
		records, err = s.database.GetPaymentRecords(user)
		if err != nil {
			s.logger.Error(fmt.Sprintf("api: payment records for %s", user), err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}

	history := billing.NewHistory(billing.FormatPaymentHistory(records))
	s.sendJson(w, history.PaymentHistory())
}

func (s *Api) handlePaymentRecord(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.gateway == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	var record models.PaymentRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		s.logger.Warn(fmt.Sprintf("api: error parsing payment record from %s: %s", r.RemoteAddr, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := s.gateway.RecordPayment(&record); err != nil {
		s.logger.Error("api: record payment", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Api) handleLog(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.database == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	data, err := s.database.ReadLog()
	if err != nil {
		s.logger.Error("api: read log", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.sendJson(w, data)
}

func (s *Api) sendJson(w http.ResponseWriter, data interface{}) {
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("api: encode response", err)
	}
}
