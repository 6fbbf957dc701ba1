package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go-currency-exchange/domain"
	"go-currency-exchange/exchange"
	"go-currency-exchange/format"
	"go-currency-exchange/money"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Server dependencies for HTTP Server functions. Every model call is run on loop.
type Server struct {
	loop   *exchange.Loop
	model  exchange.Model
	logger log.Logger
	router *http.ServeMux
}

func NewServer(loop *exchange.Loop, m exchange.Model, logger log.Logger) *Server {
	server := &Server{
		loop:   loop,
		model:  m,
		logger: logger,
		router: http.NewServeMux(),
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Handle("GET /api/balances", s.balances())
	s.router.Handle("GET /api/rate", s.rate())
	s.router.Handle("POST /api/quote", s.quote())
	s.router.Handle("POST /api/exchange", s.exchange())
	s.router.Handle("POST /api/rates/refresh", s.refresh())
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

type balances map[domain.Currency]string

// balances produces HTTP handler listing the account balances
func (s *Server) balances() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		var response balances
		if !s.do(r.Context(), rw, func() { response = s.balancesNow() }) {
			return
		}
		writeJSON(rw, http.StatusOK, response)
	}
}

// rate produces HTTP handler for the rate between two currencies
func (s *Server) rate() http.HandlerFunc {

	// response for marshalling JSON responses to return to clients
	type response struct {
		From  domain.Currency `json:"from"`
		To    domain.Currency `json:"to"`
		Rate  string          `json:"rate"`
		Exact string          `json:"exact"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		from, err := domain.ParseCurrency(r.URL.Query().Get("from"))
		if err != nil {
			writeError(rw, http.StatusBadRequest, err.Error())
			return
		}
		to, err := domain.ParseCurrency(r.URL.Query().Get("to"))
		if err != nil {
			writeError(rw, http.StatusBadRequest, err.Error())
			return
		}

		var rate decimal.NullDecimal
		if !s.do(r.Context(), rw, func() {
			rate = s.model.CurrencyModel(from, to, domain.SideFrom, money.Amount{}).Rate
		}) {
			return
		}
		if !rate.Valid {
			writeError(rw, http.StatusServiceUnavailable, "rates not loaded")
			return
		}
		writeJSON(rw, http.StatusOK, response{
			From:  from,
			To:    to,
			Rate:  format.Decimal(rate.Decimal, format.FourDigits),
			Exact: rate.Decimal.String(),
		})
	}
}

// quote produces HTTP handler calculating the other side of an exchange
func (s *Server) quote() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		From   string          `json:"from"`
		To     string          `json:"to"`
		Side   string          `json:"side"`
		Amount decimal.Decimal `json:"amount"`
	}

	type response struct {
		From       domain.Currency `json:"from"`
		To         domain.Currency `json:"to"`
		AmountFrom string          `json:"amountFrom"`
		AmountTo   string          `json:"amountTo"`
		Rate       string          `json:"rate"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(rw, http.StatusBadRequest, "invalid json")
			return
		}
		from, to, err := parsePair(req.From, req.To)
		if err != nil {
			writeError(rw, http.StatusBadRequest, err.Error())
			return
		}
		side, err := domain.ParseSide(req.Side)
		if err != nil {
			writeError(rw, http.StatusBadRequest, err.Error())
			return
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			writeError(rw, http.StatusBadRequest, err.Error())
			return
		}

		var rate decimal.NullDecimal
		var result money.Amount
		if !s.do(r.Context(), rw, func() {
			rate = s.model.CurrencyModel(from, to, side, amount).Rate
			if rate.Valid {
				result = s.model.CalculateExchangeAmount(from, to, amount, side)
			}
		}) {
			return
		}
		if !rate.Valid {
			writeError(rw, http.StatusServiceUnavailable, "rates not loaded")
			return
		}

		amountFrom, amountTo := amount, result
		if side == domain.SideTo {
			amountFrom, amountTo = result, amount
		}
		writeJSON(rw, http.StatusOK, response{
			From:       from,
			To:         to,
			AmountFrom: format.Money(amountFrom),
			AmountTo:   format.Money(amountTo),
			Rate:       format.Decimal(rate.Decimal, format.FourDigits),
		})
	}
}

// exchange produces HTTP handler moving money between two balances
func (s *Server) exchange() http.HandlerFunc {

	type request struct {
		From       string          `json:"from"`
		To         string          `json:"to"`
		AmountFrom decimal.Decimal `json:"amountFrom"`
		AmountTo   decimal.Decimal `json:"amountTo"`
	}

	// receipt of a committed exchange
	type receipt struct {
		ID         uuid.UUID       `json:"id"`
		From       domain.Currency `json:"from"`
		To         domain.Currency `json:"to"`
		AmountFrom string          `json:"amountFrom"`
		AmountTo   string          `json:"amountTo"`
		Balances   balances        `json:"balances"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(rw, http.StatusBadRequest, "invalid json")
			return
		}
		from, to, err := parsePair(req.From, req.To)
		if err != nil {
			writeError(rw, http.StatusBadRequest, err.Error())
			return
		}
		amountFrom, err := parseAmount(req.AmountFrom)
		if err != nil {
			writeError(rw, http.StatusBadRequest, err.Error())
			return
		}
		amountTo, err := parseAmount(req.AmountTo)
		if err != nil {
			writeError(rw, http.StatusBadRequest, err.Error())
			return
		}

		var ok bool
		var after balances
		if !s.do(r.Context(), rw, func() {
			ok = s.model.PerformExchange(from, amountFrom, to, amountTo)
			after = s.balancesNow()
		}) {
			return
		}
		if !ok {
			writeError(rw, http.StatusUnprocessableEntity, "exchange rejected")
			return
		}
		writeJSON(rw, http.StatusOK, receipt{
			ID:         uuid.New(),
			From:       from,
			To:         to,
			AmountFrom: format.Money(amountFrom),
			AmountTo:   format.Money(amountTo),
			Balances:   after,
		})
	}
}

// refresh produces HTTP handler reloading the rates and waiting for the result
func (s *Server) refresh() http.HandlerFunc {

	type response struct {
		Loaded bool `json:"loaded"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		// A client going away must not abort the fetch, that would clear the rates
		ok, err := exchange.LoadRatesAndWait(context.WithoutCancel(r.Context()), s.loop, s.model)
		switch {
		case errors.Is(err, exchange.ErrAlreadyLoading):
			writeError(rw, http.StatusConflict, err.Error())
			return
		case err != nil:
			level.Warn(s.logger).Log("msg", "refresh not completed", "err", err)
			writeError(rw, http.StatusServiceUnavailable, "refresh not completed")
			return
		}
		writeJSON(rw, http.StatusOK, response{Loaded: ok})
	}
}

// do runs fn on the loop, answering 503 when that is not possible
func (s *Server) do(ctx context.Context, rw http.ResponseWriter, fn func()) bool {
	if err := s.loop.Do(ctx, fn); err != nil {
		level.Warn(s.logger).Log("msg", "request not served", "err", err)
		writeError(rw, http.StatusServiceUnavailable, "service unavailable")
		return false
	}
	return true
}

// balancesNow must run on the loop
func (s *Server) balancesNow() balances {
	b := balances{}
	for _, c := range domain.Currencies {
		b[c] = format.Money(s.model.AmountLeft(c))
	}
	return b
}

func parsePair(from, to string) (domain.Currency, domain.Currency, error) {
	f, err := domain.ParseCurrency(from)
	if err != nil {
		return "", "", err
	}
	t, err := domain.ParseCurrency(to)
	if err != nil {
		return "", "", err
	}
	return f, t, nil
}

// maxAmount requested amounts stay below, the same six integral digits a typed amount may have
var maxAmount = decimal.New(1, 6)

func parseAmount(d decimal.Decimal) (money.Amount, error) {
	if d.IsNegative() {
		return money.Amount{}, errors.New("amount must not be negative")
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return money.Amount{}, fmt.Errorf("amount must be below %s", maxAmount)
	}
	return money.FromDecimal(d), nil
}

func writeJSON(rw http.ResponseWriter, code int, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, code int, message string) {
	writeJSON(rw, code, map[string]string{"error": message})
}
