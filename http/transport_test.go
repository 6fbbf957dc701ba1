package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-currency-exchange/domain"
	"go-currency-exchange/exchange"

	"github.com/go-kit/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mock struct {
	rates   []domain.ExchangeRate
	release chan struct{}
}

func (m *mock) Rates(ctx context.Context) ([]domain.ExchangeRate, error) {
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.rates, nil
}

var feed = []domain.ExchangeRate{
	{From: domain.EUR, To: domain.USD, Rate: decimal.RequireFromString("1.2249")},
	{From: domain.EUR, To: domain.GBP, Rate: decimal.RequireFromString("0.8783")},
}

type fixture struct {
	ctx    context.Context
	loop   *exchange.Loop
	model  exchange.Model
	server *Server
}

func newFixture(t *testing.T, source *mock) fixture {
	ctx, cancel := context.WithCancel(context.Background()) // must cancel to stop the loop go-routine
	t.Cleanup(cancel)
	loop := exchange.NewLoop()
	go func() { _ = loop.Run(ctx) }()
	model := exchange.New(source, loop, exchange.SeedStore(exchange.DefaultStartingBalance), log.NewNopLogger())
	return fixture{ctx: ctx, loop: loop, model: model, server: NewServer(loop, model, log.NewNopLogger())}
}

func loadedFixture(t *testing.T) fixture {
	f := newFixture(t, &mock{rates: feed})
	ok, err := exchange.LoadRatesAndWait(f.ctx, f.loop, f.model)
	require.NoError(t, err)
	require.True(t, ok)
	return f
}

func (f fixture) serve(method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	f.server.ServeHTTP(w, r)
	return w
}

func body(w *httptest.ResponseRecorder) string {
	return strings.TrimSpace(w.Body.String())
}

func TestServer_Balances(t *testing.T) {
	f := newFixture(t, &mock{rates: feed})

	w := f.serve("GET", "/api/balances", "")

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, `{"EUR":"100","GBP":"100","USD":"100"}`, body(w))
}

func TestServer_Rate(t *testing.T) {
	f := loadedFixture(t)

	w := f.serve("GET", "/api/rate?from=eur&to=USD", "")

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"from":"EUR","to":"USD","rate":"1.2249","exact":"1.2249"}`, body(w))

	w = f.serve("GET", "/api/rate?from=GBP&to=EUR", "")
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, body(w), `"rate":"1.1385"`)
}

func TestServer_RateErrors(t *testing.T) {
	f := newFixture(t, &mock{rates: feed})

	w := f.serve("GET", "/api/rate?from=EUR&to=USD", "")
	assert.Equal(t, 503, w.Code)
	assert.Equal(t, `{"error":"rates not loaded"}`, body(w))

	w = f.serve("GET", "/api/rate?from=EUR&to=JPY", "")
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, `{"error":"unknown currency: \"JPY\""}`, body(w))
}

func TestServer_Quote(t *testing.T) {
	f := loadedFixture(t)

	tests := []struct {
		name string
		msg  string
		want string
	}{
		{
			"from side",
			`{"from":"EUR","to":"USD","side":"from","amount":"10"}`,
			`{"from":"EUR","to":"USD","amountFrom":"10","amountTo":"12.24","rate":"1.2249"}`,
		},
		{
			"to side",
			`{"from":"EUR","to":"GBP","side":"to","amount":1.57}`,
			`{"from":"EUR","to":"GBP","amountFrom":"1.79","amountTo":"1.57","rate":"0.8783"}`,
		},
		{
			"same currency",
			`{"from":"USD","to":"USD","side":"to","amount":"3.5"}`,
			`{"from":"USD","to":"USD","amountFrom":"3.5","amountTo":"3.5","rate":"1"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.serve("POST", "/api/quote", tt.msg)
			assert.Equal(t, 200, w.Code)
			assert.Equal(t, tt.want, body(w))
		})
	}
}

func TestServer_QuoteErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		code int
	}{
		{"invalid json", `{"from":`, 400},
		{"unknown currency", `{"from":"EUR","to":"CHF","side":"from","amount":"1"}`, 400},
		{"unknown side", `{"from":"EUR","to":"USD","side":"up","amount":"1"}`, 400},
		{"negative amount", `{"from":"EUR","to":"USD","side":"from","amount":"-1"}`, 400},
		{"amount too large", `{"from":"EUR","to":"USD","side":"from","amount":"1000000"}`, 400},
		{"amount past uint64", `{"from":"EUR","to":"USD","side":"from","amount":"18446744073709551621.50"}`, 400},
		{"rates not loaded", `{"from":"EUR","to":"USD","side":"from","amount":"1"}`, 503},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &mock{rates: feed})
			w := f.serve("POST", "/api/quote", tt.msg)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, body(w), `"error"`)
		})
	}
}

func TestServer_Exchange(t *testing.T) {
	f := loadedFixture(t)

	w := f.serve("POST", "/api/exchange", `{"from":"EUR","to":"USD","amountFrom":"96.44","amountTo":"118.12"}`)
	require.Equal(t, 200, w.Code)

	var receipt struct {
		ID         uuid.UUID         `json:"id"`
		AmountFrom string            `json:"amountFrom"`
		AmountTo   string            `json:"amountTo"`
		Balances   map[string]string `json:"balances"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
	assert.NotEqual(t, uuid.Nil, receipt.ID)
	assert.Equal(t, "96.44", receipt.AmountFrom)
	assert.Equal(t, "118.12", receipt.AmountTo)
	assert.Equal(t, map[string]string{"EUR": "3.56", "GBP": "100", "USD": "218.12"}, receipt.Balances)

	w = f.serve("GET", "/api/balances", "")
	assert.Equal(t, `{"EUR":"3.56","GBP":"100","USD":"218.12"}`, body(w))
}

func TestServer_ExchangeRejected(t *testing.T) {
	f := loadedFixture(t)

	tests := []struct {
		name string
		msg  string
	}{
		{"too much requested", `{"from":"EUR","to":"USD","amountFrom":"96.44","amountTo":"118.13"}`},
		{"not enough funds", `{"from":"EUR","to":"USD","amountFrom":"100.01","amountTo":"1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.serve("POST", "/api/exchange", tt.msg)
			assert.Equal(t, 422, w.Code)
			assert.Equal(t, `{"error":"exchange rejected"}`, body(w))
		})
	}

	w := f.serve("GET", "/api/balances", "")
	assert.Equal(t, `{"EUR":"100","GBP":"100","USD":"100"}`, body(w))
}

func TestServer_Refresh(t *testing.T) {
	f := newFixture(t, &mock{rates: feed})

	w := f.serve("POST", "/api/rates/refresh", "")

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"loaded":true}`, body(w))
	w = f.serve("GET", "/api/rate?from=EUR&to=USD", "")
	assert.Equal(t, 200, w.Code)
}

func TestServer_RefreshWhileLoading(t *testing.T) {
	source := &mock{rates: feed, release: make(chan struct{})}
	f := newFixture(t, source)

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- f.serve("POST", "/api/rates/refresh", "") }()

	assert.Eventually(t, func() bool {
		var loading bool
		if err := f.loop.Do(f.ctx, func() { loading = f.model.IsLoading() }); err != nil {
			return false
		}
		return loading
	}, time.Second, 5*time.Millisecond)

	w := f.serve("POST", "/api/rates/refresh", "")
	assert.Equal(t, 409, w.Code)
	assert.Equal(t, `{"error":"rates are already loading"}`, body(w))

	close(source.release)
	w = <-first
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"loaded":true}`, body(w))
}

func TestServer_MethodNotAllowed(t *testing.T) {
	f := newFixture(t, &mock{rates: feed})

	w := f.serve("GET", "/api/exchange", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_ExchangeOversizedAmounts(t *testing.T) {
	f := loadedFixture(t)

	tests := []struct {
		name string
		msg  string
	}{
		{"from past uint64", `{"from":"EUR","to":"USD","amountFrom":"18446744073709551617","amountTo":"1"}`},
		{"to past uint64", `{"from":"EUR","to":"USD","amountFrom":"1","amountTo":"18446744073709551617"}`},
		{"from above bound", `{"from":"EUR","to":"USD","amountFrom":"1000000","amountTo":"1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.serve("POST", "/api/exchange", tt.msg)
			assert.Equal(t, 400, w.Code)
			assert.Equal(t, `{"error":"amount must be below 1000000"}`, body(w))
		})
	}

	w := f.serve("GET", "/api/balances", "")
	assert.Equal(t, `{"EUR":"100","GBP":"100","USD":"100"}`, body(w))
}

func TestServer_PartialFeed(t *testing.T) {
	f := newFixture(t, &mock{rates: feed[:1]})
	ok, err := exchange.LoadRatesAndWait(f.ctx, f.loop, f.model)
	require.NoError(t, err)
	require.True(t, ok)

	w := f.serve("POST", "/api/exchange", `{"from":"EUR","to":"GBP","amountFrom":"1","amountTo":"0"}`)
	assert.Equal(t, 422, w.Code)

	w = f.serve("GET", "/api/rate?from=EUR&to=GBP", "")
	assert.Equal(t, 503, w.Code)

	w = f.serve("POST", "/api/quote", `{"from":"GBP","to":"EUR","side":"to","amount":"1"}`)
	assert.Equal(t, 503, w.Code)

	// the loop survived the rejected requests
	w = f.serve("POST", "/api/exchange", `{"from":"EUR","to":"USD","amountFrom":"10","amountTo":"12.24"}`)
	assert.Equal(t, 200, w.Code)
}
