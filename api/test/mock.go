package test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/job-board/api/web"
	mock "github.com/stripe/stripe-mock/param"
)

// mockStripe fakes the two checkout endpoints the backend talks to.
// Sessions created through it are remembered so the webhook handler
// can read them back in expanded form.
type mockStripe struct {
	mu          sync.Mutex
	amountTotal int64
	rejectPrice string
	sessions    map[string]mockSession
}

type mockSession struct {
	ID       string
	PriceID  string
	Metadata map[string]string
}

func (m *mockStripe) handle() http.Handler {
	checkout := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, _ := mock.ParseParams(r)

		lines, ok := params["line_items"].(map[string]any)
		if !ok || len(lines) != 1 {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		var priceID string
		for _, li := range lines {
			it := li.(map[string]any)
			if it["quantity"] != "1" {
				web.Respond(context.Background(), w, nil, 400)
				return
			}
			priceID, _ = it["price"].(string)
		}

		if m.rejectPrice != "" && priceID == m.rejectPrice {
			web.Respond(context.Background(), w, map[string]any{
				"error": map[string]any{"type": "invalid_request_error", "message": "No such price: " + priceID},
			}, 400)
			return
		}

		md := map[string]string{}
		if raw, ok := params["metadata"].(map[string]any); ok {
			for k, v := range raw {
				if s, ok := v.(string); ok {
					md[k] = s
				}
			}
		}

		s := mockSession{
			ID:       fmt.Sprintf("cs_test_%d", rand.Intn(100000)),
			PriceID:  priceID,
			Metadata: md,
		}

		m.mu.Lock()
		if m.sessions == nil {
			m.sessions = map[string]mockSession{}
		}
		m.sessions[s.ID] = s
		m.mu.Unlock()

		resp := map[string]any{
			"id":       s.ID,
			"object":   "checkout.session",
			"mode":     "payment",
			"url":      "https://checkout.stripe.local/pay/" + s.ID,
			"metadata": s.Metadata,
		}
		web.Respond(context.Background(), w, resp, 200)
	})

	retrieve := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		m.mu.Lock()
		s, ok := m.sessions[id]
		m.mu.Unlock()

		if !ok {
			web.Respond(context.Background(), w, map[string]any{
				"error": map[string]any{"type": "invalid_request_error", "message": "no such session"},
			}, 404)
			return
		}

		resp := map[string]any{
			"id":             s.ID,
			"object":         "checkout.session",
			"mode":           "payment",
			"amount_total":   m.amountTotal,
			"customer_email": "payer@test.io",
			"metadata":       s.Metadata,
			"line_items": map[string]any{
				"object": "list",
				"data": []map[string]any{{
					"id":           "li_" + s.ID,
					"object":       "item",
					"description":  "Job posting fee",
					"amount_total": m.amountTotal,
					"quantity":     1,
					"price":        map[string]any{"id": s.PriceID, "object": "price"},
				}},
			},
		}
		web.Respond(context.Background(), w, resp, 200)
	})

	r := mux.NewRouter()
	r.Handle("/v1/checkout/sessions", checkout).Methods("POST")
	r.Handle("/v1/checkout/sessions/{id}", retrieve).Methods("GET")
	return r
}

// mockPaypal fakes the oauth token endpoint plus order create and
// capture. The purchase unit of a created order is echoed back on
// capture so the backend can recover the job reference.
type mockPaypal struct {
	mu     sync.Mutex
	orders map[string]mockPaypalOrder
}

type mockPaypalOrder struct {
	ReferenceID string
	CustomID    string
	Value       string
}

func (m *mockPaypal) handle() http.Handler {
	token := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
		web.Respond(context.Background(), w, resp, 200)
	})

	checkout := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var pu struct {
			Units []struct {
				ReferenceID string `json:"reference_id"`
				CustomID    string `json:"custom_id"`
				Amount      struct {
					Value string `json:"value"`
				} `json:"amount"`
			} `json:"purchase_units"`
		}
		if err := json.NewDecoder(r.Body).Decode(&pu); err != nil || len(pu.Units) != 1 {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		ord := mockPaypalOrder{
			ReferenceID: pu.Units[0].ReferenceID,
			CustomID:    pu.Units[0].CustomID,
			Value:       pu.Units[0].Amount.Value,
		}

		id := fmt.Sprintf("paypal-%d", rand.Intn(100000))
		m.mu.Lock()
		if m.orders == nil {
			m.orders = map[string]mockPaypalOrder{}
		}
		m.orders[id] = ord
		m.mu.Unlock()

		web.Respond(context.Background(), w, map[string]any{"id": id, "status": "CREATED"}, 201)
	})

	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		m.mu.Lock()
		ord, ok := m.orders[id]
		m.mu.Unlock()

		if !ok {
			web.Respond(context.Background(), w, nil, 404)
			return
		}

		resp := map[string]any{
			"id":     id,
			"status": "COMPLETED",
			"payer":  map[string]any{"email_address": "payer@test.io"},
			"purchase_units": []map[string]any{{
				"reference_id": ord.ReferenceID,
				"payments": map[string]any{
					"captures": []map[string]any{{
						"id":     "cap-" + id,
						"amount": map[string]any{"currency_code": "USD", "value": ord.Value},
					}},
				},
			}},
		}
		web.Respond(context.Background(), w, resp, 201)
	})

	r := mux.NewRouter()
	r.Handle("/v1/oauth2/token", token).Methods("POST")
	r.Handle("/v2/checkout/orders", checkout).Methods("POST")
	r.Handle("/v2/checkout/orders/{id}/capture", capture).Methods("POST")
	return r
}
