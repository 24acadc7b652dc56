package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

const marketsPage = `[
	{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://img/btc.png","current_price":67000.12,"market_cap":1300000000000,"market_cap_rank":1,"price_change_percentage_24h":-1.2},
	{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3500}
]`

func TestFetchMarkets_DecodesAndSendsQueryParams(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/markets" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"vs_currency": q.Get("vs_currency"),
			"order":       q.Get("order"),
			"per_page":    q.Get("per_page"),
			"page":        q.Get("page"),
			"sparkline":   q.Get("sparkline"),
			"ids":         q.Get("ids"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(marketsPage))
	}))
	defer srv.Close()

	client := NewCoinClient(srv.URL, "usd", 5*time.Second)
	coins, err := client.FetchMarkets(context.Background(), []string{"Bitcoin", "Ethereum"}, 2)
	if err != nil {
		t.Fatalf("FetchMarkets: %v", err)
	}

	want := map[string]string{
		"vs_currency": "usd",
		"order":       "market_cap_desc",
		"per_page":    strconv.Itoa(coinsPerPage),
		"page":        "2",
		"sparkline":   "false",
		"ids":         "bitcoin,ethereum",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query param %s: expected %q, got %q", k, v, gotQuery[k])
		}
	}

	if len(coins) != 2 {
		t.Fatalf("expected 2 coins, got %d", len(coins))
	}
	first := coins[0]
	if first.ID != "bitcoin" || first.Symbol != "btc" {
		t.Errorf("unexpected first coin %+v", first)
	}
	if first.CurrentPrice == nil || *first.CurrentPrice != 67000.12 {
		t.Errorf("expected current price 67000.12, got %v", first.CurrentPrice)
	}
	if coins[1].LogoURL != nil {
		t.Errorf("expected absent image to stay nil, got %v", *coins[1].LogoURL)
	}
}

func TestFetchMarkets_OmitsIdsWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("ids") {
			t.Errorf("expected no ids param, got %q", r.URL.Query().Get("ids"))
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewCoinClient(srv.URL, "usd", 5*time.Second)
	if _, err := client.FetchMarkets(context.Background(), nil, 1); err != nil {
		t.Fatalf("FetchMarkets: %v", err)
	}
}

func TestFetchMarkets_NonOKStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewCoinClient(srv.URL, "usd", 5*time.Second)
	if _, err := client.FetchMarkets(context.Background(), nil, 1); err == nil {
		t.Fatal("expected an error for status 429")
	}
}

func TestFetchMarkets_MalformedBodyIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	client := NewCoinClient(srv.URL, "usd", 5*time.Second)
	if _, err := client.FetchMarkets(context.Background(), nil, 1); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestFetchMarketPages_ConcatenatesInPageOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin"}]`))
		case "2":
			w.Write([]byte(`[{"id":"ethereum","symbol":"eth","name":"Ethereum"}]`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	client := NewCoinClient(srv.URL, "usd", 5*time.Second)
	coins := client.FetchMarketPages(context.Background(), nil, 2)
	if len(coins) != 2 || coins[0].ID != "bitcoin" || coins[1].ID != "ethereum" {
		t.Fatalf("expected [bitcoin ethereum], got %+v", coins)
	}
}

func TestFetchMarketPages_FailedLegDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"id":"ethereum","symbol":"eth","name":"Ethereum"}]`))
	}))
	defer srv.Close()

	client := NewCoinClient(srv.URL, "usd", 5*time.Second)
	coins := client.FetchMarketPages(context.Background(), nil, 2)
	if len(coins) != 1 || coins[0].ID != "ethereum" {
		t.Fatalf("expected the surviving page only, got %+v", coins)
	}
}
