package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/poollens/poollens-go/ledger"
	"github.com/poollens/poollens-go/poollens"
	"github.com/poollens/poollens-go/pricefeed"
)

type poolResp struct {
	Detection poollens.DetectionResult   `json:"detection"`
	Pool      *poollens.ParsedPool       `json:"pool,omitempty"`
	Reserves  *poollens.AdjustedReserves `json:"reserves,omitempty"`
	Health    *poollens.HealthReport     `json:"health,omitempty"`
}

type analyzeReq struct {
	Pair  poollens.MintPair        `json:"pair"`
	Swaps []poollens.RawSwapRecord `json:"swaps"`
}

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSONMaybePretty(w http.ResponseWriter, status int, v interface{}, pretty bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(logrus.DebugLevel)
	}

	rpcURL := os.Getenv("SOLANA_RPC_URL")
	if rpcURL == "" {
		log.Fatal("SOLANA_RPC_URL is required")
	}
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	const rpcTimeout = 10 * time.Second

	chain := ledger.New(rpcURL, log)
	prices := pricefeed.New(log)
	detector := poollens.NewDetector(log)
	resolver := poollens.NewReserveResolver(chain, prices, log)
	classifier := poollens.NewClassifier(log)
	analyzer := poollens.NewAnalyzer(log, nil)

	// Health endpoint
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Pool endpoint: GET /pool?address=...&pretty=1
	// Fetches the account, classifies it, decodes the pool state, resolves
	// reserves and evaluates health in one shot.
	http.HandleFunc("/pool", func(w http.ResponseWriter, r *http.Request) {
		pretty := r.URL.Query().Get("pretty") == "1" || r.URL.Query().Get("pretty") == "true"

		address := r.URL.Query().Get("address")
		if address == "" {
			writeJSONMaybePretty(w, http.StatusBadRequest, apiError{Error: "bad_request", Details: "address is required"}, pretty)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), rpcTimeout)
		defer cancel()

		data, err := chain.GetAccountBytes(ctx, address)
		if err != nil {
			switch {
			case errors.Is(err, poollens.ErrAccountNotFound):
				writeJSONMaybePretty(w, http.StatusNotFound, apiError{Error: "not_found", Details: "account does not exist"}, pretty)
			case errors.Is(err, context.DeadlineExceeded):
				writeJSONMaybePretty(w, http.StatusGatewayTimeout, apiError{Error: "rpc_timeout", Details: err.Error()}, pretty)
			default:
				writeJSONMaybePretty(w, http.StatusBadGateway, apiError{Error: "rpc_error", Details: err.Error()}, pretty)
			}
			return
		}

		det := detector.Detect(data, address)
		resp := poolResp{Detection: det}
		if det.Variant == poollens.VariantUnknown {
			writeJSONMaybePretty(w, http.StatusUnprocessableEntity, resp, pretty)
			return
		}

		pool, err := poollens.Decode(det, data)
		if err != nil {
			writeJSONMaybePretty(w, http.StatusUnprocessableEntity, apiError{Error: "decode_error", Details: err.Error()}, pretty)
			return
		}
		resp.Pool = pool

		reserves, err := resolver.Resolve(ctx, pool)
		if err != nil {
			// Health can still be evaluated from embedded state; reserve
			// failure downgrades the response instead of erroring it.
			log.WithField("pool", address).Warnf("reserve resolution failed: %v", err)
		} else {
			resp.Reserves = reserves
		}
		health := poollens.EvaluateHealth(pool, reserves)
		resp.Health = &health

		writeJSONMaybePretty(w, http.StatusOK, resp, pretty)
	})

	// Analyze endpoint: POST /analyze with a mint pair and raw swap records.
	// Classifies the batch and aggregates trading-pattern analytics.
	http.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		pretty := r.URL.Query().Get("pretty") == "1" || r.URL.Query().Get("pretty") == "true"

		if r.Method != http.MethodPost {
			writeJSONMaybePretty(w, http.StatusMethodNotAllowed, apiError{Error: "method_not_allowed"}, pretty)
			return
		}

		var req analyzeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONMaybePretty(w, http.StatusBadRequest, apiError{Error: "bad_request", Details: "invalid JSON body"}, pretty)
			return
		}
		if req.Pair.TokenAMint == "" || req.Pair.TokenBMint == "" {
			writeJSONMaybePretty(w, http.StatusBadRequest, apiError{Error: "bad_request", Details: "pair mints are required"}, pretty)
			return
		}

		swaps := classifier.ClassifyBatch(req.Swaps, req.Pair)
		summary := analyzer.Analyze(swaps)

		writeJSONMaybePretty(w, http.StatusOK, struct {
			Swaps   []poollens.ParsedSwap       `json:"swaps"`
			Summary poollens.TransactionSummary `json:"summary"`
		}{Swaps: swaps, Summary: summary}, pretty)
	})

	srv := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Infof("listening on http://%s (per-request timeout=%s)", addr, rpcTimeout)
	log.Fatal(srv.ListenAndServe())
}
