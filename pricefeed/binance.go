// Package pricefeed resolves USD prices for pool-side symbols.
//
// SOL is priced from the Binance 1-minute kline close that contains the
// query time; stables pin to 1.0. Anything else is unpriceable and returns
// poollens.ErrPriceUnavailable.
//
// Binance REST:
//
//	GET /api/v3/klines?symbol=SOLUSDT&interval=1m&startTime=...&endTime=...&limit=1
//
// Times are milliseconds since epoch (UTC). Env override: BINANCE_BASE
// (default https://api.binance.com).
package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/poollens/poollens-go/poollens"
)

const (
	binanceDefaultBase = "https://api.binance.com"
	binanceSymbol      = "SOLUSDT"
	binanceInterval    = "1m"
)

// Source implements poollens.PriceFeed over Binance spot klines, with a
// per-minute cache so batch valuations hit the API once per window.
type Source struct {
	http *httpClient
	log  *logrus.Logger

	mu    sync.Mutex
	cache map[int64]float64 // minute start (unix sec) -> SOL close
}

// New builds a price source.
func New(log *logrus.Logger) *Source {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Source{http: newHTTP(), log: log, cache: make(map[int64]float64)}
}

// GetUsdPrice resolves the current USD price for a pool-side symbol. Stables
// are pinned to 1.0 without a network round trip.
func (s *Source) GetUsdPrice(ctx context.Context, symbol string) (float64, error) {
	switch symbol {
	case "USDC", "USDT":
		return 1.0, nil
	case "SOL", "WSOL":
		return s.solPriceAt(ctx, time.Now())
	}
	return 0, fmt.Errorf("%w: %s", poollens.ErrPriceUnavailable, symbol)
}

// solPriceAt returns the SOL/USDT close for the minute containing t.
func (s *Source) solPriceAt(ctx context.Context, t time.Time) (float64, error) {
	minute := t.UTC().Truncate(time.Minute).Unix()

	s.mu.Lock()
	if px, ok := s.cache[minute]; ok {
		s.mu.Unlock()
		return px, nil
	}
	s.mu.Unlock()

	px, err := s.fetchMinuteClose(ctx, minute*1000)
	if err != nil {
		s.log.WithField("minute", minute).Debugf("kline fetch failed: %v", err)
		return 0, fmt.Errorf("%w: SOL: %v", poollens.ErrPriceUnavailable, err)
	}

	s.mu.Lock()
	s.cache[minute] = px
	s.mu.Unlock()
	return px, nil
}

func (s *Source) fetchMinuteClose(ctx context.Context, startMs int64) (float64, error) {
	base := os.Getenv("BINANCE_BASE")
	if base == "" {
		base = binanceDefaultBase
	}

	end := startMs + 60_000 - 1

	u, err := url.Parse(base)
	if err != nil {
		return 0, err
	}
	u.Path = "/api/v3/klines"
	q := u.Query()
	q.Set("symbol", binanceSymbol)
	q.Set("interval", binanceInterval)
	q.Set("startTime", strconv.FormatInt(startMs, 10))
	q.Set("endTime", strconv.FormatInt(end, 10))
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	var data [][]any // Binance returns array-of-arrays
	if err := s.http.getJSON(ctx, u.String(), &data); err != nil {
		return 0, err
	}
	if len(data) == 0 || len(data[0]) < 5 {
		return 0, fmt.Errorf("no kline for window [%d,%d]", startMs, end)
	}

	// index 4 is "close"
	switch v := data[0][4].(type) {
	case string:
		return strconv.ParseFloat(v, 64)
	case float64:
		return v, nil
	default:
		return 0, errors.New("unexpected close type from Binance")
	}
}

// small HTTP helper with sane timeouts and tiny retry.
type httpClient struct{ c *http.Client }

func newHTTP() *httpClient {
	tr := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   8 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		IdleConnTimeout:     60 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
	}
	return &httpClient{
		c: &http.Client{
			Timeout:   10 * time.Second,
			Transport: tr,
		},
	}
}

func (h *httpClient) getJSON(ctx context.Context, rawURL string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	var lastErr error
	for i := 0; i < 3; i++ {
		resp, err := h.c.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			continue
		}
		func() {
			defer resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				lastErr = json.NewDecoder(resp.Body).Decode(dst)
				return
			}
			var errObj map[string]any
			_ = json.NewDecoder(resp.Body).Decode(&errObj)
			lastErr = fmt.Errorf("http %d: %v", resp.StatusCode, errObj)
		}()
		if lastErr == nil {
			return nil
		}
		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			time.Sleep(time.Duration(500*(i+1)) * time.Millisecond)
		}
	}
	return lastErr
}
