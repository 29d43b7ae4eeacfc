package marketwatch

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/marketwatch/date"
)

// EODHDAPIKeyEnv is the environment variable holding the eodhd.com API key.
const EODHDAPIKeyEnv = "EODHD_API_KEY"

// EODHD fetches daily adjusted closes from eodhd.com. It satisfies
// PriceProvider. Responses are cached on disk with a key that expires daily,
// so repeated runs within a day never hit the network twice.
type EODHD struct {
	apiKey string
	client *http.Client
}

// NewEODHD creates a provider with the given API key. An empty key falls back
// to the EODHD_API_KEY environment variable.
func NewEODHD(apiKey string) *EODHD {
	if apiKey == "" {
		apiKey = os.Getenv(EODHDAPIKeyEnv)
	}
	return &EODHD{apiKey: apiKey, client: daily()}
}

// eodhdTicker maps a plain ticker to the eodhd code, defaulting to the US
// exchange when no exchange suffix is given.
func eodhdTicker(security string) string {
	if strings.Contains(security, ".") {
		return security
	}
	return security + ".US"
}

// DailySeries implements PriceProvider with the eod endpoint, split-adjusted.
func (p *EODHD) DailySeries(ctx context.Context, security string, from, to date.Date) (*date.History[float64], error) {
	// bounds are included in the response, format is YYYY-MM-DD.
	addr := fmt.Sprintf("https://eodhd.com/api/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		eodhdTicker(security), p.apiKey, from, to)
	type Info struct {
		Date  date.Date `json:"date"`
		Close float64   `json:"adjusted_close"`
	}
	content := make([]Info, 0)
	if err := jwget(ctx, p.client, addr, &content); err != nil {
		return nil, &DataUnavailableError{Security: security, Err: err}
	}
	if len(content) == 0 {
		return nil, &DataUnavailableError{Security: security, Err: fmt.Errorf("no points between %s and %s", from, to)}
	}
	closes := &date.History[float64]{}
	for _, info := range content {
		closes.Append(info.Date, info.Close)
	}
	return closes, nil
}

// Quote returns the latest intraday price from the real-time endpoint. The
// payload shape varies between delayed and live plans, so the close is
// extracted by path rather than a fixed struct.
func (p *EODHD) Quote(ctx context.Context, security string) (float64, error) {
	addr := fmt.Sprintf("https://eodhd.com/api/real-time/%s?fmt=json&api_token=%s",
		eodhdTicker(security), p.apiKey)
	var jobj any
	// live quotes expire faster than the daily cache, bypass it.
	if err := jwget(ctx, new(http.Client), addr, &jobj); err != nil {
		return 0, fmt.Errorf("error retrieving quote for %q: %w", security, err)
	}
	path := "$.close"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing quote for %q: %q %w", security, path, err)
	}
	// jsonpath is never clear about whether it returns a list of 1 answer
	// or a single answer: keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("quote for %q is not a number: %v", security, jval)
	}
	return val, nil
}

// diskCache implements a simple disk cache for HTTP responses.
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// The key embeds today's date, so the cache expires every day.
	key := fmt.Sprintf("%s %s %s", date.Today().String(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk.
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	file := filepath.Join(os.TempDir(), key)
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache.
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	file := filepath.Join(os.TempDir(), key)

	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	_, err = f.Write(content)
	f.Close()
	return err
}

// daily returns a client whose responses are cached until the end of the day.
func daily() *http.Client {
	client := new(http.Client)
	client.Transport = &diskCache{http.DefaultTransport}
	return client
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}
