package bitvavo

import (
	"bufio"
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// contains http utils to deal with the remote exchange

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// jsonNumber renders an integer as a json.Number for the wire records.
func jsonNumber(v int64) json.Number {
	return json.Number(strconv.FormatInt(v, 10))
}

// diskCache implements a simple disk cache for HTTP responses
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// get from disk
	// diskcache implements a unique key per day, so the local tmp expires every day.
	key := fmt.Sprintf("%s %s %s", time.Now().Format("2006-01-02"), req.Method, req.URL.String())
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
	// otherwise attempt to store it in cache

	err = c.put(key, resp)
	if err != nil {
		log.Printf("cache write err (ignored): %v\n", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	file := filepath.Join(os.TempDir(), key)
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
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

// signer adds the Bitvavo authentication headers to every request. The
// signature is an HMAC-SHA256 over timestamp + method + path (including the
// /v2 prefix and the query string) + body, keyed with the API secret.
type signer struct {
	base   http.RoundTripper
	key    string
	secret string
	// now is the clock, a field so tests can pin it.
	now func() time.Time
}

func (s *signer) RoundTrip(req *http.Request) (*http.Response, error) {
	if s.key == "" {
		// Public endpoints (ticker prices) work without credentials.
		return s.base.RoundTrip(req)
	}

	var body []byte
	if req.Body != nil {
		var err error
		if body, err = io.ReadAll(req.Body); err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	timestamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	req.Header.Set("Bitvavo-Access-Key", s.key)
	req.Header.Set("Bitvavo-Access-Timestamp", timestamp)
	req.Header.Set("Bitvavo-Access-Window", "10000")
	req.Header.Set("Bitvavo-Access-Signature", sign(s.secret, timestamp, req.Method, req.URL.RequestURI(), body))
	return s.base.RoundTrip(req)
}

// sign computes the hex HMAC-SHA256 signature Bitvavo expects.
func sign(secret, timestamp, method, requestURI string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(method))
	mac.Write([]byte(requestURI))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// signed returns a client that signs requests and caches responses on disk
// with a daily expiry.
func signed(key, secret string) *http.Client {
	client := new(http.Client)
	client.Transport = &diskCache{&signer{
		base:   http.DefaultTransport,
		key:    key,
		secret: secret,
		now:    time.Now,
	}}
	return client
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func jwget(ctx context.Context, client httpClient, addr string, data interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		resp.Body.Close()
		return fmt.Errorf("cannot http GET %v/%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}
