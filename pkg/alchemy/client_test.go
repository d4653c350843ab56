package alchemy_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rhuss/alchemy/pkg/alchemy"
	"github.com/rhuss/alchemy/pkg/alchemy/alchemytest"
	"github.com/rhuss/alchemy/pkg/observability"
)

const testKey = "0123456789abcdef0123456789abcdef01234567"

// captured holds the last request seen by a capture server.
type captured struct {
	method      string
	path        string
	rawQuery    string
	contentType string
	length      int64
	body        []byte
}

// newCaptureServer answers every request with reply and records it.
func newCaptureServer(t *testing.T, status int, reply string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading body: %v", err)
		}
		*c = captured{
			method:      r.Method,
			path:        r.URL.Path,
			rawQuery:    r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
			length:      r.ContentLength,
			body:        body,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func newTestClient(t *testing.T, baseURL string) *alchemy.Client {
	t.Helper()
	cfg := alchemy.DefaultConfig(testKey)
	cfg.BaseURL = baseURL
	c, err := alchemy.NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNew_KeyLength(t *testing.T) {
	tests := []struct {
		name string
		key  string
		ok   bool
	}{
		{"exact", testKey, true},
		{"empty", "", false},
		{"short", testKey[:39], false},
		{"long", testKey + "8", false},
		{"multibyte", strings.Repeat("é", 40), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := alchemy.New(tt.key)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				c.Close()
				return
			}
			if !errors.Is(err, alchemy.ErrInvalidKey) {
				t.Fatalf("expected invalid key error, got %v", err)
			}
			if c != nil {
				t.Error("expected nil client on error")
			}
		})
	}
}

func TestNew_InvalidKeyMessage(t *testing.T) {
	_, err := alchemy.New("short")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid key") {
		t.Errorf("error %q does not mention invalid key", err)
	}
}

func TestSentiment_TextScenario(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{"status":"OK"}`)
	c := newTestClient(t, srv.URL+"/calls")

	res := c.Sentiment(context.Background(), alchemy.FlavorText, "I love this product", nil)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	if got.method != http.MethodPost {
		t.Errorf("method = %s, want POST", got.method)
	}
	if got.path != "/calls/text/TextGetTextSentiment" {
		t.Errorf("path = %s", got.path)
	}
	if got.contentType != "application/x-www-form-urlencoded" {
		t.Errorf("content type = %q", got.contentType)
	}
	if got.length != int64(len(got.body)) {
		t.Errorf("content length %d does not match body length %d", got.length, len(got.body))
	}

	form, err := url.ParseQuery(string(got.body))
	if err != nil {
		t.Fatalf("body is not form encoded: %v", err)
	}
	want := url.Values{
		"apikey":     {testKey},
		"outputMode": {"json"},
		"text":       {"I love this product"},
	}
	if !reflect.DeepEqual(form, want) {
		t.Errorf("form = %v, want %v", form, want)
	}
}

func TestEntities_URLScenario(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{"status":"OK","entities":[]}`)
	c := newTestClient(t, srv.URL+"/calls/")

	res := c.Entities(context.Background(), alchemy.FlavorURL, "http://example.com",
		&alchemy.Options{Disambiguate: alchemy.Bool(false)})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	if got.path != "/calls/url/URLGetRankedNamedEntities" {
		t.Errorf("path = %s", got.path)
	}
	form, _ := url.ParseQuery(string(got.body))
	want := url.Values{
		"apikey":       {testKey},
		"outputMode":   {"json"},
		"url":          {"http://example.com"},
		"disambiguate": {"0"},
	}
	if !reflect.DeepEqual(form, want) {
		t.Errorf("form = %v, want %v", form, want)
	}
}

func TestCall_InjectedParamsWin(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	opts := &alchemy.Options{Extra: map[string]string{
		"apikey":     "caller",
		"outputMode": "xml",
		"text":       "overridden",
		"target":     "overridden",
		"custom":     "kept",
	}}
	c.SentimentTargeted(context.Background(), alchemy.FlavorText, "Pizza is great", "pizza", opts)

	form, _ := url.ParseQuery(string(got.body))
	checks := map[string]string{
		"apikey":     testKey,
		"outputMode": "json",
		"text":       "Pizza is great",
		"target":     "pizza",
		"custom":     "kept",
	}
	for k, want := range checks {
		if form.Get(k) != want {
			t.Errorf("%s = %q, want %q", k, form.Get(k), want)
		}
	}
}

func TestCall_EndpointPaths(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL+"/calls")

	tests := []struct {
		capability alchemy.Capability
		flavor     alchemy.Flavor
		path       string
	}{
		{alchemy.CapabilityKeywords, alchemy.FlavorHTML, "/calls/html/HTMLGetRankedKeywords"},
		{alchemy.CapabilityTaxonomy, alchemy.FlavorText, "/calls/text/TextGetRankedTaxonomy"},
		{alchemy.CapabilityCombined, alchemy.FlavorURL, "/calls/url/URLGetCombinedData"},
		{alchemy.CapabilityTextRaw, alchemy.FlavorURL, "/calls/url/URLGetRawText"},
		{alchemy.CapabilityPubDate, alchemy.FlavorHTML, "/calls/image/HTMLGetPubDate"},
		{alchemy.CapabilityImageKeywords, alchemy.FlavorURL, "/calls/url/URLGetRankedImageKeywords"},
	}

	for _, tt := range tests {
		t.Run(string(tt.capability)+"/"+string(tt.flavor), func(t *testing.T) {
			res := c.Call(context.Background(), alchemy.Request{
				Capability: tt.capability,
				Flavor:     tt.flavor,
				Data:       "payload",
			})
			if res.Err != nil {
				t.Fatalf("unexpected error: %v", res.Err)
			}
			if got.path != tt.path {
				t.Errorf("path = %s, want %s", got.path, tt.path)
			}
			form, _ := url.ParseQuery(string(got.body))
			if form.Get(string(tt.flavor)) != "payload" {
				t.Errorf("payload not sent under %q: %v", tt.flavor, form)
			}
		})
	}
}

func TestCall_UnsupportedFlavorSendsNothing(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	flavors := []alchemy.Flavor{alchemy.FlavorText, alchemy.FlavorURL, alchemy.FlavorHTML, alchemy.FlavorImage, "pdf"}
	for _, capability := range alchemy.Capabilities() {
		for _, f := range flavors {
			if capability.Supports(f) {
				continue
			}
			res := c.Call(context.Background(), alchemy.Request{Capability: capability, Flavor: f, Data: "x", Target: "x"})
			if !errors.Is(res.Err, alchemy.ErrUnsupportedFlavor) {
				t.Errorf("%s/%s: expected unsupported flavor, got %+v", capability, f, res)
				continue
			}
			want := capability.Feature() + " is not available for " + string(f)
			if res.Err.Message != want {
				t.Errorf("%s/%s: message = %q, want %q", capability, f, res.Err.Message, want)
			}
		}
	}

	res := c.Call(context.Background(), alchemy.Request{Capability: "summarize", Flavor: alchemy.FlavorText})
	if !errors.Is(res.Err, alchemy.ErrUnsupportedFlavor) {
		t.Errorf("unknown capability: expected unsupported flavor, got %+v", res)
	}

	if hits != 0 {
		t.Errorf("server received %d requests, want 0", hits)
	}
}

func TestSentimentTargeted_MissingTarget(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	res := c.SentimentTargeted(context.Background(), alchemy.FlavorText, "some text", "", nil)
	if !errors.Is(res.Err, alchemy.ErrMissingTarget) {
		t.Fatalf("expected missing target, got %+v", res)
	}
	if status, info := res.ServiceStatus(); status != "ERROR" || info != "target must not be null" {
		t.Errorf("status = %q/%q", status, info)
	}

	// Flavor is checked before the target.
	res = c.SentimentTargeted(context.Background(), alchemy.FlavorImage, "x", "", nil)
	if !errors.Is(res.Err, alchemy.ErrUnsupportedFlavor) {
		t.Errorf("expected unsupported flavor first, got %+v", res)
	}

	if hits != 0 {
		t.Errorf("server received %d requests, want 0", hits)
	}
}

func TestCall_RoundTrip(t *testing.T) {
	doc := `{"status":"OK","language":"english","keywords":[{"text":"pizza","relevance":"0.9"}],"nested":{"n":1.5,"flag":true,"none":null}}`
	srv, _ := newCaptureServer(t, http.StatusOK, doc)
	c := newTestClient(t, srv.URL)

	res := c.Keywords(context.Background(), alchemy.FlavorText, "pizza", nil)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	var want any
	if err := json.Unmarshal([]byte(doc), &want); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.Data, want) {
		t.Errorf("data = %#v, want %#v", res.Data, want)
	}
}

func TestCall_MalformedJSON(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusOK, `{"status":"OK","keyw`)
	c := newTestClient(t, srv.URL)

	res := c.Keywords(context.Background(), alchemy.FlavorText, "pizza", nil)
	if !errors.Is(res.Err, alchemy.ErrParse) {
		t.Fatalf("expected parse error, got %+v", res)
	}

	out, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]string
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["status"] != "ERROR" || doc["statusInfo"] == "" {
		t.Errorf("error document = %s", out)
	}
}

func TestCall_ServiceErrorDocumentPassesThrough(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusOK, `{"status":"ERROR","statusInfo":"daily-transaction-limit-exceeded"}`)
	c := newTestClient(t, srv.URL)

	res := c.Language(context.Background(), alchemy.FlavorText, "hello", nil)
	if res.Err != nil {
		t.Fatalf("service errors are data, got %v", res.Err)
	}
	if status, info := res.ServiceStatus(); status != "ERROR" || info != "daily-transaction-limit-exceeded" {
		t.Errorf("status = %q/%q", status, info)
	}
}

func TestCall_NonSuccessStatus(t *testing.T) {
	t.Run("json body delivered", func(t *testing.T) {
		srv, _ := newCaptureServer(t, http.StatusBadRequest, `{"status":"ERROR","statusInfo":"invalid-request"}`)
		c := newTestClient(t, srv.URL)

		res := c.Title(context.Background(), alchemy.FlavorURL, "http://example.com", nil)
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if _, info := res.ServiceStatus(); info != "invalid-request" {
			t.Errorf("statusInfo = %q", info)
		}
	})

	t.Run("non json body is transport error", func(t *testing.T) {
		srv, _ := newCaptureServer(t, http.StatusBadGateway, `<html>bad gateway</html>`)
		c := newTestClient(t, srv.URL)

		res := c.Title(context.Background(), alchemy.FlavorURL, "http://example.com", nil)
		if !errors.Is(res.Err, alchemy.ErrTransport) {
			t.Fatalf("expected transport error, got %+v", res)
		}
		if !strings.Contains(res.Err.Message, "502") {
			t.Errorf("message %q does not carry the status code", res.Err.Message)
		}
	})
}

func TestCall_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := newTestClient(t, base)
	res := c.Concepts(context.Background(), alchemy.FlavorText, "text", nil)
	if !errors.Is(res.Err, alchemy.ErrTransport) {
		t.Fatalf("expected transport error, got %+v", res)
	}
	if res.Err.Unwrap() == nil {
		t.Error("expected wrapped cause")
	}
}

func TestCall_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := c.Relations(ctx, alchemy.FlavorText, "text", nil)
	if !errors.Is(res.Err, alchemy.ErrTransport) {
		t.Fatalf("expected transport error, got %+v", res)
	}
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded cause, got %v", res.Err.Unwrap())
	}
}

func TestImageKeywords_Upload(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{"status":"OK","imageKeywords":[]}`)
	c := newTestClient(t, srv.URL+"/calls")

	content := []byte("\x89PNG\r\n\x1a\nnot really an image")
	path := filepath.Join(t.TempDir(), "cat.png")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	res := c.ImageKeywords(context.Background(), alchemy.FlavorImage, path,
		&alchemy.Options{ExtractMode: "always-infer"})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	if got.path != "/calls/image/ImageGetRankedImageKeywords" {
		t.Errorf("path = %s", got.path)
	}
	if got.length != int64(len(content)) {
		t.Errorf("content length = %d, want %d", got.length, len(content))
	}
	if string(got.body) != string(content) {
		t.Errorf("body = %q, want file content", got.body)
	}

	query, _ := url.ParseQuery(got.rawQuery)
	want := url.Values{
		"apikey":        {testKey},
		"outputMode":    {"json"},
		"imagePostMode": {"raw"},
		"extractMode":   {"always-infer"},
	}
	if !reflect.DeepEqual(query, want) {
		t.Errorf("query = %v, want %v", query, want)
	}
}

func TestImageKeywords_MissingFile(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	res := c.ImageKeywords(context.Background(), alchemy.FlavorImage, filepath.Join(t.TempDir(), "missing.png"), nil)
	if !errors.Is(res.Err, alchemy.ErrTransport) {
		t.Fatalf("expected transport error, got %+v", res)
	}
	if !errors.Is(res.Err, os.ErrNotExist) {
		t.Errorf("expected not-exist cause, got %v", res.Err.Unwrap())
	}
}

func TestImageKeywords_EmptyPath(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{"status":"OK"}`)
	c := newTestClient(t, srv.URL)

	res := c.ImageKeywords(context.Background(), alchemy.FlavorImage, "", nil)
	if !errors.Is(res.Err, alchemy.ErrTransport) {
		t.Fatalf("expected transport error, got %+v", res)
	}
	if !errors.Is(res.Err, os.ErrNotExist) {
		t.Errorf("expected not-exist cause, got %v", res.Err.Unwrap())
	}
	if got.method != "" {
		t.Errorf("no request expected, got %s %s (%s)", got.method, got.path, got.contentType)
	}
}

func TestCall_UnknownFlavorMetricLabel(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusOK, `{"status":"OK"}`)
	c := newTestClient(t, srv.URL)

	counter := observability.CallsTotal.WithLabelValues("sentiment", "unknown", string(alchemy.ErrorKindUnsupportedFlavor))
	before := testutil.ToFloat64(counter)

	for _, f := range []alchemy.Flavor{"pdf", "docx", "Text"} {
		res := c.Call(context.Background(), alchemy.Request{Capability: alchemy.CapabilitySentiment, Flavor: f, Data: "x"})
		if !errors.Is(res.Err, alchemy.ErrUnsupportedFlavor) {
			t.Fatalf("%s: expected unsupported flavor, got %+v", f, res)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("unknown flavor label count = %v, want 3", got)
	}
	for _, f := range []string{"pdf", "docx", "Text"} {
		if observability.CallsTotal.DeleteLabelValues("sentiment", f, string(alchemy.ErrorKindUnsupportedFlavor)) {
			t.Errorf("flavor %q used as label value", f)
		}
	}
}

func TestGo_DeliversExactlyOnce(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusOK, `{"status":"OK"}`)
	c := newTestClient(t, srv.URL)

	requests := []alchemy.Request{
		{Capability: alchemy.CapabilityLanguage, Flavor: alchemy.FlavorText, Data: "hello"},
		{Capability: alchemy.CapabilityAuthor, Flavor: alchemy.FlavorText, Data: "hello"},
		{Capability: alchemy.CapabilitySentimentTargeted, Flavor: alchemy.FlavorText, Data: "hello"},
	}
	for _, req := range requests {
		ch := c.Go(context.Background(), req)

		var n int
		for range ch {
			n++
		}
		if n != 1 {
			t.Errorf("%s/%s: received %d results, want 1", req.Capability, req.Flavor, n)
		}
	}
}

func TestClient_AgainstFakeService(t *testing.T) {
	srv, svc := alchemytest.NewServer(testKey)
	defer srv.Close()
	c := newTestClient(t, srv.URL+alchemytest.PathPrefix)
	ctx := context.Background()

	res := c.Sentiment(ctx, alchemy.FlavorText, "I love this product", nil)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	doc := res.Data.(map[string]any)
	if s := doc["docSentiment"].(map[string]any); s["type"] != "positive" {
		t.Errorf("docSentiment = %v", s)
	}

	res = c.Entities(ctx, alchemy.FlavorHTML, "<p>Alice met Bob in Paris.</p>", &alchemy.Options{MaxRetrieve: 2})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if ents := res.Data.(map[string]any)["entities"].([]any); len(ents) != 2 {
		t.Errorf("entities = %v, want 2 items", ents)
	}

	calls := svc.Calls()
	if len(calls) != 2 {
		t.Fatalf("recorded %d calls, want 2", len(calls))
	}
	if calls[1].Params.Get("maxRetrieve") != "2" {
		t.Errorf("maxRetrieve not forwarded: %v", calls[1].Params)
	}
}

func TestClient_FakeServiceRejectsWrongKey(t *testing.T) {
	srv, _ := alchemytest.NewServer(strings.Repeat("k", 40))
	defer srv.Close()
	c := newTestClient(t, srv.URL+alchemytest.PathPrefix)

	res := c.Language(context.Background(), alchemy.FlavorText, "hello", nil)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if status, info := res.ServiceStatus(); status != "ERROR" || info != alchemytest.InfoInvalidKey {
		t.Errorf("status = %q/%q", status, info)
	}
}
