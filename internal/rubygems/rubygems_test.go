package rubygems

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/logstash-tools/plugindex/client"
	"github.com/logstash-tools/plugindex/internal/core"
)

func versionsHandler(t *testing.T, fetches *int32, resp []versionResponse) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/versions/logstash-filter-grok.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(404)
			return
		}
		atomic.AddInt32(fetches, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}

func TestVersions_SortedDescending(t *testing.T) {
	var fetches int32
	server := httptest.NewServer(versionsHandler(t, &fetches, []versionResponse{
		{Number: "9.1.0", CreatedAt: "2021-01-10T00:00:00.000Z"},
		{Number: "10.0.0", CreatedAt: "2022-06-01T00:00:00.000Z"},
		{Number: "9.10.2", CreatedAt: "2021-08-15T00:00:00.000Z"},
	}))
	defer server.Close()

	c := New("logstash-filter-grok", server.URL, nil)
	versions, err := c.Versions(context.Background())
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}

	want := []string{"10.0.0", "9.10.2", "9.1.0"}
	if len(versions) != len(want) {
		t.Fatalf("got %d versions, want %d", len(versions), len(want))
	}
	for i, w := range want {
		if versions[i].Number != w {
			t.Errorf("versions[%d] = %q, want %q", i, versions[i].Number, w)
		}
	}
}

func TestVersions_FourSegmentNumbersSorted(t *testing.T) {
	var fetches int32
	server := httptest.NewServer(versionsHandler(t, &fetches, []versionResponse{
		{Number: "4.1.2", CreatedAt: "2021-01-01T00:00:00.000Z"},
		{Number: "9.0.0.1", CreatedAt: "2021-03-01T00:00:00.000Z"},
		{Number: "10.0.0.2", CreatedAt: "2021-04-01T00:00:00.000Z"},
		{Number: "4.1.2.1", CreatedAt: "2021-02-01T00:00:00.000Z"},
	}))
	defer server.Close()

	c := New("logstash-filter-grok", server.URL, nil)
	versions, err := c.Versions(context.Background())
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}

	want := []string{"10.0.0.2", "9.0.0.1", "4.1.2.1", "4.1.2"}
	if len(versions) != len(want) {
		t.Fatalf("got %d versions, want %d", len(versions), len(want))
	}
	for i, w := range want {
		if versions[i].Number != w {
			t.Errorf("versions[%d] = %q, want %q", i, versions[i].Number, w)
		}
	}
}

func TestVersionLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"9.1.0", "10.0.0", true},
		{"10.0.0", "9.1.0", false},
		{"4.1.2", "4.1.2.1", true},
		{"4.1.2.1", "4.1.2", false},
		{"9.0.0.1", "10.0.0.2", true},
		{"10.0.0.2", "9.0.0.1", false},
		{"1.0.0-beta1", "1.0.0", true},
		{"1.0.0", "1.0.0", false},
	}
	for _, tt := range tests {
		if got := versionLess(tt.a, tt.b); got != tt.want {
			t.Errorf("versionLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestVersions_SingleFetchUnderConcurrency(t *testing.T) {
	var fetches int32
	server := httptest.NewServer(versionsHandler(t, &fetches, []versionResponse{
		{Number: "1.0.0", CreatedAt: "2021-01-10T00:00:00.000Z"},
	}))
	defer server.Close()

	c := New("logstash-filter-grok", server.URL, nil)

	const n = 24
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Versions(context.Background()); err != nil {
				t.Errorf("Versions failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Errorf("registry saw %d fetches under %d concurrent callers, want 1", got, n)
	}
}

func TestVersions_UnknownArtifactIsEmpty(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New("logstash-filter-grok", server.URL, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		versions, err := c.Versions(ctx)
		if err != nil {
			t.Fatalf("Versions failed: %v", err)
		}
		if len(versions) != 0 {
			t.Fatalf("got %d versions for an unknown artifact, want 0", len(versions))
		}
	}

	// The empty answer is cached; the registry is asked once.
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("registry saw %d requests, want 1", got)
	}

	if _, err := c.Latest(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Latest on empty set: expected ErrNotFound, got %v", err)
	}
}

func TestVersions_RateLimitedThenSuccess(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]versionResponse{
			{Number: "2.0.0", CreatedAt: "2022-01-01T00:00:00.000Z"},
		})
	}))
	defer server.Close()

	c := New("logstash-filter-grok", server.URL, client.NewClient(client.WithRetryDelay(time.Millisecond)))
	versions, err := c.Versions(context.Background())
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("got %d versions, want 1", len(versions))
	}
	if got := atomic.LoadInt32(&requests); got < 2 {
		t.Errorf("registry saw %d requests, want at least one retry", got)
	}
}

func TestVersions_ServerErrorIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New("logstash-filter-grok", server.URL, nil)
	_, err := c.Versions(context.Background())

	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", httpErr.StatusCode)
	}
}

func TestForVersion(t *testing.T) {
	var fetches int32
	server := httptest.NewServer(versionsHandler(t, &fetches, []versionResponse{
		{Number: "2.0.0", CreatedAt: "2022-01-01T00:00:00.000Z", Metadata: map[string]string{
			"integration_plugins": "logstash-input-kafka, logstash-output-kafka",
		}},
		{Number: "1.0.0", CreatedAt: "2021-01-01T00:00:00.000Z"},
	}))
	defer server.Close()

	c := New("logstash-filter-grok", server.URL, nil)
	ctx := context.Background()

	rec, err := c.ForVersion(ctx, "2.0.0")
	if err != nil {
		t.Fatalf("ForVersion failed: %v", err)
	}
	if rec.Metadata[core.MetaIntegrationPlugins] == "" {
		t.Error("metadata document not carried through")
	}

	if _, err := c.ForVersion(ctx, "3.0.0"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unpublished version, got %v", err)
	}

	// Exact match only.
	if _, err := c.ForVersion(ctx, "2.0"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for inexact number, got %v", err)
	}
}

func TestPrereleaseDetection(t *testing.T) {
	var fetches int32
	server := httptest.NewServer(versionsHandler(t, &fetches, []versionResponse{
		{Number: "2.0.0-beta1", CreatedAt: "2022-02-01T00:00:00.000Z"},
		{Number: "1.5.0", CreatedAt: "2022-01-15T00:00:00.000Z", Prerelease: true},
		{Number: "1.0.0", CreatedAt: "2022-01-01T00:00:00.000Z"},
	}))
	defer server.Close()

	c := New("logstash-filter-grok", server.URL, nil)
	versions, err := c.Versions(context.Background())
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}

	byNumber := make(map[string]bool, len(versions))
	for _, v := range versions {
		byNumber[v.Number] = v.Prerelease
	}

	if !byNumber["2.0.0-beta1"] {
		t.Error("semver prerelease suffix not flagged")
	}
	if !byNumber["1.5.0"] {
		t.Error("registry prerelease flag not honored")
	}
	if byNumber["1.0.0"] {
		t.Error("stable version flagged as prerelease")
	}
}

func TestFetch_CoercesMixedEncoding(t *testing.T) {
	// One record encoded as UTF-8, one with a Latin-1 0xE9 byte that is
	// invalid as UTF-8. Only the invalid byte may be rewritten.
	payload := []byte(`[{"number":"2.0.0","created_at":"2022-01-01T00:00:00.000Z","metadata":{"summary":"caf` + "\xc3\xa9" + `"}},{"number":"1.0.0","created_at":"2021-01-01T00:00:00.000Z","metadata":{"summary":"caf` + "\xe9" + `"}}]`)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	c := New("logstash-filter-grok", server.URL, nil)
	versions, err := c.Versions(context.Background())
	if err != nil {
		t.Fatalf("Versions failed on mixed-encoding payload: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("got %d versions, want 2", len(versions))
	}
	for _, v := range versions {
		if got := v.Metadata["summary"]; got != "café" {
			t.Errorf("version %s summary = %q, want %q", v.Number, got, "café")
		}
	}
}

func TestCoerceUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"valid ascii", []byte("plain ascii"), "plain ascii"},
		{"valid multi-byte", []byte("caf\xc3\xa9"), "café"},
		{"latin-1 byte", []byte{'c', 'a', 'f', 0xe9}, "café"},
		{"valid run beside invalid byte", []byte("caf\xc3\xa9 caf\xe9"), "café café"},
		{"invalid byte before valid run", []byte("\xe9 caf\xc3\xa9"), "é café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceUTF8(tt.in); string(got) != tt.want {
				t.Errorf("coerceUTF8 = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestURLs(t *testing.T) {
	u := &URLs{baseURL: "https://rubygems.org"}

	tests := []struct {
		got  string
		want string
	}{
		{u.Registry("logstash-filter-grok", ""), "https://rubygems.org/gems/logstash-filter-grok"},
		{u.Registry("logstash-filter-grok", "1.0.0"), "https://rubygems.org/gems/logstash-filter-grok/versions/1.0.0"},
		{u.Download("logstash-filter-grok", "1.0.0"), "https://rubygems.org/downloads/logstash-filter-grok-1.0.0.gem"},
		{u.Download("logstash-filter-grok", ""), ""},
		{u.PURL("logstash-filter-grok", "1.0.0"), "pkg:gem/logstash-filter-grok@1.0.0"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("URL = %q, want %q", tt.got, tt.want)
		}
	}
}
