package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}
}

func TestClient_GetJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.json", jsonHandler(`[1,2,3]`))
	mux.HandleFunc("/html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html>index</html>")
	})
	mux.HandleFunc("/broken.json", jsonHandler(`[1,2`))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClientWith(srv.Client(), "")
	ctx := context.Background()

	raw, err := client.GetJSON(ctx, srv.URL+"/ok.json")
	if err != nil {
		t.Fatalf("GetJSON(ok) error: %v", err)
	}
	if string(raw) != `[1,2,3]` {
		t.Errorf("GetJSON(ok) = %s", raw)
	}

	_, err = client.GetJSON(ctx, srv.URL+"/html")
	var ctErr *ContentTypeError
	if !errors.As(err, &ctErr) {
		t.Errorf("GetJSON(html) error = %v, want ContentTypeError", err)
	}

	_, err = client.GetJSON(ctx, srv.URL+"/missing")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("GetJSON(missing) error = %v, want 404 StatusError", err)
	}

	if _, err := client.GetJSON(ctx, srv.URL+"/broken.json"); err == nil {
		t.Error("GetJSON(broken) should fail on invalid JSON")
	}
}

func TestClient_SendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		jsonHandler(`{}`)(w, r)
	}))
	defer srv.Close()

	if _, err := NewClientWith(srv.Client(), "tester/1.0").GetJSON(context.Background(), srv.URL); err != nil {
		t.Fatal(err)
	}
	if got != "tester/1.0" {
		t.Errorf("User-Agent = %q, want %q", got, "tester/1.0")
	}
}

func TestIsJSONContentType(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/vnd.api+json", true},
		{"text/html", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ct, func(t *testing.T) {
			if got := IsJSONContentType(tt.ct); got != tt.want {
				t.Errorf("IsJSONContentType(%q) = %v, want %v", tt.ct, got, tt.want)
			}
		})
	}
}

func TestCandidateFetcher_FallsBackAfter404(t *testing.T) {
	var primaryHits, secondaryHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/app/data/data.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&primaryHits, 1)
		http.NotFound(w, r)
	})
	mux.HandleFunc("/data/data.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&secondaryHits, 1)
		jsonHandler(`[{"id":1}]`)(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	candidates, err := ResolveCandidates(srv.URL+"/app", []string{"data/data.json", "/data/data.json"})
	if err != nil {
		t.Fatal(err)
	}

	f := NewCandidateFetcher(NewClientWith(srv.Client(), ""), DefaultPolicy(), quietLogger())
	raw, err := f.FetchJSON(context.Background(), candidates)
	if err != nil {
		t.Fatalf("FetchJSON error: %v", err)
	}
	if string(raw) != `[{"id":1}]` {
		t.Errorf("FetchJSON = %s", raw)
	}
	if primaryHits != 1 || secondaryHits != 1 {
		t.Errorf("hits = %d/%d, want 1/1", primaryHits, secondaryHits)
	}
}

func TestCandidateFetcher_StopsAtFirstSuccess(t *testing.T) {
	var secondHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/a.json", jsonHandler(`{"a":1}`))
	mux.HandleFunc("/b.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&secondHits, 1)
		jsonHandler(`{"b":1}`)(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewCandidateFetcher(NewClientWith(srv.Client(), ""), DefaultPolicy(), quietLogger())
	raw, err := f.FetchJSON(context.Background(), []string{srv.URL + "/a.json", srv.URL + "/b.json"})
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]int
	if err := json.Unmarshal(raw, &got); err != nil || got["a"] != 1 {
		t.Errorf("FetchJSON = %s, want first candidate", raw)
	}
	if secondHits != 0 {
		t.Errorf("second candidate fetched %d times, want 0", secondHits)
	}
}

func TestCandidateFetcher_TimeoutMovesToNextCandidate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/slow.json", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/fast.json", jsonHandler(`[]`))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewCandidateFetcher(NewClientWith(srv.Client(), ""), Policy{Timeout: 50 * time.Millisecond}, quietLogger())
	raw, err := f.FetchJSON(context.Background(), []string{srv.URL + "/slow.json", srv.URL + "/fast.json"})
	if err != nil {
		t.Fatalf("FetchJSON error: %v", err)
	}
	if string(raw) != `[]` {
		t.Errorf("FetchJSON = %s, want []", raw)
	}
}

func TestCandidateFetcher_Exhausted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html></html>")
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewCandidateFetcher(NewClientWith(srv.Client(), ""), Policy{Timeout: 50 * time.Millisecond}, quietLogger())
	_, err := f.FetchJSON(context.Background(), []string{srv.URL + "/missing", srv.URL + "/html", srv.URL + "/slow"})

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("FetchJSON error = %v, want ExhaustedError", err)
	}
	if len(exhausted.Attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(exhausted.Attempts))
	}
	if !exhausted.Attempts[2].Timeout {
		t.Error("last attempt should be marked as a timeout")
	}
	var ctErr *ContentTypeError
	if !errors.As(exhausted.Attempts[1], &ctErr) {
		t.Errorf("second attempt = %v, want ContentTypeError", exhausted.Attempts[1])
	}
}

func TestCandidateFetcher_CallerCancel(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	f := NewCandidateFetcher(NewClientWith(srv.Client(), ""), DefaultPolicy(), quietLogger())
	_, err := f.FetchJSON(ctx, []string{srv.URL + "/a", srv.URL + "/b"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FetchJSON error = %v, want context.Canceled", err)
	}
}

func TestCandidateFetcher_MaxCandidates(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewCandidateFetcher(NewClientWith(srv.Client(), ""), Policy{MaxCandidates: 2}, quietLogger())
	_, err := f.FetchJSON(context.Background(), []string{srv.URL + "/1", srv.URL + "/2", srv.URL + "/3"})
	if err == nil {
		t.Fatal("expected error")
	}
	if hits != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}
}

func TestCandidateFetcher_NoCandidates(t *testing.T) {
	f := NewCandidateFetcher(NewClient(""), DefaultPolicy(), quietLogger())
	_, err := f.FetchJSON(context.Background(), nil)
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("FetchJSON(nil) error = %v, want ErrNoCandidates", err)
	}
}

func TestResolveCandidates(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		paths []string
		want  []string
	}{
		{
			name:  "sub-path deployment",
			base:  "https://example.com/app",
			paths: []string{"data/data.json", "/data/data.json"},
			want:  []string{"https://example.com/app/data/data.json", "https://example.com/data/data.json"},
		},
		{
			name:  "root deployment dedupes",
			base:  "https://example.com/",
			paths: []string{"data/data.json", "/data/data.json", " "},
			want:  []string{"https://example.com/data/data.json"},
		},
		{
			name:  "absolute candidate kept",
			base:  "http://localhost:8080",
			paths: []string{"https://cdn.example.com/data.json"},
			want:  []string{"https://cdn.example.com/data.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCandidates(tt.base, tt.paths)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveCandidates() = %v, want %v", got, tt.want)
			}
		})
	}
}
