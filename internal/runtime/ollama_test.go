package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOllama_Invoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		if req.Options["temperature"] != 0.7 {
			t.Errorf("temperature = %v, want 0.7", req.Options["temperature"])
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "hello from " + req.Model, Done: true})
	}))
	defer srv.Close()

	o := NewOllama(srv.URL)
	got, err := o.Invoke(context.Background(), Request{Model: "dolphin3:8b", Prompt: "hi", Temperature: 0.7})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != "hello from dolphin3:8b" {
		t.Errorf("Invoke() = %q", got)
	}
}

func TestOllama_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"404 is unavailable", http.StatusNotFound, `{"error":"model 'x' not found"}`, KindUnavailable},
		{"not found message is unavailable", http.StatusInternalServerError, `{"error":"model not found, try pulling it first"}`, KindUnavailable},
		{"500 is other", http.StatusInternalServerError, `{"error":"out of memory"}`, KindOther},
		{"504 is timeout", http.StatusGatewayTimeout, ``, KindTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOllama(srv.URL).Invoke(context.Background(), Request{Model: "x", Prompt: "p"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := KindOf(err); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", err, got, tt.want)
			}
		})
	}
}

func TestOllama_ConnectionRefusedIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewOllama(url).Invoke(context.Background(), Request{Model: "x", Prompt: "p"})
	if got := KindOf(err); got != KindUnavailable {
		t.Errorf("KindOf(%v) = %v, want unavailable", err, got)
	}
}

func TestOllama_DeadlineIsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewOllama(srv.URL).Invoke(ctx, Request{Model: "x", Prompt: "p"})
	if got := KindOf(err); got != KindTimeout {
		t.Errorf("KindOf(%v) = %v, want timeout", err, got)
	}
}

func TestOllama_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Write([]byte(`{"models":[{"name":"dolphin3:8b"},{"name":"deepseek-coder:33b"}]}`))
		case "/api/version":
			w.Write([]byte(`{"version":"0.5.1"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	o := NewOllama(srv.URL + "/")
	names, err := o.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(names) != 2 || names[0] != "dolphin3:8b" {
		t.Errorf("ListModels() = %v", names)
	}

	v, err := o.Version(context.Background())
	if err != nil || v != "0.5.1" {
		t.Errorf("Version() = %q, %v", v, err)
	}
}

func TestKindOf_Unstructured(t *testing.T) {
	if got := KindOf(context.DeadlineExceeded); got != KindTimeout {
		t.Errorf("KindOf(DeadlineExceeded) = %v, want timeout", got)
	}
	if got := KindOf(errors.New("boom")); got != KindOther {
		t.Errorf("KindOf(boom) = %v, want other", got)
	}
	wrapped := &Error{Kind: KindUnavailable, Model: "m", Err: errors.New("gone")}
	if got := KindOf(errors.Join(errors.New("ctx"), wrapped)); got != KindUnavailable {
		t.Errorf("KindOf(joined) = %v, want unavailable", got)
	}
}
