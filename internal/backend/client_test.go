package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, mux *http.ServeMux, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	opts = append(opts, WithBaseURL(server.URL))
	client, err := NewClient(context.Background(), "", "test-token", opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClient_NilContextReturnsError(t *testing.T) {
	var nilCtx context.Context
	_, err := NewClient(nilCtx, "", "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "ctx is nil") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	client, err := NewClient(context.Background(), "", "tok")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.BaseURL != "https://api.datadoghq.com/api/v1" {
		t.Fatalf("base URL: %q", client.BaseURL)
	}

	client, err = NewClient(context.Background(), "datadoghq.eu", "tok")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.BaseURL != "https://api.datadoghq.eu/api/v1" {
		t.Fatalf("base URL: %q", client.BaseURL)
	}
}

func TestClient_SendsAuthHeaders(t *testing.T) {
	var gotAuth, gotAppKey string
	mux := http.NewServeMux()
	mux.HandleFunc("/synthetics/tests/abc-def-ghi", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAppKey = r.Header.Get("DD-APPLICATION-KEY")
		fmt.Fprint(w, `{"public_id":"abc-def-ghi","type":"api"}`)
	})
	client := newTestClient(t, mux, WithAppKey("app-key-1"))

	if _, err := client.GetTest(context.Background(), "abc-def-ghi"); err != nil {
		t.Fatalf("GetTest: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("authorization header: %q", gotAuth)
	}
	if gotAppKey != "app-key-1" {
		t.Fatalf("application key header: %q", gotAppKey)
	}
}

func TestClient_VerboseLogging(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/synthetics/tests/abc-def-ghi", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"public_id":"abc-def-ghi","type":"api"}`)
	})
	var logs bytes.Buffer
	client := newTestClient(t, mux, WithVerbose(true, &logs))

	if _, err := client.GetTest(context.Background(), "abc-def-ghi"); err != nil {
		t.Fatalf("GetTest: %v", err)
	}
	out := logs.String()
	if !strings.Contains(out, "[verbose] backend api: GET") {
		t.Fatalf("missing request log: %q", out)
	}
	if !strings.Contains(out, "200 OK") {
		t.Fatalf("missing response log: %q", out)
	}
}
