package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type testRequest struct {
	Name string `json:"name"`
}

type testResponse struct {
	Status string `json:"status"`
	Value  int    `json:"value"`
}

func TestPostSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req testRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if req.Name != "test" {
			t.Errorf("expected name test, got %q", req.Name)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(testResponse{Status: "ok", Value: 42})
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL})

	var result testResponse
	err := client.Post(context.Background(), "/test", testRequest{Name: "test"}, &result)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Status != "ok" || result.Value != 42 {
		t.Errorf("expected {ok 42}, got {%s %d}", result.Status, result.Value)
	}
}

func TestGetSendsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/actions" {
			t.Errorf("expected path /actions, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("account"); got != "0xabc" {
			t.Errorf("expected account=0xabc, got %q", got)
		}
		// deliberately no content type: the client forces JSON decoding
		w.Write([]byte(`{"status":"ok","value":7}`))
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL + "/"})

	var result testResponse
	err := client.Get(context.Background(), "/actions", map[string]string{"account": "0xabc"}, &result)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Value != 7 {
		t.Errorf("expected value 7, got %d", result.Value)
	}
}

func TestDefaultBaseUrl(t *testing.T) {
	client := New(Config{})
	if client.BaseUrl() != "https://arbitrum-api.gmxinfra.io" {
		t.Errorf("unexpected default base url %s", client.BaseUrl())
	}
}

func TestPostClientErrorWithJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"code": "INVALID_REQUEST",
			"msg":  "Request validation failed",
			"data": map[string]string{"field": "name"},
		})
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL})
	var result testResponse
	err := client.Post(context.Background(), "/test", testRequest{Name: ""}, &result)

	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("expected ClientError, got %T", err)
	}

	if clientErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", clientErr.StatusCode)
	}

	if clientErr.Code != "INVALID_REQUEST" {
		t.Errorf("expected code INVALID_REQUEST, got %s", clientErr.Code)
	}

	if clientErr.Msg != "Request validation failed" {
		t.Errorf("expected msg 'Request validation failed', got %s", clientErr.Msg)
	}

	if clientErr.Data == nil {
		t.Error("expected data to be populated")
	}
}

func TestGetClientErrorWithMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL})
	var result testResponse
	err := client.Get(context.Background(), "/missing", nil, &result)

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("expected ClientError, got %T", err)
	}
	if clientErr.Msg != "not found" {
		t.Errorf("expected msg 'not found', got %s", clientErr.Msg)
	}
}

func TestPostClientErrorWithoutJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorized"))
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL})
	var result testResponse
	err := client.Post(context.Background(), "/test", testRequest{Name: "test"}, &result)

	if err == nil {
		t.Fatal("expected error, got nil")
	}

	clientErr, ok := err.(*ClientError)
	if !ok {
		t.Fatalf("expected ClientError, got %T", err)
	}

	if clientErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", clientErr.StatusCode)
	}

	if clientErr.Msg != "Unauthorized" {
		t.Errorf("expected msg 'Unauthorized', got %s", clientErr.Msg)
	}
}

func TestPostServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL})
	var result testResponse
	err := client.Post(context.Background(), "/test", testRequest{Name: "test"}, &result)

	if err == nil {
		t.Fatal("expected error, got nil")
	}

	serverErr, ok := err.(*ServerError)
	if !ok {
		t.Fatalf("expected ServerError, got %T", err)
	}

	if serverErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", serverErr.StatusCode)
	}

	if serverErr.Text != "Internal Server Error" {
		t.Errorf("expected text 'Internal Server Error', got %s", serverErr.Text)
	}
}

func TestGetTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL, Timeout: 1})
	var result testResponse
	err := client.Get(context.Background(), "/slow", nil, &result)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
