package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServerHealthHandler(t *testing.T) {
	s := NewServer()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %s", resp.Status)
	}
}

func TestServerReadyHandler_AllOK(t *testing.T) {
	s := NewServer()
	s.RegisterCheck("registry", func(ctx context.Context) error { return nil })
	s.RegisterCheck("queue", func(ctx context.Context) error { return nil })

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ReadyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ready" {
		t.Errorf("expected ready, got %s", resp.Status)
	}
	if resp.Checks["registry"] != "ok" {
		t.Errorf("expected registry ok, got %s", resp.Checks["registry"])
	}
}

func TestServerReadyHandler_OneFails(t *testing.T) {
	s := NewServer()
	s.RegisterCheck("registry", func(ctx context.Context) error { return nil })
	s.RegisterCheck("blobstore", func(ctx context.Context) error { return errors.New("unreachable") })

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != 503 {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var resp ReadyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "not ready" {
		t.Errorf("expected not ready, got %s", resp.Status)
	}
	if resp.Message == "" {
		t.Error("expected a message explaining why not ready")
	}
}

func TestServerReadyHandler_CheckerFuncWiresConcreteCheckers(t *testing.T) {
	httpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer httpSrv.Close()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	s := NewServer()
	s.RegisterCheck("blobstore", CheckerFunc(NewHTTPChecker(httpSrv.URL)))
	s.RegisterCheck("queue", CheckerFunc(NewTCPChecker(lis.Addr().String())))

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ReadyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Checks["blobstore"] != "ok" || resp.Checks["queue"] != "ok" {
		t.Errorf("expected both checks ok, got %+v", resp.Checks)
	}
}

func TestServerReadyHandler_CheckerFuncReportsUnreachable(t *testing.T) {
	s := NewServer()
	s.RegisterCheck("queue", CheckerFunc(NewTCPChecker("127.0.0.1:1")))

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != 503 {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
