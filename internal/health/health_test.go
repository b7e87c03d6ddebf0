package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nadzzz/curiousframe/internal/audit"
	"github.com/nadzzz/curiousframe/internal/session"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	s := New(0)
	h := s.Handler()

	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := get(t, h, path); rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s before ready: %d", path, rec.Code)
		}
	}
	s.SetReady(true)
	rec := get(t, h, "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("healthz when ready: %d %s", rec.Code, rec.Body)
	}
}

func TestStatus(t *testing.T) {
	s := New(0)
	s.SetStatus(StatusFrom(session.Snapshot{
		Phase:        session.PhaseWaiting,
		Language:     "fr",
		LastObjects:  []string{"ball"},
		Cycles:       3,
		IdenticalFor: 90 * time.Second,
	}))

	rec := get(t, s.Handler(), "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	var got Status
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Phase != "waiting" || got.Language != "fr" || got.Cycles != 3 || got.IdenticalForSeconds != 90 {
		t.Fatalf("unexpected status %+v", got)
	}
	if len(got.LastObjects) != 1 || got.LastObjects[0] != "ball" {
		t.Fatalf("objects %v", got.LastObjects)
	}
}

func TestStatusFrom_EmptyObjects(t *testing.T) {
	st := StatusFrom(session.Snapshot{Phase: session.PhaseIdle})
	raw, _ := json.Marshal(st)
	if !strings.Contains(string(raw), `"last_objects":[]`) {
		t.Fatalf("empty object list should encode as []: %s", raw)
	}
}

func TestCycles(t *testing.T) {
	s := New(0)
	if rec := get(t, s.Handler(), "/cycles"); rec.Code != http.StatusNotFound {
		t.Fatalf("cycles without store: %d", rec.Code)
	}

	var gotLimit int
	s.SetHistory(func(_ context.Context, limit int) ([]audit.Record, error) {
		gotLimit = limit
		return []audit.Record{{ImagePath: "a.jpg", RawDetection: "ball", Narration: "A ball.", Outcome: "novel", Language: "en"}}, nil
	})
	h := s.Handler()

	rec := get(t, h, "/cycles?limit=5")
	if rec.Code != http.StatusOK || gotLimit != 5 {
		t.Fatalf("cycles: %d limit=%d", rec.Code, gotLimit)
	}
	var recs []CycleRecord
	if err := json.NewDecoder(rec.Body).Decode(&recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Narration != "A ball." {
		t.Fatalf("records %+v", recs)
	}

	if rec := get(t, h, "/cycles?limit=0"); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid limit: %d", rec.Code)
	}

	s.SetHistory(func(context.Context, int) ([]audit.Record, error) { return nil, errors.New("locked") })
	if rec := get(t, s.Handler(), "/cycles"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("store error: %d", rec.Code)
	}
}

func TestSwaggerDoc(t *testing.T) {
	rec := get(t, New(0).Handler(), "/swagger/doc.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json: %d", rec.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not json: %v", err)
	}
	paths, _ := doc["paths"].(map[string]any)
	for _, p := range []string{"/healthz", "/status", "/cycles"} {
		if _, ok := paths[p]; !ok {
			t.Fatalf("doc missing %s", p)
		}
	}
}

func TestGRPCHealth(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(0)
	done := make(chan error, 1)
	go func() { done <- s.ServeGRPC(ctx, lis) }()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		t.Helper()
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		resp, err := client.Check(cctx, &healthpb.HealthCheckRequest{})
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		return resp.GetStatus()
	}

	if got := check(); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("before ready: %v", got)
	}
	s.SetReady(true)
	if got := check(); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("after ready: %v", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("grpc server did not stop")
	}
}
