package matches

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ridewire/matchd/core/matchlog"
	"github.com/ridewire/matchd/core/model"
)

type memStore struct{ recs []matchlog.Record }

func (m *memStore) Append(ctx context.Context, r matchlog.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(ctx context.Context, q matchlog.Query) ([]matchlog.Record, error) {
	var res []matchlog.Record
	for _, r := range m.recs {
		if q.OrderID != "" && r.Request.OrderID != q.OrderID {
			continue
		}
		if q.DriverID != "" && r.AssignedDriver != q.DriverID {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestLogHandler_AuthAndFilters(t *testing.T) {
	store := &memStore{}
	if err := store.Append(context.Background(), matchlog.Record{
		Timestamp:      time.Now(),
		Request:        model.MatchRequest{OrderID: "o1", Service: model.ServiceRide},
		Result:         model.MatchResult{OrderID: "o1"},
		AssignedDriver: "d1",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	h := NewLogHandler(store, "tok")

	req := httptest.NewRequest("GET", "/api/matches?driver_id=d1", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []matchlog.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].AssignedDriver != "d1" {
		t.Fatalf("expected the assigned record, got %+v", out)
	}

	// unauthorized
	req = httptest.NewRequest("GET", "/api/matches", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}

	// no match for unknown order
	req = httptest.NewRequest("GET", "/api/matches?order_id=nope", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
}
