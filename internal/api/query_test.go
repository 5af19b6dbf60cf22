package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// postQuery sends a query request body and decodes the recorder.
func postQuery(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// TestHandleQuery_RoundTrip verifies a parameterised query end to end
// through the dispatcher.
func TestHandleQuery_RoundTrip(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.buildRouter()

	rec := postQuery(t, router, `{"sql": "SELECT ? AS x", "params": ["abc"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /query status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body)
	}

	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	want := QueryResponse{
		Columns: []string{"x"},
		Values:  [][]string{{"abc"}},
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

// TestHandleQuery_TableRows verifies a multi-row result.
func TestHandleQuery_TableRows(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.buildRouter()

	rec := postQuery(t, router, `{"sql": "SELECT name FROM parts ORDER BY id"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /query status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body)
	}

	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	want := QueryResponse{
		Columns: []string{"name"},
		Values:  [][]string{{"bolt"}, {"washer"}},
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

// TestHandleQuery_EmptyResult verifies columns and values are arrays, not null.
func TestHandleQuery_EmptyResult(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.buildRouter()

	rec := postQuery(t, router, `{"sql": "SELECT name FROM parts WHERE kind = 'missing'"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /query status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body)
	}

	body := rec.Body.String()
	if strings.Contains(body, "null") {
		t.Errorf("response contains null, want empty arrays: %s", body)
	}
}

// TestHandleQuery_Errors verifies the error envelope mapping.
func TestHandleQuery_Errors(t *testing.T) {
	server, db := newTestServer(t)
	router := server.buildRouter()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid json",
			body:       `{"sql": `,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "missing sql",
			body:       `{"params": ["a"]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "malformed sql",
			body:       `{"sql": "SELEK 1"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeQueryFailed,
		},
		{
			name:       "write rejected",
			body:       `{"sql": "DELETE FROM parts"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postQuery(t, router, tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body)
			}

			var apiErr Error
			if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
				t.Fatalf("decoding error envelope: %v", err)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", apiErr.Code, tt.wantCode)
			}
			if apiErr.Message == "" {
				t.Error("error message is empty, want engine message passed through")
			}
		})
	}

	t.Run("closed handle", func(t *testing.T) {
		if err := db.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		rec := postQuery(t, router, `{"sql": "SELECT 1"}`)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d (body: %s)", rec.Code, http.StatusServiceUnavailable, rec.Body)
		}
	})
}
