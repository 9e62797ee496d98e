package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jayjaydesai/WorkBot/pkg/application/services/archive"
	"github.com/jayjaydesai/WorkBot/pkg/application/services/engine"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/events"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/metrics"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/repositories/memory"
	"github.com/jayjaydesai/WorkBot/pkg/interfaces/http/handlers"
)

const greplenCSV = `Part Number,Sales Back Order,Backorder,Actual Stock
P1,SBO1,10,12
P1,SBO2,6,12
P2,SBO3,4,0
`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store := events.NewInMemoryEventStore(0, nil)
	recorder := metrics.NewRecorder()
	if err := store.Subscribe(events.AllTypes, recorder); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	svc := engine.NewService(engine.EngineConfig{Workers: 2}, store, nil)
	arch := archive.NewService(memory.NewRunRepository(), nil, nil)
	return New(handlers.NewRunHandler(svc, arch, nil), recorder.Handler(), nil)
}

func upload(t *testing.T, r http.Handler, target, workflow, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if workflow != "" {
		_ = form.WriteField("workflow", workflow)
	}
	if filename != "" {
		part, err := form.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		_, _ = part.Write([]byte(content))
	}
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRunLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := upload(t, r, "/runs", "greplen", "backorders.csv", greplenCSV)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Summary struct {
			RunID string `json:"run_id"`
			Stats struct {
				Lines    int `json:"lines"`
				Groups   int `json:"groups"`
				NotToUse int `json:"not_to_use"`
			} `json:"stats"`
		} `json:"summary"`
		Lines []struct {
			Identifier string `json:"identifier"`
			Decision   string `json:"decision"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if created.Summary.Stats.Lines != 3 || created.Summary.Stats.Groups != 2 {
		t.Errorf("Expected 3 lines in 2 groups, got %+v", created.Summary.Stats)
	}
	// P2 has no stock so its only line is rejected
	if created.Lines[2].Identifier != "SBO3" || created.Lines[2].Decision != "Not to Use" {
		t.Errorf("Expected SBO3 Not to Use, got %+v", created.Lines[2])
	}

	rec = get(r, "/runs/"+created.Summary.RunID)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for stored run, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"SBO2"`) {
		t.Errorf("Expected stored lines in response, got %s", rec.Body.String())
	}

	rec = get(r, "/runs?limit=5")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), created.Summary.RunID) {
		t.Errorf("Expected run in listing, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = get(r, "/metrics")
	if !strings.Contains(rec.Body.String(), `workbot_runs_total{status="completed",workflow="greplen"} 1`) {
		t.Errorf("Expected completed run in metrics, got:\n%s", rec.Body.String())
	}
}

func TestCreateCSVResponse(t *testing.T) {
	r := newTestRouter(t)
	rec := upload(t, r, "/runs?format=csv", "greplen", "backorders.csv", greplenCSV)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv, got %s", ct)
	}
	if lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n"); len(lines) != 4 {
		t.Errorf("Expected header plus 3 rows, got %d", len(lines))
	}
}

func TestCreateRejections(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name     string
		workflow string
		filename string
		content  string
		status   int
		contains string
	}{
		{"unknown workflow", "restock", "a.csv", greplenCSV, http.StatusBadRequest, "unknown workflow"},
		{"missing file", "greplen", "", "", http.StatusBadRequest, "file is required"},
		{"unsupported format", "greplen", "a.pdf", "x", http.StatusBadRequest, "pdf"},
		{"missing column", "greplen", "a.csv", "Part Number,Backorder\nP1,3\n", http.StatusUnprocessableEntity, "sales back order"},
		{"header only", "greplen", "a.csv", "Part Number,Sales Back Order,Backorder,Actual Stock\n", http.StatusUnprocessableEntity, "no lines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, r, "/runs", tt.workflow, tt.filename, tt.content)
			if rec.Code != tt.status {
				t.Errorf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("Expected body to contain %q, got %s", tt.contains, rec.Body.String())
			}
		})
	}
}

func TestGetAndListErrors(t *testing.T) {
	r := newTestRouter(t)
	if rec := get(r, "/runs/unknown"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if rec := get(r, "/runs?limit=zero"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if rec := get(r, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from healthz, got %d", rec.Code)
	}
}
