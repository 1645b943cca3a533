package panel

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandler_Embedded(t *testing.T) {
	h := Handler("")

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/", http.StatusOK, "<!DOCTYPE html>"},
		{"/viewer.js", http.StatusOK, "WebSocket"},
		{"/viewer.css", http.StatusOK, "#marquee"},
		{"/colos/201", http.StatusOK, "<!DOCTYPE html>"},
		{"/missing.js", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(t, h, tt.path)
			if w.Code != tt.status {
				t.Fatalf("GET %s status = %d, want %d", tt.path, w.Code, tt.status)
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("GET %s body missing %q", tt.path, tt.contains)
			}
			if got := w.Header().Get("Cache-Control"); got != "no-cache" {
				t.Errorf("Cache-Control = %q, want no-cache", got)
			}
		})
	}
}

func TestHandler_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(`<!DOCTYPE html><p>local map</p>`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "viewer.js"), []byte("// local"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := Handler(dir)

	if w := get(t, h, "/"); !strings.Contains(w.Body.String(), "local map") {
		t.Errorf("GET / = %q, want directory index", w.Body.String())
	}
	if w := get(t, h, "/viewer.js"); w.Body.String() != "// local" {
		t.Errorf("GET /viewer.js = %q, want directory asset", w.Body.String())
	}
	if w := get(t, h, "/colos/201"); !strings.Contains(w.Body.String(), "local map") {
		t.Errorf("GET /colos/201 = %q, want directory index", w.Body.String())
	}
	if w := get(t, h, "/viewer.css"); w.Code != http.StatusNotFound {
		t.Errorf("GET /viewer.css status = %d, want 404", w.Code)
	}
}

func TestHandler_MissingDirectoryUsesEmbedded(t *testing.T) {
	w := get(t, Handler("/nonexistent/panel"), "/")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "viewer.js") {
		t.Errorf("GET / = %d %q, want embedded index", w.Code, w.Body.String())
	}
}

func TestViewerScript(t *testing.T) {
	body := get(t, Handler(""), "/viewer.js").Body.String()

	// Selection states arrive by name and zoom replies carry the new factor.
	for _, want := range []string{
		`msg.payload.state === "ended"`,
		`case "response":`,
		`zoom = msg.payload.zoom;`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("viewer.js missing %q", want)
		}
	}
	if strings.Contains(body, "r.x * zoom") {
		t.Error("viewer.js scales the marquee, which already arrives in client pixels")
	}
}
