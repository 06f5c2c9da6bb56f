package wikiexport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
)

const testAgent = "wikiexport-test/1.0"

// fakeSite serves edit pages and exports out of maps keyed by title.
type fakeSite struct {
	edits   map[string]string
	exports map[string]string
	// Exports answered with a 500.
	broken map[string]bool

	mu       sync.Mutex
	requests []string
	agents   []string
}

func (f *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.RequestURI())
	f.agents = append(f.agents, r.Header.Get("User-Agent"))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	switch {
	case r.URL.Path == "/w/index.php" && r.URL.Query().Get("action") == "edit":
		text, ok := f.edits[r.URL.Query().Get("title")]
		if !ok {
			http.Error(w, "no such page", 404)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, text)
	case strings.HasPrefix(r.URL.Path, "/wiki/Special:Export/"):
		title := strings.TrimPrefix(r.URL.Path, "/wiki/Special:Export/")
		if f.broken[title] {
			http.Error(w, "internal error", 500)
			return
		}
		text, ok := f.exports[title]
		if !ok {
			// Like the real site, missing pages export as an empty dump.
			text = preamble + trailer
		}
		io.WriteString(w, text)
	default:
		http.Error(w, "bad request", 400)
	}
}

func (f *fakeSite) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.requests...)
}

func startFakeSite(t *testing.T, f *fakeSite) *Client {
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", Profile{UserAgent: testAgent})
}

func templateLink(name string) string {
	return `<li><a href="/wiki/` + name + `" title="` + name + `">` + name + "</a></li>\n"
}

func TestDependencies(t *testing.T) {
	f := &fakeSite{edits: map[string]string{
		"AT&T Park": "<ul>\n" + templateLink("Template:B") +
			templateLink("Template:A") + templateLink("Template:B") + "</ul>\n",
	}}
	c := startFakeSite(t, f)

	deps, err := c.Dependencies(context.Background(), "AT&T Park")
	if err != nil {
		t.Fatalf("Error getting dependencies: %v", err)
	}
	expected := []string{"Template:A", "Template:B"}
	if !reflect.DeepEqual(deps, expected) {
		t.Fatalf("Expected %v, got %v", expected, deps)
	}

	reqs := f.Requests()
	if len(reqs) != 1 {
		t.Fatalf("Expected exactly one request, got %v", reqs)
	}
	if reqs[0] != "/w/index.php?title=AT%26T+Park&action=edit" {
		t.Fatalf("Unexpected edit request: %v", reqs[0])
	}
	if f.agents[0] != testAgent {
		t.Fatalf("Expected user agent %q, got %q", testAgent, f.agents[0])
	}
}

func TestDependenciesNone(t *testing.T) {
	f := &fakeSite{edits: map[string]string{"Plain": "<p>nothing</p>"}}
	c := startFakeSite(t, f)

	deps, err := c.Dependencies(context.Background(), "Plain")
	if err != nil {
		t.Fatalf("Error getting dependencies: %v", err)
	}
	if len(deps) != 0 {
		t.Fatalf("Expected no dependencies, got %v", deps)
	}
}

func TestDependenciesHTTPError(t *testing.T) {
	c := startFakeSite(t, &fakeSite{})

	deps, err := c.Dependencies(context.Background(), "Missing")
	if err == nil {
		t.Fatalf("Expected error for missing page, got %v", deps)
	}
}

func TestExport(t *testing.T) {
	export := preamble + pageBlock("Template:Convert/mi", "x") + trailer
	f := &fakeSite{exports: map[string]string{"Template:Convert/mi": export}}
	c := startFakeSite(t, f)

	body, err := c.Export(context.Background(), "Template:Convert/mi")
	if err != nil {
		t.Fatalf("Error exporting: %v", err)
	}
	defer body.Close()

	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("Error reading export: %v", err)
	}
	if string(got) != export {
		t.Fatalf("Expected %q, got %q", export, got)
	}

	reqs := f.Requests()
	if reqs[0] != "/wiki/Special:Export/Template:Convert/mi" {
		t.Fatalf("Unexpected export request: %v", reqs[0])
	}
	if f.agents[0] != testAgent {
		t.Fatalf("Expected user agent %q, got %q", testAgent, f.agents[0])
	}
}

func TestExportURLEscaping(t *testing.T) {
	c := NewClient("https://en.wikipedia.org", Profile{})

	tests := []struct {
		title, export, edit string
	}{
		{"Microsoft",
			"https://en.wikipedia.org/wiki/Special:Export/Microsoft",
			"https://en.wikipedia.org/w/index.php?title=Microsoft&action=edit"},
		{"Template:Cite web",
			"https://en.wikipedia.org/wiki/Special:Export/Template:Cite%20web",
			"https://en.wikipedia.org/w/index.php?title=Template%3ACite+web&action=edit"},
		{"Café?",
			"https://en.wikipedia.org/wiki/Special:Export/Caf%C3%A9%3F",
			"https://en.wikipedia.org/w/index.php?title=Caf%C3%A9%3F&action=edit"},
		{"",
			"https://en.wikipedia.org/wiki/Special:Export/",
			"https://en.wikipedia.org/w/index.php?title=&action=edit"},
	}

	for _, test := range tests {
		if got := c.exportURL(test.title); got != test.export {
			t.Errorf("Expected %v for %q, got %v", test.export, test.title, got)
		}
		if got := c.editURL(test.title); got != test.edit {
			t.Errorf("Expected %v for %q, got %v", test.edit, test.title, got)
		}
	}
}

func TestExportDecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=iso-8859-1")
		w.Write([]byte("<page><title>Caf\xe9</title></page>\n"))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, Profile{UserAgent: testAgent})

	body, err := c.Export(context.Background(), "Café")
	if err != nil {
		t.Fatalf("Error exporting: %v", err)
	}
	defer body.Close()

	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("Error reading export: %v", err)
	}
	if string(got) != "<page><title>Café</title></page>\n" {
		t.Fatalf("Expected utf-8 output, got %q", got)
	}
}

func TestEmptyBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}))
	defer srv.Close()
	c := NewClient(srv.URL, Profile{UserAgent: testAgent})

	deps, err := c.Dependencies(context.Background(), "Example")
	if err != nil {
		t.Fatalf("Error getting dependencies of an empty page: %v", err)
	}
	if deps == nil || len(deps) != 0 {
		t.Fatalf("Expected an empty list, got %#v", deps)
	}

	body, err := c.Export(context.Background(), "Example")
	if err != nil {
		t.Fatalf("Error exporting an empty page: %v", err)
	}
	defer body.Close()

	_, err = CopyPage(io.Discard, body, false)
	if err != ErrNoPage {
		t.Fatalf("Expected %v, got %v", ErrNoPage, err)
	}
}

func TestExportDefaultsToUTF8(t *testing.T) {
	head := `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.11/">
  <siteinfo>
    <namespaces>
`
	for i := 0; i < 40; i++ {
		head += `      <namespace key="` + strings.Repeat("1", i%3+1) +
			`" case="first-letter">Some namespace</namespace>` + "\n"
	}
	head += "    </namespaces>\n  </siteinfo>\n"
	if len(head) <= 1024 {
		t.Fatalf("Expected a preamble over 1KB, got %v bytes", len(head))
	}
	page := "  <page>\n    <title>Café</title>\n  </page>\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, head+page+trailer)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, Profile{UserAgent: testAgent})

	body, err := c.Export(context.Background(), "Café")
	if err != nil {
		t.Fatalf("Error exporting: %v", err)
	}
	defer body.Close()

	buf := &strings.Builder{}
	if _, err := CopyPage(buf, body, false); err != nil {
		t.Fatalf("Error copying: %v", err)
	}
	if buf.String() != page {
		t.Fatalf("Expected %q, got %q", page, buf.String())
	}
}

func TestBodyCharset(t *testing.T) {
	tests := []struct {
		contentType, expected string
	}{
		{"", "utf-8"},
		{"application/xml", "utf-8"},
		{"text/xml; charset=utf-8", "utf-8"},
		{"text/html; charset=ISO-8859-1", "ISO-8859-1"},
		{"garbage;;", "utf-8"},
	}

	for _, test := range tests {
		if got := bodyCharset(test.contentType); got != test.expected {
			t.Errorf("Expected %v for %q, got %v",
				test.expected, test.contentType, got)
		}
	}
}
