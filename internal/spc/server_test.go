package spc

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/jschlyter/spc2mqtt/internal/log"
	"github.com/stretchr/testify/require"
)

// fakeGateway is an in-memory stand-in for the SPC Web Gateway REST API.
// Records are raw JSON strings keyed by id.
type fakeGateway struct {
	mu         sync.Mutex
	panel      string
	areas      map[string]string
	zones      map[string]string
	hits       map[string]int
	puts       []string
	rejectPuts bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		panel: `{"type":"SPC4300","variant":"SPC4000","version":"3.8.5","sn":"111111"}`,
		areas: map[string]string{},
		zones: map[string]string{},
		hits:  map[string]int{},
	}
}

func (f *fakeGateway) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[r.URL.Path]++

	if r.Method == http.MethodPut {
		f.puts = append(f.puts, r.URL.Path)
		if f.rejectPuts {
			fmt.Fprint(w, `{"status":"error"}`)
		} else {
			fmt.Fprint(w, `{"status":"success"}`)
		}
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "spc" {
		http.NotFound(w, r)
		return
	}
	switch {
	case parts[1] == "panel":
		fmt.Fprintf(w, `{"status":"success","data":{"panel":%s}}`, f.panel)
	case len(parts) == 2:
		fmt.Fprintf(w, `{"status":"success","data":{%q:%s}}`, parts[1], f.list(parts[1]))
	default:
		f.item(w, parts[1], parts[2])
	}
}

func (f *fakeGateway) list(kind string) string {
	recs := f.records(kind)
	ids := make([]string, 0, len(recs))
	for id := range recs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("[")
	for i, id := range ids {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(recs[id])
	}
	b.WriteString("]")
	return b.String()
}

func (f *fakeGateway) item(w http.ResponseWriter, kind, id string) {
	rec, ok := f.records(kind)[id]
	if !ok {
		fmt.Fprint(w, `{"status":"error"}`)
		return
	}
	if kind == "area" {
		// the real gateway wraps a single area in a one-element array
		fmt.Fprintf(w, `{"status":"success","data":{"area":[%s]}}`, rec)
		return
	}
	fmt.Fprintf(w, `{"status":"success","data":{%q:%s}}`, kind, rec)
}

func (f *fakeGateway) records(kind string) map[string]string {
	if kind == "area" {
		return f.areas
	}
	return f.zones
}

func (f *fakeGateway) setArea(id, rec string) {
	f.mu.Lock()
	f.areas[id] = rec
	f.mu.Unlock()
}

func (f *fakeGateway) setZone(id, rec string) {
	f.mu.Lock()
	f.zones[id] = rec
	f.mu.Unlock()
}

func (f *fakeGateway) removeZone(id string) {
	f.mu.Lock()
	delete(f.zones, id)
	f.mu.Unlock()
}

func (f *fakeGateway) removeArea(id string) {
	f.mu.Lock()
	delete(f.areas, id)
	f.mu.Unlock()
}

func (f *fakeGateway) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeGateway) putPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.puts...)
}

// loadFixture fills the fake with one armed area owning two zones.
func (f *fakeGateway) loadFixture() {
	f.setArea("1", `{"id":"1","name":"House","mode":"3","last_set_time":"1598887999","last_set_user_name":"Pelle"}`)
	f.setZone("1", `{"id":"1","zone_name":"Entré","area":"1","input":"0","status":"0"}`)
	f.setZone("3", `{"id":"3","zone_name":"Skafferi","area":"1","input":"0","status":"0"}`)
}

func newMuxServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGateway(t *testing.T, f *fakeGateway) *Gateway {
	t.Helper()
	srv := f.server(t)
	g, err := New(Config{
		APIURL: srv.URL,
		WSURL:  "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/spc",
	}, log.NewLogger("error"))
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return g
}
