package testutils

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"embed"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

//go:embed upstreamdata
var upstreamdata embed.FS

const (
	allPath    = "/stats/all"
	latestPath = "/stats/latest"
)

// FakeUpstreamServer serves the two roster endpoints from the files in
// upstreamdata. Responses can be compressed, replaced or failed per test.
type FakeUpstreamServer struct {
	s *httptest.Server

	mu       sync.Mutex
	encoding string
	status   map[string]int
	bodies   map[string][]byte
	delay    time.Duration

	allHits    atomic.Int32
	latestHits atomic.Int32
}

func NewFakeUpstreamServer() *FakeUpstreamServer {
	f := &FakeUpstreamServer{
		status: make(map[string]int),
		bodies: make(map[string][]byte),
	}

	r := chi.NewRouter()
	r.Get(allPath, f.handler(allPath, "all_players.json", &f.allHits))
	r.Get(latestPath, f.handler(latestPath, "latest_players.json", &f.latestHits))

	f.s = httptest.NewServer(r)
	return f
}

func (f *FakeUpstreamServer) Close() {
	f.s.Close()
}

func (f *FakeUpstreamServer) AllPlayersURL() string {
	return f.s.URL + allPath
}

func (f *FakeUpstreamServer) LatestPlayersURL() string {
	return f.s.URL + latestPath
}

// AllHits is the number of requests made to the all players endpoint.
func (f *FakeUpstreamServer) AllHits() int {
	return int(f.allHits.Load())
}

// LatestHits is the number of requests made to the latest players endpoint.
func (f *FakeUpstreamServer) LatestHits() int {
	return int(f.latestHits.Load())
}

// SetEncoding compresses every response with "gzip" or "deflate". "" turns
// compression off.
func (f *FakeUpstreamServer) SetEncoding(enc string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.encoding = enc
}

// FailAll makes the all players endpoint respond with status. 0 restores it.
func (f *FakeUpstreamServer) FailAll(status int) {
	f.setStatus(allPath, status)
}

// FailLatest makes the latest players endpoint respond with status. 0 restores it.
func (f *FakeUpstreamServer) FailLatest(status int) {
	f.setStatus(latestPath, status)
}

// SetAllBody replaces the all players response body.
func (f *FakeUpstreamServer) SetAllBody(body string) {
	f.setBody(allPath, body)
}

// SetLatestBody replaces the latest players response body.
func (f *FakeUpstreamServer) SetLatestBody(body string) {
	f.setBody(latestPath, body)
}

// SetDelay holds every response for d before writing it.
func (f *FakeUpstreamServer) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

func (f *FakeUpstreamServer) setStatus(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[path] = status
}

func (f *FakeUpstreamServer) setBody(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[path] = []byte(body)
}

func (f *FakeUpstreamServer) handler(path, file string, hits *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		f.mu.Lock()
		status := f.status[path]
		body, replaced := f.bodies[path]
		enc := f.encoding
		delay := f.delay
		f.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}

		if status != 0 {
			w.WriteHeader(status)
			return
		}

		if !replaced {
			var err error
			body, err = upstreamdata.ReadFile(fmt.Sprintf("upstreamdata/%s", file))
			if err != nil {
				log.Printf("error reading upstreamdata/%s: %v", file, err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}

		b, err := compress(body, enc)
		if err != nil {
			log.Printf("error compressing response: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if enc != "" {
			w.Header().Set("Content-Encoding", enc)
		}
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func compress(b []byte, enc string) ([]byte, error) {
	var buf bytes.Buffer
	switch enc {
	case "":
		return b, nil
	case "gzip":
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(b); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case "deflate":
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(b); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown encoding %s", enc)
	}
	return buf.Bytes(), nil
}
