package fetcher

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagekeeper/internal/entities"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title> Example Article </title>
  <meta name="description" content="A short summary">
  <script>var tracking = 1;</script>
</head>
<body>
  <nav>Home | About</nav>
  <article>
    <h1>Heading</h1>
    <p>First   paragraph.</p>
    <p>Second paragraph.</p>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

type memoryStore struct {
	mu    sync.Mutex
	pages map[string]*entities.StoredPage
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{pages: make(map[string]*entities.StoredPage)}
}

func (s *memoryStore) SaveStoredPage(_ context.Context, page *entities.StoredPage) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[page.URL] = page
	return nil
}

func setupFetcher(t *testing.T, store PageStore) *Fetcher {
	t.Helper()
	f, err := New(Config{
		Timeout:      2 * time.Second,
		UserAgent:    "pagekeeper-test",
		StorageDir:   t.TempDir(),
		MaxBodyBytes: 1 << 20,
	}, store, nil)
	require.NoError(t, err)
	return f
}

func TestProcess_StoresPage(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	store := newMemoryStore()
	f := setupFetcher(t, store)

	require.NoError(t, f.Process(context.Background(), srv.URL+"/article"))

	assert.Equal(t, "pagekeeper-test", gotUA)
	page := store.pages[srv.URL+"/article"]
	require.NotNil(t, page)
	assert.Equal(t, "Example Article", page.Title)
	assert.Equal(t, "A short summary", page.Description)
	assert.Equal(t, "Heading First paragraph. Second paragraph.", page.Text)
	assert.Len(t, page.ContentHash, 64)
	assert.False(t, page.FetchedAt.IsZero())

	raw, err := os.ReadFile(page.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, samplePage, string(raw))
}

func TestProcess_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	store := newMemoryStore()
	f := setupFetcher(t, store)

	err := f.Process(context.Background(), srv.URL)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.False(t, statusErr.Temporary())
	assert.Empty(t, store.pages)
}

func TestProcess_NotHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	store := newMemoryStore()
	f := setupFetcher(t, store)

	err := f.Process(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNotHTML)
	assert.Empty(t, store.pages)
}

func TestProcess_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f, err := New(Config{Timeout: time.Second, StorageDir: t.TempDir(), MaxBodyBytes: 16}, newMemoryStore(), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.Process(context.Background(), srv.URL), ErrTooLarge)
}

func TestProcess_TooLarge_StopsReading(t *testing.T) {
	const limit = 1 << 20
	var written atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		chunk := bytes.Repeat([]byte("<p>endless</p>"), 4096)
		for written.Load() < 32<<20 {
			n, err := w.Write(chunk)
			written.Add(int64(n))
			if err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	store := newMemoryStore()
	f, err := New(Config{Timeout: 10 * time.Second, StorageDir: t.TempDir(), MaxBodyBytes: limit}, store, nil)
	require.NoError(t, err)

	err = f.Process(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Empty(t, store.pages)
	assert.Less(t, written.Load(), int64(16<<20), "client kept reading past the limit")
}

func TestProcess_StoreError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	store := newMemoryStore()
	store.err = errors.New("disk full")
	f := setupFetcher(t, store)

	err := f.Process(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "disk full")
}

func TestProcess_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := setupFetcher(t, newMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, f.Process(ctx, srv.URL))
}

func TestStatusError_Temporary(t *testing.T) {
	assert.True(t, (&StatusError{StatusCode: 503}).Temporary())
	assert.True(t, (&StatusError{StatusCode: 429}).Temporary())
	assert.False(t, (&StatusError{StatusCode: 410}).Temporary())
}

func TestIsHTML(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"", true},
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"application/json", false},
		{"image/png", false},
		{";;;", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, isHTML(tt.contentType))
		})
	}
}
