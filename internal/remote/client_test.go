package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/ecktms/internal/auth"
	"github.com/xelth-com/ecktms/internal/models"
)

// fakeAPI is an in-memory stand-in for the REST service
type fakeAPI struct {
	mu       sync.Mutex
	nextID   int64
	records  map[string][]map[string]interface{}
	requests int32
	lastBody map[string]interface{}
	lastHdr  http.Header
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()

	api := &fakeAPI{nextID: 1, records: map[string][]map[string]interface{}{}}
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			atomic.AddInt32(&api.requests, 1)
			api.mu.Lock()
			api.lastHdr = req.Header.Clone()
			api.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	r.HandleFunc("/api/{collection}", api.list).Methods(http.MethodGet)
	r.HandleFunc("/api/{collection}", api.create).Methods(http.MethodPost)
	r.HandleFunc("/api/{collection}/{id}", api.update).Methods(http.MethodPut)
	r.HandleFunc("/api/{collection}/{id}", api.remove).Methods(http.MethodDelete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return api, srv
}

// last returns the body and headers of the most recent request
func (a *fakeAPI) last() (map[string]interface{}, http.Header) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastBody, a.lastHdr
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *fakeAPI) list(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data := a.records[mux.Vars(r)["collection"]]
	if data == nil {
		data = []map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

func (a *fakeAPI) create(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "bad body"})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastBody = body

	if body["branchCode"] == "DUP" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "error": "duplicate code"})
		return
	}

	body["id"] = a.nextID
	a.nextID++
	c := mux.Vars(r)["collection"]
	a.records[c] = append(a.records[c], body)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": body})
}

func (a *fakeAPI) update(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	body["id"] = id
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": body})
}

func (a *fakeAPI) remove(w http.ResponseWriter, r *http.Request) {
	if mux.Vars(r)["id"] == "404" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func TestClient_CreateAndList(t *testing.T) {
	api, srv := newFakeAPI(t)
	c := NewClient(srv.URL, 5*time.Second, WithHTTPClient(srv.Client()), WithHeader("X-Instance-ID", "test-node"))
	ctx := context.Background()

	entity := models.Entity{"branchName": "HQ", "status": "Active", "_localId": "l-1", "_pending": true}
	saved, err := c.Create(ctx, "branches", entity)
	require.NoError(t, err)

	id, ok := saved.ID()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, "HQ", saved["branchName"])

	// bookkeeping fields never reach the server
	body, hdr := api.last()
	assert.NotContains(t, body, "_localId")
	assert.NotContains(t, body, "_pending")
	assert.Equal(t, "test-node", hdr.Get("X-Instance-ID"))

	list, err := c.List(ctx, "branches")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "HQ", list[0]["branchName"])
	assert.Equal(t, int32(2), atomic.LoadInt32(&api.requests), "one request per call")
}

func TestClient_ListEmptyCollection(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client()))

	list, err := c.List(context.Background(), "branches")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestClient_RejectedCarriesServerMessage(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client()))

	_, err := c.Create(context.Background(), "branches", models.Entity{"branchName": "New", "branchCode": "DUP"})

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected), "expected RejectedError, got %T", err)
	assert.Equal(t, "duplicate code", rejected.Message)
	assert.Equal(t, "duplicate code", err.Error())

	var transport *TransportError
	assert.False(t, errors.As(err, &transport))
}

func TestClient_UpdateAndDelete(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client()))
	ctx := context.Background()

	saved, err := c.Update(ctx, "branches", 7, models.Entity{"branchName": "Renamed", "id": 7})
	require.NoError(t, err)
	id, _ := saved.ID()
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "Renamed", saved["branchName"])

	require.NoError(t, c.DeleteByID(ctx, "branches", 7))

	err = c.DeleteByID(ctx, "branches", 404)
	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "request rejected", rejected.Message)
}

func TestClient_TransportErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "non-2xx envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "nope"})
			},
			status: http.StatusBadRequest,
		},
		{
			name: "unparsable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("<html>proxy error</html>"))
			},
			status: http.StatusOK,
		},
		{
			name: "missing data field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{"error": "db down"})
			},
		},
		{
			name: "data is not a list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{"data": "oops"})
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			c := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client()))

			_, err := c.List(context.Background(), "branches")

			var transport *TransportError
			require.True(t, errors.As(err, &transport), "expected TransportError, got %v", err)
			assert.Equal(t, tc.status, transport.StatusCode)

			var rejected *RejectedError
			assert.False(t, errors.As(err, &rejected))
		})
	}
}

func TestClient_NullDataIsEmptyList(t *testing.T) {
	for _, body := range []string{`{"data":null}`, `{"data":[]}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}))
		c := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client()))

		list, err := c.List(context.Background(), "branches")
		srv.Close()

		require.NoError(t, err, body)
		assert.Empty(t, list, body)
	}
}

func TestClient_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	_, err := c.List(context.Background(), "branches")

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Zero(t, transport.StatusCode)
}

func TestClient_CreateWithoutDataIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client()))

	_, err := c.Create(context.Background(), "branches", models.Entity{"branchName": "X"})
	var transport *TransportError
	assert.True(t, errors.As(err, &transport))
}

func TestClient_CreateWithoutIDIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": map[string]interface{}{"branchName": "New"}})
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client()))

	saved, err := c.Create(context.Background(), "branches", models.Entity{"branchName": "New"})
	assert.Nil(t, saved)
	var transport *TransportError
	require.True(t, errors.As(err, &transport), "expected TransportError, got %v", err)
	var rejected *RejectedError
	assert.False(t, errors.As(err, &rejected))
}

func TestClient_BearerToken(t *testing.T) {
	api, srv := newFakeAPI(t)
	signer := auth.NewSigner("node-7", auth.TokenTypeClient, "shared", time.Hour)
	c := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client()), WithTokenSource(signer.Token))

	_, err := c.List(context.Background(), "branches")
	require.NoError(t, err)

	_, hdr := api.last()
	claims, err := auth.Validate(strings.TrimPrefix(hdr.Get("Authorization"), "Bearer "), "shared", auth.TokenTypeClient)
	require.NoError(t, err)
	assert.Equal(t, "node-7", claims["id"])
}

func TestClient_TokenFailureIsTransportError(t *testing.T) {
	api, srv := newFakeAPI(t)
	c := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client()), WithTokenSource(func() (string, error) {
		return "", errors.New("no key")
	}))

	_, err := c.List(context.Background(), "branches")
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Zero(t, atomic.LoadInt32(&api.requests), "nothing sent without a token")
}
