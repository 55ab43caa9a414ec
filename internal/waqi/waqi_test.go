package waqi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/envsense/enviroctl/internal/waqi"
	"github.com/stretchr/testify/assert"
)

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "geo:37.77;-122.42")
		assert.Equal(t, "token-123", r.URL.Query().Get("token"))
		w.Write([]byte(`{"status":"ok","data":{"aqi":42}}`))
	}))
	defer server.Close()

	client := waqi.NewClient("37.77", "-122.42", "token-123").WithBaseURL(server.URL)
	assert.Equal(t, 42, client.Fetch(context.Background()))
}

func TestFetchNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := waqi.NewClient("0", "0", "key").WithBaseURL(server.URL)
	assert.Equal(t, waqi.Unavailable, client.Fetch(context.Background()))
}

func TestFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"error","data":"Invalid key"}`))
	}))
	defer server.Close()

	client := waqi.NewClient("0", "0", "bad-key").WithBaseURL(server.URL)
	assert.Equal(t, waqi.Unavailable, client.Fetch(context.Background()))
}

func TestFetchMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client := waqi.NewClient("0", "0", "key").WithBaseURL(server.URL)
	assert.Equal(t, waqi.Unavailable, client.Fetch(context.Background()))
}

func TestFetchNonNumericAQI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ok","data":{"aqi":"-"}}`))
	}))
	defer server.Close()

	client := waqi.NewClient("0", "0", "key").WithBaseURL(server.URL)
	assert.Equal(t, waqi.Unavailable, client.Fetch(context.Background()))
}

func TestFetchNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // refuse connections

	client := waqi.NewClient("0", "0", "key").WithBaseURL(server.URL)
	assert.Equal(t, waqi.Unavailable, client.Fetch(context.Background()))
}
