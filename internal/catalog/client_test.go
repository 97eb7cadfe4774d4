package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pawmart-backend/internal/contextkeys"
	"pawmart-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/listings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAll_Success(t *testing.T) {
	srv := serve(t, 200, `{"success":true,"data":[
		{"id":1,"listing_type":"pet","name":"Buddy","type":"Dog","breed":"Labrador","age":"2","price":"450.5","location":"Austin","created_at":"2024-03-01T10:00:00Z"},
		{"id":1,"listing_type":"supply","name":"Dog Bed","condition":"Like-New","price":30,"location":"Austin","created_at":"2024-03-02 09:30:00"}
	]}`)

	listings, err := NewClient(srv.URL, "", time.Second).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	pet := listings[0]
	assert.Equal(t, models.ListingKey{ID: 1, Category: models.CategoryPet}, pet.Key())
	assert.Equal(t, "dog", pet.PetType)
	assert.Equal(t, "Labrador", pet.Breed)
	require.NotNil(t, pet.Price)
	assert.Equal(t, 450.5, *pet.Price)
	require.NotNil(t, pet.AgeYears)
	assert.Equal(t, 2.0, *pet.AgeYears)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), pet.CreatedAt)

	supply := listings[1]
	assert.Equal(t, models.CategorySupply, supply.Category)
	assert.Equal(t, "like-new", supply.Condition)
	assert.Empty(t, supply.PetType)
	assert.Equal(t, time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC), supply.CreatedAt)
}

func TestFetchAll_ListingsAlias(t *testing.T) {
	srv := serve(t, 200, `{"success":true,"listings":[{"id":7,"listing_type":"pet","price":10}]}`)
	listings, err := NewClient(srv.URL, "", time.Second).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, int64(7), listings[0].ID)
}

func TestFetchAll_EmptyCatalogIsNotAnError(t *testing.T) {
	srv := serve(t, 200, `{"success":true,"data":[]}`)
	listings, err := NewClient(srv.URL, "", time.Second).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestFetchAll_DropsUnidentifiableRecords(t *testing.T) {
	srv := serve(t, 200, `{"success":true,"data":[
		{"id":1,"listing_type":"pet","price":10},
		{"listing_type":"pet","price":10},
		{"id":2.5,"listing_type":"pet"},
		{"id":3,"listing_type":"reptile"},
		{"id":"4","listing_type":"SUPPLY","price":-3}
	]}`)
	listings, err := NewClient(srv.URL, "", time.Second).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, models.ListingKey{ID: 4, Category: models.CategorySupply}, listings[1].Key())
	assert.Nil(t, listings[1].Price, "negative price is treated as missing")
}

func TestFetchAll_NonSuccessStatus(t *testing.T) {
	srv := serve(t, 503, `{"success":false,"message":"maintenance"}`)
	_, err := NewClient(srv.URL, "", time.Second).FetchAll(context.Background())
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, 503, ferr.Status)
	assert.Equal(t, "maintenance", ferr.Message)
}

func TestFetchAll_NonSuccessStatusWithoutJSON(t *testing.T) {
	srv := serve(t, 500, `oops`)
	_, err := NewClient(srv.URL, "", time.Second).FetchAll(context.Background())
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "500 Internal Server Error", ferr.Message)
}

func TestFetchAll_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":      `<html>`,
		"success false": `{"success":false,"message":"nope"}`,
		"no flag":       `{"data":[]}`,
		"no array":      `{"success":true}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := serve(t, 200, body)
			_, err := NewClient(srv.URL, "", time.Second).FetchAll(context.Background())
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestFetchAll_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "", time.Second).FetchAll(context.Background())
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, 0, ferr.Status)
}

func TestFetchAll_Unconfigured(t *testing.T) {
	_, err := NewClient("", "", time.Second).FetchAll(context.Background())
	var ferr *FetchError
	assert.ErrorAs(t, err, &ferr)
}

func TestFetchAll_ForwardsTraceID(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("X-Trace-Id")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-123")
	_, err := NewClient(srv.URL+"/", "/api/listings", time.Second).FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "trace-123", <-got)
}
