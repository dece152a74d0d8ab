package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "json", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("q") {
		case "Hanoi":
			w.Write([]byte(`[{"lat":"21.0285","lon":"105.8542"}]`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	geocoder := NewGeocoder(server.URL)
	defer geocoder.Close()

	latitude, longitude, err := geocoder.Geocode(context.Background(), "Hanoi")
	require.NoError(t, err)
	require.InDelta(t, 21.0285, latitude, 1e-6)
	require.InDelta(t, 105.8542, longitude, 1e-6)

	_, _, err = geocoder.Geocode(context.Background(), "nowhere at all")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no coordinates found")
}

func TestGeocodeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	geocoder := NewGeocoder(server.URL)
	defer geocoder.Close()

	_, _, err := geocoder.Geocode(context.Background(), "Hanoi")
	require.Error(t, err)
}
