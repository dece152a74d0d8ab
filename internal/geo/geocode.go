package geo

import (
	"context"
	"fmt"
	"strconv"

	"resty.dev/v3"
)

// Geocoder resolves a free-form address to coordinates using a
// Nominatim-compatible endpoint.
type Geocoder struct {
	client *resty.Client
}

func NewGeocoder(baseURL string) *Geocoder {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", "ewaste-BE/1.0")

	return &Geocoder{client: client}
}

func (g *Geocoder) Close() error {
	return g.client.Close()
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the best-match coordinates for an address. An address
// with no match is an error; shop registration requires real coordinates.
func (g *Geocoder) Geocode(ctx context.Context, address string) (latitude, longitude float64, err error) {
	var results []nominatimResult

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      address,
			"format": "json",
			"limit":  "1",
		}).
		SetResult(&results).
		Get("/search")
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding request failed: %w", err)
	}
	if resp.IsError() {
		return 0, 0, fmt.Errorf("geocoding request failed with status %s", resp.Status())
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no coordinates found for address %q", address)
	}

	latitude, err = strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude in geocoder response: %w", err)
	}
	longitude, err = strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude in geocoder response: %w", err)
	}

	return latitude, longitude, nil
}
