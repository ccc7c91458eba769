// Package geo resolves free-text venue addresses and travel data through the
// Google Maps web services.
//
// Lookups that find nothing are reported as ok=false, not as errors; the
// pipeline treats them as null fields on the record. Only transport failures
// surface as errors.
package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	geocodeURL        = "https://maps.googleapis.com/maps/api/geocode/json"
	distanceMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

	requestTimeout = 30 * time.Second
)

var milesPerKm = decimal.NewFromFloat(0.62137)

// Travel is the road distance and drive time between two addresses.
type Travel struct {
	Miles   decimal.Decimal
	Minutes decimal.Decimal
}

// Geocoder is the lookup collaborator the record assembler depends on.
type Geocoder interface {
	// Resolve returns the formatted address for a free-text address, or
	// ok=false when the geocoder finds nothing.
	Resolve(ctx context.Context, address string) (formatted string, ok bool, err error)

	// TravelData returns distance and duration between two addresses, or
	// ok=false when no route is found.
	TravelData(ctx context.Context, origin, destination string) (Travel, bool, error)
}

// Client is a Geocoder backed by the Google Maps HTTP API.
type Client struct {
	apiKey      string
	http        *http.Client
	geocodeURL  string
	distanceURL string
}

// NewClient returns a Client using the given API key. Requests are retried on
// transient failures.
func NewClient(apiKey string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	rc.HTTPClient.Timeout = requestTimeout

	return &Client{
		apiKey:      apiKey,
		http:        rc.StandardClient(),
		geocodeURL:  geocodeURL,
		distanceURL: distanceMatrixURL,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (string, error) {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling maps api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return string(body), nil
}

// Resolve geocodes a free-text address into its formatted form.
func (c *Client) Resolve(ctx context.Context, address string) (string, bool, error) {
	body, err := c.get(ctx, c.geocodeURL, url.Values{"address": {address}})
	if err != nil {
		return "", false, err
	}

	formatted := gjson.Get(body, "results.0.formatted_address")
	if !formatted.Exists() || formatted.String() == "" {
		return "", false, nil
	}
	return formatted.String(), true, nil
}

// TravelData fetches the distance-matrix entry for the address pair.
func (c *Client) TravelData(ctx context.Context, origin, destination string) (Travel, bool, error) {
	body, err := c.get(ctx, c.distanceURL, url.Values{
		"origins":      {origin},
		"destinations": {destination},
	})
	if err != nil {
		return Travel{}, false, err
	}

	elem := gjson.Get(body, "rows.0.elements.0")
	if !elem.Exists() || strings.EqualFold(elem.Get("status").String(), "not_found") {
		return Travel{}, false, nil
	}

	miles, ok := MilesFromKmText(elem.Get("distance.text").String())
	if !ok {
		return Travel{}, false, nil
	}
	minutes, ok := MinutesFromText(elem.Get("duration.text").String())
	if !ok {
		return Travel{}, false, nil
	}
	return Travel{Miles: miles, Minutes: minutes}, true, nil
}

// MilesFromKmText converts distance-matrix text like "12.3 km" (grouping
// commas allowed) to miles, quantized to two decimal places.
func MilesFromKmText(s string) (decimal.Decimal, bool) {
	fields := strings.Fields(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if len(fields) == 0 {
		return decimal.Decimal{}, false
	}
	km, err := decimal.NewFromString(fields[0])
	if err != nil {
		return decimal.Decimal{}, false
	}
	return km.Mul(milesPerKm).Round(2), true
}

// MinutesFromText converts duration text like "1 hour 5 mins" or "25 mins" to
// whole minutes.
func MinutesFromText(s string) (decimal.Decimal, bool) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return decimal.Decimal{}, false
	}

	if strings.Contains(s, "hour") {
		hours, err := strconv.Atoi(fields[0])
		if err != nil {
			return decimal.Decimal{}, false
		}
		minutes := hours * 60
		if len(fields) >= 3 {
			m, err := strconv.Atoi(fields[2])
			if err != nil {
				return decimal.Decimal{}, false
			}
			minutes += m
		}
		return decimal.NewFromInt(int64(minutes)), true
	}

	m, err := strconv.Atoi(fields[0])
	if err != nil {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromInt(int64(m)), true
}
