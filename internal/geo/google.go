package geo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-cli/internal/model"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

type googleGeocodeResponse struct {
	Results []googleResult `json:"results"`
	Status  string         `json:"status"`
}

type googleResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	FormattedAddress string `json:"formatted_address"`
}

// Geocoder resolves a free-text place ("Denver, CO") to coordinates with the
// Google Geocoding API.
type Geocoder struct {
	Place string

	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// GeocoderOption configures a Geocoder.
type GeocoderOption func(*Geocoder)

// WithGeocodeURL overrides the Geocoding API endpoint.
func WithGeocodeURL(u string) GeocoderOption {
	return func(g *Geocoder) { g.baseURL = u }
}

// WithGeocodeHTTPClient sets the HTTP client used for requests.
func WithGeocodeHTTPClient(hc *http.Client) GeocoderOption {
	return func(g *Geocoder) { g.httpClient = hc }
}

// NewGeocoder creates a Geocoder for place.
func NewGeocoder(apiKey, place string, opts ...GeocoderOption) *Geocoder {
	g := &Geocoder{
		Place:      place,
		apiKey:     apiKey,
		baseURL:    googleGeocodeURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Locate geocodes the configured place.
func (g *Geocoder) Locate(ctx context.Context) (*model.Location, error) {
	if g.apiKey == "" {
		return nil, eris.New("geo: google api key not configured")
	}
	if g.Place == "" {
		return nil, eris.Wrap(ErrUnavailable, "geo: empty place")
	}

	params := url.Values{
		"address": {g.Place},
		"key":     {g.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geo: google build request")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geo: google request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geo: google returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geo: google read body")
	}

	var gr googleGeocodeResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, eris.Wrap(err, "geo: google parse response")
	}

	if gr.Status != "OK" || len(gr.Results) == 0 {
		return nil, eris.Wrapf(ErrUnavailable, "geo: no match for %q (status %s)", g.Place, gr.Status)
	}

	loc := gr.Results[0].Geometry.Location
	return &model.Location{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
