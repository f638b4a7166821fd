package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-cli/internal/gateway"
	"github.com/sells-group/lead-cli/internal/geo"
	"github.com/sells-group/lead-cli/internal/model"
)

// stubGateway returns canned responses and records requests.
type stubGateway struct {
	discover    *gateway.DiscoverResponse
	discoverErr error
	complete    []byte
	completeErr error

	discoverReqs []gateway.DiscoverRequest
	completeReqs []gateway.StructuredRequest
}

func (s *stubGateway) Discover(_ context.Context, req gateway.DiscoverRequest) (*gateway.DiscoverResponse, error) {
	s.discoverReqs = append(s.discoverReqs, req)
	if s.discoverErr != nil {
		return nil, s.discoverErr
	}
	return s.discover, nil
}

func (s *stubGateway) Complete(_ context.Context, req gateway.StructuredRequest) ([]byte, error) {
	s.completeReqs = append(s.completeReqs, req)
	if s.completeErr != nil {
		return nil, s.completeErr
	}
	return s.complete, nil
}

var testCfg = Config{
	DiscoveryModel:   "disc-model",
	StructuringModel: "struct-model",
	ProbeTimeout:     time.Second,
}

func TestSearch_CoffeeShopScenario(t *testing.T) {
	gw := &stubGateway{
		discover: &gateway.DiscoverResponse{
			Text: "Bean There has a site. Grind House does not.",
			Citations: []model.GroundingLink{
				{Title: "Bean There", URI: "https://maps.google.com/?cid=1"},
				{Title: "View on Maps", URI: "#"},
				{Title: "Grind House", URI: "https://maps.google.com/?cid=2"},
			},
		},
		complete: []byte(`[
			{"id":"b1","name":"Bean There","address":"1 Main St","rating":4.6,"reviewCount":210,"phoneNumber":"555-0100","website":"https://beanthere.example","mapsUrl":"https://maps.google.com/?cid=1"},
			{"id":"g2","name":"Grind House","address":"2 Oak Ave","rating":null,"reviewCount":null,"phoneNumber":"","website":null,"mapsUrl":""}
		]`),
	}
	o := New(gw, nil, testCfg)

	loc := &model.Location{Latitude: 39.7, Longitude: -104.9}
	res, err := o.Search(context.Background(), "Coffee shop", loc)
	require.NoError(t, err)

	require.Len(t, res.Leads, 2)
	first, second := res.Leads[0], res.Leads[1]

	assert.Equal(t, "b1", first.ID)
	assert.Equal(t, []string{"SEO Optimization", "App Development"}, first.PotentialServices)
	assert.Equal(t, model.LeadStatusNew, first.Status)
	require.NotNil(t, first.ReviewCount)
	assert.Equal(t, 210, *first.ReviewCount)

	assert.Equal(t, "g2", second.ID)
	assert.Equal(t, []string{"Website Creation", "Digital Presence"}, second.PotentialServices)
	assert.Equal(t, model.LeadStatusNew, second.Status)
	assert.Nil(t, second.Website)
	assert.Nil(t, second.PhoneNumber)
	assert.Nil(t, second.Rating)

	assert.Equal(t, []model.GroundingLink{
		{Title: "Bean There", URI: "https://maps.google.com/?cid=1"},
		{Title: "Grind House", URI: "https://maps.google.com/?cid=2"},
	}, res.GroundingLinks)

	require.Len(t, gw.discoverReqs, 1)
	assert.Equal(t, "disc-model", gw.discoverReqs[0].Model)
	assert.Equal(t, loc, gw.discoverReqs[0].Location)
	assert.Contains(t, gw.discoverReqs[0].Prompt, `"Coffee shop"`)

	require.Len(t, gw.completeReqs, 1)
	assert.Equal(t, "struct-model", gw.completeReqs[0].Model)
	assert.Contains(t, gw.completeReqs[0].Prompt, "Bean There has a site.")
	assert.Equal(t, gateway.TypeArray, gw.completeReqs[0].Schema.Type)
}

func TestSearch_DiscoveryTimeout(t *testing.T) {
	gw := &stubGateway{discoverErr: context.DeadlineExceeded}
	o := New(gw, nil, testCfg)

	res, err := o.Search(context.Background(), "Bakery in Denver", nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrSearchFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageDiscover, se.Stage)
	assert.Empty(t, gw.completeReqs, "structuring must not run after discovery fails")
}

func TestSearch_StructuringFailure(t *testing.T) {
	gw := &stubGateway{
		discover:    &gateway.DiscoverResponse{Text: "x"},
		completeErr: errors.New("503"),
	}

	_, err := New(gw, nil, testCfg).Search(context.Background(), "florist", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearchFailed)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageStructure, se.Stage)
}

func TestSearch_MalformedJSON(t *testing.T) {
	gw := &stubGateway{
		discover: &gateway.DiscoverResponse{Text: "x"},
		complete: []byte(`[{"id":"a","name":`),
	}

	res, err := New(gw, nil, testCfg).Search(context.Background(), "florist", nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrSearchFailed)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageParse, se.Stage)
}

func TestSearch_ObjectInsteadOfArrayIsFailure(t *testing.T) {
	gw := &stubGateway{
		discover: &gateway.DiscoverResponse{Text: "x"},
		complete: []byte(`{"id":"a"}`),
	}

	_, err := New(gw, nil, testCfg).Search(context.Background(), "florist", nil)
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestSearch_NullReplyIsFailure(t *testing.T) {
	gw := &stubGateway{
		discover: &gateway.DiscoverResponse{Text: "x"},
		complete: []byte(`null`),
	}

	res, err := New(gw, nil, testCfg).Search(context.Background(), "florist", nil)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrSearchFailed)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageParse, se.Stage)
}

func TestSearch_EmptyQuery(t *testing.T) {
	gw := &stubGateway{}

	_, err := New(gw, nil, testCfg).Search(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.NotErrorIs(t, err, ErrSearchFailed)
	assert.Empty(t, gw.discoverReqs)
}

func TestSearch_ProbesLocatorWhenNoLocation(t *testing.T) {
	gw := &stubGateway{discover: &gateway.DiscoverResponse{}, complete: []byte(`[]`)}
	o := New(gw, geo.Static{Latitude: 12, Longitude: 34}, testCfg)

	res, err := o.Search(context.Background(), "gym", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Leads)
	assert.Empty(t, res.GroundingLinks)
	require.NotNil(t, gw.discoverReqs[0].Location)
	assert.InDelta(t, 12.0, gw.discoverReqs[0].Location.Latitude, 0.0001)
}

func TestSearch_ExplicitLocationSkipsProbe(t *testing.T) {
	probed := false
	locator := geo.LocatorFunc(func(context.Context) (*model.Location, error) {
		probed = true
		return &model.Location{}, nil
	})
	gw := &stubGateway{discover: &gateway.DiscoverResponse{}, complete: []byte(`[]`)}

	_, err := New(gw, locator, testCfg).Search(context.Background(), "gym", &model.Location{Latitude: 1})
	require.NoError(t, err)
	assert.False(t, probed)
}

func TestSearch_LocatorFailureDoesNotAbort(t *testing.T) {
	locator := geo.LocatorFunc(func(context.Context) (*model.Location, error) {
		return nil, errors.New("permission denied")
	})
	gw := &stubGateway{discover: &gateway.DiscoverResponse{}, complete: []byte(`[]`)}

	_, err := New(gw, locator, testCfg).Search(context.Background(), "gym", nil)
	require.NoError(t, err)
	assert.Nil(t, gw.discoverReqs[0].Location)
}

func TestFilterLinks(t *testing.T) {
	in := []model.GroundingLink{
		{Title: "A", URI: "https://a"},
		{Title: "B", URI: "#"},
		{Title: "C", URI: ""},
		{Title: "A", URI: "https://a"},
	}
	out := FilterLinks(in)
	assert.Equal(t, []model.GroundingLink{{Title: "A", URI: "https://a"}, {Title: "A", URI: "https://a"}}, out)
	for _, l := range out {
		assert.NotEqual(t, model.PlaceholderURI, l.URI)
	}
	assert.NotNil(t, FilterLinks(nil))
}

func TestParseCandidates_MintsMissingIDs(t *testing.T) {
	leads, err := ParseCandidates([]byte(`[{"id":"","name":"A","address":"x"},{"name":"B","address":"y"}]`))
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.NotEmpty(t, leads[0].ID)
	assert.NotEmpty(t, leads[1].ID)
	assert.NotEqual(t, leads[0].ID, leads[1].ID)
}

func TestParseCandidates_EmptyWebsiteIsNoWebsite(t *testing.T) {
	leads, err := ParseCandidates([]byte(`[{"id":"1","name":"A","address":"x","website":""}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Website Creation", "Digital Presence"}, leads[0].PotentialServices)
}

func TestParseCandidates_NullIsFailure(t *testing.T) {
	for _, raw := range []string{`null`, ` null `, `"leads"`, `42`} {
		leads, err := ParseCandidates([]byte(raw))
		assert.Error(t, err, raw)
		assert.Nil(t, leads, raw)
	}
}

func TestParseCandidates_EmptyArray(t *testing.T) {
	leads, err := ParseCandidates([]byte(" []\n"))
	require.NoError(t, err)
	assert.NotNil(t, leads)
	assert.Empty(t, leads)
}

func TestParseCandidates_WhitespaceWebsiteCountsAsWebsite(t *testing.T) {
	leads, err := ParseCandidates([]byte(`[{"id":"1","name":"A","address":"x","website":"   "}]`))
	require.NoError(t, err)
	require.NotNil(t, leads[0].Website)
	assert.Equal(t, "   ", *leads[0].Website)
	assert.Equal(t, []string{"SEO Optimization", "App Development"}, leads[0].PotentialServices)
}

func TestParseCandidates_NegativeReviewCountIsUnknown(t *testing.T) {
	leads, err := ParseCandidates([]byte(`[{"id":"1","name":"A","address":"x","reviewCount":-3}]`))
	require.NoError(t, err)
	assert.Nil(t, leads[0].ReviewCount)
}

func TestParseCandidates_FractionalReviewCount(t *testing.T) {
	leads, err := ParseCandidates([]byte(`[{"id":"1","name":"A","address":"x","reviewCount":41.0}]`))
	require.NoError(t, err)
	require.NotNil(t, leads[0].ReviewCount)
	assert.Equal(t, 41, *leads[0].ReviewCount)
}

func TestLeadSchema(t *testing.T) {
	s := LeadSchema()
	assert.Equal(t, gateway.TypeArray, s.Type)
	require.NotNil(t, s.Items)
	assert.Equal(t, []string{"id", "name", "address"}, s.Items.Required)
	assert.Len(t, s.Items.Properties, 8)
	assert.True(t, s.Items.Properties["website"].Nullable)
	assert.False(t, s.Items.Properties["name"].Nullable)
}
