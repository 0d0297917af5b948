// File: internal/infra/adapters/places/google_places.go
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
)

var _ adapter.PlaceSearch = (*GooglePlaces)(nil)

const searchTextURL = "https://places.googleapis.com/v1/places:searchText"

var fieldMask = strings.Join([]string{
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.rating",
	"places.userRatingCount",
	"places.types",
	"places.googleMapsUri",
	"places.businessStatus",
}, ",")

// GooglePlaces implements place search against the Places API (New) text
// search endpoint.
type GooglePlaces struct {
	apiKey string
	base   string
	client *http.Client
	log    *zerolog.Logger
}

func NewGooglePlaces(apiKey string, log *zerolog.Logger) (*GooglePlaces, error) {
	if apiKey == "" {
		return nil, errors.New("google places api key empty")
	}
	return &GooglePlaces{
		apiKey: apiKey,
		base:   searchTextURL,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}, nil
}

type searchTextRequest struct {
	TextQuery      string `json:"textQuery"`
	LanguageCode   string `json:"languageCode,omitempty"`
	MaxResultCount int    `json:"maxResultCount,omitempty"`
}

type searchTextResponse struct {
	Places []struct {
		ID          string `json:"id"`
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string   `json:"formattedAddress"`
		Rating           float64  `json:"rating"`
		UserRatingCount  int      `json:"userRatingCount"`
		Types            []string `json:"types"`
		GoogleMapsURI    string   `json:"googleMapsUri"`
		BusinessStatus   string   `json:"businessStatus"`
	} `json:"places"`
}

func (g *GooglePlaces) Search(ctx context.Context, q model.PlaceQuery) ([]model.PlaceResult, error) {
	body, err := json.Marshal(searchTextRequest{
		TextQuery:      q.SearchText(),
		LanguageCode:   q.Language,
		MaxResultCount: q.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.base, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", g.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("places search: http %d", resp.StatusCode)
	}

	var payload searchTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("places search: decode: %w", err)
	}

	results := make([]model.PlaceResult, 0, len(payload.Places))
	for _, p := range payload.Places {
		name := p.DisplayName.Text
		if name == "" {
			name = "Unknown"
		}
		results = append(results, model.PlaceResult{
			PlaceID:          p.ID,
			Name:             name,
			FormattedAddress: p.FormattedAddress,
			GoogleMapsURL:    p.GoogleMapsURI,
			Rating:           p.Rating,
			UserRatingsTotal: p.UserRatingCount,
			Types:            p.Types,
			BusinessStatus:   p.BusinessStatus,
		})
	}

	g.log.Debug().Str("query", q.SearchText()).Int("results", len(results)).Msg("places search completed")
	return results, nil
}
