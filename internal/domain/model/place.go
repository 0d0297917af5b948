package model

// PlaceQuery is the input of a place text search.
type PlaceQuery struct {
	Query        string
	LocationHint string
	Language     string
	MaxResults   int
}

// SearchText joins the query with its location hint the way the search
// backend expects ("<query>, <hint>").
func (q PlaceQuery) SearchText() string {
	if q.LocationHint == "" {
		return q.Query
	}
	return q.Query + ", " + q.LocationHint
}

// PlaceResult is one hit from the place search backend.
type PlaceResult struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	GoogleMapsURL    string
	Rating           float64
	UserRatingsTotal int
	Types            []string
	BusinessStatus   string
}
