package models

// PlaceCandidate is a single forward-geocoding match. A search yields up
// to five candidates in provider relevance order; no re-ranking is done.
type PlaceCandidate struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1"` // state or region
	Admin2      string  `json:"admin2"` // district
	Population  int64   `json:"population"`
}

// ResolvedPlace is the result of a reverse lookup. FormattedName is
// always non-empty; a coordinate-based label stands in when no
// administrative name can be resolved.
type ResolvedPlace struct {
	Name          string `json:"name"`
	Country       string `json:"country"`
	Admin1        string `json:"admin1"`
	FormattedName string `json:"formatted_name"`
	FullAddress   string `json:"full_address,omitempty"`
}

// Address holds the administrative fields a reverse-geocoding provider
// attaches to a coordinate pair. Any field may be empty.
type Address struct {
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	Municipality  string `json:"municipality"`
	County        string `json:"county"`
	StateDistrict string `json:"state_district"`
	Region        string `json:"region"`
	State         string `json:"state"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	Country       string `json:"country"`
}

// ReverseAddress is the raw reverse-geocoding payload before the
// resolver picks a display name out of it.
type ReverseAddress struct {
	Address     Address `json:"address"`
	DisplayName string  `json:"display_name"`
}

// IPLocation is the approximate fix derived from the caller's IP
// address. Used only as a fallback when device geolocation fails.
type IPLocation struct {
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Name          string  `json:"name"`
	Country       string  `json:"country"`
	Admin1        string  `json:"admin1"`
	FormattedName string  `json:"formatted_name"`
}
