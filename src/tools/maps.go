package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

const (
	DefaultPlaceRadius = 5000
	DefaultTravelMode  = "driving"

	maxPlaces      = 3
	placeSeparator = "---"

	mapsMissingMessage = "Error: Google Maps client not initialized. Missing GOOGLE_MAPS_API_KEY."
)

// PlacesBackend is the subset of *maps.Client used for place lookups.
type PlacesBackend interface {
	TextSearch(ctx context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error)
}

// DirectionsBackend is the subset of *maps.Client used for routing.
type DirectionsBackend interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// NewGoogleMaps returns a Maps Platform client, or ErrMissingCredential when apiKey is empty.
func NewGoogleMaps(apiKey string) (*maps.Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("google maps: %w", ErrMissingCredential)
	}
	return maps.NewClient(maps.WithAPIKey(apiKey))
}

// NewMapsTools builds both map adapters from one API key. A missing or
// rejected key leaves the adapters in their disabled state.
func NewMapsTools(apiKey string, radius uint, mode string) (*PlaceSearchTool, *DirectionsTool, error) {
	client, err := NewGoogleMaps(apiKey)
	if err != nil {
		return NewPlaceSearchTool(nil, radius), NewDirectionsTool(nil, mode), err
	}
	return NewPlaceSearchTool(client, radius), NewDirectionsTool(client, mode), nil
}

// ---------------------------- Place search -----------------------------------

// PlaceSearchTool looks up venues and points of interest.
type PlaceSearchTool struct {
	backend PlacesBackend
	radius  uint
}

// NewPlaceSearchTool wraps backend; nil disables the tool.
func NewPlaceSearchTool(backend PlacesBackend, radius uint) *PlaceSearchTool {
	if radius == 0 {
		radius = DefaultPlaceRadius
	}
	return &PlaceSearchTool{backend: backend, radius: radius}
}

func (t *PlaceSearchTool) Spec() Spec {
	return Spec{
		Name:        NamePlaceSearch,
		Description: "Finds detailed information about places such as restaurants, hotels and points of interest.",
		Enabled:     t.backend != nil,
	}
}

func (t *PlaceSearchTool) Invoke(ctx context.Context, req Request) Response {
	r, isPlace := req.(PlaceSearchRequest)
	if !isPlace {
		return badRequest(NamePlaceSearch, req)
	}
	if t.backend == nil {
		return missing(mapsMissingMessage)
	}

	resp, err := t.backend.TextSearch(ctx, t.searchRequest(r))
	if err != nil {
		return failed(fmt.Sprintf("Error searching places in Google Maps: %v", err))
	}
	if len(resp.Results) == 0 {
		return empty("No places found for the search.")
	}
	return ok(FormatPlaces(resp.Results))
}

func (t *PlaceSearchTool) searchRequest(r PlaceSearchRequest) *maps.TextSearchRequest {
	req := &maps.TextSearchRequest{Query: strings.TrimSpace(r.Query)}
	loc := strings.TrimSpace(r.Location)
	if loc == "" {
		return req
	}
	if ll, err := maps.ParseLatLng(loc); err == nil {
		radius := r.Radius
		if radius == 0 {
			radius = t.radius
		}
		req.Location = &ll
		req.Radius = radius
		return req
	}
	if !strings.Contains(strings.ToLower(req.Query), strings.ToLower(loc)) {
		req.Query = strings.TrimSpace(req.Query + " " + loc)
	}
	return req
}

// FormatPlaces renders at most three places, each terminated by a separator line.
func FormatPlaces(results []maps.PlacesSearchResult) string {
	if len(results) > maxPlaces {
		results = results[:maxPlaces]
	}
	entries := make([]string, 0, len(results))
	for _, p := range results {
		entries = append(entries, fmt.Sprintf(
			"Name: %s\nAddress: %s\nRating: %s/5\nOpen now: %s\n%s",
			orNA(p.Name), orNA(p.FormattedAddress), formatRating(p.Rating), openStatus(p.OpeningHours), placeSeparator,
		))
	}
	return "Search results:\n" + strings.Join(entries, "\n")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func formatRating(r float32) string {
	if r <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", r)
}

func openStatus(h *maps.OpeningHours) string {
	if h == nil || h.OpenNow == nil {
		return "Unknown"
	}
	if *h.OpenNow {
		return "Yes"
	}
	return "No"
}

// ---------------------------- Directions -------------------------------------

// DirectionsTool computes distance and travel time between two places.
type DirectionsTool struct {
	backend DirectionsBackend
	mode    string
}

// NewDirectionsTool wraps backend; nil disables the tool.
func NewDirectionsTool(backend DirectionsBackend, mode string) *DirectionsTool {
	if strings.TrimSpace(mode) == "" {
		mode = DefaultTravelMode
	}
	return &DirectionsTool{backend: backend, mode: mode}
}

func (t *DirectionsTool) Spec() Spec {
	return Spec{
		Name:        NameDirections,
		Description: "Calculates distance, travel time and the route between two locations.",
		Enabled:     t.backend != nil,
	}
}

func (t *DirectionsTool) Invoke(ctx context.Context, req Request) Response {
	r, isDirections := req.(DirectionsRequest)
	if !isDirections {
		return badRequest(NameDirections, req)
	}
	if t.backend == nil {
		return missing(mapsMissingMessage)
	}

	mode := strings.ToLower(strings.TrimSpace(r.Mode))
	if mode == "" {
		mode = t.mode
	}
	routes, _, err := t.backend.Directions(ctx, &maps.DirectionsRequest{
		Origin:      r.Origin,
		Destination: r.Destination,
		Mode:        maps.Mode(mode),
	})
	if err != nil {
		return failed(fmt.Sprintf("Error getting directions from Google Maps: %v", err))
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 || routes[0].Legs[0] == nil {
		return empty("No route found.")
	}
	return ok(FormatRoute(routes[0]))
}

// FormatRoute summarises the first leg of route.
func FormatRoute(route maps.Route) string {
	leg := route.Legs[0]
	summary := route.Summary
	if strings.TrimSpace(summary) == "" {
		summary = "N/A"
	}
	return fmt.Sprintf("Route: %s. Distance: %s. Duration: %s.",
		summary, orNA(leg.Distance.HumanReadable), humanDuration(leg.Duration))
}

// humanDuration mirrors the Maps "1 hour 5 mins" style.
func humanDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d <= 0 {
		return "less than a minute"
	}
	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	mins := int(d/time.Minute) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if mins > 0 && days == 0 {
		parts = append(parts, plural(mins, "min"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
