package intent

import "regexp"

// Lexicon holds the keywords and patterns for one language.
type Lexicon struct {
	Name string

	// Keyword tiers, matched case-insensitively at word boundaries with an
	// optional plural ending.
	Information []string
	Place       []string
	Route       []string

	// RoutePattern also votes for directions ("from X to Y").
	RoutePattern *regexp.Regexp

	// PlacePattern captures a connector (group 1) and the location phrase
	// that follows it (group 2).
	PlacePattern *regexp.Regexp
	// DefaultSubject is used when nothing precedes the connector.
	DefaultSubject string
	// PlaceJoin links subject and location in the composite place query.
	PlaceJoin string

	// DirectionsPattern captures origin (group 1) and destination (group 2)
	// from a lower-cased message.
	DirectionsPattern *regexp.Regexp
	// OriginStopwords reject origin captures that start with a connector
	// word ("from time to time", "de la ciudad de ...").
	OriginStopwords []string
	// DestinationTail strips travel mode phrases trailing the destination.
	DestinationTail *regexp.Regexp

	// Modes lists travel mode cues in priority order.
	Modes []ModeCue

	// Clarification is returned when directions cannot be extracted.
	Clarification string
}

// ModeCue maps a phrase to a Maps travel mode.
type ModeCue struct {
	Phrase string
	Mode   string
}

// English is the default lexicon.
var English = Lexicon{
	Name:        "en",
	Information: []string{"news", "recent", "latest", "information", "info", "current events", "search", "look up"},
	Place: []string{
		"restaurant", "hotel", "place", "point of interest", "location", "map",
		"near", "around", "cafe", "coffee shop", "museum",
	},
	Route: []string{
		"route", "distance", "directions", "how to get", "how do i get", "how can i get",
		"how far", "get from", "travel time",
	},
	RoutePattern:      regexp.MustCompile(`(?:^|\s)from\s+\S+.*\s(?:to|until)\s+\S+`),
	PlacePattern:      regexp.MustCompile(`(?i)(?:^|\s)(near|in|around)\s+([^.?!]+)`),
	DefaultSubject:    "restaurants or places",
	PlaceJoin:         "in",
	DirectionsPattern: regexp.MustCompile(`(?:^|\s)from\s+(.+?)\s+(?:to|until)\s+([^.?!]+)`),
	OriginStopwords:   []string{"time", "now", "then", "here", "there", "today", "tomorrow", "me", "you"},
	DestinationTail:   regexp.MustCompile(`\s+(?:by|via|on foot|walking|driving)\b.*$`),
	Modes: []ModeCue{
		{"on foot", "walking"}, {"walking", "walking"}, {"walk", "walking"},
		{"bicycle", "bicycling"}, {"bike", "bicycling"}, {"cycling", "bicycling"},
		{"transit", "transit"}, {"bus", "transit"}, {"subway", "transit"}, {"metro", "transit"}, {"train", "transit"},
		{"driving", "driving"}, {"drive", "driving"}, {"car", "driving"},
	},
	Clarification: "I could not clearly identify the origin and destination. " +
		"Please phrase your question as 'How do I get from [origin] to [destination]?'",
}

// Spanish covers Latin American phrasing of the same questions.
var Spanish = Lexicon{
	Name:        "es",
	Information: []string{"noticia", "buscar", "información", "informacion", "reciente", "actualidad", "últimas", "ultimas"},
	Place: []string{
		"restaurante", "hotel", "lugar", "punto de interés", "punto de interes", "ubicación", "ubicacion",
		"mapa", "cerca de", "alrededor", "cafetería", "museo",
	},
	Route: []string{
		"ruta", "distancia", "dirección", "direccion", "como llegar", "cómo llegar", "ir de",
		"cuánto tarda", "cuanto tarda",
	},
	RoutePattern:      regexp.MustCompile(`(?:^|\s)de\s+\S+.*\s(?:a|hasta)\s+\S+`),
	PlacePattern:      regexp.MustCompile(`(?i)(?:^|\s)(cerca\s+de|en|alrededor\s+de)\s+([^.?!]+)`),
	DefaultSubject:    "restaurantes o lugares",
	PlaceJoin:         "en",
	DirectionsPattern: regexp.MustCompile(`(?:^|\s)de(?:sde)?\s+(.+?)\s+(?:a|hasta)\s+([^.?!]+)`),
	OriginStopwords:   []string{"la", "las", "un", "una", "vez", "nuevo", "hoy", "aquí", "aqui", "allí", "alli"},
	DestinationTail:   regexp.MustCompile(`\s+(?:en\s+(?:carro|coche|auto|bus|bicicleta|bici|metro|transporte)|a\s+pie|caminando|manejando)\b.*$`),
	Modes: []ModeCue{
		{"a pie", "walking"}, {"caminando", "walking"},
		{"en bicicleta", "bicycling"}, {"bici", "bicycling"},
		{"transporte público", "transit"}, {"transporte publico", "transit"}, {"bus", "transit"}, {"metro", "transit"},
		{"en carro", "driving"}, {"en coche", "driving"}, {"manejando", "driving"},
	},
	Clarification: "No pude identificar claramente el origen y destino. " +
		"Por favor, formula tu pregunta como '¿Cómo llegar de [origen] a [destino]?'",
}

// LexiconByName resolves "en"/"english" and "es"/"spanish".
func LexiconByName(name string) (Lexicon, bool) {
	switch name {
	case "en", "english":
		return English, true
	case "es", "spanish", "español":
		return Spanish, true
	default:
		return Lexicon{}, false
	}
}
