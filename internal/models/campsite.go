package models

// CampSite is a single campsite record as imported into the store.
// Records are read-only from the chatbot's perspective; Tags and Fees are
// free-text fields matched by substring, not parsed.
type CampSite struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	State        string   `json:"state"`
	Address      string   `json:"address"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	ForestType   string   `json:"forestType"`
	OpeningHours string   `json:"openingHours"`
	Fees         string   `json:"fees"`
	Tags         string   `json:"tags"`
	ImageURL     string   `json:"imageUrl"`
}

// HasCoordinates reports whether the record carries a usable lat/lon pair.
func (c CampSite) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// ChatMessage is one turn of the client-held conversation. The client forwards
// the most recent turns with each request; nothing is persisted server-side.
type ChatMessage struct {
	Sender string `json:"sender"` // "user" or "bot"
	Text   string `json:"text"`
}
