package events

import "strings"

// Event is an AI event as shown to users. Fields are not validated and may
// hold placeholder text such as "Date not specified".
type Event struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Location    string   `json:"location"`
	URL         string   `json:"url,omitempty"`
	Keywords    []string `json:"keywords"`

	// Seed catalogue extras.
	City      string `json:"city,omitempty"`
	Attendees int    `json:"attendees,omitempty"`
}

// AllCities is the city filter value meaning "no filter".
const AllCities = "all"

// DeslugCity turns a city slug such as "new-york" into "new york".
func DeslugCity(city string) string {
	return strings.ReplaceAll(strings.TrimSpace(city), "-", " ")
}

// CityFilterActive reports whether city restricts a search.
func CityFilterActive(city string) bool {
	c := strings.TrimSpace(city)
	return c != "" && !strings.EqualFold(c, AllCities)
}
