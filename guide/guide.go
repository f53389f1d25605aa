package guide

import (
	"time"

	"github.com/kbukum/guidegen/geocode"
)

// Request is a guide generation request.
type Request struct {
	Prompt      string `json:"prompt" validate:"required,max=2000"`
	Destination string `json:"destination,omitempty" validate:"max=256"`
	// StartDate is the first day of the stay as YYYY-MM-DD.
	StartDate string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Days      int    `json:"days,omitempty" validate:"gte=0,lte=30"`
}

// Analysis is what the analyze step extracts from a request.
type Analysis struct {
	Destination string    `json:"destination"`
	Places      []string  `json:"places"`
	StartDate   time.Time `json:"startDate,omitzero"`
	Days        int       `json:"days"`
}

// Place is a point of interest with its resolved location, if any.
type Place struct {
	Name     string          `json:"name"`
	Location *geocode.Result `json:"location"`
}

// Day is one day of the itinerary.
type Day struct {
	Day        int      `json:"day"`
	Date       string   `json:"date,omitempty"`
	Title      string   `json:"title"`
	Activities []string `json:"activities"`
}

// TravelGuide is the artifact a run produces.
type TravelGuide struct {
	ID          string          `json:"id,omitempty"`
	RunID       string          `json:"runId,omitempty"`
	Title       string          `json:"title"`
	Destination string          `json:"destination"`
	Location    *geocode.Result `json:"location"`
	Summary     string          `json:"summary"`
	Weather     string          `json:"weather,omitempty"`
	Itinerary   []Day           `json:"itinerary"`
	Places      []Place         `json:"pointsOfInterest"`
	Tips        []string        `json:"tips,omitempty"`
	Generator   string          `json:"generator"`
	Prompt      string          `json:"prompt"`
	CreatedAt   time.Time       `json:"createdAt,omitzero"`
}

// Summary is the listing form of a stored guide.
type Summary struct {
	ID          string    `json:"id"`
	RunID       string    `json:"runId,omitempty"`
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	Generator   string    `json:"generator"`
	CreatedAt   time.Time `json:"createdAt"`
}
