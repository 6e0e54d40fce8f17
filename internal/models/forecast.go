package models

// DayForecast is one day of the aggregated 5-day outlook: the mean temperature
// across that day's forecast points rounded to the nearest whole degree, and
// the most frequent condition label among them.
type DayForecast struct {
	Date        string `json:"date"` // YYYY-MM-DD, as reported by the feed
	Temperature int    `json:"temperature"`
	Condition   string `json:"condition"`
}
