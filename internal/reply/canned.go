package reply

import (
	"fmt"
	"strings"

	"github.com/ecocampmy/campsite-chat-service/internal/models"
)

// Apology is the single user-visible message for any unexpected failure.
const Apology = "Sorry, something went wrong on our side. Please try again in a moment."

// WeatherPrompt asks which campsite the user means when a weather request
// names none.
const WeatherPrompt = "I can check the 5-day outlook for any campsite. Which campsite would you like the weather for?"

// MultiStateRedirect is returned when a message names more than one state.
var MultiStateRedirect = "Looks like you're interested in campsites across several states. The " +
	link("Campsites", "/camp") + " page lets you browse and filter all of them on the map."

// PaidRedirect is returned when the fee preference resolves to paid.
var PaidRedirect = "For paid campsites with full facility details, head over to the " +
	link("Campsites", "/camp") + " page and use the fee filter there."

// NoMatches is returned when the filtered search finds nothing.
var NoMatches = "I couldn't find any campsites matching that. Try different keywords, or browse everything on the " +
	link("Campsites", "/camp") + " page."

// CampsiteDetail renders the deterministic reply for a directly named
// campsite, with the forecast inlined when available. A nil forecast means
// the outlook was unavailable and is silently omitted.
func CampsiteDetail(site models.CampSite, days []models.DayForecast) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** is a %s in %s.\n", site.Name, strings.ToLower(site.Type), site.State)
	if site.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", site.Address)
	}
	if site.OpeningHours != "" {
		fmt.Fprintf(&b, "Opening hours: %s\n", site.OpeningHours)
	}
	if site.Fees != "" {
		fmt.Fprintf(&b, "Fees: %s\n", site.Fees)
	}
	if site.ForestType != "" {
		fmt.Fprintf(&b, "Forest type: %s\n", site.ForestType)
	}
	if site.Tags != "" {
		fmt.Fprintf(&b, "Highlights: %s\n", site.Tags)
	}
	if len(days) > 0 {
		b.WriteString("\n5-day outlook:\n")
		for _, d := range days {
			fmt.Fprintf(&b, "- %s: %d°C, %s\n", d.Date, d.Temperature, d.Condition)
		}
	}
	fmt.Fprintf(&b, "\nSee it on the map: %s", link(site.Name, "/camp"))
	return b.String()
}

// Fallback is the canned response used when generation fails or returns
// empty text. Substring checks run in order: "camp", then "tips", then
// "forest insights"; the generic link menu is the last resort.
func Fallback(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "camp"):
		return "You can browse all eco-friendly campsites on the " + link("Campsites", "/camp") + " page, or let the " +
			link("Recommender", "/recommender") + " suggest one for you."
	case strings.Contains(lower, "tips"):
		return "Our " + link("Camping Guide", "/guide") + " covers preparation, safety, and leave-no-trace tips."
	case strings.Contains(lower, "forest insights"):
		return "You can explore deforestation trends across Malaysia on the " + link("Forest Insights", "/insights") + " page."
	}
	var b strings.Builder
	b.WriteString("Here's what I can help you with:\n")
	for _, p := range pages {
		fmt.Fprintf(&b, "- %s: %s\n", link(p.Label, p.Path), p.Purpose)
	}
	return b.String()
}
