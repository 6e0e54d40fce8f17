package forecast

import (
	"math"
	"strings"

	"github.com/ecocampmy/campsite-chat-service/internal/models"
)

// Summarize collapses 3-hour forecast points into at most 5 daily summaries.
// Points group by the date portion of the feed's dt_txt string; days appear in
// feed order. Each day's temperature is the mean across its points rounded to
// the nearest whole degree. The condition is the most frequent category label
// among the day's points; ties break toward the label seen first that day.
func Summarize(points []forecastPoint) []models.DayForecast {
	const maxDays = 5

	var order []string
	byDate := make(map[string][]forecastPoint)
	for _, p := range points {
		date := p.DtTxt
		if i := strings.IndexByte(date, ' '); i >= 0 {
			date = date[:i]
		}
		if date == "" {
			continue
		}
		if _, seen := byDate[date]; !seen {
			order = append(order, date)
		}
		byDate[date] = append(byDate[date], p)
	}
	if len(order) > maxDays {
		order = order[:maxDays]
	}

	days := make([]models.DayForecast, 0, len(order))
	for _, date := range order {
		pts := byDate[date]
		var sum float64
		counts := make(map[string]int)
		var firstSeen []string
		for _, p := range pts {
			sum += p.Main.Temp
			label := ""
			if len(p.Weather) > 0 {
				label = p.Weather[0].Main
			}
			if _, seen := counts[label]; !seen {
				firstSeen = append(firstSeen, label)
			}
			counts[label]++
		}
		best := ""
		bestCount := -1
		for _, label := range firstSeen {
			if counts[label] > bestCount {
				best = label
				bestCount = counts[label]
			}
		}
		days = append(days, models.DayForecast{
			Date:        date,
			Temperature: int(math.Round(sum / float64(len(pts)))),
			Condition:   best,
		})
	}
	return days
}
