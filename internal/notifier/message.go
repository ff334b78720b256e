package notifier

import (
	"fmt"
	"strconv"
	"strings"

	"doctor-duty-notifier/internal/domain/entity"
)

const (
	alertTitle      = "🏥 Doctor Duty Starting Soon"
	maxPushBodyLine = 3
)

// Message is a single notification as understood by every transport.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// AlertMessage renders the per-doctor message sent to subscribed devices.
func AlertMessage(alert entity.UpcomingAlert) Message {
	return Message{
		Title: alertTitle,
		Body: fmt.Sprintf("%s (%s) duty starts in %d minutes",
			displayName(alert.DoctorName), alert.Category, alert.StartsInMinutes),
		Data: map[string]string{
			"doctor_name":       alert.DoctorName,
			"category":          string(alert.Category),
			"time_range":        alert.TimeRangeText,
			"starts_in_minutes": strconv.Itoa(alert.StartsInMinutes),
		},
	}
}

// DigestMessage summarises several alerts for broadcast channels.
func DigestMessage(alerts []entity.UpcomingAlert) Message {
	lines := make([]string, 0, maxPushBodyLine)
	for i, alert := range alerts {
		if i == maxPushBodyLine {
			break
		}
		lines = append(lines, fmt.Sprintf("• %s in %d min", displayName(alert.DoctorName), alert.StartsInMinutes))
	}
	return Message{
		Title: fmt.Sprintf("🏥 %d Doctor(s) Arriving Soon", len(alerts)),
		Body:  strings.Join(lines, "\n"),
	}
}

// displayName adds the "Dr. " title unless the name already carries it
// ("Dr. X", "Dr X", "dr.x"). Names that merely start with "dr" get it.
func displayName(name string) string {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "dr.") || strings.HasPrefix(lower, "dr ") {
		return name
	}
	return "Dr. " + name
}
