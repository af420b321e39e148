package booking

import (
	"time"

	ical "github.com/arran4/golang-ical"
)

const calendarProductID = "-//resource-booking-backend//bookings//EN"

// RenderICS serialises bookings as a VCALENDAR with one VEVENT per booking.
func RenderICS(bookings []*Booking, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(calendarProductID)

	for _, b := range bookings {
		event := cal.AddEvent(b.ID + "@resource-booking")
		event.SetDtStampTime(stamp)
		event.SetCreatedTime(b.CreatedAt)
		event.SetModifiedAt(b.UpdatedAt)
		event.SetStartAt(b.StartsAt)
		event.SetEndAt(b.EndsAt)
		event.SetSummary(b.Title)
		if b.Description != "" {
			event.SetDescription(b.Description)
		}
		if b.ResourceName != "" {
			event.SetLocation(b.ResourceName)
		}
		event.SetProperty(ical.ComponentPropertyStatus, icsStatus(b.Status))
	}
	return cal.Serialize()
}

func icsStatus(s Status) string {
	if s == StatusCancelled {
		return string(ical.ObjectStatusCancelled)
	}
	return string(ical.ObjectStatusConfirmed)
}
