package render

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

const (
	keyReminderTitle          = "departure.reminder.title"
	keyReminderBody           = "departure.reminder.body"
	keyReminderBodyDirections = "departure.reminder.body_directions"
	keyLeaveByTitle           = "departure.leave_by.title"
	keyLeaveByBody            = "departure.leave_by.body"
	keyDelayTitle             = "departure.delay.title"
	keyDelayBody              = "departure.delay.body"
	keyDelayBodyRoutes        = "departure.delay.body_routes"
	keyPartnerShareTitle      = "partner.share.title"
	keyPartnerShareBody       = "partner.share.body"
	keyPartnerUpdateTitle     = "partner.update.title"
	keyPartnerUpdateBody      = "partner.update.body"
	keyPartnerBookingTitle    = "partner.booking.title"
	keyPartnerBookingBody     = "partner.booking.body"
	keyGenericTitle           = "notification.generic.title"
	keyGenericBody            = "notification.generic.body"

	defaultGenericTitle = "Notification"
	defaultGenericBody  = "You have a new notification."

	clockLayout = "15:04"
)

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Input carries what the copy of one notification is built from.
type Input struct {
	Kind          domain.NotificationKind
	Timing        domain.ReminderTiming
	Event         domain.DepartureEvent
	LeaveByTime   time.Time
	TravelMinutes int
	DelayMinutes  int
}

type Output struct {
	Title string
	Body  string
}

type Renderer struct {
	defaultLoc *time.Location
}

func NewRenderer(defaultLoc *time.Location) *Renderer {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &Renderer{
		defaultLoc: defaultLoc,
	}
}

// Printer returns the message printer for locale, falling back to English.
func Printer(locale string) *message.Printer {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return message.NewPrinter(language.English)
	}
	_, idx, _ := matcher.Match(tag)
	return message.NewPrinter(supported[idx])
}

// Render localizes in for the snapshot's locale and timezone.
func (r *Renderer) Render(in Input, prefs domain.NotificationPreferences) Output {
	return r.RenderWith(Printer(prefs.Locale), in, prefs)
}

func (r *Renderer) RenderWith(loc Localizer, in Input, prefs domain.NotificationPreferences) Output {
	tz := prefs.Location(r.defaultLoc)
	title := in.Event.Title

	switch in.Kind {
	case domain.KindActivityReminder:
		clock := in.Event.EventTime.In(tz).Format(clockLayout)
		bodyKey := keyReminderBody
		if prefs.ActivityReminders.IncludeDirectionsDefault {
			bodyKey = keyReminderBodyDirections
		}
		return output(loc, keyReminderTitle, []any{title}, bodyKey, []any{title, clock, in.Event.Location})

	case domain.KindTravelAlert:
		if in.DelayMinutes > 0 {
			bodyKey := keyDelayBody
			if prefs.TravelAlerts.ShowAlternativeRoutes {
				bodyKey = keyDelayBodyRoutes
			}
			return output(loc, keyDelayTitle, []any{title}, bodyKey, []any{title, in.DelayMinutes})
		}
		clock := in.LeaveByTime.In(tz).Format(clockLayout)
		return output(loc, keyLeaveByTitle, []any{title}, keyLeaveByBody, []any{clock, in.Event.Location, in.TravelMinutes})

	case domain.KindPartnerShare:
		return output(loc, keyPartnerShareTitle, nil, keyPartnerShareBody, []any{tripLabel(in.Event)})
	case domain.KindPartnerUpdate:
		return output(loc, keyPartnerUpdateTitle, nil, keyPartnerUpdateBody, []any{tripLabel(in.Event)})
	case domain.KindPartnerBooking:
		return output(loc, keyPartnerBookingTitle, nil, keyPartnerBookingBody, []any{title})
	}

	return genericOutput(loc)
}

func output(loc Localizer, titleKey string, titleArgs []any, bodyKey string, bodyArgs []any) Output {
	t := localize(loc, titleKey, titleArgs...)
	b := localize(loc, bodyKey, bodyArgs...)
	if t == titleKey || b == bodyKey {
		return genericOutput(loc)
	}
	return Output{Title: t, Body: b}
}

func genericOutput(loc Localizer) Output {
	return Output{
		Title: localizeWithFallback(loc, keyGenericTitle, defaultGenericTitle),
		Body:  localizeWithFallback(loc, keyGenericBody, defaultGenericBody),
	}
}

func tripLabel(event domain.DepartureEvent) string {
	if event.TripName != "" {
		return event.TripName
	}
	return event.Title
}

func localize(loc Localizer, key string, args ...any) string {
	if loc == nil {
		return key
	}
	return loc.Sprintf(key, args...)
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := strings.TrimSpace(localize(loc, key))
	if value == "" || value == key {
		return fallback
	}
	return value
}
