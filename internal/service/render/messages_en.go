package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, keyReminderTitle, "Upcoming: %s")
	message.SetString(lang, keyReminderBody, "%s starts at %s at %s.")
	message.SetString(lang, keyReminderBodyDirections, "%s starts at %s. Tap for directions to %s.")
	message.SetString(lang, keyLeaveByTitle, "Time to leave for %s")
	message.SetString(lang, keyLeaveByBody, "Leave by %s to reach %s. Travel takes about %d min.")
	message.SetString(lang, keyDelayTitle, "Delay on the way to %s")
	message.SetString(lang, keyDelayBody, "Your trip to %s is running %d min late.")
	message.SetString(lang, keyDelayBodyRoutes, "Your trip to %s is running %d min late. Check alternative routes.")
	message.SetString(lang, keyPartnerShareTitle, "Trip shared")
	message.SetString(lang, keyPartnerShareBody, "%s was shared with you.")
	message.SetString(lang, keyPartnerUpdateTitle, "Trip updated")
	message.SetString(lang, keyPartnerUpdateBody, "%s has new changes.")
	message.SetString(lang, keyPartnerBookingTitle, "New booking")
	message.SetString(lang, keyPartnerBookingBody, "%s was booked.")
	message.SetString(lang, keyGenericTitle, defaultGenericTitle)
	message.SetString(lang, keyGenericBody, defaultGenericBody)
}
