package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Japanese

	message.SetString(lang, keyReminderTitle, "まもなく: %s")
	message.SetString(lang, keyReminderBody, "%sは%sに%sで始まります。")
	message.SetString(lang, keyReminderBodyDirections, "%sは%sに始まります。タップして%sへの経路を表示。")
	message.SetString(lang, keyLeaveByTitle, "%sへ出発する時間です")
	message.SetString(lang, keyLeaveByBody, "%sまでに出発すると%sに間に合います。移動時間は約%d分です。")
	message.SetString(lang, keyDelayTitle, "%sへの移動に遅れ")
	message.SetString(lang, keyDelayBody, "%sへの移動が%d分遅れています。")
	message.SetString(lang, keyDelayBodyRoutes, "%sへの移動が%d分遅れています。別のルートを確認してください。")
	message.SetString(lang, keyPartnerShareTitle, "旅行が共有されました")
	message.SetString(lang, keyPartnerShareBody, "%sが共有されました。")
	message.SetString(lang, keyPartnerUpdateTitle, "旅行が更新されました")
	message.SetString(lang, keyPartnerUpdateBody, "%sに変更があります。")
	message.SetString(lang, keyPartnerBookingTitle, "新しい予約")
	message.SetString(lang, keyPartnerBookingBody, "%sが予約されました。")
	message.SetString(lang, keyGenericTitle, "お知らせ")
	message.SetString(lang, keyGenericBody, "新しいお知らせがあります。")
}
