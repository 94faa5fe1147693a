package command

const (
	commandPrayerTimes  = "مواقيت_الصلاة"
	commandTestReminder = "تجربة_التذكير"

	slashCommandPrayerTimesDescription  = "📿 مواقيت الصلاة في القدس الشريف"
	slashCommandTestReminderDescription = "🏓 تجربة تذكير الأذان قبل 5 دقائق"

	messagePrayerTimesTitle  = "** مواقيت الصلاة حسب مسجد الاقصى الشريف **"
	messagePrayerTimesFailed = "❌ حدث خطأ أثناء جلب مواقيت الصلاة. حاول مرة أخرى."

	messageEphemeralTestReminderStarted = "🕌 بدأ بث الأذان التجريبي في القنوات الصوتية المشغولة."
	messageEphemeralWrongGuild          = "⚠️ لا يمكن استخدام هذا الأمر في هذا الخادم."
	messageEphemeralUnknownCommand      = "⚠️ أمر غير معروف."

	prayerTimesFilename = "prayer-times.png"
)
