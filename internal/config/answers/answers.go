package answers

const (
	Start = "Hi! I keep track of your class attendance against the timetable. " +
		"Commands – /help."

	Help = "/status – attendance per subject;\n" +
		"/overall – overall attendance;\n" +
		"/present Subject – mark a class attended;\n" +
		"/absent Subject – mark a class missed;\n" +
		"/day [date] – classes on a date (today by default);\n" +
		"/markday [date] present|absent – mark every class of a day;\n" +
		"/reset – clear all records."

	BotError         = "Something went wrong, please try again later."
	Default          = "I did not get that. See /help."
	SubjectNoEntered = "Name the subject, for example: /present Maths"
	SubjectUnknown   = "There is no such subject in the timetable."
	DateIncorrect    = "I could not read the date. Use YYYY-MM-DD, today, yesterday or tomorrow."
	MarkDayForm      = "Use: /markday [date] present|absent"
	ResetConfirm     = "This clears every record. Send /reset yes to confirm."
	ResetDone        = "All attendance records are cleared."
	ChooseSubject    = "Choose a subject:"
)
