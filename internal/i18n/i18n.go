// Package i18n picks the page language and holds the page texts.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Supported lists the languages with a catalog, default first.
var Supported = []language.Tag{language.English, language.Polish, language.German}

var matcher = language.NewMatcher(Supported)

// Negotiate returns the first entry of a "|"-separated preference list that
// has a catalog, or siteLang when none does. Unparseable entries are skipped.
func Negotiate(langpref, siteLang string) string {
	for _, part := range strings.Split(langpref, "|") {
		if lang, ok := match(strings.TrimSpace(part)); ok {
			return lang
		}
	}
	if lang, ok := match(siteLang); ok {
		return lang
	}
	return Supported[0].String()
}

func match(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return "", false
	}
	return Supported[idx].String(), true
}

// Messages is the text of the authorize pages in one language.
type Messages struct {
	Lang string

	ExpiredTitle string
	ExpiredBody  string

	ConsentTitle    string
	ConsentQuestion string
	ConsentNote     string
	Allow           string
	Deny            string

	VerifierTitle string
	VerifierBody  string

	FailureTitle string
	FailureBody  string

	LanguageLabel string
}

var catalog = map[string]Messages{
	"en": {
		Lang:            "en",
		ExpiredTitle:    "Expired request",
		ExpiredBody:     "This authorization request has expired or was already used. Go back to the application and start again.",
		ConsentTitle:    "Authorization form",
		ConsentQuestion: "%s wants to access your %s account. Do you agree to grant access to this application?",
		ConsentNote:     "Once permission is granted it is valid until its withdrawal.",
		Allow:           "I agree",
		Deny:            "Decline",
		VerifierTitle:   "Access granted",
		VerifierBody:    "Enter this PIN code in the application you are authorizing:",
		FailureTitle:    "Something went wrong",
		FailureBody:     "We could not process your request. Please try again later.",
		LanguageLabel:   "Language",
	},
	"pl": {
		Lang:            "pl",
		ExpiredTitle:    "Wygasłe żądanie",
		ExpiredBody:     "To żądanie autoryzacji wygasło lub zostało już użyte. Wróć do aplikacji i spróbuj ponownie.",
		ConsentTitle:    "Formularz autoryzacji",
		ConsentQuestion: "Aplikacja %s chce uzyskać dostęp do Twojego konta %s. Czy zgadzasz się udzielić jej dostępu?",
		ConsentNote:     "Udzielona zgoda obowiązuje aż do jej wycofania.",
		Allow:           "Zgadzam się",
		Deny:            "Odmawiam",
		VerifierTitle:   "Dostęp przyznany",
		VerifierBody:    "Wpisz ten kod PIN w autoryzowanej aplikacji:",
		FailureTitle:    "Wystąpił błąd",
		FailureBody:     "Nie udało się przetworzyć żądania. Spróbuj ponownie później.",
		LanguageLabel:   "Język",
	},
	"de": {
		Lang:            "de",
		ExpiredTitle:    "Abgelaufene Anfrage",
		ExpiredBody:     "Diese Autorisierungsanfrage ist abgelaufen oder wurde bereits verwendet. Kehre zur Anwendung zurück und beginne erneut.",
		ConsentTitle:    "Autorisierung",
		ConsentQuestion: "%s möchte auf dein %s-Konto zugreifen. Möchtest du dieser Anwendung Zugriff gewähren?",
		ConsentNote:     "Die Zustimmung gilt, bis sie widerrufen wird.",
		Allow:           "Zustimmen",
		Deny:            "Ablehnen",
		VerifierTitle:   "Zugriff gewährt",
		VerifierBody:    "Gib diesen PIN-Code in der Anwendung ein, die du autorisierst:",
		FailureTitle:    "Etwas ist schiefgelaufen",
		FailureBody:     "Deine Anfrage konnte nicht verarbeitet werden. Bitte versuche es später erneut.",
		LanguageLabel:   "Sprache",
	},
}

// For returns the catalog for lang, falling back to English.
func For(lang string) Messages {
	if m, ok := catalog[lang]; ok {
		return m
	}
	return catalog[Supported[0].String()]
}
