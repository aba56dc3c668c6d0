package query

import (
	"strings"
	"unicode"
)

// GreetingReply is returned instead of an answer when the query is only a greeting.
const GreetingReply = "राधे राधे! मैं श्री कृष्ण हूँ। कहिये, मैं आपकी क्या सहायता कर सकता हूँ?"

var greetings = toSet(
	// English
	"hi", "hello", "hey", "hii", "hiii", "helo", "heyy", "heya", "yo",
	"greetings", "good morning", "good afternoon", "good evening", "good night",
	"gm", "ge", "gn", "ga", "morning", "evening", "afternoon",
	// Romanized
	"namaste", "namaskar", "namaskaram", "pranam", "pranaam", "pranaams",
	"radhe radhe", "radhey radhey", "radhe", "radhey",
	"jai shri krishna", "jai shree krishna", "jai sri krishna",
	"hare krishna", "hare krsna", "krishna", "krsna",
	"jai", "jay", "om", "aum",
	// Devanagari
	"हेलो", "हेल्लो", "हाय", "हाई", "हलो",
	"नमस्ते", "नमस्कार", "नमस्कारम", "प्रणाम", "प्रनाम",
	"राधे राधे", "राधे", "राधेय राधेय",
	"जय श्री कृष्ण", "जय श्रीकृष्ण", "जय कृष्ण",
	"हरे कृष्ण", "हरे कृष्णा", "कृष्ण",
	"जय", "ओम", "ॐ",
	"सुप्रभात", "शुभ संध्या", "शुभ रात्रि",
	"कैसे हो", "कैसे हैं", "क्या हाल", "क्या हाल है",
	// Casual
	"sup", "wassup", "whatsup", "howdy", "hola",
	"kaise ho", "kaise hain", "kya haal", "kya hal", "namaskaar",
)

var phraseQuestionWords = toSet(
	"what", "how", "why", "who", "when", "where",
	"kya", "kyun", "kaise", "kab", "kahan", "kaun",
	"explain", "tell", "batao", "bataiye", "btao",
)

var openerQuestionWords = union(phraseQuestionWords, toSet(
	"is", "are", "can", "should", "would", "could",
))

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func union(a, b map[string]bool) map[string]bool {
	m := make(map[string]bool, len(a)+len(b))
	for w := range a {
		m[w] = true
	}
	for w := range b {
		m[w] = true
	}
	return m
}

func anyIn(words []string, set map[string]bool) bool {
	for _, w := range words {
		if set[w] {
			return true
		}
	}
	return false
}

// normalizeWords lower-cases q, drops punctuation and symbols, and splits on whitespace.
// Combining marks are kept so Devanagari vowel signs survive.
func normalizeWords(q string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || unicode.Is(unicode.M, r) {
			return r
		}
		return -1
	}, strings.ToLower(q))
	return strings.Fields(cleaned)
}

// IsGreeting reports whether q is a salutation with no real question attached.
func IsGreeting(q string) bool {
	words := normalizeWords(q)
	if len(words) == 0 {
		return false
	}

	if greetings[strings.Join(words, " ")] {
		return true
	}

	if len(words) >= 2 && greetings[words[0]+" "+words[1]] {
		if len(words) <= 3 || !anyIn(words, phraseQuestionWords) {
			return true
		}
	}

	if len(words) <= 3 {
		return anyIn(words, greetings)
	}

	if len(words) <= 6 && greetings[words[0]] && !anyIn(words, openerQuestionWords) {
		return true
	}
	return false
}
