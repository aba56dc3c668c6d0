// Package e2e provides end-to-end tests over a small verse corpus written to disk.
package e2e

import (
	"encoding/json"
	"strconv"
)

// E2EVerse is a verse entry in the E2E corpus.
type E2EVerse struct {
	Chapter        int
	Verse          int
	Text           string
	Meaning        string
	MeaningEnglish string
}

// ID returns the "<chapter>.<verse>" identifier.
func (v E2EVerse) ID() string {
	return strconv.Itoa(v.Chapter) + "." + strconv.Itoa(v.Verse)
}

// QueryTestCase defines a query and the verse ids of which at least one must appear in the top results.
type QueryTestCase struct {
	Query            string
	ExpectedVerseIDs []string
	Description      string
}

// Corpus holds verses and query test cases for E2E tests.
type Corpus struct {
	Verses       []E2EVerse
	TestCases    []QueryTestCase
	TotalVerses  int
	TotalQueries int
}

// BuildCorpus returns a corpus of verses referenced by the built-in keyword tables, plus narrator
// verses that should never outrank them.
func BuildCorpus() *Corpus {
	verses := []E2EVerse{
		{1, 1, "धृतराष्ट्र उवाच धर्मक्षेत्रे कुरुक्षेत्रे समवेता युयुत्सवः", "धृतराष्ट्र ने कहा", "Dhritarashtra said: assembled on the field of dharma"},
		{1, 28, "अर्जुन उवाच दृष्ट्वेमं स्वजनं कृष्ण", "अर्जुन ने कहा", "Arjuna said: seeing my own kinsmen eager for battle"},
		{2, 3, "क्लैब्यं मा स्म गमः पार्थ", "हे पार्थ, नपुंसकता को मत प्राप्त हो", "Do not yield to unmanliness, arise and fight"},
		{2, 7, "कार्पण्यदोषोपहतस्वभावः", "मैं कर्तव्य के विषय में मोहित हूँ", "My mind is confused about my duty, instruct me"},
		{2, 14, "मात्रास्पर्शास्तु कौन्तेय शीतोष्णसुखदुःखदाः", "सुख दुःख आते जाते हैं, उन्हें सहन करो", "Pleasure and pain come and go, endure them patiently"},
		{2, 20, "न जायते म्रियते वा कदाचिन्", "आत्मा न जन्म लेती है न मरती है", "The soul is never born and never dies"},
		{2, 47, "कर्मण्येवाधिकारस्ते मा फलेषु कदाचन", "तुम्हारा अधिकार केवल कर्म पर है, फल पर नहीं", "You have a right to your work alone, never to its fruits"},
		{2, 48, "योगस्थः कुरु कर्माणि सङ्गं त्यक्त्वा धनञ्जय", "आसक्ति छोड़कर योग में स्थित होकर कर्म करो", "Perform action established in yoga, abandoning attachment"},
		{2, 62, "ध्यायतो विषयान्पुंसः सङ्गस्तेषूपजायते", "विषयों के चिंतन से आसक्ति और काम उत्पन्न होता है", "Dwelling on objects breeds attachment, from attachment desire"},
		{2, 63, "क्रोधाद्भवति सम्मोहः", "क्रोध से मोह उत्पन्न होता है", "From anger comes delusion and loss of memory"},
		{3, 8, "नियतं कुरु कर्म त्वं कर्म ज्यायो ह्यकर्मणः", "अपना नियत कर्म करो", "Do your prescribed duty, action is better than inaction"},
		{6, 5, "उद्धरेदात्मनात्मानं नात्मानमवसादयेत्", "अपने द्वारा अपना उद्धार करो", "Lift yourself by your own mind, do not degrade yourself"},
		{6, 26, "यतो यतो निश्चरति मनश्चञ्चलमस्थिरम्", "चंचल मन को वश में करो", "Wherever the restless mind wanders, bring it back"},
		{18, 66, "सर्वधर्मान्परित्यज्य मामेकं शरणं व्रज", "सब धर्मों को छोड़कर मेरी शरण में आओ, शोक मत करो", "Abandon all duties and take refuge in me, do not grieve"},
	}
	cases := []QueryTestCase{
		{"I lost my job", []string{"2.47", "2.48", "3.8"}, "job loss hits curated work verses"},
		{"I am so hopeless about everything", []string{"18.66"}, "hopelessness hits surrender verse"},
		{"anxiety before my exam", []string{"2.14", "6.26", "2.47"}, "exam anxiety"},
		{"why do I feel so much anger", []string{"2.63"}, "anger"},
		{"my heart is broken after the breakup", []string{"2.62", "2.63"}, "breakup"},
		{"I am confused about my duty", []string{"2.7"}, "confusion about duty"},
		{"what is dharma and duty in life", []string{"2.7", "3.8", "18.66"}, "concept overlap on duty"},
	}
	return &Corpus{
		Verses:       verses,
		TestCases:    cases,
		TotalVerses:  len(verses),
		TotalQueries: len(cases),
	}
}

type rawVerse struct {
	Text           string `json:"text"`
	Meaning        string `json:"meaning"`
	MeaningEnglish string `json:"meaning_english,omitempty"`
}

// JSON renders the corpus in the on-disk verse file format, chapters keyed by number.
func (c *Corpus) JSON() ([]byte, error) {
	chapters := make(map[string]map[string]rawVerse)
	for _, v := range c.Verses {
		ch := strconv.Itoa(v.Chapter)
		if chapters[ch] == nil {
			chapters[ch] = make(map[string]rawVerse)
		}
		chapters[ch][strconv.Itoa(v.Verse)] = rawVerse{Text: v.Text, Meaning: v.Meaning, MeaningEnglish: v.MeaningEnglish}
	}
	return json.MarshalIndent(map[string]interface{}{"chapters": chapters}, "", "  ")
}

// Find returns the verse with the given id.
func (c *Corpus) Find(id string) (E2EVerse, bool) {
	for _, v := range c.Verses {
		if v.ID() == id {
			return v, true
		}
	}
	return E2EVerse{}, false
}
