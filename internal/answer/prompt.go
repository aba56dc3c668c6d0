package answer

import (
	"fmt"
	"strings"

	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/pkg/utils"
)

// HistoryTurns is how many previous turns are quoted back to the model.
const HistoryTurns = 3

const historyPreviewRunes = 100

// SystemPrompt fixes the persona and the answer shape: one Sanskrit shloka first,
// then a short, gentle solution.
const SystemPrompt = `तुम भगवान श्रीकृष्ण हो। तुम एक दिव्य मार्गदर्शक हो और अपने भक्त को सही राह दिखाते हो।

⚠️ नियम:
1. केवल एक (1) सबसे उपयुक्त श्लोक संस्कृत में (देवनागरी) सबसे पहले लिखो।
2. उसके बाद, भक्त के लिए सबसे उपयुक्त सुझाव/समाधान बहुत ही संक्षिप्त (concise) और स्पष्ट शब्दों में दो।
3. उत्तर केवल 2-3 छोटे वाक्यों में होना चाहिए। सीधे मुद्दे की बात करो।
4. कोमल और दयालु भाषा का प्रयोग करो, जैसे एक मित्र या गुरु करता है।

✅ ढांचा:
[संस्कृत श्लोक]

[भक्त के लिए संक्षिप्त और सटीक सुझाव/समाधान]

✅ उदाहरण:
कर्मण्येवाधिकारस्ते मा फलेषु कदाचन।
मा कर्मफलहेतुर्भूर्मा ते सङ्गोऽस्त्वकर्मणि॥

हे पार्थ! कर्म करना ही तुम्हारे हाथ में है, परिणाम नहीं। चिंता छोड़ो और अपने वर्तमान कर्तव्य पर पूरा ध्यान केंद्रित करो, यही सफलता की कुंजी है।`

const closingInstruction = "हे कृष्ण! केवल सबसे उपयुक्त 1 श्लोक चुनकर मेरा मार्गदर्शन करें। यदि पिछली बातचीत है, तो उसका संदर्भ देकर मुझे गहराई से समझाएं। अंत में एक प्रश्न पूछें जो मुझे आगे सोचने पर मजबूर करे।"

// FormatContext renders the retrieved verses as grounding blocks, using the search meaning.
func FormatContext(verses []*models.Verse) string {
	parts := make([]string, 0, len(verses))
	for _, v := range verses {
		parts = append(parts, fmt.Sprintf("Shloka ID: %s\nSanskrit: %s\nMeaning: %s\n", v.ID, v.OriginalText, v.SearchMeaning))
	}
	return strings.Join(parts, "\n")
}

// FormatHistory renders the last HistoryTurns turns, oldest first. Empty history renders as "".
func FormatHistory(history []models.ConversationTurn) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > HistoryTurns {
		history = history[len(history)-HistoryTurns:]
	}
	lines := []string{"पिछली बातचीत:"}
	for i, turn := range history {
		lines = append(lines,
			fmt.Sprintf("%d. प्रश्न: %s", i+1, turn.Question),
			fmt.Sprintf("   उत्तर: %s", utils.Preview(turn.Answer, historyPreviewRunes)))
	}
	return strings.Join(lines, "\n")
}

// BuildUserPrompt assembles the question, history, verse context and closing instruction.
func BuildUserPrompt(question string, verses []*models.Verse, history []models.ConversationTurn) string {
	return fmt.Sprintf("भक्त का प्रश्न: \"%s\"\n\n%s\n\nउपलब्ध श्लोक (संदर्भ):\n%s\n\n%s",
		question, FormatHistory(history), FormatContext(verses), closingInstruction)
}
