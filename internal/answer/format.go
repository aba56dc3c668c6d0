package answer

import (
	"fmt"
	"strings"

	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/pkg/utils"
)

const (
	fallbackVerses       = 3
	fallbackMeaningRunes = 100
	resultMeaningRunes   = 200
)

// FormatAnswer renders an answer response for a terminal: the message when one was generated,
// otherwise an apology followed by the top related verses.
func FormatAnswer(resp *models.AnswerResponse) string {
	var out []string
	if resp.GenerationUsed && resp.Answer != nil && *resp.Answer != "" {
		out = append(out, "\n🪈 भगवान कृष्ण का संदेश:\n", *resp.Answer, "\n")
		return strings.Join(out, "\n")
	}
	out = append(out, "\n⚠️ क्षमा करें, मैं अभी उत्तर देने में असमर्थ हूँ।", "संबंधित श्लोक:")
	for i, v := range resp.Verses {
		if i == fallbackVerses {
			break
		}
		out = append(out, fmt.Sprintf("- गीता %s: %s", v.ID, utils.Preview(v.DisplayMeaning, fallbackMeaningRunes)))
	}
	out = append(out, "\n")
	return strings.Join(out, "\n")
}

// FormatResults renders ranked verses as a numbered list with the first 200 runes of each meaning.
func FormatResults(q string, verses []*models.Verse) string {
	out := []string{fmt.Sprintf("\nSearch Results for: '%s'", q), strings.Repeat("-", 70)}
	for i, v := range verses {
		meaning := v.DisplayMeaning
		if meaning == "" {
			meaning = "No meaning available"
		}
		meaning = strings.ReplaceAll(utils.Head(meaning, resultMeaningRunes), "\n", " ")
		out = append(out, fmt.Sprintf("%d. Gita %s", i+1, v.ID), "   "+meaning+"...", "")
	}
	return strings.Join(out, "\n")
}
