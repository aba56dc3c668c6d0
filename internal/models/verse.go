// Package models defines the verse, query and response types shared across packages.
package models

import "fmt"

// Verse is one corpus record. It is immutable once the corpus is loaded.
type Verse struct {
	ID             string `json:"id"`
	Chapter        int    `json:"chapter"`
	Verse          int    `json:"verse"`
	OriginalText   string `json:"sanskrit"`
	DisplayMeaning string `json:"meaning"`
	SearchMeaning  string `json:"meaning_english"`
	SearchableText string `json:"-"`
}

// VerseID formats a chapter and verse number as "<chapter>.<verse>".
func VerseID(chapter, verse int) string {
	return fmt.Sprintf("%d.%d", chapter, verse)
}

// ConversationTurn is one question/answer pair of caller-owned history.
type ConversationTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
