// Package corpus loads the verse corpus and provides ordered, read-only access to it.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperjump/sakha/internal/models"
)

// Corpus is the ordered, immutable verse list plus an id index.
type Corpus struct {
	verses []*models.Verse
	byID   map[string]int
}

type rawVerse struct {
	Text           string `json:"text"`
	Meaning        string `json:"meaning"`
	MeaningHindi   string `json:"meaning_hindi"`
	MeaningEnglish string `json:"meaning_english"`
}

type rawCorpus struct {
	Chapters map[string]map[string]rawVerse `json:"chapters"`
}

// Load reads the corpus JSON at path. A missing or malformed file is a ResourceMissing error.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.ResourceError("corpus "+path, err)
	}
	return Parse(data)
}

// Parse decodes corpus JSON shaped as chapters -> verse -> record.
// Verses are ordered numerically by chapter, then verse.
func Parse(data []byte) (*Corpus, error) {
	var raw rawCorpus
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, models.ResourceError("corpus json", err)
	}
	verses := make([]*models.Verse, 0)
	for cKey, chapter := range raw.Chapters {
		c, err := strconv.Atoi(strings.TrimSpace(cKey))
		if err != nil || c <= 0 {
			return nil, models.ResourceError(fmt.Sprintf("chapter key %q", cKey), err)
		}
		for vKey, rv := range chapter {
			v, err := strconv.Atoi(strings.TrimSpace(vKey))
			if err != nil || v <= 0 {
				return nil, models.ResourceError(fmt.Sprintf("verse key %q in chapter %d", vKey, c), err)
			}
			verses = append(verses, newVerse(c, v, rv))
		}
	}
	sort.Slice(verses, func(i, j int) bool {
		if verses[i].Chapter != verses[j].Chapter {
			return verses[i].Chapter < verses[j].Chapter
		}
		return verses[i].Verse < verses[j].Verse
	})
	return New(verses)
}

func newVerse(chapter, verse int, rv rawVerse) *models.Verse {
	display := rv.MeaningHindi
	if display == "" {
		display = rv.Meaning
	}
	search := rv.MeaningEnglish
	if search == "" {
		search = display
	}
	return &models.Verse{
		ID:             models.VerseID(chapter, verse),
		Chapter:        chapter,
		Verse:          verse,
		OriginalText:   rv.Text,
		DisplayMeaning: display,
		SearchMeaning:  search,
	}
}

// New builds a corpus from verses in the given order, deriving SearchableText.
// It rejects duplicate ids and records with no text at all.
func New(verses []*models.Verse) (*Corpus, error) {
	if len(verses) == 0 {
		return nil, models.ResourceError("corpus is empty", nil)
	}
	c := &Corpus{verses: verses, byID: make(map[string]int, len(verses))}
	for i, v := range verses {
		if v.ID == "" {
			v.ID = models.VerseID(v.Chapter, v.Verse)
		}
		if _, dup := c.byID[v.ID]; dup {
			return nil, models.ResourceError("duplicate verse id "+v.ID, nil)
		}
		if v.SearchMeaning == "" {
			v.SearchMeaning = v.DisplayMeaning
		}
		v.SearchableText = strings.ToLower(v.SearchMeaning + " " + v.OriginalText)
		if strings.TrimSpace(v.SearchableText) == "" {
			return nil, models.ResourceError("verse "+v.ID+" has no text", nil)
		}
		c.byID[v.ID] = i
	}
	return c, nil
}

// Len returns the number of verses.
func (c *Corpus) Len() int { return len(c.verses) }

// At returns the verse at corpus index i.
func (c *Corpus) At(i int) *models.Verse { return c.verses[i] }

// Verses returns the ordered verse slice. Callers must not modify it.
func (c *Corpus) Verses() []*models.Verse { return c.verses }

// Index returns the corpus index of id.
func (c *Corpus) Index(id string) (int, bool) {
	i, ok := c.byID[id]
	return i, ok
}

// Get returns the verse with the given id.
func (c *Corpus) Get(id string) (*models.Verse, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return c.verses[i], true
}

// SearchTexts returns each verse's search meaning in corpus order, the input used to build embeddings.
func (c *Corpus) SearchTexts() []string {
	out := make([]string, len(c.verses))
	for i, v := range c.verses {
		out[i] = v.SearchMeaning
	}
	return out
}
