package rerank

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// BERT special token ids in the standard uncased vocabulary.
const (
	padID = 0
	unkID = 100
	clsID = 101
	sepID = 102

	defaultMaxTokens = 256
	hashVocabSize    = 30000
	maxWordRunes     = 100
)

// Tokenizer produces fixed-length BERT inputs for a (query, passage) pair.
// Segment A is the query (token type 0), segment B the passage (token type 1).
type Tokenizer interface {
	TokenizePair(query, passage string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// LoadTokenizer returns a WordPiece tokenizer from vocab.txt next to the model file,
// or a hash tokenizer when no vocabulary is present.
func LoadTokenizer(modelPath string) (Tokenizer, error) {
	vocabPath := filepath.Join(filepath.Dir(modelPath), "vocab.txt")
	if _, err := os.Stat(vocabPath); err != nil {
		return &HashTokenizer{}, nil
	}
	return LoadWordPiece(vocabPath)
}

// WordPiece is a greedy longest-match-first subword tokenizer over a BERT vocabulary.
type WordPiece struct {
	vocab map[string]int64
}

// LoadWordPiece reads a vocabulary with one token per line; the line number is the id.
func LoadWordPiece(path string) (*WordPiece, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocab: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(f)
	var id int64
	for scanner.Scan() {
		vocab[strings.TrimRight(scanner.Text(), "\r")] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocab: %w", err)
	}
	return NewWordPiece(vocab), nil
}

// NewWordPiece wraps an in-memory vocabulary.
func NewWordPiece(vocab map[string]int64) *WordPiece {
	return &WordPiece{vocab: vocab}
}

func (w *WordPiece) special(tok string, fallback int64) int64 {
	if id, ok := w.vocab[tok]; ok {
		return id
	}
	return fallback
}

// Tokens splits text into WordPiece ids without special tokens.
func (w *WordPiece) Tokens(text string) []int64 {
	unk := w.special("[UNK]", unkID)
	var ids []int64
	for _, word := range basicTokens(text) {
		runes := []rune(word)
		if len(runes) > maxWordRunes {
			ids = append(ids, unk)
			continue
		}
		var pieces []int64
		start := 0
		for start < len(runes) {
			end := len(runes)
			found := int64(-1)
			for end > start {
				sub := string(runes[start:end])
				if start > 0 {
					sub = "##" + sub
				}
				if id, ok := w.vocab[sub]; ok {
					found = id
					break
				}
				end--
			}
			if found < 0 {
				pieces = []int64{unk}
				break
			}
			pieces = append(pieces, found)
			start = end
		}
		ids = append(ids, pieces...)
	}
	return ids
}

// TokenizePair encodes [CLS] query [SEP] passage [SEP], truncating the passage first.
func (w *WordPiece) TokenizePair(query, passage string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	return packPair(w.Tokens(query), w.Tokens(passage), maxTokens,
		w.special("[CLS]", clsID), w.special("[SEP]", sepID), w.special("[PAD]", padID))
}

// HashTokenizer maps whole words to hashed ids. It keeps the model runnable without a vocabulary
// but scores are only meaningful with WordPiece.
type HashTokenizer struct{}

// TokenizePair encodes the pair with hashed word ids.
func (t *HashTokenizer) TokenizePair(query, passage string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	return packPair(hashIDs(query), hashIDs(passage), maxTokens, clsID, sepID, padID)
}

func hashIDs(text string) []int64 {
	words := basicTokens(text)
	ids := make([]int64, len(words))
	for i, word := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		// Skip the reserved range below 1000.
		ids[i] = int64(h.Sum32()%(hashVocabSize-1000)) + 1000
	}
	return ids
}

// packPair lays out the two segments into padded fixed-length arrays.
func packPair(a, b []int64, maxTokens int, cls, sep, pad int64) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	// Room for [CLS] and two [SEP].
	budget := maxTokens - 3
	if budget < 0 {
		budget = 0
	}
	for len(a)+len(b) > budget {
		if len(b) >= len(a) && len(b) > 0 {
			b = b[:len(b)-1]
		} else {
			a = a[:len(a)-1]
		}
	}

	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)
	for i := range inputIDs {
		inputIDs[i] = pad
	}

	pos := 0
	put := func(id, typ int64) {
		if pos >= maxTokens {
			return
		}
		inputIDs[pos] = id
		attentionMask[pos] = 1
		tokenTypeIDs[pos] = typ
		pos++
	}
	put(cls, 0)
	for _, id := range a {
		put(id, 0)
	}
	put(sep, 0)
	for _, id := range b {
		put(id, 1)
	}
	put(sep, 1)
	return inputIDs, attentionMask, tokenTypeIDs
}

// basicTokens lower-cases, splits on whitespace and isolates punctuation.
func basicTokens(text string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			out = append(out, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}
