// Package cli provides output renderers and the interactive chat loop for the sakha CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/sakha/internal/answer"
	"github.com/hyperjump/sakha/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json"; anything else is an error.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text or json)", s)
	}
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d verses in %dms (%s", response.Total, response.QueryTime, response.Method)
	if response.Reranked {
		fmt.Fprint(w, ", reranked")
	}
	fmt.Fprintln(w, ")")
	if in := response.Interpretation; in != nil && in.Intent != "" {
		fmt.Fprintf(w, "Intent: %s\n", in.Intent)
	}
	fmt.Fprintln(w, answer.FormatResults(response.Query, response.Verses()))
	writeExplanations(w, response)
	return nil
}

func writeExplanations(w io.Writer, response *models.SearchResponse) {
	if len(response.Triggers) > 0 {
		fmt.Fprintf(w, "Triggers: %s\n", strings.Join(response.Triggers, ", "))
	}
	for _, r := range response.Results {
		e := r.Explanation
		if e == nil {
			continue
		}
		fmt.Fprintf(w, "%d. %s keyword=%.1f", r.Rank, r.Verse.ID, e.Score)
		if e.Boosted {
			fmt.Fprint(w, " boosted")
		}
		if e.PenaltyApplied {
			fmt.Fprint(w, " narrator-penalty")
		}
		if len(e.MatchedConcepts) > 0 {
			fmt.Fprintf(w, " concepts=%s", strings.Join(e.MatchedConcepts, ","))
		}
		if e.Bonus > 0 {
			fmt.Fprintf(w, " bonus=%.1f", e.Bonus)
		}
		fmt.Fprintln(w)
	}
}

// WriteAnswer writes an answer response to w in the given format.
func WriteAnswer(w io.Writer, response *models.AnswerResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	_, err := fmt.Fprint(w, answer.FormatAnswer(response))
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
