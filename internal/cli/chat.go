package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/sakha/internal/answer"
	"github.com/hyperjump/sakha/internal/models"
)

// Answerer answers one question given the conversation so far.
type Answerer interface {
	Answer(ctx context.Context, q string, history []models.ConversationTurn) (*models.AnswerResponse, error)
}

const chatBanner = `🙏 sakha chat. Ask anything; "clear" forgets the conversation, "exit" leaves.`

// Chat runs a read-answer loop until in is exhausted, the user types exit, quit or q,
// or ctx is cancelled. History is kept locally and capped at maxTurns.
func Chat(ctx context.Context, in io.Reader, out io.Writer, a Answerer, maxTurns int) error {
	if maxTurns <= 0 {
		maxTurns = answer.HistoryTurns
	}
	var history []models.ConversationTurn
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, chatBanner)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit", "q":
			fmt.Fprintln(out, "राधे राधे 🙏")
			return nil
		case "clear":
			history = nil
			fmt.Fprintln(out, "(conversation cleared)")
			continue
		}

		resp, err := a.Answer(ctx, line, history)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprint(out, answer.FormatAnswer(resp))

		if resp.Answer != nil && !resp.Greeting {
			history = append(history, models.ConversationTurn{Question: line, Answer: *resp.Answer})
			if len(history) > maxTurns {
				history = history[len(history)-maxTurns:]
			}
		}
	}
}
