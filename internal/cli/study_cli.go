// Package cli provides the interactive study session loop.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/srs-tools/cardsched/internal/fsrs"
	"github.com/srs-tools/cardsched/internal/scheduler"
	"github.com/srs-tools/cardsched/internal/session"
)

// errEnd signals a normal end of the session loop.
var errEnd = errors.New("session ended")

// StudyCLI runs one study session interactively on the terminal.
type StudyCLI struct {
	runner       *session.Runner
	machine      *scheduler.StateMachine
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
}

// NewStudyCLI creates a StudyCLI over a prepared session runner.
func NewStudyCLI(runner *session.Runner, machine *scheduler.StateMachine) *StudyCLI {
	return &StudyCLI{
		runner:       runner,
		machine:      machine,
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
	}
}

// Run drives the session until completion or interrupt. An interrupt loses
// no committed work: every rating is persisted before the next card shows.
func (cli *StudyCLI) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := cli.Session(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

// Session presents one card, reads a rating, and commits it.
func (cli *StudyCLI) Session(ctx context.Context) error {
	card, ok := cli.runner.Current()
	if !ok {
		fmt.Fprintln(cli.stdoutWriter, "Session complete!")
		return errEnd
	}

	if _, err := cli.bold.Fprintf(cli.stdoutWriter, "Card %d", card.CardID); err != nil {
		return fmt.Errorf("bold.Fprintf() > %w", err)
	}
	fmt.Fprintf(cli.stdoutWriter, "  (%d left)\n", cli.runner.Remaining())

	hints, err := cli.previewLine(card)
	if err != nil {
		return fmt.Errorf("previewLine() > %w", err)
	}
	if _, err := cli.italic.Fprintln(cli.stdoutWriter, hints); err != nil {
		return fmt.Errorf("italic.Fprintln() > %w", err)
	}
	fmt.Fprint(cli.stdoutWriter, "Rate [1=again 2=hard 3=good 4=easy, q=quit]: ")

	started := time.Now()
	input, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errEnd
		}
		return fmt.Errorf("stdinReader.ReadString() > %w", err)
	}

	rating, err := parseRating(strings.TrimSpace(input))
	if err != nil {
		if errors.Is(err, errEnd) {
			return errEnd
		}
		fmt.Fprintln(cli.stdoutWriter, err.Error())
		return nil
	}

	result, err := cli.runner.Rate(ctx, rating, time.Since(started), time.Now())
	if err != nil {
		if errors.Is(err, session.ErrPersistence) {
			fmt.Fprintln(cli.stdoutWriter, "Could not save the review, please rate the card again.")
			return nil
		}
		return fmt.Errorf("runner.Rate() > %w", err)
	}

	cli.reportOutcome(result)
	return nil
}

func (cli *StudyCLI) previewLine(card scheduler.CardSchedule) (string, error) {
	previews, err := cli.machine.PreviewIntervals(card, time.Now())
	if err != nil {
		return "", fmt.Errorf("machine.PreviewIntervals() > %w", err)
	}
	parts := make([]string, 0, 4)
	for _, rating := range fsrs.Ratings() {
		parts = append(parts, fmt.Sprintf("%s: %s", rating, scheduler.FormatInterval(previews[rating])))
	}
	return strings.Join(parts, " / "), nil
}

func (cli *StudyCLI) reportOutcome(result scheduler.Result) {
	card := result.Card
	if result.ReappearInSession {
		fmt.Fprintf(cli.stdoutWriter, "Card %d comes back later this session.\n\n", card.CardID)
		return
	}
	if card.IsLeech && card.IsSuspended {
		fmt.Fprintf(cli.stdoutWriter, "Card %d was flagged as a leech and suspended.\n\n", card.CardID)
		return
	}
	fmt.Fprintf(cli.stdoutWriter, "Next review in %s.\n\n", scheduler.FormatInterval(card.Due.Sub(*card.LastReview)))
}

func parseRating(input string) (fsrs.Rating, error) {
	switch input {
	case "1":
		return fsrs.Again, nil
	case "2":
		return fsrs.Hard, nil
	case "3":
		return fsrs.Good, nil
	case "4":
		return fsrs.Easy, nil
	case "q", "quit":
		return 0, errEnd
	default:
		return 0, fmt.Errorf("unknown rating %q, expected 1-4 or q", input)
	}
}
