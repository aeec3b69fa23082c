// Package console runs the agent in a terminal: stdin lines become
// messages from one local user and replies are printed to stdout.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/kinder/pkg/domain"
	"github.com/muesli/termenv"
)

// LocalUser is the user id of the terminal operator.
const LocalUser int64 = 1

// Console is both the EventSource and the Sender of a terminal session.
type Console struct {
	in      io.Reader
	w       io.Writer
	out     *termenv.Output
	profile *termenv.Profile
	userID  int64

	mu sync.Mutex // serializes writes
}

// Option configures the Console.
type Option func(*Console)

// WithUserID changes the id the operator chats as.
func WithUserID(id int64) Option {
	return func(c *Console) {
		c.userID = id
	}
}

// WithProfile forces a color profile (termenv.Ascii disables styling).
func WithProfile(p termenv.Profile) Option {
	return func(c *Console) {
		c.profile = &p
	}
}

// New creates a Console over in and out. Colors follow the terminal of out.
func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		in:     in,
		w:      out,
		userID: LocalUser,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.profile != nil {
		c.out = termenv.NewOutput(out, termenv.WithProfile(*c.profile))
	} else {
		c.out = termenv.NewOutput(out)
	}
	return c
}

// Listen reads one message per line until EOF or ctx is done.
// Empty lines are delivered as non-text messages.
func (c *Console) Listen(ctx context.Context, out chan<- domain.Event) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			ev := domain.Event{
				UserID:   c.userID,
				Text:     line,
				FromUser: true,
				ToBot:    true,
				HasText:  strings.TrimSpace(line) != "",
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Send prints a bot message. Attachments are listed below the text.
func (c *Console) Send(_ context.Context, userID int64, text string, media []domain.MediaRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := c.out.String("kinder>").Foreground(c.out.Color("#c084fc")).Bold()
	if userID != c.userID {
		prefix = c.out.String(fmt.Sprintf("kinder[%d]>", userID)).Foreground(c.out.Color("#c084fc"))
	}
	for i, line := range strings.Split(text, "\n") {
		lead := prefix.String()
		if i > 0 {
			lead = strings.Repeat(" ", len("kinder>"))
		}
		if _, err := fmt.Fprintf(c.w, "%s %s\n", lead, line); err != nil {
			return err
		}
	}
	if len(media) > 0 {
		att := c.out.String("  attachments: " + domain.Attachments(media)).Faint()
		if _, err := fmt.Fprintln(c.w, att); err != nil {
			return err
		}
	}
	return nil
}

// PrintBanner writes the greeting banner.
func (c *Console) PrintBanner() {
	c.mu.Lock()
	defer c.mu.Unlock()

	colors := []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6"}
	art := []string{
		" _    _           _           ",
		"| | _(_)_ __   __| | ___ _ __ ",
		"| |/ / | '_ \\ / _` |/ _ \\ '__|",
		"|   <| | | | | (_| |  __/ |   ",
		"|_|\\_\\_|_| |_|\\__,_|\\___|_|   ",
	}
	fmt.Fprintln(c.w)
	for i, line := range art {
		fmt.Fprintln(c.w, c.out.String(line).Foreground(c.out.Color(colors[i])))
	}
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, c.out.String("Type a message and press Enter. Ctrl+D to quit.").Faint())
}
