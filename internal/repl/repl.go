// Package repl provides the interactive console: a read-eval loop that feeds
// user lines into the conversation loop and renders its events with terminal
// styling.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// TurnRunner drives one conversational turn for a line of user input.
type TurnRunner interface {
	RunTurn(ctx context.Context, userText string) error
}

// Console renders conversation events to a writer. It implements agent.UI and
// keeps track of the transient "thinking" line so it can be overwritten before
// the next output.
type Console struct {
	out      io.Writer
	thinking bool
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// clearThinking overwrites the in-place thinking indicator, if one is shown.
func (c *Console) clearThinking() {
	if !c.thinking {
		return
	}
	fmt.Fprintf(c.out, "\r%s\r", strings.Repeat(" ", 30))
	c.thinking = false
}

func (c *Console) Thinking() {
	fmt.Fprintf(c.out, "%s\r", dimStyle("Assistant is thinking..."))
	c.thinking = true
}

func (c *Console) AssistantSay(text string) {
	c.clearThinking()
	fmt.Fprintf(c.out, "%s %s\n", assistantStyle("Assistant:"), text)
}

func (c *Console) AssistantError(text string) {
	c.clearThinking()
	fmt.Fprintf(c.out, "%s\n", errorStyle(text))
}

func (c *Console) ToolBatchStart(count int) {
	c.clearThinking()
	plural := ""
	if count > 1 {
		plural = "s"
	}
	fmt.Fprintf(c.out, "%s\n", toolStyle(fmt.Sprintf("Executing %d tool%s...", count, plural)))
}

func (c *Console) ToolCallStart(seq int, name, args string) {
	fmt.Fprintf(c.out, "  %d. %s\n", seq, toolStyle(fmt.Sprintf("%s(%s)", name, args)))
}

func (c *Console) ToolCallError(seq int, message string) {
	fmt.Fprintf(c.out, "     %s\n", errorStyle(message))
}

// REPL reads user lines, dispatches them to a TurnRunner and stops on "exit",
// "quit", end of input or context cancellation.
type REPL struct {
	in     *bufio.Scanner
	con    *Console
	runner TurnRunner
}

// New returns a REPL reading lines from in and rendering through con.
func New(in io.Reader, con *Console, runner TurnRunner) *REPL {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &REPL{in: sc, con: con, runner: runner}
}

// Run executes the interactive loop until the user quits, input ends or ctx is
// cancelled. A clean quit returns nil.
func (r *REPL) Run(ctx context.Context, model string) error {
	fmt.Fprintf(r.con.out, "%s\n", infoStyle("Coding agent ready (model: "+model+")."))
	fmt.Fprintf(r.con.out, "%s\n\n", infoStyle("Type 'exit' or press Ctrl+C to quit."))

	for {
		if ctx.Err() != nil {
			r.farewell()
			return nil
		}

		fmt.Fprintf(r.con.out, "%s ", promptStyle("You:"))
		if !r.in.Scan() {
			r.farewell()
			if err := r.in.Err(); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("repl: read input: %w", err)
			}
			return nil
		}

		line := strings.TrimSpace(r.in.Text())
		if isQuit(line) {
			r.farewell()
			return nil
		}

		if err := r.runner.RunTurn(ctx, line); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				r.farewell()
				return nil
			}
			return fmt.Errorf("repl: %w", err)
		}
		fmt.Fprintln(r.con.out)
	}
}

func (r *REPL) farewell() {
	r.con.clearThinking()
	fmt.Fprintf(r.con.out, "%s\n", infoStyle("Goodbye!"))
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit":
		return true
	}
	return false
}
