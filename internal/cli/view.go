package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/vector76/catchup/internal/model"
	"github.com/vector76/catchup/internal/ui"
)

// Output formats for the get command.
const (
	formatTerminal = "terminal"
	formatMarkdown = "markdown"
	formatHTML     = "html"
	formatJSON     = "json"
)

// termView draws controller state on a terminal. Results go to out;
// progress and errors go to errOut so that out stays pipeable.
type termView struct {
	out       io.Writer
	errOut    io.Writer
	format    string
	useColors bool
	width     int

	// err records a failure to draw the result.
	err error
}

func (v *termView) SetBusy(busy bool) {
	if !busy {
		return
	}
	v.printErr(color.FgCyan, "Generating summary…")
}

func (v *termView) ShowError(msg string) {
	v.printErr(color.FgRed, "✗ "+msg)
}

// HideError is a no-op: lines already written to a terminal stay.
func (v *termView) HideError() {}

// HideResult is a no-op for the same reason as HideError.
func (v *termView) HideResult() {}

func (v *termView) ScrollToResult() {}

func (v *termView) ShowResult(r ui.Result) {
	switch v.format {
	case formatJSON:
		data, err := json.MarshalIndent(model.CatchUpResponse{
			Industry: r.Industry,
			Period:   r.Period,
			Summary:  r.Summary,
			Cached:   r.Cached,
		}, "", "  ")
		if err != nil {
			v.err = err
			return
		}
		fmt.Fprintln(v.out, string(data))
	case formatMarkdown:
		fmt.Fprintln(v.out, strings.TrimRight(r.Summary, "\n"))
	case formatHTML:
		fmt.Fprintln(v.out, r.HTML)
	default:
		v.printHeader(r)
		out, err := renderTerminal(r.Summary, v.width)
		if err != nil {
			v.err = err
			return
		}
		io.WriteString(v.out, out)
	}
}

func (v *termView) printHeader(r ui.Result) {
	title := fmt.Sprintf("%s · %s", r.Industry, r.Period)
	if v.useColors {
		color.New(color.FgWhite, color.Bold).Fprintf(v.out, "\n%s", title)
	} else {
		fmt.Fprintf(v.out, "\n%s", title)
	}
	if r.Cached {
		if v.useColors {
			color.New(color.FgGreen).Fprint(v.out, "  (cached)")
		} else {
			fmt.Fprint(v.out, "  (cached)")
		}
	}
	fmt.Fprintf(v.out, "\n%s\n", strings.Repeat("─", len([]rune(title))))
}

func (v *termView) printErr(attr color.Attribute, msg string) {
	if v.useColors {
		color.New(attr).Fprintln(v.errOut, msg)
		return
	}
	fmt.Fprintln(v.errOut, msg)
}

// renderTerminal renders markdown for a terminal with glamour.
func renderTerminal(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
