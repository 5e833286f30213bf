// Package ui coordinates a catch-up form: it validates the selection, issues
// one request, renders the returned summary and drives a View through an
// explicit set of states.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/vector76/catchup/internal/markdown"
	"github.com/vector76/catchup/internal/model"
)

// Messages shown in the error region.
const (
	MsgMissingSelection = "Please select both an industry and time period."
	MsgGeneric          = "Something went wrong"
	MsgFailed           = "Failed to generate summary. Please try again."
)

// ErrBusy is returned by Submit while a previous submission is in flight.
var ErrBusy = errors.New("a catch-up request is already in progress")

// Kind classifies a failed submission.
type Kind int

const (
	// KindValidation: the selection was incomplete; nothing was sent.
	KindValidation Kind = iota
	// KindTransport: the request failed or the response could not be read.
	KindTransport
	// KindApplication: the server answered with a non-2xx status.
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	}
	return "unknown"
}

// SubmitError is the outcome of a failed submission. Message is what the
// view shows.
type SubmitError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }

func (e *SubmitError) Unwrap() error { return e.Err }

// Result is what the view shows after a successful submission.
type Result struct {
	Industry string
	Period   string
	Summary  string // markdown as received
	HTML     string // Summary rendered
	Cached   bool
}

// View is the surface a Controller drives. Implementations only draw; all
// decisions are made by the Controller. View methods are called without the
// Controller's state lock held, so they may read State, Message and Result,
// but must not call Submit.
type View interface {
	// SetBusy disables or enables the inputs and swaps the busy indicator.
	SetBusy(busy bool)
	ShowError(msg string)
	HideError()
	ShowResult(r Result)
	HideResult()
	ScrollToResult()
}

// Fetcher performs the catch-up request.
type Fetcher interface {
	CatchUp(ctx context.Context, req model.CatchUpRequest) (model.CatchUpResponse, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req model.CatchUpRequest) (model.CatchUpResponse, error)

func (f FetcherFunc) CatchUp(ctx context.Context, req model.CatchUpRequest) (model.CatchUpResponse, error) {
	return f(ctx, req)
}

// Controller owns the form state. Create one per form with NewController.
type Controller struct {
	view     View
	fetcher  Fetcher
	renderer markdown.Renderer
	log      *slog.Logger

	mu      sync.Mutex
	paintMu sync.Mutex // serializes View calls
	state   State
	message string
	result  Result
}

// NewController returns a Controller in the idle state. A nil renderer
// selects markdown.Fragment; a nil logger discards.
func NewController(v View, f Fetcher, r markdown.Renderer, logger *slog.Logger) *Controller {
	if r == nil {
		r = markdown.Fragment
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		view:     v,
		fetcher:  f,
		renderer: r,
		log:      logger,
		state:    StateIdle,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Message returns the error message shown in the error state.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateError {
		return ""
	}
	return c.message
}

// Result returns the displayed result, if the controller is in the result
// state.
func (c *Controller) Result() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateResult {
		return Result{}, false
	}
	return c.result, true
}

// Submit handles one form submission. It returns nil when a result is
// shown, a *SubmitError when an error is shown, and ErrBusy without
// touching the view if a submission is already in flight.
func (c *Controller) Submit(ctx context.Context, industry, period string) error {
	c.mu.Lock()
	if c.state == StateLoading {
		c.mu.Unlock()
		return ErrBusy
	}

	if industry == "" || period == "" {
		serr := &SubmitError{Kind: KindValidation, Message: MsgMissingSelection}
		paint, err := c.fail(serr)
		c.commit(paint)
		if err != nil {
			return err
		}
		return serr
	}

	paint, err := c.transition(StateLoading, nil)
	c.commit(paint)
	if err != nil {
		return err
	}

	settled := false
	defer func() {
		if !settled {
			c.mu.Lock()
			paint, _ := c.fail(&SubmitError{Kind: KindTransport, Message: MsgFailed})
			c.commit(paint)
		}
	}()

	c.log.Debug("submitting catch-up", "industry", industry, "time_period", period)
	resp, err := c.fetcher.CatchUp(ctx, model.CatchUpRequest{Industry: industry, TimePeriod: period})
	if err != nil {
		serr := classify(err)
		c.log.Warn("catch-up failed", "kind", serr.Kind.String(), "error", err)

		c.mu.Lock()
		settled = true
		paint, _ := c.fail(serr)
		c.commit(paint)
		return serr
	}

	res := Result{
		Industry: resp.Industry,
		Period:   resp.Period,
		Summary:  resp.Summary,
		HTML:     c.renderer.Render(resp.Summary),
		Cached:   resp.Cached,
	}

	c.mu.Lock()
	settled = true
	c.result = res
	paint, err = c.transition(StateResult, func() {
		c.view.HideError()
		c.view.ShowResult(res)
		c.view.ScrollToResult()
	})
	c.commit(paint)
	return err
}

// fail moves to the error state and returns the view changes that show
// serr. Caller must hold c.mu.
func (c *Controller) fail(serr *SubmitError) (func(), error) {
	c.message = serr.Message
	return c.transition(StateError, func() {
		c.view.HideResult()
		c.view.ShowError(serr.Message)
	})
}

// transition moves the controller to next and returns the view changes for
// entering next and, after show, for leaving loading. It does not touch the
// view itself. Caller must hold c.mu.
func (c *Controller) transition(next State, show func()) (func(), error) {
	prev := c.state
	if !prev.CanTransition(next) {
		return nil, &TransitionError{From: prev, To: next}
	}
	c.state = next

	return func() {
		if next == StateLoading {
			c.view.SetBusy(true)
			c.view.HideError()
			c.view.HideResult()
		}
		if show != nil {
			show()
		}
		if prev == StateLoading {
			c.view.SetBusy(false)
		}
	}, nil
}

// commit releases c.mu and then applies paint. The view lock is taken
// before c.mu is released, so view updates land in transition order while
// the View is free to call back into State, Message or Result.
func (c *Controller) commit(paint func()) {
	c.paintMu.Lock()
	c.mu.Unlock()
	defer c.paintMu.Unlock()
	if paint != nil {
		paint()
	}
}

// classify maps a fetch error to the message the view shows.
func classify(err error) *SubmitError {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = MsgGeneric
		}
		return &SubmitError{Kind: KindApplication, Message: msg, Err: err}
	}
	return &SubmitError{Kind: KindTransport, Message: MsgFailed, Err: err}
}
