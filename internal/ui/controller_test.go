package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vector76/catchup/internal/model"
)

// recordingView records every call as a short string.
type recordingView struct {
	calls  []string
	result Result
	errMsg string
}

func (v *recordingView) SetBusy(busy bool) { v.calls = append(v.calls, fmt.Sprintf("busy:%t", busy)) }
func (v *recordingView) ShowError(msg string) {
	v.errMsg = msg
	v.calls = append(v.calls, "show-error")
}
func (v *recordingView) HideError() { v.calls = append(v.calls, "hide-error") }
func (v *recordingView) ShowResult(r Result) {
	v.result = r
	v.calls = append(v.calls, "show-result")
}
func (v *recordingView) HideResult()     { v.calls = append(v.calls, "hide-result") }
func (v *recordingView) ScrollToResult() { v.calls = append(v.calls, "scroll") }

func (v *recordingView) count(call string) int {
	n := 0
	for _, c := range v.calls {
		if c == call {
			n++
		}
	}
	return n
}

// stubFetcher returns a fixed response or error and counts calls.
type stubFetcher struct {
	resp  model.CatchUpResponse
	err   error
	calls int
	last  model.CatchUpRequest
}

func (f *stubFetcher) CatchUp(_ context.Context, req model.CatchUpRequest) (model.CatchUpResponse, error) {
	f.calls++
	f.last = req
	return f.resp, f.err
}

func TestSubmit_MissingIndustry(t *testing.T) {
	v := &recordingView{}
	f := &stubFetcher{}
	c := NewController(v, f, nil, nil)

	err := c.Submit(context.Background(), "", "1-year")

	var serr *SubmitError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, KindValidation, serr.Kind)
	assert.Equal(t, MsgMissingSelection, serr.Message)
	assert.Equal(t, 0, f.calls, "validation failure must not fetch")
	assert.Equal(t, StateError, c.State())
	assert.Equal(t, MsgMissingSelection, v.errMsg)
	assert.Equal(t, 0, v.count("busy:true"))
}

func TestSubmit_MissingPeriod(t *testing.T) {
	v := &recordingView{}
	f := &stubFetcher{}
	c := NewController(v, f, nil, nil)

	err := c.Submit(context.Background(), "legal", "")
	require.Error(t, err)
	assert.Equal(t, 0, f.calls)
	assert.Equal(t, MsgMissingSelection, c.Message())
}

func TestSubmit_Success(t *testing.T) {
	v := &recordingView{}
	f := &stubFetcher{resp: model.CatchUpResponse{
		Industry: "Legal",
		Period:   "1 year",
		Summary:  "# Title\n\nBody",
		Cached:   true,
	}}
	c := NewController(v, f, nil, nil)

	require.NoError(t, c.Submit(context.Background(), "legal", "1-year"))

	assert.Equal(t, model.CatchUpRequest{Industry: "legal", TimePeriod: "1-year"}, f.last)
	assert.Equal(t, StateResult, c.State())

	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, "Legal", res.Industry)
	assert.Equal(t, "1 year", res.Period)
	assert.Equal(t, "<h2>Title</h2><p>Body</p>", res.HTML)
	assert.True(t, res.Cached)
	assert.Equal(t, res, v.result)

	assert.Equal(t, []string{
		"busy:true", "hide-error", "hide-result",
		"hide-error", "show-result", "scroll",
		"busy:false",
	}, v.calls)
}

func TestSubmit_APIErrorMessageVerbatim(t *testing.T) {
	v := &recordingView{}
	f := &stubFetcher{err: &model.APIError{Status: 400, Message: "bad input"}}
	c := NewController(v, f, nil, nil)

	err := c.Submit(context.Background(), "legal", "1-year")

	var serr *SubmitError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, KindApplication, serr.Kind)
	assert.Equal(t, "bad input", v.errMsg)
	assert.Equal(t, StateError, c.State())

	var apiErr *model.APIError
	assert.ErrorAs(t, err, &apiErr, "SubmitError should unwrap to the API error")
}

func TestSubmit_APIErrorWithoutMessage(t *testing.T) {
	v := &recordingView{}
	f := &stubFetcher{err: &model.APIError{Status: 500}}
	c := NewController(v, f, nil, nil)

	_ = c.Submit(context.Background(), "legal", "1-year")
	assert.Equal(t, MsgGeneric, v.errMsg)
}

func TestSubmit_TransportError(t *testing.T) {
	v := &recordingView{}
	f := &stubFetcher{err: errors.New("connection refused")}
	c := NewController(v, f, nil, nil)

	err := c.Submit(context.Background(), "legal", "1-year")

	var serr *SubmitError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, KindTransport, serr.Kind)
	assert.Equal(t, MsgFailed, v.errMsg)
}

func TestSubmit_BusyRevertedExactlyOnce(t *testing.T) {
	fetchers := map[string]*stubFetcher{
		"success":     {resp: model.CatchUpResponse{Summary: "x"}},
		"api error":   {err: &model.APIError{Status: 400, Message: "nope"}},
		"transport":   {err: errors.New("boom")},
		"empty error": {err: &model.APIError{Status: 502}},
	}
	for name, f := range fetchers {
		t.Run(name, func(t *testing.T) {
			v := &recordingView{}
			c := NewController(v, f, nil, nil)
			_ = c.Submit(context.Background(), "legal", "1-year")

			assert.Equal(t, 1, v.count("busy:true"))
			assert.Equal(t, 1, v.count("busy:false"))
			assert.Equal(t, "busy:false", v.calls[len(v.calls)-1], "busy indicator is restored last")
			assert.NotEqual(t, StateLoading, c.State())
		})
	}
}

func TestSubmit_NewSubmissionClearsPreviousError(t *testing.T) {
	v := &recordingView{}
	f := &stubFetcher{resp: model.CatchUpResponse{Summary: "ok"}}
	c := NewController(v, f, nil, nil)

	require.Error(t, c.Submit(context.Background(), "", ""))
	require.Equal(t, StateError, c.State())

	v.calls = nil
	require.NoError(t, c.Submit(context.Background(), "legal", "1-year"))
	assert.Equal(t, StateResult, c.State())
	assert.Equal(t, "", c.Message())
	assert.Contains(t, v.calls, "hide-error")
}

func TestSubmit_ValidationAfterResultHidesResult(t *testing.T) {
	v := &recordingView{}
	f := &stubFetcher{resp: model.CatchUpResponse{Summary: "ok"}}
	c := NewController(v, f, nil, nil)

	require.NoError(t, c.Submit(context.Background(), "legal", "1-year"))
	v.calls = nil

	require.Error(t, c.Submit(context.Background(), "legal", ""))
	assert.Equal(t, []string{"hide-result", "show-error"}, v.calls)
	_, ok := c.Result()
	assert.False(t, ok)
}

func TestSubmit_BusyWhileLoading(t *testing.T) {
	v := &recordingView{}
	var c *Controller
	var inner error
	f := FetcherFunc(func(ctx context.Context, req model.CatchUpRequest) (model.CatchUpResponse, error) {
		assert.Equal(t, StateLoading, c.State())
		inner = c.Submit(ctx, "marketing", "5-years")
		return model.CatchUpResponse{Summary: "done"}, nil
	})
	c = NewController(v, f, nil, nil)

	require.NoError(t, c.Submit(context.Background(), "legal", "1-year"))
	assert.ErrorIs(t, inner, ErrBusy)
	assert.Equal(t, 1, v.count("busy:true"))
}

func TestSubmit_CustomRenderer(t *testing.T) {
	v := &recordingView{}
	f := &stubFetcher{resp: model.CatchUpResponse{Summary: "abc"}}
	r := rendererFunc(strings.ToUpper)
	c := NewController(v, f, r, nil)

	require.NoError(t, c.Submit(context.Background(), "legal", "1-year"))
	assert.Equal(t, "ABC", v.result.HTML)
	assert.Equal(t, "abc", v.result.Summary)
}

func TestSubmit_RendererPanicLeavesError(t *testing.T) {
	v := &recordingView{}
	f := &stubFetcher{resp: model.CatchUpResponse{Summary: "abc"}}
	r := rendererFunc(func(string) string { panic("render failed") })
	c := NewController(v, f, r, nil)

	assert.Panics(t, func() {
		_ = c.Submit(context.Background(), "legal", "1-year")
	})
	assert.Equal(t, StateError, c.State())
	assert.Equal(t, 1, v.count("busy:false"))
}

// readingView reads controller state back from inside its callbacks, the
// way a view that derives its labels from the controller would.
type readingView struct {
	recordingView
	c      *Controller
	states []State
	msg    string
	html   string
}

func (v *readingView) SetBusy(busy bool) {
	v.states = append(v.states, v.c.State())
	v.recordingView.SetBusy(busy)
}

func (v *readingView) ShowError(msg string) {
	v.msg = v.c.Message()
	v.recordingView.ShowError(msg)
}

func (v *readingView) ShowResult(r Result) {
	if res, ok := v.c.Result(); ok {
		v.html = res.HTML
	}
	v.recordingView.ShowResult(r)
}

func submitWithin(t *testing.T, c *Controller, industry, period string) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), industry, period) }()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Submit did not return; view callback blocked on the controller")
		return nil
	}
}

func TestSubmit_ViewMayReadControllerState(t *testing.T) {
	v := &readingView{}
	f := &stubFetcher{resp: model.CatchUpResponse{Summary: "**hi**"}}
	c := NewController(v, f, nil, nil)
	v.c = c

	require.NoError(t, submitWithin(t, c, "legal", "1-year"))
	assert.Equal(t, []State{StateLoading, StateResult}, v.states)
	assert.Equal(t, "<p><strong>hi</strong></p>", v.html)

	err := submitWithin(t, c, "", "1-year")
	require.Error(t, err)
	assert.Equal(t, MsgMissingSelection, v.msg)

	f.err = errors.New("connection refused")
	require.Error(t, submitWithin(t, c, "legal", "1-year"))
	assert.Equal(t, MsgFailed, v.msg)
	assert.Equal(t, []string{"busy:true", "hide-error", "hide-result", "hide-result", "show-error", "busy:false"}, v.calls[len(v.calls)-6:])
}

type rendererFunc func(string) string

func (f rendererFunc) Render(s string) string { return f(s) }
