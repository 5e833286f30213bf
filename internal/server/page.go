package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/vector76/catchup/internal/model"
	"github.com/vector76/catchup/internal/ui"
)

// pageView records what the controller asked the form page to show, so the
// page can be rendered once the submission settles.
type pageView struct {
	busy       bool
	errMsg     string
	showError  bool
	result     ui.Result
	showResult bool
	scroll     bool
}

func (v *pageView) SetBusy(busy bool)      { v.busy = busy }
func (v *pageView) ShowError(msg string)   { v.errMsg, v.showError = msg, true }
func (v *pageView) HideError()             { v.errMsg, v.showError = "", false }
func (v *pageView) ShowResult(r ui.Result) { v.result, v.showResult = r, true }
func (v *pageView) HideResult()            { v.result, v.showResult = ui.Result{}, false }
func (v *pageView) ScrollToResult()        { v.scroll = true }

// pageData holds the template data for the form page.
type pageData struct {
	Catalog    *model.Catalog
	Industry   string
	TimePeriod string
	Error      string
	Result     *pageResult
	Scroll     bool
	Theme      string
}

type pageResult struct {
	Industry string
	Period   string
	HTML     template.HTML
	Cached   bool
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, pageData{})
}

// handleSubmit handles the form post by driving a ui.Controller against the
// service in-process.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, pageData{Error: ui.MsgFailed})
		return
	}
	industry := r.PostForm.Get("industry")
	period := r.PostForm.Get("time_period")

	view := &pageView{}
	ctrl := ui.NewController(view, ui.FetcherFunc(s.fetchLocal), s.config.Renderer, s.log)
	err := ctrl.Submit(r.Context(), industry, period)

	data := pageData{
		Industry:   industry,
		TimePeriod: period,
		Scroll:     view.scroll,
	}
	if view.showError {
		data.Error = view.errMsg
	}
	if view.showResult {
		data.Result = &pageResult{
			Industry: view.result.Industry,
			Period:   view.result.Period,
			HTML:     template.HTML(view.result.HTML),
			Cached:   view.result.Cached,
		}
	}

	s.renderPage(w, r, submitStatus(err), data)
}

// fetchLocal calls the service directly and reports failures the same way
// the JSON API would.
func (s *Server) fetchLocal(ctx context.Context, req model.CatchUpRequest) (model.CatchUpResponse, error) {
	resp, err := s.svc.CatchUp(ctx, req)
	if err != nil {
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("catch-up failed",
				"industry", req.Industry,
				"time_period", req.TimePeriod,
				"error", err)
		}
		return model.CatchUpResponse{}, &model.APIError{Status: status, Message: body.Error}
	}
	return resp, nil
}

// submitStatus picks the HTTP status for a rendered form outcome.
func submitStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}
	var serr *ui.SubmitError
	if errors.As(err, &serr) && serr.Kind == ui.KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// pageRateLimited keeps the submitted selection when the form can be read;
// an unreadable form still gets the 429 page, just without it.
func (s *Server) pageRateLimited(w http.ResponseWriter, r *http.Request) {
	data := pageData{Error: "Too many requests. Please wait a moment and try again."}
	if err := r.ParseForm(); err != nil {
		s.log.Debug("unreadable form on rate limited submit", "error", err)
	} else {
		data.Industry = r.PostForm.Get("industry")
		data.TimePeriod = r.PostForm.Get("time_period")
	}
	s.renderPage(w, r, http.StatusTooManyRequests, data)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	data.Catalog = s.svc.Catalog()
	if c, err := r.Cookie("theme"); err == nil && (c.Value == "dark" || c.Value == "light") {
		data.Theme = c.Value
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTmpl.Execute(w, data); err != nil {
		s.log.Error("rendering page", "error", err)
	}
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html{{if .Theme}} data-theme="{{.Theme}}"{{end}}>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>What Did I Miss?</title>
<style>
  :root {
    --color-text: #222;
    --color-bg-page: #fff;
    --color-link: #0366d6;
    --color-border: #ddd;
    --color-bg-card: #fafafa;
    --color-bg-badge: #f0f0f0;
    --color-bg-badge-green: #68cc8c;
    --color-bg-error: #fdecea;
    --color-text-error: #8a1c1c;
    --color-text-muted: #555;
  }
  [data-theme="dark"] {
    --color-text: #e0e0e0;
    --color-bg-page: #121212;
    --color-link: #58a6ff;
    --color-border: #444;
    --color-bg-card: #1a1a1a;
    --color-bg-badge: #333;
    --color-bg-badge-green: #1c4530;
    --color-bg-error: #4a1c1c;
    --color-text-error: #f5c2c2;
    --color-text-muted: #aaa;
  }
  body { font-family: sans-serif; margin: 2em auto; max-width: 48em; padding: 0 1em; color: var(--color-text); background: var(--color-bg-page); }
  a { color: var(--color-link); }
  h1 { margin-bottom: 0.2em; }
  .tagline { color: var(--color-text-muted); margin-top: 0; }
  form { display: flex; gap: 1em; flex-wrap: wrap; align-items: flex-end; margin: 1.5em 0; }
  label { display: flex; flex-direction: column; gap: 0.3em; font-weight: bold; }
  select, button { font-size: 1em; padding: 0.4em 0.6em; border: 1px solid var(--color-border); border-radius: 4px; background: var(--color-bg-page); color: var(--color-text); }
  button { cursor: pointer; background: var(--color-bg-badge); }
  button:disabled { cursor: wait; opacity: 0.7; }
  .btn-loading { display: none; }
  #error-message { background: var(--color-bg-error); color: var(--color-text-error); border-radius: 4px; padding: 0.7em 1em; }
  #result-card { border: 1px solid var(--color-border); border-radius: 4px; padding: 0.5em 1.5em 1em; background: var(--color-bg-card); }
  .result-meta { display: flex; gap: 0.8em; flex-wrap: wrap; margin-top: 1em; }
  .result-meta div { padding: 0.3em 0.7em; border-radius: 4px; background: var(--color-bg-badge); font-size: 0.9em; }
  .result-meta div.badge-green { background: var(--color-bg-badge-green); }
  .theme-toggle { position: fixed; top: 1em; right: 1em; padding: 0.4em 0.8em; border: 1px solid var(--color-border); border-radius: 4px; background: var(--color-bg-badge); color: var(--color-text); cursor: pointer; font-size: 0.9em; }
</style>
</head>
<body>
<button class="theme-toggle" aria-label="Toggle dark mode">{{if eq .Theme "dark"}}☀️{{else}}🌙{{end}}</button>
<h1>What Did I Miss?</h1>
<p class="tagline">Been away from work? Get a summary of what changed in your industry.</p>

<form id="catchup-form" method="post" action="/">
  <label for="industry">Industry
    <select id="industry" name="industry">
      <option value="">Select an industry</option>
      {{range .Catalog.Industries}}<option value="{{.Slug}}"{{if eq .Slug $.Industry}} selected{{end}}>{{.Label}}</option>
      {{end}}
    </select>
  </label>
  <label for="time-period">Time away
    <select id="time-period" name="time_period">
      <option value="">Select a time period</option>
      {{range .Catalog.TimePeriods}}<option value="{{.Slug}}"{{if eq .Slug $.TimePeriod}} selected{{end}}>{{.Label}}</option>
      {{end}}
    </select>
  </label>
  <button id="submit-btn" type="submit"><span class="btn-text">Catch me up</span><span class="btn-loading">Generating summary…</span></button>
</form>

{{if .Error}}<div id="error-message" role="alert">{{.Error}}</div>{{end}}

{{with .Result}}
<div id="result-card">
  <div class="result-meta">
    <div><strong>Industry:</strong> <span id="result-industry">{{.Industry}}</span></div>
    <div><strong>Time away:</strong> <span id="result-period">{{.Period}}</span></div>
    {{if .Cached}}<div id="cached-badge" class="badge-green">Cached</div>{{end}}
  </div>
  <div id="result-content">{{.HTML}}</div>
</div>
{{end}}

<script>
var form = document.getElementById("catchup-form");
form.addEventListener("submit", function() {
  var btn = document.getElementById("submit-btn");
  btn.disabled = true;
  btn.querySelector(".btn-text").style.display = "none";
  btn.querySelector(".btn-loading").style.display = "inline";
  ["industry", "time-period"].forEach(function(id) {
    // Disabled selects are not submitted, so lock them once the form data is taken.
    var el = document.getElementById(id);
    setTimeout(function() { el.disabled = true; }, 0);
  });
});
{{if .Scroll}}var card = document.getElementById("result-card");
if (card) { card.scrollIntoView({behavior: "smooth", block: "start"}); }
{{end}}var html = document.documentElement;
if (!html.hasAttribute("data-theme")) {
  html.setAttribute("data-theme", window.matchMedia("(prefers-color-scheme: dark)").matches ? "dark" : "light");
}
var themeBtn = document.querySelector("[aria-label=\"Toggle dark mode\"]");
function syncToggleBtn() {
  if (themeBtn) { themeBtn.textContent = html.getAttribute("data-theme") === "dark" ? "☀️" : "🌙"; }
}
syncToggleBtn();
if (themeBtn) {
  themeBtn.addEventListener("click", function() {
    var next = html.getAttribute("data-theme") === "dark" ? "light" : "dark";
    html.setAttribute("data-theme", next);
    document.cookie = "theme=" + next + "; path=/; max-age=31536000";
    syncToggleBtn();
  });
}
</script>
</body>
</html>
`))
