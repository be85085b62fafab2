package api

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// Instructions describes the rules of the game in markdown
const Instructions = `# Memory Match

Find every pair of matching cards with as few errors and as little time as possible.

## Difficulty

| Difficulty | Pairs | Cards |
|------------|-------|-------|
| easy       | 4     | 8     |
| medium     | 6     | 12    |
| hard       | 8     | 16    |

## Rules

- Cards are dealt face down in rows of four.
- Select a card to turn it face up, then select a second one.
- Two cards with the same picture are a pair: they leave the board.
- Two different cards cost one error. Both stay face up for three seconds and no card can be selected until they turn back.
- The game ends when every pair is found. Time and errors freeze at that moment.
`

const startMarkdown = `# Memory Match

Pick a difficulty to start a new game.

- [Easy](/game?difficulty=easy): 4 pairs
- [Medium](/game?difficulty=medium): 6 pairs
- [Hard](/game?difficulty=hard): 8 pairs

[How to play](/api/instructions?format=html)
`

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// markdownToHTML converts markdown to HTML, escaping the input on failure
func markdownToHTML(input string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(input), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(input))
	}
	return template.HTML(buf.String())
}

var pageTemplates = template.Must(template.New("page").Funcs(template.FuncMap{
	"markdown": markdownToHTML,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Memory Match</title>
{{if .Refresh}}<meta http-equiv="refresh" content="1">{{end}}
<style>
body { font-family: sans-serif; max-width: 40em; margin: 2em auto; }
.grid { display: grid; grid-template-columns: repeat({{.Columns}}, 5em); gap: .5em; }
.grid form, .grid div { margin: 0; }
.card { width: 5em; height: 5em; font-size: 1.5em; }
.hidden { visibility: hidden; }
</style>
</head>
<body>
{{if .Markdown}}{{markdown .Markdown}}{{end}}
{{with .Board}}
<p>{{.Status.Difficulty}} | {{.Status.ElapsedText}} | errors: {{.Status.ErrorCount}} | pairs: {{.Status.PairsSolved}}/{{.Status.PairsTotal}}</p>
<div class="grid">
{{range .Cards}}{{if eq .Visibility "hidden"}}<div class="card hidden"></div>
{{else if eq .Visibility "face_up"}}<button class="card" disabled>{{.Face}}</button>
{{else}}<form method="post" action="/game/{{$.SessionID}}/select"><input type="hidden" name="position" value="{{.Position}}"><button class="card">FLIP</button></form>
{{end}}{{end}}
</div>
{{end}}
{{with .Result}}<h2>{{.Summary}}</h2>{{end}}
{{if .SessionID}}<form method="post" action="/game/{{.SessionID}}/restart"><button>Restart</button></form>
<p><a href="/start">Back to start</a></p>{{end}}
</body>
</html>`))

type pageData struct {
	Markdown  string
	SessionID string
	Board     *engine.Snapshot
	Result    *service.ResultInfo
	Columns   int
	Refresh   bool
}

func renderPage(w http.ResponseWriter, status int, data pageData) {
	if data.Columns == 0 {
		data.Columns = engine.GridColumns
	}
	var buf bytes.Buffer
	if err := pageTemplates.Execute(&buf, data); err != nil {
		http.Error(w, fmt.Sprintf("template render error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) handleInstructions(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "html" {
		renderPage(w, http.StatusOK, pageData{Markdown: Instructions})
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(Instructions))
}

func (s *Server) handleStartPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, pageData{Markdown: startMarkdown})
}

// handleNewGame starts a game at ?difficulty= (easy when absent) and
// redirects to its page
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	session, err := s.service.CreateSession(r.Context(), service.CreateSessionRequest{
		Difficulty: query.Get("difficulty"),
		CardSet:    query.Get("card_set"),
	})
	if err != nil {
		renderPage(w, statusFor(err), pageData{
			Markdown: fmt.Sprintf("# Cannot start game\n\n%s\n\n[Back to start](/start)", err),
		})
		return
	}

	http.Redirect(w, r, "/game/"+url.PathEscape(session.ID), http.StatusSeeOther)
}

func (s *Server) handleGamePage(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	board, err := s.service.GetBoard(r.Context(), sessionID)
	if err != nil {
		renderPage(w, statusFor(err), pageData{
			Markdown: fmt.Sprintf("# Game not found\n\n%s\n\n[Back to start](/start)", err),
		})
		return
	}

	data := pageData{
		SessionID: sessionID,
		Board:     board,
		Columns:   board.Columns,
		Refresh:   board.Status.State == engine.StateLocked,
	}
	if board.Status.State == engine.StateFinished {
		if result, err := s.service.GetResult(r.Context(), sessionID); err == nil {
			data.Result = result
		}
	}
	renderPage(w, http.StatusOK, data)
}

func (s *Server) handleGameSelect(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	position, err := strconv.Atoi(r.FormValue("position"))
	if err != nil {
		http.Error(w, "invalid position", http.StatusBadRequest)
		return
	}
	if _, err := s.service.SelectCard(r.Context(), sessionID, position); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	http.Redirect(w, r, "/game/"+url.PathEscape(sessionID), http.StatusSeeOther)
}

func (s *Server) handleGameRestart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if _, err := s.service.Restart(r.Context(), sessionID); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	http.Redirect(w, r, "/game/"+url.PathEscape(sessionID), http.StatusSeeOther)
}
