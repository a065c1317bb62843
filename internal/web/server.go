package web

import (
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"tarjetas/internal/deck"
	"tarjetas/internal/session"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Server holds the dependencies for the HTTP server. It depends only on the
// engine's operation surface and derived values; all study semantics live in
// the session package.
type Server struct {
	engine    *session.Engine
	catalog   *deck.Catalog
	router    *http.ServeMux
	templates *template.Template
}

// NewServer creates and configures a new server.
func NewServer(engine *session.Engine, catalog *deck.Catalog) *Server {
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		slog.Error("failed to parse templates", "error", err)
		panic(err)
	}

	s := &Server{
		engine:    engine,
		catalog:   catalog,
		router:    http.NewServeMux(),
		templates: tpl,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		slog.Error("failed to create sub-filesystem for static assets", "error", err)
		panic(err)
	}
	s.router.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.HandleFunc("/", s.handleIndex())

	// HTMX-based routes: each returns the partial the client swaps in.
	s.router.HandleFunc("/study/", s.handleStartDeck())
	s.router.HandleFunc("/flip", s.handleFlip())
	s.router.HandleFunc("/answer", s.handleAnswer())
	s.router.HandleFunc("/redo", s.handleRedo())
	s.router.HandleFunc("/back", s.handleBack())
}

// sessionView is everything the templates need to render the current session.
type sessionView struct {
	DeckName       string
	IsRedo         bool
	Card           *deck.Card
	IsFlipped      bool
	Position       int
	Total          int
	Answered       int
	Progress       int
	Completed      bool
	CorrectCount   int
	IncorrectCards []deck.Card
	HasIncorrect   bool
}

func (s *Server) view() *sessionView {
	d, ok := s.engine.Deck()
	if !ok {
		return nil
	}
	v := &sessionView{
		DeckName:       d.Name,
		IsRedo:         s.engine.IsRedoSession(),
		IsFlipped:      s.engine.IsFlipped(),
		Position:       s.engine.CurrentIndex() + 1,
		Total:          s.engine.TotalCards(),
		Answered:       s.engine.AnsweredCount(),
		Progress:       s.engine.ProgressPercentage(),
		Completed:      s.engine.HasCompletedDeck(),
		IncorrectCards: s.engine.IncorrectCards(),
	}
	if card, ok := s.engine.CurrentCard(); ok {
		v.Card = &card
	}
	v.HasIncorrect = len(v.IncorrectCards) > 0
	v.CorrectCount = v.Answered - len(v.IncorrectCards)
	return v
}

// renderState writes the deck list when no session is active, the study view
// otherwise. Every mutating handler funnels through here so the client always
// receives the state it just produced.
func (s *Server) renderState(w http.ResponseWriter) {
	if v := s.view(); v != nil {
		s.render(w, "study", v)
		return
	}
	s.render(w, "deck_list", map[string]interface{}{
		"Decks": s.catalog.Decks(),
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// handleIndex renders the full page shell around the current state.
func (s *Server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		s.render(w, "index", map[string]interface{}{
			"Session": s.view(),
			"Decks":   s.catalog.Decks(),
		})
	}
}

// handleStartDeck starts a fresh session for the deck named in the path.
func (s *Server) handleStartDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		deckID := strings.TrimPrefix(r.URL.Path, "/study/")
		d, ok := s.catalog.ByID(deckID)
		if !ok {
			http.NotFound(w, r)
			return
		}
		s.engine.StartDeck(d)
		s.renderState(w)
	}
}

// handleFlip toggles the current card between its prompt and answer face.
func (s *Server) handleFlip() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.engine.Flip()
		s.renderState(w)
	}
}

// handleAnswer records the user's judgment for the current card.
func (s *Server) handleAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var status session.AnswerStatus
		switch r.PostFormValue("status") {
		case "correct":
			status = session.Correct
		case "incorrect":
			status = session.Incorrect
		default:
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}
		s.engine.RecordAnswer(status)
		s.renderState(w)
	}
}

// handleRedo starts a session over only the cards marked incorrect.
func (s *Server) handleRedo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		// Redoing with nothing marked incorrect would produce an empty
		// session, so treat it as a refresh of the current state.
		if s.engine.HasIncorrectCards() {
			s.engine.StartRedoWrongCards()
		}
		s.renderState(w)
	}
}

// handleBack drops the session and returns to deck selection.
func (s *Server) handleBack() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.engine.BackToDecks()
		s.renderState(w)
	}
}
