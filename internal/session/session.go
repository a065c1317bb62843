package session

import (
	"log/slog"
	"math"
	"sync"

	"tarjetas/internal/deck"
)

// AnswerStatus is the user's self-reported result for one card in one session.
type AnswerStatus string

const (
	Correct   AnswerStatus = "correct"
	Incorrect AnswerStatus = "incorrect"
)

// Snapshot is the durable form of a session: just enough to resume after a
// restart. Redo sessions are never snapshotted.
type Snapshot struct {
	DeckID       string                  `json:"deckId"`
	CurrentIndex int                     `json:"currentIndex"`
	Answers      map[string]AnswerStatus `json:"answers"`
	CardOrder    []int                   `json:"cardOrder,omitempty"`
}

// Store is the single persisted-session slot the engine writes through.
type Store interface {
	SaveSession(Snapshot) error
	LoadSession() (*Snapshot, error)
	ClearSession() error
}

// DeckResolver looks a deck up in the known catalog.
type DeckResolver interface {
	ByID(id string) (deck.Deck, bool)
}

// State is the in-memory state of one active session. CardOrder is a
// permutation of [0, len(Deck.Cards)) fixed for the session's lifetime.
type State struct {
	Deck            deck.Deck
	CurrentIndex    int
	IsFlipped       bool
	Answers         map[string]AnswerStatus
	CardOrder       []int
	IsRedoSession   bool
	OriginalAnswers map[string]AnswerStatus
}

// Engine owns at most one live session and every transition over it. Store
// failures never surface: the session keeps working in memory and only loses
// durability. Operations called with no active session are no-ops.
type Engine struct {
	mu    sync.Mutex
	store Store
	state *State
}

// NewEngine creates an engine with no active session.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Restore resumes the persisted session, if any. Unknown deck ids and
// malformed slots silently leave the engine with no session. A missing or
// length-mismatched card order falls back to the deck's natural order, and a
// restored session always resumes on the unflipped front face.
func (e *Engine) Restore(resolver DeckResolver) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, err := e.store.LoadSession()
	if err != nil {
		slog.Warn("failed to load persisted session", "error", err)
		return
	}
	if snap == nil {
		return
	}
	d, ok := resolver.ByID(snap.DeckID)
	if !ok {
		slog.Warn("persisted session references unknown deck", "deck_id", snap.DeckID)
		return
	}

	order := snap.CardOrder
	if len(order) != len(d.Cards) {
		order = identityOrder(len(d.Cards))
	}
	answers := snap.Answers
	if answers == nil {
		answers = make(map[string]AnswerStatus)
	}
	e.state = &State{
		Deck:         d,
		CurrentIndex: snap.CurrentIndex,
		IsFlipped:    false,
		Answers:      answers,
		CardOrder:    order,
	}
	slog.Info("resumed session", "deck_id", d.ID, "answered", len(answers))
}

// StartDeck begins a fresh session over the given deck with a newly shuffled
// card order, and persists it.
func (e *Engine) StartDeck(d deck.Deck) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = &State{
		Deck:      d,
		Answers:   make(map[string]AnswerStatus),
		CardOrder: ShuffledOrder(len(d.Cards)),
	}
	e.persist()
}

// Flip toggles between the prompt and answer face of the current card. Flip
// state is not durable: a restart always resumes unflipped.
func (e *Engine) Flip() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return
	}
	e.state.IsFlipped = !e.state.IsFlipped
}

// RecordAnswer stores the user's judgment for the current card, replacing any
// earlier judgment for the same card, then advances. On the last position the
// index stays put and the card is forced face-up so the completion view has a
// flipped final card to render over.
func (e *Engine) RecordAnswer(status AnswerStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	if s == nil {
		return
	}
	card, ok := s.current()
	if !ok {
		return
	}
	s.Answers[card.ID] = status

	if s.CurrentIndex >= len(s.Deck.Cards)-1 {
		s.IsFlipped = true
	} else {
		s.CurrentIndex++
		s.IsFlipped = false
	}
	if !s.IsRedoSession {
		e.persist()
	}
}

// BackToDecks drops the active session and clears the persisted slot. Clearing
// is unconditional; it is a harmless no-op for redo sessions, which were never
// persisted.
func (e *Engine) BackToDecks() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = nil
	if err := e.store.ClearSession(); err != nil {
		slog.Warn("failed to clear persisted session", "error", err)
	}
}

// StartRedoWrongCards begins an ephemeral session over only the cards marked
// incorrect so far, in their deck order, under a fresh shuffle. The redo
// session is never persisted; a restart falls back to the parent snapshot.
// Callers should gate on HasIncorrectCards, since redoing zero cards produces
// an empty session.
func (e *Engine) StartRedoWrongCards() {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	if s == nil {
		return
	}
	redoDeck := s.Deck
	redoDeck.Cards = s.incorrectCards()

	original := make(map[string]AnswerStatus, len(s.Answers))
	for id, status := range s.Answers {
		original[id] = status
	}
	e.state = &State{
		Deck:            redoDeck,
		Answers:         make(map[string]AnswerStatus),
		CardOrder:       ShuffledOrder(len(redoDeck.Cards)),
		IsRedoSession:   true,
		OriginalAnswers: original,
	}
}

// Active reports whether a session is live.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != nil
}

// IsRedoSession reports whether the live session is a redo of wrong cards.
func (e *Engine) IsRedoSession() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != nil && e.state.IsRedoSession
}

// Deck returns the live session's deck.
func (e *Engine) Deck() (deck.Deck, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return deck.Deck{}, false
	}
	return e.state.Deck, true
}

// IsFlipped reports whether the current card shows its answer face.
func (e *Engine) IsFlipped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != nil && e.state.IsFlipped
}

// CurrentIndex returns the zero-based position within the session's card
// order, or -1 with no session.
func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return -1
	}
	return e.state.CurrentIndex
}

// CurrentCard resolves the card at the current position, or false if there is
// no session or the position resolves to no card (e.g. an empty deck).
func (e *Engine) CurrentCard() (deck.Card, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return deck.Card{}, false
	}
	return e.state.current()
}

// TotalCards is the number of cards in the live session's deck, 0 without one.
func (e *Engine) TotalCards() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return 0
	}
	return len(e.state.Deck.Cards)
}

// AnsweredCount is the number of distinct cards answered so far.
func (e *Engine) AnsweredCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return 0
	}
	return len(e.state.Answers)
}

// HasCompletedDeck reports whether every card has an answer. It becomes true
// the instant the last card is answered.
func (e *Engine) HasCompletedDeck() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	return s != nil && len(s.Answers) == len(s.Deck.Cards)
}

// ProgressPercentage is answered/total rounded to a whole percent, 0 with no
// session or an empty deck.
func (e *Engine) ProgressPercentage() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	if s == nil || len(s.Deck.Cards) == 0 {
		return 0
	}
	return int(math.Round(float64(len(s.Answers)) / float64(len(s.Deck.Cards)) * 100))
}

// IncorrectCards returns the cards currently marked incorrect, in deck order.
// Unanswered cards are not incorrect.
func (e *Engine) IncorrectCards() []deck.Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil
	}
	return e.state.incorrectCards()
}

// HasIncorrectCards reports whether a redo session would have any cards.
func (e *Engine) HasIncorrectCards() bool {
	return len(e.IncorrectCards()) > 0
}

// OriginalAnswers returns the parent session's answer map when the live
// session is a redo, nil otherwise. The returned map is a copy.
func (e *Engine) OriginalAnswers() map[string]AnswerStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil || e.state.OriginalAnswers == nil {
		return nil
	}
	out := make(map[string]AnswerStatus, len(e.state.OriginalAnswers))
	for id, status := range e.state.OriginalAnswers {
		out[id] = status
	}
	return out
}

// Answer returns the recorded status for a card id, if any.
func (e *Engine) Answer(cardID string) (AnswerStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return "", false
	}
	status, ok := e.state.Answers[cardID]
	return status, ok
}

func (s *State) current() (deck.Card, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.CardOrder) {
		return deck.Card{}, false
	}
	i := s.CardOrder[s.CurrentIndex]
	if i < 0 || i >= len(s.Deck.Cards) {
		return deck.Card{}, false
	}
	return s.Deck.Cards[i], true
}

func (s *State) incorrectCards() []deck.Card {
	var cards []deck.Card
	for _, c := range s.Deck.Cards {
		if s.Answers[c.ID] == Incorrect {
			cards = append(cards, c)
		}
	}
	return cards
}

// persist writes the current session through the store. Callers hold e.mu.
// Failures are logged and swallowed; durability degrades, the session does not.
func (e *Engine) persist() {
	s := e.state
	if s == nil || s.IsRedoSession {
		return
	}
	snap := Snapshot{
		DeckID:       s.Deck.ID,
		CurrentIndex: s.CurrentIndex,
		Answers:      s.Answers,
		CardOrder:    s.CardOrder,
	}
	if err := e.store.SaveSession(snap); err != nil {
		slog.Warn("failed to persist session", "deck_id", s.Deck.ID, "error", err)
	}
}
