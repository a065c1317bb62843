package session

import (
	"errors"
	"fmt"
	"testing"

	"tarjetas/internal/deck"
)

// memStore is an in-memory session slot. It deep-copies on save the way the
// real store serializes, so later engine mutations cannot alias into it.
type memStore struct {
	snap     *Snapshot
	saves    int
	clears   int
	failSave bool
	failLoad bool
}

func (m *memStore) SaveSession(snap Snapshot) error {
	m.saves++
	if m.failSave {
		return errors.New("storage unavailable")
	}
	answers := make(map[string]AnswerStatus, len(snap.Answers))
	for id, status := range snap.Answers {
		answers[id] = status
	}
	order := append([]int(nil), snap.CardOrder...)
	m.snap = &Snapshot{
		DeckID:       snap.DeckID,
		CurrentIndex: snap.CurrentIndex,
		Answers:      answers,
		CardOrder:    order,
	}
	return nil
}

func (m *memStore) LoadSession() (*Snapshot, error) {
	if m.failLoad {
		return nil, errors.New("storage unavailable")
	}
	return m.snap, nil
}

func (m *memStore) ClearSession() error {
	m.clears++
	m.snap = nil
	return nil
}

func testDeck(n int) deck.Deck {
	d := deck.Deck{ID: "food", Name: "Comida (Food)"}
	for i := 1; i <= n; i++ {
		d.Cards = append(d.Cards, deck.Card{
			ID:      fmt.Sprintf("food-%d", i),
			Spanish: fmt.Sprintf("palabra %d", i),
			English: fmt.Sprintf("word %d", i),
		})
	}
	return d
}

func TestStartDeck(t *testing.T) {
	store := &memStore{}
	e := NewEngine(store)
	e.StartDeck(testDeck(5))

	if !e.Active() {
		t.Fatal("expected an active session after StartDeck")
	}
	if e.CurrentIndex() != 0 {
		t.Errorf("expected index 0, got %d", e.CurrentIndex())
	}
	if e.IsFlipped() {
		t.Error("expected a fresh session to start unflipped")
	}
	if e.AnsweredCount() != 0 {
		t.Errorf("expected 0 answers, got %d", e.AnsweredCount())
	}
	if e.TotalCards() != 5 {
		t.Errorf("expected 5 cards, got %d", e.TotalCards())
	}
	if store.snap == nil {
		t.Fatal("expected StartDeck to persist a snapshot")
	}
	if store.snap.DeckID != "food" {
		t.Errorf("expected persisted deck id 'food', got %q", store.snap.DeckID)
	}
	assertPermutation(t, store.snap.CardOrder, 5)
}

func TestFlipToggles(t *testing.T) {
	e := NewEngine(&memStore{})
	e.StartDeck(testDeck(3))

	e.Flip()
	if !e.IsFlipped() {
		t.Error("expected flipped after one Flip")
	}
	e.Flip()
	if e.IsFlipped() {
		t.Error("expected unflipped after double Flip")
	}
}

func TestFlipDoesNotPersist(t *testing.T) {
	store := &memStore{}
	e := NewEngine(store)
	e.StartDeck(testDeck(3))

	saves := store.saves
	e.Flip()
	if store.saves != saves {
		t.Errorf("expected Flip to leave the store untouched, saves went %d -> %d", saves, store.saves)
	}
}

// Scenario: answer five cards as correct, incorrect, correct, incorrect,
// correct. Progress climbs in steps of 20, two cards end up marked for
// review, and the deck is complete the instant the fifth answer lands.
func TestAnswerFullDeck(t *testing.T) {
	store := &memStore{}
	e := NewEngine(store)
	e.StartDeck(testDeck(5))

	statuses := []AnswerStatus{Correct, Incorrect, Correct, Incorrect, Correct}
	wantProgress := []int{20, 40, 60, 80, 100}

	for i, status := range statuses {
		if _, ok := e.CurrentCard(); !ok {
			t.Fatalf("no current card before answer %d", i+1)
		}
		e.RecordAnswer(status)
		if got := e.ProgressPercentage(); got != wantProgress[i] {
			t.Errorf("after answer %d: expected progress %d, got %d", i+1, wantProgress[i], got)
		}
	}

	if !e.HasCompletedDeck() {
		t.Error("expected deck to be complete after answering every card")
	}
	if got := len(e.IncorrectCards()); got != 2 {
		t.Errorf("expected 2 incorrect cards, got %d", got)
	}
	if !e.HasIncorrectCards() {
		t.Error("expected HasIncorrectCards")
	}
	// The last answer holds position and forces the answer face so the
	// completion view renders over a flipped final card.
	if e.CurrentIndex() != 4 {
		t.Errorf("expected index to stay at 4, got %d", e.CurrentIndex())
	}
	if !e.IsFlipped() {
		t.Error("expected the final card to be forced face-up")
	}
	if store.snap == nil || len(store.snap.Answers) != 5 {
		t.Fatalf("expected all 5 answers persisted, got %+v", store.snap)
	}
}

func TestAnswerAdvancesAndUnflips(t *testing.T) {
	e := NewEngine(&memStore{})
	e.StartDeck(testDeck(3))

	e.Flip()
	e.RecordAnswer(Correct)
	if e.CurrentIndex() != 1 {
		t.Errorf("expected index 1, got %d", e.CurrentIndex())
	}
	if e.IsFlipped() {
		t.Error("expected the next card to start unflipped")
	}
}

func TestReanswerReplaces(t *testing.T) {
	e := NewEngine(&memStore{})
	d := testDeck(1)
	e.StartDeck(d)

	e.RecordAnswer(Incorrect)
	if e.AnsweredCount() != 1 {
		t.Fatalf("expected 1 answer, got %d", e.AnsweredCount())
	}
	// The single card is also the last card, so it is still current.
	e.RecordAnswer(Correct)
	if e.AnsweredCount() != 1 {
		t.Errorf("expected re-answering to replace, not accumulate: got %d", e.AnsweredCount())
	}
	if status, _ := e.Answer(d.Cards[0].ID); status != Correct {
		t.Errorf("expected the replacement status, got %q", status)
	}
	if e.HasIncorrectCards() {
		t.Error("expected no incorrect cards after the replacement")
	}
}

func TestIncorrectCountNeverExceedsAnswered(t *testing.T) {
	e := NewEngine(&memStore{})
	e.StartDeck(testDeck(4))

	for i := 0; i < 4; i++ {
		if got, answered := len(e.IncorrectCards()), e.AnsweredCount(); got > answered {
			t.Errorf("incorrect (%d) exceeds answered (%d)", got, answered)
		}
		e.RecordAnswer(Incorrect)
	}
	if got := len(e.IncorrectCards()); got != 4 {
		t.Errorf("expected 4 incorrect cards, got %d", got)
	}
}

func TestOperationsWithoutSessionAreNoOps(t *testing.T) {
	store := &memStore{}
	e := NewEngine(store)

	e.Flip()
	e.RecordAnswer(Correct)
	e.StartRedoWrongCards()

	if e.Active() {
		t.Error("expected no session")
	}
	if _, ok := e.CurrentCard(); ok {
		t.Error("expected no current card")
	}
	if e.TotalCards() != 0 || e.AnsweredCount() != 0 || e.ProgressPercentage() != 0 {
		t.Error("expected zeroed derived values with no session")
	}
	if e.HasCompletedDeck() {
		t.Error("expected HasCompletedDeck to be false with no session")
	}
	if store.saves != 0 {
		t.Errorf("expected no persistence traffic, got %d saves", store.saves)
	}
}

func TestBackToDecksClearsSlot(t *testing.T) {
	store := &memStore{}
	e := NewEngine(store)
	e.StartDeck(testDeck(2))

	e.BackToDecks()
	if e.Active() {
		t.Error("expected no session after BackToDecks")
	}
	if store.snap != nil {
		t.Error("expected the persisted slot to be cleared")
	}
	// Clearing with no session is equally safe.
	e.BackToDecks()
	if store.clears != 2 {
		t.Errorf("expected 2 clears, got %d", store.clears)
	}
}

func TestRedoWrongCards(t *testing.T) {
	store := &memStore{}
	e := NewEngine(store)
	d := testDeck(5)
	e.StartDeck(d)

	// Mark exactly the cards at deck positions 2 and 4 incorrect.
	wrong := map[string]bool{"food-2": true, "food-4": true}
	for i := 0; i < 5; i++ {
		card, ok := e.CurrentCard()
		if !ok {
			t.Fatalf("no current card at step %d", i)
		}
		if wrong[card.ID] {
			e.RecordAnswer(Incorrect)
		} else {
			e.RecordAnswer(Correct)
		}
	}
	parentSnap := *store.snap
	savesBefore := store.saves

	e.StartRedoWrongCards()

	if !e.IsRedoSession() {
		t.Fatal("expected a redo session")
	}
	if e.TotalCards() != 2 {
		t.Errorf("expected the redo deck to have 2 cards, got %d", e.TotalCards())
	}
	if e.AnsweredCount() != 0 {
		t.Errorf("expected a fresh answer map, got %d answers", e.AnsweredCount())
	}
	redoDeck, _ := e.Deck()
	// Incorrect cards keep their relative deck order in the derived deck.
	if redoDeck.Cards[0].ID != "food-2" || redoDeck.Cards[1].ID != "food-4" {
		t.Errorf("expected redo deck [food-2 food-4], got %v", redoDeck.Cards)
	}

	// Complete the redo; the slot must still hold the parent snapshot.
	e.RecordAnswer(Correct)
	e.RecordAnswer(Correct)
	if !e.HasCompletedDeck() {
		t.Error("expected the redo session to complete")
	}
	if e.HasIncorrectCards() {
		t.Error("expected no incorrect cards after redoing both correctly")
	}
	if store.saves != savesBefore {
		t.Errorf("expected no saves during the redo session, got %d extra", store.saves-savesBefore)
	}
	if store.snap == nil || store.snap.DeckID != parentSnap.DeckID || len(store.snap.Answers) != len(parentSnap.Answers) {
		t.Errorf("expected the slot to still hold the parent snapshot, got %+v", store.snap)
	}
}

func TestRedoKeepsOriginalAnswers(t *testing.T) {
	e := NewEngine(&memStore{})
	e.StartDeck(testDeck(2))
	e.RecordAnswer(Incorrect)
	e.RecordAnswer(Incorrect)

	e.StartRedoWrongCards()
	original := e.OriginalAnswers()
	if len(original) != 2 {
		t.Fatalf("expected 2 original answers, got %d", len(original))
	}
	// Changing redo answers must not leak back into the retained snapshot of
	// the parent's answers.
	e.RecordAnswer(Correct)

	if got := e.AnsweredCount(); got != 1 {
		t.Errorf("expected 1 redo answer, got %d", got)
	}
	for id, status := range e.OriginalAnswers() {
		if status != Incorrect {
			t.Errorf("expected original answer for %s to stay incorrect, got %q", id, status)
		}
	}
}

func TestRestore(t *testing.T) {
	catalog := deck.NewCatalog([]deck.Deck{testDeck(5)})

	t.Run("resumes persisted session", func(t *testing.T) {
		store := &memStore{snap: &Snapshot{
			DeckID:       "food",
			CurrentIndex: 3,
			Answers:      map[string]AnswerStatus{"food-1": Correct},
			CardOrder:    []int{4, 3, 2, 1, 0},
		}}
		e := NewEngine(store)
		e.Restore(catalog)

		if !e.Active() {
			t.Fatal("expected a restored session")
		}
		if e.CurrentIndex() != 3 {
			t.Errorf("expected index 3, got %d", e.CurrentIndex())
		}
		if e.AnsweredCount() != 1 {
			t.Errorf("expected 1 restored answer, got %d", e.AnsweredCount())
		}
		if e.IsFlipped() {
			t.Error("expected a restored session to resume unflipped")
		}
		card, ok := e.CurrentCard()
		if !ok || card.ID != "food-2" {
			t.Errorf("expected card order to be honored (food-2), got %v", card)
		}
	})

	t.Run("falls back to deck order on length mismatch", func(t *testing.T) {
		store := &memStore{snap: &Snapshot{
			DeckID:       "food",
			CurrentIndex: 2,
			Answers:      map[string]AnswerStatus{"food-1": Correct},
			CardOrder:    []int{0},
		}}
		e := NewEngine(store)
		e.Restore(catalog)

		if !e.Active() {
			t.Fatal("expected a restored session")
		}
		if e.CurrentIndex() != 2 {
			t.Errorf("expected index preserved at 2, got %d", e.CurrentIndex())
		}
		card, ok := e.CurrentCard()
		if !ok || card.ID != "food-3" {
			t.Errorf("expected identity order (food-3 at index 2), got %v", card)
		}
	})

	t.Run("unknown deck yields no session", func(t *testing.T) {
		store := &memStore{snap: &Snapshot{
			DeckID:       "ghosts",
			CurrentIndex: 0,
			Answers:      map[string]AnswerStatus{},
		}}
		e := NewEngine(store)
		e.Restore(catalog)
		if e.Active() {
			t.Error("expected no session for an unknown deck id")
		}
	})

	t.Run("empty slot yields no session", func(t *testing.T) {
		e := NewEngine(&memStore{})
		e.Restore(catalog)
		if e.Active() {
			t.Error("expected no session from an empty slot")
		}
	})

	t.Run("load failure yields no session", func(t *testing.T) {
		e := NewEngine(&memStore{failLoad: true})
		e.Restore(catalog)
		if e.Active() {
			t.Error("expected no session when the store fails to load")
		}
	})
}

func TestStoreFailuresAreSwallowed(t *testing.T) {
	store := &memStore{failSave: true}
	e := NewEngine(store)
	e.StartDeck(testDeck(2))

	e.RecordAnswer(Correct)
	e.RecordAnswer(Correct)

	if !e.HasCompletedDeck() {
		t.Error("expected the session to keep working in memory despite save failures")
	}
}

func TestEmptyDeck(t *testing.T) {
	e := NewEngine(&memStore{})
	e.StartDeck(deck.Deck{ID: "empty", Name: "Empty"})

	if _, ok := e.CurrentCard(); ok {
		t.Error("expected no current card for an empty deck")
	}
	if e.ProgressPercentage() != 0 {
		t.Errorf("expected 0%% progress on an empty deck, got %d", e.ProgressPercentage())
	}
	// Answering must not panic or record anything.
	e.RecordAnswer(Correct)
	if e.AnsweredCount() != 0 {
		t.Errorf("expected no answers on an empty deck, got %d", e.AnsweredCount())
	}
}
