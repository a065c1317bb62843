package deck

// Card is a single vocabulary item: Spanish prompt, English answer and an
// optional pronunciation hint. Cards are immutable once the catalog is loaded.
type Card struct {
	ID            string `koanf:"id" validate:"required"`
	Spanish       string `koanf:"spanish" validate:"required"`
	English       string `koanf:"english" validate:"required"`
	Pronunciation string `koanf:"pronunciation"`
}

// Deck is a named, ordered collection of cards covering one topic. The stored
// card order is the deck's natural order; study sessions shuffle independently.
type Deck struct {
	ID          string `koanf:"id" validate:"required"`
	Name        string `koanf:"name" validate:"required"`
	Description string `koanf:"description"`
	Cards       []Card `koanf:"cards" validate:"unique=ID,dive"`
}
