package deck

// Builtin returns the catalog shipped with the binary, used when no decks
// directory or repository is configured.
func Builtin() *Catalog {
	return NewCatalog([]Deck{
		{
			ID:          "food",
			Name:        "Comida (Food)",
			Description: "Common food-related vocabulary",
			Cards: []Card{
				{ID: "food-1", Spanish: "la manzana", English: "apple", Pronunciation: "lah mahn-SAH-nah"},
				{ID: "food-2", Spanish: "el pan", English: "bread", Pronunciation: "el PAHN"},
				{ID: "food-3", Spanish: "el queso", English: "cheese", Pronunciation: "el KEH-soh"},
				{ID: "food-4", Spanish: "el café", English: "coffee", Pronunciation: "el kah-FEH"},
				{ID: "food-5", Spanish: "el agua", English: "water", Pronunciation: "el AH-gwah"},
			},
		},
		{
			ID:          "travel",
			Name:        "Viajes (Travel)",
			Description: "Words you will use while traveling",
			Cards: []Card{
				{ID: "travel-1", Spanish: "el aeropuerto", English: "airport", Pronunciation: "el ah-eh-roh-PWEHR-toh"},
				{ID: "travel-2", Spanish: "el boleto", English: "ticket", Pronunciation: "el boh-LEH-toh"},
				{ID: "travel-3", Spanish: "la maleta", English: "suitcase", Pronunciation: "lah mah-LEH-tah"},
				{ID: "travel-4", Spanish: "el taxi", English: "taxi", Pronunciation: "el TAHK-see"},
				{ID: "travel-5", Spanish: "el mapa", English: "map", Pronunciation: "el MAH-pah"},
			},
		},
	})
}
