package models

// StylingService is an offered styling package. The list is static.
type StylingService struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Tag         string   `json:"tag"`
	Features    []string `json:"features"`
	CTA         string   `json:"cta"`
	Variant     string   `json:"variant"`
}
