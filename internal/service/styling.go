package service

import "storefront/internal/models"

var stylingServices = []models.StylingService{
	{
		ID:          1,
		Name:        "Personal Shopping",
		Description: "Transform your wardrobe with curated picks.",
		Price:       250,
		Tag:         "Starting at",
		Features: []string{
			"Curated wardrobe updates",
			"Seasonal trend analysis",
			"Sourcing rare & unique pieces",
		},
		CTA:     "Book a Consultation",
		Variant: "primary",
	},
	{
		ID:          2,
		Name:        "Closet Audit",
		Description: "Streamline and reimagine what you own.",
		Price:       400,
		Tag:         "Starting at",
		Features: []string{
			"Outfit reimagination & lookbook",
			"Strategic decluttering session",
		},
		CTA:     "Learn More",
		Variant: "secondary",
	},
	{
		ID:          3,
		Name:        "Virtual Styling",
		Description: "Global style consulting on the go.",
		Price:       150,
		Tag:         "Session",
		Features:    []string{},
		CTA:         "Book Digital Session",
		Variant:     "secondary",
	},
}

// StylingServices returns a copy of the offered styling packages.
func StylingServices() []models.StylingService {
	out := make([]models.StylingService, len(stylingServices))
	copy(out, stylingServices)
	return out
}
