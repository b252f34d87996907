package fund

import "time"

// DefaultReviews seeds testimonials for deployments without a database.
func DefaultReviews() []Review {
	base := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	return []Review{
		{
			ID:         "01JHGZ4P8Y6W1V2Q3R4S5T6Y7V",
			UserName:   "Priya Sharma",
			ReviewText: "My father's surgery was funded in nine days. Every update was visible to the donors.",
			Rating:     5,
			CreatedAt:  base,
		},
		{
			ID:         "01JHGZ4P8Y6W1V2Q3R4S5T6Y7W",
			UserName:   "Arjun Mehta",
			ReviewText: "Held funds until the hospital confirmed. That is why I trust the platform.",
			Rating:     5,
			CreatedAt:  base.Add(48 * time.Hour),
		},
		{
			ID:         "01JHGZ4P8Y6W1V2Q3R4S5T6Y7X",
			UserName:   "Fatima Khan",
			ReviewText: "Our school library campaign reached its goal through the share code alone.",
			Rating:     4,
			CreatedAt:  base.Add(96 * time.Hour),
		},
	}
}
