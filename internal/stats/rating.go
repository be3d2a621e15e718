package stats

// Rating labels a player's accuracy.
type Rating struct {
	Label string
}

// Tiers maps accuracy to a rating, highest first.
var Tiers = []struct {
	MinAccuracy float64
	Rating      Rating
}{
	{0.80, Rating{Label: "Oracle"}},
	{0.65, Rating{Label: "Sharp"}},
	{0.50, Rating{Label: "Coin Flipper"}},
	{0.35, Rating{Label: "Contrarian"}},
}

// DefaultRating is used below the lowest tier.
var DefaultRating = Rating{Label: "Inverse Indicator"}

// MinGuessesForRating is the number of guesses needed before a rating is given.
const MinGuessesForRating = 5

// Unrated is returned for rounds that are too short to judge.
var Unrated = Rating{Label: "Unrated"}

// Rate maps a round's accuracy to a Rating.
func Rate(guesses int, accuracy float64) Rating {
	if guesses < MinGuessesForRating {
		return Unrated
	}
	for _, t := range Tiers {
		if accuracy >= t.MinAccuracy {
			return t.Rating
		}
	}
	return DefaultRating
}
