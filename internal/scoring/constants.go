package scoring

// Duel problem scoring
const (
	ProblemMaxScore = 30
	PenaltyPerMiss  = 5
)

// Reconciliation points
const (
	LowRatingPoints   = 5
	BaseRatingFloor   = 800
	BaseRatingPoints  = 10
	PointsPerStep     = 5
	RatingStep        = 100
	FirstAttemptBonus = 5
)

// Duel rating bounds
const (
	RatingOffset  = -400
	MinDuelRating = 800
	MaxDuelRating = 3500
)
