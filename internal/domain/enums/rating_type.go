package enums

type RatingType string

const (
	RatingTypeLike    RatingType = "LIKE"
	RatingTypeDislike RatingType = "DISLIKE"
)

func (t RatingType) Valid() bool {
	return t == RatingTypeLike || t == RatingTypeDislike
}
