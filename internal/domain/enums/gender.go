package enums

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// GenderAny is accepted in search preferences only, never on a user record.
const GenderAny Gender = "ANY"

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

// ValidPreference additionally allows the wildcard.
func (g Gender) ValidPreference() bool {
	return g == GenderAny || g.Valid()
}
