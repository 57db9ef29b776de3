package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRatingIndex is returned when an index does not map to a rating.
var ErrInvalidRatingIndex = errors.New("invalid rating index")

// Rating is a letter grade bound to a numeric index. A is the best grade.
type Rating int

// All ratings supported. The numeric value is the rating index.
const (
	RatingA Rating = iota + 1
	RatingB
	RatingC
	RatingD
	RatingE
)

// AllRatings lists every rating from best to worst.
var AllRatings = []Rating{RatingA, RatingB, RatingC, RatingD, RatingE}

var ratingLetters = map[Rating]string{
	RatingA: "A",
	RatingB: "B",
	RatingC: "C",
	RatingD: "D",
	RatingE: "E",
}

// RatingByIndex returns the rating whose index equals i.
func RatingByIndex(i int) (Rating, error) {
	r := Rating(i)
	if _, ok := ratingLetters[r]; !ok {
		return 0, fmt.Errorf("%w: unknown value '%d'", ErrInvalidRatingIndex, i)
	}
	return r, nil
}

// ParseRating converts a letter such as "B" into its rating.
func ParseRating(s string) (Rating, error) {
	letter := strings.ToUpper(strings.TrimSpace(s))
	for _, r := range AllRatings {
		if ratingLetters[r] == letter {
			return r, nil
		}
	}
	return 0, fmt.Errorf("invalid rating letter '%s'. must be A, B, C, D, E", s)
}

// Index returns the numeric index of the rating.
func (r Rating) Index() int {
	return int(r)
}

// String returns the letter of the rating.
func (r Rating) String() string {
	if letter, ok := ratingLetters[r]; ok {
		return letter
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// Valid reports whether the rating is one of A through E.
func (r Rating) Valid() bool {
	_, ok := ratingLetters[r]
	return ok
}

// WorseThan reports whether r is a worse grade than other.
func (r Rating) WorseThan(other Rating) bool {
	return r > other
}

// MarshalText encodes the rating as its letter.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: unknown value '%d'", ErrInvalidRatingIndex, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rating letter.
func (r *Rating) UnmarshalText(text []byte) error {
	parsed, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
