package classifier

import "unicode/utf8"

// DefaultTypeID is the id of 抒情诗, used for categories outside the table.
const DefaultTypeID = 5

// Difficulty levels
const (
	DifficultyEasy   = 1
	DifficultyMedium = 2
	DifficultyHard   = 3

	easyMaxChars   = 20
	mediumMaxChars = 50
)

// poemTypes maps the CSV category column to poem_types ids.
// 咏史怀古 is an alias of 怀古诗.
var poemTypes = map[string]int{
	"思乡诗":  1,
	"山水诗":  2,
	"记行诗":  3,
	"送别诗":  4,
	"抒情诗":  5,
	"咏物诗":  6,
	"爱国诗":  7,
	"田园诗":  8,
	"怀古诗":  9,
	"爱情诗":  10,
	"酬赠诗":  11,
	"边塞诗":  12,
	"叙事诗":  13,
	"讽喻诗":  14,
	"亲情诗":  15,
	"哲理诗":  16,
	"节日诗":  17,
	"咏史怀古": 9,
}

// PoemTypeID returns the type id for a category, DefaultTypeID when unknown.
func PoemTypeID(category string) int {
	if id, ok := poemTypes[category]; ok {
		return id
	}
	return DefaultTypeID
}

// DifficultyLevel grades a poem body by its character count (runes, not bytes):
// up to 20 is easy, up to 50 medium, anything longer hard.
func DifficultyLevel(content string) int {
	switch n := utf8.RuneCountInString(content); {
	case n <= easyMaxChars:
		return DifficultyEasy
	case n <= mediumMaxChars:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}
