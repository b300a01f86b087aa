package importer

import (
	"time"

	"github.com/palemoky/poetry-importer/internal/classifier"
	"github.com/palemoky/poetry-importer/internal/supabase"
)

// DefaultPopularity is assigned to every imported poem.
const DefaultPopularity = 5

// PoemRecord is the body posted to the poems collection.
type PoemRecord struct {
	Title           string      `json:"title"`
	Content         string      `json:"content"`
	PoetID          supabase.ID `json:"poet_id"`
	DynastyID       supabase.ID `json:"dynasty_id"`
	TypeID          int         `json:"type_id"`
	DifficultyLevel int         `json:"difficulty_level"`
	Popularity      int         `json:"popularity"`
	CreatedAt       string      `json:"created_at"`
}

// poemFields are the CSV values of one row after normalization.
type poemFields struct {
	Title    string
	Dynasty  string
	Poet     string
	Content  string
	Category string
}

func newPoemRecord(f poemFields, poetID, dynastyID supabase.ID, now time.Time) PoemRecord {
	return PoemRecord{
		Title:           f.Title,
		Content:         f.Content,
		PoetID:          poetID,
		DynastyID:       dynastyID,
		TypeID:          classifier.PoemTypeID(f.Category),
		DifficultyLevel: classifier.DifficultyLevel(f.Content),
		Popularity:      DefaultPopularity,
		CreatedAt:       now.Format(time.RFC3339Nano),
	}
}
