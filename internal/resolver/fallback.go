package resolver

import "github.com/palemoky/poetry-importer/internal/supabase"

// DefaultFallbackID is used when a name is missing from the fallback tables.
const DefaultFallbackID supabase.ID = "1"

// Ids of rows that existed in the production schema before the first import.
// They are returned when the backend cannot create a missing entity.
var dynastyFallback = map[string]supabase.ID{
	"唐":  "1",
	"宋":  "2",
	"南唐": "3",
	"北朝": "4",
	"明代": "5",
}

var poetFallback = map[string]supabase.ID{
	"李白":  "1",
	"杜甫":  "2",
	"苏轼":  "3",
	"刘禹锡": "4",
	"柳宗元": "5",
	"孟浩然": "6",
	"王维":  "7",
	"白居易": "8",
	"李绅":  "9",
	"孟郊":  "10",
	"王之涣": "11",
	"王昌龄": "12",
	"王勃":  "13",
	"贺知章": "14",
	"韦应物": "15",
	"张继":  "16",
	"韩翃":  "17",
	"韩愈":  "18",
	"李商隐": "19",
	"李煜":  "20",
	"范仲淹": "21",
	"晏殊":  "22",
	"柳永":  "23",
	"李清照": "24",
	"陆游":  "25",
	"文天祥": "26",
	"杨万里": "27",
	"范成大": "28",
	"林升":  "29",
	"叶绍翁": "30",
	"王安石": "31",
	"辛弃疾": "32",
}

// DynastyFallback returns the static id of a dynasty.
func DynastyFallback(name string) supabase.ID {
	return lookupFallback(dynastyFallback, name)
}

// PoetFallback returns the static id of a poet.
func PoetFallback(name string) supabase.ID {
	return lookupFallback(poetFallback, name)
}

func lookupFallback(table map[string]supabase.ID, name string) supabase.ID {
	if id, ok := table[name]; ok {
		return id
	}
	return DefaultFallbackID
}
