package classifier

// DynastyInfo contains the approximate year range of a dynasty
type DynastyInfo struct {
	StartYear int
	EndYear   int
}

var dynasties = map[string]DynastyInfo{
	"唐":  {StartYear: 618, EndYear: 907},
	"宋":  {StartYear: 960, EndYear: 1279},
	"南唐": {StartYear: 937, EndYear: 975},
	"北朝": {StartYear: 386, EndYear: 581},
	"五代": {StartYear: 907, EndYear: 960},
}

// DynastyYears returns the start and end year of a dynasty. Unknown names return (0, 0).
func DynastyYears(name string) (start, end int) {
	info, ok := dynasties[name]
	if !ok {
		return 0, 0
	}
	return info.StartYear, info.EndYear
}

// KnownDynasty reports whether name has a year range.
func KnownDynasty(name string) bool {
	_, ok := dynasties[name]
	return ok
}

// UnknownLifespan is returned for poets without a recorded lifespan.
const UnknownLifespan = "未知"

var poetLifespans = map[string]string{
	"李白":  "701-762",
	"杜甫":  "712-770",
	"苏轼":  "1037-1101",
	"李清照": "1084-1155",
	"陆游":  "1125-1210",
}

// PoetLifespan returns "birth-death" for known poets and 未知 otherwise.
func PoetLifespan(name string) string {
	if span, ok := poetLifespans[name]; ok {
		return span
	}
	return UnknownLifespan
}
