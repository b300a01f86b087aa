package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDynastyYears(t *testing.T) {
	tests := []struct {
		name      string
		wantStart int
		wantEnd   int
	}{
		{"唐", 618, 907},
		{"宋", 960, 1279},
		{"南唐", 937, 975},
		{"北朝", 386, 581},
		{"五代", 907, 960},
		{"明代", 0, 0},
		{"", 0, 0},
		{"Tang", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := DynastyYears(tt.name)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
			assert.Equal(t, tt.wantStart != 0, KnownDynasty(tt.name))
		})
	}
}

func TestPoetLifespan(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"李白", "701-762"},
		{"杜甫", "712-770"},
		{"苏轼", "1037-1101"},
		{"李清照", "1084-1155"},
		{"陆游", "1125-1210"},
		{"王维", UnknownLifespan},
		{"", "未知"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PoetLifespan(tt.name))
		})
	}
}
