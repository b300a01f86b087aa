package classifier

import (
	"fmt"
	"sync"

	"github.com/liuzl/gocc"
)

// Conversion modes for CSV text
const (
	ConvertNone = ""
	ConvertT2S  = "t2s" // Traditional to Simplified
	ConvertS2T  = "s2t" // Simplified to Traditional
)

var (
	s2t     *gocc.OpenCC
	t2s     *gocc.OpenCC
	ccOnce  sync.Once
	ccError error
)

// initConverters loads the OpenCC dictionaries on first use so that
// runs without conversion never touch them.
func initConverters() error {
	ccOnce.Do(func() {
		var err error
		s2t, err = gocc.New("s2t")
		if err != nil {
			ccError = fmt.Errorf("failed to initialize s2t converter: %w", err)
			return
		}
		t2s, err = gocc.New("t2s")
		if err != nil {
			ccError = fmt.Errorf("failed to initialize t2s converter: %w", err)
		}
	})
	return ccError
}

// ToTraditional converts simplified Chinese to traditional Chinese
func ToTraditional(text string) (string, error) {
	if err := initConverters(); err != nil {
		return "", err
	}
	return s2t.Convert(text)
}

// ToSimplified converts traditional Chinese to simplified Chinese
func ToSimplified(text string) (string, error) {
	if err := initConverters(); err != nil {
		return "", err
	}
	return t2s.Convert(text)
}

// Convert applies a conversion mode. ConvertNone returns text unchanged.
func Convert(text, mode string) (string, error) {
	switch mode {
	case ConvertNone:
		return text, nil
	case ConvertT2S:
		return ToSimplified(text)
	case ConvertS2T:
		return ToTraditional(text)
	default:
		return "", fmt.Errorf("unknown conversion mode %q", mode)
	}
}
