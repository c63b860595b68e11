package places

import (
	"sync"

	"github.com/ringsaturn/tzf"
)

// TimezoneFinder maps a coordinate to an IANA time zone name.
type TimezoneFinder interface {
	GetTimezoneName(lng, lat float64) string
}

// lazyFinder defers loading the tzf polygon data until the first lookup.
type lazyFinder struct {
	once   sync.Once
	finder tzf.F
	err    error
}

func NewTimezoneFinder() TimezoneFinder {
	return &lazyFinder{}
}

func (f *lazyFinder) GetTimezoneName(lng, lat float64) string {
	f.once.Do(func() {
		f.finder, f.err = tzf.NewDefaultFinder()
	})
	if f.err != nil || f.finder == nil {
		return ""
	}
	return f.finder.GetTimezoneName(lng, lat)
}
