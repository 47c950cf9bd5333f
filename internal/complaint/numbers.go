// File path: internal/complaint/numbers.go
package complaint

import (
	"context"
	"math/rand/v2"
)

const (
	genNoMin = 100
	genNoMax = 999
)

// Counters reserves durable sequence numbers.
type Counters interface {
	ReserveCounters(ctx context.Context, categoryID int64) (objNo, totalNo int64, err error)
}

// Numbers are the three numbers embedded in a complaint's identifiers.
// ObjNo and TotalNo are unique; GenNo is decorative.
type Numbers struct {
	ObjNo   int64
	GenNo   int64
	TotalNo int64
}

// ReserveNumbers reserves the category and global numbers and draws genNo
// uniformly from [100, 999].
func ReserveNumbers(ctx context.Context, counters Counters, categoryID int64, rng *rand.Rand) (Numbers, error) {
	objNo, totalNo, err := counters.ReserveCounters(ctx, categoryID)
	if err != nil {
		return Numbers{}, err
	}
	return Numbers{ObjNo: objNo, GenNo: drawGenNo(rng), TotalNo: totalNo}, nil
}

func drawGenNo(rng *rand.Rand) int64 {
	span := int64(genNoMax - genNoMin + 1)
	if rng == nil {
		return genNoMin + rand.Int64N(span)
	}
	return genNoMin + rng.Int64N(span)
}
