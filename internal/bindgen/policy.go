package bindgen

import (
	"fmt"
	"math"

	"git.home.luguber.info/inful/ayamsys/internal/bindgen/clangast"
)

// EnumPolicy states how every matched C enum is represented. It applies to all
// enums uniformly.
type EnumPolicy string

// EnumClosedVariant emits a named integer type whose members are exactly the
// enum's discriminants, with a checked conversion from raw values.
const EnumClosedVariant EnumPolicy = "closed_variant"

// Validate rejects unknown policies.
func (p EnumPolicy) Validate() error {
	if p != EnumClosedVariant {
		return fmt.Errorf("unsupported enum policy %q", string(p))
	}
	return nil
}

// underlyingType picks the smallest of int32, uint32, int64 and uint64 that
// holds every value. No Go integer holds both a negative value and one above
// math.MaxInt64.
func underlyingType(values []clangast.Enumerator) (string, error) {
	lo, hi := int64(0), int64(0)
	negative, huge := false, false
	for i, e := range values {
		if e.Unsigned {
			huge = true
			continue
		}
		if e.Value < 0 {
			negative = true
		}
		if i == 0 || e.Value < lo {
			lo = e.Value
		}
		if i == 0 || e.Value > hi {
			hi = e.Value
		}
	}
	switch {
	case huge && negative:
		return "", fmt.Errorf("values span negative and above %d", uint64(math.MaxInt64))
	case huge:
		return "uint64", nil
	case lo >= math.MinInt32 && hi <= math.MaxInt32:
		return "int32", nil
	case lo >= 0 && hi <= math.MaxUint32:
		return "uint32", nil
	default:
		return "int64", nil
	}
}
