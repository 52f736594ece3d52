package robotfashion

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category is one of the 13 garment classes annotated in the RobotFashion
// dataset. Codes are 1-based and stable across dataset versions.
type Category int64

const (
	ShortSleeveTop Category = iota + 1
	LongSleeveTop
	ShortSleeveOutwear
	LongSleeveOutwear
	Vest
	Sling
	Shorts
	Trousers
	Skirt
	ShortSleeveDress
	LongSleeveDress
	VestDress
	SlingDress
)

// NumCategories is the size of the closed category set.
const NumCategories = 13

var categoryNames = map[Category]string{
	ShortSleeveTop:     "short_sleeve_top",
	LongSleeveTop:      "long_sleeve_top",
	ShortSleeveOutwear: "short_sleeve_outwear",
	LongSleeveOutwear:  "long_sleeve_outwear",
	Vest:               "vest",
	Sling:              "sling",
	Shorts:             "shorts",
	Trousers:           "trousers",
	Skirt:              "skirt",
	ShortSleeveDress:   "short_sleeve_dress",
	LongSleeveDress:    "long_sleeve_dress",
	VestDress:          "vest_dress",
	SlingDress:         "sling_dress",
}

var nameToCategory = func() map[string]Category {
	m := make(map[string]Category, NumCategories+1)
	for c, name := range categoryNames {
		m[name] = c
	}
	// Annotations produced against the first release of the label table key
	// this class as "long_sleeve_dres"; keep resolving the truncated form.
	m["long_sleeve_dres"] = LongSleeveDress
	return m
}()

// String returns the canonical annotation name of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int64(c))
}

// CategoryFromName resolves an annotation class name to its category code.
func CategoryFromName(name string) (Category, error) {
	if c, ok := nameToCategory[name]; ok {
		return c, nil
	}
	return 0, errors.Wrapf(ErrAnnotationParse, "unknown category name %q", name)
}
