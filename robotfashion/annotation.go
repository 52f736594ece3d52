package robotfashion

import (
	"encoding/xml"
	"os"

	"github.com/pkg/errors"
)

// Target is the per-example label record handed to a training loop: one
// ground-truth box and one class code, because every RobotFashion annotation
// file encodes exactly one object instance. Boxes keep the dataset's
// [xmin, xmax, ymin, ymax] pixel order.
type Target struct {
	Boxes  [1][4]float64
	Labels [1]int64
}

// Pointer fields distinguish an absent element from a zero-valued one.
type annotationXML struct {
	Objects []objectXML `xml:"object"`
}

type objectXML struct {
	Name   *string    `xml:"name"`
	BndBox *bndboxXML `xml:"bndbox"`
}

type bndboxXML struct {
	XMin *int `xml:"xmin"`
	XMax *int `xml:"xmax"`
	YMin *int `xml:"ymin"`
	YMax *int `xml:"ymax"`
}

// ParseAnnotation reads one annotation file into a Target. Only the first
// object element is used; the record shape has no room for more.
func ParseAnnotation(path string) (Target, error) {
	var target Target

	f, err := os.Open(path)
	if err != nil {
		return target, errors.Wrapf(ErrAnnotationParse, "opening %s: %v", path, err)
	}
	defer f.Close()

	var doc annotationXML
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return target, errors.Wrapf(ErrAnnotationParse, "decoding %s: %v", path, err)
	}

	if len(doc.Objects) == 0 {
		return target, errors.Wrapf(ErrAnnotationParse, "no object element in %s", path)
	}
	obj := doc.Objects[0]

	if obj.Name == nil {
		return target, errors.Wrapf(ErrAnnotationParse, "no class name in %s", path)
	}
	category, err := CategoryFromName(*obj.Name)
	if err != nil {
		return target, errors.Wrapf(err, "in %s", path)
	}

	box := obj.BndBox
	if box == nil {
		return target, errors.Wrapf(ErrAnnotationParse, "no bounding box in %s", path)
	}

	coords := []struct {
		name  string
		value *int
	}{
		{"xmin", box.XMin},
		{"xmax", box.XMax},
		{"ymin", box.YMin},
		{"ymax", box.YMax},
	}
	for _, coord := range coords {
		if coord.value == nil {
			return target, errors.Wrapf(ErrAnnotationParse, "no %s in %s", coord.name, path)
		}
		if *coord.value < 0 {
			return target, errors.Wrapf(ErrAnnotationParse, "negative %s (%d) in %s", coord.name, *coord.value, path)
		}
	}

	target.Boxes[0] = [4]float64{
		float64(*box.XMin),
		float64(*box.XMax),
		float64(*box.YMin),
		float64(*box.YMax),
	}
	target.Labels[0] = int64(category)
	return target, nil
}
