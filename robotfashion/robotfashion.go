// Package robotfashion loads the RobotFashion object-detection dataset:
// images plus one Pascal-VOC-style XML annotation per image, 13 garment
// categories. It verifies the local folder structure against shipped
// fingerprints, optionally provisions the dataset from its remote archive,
// and serves (image, target) pairs by index to a training loop.
package robotfashion

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

const datasetName = "robotfashion"

// splitFingerprint is the digest of the two entry names every split folder
// carries, "annotations" and "images".
const splitFingerprint = "369ba5f28b246d2903b8f686b18d4b89b668fa484c9baef55c1c8bc5b6f2a45e"

// DatasetName returns the dataset's canonical name.
func DatasetName() string {
	return datasetName
}

// DataFolderName returns the name of the folder the dataset lives in under a
// working directory.
func DataFolderName() string {
	return datasetName + "_data_folder"
}

// DefaultFolders returns the expected split folders with their fingerprints.
func DefaultFolders() []Folder {
	return []Folder{
		{Name: "train", SHA256: splitFingerprint},
		{Name: "validation", SHA256: splitFingerprint},
		{Name: "test", SHA256: splitFingerprint},
	}
}

// DefaultDownloadLinks returns the archive descriptors for the current
// dataset version.
func DefaultDownloadLinks() []DownloadLink {
	return []DownloadLink{
		{
			URL:    "https://drive.google.com/uc?export=download&id=1ezwR5_7OHhqjMR2D9ZMZqpq8u8xQ2MoG",
			Name:   "robotfashion_dataset.zip",
			SHA256: "5a66924dbe44eed9bc0cdf52a206470db2fd9421a5745ab17b18588952c14ba4",
			Bytes:  1050691281,
		},
	}
}

// Split selects one partition of the dataset.
type Split string

const (
	Train      Split = "train"
	Validation Split = "validation"
	Test       Split = "test"
)

// Transform post-processes a decoded image before Get hands it out.
type Transform func(image.Image) image.Image

// Options configure a Dataset.
type Options struct {
	// Root is the working directory that holds (or receives) the
	// robotfashion_data_folder tree.
	Root  string
	Split Split
	// Download permits provisioning when the local data is missing or
	// invalid. Off by default: constructing against an empty root then
	// fails instead of pulling a gigabyte archive.
	Download bool
	// SubsetRatio caps the reported length to a fraction of the matched
	// examples. Must be in (0, 1].
	SubsetRatio float64
	// Transform, when set, is applied to every decoded image.
	Transform Transform

	// Overridable for tests; nil means the shipped descriptors.
	links   []DownloadLink
	folders []Folder
}

// NewOptions returns Options for the full dataset at root.
func NewOptions(root string, split Split) Options {
	return Options{Root: root, Split: split, SubsetRatio: 1}
}

func (o Options) validate() error {
	if o.Root == "" {
		return errors.Wrap(ErrInvalidConfig, "root path must be set")
	}

	switch o.Split {
	case Train, Validation, Test:
	default:
		return errors.Wrapf(ErrInvalidConfig, "split %q should be one of [train, validation, test]", o.Split)
	}

	if o.SubsetRatio <= 0 || o.SubsetRatio > 1 {
		return errors.Wrapf(ErrInvalidConfig, "subset ratio %v needs to be in (0, 1]", o.SubsetRatio)
	}
	return nil
}

// Dataset provides indexed access to one split's examples. The path lists
// are fixed at construction; images and annotations are re-read on every Get.
type Dataset struct {
	opts       Options
	imagePaths []string
	labelPaths []string
}

// New validates the options, verifies (or provisions) the local dataset and
// enumerates the chosen split.
func New(opts Options) (*Dataset, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	folders := opts.folders
	if folders == nil {
		folders = DefaultFolders()
	}
	links := opts.links
	if links == nil {
		links = DefaultDownloadLinks()
	}

	dataRoot := filepath.Join(opts.Root, DataFolderName())

	if !VerifyStructure(dataRoot, folders) {
		if !opts.Download {
			return nil, errors.Wrapf(ErrInvalidConfig,
				"cannot find valid %s data under %s; set Download to fetch the dataset", datasetName, dataRoot)
		}

		if err := Ensure(dataRoot, links, folders); err != nil {
			return nil, err
		}
		if !VerifyStructure(dataRoot, folders) {
			return nil, errors.Wrap(ErrProvisioning, "downloading and/or unzipping data failed")
		}
	}

	if opts.Split == Test {
		return nil, errors.Wrap(ErrUnsupportedSplit, "labels of test data are not published")
	}

	imagePaths, labelPaths, err := loadSplit(filepath.Join(dataRoot, string(opts.Split)))
	if err != nil {
		return nil, err
	}

	return &Dataset{opts: opts, imagePaths: imagePaths, labelPaths: labelPaths}, nil
}

// loadSplit enumerates a split's files. Pairing is positional: the i-th
// image in sorted order belongs to the i-th annotation in sorted order.
func loadSplit(dir string) ([]string, []string, error) {
	imagePaths, err := listFiles(filepath.Join(dir, "images"))
	if err != nil {
		return nil, nil, errors.Wrapf(ErrDataConsistency, "listing images: %v", err)
	}

	labelPaths, err := listFiles(filepath.Join(dir, "annotations"))
	if err != nil {
		return nil, nil, errors.Wrapf(ErrDataConsistency, "listing annotations: %v", err)
	}

	if len(imagePaths) != len(labelPaths) {
		return nil, nil, errors.Wrapf(ErrDataConsistency,
			"%d images but %d annotations in %s", len(imagePaths), len(labelPaths), dir)
	}
	return imagePaths, labelPaths, nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Len reports the subset-capped number of examples.
func (d *Dataset) Len() int {
	return int(d.opts.SubsetRatio * float64(len(d.imagePaths)))
}

// Get loads and decodes example i. Both files are re-read on every call;
// nothing is cached.
func (d *Dataset) Get(i int) (image.Image, Target, error) {
	if err := d.checkIndex(i); err != nil {
		return nil, Target{}, err
	}

	img, err := loadImage(d.imagePaths[i])
	if err != nil {
		return nil, Target{}, err
	}

	target, err := ParseAnnotation(d.labelPaths[i])
	if err != nil {
		return nil, Target{}, err
	}

	if d.opts.Transform != nil {
		img = d.opts.Transform(img)
	}
	return img, target, nil
}

// Annotation parses example i's label record without decoding its image.
func (d *Dataset) Annotation(i int) (Target, error) {
	if err := d.checkIndex(i); err != nil {
		return Target{}, err
	}
	return ParseAnnotation(d.labelPaths[i])
}

// Indices are checked against the subset-capped length, not the raw file
// count: a subset cap is a hard window.
func (d *Dataset) checkIndex(i int) error {
	if i < 0 || i >= d.Len() {
		return errors.Errorf("index %d out of range [0, %d)", i, d.Len())
	}
	return nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return img, nil
}
