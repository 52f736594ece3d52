package robotfashion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeAnnotation(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validAnnotation = `<annotation>
	<filename>a.jpg</filename>
	<object>
		<name>shorts</name>
		<pose>Unspecified</pose>
		<bndbox>
			<xmin>10</xmin>
			<xmax>50</xmax>
			<ymin>20</ymin>
			<ymax>60</ymax>
		</bndbox>
	</object>
</annotation>`

func TestParseAnnotation(t *testing.T) {
	target, err := ParseAnnotation(writeAnnotation(t, validAnnotation))
	require.NoError(t, err)

	require.Equal(t, [1]int64{7}, target.Labels)
	require.Equal(t, [1][4]float64{{10, 50, 20, 60}}, target.Boxes)
}

func TestParseAnnotationFirstObjectWins(t *testing.T) {
	content := `<annotation>
	<object>
		<name>vest</name>
		<bndbox><xmin>1</xmin><xmax>2</xmax><ymin>3</ymin><ymax>4</ymax></bndbox>
	</object>
	<object>
		<name>skirt</name>
		<bndbox><xmin>5</xmin><xmax>6</xmax><ymin>7</ymin><ymax>8</ymax></bndbox>
	</object>
</annotation>`

	target, err := ParseAnnotation(writeAnnotation(t, content))
	require.NoError(t, err)
	require.Equal(t, int64(Vest), target.Labels[0])
	require.Equal(t, [4]float64{1, 2, 3, 4}, target.Boxes[0])
}

func TestParseAnnotationZeroCoordinateAllowed(t *testing.T) {
	content := `<annotation>
	<object>
		<name>vest</name>
		<bndbox><xmin>0</xmin><xmax>2</xmax><ymin>0</ymin><ymax>4</ymax></bndbox>
	</object>
</annotation>`

	target, err := ParseAnnotation(writeAnnotation(t, content))
	require.NoError(t, err)
	require.Equal(t, [4]float64{0, 2, 0, 4}, target.Boxes[0])
}

func TestParseAnnotationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			"no object element",
			`<annotation><filename>a.jpg</filename></annotation>`,
		},
		{
			"no class name",
			`<annotation><object>
				<bndbox><xmin>1</xmin><xmax>2</xmax><ymin>3</ymin><ymax>4</ymax></bndbox>
			</object></annotation>`,
		},
		{
			"unrecognized category",
			`<annotation><object>
				<name>poncho</name>
				<bndbox><xmin>1</xmin><xmax>2</xmax><ymin>3</ymin><ymax>4</ymax></bndbox>
			</object></annotation>`,
		},
		{
			"no bndbox",
			`<annotation><object><name>shorts</name></object></annotation>`,
		},
		{
			"missing xmin",
			`<annotation><object>
				<name>shorts</name>
				<bndbox><xmax>2</xmax><ymin>3</ymin><ymax>4</ymax></bndbox>
			</object></annotation>`,
		},
		{
			"negative ymax",
			`<annotation><object>
				<name>shorts</name>
				<bndbox><xmin>1</xmin><xmax>2</xmax><ymin>3</ymin><ymax>-4</ymax></bndbox>
			</object></annotation>`,
		},
		{
			"malformed xml",
			`<annotation><object>`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseAnnotation(writeAnnotation(t, test.content))
			require.ErrorIs(t, err, ErrAnnotationParse)
		})
	}
}

func TestParseAnnotationMissingFile(t *testing.T) {
	_, err := ParseAnnotation(filepath.Join(t.TempDir(), "absent.xml"))
	require.ErrorIs(t, err, ErrAnnotationParse)
}
