// Package disks holds predefined volume geometries that can be referred to by
// name instead of giving every dimension by hand.
package disks

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/dargueta/myfs/file_systems/myfsv3"
	"github.com/gocarina/gocsv"
)

type DiskGeometry struct {
	Slug          string `csv:"slug"`
	Name          string `csv:"name"`
	InodeCount    uint   `csv:"inode_count"`
	BlockCount    uint   `csv:"block_count"`
	BytesPerBlock uint   `csv:"bytes_per_block"`
	Notes         string `csv:"notes"`
}

// Geometry gives the volume geometry this disk describes.
func (g *DiskGeometry) Geometry() myfsv3.Geometry {
	return myfsv3.Geometry{
		InodeCount:    g.InodeCount,
		BlockCount:    g.BlockCount,
		BytesPerBlock: g.BytesPerBlock,
	}
}

// TotalSizeBytes gives the size of the image file a volume with this geometry
// needs.
func (g *DiskGeometry) TotalSizeBytes() int64 {
	return g.Geometry().TotalSize()
}

////////////////////////////////////////////////////////////////////////////////

//go:embed geometries.csv
var diskGeometriesRawCSV string
var diskGeometries map[string]DiskGeometry

func GetPredefinedDiskGeometry(slug string) (DiskGeometry, error) {
	geometry, ok := diskGeometries[slug]
	if ok {
		return geometry, nil
	}

	err := fmt.Errorf("no predefined disk geometry exists with slug %q", slug)
	return DiskGeometry{}, err
}

// ListPredefinedDiskGeometries returns all predefined geometries, sorted by
// slug.
func ListPredefinedDiskGeometries() []DiskGeometry {
	geometries := make([]DiskGeometry, 0, len(diskGeometries))
	for _, geometry := range diskGeometries {
		geometries = append(geometries, geometry)
	}
	sort.Slice(geometries, func(i, j int) bool {
		return geometries[i].Slug < geometries[j].Slug
	})
	return geometries
}

func parseDiskGeometries(rawCSV string) (map[string]DiskGeometry, error) {
	csvReader := csv.NewReader(strings.NewReader(rawCSV))
	csvReader.Comma = '|'

	var rows []DiskGeometry
	err := gocsv.UnmarshalCSV(csvReader, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to decode disk geometries: %w", err)
	}

	geometries := make(map[string]DiskGeometry, len(rows))
	for i, row := range rows {
		_, exists := geometries[row.Slug]
		if exists {
			return nil, fmt.Errorf(
				"duplicate definition for disk %q found on row %d", row.Slug, i+1)
		}

		err = row.Geometry().Validate()
		if err != nil {
			return nil, fmt.Errorf("disk %q on row %d is invalid: %w", row.Slug, i+1, err)
		}
		geometries[row.Slug] = row
	}
	return geometries, nil
}

func init() {
	geometries, err := parseDiskGeometries(diskGeometriesRawCSV)
	if err != nil {
		panic(err)
	}
	diskGeometries = geometries
}
