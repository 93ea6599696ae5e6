package geo

// BoundingBox is an axis-aligned rectangle given by its south-west and
// north-east corners. Boxes crossing the antimeridian are not supported.
type BoundingBox struct {
	SouthWest Point
	NorthEast Point
}

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p Point) bool {
	return b.SouthWest.Lat <= p.Lat && p.Lat <= b.NorthEast.Lat &&
		b.SouthWest.Lng <= p.Lng && p.Lng <= b.NorthEast.Lng
}
