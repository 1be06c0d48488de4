package vec

// Facing определяет одну из шести граней вокселя.
type Facing uint8

const (
	FaceDown Facing = iota
	FaceUp
	FaceNorth // -Z
	FaceSouth // +Z
	FaceWest  // -X
	FaceEast  // +X
)

var (
	allFaces        = [6]Facing{FaceDown, FaceUp, FaceNorth, FaceSouth, FaceWest, FaceEast}
	horizontalFaces = [4]Facing{FaceNorth, FaceEast, FaceSouth, FaceWest}
)

// AllFaces возвращает все шесть граней.
func AllFaces() [6]Facing { return allFaces }

// Horizontals возвращает четыре боковые грани.
func Horizontals() [4]Facing { return horizontalFaces }

// Offset возвращает единичное смещение в направлении грани
func (f Facing) Offset() Vec3 {
	switch f {
	case FaceDown:
		return Vec3{Y: -1}
	case FaceUp:
		return Vec3{Y: 1}
	case FaceNorth:
		return Vec3{Z: -1}
	case FaceSouth:
		return Vec3{Z: 1}
	case FaceWest:
		return Vec3{X: -1}
	case FaceEast:
		return Vec3{X: 1}
	}
	return Vec3{}
}

// Opposite возвращает противоположную грань
func (f Facing) Opposite() Facing {
	switch f {
	case FaceDown:
		return FaceUp
	case FaceUp:
		return FaceDown
	case FaceNorth:
		return FaceSouth
	case FaceSouth:
		return FaceNorth
	case FaceWest:
		return FaceEast
	default:
		return FaceWest
	}
}

// IsHorizontal сообщает, лежит ли грань в плоскости XZ
func (f Facing) IsHorizontal() bool {
	return f >= FaceNorth && f <= FaceEast
}

func (f Facing) String() string {
	switch f {
	case FaceDown:
		return "down"
	case FaceUp:
		return "up"
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	case FaceWest:
		return "west"
	case FaceEast:
		return "east"
	default:
		return "unknown"
	}
}
