package vec

import "fmt"

// Vec3 представляет позицию вокселя в мировой сетке.
// Y: вертикальная ось, X/Z — горизонтальная плоскость.
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Vec3Float представляет трехмерный вектор с плавающими координатами
type Vec3Float struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Границы упаковки ключа: 26 бит на X и Z, 12 бит на Y.
const (
	keyHorizontalBits = 26
	keyVerticalBits   = 12
	keyHorizontalMask = 1<<keyHorizontalBits - 1
	keyVerticalMask   = 1<<keyVerticalBits - 1
)

// Key упаковывает позицию в плоский целочисленный ключ для visited-множеств.
// Координаты вне диапазона упаковки (|X|,|Z| >= 2^25, Y вне [-2048, 2047])
// дают коллизии.
func (v Vec3) Key() uint64 {
	x := uint64(v.X) & keyHorizontalMask
	z := uint64(v.Z) & keyHorizontalMask
	y := uint64(v.Y) & keyVerticalMask
	return x<<(keyHorizontalBits+keyVerticalBits) | z<<keyVerticalBits | y
}

// FromKey восстанавливает позицию из ключа, упакованного Key.
func FromKey(k uint64) Vec3 {
	x := int64(k>>(keyHorizontalBits+keyVerticalBits)) & keyHorizontalMask
	z := int64(k>>keyVerticalBits) & keyHorizontalMask
	y := int64(k) & keyVerticalMask
	return Vec3{
		X: int(signExtend(x, keyHorizontalBits)),
		Y: int(signExtend(y, keyVerticalBits)),
		Z: int(signExtend(z, keyHorizontalBits)),
	}
}

func signExtend(v int64, bits uint) int64 {
	shift := 64 - bits
	return (v << shift) >> shift
}

// DistanceSqTo возвращает квадрат расстояния до другого вектора
func (v Vec3) DistanceSqTo(other Vec3) int {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// HorizontalDistanceSq возвращает квадрат расстояния в плоскости XZ
func (v Vec3) HorizontalDistanceSq(other Vec3) int {
	dx := v.X - other.X
	dz := v.Z - other.Z
	return dx*dx + dz*dz
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Side возвращает соседнюю позицию в направлении face
func (v Vec3) Side(face Facing) Vec3 {
	return v.Add(face.Offset())
}

// Down возвращает позицию на n блоков ниже
func (v Vec3) Down(n int) Vec3 {
	return Vec3{X: v.X, Y: v.Y - n, Z: v.Z}
}

// Up возвращает позицию на n блоков выше
func (v Vec3) Up(n int) Vec3 {
	return Vec3{X: v.X, Y: v.Y + n, Z: v.Z}
}

// ToFloat возвращает координаты центра нижней грани вокселя
func (v Vec3) ToFloat() Vec3Float {
	return Vec3Float{X: float64(v.X) + 0.5, Y: float64(v.Y), Z: float64(v.Z) + 0.5}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}
