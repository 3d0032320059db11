package domain

// Quaternion is a rotation in w, x, y, z order.
type Quaternion struct {
	W, X, Y, Z float64
}

// TrackingResult reports the tracking quality of a pose.
type TrackingResult int

const (
	TrackingUninitialized TrackingResult = 1
	TrackingRunningOK     TrackingResult = 200
)

// Pose is a tracked device pose pushed to the host.
type Pose struct {
	Valid                bool
	Connected            bool
	ShouldApplyHeadModel bool
	Result               TrackingResult

	WorldFromDriverRotation Quaternion
	DriverFromHeadRotation  Quaternion
	Rotation                Quaternion

	Position        [3]float64
	AngularVelocity [3]float64
}

// Matrix34 is a row-major 3x4 rigid transform.
type Matrix34 [3][4]float32

// Identity34 returns the identity transform.
func Identity34() Matrix34 {
	return Matrix34{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}}
}

// Translated34 returns a pure translation.
func Translated34(x, y, z float32) Matrix34 {
	m := Identity34()
	m[0][3] = x
	m[1][3] = y
	m[2][3] = z
	return m
}

// Vector4 is a four component vector, used for per-eye colour gains.
type Vector4 [4]float32

// Matrix44 is a row-major 4x4 projection matrix.
type Matrix44 [4][4]float32
