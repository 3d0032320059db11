// Package optics holds the lens model of the simulated stereo camera and
// the fixed geometry of the virtual display. Everything here is a pure
// function of its inputs.
package optics

import (
	"math"

	"github.com/bft-labs/camsim/internal/domain"
)

// DistortionFunction identifies a lens distortion model.
type DistortionFunction int32

const (
	DistortionNone DistortionFunction = iota
	DistortionFTheta
	DistortionExtendedFTheta
)

// MaxDistortionParameters is the number of coefficients per camera.
const MaxDistortionParameters = 8

// Intrinsics is the pinhole and lens model of one camera, in pixels of a
// single-eye frame.
type Intrinsics struct {
	FocalX, FocalY   float64
	CenterX, CenterY float64
	Function         DistortionFunction
	Coefficients     [MaxDistortionParameters]float64
}

// DefaultIntrinsics returns the model shared by both simulated cameras.
func DefaultIntrinsics() Intrinsics {
	return Intrinsics{
		FocalX:       450,
		FocalY:       450,
		CenterX:      512,
		CenterY:      512,
		Function:     DistortionExtendedFTheta,
		Coefficients: [MaxDistortionParameters]float64{0.19, 0.023, -0.19, 0.07},
	}
}

// Camera is a stereo camera: one model per eye over frameW x frameH eye
// images.
type Camera struct {
	FrameWidth  int
	FrameHeight int
	Eyes        [2]Intrinsics
}

// NewCamera returns a camera with the default model for both eyes.
func NewCamera(frameW, frameH int) Camera {
	return Camera{
		FrameWidth:  frameW,
		FrameHeight: frameH,
		Eyes:        [2]Intrinsics{DefaultIntrinsics(), DefaultIntrinsics()},
	}
}

// Intrinsics returns the model of camera index; anything but 0 is the
// right eye.
func (c Camera) Intrinsics(index uint32) Intrinsics {
	if index == 0 {
		return c.Eyes[0]
	}
	return c.Eyes[1]
}

// DistortionFunctions returns the per-eye model identifiers.
func (c Camera) DistortionFunctions() []int32 {
	return []int32{int32(c.Eyes[0].Function), int32(c.Eyes[1].Function)}
}

// DistortionCoefficients returns both eyes' coefficients, left first.
func (c Camera) DistortionCoefficients() []float64 {
	out := make([]float64, 0, 2*MaxDistortionParameters)
	out = append(out, c.Eyes[0].Coefficients[:]...)
	return append(out, c.Eyes[1].Coefficients[:]...)
}

// Distort maps undistorted normalized coordinates (u, v) in [0, 1] to the
// distorted image with a radial fisheye model:
//
//	theta_d = theta + k1*theta^3 + k2*theta^5 + k3*theta^7 + k4*theta^9
func (c Camera) Distort(index uint32, u, v float64) (float64, float64) {
	in := c.Intrinsics(index)
	fx := in.FocalX / float64(c.FrameWidth)
	fy := in.FocalY / float64(c.FrameHeight)
	cx := in.CenterX/float64(c.FrameWidth) - 0.5
	cy := in.CenterY/float64(c.FrameHeight) - 0.5

	us := (u - 0.5) * 2 / fx
	vs := (v - 0.5) * 2 / fy
	r := math.Hypot(us, vs)
	if r == 0 {
		return cx + 0.5, cy + 0.5
	}

	theta := math.Atan(r)
	k := in.Coefficients
	thetaD := theta +
		k[0]*math.Pow(theta, 3) +
		k[1]*math.Pow(theta, 5) +
		k[2]*math.Pow(theta, 7) +
		k[3]*math.Pow(theta, 9)
	f := thetaD / r

	return us*f*fx + cx + 0.5, vs*f*fy + cy + 0.5
}

// Projection returns the projection matrix of camera index for a side by
// side stereo texture. The horizontal focal length is halved because it is
// relative to the whole texture.
func (c Camera) Projection(index uint32, near, far float32) domain.Matrix44 {
	in := c.Intrinsics(index)
	w := float32(c.FrameWidth)
	h := float32(c.FrameHeight)

	var m domain.Matrix44
	m[0][0] = float32(in.FocalX) / w / 2
	m[1][1] = float32(in.FocalY) / h
	m[0][2] = float32(in.CenterX) / w
	m[1][2] = float32(in.CenterY)/h - 0.5
	m[2][2] = -far / (far - near)
	m[2][3] = -far * near / (far - near)
	m[3][2] = -1
	return m
}
