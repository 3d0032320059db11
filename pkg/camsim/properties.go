package camsim

import (
	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/optics"
	"github.com/bft-labs/camsim/pkg/log"
)

// Property keys advertised at activation.
const (
	PropCameraFirmwareVersion            PropertyKey = "CameraFirmwareVersion_Uint64"
	PropCameraFirmwareDescription        PropertyKey = "CameraFirmwareDescription_String"
	PropHasCamera                        PropertyKey = "HasCamera_Bool"
	PropNumCameras                       PropertyKey = "NumCameras_Int32"
	PropCameraFrameLayout                PropertyKey = "CameraFrameLayout_Int32"
	PropCameraStreamFormat               PropertyKey = "CameraStreamFormat_Int32"
	PropAllowCameraToggle                PropertyKey = "AllowCameraToggle_Bool"
	PropSupportsRoomViewDepthProjection  PropertyKey = "SupportsRoomViewDepthProjection_Bool"
	PropAllowLightSourceFrequency        PropertyKey = "AllowLightSourceFrequency_Bool"
	PropSupportsRoomViewDirect           PropertyKey = "SupportsRoomViewDirect_Bool"
	PropCameraSupportsCompatibilityModes PropertyKey = "CameraSupportsCompatibilityModes_Bool"
	PropCameraCompatibilityMode          PropertyKey = "CameraCompatibilityMode_Int32"
	PropCameraDistortionFunction         PropertyKey = "CameraDistortionFunction_Int32_Array"
	PropCameraDistortionCoefficients     PropertyKey = "CameraDistortionCoefficients_Float_Array"
	PropCameraWhiteBalance               PropertyKey = "CameraWhiteBalance_Vector4_Array"
	PropCameraToHeadTransform            PropertyKey = "CameraToHeadTransform_Matrix34"
	PropCameraToHeadTransforms           PropertyKey = "CameraToHeadTransforms_Matrix34_Array"

	PropModelNumber               PropertyKey = "ModelNumber_String"
	PropSerialNumber              PropertyKey = "SerialNumber_String"
	PropFirmwareVersion           PropertyKey = "FirmwareVersion_Uint64"
	PropFPGAVersion               PropertyKey = "FPGAVersion_Uint64"
	PropUserIpdMeters             PropertyKey = "UserIpdMeters_Float"
	PropDisplayDebugMode          PropertyKey = "DisplayDebugMode_Bool"
	PropSecondsFromVsyncToPhotons PropertyKey = "SecondsFromVsyncToPhotons_Float"
	PropUserHeadToEyeDepthMeters  PropertyKey = "UserHeadToEyeDepthMeters_Float"
	PropDisplayFrequency          PropertyKey = "DisplayFrequency_Float"
	PropIsOnDesktop               PropertyKey = "IsOnDesktop_Bool"
	PropContainsProximitySensor   PropertyKey = "ContainsProximitySensor_Bool"
	PropIgnoreMotionForStandby    PropertyKey = "IgnoreMotionForStandby_Bool"
	PropCurrentUniverseID         PropertyKey = "CurrentUniverseId_Uint64"
	PropNeverTracked              PropertyKey = "NeverTracked_Bool"
	PropInputProfilePath          PropertyKey = "InputProfilePath_String"
)

// Camera frame layout bits.
const (
	FrameLayoutMono       int32 = 0x01
	FrameLayoutStereo     int32 = 0x02
	FrameLayoutVertical   int32 = 0x10
	FrameLayoutHorizontal int32 = 0x20
)

// Fixed property values of the simulated device.
const (
	CameraFirmwareVersion  = 0x200040049
	DisplayFirmwareVersion = 0x56456bA0
	DisplayFPGAVersion     = 0x104
	DefaultIPD             = 0.063
	UniverseID             = 42069

	ModelNumber      = "openvr_camera_sim_virtual_display"
	InputProfilePath = "{simplehmd}/input/simulated_hmd_profile.json"

	cameraOffset = 0.05
	eyeOffset    = 0.04
)

type property struct {
	key   PropertyKey
	value any
}

// cameraProperties returns the camera capabilities. The camera-to-head
// transforms are the inverse poses of each camera relative to the head.
func cameraProperties(cam optics.Camera) []property {
	left, right := CameraToHeadTransforms()
	return []property{
		{PropCameraFirmwareVersion, uint64(CameraFirmwareVersion)},
		{PropCameraFirmwareDescription, "Simulated stereo camera"},
		{PropHasCamera, true},
		{PropNumCameras, int32(2)},
		{PropCameraFrameLayout, FrameLayoutStereo | FrameLayoutHorizontal},
		{PropCameraStreamFormat, int32(domain.FormatRGBX32)},
		{PropAllowCameraToggle, true},
		{PropSupportsRoomViewDepthProjection, false},
		{PropAllowLightSourceFrequency, false},
		{PropSupportsRoomViewDirect, false},
		{PropCameraSupportsCompatibilityModes, false},
		{PropCameraCompatibilityMode, int32(0)},
		{PropCameraDistortionFunction, cam.DistortionFunctions()},
		{PropCameraDistortionCoefficients, cam.DistortionCoefficients()},
		{PropCameraWhiteBalance, []domain.Vector4{{1, 1, 1, 0}, {1, 1, 1, 0}}},
		{PropCameraToHeadTransform, left},
		{PropCameraToHeadTransforms, []domain.Matrix34{left, right}},
	}
}

func displayProperties(serial string) []property {
	return []property{
		{PropModelNumber, ModelNumber},
		{PropSerialNumber, serial},
		{PropFirmwareVersion, uint64(DisplayFirmwareVersion)},
		{PropFPGAVersion, uint64(DisplayFPGAVersion)},
		{PropUserIpdMeters, float32(DefaultIPD)},
		{PropDisplayDebugMode, true},
		{PropSecondsFromVsyncToPhotons, float32(0)},
		{PropUserHeadToEyeDepthMeters, float32(0)},
		{PropDisplayFrequency, float32(0)},
		{PropIsOnDesktop, false},
		{PropContainsProximitySensor, false},
		{PropIgnoreMotionForStandby, true},
		{PropCurrentUniverseID, uint64(UniverseID)},
		{PropNeverTracked, true},
		{PropInputProfilePath, InputProfilePath},
	}
}

// CameraToHeadTransforms returns the left and right camera poses in head
// space.
func CameraToHeadTransforms() (left, right domain.Matrix34) {
	return domain.Translated34(cameraOffset, 0, 0), domain.Translated34(-cameraOffset, 0, 0)
}

// EyeToHeadTransforms returns the left and right eye poses in head space.
func EyeToHeadTransforms() (left, right domain.Matrix34) {
	return domain.Translated34(eyeOffset, 0, 0), domain.Translated34(-eyeOffset, 0, 0)
}

// advertise sets every property and logs failures. It never fails.
func (d *Device) advertise(props []property) int {
	failed := 0
	for _, p := range props {
		if err := d.props.SetProperty(d.handle, p.key, p.value); err != nil {
			failed++
			d.logger.Warn("set property failed",
				log.String("property", string(p.key)),
				log.Err(err),
			)
		}
	}
	return failed
}
