// Package controllerio defines the data that flows into and out of the
// control core each tick: raw sensor readings, derived/filtered
// measurements, and the actuator references the helmsman produces.
package controllerio

import "time"

// ImuReading is a single IMU sample: attitude, body-frame velocity and
// the IMU's own internally-fused position and heading estimates. The
// IMU carries its own onboard magnetometer (MagPhiZRad/MagValid) in
// addition to its Kalman-filtered attitude heading (PhiZBoatRad) — the
// two disagree in exactly the way two independent heading estimates
// should, which is the point of mixing them against a third,
// physically separate compass sensor (see CompassReading) rather than
// trusting either alone.
type ImuReading struct {
	PhiZBoatRad   float64 // Kalman-filtered attitude heading
	PhiXRad       float64 // roll
	PhiYRad       float64 // pitch
	OmegaBoatRadS float64 // yaw rate
	VelocityXMS   float64 // body-x velocity
	LatitudeDeg   float64 // IMU's own internally-fused position
	LongitudeDeg  float64
	MagPhiZRad    float64 // onboard magnetometer-derived heading
	MagValid      bool
	TemperatureC  float64
	Valid         bool // overall IMU fault flag
}

// CompassReading is a sample from the independent physical compass
// sensor — separate hardware from the IMU's own onboard magnetometer,
// and the third input to the heading mixer.
type CompassReading struct {
	PhiZRad float64
	Valid   bool
}

// GPSReading is a sample from the secondary, independent GPS receiver,
// distinct from the IMU's own internally-fused position.
type GPSReading struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	CogRad       float64 // course over ground
	SpeedMS      float64 // speed over ground
	Valid        bool
}

// WindReading is a single apparent-wind sensor sample (angle is the
// direction the wind is blowing FROM, relative to the boat).
type WindReading struct {
	AlphaAppRad float64
	MagAppMS    float64
	Valid       bool
}

// DriveActualValuesRad reports the measured position of each actuator,
// plus whether each has completed its homing run since last power-up.
type DriveActualValuesRad struct {
	GammaSailRad   float64
	GammaRudderRad float64
	GammaRudderLRad float64 // second (twin) rudder, if fitted

	SailHomed    bool
	RudderHomed  bool
	RudderLHomed bool
}

// DriveReferenceValuesRad is the commanded position of each actuator.
type DriveReferenceValuesRad struct {
	GammaSailRad    float64
	GammaRudderRad  float64
	GammaRudderLRad float64
}

// ControllerInput is everything the control core reads in a single tick.
type ControllerInput struct {
	Timestamp    time.Time
	Imu          ImuReading
	Gps          GPSReading
	Compass      CompassReading
	Wind         WindReading
	Drives       DriveActualValuesRad
	AlphaStarRad float64 // skipper's desired heading this tick
}

// FilteredMeasurements is the output of the filter block: the smoothed,
// fused view of the boat's state the rest of the control core operates
// on.
type FilteredMeasurements struct {
	PhiZBoatRad   float64
	OmegaBoatRadS float64
	MagBoatMS     float64
	PhiXRad       float64
	PhiYRad       float64

	AlphaAppRad float64
	MagAppMS    float64
	AlphaTrueRad float64
	MagTrueMS    float64

	LatitudeDeg  float64
	LongitudeDeg float64

	AngleAOARad float64
	MagAOAMS    float64

	TemperatureC float64

	Valid         bool
	ValidAppWind  bool
	ValidTrueWind bool
}

// Status carries cumulative counters and diagnostic state surfaced in
// telemetry and logs.
type Status struct {
	Tacks  int
	Jibes  int
	GiveUps int
}

// ControllerOutput is everything the control core produces in a single
// tick: the actuator references plus bookkeeping status.
type ControllerOutput struct {
	DrivesReference DriveReferenceValuesRad
	Status          Status
}
