// Package bus implements the line-bus wire protocol: space-separated
// key:value messages, one per line, exchanged with the broadcast daemon
// over a Unix-domain socket. It provides parsing/encoding for the fixed
// set of topics the control core reads and writes, and a non-blocking
// mailbox client that always hands the latest message per topic to the
// caller without ever blocking the tick.
package bus

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxLineBytes is the line-bus's hard per-message limit.
const MaxLineBytes = 1024

// Imu is a parsed imu: message.
type Imu struct {
	TimestampMS int64
	TempC       float64
	AccXMS2     float64
	AccYMS2     float64
	AccZMS2     float64
	GyrXRadS    float64
	GyrYRadS    float64
	GyrZRadS    float64
	MagXAU      float64
	MagYAU      float64
	MagZAU      float64
	RollDeg     float64
	PitchDeg    float64
	YawDeg      float64
	LatDeg      float64
	LngDeg      float64
	AltM        float64
	VelXMS      float64
	VelYMS      float64
	VelZMS      float64
	MagYawDeg   float64 // onboard magnetometer-derived heading
	MagValid    bool
}

// Wind is a parsed wind: message.
type Wind struct {
	TimestampMS int64
	AngleDeg    float64
	SpeedMS     float64
	Valid       bool
}

// GPS is a parsed gps: message from the secondary, independent GPS
// receiver (distinct from the IMU's own internally-fused position).
type GPS struct {
	TimestampMS int64
	LatDeg      float64
	LngDeg      float64
	CogDeg      float64
	SpeedMS     float64
	Valid       bool
}

// Compass is a parsed compass: message from the independent physical
// compass sensor, separate hardware from the IMU's onboard magnetometer.
type Compass struct {
	TimestampMS int64
	YawDeg      float64
	Valid       bool
}

// RudderStatus is a parsed ruddersts: message (actual drive angles plus
// each drive's homing state).
type RudderStatus struct {
	TimestampMS  int64
	RudderLDeg   float64
	RudderRDeg   float64
	SailDeg      float64
	SailHomed    bool
	RudderHomed  bool
	RudderLHomed bool
}

// RudderControl is an encoded rudderctl: message (commanded drive angles).
type RudderControl struct {
	TimestampMS int64
	RudderLDeg  float64
	RudderRDeg  float64
	SailDeg     float64
}

// SkipperInput is a parsed skipper_input: message.
type SkipperInput struct {
	TimestampMS   int64
	LongitudeDeg  float64
	LatitudeDeg   float64
	AngleTrueDeg  float64
	MagTrueKn     float64
}

// Ais is a parsed ais: message. ShipName, HeadingDeg and Status are
// optional on the wire; HasHeading/HasStatus/HasShipName report whether
// they were present.
type Ais struct {
	TimestampMS int64
	MMSI        int64
	MsgType     int
	SpeedMS     float64
	LatDeg      float64
	LngDeg      float64
	CogDeg      float64
	HeadingDeg  float64
	HasHeading  bool
	Status      int
	HasStatus   bool
	ShipName    string
	HasShipName bool
}

// fields splits a message body (everything after the "tag:") into its
// space-separated key:value pairs. Quotes get no special treatment, so a
// value containing a space is cut at that space.
func fields(line string) map[string]string {
	out := make(map[string]string)
	var i int
	for i < len(line) {
		for i < len(line) && line[i] == ' ' {
			i++
		}
		start := i
		for i < len(line) && line[i] != ' ' {
			i++
		}
		if i == start {
			break
		}
		tok := line[start:i]
		colon := strings.IndexByte(tok, ':')
		if colon < 0 {
			continue
		}
		out[tok[:colon]] = tok[colon+1:]
	}
	return out
}

func parseFloat(m map[string]string, key string) float64 {
	v, ok := m[key]
	if !ok {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseInt64(m map[string]string, key string) int64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseBool(m map[string]string, key string) bool {
	return m[key] == "1"
}

// topicAndBody splits "tag: rest of line" into ("tag", "rest of line").
func topicAndBody(line string) (string, string) {
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", ""
	}
	return strings.TrimSpace(line[:colon]), strings.TrimSpace(line[colon+1:])
}

// ParseImu parses a full "imu: ..." line.
func ParseImu(line string) (Imu, error) {
	tag, body := topicAndBody(line)
	if tag != "imu" {
		return Imu{}, fmt.Errorf("bus: not an imu message: %q", line)
	}
	m := fields(body)
	return Imu{
		TimestampMS: parseInt64(m, "timestamp_ms"),
		TempC:       parseFloat(m, "temp_c"),
		AccXMS2:     parseFloat(m, "acc_x_m_s2"),
		AccYMS2:     parseFloat(m, "acc_y_m_s2"),
		AccZMS2:     parseFloat(m, "acc_z_m_s2"),
		GyrXRadS:    parseFloat(m, "gyr_x_rad_s"),
		GyrYRadS:    parseFloat(m, "gyr_y_rad_s"),
		GyrZRadS:    parseFloat(m, "gyr_z_rad_s"),
		MagXAU:      parseFloat(m, "mag_x_au"),
		MagYAU:      parseFloat(m, "mag_y_au"),
		MagZAU:      parseFloat(m, "mag_z_au"),
		RollDeg:     parseFloat(m, "roll_deg"),
		PitchDeg:    parseFloat(m, "pitch_deg"),
		YawDeg:      parseFloat(m, "yaw_deg"),
		LatDeg:      parseFloat(m, "lat_deg"),
		LngDeg:      parseFloat(m, "lng_deg"),
		AltM:        parseFloat(m, "alt_m"),
		VelXMS:      parseFloat(m, "vel_x_m_s"),
		VelYMS:      parseFloat(m, "vel_y_m_s"),
		VelZMS:      parseFloat(m, "vel_z_m_s"),
		MagYawDeg:   parseFloat(m, "mag_yaw_deg"),
		MagValid:    parseBool(m, "mag_valid"),
	}, nil
}

// ParseGPS parses a full "gps: ..." line.
func ParseGPS(line string) (GPS, error) {
	tag, body := topicAndBody(line)
	if tag != "gps" {
		return GPS{}, fmt.Errorf("bus: not a gps message: %q", line)
	}
	m := fields(body)
	return GPS{
		TimestampMS: parseInt64(m, "timestamp_ms"),
		LatDeg:      parseFloat(m, "lat_deg"),
		LngDeg:      parseFloat(m, "lng_deg"),
		CogDeg:      parseFloat(m, "cog_deg"),
		SpeedMS:     parseFloat(m, "speed_m_s"),
		Valid:       parseBool(m, "valid"),
	}, nil
}

// ParseCompass parses a full "compass: ..." line.
func ParseCompass(line string) (Compass, error) {
	tag, body := topicAndBody(line)
	if tag != "compass" {
		return Compass{}, fmt.Errorf("bus: not a compass message: %q", line)
	}
	m := fields(body)
	return Compass{
		TimestampMS: parseInt64(m, "timestamp_ms"),
		YawDeg:      parseFloat(m, "yaw_deg"),
		Valid:       parseBool(m, "valid"),
	}, nil
}

// ParseWind parses a full "wind: ..." line.
func ParseWind(line string) (Wind, error) {
	tag, body := topicAndBody(line)
	if tag != "wind" {
		return Wind{}, fmt.Errorf("bus: not a wind message: %q", line)
	}
	m := fields(body)
	return Wind{
		TimestampMS: parseInt64(m, "timestamp_ms"),
		AngleDeg:    parseFloat(m, "angle_deg"),
		SpeedMS:     parseFloat(m, "speed_m_s"),
		Valid:       parseBool(m, "valid"),
	}, nil
}

// ParseRudderStatus parses a full "ruddersts: ..." line.
func ParseRudderStatus(line string) (RudderStatus, error) {
	tag, body := topicAndBody(line)
	if tag != "ruddersts" {
		return RudderStatus{}, fmt.Errorf("bus: not a ruddersts message: %q", line)
	}
	m := fields(body)
	return RudderStatus{
		TimestampMS:  parseInt64(m, "timestamp_ms"),
		RudderLDeg:   parseFloat(m, "rudder_l_deg"),
		RudderRDeg:   parseFloat(m, "rudder_r_deg"),
		SailDeg:      parseFloat(m, "sail_deg"),
		SailHomed:    parseBool(m, "sail_homed"),
		RudderHomed:  parseBool(m, "rudder_homed"),
		RudderLHomed: parseBool(m, "rudder_l_homed"),
	}, nil
}

// EncodeRudderControl formats a "rudderctl: ..." line (without trailing
// newline).
func EncodeRudderControl(c RudderControl) string {
	return fmt.Sprintf("rudderctl: timestamp_ms:%d rudder_l_deg:%s rudder_r_deg:%s sail_deg:%s",
		c.TimestampMS, formatFloat(c.RudderLDeg), formatFloat(c.RudderRDeg), formatFloat(c.SailDeg))
}

// ParseSkipperInput parses a full "skipper_input: ..." line.
func ParseSkipperInput(line string) (SkipperInput, error) {
	tag, body := topicAndBody(line)
	if tag != "skipper_input" {
		return SkipperInput{}, fmt.Errorf("bus: not a skipper_input message: %q", line)
	}
	m := fields(body)
	return SkipperInput{
		TimestampMS:  parseInt64(m, "timestamp_ms"),
		LongitudeDeg: parseFloat(m, "longitude_deg"),
		LatitudeDeg:  parseFloat(m, "latitude_deg"),
		AngleTrueDeg: parseFloat(m, "angle_true_deg"),
		MagTrueKn:    parseFloat(m, "mag_true_kn"),
	}, nil
}

// EncodeSkipperInput formats a "skipper_input: ..." line using the
// canonical 6-decimal lat/lon, 2-decimal wind precision.
func EncodeSkipperInput(s SkipperInput) string {
	return fmt.Sprintf("skipper_input: timestamp_ms:%d longitude_deg:%.6f latitude_deg:%.6f angle_true_deg:%.2f mag_true_kn:%.2f",
		s.TimestampMS, s.LongitudeDeg, s.LatitudeDeg, s.AngleTrueDeg, s.MagTrueKn)
}

// ParseAis parses a full "ais: ..." line, tolerating the optional
// heading_deg/status/shipname fields.
func ParseAis(line string) (Ais, error) {
	tag, body := topicAndBody(line)
	if tag != "ais" {
		return Ais{}, fmt.Errorf("bus: not an ais message: %q", line)
	}
	m := fields(body)
	a := Ais{
		TimestampMS: parseInt64(m, "timestamp_ms"),
		MMSI:        parseInt64(m, "mmsi"),
		MsgType:     int(parseInt64(m, "msgtype")),
		SpeedMS:     parseFloat(m, "speed_m_s"),
		LatDeg:      parseFloat(m, "lat_deg"),
		LngDeg:      parseFloat(m, "lng_deg"),
		CogDeg:      parseFloat(m, "cog_deg"),
	}
	if v, ok := m["heading_deg"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			a.HeadingDeg = f
			a.HasHeading = true
		}
	}
	if v, ok := m["status"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			a.Status = n
			a.HasStatus = true
		}
	}
	if v, ok := m["shipname"]; ok {
		a.ShipName = v
		a.HasShipName = true
	}
	return a, nil
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "nan"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
