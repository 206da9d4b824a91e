package bus

import (
	"math"
	"testing"
)

func TestParseImuRoundTrip(t *testing.T) {
	line := "imu: timestamp_ms:1000 temp_c:18.5 acc_x_m_s2:0.1 acc_y_m_s2:0.2 acc_z_m_s2:9.8 " +
		"gyr_x_rad_s:0.01 gyr_y_rad_s:0.02 gyr_z_rad_s:0.03 mag_x_au:1 mag_y_au:2 mag_z_au:3 " +
		"roll_deg:1.5 pitch_deg:-2.5 yaw_deg:90 lat_deg:43.1 lng_deg:5.9 alt_m:0 " +
		"vel_x_m_s:1 vel_y_m_s:0 vel_z_m_s:0"
	got, err := ParseImu(line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TimestampMS != 1000 || got.YawDeg != 90 || got.LngDeg != 5.9 {
		t.Errorf("unexpected parse result: %+v", got)
	}
}

func TestParseWindHandlesNaN(t *testing.T) {
	got, err := ParseWind("wind: timestamp_ms:5 angle_deg:nan speed_m_s:3.2 valid:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(got.AngleDeg) {
		t.Errorf("expected NaN angle, got %v", got.AngleDeg)
	}
	if got.Valid {
		t.Errorf("expected valid=false")
	}
}

func TestParseGPSRoundTrip(t *testing.T) {
	got, err := ParseGPS("gps: timestamp_ms:10 lat_deg:43.1 lng_deg:5.9 cog_deg:180 speed_m_s:2.5 valid:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Valid || got.CogDeg != 180 || got.SpeedMS != 2.5 {
		t.Errorf("unexpected parse result: %+v", got)
	}
}

func TestParseCompassRoundTrip(t *testing.T) {
	got, err := ParseCompass("compass: timestamp_ms:10 yaw_deg:45 valid:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Valid || got.YawDeg != 45 {
		t.Errorf("unexpected parse result: %+v", got)
	}
}

func TestParseRudderStatusHomedFlags(t *testing.T) {
	got, err := ParseRudderStatus("ruddersts: timestamp_ms:1 rudder_l_deg:1 rudder_r_deg:-1 sail_deg:20 sail_homed:1 rudder_homed:1 rudder_l_homed:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.SailHomed || !got.RudderHomed || got.RudderLHomed {
		t.Errorf("unexpected homed flags: %+v", got)
	}
}

func TestParseWrongTagIsError(t *testing.T) {
	if _, err := ParseWind("imu: timestamp_ms:5"); err == nil {
		t.Errorf("expected error parsing an imu line as wind")
	}
}

func TestEncodeSkipperInputPrecision(t *testing.T) {
	line := EncodeSkipperInput(SkipperInput{
		TimestampMS: 42, LongitudeDeg: 5.123456789, LatitudeDeg: 43.987654321,
		AngleTrueDeg: 91.2345, MagTrueKn: 12.345,
	})
	want := "skipper_input: timestamp_ms:42 longitude_deg:5.123457 latitude_deg:43.987654 angle_true_deg:91.23 mag_true_kn:12.35"
	if line != want {
		t.Errorf("got %q, want %q", line, want)
	}
}

func TestParseAisOptionalFields(t *testing.T) {
	got, err := ParseAis("ais: timestamp_ms:1 mmsi:123456789 msgtype:1 speed_m_s:5 lat_deg:1 lng_deg:2 cog_deg:90 heading_deg:91 status:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.HasHeading || got.HeadingDeg != 91 {
		t.Errorf("expected heading_deg to be parsed, got %+v", got)
	}
	if !got.HasStatus {
		t.Errorf("expected status to be parsed")
	}
	if got.HasShipName {
		t.Errorf("did not expect a shipname")
	}
}

func TestEncodeRudderControl(t *testing.T) {
	line := EncodeRudderControl(RudderControl{TimestampMS: 7, RudderLDeg: 1, RudderRDeg: -1, SailDeg: 20})
	want := "rudderctl: timestamp_ms:7 rudder_l_deg:1 rudder_r_deg:-1 sail_deg:20"
	if line != want {
		t.Errorf("got %q, want %q", line, want)
	}
}
