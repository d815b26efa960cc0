package aag

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/skysentry/skysentry/internal/log"
	"github.com/skysentry/skysentry/pkg/config"
	"github.com/skysentry/skysentry/pkg/skytemp"
)

func TestMain(m *testing.M) {
	if err := log.Init(false); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeSensor scripts the device side of the serial conversation. Each
// written command is answered from the response map.
type fakeSensor struct {
	responses map[string]string
	commands  []string
	pending   bytes.Buffer
}

func (f *fakeSensor) Write(p []byte) (int, error) {
	cmd := string(p)
	f.commands = append(f.commands, cmd)
	resp, ok := f.responses[cmd]
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	f.pending.WriteString(resp)
	return len(p), nil
}

func (f *fakeSensor) Read(p []byte) (int, error) {
	return f.pending.Read(p)
}

func (f *fakeSensor) Close() error { return nil }

func testStation(f *fakeSensor) *Station {
	return &Station{
		rwc:        f,
		config:     config.DeviceData{Name: "roof", Samples: 3},
		coeffs:     skytemp.DefaultCoefficients(),
		thresholds: config.DefaultThresholds(),
	}
}

func TestQueryCenti(t *testing.T) {
	f := &fakeSensor{responses: map[string]string{
		cmdSkyTemperature: mkBlock(codeSkyTemp, "-2150") + handshake(),
	}}
	s := testStation(f)

	got, err := s.queryCenti(cmdSkyTemperature, codeSkyTemp)
	if err != nil {
		t.Fatalf("queryCenti: %v", err)
	}
	if got != -21.5 {
		t.Errorf("queryCenti = %v, want -21.5", got)
	}
}

func TestQueryValues(t *testing.T) {
	f := &fakeSensor{responses: map[string]string{
		cmdValues: mkBlock(codeZener, "512") + mkBlock(codeLDR, "900") + mkBlock(codeRainTemp, "1250") + handshake(),
	}}
	s := testStation(f)

	ldr, rainTemp, err := s.queryValues()
	if err != nil {
		t.Fatalf("queryValues: %v", err)
	}
	if ldr != 900 {
		t.Errorf("ldr = %v, want 900", ldr)
	}
	if rainTemp != 12.5 {
		t.Errorf("rainTemp = %v, want 12.5", rainTemp)
	}
}

func TestSetHeaterPWM(t *testing.T) {
	f := &fakeSensor{responses: map[string]string{
		"P0205!": mkBlock(codePWM, "205") + handshake(),
	}}
	s := testStation(f)

	if err := s.setHeaterPWM(20); err != nil {
		t.Fatalf("setHeaterPWM: %v", err)
	}
	if len(f.commands) != 1 || f.commands[0] != "P0205!" {
		t.Errorf("unexpected commands: %v", f.commands)
	}
}

func TestCapture(t *testing.T) {
	f := &fakeSensor{responses: map[string]string{
		cmdSkyTemperature: mkBlock(codeSkyTemp, "-3000") + handshake(),
		cmdSensorTemp:     mkBlock(codeSensorTemp, "1000") + handshake(),
		cmdRainFrequency:  mkBlock(codeRainFreq, "2800") + handshake(),
		cmdValues:         mkBlock(codeZener, "512") + mkBlock(codeLDR, "900") + mkBlock(codeRainTemp, "1250") + handshake(),
		cmdWindSpeed:      mkBlock(codeWind, "12") + handshake(),
		cmdQueryPWM:       mkBlock(codePWM, "0") + handshake(),
	}}
	s := testStation(f)

	r, err := s.capture()
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	if r.StationName != "roof" || r.StationType != "aag" {
		t.Errorf("unexpected station fields: %+v", r)
	}
	if r.RawSkyTemperature != -30 {
		t.Errorf("raw sky = %v, want -30", r.RawSkyTemperature)
	}
	if r.AmbientTemperature != 10 {
		t.Errorf("ambient = %v, want 10", r.AmbientTemperature)
	}

	want := skytemp.Correct(-30, 10, skytemp.DefaultCoefficients())
	if r.SkyTemperature != want {
		t.Errorf("corrected sky = %v, want %v", r.SkyTemperature, want)
	}
	if r.CloudStateName != "CLEAR" {
		t.Errorf("cloud state = %v, want CLEAR", r.CloudStateName)
	}
	if r.WindSpeed != 12 || r.RainFrequency != 2800 || r.Brightness != 900 {
		t.Errorf("unexpected sensor channels: %+v", r)
	}

	// Three sample pairs plus the four single-shot queries.
	if len(f.commands) != 3*2+4 {
		t.Errorf("expected 10 commands, got %d: %v", len(f.commands), f.commands)
	}
}

// stalledSensor accepts commands but never produces response bytes, the
// way a serial port behaves when the device goes dark: reads return
// (0, nil) on timeout.
type stalledSensor struct{}

func (stalledSensor) Write(p []byte) (int, error) { return len(p), nil }
func (stalledSensor) Read(p []byte) (int, error)  { return 0, nil }
func (stalledSensor) Close() error                { return nil }

func TestExchangeErrorsOnStalledRead(t *testing.T) {
	s := &Station{
		rwc:    stalledSensor{},
		config: config.DeviceData{Name: "roof", Samples: 1},
	}

	if _, err := s.queryCenti(cmdSkyTemperature, codeSkyTemp); err == nil {
		t.Fatal("expected error from a sensor that never answers")
	}
}

func TestCloseConnectionBeforeConnect(t *testing.T) {
	// A capture failure can race a cancelled connect attempt, leaving no
	// connection behind. Teardown must cope with that.
	s := &Station{config: config.DeviceData{Name: "roof"}}
	s.closeConnection()

	if _, err := s.exchange(cmdSkyTemperature, 1); err == nil {
		t.Error("expected not-connected error after teardown")
	}
}

func TestCaptureToleratesMissingAnemometer(t *testing.T) {
	f := &fakeSensor{responses: map[string]string{
		cmdSkyTemperature: mkBlock(codeSkyTemp, "-3000") + handshake(),
		cmdSensorTemp:     mkBlock(codeSensorTemp, "1000") + handshake(),
		cmdRainFrequency:  mkBlock(codeRainFreq, "2800") + handshake(),
		cmdValues:         mkBlock(codeZener, "512") + mkBlock(codeLDR, "900") + mkBlock(codeRainTemp, "1250") + handshake(),
	}}
	s := testStation(f)

	r, err := s.capture()
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if r.WindSpeed != 0 {
		t.Errorf("wind = %v, want 0 when anemometer absent", r.WindSpeed)
	}
}
