package aag

import (
	"bytes"
	"fmt"
	"strconv"
)

// The CloudWatcher serial protocol is command/response. Each command is
// a letter followed by '!'. The device answers with one or more 15-byte
// blocks of the form "!<code><value>", padded with spaces, and closes
// every exchange with a handshake block whose code byte is 0x11 (XON).
const (
	blockLen      = 15
	handshakeCode = 0x11

	cmdSkyTemperature = "S!"
	cmdSensorTemp     = "T!"
	cmdRainFrequency  = "E!"
	cmdValues         = "C!"
	cmdWindSpeed      = "V!"
	cmdQueryPWM       = "Q!"
)

// Block codes returned by the sensor.
const (
	codeSkyTemp    = '1' // infrared sky temperature, 1/100 °C
	codeSensorTemp = '2' // IR sensor (ambient) temperature, 1/100 °C
	codeZener      = '3' // zener reference voltage, raw ADC
	codeLDR        = '4' // ambient light LDR, raw ADC
	codeRainTemp   = '5' // rain sensor temperature, 1/100 °C
	codeRainFreq   = 'R' // rain sensor frequency
	codePWM        = 'Q' // heater PWM duty, 0-1023
	codeWind       = 'w' // anemometer, km/h
	codeError      = 'E' // device-reported fault
)

// block is a single parsed 15-byte response unit.
type block struct {
	code  byte
	value string
}

// splitBlocks validates and splits a raw response into blocks, dropping
// the trailing handshake. An exchange without a handshake block means
// the read was torn and the caller should resynchronize.
func splitBlocks(raw []byte) ([]block, error) {
	if len(raw)%blockLen != 0 {
		return nil, fmt.Errorf("response length %d is not a multiple of block size", len(raw))
	}

	var blocks []block
	sawHandshake := false
	for off := 0; off < len(raw); off += blockLen {
		chunk := raw[off : off+blockLen]
		if chunk[0] != '!' {
			return nil, fmt.Errorf("block at offset %d does not start with '!': %q", off, chunk)
		}
		if chunk[1] == handshakeCode {
			sawHandshake = true
			break
		}
		blocks = append(blocks, block{
			code:  chunk[1],
			value: string(bytes.TrimSpace(chunk[2:])),
		})
	}

	if !sawHandshake {
		return nil, fmt.Errorf("response missing handshake block: %q", raw)
	}
	return blocks, nil
}

// intValue parses a block payload as a decimal integer.
func (b block) intValue() (int, error) {
	v, err := strconv.Atoi(b.value)
	if err != nil {
		return 0, fmt.Errorf("block %q has non-numeric value %q", b.code, b.value)
	}
	return v, nil
}

// findBlock returns the first block with the wanted code.
func findBlock(blocks []block, code byte) (block, error) {
	for _, b := range blocks {
		if b.code == code {
			return b, nil
		}
		if b.code == codeError {
			return block{}, fmt.Errorf("device reported fault: %q", b.value)
		}
	}
	return block{}, fmt.Errorf("no block with code %q in response", code)
}

// centiCelsius converts a raw hundredths-of-degree payload to °C.
func centiCelsius(raw int) float64 {
	return float64(raw) / 100
}

// pwmPercent converts the 0-1023 duty payload to a percentage.
func pwmPercent(raw int) float64 {
	return float64(raw) * 100 / 1023
}

// pwmDuty converts a percentage to the 0-1023 duty value the device
// expects, clamped to the valid range.
func pwmDuty(percent float64) int {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return int(percent*1023/100 + 0.5)
}

// setPWMCommand formats the heater duty command.
func setPWMCommand(percent float64) string {
	return fmt.Sprintf("P%04d!", pwmDuty(percent))
}
