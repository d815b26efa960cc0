package aag

import (
	"strings"
	"testing"
)

// mkBlock builds one 15-byte response block the way the device does.
func mkBlock(code byte, value string) string {
	b := "!" + string(code) + value
	return b + strings.Repeat(" ", blockLen-len(b))
}

func handshake() string {
	return mkBlock(handshakeCode, "")
}

func TestSplitBlocks(t *testing.T) {
	raw := []byte(mkBlock(codeSkyTemp, "-2150") + handshake())

	blocks, err := splitBlocks(raw)
	if err != nil {
		t.Fatalf("splitBlocks: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].code != codeSkyTemp {
		t.Errorf("expected code %q, got %q", codeSkyTemp, blocks[0].code)
	}
	if blocks[0].value != "-2150" {
		t.Errorf("expected value -2150, got %q", blocks[0].value)
	}
}

func TestSplitBlocksMultiple(t *testing.T) {
	raw := []byte(mkBlock(codeZener, "512") + mkBlock(codeLDR, "900") + mkBlock(codeRainTemp, "1250") + handshake())

	blocks, err := splitBlocks(raw)
	if err != nil {
		t.Fatalf("splitBlocks: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if blocks[1].code != codeLDR || blocks[1].value != "900" {
		t.Errorf("unexpected second block: %+v", blocks[1])
	}
}

func TestSplitBlocksErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"torn read", mkBlock(codeSkyTemp, "100")[:10]},
		{"missing bang", strings.Replace(mkBlock(codeSkyTemp, "100"), "!", "x", 1) + handshake()},
		{"no handshake", mkBlock(codeSkyTemp, "100")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := splitBlocks([]byte(tt.raw)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestFindBlock(t *testing.T) {
	blocks := []block{
		{code: codeZener, value: "512"},
		{code: codeRainTemp, value: "1250"},
	}

	b, err := findBlock(blocks, codeRainTemp)
	if err != nil {
		t.Fatalf("findBlock: %v", err)
	}
	if b.value != "1250" {
		t.Errorf("expected 1250, got %q", b.value)
	}

	if _, err := findBlock(blocks, codeWind); err == nil {
		t.Error("expected error for absent code")
	}
}

func TestFindBlockDeviceFault(t *testing.T) {
	blocks := []block{{code: codeError, value: "2"}}
	if _, err := findBlock(blocks, codeSkyTemp); err == nil {
		t.Error("expected device fault error")
	}
}

func TestIntValue(t *testing.T) {
	if v, err := (block{code: codeSkyTemp, value: "-2150"}).intValue(); err != nil || v != -2150 {
		t.Errorf("intValue(-2150) = %d, %v", v, err)
	}
	if _, err := (block{code: codeSkyTemp, value: "abc"}).intValue(); err == nil {
		t.Error("expected error for non-numeric payload")
	}
}

func TestCentiCelsius(t *testing.T) {
	if got := centiCelsius(-2150); got != -21.5 {
		t.Errorf("centiCelsius(-2150) = %v", got)
	}
}

func TestPWMConversions(t *testing.T) {
	tests := []struct {
		percent float64
		duty    int
	}{
		{0, 0},
		{100, 1023},
		{50, 512},
		{-10, 0},
		{150, 1023},
	}
	for _, tt := range tests {
		if got := pwmDuty(tt.percent); got != tt.duty {
			t.Errorf("pwmDuty(%v) = %d, want %d", tt.percent, got, tt.duty)
		}
	}

	if got := pwmPercent(1023); got != 100 {
		t.Errorf("pwmPercent(1023) = %v", got)
	}
}

func TestSetPWMCommand(t *testing.T) {
	if got := setPWMCommand(100); got != "P1023!" {
		t.Errorf("setPWMCommand(100) = %q", got)
	}
	if got := setPWMCommand(0); got != "P0000!" {
		t.Errorf("setPWMCommand(0) = %q", got)
	}
}
