package audio

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAVHeader(t *testing.T) {
	samples := make([]float32, 16000)
	data, err := EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if len(data) != 44+len(samples)*2 {
		t.Fatalf("wrong file size: %d", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("bad RIFF/WAVE magic")
	}
	if rate := binary.LittleEndian.Uint32(data[24:]); rate != 16000 {
		t.Errorf("sample rate in header: %d", rate)
	}
	if ch := binary.LittleEndian.Uint16(data[22:]); ch != 1 {
		t.Errorf("channels in header: %d", ch)
	}
	if bits := binary.LittleEndian.Uint16(data[34:]); bits != 16 {
		t.Errorf("bits per sample: %d", bits)
	}
	if size := binary.LittleEndian.Uint32(data[40:]); size != uint32(len(samples)*2) {
		t.Errorf("data chunk size: %d", size)
	}
}

func TestEncodeWAVClampsOutOfRange(t *testing.T) {
	data, err := EncodeWAV([]float32{2.0, -2.0}, 16000)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	hi := int16(binary.LittleEndian.Uint16(data[44:]))
	lo := int16(binary.LittleEndian.Uint16(data[46:]))
	if hi != 32767 || lo != -32768 {
		t.Errorf("clamping failed: %d %d", hi, lo)
	}
}

func TestEncodeWAVRejectsEmptyAndBadRate(t *testing.T) {
	if _, err := EncodeWAV(nil, 16000); err == nil {
		t.Error("expected error for empty buffer")
	}
	if _, err := EncodeWAV([]float32{0}, 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}
