package codec

import "testing"

func TestParseAACConfig(t *testing.T) {
	// AudioObjectType=2 (AAC-LC), samplingFrequencyIndex=4 (44100Hz), channels=2 (stereo).
	// bits: 00010 0100 0010 000 -> bytes 0x12, 0x10
	raw := []byte{0x12, 0x10}

	cfg, err := ParseAACConfig(raw)
	if err != nil {
		t.Fatalf("ParseAACConfig() error = %v", err)
	}
	if cfg.ObjectType != 2 {
		t.Fatalf("ObjectType = %d, want 2", cfg.ObjectType)
	}
	if cfg.SampleRateHz != 44100 {
		t.Fatalf("SampleRateHz = %d, want 44100", cfg.SampleRateHz)
	}
	if cfg.Channels != 2 {
		t.Fatalf("Channels = %d, want 2", cfg.Channels)
	}
}

func TestParseAACConfigTooShort(t *testing.T) {
	if _, err := ParseAACConfig([]byte{0x12}); err == nil {
		t.Fatal("expected error for short config")
	}
}

func TestAACSequenceHeaderEnvelope(t *testing.T) {
	cfg := &AACConfig{Channels: 2, SampleRateHz: 44100, RawSpecificCfg: []byte{0x12, 0x10}}
	out := AACSequenceHeader(cfg)

	soundFormat := out[0] >> 4
	if soundFormat != soundFormatAAC {
		t.Fatalf("sound format = %d, want AAC", soundFormat)
	}
	if out[1] != aacPacketTypeSequenceHeader {
		t.Fatalf("packet type = %d, want sequence header", out[1])
	}
	if len(out) != 2+len(cfg.RawSpecificCfg) {
		t.Fatalf("len(out) = %d, want %d", len(out), 2+len(cfg.RawSpecificCfg))
	}
}

func TestAACRawFrame(t *testing.T) {
	cfg := &AACConfig{Channels: 1, SampleRateHz: 22050, RawSpecificCfg: []byte{0x14, 0x08}}
	au := []byte{1, 2, 3, 4}
	out := AACRawFrame(cfg, au)

	if out[1] != aacPacketTypeRaw {
		t.Fatalf("packet type = %d, want raw", out[1])
	}
	soundType := out[0] & 0x01
	if soundType != soundTypeMono {
		t.Fatalf("sound type = %d, want mono", soundType)
	}
	if string(out[2:]) != string(au) {
		t.Fatalf("payload mismatch")
	}
}
