// If you are AI: This file converts raw AAC access units (as carried,
// ADTS-free, in RTSP/RTP RFC 3640 payloads) into FLV audio tag payloads.
// Grounded on SRS's SrsRawAacStream::mux_sequence_header/mux_aac2flv
// (srs_app_rtsp.cpp's write_sequence_header/write_audio_raw_frame).

package codec

import "fmt"

const (
	soundFormatAAC  = 10
	soundSize16bit  = 1
	soundTypeMono   = 0
	soundTypeStereo = 1

	aacPacketTypeSequenceHeader = 0
	aacPacketTypeRaw            = 1
)

// aacSampleRates is the MPEG-4 sampling_frequency_index table, index order
// taken verbatim from SRS's srs_aac_srates.
var aacSampleRates = [16]int{
	96000, 88200, 64000, 48000,
	44100, 32000, 24000, 22050,
	16000, 12000, 11025, 8000,
	7350, 0, 0, 0,
}

// AACConfig is a parsed 2-byte MPEG-4 AudioSpecificConfig, the form carried
// in SDP's fmtp "config=" parameter for RTSP AAC tracks.
type AACConfig struct {
	ObjectType     int
	SampleRateIdx  int
	Channels       int
	SampleRateHz   int
	RawSpecificCfg []byte
}

// ParseAACConfig decodes a 2-byte AudioSpecificConfig.
// Layout: 5 bits audioObjectType, 4 bits samplingFrequencyIndex,
// 4 bits channelConfiguration, 3 bits padding.
func ParseAACConfig(raw []byte) (*AACConfig, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("aac specific config: need 2 bytes, got %d", len(raw))
	}
	objType := int(raw[0] >> 3)
	srateIdx := int((raw[0]&0x07)<<1 | raw[1]>>7)
	channels := int((raw[1] >> 3) & 0x0f)

	if srateIdx >= len(aacSampleRates) {
		return nil, fmt.Errorf("aac specific config: sample rate index %d out of range", srateIdx)
	}

	cfg := make([]byte, len(raw))
	copy(cfg, raw)

	return &AACConfig{
		ObjectType:     objType,
		SampleRateIdx:  srateIdx,
		Channels:       channels,
		SampleRateHz:   aacSampleRates[srateIdx],
		RawSpecificCfg: cfg,
	}, nil
}

// soundRateField maps an AAC sample rate to the FLV SoundRate field. FLV's
// SoundRate is nominal for AAC (the real rate lives in the ASC); SRS maps
// only the three values SoundRate can represent and defaults otherwise.
func soundRateField(hz int) byte {
	switch hz {
	case 11025:
		return 1
	case 22050:
		return 2
	case 44100:
		return 3
	default:
		return 0
	}
}

func (c *AACConfig) soundTypeField() byte {
	if c.Channels == 2 {
		return soundTypeStereo
	}
	return soundTypeMono
}

// AACSequenceHeader builds the FLV audio tag payload for an AAC sequence
// header (raw AudioSpecificConfig wrapped in the FLV AUDIODATA envelope).
func AACSequenceHeader(cfg *AACConfig) []byte {
	return wrapAudioPayload(cfg, aacPacketTypeSequenceHeader, cfg.RawSpecificCfg)
}

// AACRawFrame builds the FLV audio tag payload for one raw AAC access unit.
func AACRawFrame(cfg *AACConfig, au []byte) []byte {
	return wrapAudioPayload(cfg, aacPacketTypeRaw, au)
}

// wrapAudioPayload prepends the 2-byte FLV AUDIODATA envelope (sound
// format/rate/size/type, AACPacketType) to body.
func wrapAudioPayload(cfg *AACConfig, packetType int, body []byte) []byte {
	out := make([]byte, 2, 2+len(body))
	out[0] = byte(soundFormatAAC<<4) | soundRateField(cfg.SampleRateHz)<<2 | soundSize16bit<<1 | cfg.soundTypeField()
	out[1] = byte(packetType)
	return append(out, body...)
}
