// If you are AI: Tests for SDP parsing (C8), grounded on the ANNOUNCE
// bodies RTSP encoders send for H.264 + AAC.

package rtspingest

import (
	"encoding/base64"
	"testing"
)

func buildSDPBody(sps, pps []byte) string {
	spsB64 := base64.StdEncoding.EncodeToString(sps)
	ppsB64 := base64.StdEncoding.EncodeToString(pps)
	return "v=0\r\n" +
		"o=- 0 0 IN IP4 127.0.0.1\r\n" +
		"s=session\r\n" +
		"m=video 0 RTP/AVP 96\r\n" +
		"a=rtpmap:96 H264/90000\r\n" +
		"a=fmtp:96 packetization-mode=1;sprop-parameter-sets=" + spsB64 + "," + ppsB64 + "\r\n" +
		"a=control:streamid=0\r\n" +
		"m=audio 0 RTP/AVP 97\r\n" +
		"a=rtpmap:97 MPEG4-GENERIC/44100/2\r\n" +
		"a=fmtp:97 config=1210\r\n" +
		"a=control:streamid=1\r\n"
}

func TestParseSDPExtractsVideoAndAudioTracks(t *testing.T) {
	sps := []byte{0x67, 0x42, 0x00, 0x1f, 0xaa}
	pps := []byte{0x68, 0xce, 0x3c, 0x80}
	body := buildSDPBody(sps, pps)

	sdp, err := ParseSDP([]byte(body))
	if err != nil {
		t.Fatalf("ParseSDP() error = %v", err)
	}

	if !sdp.HasVideo || sdp.VideoCodec != "H264" {
		t.Fatalf("video track = %+v", sdp)
	}
	if sdp.VideoStreamID != 0 {
		t.Fatalf("VideoStreamID = %d, want 0", sdp.VideoStreamID)
	}
	if string(sdp.VideoSPS) != string(sps) || string(sdp.VideoPPS) != string(pps) {
		t.Fatalf("sps/pps mismatch: got %x/%x", sdp.VideoSPS, sdp.VideoPPS)
	}

	if !sdp.HasAudio || sdp.AudioCodec != "MPEG4-GENERIC" {
		t.Fatalf("audio track = %+v", sdp)
	}
	if sdp.AudioStreamID != 1 {
		t.Fatalf("AudioStreamID = %d, want 1", sdp.AudioStreamID)
	}
	if sdp.AudioSampleRate != 44100 || sdp.AudioChannels != 2 {
		t.Fatalf("audio rate/channels = %d/%d", sdp.AudioSampleRate, sdp.AudioChannels)
	}
	if len(sdp.AudioSpecificConf) != 2 {
		t.Fatalf("AudioSpecificConf = %x, want 2 bytes", sdp.AudioSpecificConf)
	}
}

func TestParseSDPRejectsVideoWithoutParameterSets(t *testing.T) {
	body := "v=0\r\nm=video 0 RTP/AVP 96\r\na=rtpmap:96 H264/90000\r\n"
	if _, err := ParseSDP([]byte(body)); err == nil {
		t.Fatalf("ParseSDP() error = nil, want error for missing sprop-parameter-sets")
	}
}

func TestParseSDPRejectsAudioWithoutConfig(t *testing.T) {
	body := "v=0\r\nm=audio 0 RTP/AVP 97\r\na=rtpmap:97 MPEG4-GENERIC/44100/2\r\n"
	if _, err := ParseSDP([]byte(body)); err == nil {
		t.Fatalf("ParseSDP() error = nil, want error for missing config")
	}
}
