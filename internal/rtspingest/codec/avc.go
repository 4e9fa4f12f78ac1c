// If you are AI: This file converts raw H.264 NAL units (as carried,
// start-code-free, in RTSP/RTP payloads) into FLV video tag payloads.
// Grounded on SRS's SrsRawH264Stream::mux_sequence_header/mux_avc2flv
// (srs_app_rtsp.cpp's write_h264_sps_pps/write_h264_ipb_frame call these).

package codec

import "fmt"

const (
	videoFrameTypeKey   = 1
	videoFrameTypeInter = 2
	videoCodecAVC       = 7

	avcPacketTypeSequenceHeader = 0
	avcPacketTypeNALU           = 1

	// NAL unit type field, low 5 bits of the first NALU byte.
	nalUnitTypeIDR = 5
)

// IsIDR reports whether a raw NAL unit (no start code) is an IDR slice,
// the signal SRS uses to mark a video frame as a keyframe.
func IsIDR(nalu []byte) bool {
	if len(nalu) == 0 {
		return false
	}
	return nalu[0]&0x1f == nalUnitTypeIDR
}

// AVCSequenceHeader builds the FLV video tag payload for an AVC sequence
// header (AVCDecoderConfigurationRecord wrapped in the FLV VIDEODATA
// envelope) from SPS/PPS extracted out of the SDP fmtp sprop-parameter-sets.
func AVCSequenceHeader(sps, pps []byte) ([]byte, error) {
	if len(sps) < 4 {
		return nil, fmt.Errorf("avc sequence header: sps too short (%d bytes)", len(sps))
	}

	record := make([]byte, 0, 11+len(sps)+len(pps))
	record = append(record, 1)             // configurationVersion
	record = append(record, sps[1])        // AVCProfileIndication
	record = append(record, sps[2])        // profile_compatibility
	record = append(record, sps[3])        // AVCLevelIndication
	record = append(record, 0xff)          // reserved(6)=111111, lengthSizeMinusOne=11 (4-byte lengths)
	record = append(record, 0xe1)          // reserved(3)=111, numOfSequenceParameterSets=00001
	record = appendU16BE(record, len(sps)) // SPS length
	record = append(record, sps...)
	record = append(record, 1)             // numOfPictureParameterSets
	record = appendU16BE(record, len(pps)) // PPS length
	record = append(record, pps...)

	return wrapVideoPayload(videoFrameTypeKey, avcPacketTypeSequenceHeader, 0, record), nil
}

// AVCFrame builds the FLV video tag payload for one NAL unit (AVCC
// length-prefixed form), compositionOffset is (pts-dts) in ms.
func AVCFrame(nalu []byte, compositionOffset int32) []byte {
	frameType := videoFrameTypeInter
	if IsIDR(nalu) {
		frameType = videoFrameTypeKey
	}

	body := make([]byte, 0, 4+len(nalu))
	body = appendU32BE(body, len(nalu))
	body = append(body, nalu...)

	return wrapVideoPayload(frameType, avcPacketTypeNALU, compositionOffset, body)
}

// wrapVideoPayload prepends the 5-byte FLV VIDEODATA envelope (frame
// type/codec id, AVCPacketType, 24-bit signed composition time) to body.
func wrapVideoPayload(frameType, packetType int, compositionOffset int32, body []byte) []byte {
	out := make([]byte, 5, 5+len(body))
	out[0] = byte(frameType<<4) | videoCodecAVC
	out[1] = byte(packetType)
	out[2] = byte(compositionOffset >> 16)
	out[3] = byte(compositionOffset >> 8)
	out[4] = byte(compositionOffset)
	return append(out, body...)
}

func appendU16BE(b []byte, n int) []byte {
	return append(b, byte(n>>8), byte(n))
}

func appendU32BE(b []byte, n int) []byte {
	return append(b, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}
