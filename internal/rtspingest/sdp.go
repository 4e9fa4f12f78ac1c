// If you are AI: This file parses the SDP body of an RTSP ANNOUNCE request
// into the fields srs_app_rtsp.cpp's do_cycle reads off req->sdp: stream
// ids, codec names, H.264 SPS/PPS, and the AAC AudioSpecificConfig.

package rtspingest

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// SDP holds the video/audio track descriptions extracted from an ANNOUNCE
// body, enough to build FLV sequence headers and route RTP packets to the
// right track by stream id.
type SDP struct {
	VideoStreamID   int
	VideoCodec      string
	VideoSPS        []byte
	VideoPPS        []byte
	HasVideo        bool

	AudioStreamID     int
	AudioCodec        string
	AudioSampleRate   int
	AudioChannels     int
	AudioSpecificConf []byte
	HasAudio          bool
}

// ParseSDP parses the raw SDP body of an ANNOUNCE request.
func ParseSDP(body []byte) (*SDP, error) {
	sdp := &SDP{}

	var section string // "video" or "audio"
	var payloadType string

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 2 || line[1] != '=' {
			continue
		}
		key, val := line[0], line[2:]

		switch key {
		case 'm':
			fields := strings.Fields(val)
			if len(fields) < 4 {
				continue
			}
			switch fields[0] {
			case "video":
				section = "video"
				sdp.HasVideo = true
			case "audio":
				section = "audio"
				sdp.HasAudio = true
			default:
				section = ""
			}
			payloadType = fields[len(fields)-1]

		case 'a':
			if err := parseAttribute(sdp, section, payloadType, val); err != nil {
				return nil, err
			}
		}
	}

	if sdp.HasVideo && (len(sdp.VideoSPS) == 0 || len(sdp.VideoPPS) == 0) {
		return nil, fmt.Errorf("sdp: video track missing sprop-parameter-sets")
	}
	if sdp.HasAudio && len(sdp.AudioSpecificConf) == 0 {
		return nil, fmt.Errorf("sdp: audio track missing fmtp config")
	}

	return sdp, nil
}

func parseAttribute(sdp *SDP, section, payloadType, val string) error {
	name, rest, ok := strings.Cut(val, ":")
	if !ok {
		return nil
	}

	switch name {
	case "rtpmap":
		// rtpmap:<pt> <codec>/<clockrate>[/<channels>]
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return nil
		}
		desc := strings.Split(fields[1], "/")
		codec := desc[0]
		switch section {
		case "video":
			sdp.VideoCodec = codec
		case "audio":
			sdp.AudioCodec = codec
			if len(desc) >= 2 {
				if rate, err := strconv.Atoi(desc[1]); err == nil {
					sdp.AudioSampleRate = rate
				}
			}
			if len(desc) >= 3 {
				if ch, err := strconv.Atoi(desc[2]); err == nil {
					sdp.AudioChannels = ch
				}
			}
		}

	case "fmtp":
		// fmtp:<pt> key=val;key=val...
		_, params, ok := strings.Cut(rest, " ")
		if !ok {
			return nil
		}
		return parseFmtp(sdp, section, params)

	case "control":
		return parseControl(sdp, section, rest)
	}

	return nil
}

func parseFmtp(sdp *SDP, section, params string) error {
	for _, kv := range strings.Split(params, ";") {
		kv = strings.TrimSpace(kv)
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch {
		case section == "video" && k == "sprop-parameter-sets":
			sps, pps, err := decodeSpropParameterSets(v)
			if err != nil {
				return fmt.Errorf("sdp: %w", err)
			}
			sdp.VideoSPS = sps
			sdp.VideoPPS = pps

		case section == "audio" && k == "config":
			cfg, err := hex.DecodeString(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("sdp: decode aac config: %w", err)
			}
			sdp.AudioSpecificConf = cfg
		}
	}
	return nil
}

// decodeSpropParameterSets decodes the base64 "sps,pps" pair from an H.264
// fmtp line. Additional comma-separated sets beyond the first two are
// ignored, matching the common single-SPS/single-PPS case this bridge
// targets.
func decodeSpropParameterSets(v string) (sps, pps []byte, err error) {
	sets := strings.Split(v, ",")
	if len(sets) < 2 {
		return nil, nil, fmt.Errorf("sprop-parameter-sets: expected sps,pps, got %q", v)
	}
	sps, err = base64.StdEncoding.DecodeString(sets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("decode sps: %w", err)
	}
	pps, err = base64.StdEncoding.DecodeString(sets[1])
	if err != nil {
		return nil, nil, fmt.Errorf("decode pps: %w", err)
	}
	return sps, pps, nil
}

func parseControl(sdp *SDP, section, val string) error {
	id, err := extractTrackID(val)
	if err != nil {
		return nil // control attribute without a numeric id is tolerated
	}
	switch section {
	case "video":
		sdp.VideoStreamID = id
	case "audio":
		sdp.AudioStreamID = id
	}
	return nil
}

// extractTrackID pulls the trailing integer off a control URI like
// "streamid=0" or "trackID=1".
func extractTrackID(val string) (int, error) {
	idx := strings.LastIndexAny(val, "=/")
	if idx < 0 || idx == len(val)-1 {
		return 0, fmt.Errorf("no track id in %q", val)
	}
	return strconv.Atoi(val[idx+1:])
}
