package signal

import (
	"encoding/json"

	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

type candidatePayload struct {
	Type          string `json:"type"`
	Candidate     string `json:"candidate"`
	SDPMid        string `json:"sdpMid,omitempty"`
	SDPMLineIndex uint16 `json:"sdpMLineIndex"`
}

func (c *Client) SendOffer(offer webrtc.SessionDescription) error {
	return c.sendJSON(map[string]string{
		"type": "offer",
		"sdp":  offer.SDP,
	})
}

func (c *Client) SendCandidate(ci webrtc.ICECandidateInit) error {
	resp := candidatePayload{
		Type:      "candidate",
		Candidate: ci.Candidate,
	}
	if ci.SDPMid != nil {
		resp.SDPMid = *ci.SDPMid
	}
	if ci.SDPMLineIndex != nil {
		resp.SDPMLineIndex = *ci.SDPMLineIndex
	}
	return c.sendJSON(resp)
}

func (c *Client) handleAnswer(data []byte) {
	type answerPayload struct {
		Type string `json:"type"`
		SDP  string `json:"sdp"`
	}
	var p answerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad answer payload")
		c.emitError(domain.NewSessionError(domain.CodeSignalingIncomingMessageInvalid, err.Error()))
		return
	}
	if c.media == nil {
		log.Warn().Str("module", "signal").Msg("answer: no media connection")
		return
	}

	answer := webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  p.SDP,
	}
	if err := c.media.ApplyAnswer(answer); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("webrtc apply answer")
		c.emitError(err)
	}
}

func (c *Client) handleCandidate(data []byte) {
	var p candidatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
		c.emitError(domain.NewSessionError(domain.CodeSignalingIncomingMessageInvalid, err.Error()))
		return
	}
	if c.media == nil {
		log.Warn().Str("module", "signal").Msg("candidate: no media connection")
		return
	}

	cand := webrtc.ICECandidateInit{
		Candidate: p.Candidate,
	}
	if p.SDPMid != "" {
		cand.SDPMid = &p.SDPMid
	}
	cand.SDPMLineIndex = &p.SDPMLineIndex

	if err := c.media.AddICECandidate(cand); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("add ice candidate")
	}
}
