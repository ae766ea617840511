package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainScore is the domain separation prefix for score fingerprints.
// The version suffix enables future algorithm migration.
const DomainScore = "barline/score_ir/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data). The null byte
// separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ComputeFingerprint returns the content-addressed identity of the
// score's musical content. Provenance and any stored fingerprint are
// excluded, so two scores that sound identical fingerprint identically
// regardless of how they were assembled.
func (s *ScoreIR) ComputeFingerprint() (string, error) {
	canonical, err := s.CanonicalJSON()
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainScore, canonical), nil
}

// Seal canonicalizes the score and stores its fingerprint.
func (s *ScoreIR) Seal() error {
	s.Canonicalize()
	fp, err := s.ComputeFingerprint()
	if err != nil {
		return err
	}
	s.Fingerprint = fp
	return nil
}
