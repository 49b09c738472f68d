package proof

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	domainerrors "veridian/pkg/domain-errors"
)

// Circuit type names recognized by the default deployment.
const (
	CircuitAgeVerification     = "age_verification"
	CircuitCredentialOwnership = "credential_ownership"
	CircuitSelectiveDisclosure = "selective_disclosure"
)

// Service exposes the typed proof operations the HTTP surface offers on top
// of the raw Generator and Verifier.
type Service struct {
	generator Generator
	verifier  Verifier
	circuits  *CircuitRegistry
}

// NewService wires a proof service from its collaborators.
func NewService(generator Generator, verifier Verifier, circuits *CircuitRegistry) *Service {
	return &Service{generator: generator, verifier: verifier, circuits: circuits}
}

// Circuits returns the circuit registry, used by the verification service to
// validate submissions.
func (s *Service) Circuits() *CircuitRegistry { return s.circuits }

// AgeVerification proves that a private age satisfies a public minimum.
func (s *Service) AgeVerification(ctx context.Context, age, minAge int) (Blob, error) {
	if age < 0 || minAge < 0 {
		return Blob{}, domainerrors.New(domainerrors.CodeInvalidInput, "age and minAge must be non-negative")
	}
	blob, err := s.generator.Generate(ctx, CircuitAgeVerification, []any{age}, []any{minAge})
	if err != nil {
		return Blob{}, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "generate age verification proof")
	}
	return blob, nil
}

// CredentialOwnership proves that a private credential hash and holder key
// match a public expected hash. Hex identifiers are folded to field elements
// the same way the circuit frontend does.
func (s *Service) CredentialOwnership(ctx context.Context, credentialHash, holderPublicKey, expectedHash string) (Blob, error) {
	if credentialHash == "" || holderPublicKey == "" || expectedHash == "" {
		return Blob{}, domainerrors.New(domainerrors.CodeInvalidInput, "credentialHash, holderPublicKey and expectedHash are required")
	}
	blob, err := s.generator.Generate(ctx, CircuitCredentialOwnership,
		[]any{foldHex(credentialHash), foldHex(holderPublicKey)},
		[]any{foldHex(expectedHash)})
	if err != nil {
		return Blob{}, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "generate credential ownership proof")
	}
	return blob, nil
}

// SelectiveDisclosure proves one attribute of a private attribute set against
// a public expected value and threshold.
func (s *Service) SelectiveDisclosure(ctx context.Context, attributes []any, attributeIndex int, expectedValue any, threshold float64) (Blob, error) {
	if len(attributes) == 0 {
		return Blob{}, domainerrors.New(domainerrors.CodeInvalidInput, "credentialAttributes must not be empty")
	}
	if attributeIndex < 0 || attributeIndex >= len(attributes) {
		return Blob{}, domainerrors.New(domainerrors.CodeInvalidInput,
			fmt.Sprintf("attributeIndex %d out of range for %d attributes", attributeIndex, len(attributes)))
	}
	blob, err := s.generator.Generate(ctx, CircuitSelectiveDisclosure,
		attributes,
		[]any{attributeIndex, expectedValue, threshold})
	if err != nil {
		return Blob{}, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "generate selective disclosure proof")
	}
	return blob, nil
}

// CredentialProofInput carries the free-form payloads of the generic
// generate-proof operation. Which keys are read depends on the circuit type.
type CredentialProofInput struct {
	CredentialData     map[string]any
	VerificationParams map[string]any
}

// CredentialProof dispatches to the circuit-specific generator for the given
// credential type.
func (s *Service) CredentialProof(ctx context.Context, credentialType string, in CredentialProofInput) (Blob, error) {
	switch credentialType {
	case CircuitAgeVerification:
		age, ok1 := asInt(in.CredentialData["age"])
		minAge, ok2 := asInt(in.VerificationParams["minAge"])
		if !ok1 || !ok2 {
			return Blob{}, domainerrors.New(domainerrors.CodeInvalidInput, "age and minAge must be integers")
		}
		return s.AgeVerification(ctx, age, minAge)

	case CircuitCredentialOwnership:
		credHash, _ := in.CredentialData["credentialHash"].(string)
		holderKey, _ := in.CredentialData["holderPublicKey"].(string)
		expected, _ := in.VerificationParams["expectedHash"].(string)
		return s.CredentialOwnership(ctx, credHash, holderKey, expected)

	case CircuitSelectiveDisclosure:
		attrs, _ := in.CredentialData["attributes"].([]any)
		idx, ok := asInt(in.VerificationParams["attributeIndex"])
		if !ok {
			return Blob{}, domainerrors.New(domainerrors.CodeInvalidInput, "attributeIndex must be an integer")
		}
		threshold, _ := asFloat(in.VerificationParams["threshold"])
		return s.SelectiveDisclosure(ctx, attrs, idx, in.VerificationParams["expectedValue"], threshold)

	default:
		return Blob{}, domainerrors.New(domainerrors.CodeInvalidInput,
			fmt.Sprintf("unsupported credential type: %s", credentialType))
	}
}

// VerifyProof checks a proof blob against its public inputs. Malformed proofs
// verify false rather than erroring.
func (s *Service) VerifyProof(ctx context.Context, proofBlob json.RawMessage, publicInputs []any) (bool, error) {
	valid, err := s.verifier.Verify(ctx, proofBlob, publicInputs)
	if err != nil {
		return false, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "verify proof")
	}
	return valid, nil
}

// CacheSize reports the generator's proof cache size when the generator
// tracks one, zero otherwise.
func (s *Service) CacheSize() int {
	if sized, ok := s.generator.(interface{ CacheSize() int }); ok {
		return sized.CacheSize()
	}
	return 0
}

// foldHex collapses a hex identifier to a small integer field element. Inputs
// that do not parse as hex fall back to their length so the mock circuit
// still gets a deterministic number.
func foldHex(s string) int64 {
	trimmed := s
	if len(trimmed) >= 2 && (trimmed[:2] == "0x" || trimmed[:2] == "0X") {
		trimmed = trimmed[2:]
	}
	if len(trimmed) > 8 {
		trimmed = trimmed[:8]
	}
	if n, err := strconv.ParseInt(trimmed, 16, 64); err == nil {
		return n
	}
	return int64(len(s))
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
