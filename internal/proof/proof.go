// Package proof is the zero-knowledge proof service port. The registry core
// treats proofs as opaque blobs; this package defines the Generator and
// Verifier capabilities plus the mock implementations the platform ships with.
//
// The mock generator emits Groth16-shaped proof blobs (a/b/c curve points) and
// the verifier performs the structural check the reference prover applies. No
// cryptographic soundness is claimed; swapping in a real prover means
// implementing Generator and Verifier against an actual circuit backend.
package proof

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Points is the Groth16-shaped proof payload.
type Points struct {
	A [2]string    `json:"a"`
	B [2][2]string `json:"b"`
	C [2]string    `json:"c"`
}

// Blob is the opaque proof envelope callers submit with verification requests.
type Blob struct {
	Proof       Points    `json:"proof"`
	Inputs      []any     `json:"inputs"`
	CircuitType string    `json:"circuitType"`
	GeneratedAt time.Time `json:"generatedAt"`
}

//go:generate mockgen -source=proof.go -destination=mocks/mock_proof.go -package=mocks

// Generator produces a proof blob for a claim.
type Generator interface {
	Generate(ctx context.Context, circuitType string, privateInputs, publicInputs []any) (Blob, error)
}

// Verifier checks a proof blob against its public inputs.
type Verifier interface {
	Verify(ctx context.Context, proofBlob json.RawMessage, publicInputs []any) (bool, error)
}

// MockGenerator emits random curve points and caches blobs per input set, the
// way the reference prover does while a real circuit backend is absent.
type MockGenerator struct {
	mu    sync.Mutex
	cache map[string]Blob
}

// NewMockGenerator creates a generator with an empty proof cache.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{cache: make(map[string]Blob)}
}

func (g *MockGenerator) Generate(_ context.Context, circuitType string, privateInputs, publicInputs []any) (Blob, error) {
	if len(privateInputs) == 0 || len(publicInputs) == 0 {
		return Blob{}, fmt.Errorf("private and public inputs are required")
	}

	key := cacheKey(circuitType, privateInputs, publicInputs)

	g.mu.Lock()
	defer g.mu.Unlock()
	if blob, ok := g.cache[key]; ok {
		return blob, nil
	}

	blob := Blob{
		Proof: Points{
			A: [2]string{randPoint(), randPoint()},
			B: [2][2]string{
				{randPoint(), randPoint()},
				{randPoint(), randPoint()},
			},
			C: [2]string{randPoint(), randPoint()},
		},
		Inputs:      publicInputs,
		CircuitType: circuitType,
		GeneratedAt: time.Now().UTC(),
	}
	g.cache[key] = blob
	return blob, nil
}

// CacheSize reports the number of cached proofs, exposed by the stats endpoint.
func (g *MockGenerator) CacheSize() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cache)
}

func cacheKey(circuitType string, privateInputs, publicInputs []any) string {
	private, _ := json.Marshal(privateInputs)
	public, _ := json.Marshal(publicInputs)
	return circuitType + "|" + string(private) + "|" + string(public)
}

func randPoint() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return "0x" + hex.EncodeToString(buf)
}

// StructuralVerifier accepts any blob whose a/b/c points are populated and
// whose public inputs are non-empty. This mirrors the reference check exactly:
// structure, not soundness.
type StructuralVerifier struct{}

// NewStructuralVerifier creates the mock verifier.
func NewStructuralVerifier() *StructuralVerifier {
	return &StructuralVerifier{}
}

func (v *StructuralVerifier) Verify(_ context.Context, proofBlob json.RawMessage, publicInputs []any) (bool, error) {
	if len(proofBlob) == 0 || len(publicInputs) == 0 {
		return false, nil
	}

	var blob Blob
	if err := json.Unmarshal(proofBlob, &blob); err != nil {
		return false, nil
	}

	for _, p := range []string{blob.Proof.A[0], blob.Proof.A[1], blob.Proof.C[0], blob.Proof.C[1]} {
		if p == "" {
			return false, nil
		}
	}
	for _, row := range blob.Proof.B {
		for _, p := range row {
			if p == "" {
				return false, nil
			}
		}
	}
	return true, nil
}
