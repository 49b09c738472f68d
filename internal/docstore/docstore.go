// Package docstore is the content-addressed document store port. DID documents
// and credential documents are persisted here; registries keep only the handle.
//
// Handles are CIDv1 strings (raw codec, SHA2-256) over the canonical JSON
// encoding of the document, so the same document always yields the same
// handle regardless of which backend stored it.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Handle is an opaque content-addressed reference to a stored document.
type Handle string

func (h Handle) String() string { return string(h) }

// Store persists documents by content address.
type Store interface {
	// Put content-addresses the document and stores its serialized form.
	Put(ctx context.Context, doc any) (Handle, error)
	// Get returns the serialized document for a handle, or fails when the
	// handle is unknown or the backend is unavailable.
	Get(ctx context.Context, handle Handle) (json.RawMessage, error)
}

// ComputeHandle derives the content address for a document without storing it.
func ComputeHandle(doc any) (Handle, []byte, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", nil, fmt.Errorf("marshal document: %w", err)
	}
	c, err := cid.NewPrefixV1(cid.Raw, multihash.SHA2_256).Sum(payload)
	if err != nil {
		return "", nil, fmt.Errorf("compute document cid: %w", err)
	}
	return Handle(c.String()), payload, nil
}
