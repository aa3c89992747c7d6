// Package key implements the two hashable byte-identities the cache
// indexes resources by: [Scratch] keys, which identify interchangeable
// pools of resources, and [Unique] keys, which identify a single resource.
package key

import (
	"fmt"
	"sync/atomic"
)

// ResourceType tags the domain a [Scratch] key belongs to (e.g. "256x256
// RGBA8 texture"). Types are process-wide and monotonically assigned by
// [GenerateResourceType].
type ResourceType uint16

// InvalidResourceType is the zero value; no resource ever carries it.
const InvalidResourceType ResourceType = 0

// maxTag is the highest tag value generators may hand out. Both
// ResourceType and Domain are 16-bit, so the cap is shared.
const maxTag = 1<<16 - 1

var nextResourceType atomic.Uint32

// ErrTagSpaceExhausted is returned (and, from the panicking generators,
// wrapped) once more than [maxTag] resource types or unique-key domains
// have been allocated over the process lifetime.
const ErrTagSpaceExhausted = constError("tag space exhausted")

type constError string

func (e constError) Error() string { return string(e) }

// TryGenerateResourceType allocates the next process-wide resource type
// tag. It returns [ErrTagSpaceExhausted] once the 16-bit tag space is
// consumed instead of panicking, for callers that want to handle
// exhaustion themselves.
func TryGenerateResourceType() (ResourceType, error) {
	n := nextResourceType.Add(1)
	if n > maxTag {
		return InvalidResourceType, fmt.Errorf("generate resource type: %w", ErrTagSpaceExhausted)
	}
	return ResourceType(n), nil
}

// GenerateResourceType allocates the next process-wide resource type tag.
// More than 2^16-1 allocations over the process lifetime (the 16-bit tag
// space less the reserved zero tag) is a configuration
// exhaustion fault and panics, matching the fatal behaviour the cache's
// source material assigns to this condition.
func GenerateResourceType() ResourceType {
	t, err := TryGenerateResourceType()
	if err != nil {
		panic(err)
	}
	return t
}

// Scratch identifies an interchangeable pool of resources: any resource
// sharing the same (Type, digest) pair is an acceptable substitute for
// another. The zero value is invalid.
type Scratch struct {
	digest string
	typ    ResourceType
}

// NewScratch builds a Scratch key from an opaque byte identity and a
// resource type tag. The bytes are copied into an immutable digest so the
// key is safe to use as a map key and to retain past the lifetime of buf.
func NewScratch(typ ResourceType, buf []byte) Scratch {
	return Scratch{digest: string(buf), typ: typ}
}

// IsValid reports whether the key was constructed with a non-zero
// resource type.
func (s Scratch) IsValid() bool { return s.typ != InvalidResourceType }

// Type returns the key's resource type tag.
func (s Scratch) Type() ResourceType { return s.typ }

func (s Scratch) String() string {
	return fmt.Sprintf("Scratch{type:%d, digest:%x}", s.typ, s.digest)
}
