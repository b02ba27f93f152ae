// Copyright (c) 2025 BVK Chaitanya

// Package idgen creates deterministic client order id sequences. Client
// order ids are generated locally before any network call, so a crashed
// process that restored its generator seed and offset can re-issue the very
// same id for a retried submission instead of leaking a duplicate order.
package idgen

import (
	"crypto/md5"
	"encoding/binary"

	"github.com/google/uuid"
)

// Generator creates a sequence of client order ids derived from a seed
// string. Two generators with the same seed and offset produce the same
// sequence.
type Generator struct {
	base uuid.UUID

	next uint64
}

func New(seed string, offset uint64) *Generator {
	base := uuid.UUID(md5.Sum([]byte(seed)))
	return &Generator{base: base, next: offset}
}

// Offset returns the position of the next id in the sequence. Persist it
// together with the seed to resume the sequence after a restart.
func (g *Generator) Offset() uint64 {
	return g.next
}

// NextID returns the next client order id and advances the sequence.
func (g *Generator) NextID() string {
	var buf [16 + 8]byte
	copy(buf[:16], g.base[:])
	binary.BigEndian.PutUint64(buf[16:], g.next)
	g.next++
	return uuid.UUID(md5.Sum(buf[:])).String()
}

// RevertID steps the sequence back by one, so the last id can be reissued
// after a submission that never reached the venue.
func (g *Generator) RevertID() {
	if g.next > 0 {
		g.next--
	}
}
