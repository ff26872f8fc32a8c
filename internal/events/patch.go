// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package events implements the wire event vocabulary (spec.md §4.3/§4.4),
// the request-scoped collector that buffers them until commit, and the
// publisher/subscriber/hub chain that fans them out over NATS.
//
// Grounded on original_source/queues/events/src/events.rs and
// events/builder.rs: a patch op set closed over replace|add|remove|move,
// expressed as a tagged union rather than a general-purpose JSON Patch
// library on the hot path (spec.md §9 design note).
package events

import "github.com/goccy/go-json"

// Op is one of the four RFC 6902 operations this system ever emits.
type Op string

const (
	OpReplace Op = "replace"
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpMove    Op = "move"
)

// PatchOp is a single wire-level patch operation. Value is omitted from the
// JSON encoding for remove and the From variant for move.
type PatchOp struct {
	Op    Op          `json:"op"`
	Path  string      `json:"path"`
	From  string      `json:"from,omitempty"`
	Value interface{} `json:"value,omitempty"`
}

// Patch is an ordered list of patch operations, applied left to right.
type Patch []PatchOp

// EventContentTag discriminates the three payload shapes a client may
// receive on its stream.
type EventContentTag string

const (
	TagPatch   EventContentTag = "patch"
	TagSync    EventContentTag = "sync"
	TagDeleted EventContentTag = "deleted"
)

// EventContent is the tagged union carried over the wire: a patch delta, a
// full-state resync, or the terminal deletion sentinel.
type EventContent struct {
	Tag   EventContentTag `json:"tag"`
	Ops   Patch           `json:"ops,omitempty"`
	Queue interface{}     `json:"queue,omitempty"`
}

// MarshalJSON keeps the wire shape minimal per tag: Patch{ops} | Sync{queue} | Deleted.
func (c EventContent) MarshalJSON() ([]byte, error) {
	switch c.Tag {
	case TagPatch:
		return json.Marshal(struct {
			Tag EventContentTag `json:"tag"`
			Ops Patch           `json:"ops"`
		}{c.Tag, c.Ops})
	case TagSync:
		return json.Marshal(struct {
			Tag   EventContentTag `json:"tag"`
			Queue interface{}     `json:"queue"`
		}{c.Tag, c.Queue})
	default:
		return json.Marshal(struct {
			Tag EventContentTag `json:"tag"`
		}{TagDeleted})
	}
}

// NewPatchContent wraps a patch as a TagPatch EventContent.
func NewPatchContent(p Patch) EventContent { return EventContent{Tag: TagPatch, Ops: p} }

// NewSyncContent wraps a full queue snapshot as a TagSync EventContent.
func NewSyncContent(queue interface{}) EventContent {
	return EventContent{Tag: TagSync, Queue: queue}
}

// DeletedContent is the terminal sentinel for a deleted queue's channel.
var DeletedContent = EventContent{Tag: TagDeleted}
