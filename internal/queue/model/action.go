// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package model

// Action is an enumerated permission token. spec.md §9 mandates a bitset
// representation over this fixed, closed set rather than a dynamic policy
// engine: there are 15 actions and they never change at runtime, so set
// membership is a single word-and-compare.
type Action uint8

const (
	ActionQueueGet Action = iota
	ActionQueueDelete
	ActionQueueConfigure

	ActionSongRemove
	ActionSongBan
	ActionSongUnban
	ActionSongEnqueue
	ActionSongPlay
	ActionSongPause
	ActionSongNext
	ActionSongAutoNext
	ActionSongLike

	ActionUserBan
	ActionUserUnban
	ActionUserRemove

	actionCount
)

// token is the stable string stored as the Postgres-style enum value in the
// upstream configs service and echoed back over the wire; Go code never
// depends on the ordering of Action, only on this mapping.
var token = [actionCount]string{
	ActionQueueGet:       "GET_QUEUE",
	ActionQueueDelete:    "DELETE_QUEUE",
	ActionQueueConfigure: "CONFIGURE_QUEUE",

	ActionSongRemove:   "REMOVE_SONG",
	ActionSongBan:      "BAN_SONG",
	ActionSongUnban:    "UNBAN_SONG",
	ActionSongEnqueue:  "ENQUEUE_SONG",
	ActionSongPlay:     "PLAY_SONG",
	ActionSongPause:    "PAUSE_SONG",
	ActionSongNext:     "NEXT_SONG",
	ActionSongAutoNext: "AUTO_NEXT_SONG",
	ActionSongLike:     "LIKE_SONG",

	ActionUserBan:    "BAN_USER",
	ActionUserUnban:  "UNBAN_USER",
	ActionUserRemove: "REMOVE_USER",
}

var fromToken = func() map[string]Action {
	m := make(map[string]Action, actionCount)
	for a, s := range token {
		m[s] = Action(a)
	}
	return m
}()

// String returns the stable wire/DB token for the action.
func (a Action) String() string {
	if a >= actionCount {
		return "UNKNOWN"
	}
	return token[a]
}

// ParseAction resolves a wire/DB token back to an Action.
func ParseAction(s string) (Action, bool) {
	a, ok := fromToken[s]
	return a, ok
}

// MarshalText implements encoding.TextMarshaler for JSON encode/decode of configs.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(b []byte) error {
	v, ok := ParseAction(string(b))
	if !ok {
		v = actionCount
	}
	*a = v
	return nil
}

// Permissions is a bitset over Action, sized to the fixed 15-value domain.
type Permissions uint32

// NewPermissions builds a bitset from a list of actions.
func NewPermissions(actions ...Action) Permissions {
	var p Permissions
	for _, a := range actions {
		p = p.With(a)
	}
	return p
}

// With returns the set with action added.
func (p Permissions) With(a Action) Permissions {
	return p | (1 << uint(a))
}

// Has reports whether action is a member.
func (p Permissions) Has(a Action) bool {
	return p&(1<<uint(a)) != 0
}
