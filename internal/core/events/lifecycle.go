// Package events names the lifecycle notifications the simulation core
// publishes for the audio, UI and scheduling layers built on top of it.
package events

import "github.com/zeusync/barrage/internal/core/events/bus"

const Source = "barrage"

const (
	TypeEmitterCreated    = "emitter.created"
	TypeEmitterRemoved    = "emitter.removed"
	TypeBulletsCleared    = "bullets.cleared"
	TypeCapacityExhausted = "arena.exhausted"
)

type EmitterCreated struct {
	ID         string
	Name       string
	Primordial bool
}

type EmitterRemoved struct {
	ID     string
	Name   string
	Action string
	Effect bool
}

// BulletsCleared reports a clear of one emitter (ID set) or all of them.
type BulletsCleared struct {
	ID      string
	Removed int
	Effect  bool
}

// CapacityExhausted is published at most once per frame, carrying the
// number of failed allocations since the previous frame.
type CapacityExhausted struct {
	Frame    uint64
	Failed   uint64
	Capacity int
	Live     int
}

func NewEmitterCreated(p EmitterCreated) bus.Event {
	return bus.NewEvent(TypeEmitterCreated, Source, p)
}

func NewEmitterRemoved(p EmitterRemoved) bus.Event {
	return bus.NewEvent(TypeEmitterRemoved, Source, p)
}

func NewBulletsCleared(p BulletsCleared) bus.Event {
	return bus.NewEvent(TypeBulletsCleared, Source, p)
}

func NewCapacityExhausted(p CapacityExhausted) bus.Event {
	return bus.NewEvent(TypeCapacityExhausted, Source, p)
}
