package api

import (
	"github.com/san-kum/gravquad/internal/engine"
	"github.com/san-kum/gravquad/internal/spatial"
)

// Wire types carry both json and msgpack tags; the same struct is sent to
// JSON and binary WebSocket clients.

type BodyDTO struct {
	ID     int     `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	VX     float64 `json:"vx" msgpack:"vx"`
	VY     float64 `json:"vy" msgpack:"vy"`
	Mass   float64 `json:"mass" msgpack:"mass"`
	Radius float64 `json:"radius" msgpack:"radius"`
}

type PairDTO struct {
	I        int     `json:"i" msgpack:"i"`
	J        int     `json:"j" msgpack:"j"`
	Distance float64 `json:"distance" msgpack:"distance"`
}

// StateDTO is a snapshot on the wire. Closest is nil until the world has
// completed a step with at least two bodies.
type StateDTO struct {
	Tick          int64     `json:"tick" msgpack:"tick"`
	Step          int       `json:"step" msgpack:"step"`
	Width         float64   `json:"width" msgpack:"width"`
	Height        float64   `json:"height" msgpack:"height"`
	Bodies        []BodyDTO `json:"bodies" msgpack:"bodies"`
	Closest       *PairDTO  `json:"closest" msgpack:"closest"`
	KineticEnergy float64   `json:"kinetic_energy" msgpack:"kinetic_energy"`
	Energy        float64   `json:"energy" msgpack:"energy"`
	Paused        bool      `json:"paused" msgpack:"paused"`
	Resets        int64     `json:"resets" msgpack:"resets"`
}

type NeighborDTO struct {
	ID       int     `json:"id" msgpack:"id"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Distance float64 `json:"distance" msgpack:"distance"`
}

func toState(s *engine.Snapshot) StateDTO {
	dto := StateDTO{
		Tick:          s.Tick,
		Step:          s.Step,
		Width:         s.Width,
		Height:        s.Height,
		Bodies:        make([]BodyDTO, len(s.Bodies)),
		KineticEnergy: s.KineticEnergy,
		Energy:        s.Energy,
		Paused:        s.Paused,
		Resets:        s.Resets,
	}
	for i, b := range s.Bodies {
		dto.Bodies[i] = BodyDTO{
			ID:     b.ID,
			X:      b.Pos.X,
			Y:      b.Pos.Y,
			VX:     b.Vel.X,
			VY:     b.Vel.Y,
			Mass:   b.Mass(),
			Radius: b.Radius(),
		}
	}
	if s.HasPair {
		dto.Closest = &PairDTO{I: s.Pair.I, J: s.Pair.J, Distance: s.MinDistance}
	}
	return dto
}

func toNeighbor(nb spatial.Neighbor) NeighborDTO {
	return NeighborDTO{ID: nb.ID, X: nb.Pos.X, Y: nb.Pos.Y, Distance: nb.Distance}
}

func toPair(p spatial.Pair) *PairDTO {
	return &PairDTO{I: p.I, J: p.J, Distance: p.Distance}
}
