package model

import (
	"github.com/AaronC81/hiloz/logic"
)

// Graph is the connectivity/resolution substrate shared by the
// authoritative Model and its per-step ComponentIntermediateState clones:
// the component list plus the net partition over their pins.
type Graph struct {
	Components  []*Component
	Connections []Connection
}

// netIdx returns the index of the Connection containing pc, or -1 if pc is
// an implicit singleton net (unconnected).
func (g *Graph) netIdx(pc PinConnection) int {
	for i, conn := range g.Connections {
		if containsConnection(conn.Pins, pc) {
			return i
		}
	}
	return -1
}

// pin returns the Pin addressed by pc.
func (g *Graph) pin(pc PinConnection) *Pin {
	return &g.Components[pc.ComponentIdx].Pins[pc.PinIdx]
}

// ConnectionValue computes the driven value of a net: the set of
// non-Unknown driver values across its pins. Conflict (both Low and High
// present) is reported via ok=false.
func (g *Graph) ConnectionValue(conn *Connection) (logic.Value, bool) {
	return g.resolve(conn, func(p *Pin) logic.Value { return p.Value }, g.ConnectionPull)
}

// ConnectionPull computes the net's passive pull value identically to
// ConnectionValue, but over each pin's Pull field. An empty pull set
// resolves to Unknown (not a conflict).
func (g *Graph) ConnectionPull(conn *Connection) (logic.Value, bool) {
	return g.resolve(conn, func(p *Pin) logic.Value { return p.Pull }, nil)
}

func (g *Graph) resolve(conn *Connection, pick func(*Pin) logic.Value, fallback func(*Connection) (logic.Value, bool)) (logic.Value, bool) {
	sawLow, sawHigh := false, false
	any := false
	for _, pc := range conn.Pins {
		v := pick(g.pin(pc))
		switch v {
		case logic.Low:
			sawLow, any = true, true
		case logic.High:
			sawHigh, any = true, true
		}
	}
	if !any {
		if fallback != nil {
			return fallback(conn)
		}
		return logic.Unknown, true
	}
	if sawLow && sawHigh {
		return logic.Unknown, false
	}
	if sawHigh {
		return logic.High, true
	}
	return logic.Low, true
}

// PinValue is the authoritative read used by the VM: the value of the
// containing net if one exists, else the pin's own value.
func (g *Graph) PinValue(componentIdx, pinIdx int) (logic.Value, error) {
	pc := PinConnection{ComponentIdx: componentIdx, PinIdx: pinIdx}
	idx := g.netIdx(pc)
	if idx < 0 {
		return g.pin(pc).Value, nil
	}
	v, ok := g.ConnectionValue(&g.Connections[idx])
	if !ok {
		return logic.Unknown, ErrNetConflict
	}
	return v, nil
}

// AllConnectionValues returns net_idx -> Value for every explicit
// connection (implicit singleton nets are not included), used only for
// step-to-step change detection.
func (g *Graph) AllConnectionValues() (map[int]logic.Value, error) {
	out := make(map[int]logic.Value, len(g.Connections))
	for i := range g.Connections {
		v, ok := g.ConnectionValue(&g.Connections[i])
		if !ok {
			return nil, ErrNetConflict
		}
		out[i] = v
	}
	return out, nil
}

// ConnectPins merges the named pins into nets: gather every
// existing net touching any of the given pins, remove them, and form one
// new net from their union (preserving first-seen order, deduplicated),
// plus any pins not already in a net. If no existing net touches any input
// pin, a fresh net is created from exactly the input pins.
func (g *Graph) ConnectPins(pins []PinConnection) {
	touched := map[int]bool{}
	for _, pc := range pins {
		if idx := g.netIdx(pc); idx >= 0 {
			touched[idx] = true
		}
	}

	merged := make([]PinConnection, 0, len(pins))
	seen := map[PinConnection]bool{}
	add := func(pc PinConnection) {
		if !seen[pc] {
			seen[pc] = true
			merged = append(merged, pc)
		}
	}

	if len(touched) > 0 {
		// Preserve the order nets were encountered (ascending index), then
		// fold in the newly-requested pins.
		keep := make([]bool, len(g.Connections))
		for idx := range touched {
			keep[idx] = true
		}
		for idx, conn := range g.Connections {
			if keep[idx] {
				for _, pc := range conn.Pins {
					add(pc)
				}
			}
		}
		for _, pc := range pins {
			add(pc)
		}

		remaining := make([]Connection, 0, len(g.Connections)-len(touched)+1)
		for idx, conn := range g.Connections {
			if !keep[idx] {
				remaining = append(remaining, conn)
			}
		}
		remaining = append(remaining, Connection{Pins: merged})
		g.Connections = remaining
		return
	}

	for _, pc := range pins {
		add(pc)
	}
	g.Connections = append(g.Connections, Connection{Pins: merged})
}

// clone deep-copies the component list (pins/variables/dumps are value or
// small-slice data, so this is the whole state a step needs to snapshot)
// and the connection list (which never changes mid-simulation, but is
// copied for interface uniformity with vm.State consumers).
func (g *Graph) clone() Graph {
	comps := make([]*Component, len(g.Components))
	for i, c := range g.Components {
		comps[i] = c.clone()
	}
	conns := make([]Connection, len(g.Connections))
	for i, c := range g.Connections {
		pins := make([]PinConnection, len(c.Pins))
		copy(pins, c.Pins)
		conns[i] = Connection{Pins: pins}
	}
	return Graph{Components: comps, Connections: conns}
}
