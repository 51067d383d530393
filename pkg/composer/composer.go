// Package composer decomposes a large bot plan into independently generated
// flows. It is deliberately thin: its one job is handing the serializer
// coherent node ranges.
package composer

import (
	"ai-botbuilder-be/pkg/flowtable"
)

// DefaultFlow is assigned to nodes that declare no flow membership.
const DefaultFlow = "main"

// Flow is one independently generated slice of the bot.
type Flow struct {
	Name  string
	Nodes []flowtable.NodeInput
	// MinNum/MaxNum bound the node numbers the flow occupies.
	MinNum int
	MaxNum int
}

// SplitFlows groups nodes by flow membership, preserving first-seen flow
// order and the node order within each flow. Node ranges are computed as a
// byproduct for progress reporting.
func SplitFlows(nodes []flowtable.NodeInput) []Flow {
	var order []string
	byName := make(map[string]*Flow)

	for _, n := range nodes {
		name := n.Flows
		if name == "" {
			name = DefaultFlow
		}
		f, ok := byName[name]
		if !ok {
			f = &Flow{Name: name, MinNum: n.Num, MaxNum: n.Num}
			byName[name] = f
			order = append(order, name)
		}
		f.Nodes = append(f.Nodes, n)
		if n.Num < f.MinNum {
			f.MinNum = n.Num
		}
		if n.Num > f.MaxNum {
			f.MaxNum = n.Num
		}
	}

	flows := make([]Flow, 0, len(order))
	for _, name := range order {
		flows = append(flows, *byName[name])
	}
	return flows
}

// Merge reassembles flows into one node list in flow order. Together with
// SplitFlows it round-trips a plan whose nodes were already grouped.
func Merge(flows []Flow) []flowtable.NodeInput {
	var nodes []flowtable.NodeInput
	for _, f := range flows {
		nodes = append(nodes, f.Nodes...)
	}
	return nodes
}
