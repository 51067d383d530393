package composer

import (
	"testing"

	"ai-botbuilder-be/pkg/flowtable"
)

func node(num int, flow string) flowtable.NodeInput {
	return flowtable.NodeInput{Num: num, Type: "D", Name: "n", Flows: flow}
}

func TestSplitFlowsGroupsInFirstSeenOrder(t *testing.T) {
	nodes := []flowtable.NodeInput{
		node(10, "onboarding"),
		node(20, "support"),
		node(11, "onboarding"),
		node(30, ""),
		node(12, "onboarding"),
	}

	flows := SplitFlows(nodes)
	if len(flows) != 3 {
		t.Fatalf("flows = %d, want 3", len(flows))
	}

	wantNames := []string{"onboarding", "support", DefaultFlow}
	for i, want := range wantNames {
		if flows[i].Name != want {
			t.Errorf("flows[%d].Name = %q, want %q", i, flows[i].Name, want)
		}
	}

	ob := flows[0]
	if len(ob.Nodes) != 3 {
		t.Fatalf("onboarding nodes = %d, want 3", len(ob.Nodes))
	}
	for i, want := range []int{10, 11, 12} {
		if ob.Nodes[i].Num != want {
			t.Errorf("onboarding node order broken: got %d at %d", ob.Nodes[i].Num, i)
		}
	}
	if ob.MinNum != 10 || ob.MaxNum != 12 {
		t.Errorf("onboarding range = [%d, %d], want [10, 12]", ob.MinNum, ob.MaxNum)
	}
}

func TestSplitFlowsRangeTracksOutOfOrderNumbers(t *testing.T) {
	flows := SplitFlows([]flowtable.NodeInput{
		node(50, "a"),
		node(5, "a"),
		node(99, "a"),
	})
	if len(flows) != 1 {
		t.Fatalf("flows = %d, want 1", len(flows))
	}
	if flows[0].MinNum != 5 || flows[0].MaxNum != 99 {
		t.Errorf("range = [%d, %d], want [5, 99]", flows[0].MinNum, flows[0].MaxNum)
	}
}

func TestSplitFlowsEmpty(t *testing.T) {
	if flows := SplitFlows(nil); len(flows) != 0 {
		t.Errorf("flows = %d, want 0", len(flows))
	}
}

func TestMergeRoundTripsGroupedPlan(t *testing.T) {
	nodes := []flowtable.NodeInput{
		node(1, "a"),
		node(2, "a"),
		node(3, "b"),
		node(4, "b"),
	}

	merged := Merge(SplitFlows(nodes))
	if len(merged) != len(nodes) {
		t.Fatalf("merged = %d nodes, want %d", len(merged), len(nodes))
	}
	for i := range nodes {
		if merged[i].Num != nodes[i].Num {
			t.Errorf("merged[%d].Num = %d, want %d", i, merged[i].Num, nodes[i].Num)
		}
	}
}
