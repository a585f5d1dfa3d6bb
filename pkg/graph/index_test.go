package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/synthline/hotgraph/pkg/model"
)

func synthGraph() *model.Graph {
	g := model.NewGraph()
	for _, n := range []model.Node{
		{ID: "usb", Kind: model.KindHardware},
		{ID: "teensy", Kind: model.KindHardware},
		{ID: "dac1", Kind: model.KindHardware, Attrs: map[string]string{"domain": "analog"}},
		{ID: "amp1", Kind: model.KindHardware, Attrs: map[string]string{"domain": "analog"}},
		{ID: "firmware", Kind: model.KindSoftware},
	} {
		g.AddNode(n)
	}
	for _, e := range []model.Edge{
		{Source: "dac1", Target: "amp1", Kind: model.EdgeElectrical},
		{Source: "teensy", Target: "dac1", Kind: model.EdgeData},
		{Source: "usb", Target: "teensy", Kind: model.EdgeData},
		{Source: "firmware", Target: "teensy", Kind: model.EdgeLogical},
	} {
		g.AddEdge(e)
	}
	return g
}

func TestBuild(t *testing.T) {
	ix, err := Build(synthGraph(), 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if ix.NodeCount() != 5 {
		t.Errorf("Expected 5 nodes, got %d", ix.NodeCount())
	}
	if ix.EdgeCount() != 4 {
		t.Errorf("Expected 4 edges, got %d", ix.EdgeCount())
	}
	if ix.Revision() != 1 {
		t.Errorf("Expected revision 1, got %d", ix.Revision())
	}
	if ix.Weighted() {
		t.Error("Graph with default weights should not be weighted")
	}
}

func TestBuildDanglingEdge(t *testing.T) {
	g := synthGraph()
	g.AddEdge(model.Edge{Source: "dac1", Target: "ghost", Kind: model.EdgeElectrical})

	_, err := Build(g, 1)
	if err == nil {
		t.Fatal("Expected error for dangling edge")
	}
	var malformed *model.MalformedGraphError
	if !errors.As(err, &malformed) {
		t.Errorf("Expected MalformedGraphError, got %T: %v", err, err)
	}
}

func TestBuildDuplicateNode(t *testing.T) {
	g := synthGraph()
	g.Nodes = append(g.Nodes, model.Node{ID: "usb", Kind: model.KindHardware})

	var malformed *model.MalformedGraphError
	if _, err := Build(g, 1); !errors.As(err, &malformed) {
		t.Errorf("Expected MalformedGraphError for duplicate node, got %v", err)
	}
}

func TestBuildDuplicateEdgeKeepsFirst(t *testing.T) {
	g := model.NewGraph()
	g.AddNode(model.Node{ID: "a", Kind: model.KindHardware})
	g.AddNode(model.Node{ID: "b", Kind: model.KindHardware})
	g.AddEdge(model.Edge{Source: "a", Target: "b", Kind: model.EdgeData})
	g.AddEdge(model.Edge{Source: "b", Target: "a", Kind: model.EdgeData, Weight: 7})

	ix, err := Build(g, 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if ix.Weighted() {
		t.Error("Discarded duplicate weight must not select weighted search")
	}
	if w := ix.Weight("a", "b"); w != model.DefaultWeight {
		t.Errorf("Expected first edge's weight %g, got %g", model.DefaultWeight, w)
	}
	nbrs, err := ix.Neighbors("a")
	if err != nil {
		t.Fatalf("Neighbors() error = %v", err)
	}
	if !reflect.DeepEqual(nbrs, []string{"b"}) {
		t.Errorf("Expected single neighbor [b], got %v", nbrs)
	}
}

func TestNeighborsOrder(t *testing.T) {
	ix, err := Build(synthGraph(), 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// teensy appears in edges dac1 (as source), usb (as target), firmware
	// (as target), in that insertion order.
	nbrs, err := ix.Neighbors("teensy")
	if err != nil {
		t.Fatalf("Neighbors() error = %v", err)
	}
	want := []string{"dac1", "usb", "firmware"}
	if !reflect.DeepEqual(nbrs, want) {
		t.Errorf("Expected neighbors %v, got %v", want, nbrs)
	}
}

func TestNeighborsUnknownNode(t *testing.T) {
	ix, err := Build(synthGraph(), 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	_, err = ix.Neighbors("nonexistent")
	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestZones(t *testing.T) {
	g := synthGraph()
	g.Zones = []model.ZoneRule{
		{Name: "power_analog", Members: []string{"dac1", "amp1"}},
		{Name: "analog", Match: map[string]string{"domain": "analog"}},
		{Name: "software", Kind: model.KindSoftware},
		{Name: "mixed", Members: []string{"usb", "ghost"}},
	}
	ix, err := Build(g, 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	tests := []struct {
		zone string
		want []string
	}{
		{"power_analog", []string{"amp1", "dac1"}},
		{"analog", []string{"amp1", "dac1"}},
		{"software", []string{"firmware"}},
		{"mixed", []string{"usb"}}, // ghost is not a known node
	}
	for _, tt := range tests {
		got, err := ix.Zone(tt.zone)
		if err != nil {
			t.Errorf("Zone(%q) error = %v", tt.zone, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Zone(%q) = %v, want %v", tt.zone, got, tt.want)
		}
	}
}

func TestZoneUndeclared(t *testing.T) {
	ix, err := Build(synthGraph(), 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	_, err = ix.Zone("no_such_zone")
	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestZoneMembershipSubsetOfNodes(t *testing.T) {
	g := synthGraph()
	g.Zones = []model.ZoneRule{
		{Name: "all", Members: []string{"usb", "teensy", "dac1", "amp1", "firmware", "retired"}},
	}
	ix, err := Build(g, 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	members, err := ix.Zone("all")
	if err != nil {
		t.Fatalf("Zone() error = %v", err)
	}
	for _, id := range members {
		if !ix.HasNode(id) {
			t.Errorf("Zone member %q is not a known node", id)
		}
	}
	if len(members) != 5 {
		t.Errorf("Expected 5 members, got %d", len(members))
	}
}
