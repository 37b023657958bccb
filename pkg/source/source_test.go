package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/kinship/pkg/lineage"
)

// etl is a small chain with a side branch:
//
//	1 -> 2 -> 3
//	     2 -> 4
//	5 (isolated)
func etl() lineage.Graph {
	return lineage.Graph{
		Nodes: []lineage.Node{
			{ID: "1", Name: "ods_orders", WorkFlowPublishStatus: "1", SchedulePublishStatus: "1"},
			{ID: "2", Name: "dwd_orders", WorkFlowPublishStatus: "1", SchedulePublishStatus: "0"},
			{ID: "3", Name: "ads_sales", WorkFlowPublishStatus: "0"},
			{ID: "4", Name: "ADS_Refunds", WorkFlowPublishStatus: "1", SchedulePublishStatus: "1"},
			{ID: "5", Name: "dim_region", WorkFlowPublishStatus: "1", SchedulePublishStatus: "1"},
		},
		Edges: []lineage.Edge{
			{Source: "2", Target: "3"},
			{Source: "1", Target: "2"},
			{Source: "2", Target: "4"},
		},
	}
}

func newTestSource() *FileSource {
	return NewFileSource(map[string]lineage.Graph{"etl": etl()})
}

func TestFileSource_QueryByName(t *testing.T) {
	s := newTestSource()
	ctx := context.Background()

	tests := []struct {
		search string
		want   []string
	}{
		{"", []string{"1", "2", "3", "4", "5"}},
		{"orders", []string{"1", "2"}},
		{"ads", []string{"3", "4"}},
		{"REFUND", []string{"4"}},
		{"nothing", []string{}},
		{".*", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			nodes, err := s.QueryByName(ctx, "etl", tt.search)
			if err != nil {
				t.Fatalf("QueryByName: %v", err)
			}
			got := lineage.Graph{Nodes: nodes}.NodeIDs()
			if !slices.Equal(got, tt.want) {
				t.Errorf("QueryByName(%q) = %v, want %v", tt.search, got, tt.want)
			}
		})
	}
}

func TestFileSource_QueryByIDs(t *testing.T) {
	s := newTestSource()
	ctx := context.Background()

	tests := []struct {
		name      string
		ids       []string
		wantNodes []string
		wantEdges []lineage.Edge
	}{
		{
			name:      "middle node pulls in neighbours",
			ids:       []string{"2"},
			wantNodes: []string{"1", "2", "3", "4"},
			wantEdges: []lineage.Edge{{Source: "1", Target: "2"}, {Source: "2", Target: "3"}, {Source: "2", Target: "4"}},
		},
		{
			name:      "leaf",
			ids:       []string{"3"},
			wantNodes: []string{"2", "3"},
			wantEdges: []lineage.Edge{{Source: "2", Target: "3"}},
		},
		{
			name:      "isolated",
			ids:       []string{"5"},
			wantNodes: []string{"5"},
			wantEdges: []lineage.Edge{},
		},
		{
			name:      "unknown ids skipped",
			ids:       []string{"5", "404"},
			wantNodes: []string{"5"},
			wantEdges: []lineage.Edge{},
		},
		{
			name:      "duplicates",
			ids:       []string{"1", "1"},
			wantNodes: []string{"1", "2"},
			wantEdges: []lineage.Edge{{Source: "1", Target: "2"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := s.QueryByIDs(ctx, "etl", tt.ids)
			if err != nil {
				t.Fatalf("QueryByIDs: %v", err)
			}
			if got := g.NodeIDs(); !slices.Equal(got, tt.wantNodes) {
				t.Errorf("nodes = %v, want %v", got, tt.wantNodes)
			}
			if !slices.Equal(g.Edges, tt.wantEdges) {
				t.Errorf("edges = %v, want %v", g.Edges, tt.wantEdges)
			}
			if err := g.Validate(); err != nil {
				t.Errorf("result is not a valid graph: %v", err)
			}
		})
	}
}

func TestFileSource_NotFound(t *testing.T) {
	s := newTestSource()
	ctx := context.Background()

	if _, err := s.QueryByIDs(ctx, "etl", []string{"404"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown ids: err = %v, want ErrNotFound", err)
	}
	if _, err := s.QueryByIDs(ctx, "missing", []string{"1"}); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("unknown project: err = %v, want ErrProjectNotFound", err)
	}
	if _, err := s.QueryByName(ctx, "missing", ""); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("unknown project: err = %v, want ErrProjectNotFound", err)
	}
	if _, err := s.QuerySourceTarget(ctx, "missing", "1"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("unknown project: err = %v, want ErrProjectNotFound", err)
	}
}

func TestFileSource_QuerySourceTarget(t *testing.T) {
	s := newTestSource()
	edges, err := s.QuerySourceTarget(context.Background(), "etl", "2")
	if err != nil {
		t.Fatal(err)
	}
	want := []lineage.Edge{{Source: "1", Target: "2"}, {Source: "2", Target: "3"}, {Source: "2", Target: "4"}}
	if !slices.Equal(edges, want) {
		t.Errorf("QuerySourceTarget = %v, want %v", edges, want)
	}

	edges, err = s.QuerySourceTarget(context.Background(), "etl", "5")
	if err != nil {
		t.Fatal(err)
	}
	if edges == nil || len(edges) != 0 {
		t.Errorf("isolated node edges = %v, want empty", edges)
	}
}

func TestReadFile(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		projects []string
		wantErr  bool
	}{
		{
			name:     "projects",
			doc:      `{"projects":{"a":{"nodes":[{"id":"1"}],"edges":[]},"b":{"nodes":[],"edges":[]}}}`,
			projects: []string{"a", "b"},
		},
		{
			name:     "bare graph",
			doc:      `{"nodes":[{"id":"1"},{"id":"2"}],"edges":[{"source":"1","target":"2"}]}`,
			projects: []string{DefaultProject},
		},
		{
			name:     "empty",
			doc:      `{}`,
			projects: []string{},
		},
		{
			name:    "invalid graph",
			doc:     `{"projects":{"a":{"nodes":[{"id":"1"}],"edges":[{"source":"1","target":"9"}]}}}`,
			wantErr: true,
		},
		{
			name:    "conflict",
			doc:     `{"projects":{"default":{}},"nodes":[{"id":"1"}]}`,
			wantErr: true,
		},
		{
			name:    "malformed",
			doc:     `{"projects":`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ReadFile(strings.NewReader(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFile error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := s.Projects(); !slices.Equal(got, tt.projects) {
				t.Errorf("Projects() = %v, want %v", got, tt.projects)
			}
		})
	}
}

func TestReadFileNumericIDs(t *testing.T) {
	doc := `{"projects":{"etl":{
	  "nodes":[{"id":1,"name":"ods_orders","workFlowPublishStatus":1,"schedulePublishStatus":1},
	           {"id":2,"name":"dwd_orders","workFlowPublishStatus":1,"schedulePublishStatus":0}],
	  "edges":[{"source":1,"target":2}]}}}`
	s, err := ReadFile(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	g, err := s.QueryByIDs(context.Background(), "etl", []string{"2"})
	if err != nil {
		t.Fatalf("QueryByIDs: %v", err)
	}
	if got := g.NodeIDs(); !slices.Equal(got, []string{"1", "2"}) {
		t.Errorf("QueryByIDs nodes = %v", got)
	}
	if len(g.Edges) != 1 || g.Edges[0].Source != "1" {
		t.Errorf("QueryByIDs edges = %v", g.Edges)
	}
}

func TestIDValues(t *testing.T) {
	got := idValues([]string{"7", "wf-a", "007", "-2"})
	want := bson.A{"7", int64(7), "wf-a", "007", "-2", int64(-2)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("idValues = %v, want %v", got, want)
	}
}

func TestNodeRecordNumeric(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"project": "etl", "id": int32(3), "name": "ads_sales",
		"work_flow_publish_status": int32(1), "schedule_publish_status": "0",
	})
	if err != nil {
		t.Fatal(err)
	}
	var rec nodeRecord
	if err := bson.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := lineage.Node{ID: "3", Name: "ads_sales", WorkFlowPublishStatus: "1", SchedulePublishStatus: "0"}
	if rec.node() != want {
		t.Errorf("node = %+v, want %+v", rec.node(), want)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineage.json")
	if err := lineage.WriteGraphFile(etl(), path); err != nil {
		t.Fatal(err)
	}

	s, err := Open(context.Background(), Config{Kind: KindFile, Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	nodes, err := s.QueryByName(context.Background(), DefaultProject, "orders")
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Errorf("got %d nodes, want 2", len(nodes))
	}

	if _, err := Open(context.Background(), Config{Kind: "sqlite"}); err == nil {
		t.Error("unknown kind should fail")
	}
	if _, err := Open(context.Background(), Config{Kind: KindFile, Path: filepath.Join(t.TempDir(), "nope.json")}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}
}
