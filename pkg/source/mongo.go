package source

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/kinship/pkg/lineage"
)

// Collections names the MongoDB collections holding lineage.
type Collections struct {
	Workflows string
	Relations string
}

// DefaultCollections are used for empty collection names.
var DefaultCollections = Collections{
	Workflows: "workflows",
	Relations: "workflow_relations",
}

// MongoConfig configures a MongoSource.
type MongoConfig struct {
	URI            string
	Database       string
	Collections    Collections
	ConnectTimeout time.Duration
}

// MongoSource reads lineage from MongoDB. Workflow documents carry the
// lineage.Node fields plus a "project" field; relation documents carry the
// lineage.Relation fields plus "project".
type MongoSource struct {
	client    *mongo.Client
	workflows *mongo.Collection
	relations *mongo.Collection
}

type workflowDoc struct {
	Project      string `bson:"project"`
	lineage.Node `bson:",inline"`
}

type relationDoc struct {
	Project          string `bson:"project"`
	lineage.Relation `bson:",inline"`
}

// nodeRecord and relationRecord are the read side of the documents above.
// Collections filled by the scheduler store ids as integers.
type nodeRecord struct {
	ID                    lineage.ID     `bson:"id"`
	Name                  string         `bson:"name"`
	WorkFlowPublishStatus lineage.Status `bson:"work_flow_publish_status"`
	SchedulePublishStatus lineage.Status `bson:"schedule_publish_status"`
	Crontab               string         `bson:"crontab"`
	ScheduleStartTime     string         `bson:"schedule_start_time"`
	ScheduleEndTime       string         `bson:"schedule_end_time"`
}

func (r nodeRecord) node() lineage.Node {
	return lineage.Node{
		ID:                    string(r.ID),
		Name:                  r.Name,
		WorkFlowPublishStatus: r.WorkFlowPublishStatus,
		SchedulePublishStatus: r.SchedulePublishStatus,
		Crontab:               r.Crontab,
		ScheduleStartTime:     r.ScheduleStartTime,
		ScheduleEndTime:       r.ScheduleEndTime,
	}
}

type relationRecord struct {
	Source lineage.ID `bson:"source_work_flow_id"`
	Target lineage.ID `bson:"target_work_flow_id"`
}

// NewMongoSource connects to MongoDB and pings the primary.
func NewMongoSource(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.Database == "" {
		cfg.Database = "kinship"
	}
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAppName("kinship"))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoSourceFromClient(client, cfg.Database, cfg.Collections), nil
}

// NewMongoSourceFromClient uses an existing client. The source takes
// ownership of client and disconnects it on Close.
func NewMongoSourceFromClient(client *mongo.Client, database string, cols Collections) *MongoSource {
	if cols.Workflows == "" {
		cols.Workflows = DefaultCollections.Workflows
	}
	if cols.Relations == "" {
		cols.Relations = DefaultCollections.Relations
	}
	db := client.Database(database)
	return &MongoSource{
		client:    client,
		workflows: db.Collection(cols.Workflows),
		relations: db.Collection(cols.Relations),
	}
}

// EnsureIndexes creates the indexes the queries rely on.
func (s *MongoSource) EnsureIndexes(ctx context.Context) error {
	_, err := s.workflows.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "project", Value: 1}, {Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "project", Value: 1}, {Key: "name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create workflow indexes: %w", err)
	}
	_, err = s.relations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "project", Value: 1}, {Key: "source_work_flow_id", Value: 1}}},
		{Keys: bson.D{{Key: "project", Value: 1}, {Key: "target_work_flow_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create relation indexes: %w", err)
	}
	return nil
}

// QueryByName implements Source. Results are ordered by name.
func (s *MongoSource) QueryByName(ctx context.Context, project, search string) ([]lineage.Node, error) {
	filter := bson.M{"project": project}
	if search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}
	return s.findNodes(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// QueryByIDs implements Source.
func (s *MongoSource) QueryByIDs(ctx context.Context, project string, ids []string) (lineage.Graph, error) {
	ids = dedupe(ids)
	edges, err := s.findEdges(ctx, bson.M{
		"project": project,
		"$or": bson.A{
			bson.M{"source_work_flow_id": bson.M{"$in": idValues(ids)}},
			bson.M{"target_work_flow_id": bson.M{"$in": idValues(ids)}},
		},
	})
	if err != nil {
		return lineage.Graph{}, err
	}

	all := append([]string{}, ids...)
	for _, e := range edges {
		all = append(all, e.Source, e.Target)
	}
	nodes, err := s.findNodes(ctx, bson.M{
		"project": project,
		"id":      bson.M{"$in": idValues(dedupe(all))},
	}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return lineage.Graph{}, err
	}
	return expand(lineage.Graph{Nodes: nodes, Edges: edges}, ids)
}

// QuerySourceTarget implements Source.
func (s *MongoSource) QuerySourceTarget(ctx context.Context, project, id string) ([]lineage.Edge, error) {
	edges, err := s.findEdges(ctx, bson.M{
		"project": project,
		"$or": bson.A{
			bson.M{"source_work_flow_id": bson.M{"$in": idValues([]string{id})}},
			bson.M{"target_work_flow_id": bson.M{"$in": idValues([]string{id})}},
		},
	})
	if err != nil {
		return nil, err
	}
	sortEdges(edges)
	return edges, nil
}

// Import upserts every node and relation of g into project. Existing
// documents with the same keys are replaced; nothing is deleted.
func (s *MongoSource) Import(ctx context.Context, project string, g lineage.Graph) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if len(g.Nodes) > 0 {
		models := make([]mongo.WriteModel, len(g.Nodes))
		for i, n := range g.Nodes {
			models[i] = mongo.NewReplaceOneModel().
				SetFilter(bson.M{"project": project, "id": n.ID}).
				SetReplacement(workflowDoc{Project: project, Node: n}).
				SetUpsert(true)
		}
		if _, err := s.workflows.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("import workflows: %w", err)
		}
	}
	if len(g.Edges) > 0 {
		models := make([]mongo.WriteModel, len(g.Edges))
		for i, e := range g.Edges {
			rel := lineage.Relation{SourceWorkFlowID: e.Source, TargetWorkFlowID: e.Target}
			models[i] = mongo.NewReplaceOneModel().
				SetFilter(bson.M{
					"project":             project,
					"source_work_flow_id": e.Source,
					"target_work_flow_id": e.Target,
				}).
				SetReplacement(relationDoc{Project: project, Relation: rel}).
				SetUpsert(true)
		}
		if _, err := s.relations.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("import relations: %w", err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *MongoSource) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoSource) findNodes(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]lineage.Node, error) {
	cur, err := s.workflows.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find workflows: %w", err)
	}
	var docs []nodeRecord
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode workflows: %w", err)
	}
	nodes := make([]lineage.Node, len(docs))
	for i, d := range docs {
		nodes[i] = d.node()
	}
	return nodes, nil
}

func (s *MongoSource) findEdges(ctx context.Context, filter bson.M) ([]lineage.Edge, error) {
	cur, err := s.relations.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find relations: %w", err)
	}
	var docs []relationRecord
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode relations: %w", err)
	}
	edges := make([]lineage.Edge, len(docs))
	for i, d := range docs {
		edges[i] = lineage.Edge{Source: string(d.Source), Target: string(d.Target)}
	}
	return edges, nil
}

// idValues lists every stored form of ids: the string and, for decimal ids,
// the integer.
func idValues(ids []string) bson.A {
	out := make(bson.A, 0, 2*len(ids))
	for _, id := range ids {
		out = append(out, id)
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && strconv.FormatInt(n, 10) == id {
			out = append(out, n)
		}
	}
	return out
}

var _ Source = (*MongoSource)(nil)
