// Package triggers turns MongoDB change-stream events into queue jobs.
//
// This is the delivery mechanism behind the reactive triggers: an order
// insert enqueues an order-confirmation job, a product write enqueues a
// search-index job. The queue provides at-least-once execution with retry,
// so the jobs themselves carry the idempotency.
package triggers

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketlane/storefront/app/jobs"
	"github.com/marketlane/storefront/app/repositories"
	"github.com/marketlane/storefront/pkg/logger"
	"github.com/marketlane/storefront/pkg/queue"
)

// Dispatcher is the queue surface the watcher needs. *queue.Manager
// satisfies it.
type Dispatcher interface {
	Dispatch(name string, job queue.Job) error
}

// ChangeEvent is the subset of a change-stream document the watcher reads.
type ChangeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID interface{} `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument bson.M `bson:"fullDocument"`
}

// Watcher tails the orders and products collections.
type Watcher struct {
	db    *mongo.Database
	queue Dispatcher
}

func NewWatcher(db *mongo.Database, q Dispatcher) *Watcher {
	return &Watcher{db: db, queue: q}
}

// Start launches one goroutine per watched collection. They run until ctx
// is cancelled, re-opening the stream after transient errors.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx, repositories.ColOrders, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"operationType": "insert"}}},
	}, w.dispatchOrderEvent)

	go w.watch(ctx, repositories.ColProducts, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}},
		}}},
	}, w.dispatchProductEvent)

	logger.Info("triggers: change-stream watchers started")
}

func (w *Watcher) watch(ctx context.Context, collection string, pipeline mongo.Pipeline, handle func(ChangeEvent)) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	for {
		if ctx.Err() != nil {
			return
		}

		stream, err := w.db.Collection(collection).Watch(ctx, pipeline, opts)
		if err != nil {
			logger.Error("triggers: open change stream", "collection", collection, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for stream.Next(ctx) {
			var evt ChangeEvent
			if err := stream.Decode(&evt); err != nil {
				logger.Error("triggers: decode event", "collection", collection, "error", err)
				continue
			}
			handle(evt)
		}

		if err := stream.Err(); err != nil && ctx.Err() == nil {
			logger.Warn("triggers: change stream interrupted, reopening",
				"collection", collection, "error", err)
		}
		stream.Close(context.Background())
	}
}

func (w *Watcher) dispatchOrderEvent(evt ChangeEvent) {
	job, ok := OrderJob(evt)
	if !ok {
		return
	}
	if err := w.queue.Dispatch(jobs.JobOrderConfirmation, job); err != nil {
		logger.Error("triggers: dispatch order confirmation", "order_id", job.OrderID, "error", err)
	}
}

func (w *Watcher) dispatchProductEvent(evt ChangeEvent) {
	job, ok := ProductJob(evt)
	if !ok {
		return
	}
	if err := w.queue.Dispatch(jobs.JobSearchIndex, job); err != nil {
		logger.Error("triggers: dispatch search index", "product_id", job.ProductID, "error", err)
	}
}

// OrderJob maps an orders-collection event to its confirmation job.
// Only inserts produce a job.
func OrderJob(evt ChangeEvent) (*jobs.OrderConfirmation, bool) {
	if evt.OperationType != "insert" {
		return nil, false
	}

	userID, _ := evt.FullDocument["userId"].(string)
	return &jobs.OrderConfirmation{
		OrderID: idString(evt.DocumentKey.ID),
		UserID:  userID,
	}, true
}

// ProductJob maps a products-collection event to its search-index job:
// delete removes the entry, everything else upserts.
func ProductJob(evt ChangeEvent) (*jobs.SearchIndex, bool) {
	op := jobs.SearchIndexUpsert
	switch evt.OperationType {
	case "delete":
		op = jobs.SearchIndexDelete
	case "insert", "update", "replace":
	default:
		return nil, false
	}

	return &jobs.SearchIndex{
		ProductID: idString(evt.DocumentKey.ID),
		Op:        op,
	}, true
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	default:
		return fmt.Sprintf("%v", v)
	}
}
