package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketlane/storefront/app/models"
)

// Collection names.
const (
	ColOrders      = "orders"
	ColProducts    = "products"
	ColCarts       = "carts"
	ColUsers       = "users"
	ColSearchIndex = "search_index"
	ColLogs        = "logs"
)

// MongoStore implements Store over a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(dbName),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Client exposes the underlying mongo client for subsystems that share the
// connection (change-stream watcher, log sink).
func (s *MongoStore) Client() *mongo.Client { return s.client }

// Database returns the backing database handle.
func (s *MongoStore) Database() *mongo.Database { return s.db }

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	now := s.now()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := s.db.Collection(ColOrders).InsertOne(ctx, order); err != nil {
		return "", fmt.Errorf("store: insert order: %w", err)
	}
	return order.ID.Hex(), nil
}

// DecrementStock runs all decrements in one multi-document transaction so
// the batch is all-or-nothing across the products this order touches.
// There is no cross-order locking: two concurrent orders on the same
// product both decrement and stock can go negative.
func (s *MongoStore) DecrementStock(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("store: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		col := s.db.Collection(ColProducts)
		for _, item := range items {
			_, err := col.UpdateOne(sc,
				bson.M{"_id": item.ProductID},
				bson.M{"$inc": bson.M{"stock": -item.Quantity}},
			)
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("store: decrement stock: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteCart(ctx context.Context, userID string) error {
	_, err := s.db.Collection(ColCarts).DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("store: delete cart: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(ColUsers).FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.Collection(ColProducts).FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get product: %w", err)
	}
	return &product, nil
}

func (s *MongoStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	cur, err := s.db.Collection(ColOrders).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("store: list orders: %w", err)
	}
	defer cur.Close(ctx)

	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("store: decode orders: %w", err)
	}
	return orders, nil
}

func (s *MongoStore) CountProducts(ctx context.Context) (int64, error) {
	n, err := s.db.Collection(ColProducts).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("store: count products: %w", err)
	}
	return n, nil
}

func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.db.Collection(ColUsers).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("store: count users: %w", err)
	}
	return n, nil
}

func (s *MongoStore) UpsertSearchEntry(ctx context.Context, entry *models.SearchIndexEntry) error {
	entry.UpdatedAt = s.now()

	_, err := s.db.Collection(ColSearchIndex).ReplaceOne(ctx,
		bson.M{"_id": entry.ProductID},
		entry,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("store: upsert search entry: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteSearchEntry(ctx context.Context, productID string) error {
	_, err := s.db.Collection(ColSearchIndex).DeleteOne(ctx, bson.M{"_id": productID})
	if err != nil {
		return fmt.Errorf("store: delete search entry: %w", err)
	}
	return nil
}

// ── Seed helpers (CLI only) ──────────────────────────────────────────────────

// UpsertUser writes a user document, used by `storefront seed`.
func (s *MongoStore) UpsertUser(ctx context.Context, user *models.User) error {
	_, err := s.db.Collection(ColUsers).ReplaceOne(ctx,
		bson.M{"_id": user.UID},
		user,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("store: upsert user: %w", err)
	}
	return nil
}

// UpsertProduct writes a product document, used by `storefront seed`.
func (s *MongoStore) UpsertProduct(ctx context.Context, product *models.Product) error {
	_, err := s.db.Collection(ColProducts).ReplaceOne(ctx,
		bson.M{"_id": product.ID},
		product,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("store: upsert product: %w", err)
	}
	return nil
}
