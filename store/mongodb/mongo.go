/*
Package mongodb provides the MongoDB-backed implementation of the note
store.

PURPOSE:
  Implements sales.NoteStore over a single collection of documents:

    { _id: ObjectId, sale_id: int64, text: string }

SEARCH SEMANTICS:
  Queries are literal substrings. The adapter neutralizes regex
  metacharacters with regexp.QuoteMeta before handing the pattern to
  $regex with the "i" option, so "50%" or "a(b)" match only their
  literal text, case-insensitively.

STARTUP:
  New connects and pings with timeouts. EnsureIndexes creates the
  sale_id and text indexes; callers treat it as best-effort since
  Mongo may be started after the API.

ERRORS:
  Every driver failure is wrapped in
  sales.StoreUnavailableError{Store: "notes"}.

SEE ALSO:
  - sales/store.go: interface definition
  - store/memory/memory.go: in-memory implementation for tests
*/
package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/warp/sales-ledger/sales"
)

// Config holds MongoDB connection configuration.
type Config struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		URI:            "mongodb://localhost:27017",
		Database:       "sales_db",
		Collection:     "sale_texts",
		ConnectTimeout: 10 * time.Second,
	}
}

var _ sales.NoteStore = (*Store)(nil)

// Store implements sales.NoteStore using MongoDB.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// noteDoc is the persisted document shape.
type noteDoc struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	SaleID int64              `bson:"sale_id"`
	Text   string             `bson:"text"`
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the sale_id and text indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sale_id", Value: 1}}},
		{Keys: bson.D{{Key: "text", Value: 1}}},
	})
	if err != nil {
		return noteErr(err)
	}
	return nil
}

// CreateNote stores a document and returns it with the assigned id.
func (s *Store) CreateNote(ctx context.Context, saleID int64, text string) (*sales.Note, error) {
	res, err := s.coll.InsertOne(ctx, noteDoc{SaleID: saleID, Text: text})
	if err != nil {
		return nil, noteErr(err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, noteErr(fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}

	return &sales.Note{
		ID:     oid.Hex(),
		SaleID: saleID,
		Text:   text,
	}, nil
}

// SearchNotes returns documents whose text contains the query as a
// case-insensitive literal substring, in cursor order.
func (s *Store) SearchNotes(ctx context.Context, query string) ([]sales.Note, error) {
	filter := bson.M{"text": bson.M{
		"$regex":   literalPattern(query),
		"$options": "i",
	}}

	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, noteErr(err)
	}
	defer cursor.Close(ctx)

	var notes []sales.Note
	for cursor.Next(ctx) {
		var doc noteDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, noteErr(err)
		}
		notes = append(notes, sales.Note{
			ID:     doc.ID.Hex(),
			SaleID: doc.SaleID,
			Text:   doc.Text,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, noteErr(err)
	}
	return notes, nil
}

// DeleteNotesByOwner removes all documents owned by the sale. Deleting
// nothing is not an error.
func (s *Store) DeleteNotesByOwner(ctx context.Context, saleID int64) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"sale_id": saleID}); err != nil {
		return noteErr(err)
	}
	return nil
}

// literalPattern neutralizes regex metacharacters so the query matches
// only its literal text.
func literalPattern(query string) string {
	return regexp.QuoteMeta(query)
}

func noteErr(err error) error {
	return &sales.StoreUnavailableError{Store: "notes", Err: err}
}
