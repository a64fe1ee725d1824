package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/boardstack/boardstack/pkg/errors"
)

// Collection names.
const (
	collDocuments   = "pdf_documents"
	collCanvasLinks = "pdf_canvas_links"
	collHandwriting = "handwriting_notes"
	collTypedNotes  = "typed_notes"
	collSummaries   = "meeting_summaries"
)

const connectTimeout = 10 * time.Second

// MongoStore is the MongoDB-backed [Store].
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "connecting to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "pinging MongoDB")
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "disconnecting from MongoDB")
	}
	return nil
}

func (s *MongoStore) InsertDocument(ctx context.Context, doc PDFDocument) error {
	_, err := s.db.Collection(collDocuments).InsertOne(ctx, doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "inserting document")
	}
	return nil
}

func (s *MongoStore) GetDocument(ctx context.Context, id string) (PDFDocument, error) {
	var doc PDFDocument
	err := s.db.Collection(collDocuments).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return PDFDocument{}, errors.New(errors.ErrCodeDocumentNotFound, "document not found: "+id)
	}
	if err != nil {
		return PDFDocument{}, errors.Wrap(err, errors.ErrCodeStorage, "fetching document")
	}
	return doc, nil
}

func (s *MongoStore) ListDocuments(ctx context.Context, limit, offset int) ([]PDFDocument, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := s.db.Collection(collDocuments).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "listing documents")
	}
	docs := []PDFDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "decoding documents")
	}
	return docs, nil
}

func (s *MongoStore) UpsertCanvasLink(ctx context.Context, link CanvasLink) error {
	_, err := s.db.Collection(collCanvasLinks).ReplaceOne(ctx,
		bson.M{"_id": link.ShapeID}, link, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "upserting canvas link")
	}
	return nil
}

func (s *MongoStore) LinksForShapes(ctx context.Context, shapeIDs []string) ([]CanvasLink, error) {
	if len(shapeIDs) == 0 {
		return nil, nil
	}
	cursor, err := s.db.Collection(collCanvasLinks).Find(ctx,
		bson.M{"_id": bson.M{"$in": shapeIDs}})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "querying canvas links")
	}
	var links []CanvasLink
	if err := cursor.All(ctx, &links); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "decoding canvas links")
	}
	return links, nil
}

func (s *MongoStore) DeleteCanvasLink(ctx context.Context, shapeID string) error {
	res, err := s.db.Collection(collCanvasLinks).DeleteOne(ctx, bson.M{"_id": shapeID})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "deleting canvas link")
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeShapeNotFound, "no link for shape: "+shapeID)
	}
	return nil
}

func (s *MongoStore) InsertHandwritingNote(ctx context.Context, note HandwritingNote) error {
	_, err := s.db.Collection(collHandwriting).InsertOne(ctx, note)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "inserting handwriting note")
	}
	return nil
}

func (s *MongoStore) SetHandwritingResult(ctx context.Context, id, status, transcript string) error {
	update := bson.M{"$set": bson.M{
		"status":     status,
		"transcript": transcript,
		"updated_at": time.Now().UTC(),
	}}
	res, err := s.db.Collection(collHandwriting).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "updating handwriting note")
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "handwriting note not found: "+id)
	}
	return nil
}

func (s *MongoStore) HandwritingNotesForFrames(ctx context.Context, frameIDs []string) ([]HandwritingNote, error) {
	if len(frameIDs) == 0 {
		return nil, nil
	}
	cursor, err := s.db.Collection(collHandwriting).Find(ctx,
		bson.M{"frame_id": bson.M{"$in": frameIDs}})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "querying handwriting notes")
	}
	var notes []HandwritingNote
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "decoding handwriting notes")
	}
	return notes, nil
}

func (s *MongoStore) UpsertTypedNote(ctx context.Context, note TypedNote) error {
	// One record per frame; re-syncs replace the previous state but keep
	// the original creation time.
	update := bson.M{
		"$set": bson.M{
			"frame_id":    note.FrameID,
			"room_id":     note.RoomID,
			"bounds":      note.Bounds,
			"text_shapes": note.TextShapes,
			"status":      note.Status,
			"updated_at":  note.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        note.ID,
			"created_at": note.CreatedAt,
		},
	}
	_, err := s.db.Collection(collTypedNotes).UpdateOne(ctx,
		bson.M{"frame_id": note.FrameID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "upserting typed note")
	}
	return nil
}

func (s *MongoStore) TypedNotesForFrames(ctx context.Context, frameIDs []string) ([]TypedNote, error) {
	if len(frameIDs) == 0 {
		return nil, nil
	}
	cursor, err := s.db.Collection(collTypedNotes).Find(ctx,
		bson.M{"frame_id": bson.M{"$in": frameIDs}})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "querying typed notes")
	}
	var notes []TypedNote
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "decoding typed notes")
	}
	return notes, nil
}

func (s *MongoStore) InsertSummary(ctx context.Context, summary MeetingSummary) error {
	_, err := s.db.Collection(collSummaries).InsertOne(ctx, summary)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "inserting summary")
	}
	return nil
}

func (s *MongoStore) SummariesForRoom(ctx context.Context, roomID string) ([]MeetingSummary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(collSummaries).Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "querying summaries")
	}
	var summaries []MeetingSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "decoding summaries")
	}
	return summaries, nil
}
