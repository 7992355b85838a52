package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/waygalih/suratdesa/internal/models"
)

// ConnectMongo dials and pings a MongoDB deployment.
func ConnectMongo(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return client.Database(dbName), nil
}

// MongoSubmissionStore is the SubmissionStore on MongoDB.
type MongoSubmissionStore struct {
	coll *mongo.Collection
}

func NewMongoSubmissionStore(db *mongo.Database) *MongoSubmissionStore {
	return &MongoSubmissionStore{coll: db.Collection(models.SubmissionsCollection)}
}

func (s *MongoSubmissionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: models.FieldUserID, Value: 1}, {Key: models.FieldTanggalPengajuan, Value: -1}},
	})
	return err
}

func (s *MongoSubmissionStore) FindAll(ctx context.Context) ([]models.Submission, error) {
	cur, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: models.FieldTanggalPengajuan, Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	defer cur.Close(ctx)

	var subs []models.Submission
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		subs = append(subs, mongoDocToSubmission(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

func (s *MongoSubmissionStore) FindByPath(ctx context.Context, path models.RecordPath) (*models.Submission, error) {
	filter, ok := mongoPathFilter(path)
	if !ok {
		return nil, ErrNotFound
	}
	var doc bson.M
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find submission %s: %w", path, err)
	}
	sub := mongoDocToSubmission(doc)
	return &sub, nil
}

func (s *MongoSubmissionStore) UpdateStatus(ctx context.Context, path models.RecordPath, status models.Status) error {
	filter, ok := mongoPathFilter(path)
	if !ok {
		return ErrNotFound
	}
	res, err := s.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{models.FieldStatus: status.Legacy()}})
	if err != nil {
		return fmt.Errorf("update status %s: %w", path, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoSubmissionStore) Create(ctx context.Context, sub *models.Submission) (string, error) {
	doc := submissionToDoc(sub, func(t time.Time) any { return t })
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert submission: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Sprint(res.InsertedID), nil
	}
	return oid.Hex(), nil
}

func (s *MongoSubmissionStore) InsertMany(ctx context.Context, subs []models.Submission) ([]string, error) {
	docs := make([]any, len(subs))
	for i := range subs {
		docs[i] = submissionToDoc(&subs[i], func(t time.Time) any { return t })
	}
	res, err := s.coll.InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("insert submissions: %w", err)
	}
	ids := make([]string, len(res.InsertedIDs))
	for i, v := range res.InsertedIDs {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids[i] = oid.Hex()
		} else {
			ids[i] = fmt.Sprint(v)
		}
	}
	return ids, nil
}

func (s *MongoSubmissionStore) Drop(ctx context.Context) error {
	return s.coll.Drop(ctx)
}

func mongoPathFilter(path models.RecordPath) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(path.RecordID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, models.FieldUserID: path.OwnerID}, true
}

func mongoDocToSubmission(doc bson.M) models.Submission {
	id := ""
	switch v := doc["_id"].(type) {
	case primitive.ObjectID:
		id = v.Hex()
	case string:
		id = v
	}
	return docToSubmission(fromBSON(doc).(map[string]any), id)
}

// fromBSON rewrites driver-specific values into plain Go values.
func fromBSON(v any) any {
	switch x := v.(type) {
	case bson.M:
		return fromBSON(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = fromBSON(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = fromBSON(val)
		}
		return out
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.ObjectID:
		return x.Hex()
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	}
	return v
}

// MongoUserStore is the UserStore on MongoDB.
type MongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{coll: db.Collection(UsersCollection)}
}

func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

type mongoUser struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	models.User `bson:",inline"`
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var mu mongoUser
	err := s.coll.FindOne(ctx, filter).Decode(&mu)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u := mu.User
	u.ID = mu.ID.Hex()
	return &u, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) (string, error) {
	res, err := s.coll.InsertOne(ctx, mongoUser{User: *user})
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicate
	}
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}
