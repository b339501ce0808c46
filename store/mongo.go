package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/event-vote-go/models"
)

type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{db: client.Database(dbName)}
}

// EnsureIndexes creates the unique indexes the registration and signup
// invariants depend on. Must run before the store serves traffic.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection("admins").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// One registration per (user, event); concurrent registers race on this
	// index instead of on an application-level check.
	_, err = s.db.Collection("registrations").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "event_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// ---------------- ADMINS ----------------

func (s *MongoStore) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	_, err := s.db.Collection("admins").InsertOne(ctx, admin)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoStore) GetAdmin(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var admin models.Admin
	err := s.db.Collection("admins").FindOne(ctx, bson.M{"_id": id}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// ---------------- USERS ----------------

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.Collection("users").InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoStore) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ---------------- EVENTS ----------------

func (s *MongoStore) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := s.db.Collection("events").InsertOne(ctx, event)
	return err
}

func (s *MongoStore) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var event models.Event
	err := s.db.Collection("events").FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *MongoStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	cursor, err := s.db.Collection("events").Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *MongoStore) UpdateEvent(ctx context.Context, event *models.Event) error {
	update := bson.M{
		"name":        event.Name,
		"description": event.Description,
		"price":       event.Price,
		"image":       event.Image,
		"updated_at":  time.Now(),
	}
	res, err := s.db.Collection("events").UpdateOne(ctx, bson.M{"_id": event.ID}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection("events").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------- REGISTRATIONS ----------------

func (s *MongoStore) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	_, err := s.db.Collection("registrations").InsertOne(ctx, reg)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoStore) GetRegistration(ctx context.Context, userID, eventID primitive.ObjectID) (*models.Registration, error) {
	var reg models.Registration
	err := s.db.Collection("registrations").
		FindOne(ctx, bson.M{"user_id": userID, "event_id": eventID}).
		Decode(&reg)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (s *MongoStore) ListRegistrationsByStatus(ctx context.Context, status string) ([]models.Registration, error) {
	cursor, err := s.db.Collection("registrations").Find(ctx, bson.M{"payment_status": status})
	if err != nil {
		return nil, err
	}
	var regs []models.Registration
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

func (s *MongoStore) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.db.Collection("registrations").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"payment_status": status, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------- IMAGES ----------------

// AddImage gates the insert on a conditional imagecount increment, so the
// quota holds even when uploads for the same registration race.
func (s *MongoStore) AddImage(ctx context.Context, img *models.Image) error {
	regs := s.db.Collection("registrations")
	res, err := regs.UpdateOne(ctx,
		bson.M{
			"user_id":    img.UserID,
			"event_id":   img.EventID,
			"imagecount": bson.M{"$lt": MaxImagesPerRegistration},
		},
		bson.M{"$inc": bson.M{"imagecount": 1}, "$set": bson.M{"updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either no registration or the quota is spent.
		count, err := regs.CountDocuments(ctx, bson.M{"user_id": img.UserID, "event_id": img.EventID})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrQuotaExceeded
	}

	if _, err := s.db.Collection("images").InsertOne(ctx, img); err != nil {
		// Give the slot back so a retry is possible.
		regs.UpdateOne(ctx,
			bson.M{"user_id": img.UserID, "event_id": img.EventID},
			bson.M{"$inc": bson.M{"imagecount": -1}})
		return err
	}
	return nil
}

func (s *MongoStore) GetImage(ctx context.Context, id primitive.ObjectID) (*models.Image, error) {
	var img models.Image
	err := s.db.Collection("images").FindOne(ctx, bson.M{"_id": id}).Decode(&img)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (s *MongoStore) ListEventImages(ctx context.Context, eventID primitive.ObjectID) ([]models.Image, error) {
	cursor, err := s.db.Collection("images").Find(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return nil, err
	}
	var images []models.Image
	if err := cursor.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// AddVote is a single compare-and-append: the filter excludes images that
// already carry the voter, so two racing votes can only match once.
func (s *MongoStore) AddVote(ctx context.Context, imageID, voterID primitive.ObjectID) error {
	res, err := s.db.Collection("images").UpdateOne(ctx,
		bson.M{"_id": imageID, "voterecord": bson.M{"$ne": voterID}},
		bson.M{"$inc": bson.M{"votes": 1}, "$push": bson.M{"voterecord": voterID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := s.db.Collection("images").CountDocuments(ctx, bson.M{"_id": imageID})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrAlreadyVoted
	}
	return nil
}

func (s *MongoStore) Leaderboard(ctx context.Context, eventID primitive.ObjectID, descending bool) ([]models.Image, error) {
	dir := 1
	if descending {
		dir = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "votes", Value: dir}, {Key: "created_at", Value: 1}})
	cursor, err := s.db.Collection("images").Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, err
	}
	var images []models.Image
	if err := cursor.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}
