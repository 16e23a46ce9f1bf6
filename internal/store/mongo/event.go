package mongo

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"weekly-agenda-api/internal/model"
	"weekly-agenda-api/internal/store"
)

type eventDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Description string             `bson:"description"`
	DayOfWeek   string             `bson:"dayOfWeek"`
	UserID      string             `bson:"userId"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d eventDoc) model() model.Event {
	return model.Event{
		ID:          d.ID.Hex(),
		Description: d.Description,
		DayOfWeek:   d.DayOfWeek,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
	}
}

func (s *Store) CreateEvent(ctx context.Context, e *model.Event) error {
	doc := eventDoc{
		ID:          primitive.NewObjectID(),
		Description: e.Description,
		DayOfWeek:   e.DayOfWeek,
		UserID:      e.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.events.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	e.ID = doc.ID.Hex()
	e.CreatedAt = doc.CreatedAt
	return nil
}

func eventFilter(f store.EventFilter) bson.M {
	filter := bson.M{}
	if f.DayOfWeek != "" {
		filter["dayOfWeek"] = f.DayOfWeek
	}
	if f.Description != "" {
		filter["description"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Description), Options: "i"}
	}
	return filter
}

func (s *Store) ListEvents(ctx context.Context, f store.EventFilter) ([]model.Event, error) {
	return s.findEvents(ctx, eventFilter(f))
}

func (s *Store) findEvents(ctx context.Context, filter bson.M) ([]model.Event, error) {
	cur, err := s.events.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Event, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc eventDoc
	if err := s.events.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	e := doc.model()
	return &e, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.events.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteEventsByDay reads the day's events and then deletes exactly those
// ids. An event inserted between the two steps is left in place.
func (s *Store) DeleteEventsByDay(ctx context.Context, day string) ([]model.Event, error) {
	found, err := s.findEvents(ctx, bson.M{"dayOfWeek": day})
	if err != nil || len(found) == 0 {
		return found, err
	}

	ids := make([]primitive.ObjectID, 0, len(found))
	for _, e := range found {
		oid, err := primitive.ObjectIDFromHex(e.ID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, oid)
	}
	if _, err := s.events.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, err
	}
	return found, nil
}
