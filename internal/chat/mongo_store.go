package chat

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	roomsCollection    = "rooms"
	messagesCollection = "messages"
)

type MongoStore struct {
	rooms    *mongo.Collection
	messages *mongo.Collection
}

func NewMongoStore(ctx context.Context, database *mongo.Database) (*MongoStore, error) {
	s := &MongoStore{
		rooms:    database.Collection(roomsCollection),
		messages: database.Collection(messagesCollection),
	}

	_, err := s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "send_time", Value: -1}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create message index")
	}
	_, err = s.rooms.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "creator_id", Value: 1}}},
		{Keys: bson.D{{Key: "partner_id", Value: 1}}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create room indexes")
	}
	return s, nil
}

func (s *MongoStore) SaveMessage(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = primitive.NewObjectID().Hex()
	}
	if msg.SendTime.IsZero() {
		msg.SendTime = time.Now()
	}

	if _, err := s.messages.InsertOne(ctx, msg); err != nil {
		return errors.Wrap(err, "insert message")
	}

	if _, ok := ParseSystemRoomID(msg.RoomID); ok {
		return nil
	}
	_, err := s.rooms.UpdateOne(ctx,
		bson.M{"_id": msg.RoomID},
		bson.M{"$set": bson.M{"last_msg": msg.Text, "updated_at": msg.SendTime}},
	)
	return errors.Wrap(err, "update room last message")
}

func (s *MongoStore) History(ctx context.Context, roomID string, page, pageSize int) ([]Message, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)
	filter := bson.M{"room_id": roomID}

	total, err := s.messages.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count messages")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "send_time", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
	cur, err := s.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find messages")
	}

	msgs := make([]Message, 0, pageSize)
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, 0, errors.Wrap(err, "decode messages")
	}
	reverseMessages(msgs)
	return msgs, total, nil
}

func (s *MongoStore) UpsertRoom(ctx context.Context, room Room) (*Room, error) {
	if room.UpdatedAt.IsZero() {
		room.UpdatedAt = time.Now()
	}
	_, err := s.rooms.UpdateOne(ctx,
		bson.M{"_id": room.ID},
		bson.M{"$setOnInsert": bson.M{
			"event_id":   room.EventID,
			"creator_id": room.CreatorID,
			"partner_id": room.PartnerID,
			"last_msg":   room.LastMsg,
			"updated_at": room.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "upsert room")
	}
	return s.GetRoom(ctx, room.ID)
}

func (s *MongoStore) GetRoom(ctx context.Context, roomID string) (*Room, error) {
	var room Room
	err := s.rooms.FindOne(ctx, bson.M{"_id": roomID}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find room")
	}
	return &room, nil
}

func (s *MongoStore) ListRooms(ctx context.Context, userID uint) ([]Room, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"creator_id": userID},
		bson.M{"partner_id": userID},
	}}
	cur, err := s.rooms.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find rooms")
	}

	rooms := []Room{}
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, errors.Wrap(err, "decode rooms")
	}
	return rooms, nil
}

func (s *MongoStore) DeleteRoomsByUser(ctx context.Context, userID uint) error {
	rooms, err := s.ListRooms(ctx, userID)
	if err != nil {
		return err
	}

	ids := bson.A{SystemRoomID(userID)}
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	if _, err := s.messages.DeleteMany(ctx, bson.M{"room_id": bson.M{"$in": ids}}); err != nil {
		return errors.Wrap(err, "delete messages")
	}
	if _, err := s.rooms.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return errors.Wrap(err, "delete rooms")
	}
	return nil
}
