// repositories/mongo_store.go
package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/threadora/threadora_backend/models"
	"github.com/threadora/threadora_backend/services"
)

// MongoStore implements services.Store against the application database.
// Counter changes go through $inc and list membership through
// $addToSet/$pull so concurrent requests never lose updates.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) users() *mongo.Collection         { return s.db.Collection("users") }
func (s *MongoStore) threads() *mongo.Collection       { return s.db.Collection("threads") }
func (s *MongoStore) comments() *mongo.Collection      { return s.db.Collection("comments") }
func (s *MongoStore) likes() *mongo.Collection         { return s.db.Collection("likes") }
func (s *MongoStore) tags() *mongo.Collection          { return s.db.Collection("tags") }
func (s *MongoStore) communities() *mongo.Collection   { return s.db.Collection("communities") }
func (s *MongoStore) saved() *mongo.Collection         { return s.db.Collection("saved") }
func (s *MongoStore) notifications() *mongo.Collection { return s.db.Collection("notifications") }

func mapErr(err error) error {
	if err == mongo.ErrNoDocuments {
		return services.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return services.ErrDuplicate
	}
	return err
}

// Users

func (s *MongoStore) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (s *MongoStore) SetFollowState(ctx context.Context, followerID, targetID primitive.ObjectID, follow bool) error {
	followerOp := "$pull"
	targetOp := "$pull"
	if follow {
		followerOp = "$addToSet"
		targetOp = "$addToSet"
	}
	if _, err := s.users().UpdateOne(ctx, bson.M{"_id": followerID},
		bson.M{followerOp: bson.M{"following": targetID}}); err != nil {
		return err
	}
	_, err := s.users().UpdateOne(ctx, bson.M{"_id": targetID},
		bson.M{targetOp: bson.M{"followers": followerID}})
	return err
}

func (s *MongoStore) ListUserRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	refs := make(map[primitive.ObjectID]models.UserRef)
	if len(ids) == 0 {
		return refs, nil
	}
	cursor, err := s.users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.UserRef
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, ref := range users {
		refs[ref.ID] = ref
	}
	return refs, nil
}

func (s *MongoStore) SearchUsers(ctx context.Context, match string) ([]models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": bson.M{"$regex": match, "$options": "i"}},
		bson.M{"fullName": bson.M{"$regex": match, "$options": "i"}},
	}}
	cursor, err := s.users().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Threads

func (s *MongoStore) GetThread(ctx context.Context, id primitive.ObjectID) (*models.Thread, error) {
	var thread models.Thread
	if err := s.threads().FindOne(ctx, bson.M{"_id": id}).Decode(&thread); err != nil {
		return nil, mapErr(err)
	}
	return &thread, nil
}

func (s *MongoStore) InsertThread(ctx context.Context, thread *models.Thread) error {
	_, err := s.threads().InsertOne(ctx, thread)
	return mapErr(err)
}

func (s *MongoStore) IncThreadLikes(ctx context.Context, id primitive.ObjectID, delta int64) error {
	_, err := s.threads().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"likes": delta}})
	return err
}

func (s *MongoStore) IncThreadComments(ctx context.Context, id primitive.ObjectID, delta int64) error {
	_, err := s.threads().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"comments": delta}})
	return err
}

func (s *MongoStore) SetThreadLikes(ctx context.Context, id primitive.ObjectID, count int64) error {
	_, err := s.threads().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"likes": count}})
	return err
}

func (s *MongoStore) DeleteThread(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.threads().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoStore) findThreads(ctx context.Context, filter bson.M, sort bson.D) ([]models.Thread, error) {
	findOptions := options.Find().SetSort(sort)
	cursor, err := s.threads().Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var threads []models.Thread
	if err := cursor.All(ctx, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (s *MongoStore) ListThreadsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Thread, error) {
	return s.findThreads(ctx, bson.M{"ownerId": ownerID}, newestFirst)
}

func (s *MongoStore) ListThreadsByOwners(ctx context.Context, ownerIDs []primitive.ObjectID) ([]models.Thread, error) {
	if len(ownerIDs) == 0 {
		return []models.Thread{}, nil
	}
	return s.findThreads(ctx, bson.M{"ownerId": bson.M{"$in": ownerIDs}}, newestFirst)
}

func (s *MongoStore) ListThreadsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Thread, error) {
	if len(ids) == 0 {
		return []models.Thread{}, nil
	}
	return s.findThreads(ctx, bson.M{"_id": bson.M{"$in": ids}}, newestFirst)
}

func (s *MongoStore) ListThreadsExcluding(ctx context.Context, ids []primitive.ObjectID) ([]models.Thread, error) {
	filter := bson.M{}
	if len(ids) > 0 {
		filter = bson.M{"_id": bson.M{"$nin": ids}}
	}
	return s.findThreads(ctx, filter, newestFirst)
}

func (s *MongoStore) ListThreadsByTag(ctx context.Context, tagID primitive.ObjectID, byEngagement bool) ([]models.Thread, error) {
	if !byEngagement {
		return s.findThreads(ctx, bson.M{"tag": tagID}, newestFirst)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"tag": tagID}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"engagement": bson.M{"$add": bson.A{"$likes", "$comments"}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "engagement", Value: -1},
			{Key: "createdAt", Value: -1},
		}}},
	}
	cursor, err := s.threads().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var threads []models.Thread
	if err := cursor.All(ctx, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// Comments

func (s *MongoStore) GetComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	if err := s.comments().FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, mapErr(err)
	}
	return &comment, nil
}

func (s *MongoStore) InsertComment(ctx context.Context, comment *models.Comment) error {
	_, err := s.comments().InsertOne(ctx, comment)
	return mapErr(err)
}

func (s *MongoStore) AppendCommentChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	_, err := s.comments().UpdateOne(ctx, bson.M{"_id": parentID},
		bson.M{"$push": bson.M{"children": childID}})
	return err
}

func (s *MongoStore) findComments(ctx context.Context, filter bson.M) ([]models.Comment, error) {
	findOptions := options.Find().SetSort(newestFirst)
	cursor, err := s.comments().Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *MongoStore) ListTopLevelComments(ctx context.Context, threadID primitive.ObjectID) ([]models.Comment, error) {
	return s.findComments(ctx, bson.M{"thread": threadID, "parentComment": nil})
}

func (s *MongoStore) ListReplies(ctx context.Context, parentID primitive.ObjectID) ([]models.Comment, error) {
	return s.findComments(ctx, bson.M{"parentComment": parentID})
}

func (s *MongoStore) ListCommentsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Comment, error) {
	return s.findComments(ctx, bson.M{"owner": ownerID})
}

func (s *MongoStore) DeleteCommentsByThread(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	result, err := s.comments().DeleteMany(ctx, bson.M{"thread": threadID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Likes

func (s *MongoStore) FindLike(ctx context.Context, userID, threadID primitive.ObjectID) (*models.Like, error) {
	var like models.Like
	err := s.likes().FindOne(ctx, bson.M{"likeBy": userID, "thread": threadID}).Decode(&like)
	if err != nil {
		return nil, mapErr(err)
	}
	return &like, nil
}

func (s *MongoStore) InsertLike(ctx context.Context, like *models.Like) error {
	_, err := s.likes().InsertOne(ctx, like)
	return mapErr(err)
}

func (s *MongoStore) DeleteLike(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.likes().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoStore) CountThreadLikes(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	return s.likes().CountDocuments(ctx, bson.M{"thread": threadID})
}

func (s *MongoStore) ListLikesByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Like, error) {
	findOptions := options.Find().SetSort(newestFirst)
	cursor, err := s.likes().Find(ctx, bson.M{"likeBy": userID, "thread": bson.M{"$exists": true}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var likes []models.Like
	if err := cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	return likes, nil
}

func (s *MongoStore) DeleteLikesByThread(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	result, err := s.likes().DeleteMany(ctx, bson.M{"thread": threadID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Tags

func (s *MongoStore) FindTagByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.tags().FindOne(ctx, bson.M{"name": name}).Decode(&tag); err != nil {
		return nil, mapErr(err)
	}
	return &tag, nil
}

func (s *MongoStore) InsertTag(ctx context.Context, tag *models.Tag) error {
	_, err := s.tags().InsertOne(ctx, tag)
	return mapErr(err)
}

func (s *MongoStore) ListTagRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Tag, error) {
	refs := make(map[primitive.ObjectID]models.Tag)
	if len(ids) == 0 {
		return refs, nil
	}
	cursor, err := s.tags().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tags []models.Tag
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	for _, tag := range tags {
		refs[tag.ID] = tag
	}
	return refs, nil
}

func (s *MongoStore) SearchTags(ctx context.Context, match string) ([]models.Tag, error) {
	cursor, err := s.tags().Find(ctx, bson.M{"name": bson.M{"$regex": match, "$options": "i"}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tags []models.Tag
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// Communities

func (s *MongoStore) GetCommunity(ctx context.Context, id primitive.ObjectID) (*models.Community, error) {
	var community models.Community
	if err := s.communities().FindOne(ctx, bson.M{"_id": id}).Decode(&community); err != nil {
		return nil, mapErr(err)
	}
	return &community, nil
}

func (s *MongoStore) SetMembership(ctx context.Context, communityID, userID primitive.ObjectID, join bool) error {
	op := "$pull"
	if join {
		op = "$addToSet"
	}
	_, err := s.communities().UpdateOne(ctx, bson.M{"_id": communityID},
		bson.M{op: bson.M{"members": userID}})
	return err
}

func (s *MongoStore) PushCommunityThread(ctx context.Context, communityID, threadID primitive.ObjectID) error {
	_, err := s.communities().UpdateOne(ctx, bson.M{"_id": communityID},
		bson.M{"$addToSet": bson.M{"threads": threadID}})
	return err
}

func (s *MongoStore) PullThreadFromCommunities(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	result, err := s.communities().UpdateMany(ctx, bson.M{"threads": threadID},
		bson.M{"$pull": bson.M{"threads": threadID}})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (s *MongoStore) CommunityThreadIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	findOptions := options.Find().SetProjection(bson.M{"threads": 1})
	cursor, err := s.communities().Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var communities []struct {
		Threads []primitive.ObjectID `bson:"threads"`
	}
	if err := cursor.All(ctx, &communities); err != nil {
		return nil, err
	}
	var ids []primitive.ObjectID
	for _, community := range communities {
		ids = append(ids, community.Threads...)
	}
	return ids, nil
}

func (s *MongoStore) TopCommunities(ctx context.Context, skip, limit int64) ([]models.CommunityRank, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "threads",
			"localField":   "threads",
			"foreignField": "_id",
			"as":           "communityThreads",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"followersCount": bson.M{"$size": "$members"},
			"totalLikes":     bson.M{"$sum": "$communityThreads.likes"},
			"totalComments":  bson.M{"$sum": "$communityThreads.comments"},
			"totalPosts":     bson.M{"$size": "$communityThreads"},
			"totalEngagement": bson.M{"$sum": bson.A{
				bson.M{"$sum": "$communityThreads.likes"},
				bson.M{"$sum": "$communityThreads.comments"},
			}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"communityThreads": 0}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "followersCount", Value: -1},
			{Key: "totalEngagement", Value: -1},
			{Key: "totalPosts", Value: -1},
		}}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: limit}},
	}
	cursor, err := s.communities().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ranks []models.CommunityRank
	if err := cursor.All(ctx, &ranks); err != nil {
		return nil, err
	}
	return ranks, nil
}

func (s *MongoStore) SearchCommunities(ctx context.Context, match string) ([]models.Community, error) {
	cursor, err := s.communities().Find(ctx, bson.M{"name": bson.M{"$regex": match, "$options": "i"}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var communities []models.Community
	if err := cursor.All(ctx, &communities); err != nil {
		return nil, err
	}
	return communities, nil
}

// Saved

func (s *MongoStore) GetSaved(ctx context.Context, ownerID primitive.ObjectID) (*models.Saved, error) {
	var saved models.Saved
	if err := s.saved().FindOne(ctx, bson.M{"ownerId": ownerID}).Decode(&saved); err != nil {
		return nil, mapErr(err)
	}
	return &saved, nil
}

func (s *MongoStore) AddSavedThread(ctx context.Context, ownerID, threadID primitive.ObjectID) error {
	now := time.Now()
	update := bson.M{
		"$addToSet":    bson.M{"saved": threadID},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"ownerId": ownerID, "liked": bson.A{}, "createdAt": now},
	}
	updateOptions := options.Update().SetUpsert(true)
	_, err := s.saved().UpdateOne(ctx, bson.M{"ownerId": ownerID}, update, updateOptions)
	return err
}

// Notifications

func (s *MongoStore) InsertNotification(ctx context.Context, notification *models.Notification) error {
	_, err := s.notifications().InsertOne(ctx, notification)
	return mapErr(err)
}

func (s *MongoStore) ListNotifications(ctx context.Context, ownerID primitive.ObjectID, since time.Time) ([]models.Notification, error) {
	filter := bson.M{
		"ownerId":   ownerID,
		"createdAt": bson.M{"$gte": since},
	}
	return s.findNotifications(ctx, filter)
}

func (s *MongoStore) SearchNotifications(ctx context.Context, actorIDs []primitive.ObjectID, match string, since time.Time) ([]models.Notification, error) {
	filter := bson.M{
		"userId":    bson.M{"$in": actorIDs},
		"name":      bson.M{"$regex": match, "$options": "i"},
		"createdAt": bson.M{"$gte": since},
	}
	return s.findNotifications(ctx, filter)
}

func (s *MongoStore) findNotifications(ctx context.Context, filter bson.M) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(newestFirst)
	cursor, err := s.notifications().Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *MongoStore) DeleteNotificationsByThread(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	result, err := s.notifications().DeleteMany(ctx, bson.M{"threadId": threadID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

var _ services.Store = (*MongoStore)(nil)
