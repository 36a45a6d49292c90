package messaging

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	messagingTypes "github.com/nidrip/nidrip-backend/pkg/messaging/types"
)

func (dbService *MessagingDBService) AddToOutgoingEmails(email messagingTypes.OutgoingEmail) (messagingTypes.OutgoingEmail, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if email.AddedAt <= 0 {
		email.AddedAt = time.Now().Unix()
	}

	res, err := dbService.collectionOutgoingEmails().InsertOne(ctx, email)
	if err != nil {
		return email, err
	}
	email.ID = res.InsertedID.(primitive.ObjectID)
	return email, nil
}

func (dbService *MessagingDBService) AddToSentEmails(email messagingTypes.OutgoingEmail) (messagingTypes.OutgoingEmail, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()
	email.AddedAt = time.Now().Unix()
	email.Content = ""

	email.ID = primitive.NilObjectID
	res, err := dbService.collectionSentEmails().InsertOne(ctx, email)
	if err != nil {
		return email, err
	}
	email.ID = res.InsertedID.(primitive.ObjectID)
	return email, nil
}

func (dbService *MessagingDBService) DeleteOutgoingEmail(id string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = dbService.collectionOutgoingEmails().DeleteOne(ctx, bson.M{"_id": objID})
	return err
}

// FetchOutgoingEmails returns queued emails whose last send attempt happened
// before the given unix timestamp, oldest first. Freshly marked emails stay
// out of the result set until the mark ages past the cutoff.
func (dbService *MessagingDBService) FetchOutgoingEmails(limit int64, lastAttemptBefore int64) ([]messagingTypes.OutgoingEmail, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"lastSendAttempt": bson.M{"$lt": lastAttemptBefore}}
	opts := options.Find().SetSort(bson.M{"addedAt": 1})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := dbService.collectionOutgoingEmails().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	emails := []messagingTypes.OutgoingEmail{}
	if err := cursor.All(ctx, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// MarkOutgoingEmailSendAttempt stamps the email with the current time so a
// concurrently or subsequently running job does not pick it up again.
func (dbService *MessagingDBService) MarkOutgoingEmailSendAttempt(id string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = dbService.collectionOutgoingEmails().UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"lastSendAttempt": time.Now().Unix()}},
	)
	return err
}
