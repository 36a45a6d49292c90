package accountstore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nidrip/nidrip-backend/pkg/user-management/lockout"
	userTypes "github.com/nidrip/nidrip-backend/pkg/user-management/types"
)

func (dbService *AccountDBService) AddAccount(account userTypes.Account) (string, error) {
	collection, err := dbService.collectionForRole(account.Role)
	if err != nil {
		return "", err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	res, err := collection.InsertOne(ctx, account)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (dbService *AccountDBService) GetAccountByEmail(role string, email string) (userTypes.Account, error) {
	var account userTypes.Account
	collection, err := dbService.collectionForRole(role)
	if err != nil {
		return account, err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	err = collection.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	return account, err
}

func (dbService *AccountDBService) GetAccountByID(role string, id string) (userTypes.Account, error) {
	var account userTypes.Account
	collection, err := dbService.collectionForRole(role)
	if err != nil {
		return account, err
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return account, err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	err = collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&account)
	return account, err
}

func (dbService *AccountDBService) ReplaceAccount(account userTypes.Account) (userTypes.Account, error) {
	collection, err := dbService.collectionForRole(account.Role)
	if err != nil {
		return account, err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	account.Timestamps.UpdatedAt = time.Now().Unix()
	elem := userTypes.Account{}
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)
	err = collection.FindOneAndReplace(ctx, bson.M{"_id": account.ID}, account, opts).Decode(&elem)
	return elem, err
}

func (dbService *AccountDBService) DeleteAccount(role string, id string) error {
	collection, err := dbService.collectionForRole(role)
	if err != nil {
		return err
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err = collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}

// RegisterFailedLogin increments the attempt counter and sets the lock
// deadline in one server-side update when the new count reaches the
// threshold. Concurrent failed logins cannot undercount this way. Returns
// the updated account.
func (dbService *AccountDBService) RegisterFailedLogin(role string, id string) (userTypes.Account, error) {
	var account userTypes.Account
	collection, err := dbService.collectionForRole(role)
	if err != nil {
		return account, err
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return account, err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"loginAttempts": bson.M{"$add": bson.A{"$loginAttempts", 1}},
		}},
		bson.M{"$set": bson.M{
			"lockUntil": bson.M{"$cond": bson.A{
				bson.M{"$gte": bson.A{"$loginAttempts", lockout.MaxLoginAttempts}},
				lockout.LockDeadline(time.Now()),
				"$lockUntil",
			}},
		}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, pipeline, opts).Decode(&account)
	return account, err
}

// RegisterSuccessfulLogin stores the rotated session id, clears the lockout
// state and stamps the login time in a single write.
func (dbService *AccountDBService) RegisterSuccessfulLogin(role string, id string, sessionID string) (userTypes.Account, error) {
	var account userTypes.Account
	collection, err := dbService.collectionForRole(role)
	if err != nil {
		return account, err
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return account, err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	now := time.Now().Unix()
	update := bson.M{"$set": bson.M{
		"sessionID":            sessionID,
		"loginAttempts":        0,
		"lockUntil":            0,
		"timestamps.lastLogin": now,
		"timestamps.updatedAt": now,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&account)
	return account, err
}

// ResetLockout clears counters after an expired lock was observed, before the
// fresh attempt is evaluated.
func (dbService *AccountDBService) ResetLockout(role string, id string) error {
	collection, err := dbService.collectionForRole(role)
	if err != nil {
		return err
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err = collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{
		"loginAttempts": 0,
		"lockUntil":     0,
	}})
	return err
}

// ClearSession removes the active session id on logout. Outstanding tokens
// fail the session comparison from then on.
func (dbService *AccountDBService) ClearSession(role string, id string) error {
	collection, err := dbService.collectionForRole(role)
	if err != nil {
		return err
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err = collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{
		"sessionID":            "",
		"timestamps.updatedAt": time.Now().Unix(),
	}})
	return err
}

// UpdatePassword stores the new hash together with a rotated session id, so
// every outstanding session token stops verifying in the same write.
func (dbService *AccountDBService) UpdatePassword(role string, id string, passwordHash string, sessionID string) error {
	collection, err := dbService.collectionForRole(role)
	if err != nil {
		return err
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	now := time.Now().Unix()
	_, err = collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{
		"password":                      passwordHash,
		"sessionID":                     sessionID,
		"timestamps.lastPasswordChange": now,
		"timestamps.updatedAt":          now,
	}})
	return err
}
