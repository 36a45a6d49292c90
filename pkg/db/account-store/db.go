package accountstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nidrip/nidrip-backend/pkg/db"
	userTypes "github.com/nidrip/nidrip-backend/pkg/user-management/types"
)

// collection names
const (
	COLLECTION_NAME_USERS  = "users"
	COLLECTION_NAME_ADMINS = "admins"
)

// AccountDBService is the account repository. Shoppers and administrators
// live in separate collections behind the same interface, selected by the
// role tag.
type AccountDBService struct {
	DBClient     *mongo.Client
	timeout      int
	DBNamePrefix string
}

func NewAccountDBService(configs db.DBConfig) (*AccountDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)
	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()
	if err != nil {
		return nil, err
	}

	adbs := &AccountDBService{
		DBClient:     dbClient,
		timeout:      configs.Timeout,
		DBNamePrefix: configs.DBNamePrefix,
	}

	if configs.RunIndexCreation {
		adbs.CreateDefaultIndexes()
	}
	return adbs, nil
}

func (dbService *AccountDBService) getDBName() string {
	return dbService.DBNamePrefix + "accounts"
}

func (dbService *AccountDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *AccountDBService) collectionForRole(role string) (*mongo.Collection, error) {
	switch role {
	case userTypes.ACCOUNT_ROLE_USER:
		return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_USERS), nil
	case userTypes.ACCOUNT_ROLE_ADMIN:
		return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_ADMINS), nil
	default:
		return nil, errors.New("unknown account role: " + role)
	}
}

func (dbService *AccountDBService) CreateDefaultIndexes() {
	for _, role := range []string{userTypes.ACCOUNT_ROLE_USER, userTypes.ACCOUNT_ROLE_ADMIN} {
		_ = dbService.CreateIndexesForAccounts(role)
	}
}

func (dbService *AccountDBService) CreateIndexesForAccounts(role string) error {
	collection, err := dbService.collectionForRole(role)
	if err != nil {
		return err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err = collection.Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "timestamps.createdAt", Value: 1}},
			},
		},
	)
	return err
}
