package store

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

type userDoc struct {
	ID        string     `bson:"_id"`
	Name      string     `bson:"name"`
	Password  string     `bson:"password"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
	RemovedAt *time.Time `bson:"removed_at,omitempty"`
}

type listDoc struct {
	ID        string     `bson:"_id"`
	UserID    string     `bson:"user_id"`
	Name      string     `bson:"name"`
	Date      time.Time  `bson:"date"`
	CreatedAt time.Time  `bson:"created_at"`
	CreatedNs int64      `bson:"created_ns"`
	UpdatedAt time.Time  `bson:"updated_at"`
	RemovedAt *time.Time `bson:"removed_at,omitempty"`
}

type itemDoc struct {
	ID        string     `bson:"_id"`
	ListID    string     `bson:"list_id"`
	Name      string     `bson:"name"`
	Checked   bool       `bson:"checked"`
	CreatedAt time.Time  `bson:"created_at"`
	CreatedNs int64      `bson:"created_ns"`
	UpdatedAt time.Time  `bson:"updated_at"`
	RemovedAt *time.Time `bson:"removed_at,omitempty"`
}

func deletedAt(t *time.Time) gorm.DeletedAt {
	if t == nil {
		return gorm.DeletedAt{}
	}
	return gorm.DeletedAt{Time: *t, Valid: true}
}

func (d userDoc) model() models.User {
	return models.User{
		ID:        uuid.MustParse(d.ID),
		Name:      d.Name,
		Password:  d.Password,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		RemovedAt: deletedAt(d.RemovedAt),
	}
}

func (d listDoc) model() models.List {
	return models.List{
		ID:        uuid.MustParse(d.ID),
		UserID:    uuid.MustParse(d.UserID),
		Name:      d.Name,
		Date:      d.Date,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		RemovedAt: deletedAt(d.RemovedAt),
	}
}

func (d itemDoc) model() models.Item {
	return models.Item{
		ID:        uuid.MustParse(d.ID),
		ListID:    uuid.MustParse(d.ListID),
		Name:      d.Name,
		Checked:   d.Checked,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		RemovedAt: deletedAt(d.RemovedAt),
	}
}

var creationSort = bson.D{{Key: "created_ns", Value: 1}, {Key: "_id", Value: 1}}

func activeWith(filter bson.M) bson.M {
	filter["removed_at"] = nil
	return filter
}

// MongoStore keeps users, lists and items in three collections with string
// UUID keys. It does not offer transactions.
type MongoStore struct {
	db    *mongo.Database
	users *mongo.Collection
	lists *mongo.Collection
	items *mongo.Collection
	now   func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		db:    db,
		users: db.Collection("users"),
		lists: db.Collection("lists"),
		items: db.Collection("items"),
		now:   time.Now,
	}
}

// EnsureIndexes creates the unique user name index and the lookup indexes.
// Users are never deactivated, so the name index covers every document.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_users_name"),
	})
	if err != nil {
		return wrap("create user index", err)
	}
	_, err = s.lists.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}},
	})
	if err != nil {
		return wrap("create list index", err)
	}
	_, err = s.items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "list_id", Value: 1}},
	})
	return wrap("create item index", err)
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return wrap("ping", s.db.Client().Ping(ctx, nil))
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, op string, opts ...*options.FindOneOptions) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter, opts...).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(op, err)
	}
	return &doc, nil
}

func (s *MongoStore) FindUserByCredentials(ctx context.Context, name, password string) (*models.User, error) {
	doc, err := findOne[userDoc](ctx, s.users, activeWith(bson.M{"name": name}), "find user by credentials")
	if doc == nil || err != nil {
		return nil, err
	}
	if !passwordMatches(doc.Password, password) {
		return nil, nil
	}
	u := doc.model()
	return &u, nil
}

func (s *MongoStore) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	doc, err := findOne[userDoc](ctx, s.users, activeWith(bson.M{"_id": id.String()}), "find user")
	if doc == nil || err != nil {
		return nil, err
	}
	u := doc.model()
	return &u, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, name, password string) (*models.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, wrap("hash password", err)
	}
	now := s.now().UTC()
	doc := userDoc{ID: uuid.NewString(), Name: name, Password: hash, CreatedAt: now, UpdatedAt: now}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, wrap("create user", err)
	}
	u := doc.model()
	return &u, nil
}

func (s *MongoStore) FindListsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.List, error) {
	cur, err := s.lists.Find(ctx, activeWith(bson.M{"user_id": ownerID.String()}), options.Find().SetSort(creationSort))
	if err != nil {
		return nil, wrap("find lists", err)
	}
	var docs []listDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("find lists", err)
	}
	lists := make([]models.List, 0, len(docs))
	for _, d := range docs {
		lists = append(lists, d.model())
	}
	return lists, nil
}

func (s *MongoStore) findList(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.List, error) {
	doc, err := findOne[listDoc](ctx, s.lists, filter, "find list", opts...)
	if doc == nil || err != nil {
		return nil, err
	}
	l := doc.model()
	return &l, nil
}

func (s *MongoStore) FindListByID(ctx context.Context, id uuid.UUID) (*models.List, error) {
	return s.findList(ctx, activeWith(bson.M{"_id": id.String()}))
}

func (s *MongoStore) FindListByIDUnscoped(ctx context.Context, id uuid.UUID) (*models.List, error) {
	return s.findList(ctx, bson.M{"_id": id.String()})
}

func (s *MongoStore) FindListByName(ctx context.Context, name string, ownerID uuid.UUID) (*models.List, error) {
	return s.findList(ctx,
		activeWith(bson.M{"user_id": ownerID.String(), "name": name}),
		options.FindOne().SetSort(creationSort))
}

func (s *MongoStore) InsertList(ctx context.Context, fields ListFields) (*models.List, error) {
	now := s.now().UTC()
	doc := listDoc{
		ID:        uuid.NewString(),
		UserID:    fields.OwnerID.String(),
		Name:      fields.Name,
		Date:      fields.Date,
		CreatedAt: now,
		CreatedNs: now.UnixNano(),
		UpdatedAt: now,
	}
	if _, err := s.lists.InsertOne(ctx, doc); err != nil {
		return nil, wrap("insert list", err)
	}
	l := doc.model()
	return &l, nil
}

func (s *MongoStore) UpdateList(ctx context.Context, id uuid.UUID, fields ListFields) error {
	_, err := s.lists.UpdateOne(ctx, activeWith(bson.M{"_id": id.String()}), bson.M{"$set": bson.M{
		"name":       fields.Name,
		"date":       fields.Date,
		"updated_at": s.now().UTC(),
	}})
	return wrap("update list", err)
}

func (s *MongoStore) SoftDeleteList(ctx context.Context, id uuid.UUID) error {
	_, err := s.lists.UpdateOne(ctx, activeWith(bson.M{"_id": id.String()}),
		bson.M{"$set": bson.M{"removed_at": s.now().UTC()}})
	return wrap("delete list", err)
}

func (s *MongoStore) FindItemsByList(ctx context.Context, listID uuid.UUID) ([]models.Item, error) {
	cur, err := s.items.Find(ctx, activeWith(bson.M{"list_id": listID.String()}), options.Find().SetSort(creationSort))
	if err != nil {
		return nil, wrap("find items", err)
	}
	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("find items", err)
	}
	items := make([]models.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.model())
	}
	return items, nil
}

func (s *MongoStore) findItem(ctx context.Context, filter bson.M) (*models.Item, error) {
	doc, err := findOne[itemDoc](ctx, s.items, filter, "find item")
	if doc == nil || err != nil {
		return nil, err
	}
	it := doc.model()
	return &it, nil
}

func (s *MongoStore) FindItemByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return s.findItem(ctx, activeWith(bson.M{"_id": id.String()}))
}

func (s *MongoStore) FindItemByIDUnscoped(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return s.findItem(ctx, bson.M{"_id": id.String()})
}

func (s *MongoStore) InsertItem(ctx context.Context, listID uuid.UUID, fields ItemFields) (*models.Item, error) {
	now := s.now().UTC()
	doc := itemDoc{
		ID:        uuid.NewString(),
		ListID:    listID.String(),
		Name:      fields.Name,
		Checked:   fields.Checked,
		CreatedAt: now,
		CreatedNs: now.UnixNano(),
		UpdatedAt: now,
	}
	if _, err := s.items.InsertOne(ctx, doc); err != nil {
		return nil, wrap("insert item", err)
	}
	it := doc.model()
	return &it, nil
}

func (s *MongoStore) UpdateItem(ctx context.Context, id uuid.UUID, fields ItemFields) error {
	_, err := s.items.UpdateOne(ctx, activeWith(bson.M{"_id": id.String()}), bson.M{"$set": bson.M{
		"name":       fields.Name,
		"checked":    fields.Checked,
		"updated_at": s.now().UTC(),
	}})
	return wrap("update item", err)
}

func (s *MongoStore) SoftDeleteItem(ctx context.Context, id uuid.UUID) error {
	res, err := s.items.UpdateOne(ctx, activeWith(bson.M{"_id": id.String()}),
		bson.M{"$set": bson.M{"removed_at": s.now().UTC()}})
	if err != nil {
		return wrap("delete item", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotActive
	}
	return nil
}
