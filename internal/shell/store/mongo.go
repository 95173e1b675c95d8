package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/degacms/dega/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoStore
// =============================================================================

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string
	Database string
	Username string
	Password string
}

// MongoStore implements Store using MongoDB. Slug uniqueness is enforced by
// a compound unique index on (client_id, slug) per collection.
type MongoStore struct {
	client        *mongo.Client
	categories    *mongo.Collection
	organizations *mongo.Collection
	media         *mongo.Collection
	users         *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures the
// slug indexes exist.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	if cfg.Username != "" {
		clientOptions = clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, NewStoreError("NewMongoStore", "", "", "failed to connect to mongodb", ErrConnectionFailed)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, NewStoreError("NewMongoStore", "", "", "failed to ping mongodb", ErrConnectionFailed)
	}

	db := client.Database(cfg.Database)
	s := &MongoStore{
		client:        client,
		categories:    db.Collection("category"),
		organizations: db.Collection("organization"),
		media:         db.Collection("media"),
		users:         db.Collection("dega_user"),
	}

	if err := s.ensureIndexes(connectCtx); err != nil {
		client.Disconnect(context.Background())
		return nil, NewStoreError("NewMongoStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	slugIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "client_id", Value: 1}, {Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("client_slug_unique"),
	}
	for _, coll := range []*mongo.Collection{s.categories, s.organizations, s.media, s.users} {
		if _, err := coll.Indexes().CreateOne(ctx, slugIndex); err != nil {
			return err
		}
	}
	return nil
}

// Ping verifies the MongoDB connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// mongoWriteError maps duplicate key failures onto the store sentinels.
func mongoWriteError(op, entity, id string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "_id_") {
			return NewStoreError(op, entity, id, entity+" with this ID already exists", ErrDuplicateID)
		}
		return NewStoreError(op, entity, id, entity+" with this slug already exists", ErrDuplicateSlug)
	}
	return NewStoreError(op, entity, id, err.Error(), err)
}

// mongoSort maps a sort option onto a whitelisted sort document. nameField is
// the field backing the "name" sort for the collection.
func mongoSort(sort, nameField string) bson.D {
	field := sort
	dir := 1
	if i := strings.IndexByte(sort, ','); i >= 0 {
		field = sort[:i]
		if strings.EqualFold(strings.TrimSpace(sort[i+1:]), "desc") {
			dir = -1
		}
	}
	switch field {
	case "name":
		field = nameField
	case "slug", "created_at", "updated_at":
	default:
		field, dir = "created_at", -1
	}
	return bson.D{{Key: field, Value: dir}}
}

func (s *MongoStore) getByID(ctx context.Context, coll *mongo.Collection, op, entity, id string, out any) error {
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return NewStoreError(op, entity, id, entity+" not found", ErrNotFound)
		}
		return NewStoreError(op, entity, id, err.Error(), err)
	}
	return nil
}

func (s *MongoStore) getBySlug(ctx context.Context, coll *mongo.Collection, op, entity, clientID, slug string, out any) error {
	err := coll.FindOne(ctx, bson.M{"client_id": clientID, "slug": slug}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return NewStoreError(op, entity, slug, entity+" not found", ErrNotFound)
		}
		return NewStoreError(op, entity, slug, err.Error(), err)
	}
	return nil
}

func (s *MongoStore) replaceByID(ctx context.Context, coll *mongo.Collection, op, entity, id string, doc any) error {
	result, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mongoWriteError(op, entity, id, err)
	}
	if result.MatchedCount == 0 {
		return NewStoreError(op, entity, id, entity+" not found", ErrNotFound)
	}
	return nil
}

func (s *MongoStore) deleteByID(ctx context.Context, coll *mongo.Collection, op, entity, id string) error {
	result, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return NewStoreError(op, entity, id, err.Error(), err)
	}
	if result.DeletedCount == 0 {
		return NewStoreError(op, entity, id, entity+" not found", ErrNotFound)
	}
	return nil
}

func (s *MongoStore) list(ctx context.Context, coll *mongo.Collection, op, entity, clientID, nameField string, opts PageOptions, decode func(*mongo.Cursor) error) (int, error) {
	opts = opts.Normalize()

	filter := bson.M{"client_id": clientID}
	if clientID == "" {
		filter = bson.M{}
	}
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, NewStoreError(op, entity, "", err.Error(), err)
	}

	findOptions := options.Find().
		SetSort(mongoSort(opts.Sort, nameField)).
		SetSkip(int64(opts.Offset())).
		SetLimit(int64(opts.Size))

	cursor, err := coll.Find(ctx, filter, findOptions)
	if err != nil {
		return 0, NewStoreError(op, entity, "", err.Error(), err)
	}
	defer cursor.Close(ctx)

	if err := decode(cursor); err != nil {
		return 0, NewStoreError(op, entity, "", err.Error(), ErrInvalidData)
	}
	return int(total), nil
}

// =============================================================================
// Category Operations
// =============================================================================

// categoryDoc is the BSON shape of a category.
type categoryDoc struct {
	ID          string    `bson:"_id"`
	ClientID    string    `bson:"client_id"`
	Name        string    `bson:"name"`
	Slug        string    `bson:"slug"`
	Description string    `bson:"description"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func categoryToDoc(c *domain.Category) categoryDoc {
	return categoryDoc{
		ID:          c.ID,
		ClientID:    c.ClientID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func docToCategory(d *categoryDoc) *domain.Category {
	return &domain.Category{
		ID:          d.ID,
		ClientID:    d.ClientID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (s *MongoStore) CreateCategory(ctx context.Context, c *domain.Category) error {
	if _, err := s.categories.InsertOne(ctx, categoryToDoc(c)); err != nil {
		return mongoWriteError("CreateCategory", "category", c.ID, err)
	}
	return nil
}

func (s *MongoStore) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var doc categoryDoc
	if err := s.getByID(ctx, s.categories, "GetCategory", "category", id, &doc); err != nil {
		return nil, err
	}
	return docToCategory(&doc), nil
}

func (s *MongoStore) GetCategoryBySlug(ctx context.Context, clientID, slug string) (*domain.Category, error) {
	var doc categoryDoc
	if err := s.getBySlug(ctx, s.categories, "GetCategoryBySlug", "category", clientID, slug, &doc); err != nil {
		return nil, err
	}
	return docToCategory(&doc), nil
}

func (s *MongoStore) UpdateCategory(ctx context.Context, c *domain.Category) error {
	return s.replaceByID(ctx, s.categories, "UpdateCategory", "category", c.ID, categoryToDoc(c))
}

func (s *MongoStore) DeleteCategory(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.categories, "DeleteCategory", "category", id)
}

func (s *MongoStore) ListCategories(ctx context.Context, clientID string, opts PageOptions) ([]domain.Category, int, error) {
	var categories []domain.Category
	total, err := s.list(ctx, s.categories, "ListCategories", "category", clientID, "name", opts, func(cursor *mongo.Cursor) error {
		var docs []categoryDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return err
		}
		categories = make([]domain.Category, 0, len(docs))
		for i := range docs {
			categories = append(categories, *docToCategory(&docs[i]))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// =============================================================================
// Organization Operations
// =============================================================================

type organizationDoc struct {
	ID          string    `bson:"_id"`
	ClientID    string    `bson:"client_id"`
	Name        string    `bson:"name"`
	Slug        string    `bson:"slug"`
	Description string    `bson:"description"`
	SiteTitle   string    `bson:"site_title"`
	TagLine     string    `bson:"tag_line"`
	Email       string    `bson:"email"`
	Phone       string    `bson:"phone"`
	MemberIDs   []string  `bson:"member_ids"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func organizationToDoc(o *domain.Organization) organizationDoc {
	memberIDs := o.MemberIDs
	if memberIDs == nil {
		memberIDs = []string{}
	}
	return organizationDoc{
		ID:          o.ID,
		ClientID:    o.ClientID,
		Name:        o.Name,
		Slug:        o.Slug,
		Description: o.Description,
		SiteTitle:   o.SiteTitle,
		TagLine:     o.TagLine,
		Email:       o.Email,
		Phone:       o.Phone,
		MemberIDs:   memberIDs,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func docToOrganization(d *organizationDoc) *domain.Organization {
	return &domain.Organization{
		ID:          d.ID,
		ClientID:    d.ClientID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		SiteTitle:   d.SiteTitle,
		TagLine:     d.TagLine,
		Email:       d.Email,
		Phone:       d.Phone,
		MemberIDs:   d.MemberIDs,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (s *MongoStore) CreateOrganization(ctx context.Context, o *domain.Organization) error {
	if _, err := s.organizations.InsertOne(ctx, organizationToDoc(o)); err != nil {
		return mongoWriteError("CreateOrganization", "organization", o.ID, err)
	}
	return nil
}

func (s *MongoStore) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	var doc organizationDoc
	if err := s.getByID(ctx, s.organizations, "GetOrganization", "organization", id, &doc); err != nil {
		return nil, err
	}
	return docToOrganization(&doc), nil
}

func (s *MongoStore) GetOrganizationBySlug(ctx context.Context, clientID, slug string) (*domain.Organization, error) {
	var doc organizationDoc
	if err := s.getBySlug(ctx, s.organizations, "GetOrganizationBySlug", "organization", clientID, slug, &doc); err != nil {
		return nil, err
	}
	return docToOrganization(&doc), nil
}

func (s *MongoStore) UpdateOrganization(ctx context.Context, o *domain.Organization) error {
	return s.replaceByID(ctx, s.organizations, "UpdateOrganization", "organization", o.ID, organizationToDoc(o))
}

func (s *MongoStore) DeleteOrganization(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.organizations, "DeleteOrganization", "organization", id)
}

func (s *MongoStore) ListOrganizations(ctx context.Context, clientID string, opts PageOptions) ([]domain.Organization, int, error) {
	var organizations []domain.Organization
	total, err := s.list(ctx, s.organizations, "ListOrganizations", "organization", clientID, "name", opts, func(cursor *mongo.Cursor) error {
		var docs []organizationDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return err
		}
		organizations = make([]domain.Organization, 0, len(docs))
		for i := range docs {
			organizations = append(organizations, *docToOrganization(&docs[i]))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return organizations, total, nil
}

// =============================================================================
// Media Operations
// =============================================================================

type mediaDoc struct {
	ID          string    `bson:"_id"`
	ClientID    string    `bson:"client_id"`
	Name        string    `bson:"name"`
	Slug        string    `bson:"slug"`
	Type        string    `bson:"type"`
	URL         string    `bson:"url"`
	FileSize    int64     `bson:"file_size"`
	Description string    `bson:"description"`
	UploadedBy  string    `bson:"uploaded_by"`
	PublishedAt time.Time `bson:"published_at"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func mediaToDoc(m *domain.Media) mediaDoc {
	return mediaDoc{
		ID:          m.ID,
		ClientID:    m.ClientID,
		Name:        m.Name,
		Slug:        m.Slug,
		Type:        m.Type,
		URL:         m.URL,
		FileSize:    m.FileSize,
		Description: m.Description,
		UploadedBy:  m.UploadedBy,
		PublishedAt: m.PublishedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func docToMedia(d *mediaDoc) *domain.Media {
	return &domain.Media{
		ID:          d.ID,
		ClientID:    d.ClientID,
		Name:        d.Name,
		Slug:        d.Slug,
		Type:        d.Type,
		URL:         d.URL,
		FileSize:    d.FileSize,
		Description: d.Description,
		UploadedBy:  d.UploadedBy,
		PublishedAt: d.PublishedAt.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (s *MongoStore) CreateMedia(ctx context.Context, m *domain.Media) error {
	if _, err := s.media.InsertOne(ctx, mediaToDoc(m)); err != nil {
		return mongoWriteError("CreateMedia", "media", m.ID, err)
	}
	return nil
}

func (s *MongoStore) GetMedia(ctx context.Context, id string) (*domain.Media, error) {
	var doc mediaDoc
	if err := s.getByID(ctx, s.media, "GetMedia", "media", id, &doc); err != nil {
		return nil, err
	}
	return docToMedia(&doc), nil
}

func (s *MongoStore) GetMediaBySlug(ctx context.Context, clientID, slug string) (*domain.Media, error) {
	var doc mediaDoc
	if err := s.getBySlug(ctx, s.media, "GetMediaBySlug", "media", clientID, slug, &doc); err != nil {
		return nil, err
	}
	return docToMedia(&doc), nil
}

func (s *MongoStore) UpdateMedia(ctx context.Context, m *domain.Media) error {
	return s.replaceByID(ctx, s.media, "UpdateMedia", "media", m.ID, mediaToDoc(m))
}

func (s *MongoStore) DeleteMedia(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.media, "DeleteMedia", "media", id)
}

func (s *MongoStore) ListMedia(ctx context.Context, clientID string, opts PageOptions) ([]domain.Media, int, error) {
	var media []domain.Media
	total, err := s.list(ctx, s.media, "ListMedia", "media", clientID, "name", opts, func(cursor *mongo.Cursor) error {
		var docs []mediaDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return err
		}
		media = make([]domain.Media, 0, len(docs))
		for i := range docs {
			media = append(media, *docToMedia(&docs[i]))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return media, total, nil
}

// =============================================================================
// DegaUser Operations
// =============================================================================

type degaUserDoc struct {
	ID                    string    `bson:"_id"`
	ClientID              string    `bson:"client_id"`
	FirstName             string    `bson:"first_name"`
	LastName              string    `bson:"last_name"`
	DisplayName           string    `bson:"display_name"`
	Email                 string    `bson:"email"`
	Slug                  string    `bson:"slug"`
	Website               string    `bson:"website"`
	FacebookURL           string    `bson:"facebook_url"`
	TwitterURL            string    `bson:"twitter_url"`
	InstagramURL          string    `bson:"instagram_url"`
	LinkedinURL           string    `bson:"linkedin_url"`
	GithubURL             string    `bson:"github_url"`
	ProfilePicture        string    `bson:"profile_picture"`
	Description           string    `bson:"description"`
	IsActive              bool      `bson:"is_active"`
	OrganizationIDs       []string  `bson:"organization_ids"`
	OrganizationDefaultID string    `bson:"organization_default_id"`
	CreatedAt             time.Time `bson:"created_at"`
	UpdatedAt             time.Time `bson:"updated_at"`
}

func degaUserToDoc(u *domain.DegaUser) degaUserDoc {
	orgIDs := u.OrganizationIDs
	if orgIDs == nil {
		orgIDs = []string{}
	}
	return degaUserDoc{
		ID:                    u.ID,
		ClientID:              u.ClientID,
		FirstName:             u.FirstName,
		LastName:              u.LastName,
		DisplayName:           u.DisplayName,
		Email:                 u.Email,
		Slug:                  u.Slug,
		Website:               u.Website,
		FacebookURL:           u.FacebookURL,
		TwitterURL:            u.TwitterURL,
		InstagramURL:          u.InstagramURL,
		LinkedinURL:           u.LinkedinURL,
		GithubURL:             u.GithubURL,
		ProfilePicture:        u.ProfilePicture,
		Description:           u.Description,
		IsActive:              u.IsActive,
		OrganizationIDs:       orgIDs,
		OrganizationDefaultID: u.OrganizationDefaultID,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

func docToDegaUser(d *degaUserDoc) *domain.DegaUser {
	return &domain.DegaUser{
		ID:                    d.ID,
		ClientID:              d.ClientID,
		FirstName:             d.FirstName,
		LastName:              d.LastName,
		DisplayName:           d.DisplayName,
		Email:                 d.Email,
		Slug:                  d.Slug,
		Website:               d.Website,
		FacebookURL:           d.FacebookURL,
		TwitterURL:            d.TwitterURL,
		InstagramURL:          d.InstagramURL,
		LinkedinURL:           d.LinkedinURL,
		GithubURL:             d.GithubURL,
		ProfilePicture:        d.ProfilePicture,
		Description:           d.Description,
		IsActive:              d.IsActive,
		OrganizationIDs:       d.OrganizationIDs,
		OrganizationDefaultID: d.OrganizationDefaultID,
		CreatedAt:             d.CreatedAt.UTC(),
		UpdatedAt:             d.UpdatedAt.UTC(),
	}
}

func (s *MongoStore) CreateDegaUser(ctx context.Context, u *domain.DegaUser) error {
	if _, err := s.users.InsertOne(ctx, degaUserToDoc(u)); err != nil {
		return mongoWriteError("CreateDegaUser", "degauser", u.ID, err)
	}
	return nil
}

func (s *MongoStore) GetDegaUser(ctx context.Context, id string) (*domain.DegaUser, error) {
	var doc degaUserDoc
	if err := s.getByID(ctx, s.users, "GetDegaUser", "degauser", id, &doc); err != nil {
		return nil, err
	}
	return docToDegaUser(&doc), nil
}

func (s *MongoStore) GetDegaUserBySlug(ctx context.Context, clientID, slug string) (*domain.DegaUser, error) {
	var doc degaUserDoc
	if err := s.getBySlug(ctx, s.users, "GetDegaUserBySlug", "degauser", clientID, slug, &doc); err != nil {
		return nil, err
	}
	return docToDegaUser(&doc), nil
}

func (s *MongoStore) UpdateDegaUser(ctx context.Context, u *domain.DegaUser) error {
	return s.replaceByID(ctx, s.users, "UpdateDegaUser", "degauser", u.ID, degaUserToDoc(u))
}

func (s *MongoStore) DeleteDegaUser(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.users, "DeleteDegaUser", "degauser", id)
}

func (s *MongoStore) ListDegaUsers(ctx context.Context, clientID string, opts PageOptions) ([]domain.DegaUser, int, error) {
	var users []domain.DegaUser
	total, err := s.list(ctx, s.users, "ListDegaUsers", "degauser", clientID, "display_name", opts, func(cursor *mongo.Cursor) error {
		var docs []degaUserDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return err
		}
		users = make([]domain.DegaUser, 0, len(docs))
		for i := range docs {
			users = append(users, *docToDegaUser(&docs[i]))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
