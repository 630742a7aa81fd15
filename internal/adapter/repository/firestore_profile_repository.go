package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type firestoreProfileRepository struct {
	client *firestore.Client
}

func NewFirestoreProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &firestoreProfileRepository{
		client: client,
	}
}

func (r *firestoreProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.client.Collection(profilesCollection).Doc(profile.ID).Create(ctx, profile)
	if err != nil {
		if isAlreadyExists(err) {
			return errors.Conflict("Profile already exists")
		}
		return errors.Internal("Failed to create profile", err)
	}

	return nil
}

func (r *firestoreProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	doc, err := r.client.Collection(profilesCollection).Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get profile", err)
	}

	var profile entity.Profile
	if err := doc.DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse profile data", err)
	}

	return &profile, nil
}

func (r *firestoreProfileRepository) GetByUsername(ctx context.Context, username string) (*entity.Profile, error) {
	iter := r.client.Collection(profilesCollection).Where("username", "==", username).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("User", nil)
		}
		return nil, errors.Internal("Failed to query profile", err)
	}

	var profile entity.Profile
	if err := doc.DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse profile data", err)
	}

	return &profile, nil
}

func (r *firestoreProfileRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Profile, error) {
	ids = uniqueIDs(ids)
	result := make(map[string]*entity.Profile, len(ids))

	for i := 0; i < len(ids); i += getAllBatchSize {
		end := i + getAllBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		refs := make([]*firestore.DocumentRef, 0, end-i)
		for _, id := range ids[i:end] {
			refs = append(refs, r.client.Collection(profilesCollection).Doc(id))
		}

		docs, err := r.client.GetAll(ctx, refs)
		if err != nil {
			return nil, errors.Internal("Failed to get profiles", err)
		}

		profiles, err := decodeAll[entity.Profile](docs)
		if err != nil {
			return nil, errors.Internal("Failed to parse profile data", err)
		}
		for _, p := range profiles {
			result[p.ID] = p
		}
	}

	return result, nil
}

func (r *firestoreProfileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	profile.UpdatedAt = time.Now()

	_, err := r.client.Collection(profilesCollection).Doc(profile.ID).Set(ctx, profile)
	if err != nil {
		return errors.Internal("Failed to update profile", err)
	}

	return nil
}

func (r *firestoreProfileRepository) CreateVerificationRequest(ctx context.Context, request *entity.VerificationRequest) error {
	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	request.CreatedAt = time.Now()

	requestRef := r.client.Collection(verificationRequestsCollection).Doc(request.ID)
	profileRef := r.client.Collection(profilesCollection).Doc(request.UserID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(profileRef); err != nil {
			return err
		}
		if err := tx.Create(requestRef, request); err != nil {
			return err
		}
		return tx.Update(profileRef, []firestore.Update{
			{Path: "verificationStatus", Value: entity.IdentityPending},
			{Path: "updatedAt", Value: request.CreatedAt},
		})
	})
	if err != nil {
		if IsNotFound(err) {
			return errors.NotFound("User", err)
		}
		return errors.Internal("Failed to create verification request", err)
	}

	return nil
}
