package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const profilesCollection = "providerProfiles"

// firestoreOffering maps to one element of the services array.
type firestoreOffering struct {
	ID          string  `firestore:"id"`
	Name        string  `firestore:"name"`
	Category    string  `firestore:"category"`
	Price       float64 `firestore:"price"`
	PriceType   string  `firestore:"price_type"`
	Description string  `firestore:"description"`
	IsCustom    bool    `firestore:"is_custom"`
}

type firestoreDay struct {
	IsClosed bool   `firestore:"is_closed"`
	Start    string `firestore:"start,omitempty"`
	End      string `firestore:"end,omitempty"`
}

type firestoreComplete struct {
	BusinessAddress   string `firestore:"business_address"`
	Town              string `firestore:"town"`
	YearsOfExperience string `firestore:"years_of_experience"`
	Description       string `firestore:"description"`
}

// firestoreProfile maps to Firestore document structure.
type firestoreProfile struct {
	Name           string                  `firestore:"name"`
	Email          string                  `firestore:"email"`
	Phone          string                  `firestore:"phone"`
	Complete       firestoreComplete       `firestore:"complete_profile"`
	Services       []firestoreOffering     `firestore:"services"`
	OperatingHours map[string]firestoreDay `firestore:"operating_hours"`
	SocialLinks    map[string]string       `firestore:"social_links"`
	Images         []string                `firestore:"images"`
	PasswordHash   string                  `firestore:"password_hash"`
	CreatedAt      time.Time               `firestore:"created_at"`
	UpdatedAt      time.Time               `firestore:"updated_at"`
}

func toFirestore(p *Profile) firestoreProfile {
	fp := firestoreProfile{
		Name:           p.Name,
		Email:          p.Email,
		Phone:          p.Phone,
		Complete:       firestoreComplete(p.Complete),
		Services:       make([]firestoreOffering, 0, len(p.Services)),
		OperatingHours: make(map[string]firestoreDay, len(p.OperatingHours)),
		SocialLinks:    p.SocialLinks,
		Images:         p.Images,
		PasswordHash:   p.PasswordHash,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for _, o := range p.Services {
		fp.Services = append(fp.Services, firestoreOffering(o))
	}
	for day, h := range p.OperatingHours {
		fp.OperatingHours[day] = firestoreDay(h)
	}
	return fp
}

func fromFirestore(userID string, fp firestoreProfile) *Profile {
	p := &Profile{
		ID:             userID,
		Name:           fp.Name,
		Email:          fp.Email,
		Phone:          fp.Phone,
		Complete:       Complete(fp.Complete),
		Services:       make([]Offering, 0, len(fp.Services)),
		OperatingHours: make(map[string]Day, len(fp.OperatingHours)),
		SocialLinks:    fp.SocialLinks,
		Images:         fp.Images,
		PasswordHash:   fp.PasswordHash,
		CreatedAt:      fp.CreatedAt,
		UpdatedAt:      fp.UpdatedAt,
	}
	for _, o := range fp.Services {
		p.Services = append(p.Services, Offering(o))
	}
	for day, h := range fp.OperatingHours {
		p.OperatingHours[day] = Day(h)
	}
	return p.clone()
}

// FirestoreStore implements Service using Firestore with transactions.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Ping reads at most one document to check that Firestore answers.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(profilesCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("querying %s: %w", profilesCollection, err)
	}
	return nil
}

// Create registers a new profile using a transaction to prevent duplicates.
func (s *FirestoreStore) Create(ctx context.Context, userID string, params CreateParams) (*Profile, error) {
	docRef := s.client.Collection(profilesCollection).Doc(userID)

	var result *Profile

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err == nil && doc.Exists() {
			return ErrAlreadyExists
		}
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		p, err := newProfile(userID, params, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := tx.Set(docRef, toFirestore(p)); err != nil {
			return err
		}
		result = p
		return nil
	})
	audit(ctx, "create", userID, "profile", userID, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get retrieves a profile by user ID.
func (s *FirestoreStore) Get(ctx context.Context, userID string) (*Profile, error) {
	doc, err := s.client.Collection(profilesCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var fp firestoreProfile
	if err := doc.DataTo(&fp); err != nil {
		return nil, err
	}
	return fromFirestore(userID, fp), nil
}

// Update replaces the editable sections in a single transaction.
func (s *FirestoreStore) Update(ctx context.Context, userID string, params UpdateParams) (*Profile, error) {
	result, err := s.mutate(ctx, userID, func(p *Profile) error {
		return applyUpdate(p, params, time.Now().UTC())
	})
	audit(ctx, "update", userID, "profile", userID, err)
	return result, err
}

// VerifyPassword checks password against the stored hash.
func (s *FirestoreStore) VerifyPassword(ctx context.Context, userID, email, password string) error {
	p, err := s.Get(ctx, userID)
	if err == nil {
		err = checkPassword(p, email, password)
	}
	audit(ctx, "verify_password", userID, "profile", userID, err)
	return err
}

// DeleteService removes one offering by ID.
func (s *FirestoreStore) DeleteService(ctx context.Context, userID, serviceID string) error {
	_, err := s.mutate(ctx, userID, func(p *Profile) error {
		return removeOffering(p, serviceID)
	})
	audit(ctx, "delete", userID, "service", serviceID, err)
	return err
}

// AddImage appends path to the gallery.
func (s *FirestoreStore) AddImage(ctx context.Context, userID, path string) (*Profile, error) {
	result, err := s.mutate(ctx, userID, func(p *Profile) error {
		p.Images = uniqueStrings(append(p.Images, path))
		return nil
	})
	audit(ctx, "create", userID, "image", path, err)
	return result, err
}

// RemoveImage drops path from the gallery.
func (s *FirestoreStore) RemoveImage(ctx context.Context, userID, path string) (*Profile, error) {
	result, err := s.mutate(ctx, userID, func(p *Profile) error {
		return removeImagePath(p, path)
	})
	audit(ctx, "delete", userID, "image", path, err)
	return result, err
}

// mutate reads, modifies and writes the profile inside one transaction.
func (s *FirestoreStore) mutate(ctx context.Context, userID string, fn func(*Profile) error) (*Profile, error) {
	docRef := s.client.Collection(profilesCollection).Doc(userID)

	var result *Profile

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}

		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return err
		}

		p := fromFirestore(userID, fp)
		if err := fn(p); err != nil {
			return err
		}
		p.UpdatedAt = time.Now().UTC()

		if err := tx.Set(docRef, toFirestore(p)); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result.clone(), nil
}

// Compile-time interface check
var _ Service = (*FirestoreStore)(nil)
