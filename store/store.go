package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-vote-go/models"
)

// Error kinds controllers translate into HTTP responses. Anything else
// coming out of a Store is an internal failure.
var (
	ErrNotFound      = errors.New("store: not found")
	ErrDuplicate     = errors.New("store: duplicate")
	ErrQuotaExceeded = errors.New("store: image quota exceeded")
	ErrAlreadyVoted  = errors.New("store: already voted")
)

// MaxImagesPerRegistration is the upload quota per user per event.
const MaxImagesPerRegistration = 3

// Store is the persistence gateway. The uniqueness and counter rules below
// must hold under concurrent callers, so implementations enforce them with
// constraints and conditional writes, never read-then-write.
type Store interface {
	// Admins. CreateAdmin returns ErrDuplicate on an email clash.
	CreateAdmin(ctx context.Context, admin *models.Admin) error
	GetAdmin(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)

	// Users. CreateUser returns ErrDuplicate on an email clash.
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Events.
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error

	// Registrations. CreateRegistration returns ErrDuplicate when the
	// (user_id, event_id) pair already exists.
	CreateRegistration(ctx context.Context, reg *models.Registration) error
	GetRegistration(ctx context.Context, userID, eventID primitive.ObjectID) (*models.Registration, error)
	ListRegistrationsByStatus(ctx context.Context, status string) ([]models.Registration, error)
	SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status string) error

	// AddImage creates the image and bumps the owning registration's
	// imagecount in one atomic step. Returns ErrNotFound when the owner is
	// not registered for the event, ErrQuotaExceeded at the image limit.
	AddImage(ctx context.Context, img *models.Image) error
	GetImage(ctx context.Context, id primitive.ObjectID) (*models.Image, error)
	ListEventImages(ctx context.Context, eventID primitive.ObjectID) ([]models.Image, error)

	// AddVote appends voterID to the image's voterecord and increments votes
	// as a single compare-and-append. Returns ErrAlreadyVoted when the voter
	// is already recorded, ErrNotFound when the image does not exist.
	AddVote(ctx context.Context, imageID, voterID primitive.ObjectID) error

	// Leaderboard returns the event's images ordered by vote count,
	// ascending unless descending is set, ties broken by creation time.
	Leaderboard(ctx context.Context, eventID primitive.ObjectID, descending bool) ([]models.Image, error)
}
