package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-vote-go/models"
)

// MemoryStore is the in-process test double. A single mutex covers every
// operation, which trivially gives the same atomicity the Mongo store gets
// from constraints and conditional updates.
type MemoryStore struct {
	mu            sync.Mutex
	admins        map[primitive.ObjectID]models.Admin
	users         map[primitive.ObjectID]models.User
	events        map[primitive.ObjectID]models.Event
	registrations map[primitive.ObjectID]models.Registration
	images        map[primitive.ObjectID]models.Image
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		admins:        make(map[primitive.ObjectID]models.Admin),
		users:         make(map[primitive.ObjectID]models.User),
		events:        make(map[primitive.ObjectID]models.Event),
		registrations: make(map[primitive.ObjectID]models.Registration),
		images:        make(map[primitive.ObjectID]models.Image),
	}
}

func (s *MemoryStore) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Email == admin.Email {
			return ErrDuplicate
		}
	}
	s.admins[admin.ID] = *admin
	return nil
}

func (s *MemoryStore) GetAdmin(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin, ok := s.admins[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &admin, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateEvent(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = *event
	return nil
}

func (s *MemoryStore) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &event, nil
}

func (s *MemoryStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	return events, nil
}

func (s *MemoryStore) UpdateEvent(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.events[event.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = event.Name
	existing.Description = event.Description
	existing.Price = event.Price
	existing.Image = event.Image
	existing.UpdatedAt = time.Now()
	s.events[event.ID] = existing
	return nil
}

func (s *MemoryStore) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *MemoryStore) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.registrations {
		if r.UserID == reg.UserID && r.EventID == reg.EventID {
			return ErrDuplicate
		}
	}
	s.registrations[reg.ID] = *reg
	return nil
}

func (s *MemoryStore) GetRegistration(ctx context.Context, userID, eventID primitive.ObjectID) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.registrations {
		if r.UserID == userID && r.EventID == eventID {
			reg := r
			return &reg, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListRegistrationsByStatus(ctx context.Context, status string) ([]models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var regs []models.Registration
	for _, r := range s.registrations {
		if r.PaymentStatus == status {
			regs = append(regs, r)
		}
	}
	return regs, nil
}

func (s *MemoryStore) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok {
		return ErrNotFound
	}
	reg.PaymentStatus = status
	reg.UpdatedAt = time.Now()
	s.registrations[id] = reg
	return nil
}

func (s *MemoryStore) AddImage(ctx context.Context, img *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.registrations {
		if r.UserID == img.UserID && r.EventID == img.EventID {
			if r.ImageCount >= MaxImagesPerRegistration {
				return ErrQuotaExceeded
			}
			r.ImageCount++
			r.UpdatedAt = time.Now()
			s.registrations[id] = r
			s.images[img.ID] = *img
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) GetImage(ctx context.Context, id primitive.ObjectID) (*models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[id]
	if !ok {
		return nil, ErrNotFound
	}
	img.VoteRecord = append([]primitive.ObjectID(nil), img.VoteRecord...)
	return &img, nil
}

func (s *MemoryStore) ListEventImages(ctx context.Context, eventID primitive.ObjectID) ([]models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventImagesLocked(eventID), nil
}

func (s *MemoryStore) AddVote(ctx context.Context, imageID, voterID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[imageID]
	if !ok {
		return ErrNotFound
	}
	for _, v := range img.VoteRecord {
		if v == voterID {
			return ErrAlreadyVoted
		}
	}
	img.VoteRecord = append(append([]primitive.ObjectID(nil), img.VoteRecord...), voterID)
	img.Votes++
	s.images[imageID] = img
	return nil
}

func (s *MemoryStore) Leaderboard(ctx context.Context, eventID primitive.ObjectID, descending bool) ([]models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	images := s.eventImagesLocked(eventID)
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].Votes != images[j].Votes {
			if descending {
				return images[i].Votes > images[j].Votes
			}
			return images[i].Votes < images[j].Votes
		}
		return images[i].CreatedAt.Before(images[j].CreatedAt)
	})
	return images, nil
}

func (s *MemoryStore) eventImagesLocked(eventID primitive.ObjectID) []models.Image {
	images := make([]models.Image, 0)
	for _, img := range s.images {
		if img.EventID == eventID {
			img.VoteRecord = append([]primitive.ObjectID(nil), img.VoteRecord...)
			images = append(images, img)
		}
	}
	sort.Slice(images, func(i, j int) bool { return images[i].CreatedAt.Before(images[j].CreatedAt) })
	return images
}
