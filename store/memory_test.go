package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-vote-go/models"
)

func seedRegistration(t *testing.T, s *MemoryStore) (userID, eventID primitive.ObjectID) {
	t.Helper()
	userID = primitive.NewObjectID()
	eventID = primitive.NewObjectID()
	err := s.CreateRegistration(context.Background(), &models.Registration{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		EventID:       eventID,
		PaymentStatus: "PENDING",
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)
	return userID, eventID
}

func TestCreateRegistrationRejectsDuplicatePair(t *testing.T) {
	s := NewMemoryStore()
	userID, eventID := seedRegistration(t, s)

	err := s.CreateRegistration(context.Background(), &models.Registration{
		ID:      primitive.NewObjectID(),
		UserID:  userID,
		EventID: eventID,
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	// Same user, different event is fine.
	err = s.CreateRegistration(context.Background(), &models.Registration{
		ID:      primitive.NewObjectID(),
		UserID:  userID,
		EventID: primitive.NewObjectID(),
	})
	assert.NoError(t, err)
}

func TestConcurrentRegistrationOnlyOneSucceeds(t *testing.T) {
	s := NewMemoryStore()
	userID := primitive.NewObjectID()
	eventID := primitive.NewObjectID()

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.CreateRegistration(context.Background(), &models.Registration{
				ID:      primitive.NewObjectID(),
				UserID:  userID,
				EventID: eventID,
			})
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrDuplicate)
		}
	}
	assert.Equal(t, 1, successes)
}

func TestAddImageEnforcesQuota(t *testing.T) {
	s := NewMemoryStore()
	userID, eventID := seedRegistration(t, s)

	for i := 0; i < MaxImagesPerRegistration; i++ {
		err := s.AddImage(context.Background(), &models.Image{
			ID: primitive.NewObjectID(), UserID: userID, EventID: eventID, CreatedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	err := s.AddImage(context.Background(), &models.Image{
		ID: primitive.NewObjectID(), UserID: userID, EventID: eventID,
	})
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	reg, err := s.GetRegistration(context.Background(), userID, eventID)
	require.NoError(t, err)
	assert.Equal(t, MaxImagesPerRegistration, reg.ImageCount)
}

func TestAddImageQuotaUnderConcurrency(t *testing.T) {
	s := NewMemoryStore()
	userID, eventID := seedRegistration(t, s)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.AddImage(context.Background(), &models.Image{
				ID: primitive.NewObjectID(), UserID: userID, EventID: eventID,
			})
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, MaxImagesPerRegistration, successes)

	reg, err := s.GetRegistration(context.Background(), userID, eventID)
	require.NoError(t, err)
	assert.Equal(t, MaxImagesPerRegistration, reg.ImageCount)
}

func TestAddImageWithoutRegistration(t *testing.T) {
	s := NewMemoryStore()
	err := s.AddImage(context.Background(), &models.Image{
		ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), EventID: primitive.NewObjectID(),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddVoteRecordsEachVoterOnce(t *testing.T) {
	s := NewMemoryStore()
	userID, eventID := seedRegistration(t, s)

	img := &models.Image{ID: primitive.NewObjectID(), UserID: userID, EventID: eventID, CreatedAt: time.Now()}
	require.NoError(t, s.AddImage(context.Background(), img))

	voterID := primitive.NewObjectID()
	require.NoError(t, s.AddVote(context.Background(), img.ID, voterID))
	assert.ErrorIs(t, s.AddVote(context.Background(), img.ID, voterID), ErrAlreadyVoted)

	got, err := s.GetImage(context.Background(), img.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Votes)
	assert.Equal(t, []primitive.ObjectID{voterID}, got.VoteRecord)
}

func TestConcurrentVotesBySameUserCountOnce(t *testing.T) {
	s := NewMemoryStore()
	userID, eventID := seedRegistration(t, s)

	img := &models.Image{ID: primitive.NewObjectID(), UserID: userID, EventID: eventID, CreatedAt: time.Now()}
	require.NoError(t, s.AddImage(context.Background(), img))

	voterID := primitive.NewObjectID()
	const attempts = 20
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddVote(context.Background(), img.ID, voterID)
		}()
	}
	wg.Wait()

	got, err := s.GetImage(context.Background(), img.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Votes)
	assert.Len(t, got.VoteRecord, 1)
}

func TestAddVoteMissingImage(t *testing.T) {
	s := NewMemoryStore()
	err := s.AddVote(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeaderboardOrdering(t *testing.T) {
	s := NewMemoryStore()
	eventID := primitive.NewObjectID()

	base := time.Now()
	mkImage := func(votes int, createdAt time.Time) primitive.ObjectID {
		userID := primitive.NewObjectID()
		require.NoError(t, s.CreateRegistration(context.Background(), &models.Registration{
			ID: primitive.NewObjectID(), UserID: userID, EventID: eventID,
		}))
		img := &models.Image{ID: primitive.NewObjectID(), UserID: userID, EventID: eventID, CreatedAt: createdAt}
		require.NoError(t, s.AddImage(context.Background(), img))
		for i := 0; i < votes; i++ {
			require.NoError(t, s.AddVote(context.Background(), img.ID, primitive.NewObjectID()))
		}
		return img.ID
	}

	first := mkImage(2, base)
	second := mkImage(0, base.Add(time.Second))
	third := mkImage(2, base.Add(2*time.Second)) // tied with first, created later
	fourth := mkImage(5, base.Add(3*time.Second))

	asc, err := s.Leaderboard(context.Background(), eventID, false)
	require.NoError(t, err)
	require.Len(t, asc, 4)
	assert.Equal(t, []primitive.ObjectID{second, first, third, fourth},
		[]primitive.ObjectID{asc[0].ID, asc[1].ID, asc[2].ID, asc[3].ID})

	desc, err := s.Leaderboard(context.Background(), eventID, true)
	require.NoError(t, err)
	require.Len(t, desc, 4)
	assert.Equal(t, []primitive.ObjectID{fourth, first, third, second},
		[]primitive.ObjectID{desc[0].ID, desc[1].ID, desc[2].ID, desc[3].ID})
}
