package services

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/fintrack/backend/src/intake"
)

// FormStore keeps each user's in-progress intake form between requests.
// Drafts expire after ttl of inactivity.
type FormStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewFormStore(ttl time.Duration) *FormStore {
	return &FormStore{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func formKey(userID int64) string {
	return "form:" + strconv.FormatInt(userID, 10)
}

// Get returns the user's draft, or a fresh form if there is none.
func (s *FormStore) Get(userID int64) intake.FormState {
	if v, found := s.cache.Get(formKey(userID)); found {
		if form, ok := v.(intake.FormState); ok {
			return form
		}
	}
	return intake.NewFormState()
}

// Save replaces the user's draft. Unset selectors take their defaults.
func (s *FormStore) Save(userID int64, form intake.FormState) (intake.FormState, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return intake.FormState{}, err
	}
	s.cache.Set(formKey(userID), form, s.ttl)
	return form, nil
}

// Reset drops the user's draft.
func (s *FormStore) Reset(userID int64) {
	s.cache.Delete(formKey(userID))
}
