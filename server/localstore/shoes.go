package localstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/stridelog/stridelog/server/store"
)

func normalizeShoe(shoe store.Shoe) store.Shoe {
	shoe.Name = strings.TrimSpace(shoe.Name)
	if shoe.Miles < 0 {
		shoe.Miles = 0
	}
	shoe.Miles = store.Round1(shoe.Miles)
	return shoe
}

func (s *Store) GetShoe(_ context.Context, shoeID string) (*store.Shoe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, shoe := range read[[]store.Shoe](s, nsShoes) {
		if shoe.ID == shoeID {
			shoe = normalizeShoe(shoe)
			return &shoe, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetShoes(_ context.Context, userID string) ([]store.Shoe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var shoes []store.Shoe
	for _, shoe := range read[[]store.Shoe](s, nsShoes) {
		if shoe.UserID == userID {
			shoes = append(shoes, normalizeShoe(shoe))
		}
	}
	slices.SortFunc(shoes, func(a, b store.Shoe) int {
		return strings.Compare(a.Name, b.Name)
	})
	return shoes, nil
}

func (s *Store) AddShoe(_ context.Context, shoe store.Shoe) (*store.Shoe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shoe, err := store.ValidateShoe(shoe)
	if err != nil {
		return nil, err
	}

	shoe.ID = newID()
	shoe.Active = true
	shoe.CreatedAt = time.Now()
	shoe.UpdatedAt = shoe.CreatedAt

	write(s, nsShoes, append(read[[]store.Shoe](s, nsShoes), shoe))
	return &shoe, nil
}

func (s *Store) UpdateShoe(_ context.Context, shoeID string, name string, milesLimit float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return &store.ValidationError{Message: "Shoe name is required"}
	}
	if milesLimit < 0 {
		return &store.ValidationError{Message: "Mileage limit must not be negative"}
	}

	shoes := read[[]store.Shoe](s, nsShoes)
	idx := slices.IndexFunc(shoes, func(shoe store.Shoe) bool {
		return shoe.ID == shoeID
	})
	if idx < 0 {
		return store.ErrNotFound
	}

	shoes[idx].Name = name
	shoes[idx].MilesLimit = milesLimit
	shoes[idx].UpdatedAt = time.Now()
	write(s, nsShoes, shoes)
	return nil
}

// SetShoeActive toggles retirement. It never touches mileage.
func (s *Store) SetShoeActive(_ context.Context, shoeID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shoes := read[[]store.Shoe](s, nsShoes)
	idx := slices.IndexFunc(shoes, func(shoe store.Shoe) bool {
		return shoe.ID == shoeID
	})
	if idx < 0 {
		return store.ErrNotFound
	}

	shoes[idx].Active = active
	shoes[idx].UpdatedAt = time.Now()
	write(s, nsShoes, shoes)
	return nil
}

func (s *Store) AddMilesToShoe(_ context.Context, shoeID string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addMilesLocked(shoeID, delta)
	return nil
}

// addMilesLocked applies a signed mileage delta with the store lock held.
// A missing shoe drops the delta silently; the ledger is advisory.
func (s *Store) addMilesLocked(shoeID string, delta float64) {
	shoes := read[[]store.Shoe](s, nsShoes)
	idx := slices.IndexFunc(shoes, func(shoe store.Shoe) bool {
		return shoe.ID == shoeID
	})
	if idx < 0 {
		return
	}

	miles := store.Round1(shoes[idx].Miles + delta)
	if miles < 0 {
		miles = 0
	}
	shoes[idx].Miles = miles
	shoes[idx].UpdatedAt = time.Now()
	write(s, nsShoes, shoes)
}
