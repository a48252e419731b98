package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/google/uuid"
)

// FindCategory looks a category up by id, unique id prefix, or exact name.
func (s *State) FindCategory(ref string) (model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, err := s.categoryIndex(ref)
	if err != nil {
		return model.Category{}, err
	}
	return s.categories[i], nil
}

// categoryIndex resolves ref; callers hold mu.
func (s *State) categoryIndex(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, fmt.Errorf("%w: empty category reference", common.ErrInvalidCategory)
	}

	for i, c := range s.categories {
		if c.ID == ref {
			return i, nil
		}
	}
	for i, c := range s.categories {
		if c.Name == ref {
			return i, nil
		}
	}

	match := -1
	for i, c := range s.categories {
		if strings.HasPrefix(c.ID, ref) {
			if match >= 0 {
				return -1, fmt.Errorf("category id prefix %q is ambiguous", ref)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("category %q: %w", ref, common.ErrNotFound)
	}
	return match, nil
}

// AddCategory appends a category. It is consulted after every existing one,
// since resolution is first match in order.
func (s *State) AddCategory(ctx context.Context, c model.Category) (model.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Color = model.ParseColor(string(c.Color))
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := c.Validate(); err != nil {
		return model.Category{}, err
	}

	s.mu.Lock()
	for _, existing := range s.categories {
		if existing.ID == c.ID {
			s.mu.Unlock()
			return model.Category{}, fmt.Errorf("%w: duplicate id %s", common.ErrInvalidCategory, c.ID)
		}
	}
	s.categories = append(s.categories, c)
	s.persistCategories(ctx)
	s.mu.Unlock()

	s.emit(Event{Kind: EventCategoriesChanged, Count: 1})
	return c, nil
}

// UpdateCategory replaces the category with c.ID. Expenses keep the name they
// were recorded with.
func (s *State) UpdateCategory(ctx context.Context, c model.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Color = model.ParseColor(string(c.Color))
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	i := -1
	for j, existing := range s.categories {
		if existing.ID == c.ID {
			i = j
			break
		}
	}
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("category %s: %w", c.ID, common.ErrNotFound)
	}
	s.categories[i] = c
	s.persistCategories(ctx)
	s.mu.Unlock()

	s.emit(Event{Kind: EventCategoriesChanged, Count: 1})
	return nil
}

// DeleteCategory removes a category. Expenses recorded under its name are
// left as they are.
func (s *State) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	i := -1
	for j, c := range s.categories {
		if c.ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}
	s.categories = append(s.categories[:i], s.categories[i+1:]...)
	s.persistCategories(ctx)
	s.mu.Unlock()

	s.emit(Event{Kind: EventCategoriesChanged, Count: 1})
	return nil
}

// MoveCategory moves the category with id to position to, clamped to the
// list bounds.
func (s *State) MoveCategory(ctx context.Context, id string, to int) error {
	s.mu.Lock()
	from := -1
	for j, c := range s.categories {
		if c.ID == id {
			from = j
			break
		}
	}
	if from < 0 {
		s.mu.Unlock()
		return fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}

	to = min(max(to, 0), len(s.categories)-1)
	if to != from {
		c := s.categories[from]
		s.categories = append(s.categories[:from], s.categories[from+1:]...)
		s.categories = append(s.categories[:to], append([]model.Category{c}, s.categories[to:]...)...)
		s.persistCategories(ctx)
	}
	s.mu.Unlock()

	if to != from {
		s.emit(Event{Kind: EventCategoriesChanged, Count: 1})
	}
	return nil
}
