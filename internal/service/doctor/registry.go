package doctor

import (
	"errors"
	"fmt"

	"github.com/jwalitptl/popdoc-api/internal/model"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrDuplicateID    = errors.New("duplicate doctor id")
)

// Registry is a read-only lookup of doctor personas
type Registry interface {
	Get(id string) (model.Doctor, bool)
	List() []model.Doctor
}

type registry struct {
	doctors []model.Doctor
	byID    map[string]int
}

// NewRegistry builds a registry over the given personas. Ids must be unique and non-empty.
func NewRegistry(doctors []model.Doctor) (Registry, error) {
	r := &registry{
		doctors: make([]model.Doctor, len(doctors)),
		byID:    make(map[string]int, len(doctors)),
	}
	copy(r.doctors, doctors)

	for i, d := range r.doctors {
		if d.ID == "" {
			return nil, fmt.Errorf("doctor at position %d has no id", i)
		}
		if _, exists := r.byID[d.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
		}
		r.byID[d.ID] = i
	}
	return r, nil
}

// Default returns the built-in persona registry
func Default() Registry {
	r, err := NewRegistry(builtin)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *registry) Get(id string) (model.Doctor, bool) {
	i, ok := r.byID[id]
	if !ok {
		return model.Doctor{}, false
	}
	return r.doctors[i], true
}

func (r *registry) List() []model.Doctor {
	out := make([]model.Doctor, len(r.doctors))
	copy(out, r.doctors)
	return out
}
