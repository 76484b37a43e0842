package wizard

import (
	"sync"

	"catalog-bot/internal/models"
	"catalog-bot/internal/util"
)

// Session is one operator's in-flight wizard progress. It is owned
// exclusively by the engine, lives only in memory, and is destroyed on
// completion, cancellation, or when an unrelated script is started.
type Session struct {
	Identity int64
	Step     Step

	// Target selectors accumulated along the way.
	Catalog      int
	ProductID    string
	VariantIndex int

	// Choices maps the numbered list most recently shown to the
	// operator back to product ids, so selection is resolved to a
	// stable id immediately and display names are never carried.
	Choices []string

	// VariantCount bounds the variant selection list.
	VariantCount int

	// Draft holds whatever entity is under construction.
	Draft *ProductDraft

	// PendingRole is the role kind chosen in the role-assignment script.
	PendingRole models.Role
}

// ProductDraft accumulates add-product input, plus the pending variant
// fields shared with the edit-product variant sub-flow
type ProductDraft struct {
	Name        string
	Description string
	Image       string
	Variants    []models.Variant

	VarType  string
	VarPrice float64
}

// Sessions stores in-flight sessions keyed by operator identity and
// serializes event handling per identity: two inputs from the same
// operator never interleave two transitions of the same session.
//
// Sessions carry no TTL; an abandoned session stays until process
// restart.
type Sessions struct {
	mu    sync.Mutex
	slots map[int64]*sessionSlot
}

type sessionSlot struct {
	mu   sync.Mutex
	sess *Session
}

// NewSessions creates an empty session store
func NewSessions() *Sessions {
	return &Sessions{slots: make(map[int64]*sessionSlot)}
}

// Acquire locks the identity's slot and returns the unlock function.
// Callers hold the lock for the whole handling of one inbound event.
func (s *Sessions) Acquire(identity int64) func() {
	s.mu.Lock()
	slot, ok := s.slots[identity]
	if !ok {
		slot = &sessionSlot{}
		s.slots[identity] = slot
	}
	s.mu.Unlock()

	slot.mu.Lock()
	return slot.mu.Unlock
}

// Get returns the identity's session, or nil when idle. Callers must
// hold the identity's slot lock.
func (s *Sessions) Get(identity int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.slots[identity]; ok {
		return slot.sess
	}
	return nil
}

// Put installs (or replaces) the identity's session
func (s *Sessions) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[sess.Identity]
	if !ok {
		slot = &sessionSlot{}
		s.slots[sess.Identity] = slot
	}
	if slot.sess == nil {
		util.WizardSessionsActive.Inc()
	}
	slot.sess = sess
}

// Delete destroys the identity's session if one exists
func (s *Sessions) Delete(identity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.slots[identity]; ok && slot.sess != nil {
		slot.sess = nil
		util.WizardSessionsActive.Dec()
	}
}
