package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/church-console/backend/internal/gateway"
	"github.com/church-console/backend/internal/models"
	"github.com/church-console/backend/pkg/rowmap"
)

// AddMemberToGroup appends memberID to the group's member list. The member must be cached.
// Adding a member twice keeps a single entry.
func (s *Store) AddMemberToGroup(ctx context.Context, groupID, memberID string) (models.Group, error) {
	const failMsg = "Failed to add member to group"
	group, ok := s.Groups.Get(groupID)
	if !ok {
		return models.Group{}, s.Groups.reject(ctx, gateway.OpUpdate, failMsg, gateway.NotFound(CollectionGroups, gateway.OpUpdate))
	}
	if _, ok := s.Members.Get(memberID); !ok {
		return models.Group{}, s.Groups.reject(ctx, gateway.OpUpdate, failMsg, rejected(CollectionGroups, fmt.Errorf("%w %s", ErrUnknownMember, memberID)))
	}
	members := append([]string(nil), group.Members...)
	if !group.HasMember(memberID) {
		members = append(members, memberID)
	}
	patch := rowmap.NewPatch(models.Group{Members: members}, "members")
	return s.Groups.update(ctx, groupID, patch, "Member added to group successfully", failMsg)
}

// RemoveMemberFromGroup drops memberID from the group's member list.
func (s *Store) RemoveMemberFromGroup(ctx context.Context, groupID, memberID string) (models.Group, error) {
	const failMsg = "Failed to remove member from group"
	group, ok := s.Groups.Get(groupID)
	if !ok {
		return models.Group{}, s.Groups.reject(ctx, gateway.OpUpdate, failMsg, gateway.NotFound(CollectionGroups, gateway.OpUpdate))
	}
	members := make([]string, 0, len(group.Members))
	for _, id := range group.Members {
		if id != memberID {
			members = append(members, id)
		}
	}
	patch := rowmap.NewPatch(models.Group{Members: members}, "members")
	return s.Groups.update(ctx, groupID, patch, "Member removed from group successfully", failMsg)
}

// AddEventRegistration books reg on an education event. The id, timestamp, payment status and
// amount due are filled in when absent. Registrations beyond maxParticipants are rejected.
func (s *Store) AddEventRegistration(ctx context.Context, eventID string, reg models.Registration) (models.EducationEvent, error) {
	const failMsg = "Failed to submit registration"
	event, ok := s.Education.Get(eventID)
	if !ok {
		return models.EducationEvent{}, s.Education.reject(ctx, gateway.OpUpdate, failMsg, gateway.NotFound(CollectionEducation, gateway.OpUpdate))
	}
	if event.Full() {
		return models.EducationEvent{}, s.Education.reject(ctx, gateway.OpUpdate, failMsg, rejected(CollectionEducation, ErrEventFull))
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.RegisteredAt == "" {
		reg.RegisteredAt = s.now().UTC().Format(time.RFC3339)
	}
	if reg.PaymentStatus == "" {
		reg.PaymentStatus = models.PaymentPending
		if event.IsFree {
			reg.PaymentStatus = models.PaymentCompleted
		}
	}
	if reg.PaymentAmount == 0 {
		reg.PaymentAmount = event.PriceFor(reg.AdditionalParticipants)
	}
	regs := append(append([]models.Registration(nil), event.Registrations...), reg)
	patch := rowmap.NewPatch(models.EducationEvent{Registrations: regs}, "registrations")
	return s.Education.update(ctx, eventID, patch, "Registration submitted successfully", failMsg)
}

// UpdateRegistrationPayment sets the payment status of one registration.
func (s *Store) UpdateRegistrationPayment(ctx context.Context, eventID, registrationID, status string) (models.EducationEvent, error) {
	const failMsg = "Failed to update payment"
	event, ok := s.Education.Get(eventID)
	if !ok {
		return models.EducationEvent{}, s.Education.reject(ctx, gateway.OpUpdate, failMsg, gateway.NotFound(CollectionEducation, gateway.OpUpdate))
	}
	if !models.ValidPaymentStatus(status) {
		return models.EducationEvent{}, s.Education.reject(ctx, gateway.OpUpdate, failMsg, rejected(CollectionEducation, models.ErrPaymentStatus))
	}
	regs := append([]models.Registration(nil), event.Registrations...)
	found := false
	for i := range regs {
		if regs[i].ID == registrationID {
			regs[i].PaymentStatus = status
			found = true
		}
	}
	if !found {
		return models.EducationEvent{}, s.Education.reject(ctx, gateway.OpUpdate, failMsg,
			rejected(CollectionEducation, fmt.Errorf("%w %s", ErrUnknownRegistration, registrationID)))
	}
	patch := rowmap.NewPatch(models.EducationEvent{Registrations: regs}, "registrations")
	return s.Education.update(ctx, eventID, patch, "Payment status updated successfully", failMsg)
}
