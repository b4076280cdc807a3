package service

import (
	"context"
	"log/slog"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// GroupService manages groups and their member sets.
type GroupService struct {
	store    storage.Store
	balances *BalanceService
}

// NewGroupService creates a GroupService. It holds the balance cache
// because deleting a group erases its expenses and settlements, which
// moves every member's balances.
func NewGroupService(store storage.Store, balances *BalanceService) *GroupService {
	return &GroupService{store: store, balances: balances}
}

// Create makes a new group with the caller as admin. Additional member
// user IDs join with the member role.
func (s *GroupService) Create(ctx context.Context, callerID, name, description string, memberIDs []string) (*models.Group, error) {
	if name == "" {
		return nil, ledger.Validationf(ledger.CodeMissingField, "group name is required")
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		CreatedBy:   callerID,
		Members: []models.GroupMember{
			{UserID: callerID, Role: models.RoleAdmin},
		},
	}
	for _, id := range memberIDs {
		if id == callerID {
			continue
		}
		user, err := s.store.GetUserByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, &ledger.NotFoundError{Kind: "user", ID: id}
		}
		group.Members = append(group.Members, models.GroupMember{UserID: id, Role: models.RoleMember})
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	slog.Info("group created", "group_id", group.ID, "name", group.Name, "members", len(group.Members))
	return group, nil
}

// Get retrieves a group the caller belongs to.
func (s *GroupService) Get(ctx context.Context, callerID, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, ledger.Validationf(ledger.CodePermissionDenied, "you must be a member of this group")
	}
	return group, nil
}

// List returns every group the caller is a member of.
func (s *GroupService) List(ctx context.Context, callerID string) ([]*models.Group, error) {
	return s.store.ListGroupsByUser(ctx, callerID)
}

// Update renames a group. Admin only.
func (s *GroupService) Update(ctx context.Context, callerID, groupID, name, description string) (*models.Group, error) {
	group, err := s.requireAdmin(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		group.Name = name
	}
	if description != "" {
		group.Description = description
	}
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Delete removes a group and, via cascade, its memberships, expenses and
// settlements. Admin only. Every member's global balances lose the
// group's contributions, so their scopes are locked and invalidated
// along with the group's own.
func (s *GroupService) Delete(ctx context.Context, callerID, groupID string) error {
	group, err := s.requireAdmin(ctx, callerID, groupID)
	if err != nil {
		return err
	}

	keys := []string{GroupScope(groupID).Key()}
	for _, m := range group.Members {
		keys = append(keys, UserScope(m.UserID).Key())
	}
	unlock := s.balances.LockScopes(keys)
	defer unlock()

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	s.balances.Invalidate(keys...)

	slog.Info("group deleted", "group_id", groupID)
	return nil
}

// AddMember adds a user to the group. Any member may add others.
func (s *GroupService) AddMember(ctx context.Context, callerID, groupID, userID, role string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(callerID) {
		return ledger.Validationf(ledger.CodePermissionDenied, "you must be a member of this group")
	}
	if role != "" && role != models.RoleAdmin && role != models.RoleMember {
		return ledger.Validationf(ledger.CodeMissingField, "unknown role %q", role)
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return &ledger.NotFoundError{Kind: "user", ID: userID}
	}
	return s.store.AddGroupMember(ctx, &models.GroupMember{
		GroupID: groupID,
		UserID:  userID,
		Role:    role,
	})
}

// RemoveMember removes a user from the group. Admins may remove anyone;
// members may remove themselves.
func (s *GroupService) RemoveMember(ctx context.Context, callerID, groupID, userID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if callerID != userID && !group.IsAdmin(callerID) {
		return ledger.Validationf(ledger.CodePermissionDenied, "only admins may remove other members")
	}
	return s.store.RemoveGroupMember(ctx, groupID, userID)
}

func (s *GroupService) requireAdmin(ctx context.Context, callerID, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(callerID) {
		return nil, ledger.Validationf(ledger.CodePermissionDenied, "you must be a group admin")
	}
	return group, nil
}
