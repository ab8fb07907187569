package service

import (
	"context"
	"fmt"
	"sort"

	"menteam-auth/internal/model"
	"menteam-auth/internal/repository"
)

// RolePlan is the set of changes that turns a user's current role links into
// exactly the requested role set.
type RolePlan struct {
	SoftDelete []int64
	Restore    []int64
	Insert     []int64
	Keep       []int64
}

func (p RolePlan) Empty() bool {
	return len(p.SoftDelete) == 0 && len(p.Restore) == 0 && len(p.Insert) == 0
}

// PlanRoleReconcile compares existing links (active and soft-deleted) against
// the requested role IDs. Restoring is preferred over inserting so the
// (user_id, role_id) key is never duplicated.
func PlanRoleReconcile(existing []model.UserRole, requested []int64) RolePlan {
	want := make(map[int64]struct{}, len(requested))
	for _, id := range requested {
		want[id] = struct{}{}
	}

	var plan RolePlan
	seen := make(map[int64]struct{}, len(existing))

	for _, link := range existing {
		if _, dup := seen[link.RoleID]; dup {
			continue
		}
		seen[link.RoleID] = struct{}{}

		_, wanted := want[link.RoleID]
		switch {
		case wanted && link.Status() == model.StatusActive:
			plan.Keep = append(plan.Keep, link.RoleID)
		case wanted:
			plan.Restore = append(plan.Restore, link.RoleID)
		case link.Status() == model.StatusActive:
			plan.SoftDelete = append(plan.SoftDelete, link.RoleID)
		}
	}

	for id := range want {
		if _, ok := seen[id]; !ok {
			plan.Insert = append(plan.Insert, id)
		}
	}

	sortIDs(plan.SoftDelete)
	sortIDs(plan.Restore)
	sortIDs(plan.Insert)
	sortIDs(plan.Keep)

	return plan
}

func reconcileRoles(ctx context.Context, store repository.Store, userID string, roleIDs []int64) error {
	links, err := store.UserRoles().FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user roles: %w", err)
	}

	plan := PlanRoleReconcile(links, roleIDs)
	if plan.Empty() {
		return nil
	}

	if err := store.UserRoles().SoftDelete(ctx, userID, plan.SoftDelete); err != nil {
		return fmt.Errorf("failed to clear user roles: %w", err)
	}
	if err := store.UserRoles().Restore(ctx, userID, plan.Restore); err != nil {
		return fmt.Errorf("failed to restore user roles: %w", err)
	}
	if err := store.UserRoles().Create(ctx, userID, plan.Insert); err != nil {
		return fmt.Errorf("failed to create user roles: %w", err)
	}

	return nil
}

// resolveRoles dedupes roleIDs and checks every one of them exists.
func resolveRoles(ctx context.Context, store repository.Store, roleIDs []int64) ([]int64, []model.Role, error) {
	ids := dedupeRoleIDs(roleIDs)
	if len(ids) == 0 {
		return nil, nil, ErrInvalidRoleIDs
	}

	roles, err := store.Roles().FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load roles: %w", err)
	}
	if len(roles) != len(ids) {
		return nil, nil, ErrInvalidRoleIDs
	}

	return ids, roles, nil
}

func dedupeRoleIDs(roleIDs []int64) []int64 {
	seen := make(map[int64]struct{}, len(roleIDs))
	out := make([]int64, 0, len(roleIDs))
	for _, id := range roleIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sortIDs(out)
	return out
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
