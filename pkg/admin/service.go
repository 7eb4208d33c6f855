package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lettable/booking-admin/pkg/auth"
	"github.com/lettable/booking-admin/pkg/directory"
	"github.com/lettable/booking-admin/pkg/metrics"
	"github.com/lettable/booking-admin/pkg/profile"
	"github.com/lettable/booking-admin/pkg/rbac"
)

// Service implements the privileged role management operations.
type Service struct {
	directory *directory.Service
	profiles  *profile.Service
	metrics   *metrics.Collector
}

// ServiceOption is a function that configures a Service.
type ServiceOption func(*Service)

// WithMetrics attaches a collector for operation counters.
func WithMetrics(collector *metrics.Collector) ServiceOption {
	return func(s *Service) {
		s.metrics = collector
	}
}

// NewService creates the administration service.
func NewService(directorySvc *directory.Service, profileSvc *profile.Service, options ...ServiceOption) *Service {
	s := &Service{
		directory: directorySvc,
		profiles:  profileSvc,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// requireAdmin runs the shared precondition checks. The unauthenticated check
// always comes before anything else so a missing caller never leaks whether
// the operation would otherwise have been allowed.
func requireAdmin(caller *auth.Caller) error {
	if caller == nil {
		return Unauthenticated()
	}
	if !caller.IsAdmin() {
		return PermissionDenied("only admins can manage users")
	}
	return nil
}

// AssignRole rewrites the target user's claims to the given role, then
// mirrors the role into the profile record. The claims write goes first; if
// the profile upsert fails afterwards the stores are left disagreeing until
// the reconciler's next sweep, and the caller sees an internal error.
func (s *Service) AssignRole(ctx context.Context, caller *auth.Caller, targetEmail, newRole string) (string, error) {
	if err := requireAdmin(caller); err != nil {
		return "", err
	}
	if targetEmail == "" {
		return "", InvalidArgument("email is required")
	}
	role, err := rbac.ParseRole(newRole)
	if err != nil {
		return "", InvalidArgument(fmt.Sprintf("unknown role %q", newRole))
	}

	target, err := s.directory.GetByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, directory.ErrIdentityNotFound) {
			return "", NotFound(fmt.Sprintf("no user found for email %s", targetEmail))
		}
		return "", Internal("failed to look up user", err)
	}

	if err := s.directory.SetRole(ctx, target.ID, role); err != nil {
		return "", Internal("failed to update claims", err)
	}

	if _, err := s.profiles.SetRole(ctx, target.ID, target.Email, target.DisplayName, role); err != nil {
		// Claims already changed; no rollback. The reconciler repairs the
		// profile on its next sweep.
		s.metrics.RecordStoreInconsistency()
		slog.Error("Profile update failed after claims write", "userId", target.ID, "role", role, "err", err)
		return "", Internal("claims updated but profile write failed", err)
	}

	s.metrics.RecordRoleAssignment(role.String())
	slog.Info("Assigned role", "admin", caller.ID, "userId", target.ID, "email", target.Email, "role", role)
	return fmt.Sprintf("Success! User %s is now assigned the role: %s.", target.Email, role), nil
}

// DeleteAccount removes the target's identity and profile record. The
// identity goes first; a failed profile delete afterwards leaves an orphaned
// record for the reconciler to collect.
func (s *Service) DeleteAccount(ctx context.Context, caller *auth.Caller, targetUID string) (string, error) {
	if err := requireAdmin(caller); err != nil {
		return "", err
	}
	if targetUID == "" {
		return "", InvalidArgument("uid is required")
	}
	targetID, err := uuid.Parse(targetUID)
	if err != nil {
		return "", InvalidArgument(fmt.Sprintf("malformed uid %q", targetUID))
	}
	if targetID == caller.ID {
		return "", PermissionDenied("admins cannot delete their own account")
	}

	if _, err := s.directory.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, directory.ErrIdentityNotFound) {
			return "", NotFound(fmt.Sprintf("no user found for uid %s", targetUID))
		}
		return "", Internal("failed to look up user", err)
	}

	if err := s.directory.Delete(ctx, targetID); err != nil {
		return "", Internal("failed to delete user", err)
	}

	if err := s.profiles.Delete(ctx, targetID); err != nil && !errors.Is(err, profile.ErrRecordNotFound) {
		s.metrics.RecordStoreInconsistency()
		slog.Error("Profile delete failed after identity removal", "userId", targetID, "err", err)
		return "", Internal("user deleted but profile removal failed", err)
	}

	s.metrics.RecordAccountDeletion()
	slog.Info("Deleted account", "admin", caller.ID, "userId", targetID)
	return "User and their profile successfully deleted.", nil
}

// Roster returns every profile record for the console table.
func (s *Service) Roster(ctx context.Context, caller *auth.Caller) ([]profile.Record, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	records, err := s.profiles.Roster(ctx)
	if err != nil {
		return nil, Internal("failed to load roster", err)
	}
	return records, nil
}

// Claims returns every identity with its raw claim flags, for inspecting the
// directory side of the dual store.
func (s *Service) Claims(ctx context.Context, caller *auth.Caller) ([]directory.Identity, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	idents, err := s.directory.List(ctx)
	if err != nil {
		return nil, Internal("failed to list identities", err)
	}
	return idents, nil
}
