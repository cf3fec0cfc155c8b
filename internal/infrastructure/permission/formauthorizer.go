package permission

import (
	"context"
	"strconv"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/domain/user"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// Form actions checked against casbin policies.
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

func UserSubject(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

func RoleSubject(role user.Role) string {
	return "role:" + string(role)
}

func FormObject(formSID string) string {
	return "form:" + formSID
}

// FormAuthorizer always allows the owner and asks casbin for anyone else.
type FormAuthorizer struct {
	enforcer *Enforcer
	logger   logger.Interface
}

func NewFormAuthorizer(enforcer *Enforcer, logger logger.Interface) *FormAuthorizer {
	return &FormAuthorizer{
		enforcer: enforcer,
		logger:   logger,
	}
}

func (a *FormAuthorizer) CanAccessForm(ctx context.Context, userID uint, f *form.Form) (bool, error) {
	return a.check(userID, f, ActionRead)
}

func (a *FormAuthorizer) CanModifyForm(ctx context.Context, userID uint, f *form.Form) (bool, error) {
	return a.check(userID, f, ActionWrite)
}

func (a *FormAuthorizer) check(userID uint, f *form.Form, action string) (bool, error) {
	if f == nil {
		return false, nil
	}
	if f.IsOwnedBy(userID) {
		return true, nil
	}
	allowed, err := a.enforcer.Enforce(UserSubject(userID), FormObject(f.SID()), action)
	if err != nil {
		return false, err
	}
	if !allowed {
		a.logger.Debugw("form access denied", "user_id", userID, "form_id", f.SID(), "action", action)
	}
	return allowed, nil
}

// ShareForm grants a collaborator an action on a form. Write access
// implies read access.
func (a *FormAuthorizer) ShareForm(userID uint, formSID, action string) error {
	if action == ActionWrite {
		if err := a.enforcer.AddPolicy(UserSubject(userID), FormObject(formSID), ActionRead); err != nil {
			return err
		}
	}
	return a.enforcer.AddPolicy(UserSubject(userID), FormObject(formSID), action)
}

func (a *FormAuthorizer) UnshareForm(userID uint, formSID string) error {
	for _, action := range []string{ActionRead, ActionWrite} {
		if err := a.enforcer.RemovePolicy(UserSubject(userID), FormObject(formSID), action); err != nil {
			return err
		}
	}
	return nil
}

// ForgetForm drops every sharing rule of a deleted form.
func (a *FormAuthorizer) ForgetForm(formSID string) error {
	return a.enforcer.RemoveObject(FormObject(formSID))
}
